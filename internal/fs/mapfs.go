package fs

import (
	"io/fs"
	"testing/fstest"
)

// MapFS returns an in-memory fs.FS with the given file contents.
func MapFS(m map[string][]byte) fs.FS {
	m0 := make(map[string]*fstest.MapFile, len(m))
	for p, f := range m {
		m0[p] = &fstest.MapFile{Data: f, Mode: 0o644}
	}
	return fstest.MapFS(m0)
}

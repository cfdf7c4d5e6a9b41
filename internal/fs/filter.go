package fs

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"path"

	"github.com/gobwas/glob"
)

// NewMatchFS returns a view of fsys without the files for which keep returns
// false. Directories are always kept.
func NewMatchFS(fsys fs.FS, keep func(name string) bool) fs.FS {
	return &matchFS{fsys: fsys, keep: keep}
}

// NewFilterFS filters fsys with glob patterns ("**" crosses directories). A
// file is kept if it matches any include pattern, or there are none, and
// matches no exclude pattern.
func NewFilterFS(fsys fs.FS, include, exclude []string) (fs.FS, error) {
	if len(include) == 0 && len(exclude) == 0 {
		return fsys, nil
	}
	inc, err := compileGlobs(include)
	if err != nil {
		return nil, err
	}
	exc, err := compileGlobs(exclude)
	if err != nil {
		return nil, err
	}
	return NewMatchFS(fsys, func(name string) bool {
		if len(inc) > 0 && !matchAny(inc, name) {
			return false
		}
		return !matchAny(exc, name)
	}), nil
}

func compileGlobs(patterns []string) ([]glob.Glob, error) {
	gs := make([]glob.Glob, 0, len(patterns))
	for _, p := range patterns {
		g, err := glob.Compile(p, '/')
		if err != nil {
			return nil, fmt.Errorf("failed to compile file pattern %q: %w", p, err)
		}
		gs = append(gs, g)
	}
	return gs, nil
}

func matchAny(gs []glob.Glob, name string) bool {
	for _, g := range gs {
		if g.Match(name) {
			return true
		}
	}
	return false
}

type matchFS struct {
	fsys fs.FS
	keep func(string) bool
}

func (m *matchFS) Open(name string) (fs.File, error) {
	f, err := m.fsys.Open(name)
	if err != nil {
		return nil, err
	}
	fi, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, err
	}
	if !fi.IsDir() {
		if !m.keep(name) {
			f.Close()
			return nil, &fs.PathError{Op: "open", Path: name, Err: fs.ErrNotExist}
		}
		return f, nil
	}
	d, ok := f.(fs.ReadDirFile)
	if !ok {
		f.Close()
		return nil, &fs.PathError{Op: "readdir", Path: name, Err: errors.ErrUnsupported}
	}
	return &matchDir{ReadDirFile: d, name: name, keep: m.keep}, nil
}

type matchDir struct {
	fs.ReadDirFile
	name string
	keep func(string) bool
}

func (d *matchDir) ReadDir(n int) ([]fs.DirEntry, error) {
	var res []fs.DirEntry
	for {
		es, err := d.ReadDirFile.ReadDir(n)
		for _, e := range es {
			if e.IsDir() || d.keep(path.Join(d.name, e.Name())) {
				res = append(res, e)
			}
		}
		if n <= 0 {
			return res, err
		}
		if len(res) > 0 {
			// Fewer than n entries is fine; io.EOF is reported on the next call.
			if errors.Is(err, io.EOF) {
				err = nil
			}
			return res, err
		}
		if err != nil {
			return nil, err
		}
	}
}

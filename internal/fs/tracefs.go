package fs

import (
	"io/fs"

	"github.com/jvmpack/uberctl/internal/logging"
)

// TraceFS logs every Open at debug level.
type TraceFS struct {
	fsys   fs.FS
	logger *logging.Logger
}

func NewTraceFS(fsys fs.FS, logger *logging.Logger) fs.FS {
	return &TraceFS{fsys: fsys, logger: logger}
}

func (t *TraceFS) Open(p string) (fs.File, error) {
	f, err := t.fsys.Open(p)
	if err != nil {
		t.logger.Debugf("Open(%s) => %v", p, err)
		return nil, err
	}

	fi, err := f.Stat()
	if err != nil {
		t.logger.Debugf("Open(%s) => stat: %v", p, err)
		return f, nil
	}
	if fi.IsDir() {
		t.logger.Debugf("Open(%s) => %v dir", p, fi.Name())
	} else {
		t.logger.Debugf("Open(%s) => %v size=%d", p, fi.Name(), fi.Size())
	}
	return f, nil
}

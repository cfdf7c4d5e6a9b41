package builder

import (
	"context"
	"io"
	"io/fs"
	"os"
	"sync"

	"github.com/yalue/merged_fs"

	ocp_fs "github.com/jvmpack/uberctl/internal/fs"
	"github.com/jvmpack/uberctl/internal/logging"
	"github.com/jvmpack/uberctl/pkg/engine"
)

// Layout is the computed content of an uber archive.
type Layout struct {
	Entries     []string          // archive paths, sorted
	Resolutions []Resolution      // conflicts in the order they were resolved
	Excluded    []string          // paths dropped by exclusion patterns, sorted
	Manifest    map[string]string // manifest attributes

	fses     []fs.FS
	entries  map[string]*entry
	resolved map[string][]byte // content produced by conflict resolution
}

// Resolution records how one conflicting path was resolved.
type Resolution struct {
	Path    string
	Sources []string // existing sources, then the incoming one
	Key     string   // handler table key that selected the handler
	Handler string
	Diff    string // unified diff from existing to incoming content, if requested
}

type entry struct {
	sources []string
	origin  int // index into fses, or -1 for resolved content
}

func (l *Layout) read(path string) ([]byte, error) {
	e := l.entries[path]
	if e.origin < 0 {
		return l.resolved[path], nil
	}
	return fs.ReadFile(l.fses[e.origin], path)
}

func (l *Layout) write(path string, sources []string, data []byte) {
	l.entries[path] = &entry{sources: sources, origin: -1}
	l.resolved[path] = data
}

// Sources returns the sources that contributed to path.
func (l *Layout) Sources(path string) []string {
	if e, ok := l.entries[path]; ok {
		return append([]string(nil), e.sources...)
	}
	return nil
}

// FS returns the archive content as a file system: resolved entries over the
// source files that were kept.
func (l *Layout) FS() fs.FS {
	fses := make([]fs.FS, 0, len(l.fses)+1)
	fses = append(fses, ocp_fs.MapFS(l.resolved))
	for i, fsys := range l.fses {
		fses = append(fses, ocp_fs.NewMatchFS(fsys, func(name string) bool {
			e, ok := l.entries[name]
			return ok && e.origin == i
		}))
	}
	return merged_fs.MergeMultiple(fses...)
}

// Extract writes the archive content below dir, which must not contain any
// of the archive's files yet.
func (l *Layout) Extract(dir string) error {
	return os.CopyFS(dir, l.FS())
}

// Engine is a dry-run engine.Engine: it computes the layout of the archive
// and keeps it for inspection.
type Engine struct {
	Logger        *logging.Logger
	ExcludedFiles []string
	Diff          bool
	Progress      io.Writer // progress bars are shown when set
	Trace         bool

	mtx    sync.Mutex
	layout *Layout
}

func (e *Engine) Uber(ctx context.Context, cfg *engine.Config) error {
	b := New().
		WithConfig(cfg).
		WithExcludedFiles(e.ExcludedFiles).
		WithDiff(e.Diff).
		WithProgress(e.Progress).
		WithTrace(e.Trace)
	if e.Logger != nil {
		b.WithLogger(e.Logger)
	}

	l, err := b.Build(ctx)
	if err != nil {
		return err
	}

	e.mtx.Lock()
	defer e.mtx.Unlock()
	e.layout = l
	return nil
}

// Layout returns the layout computed by the last successful call to Uber.
func (e *Engine) Layout() *Layout {
	e.mtx.Lock()
	defer e.mtx.Unlock()
	return e.layout
}

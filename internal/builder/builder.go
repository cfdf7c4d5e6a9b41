package builder

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"maps"
	"os"
	"slices"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/akedrou/textdiff"
	"golang.org/x/sync/errgroup"

	ocp_fs "github.com/jvmpack/uberctl/internal/fs"
	"github.com/jvmpack/uberctl/internal/logging"
	"github.com/jvmpack/uberctl/internal/metrics"
	"github.com/jvmpack/uberctl/internal/progress"
	"github.com/jvmpack/uberctl/pkg/engine"
)

var ErrNoConfig = errors.New("builder: no configuration")

// Source is one named contributor to the layout: the class directory or a
// library of the basis.
type Source struct {
	Name string

	// fses are the fs.FS instances contributing entries, with per-directory
	// excludes already applied
	fses []fs.FS
}

type Dir struct {
	Path          string   // local fs path to source files
	ExcludedFiles []string // exclusion filter on files to skip from path
}

func NewSource(name string) *Source {
	return &Source{
		Name: name,
	}
}

func (s *Source) AddDir(d Dir) error {
	fi, err := os.Stat(d.Path)
	if err != nil {
		return err
	}
	if !fi.IsDir() {
		return fmt.Errorf("%s: not a directory", d.Path)
	}

	f, err := ocp_fs.NewFilterFS(os.DirFS(d.Path), nil, d.ExcludedFiles)
	if err != nil {
		return err
	}
	s.AddFS(f)
	return nil
}

func (s *Source) AddFS(f fs.FS) {
	s.fses = append(s.fses, f)
}

type Builder struct {
	config   *engine.Config
	sources  []*Source
	excluded []string
	logger   *logging.Logger
	progress io.Writer
	diff     bool
	trace    bool
}

func New() *Builder {
	return &Builder{logger: logging.NewNop()}
}

func (b *Builder) WithConfig(cfg *engine.Config) *Builder {
	b.config = cfg
	return b
}

// WithSources replaces the sources derived from the configuration's class
// directory and basis.
func (b *Builder) WithSources(srcs []*Source) *Builder {
	b.sources = srcs
	return b
}

// WithExcludedFiles sets globs for files to skip in every source directory.
func (b *Builder) WithExcludedFiles(excluded []string) *Builder {
	b.excluded = excluded
	return b
}

func (b *Builder) WithLogger(logger *logging.Logger) *Builder {
	b.logger = logger
	return b
}

// WithProgress reports progress bars to w.
func (b *Builder) WithProgress(w io.Writer) *Builder {
	b.progress = w
	return b
}

// WithDiff records a unified diff for every conflict between text entries.
func (b *Builder) WithDiff(diff bool) *Builder {
	b.diff = diff
	return b
}

// WithTrace logs every file opened in a source at debug level.
func (b *Builder) WithTrace(trace bool) *Builder {
	b.trace = trace
	return b
}

// Build computes the layout of the uber archive described by the
// configuration. Nothing is written.
func (b *Builder) Build(ctx context.Context) (*Layout, error) {
	startTime := time.Now()

	l, err := b.build(ctx)
	if err != nil {
		metrics.LayoutBuildFailed()
		return nil, err
	}

	metrics.LayoutBuildSucceeded(startTime)
	return l, nil
}

func (b *Builder) build(ctx context.Context) (*Layout, error) {
	if b.config == nil {
		return nil, ErrNoConfig
	}

	m, err := engine.Compile(b.config)
	if err != nil {
		return nil, err
	}

	srcs := b.sources
	if srcs == nil {
		srcs, err = b.configSources()
		if err != nil {
			return nil, err
		}
	}

	l := &Layout{
		Manifest: manifest(b.config),
		entries:  make(map[string]*entry),
		resolved: make(map[string][]byte),
	}

	listings, err := b.list(ctx, l, srcs)
	if err != nil {
		return nil, err
	}

	total := 0
	for _, files := range listings {
		total += len(files)
	}
	bar := b.bar(total, "merging")
	defer bar.Finish()

	r := &resolver{layout: l, matcher: m, logger: b.logger, diff: b.diff}
	for i, src := range srcs {
		for _, f := range listings[i] {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			if err := r.add(src.Name, f); err != nil {
				return nil, err
			}
			bar.Add(1)
		}
	}

	l.Entries = slices.Sorted(maps.Keys(l.entries))
	slices.Sort(l.Excluded)
	l.Excluded = slices.Compact(l.Excluded)
	return l, nil
}

// configSources returns the class directory followed by the basis libraries
// in lexical order. Library archives are skipped.
func (b *Builder) configSources() ([]*Source, error) {
	classes := NewSource(b.config.ClassDir)
	if err := classes.AddDir(Dir{Path: b.config.ClassDir, ExcludedFiles: b.excluded}); err != nil {
		return nil, fmt.Errorf("class directory: %w", err)
	}
	srcs := []*Source{classes}

	for _, name := range b.config.Basis.LibNames() {
		src := NewSource(name)
		for _, p := range b.config.Basis.Libs[name].Paths {
			fi, err := os.Stat(p)
			if err != nil {
				return nil, fmt.Errorf("library %s: %w", name, err)
			}
			if !fi.IsDir() {
				b.logger.Warnf("library %s: skipping archive %s", name, p)
				continue
			}
			if err := src.AddDir(Dir{Path: p, ExcludedFiles: b.excluded}); err != nil {
				return nil, fmt.Errorf("library %s: %w", name, err)
			}
		}
		srcs = append(srcs, src)
	}

	return srcs, nil
}

type file struct {
	path string
	fsys int // index into Layout.fses
}

// list walks all sources concurrently. The result is indexed like srcs; each
// listing is in walk order.
func (b *Builder) list(ctx context.Context, l *Layout, srcs []*Source) ([][]file, error) {
	type task struct {
		src  int
		fsys int
	}
	var tasks []task
	for i, src := range srcs {
		for _, fsys := range src.fses {
			if b.trace {
				fsys = ocp_fs.NewTraceFS(fsys, b.logger.With("source", src.Name))
			}
			tasks = append(tasks, task{src: i, fsys: len(l.fses)})
			l.fses = append(l.fses, fsys)
		}
	}

	bar := b.bar(len(tasks), "listing sources")
	defer bar.Finish()

	perTask := make([][]file, len(tasks))
	g, ctx := errgroup.WithContext(ctx)
	for i, t := range tasks {
		g.Go(func() error {
			fsys := l.fses[t.fsys]

			files, err := ocp_fs.FSContainsFiles(fsys)
			if err != nil {
				return fmt.Errorf("source %s check files: %w", srcs[t.src].Name, err)
			}
			if !files {
				b.logger.Debugf("source %s contains no files", srcs[t.src].Name)
				bar.Add(1)
				return nil
			}

			err = fs.WalkDir(fsys, ".", func(path string, d fs.DirEntry, err error) error {
				if err != nil {
					return err
				}
				if err := ctx.Err(); err != nil {
					return err
				}
				if d.IsDir() {
					return nil
				}
				perTask[i] = append(perTask[i], file{path: path, fsys: t.fsys})
				return nil
			})
			if err != nil {
				return fmt.Errorf("source %s: %w", srcs[t.src].Name, err)
			}
			bar.Add(1)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	listings := make([][]file, len(srcs))
	for i, t := range tasks {
		listings[t.src] = append(listings[t.src], perTask[i]...)
	}
	return listings, nil
}

func (b *Builder) bar(total int, description string) *progress.Bar {
	if b.progress == nil {
		return nil
	}
	return progress.New(b.progress, total, description)
}

func manifest(cfg *engine.Config) map[string]string {
	m := map[string]string{
		"Manifest-Version": "1.0",
		"Created-By":       "uberctl",
	}
	if cfg.Main != nil {
		m["Main-Class"] = cfg.Main.String()
	}
	maps.Copy(m, cfg.Manifest)
	return m
}

type resolver struct {
	layout  *Layout
	matcher *engine.Matcher
	logger  *logging.Logger
	diff    bool
}

func (r *resolver) add(source string, f file) error {
	l := r.layout

	if r.matcher.Excluded(f.path) {
		l.Excluded = append(l.Excluded, f.path)
		delete(l.entries, f.path)
		delete(l.resolved, f.path)
		metrics.EntriesExcluded.Inc()
		return nil
	}

	existing, ok := l.entries[f.path]
	if !ok {
		l.entries[f.path] = &entry{sources: []string{source}, origin: f.fsys}
		metrics.EntriesMerged.Inc()
		return nil
	}

	existingData, err := l.read(f.path)
	if err != nil {
		return err
	}
	incomingData, err := fs.ReadFile(l.fses[f.fsys], f.path)
	if err != nil {
		return err
	}

	c := &engine.Conflict{
		Path:     f.path,
		Existing: engine.Entry{Sources: slices.Clone(existing.sources), Data: existingData},
		Incoming: engine.Entry{Sources: []string{source}, Data: incomingData},
	}
	return r.resolve(c, f.fsys)
}

func (r *resolver) resolve(c *engine.Conflict, incomingFS int) error {
	l := r.layout
	e := r.matcher.HandlerFor(c.Path)
	h := e.Handler
	if h == engine.Handler(engine.TokenDefault) {
		h = engine.Builtin(c.Path).Handler
	}

	sources := append(slices.Clone(c.Existing.Sources), c.Incoming.Sources...)
	name := engine.HandlerName(h)

	res := Resolution{
		Path:    c.Path,
		Sources: sources,
		Key:     e.Key.String(),
		Handler: name,
	}
	if r.diff && isText(c.Existing.Data) && isText(c.Incoming.Data) {
		res.Diff = textdiff.Unified(
			c.Path+" ("+strings.Join(c.Existing.Sources, ", ")+")",
			c.Path+" ("+strings.Join(c.Incoming.Sources, ", ")+")",
			string(c.Existing.Data),
			string(c.Incoming.Data),
		)
	}

	switch h := h.(type) {
	case engine.Token:
		switch h {
		case engine.TokenIgnore:
		case engine.TokenOverwrite:
			l.entries[c.Path] = &entry{sources: slices.Clone(c.Incoming.Sources), origin: incomingFS}
			delete(l.resolved, c.Path)
		case engine.TokenAppend:
			l.write(c.Path, sources, join(c.Existing.Data, c.Incoming.Data))
		case engine.TokenAppendDedupe:
			l.write(c.Path, sources, dedupe(c.Existing.Data, c.Incoming.Data))
		case engine.TokenWarn:
			r.logger.Warnf("conflicting entry %s from %s, keeping the first", c.Path, strings.Join(sources, ", "))
		case engine.TokenError:
			return &engine.ConflictError{Path: c.Path, Sources: sources}
		default:
			return fmt.Errorf("entry %s: unsupported conflict handler %q", c.Path, string(h))
		}
	case engine.HandlerFunc:
		d, err := h(c)
		if err != nil {
			return fmt.Errorf("conflict handler for %s: %w", c.Path, err)
		}
		for _, p := range slices.Sorted(maps.Keys(d.Write)) {
			if p == c.Path {
				l.write(p, sources, d.Write[p])
			} else {
				l.write(p, slices.Clone(c.Incoming.Sources), d.Write[p])
			}
		}
		if d.Warning != "" {
			r.logger.Warnf("%s: %s", c.Path, d.Warning)
		}
	default:
		return fmt.Errorf("entry %s: unsupported conflict handler %s", c.Path, name)
	}

	l.Resolutions = append(l.Resolutions, res)
	metrics.ConflictsResolved.WithLabelValues(name).Inc()
	return nil
}

// join appends incoming to existing on a new line.
func join(existing, incoming []byte) []byte {
	out := slices.Clone(existing)
	if len(out) > 0 && out[len(out)-1] != '\n' {
		out = append(out, '\n')
	}
	return append(out, incoming...)
}

// dedupe appends the lines of incoming that existing does not contain.
func dedupe(existing, incoming []byte) []byte {
	seen := make(map[string]struct{})
	for _, line := range lines(existing) {
		seen[line] = struct{}{}
	}

	out := slices.Clone(existing)
	for _, line := range lines(incoming) {
		if _, ok := seen[line]; ok {
			continue
		}
		seen[line] = struct{}{}
		if len(out) > 0 && out[len(out)-1] != '\n' {
			out = append(out, '\n')
		}
		out = append(out, line...)
		out = append(out, '\n')
	}
	return out
}

func lines(bs []byte) []string {
	s := strings.TrimSuffix(string(bs), "\n")
	if s == "" {
		return nil
	}
	return strings.Split(s, "\n")
}

func isText(bs []byte) bool {
	return utf8.Valid(bs) && !bytes.Contains(bs, []byte{0})
}

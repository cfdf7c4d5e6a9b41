package uber

import (
	"maps"
	"slices"

	"github.com/jvmpack/uberctl/pkg/engine"
)

// Basis is a resolved dependency basis provided by a dependency resolver.
// Native returns the handle passed to the engine as-is.
type Basis interface {
	Native() *engine.Basis
}

// HandlerEntry is one row of the conflict policy.
type HandlerEntry struct {
	Key     engine.HandlerKey
	Handler ConflictHandler
}

// Options describes one uber archive build. It is immutable; create it with a
// Builder.
type Options struct {
	uberFile  string
	classDir  string
	basis     Basis
	main      string
	manifest  map[string]string
	exclude   []string
	conflicts []HandlerEntry
}

// OutputArchivePath is the archive to create.
func (o *Options) OutputArchivePath() string { return o.uberFile }

// ClassDir is the compiled class directory to include.
func (o *Options) ClassDir() string { return o.classDir }

// Basis is the dependency basis, or nil.
func (o *Options) Basis() Basis { return o.basis }

// EntryPoint is the fully-qualified entry point, or "".
func (o *Options) EntryPoint() string { return o.main }

// Exclude returns a copy of the exclusion patterns; nil if none were set.
func (o *Options) Exclude() []string { return slices.Clone(o.exclude) }

// Manifest returns a copy of the manifest attribute overrides.
func (o *Options) Manifest() map[string]string { return maps.Clone(o.manifest) }

// ConflictHandlers returns a copy of the conflict policy in registration order.
func (o *Options) ConflictHandlers() []HandlerEntry { return slices.Clone(o.conflicts) }

// Builder accumulates settings for Options. Setters do not validate; a later
// call to the same setter replaces the earlier value. A Builder can be reused
// after Build.
type Builder struct {
	uberFile  string
	classDir  string
	basis     Basis
	main      string
	manifest  map[string]string
	exclude   []string
	conflicts []HandlerEntry
}

func NewBuilder() *Builder {
	return &Builder{}
}

// WithOutput sets the archive to create (required).
func (b *Builder) WithOutput(path string) *Builder {
	b.uberFile = path
	return b
}

// WithClassDir sets the class directory to include (required).
func (b *Builder) WithClassDir(dir string) *Builder {
	b.classDir = dir
	return b
}

func (b *Builder) WithBasis(basis Basis) *Builder {
	b.basis = basis
	return b
}

// WithEntryPoint sets the entry point recorded in the manifest, e.g.
// "com.example.Main".
func (b *Builder) WithEntryPoint(symbol string) *Builder {
	b.main = symbol
	return b
}

// WithExclude sets regular expressions for paths to leave out of the archive.
func (b *Builder) WithExclude(patterns []string) *Builder {
	b.exclude = patterns
	return b
}

// WithManifest sets manifest attributes, merged last over the defaults.
func (b *Builder) WithManifest(attrs map[string]string) *Builder {
	b.manifest = attrs
	return b
}

// WithConflictHandler registers h for paths matching pattern. Registering the
// same pattern again replaces its handler and keeps its position.
func (b *Builder) WithConflictHandler(pattern string, h ConflictHandler) *Builder {
	b.put(engine.PatternKey(pattern), h)
	return b
}

// WithDefaultConflictHandler registers h for paths no pattern matches.
func (b *Builder) WithDefaultConflictHandler(h ConflictHandler) *Builder {
	b.put(engine.DefaultKey, h)
	return b
}

func (b *Builder) put(key engine.HandlerKey, h ConflictHandler) {
	if i := slices.IndexFunc(b.conflicts, func(e HandlerEntry) bool { return e.Key == key }); i != -1 {
		b.conflicts[i].Handler = h
		return
	}
	b.conflicts = append(b.conflicts, HandlerEntry{Key: key, Handler: h})
}

// Build returns Options holding a copy of the builder's settings. It fails
// with *MissingRequiredFieldError if the output or class directory is unset.
func (b *Builder) Build() (*Options, error) {
	if b.uberFile == "" {
		return nil, &MissingRequiredFieldError{Field: "output"}
	}
	if b.classDir == "" {
		return nil, &MissingRequiredFieldError{Field: "class_dir"}
	}

	return &Options{
		uberFile:  b.uberFile,
		classDir:  b.classDir,
		basis:     b.basis,
		main:      b.main,
		manifest:  maps.Clone(b.manifest),
		exclude:   slices.Clone(b.exclude),
		conflicts: slices.Clone(b.conflicts),
	}, nil
}

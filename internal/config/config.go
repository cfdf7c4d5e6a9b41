package config

import (
	"encoding/json"
	"fmt"
	"os"
	"regexp"

	"github.com/gobwas/glob"
	"github.com/goccy/go-yaml"

	"github.com/jvmpack/uberctl/pkg/uber"
)

// Root is the uber.yaml configuration of one uber archive build.
type Root struct {
	Output                 string            `json:"output" required:"true" minLength:"1"`
	ClassDir               string            `json:"class_dir" required:"true" minLength:"1"`
	Basis                  string            `json:"basis,omitempty"` // Path to a basis file, relative to the working directory.
	Main                   string            `json:"main,omitempty"`
	Manifest               map[string]string `json:"manifest,omitempty"`
	Exclude                []string          `json:"exclude,omitempty"`
	ConflictHandlers       ConflictHandlers  `json:"conflict_handlers,omitempty"`
	DefaultConflictHandler string            `json:"default_conflict_handler,omitempty" enum:"ignore,overwrite,append,append-dedupe,warn,error,default"`
	ExcludedFiles          []string          `json:"excluded_files,omitempty"` // Globs filtering source directories before the merge.

	_ struct{} `additionalProperties:"false"`
}

// ConflictHandler binds a path pattern to a built-in strategy.
type ConflictHandler struct {
	Pattern string `json:"pattern" required:"true"`
	Handler string `json:"handler" required:"true" enum:"ignore,overwrite,append,append-dedupe,warn,error,default"`

	_ struct{} `additionalProperties:"false"`
}

// ConflictHandlers keeps the order of the configuration file: earlier
// patterns take precedence.
type ConflictHandlers []ConflictHandler

func (r *Root) UnmarshalYAML(bs []byte) error {
	type rawRoot Root // avoid recursive calls to UnmarshalYAML by type aliasing
	var raw rawRoot

	if err := yaml.Unmarshal(bs, &raw); err != nil {
		return fmt.Errorf("failed to decode Root: %w", err)
	}

	*r = Root(raw)
	return r.validate()
}

func (r *Root) UnmarshalJSON(bs []byte) error {
	type rawRoot Root // avoid recursive calls to UnmarshalJSON by type aliasing
	var raw rawRoot

	if err := json.Unmarshal(bs, &raw); err != nil {
		return fmt.Errorf("failed to decode Root: %w", err)
	}

	*r = Root(raw)
	return r.validate()
}

// validate checks what the schema cannot: that patterns compile and handler
// names are known.
func (r *Root) validate() error {
	for _, p := range r.Exclude {
		if _, err := regexp.Compile(p); err != nil {
			return fmt.Errorf("failed to compile exclude pattern %q: %w", p, err)
		}
	}

	for _, h := range r.ConflictHandlers {
		if _, err := regexp.Compile(h.Pattern); err != nil {
			return fmt.Errorf("failed to compile conflict handler pattern %q: %w", h.Pattern, err)
		}
		if _, err := uber.ParseBuiltin(h.Handler); err != nil {
			return err
		}
	}

	if r.DefaultConflictHandler != "" {
		if _, err := uber.ParseBuiltin(r.DefaultConflictHandler); err != nil {
			return err
		}
	}

	for _, pattern := range r.ExcludedFiles {
		if _, err := glob.Compile(pattern, '/'); err != nil {
			return fmt.Errorf("failed to compile excluded file pattern %q: %w", pattern, err)
		}
	}

	return nil
}

// Builder returns a uber.Builder populated from r. basis may be nil.
func (r *Root) Builder(basis uber.Basis) *uber.Builder {
	b := uber.NewBuilder().
		WithOutput(r.Output).
		WithClassDir(r.ClassDir).
		WithEntryPoint(r.Main).
		WithExclude(r.Exclude).
		WithManifest(r.Manifest)

	if basis != nil {
		b.WithBasis(basis)
	}

	// Names were checked when the configuration was parsed.
	for _, h := range r.ConflictHandlers {
		builtin, _ := uber.ParseBuiltin(h.Handler)
		b.WithConflictHandler(h.Pattern, builtin)
	}
	if r.DefaultConflictHandler != "" {
		builtin, _ := uber.ParseBuiltin(r.DefaultConflictHandler)
		b.WithDefaultConflictHandler(builtin)
	}

	return b
}

func Validate(data []byte) error {
	var config any
	if err := yaml.Unmarshal(data, &config); err != nil {
		return err
	}

	return rootSchema.Validate(config)
}

func ParseFile(filename string) (root *Root, err error) {
	bs, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", filename, err)
	}

	return Parse(bs)
}

// Parse validates bs against the configuration schema, expands ${VAR}
// references in string values and decodes the result.
func Parse(bs []byte) (*Root, error) {
	if err := Validate(bs); err != nil {
		return nil, err
	}

	var root Root
	if err := yaml.Unmarshal(bs, &root); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	root.expandEnv()
	return &root, nil
}

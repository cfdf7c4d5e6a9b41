// Package basis loads an already-resolved dependency basis from disk.
//
// A basis file is a YAML (or JSON) document whose "libs" key maps library
// names to the paths they contribute:
//
//	libs:
//	  org.clojure/clojure:
//	    paths: [/home/me/.m2/repository/org/clojure/clojure/1.12.0/clojure-1.12.0.jar]
//	  my/lib:
//	    paths: [../lib/target/classes]
//
// Other keys are kept in the raw document and passed to the engine untouched.
// Relative paths are resolved against the basis file's directory.
package basis

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/go-viper/mapstructure/v2"
	"github.com/goccy/go-yaml"

	"github.com/jvmpack/uberctl/pkg/engine"
)

// Basis is a loaded basis. It implements uber.Basis.
type Basis struct {
	native *engine.Basis
}

type document struct {
	Libs map[string]lib `mapstructure:"libs"`
}

type lib struct {
	Paths []string `mapstructure:"paths"`
}

func (b *Basis) Native() *engine.Basis {
	return b.native
}

// Load reads the basis file at path.
func Load(path string) (*Basis, error) {
	bs, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read basis file %s: %w", path, err)
	}
	b, err := Parse(bs, filepath.Dir(path))
	if err != nil {
		return nil, fmt.Errorf("basis file %s: %w", path, err)
	}
	return b, nil
}

// Parse decodes a basis document; relative library paths are joined to dir.
func Parse(bs []byte, dir string) (*Basis, error) {
	var raw map[string]any
	if err := yaml.Unmarshal(bs, &raw); err != nil {
		return nil, fmt.Errorf("failed to unmarshal basis: %w", err)
	}

	var doc document
	if err := mapstructure.Decode(raw, &doc); err != nil {
		return nil, fmt.Errorf("failed to decode basis: %w", err)
	}

	libs := make(map[string]engine.Lib, len(doc.Libs))
	for name, l := range doc.Libs {
		paths := make([]string, len(l.Paths))
		for i, p := range l.Paths {
			if !filepath.IsAbs(p) && dir != "" {
				p = filepath.Join(dir, p)
			}
			paths[i] = p
		}
		libs[name] = engine.Lib{Paths: paths}
	}

	return &Basis{native: &engine.Basis{Raw: raw, Libs: libs}}, nil
}

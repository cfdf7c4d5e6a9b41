package config

import (
	"maps"
	"os"
)

// expandEnv replaces ${VAR} and $VAR in paths, the entry point and manifest
// values. Patterns are left alone: "$" is meaningful in a regular expression.
func (r *Root) expandEnv() {
	r.Output = os.ExpandEnv(r.Output)
	r.ClassDir = os.ExpandEnv(r.ClassDir)
	r.Basis = os.ExpandEnv(r.Basis)
	r.Main = os.ExpandEnv(r.Main)

	if r.Manifest != nil {
		m := maps.Clone(r.Manifest)
		for k, v := range m {
			m[k] = os.ExpandEnv(v)
		}
		r.Manifest = m
	}
}

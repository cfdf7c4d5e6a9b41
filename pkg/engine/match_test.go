package engine_test

import (
	"errors"
	"slices"
	"testing"

	"github.com/jvmpack/uberctl/pkg/engine"
)

func TestMatcherExcluded(t *testing.T) {
	patterns := []string{`META-INF/.*\.SF`, `.*\.orig`, `project\.clj`}

	cases := []struct {
		path string
		exp  bool
	}{
		{path: "META-INF/SIGNER.SF", exp: true},
		{path: "a/b/c.orig", exp: true},
		{path: "project.clj", exp: true},
		{path: "x/project.clj", exp: false}, // patterns match whole paths
		{path: "META-INF/MANIFEST.MF", exp: false},
		{path: "com/example/Main.class", exp: false},
	}

	// Every permutation of the pattern list must give the same answers.
	orders := [][]string{
		patterns,
		{patterns[2], patterns[1], patterns[0]},
		{patterns[1], patterns[0], patterns[2]},
	}

	for _, order := range orders {
		m, err := engine.Compile(&engine.Config{Exclude: order})
		if err != nil {
			t.Fatal(err)
		}
		for _, tc := range cases {
			if act := m.Excluded(tc.path); act != tc.exp {
				t.Errorf("order %v: Excluded(%q) = %v, want %v", order, tc.path, act, tc.exp)
			}
		}
	}
}

func TestMatcherHandlerFor(t *testing.T) {
	cases := []struct {
		note     string
		handlers []engine.HandlerEntry
		path     string
		expKey   engine.HandlerKey
		expToken engine.Token
	}{
		{
			note: "first match wins",
			handlers: []engine.HandlerEntry{
				{Key: engine.PatternKey(`META-INF/.*`), Handler: engine.TokenOverwrite},
				{Key: engine.PatternKey(`META-INF/services/.*`), Handler: engine.TokenAppend},
			},
			path:     "META-INF/services/x",
			expKey:   engine.PatternKey(`META-INF/.*`),
			expToken: engine.TokenOverwrite,
		},
		{
			note: "first match wins, reversed",
			handlers: []engine.HandlerEntry{
				{Key: engine.PatternKey(`META-INF/services/.*`), Handler: engine.TokenAppend},
				{Key: engine.PatternKey(`META-INF/.*`), Handler: engine.TokenOverwrite},
			},
			path:     "META-INF/services/x",
			expKey:   engine.PatternKey(`META-INF/services/.*`),
			expToken: engine.TokenAppend,
		},
		{
			note: "default key when nothing matches",
			handlers: []engine.HandlerEntry{
				{Key: engine.DefaultKey, Handler: engine.TokenWarn},
				{Key: engine.PatternKey(`.*\.txt`), Handler: engine.TokenAppend},
			},
			path:     "a/b.class",
			expKey:   engine.DefaultKey,
			expToken: engine.TokenWarn,
		},
		{
			note: "pattern beats default key regardless of position",
			handlers: []engine.HandlerEntry{
				{Key: engine.DefaultKey, Handler: engine.TokenWarn},
				{Key: engine.PatternKey(`.*\.txt`), Handler: engine.TokenAppend},
			},
			path:     "notes.txt",
			expKey:   engine.PatternKey(`.*\.txt`),
			expToken: engine.TokenAppend,
		},
		{
			note:     "built-in policy: services",
			path:     "META-INF/services/java.sql.Driver",
			expKey:   engine.PatternKey(`META-INF/services/.*`),
			expToken: engine.TokenAppend,
		},
		{
			note:     "built-in policy: license",
			path:     "META-INF/license.txt",
			expKey:   engine.PatternKey(`(?i)(META-INF/)?(COPYRIGHT|NOTICE|LICENSE)(\.(txt|md))?`),
			expToken: engine.TokenAppendDedupe,
		},
		{
			note:     "built-in policy: fallback",
			path:     "com/example/Main.class",
			expKey:   engine.DefaultKey,
			expToken: engine.TokenIgnore,
		},
	}

	for _, tc := range cases {
		t.Run(tc.note, func(t *testing.T) {
			m, err := engine.Compile(&engine.Config{ConflictHandlers: tc.handlers})
			if err != nil {
				t.Fatal(err)
			}
			e := m.HandlerFor(tc.path)
			if e.Key != tc.expKey {
				t.Errorf("key: got %v, want %v", e.Key, tc.expKey)
			}
			if e.Handler != tc.expToken {
				t.Errorf("handler: got %v, want %v", engine.HandlerName(e.Handler), tc.expToken)
			}
		})
	}
}

func TestCompileInvalidPattern(t *testing.T) {
	for _, cfg := range []*engine.Config{
		{Exclude: []string{"(unclosed"}},
		{ConflictHandlers: []engine.HandlerEntry{{Key: engine.PatternKey("[z-a]"), Handler: engine.TokenIgnore}}},
	} {
		_, err := engine.Compile(cfg)
		var perr *engine.PatternError
		if !errors.As(err, &perr) {
			t.Fatalf("expected PatternError, got %v", err)
		}
	}
}

func TestParseSymbol(t *testing.T) {
	cases := []struct {
		in  string
		exp engine.Symbol
	}{
		{in: "com.example.Main", exp: engine.Symbol{Name: "com.example.Main"}},
		{in: "my.app/main", exp: engine.Symbol{Namespace: "my.app", Name: "main"}},
		{in: "/", exp: engine.Symbol{Name: "/"}},
		{in: "a/", exp: engine.Symbol{Name: "a/"}},
	}
	for _, tc := range cases {
		act := engine.ParseSymbol(tc.in)
		if act != tc.exp {
			t.Errorf("ParseSymbol(%q) = %#v, want %#v", tc.in, act, tc.exp)
		}
		if act.String() != tc.in {
			t.Errorf("String() = %q, want %q", act.String(), tc.in)
		}
	}
}

func TestBasisLibNames(t *testing.T) {
	b := &engine.Basis{Libs: map[string]engine.Lib{"z/z": {}, "a/a": {}, "m/m": {}}}
	if act, exp := b.LibNames(), []string{"a/a", "m/m", "z/z"}; !slices.Equal(act, exp) {
		t.Fatalf("got %v, want %v", act, exp)
	}
	var nilBasis *engine.Basis
	if nilBasis.LibNames() != nil {
		t.Fatal("expected no names for nil basis")
	}
}

func TestConflictError(t *testing.T) {
	err := &engine.ConflictError{Path: "a.txt", Sources: []string{"classes", "org/lib"}}
	if exp := `conflicting entry "a.txt" from "classes", "org/lib"`; err.Error() != exp {
		t.Fatalf("got %q, want %q", err.Error(), exp)
	}
}

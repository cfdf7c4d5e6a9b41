package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/goccy/go-yaml"
	"github.com/google/go-cmp/cmp"

	"github.com/jvmpack/uberctl/internal/config"
	"github.com/jvmpack/uberctl/pkg/engine"
	"github.com/jvmpack/uberctl/pkg/uber"
)

func TestParse(t *testing.T) {
	t.Setenv("UBER_VERSION", "1.2.3")

	root, err := config.Parse([]byte(`
output: out/app-${UBER_VERSION}.jar
class_dir: target/classes
basis: basis.yaml
main: com.example.Main
manifest:
  Implementation-Version: ${UBER_VERSION}
exclude:
  - 'META-INF/.*\.SF'
  - '.*\$Stub\.class'
conflict_handlers:
  - pattern: 'META-INF/services/.*'
    handler: append
  - pattern: '.*\.properties'
    handler: overwrite
default_conflict_handler: warn
excluded_files:
  - '**/*.orig'
`))
	if err != nil {
		t.Fatal(err)
	}

	exp := &config.Root{
		Output:   "out/app-1.2.3.jar",
		ClassDir: "target/classes",
		Basis:    "basis.yaml",
		Main:     "com.example.Main",
		Manifest: map[string]string{"Implementation-Version": "1.2.3"},
		Exclude:  []string{`META-INF/.*\.SF`, `.*\$Stub\.class`},
		ConflictHandlers: config.ConflictHandlers{
			{Pattern: `META-INF/services/.*`, Handler: "append"},
			{Pattern: `.*\.properties`, Handler: "overwrite"},
		},
		DefaultConflictHandler: "warn",
		ExcludedFiles:          []string{"**/*.orig"},
	}

	if diff := cmp.Diff(exp, root, cmp.AllowUnexported(config.Root{}, config.ConflictHandler{})); diff != "" {
		t.Fatalf("(-want,+got):\n%s", diff)
	}
}

func TestParseInvalid(t *testing.T) {
	cases := []struct {
		note   string
		config string
		expErr string
	}{
		{note: "missing output", config: `class_dir: classes`, expErr: "output"},
		{note: "missing class dir", config: `output: app.jar`, expErr: "class_dir"},
		{note: "unknown field", config: "output: app.jar\nclass_dir: classes\nsurprise: true", expErr: "surprise"},
		{note: "unknown handler", config: "output: app.jar\nclass_dir: classes\ndefault_conflict_handler: merge", expErr: "default_conflict_handler"},
		{
			note:   "bad exclude pattern",
			config: "output: app.jar\nclass_dir: classes\nexclude: ['(unclosed']",
			expErr: "failed to compile exclude pattern",
		},
		{
			note:   "bad handler pattern",
			config: "output: app.jar\nclass_dir: classes\nconflict_handlers: [{pattern: '[z-a]', handler: ignore}]",
			expErr: "failed to compile conflict handler pattern",
		},
		{
			note:   "bad file glob",
			config: "output: app.jar\nclass_dir: classes\nexcluded_files: ['[unclosed']",
			expErr: "failed to compile excluded file pattern",
		},
	}

	for _, tc := range cases {
		t.Run(tc.note, func(t *testing.T) {
			_, err := config.Parse([]byte(tc.config))
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tc.expErr) {
				t.Fatalf("expected error containing %q, got: %v", tc.expErr, err)
			}
		})
	}
}

func TestRootBuilder(t *testing.T) {
	root, err := config.Parse([]byte(`
output: out/app.jar
class_dir: target/classes
exclude: ['^META-INF/.*\.SF$']
conflict_handlers:
  - pattern: 'b'
    handler: append-dedupe
  - pattern: 'a'
    handler: error
default_conflict_handler: warn
`))
	if err != nil {
		t.Fatal(err)
	}

	opts, err := root.Builder(nil).Build()
	if err != nil {
		t.Fatal(err)
	}

	cfg, err := uber.Translate(opts)
	if err != nil {
		t.Fatal(err)
	}

	exp := &engine.Config{
		UberFile: "out/app.jar",
		ClassDir: "target/classes",
		Exclude:  []string{`^META-INF/.*\.SF$`},
		ConflictHandlers: []engine.HandlerEntry{
			{Key: engine.PatternKey("b"), Handler: engine.TokenAppendDedupe},
			{Key: engine.PatternKey("a"), Handler: engine.TokenError},
			{Key: engine.DefaultKey, Handler: engine.TokenWarn},
		},
	}
	if diff := cmp.Diff(exp, cfg); diff != "" {
		t.Fatalf("(-want,+got):\n%s", diff)
	}
}

func TestLoadMergeAndPatch(t *testing.T) {
	dir := t.TempDir()
	write := func(name, content string) string {
		t.Helper()
		p := filepath.Join(dir, name)
		if err := os.WriteFile(p, []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
		return p
	}

	base := write("base.yaml", `
output: out/app.jar
class_dir: target/classes
exclude: ['a']
conflict_handlers:
  - pattern: 'x'
    handler: append
manifest:
  Built-By: base
`)
	overlay := write("overlay.yaml", `
exclude: ['b']
conflict_handlers:
  - pattern: 'y'
    handler: ignore
manifest:
  Built-By: overlay
  Extra: "1"
`)
	patch := write("patch.yaml", `
- op: replace
  path: /output
  value: out/patched.jar
`)

	root, err := config.Load([]string{base, overlay}, patch, false)
	if err != nil {
		t.Fatal(err)
	}

	if root.Output != "out/patched.jar" {
		t.Errorf("output: %q", root.Output)
	}
	if diff := cmp.Diff([]string{"a", "b"}, root.Exclude); diff != "" {
		t.Errorf("exclude (-want,+got):\n%s", diff)
	}
	if diff := cmp.Diff(config.ConflictHandlers{{Pattern: "x", Handler: "append"}, {Pattern: "y", Handler: "ignore"}}, root.ConflictHandlers, cmp.AllowUnexported(config.ConflictHandler{})); diff != "" {
		t.Errorf("conflict handlers (-want,+got):\n%s", diff)
	}
	if diff := cmp.Diff(map[string]string{"Built-By": "overlay", "Extra": "1"}, root.Manifest); diff != "" {
		t.Errorf("manifest (-want,+got):\n%s", diff)
	}

	if _, err := config.Load([]string{base, overlay}, "", true); err == nil || !strings.Contains(err.Error(), "/manifest/Built-By") {
		t.Fatalf("expected merge conflict error, got %v", err)
	}
}

func TestReflectSchemaMatchesEmbedded(t *testing.T) {
	bs, err := config.ReflectSchema()
	if err != nil {
		t.Fatal(err)
	}

	var reflected map[string]any
	if err := yaml.Unmarshal(bs, &reflected); err != nil {
		t.Fatal(err)
	}
	props, ok := reflected["properties"].(map[string]any)
	if !ok {
		t.Fatalf("no properties in reflected schema: %s", bs)
	}
	for _, key := range []string{"output", "class_dir", "basis", "main", "manifest", "exclude", "conflict_handlers", "default_conflict_handler", "excluded_files"} {
		if _, ok := props[key]; !ok {
			t.Errorf("reflected schema is missing %q", key)
		}
	}
}

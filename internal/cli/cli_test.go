package cli

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/goccy/go-yaml"
	"github.com/google/go-cmp/cmp"

	"github.com/jvmpack/uberctl/pkg/engine"
	"github.com/jvmpack/uberctl/pkg/uber"
)

// setupProject writes a class directory, a library and an uber.yaml to a
// temporary directory and returns the configuration file path.
func setupProject(t *testing.T) (string, string) {
	t.Helper()
	dir := t.TempDir()

	files := map[string]string{
		"classes/app/core.clj": "(ns app.core)",
		"classes/config.edn":   "{:env :app}",
		"lib/config.edn":       "{:env :lib}",
		"lib/META-INF/LIB.SF":  "signature",
		"lib/lib/core.clj":     "(ns lib.core)",
		"basis.yaml":           "libs:\n  org/lib:\n    paths: [lib]\n",
		"uber.yaml": fmt.Sprintf(`output: %[1]s/app.jar
class_dir: %[1]s/classes
basis: %[1]s/basis.yaml
main: app.core
exclude: ['.*\.SF']
conflict_handlers:
  - pattern: 'config\.edn'
    handler: overwrite
default_conflict_handler: warn
`, dir),
	}
	for p, content := range files {
		path := filepath.Join(dir, filepath.FromSlash(p))
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
	}

	return dir, filepath.Join(dir, "uber.yaml")
}

func execute(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	cmd := NewRootCommand()
	cmd.SetArgs(args)
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	err := cmd.ExecuteContext(t.Context())
	return stdout.String(), stderr.String(), err
}

func TestRootCommandHelp(t *testing.T) {
	out, _, err := execute(t, "--help")
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	for _, exp := range []string{"uberctl", "plan", "config", "validate"} {
		if !strings.Contains(out, exp) {
			t.Errorf("expected help to contain %q", exp)
		}
	}
}

func TestRootCommandVersion(t *testing.T) {
	SetVersion("1.2.3")
	t.Cleanup(func() { SetVersion("dev") })

	out, _, err := execute(t, "--version")
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if out != "1.2.3\n" {
		t.Errorf("expected version output, got %q", out)
	}
}

func TestRootCommandInvalidFlagValue(t *testing.T) {
	_, _, err := execute(t, "--log-level", "loud", "validate")
	if err == nil {
		t.Fatal("expected error for invalid log level")
	}
}

func TestPlan(t *testing.T) {
	dir, cfg := setupProject(t)
	extract := filepath.Join(dir, "out")
	textfile := filepath.Join(dir, "metrics.prom")

	out, _, err := execute(t, "--config", cfg, "plan", "--diff", "--extract", extract, "--metrics-textfile", textfile)
	if err != nil {
		t.Fatal(err)
	}

	for _, exp := range []string{
		"3 entries, 1 conflicts, 1 excluded",
		"config.edn",
		"overwrite",
		"Main-Class",
		"app.core",
		"-{:env :app}",
		"+{:env :lib}",
	} {
		if !strings.Contains(out, exp) {
			t.Errorf("expected output to contain %q, got:\n%s", exp, out)
		}
	}

	bs, err := os.ReadFile(filepath.Join(extract, "config.edn"))
	if err != nil {
		t.Fatal(err)
	}
	if string(bs) != "{:env :lib}" {
		t.Errorf("extracted config.edn: %q", bs)
	}
	if _, err := os.Stat(filepath.Join(extract, "META-INF", "LIB.SF")); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("expected excluded entry to be absent, got %v", err)
	}

	metrics, err := os.ReadFile(textfile)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(metrics), "uber_layout_build_total") {
		t.Errorf("expected layout build metrics, got:\n%s", metrics)
	}
}

func TestPlanConflictError(t *testing.T) {
	_, cfg := setupProject(t)

	patch := filepath.Join(filepath.Dir(cfg), "patch.yaml")
	if err := os.WriteFile(patch, []byte("- op: replace\n  path: /conflict_handlers/0/handler\n  value: error\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	_, _, err := execute(t, "--config", cfg, "--patch", patch, "plan")
	var conflict *engine.ConflictError
	if !errors.As(err, &conflict) {
		t.Fatalf("expected conflict error, got %v", err)
	}
	if conflict.Path != "config.edn" {
		t.Errorf("unexpected conflict path %q", conflict.Path)
	}
}

func TestConfigCommand(t *testing.T) {
	dir, cfg := setupProject(t)

	cases := []struct {
		note       string
		args       []string
		expDefault string
	}{
		{note: "from configuration", expDefault: uber.Warn.String()},
		{note: "flag override", args: []string{"--default-conflict-handler", "error"}, expDefault: uber.Error.String()},
	}

	for _, tc := range cases {
		t.Run(tc.note, func(t *testing.T) {
			args := append([]string{"--config", cfg}, tc.args...)
			out, _, err := execute(t, append(args, "config")...)
			if err != nil {
				t.Fatal(err)
			}

			var act nativeConfig
			if err := yaml.Unmarshal([]byte(out), &act); err != nil {
				t.Fatalf("failed to parse output: %v\n%s", err, out)
			}

			exp := nativeConfig{
				UberFile: filepath.Join(dir, "app.jar"),
				ClassDir: filepath.Join(dir, "classes"),
				Libs:     []string{"org/lib"},
				Main:     "app.core",
				Exclude:  []string{`.*\.SF`},
				ConflictHandlers: []nativeHandler{
					{Key: `config\.edn`, Handler: "overwrite"},
					{Key: ":default", Handler: tc.expDefault},
				},
			}
			if diff := cmp.Diff(exp, act); diff != "" {
				t.Errorf("(-want,+got):\n%s", diff)
			}
		})
	}
}

func TestValidate(t *testing.T) {
	_, cfg := setupProject(t)

	out, _, err := execute(t, "--config", cfg, "validate")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "configuration is valid") {
		t.Errorf("unexpected output %q", out)
	}

	invalid := filepath.Join(t.TempDir(), "uber.yaml")
	if err := os.WriteFile(invalid, []byte("output: app.jar\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, _, err := execute(t, "--config", invalid, "validate"); err == nil || !strings.Contains(err.Error(), "class_dir") {
		t.Fatalf("expected missing class_dir error, got %v", err)
	}
}

func TestPlanTrace(t *testing.T) {
	_, cfg := setupProject(t)

	_, stderr, err := execute(t, "--config", cfg, "--log-level", "debug", "plan", "--trace")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(stderr, "Open(config.edn)") {
		t.Errorf("expected traced file access, got:\n%s", stderr)
	}
}

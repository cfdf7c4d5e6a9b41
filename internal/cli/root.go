package cli

import (
	"context"

	"github.com/spf13/cobra"
	"github.com/thediveo/enumflag/v2"

	"github.com/jvmpack/uberctl/internal/logging"
	"github.com/jvmpack/uberctl/pkg/uber"
)

var version = "dev"

type logFormat int

const (
	logFormatText logFormat = iota
	logFormatJSON
)

var logFormatIds = map[logFormat][]string{
	logFormatText: {string(logging.FormatText)},
	logFormatJSON: {string(logging.FormatJSON)},
}

var logLevelIds = map[logging.Level][]string{
	logging.Error: {"error"},
	logging.Warn:  {"warn"},
	logging.Info:  {"info"},
	logging.Debug: {"debug"},
}

var builtinIds = func() map[uber.Builtin][]string {
	ids := make(map[uber.Builtin][]string)
	for _, b := range uber.Builtins() {
		ids[b] = []string{b.String()}
	}
	return ids
}()

// globalFlags are shared by all commands.
type globalFlags struct {
	configFiles        []string
	patchFile          string
	mergeConflictError bool
	defaultHandler     uber.Builtin
	logLevel           logging.Level
	logFormat          logFormat
}

func SetVersion(v string) {
	if v == "" {
		return
	}
	version = v
}

// NewRootCommand returns the uberctl command tree.
func NewRootCommand() *cobra.Command {
	g := &globalFlags{logLevel: logging.Info}

	rootCmd := &cobra.Command{
		Use:     "uberctl",
		Version: version,
		Short:   "Plan uber archives from a class directory and a dependency basis",
		Long: `uberctl computes the content of an uber archive: the entries of the class
directory and every library of the basis, with exclusions applied and
conflicting entries resolved by the configured conflict handlers.

Configuration is read from uber.yaml unless --config is given.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
	}
	rootCmd.SetVersionTemplate("{{.Version}}\n")

	pf := rootCmd.PersistentFlags()
	pf.StringSliceVarP(&g.configFiles, "config", "c", []string{"uber.yaml"}, "configuration files or directories, merged in order")
	pf.StringVar(&g.patchFile, "patch", "", "JSON patch applied to the merged configuration")
	pf.BoolVar(&g.mergeConflictError, "merge-conflict-error", false, "fail if configuration files set a value differently")
	pf.Var(enumflag.New(&g.defaultHandler, "handler", builtinIds, enumflag.EnumCaseInsensitive),
		"default-conflict-handler", "conflict handler for paths no pattern matches, overriding the configuration")
	pf.Var(enumflag.New(&g.logLevel, "level", logLevelIds, enumflag.EnumCaseInsensitive),
		"log-level", "log level: error, warn, info or debug")
	pf.Var(enumflag.New(&g.logFormat, "format", logFormatIds, enumflag.EnumCaseInsensitive),
		"log-format", "log format: text or json")

	rootCmd.AddCommand(
		newPlanCommand(g),
		newConfigCommand(g),
		newValidateCommand(g),
	)

	return rootCmd
}

// Execute executes the root command.
func Execute() error {
	return NewRootCommand().ExecuteContext(context.Background())
}

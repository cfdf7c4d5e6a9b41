package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/jvmpack/uberctl/internal/basis"
	"github.com/jvmpack/uberctl/internal/config"
	"github.com/jvmpack/uberctl/internal/logging"
	"github.com/jvmpack/uberctl/pkg/uber"
)

func (g *globalFlags) logger(w io.Writer) *logging.Logger {
	format := logging.FormatText
	if g.logFormat == logFormatJSON {
		format = logging.FormatJSON
	}
	return logging.NewLogger(logging.Config{
		Level:  g.logLevel,
		Format: format,
		Output: w,
	})
}

// load reads the configuration and the basis it names, and builds the
// options they describe.
func (g *globalFlags) load(cmd *cobra.Command) (*config.Root, *uber.Options, error) {
	root, err := config.Load(g.configFiles, g.patchFile, g.mergeConflictError)
	if err != nil {
		return nil, nil, err
	}

	var b uber.Basis
	if root.Basis != "" {
		loaded, err := basis.Load(root.Basis)
		if err != nil {
			return nil, nil, err
		}
		b = loaded
	}

	builder := root.Builder(b)
	if cmd.Flags().Changed("default-conflict-handler") {
		builder.WithDefaultConflictHandler(g.defaultHandler)
	}

	opts, err := builder.Build()
	if err != nil {
		return nil, nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return root, opts, nil
}

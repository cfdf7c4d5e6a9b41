package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jvmpack/uberctl/pkg/engine"
	"github.com/jvmpack/uberctl/pkg/uber"
)

func newValidateCommand(g *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Check the configuration, its patterns and the basis",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			_, opts, err := g.load(cmd)
			if err != nil {
				return err
			}

			cfg, err := uber.Translate(opts)
			if err != nil {
				return err
			}

			if _, err := engine.Compile(cfg); err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), "configuration is valid")
			return nil
		},
	}
}

package cli

import (
	"github.com/goccy/go-yaml"
	"github.com/spf13/cobra"

	"github.com/jvmpack/uberctl/pkg/engine"
	"github.com/jvmpack/uberctl/pkg/uber"
)

// nativeConfig is the printable form of an engine.Config.
type nativeConfig struct {
	UberFile         string            `yaml:"uber_file"`
	ClassDir         string            `yaml:"class_dir"`
	Libs             []string          `yaml:"libs,omitempty"`
	Main             string            `yaml:"main,omitempty"`
	Manifest         map[string]string `yaml:"manifest,omitempty"`
	Exclude          []string          `yaml:"exclude,omitempty"`
	ConflictHandlers []nativeHandler   `yaml:"conflict_handlers,omitempty"`
}

type nativeHandler struct {
	Key     string `yaml:"key"`
	Handler string `yaml:"handler"`
}

func newNativeConfig(cfg *engine.Config) nativeConfig {
	n := nativeConfig{
		UberFile: cfg.UberFile,
		ClassDir: cfg.ClassDir,
		Libs:     cfg.Basis.LibNames(),
		Manifest: cfg.Manifest,
		Exclude:  cfg.Exclude,
	}
	if cfg.Main != nil {
		n.Main = cfg.Main.String()
	}
	for _, e := range cfg.ConflictHandlers {
		n.ConflictHandlers = append(n.ConflictHandlers, nativeHandler{
			Key:     e.Key.String(),
			Handler: engine.HandlerName(e.Handler),
		})
	}
	return n
}

func newConfigCommand(g *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Print the engine configuration the options translate to",
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

			bs, err := yaml.Marshal(newNativeConfig(cfg))
			if err != nil {
				return err
			}
			_, err = cmd.OutOrStdout().Write(bs)
			return err
		},
	}
}

package cli

import (
	"fmt"
	"io"
	"maps"
	"slices"
	"strings"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/jvmpack/uberctl/internal/builder"
	"github.com/jvmpack/uberctl/internal/metrics"
	"github.com/jvmpack/uberctl/pkg/uber"
)

type planFlags struct {
	diff            bool
	extract         string
	metricsTextfile string
	progress        bool
	trace           bool
}

func newPlanCommand(g *globalFlags) *cobra.Command {
	var f planFlags

	cmd := &cobra.Command{
		Use:   "plan",
		Short: "Compute the archive content without writing the archive",
		Long: `Compute the entries of the uber archive, resolve conflicting entries and
report the resolutions and manifest attributes. Library archives in the basis
are skipped; only directories are merged.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			root, opts, err := g.load(cmd)
			if err != nil {
				return err
			}

			eng := &builder.Engine{
				Logger:        g.logger(cmd.ErrOrStderr()),
				ExcludedFiles: root.ExcludedFiles,
				Diff:          f.diff,
				Trace:         f.trace,
			}
			if f.progress {
				eng.Progress = cmd.ErrOrStderr()
			}

			if err := uber.Run(cmd.Context(), eng, opts); err != nil {
				return err
			}
			l := eng.Layout()

			if err := printPlan(cmd.OutOrStdout(), opts, l, f.diff); err != nil {
				return err
			}

			if f.extract != "" {
				if err := l.Extract(f.extract); err != nil {
					return fmt.Errorf("failed to extract layout: %w", err)
				}
			}

			if f.metricsTextfile != "" {
				if err := metrics.WriteTextfile(f.metricsTextfile); err != nil {
					return fmt.Errorf("failed to write metrics: %w", err)
				}
			}

			return nil
		},
	}

	f.register(cmd.Flags())

	return cmd
}

func (f *planFlags) register(fs *pflag.FlagSet) {
	fs.BoolVar(&f.diff, "diff", false, "show a unified diff for every conflicting text entry")
	fs.StringVar(&f.extract, "extract", "", "write the archive content below `DIR`")
	fs.StringVar(&f.metricsTextfile, "metrics-textfile", "", "write Prometheus metrics to `FILE`")
	fs.BoolVar(&f.progress, "progress", false, "show progress bars on stderr")
	fs.BoolVar(&f.trace, "trace", false, "log every file read from a source (with --log-level debug)")
}

func printPlan(w io.Writer, opts *uber.Options, l *builder.Layout, diff bool) error {
	fmt.Fprintf(w, "Archive: %s\n", opts.OutputArchivePath())
	fmt.Fprintf(w, "%d entries, %d conflicts, %d excluded\n", len(l.Entries), len(l.Resolutions), len(l.Excluded))

	if len(l.Resolutions) > 0 {
		fmt.Fprintln(w)
		table := tablewriter.NewWriter(w)
		table.Header("Path", "Sources", "Key", "Handler")
		for _, r := range l.Resolutions {
			if err := table.Append(r.Path, strings.Join(r.Sources, ", "), r.Key, r.Handler); err != nil {
				return err
			}
		}
		if err := table.Render(); err != nil {
			return err
		}
	}

	fmt.Fprintln(w)
	table := tablewriter.NewWriter(w)
	table.Header("Attribute", "Value")
	for _, k := range slices.Sorted(maps.Keys(l.Manifest)) {
		if err := table.Append(k, l.Manifest[k]); err != nil {
			return err
		}
	}
	if err := table.Render(); err != nil {
		return err
	}

	if diff {
		for _, r := range l.Resolutions {
			if r.Diff != "" {
				fmt.Fprintln(w)
				fmt.Fprint(w, r.Diff)
			}
		}
	}

	return nil
}

package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/common/expfmt"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/am610/firecrown/internal/analysis"
	"github.com/am610/firecrown/internal/config"
	"github.com/am610/firecrown/internal/logger"
	"github.com/am610/firecrown/internal/mapping"
	"github.com/am610/firecrown/internal/oracle"
	"github.com/am610/firecrown/internal/output"
	"github.com/am610/firecrown/internal/version"
	"github.com/am610/firecrown/pkg/cosmology"
)

func newVersionCmd() *cobra.Command {
	var detailed bool
	cmd := &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Long:  `Display the version of firecrown.`,
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			if detailed {
				fmt.Fprintln(cmd.OutOrStdout(), version.GetDetailedVersion())
				return
			}
			fmt.Fprintln(cmd.OutOrStdout(), version.GetFormattedVersion())
		},
	}
	cmd.Flags().BoolVar(&detailed, "detailed", false, "Include build and platform details")
	return cmd
}

func newMapCmd() *cobra.Command {
	var from, to string
	cmd := &cobra.Command{
		Use:   "map <params.yaml>",
		Short: "Convert a parameter file between code conventions",
		Long: fmt.Sprintf(`Read a flat parameter file in one code's convention and print it in another's.

Frameworks: %s`, strings.Join(mapping.GetGlobalRegistry().Names(), ", ")),
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("failed to read parameters: %w", err)
			}
			var raw cosmology.Values
			if err := yaml.Unmarshal(data, &raw); err != nil {
				return fmt.Errorf("failed to parse parameters: %w", err)
			}

			out, err := mapping.GetGlobalRegistry().Convert(from, to, raw)
			if err != nil {
				return err
			}
			rendered, err := yaml.Marshal(out)
			if err != nil {
				return fmt.Errorf("failed to render parameters: %w", err)
			}
			_, err = cmd.OutOrStdout().Write(rendered)
			return err
		},
	}
	cmd.Flags().StringVar(&from, "from", (mapping.CCL{}).Name(), "Convention of the input file")
	cmd.Flags().StringVar(&to, "to", "", "Convention to print")
	_ = cmd.MarkFlagRequired("to")
	return cmd
}

func newCheckCmd() *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "check [config.yaml] [overlay.yaml...]",
		Short: "Validate a configuration by building every analysis",
		Long: `Load the configuration, layering any overlays in order, and build every
analysis: systematics, sources, reference validation and likelihood.
Without arguments the files listed in FIRECROWN_CONFIG are used.`,
		Args: cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			pipeline, doc, err := setupPipeline(args)
			if err != nil {
				return err
			}

			printer := newPrinter(cmd, asJSON)
			for _, a := range pipeline.Analyses() {
				tp, ok := a.(*analysis.TwoPoint)
				if !ok {
					printer.Heading(a.Name())
					continue
				}
				calc := tp.Calculator()
				printer.Heading(fmt.Sprintf("%s (%s)", a.Name(), analysis.ModuleTwoPoint))

				srcs := make([]string, 0, len(calc.Sources()))
				for _, s := range calc.Sources() {
					srcs = append(srcs, fmt.Sprintf("%s (%s)", s.Name(), s.Type()))
				}
				printer.Field("sources", srcs...)
				printer.Field("systematics", calc.Table().Names()...)
				printer.Field("nuisance", calc.Table().Parameters()...)

				pairs := make([]string, 0, len(calc.Pairs()))
				for _, p := range calc.Pairs() {
					pairs = append(pairs, p.String())
				}
				printer.Field("pairs", pairs...)
			}
			if len(doc.Parameters) == 0 {
				printer.Warning(fmt.Sprintf("no %q block, evaluate needs one", config.KeyParameters))
			}
			printer.Success("configuration OK")
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the report as JSON lines")
	return cmd
}

// newPrinter creates the report printer for cmd's output. Test mode keeps
// the report plain.
func newPrinter(cmd *cobra.Command, asJSON bool) *output.Printer {
	opts := []output.Option{
		output.WithWriter(cmd.OutOrStdout()),
		output.WithStyles(output.NewLipglossStyles()),
	}
	if asJSON {
		opts = append(opts, output.JSON())
	}
	if viper.GetBool("test-mode") {
		opts = append(opts, output.TestMode())
	}
	return output.NewPrinter(opts...)
}

func newEvaluateCmd() *cobra.Command {
	var (
		sections    []string
		withMetrics bool
	)
	cmd := &cobra.Command{
		Use:   "evaluate [config.yaml] [overlay.yaml...]",
		Short: "Evaluate the configured parameter point",
		Long: `Run the configuration's "parameters" block through every analysis using the
built-in stub oracle and print the resulting data block. The stub spectra are
not physical; this command checks wiring, not science. Without arguments the
files listed in FIRECROWN_CONFIG are used.`,
		Args: cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var opts []analysis.PipelineOption
			reg := prometheus.NewRegistry()
			if withMetrics {
				metrics, err := analysis.NewMetrics(reg)
				if err != nil {
					return err
				}
				opts = append(opts, analysis.WithMetrics(metrics))
			}

			pipeline, doc, err := setupPipeline(args, opts...)
			if err != nil {
				return err
			}
			if len(doc.Parameters) == 0 {
				return fmt.Errorf("configuration has no %q block", config.KeyParameters)
			}

			logger.Warn("Evaluating with the stub oracle, spectra are not physical")
			block, err := pipeline.Execute(context.Background(), doc.Parameters)
			if err != nil {
				return err
			}
			if len(sections) > 0 {
				block = block.Subset(sections...)
			}

			rendered, err := block.YAML()
			if err != nil {
				return err
			}
			if _, err := fmt.Fprint(cmd.OutOrStdout(), rendered); err != nil {
				return err
			}
			if withMetrics {
				return writeMetrics(cmd, reg)
			}
			return nil
		},
	}
	cmd.Flags().StringSliceVar(&sections, "section", nil, "Only print these data block sections")
	cmd.Flags().BoolVar(&withMetrics, "metrics", false, "Print evaluation metrics to stderr in Prometheus text format")
	return cmd
}

// writeMetrics encodes everything gathered by reg to cmd's error stream.
func writeMetrics(cmd *cobra.Command, reg *prometheus.Registry) error {
	families, err := reg.Gather()
	if err != nil {
		return fmt.Errorf("failed to gather metrics: %w", err)
	}
	enc := expfmt.NewEncoder(cmd.ErrOrStderr(), expfmt.NewFormat(expfmt.TypeTextPlain))
	for _, mf := range families {
		if err := enc.Encode(mf); err != nil {
			return fmt.Errorf("failed to encode metrics: %w", err)
		}
	}
	return nil
}

// setupPipeline loads the layered configuration and sets up every analysis
// against the stub oracle.
func setupPipeline(args []string, opts ...analysis.PipelineOption) (*analysis.Pipeline, *config.Document, error) {
	paths, err := configPaths(args)
	if err != nil {
		return nil, nil, err
	}
	doc, err := config.Load(paths...)
	if err != nil {
		return nil, nil, err
	}
	opts = append([]analysis.PipelineOption{analysis.WithTestMode(viper.GetBool("test-mode"))}, opts...)
	pipeline := analysis.NewPipeline(oracle.NewStub(), opts...)
	if err := pipeline.Setup(doc); err != nil {
		return nil, nil, err
	}
	return pipeline, doc, nil
}

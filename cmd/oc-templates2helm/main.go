package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/Masterminds/semver/v3"
	"github.com/spf13/cobra"

	"github.com/ascheman/oc-templates2helm/internal/chart"
	"github.com/ascheman/oc-templates2helm/internal/convert"
	"github.com/ascheman/oc-templates2helm/internal/diag"
	"github.com/ascheman/oc-templates2helm/internal/ui"
)

var (
	flagOut          string
	flagChartVersion string
	flagAppVersion   string
	flagDebug        bool
)

func main() {
	root := &cobra.Command{
		Use:   "oc-templates2helm [flags] TEMPLATE...",
		Short: "Convert OpenShift templates into Helm charts",
		Long: `Converts OpenShift Template files into Helm charts, one chart per input.

Template parameters become values.yaml entries, $VAR references become
{{ .Values.var }} expressions, and legacy kinds such as DeploymentConfig are
rewritten to their upstream equivalents. Optional <input>.properties and
common.properties files next to an input override parameter defaults.`,
		Args:         cobra.MinimumNArgs(1),
		SilenceUsage: true,
		PreRunE: func(cmd *cobra.Command, args []string) error {
			if _, err := semver.NewVersion(flagChartVersion); err != nil {
				return fmt.Errorf("--chart-version %q: %w", flagChartVersion, err)
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := diag.NewLogger(os.Stderr, flagDebug)
			opts := convert.Options{
				OutputDir:    flagOut,
				ChartVersion: flagChartVersion,
				AppVersion:   flagAppVersion,
				Logger:       logger,
			}

			// Inputs run strictly one after another, each file end to end.
			failed := 0
			for _, path := range args {
				dir := filepath.Join(flagOut, chart.NameForFile(path))
				if _, err := os.Stat(dir); err == nil {
					ui.Warning("%s exists, its files will be overwritten", dir)
				}
				res, err := convert.File(path, opts)
				if err != nil {
					ui.Error("%v", err)
					failed++
					continue
				}
				ui.Success("wrote %s (%d files)", res.Dir, len(res.Files))
			}
			if failed > 0 {
				return fmt.Errorf("%d of %d templates failed", failed, len(args))
			}
			return nil
		},
	}

	root.Flags().StringVarP(&flagOut, "output", "o", "charts", "output directory for the generated charts")
	root.Flags().StringVar(&flagChartVersion, "chart-version", chart.DefaultVersion, "version written to Chart.yaml")
	root.Flags().StringVar(&flagAppVersion, "app-version", chart.DefaultAppVersion, "appVersion written to Chart.yaml")
	root.Flags().BoolVar(&flagDebug, "debug", false, "enable debug logging")

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

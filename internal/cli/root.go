package cli

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/samirrijal/vertexgen/internal/pkg/logging"
)

// Execute runs the vertexgen command line and exits non-zero on failure.
func Execute() {
	cmd := newRootCmd()
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var (
		logLevel  string
		logFormat string
	)

	cmd := &cobra.Command{
		Use:          "vertexgen",
		Short:        "Sequence survey points clockwise and build the coordinate table",
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, _ []string) {
			logging.SetupWriter(cmd.ErrOrStderr(), logLevel, logFormat)
		},
	}

	cmd.PersistentFlags().StringVar(&logLevel, "log-level", "warn", "Log level: debug|info|warn|error")
	cmd.PersistentFlags().StringVar(&logFormat, "log-format", "text", "Log format: text|json")

	cmd.AddCommand(runCmd(), sampleCmd())
	return cmd
}

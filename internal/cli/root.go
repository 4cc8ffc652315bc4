package cli

import (
	"fmt"
	"io"

	"github.com/MakeNowJust/heredoc"
	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
)

// Execute runs the swagger2ts CLI.
func Execute() error {
	return NewRootCmd().Execute()
}

// NewRootCmd constructs the root command so tests can exercise the CLI easily.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "swagger2ts",
		Short: "Generate TypeScript API clients and models from Swagger/OpenAPI documents",
		Long: heredoc.Doc(`
			swagger2ts turns a Swagger 2 or OpenAPI 3 document into TypeScript client
			classes grouped by tag and folder, plus interface and enum models for the
			component schemas they reference.
		`),
		SilenceErrors: true,
		SilenceUsage:  true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	// Convert Cobra flag errors (like unknown flags) into friendly usage errors
	// that also show the command's help text.
	cmd.SetFlagErrorFunc(flagError)

	cmd.PersistentFlags().StringP("config", "c", "", "Config file path (YAML, JSON or TOML)")
	cmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose logging output")

	for _, sub := range []*cobra.Command{newGenerateCmd(), newInspectCmd(), newInitCmd()} {
		sub.SetFlagErrorFunc(flagError)
		cmd.AddCommand(sub)
	}

	return cmd
}

func flagError(c *cobra.Command, err error) error {
	return newUsageError(fmt.Sprintf("%v\n\n%s", err, c.UsageString()))
}

// newLogger returns the CLI logger: no timestamps, debug output only when
// verbose is set.
func newLogger(w io.Writer, verbose bool) *log.Logger {
	logger := log.NewWithOptions(w, log.Options{
		ReportTimestamp: false,
		Prefix:          "swagger2ts",
	})
	if verbose {
		logger.SetLevel(log.DebugLevel)
	}
	return logger
}

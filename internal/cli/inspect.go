package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/MakeNowJust/heredoc"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/mark3labs/swagger2ts/internal/transform"
)

// InspectConfig captures the options for the inspect command.
type InspectConfig struct {
	GenerateConfig
	Format string
}

var inspectRunner = runInspect

func newInspectCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "inspect",
		Short: "Print the folders, clients and models derived from a document",
		Long: heredoc.Doc(`
			Print the intermediate model the generator would render: folders with their
			client files, actions, parameters and return types, and the models each
			folder needs. Nothing is written to disk.
		`),
		Example: heredoc.Doc(`
			  swagger2ts inspect --input openapi.yaml
			  swagger2ts inspect --input openapi.yaml --format yaml --include-tags store
		`),
		RunE: func(cmd *cobra.Command, args []string) error {
			base, err := resolveGenerateConfig(cmd)
			if err != nil {
				return err
			}
			format, err := cmd.Flags().GetString("format")
			if err != nil {
				return err
			}
			cfg := &InspectConfig{GenerateConfig: *base, Format: strings.ToLower(strings.TrimSpace(format))}
			switch cfg.Format {
			case "json", "yaml":
			default:
				return newUsageError(fmt.Sprintf("unsupported --format %q (allowed: json, yaml)", format))
			}
			return inspectRunner(cmd.Context(), cfg)
		},
	}

	addSourceFlags(cmd.Flags())
	cmd.Flags().String("format", "json", "Output format (json|yaml)")

	return cmd
}

func runInspect(ctx context.Context, cfg *InspectConfig) error {
	logger := newLogger(os.Stderr, cfg.Verbose)
	res, err := buildResult(ctx, &cfg.GenerateConfig, logger)
	if err != nil {
		return err
	}
	return writeResult(os.Stdout, res, cfg.Format)
}

func writeResult(w io.Writer, res *transform.Result, format string) error {
	if format == "yaml" {
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(res); err != nil {
			return fmt.Errorf("inspect: encode yaml: %w", err)
		}
		return enc.Close()
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(res); err != nil {
		return fmt.Errorf("inspect: encode json: %w", err)
	}
	return nil
}

package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/MakeNowJust/heredoc"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

const defaultConfigFile = "swagger2ts.yaml"

// InitConfig captures the options for the init command.
type InitConfig struct {
	OutputPath string
	Force      bool
	Verbose    bool
}

var initRunner = runInit

func newInitCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Scaffold a sample swagger2ts configuration file",
		Long: heredoc.Doc(`
			Scaffold a commented swagger2ts configuration file that documents the
			available options. A path ending in .toml produces a TOML file, anything
			else YAML.
		`),
		RunE: func(cmd *cobra.Command, args []string) error {
			out, err := cmd.Flags().GetString("out")
			if err != nil {
				return err
			}
			force, err := cmd.Flags().GetBool("force")
			if err != nil {
				return err
			}
			verbose, err := cmd.Flags().GetBool("verbose")
			if err != nil {
				return err
			}
			return initRunner(cmd.Context(), &InitConfig{
				OutputPath: out,
				Force:      force,
				Verbose:    verbose,
			})
		},
	}

	cmd.Flags().String("out", defaultConfigFile, "Where to write the sample config file")
	cmd.Flags().Bool("force", false, "Overwrite the target file if it already exists")

	return cmd
}

func runInit(ctx context.Context, cfg *InitConfig) error {
	_ = ctx
	logger := newLogger(os.Stderr, cfg.Verbose)

	out := strings.TrimSpace(cfg.OutputPath)
	if out == "" {
		out = defaultConfigFile
	}
	absPath, err := filepath.Abs(out)
	if err != nil {
		return fmt.Errorf("init: resolve output path: %w", err)
	}

	if st, err := os.Stat(absPath); err == nil && !cfg.Force {
		if st.Mode().IsRegular() {
			return newUsageError(fmt.Sprintf("init: %q already exists (use --force to overwrite)", absPath))
		}
	}

	if err := os.MkdirAll(filepath.Dir(absPath), 0o755); err != nil {
		return newUsageError(fmt.Sprintf("init: cannot create parent directory: %v", err))
	}

	content := sampleConfigYAML
	if strings.EqualFold(filepath.Ext(absPath), ".toml") {
		content = sampleConfigTOML
	}

	// Atomic write via temp + rename
	tmp := filepath.Join(filepath.Dir(absPath), "."+filepath.Base(absPath)+".tmp-"+uuid.NewString())
	if err := os.WriteFile(tmp, []byte(content), 0o644); err != nil {
		return newUsageError(fmt.Sprintf("init: cannot write temp file: %v\nHint: choose a different --out or check directory permissions.", err))
	}
	if err := os.Rename(tmp, absPath); err != nil {
		_ = os.Remove(tmp)
		return newUsageError(fmt.Sprintf("init: cannot place file at %s: %v", absPath, err))
	}
	logger.Debug("wrote config", "path", absPath, "bytes", len(content))
	fmt.Fprintf(os.Stdout, "Wrote sample config to %s\n", absPath)
	return nil
}

var sampleConfigYAML = heredoc.Doc(`
	# swagger2ts configuration (YAML)
	# All fields are optional. Command-line flags override config values.

	# Path or URL to the Swagger/OpenAPI document (http/https or local file).
	# input: ./openapi.yaml

	# Output directory for IHttpClientFactory.ts and the per-folder clients/models.
	# out: ./api

	# Only include operations with these tags (comma-separated or list).
	# includeTags: [pet, store]

	# Exclude operations with these tags (comma-separated or list).
	# excludeTags: [internal]

	# Only include these HTTP methods.
	# methods: [get, post]

	# Only include paths matching one of these regular expressions.
	# paths: ["^/pet"]

	# Fail when two operations derive the same method name in one client.
	# strict: false

	# Validate the document structure before generating.
	# validate: false

	# Preview planned outputs without writing files.
	# dryRun: false

	# Compare generated files with the output directory and fail on drift.
	# check: false

	# Write into a non-empty output directory.
	# force: false

	# Enable verbose logging.
	# verbose: false
`)

var sampleConfigTOML = heredoc.Doc(`
	# swagger2ts configuration (TOML)
	# All fields are optional. Command-line flags override config values.

	# input = "./openapi.yaml"
	# out = "./api"
	# includeTags = ["pet", "store"]
	# excludeTags = ["internal"]
	# methods = ["get", "post"]
	# paths = ["^/pet"]
	# strict = false
	# validate = false
	# dryRun = false
	# check = false
	# force = false
	# verbose = false
`)

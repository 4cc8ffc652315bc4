package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/MakeNowJust/heredoc"
	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/mark3labs/swagger2ts/internal/emitter/tsemitter"
	"github.com/mark3labs/swagger2ts/internal/spec"
	"github.com/mark3labs/swagger2ts/internal/transform"
)

const defaultOutDir = "api"

// GenerateConfig captures all inputs that influence the generate command after
// merging defaults, config file values, and CLI overrides.
type GenerateConfig struct {
	Input       string
	Out         string
	IncludeTags []string
	ExcludeTags []string
	Methods     []string
	Paths       []string
	ConfigPath  string
	DryRun      bool
	Force       bool
	Check       bool
	Strict      bool
	Validate    bool
	Verbose     bool
}

func defaultGenerateConfig() GenerateConfig {
	return GenerateConfig{Out: defaultOutDir}
}

var generateRunner = runGenerate

func newGenerateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate TypeScript clients and models from an OpenAPI/Swagger document",
		Long: heredoc.Doc(`
			Generate TypeScript clients and models from an OpenAPI/Swagger document.

			Every operation becomes an async method on a client class named after its
			first tag. Clients and the models they use are written per folder, where
			the folder is the first segment of the operation path:

			  <out>/IHttpClientFactory.ts
			  <out>/<folder>/clients/<Tag>Client.ts
			  <out>/<folder>/models/<Model>.ts

			Options can be provided via flags, config files, or defaults.
		`),
		Example: heredoc.Doc(`
			  swagger2ts generate --input openapi.yaml --out ./src/api
			  swagger2ts generate --input https://petstore.swagger.io/v2/swagger.json --include-tags pet
			  swagger2ts --config swagger2ts.yaml generate --check
		`),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := resolveGenerateConfig(cmd)
			if err != nil {
				return err
			}
			return generateRunner(cmd.Context(), cfg)
		},
	}

	flags := cmd.Flags()
	addSourceFlags(flags)
	flags.String("out", "", "Output directory (defaults to ./"+defaultOutDir+")")
	flags.Bool("dry-run", false, "Preview planned outputs without writing files")
	flags.Bool("force", false, "Write into a non-empty output directory")
	flags.Bool("check", false, "Compare generated files with the output directory and fail on drift")

	return cmd
}

// addSourceFlags registers the flags shared by generate and inspect: where the
// document comes from and which operations are kept.
func addSourceFlags(flags *pflag.FlagSet) {
	flags.String("input", "", "Path or URL to the Swagger/OpenAPI document")
	flags.StringSlice("include-tags", nil, "Only include operations with these tags")
	flags.StringSlice("exclude-tags", nil, "Exclude operations with these tags")
	flags.StringSlice("methods", nil, "Only include these HTTP methods (e.g. get,post)")
	flags.StringArray("paths", nil, "Only include paths matching this regular expression (repeatable)")
	flags.Bool("strict", false, "Fail when two operations derive the same method name in one client")
	flags.Bool("validate", false, "Validate the document structure before generating")
}

func resolveGenerateConfig(cmd *cobra.Command) (*GenerateConfig, error) {
	cfg := defaultGenerateConfig()

	configPath, err := cmd.Flags().GetString("config")
	if err != nil {
		return nil, err
	}
	configPath = strings.TrimSpace(configPath)
	if configPath != "" {
		cfg.ConfigPath = configPath
		if err := applyGenerateConfigFromFile(&cfg, configPath); err != nil {
			return nil, err
		}
	}

	if err := applyGenerateFlagOverrides(cmd.Flags(), &cfg); err != nil {
		return nil, err
	}

	cfg.normalize()
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// applyGenerateFlagOverrides copies explicitly set flags over cfg. Flags the
// command does not define are never reported as changed.
func applyGenerateFlagOverrides(flags *pflag.FlagSet, cfg *GenerateConfig) error {
	for name, dst := range map[string]*string{"input": &cfg.Input, "out": &cfg.Out} {
		if !flags.Changed(name) {
			continue
		}
		value, err := flags.GetString(name)
		if err != nil {
			return err
		}
		*dst = strings.TrimSpace(value)
	}
	for name, dst := range map[string]*[]string{
		"include-tags": &cfg.IncludeTags,
		"exclude-tags": &cfg.ExcludeTags,
		"methods":      &cfg.Methods,
	} {
		if !flags.Changed(name) {
			continue
		}
		value, err := flags.GetStringSlice(name)
		if err != nil {
			return err
		}
		*dst = value
	}
	if flags.Changed("paths") {
		value, err := flags.GetStringArray("paths")
		if err != nil {
			return err
		}
		cfg.Paths = value
	}
	for name, dst := range map[string]*bool{
		"dry-run":  &cfg.DryRun,
		"force":    &cfg.Force,
		"check":    &cfg.Check,
		"strict":   &cfg.Strict,
		"validate": &cfg.Validate,
		"verbose":  &cfg.Verbose,
	} {
		if !flags.Changed(name) {
			continue
		}
		value, err := flags.GetBool(name)
		if err != nil {
			return err
		}
		*dst = value
	}
	return nil
}

func (c *GenerateConfig) normalize() {
	c.Input = strings.TrimSpace(c.Input)
	c.Out = strings.TrimSpace(c.Out)
	if c.Out == "" {
		c.Out = defaultOutDir
	}
	c.IncludeTags = sanitizeTags(c.IncludeTags)
	c.ExcludeTags = sanitizeTags(c.ExcludeTags)
	c.Methods = sanitizeTags(c.Methods)
	for i, m := range c.Methods {
		c.Methods[i] = strings.ToLower(m)
	}
	c.Paths = sanitizeTags(c.Paths)
}

func (c *GenerateConfig) validate() error {
	if c.Input == "" {
		return newUsageError("--input is required (set via flag or config file)")
	}

	for _, m := range c.Methods {
		if _, ok := spec.ParseHttpMethod(m); !ok {
			return newUsageError(fmt.Sprintf("unsupported method %q (allowed: get, post, put, patch, delete, head, options, trace)", m))
		}
	}
	for _, p := range c.Paths {
		if _, err := regexp.Compile(p); err != nil {
			return newUsageError(fmt.Sprintf("invalid path pattern %q: %v", p, err))
		}
	}

	overlap := intersect(c.IncludeTags, c.ExcludeTags)
	if len(overlap) > 0 {
		return newUsageError(fmt.Sprintf("include/exclude tags overlap: %s", strings.Join(overlap, ", ")))
	}

	if c.Check && c.DryRun {
		return newUsageError("--check and --dry-run cannot be combined")
	}

	return nil
}

// transformOptions turns the filter settings into engine options.
func (c *GenerateConfig) transformOptions(logger *log.Logger) []transform.Option {
	methods := make([]spec.HttpMethod, 0, len(c.Methods))
	for _, m := range c.Methods {
		if method, ok := spec.ParseHttpMethod(m); ok {
			methods = append(methods, method)
		}
	}
	return []transform.Option{
		transform.WithIncludeTags(c.IncludeTags),
		transform.WithExcludeTags(c.ExcludeTags),
		transform.WithMethods(methods),
		transform.WithPathPatterns(c.Paths),
		transform.WithStrictNames(c.Strict),
		transform.WithLogger(logger),
	}
}

// buildResult loads the document and runs the transformation pass.
func buildResult(ctx context.Context, cfg *GenerateConfig, logger *log.Logger) (*transform.Result, error) {
	doc, err := spec.Load(ctx, cfg.Input, spec.WithValidation(cfg.Validate))
	if err != nil {
		return nil, describeError(err)
	}
	logger.Debug("loaded document", "input", cfg.Input, "version", doc.Version(), "paths", len(doc.Paths.Items))

	res, err := transform.Transform(ctx, doc, cfg.transformOptions(logger)...)
	if err != nil {
		return nil, describeError(err)
	}
	for _, c := range res.Collisions {
		logger.Warn("duplicate action name",
			"action", c.Action,
			"client", c.Folder+"/"+c.ClientFile,
			"first", c.First,
			"second", c.Second)
	}
	return res, nil
}

func runGenerate(ctx context.Context, cfg *GenerateConfig) error {
	start := time.Now()
	logger := newLogger(os.Stderr, cfg.Verbose)

	res, err := buildResult(ctx, cfg, logger)
	if err != nil {
		return err
	}

	// Absolute only for display; the emitter resolves the path itself.
	absOut := cfg.Out
	if ap, err := filepath.Abs(cfg.Out); err == nil {
		absOut = ap
	}

	out, err := tsemitter.Emit(ctx, res, tsemitter.Options{
		OutDir: cfg.Out,
		Force:  cfg.Force,
		DryRun: cfg.DryRun,
		Check:  cfg.Check,
		Logger: logger,
	})
	if errors.Is(err, tsemitter.ErrOutOfDate) {
		printDrift(os.Stdout, absOut, out.Drift)
		return err
	}
	if err != nil {
		return wrapOutputError(err, absOut)
	}

	if cfg.DryRun {
		paths := make([]string, 0, len(out.Planned))
		for _, p := range out.Planned {
			paths = append(paths, p.RelPath)
		}
		printPlan(absOut, len(out.Planned), paths)
	}
	logger.Info("Done", "files", len(out.Planned), "elapsed", time.Since(start).Round(time.Millisecond))
	return nil
}

func printPlan(outDir string, count int, relPaths []string) {
	fmt.Fprintf(os.Stdout, "Planned writes to %s (%d files):\n", outDir, count)
	for _, p := range relPaths {
		fmt.Fprintf(os.Stdout, "- %s\n", p)
	}
}

func printDrift(w io.Writer, outDir string, drift []tsemitter.Drift) {
	fmt.Fprintf(w, "Out of date in %s (%d files):\n", outDir, len(drift))
	for _, d := range drift {
		state := "changed"
		if d.Missing {
			state = "missing"
		}
		fmt.Fprintf(w, "- %s (%s)\n", d.RelPath, state)
	}
	for _, d := range drift {
		fmt.Fprint(w, "\n"+d.Diff)
	}
}

func wrapOutputError(err error, outDir string) error {
	// Provide clearer guidance for common FS failures.
	msg := err.Error()
	lower := strings.ToLower(msg)
	if strings.Contains(lower, "permission") || strings.Contains(lower, "read-only") || strings.Contains(lower, "output directory") || strings.Contains(lower, "output path") {
		return newUsageError(fmt.Sprintf("output error for %s: %s\nHint: choose a different --out or use --force when appropriate.", outDir, msg))
	}
	return err
}

func sanitizeTags(tags []string) []string {
	if len(tags) == 0 {
		return nil
	}
	seen := make(map[string]struct{}, len(tags))
	result := make([]string, 0, len(tags))
	for _, tag := range tags {
		trimmed := strings.TrimSpace(tag)
		if trimmed == "" {
			continue
		}
		if _, exists := seen[trimmed]; exists {
			continue
		}
		seen[trimmed] = struct{}{}
		result = append(result, trimmed)
	}
	if len(result) == 0 {
		return nil
	}
	return result
}

func intersect(a, b []string) []string {
	if len(a) == 0 || len(b) == 0 {
		return nil
	}
	set := make(map[string]struct{}, len(a))
	for _, item := range a {
		set[item] = struct{}{}
	}
	var result []string
	for _, item := range b {
		if _, ok := set[item]; ok {
			result = append(result, item)
		}
	}
	return result
}

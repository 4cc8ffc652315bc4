// Package tsemitter renders a transformation Result as TypeScript client
// classes, model interfaces and enums, and writes them to disk.
package tsemitter

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/aymanbagabas/go-udiff"
	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/mark3labs/swagger2ts/internal/transform"
)

// ErrOutOfDate is returned in check mode when the files on disk differ from
// what would be generated.
var ErrOutOfDate = errors.New("generated files are out of date")

// Options controls how the emitter writes a project.
type Options struct {
	OutDir string // required; target directory
	Force  bool   // write into a non-empty directory
	DryRun bool   // plan only
	Check  bool   // compare with disk, never write
	Logger *log.Logger
}

// PlannedFile describes a file the emitter intends to write.
type PlannedFile struct {
	RelPath string      `json:"relPath"`
	Size    int         `json:"size"`
	Mode    os.FileMode `json:"mode"`
}

// Drift is a planned file whose content on disk differs.
type Drift struct {
	RelPath string `json:"relPath"`
	Missing bool   `json:"missing"`
	Diff    string `json:"diff"`
}

// Result returns the planned files and, in check mode, the drifted ones.
type Result struct {
	Planned []PlannedFile
	Drift   []Drift
}

// Emit renders res and, unless DryRun or Check is set, writes it below
// OutDir. In check mode a non-empty Drift comes with ErrOutOfDate.
func Emit(ctx context.Context, res *transform.Result, opts Options) (*Result, error) {
	if res == nil {
		return nil, fmt.Errorf("tsemitter: nil result")
	}
	if strings.TrimSpace(opts.OutDir) == "" {
		return nil, fmt.Errorf("tsemitter: OutDir is required")
	}
	logger := opts.Logger
	if logger == nil {
		logger = log.New(io.Discard)
	}

	files, err := Render(res)
	if err != nil {
		return nil, err
	}

	// Plan in deterministic order
	rels := make([]string, 0, len(files))
	for rel := range files {
		rels = append(rels, rel)
	}
	sort.Strings(rels)

	out := &Result{Planned: make([]PlannedFile, 0, len(rels))}
	for _, rel := range rels {
		out.Planned = append(out.Planned, PlannedFile{RelPath: rel, Size: len(files[rel]), Mode: 0o644})
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	switch {
	case opts.Check:
		drift, err := checkFiles(opts.OutDir, rels, files)
		if err != nil {
			return nil, err
		}
		out.Drift = drift
		if len(drift) > 0 {
			return out, fmt.Errorf("%w: %d of %d files differ", ErrOutOfDate, len(drift), len(rels))
		}
	case opts.DryRun:
		logger.Debug("dry run", "files", len(rels))
	default:
		if err := writeFiles(ctx, opts.OutDir, rels, files, opts.Force, logger); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func checkFiles(outDir string, rels []string, files map[string][]byte) ([]Drift, error) {
	abs, err := filepath.Abs(outDir)
	if err != nil {
		return nil, fmt.Errorf("tsemitter: resolve output directory: %w", err)
	}
	var drift []Drift
	for _, rel := range rels {
		want := files[rel]
		have, err := os.ReadFile(filepath.Join(abs, filepath.FromSlash(rel)))
		switch {
		case errors.Is(err, os.ErrNotExist):
			drift = append(drift, Drift{
				RelPath: rel,
				Missing: true,
				Diff:    udiff.Unified("/dev/null", rel, "", string(want)),
			})
			continue
		case err != nil:
			return nil, fmt.Errorf("tsemitter: read %s: %w", rel, err)
		}
		if bytes.Equal(have, want) {
			continue
		}
		drift = append(drift, Drift{
			RelPath: rel,
			Diff:    udiff.Unified(rel, rel, string(have), string(want)),
		})
	}
	return drift, nil
}

func writeFiles(ctx context.Context, outDir string, rels []string, files map[string][]byte, force bool, logger *log.Logger) error {
	abs, err := filepath.Abs(outDir)
	if err != nil {
		return fmt.Errorf("tsemitter: resolve output directory: %w", err)
	}
	if err := validateOutputDirectory(abs, force); err != nil {
		return err
	}
	for _, rel := range rels {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := writeFileAtomic(abs, rel, files[rel]); err != nil {
			return fmt.Errorf("tsemitter: write file %s: %w", rel, err)
		}
		logger.Debug("wrote", "file", rel, "bytes", len(files[rel]))
	}
	return nil
}

// validateOutputDirectory accepts a missing or empty directory, or any
// directory when force is set.
func validateOutputDirectory(absPath string, force bool) error {
	stat, err := os.Stat(absPath)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("tsemitter: cannot access output directory %q: %w", absPath, err)
	}
	if !stat.IsDir() {
		return fmt.Errorf("tsemitter: output path %q is not a directory", absPath)
	}
	if force {
		return nil
	}
	entries, err := os.ReadDir(absPath)
	if err != nil {
		return fmt.Errorf("tsemitter: cannot read output directory %q: %w", absPath, err)
	}
	if len(entries) > 0 {
		return fmt.Errorf("tsemitter: output directory %q is not empty (use --force to overwrite)", absPath)
	}
	return nil
}

// writeFileAtomic writes through a temp file in the target directory and
// renames it into place.
func writeFileAtomic(baseDir, rel string, content []byte) error {
	fullPath := filepath.Join(baseDir, filepath.FromSlash(rel))
	dir := filepath.Dir(fullPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("ensure directory %s: %w", dir, err)
	}

	tmpPath := filepath.Join(dir, "."+filepath.Base(fullPath)+".tmp-"+uuid.NewString())
	if err := os.WriteFile(tmpPath, content, 0o644); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := os.Rename(tmpPath, fullPath); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("atomic rename: %w", err)
	}
	return nil
}

// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package render wraps the tools that turn a projected SVG into the final
// figure: a primary converter (Inkscape or the builtin rasterizer) and a
// secondary PNG-to-JPEG converter (ImageMagick or the builtin encoder).
package render

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"

	"github.com/dmitry-t/inkscape-export-layers/pkg/types"
)

// PrimaryRequest describes one SVG conversion.
type PrimaryRequest struct {
	// Input is the projected SVG file.
	Input string
	// Output is the file to write.
	Output string
	// Format is svg (plain SVG), png, or pdf.
	Format types.Format
	// FitToDrawing crops to the ink bounds instead of the page.
	FitToDrawing bool
	// DPI is the raster resolution.
	DPI int
}

// PrimaryConverter renders a projected SVG into the requested format.
type PrimaryConverter interface {
	// Name identifies the backend in log output.
	Name() string

	// Convert writes req.Output from req.Input. It blocks until the
	// conversion finishes or ctx is cancelled.
	Convert(ctx context.Context, req PrimaryRequest) error
}

// SecondaryRequest describes one PNG-to-JPEG conversion.
type SecondaryRequest struct {
	Input   string
	Output  string
	Quality int
}

// SecondaryConverter turns a raster image into a JPEG.
type SecondaryConverter interface {
	Name() string
	Convert(ctx context.Context, req SecondaryRequest) error
}

// executor abstracts command execution for testing.
type executor interface {
	LookPath(file string) (string, error)
	Output(ctx context.Context, name string, args ...string) ([]byte, error)
	Run(ctx context.Context, name string, args ...string) error
}

// osExecutor is the production executor backed by os/exec.
type osExecutor struct{}

func (o *osExecutor) LookPath(file string) (string, error) {
	return exec.LookPath(file)
}

func (o *osExecutor) Output(ctx context.Context, name string, args ...string) ([]byte, error) {
	return exec.CommandContext(ctx, name, args...).Output()
}

// Run executes the command and folds its stderr into the returned error.
func (o *osExecutor) Run(ctx context.Context, name string, args ...string) error {
	cmd := exec.CommandContext(ctx, name, args...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return fmt.Errorf("%w: %s", err, msg)
		}
		return err
	}
	return nil
}

var defaultExec executor = &osExecutor{}

// NewPrimary returns the primary converter selected by cfg.
func NewPrimary(ctx context.Context, cfg types.ExportConfig) (PrimaryConverter, error) {
	switch cfg.Backend {
	case types.BackendBuiltin:
		return &BuiltinRasterizer{}, nil
	case types.BackendInkscape, "":
		return NewInkscapeConverter(ctx, cfg.InkscapeBin)
	default:
		return nil, fmt.Errorf("unknown backend %q", cfg.Backend)
	}
}

// NewSecondary returns the JPEG converter selected by cfg.
func NewSecondary(cfg types.ExportConfig) (SecondaryConverter, error) {
	switch cfg.JPEGBackend {
	case types.JPEGBuiltin:
		return &BuiltinJPEGEncoder{}, nil
	case types.JPEGImageMagick, "":
		return NewMagickConverter(cfg.MagickBin)
	default:
		return nil, fmt.Errorf("unknown jpeg backend %q", cfg.JPEGBackend)
	}
}

// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package render

import (
	"context"
	"fmt"
	"regexp"
	"strconv"

	"github.com/dmitry-t/inkscape-export-layers/pkg/types"
)

const binInkscape = "inkscape"

// CLIStyle selects the command-line dialect of the Inkscape binary.
type CLIStyle int

const (
	// StyleModern is the Inkscape 1.x interface (--export-type, --export-filename).
	StyleModern CLIStyle = iota
	// StyleLegacy is the Inkscape 0.92 interface (--export-png, --export-pdf).
	StyleLegacy
)

func (s CLIStyle) String() string {
	if s == StyleLegacy {
		return "0.92"
	}
	return "1.x"
}

// InkscapeConverter runs the inkscape binary once per conversion.
type InkscapeConverter struct {
	bin   string
	style CLIStyle
	exec  executor
}

// NewInkscapeConverter locates bin (default "inkscape") and detects its
// command-line dialect from --version.
func NewInkscapeConverter(ctx context.Context, bin string) (*InkscapeConverter, error) {
	return newInkscapeConverter(ctx, bin, defaultExec)
}

func newInkscapeConverter(ctx context.Context, bin string, exec executor) (*InkscapeConverter, error) {
	if bin == "" {
		bin = binInkscape
	}
	path, err := exec.LookPath(bin)
	if err != nil {
		return nil, fmt.Errorf("inkscape not found (%s): %w", bin, err)
	}
	out, err := exec.Output(ctx, path, "--version")
	if err != nil {
		return nil, fmt.Errorf("running %s --version: %w", path, err)
	}
	return &InkscapeConverter{bin: path, style: detectStyle(string(out)), exec: exec}, nil
}

func (c *InkscapeConverter) Name() string {
	return "inkscape " + c.style.String()
}

// Style returns the detected command-line dialect.
func (c *InkscapeConverter) Style() CLIStyle { return c.style }

func (c *InkscapeConverter) Convert(ctx context.Context, req PrimaryRequest) error {
	args, err := inkscapeArgs(c.style, req)
	if err != nil {
		return err
	}
	if err := c.exec.Run(ctx, c.bin, args...); err != nil {
		return fmt.Errorf("inkscape %s export: %w", req.Format, err)
	}
	return nil
}

var versionRE = regexp.MustCompile(`Inkscape\s+(\d+)\.(\d+)`)

// detectStyle parses "Inkscape 1.2.2 (b0a8486541, 2022-12-01)". Unknown
// output is treated as a modern release.
func detectStyle(version string) CLIStyle {
	m := versionRE.FindStringSubmatch(version)
	if m == nil {
		return StyleModern
	}
	major, _ := strconv.Atoi(m[1])
	if major < 1 {
		return StyleLegacy
	}
	return StyleModern
}

func inkscapeArgs(style CLIStyle, req PrimaryRequest) ([]string, error) {
	area := "--export-area-page"
	if req.FitToDrawing {
		area = "--export-area-drawing"
	}
	dpi := strconv.Itoa(req.DPI)

	if style == StyleLegacy {
		args := []string{"--without-gui", area, "--export-dpi", dpi}
		switch req.Format {
		case types.FormatPNG:
			args = append(args, "--export-png", req.Output)
		case types.FormatSVG:
			args = append(args, "--export-plain-svg", req.Output, "--vacuum-defs")
		case types.FormatPDF:
			args = append(args, "--export-pdf", req.Output)
		default:
			return nil, fmt.Errorf("inkscape cannot export %s directly", req.Format)
		}
		return append(args, req.Input), nil
	}

	args := []string{area, "--export-dpi=" + dpi}
	switch req.Format {
	case types.FormatPNG:
		args = append(args, "--export-type=png")
	case types.FormatSVG:
		args = append(args, "--export-type=svg", "--export-plain-svg", "--vacuum-defs")
	case types.FormatPDF:
		args = append(args, "--export-type=pdf")
	default:
		return nil, fmt.Errorf("inkscape cannot export %s directly", req.Format)
	}
	args = append(args, "--export-filename="+req.Output, req.Input)
	return args, nil
}

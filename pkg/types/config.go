package types

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Format selects the type of the exported files.
type Format string

const (
	FormatSVG  Format = "svg"
	FormatPNG  Format = "png"
	FormatPDF  Format = "pdf"
	FormatJPEG Format = "jpeg"
)

// Ext returns the file extension for the format, including the dot.
func (f Format) Ext() string { return "." + string(f) }

// HiddenMode controls what happens to layers outside an export's visible set.
type HiddenMode string

const (
	// HiddenRemove deletes the layer from the derived document.
	HiddenRemove HiddenMode = "remove"
	// HiddenHide keeps the layer but sets display:none.
	HiddenHide HiddenMode = "hide"
)

// LayerOrder selects the order in which classified layers are scanned.
type LayerOrder string

const (
	// OrderDocument is SVG paint order: the bottom-most layer comes first.
	OrderDocument LayerOrder = "document"
	// OrderPanel is the order of the Layers panel: the top-most layer comes first.
	OrderPanel LayerOrder = "panel"
)

// Backend identifies the tool that renders the projected SVG.
type Backend string

const (
	BackendInkscape Backend = "inkscape"
	BackendBuiltin  Backend = "builtin"
)

// JPEGBackend identifies the tool that turns a PNG into a JPEG.
type JPEGBackend string

const (
	JPEGImageMagick JPEGBackend = "imagemagick"
	JPEGBuiltin     JPEGBackend = "builtin"
)

const (
	DefaultDPI         = 96
	DefaultJPEGQuality = 90
	DefaultOutputDir   = "~/"
)

// ExportConfig holds every setting consumed by the resolver and the export
// pipeline. It is built once by the CLI and passed by value.
type ExportConfig struct {
	// OutputDir is the directory receiving the exported files. A leading ~
	// is expanded to the user's home directory.
	OutputDir string `json:"output_dir" yaml:"output_dir"`

	// Prefix is prepended to every final file name.
	Prefix string `json:"prefix" yaml:"prefix"`

	Format Format `json:"format" yaml:"format"`

	// FitContents crops output to the drawing's ink bounds instead of the page.
	FitContents bool `json:"fit_contents" yaml:"fit_contents"`

	// DPI is the raster export resolution (default 96).
	DPI int `json:"dpi" yaml:"dpi"`

	// Enumerate prefixes each name with its 1-based layer position ("002_").
	Enumerate bool `json:"enumerate" yaml:"enumerate"`

	// ShowLayersBelow also shows the non-fixed layers below each export layer.
	ShowLayersBelow bool `json:"show_layers_below" yaml:"show_layers_below"`

	// VisibleOnly exports only layers that are visible in the source drawing.
	VisibleOnly bool `json:"visible_only" yaml:"visible_only"`

	HiddenMode HiddenMode `json:"hidden_mode" yaml:"hidden_mode"`

	LayerOrder LayerOrder `json:"layer_order" yaml:"layer_order"`

	// JPEGQuality is passed to the PNG-to-JPEG step (default 90).
	JPEGQuality int `json:"jpeg_quality" yaml:"jpeg_quality"`

	Backend     Backend     `json:"backend" yaml:"backend"`
	JPEGBackend JPEGBackend `json:"jpeg_backend" yaml:"jpeg_backend"`

	// InkscapeBin and MagickBin override the executables looked up on PATH.
	InkscapeBin string `json:"inkscape_bin,omitempty" yaml:"inkscape_bin,omitempty"`
	MagickBin   string `json:"magick_bin,omitempty" yaml:"magick_bin,omitempty"`

	// HistoryDB is the SQLite export ledger path. Empty disables the ledger.
	HistoryDB string `json:"history_db,omitempty" yaml:"history_db,omitempty"`

	// Manifest is a YAML file listing the written files. Empty disables it.
	Manifest string `json:"manifest,omitempty" yaml:"manifest,omitempty"`
}

// DefaultExportConfig returns the configuration used when nothing is set.
func DefaultExportConfig() ExportConfig {
	return ExportConfig{
		OutputDir:   DefaultOutputDir,
		Format:      FormatPNG,
		DPI:         DefaultDPI,
		HiddenMode:  HiddenRemove,
		LayerOrder:  OrderDocument,
		JPEGQuality: DefaultJPEGQuality,
		Backend:     BackendInkscape,
		JPEGBackend: JPEGImageMagick,
	}
}

// Validate reports the first invalid setting.
func (c ExportConfig) Validate() error {
	switch c.Format {
	case FormatSVG, FormatPNG, FormatPDF, FormatJPEG:
	default:
		return fmt.Errorf("unknown format %q: want svg, png, pdf, or jpeg", c.Format)
	}
	switch c.HiddenMode {
	case HiddenRemove, HiddenHide:
	default:
		return fmt.Errorf("unknown hidden mode %q: want remove or hide", c.HiddenMode)
	}
	switch c.LayerOrder {
	case OrderDocument, OrderPanel:
	default:
		return fmt.Errorf("unknown layer order %q: want document or panel", c.LayerOrder)
	}
	switch c.Backend {
	case BackendInkscape, BackendBuiltin:
	default:
		return fmt.Errorf("unknown backend %q: want inkscape or builtin", c.Backend)
	}
	switch c.JPEGBackend {
	case JPEGImageMagick, JPEGBuiltin:
	default:
		return fmt.Errorf("unknown jpeg backend %q: want imagemagick or builtin", c.JPEGBackend)
	}
	if c.DPI <= 0 {
		return fmt.Errorf("dpi must be positive, got %d", c.DPI)
	}
	if c.JPEGQuality < 1 || c.JPEGQuality > 100 {
		return fmt.Errorf("jpeg quality must be in 1..100, got %d", c.JPEGQuality)
	}
	if c.OutputDir == "" {
		return fmt.Errorf("output directory is required")
	}
	return nil
}

// ResolvedOutputDir returns OutputDir with a leading ~ expanded.
func (c ExportConfig) ResolvedOutputDir() (string, error) {
	return ExpandHome(c.OutputDir)
}

// ExpandHome replaces a leading "~" or "~/" in path with the home directory.
func ExpandHome(path string) (string, error) {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("expanding %s: %w", path, err)
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~")), nil
}

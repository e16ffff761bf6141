// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package render

import (
	"context"
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"math"
	"os"

	"github.com/srwiley/oksvg"
	"github.com/srwiley/rasterx"
	"golang.org/x/image/draw"

	"github.com/dmitry-t/inkscape-export-layers/pkg/types"
)

const (
	// cssPixelsPerInch is the SVG user unit resolution.
	cssPixelsPerInch = 96

	// maxPixels bounds the raster size so a large dpi fails instead of
	// exhausting memory.
	maxPixels = 1 << 28
)

// BuiltinRasterizer renders PNG files in-process. It draws the document's
// page (its viewBox) and does not honor display:none, so hidden layers must
// be removed from the projection beforehand.
type BuiltinRasterizer struct{}

func (b *BuiltinRasterizer) Name() string { return "builtin" }

func (b *BuiltinRasterizer) Convert(ctx context.Context, req PrimaryRequest) error {
	if req.Format != types.FormatPNG {
		return fmt.Errorf("builtin backend cannot export %s: only png is supported", req.Format)
	}
	if req.FitToDrawing {
		return fmt.Errorf("builtin backend cannot fit to drawing bounds")
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	img, err := rasterize(req.Input, req.DPI)
	if err != nil {
		return err
	}
	return writeImage(req.Output, func(f *os.File) error { return png.Encode(f, img) })
}

func rasterize(path string, dpi int) (*image.RGBA, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	icon, err := oksvg.ReadIconStream(f, oksvg.IgnoreErrorMode)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	scale := float64(dpi) / cssPixelsPerInch
	fw := math.Ceil(icon.ViewBox.W * scale)
	fh := math.Ceil(icon.ViewBox.H * scale)
	if !(fw > 0 && fh > 0) {
		return nil, fmt.Errorf("%s has an empty viewBox", path)
	}
	if fw*fh > maxPixels {
		return nil, fmt.Errorf("%s at %d dpi needs %.0fx%.0f pixels, more than the limit of %d", path, dpi, fw, fh, maxPixels)
	}
	w, h := int(fw), int(fh)

	icon.SetTarget(0, 0, float64(w), float64(h))
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	scanner := rasterx.NewScannerGV(w, h, img, img.Bounds())
	icon.Draw(rasterx.NewDasher(w, h, scanner), 1.0)
	return img, nil
}

// BuiltinJPEGEncoder converts PNG to JPEG in-process, flattening
// transparency onto a white background.
type BuiltinJPEGEncoder struct{}

func (b *BuiltinJPEGEncoder) Name() string { return "builtin-jpeg" }

func (b *BuiltinJPEGEncoder) Convert(ctx context.Context, req SecondaryRequest) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	in, err := os.Open(req.Input)
	if err != nil {
		return fmt.Errorf("opening %s: %w", req.Input, err)
	}
	src, err := png.Decode(in)
	in.Close()
	if err != nil {
		return fmt.Errorf("decoding %s: %w", req.Input, err)
	}

	bounds := src.Bounds()
	flat := image.NewRGBA(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))
	draw.Draw(flat, flat.Bounds(), image.White, image.Point{}, draw.Src)
	draw.Draw(flat, flat.Bounds(), src, bounds.Min, draw.Over)

	opts := &jpeg.Options{Quality: req.Quality}
	return writeImage(req.Output, func(f *os.File) error { return jpeg.Encode(f, flat, opts) })
}

func writeImage(path string, encode func(*os.File) error) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	if err := encode(f); err != nil {
		f.Close()
		return fmt.Errorf("encoding %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("closing %s: %w", path, err)
	}
	return nil
}

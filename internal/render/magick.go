// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package render

import (
	"context"
	"fmt"
	"strconv"
)

const (
	binMagick  = "magick"
	binConvert = "convert"
)

// MagickConverter converts PNG to JPEG with ImageMagick.
type MagickConverter struct {
	bin  string
	exec executor
}

// NewMagickConverter locates bin, or "magick" then "convert" when bin is empty.
func NewMagickConverter(bin string) (*MagickConverter, error) {
	return newMagickConverter(bin, defaultExec)
}

func newMagickConverter(bin string, exec executor) (*MagickConverter, error) {
	candidates := []string{binMagick, binConvert}
	if bin != "" {
		candidates = []string{bin}
	}
	for _, c := range candidates {
		if path, err := exec.LookPath(c); err == nil {
			return &MagickConverter{bin: path, exec: exec}, nil
		}
	}
	return nil, fmt.Errorf("is ImageMagick installed? none of %v found on PATH", candidates)
}

func (m *MagickConverter) Name() string { return "imagemagick" }

func (m *MagickConverter) Convert(ctx context.Context, req SecondaryRequest) error {
	args := []string{req.Input, "-quality", strconv.Itoa(req.Quality), req.Output}
	if err := m.exec.Run(ctx, m.bin, args...); err != nil {
		return fmt.Errorf("is ImageMagick installed? converting %s to JPEG: %w", req.Input, err)
	}
	return nil
}

// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package export

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.yaml.in/yaml/v3"

	"github.com/dmitry-t/inkscape-export-layers/pkg/types"
)

// Manifest lists the figures produced from one drawing.
type Manifest struct {
	Source      string               `yaml:"source"`
	Format      types.Format         `yaml:"format"`
	OutputDir   string               `yaml:"output_dir"`
	GeneratedAt time.Time            `yaml:"generated_at"`
	Aborted     bool                 `yaml:"aborted,omitempty"`
	Files       []types.ExportedFile `yaml:"files"`
}

// NewManifest describes the outcome of a run over source.
func (p *Pipeline) NewManifest(source string, summary Summary) Manifest {
	return Manifest{
		Source:      source,
		Format:      p.cfg.Format,
		OutputDir:   p.outputDir,
		GeneratedAt: time.Now().UTC(),
		Aborted:     summary.Aborted(),
		Files:       summary.Written,
	}
}

// WriteManifest writes m as YAML to path, creating parent directories.
func WriteManifest(path string, m Manifest) error {
	data, err := yaml.Marshal(&m)
	if err != nil {
		return fmt.Errorf("marshaling manifest: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return &FilesystemError{Op: "creating manifest directory", Path: filepath.Dir(path), Err: err}
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return &FilesystemError{Op: "writing manifest", Path: path, Err: err}
	}
	return nil
}

// ReadManifest loads a manifest written by WriteManifest.
func ReadManifest(path string) (Manifest, error) {
	var m Manifest
	data, err := os.ReadFile(path)
	if err != nil {
		return m, fmt.Errorf("reading manifest %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &m); err != nil {
		return m, fmt.Errorf("parsing manifest %s: %w", path, err)
	}
	return m, nil
}

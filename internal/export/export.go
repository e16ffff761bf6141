// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package export runs resolved export jobs through projection and the
// external converters, writing one figure per job.
//
// Jobs run one at a time. The first failure aborts the batch; figures
// written before it stay on disk. Intermediate files live in a temporary
// directory that is removed when Run returns.
package export

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/dmitry-t/inkscape-export-layers/internal/render"
	"github.com/dmitry-t/inkscape-export-layers/internal/svgdoc"
	"github.com/dmitry-t/inkscape-export-layers/pkg/types"
)

const tempPattern = "tmp-inkscape"

// Logger receives progress messages. A nil Logger means silent operation.
type Logger interface {
	Infof(format string, args ...any)
	Warnf(format string, args ...any)
	Errorf(format string, args ...any)
}

// Summary holds the outcome of a batch.
type Summary struct {
	Written []types.ExportedFile

	// Failed is 1 when the batch was aborted by a failing job.
	Failed int

	// NotAttempted counts the jobs after the failing one.
	NotAttempted int
}

// Total returns the number of jobs in the batch.
func (s Summary) Total() int {
	return len(s.Written) + s.Failed + s.NotAttempted
}

// Aborted reports whether a job failed.
func (s Summary) Aborted() bool {
	return s.Failed > 0
}

// Pipeline turns export jobs into files.
type Pipeline struct {
	cfg       types.ExportConfig
	outputDir string
	primary   render.PrimaryConverter
	secondary render.SecondaryConverter
	out       io.Writer
	log       Logger

	mkdirTemp func(dir, pattern string) (string, error)
	removeAll func(path string) error
}

// New returns a pipeline for cfg. secondary is required only for jpeg
// output. Per-job progress is written to w.
func New(cfg types.ExportConfig, primary render.PrimaryConverter, secondary render.SecondaryConverter, w io.Writer, log Logger) (*Pipeline, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if primary == nil {
		return nil, fmt.Errorf("no primary converter configured")
	}
	if cfg.Format == types.FormatJPEG && secondary == nil {
		return nil, fmt.Errorf("jpeg output needs a secondary converter")
	}
	dir, err := cfg.ResolvedOutputDir()
	if err != nil {
		return nil, err
	}
	if w == nil {
		w = io.Discard
	}
	return &Pipeline{
		cfg:       cfg,
		outputDir: dir,
		primary:   primary,
		secondary: secondary,
		out:       w,
		log:       log,
		mkdirTemp: os.MkdirTemp,
		removeAll: os.RemoveAll,
	}, nil
}

// OutputDir returns the resolved output directory.
func (p *Pipeline) OutputDir() string { return p.outputDir }

// FinalPath returns where the figure of job is written.
func (p *Pipeline) FinalPath(job types.ExportJob) string {
	return filepath.Join(p.outputDir, p.cfg.Prefix+job.OutputName+p.cfg.Format.Ext())
}

// Run exports every job in order. It stops at the first failure and
// returns it; the summary lists the figures written so far.
func (p *Pipeline) Run(ctx context.Context, doc *svgdoc.Document, jobs []types.ExportJob) (Summary, error) {
	var summary Summary

	if err := os.MkdirAll(p.outputDir, 0o755); err != nil {
		return summary, &FilesystemError{Op: "creating output directory", Path: p.outputDir, Err: err}
	}

	tmp, err := p.mkdirTemp("", tempPattern)
	if err != nil {
		return summary, &FilesystemError{Op: "creating temporary directory", Path: os.TempDir(), Err: err}
	}
	defer func() {
		if err := p.removeAll(tmp); err != nil {
			p.warnf("could not remove temporary directory %s: %v", tmp, err)
		}
	}()

	p.infof("exporting %d figure(s) as %s with %s", len(jobs), p.cfg.Format, p.primary.Name())

	for i, job := range jobs {
		if err := ctx.Err(); err != nil {
			summary.NotAttempted = len(jobs) - i
			return summary, err
		}

		path, err := p.runJob(ctx, doc, job, tmp)
		if err != nil {
			fmt.Fprintf(p.out, "failed:   %s (%v)\n", job.OutputName, err)
			summary.Failed = 1
			summary.NotAttempted = len(jobs) - i - 1
			fmt.Fprintf(p.out, "\nExport aborted: %d written, 1 failed, %d not attempted (total: %d)\n",
				len(summary.Written), summary.NotAttempted, summary.Total())
			return summary, err
		}

		summary.Written = append(summary.Written, types.ExportedFile{
			Name:   job.OutputName,
			Path:   path,
			Layers: job.VisibleIDs.Sorted(),
		})
		fmt.Fprintf(p.out, "exported: %s -> %s\n", job.OutputName, path)
	}

	fmt.Fprintf(p.out, "\nExport summary: %d written (total: %d)\n", len(summary.Written), summary.Total())
	return summary, nil
}

// runJob projects the document, converts it, and returns the final path.
func (p *Pipeline) runJob(ctx context.Context, doc *svgdoc.Document, job types.ExportJob, tmp string) (string, error) {
	intermediate := filepath.Join(tmp, job.OutputName+".svg")
	if err := doc.Project(job.VisibleIDs, p.hiddenMode()).WriteFile(intermediate); err != nil {
		return "", &FilesystemError{Op: "writing intermediate", Path: intermediate, Err: err}
	}

	final := p.FinalPath(job)
	req := render.PrimaryRequest{
		Input:        intermediate,
		Output:       final,
		Format:       p.cfg.Format,
		FitToDrawing: p.cfg.FitContents,
		DPI:          p.cfg.DPI,
	}
	if p.cfg.Format == types.FormatJPEG {
		req.Format = types.FormatPNG
		req.Output = filepath.Join(tmp, job.OutputName+types.FormatPNG.Ext())
	}

	if err := p.primary.Convert(ctx, req); err != nil {
		return "", &ConversionError{Stage: StagePrimary, Input: req.Input, Output: req.Output, Err: err}
	}

	if p.cfg.Format != types.FormatJPEG {
		return final, nil
	}

	sreq := render.SecondaryRequest{Input: req.Output, Output: final, Quality: p.cfg.JPEGQuality}
	if err := p.secondary.Convert(ctx, sreq); err != nil {
		return "", &ConversionError{Stage: StageSecondary, Input: sreq.Input, Output: sreq.Output, Err: err}
	}
	return final, nil
}

// hiddenMode returns how layers outside a job are treated. Plain SVG
// output never keeps them.
func (p *Pipeline) hiddenMode() types.HiddenMode {
	if p.cfg.Format == types.FormatSVG {
		return types.HiddenRemove
	}
	return p.cfg.HiddenMode
}

func (p *Pipeline) infof(f string, a ...any) {
	if p.log != nil {
		p.log.Infof(f, a...)
	}
}

func (p *Pipeline) warnf(f string, a ...any) {
	if p.log != nil {
		p.log.Warnf(f, a...)
	}
}

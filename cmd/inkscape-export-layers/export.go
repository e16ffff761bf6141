package main

import (
	"context"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/dmitry-t/inkscape-export-layers/internal/export"
	"github.com/dmitry-t/inkscape-export-layers/internal/history"
	"github.com/dmitry-t/inkscape-export-layers/internal/layers"
	"github.com/dmitry-t/inkscape-export-layers/internal/render"
	"github.com/dmitry-t/inkscape-export-layers/internal/svgdoc"
	"github.com/dmitry-t/inkscape-export-layers/pkg/types"
)

var exportCmd = &cobra.Command{
	Use:   "export <drawing.svg | ->",
	Short: "Render one figure per exported layer",
	Long: `Export renders every figure of the drawing into the output directory.
Each figure is a copy of the drawing with only its layers kept, converted by
Inkscape (or the builtin rasterizer) and, for jpeg, by ImageMagick.

The first failing conversion stops the batch. Figures written before it are
kept. Pass "-" to read the drawing from standard input.`,
	Args: cobra.ExactArgs(1),
	RunE: runExport,
}

func runExport(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	log := newLogger()
	source := args[0]

	cfg, err := exportConfig()
	if err != nil {
		return err
	}
	if cfg.Backend == types.BackendBuiltin && cfg.HiddenMode == types.HiddenHide {
		log.Warnf("the builtin backend ignores display:none; hidden layers will be removed")
		cfg.HiddenMode = types.HiddenRemove
	}

	doc, err := loadDocument(source, cmd.InOrStdin())
	if err != nil {
		return err
	}
	plan := layers.BuildPlan(doc, vocabulary(), cfg)
	reportWarnings(log, plan.Warnings)
	if len(plan.Jobs) == 0 {
		return nil
	}

	primary, err := render.NewPrimary(ctx, cfg)
	if err != nil {
		return err
	}
	var secondary render.SecondaryConverter
	if cfg.Format == types.FormatJPEG {
		if secondary, err = render.NewSecondary(cfg); err != nil {
			return err
		}
	}

	p, err := export.New(cfg, primary, secondary, os.Stdout, log)
	if err != nil {
		return err
	}

	started := time.Now()
	summary, runErr := p.Run(ctx, doc, plan.Jobs)

	if cfg.Manifest != "" {
		if err := export.WriteManifest(cfg.Manifest, p.NewManifest(source, summary)); err != nil {
			log.Warnf("%v", err)
		}
	}
	if cfg.HistoryDB != "" {
		if err := recordRun(context.WithoutCancel(ctx), cfg, p, doc, source, started, summary, runErr); err != nil {
			log.Warnf("recording history: %v", err)
		}
	}
	return runErr
}

func recordRun(ctx context.Context, cfg types.ExportConfig, p *export.Pipeline, doc *svgdoc.Document, source string, started time.Time, summary export.Summary, runErr error) error {
	path, err := types.ExpandHome(cfg.HistoryDB)
	if err != nil {
		return err
	}
	store, err := history.Open(path)
	if err != nil {
		return err
	}
	defer store.Close()

	sum, err := sourceDigest(doc, source)
	if err != nil {
		return err
	}
	run := history.Run{
		Source:       source,
		SourceSHA256: sum,
		Format:       cfg.Format,
		OutputDir:    p.OutputDir(),
		StartedAt:    started,
		FinishedAt:   time.Now(),
		Status:       history.StatusDone,
		Files:        summary.Written,
	}
	if runErr != nil {
		run.Status = history.StatusAborted
		run.Error = runErr.Error()
	}
	_, err = store.Record(ctx, run)
	return err
}

// sourceDigest hashes the drawing file, or the parsed bytes when it came
// from stdin.
func sourceDigest(doc *svgdoc.Document, source string) (string, error) {
	if source == stdinPath {
		return history.HashBytes(doc.Bytes()), nil
	}
	return history.HashFile(source)
}

func init() {
	exportCmd.Flags().StringP("output-dir", "o", types.DefaultOutputDir, "directory for the exported figures")
	exportCmd.Flags().StringP("file-type", "f", string(types.FormatPNG), "exported file type: svg, png, pdf, or jpeg")
	exportCmd.Flags().String("prefix", "", "prefix for every exported file name")
	exportCmd.Flags().Bool("fit-contents", false, "fit output to the drawing's content bounds instead of the page")
	exportCmd.Flags().Int("dpi", types.DefaultDPI, "resolution of raster exports")
	exportCmd.Flags().String("hidden-mode", string(types.HiddenRemove), "what to do with layers outside a figure: remove or hide")
	exportCmd.Flags().Int("jpeg-quality", types.DefaultJPEGQuality, "quality of jpeg exports (1-100)")
	exportCmd.Flags().String("backend", string(types.BackendInkscape), "renderer: inkscape or builtin")
	exportCmd.Flags().String("jpeg-backend", string(types.JPEGImageMagick), "png to jpeg converter: imagemagick or builtin")
	exportCmd.Flags().String("inkscape", "", "path to the inkscape binary")
	exportCmd.Flags().String("magick", "", "path to the ImageMagick binary")
	exportCmd.Flags().String("history-db", "", "record runs in this SQLite ledger")
	exportCmd.Flags().String("manifest", "", "write a YAML manifest of the exported files")

	bindFlags(exportCmd.Flags(), map[string]string{
		"output_dir":   "output-dir",
		"format":       "file-type",
		"prefix":       "prefix",
		"fit_contents": "fit-contents",
		"dpi":          "dpi",
		"hidden_mode":  "hidden-mode",
		"jpeg_quality": "jpeg-quality",
		"backend":      "backend",
		"jpeg_backend": "jpeg-backend",
		"inkscape_bin": "inkscape",
		"magick_bin":   "magick",
		"history_db":   "history-db",
		"manifest":     "manifest",
	})

	rootCmd.AddCommand(exportCmd)
}

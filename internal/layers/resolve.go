// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package layers

import (
	"fmt"
	"strings"

	"github.com/dmitry-t/inkscape-export-layers/internal/svgdoc"
	"github.com/dmitry-t/inkscape-export-layers/pkg/types"
)

// ResolveOptions are the settings that affect export-set resolution.
type ResolveOptions struct {
	// ShowLayersBelow adds every non-fixed layer scanned before the trigger.
	ShowLayersBelow bool
	// VisibleOnly stops layers hidden in the source from triggering a job.
	VisibleOnly bool
	// Enumerate prefixes names with the trigger's 1-based position.
	Enumerate bool
}

// OptionsFrom extracts the resolver settings from cfg.
func OptionsFrom(cfg types.ExportConfig) ResolveOptions {
	return ResolveOptions{
		ShowLayersBelow: cfg.ShowLayersBelow,
		VisibleOnly:     cfg.VisibleOnly,
		Enumerate:       cfg.Enumerate,
	}
}

// Resolve computes one export job per export-tagged group, in input order.
//
// A job shows every fixed group, its trigger, and, with ShowLayersBelow,
// every non-fixed group that precedes the trigger. Groups after the trigger
// are shown only when fixed. VisibleOnly filters triggers but not members.
// Enumeration numbers come from the trigger's position among all groups.
func Resolve(groups []types.Group, opts ResolveOptions) []types.ExportJob {
	var jobs []types.ExportJob
	for pos, g := range groups {
		if opts.VisibleOnly && !g.Visible {
			continue
		}
		if g.Tag != types.TagExport {
			continue
		}

		visible := types.NewIDSet()
		above := false
		for _, other := range groups {
			switch {
			case other.Tag == types.TagFixed:
				visible.Add(other.ID)
			case other.ID == g.ID:
				visible.Add(g.ID)
				above = true
			case !above && opts.ShowLayersBelow:
				visible.Add(other.ID)
			}
		}

		jobs = append(jobs, types.ExportJob{
			TriggerID:  g.ID,
			VisibleIDs: visible,
			// The name can differ from the stripped label: path separators
			// and NUL are replaced so a label cannot escape the output
			// directory, and an empty name falls back to the layer id.
			OutputName: outputName(g, pos, opts.Enumerate),
		})
	}
	return jobs
}

func outputName(g types.Group, pos int, enumerate bool) string {
	name := fileSafe(g.Name)
	if name == "" {
		name = fileSafe(g.ID)
	}
	if enumerate {
		return fmt.Sprintf("%03d_%s", pos+1, name)
	}
	return name
}

var unsafeName = strings.NewReplacer("/", "_", "\\", "_", "\x00", "")

// fileSafe keeps a layer name from escaping the output directory.
func fileSafe(name string) string {
	name = unsafeName.Replace(name)
	if name == "." || name == ".." {
		return strings.Repeat("_", len(name))
	}
	return name
}

// Plan is the classified and resolved view of a drawing.
type Plan struct {
	Groups   []types.Group     `json:"groups" yaml:"groups"`
	Jobs     []types.ExportJob `json:"jobs" yaml:"jobs"`
	Warnings []Warning         `json:"warnings,omitempty" yaml:"warnings,omitempty"`
}

// BuildPlan classifies the drawing's layers, orders them per cfg, and
// resolves the export jobs. A drawing without export jobs yields a
// WarnNoExports warning.
func BuildPlan(doc *svgdoc.Document, vocab TagVocabulary, cfg types.ExportConfig) Plan {
	groups, warnings := Classify(doc.Layers(), vocab)
	groups = Ordered(groups, cfg.LayerOrder)
	jobs := Resolve(groups, OptionsFrom(cfg))
	if len(jobs) == 0 {
		warnings = append(warnings, Warning{
			Kind:    WarnNoExports,
			Message: "no layers to export: tag layers with [export] or [e]",
		})
	}
	return Plan{Groups: groups, Jobs: jobs, Warnings: warnings}
}

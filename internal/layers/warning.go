// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package layers

// WarningKind identifies a non-fatal classification finding.
type WarningKind string

const (
	// WarnNestedTag marks a tagged layer that is not a top-level layer.
	WarnNestedTag WarningKind = "nested-tag"
	// WarnMissingID marks a tagged top-level layer without an id attribute.
	WarnMissingID WarningKind = "missing-id"
	// WarnNoExports is reported when a drawing yields no export jobs.
	WarnNoExports WarningKind = "no-exports"
)

// Warning is reported to the caller; it never stops a run.
type Warning struct {
	Kind    WarningKind `json:"kind" yaml:"kind"`
	LayerID string      `json:"layer_id,omitempty" yaml:"layer_id,omitempty"`
	Message string      `json:"message" yaml:"message"`
}

func (w Warning) String() string {
	return string(w.Kind) + ": " + w.Message
}

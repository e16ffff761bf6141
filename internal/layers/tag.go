// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package layers classifies the layers of a drawing by their label tags and
// resolves which layers are shown together in each exported figure.
package layers

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"

	"github.com/dmitry-t/inkscape-export-layers/internal/svgdoc"
	"github.com/dmitry-t/inkscape-export-layers/pkg/types"
)

// TagVocabulary lists the label prefixes recognized for each tag. Prefixes
// are matched case-insensitively.
type TagVocabulary struct {
	Fixed  []string `json:"fixed" yaml:"fixed"`
	Export []string `json:"export" yaml:"export"`
}

// DefaultVocabulary returns the long and short spellings of both tags.
func DefaultVocabulary() TagVocabulary {
	return TagVocabulary{
		Fixed:  []string{"[fixed]", "[f]"},
		Export: []string{"[export]", "[e]"},
	}
}

// Match returns the tag of label and the label with the matched prefix and
// surrounding whitespace removed. Labels without a recognized prefix return
// TagNone and the label unchanged.
func (v TagVocabulary) Match(label string) (types.Tag, string) {
	for _, p := range v.Fixed {
		if rest, ok := cutPrefixFold(label, p); ok {
			return types.TagFixed, cleanName(rest)
		}
	}
	for _, p := range v.Export {
		if rest, ok := cutPrefixFold(label, p); ok {
			return types.TagExport, cleanName(rest)
		}
	}
	return types.TagNone, label
}

// cutPrefixFold is strings.CutPrefix with Unicode case folding.
func cutPrefixFold(s, prefix string) (string, bool) {
	if prefix == "" {
		return s, false
	}
	fold := cases.Fold()
	want := fold.String(prefix)
	n := utf8.RuneCountInString(prefix)

	i := 0
	for j := 0; j < n; j++ {
		if i >= len(s) {
			return s, false
		}
		_, size := utf8.DecodeRuneInString(s[i:])
		i += size
	}
	if fold.String(s[:i]) != want {
		return s, false
	}
	return s[i:], true
}

func cleanName(s string) string {
	return norm.NFC.String(strings.TrimSpace(s))
}

// Classify turns the top-level layers of a drawing into tagged groups, in
// the order given. Untagged and unlabeled layers are dropped. Tagged layers
// nested inside other layers are reported as warnings and otherwise ignored.
func Classify(in []svgdoc.Layer, vocab TagVocabulary) ([]types.Group, []Warning) {
	var (
		groups   []types.Group
		warnings []Warning
	)
	for _, l := range in {
		if !l.HasLabel {
			continue
		}
		tag, name := vocab.Match(l.Label)
		if tag == types.TagNone {
			continue
		}
		if !l.TopLevel {
			warnings = append(warnings, Warning{
				Kind:    WarnNestedTag,
				LayerID: l.ID,
				Message: fmt.Sprintf("layer %q is nested inside another layer; its %s tag is ignored", l.Label, tag),
			})
			continue
		}
		if l.ID == "" {
			warnings = append(warnings, Warning{
				Kind:    WarnMissingID,
				Message: fmt.Sprintf("layer %q has no id and is skipped", l.Label),
			})
			continue
		}
		groups = append(groups, types.Group{
			ID:      l.ID,
			Label:   l.Label,
			Name:    name,
			Tag:     tag,
			Visible: l.Visible,
		})
	}
	return groups, warnings
}

// Ordered returns groups in the requested scan order. Classify yields
// document order; OrderPanel reverses it.
func Ordered(groups []types.Group, order types.LayerOrder) []types.Group {
	out := make([]types.Group, len(groups))
	copy(out, groups)
	if order == types.OrderPanel {
		for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
			out[i], out[j] = out[j], out[i]
		}
	}
	return out
}

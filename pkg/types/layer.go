// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import (
	"encoding/json"
	"sort"
)

// Tag classifies a top-level layer by the prefix of its label.
type Tag string

const (
	TagNone   Tag = "none"
	TagFixed  Tag = "fixed"
	TagExport Tag = "export"
)

// Group is a classified top-level layer of the source drawing.
type Group struct {
	// ID is the layer's id attribute, unique within the document.
	ID string `json:"id" yaml:"id"`

	// Label is the raw inkscape:label text, including the tag prefix.
	Label string `json:"label" yaml:"label"`

	// Name is the label with the tag prefix stripped and whitespace trimmed.
	Name string `json:"name" yaml:"name"`

	Tag Tag `json:"tag" yaml:"tag"`

	// Visible reports whether the layer is displayed in the source document.
	Visible bool `json:"visible" yaml:"visible"`
}

// IDSet is a set of layer ids.
type IDSet map[string]struct{}

// NewIDSet returns a set holding ids.
func NewIDSet(ids ...string) IDSet {
	s := make(IDSet, len(ids))
	for _, id := range ids {
		s[id] = struct{}{}
	}
	return s
}

// Add inserts id into the set.
func (s IDSet) Add(id string) { s[id] = struct{}{} }

// Has reports whether id is in the set.
func (s IDSet) Has(id string) bool {
	_, ok := s[id]
	return ok
}

// Sorted returns the ids in lexical order.
func (s IDSet) Sorted() []string {
	ids := make([]string, 0, len(s))
	for id := range s {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// MarshalYAML writes the set as a sorted sequence.
func (s IDSet) MarshalYAML() (any, error) {
	return s.Sorted(), nil
}

// UnmarshalYAML reads the set from a sequence of ids.
func (s *IDSet) UnmarshalYAML(unmarshal func(any) error) error {
	var ids []string
	if err := unmarshal(&ids); err != nil {
		return err
	}
	*s = NewIDSet(ids...)
	return nil
}

// MarshalJSON writes the set as a sorted array.
func (s IDSet) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.Sorted())
}

// ExportJob describes one exported figure: the layers shown together and
// the base name of the output file.
type ExportJob struct {
	// TriggerID is the id of the export layer that produced this job.
	TriggerID string `json:"trigger_id" yaml:"trigger_id"`

	VisibleIDs IDSet `json:"visible_ids" yaml:"visible_ids"`

	// OutputName is the file base name, without prefix or extension.
	OutputName string `json:"output_name" yaml:"output_name"`
}

// ExportedFile is one figure written to the output directory.
type ExportedFile struct {
	Name string `json:"name" yaml:"name"`
	Path string `json:"path" yaml:"path"`

	// Layers are the ids shown in the figure, sorted.
	Layers []string `json:"layers" yaml:"layers"`
}

// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package layers

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitry-t/inkscape-export-layers/internal/svgdoc"
	"github.com/dmitry-t/inkscape-export-layers/pkg/types"
)

func TestVocabularyMatch(t *testing.T) {
	v := DefaultVocabulary()
	tests := []struct {
		label    string
		wantTag  types.Tag
		wantName string
	}{
		{"[fixed] background", types.TagFixed, "background"},
		{"[FIXED]background", types.TagFixed, "background"},
		{"[f]   grid  ", types.TagFixed, "grid"},
		{"[export] cat", types.TagExport, "cat"},
		{"[Export] Big Cat", types.TagExport, "Big Cat"},
		{"[e] dog", types.TagExport, "dog"},
		{"[E]dog", types.TagExport, "dog"},
		{"[export]", types.TagExport, ""},
		{"notes", types.TagNone, "notes"},
		{" [export] leading space", types.TagNone, " [export] leading space"},
		{"[fix] typo", types.TagNone, "[fix] typo"},
		{"[e", types.TagNone, "[e"},
		{"", types.TagNone, ""},
	}
	for _, tt := range tests {
		t.Run(tt.label, func(t *testing.T) {
			tag, name := v.Match(tt.label)
			assert.Equal(t, tt.wantTag, tag)
			assert.Equal(t, tt.wantName, name)
		})
	}
}

func TestVocabularyCustom(t *testing.T) {
	v := TagVocabulary{Fixed: []string{"(always)"}, Export: []string{"(fig)"}}

	tag, name := v.Match("(FIG) Überblick")
	assert.Equal(t, types.TagExport, tag)
	assert.Equal(t, "Überblick", name)

	tag, _ = v.Match("[export] cat")
	assert.Equal(t, types.TagNone, tag)
}

func TestClassify(t *testing.T) {
	in := []svgdoc.Layer{
		{Index: 0, ID: "g1", Label: "[fixed] background", HasLabel: true, Visible: true, TopLevel: true},
		{Index: 1, ID: "g2", Label: "[export] cat", HasLabel: true, Visible: false, TopLevel: true},
		{Index: 2, ID: "g3", Label: "[e] dog", HasLabel: true, Visible: true, TopLevel: true},
		{Index: 3, ID: "g4", Label: "[f] collar", HasLabel: true, Visible: true, Depth: 1},
		{Index: 4, ID: "g5", Label: "notes", HasLabel: true, Visible: true, TopLevel: true},
		{Index: 5, ID: "g6", TopLevel: true},
		{Index: 6, Label: "[e] anonymous", HasLabel: true, TopLevel: true},
	}

	groups, warnings := Classify(in, DefaultVocabulary())

	want := []types.Group{
		{ID: "g1", Label: "[fixed] background", Name: "background", Tag: types.TagFixed, Visible: true},
		{ID: "g2", Label: "[export] cat", Name: "cat", Tag: types.TagExport, Visible: false},
		{ID: "g3", Label: "[e] dog", Name: "dog", Tag: types.TagExport, Visible: true},
	}
	assert.Equal(t, want, groups)

	require.Len(t, warnings, 2)
	assert.Equal(t, WarnNestedTag, warnings[0].Kind)
	assert.Equal(t, "g4", warnings[0].LayerID)
	assert.Equal(t, WarnMissingID, warnings[1].Kind)
	assert.Contains(t, warnings[1].String(), "missing-id")
}

func TestOrdered(t *testing.T) {
	groups := []types.Group{{ID: "a"}, {ID: "b"}, {ID: "c"}}

	assert.Equal(t, groups, Ordered(groups, types.OrderDocument))

	panel := Ordered(groups, types.OrderPanel)
	assert.Equal(t, []types.Group{{ID: "c"}, {ID: "b"}, {ID: "a"}}, panel)
	assert.Equal(t, "a", groups[0].ID, "input must not be reordered")
}

func fixed(id, name string) types.Group {
	return types.Group{ID: id, Label: "[fixed] " + name, Name: name, Tag: types.TagFixed, Visible: true}
}

func export(id, name string) types.Group {
	return types.Group{ID: id, Label: "[export] " + name, Name: name, Tag: types.TagExport, Visible: true}
}

func hidden(g types.Group) types.Group {
	g.Visible = false
	return g
}

func TestResolve(t *testing.T) {
	tests := []struct {
		name   string
		groups []types.Group
		opts   ResolveOptions
		want   []types.ExportJob
	}{
		{
			name: "fixed plus trigger",
			groups: []types.Group{
				{ID: "g1", Label: "[fixed] background", Name: "background", Tag: types.TagFixed, Visible: true},
				{ID: "g2", Label: "[export] cat", Name: "cat", Tag: types.TagExport, Visible: true},
				{ID: "g3", Label: "[e] dog", Name: "dog", Tag: types.TagExport, Visible: true},
			},
			want: []types.ExportJob{
				{TriggerID: "g2", VisibleIDs: types.NewIDSet("g1", "g2"), OutputName: "cat"},
				{TriggerID: "g3", VisibleIDs: types.NewIDSet("g1", "g3"), OutputName: "dog"},
			},
		},
		{
			name:   "enumeration counts every classified group",
			groups: []types.Group{fixed("bg", "bg"), export("a", "a"), export("b", "b")},
			opts:   ResolveOptions{Enumerate: true},
			want: []types.ExportJob{
				{TriggerID: "a", VisibleIDs: types.NewIDSet("bg", "a"), OutputName: "002_a"},
				{TriggerID: "b", VisibleIDs: types.NewIDSet("bg", "b"), OutputName: "003_b"},
			},
		},
		{
			name: "show layers below",
			groups: []types.Group{
				export("e1", "one"),
				fixed("f1", "frame"),
				export("e2", "two"),
				export("e3", "three"),
				fixed("f2", "legend"),
			},
			opts: ResolveOptions{ShowLayersBelow: true},
			want: []types.ExportJob{
				{TriggerID: "e1", VisibleIDs: types.NewIDSet("e1", "f1", "f2"), OutputName: "one"},
				{TriggerID: "e2", VisibleIDs: types.NewIDSet("e1", "f1", "e2", "f2"), OutputName: "two"},
				{TriggerID: "e3", VisibleIDs: types.NewIDSet("e1", "f1", "e2", "e3", "f2"), OutputName: "three"},
			},
		},
		{
			name: "visible only filters triggers but not members",
			groups: []types.Group{
				fixed("f1", "bg"),
				hidden(export("e1", "one")),
				export("e2", "two"),
			},
			opts: ResolveOptions{VisibleOnly: true, ShowLayersBelow: true, Enumerate: true},
			want: []types.ExportJob{
				{TriggerID: "e2", VisibleIDs: types.NewIDSet("f1", "e1", "e2"), OutputName: "003_two"},
			},
		},
		{
			name:   "hidden fixed group is still shown",
			groups: []types.Group{hidden(fixed("f1", "bg")), export("e1", "one")},
			opts:   ResolveOptions{VisibleOnly: true},
			want: []types.ExportJob{
				{TriggerID: "e1", VisibleIDs: types.NewIDSet("f1", "e1"), OutputName: "one"},
			},
		},
		{
			name: "untagged groups are inert but counted",
			groups: []types.Group{
				{ID: "u1", Name: "notes", Tag: types.TagNone, Visible: true},
				export("e1", "one"),
			},
			opts: ResolveOptions{ShowLayersBelow: true, Enumerate: true},
			want: []types.ExportJob{
				{TriggerID: "e1", VisibleIDs: types.NewIDSet("u1", "e1"), OutputName: "002_one"},
			},
		},
		{
			name:   "only fixed groups",
			groups: []types.Group{fixed("f1", "bg"), fixed("f2", "fg")},
			want:   nil,
		},
		{
			name:   "no groups",
			groups: nil,
			want:   nil,
		},
		{
			name:   "duplicate names are kept",
			groups: []types.Group{export("e1", "same"), export("e2", "same")},
			want: []types.ExportJob{
				{TriggerID: "e1", VisibleIDs: types.NewIDSet("e1"), OutputName: "same"},
				{TriggerID: "e2", VisibleIDs: types.NewIDSet("e2"), OutputName: "same"},
			},
		},
		{
			name: "unsafe and empty names",
			groups: []types.Group{
				export("e1", "../escape"),
				export("e2", ""),
			},
			want: []types.ExportJob{
				{TriggerID: "e1", VisibleIDs: types.NewIDSet("e1"), OutputName: ".._escape"},
				{TriggerID: "e2", VisibleIDs: types.NewIDSet("e2"), OutputName: "e2"},
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Resolve(tt.groups, tt.opts)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("Resolve() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestResolveProperties(t *testing.T) {
	groups := []types.Group{
		export("e0", "zero"),
		fixed("f1", "bg"),
		{ID: "u1", Name: "loose", Tag: types.TagNone, Visible: true},
		export("e1", "one"),
		hidden(export("e2", "two")),
		fixed("f2", "fg"),
		export("e3", "three"),
	}
	fixedIDs := []string{"f1", "f2"}

	for _, below := range []bool{false, true} {
		opts := ResolveOptions{ShowLayersBelow: below, Enumerate: true}
		jobs := Resolve(groups, opts)
		require.Len(t, jobs, 4)

		for _, job := range jobs {
			for _, id := range fixedIDs {
				assert.True(t, job.VisibleIDs.Has(id), "fixed %s missing from %s", id, job.OutputName)
			}
			assert.True(t, job.VisibleIDs.Has(job.TriggerID), "trigger missing from %s", job.OutputName)

			triggerPos := -1
			for i, g := range groups {
				if g.ID == job.TriggerID {
					triggerPos = i
				}
			}
			for i, g := range groups {
				if g.Tag == types.TagFixed || g.ID == job.TriggerID {
					continue
				}
				wantShown := below && i < triggerPos
				assert.Equal(t, wantShown, job.VisibleIDs.Has(g.ID),
					"below=%v job %s layer %s", below, job.OutputName, g.ID)
			}
		}

		again := Resolve(groups, opts)
		if diff := cmp.Diff(jobs, again); diff != "" {
			t.Errorf("Resolve() is not idempotent (-first +second):\n%s", diff)
		}
	}
}

func TestOptionsFrom(t *testing.T) {
	cfg := types.DefaultExportConfig()
	cfg.ShowLayersBelow = true
	cfg.Enumerate = true

	assert.Equal(t, ResolveOptions{ShowLayersBelow: true, Enumerate: true}, OptionsFrom(cfg))
}

const planSVG = `<svg xmlns="http://www.w3.org/2000/svg" xmlns:inkscape="http://www.inkscape.org/namespaces/inkscape">
  <g inkscape:groupmode="layer" id="g1" inkscape:label="[fixed] background"/>
  <g inkscape:groupmode="layer" id="g2" inkscape:label="[export] cat"/>
  <g inkscape:groupmode="layer" id="g3" inkscape:label="notes"/>
  <g inkscape:groupmode="layer" id="g4" inkscape:label="[e] dog"/>
</svg>`

func TestBuildPlan(t *testing.T) {
	doc, err := svgdoc.Parse([]byte(planSVG))
	require.NoError(t, err)

	cfg := types.DefaultExportConfig()
	cfg.Enumerate = true

	plan := BuildPlan(doc, DefaultVocabulary(), cfg)
	require.Len(t, plan.Groups, 3)
	assert.Empty(t, plan.Warnings)
	want := []types.ExportJob{
		{TriggerID: "g2", VisibleIDs: types.NewIDSet("g1", "g2"), OutputName: "002_cat"},
		{TriggerID: "g4", VisibleIDs: types.NewIDSet("g1", "g4"), OutputName: "003_dog"},
	}
	if diff := cmp.Diff(want, plan.Jobs); diff != "" {
		t.Errorf("BuildPlan() jobs mismatch (-want +got):\n%s", diff)
	}

	cfg.LayerOrder = types.OrderPanel
	plan = BuildPlan(doc, DefaultVocabulary(), cfg)
	require.Len(t, plan.Jobs, 2)
	assert.Equal(t, "001_dog", plan.Jobs[0].OutputName)
	assert.Equal(t, "002_cat", plan.Jobs[1].OutputName)
}

func TestBuildPlanNoExports(t *testing.T) {
	doc, err := svgdoc.Parse([]byte(`<svg xmlns="http://www.w3.org/2000/svg"/>`))
	require.NoError(t, err)

	plan := BuildPlan(doc, DefaultVocabulary(), types.DefaultExportConfig())
	assert.Empty(t, plan.Jobs)
	require.Len(t, plan.Warnings, 1)
	assert.Equal(t, WarnNoExports, plan.Warnings[0].Kind)
}

func TestOutputName(t *testing.T) {
	tests := []struct {
		name      string
		group     types.Group
		enumerate bool
		want      string
	}{
		{"unchanged", types.Group{ID: "g1", Name: "cat and dog"}, false, "cat and dog"},
		{"separators", types.Group{ID: "g1", Name: `a/b\c`}, false, "a_b_c"},
		{"nul", types.Group{ID: "g1", Name: "a\x00b"}, false, "ab"},
		{"dot dot", types.Group{ID: "g1", Name: ".."}, false, "__"},
		{"empty falls back to id", types.Group{ID: "g1"}, false, "g1"},
		{"enumerated", types.Group{ID: "g1", Name: "cat"}, true, "004_cat"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, outputName(tt.group, 3, tt.enumerate))
		})
	}
}

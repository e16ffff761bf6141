// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package svgdoc

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitry-t/inkscape-export-layers/pkg/types"
)

const figureSVG = `<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg"
   xmlns:inkscape="http://www.inkscape.org/namespaces/inkscape"
   width="200" height="100">
  <g inkscape:groupmode="layer" id="layer1" inkscape:label="[fixed] background">
    <rect id="bg" width="200" height="100"/>
  </g>
  <g inkscape:groupmode="layer" id="layer2" inkscape:label="[export] cat" style="display:none;opacity:0.5">
    <circle id="cat" cx="50" cy="50" r="30"/>
  </g>
  <g inkscape:groupmode="layer" id="layer3" inkscape:label="[e] dog">
    <circle id="dog" cx="150" cy="50" r="30"/>
    <g inkscape:groupmode="layer" id="layer4" inkscape:label="[f] collar" style="display:none">
      <rect id="collar" width="20" height="4"/>
    </g>
  </g>
  <g id="plain"><rect id="r" width="1" height="1"/></g>
  <g inkscape:groupmode="layer" id="layer5"/>
</svg>
`

func mustParse(t *testing.T, src string) *Document {
	t.Helper()
	doc, err := Parse([]byte(src))
	require.NoError(t, err)
	return doc
}

func TestParseLayers(t *testing.T) {
	doc := mustParse(t, figureSVG)

	layers := doc.Layers()
	require.Len(t, layers, 5)

	want := []Layer{
		{Index: 0, ID: "layer1", Label: "[fixed] background", HasLabel: true, Visible: true, Depth: 0, TopLevel: true},
		{Index: 1, ID: "layer2", Label: "[export] cat", HasLabel: true, Visible: false, Depth: 0, TopLevel: true},
		{Index: 2, ID: "layer3", Label: "[e] dog", HasLabel: true, Visible: true, Depth: 0, TopLevel: true},
		{Index: 3, ID: "layer4", Label: "[f] collar", HasLabel: true, Visible: false, Depth: 1, TopLevel: false},
		{Index: 4, ID: "layer5", Visible: true, Depth: 0, TopLevel: true},
	}
	assert.Equal(t, want, layers)

	top := doc.TopLevelLayers()
	require.Len(t, top, 4)
	assert.Equal(t, "layer5", top[3].ID)
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name string
		src  string
	}{
		{"empty input", ""},
		{"not svg root", `<html><body/></html>`},
		{"malformed", `<svg xmlns="http://www.w3.org/2000/svg"><g></svg>`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.src))
			assert.Error(t, err)
		})
	}

	_, err := Parse([]byte(`<html/>`))
	assert.ErrorIs(t, err, ErrNotSVG)
}

func TestParseLatin1(t *testing.T) {
	src := "<?xml version=\"1.0\" encoding=\"ISO-8859-1\"?>\n" +
		"<svg xmlns=\"http://www.w3.org/2000/svg\" xmlns:inkscape=\"http://www.inkscape.org/namespaces/inkscape\">" +
		"<g inkscape:groupmode=\"layer\" id=\"l1\" inkscape:label=\"[export] caf\xe9\"/></svg>"

	doc, err := Parse([]byte(src))
	require.NoError(t, err)

	layers := doc.Layers()
	require.Len(t, layers, 1)
	assert.Equal(t, "[export] café", layers[0].Label)
	assert.Contains(t, string(doc.Bytes()), `encoding="UTF-8"`)
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "figure.svg")
	require.NoError(t, os.WriteFile(path, []byte(figureSVG), 0o644))

	doc, err := Load(path)
	require.NoError(t, err)
	assert.Len(t, doc.Layers(), 5)

	_, err = Load(filepath.Join(t.TempDir(), "missing.svg"))
	require.Error(t, err)
	assert.True(t, strings.Contains(err.Error(), "missing.svg"))
}

func TestProjectRemove(t *testing.T) {
	doc := mustParse(t, figureSVG)
	before := doc.Bytes()

	p := doc.Project(types.NewIDSet("layer1", "layer2"), types.HiddenRemove)
	out := string(p.Bytes())

	assert.Contains(t, out, `id="layer1"`)
	assert.Contains(t, out, `id="layer2"`)
	assert.NotContains(t, out, `id="layer3"`)
	assert.NotContains(t, out, `id="layer4"`, "nested layers go with their parent")
	assert.NotContains(t, out, `id="layer5"`)
	assert.Contains(t, out, `id="plain"`, "non-layer groups are kept")
	assert.Contains(t, out, `style="display:inline;opacity:0.5"`)

	assert.Equal(t, before, doc.Bytes(), "source document must not change")

	reparsed := mustParse(t, out)
	ids := make([]string, 0)
	for _, l := range reparsed.Layers() {
		ids = append(ids, l.ID)
		assert.True(t, l.Visible, "layer %s should be visible", l.ID)
	}
	assert.Equal(t, []string{"layer1", "layer2"}, ids)
}

func TestProjectHide(t *testing.T) {
	doc := mustParse(t, figureSVG)

	p := doc.Project(types.NewIDSet("layer3"), types.HiddenHide)
	reparsed := mustParse(t, string(p.Bytes()))

	got := map[string]bool{}
	for _, l := range reparsed.Layers() {
		got[l.ID] = l.Visible
	}
	assert.Equal(t, map[string]bool{
		"layer1": false,
		"layer2": false,
		"layer3": true,
		"layer4": false, // nested layers keep their own state
		"layer5": false,
	}, got)

	kept := p.Layers()
	require.Len(t, kept, 4)
	assert.True(t, kept[2].Visible)
}

func TestProjectionsAreIndependent(t *testing.T) {
	doc := mustParse(t, figureSVG)

	a := doc.Project(types.NewIDSet("layer2"), types.HiddenRemove)
	b := doc.Project(types.NewIDSet("layer3"), types.HiddenRemove)

	assert.Contains(t, string(a.Bytes()), `id="layer2"`)
	assert.NotContains(t, string(a.Bytes()), `id="layer3"`)
	assert.Contains(t, string(b.Bytes()), `id="layer3"`)
	assert.NotContains(t, string(b.Bytes()), `id="layer2"`)
}

func TestProjectionWriteFile(t *testing.T) {
	doc := mustParse(t, figureSVG)
	path := filepath.Join(t.TempDir(), "cat.svg")

	require.NoError(t, doc.Project(types.NewIDSet("layer2"), types.HiddenRemove).WriteFile(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `id="cat"`)

	err = doc.Project(nil, types.HiddenRemove).WriteFile(filepath.Join(t.TempDir(), "no", "such", "dir.svg"))
	assert.Error(t, err)
}

func TestSetDisplay(t *testing.T) {
	tests := []struct {
		name    string
		tag     string
		display string
		want    string
	}{
		{
			name:    "adds style",
			tag:     `<g id="a">`,
			display: "inline",
			want:    `<g id="a" style="display:inline">`,
		},
		{
			name:    "self closing",
			tag:     `<g id="a" />`,
			display: "none",
			want:    `<g id="a" style="display:none" />`,
		},
		{
			name:    "replaces display in style",
			tag:     `<g style="opacity:1;display:none" id="a">`,
			display: "inline",
			want:    `<g style="display:inline;opacity:1" id="a">`,
		},
		{
			name:    "single quoted style",
			tag:     `<g style='fill:red'>`,
			display: "none",
			want:    `<g style="display:none;fill:red">`,
		},
		{
			name:    "drops display attribute",
			tag:     `<g display="none" id="a">`,
			display: "inline",
			want:    `<g id="a" style="display:inline">`,
		},
		{
			name:    "style text inside another value",
			tag:     `<g inkscape:label='[e] set style="x" here' style="display:none">`,
			display: "inline",
			want:    `<g inkscape:label='[e] set style="x" here' style="display:inline">`,
		},
		{
			name:    "display text inside another value",
			tag:     `<g inkscape:label='a display="none" b' id="a">`,
			display: "inline",
			want:    `<g inkscape:label='a display="none" b' id="a" style="display:inline">`,
		},
		{
			name:    "whitespace around equals",
			tag:     "<g style = 'fill:red'\n   display=\"none\">",
			display: "inline",
			want:    `<g style = "display:inline;fill:red">`,
		},
		{
			name:    "ignores namespaced style attribute",
			tag:     `<g inkscape:style="x" id="a">`,
			display: "inline",
			want:    `<g inkscape:style="x" id="a" style="display:inline">`,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, string(setDisplay([]byte(tt.tag), tt.display)))
		})
	}
}

func TestProjectKeepsLabelMarkup(t *testing.T) {
	const src = `<svg xmlns="http://www.w3.org/2000/svg" xmlns:inkscape="http://www.inkscape.org/namespaces/inkscape">
  <g inkscape:groupmode="layer" id="l1" inkscape:label='[e] set style="x" here' style="display:none"/>
</svg>`
	doc := mustParse(t, src)

	out := mustParse(t, string(doc.Project(types.NewIDSet("l1"), types.HiddenRemove).Bytes()))
	require.Len(t, out.Layers(), 1)
	l := out.Layers()[0]
	assert.True(t, l.Visible)
	assert.Equal(t, `[e] set style="x" here`, l.Label)
}

func TestReadFrom(t *testing.T) {
	doc, err := ReadFrom(strings.NewReader(figureSVG))
	require.NoError(t, err)
	assert.Len(t, doc.TopLevelLayers(), 4)

	_, err = ReadFrom(strings.NewReader("<html/>"))
	assert.ErrorIs(t, err, ErrNotSVG)
}

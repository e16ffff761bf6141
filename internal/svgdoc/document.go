// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package svgdoc loads Inkscape SVG drawings, exposes their layer groups,
// and derives projected copies with layers shown, hidden, or removed.
//
// A Document keeps the original bytes untouched. Layers are held in an
// arena of records addressed by index; every projection is an override
// table over that arena that is spliced with the source bytes when written.
package svgdoc

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"os"
	"regexp"
	"strings"

	"golang.org/x/net/html/charset"
)

const (
	nsSVG      = "http://www.w3.org/2000/svg"
	nsInkscape = "http://www.inkscape.org/namespaces/inkscape"
)

// ErrNotSVG is returned when the root element of a document is not <svg>.
var ErrNotSVG = errors.New("root element is not <svg>")

// Layer describes one layer group of a drawing.
type Layer struct {
	// Index is the layer's position in document order among all layers.
	Index int

	ID    string
	Label string

	// HasLabel is false when the group has no inkscape:label attribute.
	HasLabel bool

	// Visible is false when the layer carries display:none.
	Visible bool

	// Depth counts the layer groups enclosing this one.
	Depth int

	// TopLevel is true for layers that are direct children of the root element.
	TopLevel bool
}

// layerRecord is an arena entry: the public description plus the byte spans
// of the element and of its start tag in the source buffer.
type layerRecord struct {
	Layer
	start, end       int
	tagStart, tagEnd int
}

// Document is a parsed drawing. It is never modified after Parse returns.
type Document struct {
	src    []byte
	layers []layerRecord
}

// Load reads and parses the SVG file at path.
func Load(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading drawing %s: %w", path, err)
	}
	doc, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("parsing drawing %s: %w", path, err)
	}
	return doc, nil
}

// ReadFrom parses a drawing read from r.
func ReadFrom(r io.Reader) (*Document, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading drawing: %w", err)
	}
	return Parse(data)
}

// Parse indexes the layer groups of the SVG document in data. Documents in
// a non-UTF-8 encoding are transcoded to UTF-8 first.
func Parse(data []byte) (*Document, error) {
	src, err := toUTF8(data)
	if err != nil {
		return nil, err
	}

	d := xml.NewDecoder(bytes.NewReader(src))
	d.CharsetReader = charset.NewReaderLabel

	type frame struct {
		layer int // arena index, or -1 when the element is not a layer
	}

	var (
		layers     []layerRecord
		stack      []frame
		layerDepth int
		sawRoot    bool
	)

	for {
		offset := int(d.InputOffset())
		tok, err := d.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("decoding svg: %w", err)
		}

		switch t := tok.(type) {
		case xml.StartElement:
			if len(stack) == 0 {
				if sawRoot {
					return nil, fmt.Errorf("decoding svg: multiple root elements")
				}
				sawRoot = true
				if t.Name.Local != "svg" {
					return nil, ErrNotSVG
				}
			}
			if !isLayer(t) {
				stack = append(stack, frame{layer: -1})
				continue
			}
			rec := layerRecord{
				Layer: Layer{
					Index:    len(layers),
					ID:       attr(t, "", "id"),
					Visible:  displayed(t),
					Depth:    layerDepth,
					TopLevel: len(stack) == 1,
				},
				start:    offset,
				tagStart: offset,
				tagEnd:   int(d.InputOffset()),
			}
			rec.Label, rec.HasLabel = lookupAttr(t, nsInkscape, "label")
			layers = append(layers, rec)
			stack = append(stack, frame{layer: rec.Index})
			layerDepth++

		case xml.EndElement:
			if len(stack) == 0 {
				return nil, fmt.Errorf("decoding svg: unbalanced </%s>", t.Name.Local)
			}
			top := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			if top.layer >= 0 {
				layers[top.layer].end = int(d.InputOffset())
				layerDepth--
			}
		}
	}

	if !sawRoot {
		return nil, fmt.Errorf("decoding svg: no root element")
	}
	return &Document{src: src, layers: layers}, nil
}

// Layers returns every layer group in document order, at any depth.
func (doc *Document) Layers() []Layer {
	out := make([]Layer, len(doc.layers))
	for i, rec := range doc.layers {
		out[i] = rec.Layer
	}
	return out
}

// TopLevelLayers returns the layers that are direct children of the root.
func (doc *Document) TopLevelLayers() []Layer {
	var out []Layer
	for _, rec := range doc.layers {
		if rec.TopLevel {
			out = append(out, rec.Layer)
		}
	}
	return out
}

// Bytes returns a copy of the source document.
func (doc *Document) Bytes() []byte {
	return bytes.Clone(doc.src)
}

func isLayer(t xml.StartElement) bool {
	if t.Name.Local != "g" || (t.Name.Space != "" && t.Name.Space != nsSVG) {
		return false
	}
	return attr(t, nsInkscape, "groupmode") == "layer"
}

func attr(t xml.StartElement, space, local string) string {
	v, _ := lookupAttr(t, space, local)
	return v
}

func lookupAttr(t xml.StartElement, space, local string) (string, bool) {
	for _, a := range t.Attr {
		if a.Name.Space == space && a.Name.Local == local {
			return a.Value, true
		}
	}
	return "", false
}

// displayed reports whether neither the style nor the display attribute
// hides the element.
func displayed(t xml.StartElement) bool {
	if strings.TrimSpace(attr(t, "", "display")) == "none" {
		return false
	}
	for _, decl := range strings.Split(attr(t, "", "style"), ";") {
		k, v, ok := strings.Cut(decl, ":")
		if ok && strings.TrimSpace(k) == "display" && strings.TrimSpace(v) == "none" {
			return false
		}
	}
	return true
}

var (
	xmlDeclRE  = regexp.MustCompile(`^\s*<\?xml[^>]*\?>`)
	encodingRE = regexp.MustCompile(`encoding\s*=\s*["']([^"']+)["']`)
)

// toUTF8 transcodes data to UTF-8 when its XML declaration names another
// encoding, and rewrites the declaration to match.
func toUTF8(data []byte) ([]byte, error) {
	decl := xmlDeclRE.Find(data)
	if decl == nil {
		return data, nil
	}
	m := encodingRE.FindSubmatch(decl)
	if m == nil {
		return data, nil
	}
	label := strings.ToLower(string(m[1]))
	if label == "utf-8" || label == "utf8" {
		return data, nil
	}

	r, err := charset.NewReaderLabel(label, bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("unsupported encoding %q: %w", label, err)
	}
	out, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("transcoding from %s: %w", label, err)
	}

	loc := xmlDeclRE.FindIndex(out)
	if loc == nil {
		return out, nil
	}
	fixed := encodingRE.ReplaceAll(out[loc[0]:loc[1]], []byte(`encoding="UTF-8"`))
	return append(fixed, out[loc[1]:]...), nil
}

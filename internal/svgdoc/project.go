// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package svgdoc

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/dmitry-t/inkscape-export-layers/pkg/types"
)

const (
	displayInline = "inline"
	displayNone   = "none"
)

// override is the change applied to one arena record. The zero value leaves
// the layer untouched.
type override struct {
	remove  bool
	display string
}

// Projection is a derived view of a Document in which top-level layers are
// shown, hidden, or removed. The source document is not modified.
type Projection struct {
	doc       *Document
	overrides []override
}

// Project derives a copy of the document where every top-level layer whose
// id is in visible is displayed, and every other top-level layer is removed
// or hidden according to mode. Nested layers are left as they are.
func (doc *Document) Project(visible types.IDSet, mode types.HiddenMode) *Projection {
	p := &Projection{
		doc:       doc,
		overrides: make([]override, len(doc.layers)),
	}
	for i, rec := range doc.layers {
		if !rec.TopLevel {
			continue
		}
		switch {
		case rec.ID != "" && visible.Has(rec.ID):
			p.overrides[i].display = displayInline
		case mode == types.HiddenHide:
			p.overrides[i].display = displayNone
		default:
			p.overrides[i].remove = true
		}
	}
	return p
}

// Layers returns the top-level layers kept by the projection, with their
// visibility as written.
func (p *Projection) Layers() []Layer {
	var out []Layer
	for i, rec := range p.doc.layers {
		if !rec.TopLevel || p.overrides[i].remove {
			continue
		}
		l := rec.Layer
		switch p.overrides[i].display {
		case displayInline:
			l.Visible = true
		case displayNone:
			l.Visible = false
		}
		out = append(out, l)
	}
	return out
}

// WriteTo writes the projected document to w.
func (p *Projection) WriteTo(w io.Writer) (int64, error) {
	var written int64
	write := func(b []byte) error {
		n, err := w.Write(b)
		written += int64(n)
		return err
	}

	src := p.doc.src
	cursor := 0
	for i, rec := range p.doc.layers {
		o := p.overrides[i]
		if !rec.TopLevel || (!o.remove && o.display == "") {
			continue
		}
		if err := write(src[cursor:rec.start]); err != nil {
			return written, err
		}
		if o.remove {
			cursor = rec.end
			continue
		}
		if err := write(setDisplay(src[rec.tagStart:rec.tagEnd], o.display)); err != nil {
			return written, err
		}
		cursor = rec.tagEnd
	}
	if err := write(src[cursor:]); err != nil {
		return written, err
	}
	return written, nil
}

// Bytes returns the projected document.
func (p *Projection) Bytes() []byte {
	var buf bytes.Buffer
	_, _ = p.WriteTo(&buf)
	return buf.Bytes()
}

// WriteFile writes the projected document to path.
func (p *Projection) WriteFile(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	if _, err := p.WriteTo(f); err != nil {
		f.Close()
		return fmt.Errorf("writing %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("closing %s: %w", path, err)
	}
	return nil
}

// tagAttr locates one attribute inside a raw start tag.
type tagAttr struct {
	name string
	// start includes the whitespace before the name; end is past the
	// closing quote.
	start, end int
	// valStart and valEnd bound the value without its quotes.
	valStart, valEnd int
}

// scanAttrs lists the attributes of a raw start tag in order. Quoted values
// are skipped as a whole, so markup inside a value is never taken for an
// attribute. Scanning stops at the first malformed attribute.
func scanAttrs(tag []byte) []tagAttr {
	i := 1
	for i < len(tag) && !isSpace(tag[i]) && tag[i] != '>' && tag[i] != '/' {
		i++
	}
	skipSpace := func() {
		for i < len(tag) && isSpace(tag[i]) {
			i++
		}
	}

	var attrs []tagAttr
	for i < len(tag) {
		start := i
		skipSpace()
		if i >= len(tag) || tag[i] == '>' || tag[i] == '/' {
			break
		}
		nameStart := i
		for i < len(tag) && tag[i] != '=' && !isSpace(tag[i]) && tag[i] != '>' && tag[i] != '/' {
			i++
		}
		name := string(tag[nameStart:i])
		skipSpace()
		if i >= len(tag) || tag[i] != '=' {
			break
		}
		i++
		skipSpace()
		if i >= len(tag) || (tag[i] != '"' && tag[i] != '\'') {
			break
		}
		quote := tag[i]
		i++
		valStart := i
		for i < len(tag) && tag[i] != quote {
			i++
		}
		if i >= len(tag) {
			break
		}
		attrs = append(attrs, tagAttr{name: name, start: start, end: i + 1, valStart: valStart, valEnd: i})
		i++
	}
	return attrs
}

// setDisplay rewrites a raw start tag so that its style declares the given
// display value. Other style declarations are preserved and a display
// presentation attribute is dropped. Only the unprefixed style and display
// attributes are touched.
func setDisplay(tag []byte, display string) []byte {
	var (
		b      bytes.Buffer
		cursor int
		styled bool
	)
	for _, a := range scanAttrs(tag) {
		switch {
		case a.name == "display":
			b.Write(tag[cursor:a.start])
			cursor = a.end
		case a.name == "style" && !styled:
			b.Write(tag[cursor : a.valStart-1])
			merged := mergeDisplay(string(tag[a.valStart:a.valEnd]), display)
			b.WriteString(`"` + strings.ReplaceAll(merged, `"`, "&quot;") + `"`)
			cursor = a.end
			styled = true
		}
	}
	b.Write(tag[cursor:])
	out := b.Bytes()
	if styled {
		return out
	}

	end := len(out) - 1
	if bytes.HasSuffix(out, []byte("/>")) {
		end = len(out) - 2
	}
	for end > 0 && isSpace(out[end-1]) {
		end--
	}
	var res bytes.Buffer
	res.Write(out[:end])
	res.WriteString(` style="display:` + display + `"`)
	res.Write(out[end:])
	return res.Bytes()
}

// mergeDisplay puts the display declaration first in a CSS style, dropping
// any earlier one.
func mergeDisplay(style, display string) string {
	var decls []string
	for _, decl := range strings.Split(style, ";") {
		if strings.TrimSpace(decl) == "" {
			continue
		}
		if k, _, ok := strings.Cut(decl, ":"); ok && strings.TrimSpace(k) == "display" {
			continue
		}
		decls = append(decls, decl)
	}
	decls = append([]string{"display:" + display}, decls...)
	return strings.Join(decls, ";")
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r'
}

// Package svg implements the drawing-side primitives of the wiring animator:
// a mutable SVG element tree, the diagram index that discovers actor elements
// by naming convention, and the labeling engine that assigns stable ids.
package svg

import (
	"encoding/xml"
	"fmt"
	"io"
	"strings"
)

// Element is one node of the parsed drawing. A node is either an element
// (Name set), a text run (Name empty, Text set) or a comment (Comment true).
// Attribute order is preserved so a relabeled drawing round-trips cleanly.
type Element struct {
	Name     string
	Attrs    []xml.Attr
	Text     string
	Comment  bool
	Parent   *Element
	Children []*Element
}

// Document is a parsed SVG drawing.
type Document struct {
	Root *Element
}

// Parse reads an SVG document from r into an element tree.
func Parse(r io.Reader) (*Document, error) {
	dec := xml.NewDecoder(r)
	// Illustrator exports carry entities the strict decoder rejects.
	dec.Strict = false
	dec.AutoClose = xml.HTMLAutoClose

	var root *Element
	cur := (*Element)(nil)
	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("parsing svg: %w", err)
		}
		switch t := tok.(type) {
		case xml.StartElement:
			el := &Element{Name: t.Name.Local, Parent: cur}
			el.Attrs = make([]xml.Attr, len(t.Attr))
			copy(el.Attrs, t.Attr)
			if cur == nil {
				if root != nil {
					return nil, fmt.Errorf("parsing svg: multiple root elements")
				}
				root = el
			} else {
				cur.Children = append(cur.Children, el)
			}
			cur = el
		case xml.EndElement:
			if cur == nil {
				return nil, fmt.Errorf("parsing svg: unbalanced end tag %q", t.Name.Local)
			}
			cur = cur.Parent
		case xml.CharData:
			if cur == nil {
				continue
			}
			text := string(t)
			if strings.TrimSpace(text) == "" {
				continue
			}
			cur.Children = append(cur.Children, &Element{Text: text, Parent: cur})
		case xml.Comment:
			if cur == nil {
				continue
			}
			cur.Children = append(cur.Children, &Element{Text: string(t), Comment: true, Parent: cur})
		}
	}
	if root == nil {
		return nil, fmt.Errorf("parsing svg: no root element")
	}
	return &Document{Root: root}, nil
}

// WriteTo serializes the document back to XML.
func (d *Document) WriteTo(w io.Writer) (int64, error) {
	cw := &countWriter{w: w}
	if _, err := io.WriteString(cw, xml.Header); err != nil {
		return cw.n, err
	}
	if err := writeElement(cw, d.Root); err != nil {
		return cw.n, err
	}
	return cw.n, nil
}

// String serializes the document to a string, mainly for tests.
func (d *Document) String() string {
	var sb strings.Builder
	d.WriteTo(&sb)
	return sb.String()
}

type countWriter struct {
	w io.Writer
	n int64
}

func (c *countWriter) Write(p []byte) (int, error) {
	n, err := c.w.Write(p)
	c.n += int64(n)
	return n, err
}

func writeElement(w io.Writer, el *Element) error {
	if el.Comment {
		_, err := fmt.Fprintf(w, "<!--%s-->", el.Text)
		return err
	}
	if el.Name == "" {
		var sb strings.Builder
		xml.EscapeText(&sb, []byte(el.Text))
		_, err := io.WriteString(w, sb.String())
		return err
	}
	if _, err := io.WriteString(w, "<"+el.Name); err != nil {
		return err
	}
	for _, a := range el.Attrs {
		name := a.Name.Local
		if a.Name.Space != "" {
			// Namespaced attributes come back from the decoder with the
			// resolved space; re-emit the common ones by prefix.
			switch a.Name.Space {
			case "xmlns":
				name = "xmlns:" + a.Name.Local
			case "http://www.w3.org/1999/xlink", "xlink":
				name = "xlink:" + a.Name.Local
			case "http://www.w3.org/XML/1998/namespace", "xml":
				name = "xml:" + a.Name.Local
			}
		}
		var sb strings.Builder
		xml.EscapeText(&sb, []byte(a.Value))
		if _, err := fmt.Fprintf(w, " %s=%q", name, sb.String()); err != nil {
			return err
		}
	}
	if len(el.Children) == 0 {
		_, err := io.WriteString(w, "/>")
		return err
	}
	if _, err := io.WriteString(w, ">"); err != nil {
		return err
	}
	for _, child := range el.Children {
		if err := writeElement(w, child); err != nil {
			return err
		}
	}
	_, err := io.WriteString(w, "</"+el.Name+">")
	return err
}

// Attr returns the value of the named attribute, or "" if absent.
func (el *Element) Attr(name string) string {
	for _, a := range el.Attrs {
		if a.Name.Local == name {
			return a.Value
		}
	}
	return ""
}

// HasAttr reports whether the named attribute is present.
func (el *Element) HasAttr(name string) bool {
	for _, a := range el.Attrs {
		if a.Name.Local == name {
			return true
		}
	}
	return false
}

// SetAttr sets or replaces the named attribute.
func (el *Element) SetAttr(name, value string) {
	for i, a := range el.Attrs {
		if a.Name.Local == name {
			el.Attrs[i].Value = value
			return
		}
	}
	el.Attrs = append(el.Attrs, xml.Attr{Name: xml.Name{Local: name}, Value: value})
}

// RemoveAttr deletes the named attribute if present.
func (el *Element) RemoveAttr(name string) {
	for i, a := range el.Attrs {
		if a.Name.Local == name {
			el.Attrs = append(el.Attrs[:i], el.Attrs[i+1:]...)
			return
		}
	}
}

// ID returns the element's id attribute.
func (el *Element) ID() string { return el.Attr("id") }

// SetID sets the element's id attribute.
func (el *Element) SetID(id string) { el.SetAttr("id", id) }

// IsElement reports whether the node is a real element (not text or comment).
func (el *Element) IsElement() bool { return el.Name != "" && !el.Comment }

// ChildElements returns the direct child elements, skipping text and
// comment nodes.
func (el *Element) ChildElements() []*Element {
	out := make([]*Element, 0, len(el.Children))
	for _, c := range el.Children {
		if c.IsElement() {
			out = append(out, c)
		}
	}
	return out
}

// FirstChild returns the first direct child element with one of the given
// tag names, or nil.
func (el *Element) FirstChild(names ...string) *Element {
	for _, c := range el.ChildElements() {
		for _, n := range names {
			if c.Name == n {
				return c
			}
		}
	}
	return nil
}

// FindFirst returns the first descendant element (document order) with one
// of the given tag names, or nil.
func (el *Element) FindFirst(names ...string) *Element {
	for _, c := range el.ChildElements() {
		for _, n := range names {
			if c.Name == n {
				return c
			}
		}
		if found := c.FindFirst(names...); found != nil {
			return found
		}
	}
	return nil
}

// FindAll returns every descendant element with one of the given tag names,
// in document order.
func (el *Element) FindAll(names ...string) []*Element {
	var out []*Element
	el.Walk(func(e *Element) {
		for _, n := range names {
			if e.Name == n {
				out = append(out, e)
				return
			}
		}
	})
	return out
}

// Walk visits every descendant element in document order.
func (el *Element) Walk(fn func(*Element)) {
	for _, c := range el.ChildElements() {
		fn(c)
		c.Walk(fn)
	}
}

// TextContent concatenates all text runs under the element.
func (el *Element) TextContent() string {
	var sb strings.Builder
	var collect func(*Element)
	collect = func(e *Element) {
		for _, c := range e.Children {
			if c.Comment {
				continue
			}
			if c.Name == "" {
				sb.WriteString(c.Text)
				continue
			}
			collect(c)
		}
	}
	collect(el)
	return sb.String()
}

// SetTextContent replaces the element's children with a single text run.
func (el *Element) SetTextContent(text string) {
	el.Children = []*Element{{Text: text, Parent: el}}
}

// FindByID returns the first descendant with the given id, or nil.
func (d *Document) FindByID(id string) *Element {
	var found *Element
	d.Root.Walk(func(e *Element) {
		if found == nil && e.ID() == id {
			found = e
		}
	})
	return found
}

// GroupsWithIDPrefix returns every descendant <g> whose id starts with the
// given prefix, in document order.
func (d *Document) GroupsWithIDPrefix(prefix string) []*Element {
	var out []*Element
	d.Root.Walk(func(e *Element) {
		if e.Name == "g" && strings.HasPrefix(e.ID(), prefix) {
			out = append(out, e)
		}
	})
	return out
}

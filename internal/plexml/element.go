// Package plexml builds and renders the XML documents exchanged with a Plex
// Media Server custom metadata agent client.
package plexml

import (
	"encoding/xml"
	"fmt"
	"io"
)

// Attr is a single element attribute. Order is preserved on output.
type Attr struct {
	Name  string
	Value string
}

// Element is an immutable node of a response document.
type Element struct {
	Name     string
	Attrs    []Attr
	Children []Element
}

// Attr returns the value of the named attribute and whether it is set.
func (e Element) Attr(name string) (string, bool) {
	for _, a := range e.Attrs {
		if a.Name == name {
			return a.Value, true
		}
	}
	return "", false
}

// Render writes root as an XML document with a declaration and two-space
// indentation. Attribute and text values are escaped by the encoder.
func Render(w io.Writer, root Element) error {
	if _, err := io.WriteString(w, xml.Header); err != nil {
		return err
	}
	enc := xml.NewEncoder(w)
	enc.Indent("", "  ")
	if err := encodeElement(enc, root); err != nil {
		return fmt.Errorf("encoding %s: %w", root.Name, err)
	}
	if err := enc.Close(); err != nil {
		return err
	}
	_, err := io.WriteString(w, "\n")
	return err
}

func encodeElement(enc *xml.Encoder, e Element) error {
	start := xml.StartElement{Name: xml.Name{Local: e.Name}}
	for _, a := range e.Attrs {
		start.Attr = append(start.Attr, xml.Attr{Name: xml.Name{Local: a.Name}, Value: a.Value})
	}
	if err := enc.EncodeToken(start); err != nil {
		return err
	}
	for _, c := range e.Children {
		if err := encodeElement(enc, c); err != nil {
			return err
		}
	}
	return enc.EncodeToken(start.End())
}

// Package docx writes minimal WordprocessingML documents: paragraphs of
// styled runs inside a single-section body with one-inch margins. It covers
// what meeting minutes need and nothing more.
package docx

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
)

// Paragraph alignments
const (
	AlignLeft   = "left"
	AlignCenter = "center"
)

const defaultFont = "Calibri"

// pageMarginTwips is one inch in twentieths of a point
const pageMarginTwips = 1440

// Document builds a .docx file paragraph by paragraph
type Document struct {
	font       string
	paragraphs []*Paragraph
}

// Paragraph is a block of runs with block-level formatting
type Paragraph struct {
	doc     *Document
	align   string
	shading string
	runs    []*Run
}

// Run is a span of text with character-level formatting
type Run struct {
	text  string
	bold  bool
	size  int // half-points, 0 means inherit
	color string
}

// New creates an empty document using the default font
func New() *Document {
	return &Document{font: defaultFont}
}

// AddParagraph appends an empty paragraph
func (d *Document) AddParagraph() *Paragraph {
	p := &Paragraph{doc: d, align: AlignLeft}
	d.paragraphs = append(d.paragraphs, p)
	return p
}

// Center aligns the paragraph horizontally
func (p *Paragraph) Center() *Paragraph {
	p.align = AlignCenter
	return p
}

// Shade fills the paragraph background with an RRGGBB color
func (p *Paragraph) Shade(fill string) *Paragraph {
	p.shading = fill
	return p
}

// AddText appends a run of text to the paragraph
func (p *Paragraph) AddText(text string) *Run {
	r := &Run{text: text}
	p.runs = append(p.runs, r)
	return r
}

// Bold makes the run bold
func (r *Run) Bold() *Run {
	r.bold = true
	return r
}

// Size sets the run's font size in points
func (r *Run) Size(points int) *Run {
	r.size = points * 2
	return r
}

// Color sets the run's font color as RRGGBB
func (r *Run) Color(hex string) *Run {
	r.color = hex
	return r
}

// Bytes renders the document as a .docx archive
func (d *Document) Bytes() ([]byte, error) {
	var buf bytes.Buffer
	if err := d.WriteTo(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// WriteTo renders the document as a .docx archive to the writer
func (d *Document) WriteTo(w io.Writer) error {
	zw := zip.NewWriter(w)

	parts := []struct {
		name    string
		content []byte
	}{
		{"[Content_Types].xml", []byte(contentTypesXML)},
		{"_rels/.rels", []byte(relsXML)},
		{"word/document.xml", d.documentXML()},
	}
	for _, part := range parts {
		f, err := zw.Create(part.name)
		if err != nil {
			return fmt.Errorf("failed to create %s: %w", part.name, err)
		}
		if _, err := f.Write(part.content); err != nil {
			return fmt.Errorf("failed to write %s: %w", part.name, err)
		}
	}

	if err := zw.Close(); err != nil {
		return fmt.Errorf("failed to finalize document: %w", err)
	}
	return nil
}

const contentTypesXML = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Types xmlns="http://schemas.openxmlformats.org/package/2006/content-types"><Default Extension="rels" ContentType="application/vnd.openxmlformats-package.relationships+xml"/><Default Extension="xml" ContentType="application/xml"/><Override PartName="/word/document.xml" ContentType="application/vnd.openxmlformats-officedocument.wordprocessingml.document.main+xml"/></Types>`

const relsXML = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships"><Relationship Id="rId1" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/officeDocument" Target="word/document.xml"/></Relationships>`

func (d *Document) documentXML() []byte {
	var b bytes.Buffer
	b.WriteString(`<?xml version="1.0" encoding="UTF-8" standalone="yes"?>`)
	b.WriteString(`<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main"><w:body>`)

	for _, p := range d.paragraphs {
		d.writeParagraph(&b, p)
	}

	fmt.Fprintf(&b, `<w:sectPr><w:pgMar w:top="%d" w:right="%d" w:bottom="%d" w:left="%d"/></w:sectPr>`,
		pageMarginTwips, pageMarginTwips, pageMarginTwips, pageMarginTwips)
	b.WriteString(`</w:body></w:document>`)
	return b.Bytes()
}

func (d *Document) writeParagraph(b *bytes.Buffer, p *Paragraph) {
	b.WriteString(`<w:p>`)

	if p.align != AlignLeft || p.shading != "" {
		b.WriteString(`<w:pPr>`)
		if p.align != AlignLeft {
			fmt.Fprintf(b, `<w:jc w:val="%s"/>`, p.align)
		}
		if p.shading != "" {
			fmt.Fprintf(b, `<w:shd w:val="clear" w:color="auto" w:fill="%s"/>`, p.shading)
		}
		b.WriteString(`</w:pPr>`)
	}

	for _, r := range p.runs {
		b.WriteString(`<w:r><w:rPr>`)
		fmt.Fprintf(b, `<w:rFonts w:ascii="%s" w:hAnsi="%s"/>`, d.font, d.font)
		if r.bold {
			b.WriteString(`<w:b/>`)
		}
		if r.color != "" {
			fmt.Fprintf(b, `<w:color w:val="%s"/>`, r.color)
		}
		if r.size > 0 {
			fmt.Fprintf(b, `<w:sz w:val="%d"/><w:szCs w:val="%d"/>`, r.size, r.size)
		}
		b.WriteString(`</w:rPr>`)

		b.WriteString(`<w:t xml:space="preserve">`)
		xml.EscapeText(b, []byte(r.text))
		b.WriteString(`</w:t></w:r>`)
	}

	b.WriteString(`</w:p>`)
}

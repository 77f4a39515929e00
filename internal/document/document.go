// Package document describes a printable document as a flat sequence of
// styled paragraphs and renders it to PDF.
package document

import (
	"context"
	"io"
	"time"
)

// Style selects how a block is laid out.
type Style int

const (
	StyleBody Style = iota
	StyleTitle
	StyleHeading
	StyleSubheading
	StyleItem
	StyleSpacer
)

// Mark is the glyph printed in front of an item.
type Mark int

const (
	MarkNone Mark = iota
	MarkTick
	MarkCross
	MarkBullet
)

// Block is one paragraph or vertical gap.
type Block struct {
	Style Style
	Text  string
	Mark  Mark
	// Space is the gap height in points for StyleSpacer blocks.
	Space float64
}

// Document is an ordered set of blocks.
type Document struct {
	Title   string
	Created time.Time
	Blocks  []Block
}

// New starts an empty document.
func New(title string, created time.Time) *Document {
	return &Document{Title: title, Created: created}
}

func (d *Document) add(b Block) *Document {
	d.Blocks = append(d.Blocks, b)
	return d
}

func (d *Document) Headline(text string) *Document {
	return d.add(Block{Style: StyleTitle, Text: text})
}

func (d *Document) Heading(text string) *Document {
	return d.add(Block{Style: StyleHeading, Text: text})
}

func (d *Document) Subheading(text string) *Document {
	return d.add(Block{Style: StyleSubheading, Text: text})
}

func (d *Document) Body(text string) *Document {
	return d.add(Block{Style: StyleBody, Text: text})
}

func (d *Document) Item(mark Mark, text string) *Document {
	return d.add(Block{Style: StyleItem, Mark: mark, Text: text})
}

func (d *Document) Space(points float64) *Document {
	return d.add(Block{Style: StyleSpacer, Space: points})
}

// Text returns the document content as plain lines, spacers omitted.
func (d *Document) Text() []string {
	lines := make([]string, 0, len(d.Blocks))
	for _, b := range d.Blocks {
		if b.Style == StyleSpacer {
			continue
		}
		lines = append(lines, MarkGlyph(b.Mark)+b.Text)
	}
	return lines
}

// MarkGlyph returns the unicode prefix for a mark, including the trailing space.
func MarkGlyph(m Mark) string {
	switch m {
	case MarkTick:
		return "✓ "
	case MarkCross:
		return "✗ "
	case MarkBullet:
		return "• "
	default:
		return ""
	}
}

// Page is a page geometry in inches.
type Page struct {
	Width  float64
	Height float64
	Margin float64
}

// A4 is the default page.
var A4 = Page{Width: 8.27, Height: 11.69, Margin: 0.75}

// Renderer writes a document as PDF.
type Renderer interface {
	Render(ctx context.Context, doc *Document, w io.Writer) error
}

// Package docxml builds WordprocessingML (.docx) packages from scratch.
// It covers the subset of OOXML the agency's export documents need:
// styled runs, paragraph spacing and borders, bullet lists, tables with
// shading, header and footer parts, and inline images. Output is byte
// deterministic: identical input produces identical bytes.
package docxml

import (
	"strings"
)

// Measurement conversions. Word positions text in twentieths of a point
// (twips) and images in EMUs.
const emuPerPixel = 9525

// Border describes a single paragraph or table border line.
type Border struct {
	Color string // hex RGB without '#'
	Size  int    // eighths of a point
}

// Run is a contiguous stretch of identically formatted text.
type Run struct {
	Text   string
	Bold   bool
	Italic bool
	Color  string // hex RGB without '#'
	Size   int    // half-points
	Font   string
	Break  bool // emit a line break before the text
}

// Paragraph is a block of runs with paragraph-level formatting. All
// measurements are in twips.
type Paragraph struct {
	Runs          []Run
	Align         string // "center", "right", "both"; empty means left
	SpacingBefore int
	SpacingAfter  int
	LineSpacing   int // 240 = single
	IndentLeft    int
	IndentHanging int
	Bullet        bool
	BorderBottom  *Border
	Image         *Image // exclusive with Runs
}

// Image is an inline picture. Dimensions are in pixels at 96 DPI.
type Image struct {
	Data   []byte
	Width  int
	Height int
}

// Cell is a single table cell.
type Cell struct {
	Paragraphs []Paragraph
	WidthPct   int    // percentage of table width
	Fill       string // shading hex RGB without '#'
}

// Row is a table row. Height is in twips, enforced as a minimum.
type Row struct {
	Cells  []Cell
	Height int
}

// Table is a block-level table.
type Table struct {
	Rows     []Row
	WidthPct int
	Borders  *Border
}

// Margins are the page margins in twips.
type Margins struct {
	Top    int
	Right  int
	Bottom int
	Left   int
}

type block struct {
	paragraph *Paragraph
	table     *Table
}

// Document accumulates content and serializes it as a .docx package.
type Document struct {
	blocks  []block
	header  []Paragraph
	footer  []Paragraph
	margins Margins
	images  []*Image
}

// New creates an empty document with 2.54cm margins all around.
func New() *Document {
	return &Document{
		margins: Margins{Top: 1440, Right: 1440, Bottom: 1440, Left: 1440},
	}
}

// SetMargins overrides the page margins.
func (d *Document) SetMargins(m Margins) { d.margins = m }

// AddParagraph appends a paragraph to the body.
func (d *Document) AddParagraph(p Paragraph) {
	if p.Image != nil {
		d.images = append(d.images, p.Image)
	}
	d.blocks = append(d.blocks, block{paragraph: &p})
}

// AddTable appends a table to the body.
func (d *Document) AddTable(t Table) {
	d.blocks = append(d.blocks, block{table: &t})
}

// SetHeader sets the default page header content.
func (d *Document) SetHeader(paragraphs []Paragraph) { d.header = paragraphs }

// SetFooter sets the default page footer content.
func (d *Document) SetFooter(paragraphs []Paragraph) { d.footer = paragraphs }

// Cm converts centimeters to twips (1440 per inch).
func Cm(cm float64) int {
	return int(cm/2.54*1440 + 0.5)
}

// PxFromCm converts centimeters to pixels at 96 DPI.
func PxFromCm(cm float64) int {
	return int(cm/2.54*96 + 0.5)
}

// escape replaces XML-significant characters in text content.
func escape(s string) string {
	var b strings.Builder
	for _, r := range s {
		switch r {
		case '&':
			b.WriteString("&amp;")
		case '<':
			b.WriteString("&lt;")
		case '>':
			b.WriteString("&gt;")
		case '"':
			b.WriteString("&quot;")
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}

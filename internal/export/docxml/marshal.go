package docxml

import (
	"fmt"
	"strings"
)

const xmlHeader = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>` + "\n"

const wNamespaces = `xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main"` +
	` xmlns:r="http://schemas.openxmlformats.org/officeDocument/2006/relationships"` +
	` xmlns:wp="http://schemas.openxmlformats.org/drawingml/2006/wordprocessingDrawing"` +
	` xmlns:a="http://schemas.openxmlformats.org/drawingml/2006/main"` +
	` xmlns:pic="http://schemas.openxmlformats.org/drawingml/2006/picture"`

func writeRunProps(b *strings.Builder, r Run) {
	if !r.Bold && !r.Italic && r.Color == "" && r.Size == 0 && r.Font == "" {
		return
	}
	b.WriteString("<w:rPr>")
	if r.Font != "" {
		fmt.Fprintf(b, `<w:rFonts w:ascii="%s" w:hAnsi="%s" w:cs="%s"/>`, escape(r.Font), escape(r.Font), escape(r.Font))
	}
	if r.Bold {
		b.WriteString("<w:b/>")
	}
	if r.Italic {
		b.WriteString("<w:i/>")
	}
	if r.Color != "" {
		fmt.Fprintf(b, `<w:color w:val="%s"/>`, r.Color)
	}
	if r.Size != 0 {
		fmt.Fprintf(b, `<w:sz w:val="%d"/><w:szCs w:val="%d"/>`, r.Size, r.Size)
	}
	b.WriteString("</w:rPr>")
}

func writeRun(b *strings.Builder, r Run) {
	b.WriteString("<w:r>")
	writeRunProps(b, r)
	if r.Break {
		b.WriteString("<w:br/>")
	}
	if r.Text != "" {
		fmt.Fprintf(b, `<w:t xml:space="preserve">%s</w:t>`, escape(r.Text))
	}
	b.WriteString("</w:r>")
}

func writeParagraphProps(b *strings.Builder, p Paragraph) {
	hasProps := p.Align != "" || p.SpacingBefore != 0 || p.SpacingAfter != 0 ||
		p.LineSpacing != 0 || p.IndentLeft != 0 || p.IndentHanging != 0 ||
		p.Bullet || p.BorderBottom != nil
	if !hasProps {
		return
	}
	b.WriteString("<w:pPr>")
	if p.Bullet {
		b.WriteString(`<w:numPr><w:ilvl w:val="0"/><w:numId w:val="1"/></w:numPr>`)
	}
	if p.BorderBottom != nil {
		fmt.Fprintf(b, `<w:pBdr><w:bottom w:val="single" w:sz="%d" w:space="1" w:color="%s"/></w:pBdr>`,
			p.BorderBottom.Size, p.BorderBottom.Color)
	}
	if p.SpacingBefore != 0 || p.SpacingAfter != 0 || p.LineSpacing != 0 {
		b.WriteString("<w:spacing")
		if p.SpacingBefore != 0 {
			fmt.Fprintf(b, ` w:before="%d"`, p.SpacingBefore)
		}
		if p.SpacingAfter != 0 {
			fmt.Fprintf(b, ` w:after="%d"`, p.SpacingAfter)
		}
		if p.LineSpacing != 0 {
			fmt.Fprintf(b, ` w:line="%d" w:lineRule="auto"`, p.LineSpacing)
		}
		b.WriteString("/>")
	}
	if p.IndentLeft != 0 || p.IndentHanging != 0 {
		b.WriteString("<w:ind")
		if p.IndentLeft != 0 {
			fmt.Fprintf(b, ` w:left="%d"`, p.IndentLeft)
		}
		if p.IndentHanging != 0 {
			fmt.Fprintf(b, ` w:hanging="%d"`, p.IndentHanging)
		}
		b.WriteString("/>")
	}
	if p.Align != "" {
		fmt.Fprintf(b, `<w:jc w:val="%s"/>`, p.Align)
	}
	b.WriteString("</w:pPr>")
}

// writeParagraph serializes one paragraph. imageIndex numbers inline
// images in document order; relationship IDs are derived from it.
func writeParagraph(b *strings.Builder, p Paragraph, imageIndex *int) {
	b.WriteString("<w:p>")
	writeParagraphProps(b, p)
	if p.Image != nil {
		*imageIndex++
		writeDrawing(b, p.Image, *imageIndex)
	} else {
		for _, r := range p.Runs {
			writeRun(b, r)
		}
	}
	b.WriteString("</w:p>")
}

// writeDrawing emits an inline picture run referencing word/media/imageN.
func writeDrawing(b *strings.Builder, img *Image, n int) {
	cx := img.Width * emuPerPixel
	cy := img.Height * emuPerPixel
	relID := fmt.Sprintf("rIdImg%d", n)

	b.WriteString("<w:r><w:drawing>")
	fmt.Fprintf(b, `<wp:inline distT="0" distB="0" distL="0" distR="0">`)
	fmt.Fprintf(b, `<wp:extent cx="%d" cy="%d"/>`, cx, cy)
	fmt.Fprintf(b, `<wp:docPr id="%d" name="Picture %d"/>`, n, n)
	b.WriteString(`<a:graphic><a:graphicData uri="http://schemas.openxmlformats.org/drawingml/2006/picture">`)
	b.WriteString("<pic:pic>")
	fmt.Fprintf(b, `<pic:nvPicPr><pic:cNvPr id="%d" name="Picture %d"/><pic:cNvPicPr/></pic:nvPicPr>`, n, n)
	fmt.Fprintf(b, `<pic:blipFill><a:blip r:embed="%s"/><a:stretch><a:fillRect/></a:stretch></pic:blipFill>`, relID)
	b.WriteString(`<pic:spPr><a:xfrm><a:off x="0" y="0"/>`)
	fmt.Fprintf(b, `<a:ext cx="%d" cy="%d"/>`, cx, cy)
	b.WriteString(`</a:xfrm><a:prstGeom prst="rect"><a:avLst/></a:prstGeom></pic:spPr>`)
	b.WriteString("</pic:pic>")
	b.WriteString("</a:graphicData></a:graphic></wp:inline></w:drawing></w:r>")
}

func writeTable(b *strings.Builder, t Table, imageIndex *int) {
	b.WriteString("<w:tbl><w:tblPr>")
	if t.WidthPct != 0 {
		// fiftieths of a percent
		fmt.Fprintf(b, `<w:tblW w:w="%d" w:type="pct"/>`, t.WidthPct*50)
	}
	if t.Borders != nil {
		border := fmt.Sprintf(`w:val="single" w:sz="%d" w:space="0" w:color="%s"`, t.Borders.Size, t.Borders.Color)
		fmt.Fprintf(b, `<w:tblBorders><w:top %s/><w:left %s/><w:bottom %s/><w:right %s/><w:insideH %s/><w:insideV %s/></w:tblBorders>`,
			border, border, border, border, border, border)
	}
	b.WriteString("</w:tblPr>")

	for _, row := range t.Rows {
		b.WriteString("<w:tr>")
		if row.Height != 0 {
			fmt.Fprintf(b, `<w:trPr><w:trHeight w:val="%d" w:hRule="atLeast"/></w:trPr>`, row.Height)
		}
		for _, cell := range row.Cells {
			b.WriteString("<w:tc><w:tcPr>")
			if cell.WidthPct != 0 {
				fmt.Fprintf(b, `<w:tcW w:w="%d" w:type="pct"/>`, cell.WidthPct*50)
			}
			if cell.Fill != "" {
				fmt.Fprintf(b, `<w:shd w:val="clear" w:color="auto" w:fill="%s"/>`, cell.Fill)
			}
			b.WriteString("</w:tcPr>")
			if len(cell.Paragraphs) == 0 {
				b.WriteString("<w:p/>")
			}
			for _, p := range cell.Paragraphs {
				writeParagraph(b, p, imageIndex)
			}
			b.WriteString("</w:tc>")
		}
		b.WriteString("</w:tr>")
	}
	b.WriteString("</w:tbl>")
}

// documentXML renders word/document.xml.
func (d *Document) documentXML() string {
	var b strings.Builder
	b.WriteString(xmlHeader)
	fmt.Fprintf(&b, "<w:document %s>", wNamespaces)
	b.WriteString("<w:body>")

	imageIndex := 0
	for _, blk := range d.blocks {
		switch {
		case blk.paragraph != nil:
			writeParagraph(&b, *blk.paragraph, &imageIndex)
		case blk.table != nil:
			writeTable(&b, *blk.table, &imageIndex)
		}
	}

	b.WriteString("<w:sectPr>")
	if d.header != nil {
		b.WriteString(`<w:headerReference w:type="default" r:id="rIdHeader"/>`)
	}
	if d.footer != nil {
		b.WriteString(`<w:footerReference w:type="default" r:id="rIdFooter"/>`)
	}
	b.WriteString(`<w:pgSz w:w="11906" w:h="16838"/>`)
	fmt.Fprintf(&b, `<w:pgMar w:top="%d" w:right="%d" w:bottom="%d" w:left="%d" w:header="708" w:footer="708" w:gutter="0"/>`,
		d.margins.Top, d.margins.Right, d.margins.Bottom, d.margins.Left)
	b.WriteString("</w:sectPr>")

	b.WriteString("</w:body></w:document>")
	return b.String()
}

// headerXML renders word/header1.xml.
func (d *Document) headerXML() string {
	return partXML("w:hdr", d.header)
}

// footerXML renders word/footer1.xml.
func (d *Document) footerXML() string {
	return partXML("w:ftr", d.footer)
}

func partXML(root string, paragraphs []Paragraph) string {
	var b strings.Builder
	b.WriteString(xmlHeader)
	fmt.Fprintf(&b, "<%s %s>", root, wNamespaces)
	imageIndex := 0
	for _, p := range paragraphs {
		writeParagraph(&b, p, &imageIndex)
	}
	fmt.Fprintf(&b, "</%s>", root)
	return b.String()
}

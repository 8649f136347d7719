// Package export renders agency-branded DOCX documents from candidate
// records and registration forms. Rendering is deterministic: the same
// record always yields the same bytes.
package export

import (
	"regexp"
	"strings"

	"github.com/ehstaff/ehstaff-backend/internal/export/docxml"
)

// House style. Sizes are half-points throughout.
const (
	fontBody = "Palatino Linotype"
	fontLogo = "Calibri (Body)"

	colorHeading      = "DC2626"
	colorHeaderFooter = "777777"
	colorBorder       = "bfbfbf"

	sizeName           = 40
	sizeTitle          = 28
	sizeSectionHeading = 26
	sizeBody           = 22
	sizeSmall          = 20
	sizeLogo           = 22

	lineSpacing      = 240
	paragraphSpacing = 120
	sectionSpacing   = 200
)

var (
	bulletIndent  = docxml.Cm(1.5)
	bulletHanging = docxml.Cm(0.5)
	photoSizePx   = docxml.PxFromCm(4.7)
)

// Render-time text cleanup. These run on every body line as it is
// written; they overlap with the formatting rules on purpose, catching
// text that reviewers typed in after normalization.
var renderCleanups = []struct {
	re          *regexp.Regexp
	replacement string
}{
	{regexp.MustCompile(`(?i)^\s*I\s+am\s+responsible\s+for\s*`), "Responsible for "},
	{regexp.MustCompile(`(?i)^\s*I\s+was\s+responsible\s+for\s*`), "Responsible for "},
	{regexp.MustCompile(`(?i)^\s*I\s+manage\s*`), "Manage "},
	{regexp.MustCompile(`(?i)^\s*in\s+this\s+role,\s*I\s*`), "I "},
	{regexp.MustCompile(`(?i)\bPrinciple\b`), "Principal"},
	{regexp.MustCompile(`(?i)\bLadies\s+Maid\b`), "Lady's Maid"},
	{regexp.MustCompile(`(?i)\bDiscrete\b`), "Discreet"},
	{regexp.MustCompile(`(?i)\bUpmost\b`), "Utmost"},
	{regexp.MustCompile(`(?i)\bI\s+have\s+experience\s+in\b\s*`), "Experience in "},
	{regexp.MustCompile(`(?i)\bI\s+am\s+skilled\s+in\b\s*`), "Skilled in "},
}

func cleanText(s string) string {
	out := strings.TrimSpace(s)
	for _, c := range renderCleanups {
		out = c.re.ReplaceAllString(out, c.replacement)
	}
	return strings.TrimSpace(out)
}

// toTitleCase uppercases the letter after every space, hyphen and slash.
func toTitleCase(s string) string {
	runes := []rune(strings.ToLower(s))
	capNext := true
	for i, r := range runes {
		if capNext && r >= 'a' && r <= 'z' {
			runes[i] = r - 'a' + 'A'
		}
		capNext = r == ' ' || r == '-' || r == '/'
	}
	return string(runes)
}

// sectionHeading is a red, bordered, uppercased section title.
func sectionHeading(text string) docxml.Paragraph {
	return docxml.Paragraph{
		Runs: []docxml.Run{{
			Text:  strings.ToUpper(text),
			Bold:  true,
			Color: colorHeading,
			Size:  sizeSectionHeading,
			Font:  fontBody,
		}},
		SpacingBefore: sectionSpacing,
		SpacingAfter:  paragraphSpacing,
		LineSpacing:   lineSpacing,
		BorderBottom:  &docxml.Border{Color: colorBorder, Size: 6},
	}
}

func bodyParagraph(text string) docxml.Paragraph {
	return docxml.Paragraph{
		Runs:         []docxml.Run{{Text: text, Size: sizeBody, Font: fontBody}},
		SpacingAfter: paragraphSpacing,
		LineSpacing:  lineSpacing,
	}
}

func bulletParagraph(text string) docxml.Paragraph {
	return docxml.Paragraph{
		Runs:          []docxml.Run{{Text: text, Size: sizeBody, Font: fontBody}},
		Bullet:        true,
		IndentLeft:    bulletIndent,
		IndentHanging: bulletHanging,
		LineSpacing:   lineSpacing,
	}
}

// companyHeader is the CV page header. The registration form carries its
// own plainer header.
func companyHeader() []docxml.Paragraph {
	return []docxml.Paragraph{{
		Runs: []docxml.Run{{
			Text:  "EXCLUSIVE HOUSEHOLD STAFF",
			Bold:  true,
			Color: colorHeading,
			Size:  24,
			Font:  fontBody,
		}},
		Align:        "center",
		SpacingAfter: paragraphSpacing,
		BorderBottom: &docxml.Border{Color: colorBorder, Size: 6},
	}}
}

// companyFooter is the standard page footer.
func companyFooter() []docxml.Paragraph {
	line := func(text string, size int, bold bool, color string) docxml.Paragraph {
		return docxml.Paragraph{
			Runs:  []docxml.Run{{Text: text, Size: size, Bold: bold, Color: color, Font: fontBody}},
			Align: "center",
		}
	}
	return []docxml.Paragraph{
		line("EHS — Exclusive Household Staff", 16, false, colorHeaderFooter),
		line("Exclusive Household Staff & Nannies", 18, true, colorHeading),
		line("www.exclusivehouseholdstaff.com", 16, false, colorHeaderFooter),
		line("Telephone: +44 (0) 203 358 7000", 16, false, colorHeaderFooter),
	}
}

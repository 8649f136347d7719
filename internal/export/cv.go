package export

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/ehstaff/ehstaff-backend/internal/cv/domain"
	"github.com/ehstaff/ehstaff-backend/internal/cv/formatting"
	"github.com/ehstaff/ehstaff-backend/internal/export/docxml"
	"github.com/ehstaff/ehstaff-backend/pkg/errors"
)

// CVFileName returns the download name for an exported CV.
func CVFileName(cv *domain.CandidateRecord) string {
	name := strings.TrimSpace(cv.PersonalInfo.FirstName)
	if name == "" {
		name = "Candidate"
	}
	return name + " CV.docx"
}

// RenderCV renders a candidate record as the agency's branded CV
// document. The photo is optional.
func RenderCV(cv *domain.CandidateRecord, photo *Photo) ([]byte, error) {
	if cv == nil {
		return nil, errors.BadRequest("no candidate record to render")
	}

	d := docxml.New()
	d.SetMargins(docxml.Margins{Top: 1440, Right: 1440, Bottom: 1440, Left: 1440})
	d.SetHeader(companyHeader())
	d.SetFooter(companyFooter())

	// Centered logo line under the page header
	d.AddParagraph(docxml.Paragraph{
		Runs: []docxml.Run{{
			Text: "Exclusive Household Staff",
			Size: sizeLogo,
			Font: fontLogo,
		}},
		Align:        "center",
		SpacingAfter: paragraphSpacing,
	})

	if photo != nil {
		d.AddParagraph(docxml.Paragraph{
			Image: &docxml.Image{Data: photo.PNG, Width: photo.Width, Height: photo.Height},
			Align: "center",
		})
	}

	fullName := strings.TrimSpace(cv.PersonalInfo.FirstName + " " + cv.PersonalInfo.LastName)
	d.AddParagraph(docxml.Paragraph{
		Runs: []docxml.Run{{
			Text:  strings.ToUpper(fullName),
			Bold:  true,
			Color: colorHeading,
			Size:  sizeName,
			Font:  fontBody,
		}},
		Align:       "center",
		LineSpacing: lineSpacing,
	})
	if jobTitle := strings.TrimSpace(cv.PersonalInfo.JobTitle); jobTitle != "" {
		d.AddParagraph(docxml.Paragraph{
			Runs: []docxml.Run{{
				Text: toTitleCase(jobTitle),
				Size: sizeTitle,
				Font: fontBody,
			}},
			Align:        "center",
			SpacingAfter: sectionSpacing,
			LineSpacing:  lineSpacing,
		})
	}

	if profile := cleanText(cv.Profile); profile != "" {
		d.AddParagraph(sectionHeading("Profile"))
		d.AddParagraph(bodyParagraph(profile))
	}

	if len(cv.Experience) > 0 {
		d.AddParagraph(sectionHeading("Experience"))
		for _, exp := range cv.Experience {
			d.AddParagraph(experienceHeading(exp))
			for _, line := range exp.Description {
				if text := cleanText(line); text != "" {
					d.AddParagraph(bulletParagraph(text))
				}
			}
			for _, line := range exp.Achievements {
				if text := cleanText(line); text != "" {
					d.AddParagraph(bulletParagraph(text))
				}
			}
		}
	}

	if len(cv.Education) > 0 {
		d.AddParagraph(sectionHeading("Education"))
		for _, edu := range cv.Education {
			d.AddParagraph(educationHeading(edu))
		}
	}

	if len(cv.Skills) > 0 {
		d.AddParagraph(sectionHeading("Key Skills"))
		for _, skill := range cv.Skills {
			if text := cleanText(skill); text != "" {
				d.AddParagraph(bulletParagraph(text))
			}
		}
	}

	if len(cv.Interests) > 0 {
		d.AddParagraph(sectionHeading("Interests"))
		for _, interest := range cv.Interests {
			if text := cleanText(interest); text != "" {
				d.AddParagraph(bulletParagraph(text))
			}
		}
	}

	var buf bytes.Buffer
	if err := d.Write(&buf); err != nil {
		return nil, errors.RenderFailed(err)
	}
	return buf.Bytes(), nil
}

// experienceHeading renders "Position — Company (range)" in bold.
func experienceHeading(exp domain.Experience) docxml.Paragraph {
	heading := toTitleCase(strings.TrimSpace(exp.Position))
	if company := strings.TrimSpace(exp.Company); company != "" {
		heading = heading + " — " + company
	}
	if dates := dateRange(exp.StartDate, exp.EndDate, exp.Current); dates != "" {
		heading = fmt.Sprintf("%s (%s)", heading, dates)
	}
	return docxml.Paragraph{
		Runs: []docxml.Run{{
			Text: heading,
			Bold: true,
			Size: sizeBody,
			Font: fontBody,
		}},
		SpacingBefore: paragraphSpacing,
		SpacingAfter:  paragraphSpacing / 2,
		LineSpacing:   lineSpacing,
	}
}

// educationHeading renders "Degree — Institution (start - end)" in bold.
func educationHeading(edu domain.Education) docxml.Paragraph {
	heading := strings.TrimSpace(edu.Degree)
	if inst := strings.TrimSpace(edu.Institution); inst != "" {
		if heading == "" {
			heading = inst
		} else {
			heading = heading + " — " + inst
		}
	}
	if dates := dateRange(edu.StartDate, edu.EndDate, false); dates != "" {
		heading = fmt.Sprintf("%s (%s)", heading, dates)
	}
	return docxml.Paragraph{
		Runs: []docxml.Run{{
			Text: heading,
			Bold: true,
			Size: sizeBody,
			Font: fontBody,
		}},
		SpacingBefore: paragraphSpacing,
		SpacingAfter:  paragraphSpacing / 2,
		LineSpacing:   lineSpacing,
	}
}

// dateRange re-applies the short month-year format at render time so
// manually edited dates come out styled the same as pipeline output.
// Ongoing roles show the start date alone.
func dateRange(start, end string, current bool) string {
	start = formatting.ShortMonthYear(strings.TrimSpace(start))
	end = formatting.ShortMonthYear(strings.TrimSpace(end))
	switch {
	case start == "" && end == "":
		return ""
	case current || end == "":
		return start
	case start == "":
		return end
	default:
		return start + " - " + end
	}
}

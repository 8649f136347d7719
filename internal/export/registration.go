package export

import (
	"bytes"

	"github.com/ehstaff/ehstaff-backend/internal/cv/domain"
	"github.com/ehstaff/ehstaff-backend/internal/export/docxml"
	"github.com/ehstaff/ehstaff-backend/pkg/errors"
)

// RegistrationFileName returns the download name for an exported
// registration form.
func RegistrationFileName(caseID string) string {
	return "RegistrationForm_" + caseID + ".docx"
}

// registrationRows returns the label/value pairs in the fixed order the
// printed form uses. The empty "Emergency Contact Details" row acts as a
// visual divider before the emergency contact fields.
func registrationRows(f *domain.RegistrationForm) [][2]string {
	return [][2]string{
		{"Title (Dr, Mr, Mrs, Ms, Other) ", f.Title},
		{"First Name.", f.FirstName},
		{"Last Name.", f.LastName},
		{"Preferred Gender Pronouns.", f.Pronouns},
		{"Marital Status.", f.MaritalStatus},
		{"Job Title.", f.JobTitle},
		{"Date of Birth.", f.DateOfBirth},
		{"Email address.", f.Email},
		{"Mobile Telephone Number.", f.Phone},
		{"Address.", f.Address},
		{"Desired annual salary.", f.DesiredSalary},
		{"Nationality.", f.Nationality},
		{"Languages Spoken.", f.Languages},
		{"UTR Number if Self-Employed.", f.UTR},
		{"Do you have a current DBS?", f.CurrentDBS},
		{"Do you have a criminal record?", f.CriminalRecord},
		{"Do you have a driving licence?", f.DrivingLicence},
		{"Is your licence clean?", f.LicenceClean},
		{"Happy to work in a residence with pets?", f.HappyWithPets},
		{"Do you have any pets?", f.OwnPets},
		{"Preferred work location.", f.PreferredLocation},
		{"Willing to travel?", f.WillingToTravel},
		{"Current notice period.", f.NoticePeriod},
		{"Live in or out positions preferred?", f.LiveInOrOut},
		{"Gender.", f.Gender},
		{"Do you have legal proof of right to work in the UK?", f.RightToWork},
		{"Share code/pre/full settled status", f.ShareCodeStatus},
		{"Do you have any dependants.", f.Dependants},
		{"National Insurance Number.", f.NINumber},
		{"Do you smoke/vape?", f.SmokeVape},
		{"Emergency Contact Details", ""},
		{"Name", f.EmergencyName},
		{"Telephone", f.EmergencyPhone},
		{"Relationship to Candidate", f.EmergencyRelation},
	}
}

// registrationHeader is the plain left-aligned brand line the printed
// form carries in place of the CV header. No footer on this document.
func registrationHeader() []docxml.Paragraph {
	return []docxml.Paragraph{{
		Runs: []docxml.Run{{
			Text:  "EXCLUSIVE HOUSEHOLD STAFF",
			Bold:  true,
			Color: "2F2F2F",
			Size:  24,
			Font:  "Arial",
		}},
		SpacingBefore: sectionSpacing,
		SpacingAfter:  100,
	}}
}

// RenderRegistrationForm renders a registration form as the agency's
// printable candidate registration document.
func RenderRegistrationForm(form *domain.RegistrationForm) ([]byte, error) {
	if form == nil {
		return nil, errors.BadRequest("no registration form to render")
	}

	d := docxml.New()
	d.SetMargins(docxml.Margins{Top: 2000, Right: 1440, Bottom: 1440, Left: 1440})
	d.SetHeader(registrationHeader())

	d.AddParagraph(docxml.Paragraph{
		Runs: []docxml.Run{{
			Text:  "Candidate Registration Form",
			Bold:  true,
			Color: colorHeaderFooter,
			Size:  30,
			Font:  fontBody,
		}},
		Align:        "center",
		SpacingAfter: sectionSpacing,
	})

	rows := make([]docxml.Row, 0, 34)
	for _, pair := range registrationRows(form) {
		rows = append(rows, docxml.Row{
			Height: 320,
			Cells: []docxml.Cell{
				{
					WidthPct: 35,
					Fill:     "f2f2f2",
					Paragraphs: []docxml.Paragraph{{
						Runs: []docxml.Run{{Text: pair[0], Bold: true, Size: sizeBody, Font: fontBody}},
					}},
				},
				{
					WidthPct: 65,
					Paragraphs: []docxml.Paragraph{{
						Runs: []docxml.Run{{Text: pair[1], Size: sizeBody, Font: fontBody}},
					}},
				},
			},
		})
	}
	d.AddTable(docxml.Table{
		WidthPct: 100,
		Borders:  &docxml.Border{Color: colorBorder, Size: 2},
		Rows:     rows,
	})

	checkbox := "☐"
	if form.Certified {
		checkbox = "☑"
	}
	d.AddParagraph(docxml.Paragraph{
		Runs: []docxml.Run{{
			Text: checkbox + "  I hereby certify that the above information is true and correct to the best of my knowledge",
			Size: sizeSmall,
			Font: fontBody,
		}},
		SpacingBefore: sectionSpacing,
		SpacingAfter:  paragraphSpacing,
	})
	d.AddParagraph(docxml.Paragraph{
		Runs: []docxml.Run{{
			Text: "Dated:  " + form.Dated,
			Size: sizeSmall,
			Font: fontBody,
		}},
	})

	var buf bytes.Buffer
	if err := d.Write(&buf); err != nil {
		return nil, errors.RenderFailed(err)
	}
	return buf.Bytes(), nil
}

package export

import (
	"archive/zip"
	"bytes"
	"image"
	"image/color"
	"image/png"
	"io"
	"strings"
	"testing"

	"github.com/ehstaff/ehstaff-backend/internal/cv/domain"
)

func sampleCandidate() *domain.CandidateRecord {
	cv := domain.EmptyCandidate()
	cv.PersonalInfo.FirstName = "John"
	cv.PersonalInfo.LastName = "Smith"
	cv.PersonalInfo.JobTitle = "head chef"
	cv.Profile = "Experienced chef with a background in private households."
	cv.Experience = []domain.Experience{
		{
			Position:    "head chef",
			Company:     "The Grand Hotel",
			StartDate:   "2020-01-15", // manually edited raw date, restyled at render time
			EndDate:     "Dec 2023",
			Description: []string{"I am responsible for menu planning", "Worked as Ladies Maid cover"},
		},
		{
			Position:  "sous chef",
			Company:   "Private Estate",
			StartDate: "Mar 2015",
			Current:   true,
			EndDate:   "should not render",
		},
	}
	cv.Education = []domain.Education{
		{Degree: "Culinary Arts", Institution: "Le Cordon Bleu", StartDate: "2008", EndDate: "2010"},
	}
	cv.Skills = []string{"French Cuisine", "Menu Planning"}
	cv.Interests = []string{"Sailing"}
	return cv
}

func documentXML(t *testing.T, data []byte) string {
	t.Helper()
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		t.Fatalf("output is not a zip: %v", err)
	}
	for _, f := range zr.File {
		if f.Name != "word/document.xml" {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			t.Fatalf("open document.xml: %v", err)
		}
		defer rc.Close()
		content, err := io.ReadAll(rc)
		if err != nil {
			t.Fatalf("read document.xml: %v", err)
		}
		return string(content)
	}
	t.Fatal("word/document.xml not found")
	return ""
}

func TestRenderCVDeterministic(t *testing.T) {
	a, err := RenderCV(sampleCandidate(), nil)
	if err != nil {
		t.Fatalf("RenderCV error: %v", err)
	}
	b, err := RenderCV(sampleCandidate(), nil)
	if err != nil {
		t.Fatalf("RenderCV error: %v", err)
	}
	if !bytes.Equal(a, b) {
		t.Error("same record produced different bytes")
	}
}

func TestRenderCVContent(t *testing.T) {
	data, err := RenderCV(sampleCandidate(), nil)
	if err != nil {
		t.Fatalf("RenderCV error: %v", err)
	}
	doc := documentXML(t, data)

	for _, want := range []string{
		"JOHN SMITH",
		"Head Chef", // title-cased job title
		"PROFILE",
		"Experienced chef with a background in private households.",
		"Head Chef — The Grand Hotel (Jan 2020 - Dec 2023)", // raw ISO date restyled
		"Sous Chef — Private Estate (Mar 2015)",             // ongoing role shows start alone
		"Responsible for menu planning", // cleanup rewrote the opener
		"Worked as Lady's Maid cover",   // vocabulary fix
		"Culinary Arts — Le Cordon Bleu (Jan 2008 - Jan 2010)",
		"KEY SKILLS",
		"French Cuisine",
		"INTERESTS",
		"Sailing",
	} {
		if !strings.Contains(doc, want) {
			t.Errorf("document missing %q", want)
		}
	}

	if strings.Contains(doc, "2020-01-15") {
		t.Error("raw date emitted without short month-year formatting")
	}
	if strings.Contains(doc, "should not render") {
		t.Error("end date rendered for a current role")
	}
	if strings.Contains(doc, "I am responsible for") {
		t.Error("cleanup did not rewrite first-person opener")
	}
}

func TestRenderCVSectionsOmittedWhenEmpty(t *testing.T) {
	cv := domain.EmptyCandidate()
	cv.PersonalInfo.FirstName = "Jane"

	data, err := RenderCV(cv, nil)
	if err != nil {
		t.Fatalf("RenderCV error: %v", err)
	}
	doc := documentXML(t, data)

	for _, section := range []string{"PROFILE", "EXPERIENCE", "EDUCATION", "KEY SKILLS", "INTERESTS"} {
		if strings.Contains(doc, ">"+section+"<") {
			t.Errorf("empty section %q rendered", section)
		}
	}
	if !strings.Contains(doc, "JANE") {
		t.Error("name missing")
	}
}

func TestRenderCVNil(t *testing.T) {
	if _, err := RenderCV(nil, nil); err == nil {
		t.Error("want error for nil record")
	}
}

func TestCVFileName(t *testing.T) {
	cv := domain.EmptyCandidate()
	cv.PersonalInfo.FirstName = "John"
	if got := CVFileName(cv); got != "John CV.docx" {
		t.Errorf("CVFileName = %q", got)
	}

	empty := domain.EmptyCandidate()
	if got := CVFileName(empty); got != "Candidate CV.docx" {
		t.Errorf("CVFileName for empty = %q", got)
	}
}

func TestToTitleCase(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"head chef", "Head Chef"},
		{"HOUSEKEEPER/NANNY", "Housekeeper/Nanny"},
		{"live-in carer", "Live-In Carer"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := toTitleCase(tt.in); got != tt.want {
			t.Errorf("toTitleCase(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestCleanText(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"I am responsible for the kitchen", "Responsible for the kitchen"},
		{"I was responsible for a team", "Responsible for a team"},
		{"I manage the household accounts", "Manage the household accounts"},
		{"in this role, I supervised staff", "I supervised staff"},
		{"I have experience in silver service", "Experience in silver service"},
		{"I am skilled in pastry", "Skilled in pastry"},
		{"Worked for the Principle family", "Worked for the Principal family"},
		{"Served as Ladies Maid", "Served as Lady's Maid"},
		{"A very Discrete employee", "A very Discreet employee"},
		{"Gave the Upmost care", "Gave the Utmost care"},
		{"a principle chef and was discrete.", "a Principal chef and was Discreet."},
		{"she showed the upmost care as a ladies maid", "she showed the Utmost care as a Lady's Maid"},
		{"Trained staff; I have experience in pastry", "Trained staff; Experience in pastry"},
		{"Ordinary text stays put", "Ordinary text stays put"},
	}
	for _, tt := range tests {
		if got := cleanText(tt.in); got != tt.want {
			t.Errorf("cleanText(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestDateRange(t *testing.T) {
	tests := []struct {
		start, end string
		current    bool
		want       string
	}{
		{"2020-01-15", "2023-12-01", false, "Jan 2020 - Dec 2023"},
		{"15/01/2020", "Dec 2023", false, "Jan 2020 - Dec 2023"},
		{"Mar 2015", "", false, "Mar 2015"},
		{"Mar 2015", "Dec 2023", true, "Mar 2015"},
		{"", "2010", false, "Jan 2010"},
		{"", "", false, ""},
	}
	for _, tt := range tests {
		if got := dateRange(tt.start, tt.end, tt.current); got != tt.want {
			t.Errorf("dateRange(%q, %q, %v) = %q, want %q", tt.start, tt.end, tt.current, got, tt.want)
		}
	}
}

func encodePNG(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			img.Set(x, y, color.RGBA{R: uint8(x % 256), G: uint8(y % 256), A: 255})
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encode png: %v", err)
	}
	return buf.Bytes()
}

func TestPreparePhotoPortrait(t *testing.T) {
	photo, err := PreparePhoto(encodePNG(t, 200, 300))
	if err != nil {
		t.Fatalf("PreparePhoto error: %v", err)
	}
	if photo.Width != photoSizePx || photo.Height != photoSizePx {
		t.Errorf("size = %dx%d, want %dx%d", photo.Width, photo.Height, photoSizePx, photoSizePx)
	}

	bounds, err := imageBounds(photo.PNG)
	if err != nil {
		t.Fatalf("decode output: %v", err)
	}
	if bounds.Dx() != photoSizePx || bounds.Dy() != photoSizePx {
		t.Errorf("output bounds = %v", bounds)
	}
}

func TestPreparePhotoLandscapeScalesDown(t *testing.T) {
	photo, err := PreparePhoto(encodePNG(t, 400, 200))
	if err != nil {
		t.Fatalf("PreparePhoto error: %v", err)
	}
	want := int(float64(photoSizePx)*0.75 + 0.5)
	if photo.Width != want || photo.Height != want {
		t.Errorf("size = %dx%d, want %dx%d", photo.Width, photo.Height, want, want)
	}
}

func TestPreparePhotoCorrupt(t *testing.T) {
	if _, err := PreparePhoto([]byte("not an image")); err == nil {
		t.Error("want error for corrupt image data")
	}
}

func TestRenderCVWithPhoto(t *testing.T) {
	photo, err := PreparePhoto(encodePNG(t, 300, 300))
	if err != nil {
		t.Fatalf("PreparePhoto error: %v", err)
	}

	data, err := RenderCV(sampleCandidate(), photo)
	if err != nil {
		t.Fatalf("RenderCV error: %v", err)
	}

	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		t.Fatalf("output is not a zip: %v", err)
	}
	found := false
	for _, f := range zr.File {
		if f.Name == "word/media/image1.png" {
			found = true
		}
	}
	if !found {
		t.Error("embedded photo missing from package")
	}
}

func TestRenderRegistrationForm(t *testing.T) {
	form := &domain.RegistrationForm{
		Title:     "Ms",
		FirstName: "Jane",
		LastName:  "Doe",
		Email:     "jane@example.com",
		Certified: true,
		Dated:     "12 March 2025",
	}

	data, err := RenderRegistrationForm(form)
	if err != nil {
		t.Fatalf("RenderRegistrationForm error: %v", err)
	}
	doc := documentXML(t, data)

	for _, want := range []string{
		"Candidate Registration Form",
		"Title (Dr, Mr, Mrs, Ms, Other) ",
		"First Name.",
		"Preferred Gender Pronouns.",
		"UTR Number if Self-Employed.",
		"Do you have legal proof of right to work in the UK?",
		"Share code/pre/full settled status",
		"Do you have any dependants.",
		"Emergency Contact Details",
		"Relationship to Candidate",
		"Jane",
		"☑",
		"Dated:  12 March 2025",
		`<w:pgMar w:top="2000"`,
		`<w:shd w:val="clear" w:color="auto" w:fill="f2f2f2"/>`,
	} {
		if !strings.Contains(doc, want) {
			t.Errorf("document missing %q", want)
		}
	}

	rowCount := strings.Count(doc, "<w:tr>")
	if rowCount != 34 {
		t.Errorf("table has %d rows, want 34", rowCount)
	}

	// Table cells are body size; only the consent and dated lines are small.
	if n := strings.Count(doc, `<w:sz w:val="20"/>`); n != 2 {
		t.Errorf("found %d small runs, want 2", n)
	}

	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		t.Fatalf("output is not a zip: %v", err)
	}
	for _, f := range zr.File {
		if f.Name == "word/footer1.xml" {
			t.Error("registration form should not carry a page footer")
		}
	}
}

func TestRenderRegistrationFormUncertified(t *testing.T) {
	data, err := RenderRegistrationForm(&domain.RegistrationForm{FirstName: "Jane"})
	if err != nil {
		t.Fatalf("RenderRegistrationForm error: %v", err)
	}
	doc := documentXML(t, data)
	if !strings.Contains(doc, "☐") {
		t.Error("unchecked box missing")
	}
}

func TestRegistrationFileName(t *testing.T) {
	if got := RegistrationFileName("case-42"); got != "RegistrationForm_case-42.docx" {
		t.Errorf("RegistrationFileName = %q", got)
	}
}

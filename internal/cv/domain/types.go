package domain

import (
	"strings"
	"time"
)

// Status represents the lifecycle state of a CV case.
type Status string

const (
	StatusUploaded   Status = "uploaded"
	StatusProcessing Status = "processing"
	StatusProcessed  Status = "processed"
	StatusApproved   Status = "approved"
	StatusRejected   Status = "rejected"
)

// CanTransition reports whether a case may move from one status to another.
// The state machine only moves forward: uploaded → processing → processed →
// approved, with rejected reachable from processing only.
func CanTransition(from, to Status) bool {
	switch from {
	case StatusUploaded:
		return to == StatusProcessing
	case StatusProcessing:
		return to == StatusProcessed || to == StatusRejected
	case StatusProcessed:
		return to == StatusApproved || to == StatusProcessed
	default:
		return false
	}
}

// Proficiency is the closed set of language proficiency levels.
type Proficiency string

const (
	ProficiencyBasic        Proficiency = "Basic"
	ProficiencyIntermediate Proficiency = "Intermediate"
	ProficiencyAdvanced     Proficiency = "Advanced"
	ProficiencyNative       Proficiency = "Native"
)

// PersonalInfo holds candidate identity and contact fields.
// FirstName, LastName and JobTitle are always present (possibly empty),
// never absent.
type PersonalInfo struct {
	FirstName     string `json:"firstName"`
	LastName      string `json:"lastName"`
	JobTitle      string `json:"jobTitle"`
	PhotoURL      string `json:"photoUrl,omitempty"`
	Nationality   string `json:"nationality"`
	DateOfBirth   string `json:"dateOfBirth"`
	MaritalStatus string `json:"maritalStatus"`
	Email         string `json:"email,omitempty"`
	Phone         string `json:"phone,omitempty"`
	Address       string `json:"address,omitempty"`
}

// Experience is a single employment entry.
// If Current is true, EndDate is not rendered even when set.
type Experience struct {
	ID           string   `json:"id"`
	Company      string   `json:"company"`
	Position     string   `json:"position"`
	StartDate    string   `json:"startDate"`
	EndDate      string   `json:"endDate,omitempty"`
	Current      bool     `json:"current"`
	Description  []string `json:"description"`
	Achievements []string `json:"achievements"`
}

// Education is a single education entry.
type Education struct {
	ID          string `json:"id"`
	Institution string `json:"institution"`
	Degree      string `json:"degree"`
	Field       string `json:"field"`
	StartDate   string `json:"startDate"`
	EndDate     string `json:"endDate"`
	GPA         string `json:"gpa,omitempty"`
}

// Language pairs a language name with a proficiency level.
type Language struct {
	Name        string      `json:"name"`
	Proficiency Proficiency `json:"proficiency"`
}

// CandidateRecord is the canonical structured representation of a
// candidate's profile, produced by the AI path or the heuristic fallback
// and consumed by the export renderer.
type CandidateRecord struct {
	PersonalInfo   PersonalInfo `json:"personalInfo"`
	Profile        string       `json:"profile"`
	Experience     []Experience `json:"experience"`
	Education      []Education  `json:"education"`
	Skills         []string     `json:"skills"`
	Interests      []string     `json:"interests"`
	Languages      []Language   `json:"languages"`
	Certifications []string     `json:"certifications,omitempty"`
}

// EmptyCandidate returns a structurally valid record with all required
// collections present and all string fields empty.
func EmptyCandidate() *CandidateRecord {
	return &CandidateRecord{
		Experience:     []Experience{},
		Education:      []Education{},
		Skills:         []string{},
		Interests:      []string{},
		Languages:      []Language{},
		Certifications: []string{},
	}
}

// FlattenText derives the plain-text representation of a record used for
// embedding at approval time. Blank entries are dropped; lines are
// newline-joined.
func (c *CandidateRecord) FlattenText() string {
	if c == nil {
		return ""
	}
	var lines []string
	push := func(s string) {
		if s = strings.TrimSpace(s); s != "" {
			lines = append(lines, s)
		}
	}
	push(strings.TrimSpace(c.PersonalInfo.FirstName + " " + c.PersonalInfo.LastName))
	push(c.PersonalInfo.JobTitle)
	push(c.Profile)
	for _, e := range c.Experience {
		push(strings.TrimSpace(strings.Join([]string{e.Position, e.Company, e.StartDate, e.EndDate}, " ")))
		for _, d := range e.Description {
			push(d)
		}
	}
	for _, e := range c.Education {
		push(strings.TrimSpace(e.Degree + " " + e.Institution + " " + e.StartDate + "-" + e.EndDate))
	}
	for _, s := range c.Skills {
		push(s)
	}
	for _, i := range c.Interests {
		push(i)
	}
	return strings.Join(lines, "\n")
}

// RegistrationForm is the flat candidate registration record. It is an
// independent entity exported as its own document; it is not derived from
// the CandidateRecord, though both attach to the same case.
type RegistrationForm struct {
	Title             string `json:"title,omitempty"`
	FirstName         string `json:"firstName,omitempty"`
	LastName          string `json:"lastName,omitempty"`
	Pronouns          string `json:"pronouns,omitempty"`
	MaritalStatus     string `json:"maritalStatus,omitempty"`
	JobTitle          string `json:"jobTitle,omitempty"`
	DateOfBirth       string `json:"dateOfBirth,omitempty"`
	Email             string `json:"email,omitempty" validate:"omitempty,email"`
	Phone             string `json:"phone,omitempty"`
	Address           string `json:"address,omitempty"`
	DesiredSalary     string `json:"desiredSalary,omitempty"`
	Nationality       string `json:"nationality,omitempty"`
	Languages         string `json:"languages,omitempty"`
	UTR               string `json:"utr,omitempty"`
	CurrentDBS        string `json:"currentDBS,omitempty"`
	CriminalRecord    string `json:"criminalRecord,omitempty"`
	DrivingLicence    string `json:"drivingLicence,omitempty"`
	LicenceClean      string `json:"licenceClean,omitempty"`
	HappyWithPets     string `json:"happyWithPets,omitempty"`
	OwnPets           string `json:"ownPets,omitempty"`
	PreferredLocation string `json:"preferredLocation,omitempty"`
	WillingToTravel   string `json:"willingToTravel,omitempty"`
	NoticePeriod      string `json:"noticePeriod,omitempty"`
	LiveInOrOut       string `json:"liveInOrOut,omitempty"`
	Gender            string `json:"gender,omitempty"`
	RightToWork       string `json:"rightToWork,omitempty"`
	ShareCodeStatus   string `json:"shareCodeStatus,omitempty"`
	Dependants        string `json:"dependants,omitempty"`
	NINumber          string `json:"niNumber,omitempty"`
	SmokeVape         string `json:"smokeVape,omitempty"`
	EmergencyName     string `json:"emergencyName,omitempty"`
	EmergencyPhone    string `json:"emergencyPhone,omitempty"`
	EmergencyRelation string `json:"emergencyRelation,omitempty"`
	Certified         bool   `json:"certified"`
	Dated             string `json:"dated,omitempty"`
}

// Case is the per-upload entity tracking processing status. It owns at
// most one CandidateRecord and one RegistrationForm.
type Case struct {
	ID               string            `json:"id" db:"id"`
	UserID           string            `json:"user_id" db:"user_id"`
	OriginalFileName string            `json:"original_file_name" db:"original_file_name"`
	OriginalFileURL  string            `json:"original_file_url" db:"original_file_url"`
	Candidate        *CandidateRecord  `json:"candidate,omitempty"`
	RegistrationForm *RegistrationForm `json:"registration_form,omitempty"`
	Status           Status            `json:"status" db:"status"`
	ApprovedAt       *time.Time        `json:"approved_at,omitempty" db:"approved_at"`
	ApprovedBy       *string           `json:"approved_by,omitempty" db:"approved_by"`
	CreatedAt        time.Time         `json:"created_at" db:"created_at"`
	UpdatedAt        time.Time         `json:"updated_at" db:"updated_at"`
}

// ProcessingProgress reports user-facing progress for a case.
type ProcessingProgress struct {
	ID          string   `json:"id"`
	Status      Status   `json:"status"`
	Progress    int      `json:"progress"`
	CurrentStep string   `json:"current_step"`
	Errors      []string `json:"errors,omitempty"`
}

// Progress maps a case status to its user-facing progress view.
func Progress(caseID string, status Status) ProcessingProgress {
	p := ProcessingProgress{ID: caseID, Status: status}
	switch status {
	case StatusUploaded:
		p.Progress, p.CurrentStep = 20, "File uploaded, starting processing"
	case StatusProcessing:
		p.Progress, p.CurrentStep = 60, "Structuring CV content"
	case StatusProcessed:
		p.Progress, p.CurrentStep = 90, "CV processed, ready for review"
	case StatusApproved:
		p.Progress, p.CurrentStep = 100, "CV approved and finalized"
	case StatusRejected:
		p.Progress, p.CurrentStep = 0, "Processing failed"
		p.Errors = []string{"Processing failed"}
	}
	return p
}

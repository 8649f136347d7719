package formatting

import (
	"reflect"
	"testing"

	"github.com/ehstaff/ehstaff-backend/internal/cv/domain"
)

func sampleRecord() *domain.CandidateRecord {
	cv := domain.EmptyCandidate()
	cv.PersonalInfo.FirstName = "jane"
	cv.PersonalInfo.JobTitle = "head housekeeper"
	cv.PersonalInfo.DateOfBirth = "1990-04-12"
	cv.Experience = []domain.Experience{
		{
			Position:  "Housekeeper",
			Company:   "Private Estate",
			StartDate: "2020-01-15",
			EndDate:   "15/06/2022",
			Description: []string{
				"I am responsible for the daily running of the house",
				"Worked with the Principle of the school",
			},
			Achievements: []string{
				"I was responsible for a team of five",
				"Maintained a Discrete presence",
			},
		},
	}
	cv.Education = []domain.Education{
		{Degree: "Diploma", Institution: "College", StartDate: "September 2008", EndDate: "2010"},
	}
	return cv
}

func TestApplyRules(t *testing.T) {
	got := ApplyRules(sampleRecord())

	if got.PersonalInfo.JobTitle != "Head Housekeeper" {
		t.Errorf("job title = %q, want %q", got.PersonalInfo.JobTitle, "Head Housekeeper")
	}
	if got.PersonalInfo.DateOfBirth != "" {
		t.Errorf("date of birth not cleared: %q", got.PersonalInfo.DateOfBirth)
	}

	exp := got.Experience[0]
	if exp.StartDate != "Jan 2020" {
		t.Errorf("start date = %q, want %q", exp.StartDate, "Jan 2020")
	}
	if exp.EndDate != "Jun 2022" {
		t.Errorf("end date = %q, want %q", exp.EndDate, "Jun 2022")
	}
	if exp.Description[0] != "Responsible for the daily running of the house" {
		t.Errorf("description[0] = %q", exp.Description[0])
	}
	if exp.Description[1] != "Worked with the Principal of the school" {
		t.Errorf("description[1] = %q", exp.Description[1])
	}
	if exp.Achievements[0] != "Responsible for a team of five" {
		t.Errorf("achievements[0] = %q", exp.Achievements[0])
	}
	if exp.Achievements[1] != "Maintained a Discreet presence" {
		t.Errorf("achievements[1] = %q", exp.Achievements[1])
	}

	edu := got.Education[0]
	if edu.StartDate != "Sep 2008" {
		t.Errorf("education start = %q, want %q", edu.StartDate, "Sep 2008")
	}
	if edu.EndDate != "Jan 2010" {
		t.Errorf("education end = %q, want %q", edu.EndDate, "Jan 2010")
	}
}

func TestApplyRulesDoesNotMutateInput(t *testing.T) {
	in := sampleRecord()
	want := sampleRecord()

	_ = ApplyRules(in)

	if !reflect.DeepEqual(in, want) {
		t.Error("input record was mutated")
	}
}

func TestApplyRulesIdempotent(t *testing.T) {
	once := ApplyRules(sampleRecord())
	twice := ApplyRules(once)

	if !reflect.DeepEqual(once, twice) {
		t.Error("applying rules twice differs from applying once")
	}
}

func TestApplyRulesNil(t *testing.T) {
	got := ApplyRules(nil)
	if got == nil {
		t.Fatal("want empty record for nil input")
	}
	if got.Experience == nil || got.Skills == nil {
		t.Error("collections must be non-nil")
	}
}

func TestShortMonthYear(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"", ""},
		{"2020-01-15", "Jan 2020"},
		{"15/01/2020", "Jan 2020"},
		{"2020-06", "Jun 2020"},
		{"March 2019", "Mar 2019"},
		{"Jan 2020", "Jan 2020"},
		{"September 2008 to June 2010", "Sep 2008 to Jun 2010"},
		{"present", "present"},
	}
	for _, tt := range tests {
		if got := ShortMonthYear(tt.in); got != tt.want {
			t.Errorf("ShortMonthYear(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

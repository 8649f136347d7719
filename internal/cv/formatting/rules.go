// Package formatting is the deterministic house-style normalizer applied
// to every candidate record before persistence, regardless of whether it
// came from the AI path or the heuristic fallback.
package formatting

import (
	"regexp"
	"strings"
	"time"

	"github.com/ehstaff/ehstaff-backend/internal/cv/domain"
)

// Phrase cleanup rules applied to experience description and achievement
// lines. The export renderer carries its own, overlapping table; the two
// run at different stages on different data and are kept separate.
var phraseRules = []struct {
	re          *regexp.Regexp
	replacement string
}{
	{regexp.MustCompile(`(?i)\bI am responsible for\b`), "Responsible for"},
	{regexp.MustCompile(`(?i)\bI was responsible for\b`), "Responsible for"},
	{regexp.MustCompile(`\bPrinciple\b`), "Principal"},
	{regexp.MustCompile(`\bDiscrete\b`), "Discreet"},
}

var monthAbbrevs = []struct {
	re    *regexp.Regexp
	short string
}{
	{regexp.MustCompile(`(?i)January|Jan`), "Jan"},
	{regexp.MustCompile(`(?i)February|Feb`), "Feb"},
	{regexp.MustCompile(`(?i)March|Mar`), "Mar"},
	{regexp.MustCompile(`(?i)April|Apr`), "Apr"},
	{regexp.MustCompile(`(?i)May`), "May"},
	{regexp.MustCompile(`(?i)June|Jun`), "Jun"},
	{regexp.MustCompile(`(?i)July|Jul`), "Jul"},
	{regexp.MustCompile(`(?i)August|Aug`), "Aug"},
	{regexp.MustCompile(`(?i)September|Sept|Sep`), "Sep"},
	{regexp.MustCompile(`(?i)October|Oct`), "Oct"},
	{regexp.MustCompile(`(?i)November|Nov`), "Nov"},
	{regexp.MustCompile(`(?i)December|Dec`), "Dec"},
}

var dateLayouts = []string{
	"2006-01-02",
	"2006-01",
	"02/01/2006", // UK day-first
	"01/02/2006",
	"Jan 2006",
	"January 2006",
	"2 January 2006",
	"January 2, 2006",
	"2006",
}

// ApplyRules returns a normalized deep copy of the record. The input is
// never mutated. Idempotent: applying twice equals applying once.
func ApplyRules(cv *domain.CandidateRecord) *domain.CandidateRecord {
	if cv == nil {
		return domain.EmptyCandidate()
	}
	clone := deepCopy(cv)

	// Job title capitalization (Title Case each word)
	clone.PersonalInfo.JobTitle = capitalizeEachWord(clone.PersonalInfo.JobTitle)

	// Date format: short month (Jan 2020)
	for i := range clone.Experience {
		e := &clone.Experience[i]
		e.StartDate = reformat(e.StartDate)
		e.EndDate = reformat(e.EndDate)
	}
	for i := range clone.Education {
		e := &clone.Education[i]
		e.StartDate = reformat(e.StartDate)
		e.EndDate = reformat(e.EndDate)
	}

	// Cleanup phrases in experience text
	for i := range clone.Experience {
		e := &clone.Experience[i]
		for j, d := range e.Description {
			e.Description[j] = cleanLine(d)
		}
		for j, a := range e.Achievements {
			e.Achievements[j] = cleanLine(a)
		}
	}

	// Privacy: date of birth is never carried downstream of formatting
	clone.PersonalInfo.DateOfBirth = ""

	return clone
}

// ShortMonthYear reformats a parseable date as "Jan 2006". Unparseable
// input gets a best-effort month-name abbreviation pass and is otherwise
// returned unchanged.
func ShortMonthYear(input string) string {
	if input == "" {
		return ""
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, input); err == nil {
			return t.Format("Jan 2006")
		}
	}
	out := input
	for _, m := range monthAbbrevs {
		out = m.re.ReplaceAllString(out, m.short)
	}
	return out
}

func reformat(value string) string {
	if value == "" {
		return ""
	}
	return ShortMonthYear(value)
}

func cleanLine(line string) string {
	out := strings.TrimSpace(line)
	for _, r := range phraseRules {
		out = r.re.ReplaceAllString(out, r.replacement)
	}
	return out
}

func capitalizeEachWord(input string) string {
	words := strings.Fields(input)
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + strings.ToLower(w[1:])
	}
	return strings.Join(words, " ")
}

// deepCopy clones a record including all nested slices.
func deepCopy(cv *domain.CandidateRecord) *domain.CandidateRecord {
	clone := *cv

	clone.Experience = make([]domain.Experience, len(cv.Experience))
	for i, e := range cv.Experience {
		e.Description = append([]string(nil), e.Description...)
		e.Achievements = append([]string(nil), e.Achievements...)
		clone.Experience[i] = e
	}
	clone.Education = append([]domain.Education(nil), cv.Education...)
	clone.Skills = append([]string(nil), cv.Skills...)
	clone.Interests = append([]string(nil), cv.Interests...)
	clone.Languages = append([]domain.Language(nil), cv.Languages...)
	clone.Certifications = append([]string(nil), cv.Certifications...)

	return &clone
}

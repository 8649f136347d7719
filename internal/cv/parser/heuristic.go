// Package parser is the heuristic fallback used when the AI structuring
// path is unavailable. It is a best-effort text segmenter: a partially
// correct record beats no record at all.
package parser

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/ehstaff/ehstaff-backend/internal/cv/domain"
)

var (
	reProfileHeader   = regexp.MustCompile(`(?i)^(profile|summary)\b`)
	reExpHeader       = regexp.MustCompile(`(?i)^(experience|employment|work history)\b`)
	reEduHeader       = regexp.MustCompile(`(?i)^(education|qualifications)\b`)
	reSkillsHeader    = regexp.MustCompile(`(?i)^(skills|competencies|key skills)\b`)
	reInterestsHeader = regexp.MustCompile(`(?i)^(interests|hobbies)\b`)

	reMonthYear = regexp.MustCompile(`(?i)(jan|feb|mar|apr|may|jun|jul|aug|sep|oct|nov|dec)[a-z]*\s*\d{2,4}`)
	rePresent   = regexp.MustCompile(`(?i)present|current`)
	reBullet    = regexp.MustCompile(`^[•\-]\s*`)
	reYear      = regexp.MustCompile(`\b\d{4}\b`)
	reParens    = regexp.MustCompile(`\([^)]*\)`)
	reSplitList = regexp.MustCompile(`[,•\n]+`)
)

// Parse segments raw CV text into a candidate record using keyword and
// layout heuristics. It is total: any input, including the empty string,
// yields a structurally valid record.
func Parse(raw string) *domain.CandidateRecord {
	rec := domain.EmptyCandidate()

	text := strings.ReplaceAll(raw, "\r", "")
	var lines []string
	for _, l := range strings.Split(text, "\n") {
		if l = strings.TrimSpace(l); l != "" {
			lines = append(lines, l)
		}
	}
	if len(lines) == 0 {
		return rec
	}

	iProfile := indexOf(lines, reProfileHeader)
	iExp := indexOf(lines, reExpHeader)
	iEdu := indexOf(lines, reEduHeader)
	iSkills := indexOf(lines, reSkillsHeader)
	iInterests := indexOf(lines, reInterestsHeader)

	rec.Profile = strings.Join(section(lines, iProfile, iExp, iEdu, iSkills, iInterests), "\n")
	rec.Experience = parseExperience(section(lines, iExp, iEdu, iSkills, iInterests))
	rec.Education = parseEducation(section(lines, iEdu, iSkills, iInterests))
	rec.Skills = splitList(section(lines, iSkills, iInterests, iEdu, iExp))
	rec.Interests = splitList(section(lines, iInterests, iSkills))

	// Name guess: first line of the document, split into first/last token.
	nameParts := strings.Fields(lines[0])
	if len(nameParts) > 0 {
		rec.PersonalInfo.FirstName = nameParts[0]
	}
	if len(nameParts) > 1 {
		rec.PersonalInfo.LastName = nameParts[1]
	}

	return rec
}

// indexOf returns the index of the first line matching the header pattern,
// or -1.
func indexOf(lines []string, re *regexp.Regexp) int {
	for i, l := range lines {
		if re.MatchString(l) {
			return i
		}
	}
	return -1
}

// section returns the lines strictly between a section header and the
// nearest following header, or the end of the document.
func section(lines []string, start int, following ...int) []string {
	if start < 0 {
		return nil
	}
	end := len(lines)
	for _, f := range following {
		if f > start && f < end {
			end = f
		}
	}
	return lines[start+1 : end]
}

// splitDash splits a line on its first dash separator. Em-dashes win over
// plain hyphens so that hyphenated date ranges inside the remainder stay
// intact.
func splitDash(line string) (string, string, bool) {
	for _, sep := range []string{"—", " - ", "-"} {
		if i := strings.Index(line, sep); i >= 0 {
			return strings.TrimSpace(line[:i]), strings.TrimSpace(line[i+len(sep):]), true
		}
	}
	return "", "", false
}

func parseExperience(lines []string) []domain.Experience {
	entries := []domain.Experience{}
	var cur *domain.Experience

	finish := func() {
		if cur != nil {
			entries = append(entries, *cur)
			cur = nil
		}
	}
	ensure := func() {
		if cur == nil {
			cur = &domain.Experience{
				ID:           strconv.Itoa(len(entries)),
				Description:  []string{},
				Achievements: []string{},
			}
		}
	}

	for _, l := range lines {
		switch {
		case reBullet.MatchString(l):
			ensure()
			cur.Description = append(cur.Description, reBullet.ReplaceAllString(l, ""))
		case strings.ContainsAny(l, "—-"):
			// New role: "Position — Company (dates)"
			finish()
			ensure()
			if pos, rest, ok := splitDash(l); ok {
				cur.Position = pos
				cur.Company = strings.TrimSpace(reParens.ReplaceAllString(rest, ""))
			}
			if dates := reMonthYear.FindAllString(l, 2); len(dates) > 0 {
				cur.StartDate = dates[0]
				if len(dates) > 1 {
					cur.EndDate = dates[1]
				}
				cur.Current = rePresent.MatchString(l)
			}
		default:
			// Continuation of the current entry's description
			if cur != nil {
				cur.Description = append(cur.Description, l)
			}
		}
	}
	finish()

	return entries
}

func parseEducation(lines []string) []domain.Education {
	entries := []domain.Education{}
	for _, l := range lines {
		degree, rest, ok := splitDash(l)
		if !ok {
			continue
		}
		// First two 4-digit numbers are taken as start/end year. A known
		// limitation: institution names containing 4-digit numbers misparse.
		years := reYear.FindAllString(rest, 2)
		e := domain.Education{
			ID:          strconv.Itoa(len(entries)),
			Degree:      degree,
			Institution: strings.TrimSpace(reYear.ReplaceAllString(rest, "")),
		}
		if len(years) > 0 {
			e.StartDate = years[0]
		}
		if len(years) > 1 {
			e.EndDate = years[1]
		}
		entries = append(entries, e)
	}
	return entries
}

func splitList(lines []string) []string {
	var out []string
	for _, tok := range reSplitList.Split(strings.Join(lines, ","), -1) {
		if tok = strings.TrimSpace(tok); tok != "" {
			out = append(out, tok)
		}
	}
	if out == nil {
		out = []string{}
	}
	return out
}

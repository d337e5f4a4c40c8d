package matching

import (
	"strings"

	"github.com/jonathan/resume-matcher/internal/segment"
)

// Levels is the seniority ladder, most junior first.
var Levels = []string{"intern", "junior", "mid", "senior", "lead", "manager", "director", "executive"}

var levelAliases = map[string]string{
	"internship":     "intern",
	"entry":          "junior",
	"entry-level":    "junior",
	"entry level":    "junior",
	"jr":             "junior",
	"associate":      "junior",
	"graduate":       "junior",
	"new grad":       "junior",
	"mid-level":      "mid",
	"mid level":      "mid",
	"intermediate":   "mid",
	"sr":             "senior",
	"staff":          "lead",
	"principal":      "lead",
	"tech lead":      "lead",
	"team lead":      "lead",
	"architect":      "lead",
	"management":     "manager",
	"head":           "executive",
	"vp":             "executive",
	"vice president": "executive",
	"cto":            "executive",
	"ceo":            "executive",
	"cio":            "executive",
	"chief":          "executive",
}

// LevelIndex returns the ladder position of a level name. Unrecognized names
// are resolved by scanning them for a seniority keyword.
func LevelIndex(level string) (int, bool) {
	key := strings.Trim(strings.ToLower(strings.TrimSpace(level)), ".")
	if key == "" {
		return 0, false
	}
	if alias, ok := levelAliases[key]; ok {
		key = alias
	}
	for i, l := range Levels {
		if l == key {
			return i, true
		}
	}
	if extracted := segment.ExtractLevel(level + " "); extracted != "" && extracted != key {
		return LevelIndex(extracted)
	}
	return 0, false
}

// educationRanks orders the degree ladder.
var educationRanks = map[string]int{
	segment.EducationHighSchool: 1,
	segment.EducationAssociates: 2,
	segment.EducationBachelors:  3,
	segment.EducationMasters:    4,
	segment.EducationPhD:        5,
}

var educationAliases = map[string]string{
	"high school": segment.EducationHighSchool,
	"highschool":  segment.EducationHighSchool,
	"ged":         segment.EducationHighSchool,
	"associate":   segment.EducationAssociates,
	"associates":  segment.EducationAssociates,
	"associate's": segment.EducationAssociates,
	"bachelor":    segment.EducationBachelors,
	"bachelors":   segment.EducationBachelors,
	"bachelor's":  segment.EducationBachelors,
	"bs":          segment.EducationBachelors,
	"ba":          segment.EducationBachelors,
	"bsc":         segment.EducationBachelors,
	"b.s.":        segment.EducationBachelors,
	"b.a.":        segment.EducationBachelors,
	"master":      segment.EducationMasters,
	"masters":     segment.EducationMasters,
	"master's":    segment.EducationMasters,
	"ms":          segment.EducationMasters,
	"msc":         segment.EducationMasters,
	"m.s.":        segment.EducationMasters,
	"mba":         segment.EducationMasters,
	"phd":         segment.EducationPhD,
	"ph.d.":       segment.EducationPhD,
	"ph.d":        segment.EducationPhD,
	"doctorate":   segment.EducationPhD,
}

// NormalizeEducation maps free-form education text to a canonical ladder
// name, or "" when no level can be recognized.
func NormalizeEducation(education string) string {
	trimmed := strings.TrimSpace(education)
	if trimmed == "" {
		return ""
	}
	if _, ok := educationRanks[trimmed]; ok {
		return trimmed
	}
	lower := strings.ToLower(trimmed)
	if canonical, ok := educationAliases[lower]; ok {
		return canonical
	}
	if fields := strings.Fields(lower); len(fields) > 0 {
		if canonical, ok := educationAliases[strings.TrimSuffix(fields[0], ",")]; ok {
			return canonical
		}
	}
	return segment.ExtractEducation(trimmed)
}

// EducationRank returns the ladder rank of an education description.
func EducationRank(education string) (int, bool) {
	canonical := NormalizeEducation(education)
	if canonical == "" {
		return 0, false
	}
	return educationRanks[canonical], true
}

// Package matching compares extracted job and resume features dimension by
// dimension. Every function here is pure.
package matching

import (
	"regexp"
	"strings"

	"github.com/jonathan/resume-matcher/internal/types"
)

// skillSynonyms maps a lowercase skill to names that count as the same skill.
// Lookups go both ways. node.js and javascript alias each other on purpose.
var skillSynonyms = map[string][]string{
	"javascript":       {"js", "ecmascript", "node.js", "nodejs"},
	"node.js":          {"nodejs", "node", "javascript"},
	"typescript":       {"ts"},
	"go":               {"golang", "go lang"},
	"kubernetes":       {"k8s"},
	"postgresql":       {"postgres", "psql"},
	"react":            {"react.js", "reactjs"},
	"vue":              {"vue.js", "vuejs"},
	"angular":          {"angularjs", "angular.js"},
	"aws":              {"amazon web services"},
	"gcp":              {"google cloud", "google cloud platform"},
	"azure":            {"microsoft azure"},
	"python":           {"python3", "py"},
	"c#":               {"csharp", "c sharp"},
	"c++":              {"cpp"},
	"machine learning": {"ml"},
	"ci/cd":            {"cicd", "ci cd", "continuous integration"},
	"css":              {"css3"},
	"html":             {"html5"},
	"mongodb":          {"mongo"},
	"terraform":        {"tf"},
}

// preferredLanguage marks job text that describes optional skills.
var preferredLanguage = regexp.MustCompile(`(?i)\b(preferred|bonus|plus|nice[- ]to[- ]have|desired|desirable|ideally|advantageous)\b`)

// skillKey lowercases and trims a skill name.
func skillKey(skill string) string {
	return strings.ToLower(strings.TrimSpace(skill))
}

// SkillsEquivalent reports whether two skill names refer to the same skill.
func SkillsEquivalent(a, b string) bool {
	ka, kb := skillKey(a), skillKey(b)
	if ka == "" || kb == "" {
		return false
	}
	if ka == kb {
		return true
	}
	for _, alias := range skillSynonyms[ka] {
		if alias == kb {
			return true
		}
	}
	for _, alias := range skillSynonyms[kb] {
		if alias == ka {
			return true
		}
	}
	return false
}

func containsEquivalent(list []string, skill string) bool {
	for _, s := range list {
		if SkillsEquivalent(s, skill) {
			return true
		}
	}
	return false
}

// ClassifySkills splits job skills into required and preferred sets. An
// extractor-provided split is honored; unclassified skills are then sorted by
// the language of the job text lines that mention them.
func ClassifySkills(skills types.JobSkills, jobText string) (required, preferred []string) {
	if skills.Classified() {
		required = dedupe(skills.Required)
		preferred = dedupe(skills.Preferred)
		for _, s := range skills.All {
			if !containsEquivalent(required, s) && !containsEquivalent(preferred, s) {
				required = append(required, strings.TrimSpace(s))
			}
		}
		return required, preferred
	}

	preferredLines, requiredLines := splitLinesByLanguage(jobText)
	for _, s := range skills.AllSkills() {
		if mentionedIn(preferredLines, s) && !mentionedIn(requiredLines, s) {
			preferred = append(preferred, s)
		} else {
			required = append(required, s)
		}
	}
	return required, preferred
}

// splitLinesByLanguage separates job text lines into preferred and required
// context. A short heading-like line with preferred language opens a preferred
// block that lasts until the next heading-like line.
func splitLinesByLanguage(text string) (preferredLines, requiredLines []string) {
	inPreferredBlock := false
	for _, raw := range strings.Split(text, "\n") {
		line := strings.TrimSpace(raw)
		if line == "" {
			continue
		}
		if looksLikeHeading(line) {
			inPreferredBlock = preferredLanguage.MatchString(line)
			continue
		}
		if inPreferredBlock || preferredLanguage.MatchString(line) {
			preferredLines = append(preferredLines, line)
		} else {
			requiredLines = append(requiredLines, line)
		}
	}
	return preferredLines, requiredLines
}

func looksLikeHeading(line string) bool {
	if strings.HasPrefix(line, "-") || strings.HasPrefix(line, "*") || strings.HasPrefix(line, "•") {
		return false
	}
	if strings.HasPrefix(line, "#") {
		return true
	}
	return len(strings.Fields(line)) <= 6 && strings.HasSuffix(line, ":")
}

// mentionedIn reports whether skill (or a synonym) appears as a whole term in any line.
func mentionedIn(lines []string, skill string) bool {
	names := append([]string{skillKey(skill)}, skillSynonyms[skillKey(skill)]...)
	for _, line := range lines {
		lower := strings.ToLower(line)
		for _, name := range names {
			if name != "" && containsTerm(lower, name) {
				return true
			}
		}
	}
	return false
}

// containsTerm finds term in text where it is not part of a longer word.
func containsTerm(text, term string) bool {
	for start := 0; ; {
		idx := strings.Index(text[start:], term)
		if idx < 0 {
			return false
		}
		idx += start
		end := idx + len(term)
		if (idx == 0 || !isTermChar(text[idx-1])) && (end == len(text) || !isTermChar(text[end])) {
			return true
		}
		start = idx + 1
	}
}

func isTermChar(c byte) bool {
	return c >= 'a' && c <= 'z' || c >= '0' && c <= '9' || c == '+' || c == '#'
}

// AnalyzeSkills compares job skills to the candidate's skills.
func AnalyzeSkills(job types.JobFeatures, resume types.ResumeFeatures, jobText string) types.SkillsMatch {
	required, preferred := ClassifySkills(job.Skills, jobText)
	candidate := dedupe(resume.Skills)

	m := types.SkillsMatch{
		RequiredSkills:    required,
		PreferredSkills:   preferred,
		MatchedRequired:   []string{},
		MissingRequired:   []string{},
		MatchedPreferred:  []string{},
		MissingPreferred:  []string{},
		AdditionalSkills:  []string{},
		Coverage:          1.0,
		PreferredCoverage: 1.0,
	}

	for _, s := range required {
		if containsEquivalent(candidate, s) {
			m.MatchedRequired = append(m.MatchedRequired, s)
		} else {
			m.MissingRequired = append(m.MissingRequired, s)
		}
	}
	for _, s := range preferred {
		if containsEquivalent(candidate, s) {
			m.MatchedPreferred = append(m.MatchedPreferred, s)
		} else {
			m.MissingPreferred = append(m.MissingPreferred, s)
		}
	}

	if n := len(required); n > 0 {
		m.Coverage = float64(n-len(m.MissingRequired)) / float64(n)
	}
	if n := len(preferred); n > 0 {
		m.PreferredCoverage = float64(n-len(m.MissingPreferred)) / float64(n)
	}

	jobAll := append(append([]string{}, required...), preferred...)
	for _, s := range candidate {
		if !containsEquivalent(jobAll, s) {
			m.AdditionalSkills = append(m.AdditionalSkills, s)
		}
	}
	m.OverlapScore = jaccard(jobAll, candidate)

	if len(preferred) == 0 {
		m.Score = m.Coverage
	} else {
		m.Score = 0.8*m.Coverage + 0.2*m.PreferredCoverage
	}
	return m
}

// jaccard is |intersection| / |union| with synonym-aware membership. Two empty
// sets have overlap 0.
func jaccard(a, b []string) float64 {
	if len(a) == 0 && len(b) == 0 {
		return 0
	}
	intersection := 0
	for _, s := range a {
		if containsEquivalent(b, s) {
			intersection++
		}
	}
	union := len(a) + len(b) - intersection
	if union <= 0 {
		return 0
	}
	return float64(intersection) / float64(union)
}

// dedupe trims names and drops case-insensitive duplicates, keeping order.
func dedupe(list []string) []string {
	seen := make(map[string]bool, len(list))
	out := make([]string, 0, len(list))
	for _, s := range list {
		k := skillKey(s)
		if k == "" || seen[k] {
			continue
		}
		seen[k] = true
		out = append(out, strings.TrimSpace(s))
	}
	return out
}

package segment

import (
	"regexp"
	"strings"

	"github.com/jonathan/resume-matcher/internal/types"
)

// Section names produced by the segmenter.
const (
	SectionRequirements     = "requirements"
	SectionResponsibilities = "responsibilities"
	SectionQualifications   = "qualifications"
	SectionSummary          = "summary"
	SectionExperience       = "experience"
	SectionSkills           = "skills"
	SectionEducation        = "education"
)

const (
	maxHeadingWords   = 6
	maxHeadingLength  = 60
	maxPreambleLines  = 3
	knownHeadingWords = 4
)

type sectionRule struct {
	name    string
	pattern *regexp.Regexp
}

// jobSectionRules are tried in order; the first match names the section.
// Preferred/nice-to-have headings come first so "Preferred Qualifications" is
// not captured as a requirement, and minimum/basic qualifications are
// requirements rather than qualifications.
var jobSectionRules = []sectionRule{
	{SectionQualifications, regexp.MustCompile(`(?i)\b(preferred|desired|bonus|nice[- ]to[- ]haves?|pluses|plus points|additional qualifications|good to have)\b`)},
	{SectionSummary, regexp.MustCompile(`(?i)\b(about (the|this) (role|job|position|team|opportunity)|overview|summary|job description|introduction|the opportunity)\b`)},
	{SectionRequirements, regexp.MustCompile(`(?i)\b(requirements|required|minimum qualifications|basic qualifications|must[- ]haves?|what you('ll)? (need|bring)|who you are|about you|what we('re| are)? looking for|you (have|bring|should have)|skills|experience|tech stack|technologies|tools)\b`)},
	{SectionQualifications, regexp.MustCompile(`(?i)\b(qualifications|education|certifications?)\b`)},
	{SectionResponsibilities, regexp.MustCompile(`(?i)\b(responsibilities|duties|what you('ll)? do|what you will do|the role|your role|day[- ]to[- ]day|in this role|your impact|key tasks|the work)\b`)},
}

var resumeSectionRules = []sectionRule{
	{SectionSkills, regexp.MustCompile(`(?i)\b(skills|technologies|technical (proficiencies|expertise)|tech stack|tools|competencies|languages (and|&) frameworks)\b`)},
	{SectionExperience, regexp.MustCompile(`(?i)\b(experience|employment|work history|career history|professional background|projects|positions held)\b`)},
	{SectionEducation, regexp.MustCompile(`(?i)\b(education|academic|degrees?|certifications?|training)\b`)},
	{SectionSummary, regexp.MustCompile(`(?i)\b(summary|profile|objective|about me|overview)\b`)},
}

var markdownHeading = regexp.MustCompile(`^#{1,6}\s+`)

// headingText reports whether a line looks like a section heading and returns
// its text with markup removed.
func headingText(line string) (string, bool) {
	trimmed := strings.TrimSpace(line)
	if trimmed == "" || isBulletLine(trimmed) {
		return "", false
	}

	if markdownHeading.MatchString(trimmed) {
		return cleanHeading(markdownHeading.ReplaceAllString(trimmed, "")), true
	}

	text := cleanHeading(trimmed)
	if text == "" || len(text) > maxHeadingLength {
		return "", false
	}
	words := len(strings.Fields(text))
	if words > maxHeadingWords {
		return "", false
	}

	stripped := strings.Trim(trimmed, "*_ ")
	if strings.HasSuffix(stripped, ":") {
		return text, true
	}
	if strings.ContainsAny(text, ".,;") {
		return "", false
	}
	if isAllCaps(text) {
		return text, true
	}
	if strings.HasPrefix(trimmed, "**") && strings.HasSuffix(trimmed, "**") {
		return text, true
	}
	return text, words <= knownHeadingWords && isTitleCase(text) && matchesKnownHeading(text)
}

// isTitleCase reports whether every word longer than three letters is capitalized.
func isTitleCase(s string) bool {
	for _, word := range strings.Fields(s) {
		if len(word) <= 3 {
			continue
		}
		if c := word[0]; c >= 'a' && c <= 'z' {
			return false
		}
	}
	return true
}

func cleanHeading(s string) string {
	s = strings.Trim(s, "*_ \t")
	s = strings.TrimSuffix(s, ":")
	return strings.TrimSpace(strings.Trim(s, "*_ "))
}

func isAllCaps(s string) bool {
	hasLetter := false
	for _, r := range s {
		if r >= 'a' && r <= 'z' {
			return false
		}
		if r >= 'A' && r <= 'Z' {
			hasLetter = true
		}
	}
	return hasLetter
}

func matchesKnownHeading(text string) bool {
	return classify(text, jobSectionRules) != "" || classify(text, resumeSectionRules) != ""
}

func classify(heading string, rules []sectionRule) string {
	for _, rule := range rules {
		if rule.pattern.MatchString(heading) {
			return rule.name
		}
	}
	return ""
}

// Clean prepares raw input for segmentation: HTML is flattened, whitespace is
// normalized and boilerplate is filtered out.
func Clean(raw string) string {
	text := raw
	if LooksLikeHTML(text) {
		if flattened, err := HTMLToText(text); err == nil {
			text = flattened
		}
	}
	return FilterNoise(Normalize(text))
}

// split scans cleaned text and collects the lines under each recognized heading.
// Lines before the first heading are returned separately as the preamble.
func split(cleaned string, rules []sectionRule) (map[string][]string, []string) {
	sections := make(map[string][]string)
	var preamble []string
	current := ""
	seenHeading := false

	for _, line := range strings.Split(cleaned, "\n") {
		if heading, ok := headingText(line); ok {
			seenHeading = true
			current = classify(heading, rules)
			continue
		}
		if strings.TrimSpace(line) == "" {
			continue
		}
		if !seenHeading {
			preamble = append(preamble, line)
			continue
		}
		if current != "" {
			sections[current] = append(sections[current], line)
		}
	}
	return sections, preamble
}

func joinLines(lines []string) string {
	return strings.TrimSpace(strings.Join(lines, "\n"))
}

func preambleSummary(preamble []string) string {
	if len(preamble) > maxPreambleLines {
		preamble = preamble[:maxPreambleLines]
	}
	return joinLines(preamble)
}

// SegmentJob splits a job posting into requirements, responsibilities,
// qualifications and summary. When neither requirements nor responsibilities
// can be located, the cleaned text is split in half between them.
func SegmentJob(raw string) types.JobSections {
	cleaned := Clean(raw)
	sections, preamble := split(cleaned, jobSectionRules)

	result := types.JobSections{
		Requirements:     joinLines(sections[SectionRequirements]),
		Responsibilities: joinLines(sections[SectionResponsibilities]),
		Qualifications:   joinLines(sections[SectionQualifications]),
		Summary:          joinLines(sections[SectionSummary]),
		RawText:          cleaned,
	}
	if result.Summary == "" {
		result.Summary = preambleSummary(preamble)
	}

	if result.Requirements == "" && result.Responsibilities == "" {
		lines := nonEmptyLines(cleaned)
		half := (len(lines) + 1) / 2
		result.Requirements = joinLines(lines[:half])
		result.Responsibilities = joinLines(lines[half:])
	}

	return result
}

// SegmentResume splits a resume into experience, skills, education and summary.
// A resume without a recognizable experience section uses the whole cleaned
// text as its experience.
func SegmentResume(raw string) types.ResumeSections {
	cleaned := Clean(raw)
	sections, preamble := split(cleaned, resumeSectionRules)

	result := types.ResumeSections{
		Experience: joinLines(sections[SectionExperience]),
		Skills:     joinLines(sections[SectionSkills]),
		Education:  joinLines(sections[SectionEducation]),
		Summary:    joinLines(sections[SectionSummary]),
		RawText:    cleaned,
	}
	if result.Summary == "" {
		result.Summary = preambleSummary(preamble)
	}
	if result.Experience == "" {
		result.Experience = cleaned
	}

	return result
}

func nonEmptyLines(text string) []string {
	var lines []string
	for _, line := range strings.Split(text, "\n") {
		if strings.TrimSpace(line) != "" {
			lines = append(lines, line)
		}
	}
	return lines
}

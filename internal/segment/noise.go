package segment

import (
	"regexp"
	"strings"
)

// noiseLinePatterns drop whole lines: benefits boilerplate, EEO language and
// application instructions.
var noiseLinePatterns = []*regexp.Regexp{
	// benefits
	regexp.MustCompile(`(?i)\b(401\s?\(?k\)?|health,? dental|dental and vision|medical, dental|paid time off|unlimited pto|parental leave|wellness (stipend|program)|commuter benefits|free (lunch|snacks|meals)|employee stock purchase|tuition reimbursement|gym membership)\b`),
	// equal employment opportunity
	regexp.MustCompile(`(?i)(equal (employment )?opportunity|\beeo\b|affirmative action|without regard to|regardless of (race|gender|age|religion)|protected veteran|reasonable accommodations?|race, colou?r, religion|sexual orientation|gender identity)`),
	// application instructions
	regexp.MustCompile(`(?i)^(- )?(to apply|how to apply|apply now|apply today|click (here|the link|apply)|please (send|submit|email) (your|a|us) (resume|cv|application)|submit your (resume|application)|interested candidates)`),
	// compensation lines
	regexp.MustCompile(`(?i)^(- )?(salary|compensation|pay range|base pay|salary range|total compensation)\s*(range)?\s*[:\-]`),
}

// noiseHeadingPattern matches headings whose whole section is boilerplate.
var noiseHeadingPattern = regexp.MustCompile(`(?i)^(benefits|perks|perks (and|&) benefits|what we offer|why join us|compensation( and benefits)?|equal (employment )?opportunity.*|eeo statement|how to apply|application process)$`)

// compensationPattern strips salary figures inline.
var compensationPattern = regexp.MustCompile(`(?i)\$\s?\d[\d,]*(\.\d+)?\s?[km]?(\s?(-|–|to)\s?\$?\s?\d[\d,]*(\.\d+)?\s?[km]?)?(\s*(per|/|an?)\s*(hour|hr|year|yr|annum|month))?`)

// FilterNoise removes boilerplate from normalized text. Lines matching a noise
// rule are dropped, sections under a boilerplate heading are skipped until the
// next heading, and compensation figures are removed from the remaining lines.
func FilterNoise(text string) string {
	lines := strings.Split(text, "\n")
	kept := make([]string, 0, len(lines))
	skipping := false

	for _, line := range lines {
		heading, ok := headingText(line)
		if !ok {
			heading = cleanHeading(strings.TrimSpace(line))
			ok = noiseHeadingPattern.MatchString(heading)
		}
		if ok {
			skipping = noiseHeadingPattern.MatchString(heading)
			if skipping {
				continue
			}
		}
		if skipping || isNoiseLine(line) {
			continue
		}

		cleaned := compensationPattern.ReplaceAllString(line, "")
		if strings.TrimSpace(line) != "" && strings.Trim(cleaned, " -,.;:()") == "" {
			continue
		}
		kept = append(kept, cleaned)
	}

	return Normalize(strings.Join(kept, "\n"))
}

func isNoiseLine(line string) bool {
	trimmed := strings.TrimSpace(line)
	if trimmed == "" {
		return false
	}
	for _, re := range noiseLinePatterns {
		if re.MatchString(trimmed) {
			return true
		}
	}
	return false
}

package segment

import (
	"regexp"
	"strconv"
	"strings"
)

const maxPlausibleYears = 50

// yearsPattern matches "5 years", "5+ yrs", "3-5 years" and "10 plus years".
var yearsPattern = regexp.MustCompile(`(?i)\b(\d{1,2}(?:\.\d+)?)\s*(?:\+|plus)?\s*(?:(?:-|–|to)\s*(\d{1,2}(?:\.\d+)?)\s*\+?\s*)?(?:years?|yrs?)\b`)

// ExtractYears returns the largest years-of-experience figure mentioned in the
// text, or nil when none is found. Figures outside [0, 50) are ignored.
func ExtractYears(text string) *float64 {
	var best *float64
	for _, m := range yearsPattern.FindAllStringSubmatch(text, -1) {
		for _, group := range m[1:] {
			if group == "" {
				continue
			}
			v, err := strconv.ParseFloat(group, 64)
			if err != nil || v < 0 || v >= maxPlausibleYears {
				continue
			}
			if best == nil || v > *best {
				years := v
				best = &years
			}
		}
	}
	return best
}

// Education levels in descending order of rank.
const (
	EducationPhD        = "PhD"
	EducationMasters    = "Master's"
	EducationBachelors  = "Bachelor's"
	EducationAssociates = "Associate's"
	EducationHighSchool = "High School"
)

type educationRule struct {
	level   string
	pattern *regexp.Regexp
}

// educationRules are checked highest degree first; the first hit wins.
var educationRules = []educationRule{
	{EducationPhD, regexp.MustCompile(`(?i)(\bph\.?\s?d\b|\bdoctorate\b|\bdoctoral\b|\bdoctor of philosophy\b)`)},
	{EducationMasters, regexp.MustCompile(`(?i)(\bmaster['’]?s\b|\bmaster of\b|\bm\.s\.|\bm\.sc\b|\bmsc\b|\bmba\b|\bm\.eng\b|\bms (in|degree)\b|\bgraduate degree\b)`)},
	{EducationBachelors, regexp.MustCompile(`(?i)(\bbachelor['’]?s?\b|\bb\.s\.|\bb\.a\.|\bb\.sc\b|\bbsc\b|\b(bs|ba) (in|degree)\b|\bundergraduate degree\b|\b(4|four)[- ]year degree\b)`)},
	{EducationAssociates, regexp.MustCompile(`(?i)(\bassociate['’]?s? (degree|of)\b|\ba\.a\.s?\.)`)},
	{EducationHighSchool, regexp.MustCompile(`(?i)(\bhigh school\b|\bged\b|\bsecondary school\b)`)},
}

// ExtractEducation returns the highest education level mentioned, or "" when none is found.
func ExtractEducation(text string) string {
	for _, rule := range educationRules {
		if rule.pattern.MatchString(text) {
			return rule.level
		}
	}
	return ""
}

// Candidate work authorization statements.
var (
	candidateAuthPositive = []*regexp.Regexp{
		regexp.MustCompile(`(?i)\b(authorized|eligible) to work\b`),
		regexp.MustCompile(`(?i)\b(u\.?s\.?|us|american) citizen(ship)?\b`),
		regexp.MustCompile(`(?i)\bcitizen of the united states\b`),
		regexp.MustCompile(`(?i)\b(green card( holder)?|permanent resident)\b`),
		regexp.MustCompile(`(?i)\b(do|does|will) not (require|need) (visa )?sponsorship\b`),
		regexp.MustCompile(`(?i)\bno (visa )?sponsorship (required|needed)\b`),
	}
	candidateAuthNegative = []*regexp.Regexp{
		regexp.MustCompile(`(?i)\bnot (currently )?(authorized|eligible) to work\b`),
		regexp.MustCompile(`(?i)\b(will|would|do|does|currently) (require|need) (visa )?sponsorship\b`),
		regexp.MustCompile(`(?i)\b(seeking|requires|requiring) (visa )?sponsorship\b`),
		regexp.MustCompile(`(?i)\b(need|require)s? (an? )?(h-?1b|work visa|visa)\b`),
	}
)

// Job work authorization requirements.
var (
	jobAuthRequired = []*regexp.Regexp{
		regexp.MustCompile(`(?i)\bmust (be )?(legally )?(authorized|eligible) to work\b`),
		regexp.MustCompile(`(?i)\b(u\.?s\.?|us) (work authorization|citizenship) (is )?required\b`),
		regexp.MustCompile(`(?i)\bmust be an? (u\.?s\.?|us) citizen\b`),
		regexp.MustCompile(`(?i)\b(unable to|cannot|can't|can not|will not|won't|do not|does not|not able to) (provide |offer )?(visa )?sponsor(ship)?\b`),
		regexp.MustCompile(`(?i)\bwithout (the need for )?(current or future )?(visa )?sponsorship\b`),
		regexp.MustCompile(`(?i)\b(requires?|required) (an active )?(security )?clearance\b`),
		regexp.MustCompile(`(?i)\bwork authorization (is )?required\b`),
	}
	jobAuthNotRequired = []*regexp.Regexp{
		regexp.MustCompile(`(?i)\b(visa )?sponsorship (is )?(available|provided|offered)\b`),
		regexp.MustCompile(`(?i)\b(we|will|can) sponsor\b`),
		regexp.MustCompile(`(?i)\bopen to (visa )?sponsorship\b`),
	}
)

var negationSuffix = regexp.MustCompile(`(?i)\b(not|never|no)\s+(currently\s+)?$`)

// matchesUnnegated reports whether re matches somewhere in text without being
// directly preceded by a negation.
func matchesUnnegated(re *regexp.Regexp, text string) bool {
	for _, loc := range re.FindAllStringIndex(text, -1) {
		start := loc[0] - 16
		if start < 0 {
			start = 0
		}
		if !negationSuffix.MatchString(text[start:loc[0]]) {
			return true
		}
	}
	return false
}

func anyMatch(patterns []*regexp.Regexp, text string, unnegated bool) bool {
	for _, re := range patterns {
		if unnegated && matchesUnnegated(re, text) {
			return true
		}
		if !unnegated && re.MatchString(text) {
			return true
		}
	}
	return false
}

// triState resolves positive/negative evidence: nil when neither or both matched.
func triState(positive, negative bool) *bool {
	if positive == negative {
		return nil
	}
	v := positive
	return &v
}

// ExtractWorkAuthorization reports a candidate's work authorization status from
// resume text: true when authorized, false when sponsorship is needed, nil when
// unknown or contradictory.
func ExtractWorkAuthorization(text string) *bool {
	return triState(
		anyMatch(candidateAuthPositive, text, true),
		anyMatch(candidateAuthNegative, text, false),
	)
}

// ExtractWorkAuthRequirement reports whether a job posting requires existing
// work authorization: true when required, false when sponsorship is offered,
// nil when unstated or contradictory.
func ExtractWorkAuthRequirement(text string) *bool {
	return triState(
		anyMatch(jobAuthRequired, text, false),
		anyMatch(jobAuthNotRequired, text, true),
	)
}

var (
	locationLine  = regexp.MustCompile(`(?im)^\s*(?:- )?(?:location|based in|office location|work location)\s*[:\-]\s*(.+)$`)
	remotePattern = regexp.MustCompile(`(?i)\b(fully |100% )?remote\b`)
	hybridPattern = regexp.MustCompile(`(?i)\bhybrid\b`)
	onsitePattern = regexp.MustCompile(`(?i)\b(on[- ]?site|in[- ]office|in person)\b`)
)

const maxLocationLen = 80

// ExtractLocation returns an explicit "Location:" value, or a work arrangement
// keyword (Remote, Hybrid, On-site), or "" when nothing is stated.
func ExtractLocation(text string) string {
	if m := locationLine.FindStringSubmatch(text); m != nil {
		loc := strings.TrimSpace(m[1])
		if len(loc) > maxLocationLen {
			loc = strings.TrimSpace(loc[:maxLocationLen])
		}
		return loc
	}
	switch {
	case remotePattern.MatchString(text):
		return "Remote"
	case hybridPattern.MatchString(text):
		return "Hybrid"
	case onsitePattern.MatchString(text):
		return "On-site"
	}
	return ""
}

type levelRule struct {
	level   string
	pattern *regexp.Regexp
}

// levelRules are checked most senior first.
var levelRules = []levelRule{
	{"executive", regexp.MustCompile(`(?i)\b(vp|vice president|chief \w+ officer|cto|ceo|cio|head of)\b`)},
	{"director", regexp.MustCompile(`(?i)\bdirector\b`)},
	{"manager", regexp.MustCompile(`(?i)\b(engineering manager|manager|management)\b`)},
	{"principal", regexp.MustCompile(`(?i)\bprincipal\b`)},
	{"staff", regexp.MustCompile(`(?i)\bstaff (engineer|developer|scientist)\b`)},
	{"lead", regexp.MustCompile(`(?i)\b(tech(nical)? lead|team lead|lead (engineer|developer))\b`)},
	{"senior", regexp.MustCompile(`(?i)\b(senior|sr\.?)\s`)},
	{"mid", regexp.MustCompile(`(?i)\b(mid[- ]level|intermediate)\b`)},
	{"junior", regexp.MustCompile(`(?i)\b(junior|jr\.?|entry[- ]level|new grad(uate)?|graduate engineer)\b`)},
	{"intern", regexp.MustCompile(`(?i)\b(intern|internship)\b`)},
}

// ExtractLevel returns the most senior level keyword in the text, or "".
func ExtractLevel(text string) string {
	for _, rule := range levelRules {
		if rule.pattern.MatchString(text) {
			return rule.level
		}
	}
	return ""
}

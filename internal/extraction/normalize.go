package extraction

import (
	"strings"

	"github.com/jonathan/resume-matcher/internal/matching"
)

// skillNormalizations maps common spellings to a canonical name.
var skillNormalizations = map[string]string{
	"golang":              "Go",
	"go lang":             "Go",
	"javascript":          "JavaScript",
	"js":                  "JavaScript",
	"typescript":          "TypeScript",
	"ts":                  "TypeScript",
	"k8s":                 "Kubernetes",
	"kubernetes":          "Kubernetes",
	"react.js":            "React",
	"reactjs":             "React",
	"vue.js":              "Vue",
	"vuejs":               "Vue",
	"node.js":             "Node.js",
	"nodejs":              "Node.js",
	"node":                "Node.js",
	"postgres":            "PostgreSQL",
	"postgresql":          "PostgreSQL",
	"psql":                "PostgreSQL",
	"mysql":               "MySQL",
	"mongodb":             "MongoDB",
	"mongo":               "MongoDB",
	"aws":                 "AWS",
	"amazon web services": "AWS",
	"gcp":                 "GCP",
	"google cloud":        "GCP",
	"azure":               "Azure",
	"ci/cd":               "CI/CD",
	"graphql":             "GraphQL",
	"grpc":                "gRPC",
	"sql":                 "SQL",
	"ml":                  "Machine Learning",
	"machine learning":    "Machine Learning",
	"c#":                  "C#",
	"c++":                 "C++",
	"html":                "HTML",
	"css":                 "CSS",
	"rest":                "REST",
	"restful":             "REST",
	"terraform":           "Terraform",
}

// NormalizeSkillName returns the canonical spelling of a skill.
func NormalizeSkillName(skill string) string {
	normalized := strings.Join(strings.Fields(skill), " ")
	if normalized == "" {
		return ""
	}
	lower := strings.ToLower(normalized)
	if canonical, ok := skillNormalizations[lower]; ok {
		return canonical
	}
	// A single lowercase word gets a capital; mixed case and acronyms are kept.
	if normalized == lower && !strings.Contains(normalized, " ") {
		return strings.ToUpper(normalized[:1]) + normalized[1:]
	}
	return normalized
}

// NormalizeSkills canonicalizes and deduplicates a skill list, keeping first-seen order.
func NormalizeSkills(skills []string) []string {
	out := make([]string, 0, len(skills))
	seen := make(map[string]bool, len(skills))
	for _, s := range skills {
		n := NormalizeSkillName(s)
		key := strings.ToLower(n)
		if n == "" || seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, n)
	}
	return out
}

// normalizeDomains lowercases and deduplicates domain labels.
func normalizeDomains(domains []string) []string {
	out := make([]string, 0, len(domains))
	seen := make(map[string]bool, len(domains))
	for _, d := range domains {
		key := strings.ToLower(strings.Join(strings.Fields(d), " "))
		if key == "" || seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, key)
	}
	return out
}

// normalizeLevel maps a free-form seniority answer onto the ladder; "" when it does not fit.
func normalizeLevel(level string) string {
	idx, ok := matching.LevelIndex(level)
	if !ok {
		return ""
	}
	return matching.Levels[idx]
}

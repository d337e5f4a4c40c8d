// Package segment splits raw job posting and resume text into semantic sections
// and exposes the standalone field extractors used by the heuristic pipeline.
package segment

import (
	"regexp"
	"strings"
)

var excessiveBlankLines = regexp.MustCompile(`\n{3,}`)

// Normalize cleans whitespace while preserving line structure:
// line endings become LF, runs of spaces inside a line collapse to one,
// blank lines are capped at one in a row, and the whole text is trimmed.
// Normalize(Normalize(s)) == Normalize(s).
func Normalize(content string) string {
	if content == "" {
		return ""
	}

	content = strings.ReplaceAll(content, "\r\n", "\n")
	content = strings.ReplaceAll(content, "\r", "\n")

	lines := strings.Split(content, "\n")
	for i, line := range lines {
		lines[i] = strings.Join(strings.Fields(line), " ")
	}

	result := strings.Join(lines, "\n")
	result = excessiveBlankLines.ReplaceAllString(result, "\n\n")
	return strings.TrimSpace(result)
}

// isBulletLine checks if a line is a bullet list item
func isBulletLine(line string) bool {
	trimmed := strings.TrimLeft(line, " \t")
	return strings.HasPrefix(trimmed, "- ") || strings.HasPrefix(trimmed, "* ") ||
		strings.HasPrefix(trimmed, "• ") || strings.HasPrefix(trimmed, "· ")
}

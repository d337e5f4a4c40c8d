package llm

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBuildExtractionPrompt(t *testing.T) {
	prompt := BuildExtractionPrompt("  Extract the level.  ", []Field{
		{Name: "level", Nullable: true, Description: "seniority"},
		{Name: "skills", Type: "[]string"},
	}, "\nSenior Go engineer\n")

	assert.True(t, strings.HasPrefix(prompt, "Extract the level.\n\n"))
	assert.Contains(t, prompt, `"level": string | null, // seniority`)
	assert.Contains(t, prompt, `"skills": []string`+"\n}")
	assert.Contains(t, prompt, "Use null for values")
	assert.Contains(t, prompt, "\"\"\"\nSenior Go engineer\n\"\"\"")
}

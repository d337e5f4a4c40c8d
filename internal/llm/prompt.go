package llm

import (
	"fmt"
	"strings"
)

// Field describes one key of the JSON object the model must return.
type Field struct {
	Name        string
	Type        string // "string", "number", "[]string"
	Description string
	Nullable    bool
}

// BuildExtractionPrompt appends the output contract and the source text to instruction.
func BuildExtractionPrompt(instruction string, fields []Field, input string) string {
	var sb strings.Builder
	sb.WriteString(strings.TrimSpace(instruction))
	sb.WriteString("\n\nReturn ONLY a JSON object with exactly these keys:\n{\n")
	for i, f := range fields {
		typ := f.Type
		if typ == "" {
			typ = "string"
		}
		if f.Nullable {
			typ += " | null"
		}
		fmt.Fprintf(&sb, "  %q: %s", f.Name, typ)
		if i < len(fields)-1 {
			sb.WriteString(",")
		}
		if f.Description != "" {
			sb.WriteString(" // " + f.Description)
		}
		sb.WriteString("\n")
	}
	sb.WriteString("}\n\n")
	sb.WriteString("Rules:\n")
	sb.WriteString("- Use only facts stated in the text. Do not invent values.\n")
	sb.WriteString("- Use null for values the text does not support, and [] for empty lists.\n")
	sb.WriteString("- No markdown, no code fences, no commentary.\n\n")
	sb.WriteString("Text:\n\"\"\"\n")
	sb.WriteString(strings.TrimSpace(input))
	sb.WriteString("\n\"\"\"\n")
	return sb.String()
}

package llm

import "strings"

// CleanJSONBlock extracts the JSON value from a model answer. Markdown fences,
// leading prose and trailing chatter are dropped. Text without any JSON value
// is returned trimmed so the caller's parser reports the failure.
func CleanJSONBlock(text string) string {
	text = strings.TrimSpace(text)
	if strings.HasPrefix(text, "```") {
		text = strings.TrimPrefix(text, "```")
		if nl := strings.IndexByte(text, '\n'); nl >= 0 {
			lang := strings.TrimSpace(text[:nl])
			if !strings.ContainsAny(lang, "{[ ") {
				text = text[nl+1:]
			}
		}
		if end := strings.LastIndex(text, "```"); end >= 0 {
			text = text[:end]
		}
		text = strings.TrimSpace(text)
	}

	start := strings.IndexAny(text, "{[")
	if start < 0 {
		return text
	}
	if value := balancedValue(text[start:]); value != "" {
		return value
	}
	return text[start:]
}

// balancedValue returns the prefix of s holding one complete JSON object or
// array, honouring string literals and escapes. s must start with '{' or '['.
func balancedValue(s string) string {
	if s == "" || (s[0] != '{' && s[0] != '[') {
		return ""
	}
	var (
		depth    int
		inString bool
		escaped  bool
	)
	for i := 0; i < len(s); i++ {
		c := s[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case '{', '[':
			depth++
		case '}', ']':
			depth--
			if depth == 0 {
				return s[:i+1]
			}
		}
	}
	return ""
}

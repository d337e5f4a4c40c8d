package extraction

import (
	"encoding/json"
	"errors"

	"github.com/jonathan/resume-matcher/internal/llm"
	"github.com/jonathan/resume-matcher/internal/schemas"
)

// ParseResult is the outcome of turning a model answer into T. Exactly one of
// Value and Err is meaningful.
type ParseResult[T any] struct {
	Value T
	Err   error
}

// OK reports whether parsing succeeded.
func (r ParseResult[T]) OK() bool {
	return r.Err == nil
}

// Parse validates raw against the named embedded schema and decodes it.
func Parse[T any](schema, raw string) ParseResult[T] {
	var zero T
	doc := llm.CleanJSONBlock(raw)
	if doc == "" {
		return ParseResult[T]{Err: &ParseError{Message: "empty response"}}
	}

	var probe any
	if err := json.Unmarshal([]byte(doc), &probe); err != nil {
		return ParseResult[T]{Err: &ParseError{Message: "response is not valid JSON", Cause: err}}
	}

	s, err := schemas.Embedded(schema)
	if err != nil {
		return ParseResult[T]{Err: err}
	}
	if err := s.ValidateString(doc); err != nil {
		var ve *schemas.ValidationError
		if errors.As(err, &ve) && len(ve.Errors) > 0 {
			first := ve.Errors[0]
			return ParseResult[T]{Value: zero, Err: &ValidationError{Field: first.Field, Message: first.Message, Cause: err}}
		}
		return ParseResult[T]{Err: &ValidationError{Message: "schema check failed", Cause: err}}
	}

	var value T
	if err := json.Unmarshal([]byte(doc), &value); err != nil {
		return ParseResult[T]{Err: &ParseError{Message: "failed to decode response", Cause: err}}
	}
	return ParseResult[T]{Value: value}
}

type jobSkillsOutput struct {
	Required  []string `json:"required"`
	Preferred []string `json:"preferred"`
}

type resumeSkillsOutput struct {
	Skills []string `json:"skills"`
}

type domainsOutput struct {
	Domains []string `json:"domains"`
}

type yearsOutput struct {
	Years *float64 `json:"years"`
}

type levelOutput struct {
	Level *string `json:"level"`
}

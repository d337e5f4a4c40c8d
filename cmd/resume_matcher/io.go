package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	schemafiles "github.com/jonathan/resume-matcher/schemas"

	"github.com/jonathan/resume-matcher/internal/matcher"
	"github.com/jonathan/resume-matcher/internal/schemas"
	"github.com/jonathan/resume-matcher/internal/types"
)

// pairEntry is one entry of a pairs file. Text may be given inline or as a
// path relative to the pairs file.
type pairEntry struct {
	Job            string                `json:"job"`
	JobFile        string                `json:"job_file"`
	Resume         string                `json:"resume"`
	ResumeFile     string                `json:"resume_file"`
	ResumeFeatures *types.ResumeFeatures `json:"resume_features"`
	Options        *matcher.Options      `json:"options"`
}

func readText(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read %s: %w", path, err)
	}
	return string(data), nil
}

// readResumeFeatures loads pre-extracted features after checking them
// against the resume features schema.
func readResumeFeatures(path string) (*types.ResumeFeatures, error) {
	if err := schemas.ValidateJSONFile(schemafiles.ResumeFeatures, path); err != nil {
		var validationErr *schemas.ValidationError
		if errors.As(err, &validationErr) {
			return nil, fmt.Errorf("resume features do not match schema: %w", err)
		}
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	var f types.ResumeFeatures
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to parse resume features: %w", err)
	}
	return &f, nil
}

// readPairs loads a JSON array of pair entries.
func readPairs(path string) ([]matcher.Pair, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read pairs file: %w", err)
	}
	var entries []pairEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("failed to parse pairs file: %w", err)
	}
	if len(entries) == 0 {
		return nil, fmt.Errorf("pairs file %s is empty", path)
	}

	dir := filepath.Dir(path)
	pairs := make([]matcher.Pair, len(entries))
	for i, entry := range entries {
		p, err := entry.resolve(dir)
		if err != nil {
			return nil, fmt.Errorf("pair %d: %w", i, err)
		}
		pairs[i] = p
	}
	return pairs, nil
}

func (s pairEntry) resolve(dir string) (matcher.Pair, error) {
	job, err := inlineOrFile(s.Job, s.JobFile, dir)
	if err != nil {
		return matcher.Pair{}, err
	}
	resume, err := inlineOrFile(s.Resume, s.ResumeFile, dir)
	if err != nil {
		return matcher.Pair{}, err
	}
	return matcher.Pair{
		Job:     job,
		Resume:  matcher.ResumeInput{Content: resume, Features: s.ResumeFeatures},
		Options: s.Options,
	}, nil
}

func inlineOrFile(inline, file, dir string) (string, error) {
	if file == "" {
		return inline, nil
	}
	if inline != "" {
		return "", fmt.Errorf("both inline text and file %q given", file)
	}
	if !filepath.IsAbs(file) {
		file = filepath.Join(dir, file)
	}
	return readText(file)
}

// writeJSON writes v indented to path, or to w when path is empty.
func writeJSON(w io.Writer, path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}
	data = append(data, '\n')
	if path == "" {
		_, err = w.Write(data)
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write output file: %w", err)
	}
	return nil
}

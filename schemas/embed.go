// Package schemas embeds the JSON Schemas that guard model output and
// precomputed feature documents.
package schemas

import (
	"embed"
	"fmt"
	"io/fs"
	"sort"
	"strings"
)

// Schema names, without the .schema.json suffix.
const (
	JobSkills      = "job_skills"
	ResumeSkills   = "resume_skills"
	Domains        = "domains"
	Years          = "years"
	Level          = "level"
	ResumeFeatures = "resume_features"
)

const suffix = ".schema.json"

//go:embed *.schema.json
var files embed.FS

// Load returns the raw schema document for name.
func Load(name string) (string, error) {
	data, err := files.ReadFile(name + suffix)
	if err != nil {
		return "", fmt.Errorf("unknown schema %q: %w", name, err)
	}
	return string(data), nil
}

// Names lists the embedded schemas in sorted order.
func Names() []string {
	entries, err := fs.Glob(files, "*"+suffix)
	if err != nil {
		return nil
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, strings.TrimSuffix(e, suffix))
	}
	sort.Strings(names)
	return names
}

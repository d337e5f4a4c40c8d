package schemas

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	schemafiles "github.com/jonathan/resume-matcher/schemas"
)

const personSchema = `{
  "type": "object",
  "required": ["name"],
  "properties": {"name": {"type": "string"}, "age": {"type": "integer", "minimum": 0}}
}`

func TestValidateJSONString(t *testing.T) {
	assert.NoError(t, ValidateJSONString(personSchema, `{"name": "Ana", "age": 30}`))

	err := ValidateJSONString(personSchema, `{"age": -1}`)
	var ve *ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Len(t, ve.Errors, 2)
	assert.Contains(t, err.Error(), "validation failed")
}

func TestValidateJSONString_BadSchema(t *testing.T) {
	err := ValidateJSONString(`{"type": 12}`, `{}`)
	var le *SchemaLoadError
	assert.ErrorAs(t, err, &le)
}

func TestValidateJSONString_BadDocument(t *testing.T) {
	err := ValidateJSONString(personSchema, `{"name": `)
	var le *SchemaLoadError
	require.ErrorAs(t, err, &le)
	assert.NotNil(t, errors.Unwrap(err))
}

func TestEmbedded_CachesCompiledSchema(t *testing.T) {
	first, err := Embedded(schemafiles.Years)
	require.NoError(t, err)
	second, err := Embedded(schemafiles.Years)
	require.NoError(t, err)
	assert.Same(t, first, second)
	assert.Equal(t, schemafiles.Years, first.Name())

	_, err = Embedded("missing")
	assert.Error(t, err)
}

func TestEmbedded_ExtractionSchemas(t *testing.T) {
	years, err := Embedded(schemafiles.Years)
	require.NoError(t, err)
	assert.NoError(t, years.ValidateString(`{"years": 5}`))
	assert.NoError(t, years.ValidateString(`{"years": null}`))
	assert.Error(t, years.ValidateString(`{"years": "five"}`))
	assert.Error(t, years.ValidateString(`{"years": 90}`))

	skills, err := Embedded(schemafiles.JobSkills)
	require.NoError(t, err)
	assert.NoError(t, skills.ValidateString(`{"required": ["Go"], "preferred": []}`))
	err = skills.ValidateString(`{"required": ["Go"]}`)
	var ve *ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, schemafiles.JobSkills, ve.Schema)
}

func TestValidateJSONFile(t *testing.T) {
	dir := t.TempDir()
	good := filepath.Join(dir, "good.json")
	bad := filepath.Join(dir, "bad.json")
	require.NoError(t, os.WriteFile(good, []byte(`{"skills": ["Go"], "years_of_experience": 4}`), 0o600))
	require.NoError(t, os.WriteFile(bad, []byte(`{"skills": ["Go"], "salary": 1}`), 0o600))

	assert.NoError(t, ValidateJSONFile(schemafiles.ResumeFeatures, good))
	assert.Error(t, ValidateJSONFile(schemafiles.ResumeFeatures, bad))

	err := ValidateJSONFile(schemafiles.ResumeFeatures, filepath.Join(dir, "none.json"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read")
}

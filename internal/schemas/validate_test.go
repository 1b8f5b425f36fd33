package schemas

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSchema = `{
	"type": "object",
	"required": ["name", "funding_rate"],
	"properties": {
		"name": {"type": "string", "minLength": 1},
		"funding_rate": {"type": "string"}
	}
}`

func TestValidateJSONString_Valid(t *testing.T) {
	doc := `{"name": "KfW 261", "funding_rate": "bis 45%"}`
	assert.NoError(t, ValidateJSONString(testSchema, doc))
}

func TestValidateJSONString_MissingField(t *testing.T) {
	doc := `{"name": "KfW 261"}`
	err := ValidateJSONString(testSchema, doc)
	require.Error(t, err)

	var ve *ValidationError
	require.ErrorAs(t, err, &ve)
	require.NotEmpty(t, ve.Errors)
	assert.Contains(t, ve.Error(), "funding_rate")
}

func TestValidateJSONString_BrokenSchema(t *testing.T) {
	err := ValidateJSONString(`{"type": 42}`, `{}`)
	require.Error(t, err)

	var le *SchemaLoadError
	assert.ErrorAs(t, err, &le)
}

func TestValidateJSON_MissingFiles(t *testing.T) {
	err := ValidateJSON("does-not-exist.schema.json", "also-missing.json")
	assert.Error(t, err)
}

func TestResolveSchemaPath_FindsRepoSchemas(t *testing.T) {
	// Tests run from internal/schemas; the repo schemas live two levels up.
	path := ResolveSchemaPath("schemas/catalog.schema.json")
	assert.NotEmpty(t, path)
}

func TestResolveSchemaPath_MissingReturnsEmpty(t *testing.T) {
	assert.Empty(t, ResolveSchemaPath("schemas/no-such.schema.json"))
}

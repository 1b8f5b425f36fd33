package llm

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCleanJSONBlock_JSONFence(t *testing.T) {
	input := "```json\n{\"assessments\": []}\n```"
	assert.Equal(t, `{"assessments": []}`, CleanJSONBlock(input))
}

func TestCleanJSONBlock_GenericFenceWithLanguage(t *testing.T) {
	input := "```javascript\n{\"a\": 1}\n```"
	assert.Equal(t, `{"a": 1}`, CleanJSONBlock(input))
}

func TestCleanJSONBlock_NoFence(t *testing.T) {
	input := `{"a": 1}`
	assert.Equal(t, input, CleanJSONBlock(input))
}

func TestCleanJSONBlock_Whitespace(t *testing.T) {
	assert.Equal(t, `{"a": 1}`, CleanJSONBlock("  {\"a\": 1}\n"))
}

package llm_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"claimcheck/internal/llm"
)

type payload struct {
	DocumentType string  `json:"document_type"`
	Confidence   float64 `json:"confidence"`
	Reasoning    string  `json:"reasoning"`
}

func TestDecodeObject_ValidJSON(t *testing.T) {
	var p payload
	err := llm.DecodeObject(`{"document_type":"bill","confidence":0.9,"reasoning":"totals present"}`, &p)
	require.NoError(t, err)
	assert.Equal(t, "bill", p.DocumentType)
	assert.Equal(t, 0.9, p.Confidence)
}

func TestDecodeObject_StripsCodeFence(t *testing.T) {
	var p payload
	raw := "```json\n{\"document_type\":\"id_card\",\"confidence\":0.8,\"reasoning\":\"policy number\"}\n```"
	err := llm.DecodeObject(raw, &p)
	require.NoError(t, err)
	assert.Equal(t, "id_card", p.DocumentType)
}

func TestDecodeObject_ExtractsObjectFromProse(t *testing.T) {
	var p payload
	raw := `Here is the classification you asked for: {"document_type":"discharge_summary","confidence":0.85,"reasoning":"admission dates"} hope that helps!`
	err := llm.DecodeObject(raw, &p)
	require.NoError(t, err)
	assert.Equal(t, "discharge_summary", p.DocumentType)
	assert.Equal(t, 0.85, p.Confidence)
}

func TestDecodeObject_CompletesTruncatedOutput(t *testing.T) {
	var p payload
	raw := `{"document_type":"bill","reasoning":"looks like an invo`
	err := llm.DecodeObject(raw, &p)
	require.NoError(t, err)
	assert.Equal(t, "bill", p.DocumentType)
	assert.Empty(t, p.Reasoning)
}

func TestDecodeObject_EscapesNewlinesInStrings(t *testing.T) {
	var p payload
	raw := "{\"document_type\":\"bill\",\"confidence\":0.7,\"reasoning\": \"line one\nline two\"}"
	err := llm.DecodeObject(raw, &p)
	require.NoError(t, err)
	assert.Equal(t, "line one\nline two", p.Reasoning)
}

func TestDecodeObject_Unrepairable(t *testing.T) {
	var p payload
	err := llm.DecodeObject("sorry, I cannot help with that", &p)
	assert.Error(t, err)
}

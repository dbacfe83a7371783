package llm_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"claimcheck/internal/llm"
	"claimcheck/internal/port"
)

// capturingGenerator records the last input and replies with a fixed string.
type capturingGenerator struct {
	last  port.GenerateInput
	reply string
}

func (g *capturingGenerator) Generate(ctx context.Context, input port.GenerateInput) (string, error) {
	g.last = input
	return g.reply, nil
}

func (g *capturingGenerator) Name() string { return "capture" }

func TestClientGenerateStructured_DecodesFencedResponse(t *testing.T) {
	gen := &capturingGenerator{reply: "```json\n{\"document_type\": \"bill\", \"confidence\": 0.9}\n```"}
	client := llm.NewClient(gen, llm.RetryPolicy{MaxAttempts: 1})

	var got payload
	err := client.GenerateStructured(context.Background(), port.GenerateInput{
		Prompt:      "Classify this document.",
		Temperature: -1,
	}, "", &got)

	require.NoError(t, err)
	assert.Equal(t, "bill", got.DocumentType)
	assert.InDelta(t, 0.9, got.Confidence, 1e-9)
}

func TestClientGenerateStructured_AppendsJSONInstructionAndSchema(t *testing.T) {
	gen := &capturingGenerator{reply: `{"document_type": "bill"}`}
	client := llm.NewClient(gen, llm.RetryPolicy{MaxAttempts: 1})

	hint := llm.SchemaHint(map[string]string{"document_type": "one of bill, discharge_summary"})
	require.NotEmpty(t, hint)

	var got payload
	err := client.GenerateStructured(context.Background(), port.GenerateInput{Prompt: "Classify."}, hint, &got)

	require.NoError(t, err)
	assert.Contains(t, gen.last.Prompt, "Classify.")
	assert.Contains(t, gen.last.Prompt, "Respond ONLY with valid JSON")
	assert.Contains(t, gen.last.Prompt, "Use this schema:")
	assert.Contains(t, gen.last.Prompt, "document_type")
}

func TestClientGenerateStructured_UndecodableOutput(t *testing.T) {
	gen := &capturingGenerator{reply: "I cannot determine the document type."}
	client := llm.NewClient(gen, llm.RetryPolicy{MaxAttempts: 1})

	var got payload
	err := client.GenerateStructured(context.Background(), port.GenerateInput{Prompt: "Classify."}, "", &got)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "structured generation")
}

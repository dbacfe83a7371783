package llm

import (
	"context"
	"encoding/json"
	"fmt"

	"claimcheck/internal/port"
)

const jsonInstruction = "\n\nIMPORTANT: Respond ONLY with valid JSON. No markdown, no explanations, just the JSON object."

// Client wraps a TextGenerator with an explicit retry policy and a
// structured-output decode path. All pipeline components call the capability
// through this type.
type Client struct {
	gen   port.TextGenerator
	retry RetryPolicy
}

// NewClient creates a client around gen with the given retry policy.
func NewClient(gen port.TextGenerator, retry RetryPolicy) *Client {
	return &Client{gen: gen, retry: retry}
}

// Generate sends the prompt and returns the model text, retrying transient
// failures per the client's policy.
func (c *Client) Generate(ctx context.Context, input port.GenerateInput) (string, error) {
	var out string
	err := c.retry.Do(ctx, "generate", func(ctx context.Context) error {
		text, genErr := c.gen.Generate(ctx, input)
		if genErr != nil {
			return genErr
		}
		out = text
		return nil
	})
	if err != nil {
		return "", err
	}
	return out, nil
}

// GenerateStructured asks the model for a JSON object matching schemaHint and
// decodes it into dst, repairing near-valid output where possible.
func (c *Client) GenerateStructured(ctx context.Context, input port.GenerateInput, schemaHint string, dst interface{}) error {
	prompt := input.Prompt + jsonInstruction
	if schemaHint != "" {
		prompt += "\n\nUse this schema:\n" + schemaHint
	}
	input.Prompt = prompt

	text, err := c.Generate(ctx, input)
	if err != nil {
		return err
	}
	if err := DecodeObject(text, dst); err != nil {
		return fmt.Errorf("structured generation: %w", err)
	}
	return nil
}

// SchemaHint renders a field-name-to-description map as a stable JSON schema
// hint for prompts.
func SchemaHint(fields map[string]string) string {
	b, err := json.MarshalIndent(fields, "", "  ")
	if err != nil {
		return ""
	}
	return string(b)
}

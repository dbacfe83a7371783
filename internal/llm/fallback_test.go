package llm_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"claimcheck/internal/llm"
	"claimcheck/internal/port"
)

// scriptedGenerator returns canned results in call order, recording how often
// it was invoked.
type scriptedGenerator struct {
	name    string
	outputs []string
	errs    []error
	calls   int
}

func (g *scriptedGenerator) Generate(ctx context.Context, input port.GenerateInput) (string, error) {
	i := g.calls
	g.calls++
	if i >= len(g.errs) {
		i = len(g.errs) - 1
	}
	return g.outputs[i], g.errs[i]
}

func (g *scriptedGenerator) Name() string { return g.name }

func TestFallbackGenerator_PrimarySucceeds(t *testing.T) {
	primary := &scriptedGenerator{name: "gemini", outputs: []string{"ok"}, errs: []error{nil}}
	secondary := &scriptedGenerator{name: "openai", outputs: []string{"fallback"}, errs: []error{nil}}
	f := llm.NewFallbackGenerator([]port.TextGenerator{primary, secondary})

	out, err := f.Generate(context.Background(), port.GenerateInput{Prompt: "classify"})

	require.NoError(t, err)
	assert.Equal(t, "ok", out)
	assert.Equal(t, 0, secondary.calls)
}

func TestFallbackGenerator_FailsOverOnError(t *testing.T) {
	primary := &scriptedGenerator{name: "gemini", outputs: []string{""}, errs: []error{errors.New("boom")}}
	secondary := &scriptedGenerator{name: "openai", outputs: []string{"fallback"}, errs: []error{nil}}
	f := llm.NewFallbackGenerator([]port.TextGenerator{primary, secondary})

	out, err := f.Generate(context.Background(), port.GenerateInput{Prompt: "classify"})

	require.NoError(t, err)
	assert.Equal(t, "fallback", out)
	assert.Equal(t, 1, primary.calls)
}

func TestFallbackGenerator_RateLimitOpensCircuit(t *testing.T) {
	rle := llm.NewRateLimitError("gemini", errors.New("429"), time.Hour)
	primary := &scriptedGenerator{name: "gemini", outputs: []string{""}, errs: []error{rle}}
	secondary := &scriptedGenerator{name: "openai", outputs: []string{"fallback"}, errs: []error{nil}}
	f := llm.NewFallbackGenerator([]port.TextGenerator{primary, secondary})

	out, err := f.Generate(context.Background(), port.GenerateInput{Prompt: "classify"})
	require.NoError(t, err)
	assert.Equal(t, "fallback", out)

	// Circuit stays open on the next call, so the throttled provider is skipped.
	out, err = f.Generate(context.Background(), port.GenerateInput{Prompt: "classify"})
	require.NoError(t, err)
	assert.Equal(t, "fallback", out)
	assert.Equal(t, 1, primary.calls)
	assert.Equal(t, 2, secondary.calls)
}

func TestFallbackGenerator_ContentBlockedReturnsImmediately(t *testing.T) {
	blocked := &llm.ContentBlockedError{Provider: "gemini", Reason: "safety"}
	primary := &scriptedGenerator{name: "gemini", outputs: []string{""}, errs: []error{blocked}}
	secondary := &scriptedGenerator{name: "openai", outputs: []string{"fallback"}, errs: []error{nil}}
	f := llm.NewFallbackGenerator([]port.TextGenerator{primary, secondary})

	_, err := f.Generate(context.Background(), port.GenerateInput{Prompt: "classify"})

	assert.True(t, llm.IsContentBlocked(err))
	assert.Equal(t, 0, secondary.calls)
}

func TestFallbackGenerator_AllRateLimited(t *testing.T) {
	primary := &scriptedGenerator{
		name:    "gemini",
		outputs: []string{""},
		errs:    []error{llm.NewRateLimitError("gemini", errors.New("429"), time.Minute)},
	}
	secondary := &scriptedGenerator{
		name:    "openai",
		outputs: []string{""},
		errs:    []error{llm.NewRateLimitError("openai", errors.New("429"), time.Hour)},
	}
	f := llm.NewFallbackGenerator([]port.TextGenerator{primary, secondary})

	_, err := f.Generate(context.Background(), port.GenerateInput{Prompt: "classify"})

	require.Error(t, err)
	assert.True(t, llm.IsRateLimit(err))

	var rle *llm.RateLimitError
	require.True(t, errors.As(err, &rle))
	assert.Equal(t, "all", rle.Provider)
}

func TestFallbackGenerator_AllFailGeneric(t *testing.T) {
	primary := &scriptedGenerator{name: "gemini", outputs: []string{""}, errs: []error{errors.New("boom")}}
	secondary := &scriptedGenerator{name: "openai", outputs: []string{""}, errs: []error{errors.New("bust")}}
	f := llm.NewFallbackGenerator([]port.TextGenerator{primary, secondary})

	_, err := f.Generate(context.Background(), port.GenerateInput{Prompt: "classify"})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "all generators failed")
	assert.Contains(t, err.Error(), "bust")
	assert.False(t, llm.IsRateLimit(err))
}

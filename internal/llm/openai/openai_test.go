package openai_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"claimcheck/internal/config"
	"claimcheck/internal/llm"
	"claimcheck/internal/llm/openai"
	"claimcheck/internal/port"
)

func providerConfig() *config.ProviderConfig {
	return &config.ProviderConfig{Provider: "openai", APIKey: "test-key", Model: "gpt-4o-mini"}
}

func TestGenerate_ReturnsChoiceContent(t *testing.T) {
	var gotAuth string
	var gotBody map[string]interface{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		_, _ = w.Write([]byte(`{"choices": [{"message": {"content": "All findings are consistent."}, "finish_reason": "stop"}]}`))
	}))
	defer srv.Close()

	g := openai.NewGeneratorWithEndpoint(providerConfig(), srv.URL)
	out, err := g.Generate(context.Background(), port.GenerateInput{
		Prompt:       "Summarize the findings.",
		SystemPrompt: "You are a claims assistant.",
		Temperature:  0.3,
		MaxTokens:    300,
	})

	require.NoError(t, err)
	assert.Equal(t, "All findings are consistent.", out)
	assert.Equal(t, "Bearer test-key", gotAuth)
	assert.Equal(t, "gpt-4o-mini", gotBody["model"])
	assert.Equal(t, float64(300), gotBody["max_completion_tokens"])
	assert.Equal(t, 0.3, gotBody["temperature"])

	messages := gotBody["messages"].([]interface{})
	require.Len(t, messages, 2)
	assert.Equal(t, "system", messages[0].(map[string]interface{})["role"])
	assert.Equal(t, "user", messages[1].(map[string]interface{})["role"])
}

func TestGenerate_RateLimited(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Retry-After", "15")
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	g := openai.NewGeneratorWithEndpoint(providerConfig(), srv.URL)
	_, err := g.Generate(context.Background(), port.GenerateInput{Prompt: "Summarize."})

	require.Error(t, err)
	var rle *llm.RateLimitError
	require.True(t, errors.As(err, &rle))
	assert.Equal(t, "openai", rle.Provider)
	assert.Equal(t, 15.0, rle.RetryAfter.Seconds())
}

func TestGenerate_Refusal(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"choices": [{"message": {"content": "", "refusal": "I can't help with that."}, "finish_reason": "stop"}]}`))
	}))
	defer srv.Close()

	g := openai.NewGeneratorWithEndpoint(providerConfig(), srv.URL)
	_, err := g.Generate(context.Background(), port.GenerateInput{Prompt: "Summarize."})

	assert.True(t, llm.IsContentBlocked(err))
}

func TestGenerate_EmptyChoices(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"choices": []}`))
	}))
	defer srv.Close()

	g := openai.NewGeneratorWithEndpoint(providerConfig(), srv.URL)
	_, err := g.Generate(context.Background(), port.GenerateInput{Prompt: "Summarize."})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "no choices")
}

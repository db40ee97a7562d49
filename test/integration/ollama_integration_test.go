package integration

import (
	"context"
	"os"
	"testing"
	"time"

	"cortex-ai-be/pkg/llm"
	"cortex-ai-be/pkg/llm/ollama"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Runs against a local Ollama when OLLAMA_INTEGRATION=true.
func TestOllamaGeneration(t *testing.T) {
	if os.Getenv("OLLAMA_INTEGRATION") != "true" {
		t.Skip("Skipping integration test: OLLAMA_INTEGRATION not set")
	}

	baseURL := os.Getenv("OLLAMA_BASE_URL")
	if baseURL == "" {
		baseURL = "http://localhost:11434"
	}
	model := os.Getenv("LLM_MODEL")
	if model == "" {
		model = "gemma:2b"
	}

	gateway := llm.NewGateway(ollama.NewOllamaProvider(baseURL, model), 2*time.Minute)

	reply, err := gateway.Generate(context.Background(), "Reply with the single word: pong")
	require.NoError(t, err)
	assert.NotEmpty(t, reply)
}

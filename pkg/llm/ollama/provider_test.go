package ollama

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"cortex-ai-be/pkg/llm"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerate(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/generate", r.URL.Path)

		var req ollamaGenerateRequest
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "llama3", req.Model)
		assert.Equal(t, "USER QUESTION:\nhi", req.Prompt)
		assert.False(t, req.Stream)

		_ = json.NewEncoder(w).Encode(ollamaGenerateResponse{Response: "hello", Done: true})
	}))
	defer srv.Close()

	p := NewOllamaProvider(srv.URL+"/", "llama3")
	got, err := p.Generate(context.Background(), "USER QUESTION:\nhi")
	require.NoError(t, err)
	assert.Equal(t, "hello", got)
}

func TestChatMapsModelRole(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req ollamaChatRequest
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		if assert.Len(t, req.Messages, 2) {
			assert.Equal(t, "assistant", req.Messages[1].Role)
		}
		assert.Equal(t, "mistral", req.Model)

		_ = json.NewEncoder(w).Encode(ollamaChatResponse{Message: ollamaMessage{Role: "assistant", Content: "ok"}})
	}))
	defer srv.Close()

	p := NewOllamaProvider(srv.URL, "llama3")
	got, err := p.Chat(context.Background(), []llm.Message{
		{Role: "user", Content: "a"},
		{Role: "model", Content: "b"},
	}, llm.WithModel("mistral"))
	require.NoError(t, err)
	assert.Equal(t, "ok", got)
}

func TestGenerateSurfacesHTTPErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model not loaded", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	_, err := NewOllamaProvider(srv.URL, "llama3").Generate(context.Background(), "x")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 503")
}

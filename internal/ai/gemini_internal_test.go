package ai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/genai"
)

func TestGeminiClient_Generate(t *testing.T) {
	var body struct {
		Contents []struct {
			Role string `json:"role"`
		} `json:"contents"`
		SystemInstruction *struct {
			Parts []struct {
				Text string `json:"text"`
			} `json:"parts"`
		} `json:"systemInstruction"`
	}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Contains(t, r.URL.Path, "gemini-2.0-flash:generateContent")
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"candidates":[{"content":{"role":"model","parts":[{"text":"I never left the pantry."}]}}]}`))
	}))
	t.Cleanup(srv.Close)

	client, err := newGeminiClient(context.Background(), &genai.ClientConfig{ //nolint:exhaustruct // test config
		APIKey:      "test-key",
		Backend:     genai.BackendGeminiAPI,
		HTTPOptions: genai.HTTPOptions{BaseURL: srv.URL}, //nolint:exhaustruct // test config
	}, "gemini-2.0-flash", "text-embedding-004")
	require.NoError(t, err)

	text, err := client.Generate(context.Background(), []Message{
		{Role: RoleSystem, Content: "You are Margaret."},
		{Role: RoleUser, Content: "Where were you?"},
		{Role: RoleAssistant, Content: "In the pantry."},
		{Role: RoleUser, Content: "Are you sure?"},
	}, Options{Temperature: 0.1, JSON: false})
	require.NoError(t, err)
	require.Equal(t, "I never left the pantry.", text)

	require.Len(t, body.Contents, 3, "system message moves to the system instruction")
	require.Equal(t, "model", body.Contents[1].Role)
	require.NotNil(t, body.SystemInstruction)
	require.Equal(t, "You are Margaret.", body.SystemInstruction.Parts[0].Text)
}

func TestNewGeminiClient_RequiresKey(t *testing.T) {
	_, err := NewGeminiClient(context.Background(), " ", "m", "e")
	require.Error(t, err)
}

package llm

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jo-hoe/styleai/internal/skintone"
	"github.com/jo-hoe/styleai/internal/stylist"
)

type capturedRequest struct {
	Model       string            `json:"model"`
	Temperature float64           `json:"temperature"`
	MaxTokens   int               `json:"max_tokens"`
	Messages    []json.RawMessage `json:"messages"`
}

func newChatServer(t *testing.T, content string, status int) (*httptest.Server, *capturedRequest) {
	t.Helper()
	captured := &capturedRequest{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, "/chat/completions") {
			t.Errorf("Unexpected path %s", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer test-key" {
			t.Errorf("Expected bearer auth, got %q", got)
		}
		body, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(body, captured)

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		if status != http.StatusOK {
			_, _ = w.Write([]byte(`{"error":{"message":"boom","type":"server_error"}}`))
			return
		}
		reply := map[string]any{
			"id":      "chatcmpl-1",
			"object":  "chat.completion",
			"created": 1,
			"model":   captured.Model,
			"choices": []map[string]any{{
				"index":         0,
				"finish_reason": "stop",
				"message":       map[string]any{"role": "assistant", "content": content},
			}},
		}
		_ = json.NewEncoder(w).Encode(reply)
	}))
	t.Cleanup(srv.Close)
	return srv, captured
}

func newTestXAIClient(t *testing.T, url string) *XAIClient {
	t.Helper()
	client, err := NewXAIClient(XAIConfig{APIKey: "test-key", BaseURL: url})
	require.NoError(t, err)
	return client
}

func testProfile() stylist.Profile {
	return stylist.Profile{SkinTone: skintone.Olive, Undertone: skintone.Warm, Occasion: "party"}.WithDefaults()
}

func TestNewXAIClient_MissingKey(t *testing.T) {
	_, err := NewXAIClient(XAIConfig{})
	if !errors.Is(err, ErrMissingAPIKey) {
		t.Fatalf("Expected ErrMissingAPIKey, got %v", err)
	}
}

func TestXAIClient_Explain(t *testing.T) {
	srv, captured := newChatServer(t, "  Gold makes you glow.  ", http.StatusOK)
	client := newTestXAIClient(t, srv.URL)

	palette := []stylist.NamedColor{{Name: "Gold"}, {Name: "Rust"}, {Name: "Teal"}, {Name: "Cream"}}
	text, err := client.Explain(context.Background(), testProfile(), palette)
	require.NoError(t, err)

	assert.Equal(t, "Gold makes you glow.", text)
	assert.Equal(t, DefaultXAIModel, captured.Model)
	assert.Equal(t, 150, captured.MaxTokens)
	assert.InDelta(t, 0.8, captured.Temperature, 1e-9)
	require.Len(t, captured.Messages, 1)
	assert.Contains(t, string(captured.Messages[0]), "Gold, Rust, Teal colors")
	assert.NotContains(t, string(captured.Messages[0]), "Cream")
}

func TestXAIClient_Advice(t *testing.T) {
	srv, captured := newChatServer(t, "Wear emerald.", http.StatusOK)
	client := newTestXAIClient(t, srv.URL)

	advice, err := client.Advice(context.Background(), testProfile())
	require.NoError(t, err)

	assert.Equal(t, "Wear emerald.", advice.Text)
	assert.Equal(t, DefaultXAIModel, advice.Model)
	assert.InDelta(t, 0.7, captured.Temperature, 1e-9)
	require.Len(t, captured.Messages, 2)
	assert.Contains(t, string(captured.Messages[0]), "expert fashion stylist")
	assert.Contains(t, string(captured.Messages[1]), "Skin Tone: Olive")
}

func TestXAIClient_AnalyzeImage(t *testing.T) {
	srv, captured := newChatServer(t, "Warm olive skin.", http.StatusOK)
	client := newTestXAIClient(t, srv.URL)

	png := []byte("\x89PNG\r\n\x1a\n0000")
	text, err := client.AnalyzeImage(context.Background(), png)
	require.NoError(t, err)

	assert.Equal(t, "Warm olive skin.", text)
	assert.Equal(t, DefaultXAIVisionModel, captured.Model)
	require.Len(t, captured.Messages, 1)
	assert.Contains(t, string(captured.Messages[0]), "data:image/png;base64,")
}

func TestXAIClient_AnalyzeImage_Empty(t *testing.T) {
	client, err := NewXAIClient(XAIConfig{APIKey: "test-key"})
	require.NoError(t, err)
	if _, err := client.AnalyzeImage(context.Background(), nil); err == nil {
		t.Fatal("Expected error for empty image")
	}
}

func TestXAIClient_Errors(t *testing.T) {
	tests := []struct {
		name    string
		content string
		status  int
	}{
		{"server error", "", http.StatusInternalServerError},
		{"empty content", "   ", http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv, _ := newChatServer(t, tt.content, tt.status)
			client := newTestXAIClient(t, srv.URL)
			if _, err := client.Explain(context.Background(), testProfile(), []stylist.NamedColor{{Name: "Gold"}}); err == nil {
				t.Error("Expected error")
			}
		})
	}
}

package chat_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ayamizu/voxpet/internal/chat"
	"github.com/ayamizu/voxpet/internal/config"
)

func newClient(endpoint string) *chat.Client {
	return chat.New(config.ChatConfig{Endpoint: endpoint, Model: "qwen3:8b"})
}

func TestCompleteOllamaShape(t *testing.T) {
	t.Parallel()

	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/chat", func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Model    string      `json:"model"`
			Messages []chat.Turn `json:"messages"`
			Stream   bool        `json:"stream"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "qwen3:8b", req.Model)
		assert.False(t, req.Stream)

		_ = json.NewEncoder(w).Encode(map[string]any{
			"message": map[string]string{"role": "assistant", "content": "こんにちは！"},
		})
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	turns := []chat.Turn{{Role: "user", Content: "挨拶して"}}
	reply, history := newClient(srv.URL).Complete(context.Background(), turns)

	assert.Equal(t, "こんにちは！", reply)
	require.Len(t, history, 2)
	assert.Equal(t, chat.Turn{Role: "assistant", Content: "こんにちは！"}, history[1])
}

func TestCompleteOpenAIShape(t *testing.T) {
	t.Parallel()

	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/chat", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{
			"choices": []map[string]any{
				{"message": map[string]string{"content": "reply text"}},
			},
		})
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	reply, _ := newClient(srv.URL).Complete(context.Background(),
		[]chat.Turn{{Role: "user", Content: "hi"}})
	assert.Equal(t, "reply text", reply)
}

func TestCompleteEchoesOnBackendFailure(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.NotFoundHandler())
	srv.Close()

	turns := []chat.Turn{
		{Role: "system", Content: "short answers"},
		{Role: "user", Content: "你好"},
	}
	reply, history := newClient(srv.URL).Complete(context.Background(), turns)

	assert.Equal(t, "你好", reply, "failure echoes the last user turn")
	require.Len(t, history, 3)
	assert.Equal(t, "assistant", history[2].Role)
	assert.Equal(t, "你好", history[2].Content)
}

func TestCompleteEchoesOnEmptyReply(t *testing.T) {
	t.Parallel()

	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/chat", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{"message": map[string]string{"content": ""}})
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	reply, _ := newClient(srv.URL).Complete(context.Background(),
		[]chat.Turn{{Role: "user", Content: "echo me"}})
	assert.Equal(t, "echo me", reply)
}

func TestAvailable(t *testing.T) {
	t.Parallel()

	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/tags", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{"models": []string{}})
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	assert.True(t, newClient(srv.URL).Available(context.Background()))

	srv.Close()
	assert.False(t, newClient(srv.URL).Available(context.Background()))
}

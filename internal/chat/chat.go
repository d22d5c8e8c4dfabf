// Package chat implements the chat-completion collaborator client.
//
// It talks to an Ollama-compatible /api/chat endpoint and accepts either the
// Ollama reply shape or the OpenAI chat-completions shape. Its contract is
// degradation, not failure: when the backend is down, slow, or returns
// garbage, the reply is the last user turn echoed back, so callers never see
// a hard error from this package.
package chat

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/ayamizu/voxpet/internal/config"
	"github.com/ayamizu/voxpet/internal/observability"
)

const completionTimeout = 30 * time.Second

// Turn is one message in a conversation.
type Turn struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Completer produces an assistant reply for a conversation.
type Completer interface {
	// Complete returns the assistant reply and the conversation history with
	// that reply appended. It never fails: on any backend problem the reply
	// is the last user turn's content.
	Complete(ctx context.Context, turns []Turn) (string, []Turn)
}

// Client implements Completer against an Ollama-compatible endpoint.
type Client struct {
	endpoint string
	model    string
	client   *http.Client
}

// New creates a chat client from config.
func New(cfg config.ChatConfig) *Client {
	return &Client{
		endpoint: cfg.Endpoint,
		model:    cfg.Model,
		client:   &http.Client{},
	}
}

// Available probes the backend's model listing with a short timeout.
func (c *Client) Available(ctx context.Context) bool {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint+"/api/tags", nil)
	if err != nil {
		return false
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return false
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	return resp.StatusCode == http.StatusOK
}

// Complete implements Completer.
func (c *Client) Complete(ctx context.Context, turns []Turn) (string, []Turn) {
	reply, err := c.complete(ctx, turns)
	if err != nil {
		slog.Warn("chat completion failed, echoing last user turn", "error", err)
		observability.RecordChatRequest(false)
		reply = lastUserContent(turns)
	} else {
		observability.RecordChatRequest(true)
	}
	return reply, append(append([]Turn(nil), turns...), Turn{Role: "assistant", Content: reply})
}

func (c *Client) complete(ctx context.Context, turns []Turn) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, completionTimeout)
	defer cancel()

	body, err := json.Marshal(map[string]any{
		"model":    c.model,
		"messages": turns,
		"stream":   false,
	})
	if err != nil {
		return "", fmt.Errorf("marshalling chat request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.endpoint+"/api/chat", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("creating chat request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("chat request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return "", fmt.Errorf("chat status %d: %s", resp.StatusCode, respBody)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("reading chat response: %w", err)
	}

	reply := extractReply(data)
	if reply == "" {
		return "", fmt.Errorf("no reply in chat response")
	}
	return reply, nil
}

// extractReply pulls the assistant content out of either the Ollama or the
// OpenAI chat-completions response shape.
func extractReply(data []byte) string {
	var ollama struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	}
	if err := json.Unmarshal(data, &ollama); err == nil && ollama.Message.Content != "" {
		return ollama.Message.Content
	}

	var openai struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := json.Unmarshal(data, &openai); err == nil && len(openai.Choices) > 0 {
		return openai.Choices[0].Message.Content
	}

	return ""
}

func lastUserContent(turns []Turn) string {
	for i := len(turns) - 1; i >= 0; i-- {
		if turns[i].Role == "user" {
			return turns[i].Content
		}
	}
	if len(turns) > 0 {
		return turns[len(turns)-1].Content
	}
	return ""
}

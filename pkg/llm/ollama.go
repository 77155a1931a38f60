// Package llm wraps the official Ollama API client for streamed chat and
// model listing against a local server.
package llm

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"

	ollama "github.com/ollama/ollama/api"
)

// Message is one chat turn sent to the model.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ModelInfo describes one locally available model.
type ModelInfo struct {
	Name string `json:"name"`
	Size int64  `json:"size"`
}

// Client talks to a local Ollama server. One Client may be shared across
// goroutines (every web connection chats through the same instance), so the
// model field is guarded.
type Client struct {
	api *ollama.Client

	mu    sync.RWMutex
	model string
}

// NewClient creates a client for the given host and model. An empty host
// falls back to the OLLAMA_HOST environment variable or the Ollama default.
func NewClient(host, model string) (*Client, error) {
	var api *ollama.Client
	if host == "" {
		c, err := ollama.ClientFromEnvironment()
		if err != nil {
			return nil, fmt.Errorf("could not create ollama client: %w", err)
		}
		api = c
	} else {
		base, err := url.Parse(host)
		if err != nil {
			return nil, fmt.Errorf("invalid ollama host %q: %w", host, err)
		}
		api = ollama.NewClient(base, http.DefaultClient)
	}
	return &Client{api: api, model: model}, nil
}

// Model returns the model this client chats with.
func (c *Client) Model() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.model
}

// SetModel switches the model used for subsequent chats.
func (c *Client) SetModel(model string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.model = model
}

// CheckConnection verifies the local Ollama server is reachable.
func (c *Client) CheckConnection(ctx context.Context) error {
	if _, err := c.api.List(ctx); err != nil {
		return fmt.Errorf("ollama server not reachable: %w", err)
	}
	return nil
}

// ListModels returns the models available on the local server.
func (c *Client) ListModels(ctx context.Context) ([]ModelInfo, error) {
	resp, err := c.api.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list local models: %w", err)
	}
	models := make([]ModelInfo, 0, len(resp.Models))
	for _, m := range resp.Models {
		models = append(models, ModelInfo{Name: m.Name, Size: m.Size})
	}
	return models, nil
}

// Stream sends the conversation to the model and streams the reply, invoking
// onChunk for every content fragment. It returns the full accumulated reply
// once the stream completes; the caller parses that complete text, never the
// partial chunks.
func (c *Client) Stream(ctx context.Context, messages []Message, onChunk func(string)) (string, error) {
	ollamaMessages := make([]ollama.Message, len(messages))
	for i, m := range messages {
		ollamaMessages[i] = ollama.Message{Role: m.Role, Content: m.Content}
	}

	stream := true
	req := &ollama.ChatRequest{
		Model:    c.Model(),
		Messages: ollamaMessages,
		Stream:   &stream,
	}

	var full strings.Builder
	err := c.api.Chat(ctx, req, func(res ollama.ChatResponse) error {
		if res.Message.Content != "" {
			full.WriteString(res.Message.Content)
			if onChunk != nil {
				onChunk(res.Message.Content)
			}
		}
		return nil
	})
	if err != nil {
		return full.String(), fmt.Errorf("ollama chat failed: %w", err)
	}
	return full.String(), nil
}

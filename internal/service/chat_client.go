package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"
)

// SystemPrompt is prepended to every conversation sent upstream.
const SystemPrompt = "You are Kody, a helpful and friendly AI banking assistant for Kodbank. Keep answers concise and relevant to banking, finance, and account queries. Be professional but warm."

// FallbackReply is returned when the model answers without any content.
const FallbackReply = "Sorry, I could not generate a response."

// placeholderKey is the value shipped in the sample .env file.
const placeholderKey = "your_huggingface_token_here"

var (
	// ErrChatNotConfigured means no usable API key is set.
	ErrChatNotConfigured = errors.New("chat api key not configured")
	// ErrUpstream wraps any failure talking to the hosted model.
	ErrUpstream = errors.New("chat upstream unavailable")
)

// ChatMessage is one turn of the conversation.
type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ChatClient talks to an OpenAI-compatible chat-completions endpoint.
type ChatClient struct {
	URL    string
	APIKey string
	Model  string
	HTTP   *http.Client
}

func NewChatClient(url, apiKey, model string, timeout time.Duration) *ChatClient {
	return &ChatClient{URL: url, APIKey: apiKey, Model: model, HTTP: &http.Client{Timeout: timeout}}
}

// Configured reports whether a real API key is present.
func (c *ChatClient) Configured() bool {
	return c.APIKey != "" && c.APIKey != placeholderKey
}

type completionReq struct {
	Model       string        `json:"model"`
	Messages    []ChatMessage `json:"messages"`
	MaxTokens   int           `json:"max_tokens"`
	Temperature float64       `json:"temperature"`
	Stream      bool          `json:"stream"`
}

type completionResp struct {
	Choices []struct {
		Message struct {
			Content *string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// Complete sends the system prompt followed by msgs and returns the first
// choice's content, or FallbackReply when there is none.
func (c *ChatClient) Complete(ctx context.Context, msgs []ChatMessage) (string, error) {
	if !c.Configured() {
		return "", ErrChatNotConfigured
	}

	payload, err := json.Marshal(completionReq{
		Model:       c.Model,
		Messages:    append([]ChatMessage{{Role: "system", Content: SystemPrompt}}, msgs...),
		MaxTokens:   512,
		Temperature: 0.7,
		Stream:      false,
	})
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.URL, bytes.NewReader(payload))
	if err != nil {
		return "", err
	}
	req.Header.Set("Authorization", "Bearer "+c.APIKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUpstream, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", fmt.Errorf("%w: read body: %v", ErrUpstream, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		log.Printf("[chat] upstream error: status=%d body=%s", resp.StatusCode, body)
		return "", fmt.Errorf("%w: status %d", ErrUpstream, resp.StatusCode)
	}

	var out completionResp
	if err := json.Unmarshal(body, &out); err != nil {
		return "", fmt.Errorf("%w: decode: %v", ErrUpstream, err)
	}
	if len(out.Choices) == 0 || out.Choices[0].Message.Content == nil {
		return FallbackReply, nil
	}
	return *out.Choices[0].Message.Content, nil
}

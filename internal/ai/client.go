package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"
)

const defaultBaseURL = "https://openrouter.ai/api/v1"

// Message is one role-tagged entry of a model conversation.
type Message struct {
	Role    string `json:"role"` // "system" | "user" | "assistant"
	Content string `json:"content"`
}

// Client talks to an OpenRouter-compatible chat-completions endpoint.
type Client struct {
	APIKey     string
	Model      string
	BaseURL    string
	Referer    string // sent as HTTP-Referer, OpenRouter uses it for attribution
	HTTPClient *http.Client
}

func New(apiKey, model, referer string) *Client {
	return &Client{
		APIKey:     apiKey,
		Model:      model,
		BaseURL:    defaultBaseURL,
		Referer:    referer,
		HTTPClient: &http.Client{Timeout: 60 * time.Second},
	}
}

type chatRequest struct {
	Model          string          `json:"model"`
	Messages       []Message       `json:"messages"`
	ResponseFormat *responseFormat `json:"response_format,omitempty"`
}

type responseFormat struct {
	Type string `json:"type"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// Chat sends the conversation and returns the assistant's raw text. jsonMode
// asks the backend for a JSON-only response. The call fails closed with a
// ConfigurationError when no API key is set; any non-2xx status, timeout, or
// empty completion surfaces as an UpstreamError. No automatic retry.
func (c *Client) Chat(ctx context.Context, messages []Message, jsonMode bool) (string, error) {
	if c.APIKey == "" {
		return "", &ConfigurationError{Missing: "OPENROUTER_API_KEY"}
	}

	reqBody := chatRequest{
		Model:    c.Model,
		Messages: messages,
	}
	if jsonMode {
		reqBody.ResponseFormat = &responseFormat{Type: "json_object"}
	}

	payload, err := json.Marshal(reqBody)
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(
		ctx,
		http.MethodPost,
		c.BaseURL+"/chat/completions",
		bytes.NewReader(payload),
	)
	if err != nil {
		return "", err
	}
	req.Header.Set("Authorization", "Bearer "+c.APIKey)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("HTTP-Referer", c.Referer)
	req.Header.Set("X-Title", "Smart Planner")

	res, err := c.HTTPClient.Do(req)
	if err != nil {
		return "", &UpstreamError{Body: err.Error()}
	}
	defer res.Body.Close()

	body, err := io.ReadAll(res.Body)
	if err != nil {
		return "", &UpstreamError{Status: res.StatusCode, Body: err.Error()}
	}

	if res.StatusCode < 200 || res.StatusCode >= 300 {
		return "", &UpstreamError{Status: res.StatusCode, Body: string(body)}
	}

	var parsed chatResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return "", &UpstreamError{Status: res.StatusCode, Body: string(body)}
	}
	if len(parsed.Choices) == 0 {
		return "", &UpstreamError{Status: res.StatusCode, Body: "no choices in completion"}
	}

	return parsed.Choices[0].Message.Content, nil
}

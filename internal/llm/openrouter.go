// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package llm generates fixture summaries through the OpenRouter chat
// completions API with a fixed commentator persona.
package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/golazo-dev/golazo/pkg/types"
)

// openRouterAPIURL is the chat completions endpoint. Package-level var
// for test substitution.
var openRouterAPIURL = "https://openrouter.ai/api/v1/chat/completions"

// Sentinel errors the orchestrator maps to fallback answers.
var (
	// ErrMissingAPIKey reports that no completion credential is configured.
	ErrMissingAPIKey = errors.New("OPENROUTER_API_KEY not configured")

	// ErrTimeout reports that the completion call exceeded its deadline.
	ErrTimeout = errors.New("completion request timed out")
)

// Backend calls the OpenRouter API to generate an answer from retrieved
// fixture context and the caller's question.
type Backend struct {
	APIKey string
	Config types.LLMConfig
	Client *http.Client
}

// NewBackend returns a Backend using cfg and the given API key.
func NewBackend(cfg types.LLMConfig, apiKey string) *Backend {
	return &Backend{APIKey: apiKey, Config: cfg, Client: http.DefaultClient}
}

// chatRequest is the request body for the chat completions API.
type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
	MaxTokens   int           `json:"max_tokens"`
	TopP        float64       `json:"top_p"`
}

// chatMessage is a single message in the completion conversation.
type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// chatResponse is the response body from the chat completions API.
type chatResponse struct {
	Choices []chatChoice `json:"choices"`
}

type chatChoice struct {
	Message chatMessage `json:"message"`
}

// Complete sends the persona prompt with the retrieved context as the
// system turn and the raw question as the user turn, and returns the
// generated text. It fails with ErrMissingAPIKey when no credential is
// configured and with ErrTimeout when the configured deadline elapses.
func (b *Backend) Complete(ctx context.Context, contextText, question string) (string, error) {
	if b.APIKey == "" {
		return "", ErrMissingAPIKey
	}

	prompt, err := renderPersonaPrompt(contextText)
	if err != nil {
		return "", fmt.Errorf("rendering prompt: %w", err)
	}

	maxTokens := b.Config.MaxTokens
	if maxTokens <= 0 {
		maxTokens = types.DefaultMaxTokens
	}
	reqBody := chatRequest{
		Model:       b.Config.Model,
		Temperature: b.Config.Temperature,
		MaxTokens:   maxTokens,
		TopP:        0.9,
		Messages: []chatMessage{
			{Role: "system", Content: prompt},
			{Role: "user", Content: question},
		},
	}

	bodyBytes, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("marshaling request: %w", err)
	}

	timeout := b.Config.Timeout
	if timeout <= 0 {
		timeout = types.DefaultLLMTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, openRouterAPIURL, bytes.NewReader(bodyBytes))
	if err != nil {
		return "", fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+b.APIKey)
	req.Header.Set("HTTP-Referer", "https://github.com/golazo-dev/golazo")
	req.Header.Set("X-Title", "Fútbol RAG")

	client := b.Client
	if client == nil {
		client = http.DefaultClient
	}

	resp, err := client.Do(req)
	if err != nil {
		if isTimeout(err) {
			return "", fmt.Errorf("%w: %v", ErrTimeout, err)
		}
		return "", fmt.Errorf("calling completion API: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("completion API returned %d: %s", resp.StatusCode, string(body))
	}

	var cr chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&cr); err != nil {
		return "", fmt.Errorf("decoding completion response: %w", err)
	}
	if len(cr.Choices) == 0 {
		return "", fmt.Errorf("completion API returned no choices")
	}

	return cr.Choices[0].Message.Content, nil
}

// isTimeout distinguishes deadline expiry from other transport failures.
func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var nerr interface{ Timeout() bool }
	return errors.As(err, &nerr) && nerr.Timeout()
}

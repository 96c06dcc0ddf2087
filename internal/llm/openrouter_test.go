package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/golazo-dev/golazo/pkg/types"
)

func testBackend(t *testing.T, handler http.HandlerFunc, cfg types.LLMConfig) *Backend {
	t.Helper()
	ts := httptest.NewServer(handler)
	t.Cleanup(ts.Close)

	old := openRouterAPIURL
	openRouterAPIURL = ts.URL
	t.Cleanup(func() { openRouterAPIURL = old })

	b := NewBackend(cfg, "test-key")
	b.Client = ts.Client()
	return b
}

func TestCompleteSendsPersonaAndQuestion(t *testing.T) {
	var got chatRequest
	backend := testBackend(t, func(w http.ResponseWriter, r *http.Request) {
		if auth := r.Header.Get("Authorization"); auth != "Bearer test-key" {
			t.Errorf("Authorization = %q", auth)
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Error(err)
		}
		fmt.Fprint(w, `{"choices": [{"message": {"role": "assistant", "content": "¡Buena tarde, afición!"}}]}`)
	}, types.LLMConfig{Model: "google/gemma-3n-e4b-it", Temperature: 0.2, Timeout: 5 * time.Second})

	answer, err := backend.Complete(context.Background(),
		"⚽ Boca Juniors vs River Plate | Liga Profesional Argentina (Argentina) | 17:00 (ARG)",
		"¿Qué partidos hay hoy?")
	if err != nil {
		t.Fatal(err)
	}
	if answer != "¡Buena tarde, afición!" {
		t.Errorf("answer = %q", answer)
	}

	if got.Model != "google/gemma-3n-e4b-it" {
		t.Errorf("model = %q", got.Model)
	}
	if got.MaxTokens != types.DefaultMaxTokens {
		t.Errorf("max_tokens = %d", got.MaxTokens)
	}
	if len(got.Messages) != 2 {
		t.Fatalf("got %d messages, want system+user", len(got.Messages))
	}
	if got.Messages[0].Role != "system" || !strings.Contains(got.Messages[0].Content, "Boca Juniors") {
		t.Errorf("system message missing context: %q", got.Messages[0].Content)
	}
	if !strings.Contains(got.Messages[0].Content, "comentarista español") {
		t.Errorf("system message missing persona: %q", got.Messages[0].Content)
	}
	if got.Messages[1].Role != "user" || got.Messages[1].Content != "¿Qué partidos hay hoy?" {
		t.Errorf("user message = %+v", got.Messages[1])
	}
}

func TestCompleteMissingAPIKey(t *testing.T) {
	b := NewBackend(types.LLMConfig{Model: "m"}, "")
	_, err := b.Complete(context.Background(), "ctx", "q")
	if !errors.Is(err, ErrMissingAPIKey) {
		t.Fatalf("err = %v, want ErrMissingAPIKey", err)
	}
}

func TestCompleteTimeout(t *testing.T) {
	backend := testBackend(t, func(w http.ResponseWriter, _ *http.Request) {
		time.Sleep(200 * time.Millisecond)
		fmt.Fprint(w, `{"choices": []}`)
	}, types.LLMConfig{Model: "m", Timeout: 20 * time.Millisecond})

	_, err := backend.Complete(context.Background(), "ctx", "q")
	if !errors.Is(err, ErrTimeout) {
		t.Fatalf("err = %v, want ErrTimeout", err)
	}
}

func TestCompleteHTTPError(t *testing.T) {
	backend := testBackend(t, func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, `{"error": "unauthorized"}`, http.StatusUnauthorized)
	}, types.LLMConfig{Model: "m", Timeout: 5 * time.Second})

	_, err := backend.Complete(context.Background(), "ctx", "q")
	if err == nil || !strings.Contains(err.Error(), "401") {
		t.Fatalf("err = %v, want HTTP 401 detail", err)
	}
}

func TestCompleteNoChoices(t *testing.T) {
	backend := testBackend(t, func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, `{"choices": []}`)
	}, types.LLMConfig{Model: "m", Timeout: 5 * time.Second})

	_, err := backend.Complete(context.Background(), "ctx", "q")
	if err == nil || !strings.Contains(err.Error(), "no choices") {
		t.Fatalf("err = %v", err)
	}
}

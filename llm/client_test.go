package llm

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
)

// mockAdapter is a test double for ProviderAdapter.
type mockAdapter struct {
	name     string
	response *Response
	err      error
	calls    int
}

func (m *mockAdapter) Name() string { return m.name }

func (m *mockAdapter) Complete(ctx context.Context, req Request) (*Response, error) {
	m.calls++
	if m.err != nil {
		return nil, m.err
	}
	return m.response, nil
}

func newMockAdapter(name, text string) *mockAdapter {
	return &mockAdapter{
		name: name,
		response: &Response{
			ID:       "test_resp",
			Model:    "test-model",
			Provider: name,
			Message: Message{
				Role:    RoleAssistant,
				Content: []ContentPart{TextPart(text)},
			},
			FinishReason: FinishReason{Reason: "stop"},
			Usage:        Usage{InputTokens: 10, OutputTokens: 20, TotalTokens: 30},
		},
	}
}

func TestClientComplete(t *testing.T) {
	mock := newMockAdapter("test-provider", "Hello!")
	client := NewClient(
		WithProvider("test-provider", mock),
		WithDefaultProvider("test-provider"),
	)

	resp, err := client.Complete(context.Background(), Request{
		Model:    "test-model",
		Messages: []Message{UserMessage("Hi")},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.Text() != "Hello!" {
		t.Errorf("expected text %q, got %q", "Hello!", resp.Text())
	}
	if resp.Provider != "test-provider" {
		t.Errorf("expected provider %q, got %q", "test-provider", resp.Provider)
	}
}

func TestClientProviderRouting(t *testing.T) {
	openai := newMockAdapter("openai", "OpenAI response")
	anthropic := newMockAdapter("anthropic", "Anthropic response")

	client := NewClient(
		WithProvider("openai", openai),
		WithProvider("anthropic", anthropic),
		WithDefaultProvider("openai"),
	)

	// Explicit provider.
	resp, err := client.Complete(context.Background(), Request{
		Model:    "claude-sonnet-4-5",
		Messages: []Message{UserMessage("Hi")},
		Provider: "anthropic",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.Text() != "Anthropic response" {
		t.Errorf("expected Anthropic response, got %q", resp.Text())
	}

	// Default provider.
	resp, err = client.Complete(context.Background(), Request{
		Model:    "unknown-model",
		Messages: []Message{UserMessage("Hi")},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.Text() != "OpenAI response" {
		t.Errorf("expected OpenAI response, got %q", resp.Text())
	}
}

func TestClientCatalogRouting(t *testing.T) {
	anthropic := newMockAdapter("anthropic", "claude here")
	openai := newMockAdapter("openai", "gpt here")

	// No default provider set; routing falls back to the model catalog.
	client := NewClient(
		WithProvider("openai", openai),
		WithProvider("anthropic", anthropic),
	)

	resp, err := client.Complete(context.Background(), Request{
		Model:    "claude-sonnet-4-5",
		Messages: []Message{UserMessage("Hi")},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.Text() != "claude here" {
		t.Errorf("expected anthropic routing, got %q", resp.Text())
	}
}

func TestClientNoProvider(t *testing.T) {
	client := NewClient()
	_, err := client.Complete(context.Background(), Request{
		Model:    "test-model",
		Messages: []Message{UserMessage("Hi")},
	})
	if err == nil {
		t.Fatal("expected error for no provider")
	}
	var cfgErr *ConfigurationError
	if !errors.As(err, &cfgErr) {
		t.Errorf("expected ConfigurationError, got %T", err)
	}
}

func TestClientMiddlewareOrder(t *testing.T) {
	mock := newMockAdapter("p", "done")

	var order []string
	mw := func(tag string) Middleware {
		return func(ctx context.Context, req Request, next func(context.Context, Request) (*Response, error)) (*Response, error) {
			order = append(order, tag)
			return next(ctx, req)
		}
	}

	client := NewClient(
		WithProvider("p", mock),
		WithMiddleware(mw("first"), mw("second")),
	)

	if _, err := client.Complete(context.Background(), Request{Model: "m"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(order) != 2 || order[0] != "first" || order[1] != "second" {
		t.Errorf("middleware ran in order %v", order)
	}
}

func TestRetryMiddlewareRetriesTransientFailure(t *testing.T) {
	failing := &mockAdapter{
		name: "p",
		err: &ServerError{ProviderError: ProviderError{
			ClientError: ClientError{Message: "boom"},
			Provider:    "p", StatusCode: 500, Retryable: true,
		}},
	}

	policy := RetryPolicy{MaxRetries: 2, BaseDelay: 0.001, MaxDelay: 0.01, BackoffMultiplier: 1.0}
	client := NewClient(
		WithProvider("p", failing),
		WithMiddleware(RetryMiddleware(policy)),
	)

	_, err := client.Complete(context.Background(), Request{Model: "m"})
	if err == nil {
		t.Fatal("expected error after retries exhausted")
	}
	if failing.calls != 3 {
		t.Errorf("expected 3 attempts (1 + 2 retries), got %d", failing.calls)
	}
}

func TestToolCallRoundTrip(t *testing.T) {
	args := json.RawMessage(`{"path":"main.go"}`)
	resp := &Response{
		Message: Message{
			Role: RoleAssistant,
			Content: []ContentPart{
				TextPart("Let me look."),
				ToolCallPart("call_1", "read_file", args),
			},
		},
	}

	calls := resp.ToolCalls()
	if len(calls) != 1 {
		t.Fatalf("expected 1 tool call, got %d", len(calls))
	}
	if calls[0].ID != "call_1" || calls[0].Name != "read_file" {
		t.Errorf("unexpected tool call: %+v", calls[0])
	}
	if string(calls[0].Arguments) != `{"path":"main.go"}` {
		t.Errorf("arguments not preserved: %s", calls[0].Arguments)
	}
}

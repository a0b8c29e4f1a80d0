package llm

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"
)

func testAdapter() *GollmAdapter {
	return &GollmAdapter{provider: "anthropic", model: "claude-sonnet-4-5"}
}

func TestParseToolCallsFromJSONArray(t *testing.T) {
	a := testAdapter()
	text := `I'll read the file now. [{"name":"read_file","arguments":{"path":"main.go"}}]`

	calls := a.parseToolCalls(text)
	if len(calls) != 1 {
		t.Fatalf("calls = %d, want 1", len(calls))
	}
	if calls[0].Name != "read_file" {
		t.Errorf("name = %q", calls[0].Name)
	}
	if !strings.HasPrefix(calls[0].ID, "call_") {
		t.Errorf("id = %q, want call_ prefix", calls[0].ID)
	}

	var args map[string]interface{}
	if err := json.Unmarshal(calls[0].Arguments, &args); err != nil {
		t.Fatalf("arguments: %v", err)
	}
	if args["path"] != "main.go" {
		t.Errorf("path = %v", args["path"])
	}
}

func TestParseToolCallsNoPayload(t *testing.T) {
	a := testAdapter()
	if calls := a.parseToolCalls("just a plain answer"); calls != nil {
		t.Errorf("calls = %v, want nil", calls)
	}
}

func TestBuildResponseSeparatesTextAndCalls(t *testing.T) {
	a := testAdapter()
	text := `Let me check. [{"name":"list_files","arguments":{"path":"."}}]`

	resp := a.buildResponse(Request{Model: "claude-sonnet-4-5"}, text)
	if resp.Text() != "Let me check." {
		t.Errorf("text = %q", resp.Text())
	}
	if len(resp.ToolCalls()) != 1 {
		t.Fatalf("tool calls = %d", len(resp.ToolCalls()))
	}
	if resp.FinishReason.Reason != "tool_calls" {
		t.Errorf("finish reason = %q", resp.FinishReason.Reason)
	}
}

func TestBuildResponsePlainText(t *testing.T) {
	a := testAdapter()
	resp := a.buildResponse(Request{}, "all done")
	if resp.Text() != "all done" {
		t.Errorf("text = %q", resp.Text())
	}
	if len(resp.ToolCalls()) != 0 {
		t.Errorf("unexpected tool calls")
	}
	if resp.FinishReason.Reason != "stop" {
		t.Errorf("finish reason = %q", resp.FinishReason.Reason)
	}
}

func TestTranslateErrorClassification(t *testing.T) {
	a := testAdapter()

	var authErr *AuthenticationError
	if err := a.translateError(errors.New("401 unauthorized")); !errors.As(err, &authErr) {
		t.Errorf("401 not classified: %T", err)
	}

	var rateErr *RateLimitError
	if err := a.translateError(errors.New("rate limit exceeded")); !errors.As(err, &rateErr) {
		t.Errorf("rate limit not classified: %T", err)
	}

	var serverErr *ServerError
	if err := a.translateError(errors.New("500 internal server error")); !errors.As(err, &serverErr) {
		t.Errorf("500 not classified: %T", err)
	}

	if err := a.translateError(errors.New("something odd")); !IsRetryable(err) {
		t.Error("unknown errors should default to retryable")
	}
	if a.translateError(nil) != nil {
		t.Error("nil should pass through")
	}
}

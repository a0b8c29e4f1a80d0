package llm

import (
	"encoding/json"
	"testing"
)

func TestMessageTextContent(t *testing.T) {
	msg := Message{
		Role: RoleAssistant,
		Content: []ContentPart{
			TextPart("Hello, "),
			ToolCallPart("c1", "read_file", json.RawMessage(`{}`)),
			TextPart("world"),
		},
	}
	if got := msg.TextContent(); got != "Hello, world" {
		t.Errorf("TextContent = %q", got)
	}
}

func TestToolResultMessage(t *testing.T) {
	msg := ToolResultMessage("call_42", "read_file", "file contents", false)
	if msg.Role != RoleTool {
		t.Errorf("role = %q", msg.Role)
	}
	if msg.ToolCallID != "call_42" {
		t.Errorf("tool call id = %q", msg.ToolCallID)
	}
	if len(msg.Content) != 1 || msg.Content[0].Kind != ContentToolResult {
		t.Fatalf("unexpected content: %+v", msg.Content)
	}
	tr := msg.Content[0].ToolResult
	if tr.Name != "read_file" {
		t.Errorf("tool name = %q", tr.Name)
	}
	if tr.Content != "file contents" || tr.IsError {
		t.Errorf("unexpected result data: %+v", tr)
	}
}

func TestResponseToolCallsOrder(t *testing.T) {
	resp := Response{
		Message: Message{
			Role: RoleAssistant,
			Content: []ContentPart{
				ToolCallPart("a", "list_files", json.RawMessage(`{}`)),
				ToolCallPart("b", "read_file", json.RawMessage(`{"path":"x"}`)),
			},
		},
	}
	calls := resp.ToolCalls()
	if len(calls) != 2 {
		t.Fatalf("expected 2 calls, got %d", len(calls))
	}
	if calls[0].ID != "a" || calls[1].ID != "b" {
		t.Errorf("order not preserved: %v, %v", calls[0].ID, calls[1].ID)
	}
}

func TestUsageAdd(t *testing.T) {
	a := Usage{InputTokens: 10, OutputTokens: 5, TotalTokens: 15}
	b := Usage{InputTokens: 1, OutputTokens: 2, TotalTokens: 3}
	sum := a.Add(b)
	if sum.InputTokens != 11 || sum.OutputTokens != 7 || sum.TotalTokens != 18 {
		t.Errorf("sum = %+v", sum)
	}
}

func TestMessageJSONRoundTrip(t *testing.T) {
	msg := Message{
		Role: RoleAssistant,
		Content: []ContentPart{
			TextPart("checking"),
			ToolCallPart("id1", "edit_file", json.RawMessage(`{"path":"a","old_str":"x","new_str":"y"}`)),
		},
	}
	data, err := json.Marshal(msg)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var back Message
	if err := json.Unmarshal(data, &back); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if back.Role != RoleAssistant || len(back.Content) != 2 {
		t.Fatalf("round trip lost content: %+v", back)
	}
	if back.Content[1].ToolCall == nil || back.Content[1].ToolCall.Name != "edit_file" {
		t.Errorf("tool call lost: %+v", back.Content[1])
	}
}

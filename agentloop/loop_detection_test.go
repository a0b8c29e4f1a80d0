package agentloop

import (
	"encoding/json"
	"fmt"
	"testing"

	"github.com/martinemde/tinker/llm"
)

func historyWithCalls(calls ...llm.ToolCall) []Turn {
	var history []Turn
	for _, c := range calls {
		history = append(history, NewAssistantTurn("", []llm.ToolCall{c}, llm.Usage{}, ""))
		history = append(history, NewToolResultsTurn([]llm.ToolResult{{ToolCallID: c.ID, Content: "ok"}}))
	}
	return history
}

func repeatCall(n int, name, args string) []llm.ToolCall {
	calls := make([]llm.ToolCall, n)
	for i := range calls {
		calls[i] = llm.ToolCall{ID: fmt.Sprintf("c%d", i), Name: name, Arguments: json.RawMessage(args)}
	}
	return calls
}

func TestRecentToolCallsChronological(t *testing.T) {
	var calls []llm.ToolCall
	for i := 0; i < 5; i++ {
		calls = append(calls, llm.ToolCall{
			ID:        fmt.Sprintf("c%d", i),
			Name:      "read_file",
			Arguments: json.RawMessage(fmt.Sprintf(`{"path":"f%d"}`, i)),
		})
	}
	recent := RecentToolCalls(historyWithCalls(calls...), 3)
	if len(recent) != 3 {
		t.Fatalf("recent = %d, want 3", len(recent))
	}
	// Oldest first, drawn from the tail of the history.
	for i, want := range []string{"c2", "c3", "c4"} {
		if recent[i].ID != want {
			t.Errorf("recent[%d].ID = %q, want %q", i, recent[i].ID, want)
		}
	}
}

func TestDetectLoopIdenticalCalls(t *testing.T) {
	history := historyWithCalls(repeatCall(6, "read_file", `{"path":"a.txt"}`)...)
	if !DetectLoop(history, 6) {
		t.Error("six identical calls should be detected")
	}
}

func TestDetectLoopAlternatingPair(t *testing.T) {
	var calls []llm.ToolCall
	for i := 0; i < 3; i++ {
		calls = append(calls,
			llm.ToolCall{ID: fmt.Sprintf("a%d", i), Name: "read_file", Arguments: json.RawMessage(`{"path":"a"}`)},
			llm.ToolCall{ID: fmt.Sprintf("b%d", i), Name: "list_files", Arguments: json.RawMessage(`{"path":"."}`)},
		)
	}
	if !DetectLoop(historyWithCalls(calls...), 6) {
		t.Error("alternating pair should be detected")
	}
}

func TestDetectLoopVariedArgsNotFlagged(t *testing.T) {
	var calls []llm.ToolCall
	for i := 0; i < 6; i++ {
		calls = append(calls, llm.ToolCall{
			ID:        fmt.Sprintf("c%d", i),
			Name:      "read_file",
			Arguments: json.RawMessage(fmt.Sprintf(`{"path":"file%d.txt"}`, i)),
		})
	}
	if DetectLoop(historyWithCalls(calls...), 6) {
		t.Error("distinct arguments should not be flagged")
	}
}

func TestDetectLoopTooFewCalls(t *testing.T) {
	history := historyWithCalls(repeatCall(3, "read_file", `{"path":"a"}`)...)
	if DetectLoop(history, 6) {
		t.Error("fewer calls than the window should never trigger")
	}
}

func TestDetectLoopOnlyRecentWindowMatters(t *testing.T) {
	// Old repetition followed by fresh varied activity.
	calls := repeatCall(6, "read_file", `{"path":"same"}`)
	for i := 0; i < 6; i++ {
		calls = append(calls, llm.ToolCall{
			ID:        fmt.Sprintf("v%d", i),
			Name:      "read_file",
			Arguments: json.RawMessage(fmt.Sprintf(`{"path":"new%d"}`, i)),
		})
	}
	if DetectLoop(historyWithCalls(calls...), 6) {
		t.Error("old repetition outside the window should not trigger")
	}
}

package agentloop

import (
	"crypto/sha256"
	"encoding/hex"

	"github.com/martinemde/tinker/llm"
)

// callSignature fingerprints a tool call by name and argument payload so
// repeats can be compared cheaply.
func callSignature(tc llm.ToolCall) string {
	h := sha256.New()
	h.Write([]byte(tc.Name))
	h.Write([]byte{0})
	h.Write(tc.Arguments)
	return hex.EncodeToString(h.Sum(nil)[:8])
}

// RecentToolCalls returns up to n of the most recent tool calls in the
// history, oldest first.
func RecentToolCalls(history []Turn, n int) []llm.ToolCall {
	var calls []llm.ToolCall
	for i := len(history) - 1; i >= 0 && len(calls) < n; i-- {
		turn := history[i]
		if turn.Kind != TurnAssistant || turn.Assistant == nil {
			continue
		}
		for j := len(turn.Assistant.ToolCalls) - 1; j >= 0 && len(calls) < n; j-- {
			calls = append(calls, turn.Assistant.ToolCalls[j])
		}
	}
	for i, j := 0, len(calls)-1; i < j; i, j = i+1, j-1 {
		calls[i], calls[j] = calls[j], calls[i]
	}
	return calls
}

// DetectLoop reports whether the last windowSize tool calls consist entirely
// of a repeating pattern of period 1, 2, or 3. Fewer calls than the window
// never triggers.
func DetectLoop(history []Turn, windowSize int) bool {
	calls := RecentToolCalls(history, windowSize)
	if len(calls) < windowSize {
		return false
	}
	sigs := make([]string, len(calls))
	for i, c := range calls {
		sigs[i] = callSignature(c)
	}
	for period := 1; period <= 3; period++ {
		if repeatsWithPeriod(sigs, period) {
			return true
		}
	}
	return false
}

func repeatsWithPeriod(sigs []string, period int) bool {
	if len(sigs)%period != 0 {
		return false
	}
	for i := period; i < len(sigs); i++ {
		if sigs[i] != sigs[i-period] {
			return false
		}
	}
	return true
}

package agentloop

import "unicode/utf8"

// DisplayResultLimit bounds tool result content in emitted events. The model
// always receives the full result; only the presentation copy is capped.
const DisplayResultLimit = 500

const displayTruncationMarker = " [... result truncated ...]"

// TruncateForDisplay caps s at maxChars characters for presentation,
// appending a marker when anything was cut. Truncation happens on rune
// boundaries so multi-byte text stays valid. A maxChars of zero or less
// means no cap.
func TruncateForDisplay(s string, maxChars int) string {
	if maxChars <= 0 || utf8.RuneCountInString(s) <= maxChars {
		return s
	}
	return string([]rune(s)[:maxChars]) + displayTruncationMarker
}

package tui

import (
	"fmt"
	"sync"

	"github.com/martinemde/tinker/agentloop"
)

// Line is one display-ready transcript entry. Style overrides the role's
// default rendering when set.
type Line struct {
	Role    string
	Content string
	Style   string
}

// Bridge buffers transcript lines between the session's event pump and the
// render loop. Enqueue is safe from any goroutine; the model drains it on a
// tick.
type Bridge struct {
	mu    sync.Mutex
	lines []Line
}

// NewBridge creates an empty Bridge.
func NewBridge() *Bridge {
	return &Bridge{}
}

// Enqueue appends a transcript line. An optional style tag overrides the
// role's default style; omitted, the role renders itself.
func (b *Bridge) Enqueue(role, content string, styleTag ...string) {
	line := Line{Role: role, Content: content}
	if len(styleTag) > 0 {
		line.Style = styleTag[0]
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.lines = append(b.lines, line)
}

// Drain returns all buffered lines and clears the buffer.
func (b *Bridge) Drain() []Line {
	b.mu.Lock()
	defer b.mu.Unlock()
	if len(b.lines) == 0 {
		return nil
	}
	out := b.lines
	b.lines = nil
	return out
}

// Len returns the number of buffered lines.
func (b *Bridge) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.lines)
}

// Pump converts session events into transcript lines until the event channel
// closes. Run it on its own goroutine.
func (b *Bridge) Pump(events <-chan agentloop.SessionEvent) {
	for event := range events {
		switch event.Kind {
		case agentloop.EventAssistantText:
			if text, _ := event.Data["text"].(string); text != "" {
				b.Enqueue(RoleAgent, text)
			}
		case agentloop.EventNotice:
			if msg, _ := event.Data["message"].(string); msg != "" {
				b.Enqueue(RoleSystem, msg)
			}
		case agentloop.EventToolCallStart:
			name, _ := event.Data["name"].(string)
			args, _ := event.Data["arguments"].(string)
			b.Enqueue(RoleTool, fmt.Sprintf("%s(%s)", name, args))
		case agentloop.EventToolCallEnd:
			result, _ := event.Data["result"].(string)
			if isErr, _ := event.Data["is_error"].(bool); isErr {
				b.Enqueue(RoleError, result)
			} else {
				b.Enqueue(RoleToolResult, result)
			}
		case agentloop.EventSteeringInjected:
			if content, _ := event.Data["content"].(string); content != "" {
				b.Enqueue(RoleSystem, content)
			}
		case agentloop.EventTurnLimit:
			b.Enqueue(RoleSystem, "Tool round limit reached; stopping this turn.")
		case agentloop.EventError:
			if msg, _ := event.Data["error"].(string); msg != "" {
				b.Enqueue(RoleError, msg)
			}
		}
	}
}

// Package tui implements the interactive terminal surface for a session.
//
// The session runs on its own goroutine and reports progress through its
// event channel; a pump goroutine converts events into transcript lines on a
// Bridge, and the bubbletea model drains the bridge on a short tick so the
// transcript stays responsive while a turn is in flight.
package tui

import "github.com/charmbracelet/lipgloss"

// Role tags for transcript lines.
const (
	RoleYou        = "you"
	RoleAgent      = "agent"
	RoleTool       = "tool"
	RoleToolResult = "tool_result"
	RoleSystem     = "system"
	RoleError      = "error"
)

// Styles holds the lipgloss styles for the chat surface.
type Styles struct {
	You        lipgloss.Style
	Agent      lipgloss.Style
	Tool       lipgloss.Style
	ToolResult lipgloss.Style
	System     lipgloss.Style
	Error      lipgloss.Style
	Header     lipgloss.Style
	InputHint  lipgloss.Style
	Spinner    lipgloss.Style
}

// DefaultStyles returns the default chat palette.
func DefaultStyles() Styles {
	return Styles{
		You:        lipgloss.NewStyle().Foreground(lipgloss.Color("4")),                // blue
		Agent:      lipgloss.NewStyle().Foreground(lipgloss.Color("#DAA520")),          // goldenrod
		Tool:       lipgloss.NewStyle().Foreground(lipgloss.Color("2")).Italic(true),   // green
		ToolResult: lipgloss.NewStyle().Foreground(lipgloss.Color("245")),              // gray
		System:     lipgloss.NewStyle().Foreground(lipgloss.Color("240")).Italic(true), // dark gray
		Error:      lipgloss.NewStyle().Foreground(lipgloss.Color("1")).Bold(true),     // red
		Header:     lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#DAA520")),
		InputHint:  lipgloss.NewStyle().Foreground(lipgloss.Color("240")),
		Spinner:    lipgloss.NewStyle().Foreground(lipgloss.Color("#DAA520")),
	}
}

// ForRole returns the style for a transcript role tag.
func (s Styles) ForRole(role string) lipgloss.Style {
	switch role {
	case RoleYou:
		return s.You
	case RoleAgent:
		return s.Agent
	case RoleTool:
		return s.Tool
	case RoleToolResult:
		return s.ToolResult
	case RoleError:
		return s.Error
	default:
		return s.System
	}
}

// Prefix returns the transcript label for a role.
func Prefix(role string) string {
	switch role {
	case RoleYou:
		return "You: "
	case RoleAgent:
		return "Agent: "
	case RoleTool:
		return "Tool: "
	case RoleToolResult:
		return "  -> "
	case RoleError:
		return "Error: "
	default:
		return ""
	}
}

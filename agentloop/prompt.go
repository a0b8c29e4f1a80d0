package agentloop

import (
	"fmt"
	"runtime"
	"strings"
	"time"
)

const maxProjectDocBytes = 32 * 1024 // 32KB

// BuildSystemPrompt assembles the system prompt for a session: role and tool
// guidance, an environment block, any project instructions found in the
// workspace, and optional extra instructions appended last.
func BuildSystemPrompt(ws *Workspace, extra string) string {
	var sb strings.Builder
	sb.WriteString("You are a helpful coding agent. You answer questions and make changes ")
	sb.WriteString("to files in the working directory using the tools available to you.\n\n")
	sb.WriteString("Guidance:\n")
	sb.WriteString("- Use read_file before editing a file so old_str matches exactly.\n")
	sb.WriteString("- Use list_files to discover the layout before guessing at paths.\n")
	sb.WriteString("- edit_file replaces ALL occurrences of old_str; make it unique when you want a single change.\n")
	sb.WriteString("- All paths are relative to the working directory. You cannot access anything outside it.\n")

	sb.WriteString("\n")
	sb.WriteString(buildEnvironmentContext(ws))

	if docs := discoverProjectDocs(ws); docs != "" {
		sb.WriteString("\n\n# Project Instructions\n\n")
		sb.WriteString(docs)
	}

	if extra != "" {
		sb.WriteString("\n\n# User Instructions\n\n")
		sb.WriteString(extra)
	}

	return sb.String()
}

// buildEnvironmentContext generates the structured environment block.
func buildEnvironmentContext(ws *Workspace) string {
	var sb strings.Builder
	sb.WriteString("<environment>\n")
	fmt.Fprintf(&sb, "Working directory: %s\n", ws.Root())
	fmt.Fprintf(&sb, "Platform: %s/%s\n", runtime.GOOS, runtime.GOARCH)
	fmt.Fprintf(&sb, "Today's date: %s\n", time.Now().Format("2006-01-02"))
	sb.WriteString("</environment>")
	return sb.String()
}

// discoverProjectDocs loads recognized instruction files from the workspace
// root, capped at maxProjectDocBytes total.
func discoverProjectDocs(ws *Workspace) string {
	recognized := []string{"AGENTS.md", "CLAUDE.md"}

	var docs []string
	totalBytes := 0
	for _, name := range recognized {
		content, err := ws.ReadFile(name)
		if err != nil {
			continue
		}
		remaining := maxProjectDocBytes - totalBytes
		if remaining <= 0 {
			docs = append(docs, "[Project instructions truncated at 32KB]")
			break
		}
		if len(content) > remaining {
			content = content[:remaining] + "\n[Project instructions truncated at 32KB]"
		}
		docs = append(docs, "## "+name+"\n\n"+content)
		totalBytes += len(content)
	}
	return strings.Join(docs, "\n\n---\n\n")
}

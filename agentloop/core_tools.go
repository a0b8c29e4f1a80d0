package agentloop

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"
)

const (
	// MaxReadFileChars bounds read_file content sent back to the model.
	MaxReadFileChars = 10000
	// MaxListEntries bounds the number of entries list_files enumerates.
	MaxListEntries = 200

	readTruncationMarker = "\n\n[... file truncated due to length ...]"
	listTruncationMarker = "[... directory listing truncated due to size ...]"

	// editSuccessMarker is the fixed confirmation value for a completed edit.
	editSuccessMarker = "OK"
)

// RegisterCoreTools registers read_file, list_files, and edit_file on the
// registry. These are the full tool surface advertised to the model.
func RegisterCoreTools(reg *ToolRegistry) {
	registerReadFile(reg)
	registerListFiles(reg)
	registerEditFile(reg)
}

func registerReadFile(reg *ToolRegistry) {
	reg.Register(RegisteredTool{
		Definition: ToolDefinition{
			Name: "read_file",
			Description: "Read the contents of a given relative file path. Use this when you " +
				"want to see what's inside a file. Do not use this with directory names.",
			Parameters: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": map[string]interface{}{
						"type":        "string",
						"description": "The relative path of a file in the working directory.",
					},
				},
				"required": []string{"path"},
			},
		},
		Executor: func(arguments json.RawMessage, ws *Workspace) (string, error) {
			args, err := ParseToolArguments(arguments)
			if err != nil {
				return "", err
			}
			path, ok := GetStringArg(args, "path")
			if !ok || path == "" {
				return "", fmt.Errorf("path is required")
			}
			return readFile(ws, path)
		},
	})
}

func registerListFiles(reg *ToolRegistry) {
	reg.Register(RegisteredTool{
		Definition: ToolDefinition{
			Name: "list_files",
			Description: "List files and directories at a given relative path. If no path is " +
				"provided, lists files in the current directory. Directories are marked with a " +
				"trailing '/'.",
			Parameters: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": map[string]interface{}{
						"type":        "string",
						"description": "Optional relative path to list files from. Defaults to the current directory '.' if not provided.",
					},
				},
				"required": []string{},
			},
		},
		Executor: func(arguments json.RawMessage, ws *Workspace) (string, error) {
			args, err := ParseToolArguments(arguments)
			if err != nil {
				return "", err
			}
			path, _ := GetStringArg(args, "path")
			if path == "" {
				path = "."
			}
			return listFiles(ws, path)
		},
	})
}

func registerEditFile(reg *ToolRegistry) {
	reg.Register(RegisteredTool{
		Definition: ToolDefinition{
			Name: "edit_file",
			Description: "Make edits to a text file by replacing ALL occurrences of 'old_str' " +
				"with 'new_str'. 'old_str' and 'new_str' MUST be different. If the file specified " +
				"with path doesn't exist AND 'old_str' is an empty string, it will be created with " +
				"'new_str' as content.",
			Parameters: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": map[string]interface{}{
						"type":        "string",
						"description": "The relative path to the file.",
					},
					"old_str": map[string]interface{}{
						"type":        "string",
						"description": "Text to search for. Must match exactly. Use an empty string to create a new file if it doesn't exist.",
					},
					"new_str": map[string]interface{}{
						"type":        "string",
						"description": "Text to replace ALL occurrences of old_str with.",
					},
				},
				"required": []string{"path", "old_str", "new_str"},
			},
		},
		Executor: func(arguments json.RawMessage, ws *Workspace) (string, error) {
			args, err := ParseToolArguments(arguments)
			if err != nil {
				return "", err
			}
			path, _ := GetStringArg(args, "path")
			oldStr, okOld := GetStringArg(args, "old_str")
			newStr, okNew := GetStringArg(args, "new_str")
			if !okOld || !okNew {
				return "", fmt.Errorf("old_str and new_str are required")
			}
			return editFile(ws, path, oldStr, newStr)
		},
	})
}

// readFile returns up to MaxReadFileChars of the file content, with a
// truncation marker when the cap is hit.
func readFile(ws *Workspace, path string) (string, error) {
	info, err := ws.Stat(path)
	if err != nil {
		if isAccessDenied(err) {
			return "", accessDeniedError(ws, "read files")
		}
		return "", fmt.Errorf("path %q is not a file or does not exist", path)
	}
	if info.IsDir() {
		return "", fmt.Errorf("path %q is not a file or does not exist", path)
	}

	content, err := ws.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("reading file %q: %v", path, err)
	}
	// The cap counts characters, not bytes; cutting mid-rune would feed
	// invalid UTF-8 back to the model.
	if utf8.RuneCountInString(content) > MaxReadFileChars {
		runes := []rune(content)
		return string(runes[:MaxReadFileChars]) + readTruncationMarker, nil
	}
	return content, nil
}

// listFiles enumerates the immediate children of path. Each entry is rendered
// relative to the caller-supplied path (not the canonical absolute path) so
// the listing stays navigable without leaking filesystem layout; directories
// carry a trailing separator. The result is a JSON array so the model can
// parse it.
func listFiles(ws *Workspace, path string) (string, error) {
	info, err := ws.Stat(path)
	if err != nil {
		if isAccessDenied(err) {
			return "", accessDeniedError(ws, "list files")
		}
		return "", fmt.Errorf("path %q is not a directory or does not exist", path)
	}
	if !info.IsDir() {
		return "", fmt.Errorf("path %q is not a directory or does not exist", path)
	}

	entries, err := ws.ReadDir(path)
	if err != nil {
		return "", fmt.Errorf("listing files in %q: %v", path, err)
	}

	base := strings.TrimSuffix(path, "/")
	items := make([]string, 0, len(entries))
	for i, entry := range entries {
		if i >= MaxListEntries {
			items = append(items, listTruncationMarker)
			break
		}
		rel := base + "/" + entry.Name()
		if entry.IsDir() {
			rel += "/"
		}
		items = append(items, rel)
	}

	data, err := json.Marshal(items)
	if err != nil {
		return "", fmt.Errorf("listing files in %q: %v", path, err)
	}
	return string(data), nil
}

// editFile implements the three edit branches: reject no-op edits, create a
// missing file when old_str is empty, otherwise globally replace old_str in
// the existing content.
func editFile(ws *Workspace, path, oldStr, newStr string) (string, error) {
	if oldStr == newStr {
		return "", fmt.Errorf("old_str and new_str must be different")
	}
	if path == "" {
		return "", fmt.Errorf("path cannot be empty")
	}

	info, err := ws.Stat(path)
	if err != nil {
		if isAccessDenied(err) {
			return "", accessDeniedError(ws, "edit files")
		}
		// Missing file: create it when old_str is empty, otherwise there is
		// nothing to replace in.
		if oldStr == "" {
			if werr := ws.WriteFile(path, newStr); werr != nil {
				if isAccessDenied(werr) {
					return "", accessDeniedError(ws, "edit files")
				}
				return "", fmt.Errorf("creating file %q: %v", path, werr)
			}
			return fmt.Sprintf("Successfully created file %s", path), nil
		}
		return "", fmt.Errorf("file not found at path %q and old_str is not empty (cannot replace in a non-existent file)", path)
	}
	if info.IsDir() {
		return "", fmt.Errorf("path %q exists but is not a file", path)
	}

	content, err := ws.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("reading file %q: %v", path, err)
	}

	// Models sometimes double-escape JSON string content; unescape the common
	// literal sequences before matching.
	processedOld := unescapeEditString(oldStr)
	processedNew := unescapeEditString(newStr)

	if processedOld != "" && !strings.Contains(content, processedOld) {
		if trimmed := strings.TrimSpace(oldStr); trimmed != "" && strings.Contains(content, trimmed) {
			return "", fmt.Errorf("old_str (%q) not found exactly in file. Did you mean %q (ignoring leading/trailing whitespace)?", oldStr, trimmed)
		}
		return "", fmt.Errorf("old_str (%q) not found exactly in file %q. Replacement aborted", oldStr, path)
	}

	newContent := strings.ReplaceAll(content, processedOld, processedNew)

	// A non-empty old_str that changes nothing masks a failed edit; report it
	// as a warning instead of silently succeeding.
	if processedOld != "" && newContent == content {
		return fmt.Sprintf("Warning: replacing %q with %q resulted in no changes to the file %q. Check if old_str exists.", oldStr, newStr, path), nil
	}

	if err := ws.WriteFile(path, newContent); err != nil {
		return "", fmt.Errorf("writing file %q: %v", path, err)
	}
	return editSuccessMarker, nil
}

// unescapeEditString converts literal backslash escape sequences into the
// characters they denote.
func unescapeEditString(s string) string {
	return strings.NewReplacer(`\n`, "\n", `\t`, "\t", `\"`, `"`).Replace(s)
}

func isAccessDenied(err error) bool {
	return errors.Is(err, ErrAccessDenied)
}

func accessDeniedError(ws *Workspace, action string) error {
	return fmt.Errorf("access denied. Can only %s within the current project directory: %s", action, ws.Root())
}

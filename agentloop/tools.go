package agentloop

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/martinemde/tinker/llm"
)

// ToolExecutor is the function signature for tool execution. It receives the
// raw argument payload and the workspace the tool may touch, and returns a
// single result string or an error. Both outcomes are fed back to the model
// as the tool result content.
type ToolExecutor func(arguments json.RawMessage, ws *Workspace) (string, error)

// ToolDefinition describes a tool for the completion endpoint.
type ToolDefinition struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description"`
	Parameters  map[string]interface{} `json:"parameters"`
}

// RegisteredTool pairs a tool definition with its executor.
type RegisteredTool struct {
	Definition ToolDefinition
	Executor   ToolExecutor
}

// ToolRegistry manages tool registration and lookup. Tools are registered
// once at startup; definitions are shared read-only with the request builder.
type ToolRegistry struct {
	tools map[string]*RegisteredTool
	mu    sync.RWMutex
}

// NewToolRegistry creates an empty ToolRegistry.
func NewToolRegistry() *ToolRegistry {
	return &ToolRegistry{
		tools: make(map[string]*RegisteredTool),
	}
}

// Register adds or replaces a tool in the registry.
func (r *ToolRegistry) Register(tool RegisteredTool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.tools[tool.Definition.Name] = &tool
}

// Get returns a registered tool by name, or nil if not found.
func (r *ToolRegistry) Get(name string) *RegisteredTool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.tools[name]
}

// Definitions returns all tool definitions, sorted by name.
func (r *ToolRegistry) Definitions() []ToolDefinition {
	r.mu.RLock()
	defer r.mu.RUnlock()
	defs := make([]ToolDefinition, 0, len(r.tools))
	for _, tool := range r.tools {
		defs = append(defs, tool.Definition)
	}
	sort.Slice(defs, func(i, j int) bool { return defs[i].Name < defs[j].Name })
	return defs
}

// Names returns the names of all registered tools, sorted.
func (r *ToolRegistry) Names() []string {
	defs := r.Definitions()
	names := make([]string, len(defs))
	for i, d := range defs {
		names[i] = d.Name
	}
	return names
}

// Count returns the number of registered tools.
func (r *ToolRegistry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.tools)
}

// ToLLMToolDefs converts registry definitions into the llm package's
// ToolDefinition type used in requests.
func (r *ToolRegistry) ToLLMToolDefs() []llm.ToolDefinition {
	defs := r.Definitions()
	result := make([]llm.ToolDefinition, len(defs))
	for i, d := range defs {
		result[i] = llm.ToolDefinition{
			Name:        d.Name,
			Description: d.Description,
			Parameters:  d.Parameters,
		}
	}
	return result
}

// ParseToolArguments unmarshals a tool call's argument payload into a map.
func ParseToolArguments(raw json.RawMessage) (map[string]interface{}, error) {
	var args map[string]interface{}
	if err := json.Unmarshal(raw, &args); err != nil {
		return nil, fmt.Errorf("invalid tool arguments: %w", err)
	}
	return args, nil
}

// ValidateArguments checks the parsed arguments against a tool definition's
// parameter schema: every required parameter must be present, and every
// provided parameter of a declared primitive type must match it.
func ValidateArguments(def ToolDefinition, args map[string]interface{}) error {
	required, _ := def.Parameters["required"].([]string)
	if required == nil {
		if raw, ok := def.Parameters["required"].([]interface{}); ok {
			for _, r := range raw {
				if s, ok := r.(string); ok {
					required = append(required, s)
				}
			}
		}
	}
	var missing []string
	for _, name := range required {
		if _, ok := args[name]; !ok {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing required argument(s): %s", strings.Join(missing, ", "))
	}

	properties, _ := def.Parameters["properties"].(map[string]interface{})
	for name, value := range args {
		prop, ok := properties[name].(map[string]interface{})
		if !ok {
			continue
		}
		declared, _ := prop["type"].(string)
		if declared == "" {
			continue
		}
		if !matchesSchemaType(declared, value) {
			return fmt.Errorf("argument %q must be of type %s", name, declared)
		}
	}
	return nil
}

func matchesSchemaType(declared string, value interface{}) bool {
	switch declared {
	case "string":
		_, ok := value.(string)
		return ok
	case "boolean":
		_, ok := value.(bool)
		return ok
	case "integer", "number":
		switch value.(type) {
		case float64, int, json.Number:
			return true
		}
		return false
	default:
		// Objects and arrays pass through; executors validate further.
		return true
	}
}

// GetStringArg extracts a string argument from parsed tool arguments.
func GetStringArg(args map[string]interface{}, key string) (string, bool) {
	v, ok := args[key]
	if !ok {
		return "", false
	}
	s, ok := v.(string)
	return s, ok
}

package agentloop

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/martinemde/tinker/llm"
)

// SessionState represents the current lifecycle state of a session.
type SessionState string

const (
	StateIdle               SessionState = "idle"
	StateAwaitingCompletion SessionState = "awaiting_completion"
	StateClosed             SessionState = "closed"
)

// ErrToolLoopExceeded is returned when a single user input drives more tool
// rounds than the configured cap allows.
var ErrToolLoopExceeded = errors.New("tool round limit exceeded")

// ErrSessionBusy is returned when Submit is called while a previous input is
// still being processed.
var ErrSessionBusy = errors.New("session is already processing an input")

// ErrSessionClosed is returned when Submit is called on a closed session.
var ErrSessionClosed = errors.New("session is closed")

// SessionConfig holds configuration for a session.
type SessionConfig struct {
	Model               string `json:"model"`
	Provider            string `json:"provider,omitempty"`
	MaxToolRounds       int    `json:"max_tool_rounds"`
	MaxOutputTokens     int    `json:"max_output_tokens"`
	SystemPrompt        string `json:"system_prompt,omitempty"` // appended last to the built prompt
	EnableLoopDetection bool   `json:"enable_loop_detection"`
	LoopDetectionWindow int    `json:"loop_detection_window"`
}

// DefaultSessionConfig returns the default configuration.
func DefaultSessionConfig() SessionConfig {
	return SessionConfig{
		MaxToolRounds:       25,
		MaxOutputTokens:     32768,
		EnableLoopDetection: true,
		LoopDetectionWindow: 10,
	}
}

// Session is the central orchestrator for the agent loop. It owns the
// conversation history, dispatches tool calls through its registry, and
// reports progress to the host application through events.
type Session struct {
	id       string
	registry *ToolRegistry
	ws       *Workspace
	history  []Turn
	emitter  *EventEmitter
	config   SessionConfig
	state    SessionState
	client   *llm.Client
	mu       sync.Mutex
}

// NewSession creates a session over the given client, tool registry, and
// workspace. A nil config means defaults.
func NewSession(client *llm.Client, registry *ToolRegistry, ws *Workspace, config *SessionConfig) *Session {
	cfg := DefaultSessionConfig()
	if config != nil {
		cfg = *config
	}
	if cfg.MaxToolRounds <= 0 {
		cfg.MaxToolRounds = 25
	}
	if cfg.MaxOutputTokens <= 0 {
		cfg.MaxOutputTokens = 32768
	}
	if cfg.LoopDetectionWindow <= 0 {
		cfg.LoopDetectionWindow = 10
	}

	sessionID := uuid.New().String()
	s := &Session{
		id:       sessionID,
		registry: registry,
		ws:       ws,
		history:  make([]Turn, 0),
		emitter:  NewEventEmitter(sessionID, 256),
		config:   cfg,
		state:    StateIdle,
		client:   client,
	}
	s.emitter.Emit(EventSessionStart, map[string]interface{}{
		"model": cfg.Model,
	})
	return s
}

// ID returns the session identifier.
func (s *Session) ID() string { return s.id }

// State returns the current session state.
func (s *Session) State() SessionState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// History returns a copy of the conversation history.
func (s *Session) History() []Turn {
	s.mu.Lock()
	defer s.mu.Unlock()
	h := make([]Turn, len(s.history))
	copy(h, s.history)
	return h
}

// Workspace returns the workspace this session's tools operate on.
func (s *Session) Workspace() *Workspace { return s.ws }

// Registry returns the session's tool registry.
func (s *Session) Registry() *ToolRegistry { return s.registry }

// Events returns the event channel for the host application.
func (s *Session) Events() <-chan SessionEvent {
	return s.emitter.Events()
}

// Close terminates the session and closes the event channel.
func (s *Session) Close() {
	s.mu.Lock()
	if s.state == StateClosed {
		s.mu.Unlock()
		return
	}
	s.state = StateClosed
	s.mu.Unlock()

	s.emitter.Emit(EventSessionEnd, map[string]interface{}{
		"state": string(StateClosed),
	})
	s.emitter.Close()
}

// Submit processes one user input through the agent loop. It blocks until the
// turn completes; a second Submit while a turn is in flight returns
// ErrSessionBusy. On transport failure the history accumulated so far is
// kept and the session returns to idle so the user can continue.
func (s *Session) Submit(ctx context.Context, userInput string) error {
	s.mu.Lock()
	switch s.state {
	case StateClosed:
		s.mu.Unlock()
		return ErrSessionClosed
	case StateAwaitingCompletion:
		s.mu.Unlock()
		return ErrSessionBusy
	}
	s.state = StateAwaitingCompletion
	s.mu.Unlock()

	err := s.processInput(ctx, userInput)

	s.mu.Lock()
	if s.state != StateClosed {
		s.state = StateIdle
	}
	s.mu.Unlock()
	return err
}

// processInput is the core agent loop: append the user turn, then alternate
// completion calls and tool rounds until the model answers without tool calls
// or the round cap is hit.
func (s *Session) processInput(ctx context.Context, userInput string) error {
	s.mu.Lock()
	s.history = append(s.history, NewUserTurn(userInput))
	s.mu.Unlock()
	s.emitter.Emit(EventUserInput, map[string]interface{}{
		"content": userInput,
	})
	s.emitter.Emit(EventTurnStart, nil)

	roundCount := 0
	for {
		if roundCount >= s.config.MaxToolRounds {
			s.emitter.Emit(EventTurnLimit, map[string]interface{}{
				"rounds": roundCount,
			})
			s.emitter.Emit(EventTurnEnd, map[string]interface{}{
				"reason": "tool_loop_exceeded",
			})
			return fmt.Errorf("%w after %d rounds", ErrToolLoopExceeded, roundCount)
		}

		select {
		case <-ctx.Done():
			s.emitter.Emit(EventError, map[string]interface{}{
				"error": ctx.Err().Error(),
			})
			return ctx.Err()
		default:
		}

		response, err := s.complete(ctx)
		if err != nil {
			s.emitter.Emit(EventError, map[string]interface{}{
				"error": err.Error(),
			})
			s.emitter.Emit(EventTurnEnd, map[string]interface{}{
				"reason": "error",
			})
			return fmt.Errorf("completion request: %w", err)
		}

		toolCalls := response.ToolCalls()
		s.mu.Lock()
		s.history = append(s.history, NewAssistantTurn(response.Text(), toolCalls, response.Usage, response.ID))
		s.mu.Unlock()

		if text := response.Text(); text != "" {
			s.emitter.Emit(EventAssistantText, map[string]interface{}{
				"text": text,
			})
		}

		if len(toolCalls) == 0 {
			if response.Text() == "" {
				s.emitter.Emit(EventNotice, map[string]interface{}{
					"message": "[Model returned no text content]",
				})
			}
			s.emitter.Emit(EventTurnEnd, map[string]interface{}{
				"reason": "completed",
			})
			return nil
		}

		roundCount++
		results := s.executeToolCalls(toolCalls)
		s.mu.Lock()
		s.history = append(s.history, NewToolResultsTurn(results))
		s.mu.Unlock()

		s.checkForLoop()
	}
}

// complete builds and issues one completion request from the current history.
func (s *Session) complete(ctx context.Context) (*llm.Response, error) {
	systemPrompt := BuildSystemPrompt(s.ws, s.config.SystemPrompt)
	messages := append(
		[]llm.Message{llm.SystemMessage(systemPrompt)},
		ConvertHistoryToMessages(s.History())...,
	)

	maxTokens := s.config.MaxOutputTokens
	request := llm.Request{
		Model:      s.config.Model,
		Provider:   s.config.Provider,
		Messages:   messages,
		ToolDefs:   s.registry.ToLLMToolDefs(),
		ToolChoice: &llm.ToolChoice{Mode: "auto"},
		MaxTokens:  &maxTokens,
	}
	return s.client.Complete(ctx, request)
}

// executeToolCalls runs one round of tool calls sequentially in the order the
// model requested them. Every call produces exactly one result keyed by the
// call id; executor failures are packaged as error results rather than
// aborting the turn.
func (s *Session) executeToolCalls(toolCalls []llm.ToolCall) []llm.ToolResult {
	results := make([]llm.ToolResult, len(toolCalls))
	for i, tc := range toolCalls {
		results[i] = s.executeSingleTool(tc)
	}
	return results
}

// executeSingleTool handles the full pipeline for one tool call:
// lookup, parse, validate, execute, emit, return.
func (s *Session) executeSingleTool(tc llm.ToolCall) llm.ToolResult {
	s.emitter.Emit(EventToolCallStart, map[string]interface{}{
		"id":        tc.ID,
		"name":      tc.Name,
		"arguments": string(tc.Arguments),
	})

	content, isError := s.runExecutor(tc)

	s.emitter.Emit(EventToolCallEnd, map[string]interface{}{
		"id":       tc.ID,
		"name":     tc.Name,
		"result":   TruncateForDisplay(content, DisplayResultLimit),
		"is_error": isError,
	})

	return llm.ToolResult{
		ToolCallID: tc.ID,
		Name:       tc.Name,
		Content:    content,
		IsError:    isError,
	}
}

func (s *Session) runExecutor(tc llm.ToolCall) (content string, isError bool) {
	tool := s.registry.Get(tc.Name)
	if tool == nil {
		return fmt.Sprintf("Error: unknown tool %q", tc.Name), true
	}

	args, err := ParseToolArguments(tc.Arguments)
	if err != nil {
		return fmt.Sprintf("Error: %v", err), true
	}
	if err := ValidateArguments(tool.Definition, args); err != nil {
		return fmt.Sprintf("Error: %v", err), true
	}

	result, err := tool.Executor(json.RawMessage(tc.Arguments), s.ws)
	if err != nil {
		return fmt.Sprintf("Error: %v", err), true
	}
	return result, false
}

// checkForLoop runs loop detection over the history and, when a repeating
// tool call pattern is found, injects a steering warning the model will see
// on the next request.
func (s *Session) checkForLoop() {
	if !s.config.EnableLoopDetection {
		return
	}
	history := s.History()
	if !DetectLoop(history, s.config.LoopDetectionWindow) {
		return
	}
	warning := fmt.Sprintf(
		"Loop detected: the last %d tool calls follow a repeating pattern. Try a different approach.",
		s.config.LoopDetectionWindow)
	s.mu.Lock()
	s.history = append(s.history, NewSteeringTurn(warning))
	s.mu.Unlock()
	s.emitter.Emit(EventSteeringInjected, map[string]interface{}{
		"content": warning,
	})
}

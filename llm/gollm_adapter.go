package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/teilomillet/gollm"
)

// GollmAdapter wraps a gollm.LLM instance and implements ProviderAdapter.
// It translates between the client types and gollm's API.
type GollmAdapter struct {
	provider string
	llm      gollm.LLM
	model    string
}

// GollmAdapterOption configures a GollmAdapter.
type GollmAdapterOption func(*gollmAdapterConfig)

type gollmAdapterConfig struct {
	apiKey    string
	model     string
	maxTokens int
	extraOpts []gollm.ConfigOption
}

// WithAPIKey sets the API key for the adapter.
func WithAPIKey(key string) GollmAdapterOption {
	return func(c *gollmAdapterConfig) {
		c.apiKey = key
	}
}

// WithModel sets the default model for the adapter.
func WithModel(model string) GollmAdapterOption {
	return func(c *gollmAdapterConfig) {
		c.model = model
	}
}

// WithMaxTokens sets the default max output tokens.
func WithMaxTokens(n int) GollmAdapterOption {
	return func(c *gollmAdapterConfig) {
		c.maxTokens = n
	}
}

// WithGollmOptions adds extra gollm configuration options.
func WithGollmOptions(opts ...gollm.ConfigOption) GollmAdapterOption {
	return func(c *gollmAdapterConfig) {
		c.extraOpts = append(c.extraOpts, opts...)
	}
}

// NewGollmAdapter creates a new GollmAdapter for the given provider.
// If apiKey is empty, gollm will attempt to read it from environment variables.
func NewGollmAdapter(provider string, apiKey string, opts ...GollmAdapterOption) (*GollmAdapter, error) {
	cfg := &gollmAdapterConfig{
		apiKey:    apiKey,
		maxTokens: 4096,
	}
	for _, opt := range opts {
		opt(cfg)
	}

	model := cfg.model
	if model == "" {
		model = DefaultModel(provider)
	}

	gollmOpts := []gollm.ConfigOption{
		gollm.SetProvider(provider),
		gollm.SetModel(model),
		gollm.SetMaxTokens(cfg.maxTokens),
		gollm.SetMaxRetries(0), // retries are handled by client middleware
		gollm.SetLogLevel(gollm.LogLevelWarn),
	}

	if cfg.apiKey != "" {
		gollmOpts = append(gollmOpts, gollm.SetAPIKey(cfg.apiKey))
	}

	gollmOpts = append(gollmOpts, cfg.extraOpts...)

	llm, err := gollm.NewLLM(gollmOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create gollm LLM for provider %s: %w", provider, err)
	}

	return &GollmAdapter{
		provider: provider,
		llm:      llm,
		model:    model,
	}, nil
}

// NewGollmAdapterFromLLM wraps an existing gollm.LLM instance.
func NewGollmAdapterFromLLM(provider string, llm gollm.LLM) *GollmAdapter {
	return &GollmAdapter{
		provider: provider,
		llm:      llm,
	}
}

// Name returns the provider identifier.
func (a *GollmAdapter) Name() string {
	return a.provider
}

// Complete sends a blocking request and returns the full response.
func (a *GollmAdapter) Complete(ctx context.Context, req Request) (*Response, error) {
	prompt := a.translateRequest(req)
	a.applyRequestOptions(req)

	text, err := a.llm.Generate(ctx, prompt)
	if err != nil {
		return nil, a.translateError(err)
	}

	return a.buildResponse(req, text), nil
}

// translateRequest converts a Request into a gollm Prompt.
func (a *GollmAdapter) translateRequest(req Request) *gollm.Prompt {
	var systemPrompt string
	var userParts []string

	for _, msg := range req.Messages {
		switch msg.Role {
		case RoleSystem:
			systemPrompt += msg.TextContent() + "\n"
		case RoleUser:
			userParts = append(userParts, msg.TextContent())
		case RoleAssistant:
			text := msg.TextContent()
			if text != "" {
				userParts = append(userParts, "[Assistant]: "+text)
			}
			for _, part := range msg.Content {
				if part.Kind == ContentToolCall && part.ToolCall != nil {
					userParts = append(userParts, fmt.Sprintf("[Tool Call %s]: %s(%s)",
						part.ToolCall.ID, part.ToolCall.Name, string(part.ToolCall.Arguments)))
				}
			}
		case RoleTool:
			for _, part := range msg.Content {
				if part.Kind == ContentToolResult && part.ToolResult != nil {
					label := "Tool Result"
					if part.ToolResult.IsError {
						label = "Tool Error"
					}
					if part.ToolResult.Name != "" {
						label += " " + part.ToolResult.Name
					}
					userParts = append(userParts, fmt.Sprintf("[%s %s]: %s",
						label, part.ToolResult.ToolCallID, part.ToolResult.Content))
				}
			}
		}
	}

	promptText := strings.Join(userParts, "\n")
	if promptText == "" {
		promptText = "Hello"
	}

	promptOpts := []gollm.PromptOption{}

	if systemPrompt != "" {
		promptOpts = append(promptOpts, gollm.WithSystemPrompt(strings.TrimSpace(systemPrompt), gollm.CacheTypeEphemeral))
	}

	if req.MaxTokens != nil {
		promptOpts = append(promptOpts, gollm.WithMaxLength(*req.MaxTokens))
	}

	if len(req.ToolDefs) > 0 {
		tools := make([]gollm.Tool, 0, len(req.ToolDefs))
		for _, t := range req.ToolDefs {
			tools = append(tools, gollm.Tool{
				Type: "function",
				Function: gollm.Function{
					Name:        t.Name,
					Description: t.Description,
					Parameters:  t.Parameters,
				},
			})
		}
		promptOpts = append(promptOpts, gollm.WithTools(tools))
	}

	if req.ToolChoice != nil {
		promptOpts = append(promptOpts, gollm.WithToolChoice(req.ToolChoice.Mode))
	}

	return gollm.NewPrompt(promptText, promptOpts...)
}

// applyRequestOptions applies request-level parameters to the gollm LLM.
func (a *GollmAdapter) applyRequestOptions(req Request) {
	if req.Model != "" {
		a.llm.SetOption("model", req.Model)
	}
	if req.MaxTokens != nil {
		a.llm.SetOption("max_tokens", *req.MaxTokens)
	}
}

// buildResponse constructs a Response from the generated text.
func (a *GollmAdapter) buildResponse(req Request, text string) *Response {
	model := req.Model
	if model == "" {
		model = a.model
	}

	var contentParts []ContentPart
	toolCalls := a.parseToolCalls(text)

	for _, tc := range toolCalls {
		tc := tc
		contentParts = append(contentParts, ContentPart{
			Kind:     ContentToolCall,
			ToolCall: &tc,
		})
	}

	// Any text preceding the tool-call payload survives as assistant text.
	cleanedText := a.removeToolCallJSON(text, toolCalls)
	if cleanedText != "" {
		contentParts = append([]ContentPart{TextPart(cleanedText)}, contentParts...)
	}

	if len(contentParts) == 0 {
		contentParts = []ContentPart{TextPart(text)}
	}

	finishReason := FinishReason{Reason: "stop", Raw: "stop"}
	if len(toolCalls) > 0 {
		finishReason = FinishReason{Reason: "tool_calls", Raw: "tool_calls"}
	}

	return &Response{
		ID:       "resp_" + uuid.New().String()[:8],
		Model:    model,
		Provider: a.provider,
		Message: Message{
			Role:    RoleAssistant,
			Content: contentParts,
		},
		FinishReason: finishReason,
		Usage: Usage{
			// gollm does not expose detailed usage; estimate from text length.
			InputTokens:  estimateTokens(req),
			OutputTokens: len(text) / 4,
			TotalTokens:  estimateTokens(req) + len(text)/4,
		},
	}
}

// parseToolCalls attempts to extract tool calls from the response text.
// gollm may return tool calls as JSON embedded in the response text.
func (a *GollmAdapter) parseToolCalls(text string) []ToolCallData {
	var calls []ToolCallData

	start := strings.Index(text, `{"tool_calls"`)
	if start == -1 {
		start = strings.Index(text, `[{"name"`)
	}
	if start == -1 {
		return nil
	}

	var rawCalls []struct {
		Name      string          `json:"name"`
		Arguments json.RawMessage `json:"arguments"`
	}

	remaining := text[start:]
	if err := json.Unmarshal([]byte(remaining), &rawCalls); err == nil {
		for _, rc := range rawCalls {
			calls = append(calls, ToolCallData{
				ID:        "call_" + uuid.New().String()[:8],
				Name:      rc.Name,
				Arguments: rc.Arguments,
			})
		}
	}

	return calls
}

// removeToolCallJSON removes parsed tool call JSON from the text.
func (a *GollmAdapter) removeToolCallJSON(text string, calls []ToolCallData) string {
	if len(calls) == 0 {
		return text
	}
	result := text
	for _, pattern := range []string{`{"tool_calls"`, `[{"name"`} {
		if idx := strings.Index(result, pattern); idx != -1 {
			result = strings.TrimSpace(result[:idx])
		}
	}
	return result
}

// translateError converts a gollm error into the client error hierarchy.
func (a *GollmAdapter) translateError(err error) error {
	if err == nil {
		return nil
	}
	msg := err.Error()

	msgLower := strings.ToLower(msg)
	switch {
	case strings.Contains(msgLower, "401") || strings.Contains(msgLower, "unauthorized") || strings.Contains(msgLower, "invalid api key"):
		return &AuthenticationError{ProviderError: ProviderError{
			ClientError: ClientError{Message: msg, Cause: err}, Provider: a.provider, StatusCode: 401,
		}}
	case strings.Contains(msgLower, "403") || strings.Contains(msgLower, "forbidden"):
		return &AccessDeniedError{ProviderError: ProviderError{
			ClientError: ClientError{Message: msg, Cause: err}, Provider: a.provider, StatusCode: 403,
		}}
	case strings.Contains(msgLower, "404") || strings.Contains(msgLower, "not found"):
		return &NotFoundError{ProviderError: ProviderError{
			ClientError: ClientError{Message: msg, Cause: err}, Provider: a.provider, StatusCode: 404,
		}}
	case strings.Contains(msgLower, "429") || strings.Contains(msgLower, "rate limit"):
		return &RateLimitError{ProviderError: ProviderError{
			ClientError: ClientError{Message: msg, Cause: err}, Provider: a.provider, StatusCode: 429, Retryable: true,
		}}
	case strings.Contains(msgLower, "context length") || strings.Contains(msgLower, "too many tokens"):
		return &ContextLengthError{ProviderError: ProviderError{
			ClientError: ClientError{Message: msg, Cause: err}, Provider: a.provider, StatusCode: 413,
		}}
	case strings.Contains(msgLower, "500") || strings.Contains(msgLower, "internal server"):
		return &ServerError{ProviderError: ProviderError{
			ClientError: ClientError{Message: msg, Cause: err}, Provider: a.provider, StatusCode: 500, Retryable: true,
		}}
	case strings.Contains(msgLower, "timeout"):
		return &RequestTimeoutError{ClientError: ClientError{Message: msg, Cause: err}}
	default:
		return &ProviderError{
			ClientError: ClientError{Message: msg, Cause: err},
			Provider:    a.provider,
			Retryable:   true,
		}
	}
}

// estimateTokens provides a rough token count estimate from request messages.
func estimateTokens(req Request) int {
	total := 0
	for _, msg := range req.Messages {
		for _, part := range msg.Content {
			if part.Kind == ContentText {
				total += len(part.Text) / 4
			}
		}
	}
	if total == 0 {
		total = 10
	}
	return total
}

package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
)

// Capability is one answer shape a completion may be asked for.
type Capability string

const (
	CapabilityAnalysis Capability = "analysis"
	CapabilityReplies  Capability = "replies"
)

// Tool names used when a provider answers through function calls.
const (
	ToolRecordAnalysis = "record_review_analysis"
	ToolDraftReplies   = "draft_review_replies"
)

// ToolFor returns the function name that carries the given capability.
func ToolFor(c Capability) string {
	if c == CapabilityAnalysis {
		return ToolRecordAnalysis
	}
	return ToolDraftReplies
}

// CompletionRequest is a single prompt plus the capabilities it asks for.
type CompletionRequest struct {
	Prompt       string
	Capabilities []Capability
}

// CompletionKind tags which encoding a Completion carries.
type CompletionKind string

const (
	KindText      CompletionKind = "text"
	KindToolCalls CompletionKind = "tool_calls"
)

// ToolCall is one function call returned by the model. Arguments is the raw JSON object.
type ToolCall struct {
	Name      string
	Arguments json.RawMessage
}

// Completion is the raw model answer. Exactly one of Text or ToolCalls is
// meaningful, selected by Kind.
type Completion struct {
	Kind      CompletionKind
	Text      string
	ToolCalls []ToolCall
}

// TextCompletion builds a text completion.
func TextCompletion(text string) *Completion {
	return &Completion{Kind: KindText, Text: text}
}

// ToolCallCompletion builds a tool-call completion.
func ToolCallCompletion(calls ...ToolCall) *Completion {
	return &Completion{Kind: KindToolCalls, ToolCalls: calls}
}

// Provider performs exactly one model call per Complete invocation. It never retries.
type Provider interface {
	Complete(ctx context.Context, req CompletionRequest) (*Completion, error)

	// Name returns the provider name used in logs and metrics
	Name() string

	// Structured reports whether the provider answers through tool calls
	Structured() bool

	// Configured reports whether credentials are present
	Configured() bool
}

// Config represents provider configuration
type Config struct {
	Provider        string // gemini, openai
	APIKey          string
	BaseURL         string
	Model           string
	Temperature     float64
	MaxOutputTokens int

	// HTTPClient overrides the transport, mostly for tests
	HTTPClient *http.Client
}

// New creates the provider named by cfg.Provider.
func New(cfg Config) (Provider, error) {
	switch strings.ToLower(cfg.Provider) {
	case "", "gemini":
		return NewGeminiProvider(cfg), nil
	case "openai":
		return NewOpenAIProvider(cfg), nil
	default:
		return nil, fmt.Errorf("unknown llm provider %q", cfg.Provider)
	}
}

func httpClientOrDefault(c *http.Client) *http.Client {
	if c != nil {
		return c
	}
	// Deadlines come from the request context.
	return &http.Client{}
}

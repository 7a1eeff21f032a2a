package llm

import (
	"context"
	"fmt"
	"log"
	"strings"

	"canvasassist/models"
)

// ToolSpec describes a callable function offered to the model. Properties and
// Required are forwarded to the remote service unmodified; the adapter never
// interprets them.
type ToolSpec struct {
	Name        string
	Description string
	Properties  any
	Required    []string
}

// Result is the outcome of a tool-augmented generation. Content may be empty
// when the model chose to only request tool calls; ToolCalls is nil when none
// were requested.
type Result struct {
	Content   string            `json:"content"`
	ToolCalls []models.ToolCall `json:"tool_calls,omitempty"`
}

// Generator is the chat completion adapter. Both operations prepend the
// system prompt ahead of the caller's history, request a single completion at
// temperature 0.7, and return the first choice. The caller's message slice is
// never mutated. Failures come back as errors; rendering a user-facing
// apology is the caller's business.
type Generator interface {
	GenerateResponse(ctx context.Context, systemPrompt string, messages []models.ChatMessage) (string, error)
	GenerateWithTools(ctx context.Context, systemPrompt string, messages []models.ChatMessage, tools []ToolSpec) (*Result, error)
}

const defaultTemperature = 0.7

// NewGenerator selects a provider implementation by name.
func NewGenerator(provider, apiKey, model string, verbose bool) (Generator, error) {
	switch provider {
	case "", "openai":
		return NewOpenAIProvider(apiKey, model, verbose)
	case "anthropic":
		return NewAnthropicProvider(apiKey, model, verbose)
	default:
		return nil, fmt.Errorf("unknown LLM provider: %q", provider)
	}
}

func logRequest(provider, stage, systemPrompt string, messageCount, toolCount int) {
	prompt := systemPrompt
	if len(prompt) > 100 {
		prompt = prompt[:100] + "..."
	}
	log.Printf("[INFO] ========== %s Request (%s) ==========", provider, stage)
	log.Printf("[INFO] Messages: %d (system prompt prepended)", messageCount)
	log.Printf("[INFO] System prompt: %s", strings.ReplaceAll(prompt, "\n", " "))
	if toolCount > 0 {
		log.Printf("[INFO] Tools offered: %d", toolCount)
	} else {
		log.Printf("[INFO] No tools offered")
	}
	log.Printf("[INFO] ================================================")
}

func logResponse(provider, stage, content string, toolCalls []models.ToolCall) {
	log.Printf("[INFO] ========== %s Response (%s) ==========", provider, stage)
	log.Printf("[INFO] Content length: %d chars", len(content))
	if len(toolCalls) > 0 {
		log.Printf("[INFO] Tool calls requested: %d", len(toolCalls))
		for i, tc := range toolCalls {
			log.Printf("[INFO]   [%d] %s (id=%s)", i, tc.Name, tc.ID)
		}
	} else {
		log.Printf("[INFO] No tool calls requested")
	}
	log.Printf("[INFO] =================================================")
}

package llm

import (
	"context"
	"fmt"
	"log"

	"canvasassist/models"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"
)

// OpenAIProvider talks to an OpenAI-compatible chat completion endpoint. The
// wire contract is the standard one: the request carries the model, an
// ordered message list and a temperature, optionally a tool list; the
// response carries choices, each with content and optionally tool calls whose
// arguments are raw JSON strings.
type OpenAIProvider struct {
	llm     llms.Model
	model   string
	verbose bool
}

func NewOpenAIProvider(apiKey, model string, verbose bool) (*OpenAIProvider, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("OpenAI API key is required")
	}

	llmClient, err := openai.New(
		openai.WithModel(model),
		openai.WithToken(apiKey),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create OpenAI client: %w", err)
	}

	log.Printf("[INFO] OpenAI provider initialized with model: %s", model)

	return &OpenAIProvider{
		llm:     llmClient,
		model:   model,
		verbose: verbose,
	}, nil
}

func (p *OpenAIProvider) GenerateResponse(ctx context.Context, systemPrompt string, messages []models.ChatMessage) (string, error) {
	history := p.buildHistory(systemPrompt, messages)

	if p.verbose {
		logRequest("OpenAI", "generate", systemPrompt, len(history), 0)
	}

	resp, err := p.llm.GenerateContent(ctx, history, llms.WithTemperature(defaultTemperature))
	if err != nil {
		log.Printf("[ERROR] OpenAI completion failed: %v", err)
		return "", fmt.Errorf("failed to generate response: %w", err)
	}

	if len(resp.Choices) == 0 {
		log.Printf("[ERROR] OpenAI response contained no choices")
		return "", fmt.Errorf("no choices in completion response")
	}

	content := resp.Choices[0].Content

	if p.verbose {
		logResponse("OpenAI", "generate", content, nil)
	}

	return content, nil
}

func (p *OpenAIProvider) GenerateWithTools(ctx context.Context, systemPrompt string, messages []models.ChatMessage, tools []ToolSpec) (*Result, error) {
	history := p.buildHistory(systemPrompt, messages)

	if p.verbose {
		logRequest("OpenAI", "generate with tools", systemPrompt, len(history), len(tools))
	}

	opts := []llms.CallOption{llms.WithTemperature(defaultTemperature)}
	if len(tools) > 0 {
		opts = append(opts, llms.WithTools(toOpenAITools(tools)))
	}

	resp, err := p.llm.GenerateContent(ctx, history, opts...)
	if err != nil {
		log.Printf("[ERROR] OpenAI completion with tools failed: %v", err)
		return nil, fmt.Errorf("failed to generate response with tools: %w", err)
	}

	if len(resp.Choices) == 0 {
		log.Printf("[ERROR] OpenAI response contained no choices")
		return nil, fmt.Errorf("no choices in completion response")
	}

	choice := resp.Choices[0]

	var toolCalls []models.ToolCall
	for _, tc := range choice.ToolCalls {
		if tc.FunctionCall == nil {
			continue
		}
		toolCalls = append(toolCalls, models.ToolCall{
			ID:        tc.ID,
			Name:      tc.FunctionCall.Name,
			Arguments: tc.FunctionCall.Arguments,
		})
	}

	if p.verbose {
		logResponse("OpenAI", "generate with tools", choice.Content, toolCalls)
	}

	return &Result{
		Content:   choice.Content,
		ToolCalls: toolCalls,
	}, nil
}

// buildHistory returns a fresh slice with the system prompt first, followed
// by the caller's messages converted to the langchaingo representation.
func (p *OpenAIProvider) buildHistory(systemPrompt string, messages []models.ChatMessage) []llms.MessageContent {
	history := make([]llms.MessageContent, 0, len(messages)+1)
	history = append(history, llms.TextParts(llms.ChatMessageTypeSystem, systemPrompt))

	for _, msg := range messages {
		switch msg.Role {
		case "assistant":
			parts := []llms.ContentPart{}
			if msg.Content != "" {
				parts = append(parts, llms.TextContent{Text: msg.Content})
			}
			for _, tc := range msg.ToolCalls {
				parts = append(parts, llms.ToolCall{
					ID:   tc.ID,
					Type: "function",
					FunctionCall: &llms.FunctionCall{
						Name:      tc.Name,
						Arguments: tc.Arguments,
					},
				})
			}
			history = append(history, llms.MessageContent{Role: llms.ChatMessageTypeAI, Parts: parts})
		case "tool":
			history = append(history, llms.MessageContent{
				Role: llms.ChatMessageTypeTool,
				Parts: []llms.ContentPart{
					llms.ToolCallResponse{
						ToolCallID: msg.ToolCallID,
						Content:    msg.Content,
					},
				},
			})
		default: // "user"
			history = append(history, llms.TextParts(llms.ChatMessageTypeHuman, msg.Content))
		}
	}

	return history
}

func toOpenAITools(tools []ToolSpec) []llms.Tool {
	out := make([]llms.Tool, len(tools))
	for i, t := range tools {
		out[i] = llms.Tool{
			Type: "function",
			Function: &llms.FunctionDefinition{
				Name:        t.Name,
				Description: t.Description,
				Parameters: map[string]any{
					"type":       "object",
					"properties": t.Properties,
					"required":   t.Required,
				},
			},
		}
	}
	return out
}

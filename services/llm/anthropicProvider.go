package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"canvasassist/models"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

const anthropicMaxTokens = 4096

// AnthropicProvider implements Generator against the Anthropic Messages API.
// Tool calls arrive as tool_use content blocks; their inputs are re-marshaled
// to JSON so callers see the same raw-arguments contract as the OpenAI path.
type AnthropicProvider struct {
	client  *anthropic.Client
	model   anthropic.Model
	verbose bool
}

func NewAnthropicProvider(apiKey, model string, verbose bool) (*AnthropicProvider, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("Anthropic API key is required")
	}

	client := anthropic.NewClient(option.WithAPIKey(apiKey))

	log.Printf("[INFO] Anthropic provider initialized with model: %s", model)

	return &AnthropicProvider{
		client:  &client,
		model:   anthropic.Model(model),
		verbose: verbose,
	}, nil
}

func (p *AnthropicProvider) GenerateResponse(ctx context.Context, systemPrompt string, messages []models.ChatMessage) (string, error) {
	result, err := p.generate(ctx, "generate", systemPrompt, messages, nil)
	if err != nil {
		return "", err
	}
	return result.Content, nil
}

func (p *AnthropicProvider) GenerateWithTools(ctx context.Context, systemPrompt string, messages []models.ChatMessage, tools []ToolSpec) (*Result, error) {
	return p.generate(ctx, "generate with tools", systemPrompt, messages, tools)
}

func (p *AnthropicProvider) generate(ctx context.Context, stage, systemPrompt string, messages []models.ChatMessage, tools []ToolSpec) (*Result, error) {
	anthropicMessages := convertToAnthropicMessages(messages)

	if p.verbose {
		logRequest("Anthropic", stage, systemPrompt, len(anthropicMessages), len(tools))
	}

	params := anthropic.MessageNewParams{
		Model:       p.model,
		MaxTokens:   anthropicMaxTokens,
		Temperature: anthropic.Float(defaultTemperature),
		System: []anthropic.TextBlockParam{
			{Text: systemPrompt},
		},
		Messages: anthropicMessages,
	}
	if len(tools) > 0 {
		params.Tools = toAnthropicToolSpecs(tools)
	}

	response, err := p.client.Messages.New(ctx, params)
	if err != nil {
		log.Printf("[ERROR] Anthropic completion failed: %v", err)
		return nil, fmt.Errorf("failed to call Anthropic API: %w", err)
	}

	content := ""
	var toolCalls []models.ToolCall
	for _, block := range response.Content {
		switch block := block.AsAny().(type) {
		case anthropic.TextBlock:
			content += block.Text
		case anthropic.ToolUseBlock:
			args, err := json.Marshal(block.Input)
			if err != nil {
				return nil, fmt.Errorf("failed to marshal tool input for %s: %w", block.Name, err)
			}
			toolCalls = append(toolCalls, models.ToolCall{
				ID:        block.ID,
				Name:      block.Name,
				Arguments: string(args),
			})
		}
	}

	if p.verbose {
		logResponse("Anthropic", stage, content, toolCalls)
	}

	return &Result{
		Content:   content,
		ToolCalls: toolCalls,
	}, nil
}

func convertToAnthropicMessages(messages []models.ChatMessage) []anthropic.MessageParam {
	var anthropicMessages []anthropic.MessageParam

	for _, msg := range messages {
		switch msg.Role {
		case "assistant":
			contentBlocks := []anthropic.ContentBlockParamUnion{}

			if msg.Content != "" {
				contentBlocks = append(contentBlocks, anthropic.ContentBlockParamUnion{
					OfText: &anthropic.TextBlockParam{Text: msg.Content},
				})
			}

			for _, toolCall := range msg.ToolCalls {
				contentBlocks = append(contentBlocks, anthropic.ContentBlockParamUnion{
					OfToolUse: &anthropic.ToolUseBlockParam{
						ID:    toolCall.ID,
						Name:  toolCall.Name,
						Input: json.RawMessage(toolCall.Arguments),
					},
				})
			}

			anthropicMessages = append(anthropicMessages, anthropic.NewAssistantMessage(contentBlocks...))
		case "tool":
			// Tool results go back as user messages carrying tool_result blocks.
			anthropicMessages = append(anthropicMessages, anthropic.NewUserMessage(anthropic.ContentBlockParamUnion{
				OfToolResult: &anthropic.ToolResultBlockParam{
					ToolUseID: msg.ToolCallID,
					Content: []anthropic.ToolResultBlockParamContentUnion{
						{OfText: &anthropic.TextBlockParam{Text: msg.Content}},
					},
				},
			}))
		default: // "user"
			anthropicMessages = append(anthropicMessages, anthropic.NewUserMessage(anthropic.NewTextBlock(msg.Content)))
		}
	}

	return anthropicMessages
}

func toAnthropicToolSpecs(tools []ToolSpec) []anthropic.ToolUnionParam {
	var toolSpecs []anthropic.ToolUnionParam

	for _, tool := range tools {
		toolSpecs = append(toolSpecs, anthropic.ToolUnionParam{
			OfTool: &anthropic.ToolParam{
				Name:        tool.Name,
				Description: anthropic.String(tool.Description),
				InputSchema: anthropic.ToolInputSchemaParam{
					Properties: tool.Properties,
				},
			},
		})
	}

	return toolSpecs
}

package agent

import (
	"context"
	"fmt"
	"log"

	"canvasassist/models"
	"canvasassist/services"
	"canvasassist/services/canvas"
	"canvasassist/services/docindex"
	"canvasassist/services/llm"

	"github.com/samber/lo"
)

// largeResultThreshold is the combined tool-payload size (in bytes) past
// which the final answer is steered toward a condensed summary.
const largeResultThreshold = 4000

const conciseInstruction = "\n\nThe tool results above are large. Summarize: give a concise overview and offer to go deeper on specific items instead of listing everything."

type Service struct {
	generator llm.Generator
	tools     []AgentTool
	toolIndex map[string]AgentTool
	verbose   bool
}

// NewService wires the agent with its tool belt. memoryService and
// docindexService may be nil; the corresponding tools are then not offered
// to the model.
func NewService(generator llm.Generator, canvasService *canvas.Service, memoryService *services.MemoryService, docindexService *docindex.Service, verbose bool) *Service {
	tools := []AgentTool{
		NewGetCoursesTool(canvasService),
		NewGetCourseDetailsTool(canvasService),
		NewGetAssignmentsTool(canvasService),
		NewGetAssignmentSummaryTool(canvasService),
		NewGetUpcomingAssignmentsTool(canvasService),
		NewGetLateAssignmentsTool(canvasService),
		NewGetAssignmentDetailsTool(canvasService),
		NewFindAssignmentTool(canvasService),
		NewGetUserProfileTool(canvasService),
		NewGetGradesTool(canvasService),
		NewGetCourseModulesTool(canvasService),
		NewGetCurrentTimeTool(),
	}
	if docindexService != nil {
		tools = append(tools, NewSearchCourseContentTool(docindexService))
	}
	if memoryService != nil {
		tools = append(tools, NewGetMemoryTool(memoryService), NewUpdateMemoryTool(memoryService))
	}

	toolIndex := make(map[string]AgentTool, len(tools))
	for _, tool := range tools {
		toolIndex[tool.Name()] = tool
	}

	return &Service{
		generator: generator,
		tools:     tools,
		toolIndex: toolIndex,
		verbose:   verbose,
	}
}

// ProcessMessage runs one conversational turn: the user message is appended
// to the conversation, tools are executed as the model requests them, and
// the assistant's final reply is appended and returned. Failures are folded
// into a degraded reply rather than surfaced as an error, so a session
// always gets an answer.
func (s *Service) ProcessMessage(ctx context.Context, conv *Conversation, userMessage string) string {
	conv.Append(models.ChatMessage{Role: "user", Content: userMessage})
	// Trim once per turn, before anything is generated. Trimming again after
	// tool execution could drop this turn's tool-call message and results.
	conv.trim()

	specs := lo.Map(s.tools, func(tool AgentTool, _ int) llm.ToolSpec {
		return tool.Spec()
	})

	result, err := s.generator.GenerateWithTools(ctx, systemPrompt, conv.Messages(), specs)
	if err != nil {
		log.Printf("[ERROR] Agent: model call failed: %v", err)
		reply := fmt.Sprintf("I'm sorry, I encountered an error: %v", err)
		conv.Append(models.ChatMessage{Role: "assistant", Content: reply})
		return reply
	}

	if len(result.ToolCalls) == 0 {
		conv.Append(models.ChatMessage{Role: "assistant", Content: result.Content})
		return result.Content
	}

	reply := s.runToolTurn(ctx, conv, result)
	conv.Append(models.ChatMessage{Role: "assistant", Content: reply})
	return reply
}

func (s *Service) runToolTurn(ctx context.Context, conv *Conversation, result *llm.Result) string {
	conv.Append(models.ChatMessage{
		Role:      "assistant",
		Content:   result.Content,
		ToolCalls: result.ToolCalls,
	})

	totalResultSize := 0
	toolFailed := false
	var lastToolErr error

	for _, call := range result.ToolCalls {
		output, err := s.executeToolCall(ctx, call)
		if err != nil {
			toolFailed = true
			lastToolErr = err
			output = fmt.Sprintf("Error: %v", err)
		}
		totalResultSize += len(output)

		conv.Append(models.ChatMessage{
			Role:       "tool",
			Content:    output,
			ToolCallID: call.ID,
		})
	}

	prompt := systemPrompt
	if totalResultSize > largeResultThreshold {
		prompt += conciseInstruction
	}

	reply, err := s.generator.GenerateResponse(ctx, prompt, conv.Messages())
	if err != nil {
		log.Printf("[ERROR] Agent: follow-up model call failed: %v", err)
		if toolFailed {
			return fmt.Sprintf("I tried to retrieve information from Canvas, but encountered an error: %v\n\nPlease check your Canvas API configuration and ensure the server is running.", lastToolErr)
		}
		return fmt.Sprintf("I'm sorry, I encountered an error: %v", err)
	}
	return reply
}

func (s *Service) executeToolCall(ctx context.Context, call models.ToolCall) (string, error) {
	tool, ok := s.toolIndex[call.Name]
	if !ok {
		log.Printf("[WARN] Agent: model requested unknown tool %s", call.Name)
		return "", fmt.Errorf("unknown tool: %s", call.Name)
	}

	if s.verbose {
		log.Printf("[INFO] Agent: executing tool %s with input %s", call.Name, call.Arguments)
	} else {
		log.Printf("[INFO] Agent: executing tool %s", call.Name)
	}

	output, err := tool.Call(ctx, call.Arguments)
	if err != nil {
		log.Printf("[ERROR] Agent: tool %s failed: %v", call.Name, err)
		return "", err
	}

	if s.verbose {
		log.Printf("[INFO] Agent: tool %s returned %d bytes", call.Name, len(output))
	}
	return output, nil
}

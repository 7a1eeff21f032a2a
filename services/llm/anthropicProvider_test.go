package llm

import (
	"testing"

	"canvasassist/models"
)

func TestConvertToAnthropicMessages(t *testing.T) {
	messages := []models.ChatMessage{
		{Role: "user", Content: "when is my essay due?"},
		{
			Role:    "assistant",
			Content: "Let me check.",
			ToolCalls: []models.ToolCall{
				{ID: "toolu_1", Name: "get_assignments", Arguments: `{"course_id":42}`},
			},
		},
		{Role: "tool", ToolCallID: "toolu_1", Content: `[{"id":7,"name":"Essay"}]`},
	}

	converted := convertToAnthropicMessages(messages)
	if len(converted) != 3 {
		t.Fatalf("expected 3 converted messages, got %d", len(converted))
	}

	// Assistant message should carry both a text block and a tool_use block.
	if len(converted[1].Content) != 2 {
		t.Errorf("assistant message has %d content blocks, expected 2", len(converted[1].Content))
	}
	toolUse := converted[1].Content[1].OfToolUse
	if toolUse == nil {
		t.Fatal("second assistant content block is not a tool_use block")
	}
	if toolUse.ID != "toolu_1" || toolUse.Name != "get_assignments" {
		t.Errorf("tool_use block = %s/%s, expected toolu_1/get_assignments", toolUse.ID, toolUse.Name)
	}

	// Tool results are sent back as user messages with tool_result blocks.
	toolResult := converted[2].Content[0].OfToolResult
	if toolResult == nil {
		t.Fatal("tool message did not convert to a tool_result block")
	}
	if toolResult.ToolUseID != "toolu_1" {
		t.Errorf("tool_result ToolUseID = %q, expected toolu_1", toolResult.ToolUseID)
	}
}

func TestToAnthropicToolSpecs(t *testing.T) {
	specs := []ToolSpec{
		{Name: "get_courses", Description: "Lists courses", Properties: map[string]any{}},
		{Name: "get_grades", Description: "Gets grades", Properties: map[string]any{"course_id": map[string]any{"type": "integer"}}},
	}

	converted := toAnthropicToolSpecs(specs)
	if len(converted) != 2 {
		t.Fatalf("expected 2 tool specs, got %d", len(converted))
	}
	for i, spec := range specs {
		if converted[i].OfTool == nil {
			t.Fatalf("tool spec %d missing OfTool", i)
		}
		if converted[i].OfTool.Name != spec.Name {
			t.Errorf("tool spec %d name = %q, expected %q", i, converted[i].OfTool.Name, spec.Name)
		}
	}
}

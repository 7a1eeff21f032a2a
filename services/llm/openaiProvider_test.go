package llm

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"sync"
	"testing"

	"canvasassist/models"

	"github.com/tmc/langchaingo/llms"
)

// fakeModel records the request it receives and returns a canned response.
type fakeModel struct {
	response *llms.ContentResponse
	err      error

	gotMessages []llms.MessageContent
}

func (f *fakeModel) GenerateContent(ctx context.Context, messages []llms.MessageContent, options ...llms.CallOption) (*llms.ContentResponse, error) {
	f.gotMessages = messages
	if f.err != nil {
		return nil, f.err
	}
	return f.response, nil
}

func (f *fakeModel) Call(ctx context.Context, prompt string, options ...llms.CallOption) (string, error) {
	return "", errors.New("not implemented")
}

func textResponse(content string) *llms.ContentResponse {
	return &llms.ContentResponse{
		Choices: []*llms.ContentChoice{
			{Content: content},
		},
	}
}

func TestGenerateResponseReturnsFirstChoice(t *testing.T) {
	fake := &fakeModel{response: textResponse("Hello!")}
	provider := &OpenAIProvider{llm: fake, model: "gpt-4o"}

	got, err := provider.GenerateResponse(context.Background(), "You are helpful.", nil)
	if err != nil {
		t.Fatalf("GenerateResponse() returned error: %v", err)
	}
	if got != "Hello!" {
		t.Errorf("GenerateResponse() = %q, expected %q", got, "Hello!")
	}

	if len(fake.gotMessages) != 1 {
		t.Fatalf("expected 1 outgoing message (system only), got %d", len(fake.gotMessages))
	}
	if fake.gotMessages[0].Role != llms.ChatMessageTypeSystem {
		t.Errorf("first outgoing message role = %q, expected system", fake.gotMessages[0].Role)
	}
}

func TestGenerateResponsePropagatesFailure(t *testing.T) {
	fake := &fakeModel{err: errors.New("timeout")}
	provider := &OpenAIProvider{llm: fake, model: "gpt-4o"}

	_, err := provider.GenerateResponse(context.Background(), "You are helpful.", nil)
	if err == nil {
		t.Fatal("GenerateResponse() expected error, got nil")
	}
	if !errors.Is(err, fake.err) {
		t.Errorf("GenerateResponse() error = %v, expected to wrap %v", err, fake.err)
	}
}

func TestGenerateResponseSystemPromptAlwaysFirst(t *testing.T) {
	fake := &fakeModel{response: textResponse("ok")}
	provider := &OpenAIProvider{llm: fake, model: "gpt-4o"}

	messages := []models.ChatMessage{
		{Role: "user", Content: "first question"},
		{Role: "assistant", Content: "first answer"},
		{Role: "user", Content: "second question"},
	}

	if _, err := provider.GenerateResponse(context.Background(), "You are helpful.", messages); err != nil {
		t.Fatalf("GenerateResponse() returned error: %v", err)
	}

	if len(fake.gotMessages) != len(messages)+1 {
		t.Fatalf("expected %d outgoing messages, got %d", len(messages)+1, len(fake.gotMessages))
	}
	if fake.gotMessages[0].Role != llms.ChatMessageTypeSystem {
		t.Errorf("first outgoing message role = %q, expected system", fake.gotMessages[0].Role)
	}
	for i, role := range []llms.ChatMessageType{llms.ChatMessageTypeHuman, llms.ChatMessageTypeAI, llms.ChatMessageTypeHuman} {
		if fake.gotMessages[i+1].Role != role {
			t.Errorf("outgoing message %d role = %q, expected %q", i+1, fake.gotMessages[i+1].Role, role)
		}
	}
}

func TestGenerateResponseDoesNotMutateInput(t *testing.T) {
	fake := &fakeModel{response: textResponse("ok")}
	provider := &OpenAIProvider{llm: fake, model: "gpt-4o"}

	messages := []models.ChatMessage{
		{Role: "user", Content: "hello"},
		{Role: "assistant", Content: "hi", ToolCalls: []models.ToolCall{{ID: "1", Name: "get_courses", Arguments: "{}"}}},
	}
	snapshot := make([]models.ChatMessage, len(messages))
	copy(snapshot, messages)

	if _, err := provider.GenerateResponse(context.Background(), "You are helpful.", messages); err != nil {
		t.Fatalf("GenerateResponse() returned error: %v", err)
	}

	if !reflect.DeepEqual(messages, snapshot) {
		t.Errorf("input messages were mutated: %+v != %+v", messages, snapshot)
	}
}

func TestGenerateWithToolsReturnsToolCalls(t *testing.T) {
	fake := &fakeModel{
		response: &llms.ContentResponse{
			Choices: []*llms.ContentChoice{
				{
					Content: "",
					ToolCalls: []llms.ToolCall{
						{
							ID:   "1",
							Type: "function",
							FunctionCall: &llms.FunctionCall{
								Name:      "get_weather",
								Arguments: `{"city":"Paris"}`,
							},
						},
					},
				},
			},
		},
	}
	provider := &OpenAIProvider{llm: fake, model: "gpt-4o"}

	tools := []ToolSpec{{Name: "get_weather", Description: "Gets weather", Properties: map[string]any{}}}
	result, err := provider.GenerateWithTools(context.Background(), "You are helpful.", nil, tools)
	if err != nil {
		t.Fatalf("GenerateWithTools() returned error: %v", err)
	}

	if result.Content != "" {
		t.Errorf("result content = %q, expected empty", result.Content)
	}
	expected := []models.ToolCall{{ID: "1", Name: "get_weather", Arguments: `{"city":"Paris"}`}}
	if !reflect.DeepEqual(result.ToolCalls, expected) {
		t.Errorf("tool calls = %+v, expected %+v", result.ToolCalls, expected)
	}
}

func TestGenerateWithToolsNoToolsMeansNilToolCalls(t *testing.T) {
	fake := &fakeModel{response: textResponse("plain answer")}
	provider := &OpenAIProvider{llm: fake, model: "gpt-4o"}

	result, err := provider.GenerateWithTools(context.Background(), "You are helpful.", nil, nil)
	if err != nil {
		t.Fatalf("GenerateWithTools() returned error: %v", err)
	}
	if result.Content != "plain answer" {
		t.Errorf("result content = %q, expected %q", result.Content, "plain answer")
	}
	if result.ToolCalls != nil {
		t.Errorf("tool calls = %+v, expected nil", result.ToolCalls)
	}
}

func TestGenerateWithToolsPropagatesFailure(t *testing.T) {
	fake := &fakeModel{err: errors.New("connection refused")}
	provider := &OpenAIProvider{llm: fake, model: "gpt-4o"}

	_, err := provider.GenerateWithTools(context.Background(), "You are helpful.", nil, nil)
	if err == nil {
		t.Fatal("GenerateWithTools() expected error, got nil")
	}
}

func TestToOpenAITools(t *testing.T) {
	specs := []ToolSpec{
		{
			Name:        "find_assignment",
			Description: "Finds an assignment by name",
			Properties:  map[string]any{"name_pattern": map[string]any{"type": "string"}},
			Required:    []string{"name_pattern"},
		},
	}

	tools := toOpenAITools(specs)
	if len(tools) != 1 {
		t.Fatalf("expected 1 tool, got %d", len(tools))
	}
	if tools[0].Type != "function" {
		t.Errorf("tool type = %q, expected function", tools[0].Type)
	}
	if tools[0].Function.Name != "find_assignment" {
		t.Errorf("tool name = %q, expected find_assignment", tools[0].Function.Name)
	}
	params, ok := tools[0].Function.Parameters.(map[string]any)
	if !ok {
		t.Fatalf("parameters have unexpected type %T", tools[0].Function.Parameters)
	}
	if params["type"] != "object" {
		t.Errorf("parameters type = %v, expected object", params["type"])
	}
}

// echoModel answers each request from its own input, so cross-talk between
// concurrent calls is observable as a mismatched echo.
type echoModel struct{}

func (echoModel) GenerateContent(ctx context.Context, messages []llms.MessageContent, options ...llms.CallOption) (*llms.ContentResponse, error) {
	last := messages[len(messages)-1]
	text := last.Parts[0].(llms.TextContent).Text
	return &llms.ContentResponse{
		Choices: []*llms.ContentChoice{
			{
				Content: "echo:" + text,
				ToolCalls: []llms.ToolCall{
					{
						ID:   "1",
						Type: "function",
						FunctionCall: &llms.FunctionCall{
							Name:      "echo",
							Arguments: fmt.Sprintf(`{"input":%q}`, text),
						},
					},
				},
			},
		},
	}, nil
}

func (echoModel) Call(ctx context.Context, prompt string, options ...llms.CallOption) (string, error) {
	return "", errors.New("not implemented")
}

func TestConcurrentCallsDoNotShareState(t *testing.T) {
	provider := &OpenAIProvider{llm: echoModel{}, model: "gpt-4o"}
	tools := []ToolSpec{{Name: "echo", Description: "Echoes input", Properties: map[string]any{}}}

	var wg sync.WaitGroup
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			input := fmt.Sprintf("question %d", i)
			messages := []models.ChatMessage{{Role: "user", Content: input}}

			if i%2 == 0 {
				got, err := provider.GenerateResponse(context.Background(), "You are helpful.", messages)
				if err != nil {
					t.Errorf("GenerateResponse(%d) returned error: %v", i, err)
					return
				}
				if got != "echo:"+input {
					t.Errorf("GenerateResponse(%d) = %q, expected echo of own input", i, got)
				}
				return
			}

			result, err := provider.GenerateWithTools(context.Background(), "You are helpful.", messages, tools)
			if err != nil {
				t.Errorf("GenerateWithTools(%d) returned error: %v", i, err)
				return
			}
			wantArgs := fmt.Sprintf(`{"input":%q}`, input)
			if len(result.ToolCalls) != 1 || result.ToolCalls[0].Arguments != wantArgs {
				t.Errorf("GenerateWithTools(%d) tool calls = %+v, expected arguments %s", i, result.ToolCalls, wantArgs)
			}
		}(i)
	}
	wg.Wait()
}

func TestNewGeneratorUnknownProvider(t *testing.T) {
	if _, err := NewGenerator("cohere", "key", "model", false); err == nil {
		t.Error("NewGenerator() expected error for unknown provider")
	}
}

func TestNewOpenAIProviderRequiresKey(t *testing.T) {
	if _, err := NewOpenAIProvider("", "gpt-4o", false); err == nil {
		t.Error("NewOpenAIProvider() expected error for empty API key")
	}
}

func TestNewAnthropicProviderRequiresKey(t *testing.T) {
	if _, err := NewAnthropicProvider("", "claude-sonnet-4-20250514", false); err == nil {
		t.Error("NewAnthropicProvider() expected error for empty API key")
	}
}

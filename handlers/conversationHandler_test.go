package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"canvasassist/models"
	"canvasassist/services"

	"github.com/gorilla/mux"
)

type fakeConversationRepo struct {
	messages map[string][]models.StoredMessage
	cleared  []string
}

func newFakeConversationRepo() *fakeConversationRepo {
	return &fakeConversationRepo{messages: make(map[string][]models.StoredMessage)}
}

func (r *fakeConversationRepo) EnsureConversation(id string) (*models.Conversation, error) {
	return &models.Conversation{ID: id, CreatedAt: time.Now(), UpdatedAt: time.Now()}, nil
}

func (r *fakeConversationRepo) GetConversation(id string) (*models.Conversation, error) {
	return &models.Conversation{ID: id}, nil
}

func (r *fakeConversationRepo) GetMessages(conversationID string) ([]models.StoredMessage, error) {
	return r.messages[conversationID], nil
}

func (r *fakeConversationRepo) AppendMessage(conversationID string, role string, payload []byte) error {
	r.messages[conversationID] = append(r.messages[conversationID], models.StoredMessage{
		ConversationID: conversationID,
		Position:       len(r.messages[conversationID]) + 1,
		Role:           role,
		Payload:        payload,
	})
	return nil
}

func (r *fakeConversationRepo) ClearConversation(id string) error {
	r.cleared = append(r.cleared, id)
	delete(r.messages, id)
	return nil
}

func TestGetConversationEndpoint(t *testing.T) {
	repo := newFakeConversationRepo()
	service := services.NewConversationService(repo)
	if err := service.AppendMessages("study-session", []models.ChatMessage{
		{Role: "user", Content: "what's due?"},
		{Role: "assistant", Content: "Nothing this week."},
	}); err != nil {
		t.Fatalf("failed to seed conversation: %v", err)
	}

	router := mux.NewRouter()
	NewConversationHandler(service).RegisterRoutes(router)

	req := httptest.NewRequest("GET", "/conversations/study-session", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp struct {
		SessionID string               `json:"session_id"`
		Messages  []models.ChatMessage `json:"messages"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to parse response: %v", err)
	}
	if resp.SessionID != "study-session" {
		t.Errorf("session_id = %q", resp.SessionID)
	}
	if len(resp.Messages) != 2 || resp.Messages[1].Content != "Nothing this week." {
		t.Errorf("unexpected messages: %+v", resp.Messages)
	}
}

func TestDeleteConversationEndpoint(t *testing.T) {
	repo := newFakeConversationRepo()
	service := services.NewConversationService(repo)

	router := mux.NewRouter()
	NewConversationHandler(service).RegisterRoutes(router)

	req := httptest.NewRequest("DELETE", "/conversations/study-session", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if len(repo.cleared) != 1 || repo.cleared[0] != "study-session" {
		t.Errorf("expected conversation cleared, got %v", repo.cleared)
	}
}

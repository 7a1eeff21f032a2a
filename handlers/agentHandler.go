package handlers

import (
	"encoding/json"
	"log"
	"net/http"

	"canvasassist/models"
	"canvasassist/services"
	"canvasassist/services/agent"

	"github.com/gorilla/mux"
)

type AgentHandler struct {
	service       *agent.Service
	conversations *services.ConversationService
	maxContext    int
}

// NewAgentHandler creates the chat handler. conversations may be nil, in
// which case session persistence is disabled and every request is stateless.
func NewAgentHandler(service *agent.Service, conversations *services.ConversationService, maxContext int) *AgentHandler {
	return &AgentHandler{service: service, conversations: conversations, maxContext: maxContext}
}

func (h *AgentHandler) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/agent/chat", h.ProcessMessage).Methods("POST")
}

func (h *AgentHandler) ProcessMessage(w http.ResponseWriter, r *http.Request) {
	log.Printf("[INFO] Received agent chat request")

	var req models.ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Printf("[ERROR] Failed to decode chat request JSON: %v", err)
		h.writeErrorResponse(w, http.StatusBadRequest, "Invalid JSON payload")
		return
	}

	if len(req.Messages) == 0 && req.Message != "" {
		req.Messages = []models.ChatMessage{{Role: "user", Content: req.Message}}
	}

	if len(req.Messages) == 0 {
		log.Printf("[ERROR] No messages provided in chat request")
		h.writeErrorResponse(w, http.StatusBadRequest, "At least one message is required")
		return
	}

	last := req.Messages[len(req.Messages)-1]
	if last.Role != "user" {
		log.Printf("[ERROR] Last message in chat request has role %s", last.Role)
		h.writeErrorResponse(w, http.StatusBadRequest, "Last message must have role 'user'")
		return
	}

	conv, err := h.buildConversation(req)
	if err != nil {
		log.Printf("[ERROR] Failed to load conversation %s: %v", req.SessionID, err)
		h.writeErrorResponse(w, http.StatusInternalServerError, "Failed to load conversation history")
		return
	}

	reply := h.service.ProcessMessage(r.Context(), conv, last.Content)

	if req.SessionID != "" && h.conversations != nil {
		turn := []models.ChatMessage{
			{Role: "user", Content: last.Content},
			{Role: "assistant", Content: reply},
		}
		if err := h.conversations.AppendMessages(req.SessionID, turn); err != nil {
			// The reply already exists; losing persistence is not worth
			// failing the request over.
			log.Printf("[WARN] Failed to persist conversation %s: %v", req.SessionID, err)
		}
	}

	log.Printf("[INFO] Agent chat request completed")
	h.writeJSONResponse(w, http.StatusOK, models.ChatResponse{
		SessionID: req.SessionID,
		Reply:     reply,
		Messages:  conv.Messages(),
	})
}

// buildConversation picks the history source: the stored session when a
// session ID is given, otherwise the client-supplied message list.
func (h *AgentHandler) buildConversation(req models.ChatRequest) (*agent.Conversation, error) {
	if req.SessionID != "" && h.conversations != nil {
		history, err := h.conversations.GetHistory(req.SessionID)
		if err != nil {
			return nil, err
		}
		return agent.NewConversationFromHistory(history, h.maxContext), nil
	}
	return agent.NewConversationFromHistory(req.Messages[:len(req.Messages)-1], h.maxContext), nil
}

func (h *AgentHandler) writeJSONResponse(w http.ResponseWriter, statusCode int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(data)
}

func (h *AgentHandler) writeErrorResponse(w http.ResponseWriter, statusCode int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}

package handlers

import (
	"encoding/json"
	"log"
	"net/http"

	"canvasassist/services"

	"github.com/gorilla/mux"
)

type ConversationHandler struct {
	service *services.ConversationService
}

func NewConversationHandler(service *services.ConversationService) *ConversationHandler {
	return &ConversationHandler{service: service}
}

func (h *ConversationHandler) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/conversations/{id}", h.GetConversation).Methods("GET")
	router.HandleFunc("/conversations/{id}", h.DeleteConversation).Methods("DELETE")
}

func (h *ConversationHandler) GetConversation(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	log.Printf("[INFO] Received get conversation request for %s", id)

	history, err := h.service.GetHistory(id)
	if err != nil {
		log.Printf("[ERROR] Failed to load conversation %s: %v", id, err)
		h.writeErrorResponse(w, http.StatusInternalServerError, "Failed to load conversation")
		return
	}

	h.writeJSONResponse(w, http.StatusOK, map[string]any{
		"session_id": id,
		"messages":   history,
	})
}

func (h *ConversationHandler) DeleteConversation(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	log.Printf("[INFO] Received delete conversation request for %s", id)

	if err := h.service.ResetConversation(id); err != nil {
		log.Printf("[ERROR] Failed to reset conversation %s: %v", id, err)
		h.writeErrorResponse(w, http.StatusInternalServerError, "Failed to reset conversation")
		return
	}

	h.writeJSONResponse(w, http.StatusOK, map[string]string{"status": "reset"})
}

func (h *ConversationHandler) writeJSONResponse(w http.ResponseWriter, statusCode int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(data)
}

func (h *ConversationHandler) writeErrorResponse(w http.ResponseWriter, statusCode int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}

package services

import (
	"encoding/json"
	"fmt"
	"log"
	"strings"

	"canvasassist/db"
	"canvasassist/models"
)

// ConversationService persists chat histories for the HTTP surface. Messages
// are stored as full ChatMessage JSON so tool calls and tool results survive
// the round trip.
type ConversationService struct {
	repo db.ConversationRepository
}

func NewConversationService(repo db.ConversationRepository) *ConversationService {
	return &ConversationService{repo: repo}
}

func (s *ConversationService) GetHistory(conversationID string) ([]models.ChatMessage, error) {
	log.Printf("[INFO] Starting get history for conversation %q", conversationID)

	if err := s.validateID(conversationID); err != nil {
		return nil, err
	}

	stored, err := s.repo.GetMessages(conversationID)
	if err != nil {
		log.Printf("[ERROR] Failed to get messages for conversation %q: %v", conversationID, err)
		return nil, fmt.Errorf("failed to get conversation messages: %w", err)
	}

	messages := make([]models.ChatMessage, 0, len(stored))
	for _, row := range stored {
		var msg models.ChatMessage
		if err := json.Unmarshal(row.Payload, &msg); err != nil {
			log.Printf("[ERROR] Failed to decode stored message %d: %v", row.ID, err)
			return nil, fmt.Errorf("failed to decode stored message %d: %w", row.ID, err)
		}
		messages = append(messages, msg)
	}

	log.Printf("[INFO] Successfully retrieved %d messages for conversation %q", len(messages), conversationID)
	return messages, nil
}

func (s *ConversationService) AppendMessages(conversationID string, messages []models.ChatMessage) error {
	log.Printf("[INFO] Starting append of %d messages to conversation %q", len(messages), conversationID)

	if err := s.validateID(conversationID); err != nil {
		return err
	}

	if _, err := s.repo.EnsureConversation(conversationID); err != nil {
		log.Printf("[ERROR] Failed to ensure conversation %q: %v", conversationID, err)
		return fmt.Errorf("failed to ensure conversation: %w", err)
	}

	for _, msg := range messages {
		payload, err := json.Marshal(msg)
		if err != nil {
			return fmt.Errorf("failed to encode message: %w", err)
		}
		if err := s.repo.AppendMessage(conversationID, msg.Role, payload); err != nil {
			log.Printf("[ERROR] Failed to append message to conversation %q: %v", conversationID, err)
			return fmt.Errorf("failed to append message: %w", err)
		}
	}

	log.Printf("[INFO] Successfully appended %d messages to conversation %q", len(messages), conversationID)
	return nil
}

func (s *ConversationService) ResetConversation(conversationID string) error {
	log.Printf("[INFO] Starting reset of conversation %q", conversationID)

	if err := s.validateID(conversationID); err != nil {
		return err
	}

	if err := s.repo.ClearConversation(conversationID); err != nil {
		log.Printf("[ERROR] Failed to reset conversation %q: %v", conversationID, err)
		return err
	}

	log.Printf("[INFO] Successfully reset conversation %q", conversationID)
	return nil
}

func (s *ConversationService) validateID(conversationID string) error {
	if strings.TrimSpace(conversationID) == "" {
		return fmt.Errorf("conversation ID is required")
	}
	return nil
}

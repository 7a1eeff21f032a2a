package db

import (
	"database/sql"
	"fmt"

	"canvasassist/models"

	_ "github.com/lib/pq"
)

type ConversationRepository interface {
	EnsureConversation(id string) (*models.Conversation, error)
	GetConversation(id string) (*models.Conversation, error)
	GetMessages(conversationID string) ([]models.StoredMessage, error)
	AppendMessage(conversationID string, role string, payload []byte) error
	ClearConversation(id string) error
}

type PostgresConversationRepository struct {
	db *sql.DB
}

func NewPostgresConversationRepository(databaseURL string) (*PostgresConversationRepository, error) {
	db, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &PostgresConversationRepository{db: db}, nil
}

func (r *PostgresConversationRepository) EnsureConversation(id string) (*models.Conversation, error) {
	query := `
		INSERT INTO canvasassist.conversations (id)
		VALUES ($1)
		ON CONFLICT (id) DO UPDATE SET updated_at = NOW()
		RETURNING id, created_at, updated_at`

	conversation := &models.Conversation{}
	row := r.db.QueryRow(query, id)

	err := row.Scan(&conversation.ID, &conversation.CreatedAt, &conversation.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to ensure conversation: %w", err)
	}

	return conversation, nil
}

func (r *PostgresConversationRepository) GetConversation(id string) (*models.Conversation, error) {
	query := `
		SELECT id, created_at, updated_at
		FROM canvasassist.conversations
		WHERE id = $1`

	conversation := &models.Conversation{}
	row := r.db.QueryRow(query, id)

	err := row.Scan(&conversation.ID, &conversation.CreatedAt, &conversation.UpdatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("conversation %q not found", id)
		}
		return nil, fmt.Errorf("failed to get conversation: %w", err)
	}

	return conversation, nil
}

func (r *PostgresConversationRepository) GetMessages(conversationID string) ([]models.StoredMessage, error) {
	query := `
		SELECT id, conversation_id, position, role, payload, created_at
		FROM canvasassist.conversation_messages
		WHERE conversation_id = $1
		ORDER BY position ASC`

	rows, err := r.db.Query(query, conversationID)
	if err != nil {
		return nil, fmt.Errorf("failed to query conversation messages: %w", err)
	}
	defer rows.Close()

	var messages []models.StoredMessage
	for rows.Next() {
		msg := models.StoredMessage{}
		err := rows.Scan(&msg.ID, &msg.ConversationID, &msg.Position, &msg.Role, &msg.Payload, &msg.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan conversation message: %w", err)
		}
		messages = append(messages, msg)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate conversation messages: %w", err)
	}

	return messages, nil
}

func (r *PostgresConversationRepository) AppendMessage(conversationID string, role string, payload []byte) error {
	query := `
		INSERT INTO canvasassist.conversation_messages (conversation_id, position, role, payload)
		VALUES ($1, (
			SELECT COALESCE(MAX(position), 0) + 1
			FROM canvasassist.conversation_messages
			WHERE conversation_id = $1
		), $2, $3)`

	if _, err := r.db.Exec(query, conversationID, role, payload); err != nil {
		return fmt.Errorf("failed to append conversation message: %w", err)
	}

	return nil
}

func (r *PostgresConversationRepository) ClearConversation(id string) error {
	query := `
		DELETE FROM canvasassist.conversation_messages
		WHERE conversation_id = $1`

	if _, err := r.db.Exec(query, id); err != nil {
		return fmt.Errorf("failed to clear conversation: %w", err)
	}

	return nil
}

func (r *PostgresConversationRepository) Close() error {
	return r.db.Close()
}

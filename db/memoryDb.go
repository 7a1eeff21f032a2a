package db

import (
	"database/sql"
	"fmt"

	"canvasassist/models"

	_ "github.com/lib/pq"
)

const AgentMemoryID = "agent"

type MemoryRepository interface {
	GetMemory() (*models.Memory, error)
	UpdateMemory(content string) error
}

type PostgresMemoryRepository struct {
	db *sql.DB
}

func NewPostgresMemoryRepository(databaseURL string) (*PostgresMemoryRepository, error) {
	db, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &PostgresMemoryRepository{db: db}, nil
}

func (r *PostgresMemoryRepository) GetMemory() (*models.Memory, error) {
	query := `
		SELECT id, memory_content, created_at, updated_at
		FROM canvasassist.agent_memory
		WHERE id = $1`

	memory := &models.Memory{}
	row := r.db.QueryRow(query, AgentMemoryID)

	err := row.Scan(&memory.ID, &memory.MemoryContent, &memory.CreatedAt, &memory.UpdatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			// Create the memory record if it doesn't exist
			return r.createMemory()
		}
		return nil, fmt.Errorf("failed to get memory: %w", err)
	}

	return memory, nil
}

func (r *PostgresMemoryRepository) createMemory() (*models.Memory, error) {
	query := `
		INSERT INTO canvasassist.agent_memory (id, memory_content)
		VALUES ($1, '')
		RETURNING id, memory_content, created_at, updated_at`

	memory := &models.Memory{}
	row := r.db.QueryRow(query, AgentMemoryID)

	err := row.Scan(&memory.ID, &memory.MemoryContent, &memory.CreatedAt, &memory.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to create memory: %w", err)
	}

	return memory, nil
}

func (r *PostgresMemoryRepository) UpdateMemory(content string) error {
	query := `
		INSERT INTO canvasassist.agent_memory (id, memory_content)
		VALUES ($1, $2)
		ON CONFLICT (id) DO UPDATE SET memory_content = $2, updated_at = NOW()`

	if _, err := r.db.Exec(query, AgentMemoryID, content); err != nil {
		return fmt.Errorf("failed to update memory: %w", err)
	}

	return nil
}

func (r *PostgresMemoryRepository) Close() error {
	return r.db.Close()
}

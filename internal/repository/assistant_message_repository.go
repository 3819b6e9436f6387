package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/operai/workforce-api/internal/models"
)

// AssistantMessageRepository stores assistant conversation history.
type AssistantMessageRepository struct {
	db *sqlx.DB
}

// NewAssistantMessageRepository creates a new instance of
// AssistantMessageRepository.
func NewAssistantMessageRepository(db *sqlx.DB) *AssistantMessageRepository {
	return &AssistantMessageRepository{db: db}
}

// Create inserts one exchange.
func (r *AssistantMessageRepository) Create(ctx context.Context, msg *models.AssistantMessage) error {
	if msg.ID == "" {
		msg.ID = uuid.NewString()
	}
	if msg.CreatedAt.IsZero() {
		msg.CreatedAt = time.Now().UTC()
	}
	const query = `INSERT INTO assistant_messages (id, user_id, session_id, message, response, created_at)
		VALUES (:id, :user_id, :session_id, :message, :response, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, query, msg); err != nil {
		return fmt.Errorf("create assistant message: %w", err)
	}
	return nil
}

// ListRecent returns the most recent exchanges for a user session, oldest
// first so the caller can replay them as conversation context.
func (r *AssistantMessageRepository) ListRecent(ctx context.Context, userID, sessionID string, limit int) ([]models.AssistantMessage, error) {
	if limit <= 0 || limit > 50 {
		limit = 10
	}
	query := fmt.Sprintf(`SELECT id, user_id, session_id, message, response, created_at FROM (
		SELECT id, user_id, session_id, message, response, created_at FROM assistant_messages
		WHERE user_id = $1 AND session_id = $2
		ORDER BY created_at DESC LIMIT %d
	) recent ORDER BY created_at ASC`, limit)

	var messages []models.AssistantMessage
	if err := r.db.SelectContext(ctx, &messages, query, userID, sessionID); err != nil {
		return nil, fmt.Errorf("list assistant messages: %w", err)
	}
	return messages, nil
}

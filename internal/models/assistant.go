package models

import "time"

// AssistantMessage is one stored exchange between a user and the assistant.
type AssistantMessage struct {
	ID        string    `db:"id" json:"id"`
	UserID    string    `db:"user_id" json:"user_id"`
	SessionID string    `db:"session_id" json:"session_id"`
	Message   string    `db:"message" json:"message"`
	Response  string    `db:"response" json:"response"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

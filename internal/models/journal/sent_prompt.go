package models

import "time"

// SentPrompt statuses. A prompt moves sent -> answered exactly once;
// answered is terminal.
const (
	PromptStatusSent     = "sent"
	PromptStatusAnswered = "answered"
)

// SentPrompt records one prompt dispatch and, once the user replies, the
// answer that closed it.
type SentPrompt struct {
	ID           string     `json:"id" db:"id"`
	UserUID      string     `json:"user_uid" db:"user_uid"`
	PromptText   string     `json:"prompt_text" db:"prompt_text"`
	MessageID    string     `json:"message_id" db:"message_id"`
	Status       string     `json:"status" db:"status"`
	ResponseText *string    `json:"response_text,omitempty" db:"response_text"`
	ResponseAt   *time.Time `json:"response_at,omitempty" db:"response_at"`
	CreatedAt    time.Time  `json:"created_at" db:"created_at"`
}

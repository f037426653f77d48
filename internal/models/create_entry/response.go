package models

import "time"

type CreateEntryResponse struct {
	ID           string    `json:"id"`
	Content      string    `json:"content"`
	Channel      string    `json:"channel"`
	SentPromptID string    `json:"sent_prompt_id,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}

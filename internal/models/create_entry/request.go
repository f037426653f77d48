package models

type CreateEntryRequest struct {
	Content      string `json:"content"`
	SentPromptID string `json:"sent_prompt_id,omitempty"`
}

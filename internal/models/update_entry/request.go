package models

type UpdateEntryRequest struct {
	EntryID string `json:"entry_id"`
	Content string `json:"content"`
}

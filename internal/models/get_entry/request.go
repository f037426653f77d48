package models

type GetEntryRequest struct {
	EntryID string `json:"entry_id"`
}

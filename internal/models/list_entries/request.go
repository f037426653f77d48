package models

type ListEntriesRequest struct {
	Limit  int `json:"limit"`
	Offset int `json:"offset"`
}

package models

import (
	journalmodels "io.winapps.microjournal/internal/models/journal"
)

type ListEntriesResponse struct {
	Entries []journalmodels.JournalEntry `json:"entries"`
	Count   int                          `json:"count"`
}

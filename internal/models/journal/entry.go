package models

import "time"

// Channel is the transport a journal entry arrived over.
type Channel string

const (
	ChannelWeb      Channel = "web"
	ChannelSMS      Channel = "sms"
	ChannelWhatsApp Channel = "whatsapp"
)

// Valid reports whether c is one of the supported channels.
func (c Channel) Valid() bool {
	switch c {
	case ChannelWeb, ChannelSMS, ChannelWhatsApp:
		return true
	}
	return false
}

// JournalEntry is one saved journal entry. Channel-only entries may carry a
// phone number instead of a user uid until the sender is mapped.
type JournalEntry struct {
	ID           string    `json:"id" db:"id"`
	UserUID      *string   `json:"user_uid,omitempty" db:"user_uid"`
	PhoneNumber  *string   `json:"phone_number,omitempty" db:"phone_number"`
	Content      string    `json:"content" db:"content"`
	Channel      Channel   `json:"channel" db:"channel"`
	SentPromptID *string   `json:"sent_prompt_id,omitempty" db:"sent_prompt_id"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time `json:"updated_at" db:"updated_at"`
}

package models

import "time"

type User struct {
	UID                  string    `json:"uid" db:"uid"`
	Email                string    `json:"email" db:"email"`
	PhoneNumber          *string   `json:"phone_number,omitempty" db:"phone_number"`
	Timezone             string    `json:"timezone" db:"timezone"`
	NotificationsEnabled bool      `json:"notifications_enabled" db:"notifications_enabled"`
	PromptTime           string    `json:"prompt_time" db:"prompt_time"`
	PromptCategories     []string  `json:"prompt_categories" db:"prompt_categories"`
	WhatsAppVerified     bool      `json:"whatsapp_verified" db:"whatsapp_verified"`
	CreatedAt            time.Time `json:"created_at" db:"created_at"`
	UpdatedAt            time.Time `json:"updated_at" db:"updated_at"`
}

// Phone returns the user's phone number or "" when none is on file.
func (u *User) Phone() string {
	if u.PhoneNumber == nil {
		return ""
	}
	return *u.PhoneNumber
}

package models

type UpdatePreferencesRequest struct {
	Timezone             string   `json:"timezone"`
	NotificationsEnabled *bool    `json:"notifications_enabled,omitempty"`
	PromptTime           string   `json:"prompt_time"`
	PromptCategories     []string `json:"prompt_categories"`
}

package models

type VerifyPhoneResponse struct {
	Message   string `json:"message"`
	MessageID string `json:"message_id,omitempty"`
	Verified  bool   `json:"verified"`
}

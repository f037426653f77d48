package models

type VerifyPhoneRequest struct {
	PhoneNumber      string `json:"phone_number"`
	VerificationCode string `json:"verification_code,omitempty"`
}

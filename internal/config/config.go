package config

import (
	"fmt"
	"os"
)

// Config holds the settings for the external services the messaging core
// talks to. Database and Redis settings are read by internal/db directly.
type Config struct {
	Port string

	// WhatsApp Cloud API (webhook handshake + media downloads)
	WhatsAppVerifyToken string
	WhatsAppAPIURL      string
	WhatsAppAccessToken string

	// OpenAI Whisper (voice note transcription)
	OpenAIAPIKey string

	// Twilio (outbound WhatsApp/SMS sends)
	TwilioAccountSID   string
	TwilioAuthToken    string
	TwilioWhatsAppFrom string
	TwilioSMSFrom      string

	// Shared secret for the external cron trigger endpoint
	CronAPIKey string
}

// Load reads configuration from the environment. Settings without which
// the core cannot operate at all are required; transcription and firebase
// credentials are validated lazily by the components that use them.
func Load() (*Config, error) {
	cfg := &Config{
		Port:                getEnvOrDefault("PORT", "9091"),
		WhatsAppVerifyToken: os.Getenv("WHATSAPP_VERIFY_TOKEN"),
		WhatsAppAPIURL:      getEnvOrDefault("WHATSAPP_API_URL", "https://graph.facebook.com/v19.0"),
		WhatsAppAccessToken: os.Getenv("WHATSAPP_ACCESS_TOKEN"),
		OpenAIAPIKey:        os.Getenv("OPENAI_API_KEY"),
		TwilioAccountSID:    os.Getenv("TWILIO_ACCOUNT_SID"),
		TwilioAuthToken:     os.Getenv("TWILIO_AUTH_TOKEN"),
		TwilioWhatsAppFrom:  os.Getenv("TWILIO_WHATSAPP_FROM"),
		TwilioSMSFrom:       os.Getenv("TWILIO_SMS_FROM"),
		CronAPIKey:          os.Getenv("CRON_API_KEY"),
	}

	if cfg.WhatsAppVerifyToken == "" {
		return nil, fmt.Errorf("WHATSAPP_VERIFY_TOKEN is required")
	}
	if cfg.CronAPIKey == "" {
		return nil, fmt.Errorf("CRON_API_KEY is required")
	}

	return cfg, nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

package db

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// InitPostgres initializes and returns a PostgreSQL connection pool
func InitPostgres() (*pgxpool.Pool, error) {
	// Get database URL from environment variable or use default
	databaseURL := os.Getenv("DATABASE_URL")
	if databaseURL == "" {
		// Default local development configuration
		host := getEnvOrDefault("POSTGRES_HOST", "localhost")
		port := getEnvOrDefault("POSTGRES_PORT", "5432")
		user := getEnvOrDefault("POSTGRES_USER", "microjournal")
		password := getEnvOrDefault("POSTGRES_PASSWORD", "")
		dbname := getEnvOrDefault("POSTGRES_DB", "microjournal")
		sslmode := getEnvOrDefault("POSTGRES_SSLMODE", "disable")

		databaseURL = fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s",
			user, password, host, port, dbname, sslmode)
	}

	// Configure connection pool
	config, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse database URL: %w", err)
	}

	// Set connection pool settings
	config.MaxConns = 25
	config.MinConns = 5
	config.MaxConnLifetime = time.Hour
	config.MaxConnIdleTime = time.Minute * 30
	config.HealthCheckPeriod = time.Minute * 5

	// Create connection pool
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	// Test the connection
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	// Create tables if they don't exist
	if err := createTables(ctx, pool); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	return pool, nil
}

// createTables creates all required tables if they don't exist
func createTables(ctx context.Context, pool *pgxpool.Pool) error {
	// Users table - journal users and their delivery preferences
	usersTable := `
		CREATE TABLE IF NOT EXISTS users (
			uid VARCHAR(255) PRIMARY KEY,
			email VARCHAR(255) UNIQUE NOT NULL,
			phone_number VARCHAR(20),
			timezone VARCHAR(50) NOT NULL DEFAULT 'UTC',
			notifications_enabled BOOLEAN NOT NULL DEFAULT FALSE,
			prompt_time VARCHAR(5) NOT NULL DEFAULT '09:00',
			prompt_categories TEXT[] NOT NULL DEFAULT '{reflection}',
			whatsapp_verified BOOLEAN NOT NULL DEFAULT FALSE,
			created_at TIMESTAMP WITH TIME ZONE DEFAULT NOW(),
			updated_at TIMESTAMP WITH TIME ZONE DEFAULT NOW()
		);
	`

	// Phone mappings - canonical phone number to user uid, one row per number
	phoneMappingsTable := `
		CREATE TABLE IF NOT EXISTS phone_mappings (
			phone_number VARCHAR(20) PRIMARY KEY,
			user_uid VARCHAR(255) NOT NULL REFERENCES users(uid) ON DELETE CASCADE,
			updated_at TIMESTAMP WITH TIME ZONE DEFAULT NOW()
		);
	`

	// Journal entries - owned by a user uid or, for channel-only flows,
	// a bare phone number
	journalEntriesTable := `
		CREATE TABLE IF NOT EXISTS journal_entries (
			id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
			user_uid VARCHAR(255) REFERENCES users(uid) ON DELETE CASCADE,
			phone_number VARCHAR(20),
			content TEXT NOT NULL,
			channel VARCHAR(10) NOT NULL CHECK (channel IN ('web', 'sms', 'whatsapp')),
			sent_prompt_id UUID,
			created_at TIMESTAMP WITH TIME ZONE DEFAULT NOW(),
			updated_at TIMESTAMP WITH TIME ZONE DEFAULT NOW(),
			CONSTRAINT journal_entries_owner CHECK (
				user_uid IS NOT NULL OR phone_number IS NOT NULL
			)
		);
	`

	// Sent prompts - one row per prompt dispatch; answered prompts keep
	// the first response only
	sentPromptsTable := `
		CREATE TABLE IF NOT EXISTS sent_prompts (
			id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
			user_uid VARCHAR(255) NOT NULL REFERENCES users(uid) ON DELETE CASCADE,
			prompt_text TEXT NOT NULL,
			message_id VARCHAR(255),
			status VARCHAR(10) NOT NULL DEFAULT 'sent' CHECK (status IN ('sent', 'answered')),
			response_text TEXT,
			response_at TIMESTAMP WITH TIME ZONE,
			created_at TIMESTAMP WITH TIME ZONE DEFAULT NOW()
		);
	`

	// Verification codes - short-lived WhatsApp verification codes,
	// deleted on successful match
	verificationCodesTable := `
		CREATE TABLE IF NOT EXISTS verification_codes (
			id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
			user_uid VARCHAR(255) NOT NULL REFERENCES users(uid) ON DELETE CASCADE,
			phone_number VARCHAR(20) NOT NULL,
			code VARCHAR(6) NOT NULL,
			expires_at TIMESTAMP WITH TIME ZONE NOT NULL,
			created_at TIMESTAMP WITH TIME ZONE DEFAULT NOW()
		);
	`

	// Create indexes for better performance
	indexes := []string{
		`CREATE INDEX IF NOT EXISTS idx_users_phone_number ON users(phone_number);`,
		`CREATE INDEX IF NOT EXISTS idx_users_prompt_time ON users(prompt_time) WHERE notifications_enabled;`,
		`CREATE INDEX IF NOT EXISTS idx_phone_mappings_user_uid ON phone_mappings(user_uid);`,
		`CREATE INDEX IF NOT EXISTS idx_journal_entries_user_uid ON journal_entries(user_uid);`,
		`CREATE INDEX IF NOT EXISTS idx_journal_entries_created_at ON journal_entries(created_at DESC);`,
		`CREATE INDEX IF NOT EXISTS idx_sent_prompts_user_uid ON sent_prompts(user_uid, created_at DESC);`,
		`CREATE INDEX IF NOT EXISTS idx_verification_codes_phone ON verification_codes(phone_number);`,
		`CREATE INDEX IF NOT EXISTS idx_verification_codes_expires_at ON verification_codes(expires_at);`,
	}

	// Execute table creation statements
	tables := []string{usersTable, phoneMappingsTable, journalEntriesTable, sentPromptsTable, verificationCodesTable}

	for _, table := range tables {
		if _, err := pool.Exec(ctx, table); err != nil {
			return fmt.Errorf("failed to create table: %w", err)
		}
	}

	// Execute index creation statements
	for _, index := range indexes {
		if _, err := pool.Exec(ctx, index); err != nil {
			return fmt.Errorf("failed to create index: %w", err)
		}
	}

	return nil
}

// getEnvOrDefault returns the environment variable value or a default value if not set
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

package store

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"io.winapps.microjournal/internal/faults"
	accountmodels "io.winapps.microjournal/internal/models/account"
)

type PostgresUserStore struct {
	db *pgxpool.Pool
}

func NewUserStore(db *pgxpool.Pool) *PostgresUserStore {
	return &PostgresUserStore{db: db}
}

const userColumns = `uid, email, phone_number, timezone, notifications_enabled, prompt_time, prompt_categories, whatsapp_verified, created_at, updated_at`

func scanUser(row pgx.Row) (*accountmodels.User, error) {
	var u accountmodels.User
	err := row.Scan(
		&u.UID, &u.Email, &u.PhoneNumber, &u.Timezone,
		&u.NotificationsEnabled, &u.PromptTime, &u.PromptCategories,
		&u.WhatsAppVerified, &u.CreatedAt, &u.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (s *PostgresUserStore) GetByUID(ctx context.Context, uid string) (*accountmodels.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE uid = $1`
	u, err := scanUser(s.db.QueryRow(ctx, query, uid))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, faults.Newf(faults.KindNotFound, "user %s not found", uid)
	}
	if err != nil {
		return nil, faults.Wrap(faults.KindPersistence, "get user", err)
	}
	return u, nil
}

func (s *PostgresUserStore) UpdatePreferences(ctx context.Context, uid string, prefs Preferences) error {
	query := `
		UPDATE users
		SET timezone = $2,
			notifications_enabled = $3,
			prompt_time = $4,
			prompt_categories = $5,
			updated_at = NOW()
		WHERE uid = $1`
	tag, err := s.db.Exec(ctx, query, uid,
		prefs.Timezone, prefs.NotificationsEnabled, prefs.PromptTime, prefs.PromptCategories)
	if err != nil {
		return faults.Wrap(faults.KindPersistence, "update preferences", err)
	}
	if tag.RowsAffected() == 0 {
		return faults.Newf(faults.KindNotFound, "user %s not found", uid)
	}
	return nil
}

func (s *PostgresUserStore) SetPhoneVerified(ctx context.Context, uid, phone string) error {
	query := `
		UPDATE users
		SET phone_number = $2, whatsapp_verified = TRUE, updated_at = NOW()
		WHERE uid = $1`
	tag, err := s.db.Exec(ctx, query, uid, phone)
	if err != nil {
		return faults.Wrap(faults.KindPersistence, "set phone verified", err)
	}
	if tag.RowsAffected() == 0 {
		return faults.Newf(faults.KindNotFound, "user %s not found", uid)
	}
	return nil
}

func (s *PostgresUserStore) EligibleForPrompt(ctx context.Context, promptTime, timezone string) ([]accountmodels.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE notifications_enabled AND prompt_time = $1`
	args := []interface{}{promptTime}
	if timezone != "" {
		query += ` AND timezone = $2`
		args = append(args, timezone)
	}

	rows, err := s.db.Query(ctx, query, args...)
	if err != nil {
		return nil, faults.Wrap(faults.KindPersistence, "query eligible users", err)
	}
	defer rows.Close()

	var users []accountmodels.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, faults.Wrap(faults.KindPersistence, "scan eligible user", err)
		}
		users = append(users, *u)
	}
	if err := rows.Err(); err != nil {
		return nil, faults.Wrap(faults.KindPersistence, "iterate eligible users", err)
	}
	return users, nil
}

func (s *PostgresUserStore) DistinctTimezones(ctx context.Context) ([]string, error) {
	query := `SELECT DISTINCT timezone FROM users WHERE notifications_enabled AND timezone <> ''`
	rows, err := s.db.Query(ctx, query)
	if err != nil {
		return nil, faults.Wrap(faults.KindPersistence, "query timezones", err)
	}
	defer rows.Close()

	var timezones []string
	for rows.Next() {
		var tz string
		if err := rows.Scan(&tz); err != nil {
			return nil, faults.Wrap(faults.KindPersistence, "scan timezone", err)
		}
		timezones = append(timezones, tz)
	}
	if err := rows.Err(); err != nil {
		return nil, faults.Wrap(faults.KindPersistence, "iterate timezones", err)
	}
	return timezones, nil
}

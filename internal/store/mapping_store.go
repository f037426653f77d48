package store

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"io.winapps.microjournal/internal/faults"
)

type PostgresMappingStore struct {
	db *pgxpool.Pool
}

func NewMappingStore(db *pgxpool.Pool) *PostgresMappingStore {
	return &PostgresMappingStore{db: db}
}

func (s *PostgresMappingStore) UserForPhone(ctx context.Context, phone string) (string, error) {
	var uid string
	err := s.db.QueryRow(ctx,
		`SELECT user_uid FROM phone_mappings WHERE phone_number = $1`, phone).Scan(&uid)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", faults.Newf(faults.KindNotFound, "no user mapped to %s", phone)
	}
	if err != nil {
		return "", faults.Wrap(faults.KindPersistence, "lookup phone mapping", err)
	}
	return uid, nil
}

func (s *PostgresMappingStore) PhoneForUser(ctx context.Context, uid string) (string, error) {
	var phone string
	err := s.db.QueryRow(ctx,
		`SELECT phone_number FROM phone_mappings WHERE user_uid = $1`, uid).Scan(&phone)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", faults.Newf(faults.KindNotFound, "no phone mapped to user %s", uid)
	}
	if err != nil {
		return "", faults.Wrap(faults.KindPersistence, "lookup user phone", err)
	}
	return phone, nil
}

func (s *PostgresMappingStore) Upsert(ctx context.Context, phone, uid string) (string, error) {
	// Last writer wins on the phone number; the prior owner, if any, is
	// returned so the caller can log the takeover.
	var prior string
	err := s.db.QueryRow(ctx, `
		WITH old AS (
			SELECT user_uid FROM phone_mappings WHERE phone_number = $1
		)
		INSERT INTO phone_mappings (phone_number, user_uid, updated_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (phone_number)
		DO UPDATE SET user_uid = EXCLUDED.user_uid, updated_at = NOW()
		RETURNING COALESCE((SELECT user_uid FROM old), '')`,
		phone, uid).Scan(&prior)
	if err != nil {
		return "", faults.Wrap(faults.KindPersistence, "upsert phone mapping", err)
	}
	return prior, nil
}

package store

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"io.winapps.microjournal/internal/faults"
	accountmodels "io.winapps.microjournal/internal/models/account"
)

type PostgresVerificationStore struct {
	db *pgxpool.Pool
}

func NewVerificationStore(db *pgxpool.Pool) *PostgresVerificationStore {
	return &PostgresVerificationStore{db: db}
}

func (s *PostgresVerificationStore) Create(ctx context.Context, code *accountmodels.VerificationCode) error {
	query := `
		INSERT INTO verification_codes (id, user_uid, phone_number, code, expires_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING created_at`
	err := s.db.QueryRow(ctx, query,
		code.ID, code.UserUID, code.PhoneNumber, code.Code, code.ExpiresAt,
	).Scan(&code.CreatedAt)
	if err != nil {
		return faults.Wrap(faults.KindPersistence, "insert verification code", err)
	}
	return nil
}

func (s *PostgresVerificationStore) Consume(ctx context.Context, phone, code string, now time.Time) (*accountmodels.VerificationCode, error) {
	// Delete-and-return so a matched code can be used exactly once.
	query := `
		DELETE FROM verification_codes
		WHERE phone_number = $1 AND code = $2 AND expires_at > $3
		RETURNING id, user_uid, phone_number, code, expires_at, created_at`
	var vc accountmodels.VerificationCode
	err := s.db.QueryRow(ctx, query, phone, code, now).Scan(
		&vc.ID, &vc.UserUID, &vc.PhoneNumber, &vc.Code, &vc.ExpiresAt, &vc.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, faults.New(faults.KindNotFound, "no matching verification code")
	}
	if err != nil {
		return nil, faults.Wrap(faults.KindPersistence, "consume verification code", err)
	}
	return &vc, nil
}

func (s *PostgresVerificationStore) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	tag, err := s.db.Exec(ctx,
		`DELETE FROM verification_codes WHERE expires_at <= $1`, now)
	if err != nil {
		return 0, faults.Wrap(faults.KindPersistence, "delete expired codes", err)
	}
	return tag.RowsAffected(), nil
}

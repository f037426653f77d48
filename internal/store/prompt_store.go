package store

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"io.winapps.microjournal/internal/faults"
	journalmodels "io.winapps.microjournal/internal/models/journal"
)

type PostgresPromptStore struct {
	db *pgxpool.Pool
}

func NewPromptStore(db *pgxpool.Pool) *PostgresPromptStore {
	return &PostgresPromptStore{db: db}
}

func (s *PostgresPromptStore) Insert(ctx context.Context, prompt *journalmodels.SentPrompt) error {
	query := `
		INSERT INTO sent_prompts (id, user_uid, prompt_text, message_id, status)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING created_at`
	err := s.db.QueryRow(ctx, query,
		prompt.ID, prompt.UserUID, prompt.PromptText, prompt.MessageID, prompt.Status,
	).Scan(&prompt.CreatedAt)
	if err != nil {
		return faults.Wrap(faults.KindPersistence, "insert sent prompt", err)
	}
	return nil
}

func (s *PostgresPromptStore) LatestForUser(ctx context.Context, uid string) (*journalmodels.SentPrompt, error) {
	query := `
		SELECT id, user_uid, prompt_text, message_id, status, response_text, response_at, created_at
		FROM sent_prompts
		WHERE user_uid = $1
		ORDER BY created_at DESC
		LIMIT 1`
	var p journalmodels.SentPrompt
	err := s.db.QueryRow(ctx, query, uid).Scan(
		&p.ID, &p.UserUID, &p.PromptText, &p.MessageID, &p.Status,
		&p.ResponseText, &p.ResponseAt, &p.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, faults.Newf(faults.KindNotFound, "no prompts sent to user %s", uid)
	}
	if err != nil {
		return nil, faults.Wrap(faults.KindPersistence, "latest sent prompt", err)
	}
	return &p, nil
}

func (s *PostgresPromptStore) MarkAnswered(ctx context.Context, id, responseText string, at time.Time) (bool, error) {
	// The status guard makes the transition one-shot: a concurrent second
	// reply finds status already flipped and updates nothing.
	query := `
		UPDATE sent_prompts
		SET status = $2, response_text = $3, response_at = $4
		WHERE id = $1 AND status = $5`
	tag, err := s.db.Exec(ctx, query,
		id, journalmodels.PromptStatusAnswered, responseText, at, journalmodels.PromptStatusSent)
	if err != nil {
		return false, faults.Wrap(faults.KindPersistence, "mark prompt answered", err)
	}
	return tag.RowsAffected() > 0, nil
}

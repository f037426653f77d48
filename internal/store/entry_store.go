package store

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"io.winapps.microjournal/internal/faults"
	journalmodels "io.winapps.microjournal/internal/models/journal"
)

type PostgresEntryStore struct {
	db *pgxpool.Pool
}

func NewEntryStore(db *pgxpool.Pool) *PostgresEntryStore {
	return &PostgresEntryStore{db: db}
}

const entryColumns = `id, user_uid, phone_number, content, channel, sent_prompt_id, created_at, updated_at`

func scanEntry(row pgx.Row) (*journalmodels.JournalEntry, error) {
	var e journalmodels.JournalEntry
	err := row.Scan(
		&e.ID, &e.UserUID, &e.PhoneNumber, &e.Content,
		&e.Channel, &e.SentPromptID, &e.CreatedAt, &e.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &e, nil
}

func (s *PostgresEntryStore) Insert(ctx context.Context, entry *journalmodels.JournalEntry) error {
	query := `
		INSERT INTO journal_entries (id, user_uid, phone_number, content, channel, sent_prompt_id)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at, updated_at`
	err := s.db.QueryRow(ctx, query,
		entry.ID, entry.UserUID, entry.PhoneNumber, entry.Content,
		entry.Channel, entry.SentPromptID,
	).Scan(&entry.CreatedAt, &entry.UpdatedAt)
	if err != nil {
		return faults.Wrap(faults.KindPersistence, "insert journal entry", err)
	}
	return nil
}

func (s *PostgresEntryStore) GetByID(ctx context.Context, id, ownerUID string) (*journalmodels.JournalEntry, error) {
	query := `SELECT ` + entryColumns + ` FROM journal_entries WHERE id = $1 AND user_uid = $2`
	e, err := scanEntry(s.db.QueryRow(ctx, query, id, ownerUID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, faults.Newf(faults.KindNotFound, "entry %s not found", id)
	}
	if err != nil {
		return nil, faults.Wrap(faults.KindPersistence, "get journal entry", err)
	}
	return e, nil
}

func (s *PostgresEntryStore) ListByUser(ctx context.Context, uid string, limit, offset int) ([]journalmodels.JournalEntry, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	query := `SELECT ` + entryColumns + ` FROM journal_entries
		WHERE user_uid = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3`
	rows, err := s.db.Query(ctx, query, uid, limit, offset)
	if err != nil {
		return nil, faults.Wrap(faults.KindPersistence, "list journal entries", err)
	}
	defer rows.Close()

	var entries []journalmodels.JournalEntry
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, faults.Wrap(faults.KindPersistence, "scan journal entry", err)
		}
		entries = append(entries, *e)
	}
	if err := rows.Err(); err != nil {
		return nil, faults.Wrap(faults.KindPersistence, "iterate journal entries", err)
	}
	return entries, nil
}

func (s *PostgresEntryStore) UpdateContent(ctx context.Context, id, ownerUID, content string) error {
	query := `
		UPDATE journal_entries
		SET content = $3, updated_at = NOW()
		WHERE id = $1 AND user_uid = $2`
	tag, err := s.db.Exec(ctx, query, id, ownerUID, content)
	if err != nil {
		return faults.Wrap(faults.KindPersistence, "update journal entry", err)
	}
	if tag.RowsAffected() == 0 {
		return faults.Newf(faults.KindNotFound, "entry %s not found", id)
	}
	return nil
}

func (s *PostgresEntryStore) Delete(ctx context.Context, id, ownerUID string) error {
	tag, err := s.db.Exec(ctx,
		`DELETE FROM journal_entries WHERE id = $1 AND user_uid = $2`, id, ownerUID)
	if err != nil {
		return faults.Wrap(faults.KindPersistence, "delete journal entry", err)
	}
	if tag.RowsAffected() == 0 {
		return faults.Newf(faults.KindNotFound, "entry %s not found", id)
	}
	return nil
}

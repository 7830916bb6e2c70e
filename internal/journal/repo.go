package journal

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/starford/redate/internal/apperr"
	"github.com/starford/redate/internal/models"
)

// RecordBatch inserts a batch and its planned entries within a transaction.
// The first b.Executed entries are marked executed.
func (db *DB) RecordBatch(b BatchRow, entries []models.RenameEntry) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return fmt.Errorf("journal: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // best-effort on failure path

	if b.CreatedAt.IsZero() {
		b.CreatedAt = time.Now().UTC()
	}
	_, err = tx.Exec(`
		INSERT INTO batches (id, kind, folder, checksum, created_at, planned, executed, error)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, b.ID, b.Kind, b.Folder, b.Checksum, b.CreatedAt, b.Planned, b.Executed, b.Error)
	if err != nil {
		return fmt.Errorf("journal: insert batch: %w", err)
	}

	if len(entries) > 0 {
		stmt, err := tx.Prepare(`INSERT INTO batch_entries (batch_id, seq, source, target, executed) VALUES (?, ?, ?, ?, ?)`)
		if err != nil {
			return fmt.Errorf("journal: prepare entry insert: %w", err)
		}
		defer stmt.Close()
		for i, e := range entries {
			if _, err := stmt.Exec(b.ID, i, e.SourcePath, e.TargetPath, i < b.Executed); err != nil {
				return fmt.Errorf("journal: insert entry: %w", err)
			}
		}
	}

	return tx.Commit()
}

// RecordUndo appends an undo event for an existing batch.
func (db *DB) RecordUndo(u UndoRow) error {
	if u.CreatedAt.IsZero() {
		u.CreatedAt = time.Now().UTC()
	}
	_, err := db.conn.Exec(`
		INSERT INTO undo_events (batch_id, status, undone, skipped, missing, conflicts, already_restored, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, u.BatchID, u.Status, u.Undone, u.Skipped, u.Missing, u.Conflicts, u.AlreadyRestored, u.CreatedAt)
	if err != nil {
		return fmt.Errorf("journal: insert undo: %w", err)
	}
	return nil
}

const batchColumns = `
	b.id, b.kind, b.folder, b.checksum, b.created_at, b.planned, b.executed, b.error,
	COALESCE((SELECT u.status FROM undo_events u WHERE u.batch_id = b.id ORDER BY u.id DESC LIMIT 1), '')
`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanBatch(s rowScanner) (BatchRow, error) {
	var b BatchRow
	err := s.Scan(&b.ID, &b.Kind, &b.Folder, &b.Checksum, &b.CreatedAt, &b.Planned, &b.Executed, &b.Error, &b.LastUndo)
	return b, err
}

// ListBatches returns batches newest first, plus the total count.
func (db *DB) ListBatches(limit, offset int) ([]BatchRow, int, error) {
	var total int
	if err := db.conn.QueryRow(`SELECT count(*) FROM batches`).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("journal: count batches: %w", err)
	}
	if limit <= 0 {
		limit = 50
	}
	rows, err := db.conn.Query(`SELECT `+batchColumns+` FROM batches b
		ORDER BY b.created_at DESC, b.rowid DESC LIMIT ? OFFSET ?`, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("journal: list batches: %w", err)
	}
	defer rows.Close()

	out := []BatchRow{}
	for rows.Next() {
		b, err := scanBatch(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("journal: scan batch: %w", err)
		}
		out = append(out, b)
	}
	return out, total, rows.Err()
}

// GetBatch returns one batch or apperr.ErrNotFound.
func (db *DB) GetBatch(id string) (*BatchRow, error) {
	b, err := scanBatch(db.conn.QueryRow(`SELECT `+batchColumns+` FROM batches b WHERE b.id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("journal: batch %s: %w", id, apperr.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("journal: get batch: %w", err)
	}
	return &b, nil
}

// Entries returns the planned entries of a batch in execution order.
func (db *DB) Entries(batchID string) ([]EntryRow, error) {
	rows, err := db.conn.Query(`SELECT seq, source, target, executed FROM batch_entries
		WHERE batch_id = ? ORDER BY seq`, batchID)
	if err != nil {
		return nil, fmt.Errorf("journal: entries: %w", err)
	}
	defer rows.Close()

	out := []EntryRow{}
	for rows.Next() {
		var e EntryRow
		if err := rows.Scan(&e.Seq, &e.Source, &e.Target, &e.Executed); err != nil {
			return nil, fmt.Errorf("journal: scan entry: %w", err)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

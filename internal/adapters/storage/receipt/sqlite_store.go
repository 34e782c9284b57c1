package receipt

import (
	"context"
	"fmt"
	"time"

	storage "complaintdesk/internal/adapters/storage"
	"complaintdesk/internal/domain/category"
)

type sqliteStore struct {
	db storage.SQLDB
}

// NewSQLiteStore returns a Store backed by SQLite.
func NewSQLiteStore(db storage.SQLDB) Store {
	return &sqliteStore{db: db}
}

// Save persists a receipt. A repeated save for the same ID overwrites, so a
// retried submission that yields the same complaint does not duplicate.
// PRE: r.ID is non-empty
func (s *sqliteStore) Save(ctx context.Context, r Receipt) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO submission_receipt (id, category, complaint_id, student_email, submitted_at)
		VALUES (?,?,?,?,?)
		ON CONFLICT(id) DO UPDATE SET
			category = excluded.category,
			complaint_id = excluded.complaint_id,
			student_email = excluded.student_email,
			submitted_at = excluded.submitted_at`,
		r.ID, string(r.Category), r.ComplaintID, r.StudentEmail, r.SubmittedAt.UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("receipt save: %w", err)
	}
	return nil
}

// ListRecent returns the newest receipts, most recent first.
func (s *sqliteStore) ListRecent(ctx context.Context, limit int) ([]Receipt, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, category, complaint_id, student_email, submitted_at
		FROM submission_receipt ORDER BY submitted_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("receipt list: %w", err)
	}
	defer rows.Close()

	var out []Receipt
	for rows.Next() {
		var r Receipt
		var rawCategory, submittedAt string
		if err := rows.Scan(&r.ID, &rawCategory, &r.ComplaintID, &r.StudentEmail, &submittedAt); err != nil {
			return nil, fmt.Errorf("receipt scan: %w", err)
		}
		r.Category = category.Category(rawCategory)
		r.SubmittedAt, _ = time.Parse(time.RFC3339, submittedAt)
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("receipt list: %w", err)
	}
	return out, nil
}

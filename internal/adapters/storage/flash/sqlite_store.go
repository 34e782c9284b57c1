package flash

import (
	"context"
	"fmt"
	"time"

	storage "complaintdesk/internal/adapters/storage"
	domain "complaintdesk/internal/domain/notification"
)

type sqliteStore struct {
	db storage.SQLDB
}

// NewSQLiteStore returns a Store backed by SQLite.
func NewSQLiteStore(db storage.SQLDB) Store {
	return &sqliteStore{db: db}
}

// Push stores a notification for the client's next render.
// PRE: n passed Validate()
func (s *sqliteStore) Push(ctx context.Context, n domain.Notification) error {
	if err := n.Validate(); err != nil {
		return fmt.Errorf("flash push: %w", err)
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO flash (id, client_id, level, message, created_at)
		VALUES (?,?,?,?,?)`,
		n.ID, n.ClientID, string(n.Level), n.Message, n.CreatedAt.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("flash push: %w", err)
	}
	return nil
}

// Consume returns all pending notifications for a client in emission order
// and deletes them in the same transaction.
// POST: a second Consume with no intervening Push returns an empty slice
func (s *sqliteStore) Consume(ctx context.Context, clientID string) ([]domain.Notification, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("flash consume: %w", err)
	}
	defer tx.Rollback()

	rows, err := tx.QueryContext(ctx, `
		SELECT id, client_id, level, message, created_at
		FROM flash WHERE client_id = ? ORDER BY created_at`, clientID)
	if err != nil {
		return nil, fmt.Errorf("flash consume: %w", err)
	}

	var out []domain.Notification
	for rows.Next() {
		var n domain.Notification
		var level, createdAt string
		if err := rows.Scan(&n.ID, &n.ClientID, &level, &n.Message, &createdAt); err != nil {
			rows.Close()
			return nil, fmt.Errorf("flash scan: %w", err)
		}
		n.Level = domain.Level(level)
		n.CreatedAt, _ = time.Parse(time.RFC3339Nano, createdAt)
		out = append(out, n)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("flash consume: %w", err)
	}

	if len(out) > 0 {
		if _, err := tx.ExecContext(ctx, `DELETE FROM flash WHERE client_id = ?`, clientID); err != nil {
			return nil, fmt.Errorf("flash clear: %w", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("flash consume: %w", err)
	}
	return out, nil
}

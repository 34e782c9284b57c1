package session

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	storage "complaintdesk/internal/adapters/storage"
	"complaintdesk/internal/domain/category"
	domain "complaintdesk/internal/domain/session"
)

type sqliteStore struct {
	db storage.SQLDB
}

// NewSQLiteStore returns a Store backed by SQLite.
func NewSQLiteStore(db storage.SQLDB) Store {
	return &sqliteStore{db: db}
}

// Get retrieves the stored session for one (client, category) pair.
// POST: returns ErrNotFound when no token has been saved for the pair
func (s *sqliteStore) Get(ctx context.Context, clientID string, cat category.Category) (domain.AdminSession, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT client_id, category, token, admin_id, admin_name, admin_email, saved_at
		FROM admin_session WHERE client_id = ? AND category = ?`, clientID, string(cat))

	var sess domain.AdminSession
	var rawCategory, savedAt string
	err := row.Scan(
		&sess.ClientID,
		&rawCategory,
		&sess.Token,
		&sess.Admin.ID,
		&sess.Admin.Name,
		&sess.Admin.Email,
		&savedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.AdminSession{}, ErrNotFound
	}
	if err != nil {
		return domain.AdminSession{}, fmt.Errorf("session get: %w", err)
	}
	sess.Category = category.Category(rawCategory)
	sess.SavedAt, _ = time.Parse(time.RFC3339, savedAt)
	return sess, nil
}

// Set saves a session, replacing any previous one for the same pair.
// PRE: sess.ClientID and sess.Token are non-empty; sess.Category is valid
func (s *sqliteStore) Set(ctx context.Context, sess domain.AdminSession) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO admin_session (client_id, category, token, admin_id, admin_name, admin_email, saved_at)
		VALUES (?,?,?,?,?,?,?)
		ON CONFLICT(client_id, category) DO UPDATE SET
			token = excluded.token,
			admin_id = excluded.admin_id,
			admin_name = excluded.admin_name,
			admin_email = excluded.admin_email,
			saved_at = excluded.saved_at`,
		sess.ClientID,
		string(sess.Category),
		sess.Token,
		sess.Admin.ID,
		sess.Admin.Name,
		sess.Admin.Email,
		sess.SavedAt.UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("session set: %w", err)
	}
	return nil
}

// Delete removes the stored session for one pair. Deleting a missing session
// is not an error.
func (s *sqliteStore) Delete(ctx context.Context, clientID string, cat category.Category) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM admin_session WHERE client_id = ? AND category = ?`, clientID, string(cat))
	if err != nil {
		return fmt.Errorf("session delete: %w", err)
	}
	return nil
}

package session

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/HazemIbrahim256/sports-academy/internal/adapters/storage"
	domain "github.com/HazemIbrahim256/sports-academy/internal/domain/session"
)

// timeLayout is fixed width so stored timestamps compare correctly as text.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// SQLiteStore implements Store using SQLite; tokens are sealed before they are written.
type SQLiteStore struct {
	db     storage.SQLDB
	sealer *Sealer
}

var _ Store = (*SQLiteStore)(nil)

// NewSQLiteStore creates a session store.
// PRE: db has been migrated; sealer is non-nil
func NewSQLiteStore(db storage.SQLDB, sealer *Sealer) *SQLiteStore {
	return &SQLiteStore{db: db, sealer: sealer}
}

// Create persists a new session.
// PRE: s passes Validate
// POST: row exists with sealed tokens
func (s *SQLiteStore) Create(ctx context.Context, sess domain.Session) error {
	if err := sess.Validate(); err != nil {
		return err
	}
	access, refresh, err := s.seal(sess.Access, sess.Refresh)
	if err != nil {
		return err
	}
	ctx = storage.WithOp(ctx, "sessions.Create")
	_, err = s.db.ExecContext(ctx,
		"INSERT INTO session (id, access_sealed, refresh_sealed, created_at, last_seen_at) VALUES (?, ?, ?, ?, ?)",
		sess.ID, access, refresh, sess.CreatedAt.UTC().Format(timeLayout), sess.LastSeenAt.UTC().Format(timeLayout),
	)
	if err != nil {
		return fmt.Errorf("create session: %w", err)
	}
	return nil
}

// Get loads a session and opens its tokens.
// POST: returns domain.ErrNotFound for unknown ids or undecryptable rows
func (s *SQLiteStore) Get(ctx context.Context, id string) (domain.Session, error) {
	ctx = storage.WithOp(ctx, "sessions.Get")
	row := s.db.QueryRowContext(ctx,
		"SELECT id, access_sealed, refresh_sealed, created_at, last_seen_at FROM session WHERE id = ?", id)

	var (
		sess                domain.Session
		access, refresh     []byte
		createdAt, lastSeen string
	)
	if err := row.Scan(&sess.ID, &access, &refresh, &createdAt, &lastSeen); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Session{}, domain.ErrNotFound
		}
		return domain.Session{}, fmt.Errorf("get session: %w", err)
	}
	var err error
	if sess.Access, err = s.sealer.Open(access); err != nil {
		return domain.Session{}, domain.ErrNotFound
	}
	if sess.Refresh, err = s.sealer.Open(refresh); err != nil {
		return domain.Session{}, domain.ErrNotFound
	}
	sess.CreatedAt, _ = time.Parse(timeLayout, createdAt)
	sess.LastSeenAt, _ = time.Parse(timeLayout, lastSeen)
	return sess, nil
}

// UpdateTokens replaces the token pair after a refresh.
func (s *SQLiteStore) UpdateTokens(ctx context.Context, id, access, refresh string) error {
	a, r, err := s.seal(access, refresh)
	if err != nil {
		return err
	}
	ctx = storage.WithOp(ctx, "sessions.UpdateTokens")
	res, err := s.db.ExecContext(ctx,
		"UPDATE session SET access_sealed = ?, refresh_sealed = ? WHERE id = ?", a, r, id)
	if err != nil {
		return fmt.Errorf("update session tokens: %w", err)
	}
	return requireRow(res)
}

// Touch records activity so the idle TTL restarts.
func (s *SQLiteStore) Touch(ctx context.Context, id string, at time.Time) error {
	ctx = storage.WithOp(ctx, "sessions.Touch")
	res, err := s.db.ExecContext(ctx,
		"UPDATE session SET last_seen_at = ? WHERE id = ?", at.UTC().Format(timeLayout), id)
	if err != nil {
		return fmt.Errorf("touch session: %w", err)
	}
	return requireRow(res)
}

// Delete removes a session. Deleting an unknown id is not an error.
func (s *SQLiteStore) Delete(ctx context.Context, id string) error {
	ctx = storage.WithOp(ctx, "sessions.Delete")
	if _, err := s.db.ExecContext(ctx, "DELETE FROM session WHERE id = ?", id); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}

// DeleteExpired removes sessions last seen before the cutoff and returns how many went.
func (s *SQLiteStore) DeleteExpired(ctx context.Context, before time.Time) (int64, error) {
	ctx = storage.WithOp(ctx, "sessions.DeleteExpired")
	res, err := s.db.ExecContext(ctx,
		"DELETE FROM session WHERE last_seen_at < ?", before.UTC().Format(timeLayout))
	if err != nil {
		return 0, fmt.Errorf("delete expired sessions: %w", err)
	}
	return res.RowsAffected()
}

func (s *SQLiteStore) seal(access, refresh string) ([]byte, []byte, error) {
	a, err := s.sealer.Seal(access)
	if err != nil {
		return nil, nil, fmt.Errorf("seal access token: %w", err)
	}
	r, err := s.sealer.Seal(refresh)
	if err != nil {
		return nil, nil, fmt.Errorf("seal refresh token: %w", err)
	}
	return a, r, nil
}

func requireRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return domain.ErrNotFound
	}
	return nil
}

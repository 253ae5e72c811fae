package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"
)

// SessionRepo persists/validates issued session tokens by their SHA-256 digest.
type SessionRepo struct {
	DB  *sql.DB
	now func() time.Time
}

func NewSessionRepo(db *sql.DB) *SessionRepo {
	return &SessionRepo{DB: db, now: time.Now}
}

// Store inserts a session row for accountID.
func (r *SessionRepo) Store(ctx context.Context, accountID uint64, tokenHash string, exp time.Time) error {
	_, err := r.DB.ExecContext(ctx,
		"INSERT INTO session_tokens (account_id, token_hash, expires_at) VALUES (?,?,?)",
		accountID, tokenHash, exp.UTC())
	return err
}

// Validate succeeds only if a row for tokenHash belongs to accountID and has
// not expired.
func (r *SessionRepo) Validate(ctx context.Context, tokenHash string, accountID uint64) error {
	var expiresAt time.Time
	err := r.DB.QueryRowContext(ctx,
		"SELECT expires_at FROM session_tokens WHERE token_hash=? AND account_id=? LIMIT 1",
		tokenHash, accountID).Scan(&expiresAt)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrSessionNotFound
	}
	if err != nil {
		return err
	}
	if !r.now().UTC().Before(expiresAt) {
		return ErrSessionExpired
	}
	return nil
}

// PurgeExpired deletes rows whose expiry is at or before cutoff and returns
// how many were removed.
func (r *SessionRepo) PurgeExpired(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := r.DB.ExecContext(ctx,
		"DELETE FROM session_tokens WHERE expires_at <= ?", cutoff.UTC())
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// internal/repository/postgres/session_repo.go
package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"authguard-service/internal/domain/auth"
	xerrors "authguard-service/internal/pkg/errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// SessionRepository is the persistent registry of active sessions. Primary key
// is the session id; refresh_token carries a unique index and is the lookup
// key for the request path.
type SessionRepository struct {
	db *pgxpool.Pool
}

func NewSessionRepository(db *pgxpool.Pool) *SessionRepository {
	return &SessionRepository{db: db}
}

// Create inserts a new session row
func (r *SessionRepository) Create(ctx context.Context, session *auth.Session) error {
	query := `
		INSERT INTO sessions (
			id, credential_id, refresh_token, ip_address,
			user_agent, device_type, started_at, last_activity, expires_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	_, err := r.db.Exec(ctx, query,
		session.ID, session.CredentialID, session.RefreshToken,
		session.IPAddress, session.UserAgent, session.DeviceType,
		session.StartedAt, session.LastActivity, session.ExpiresAt,
	)
	if isUniqueViolation(err) {
		return xerrors.ErrDuplicateEntry
	}
	if err != nil {
		return fmt.Errorf("failed to create session: %w", err)
	}
	return nil
}

// FindByRefreshToken retrieves the session keyed by the refresh token
func (r *SessionRepository) FindByRefreshToken(ctx context.Context, refreshToken string) (*auth.Session, error) {
	query := `
		SELECT id, credential_id, refresh_token, ip_address,
		       user_agent, device_type, started_at, last_activity, expires_at
		FROM sessions
		WHERE refresh_token = $1
	`

	var session auth.Session
	err := r.db.QueryRow(ctx, query, refreshToken).Scan(
		&session.ID, &session.CredentialID, &session.RefreshToken,
		&session.IPAddress, &session.UserAgent, &session.DeviceType,
		&session.StartedAt, &session.LastActivity, &session.ExpiresAt,
	)

	if errors.Is(err, pgx.ErrNoRows) {
		return nil, xerrors.ErrSessionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find session: %w", err)
	}

	return &session, nil
}

// UpdateRefreshToken rotates the session's refresh token. The WHERE clause on
// the old token value makes this a compare-and-swap: a concurrent rotation
// that already replaced the token leaves zero rows to update, and the caller
// gets ErrSessionNotFound instead of silently overwriting the winner.
func (r *SessionRepository) UpdateRefreshToken(ctx context.Context, oldToken, newToken string, expiresAt time.Time) error {
	query := `
		UPDATE sessions
		SET refresh_token = $1, expires_at = $2, last_activity = NOW()
		WHERE refresh_token = $3
	`

	tag, err := r.db.Exec(ctx, query, newToken, expiresAt, oldToken)
	if err != nil {
		return fmt.Errorf("failed to rotate refresh token: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return xerrors.ErrSessionNotFound
	}
	return nil
}

// UpdateActivity bumps the session's last-activity timestamp
func (r *SessionRepository) UpdateActivity(ctx context.Context, id string) error {
	query := `UPDATE sessions SET last_activity = NOW() WHERE id = $1`
	_, err := r.db.Exec(ctx, query, id)
	return err
}

// DeleteByRefreshToken removes the session keyed by the refresh token
func (r *SessionRepository) DeleteByRefreshToken(ctx context.Context, refreshToken string) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM sessions WHERE refresh_token = $1`, refreshToken)
	if err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return xerrors.ErrSessionNotFound
	}
	return nil
}

// DeleteAllForUser removes every session owned by the credential
func (r *SessionRepository) DeleteAllForUser(ctx context.Context, credentialID int64) error {
	_, err := r.db.Exec(ctx, `DELETE FROM sessions WHERE credential_id = $1`, credentialID)
	if err != nil {
		return fmt.Errorf("failed to delete user sessions: %w", err)
	}
	return nil
}

// DeleteExpired bulk-removes sessions whose expiry has passed, returning the
// number of rows reaped.
func (r *SessionRepository) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	tag, err := r.db.Exec(ctx, `DELETE FROM sessions WHERE expires_at < $1`, now)
	if err != nil {
		return 0, fmt.Errorf("failed to delete expired sessions: %w", err)
	}
	return tag.RowsAffected(), nil
}

// ListByCredential returns the sessions owned by the credential
func (r *SessionRepository) ListByCredential(ctx context.Context, credentialID int64) ([]auth.Session, error) {
	query := `
		SELECT id, credential_id, refresh_token, ip_address,
		       user_agent, device_type, started_at, last_activity, expires_at
		FROM sessions
		WHERE credential_id = $1
		ORDER BY started_at DESC
	`

	rows, err := r.db.Query(ctx, query, credentialID)
	if err != nil {
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}
	defer rows.Close()

	var sessions []auth.Session
	for rows.Next() {
		var session auth.Session
		if err := rows.Scan(
			&session.ID, &session.CredentialID, &session.RefreshToken,
			&session.IPAddress, &session.UserAgent, &session.DeviceType,
			&session.StartedAt, &session.LastActivity, &session.ExpiresAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan session: %w", err)
		}
		sessions = append(sessions, session)
	}
	return sessions, rows.Err()
}

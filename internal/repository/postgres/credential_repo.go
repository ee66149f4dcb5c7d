// internal/repository/postgres/credential_repo.go
package postgres

import (
	"context"
	"errors"
	"fmt"

	"authguard-service/internal/domain/auth"
	xerrors "authguard-service/internal/pkg/errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

type CredentialRepository struct {
	db *pgxpool.Pool
}

func NewCredentialRepository(db *pgxpool.Pool) *CredentialRepository {
	return &CredentialRepository{db: db}
}

// FindByEmail retrieves a credential (with roles) by email
func (r *CredentialRepository) FindByEmail(ctx context.Context, email string) (*auth.Credential, error) {
	query := `
		SELECT id, email, password_hash, created_at, updated_at
		FROM credentials
		WHERE LOWER(email) = LOWER($1)
	`

	var cred auth.Credential
	err := r.db.QueryRow(ctx, query, email).Scan(
		&cred.ID, &cred.Email, &cred.PasswordHash, &cred.CreatedAt, &cred.UpdatedAt,
	)

	if errors.Is(err, pgx.ErrNoRows) {
		return nil, xerrors.ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find credential: %w", err)
	}

	if cred.Roles, err = r.rolesFor(ctx, cred.ID); err != nil {
		return nil, err
	}

	return &cred, nil
}

// FindByID retrieves a credential (with roles) by id
func (r *CredentialRepository) FindByID(ctx context.Context, id int64) (*auth.Credential, error) {
	query := `
		SELECT id, email, password_hash, created_at, updated_at
		FROM credentials
		WHERE id = $1
	`

	var cred auth.Credential
	err := r.db.QueryRow(ctx, query, id).Scan(
		&cred.ID, &cred.Email, &cred.PasswordHash, &cred.CreatedAt, &cred.UpdatedAt,
	)

	if errors.Is(err, pgx.ErrNoRows) {
		return nil, xerrors.ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find credential: %w", err)
	}

	if cred.Roles, err = r.rolesFor(ctx, cred.ID); err != nil {
		return nil, err
	}

	return &cred, nil
}

// ExistsByEmail reports whether a credential with the email exists
func (r *CredentialRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	query := `SELECT EXISTS(SELECT 1 FROM credentials WHERE LOWER(email) = LOWER($1))`

	var exists bool
	if err := r.db.QueryRow(ctx, query, email).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check email: %w", err)
	}
	return exists, nil
}

// Create inserts a credential and links its role set in one transaction
func (r *CredentialRepository) Create(ctx context.Context, cred *auth.Credential) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	query := `
		INSERT INTO credentials (email, password_hash)
		VALUES ($1, $2)
		RETURNING id, created_at, updated_at
	`

	err = tx.QueryRow(ctx, query, cred.Email, cred.PasswordHash).
		Scan(&cred.ID, &cred.CreatedAt, &cred.UpdatedAt)
	if isUniqueViolation(err) {
		return xerrors.ErrDuplicateEntry
	}
	if err != nil {
		return fmt.Errorf("failed to create credential: %w", err)
	}

	for _, role := range cred.Roles {
		if _, err := tx.Exec(ctx,
			`INSERT INTO credential_roles (credential_id, role_id) VALUES ($1, $2)`,
			cred.ID, role.ID,
		); err != nil {
			return fmt.Errorf("failed to link role: %w", err)
		}
	}

	return tx.Commit(ctx)
}

// UpdatePassword persists a new password hash
func (r *CredentialRepository) UpdatePassword(ctx context.Context, id int64, passwordHash string) error {
	query := `
		UPDATE credentials
		SET password_hash = $1, updated_at = NOW()
		WHERE id = $2
	`

	tag, err := r.db.Exec(ctx, query, passwordHash, id)
	if err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return xerrors.ErrUserNotFound
	}
	return nil
}

// ReplaceRoles swaps the credential's role set atomically
func (r *CredentialRepository) ReplaceRoles(ctx context.Context, id int64, roles []auth.Role) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `DELETE FROM credential_roles WHERE credential_id = $1`, id); err != nil {
		return fmt.Errorf("failed to clear roles: %w", err)
	}

	for _, role := range roles {
		if _, err := tx.Exec(ctx,
			`INSERT INTO credential_roles (credential_id, role_id) VALUES ($1, $2)`,
			id, role.ID,
		); err != nil {
			return fmt.Errorf("failed to link role: %w", err)
		}
	}

	if _, err := tx.Exec(ctx, `UPDATE credentials SET updated_at = NOW() WHERE id = $1`, id); err != nil {
		return fmt.Errorf("failed to touch credential: %w", err)
	}

	return tx.Commit(ctx)
}

func (r *CredentialRepository) rolesFor(ctx context.Context, credentialID int64) ([]auth.Role, error) {
	query := `
		SELECT r.id, r.name, r.created_at
		FROM roles r
		JOIN credential_roles cr ON cr.role_id = r.id
		WHERE cr.credential_id = $1
		ORDER BY r.name
	`

	rows, err := r.db.Query(ctx, query, credentialID)
	if err != nil {
		return nil, fmt.Errorf("failed to load roles: %w", err)
	}
	defer rows.Close()

	var roles []auth.Role
	for rows.Next() {
		var role auth.Role
		if err := rows.Scan(&role.ID, &role.Name, &role.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan role: %w", err)
		}
		roles = append(roles, role)
	}
	return roles, rows.Err()
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

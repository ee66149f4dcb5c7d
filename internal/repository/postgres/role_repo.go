// internal/repository/postgres/role_repo.go
package postgres

import (
	"context"
	"fmt"

	"authguard-service/internal/domain/auth"
	xerrors "authguard-service/internal/pkg/errors"

	"github.com/jackc/pgx/v5/pgxpool"
)

type RoleRepository struct {
	db *pgxpool.Pool
}

func NewRoleRepository(db *pgxpool.Pool) *RoleRepository {
	return &RoleRepository{db: db}
}

// FindByNames resolves role names to role rows. Names without a matching row
// are silently absent from the result.
func (r *RoleRepository) FindByNames(ctx context.Context, names []string) ([]auth.Role, error) {
	query := `
		SELECT id, name, created_at
		FROM roles
		WHERE name = ANY($1)
		ORDER BY name
	`

	rows, err := r.db.Query(ctx, query, names)
	if err != nil {
		return nil, fmt.Errorf("failed to find roles: %w", err)
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

// FindAll returns every role
func (r *RoleRepository) FindAll(ctx context.Context) ([]auth.Role, error) {
	query := `SELECT id, name, created_at FROM roles ORDER BY name`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list roles: %w", err)
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

// Create inserts a new role
func (r *RoleRepository) Create(ctx context.Context, role *auth.Role) error {
	query := `
		INSERT INTO roles (name)
		VALUES ($1)
		RETURNING id, created_at
	`

	err := r.db.QueryRow(ctx, query, role.Name).Scan(&role.ID, &role.CreatedAt)
	if isUniqueViolation(err) {
		return xerrors.ErrDuplicateEntry
	}
	if err != nil {
		return fmt.Errorf("failed to create role: %w", err)
	}
	return nil
}

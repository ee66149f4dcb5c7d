// internal/service/role/role.go
package role

import (
	"context"
	"fmt"
	"regexp"

	"authguard-service/internal/domain/auth"
	xerrors "authguard-service/internal/pkg/errors"

	"go.uber.org/zap"
)

// Role names double as authorization-capability strings, so their shape is
// locked down.
var roleNamePattern = regexp.MustCompile(`^[A-Z_]{1,30}$`)

// RoleStore is the repository surface needed by the role service.
type RoleStore interface {
	FindByNames(ctx context.Context, names []string) ([]auth.Role, error)
	FindAll(ctx context.Context) ([]auth.Role, error)
	Create(ctx context.Context, role *auth.Role) error
}

type RoleService struct {
	roles  RoleStore
	logger *zap.Logger
}

func NewRoleService(roles RoleStore, logger *zap.Logger) *RoleService {
	return &RoleService{roles: roles, logger: logger}
}

// Create validates the name and inserts a new role.
func (s *RoleService) Create(ctx context.Context, name string) (*auth.Role, error) {
	if !roleNamePattern.MatchString(name) {
		return nil, fmt.Errorf("%w: role name must match %s", xerrors.ErrInvalidInput, roleNamePattern)
	}

	role := &auth.Role{Name: name}
	if err := s.roles.Create(ctx, role); err != nil {
		return nil, err
	}

	s.logger.Info("role created", zap.String("name", role.Name), zap.Int64("role_id", role.ID))
	return role, nil
}

// List returns every role.
func (s *RoleService) List(ctx context.Context) ([]auth.Role, error) {
	return s.roles.FindAll(ctx)
}

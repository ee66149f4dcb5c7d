package role

import (
	"context"
	"errors"
	"testing"

	"authguard-service/internal/domain/auth"
	xerrors "authguard-service/internal/pkg/errors"

	"go.uber.org/zap"
)

type memRoleStore struct {
	nextID int64
	roles  []auth.Role
}

func (m *memRoleStore) FindByNames(ctx context.Context, names []string) ([]auth.Role, error) {
	var out []auth.Role
	for _, r := range m.roles {
		for _, n := range names {
			if r.Name == n {
				out = append(out, r)
			}
		}
	}
	return out, nil
}

func (m *memRoleStore) FindAll(ctx context.Context) ([]auth.Role, error) {
	return m.roles, nil
}

func (m *memRoleStore) Create(ctx context.Context, role *auth.Role) error {
	for _, r := range m.roles {
		if r.Name == role.Name {
			return xerrors.ErrDuplicateEntry
		}
	}
	m.nextID++
	role.ID = m.nextID
	m.roles = append(m.roles, *role)
	return nil
}

func TestCreateValidatesName(t *testing.T) {
	svc := NewRoleService(&memRoleStore{}, zap.NewNop())

	valid := []string{"ADMIN", "USER", "USERMANAGER_WRITE", "A"}
	for _, name := range valid {
		if _, err := svc.Create(context.Background(), name); err != nil {
			t.Errorf("Create(%q): %v", name, err)
		}
	}

	invalid := []string{"", "admin", "ADMIN1", "ROLE-X", "WAY_TOO_LONG_ROLE_NAME_OVER_THIRTY_CHARS"}
	for _, name := range invalid {
		if _, err := svc.Create(context.Background(), name); !errors.Is(err, xerrors.ErrInvalidInput) {
			t.Errorf("Create(%q): err = %v, want ErrInvalidInput", name, err)
		}
	}
}

func TestCreateDuplicate(t *testing.T) {
	svc := NewRoleService(&memRoleStore{}, zap.NewNop())

	if _, err := svc.Create(context.Background(), "ADMIN"); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.Create(context.Background(), "ADMIN"); !errors.Is(err, xerrors.ErrDuplicateEntry) {
		t.Fatalf("err = %v, want ErrDuplicateEntry", err)
	}
}

func TestList(t *testing.T) {
	store := &memRoleStore{}
	svc := NewRoleService(store, zap.NewNop())

	for _, name := range []string{"ADMIN", "USER"} {
		if _, err := svc.Create(context.Background(), name); err != nil {
			t.Fatal(err)
		}
	}

	roles, err := svc.List(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if len(roles) != 2 {
		t.Fatalf("roles = %d, want 2", len(roles))
	}
}

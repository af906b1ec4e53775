package memory

import (
	"context"
	"strings"
	"sync"

	"github.com/quizhub/accounts/internal/domain/role"
)

// RolesRepo holds the role catalog in memory, seeded like the DB one.
type RolesRepo struct {
	mu    sync.RWMutex
	roles []role.Role
}

// NewRolesRepo seeds the fixed system catalog.
func NewRolesRepo() *RolesRepo {
	r := &RolesRepo{}

	for i, name := range role.SystemRoles() {
		r.roles = append(r.roles, role.Role{ID: int64(i + 1), Name: name})
	}

	return r
}

func (r *RolesRepo) GetByName(_ context.Context, name string) (role.Role, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, rl := range r.roles {
		if strings.EqualFold(rl.Name, name) {
			return rl, nil
		}
	}

	return role.Role{}, role.ErrNotFound
}

func (r *RolesRepo) GetByID(_ context.Context, id int64) (role.Role, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, rl := range r.roles {
		if rl.ID == id {
			return rl, nil
		}
	}

	return role.Role{}, role.ErrNotFound
}

func (r *RolesRepo) List(_ context.Context) ([]role.Role, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]role.Role, len(r.roles))
	copy(out, r.roles)

	return out, nil
}

package memory

import (
	"context"
	"sync"

	"github.com/quizhub/accounts/internal/domain/user"
)

// UsersRepo is an in-memory user store with the same contract as the
// postgres one. Used by tests and local development without a database.
// Reads resolve the role through the linked roles repo, mirroring the
// join the postgres store performs.
type UsersRepo struct {
	mu     sync.RWMutex
	roles  *RolesRepo
	nextID int64
	users  map[int64]user.User
}

func NewUsersRepo(roles *RolesRepo) *UsersRepo {
	return &UsersRepo{
		roles:  roles,
		nextID: 1,
		users:  make(map[int64]user.User),
	}
}

func (r *UsersRepo) withRole(u user.User) user.User {
	if u.RoleID == nil || r.roles == nil {
		return u
	}

	if rl, err := r.roles.GetByID(context.Background(), *u.RoleID); err == nil {
		u.Role = &rl
	}

	return u
}

func (r *UsersRepo) GetByEmail(_ context.Context, email string) (user.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, u := range r.users {
		// exact match, like the DB index
		if u.Email == email {
			return r.withRole(u), nil
		}
	}

	return user.User{}, user.ErrNotFound
}

func (r *UsersRepo) GetByID(_ context.Context, id int64) (user.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	u, ok := r.users[id]

	if !ok {
		return user.User{}, user.ErrNotFound
	}

	return r.withRole(u), nil
}

func (r *UsersRepo) Create(_ context.Context, u user.User) (user.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, existing := range r.users {
		if existing.Email == u.Email {
			return user.User{}, user.ErrDuplicateEmail
		}
	}

	u.ID = r.nextID
	r.nextID++
	r.users[u.ID] = u

	return u, nil
}

func (r *UsersRepo) UpdateRole(_ context.Context, userID, roleID int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.users[userID]

	if !ok {
		return user.ErrNotFound
	}

	u.RoleID = &roleID
	u.Role = nil // resolved on read via withRole
	r.users[userID] = u

	return nil
}

func (r *UsersRepo) List(_ context.Context) ([]user.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]user.User, 0, len(r.users))

	for id := int64(1); id < r.nextID; id++ {
		if u, ok := r.users[id]; ok {
			out = append(out, r.withRole(u))
		}
	}

	return out, nil
}

package user

import (
	"errors"
	"time"

	"github.com/quizhub/accounts/internal/domain/role"
)

var (
	ErrNotFound       = errors.New("user not found")
	ErrDuplicateEmail = errors.New("email already in use")
)

type User struct {
	ID           int64      `json:"id"`
	IsAnonymous  bool       `json:"isAnonymous"`
	CreatedAt    time.Time  `json:"createdAt"`
	Name         string     `json:"name"`
	Email        string     `json:"email"`
	PasswordHash string     `json:"-"` // never expose hash in JSON
	DateOfBirth  *time.Time `json:"dateOfBirth,omitempty"`
	RoleID       *int64     `json:"roleId,omitempty"`
	Role         *role.Role `json:"role,omitempty"`
}

// RoleName returns the name of the attached role, or "" when no role is set.
func (u User) RoleName() string {
	if u.Role == nil {
		return ""
	}
	return u.Role.Name
}

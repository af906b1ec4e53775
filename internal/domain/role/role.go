package role

import "errors"

var ErrNotFound = errors.New("role not found")

type Role struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// Fixed catalog of system roles, seeded at startup.
const (
	Admin     = "admin"
	Creator   = "creator"
	Analytics = "analytics"
	Player    = "player"
)

// SystemRoles lists every role the service seeds and accepts.
// Name comparisons against the catalog are case-insensitive everywhere.
func SystemRoles() []string {
	return []string{Admin, Creator, Analytics, Player}
}

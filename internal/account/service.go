package account

import (
	"context"
	"errors"
	"time"

	"github.com/quizhub/accounts/internal/domain/role"
	"github.com/quizhub/accounts/internal/domain/user"
)

// Rendered in place of a role name when a user row has no role attached.
// Registration always attaches a role, so seeing this in a listing means
// the row predates the invariant or was touched outside the service.
const RoleUnassigned = "unassigned"

// Keep these interfaces small so tests can fake them easily.

type UserStore interface {
	// GetByEmail matches the email exactly as stored and loads the role.
	GetByEmail(ctx context.Context, email string) (user.User, error)
	// GetByID loads the user with its role.
	GetByID(ctx context.Context, id int64) (user.User, error)
	// Create persists a new user and returns it with the assigned id.
	Create(ctx context.Context, u user.User) (user.User, error)
	UpdateRole(ctx context.Context, userID, roleID int64) error
	List(ctx context.Context) ([]user.User, error)
}

type RoleStore interface {
	// GetByName resolves a role name case-insensitively against the catalog.
	GetByName(ctx context.Context, name string) (role.Role, error)
}

type PasswordHasher interface {
	Hash(plain string) (string, error)
	Verify(plain, hash string) bool
}

type TokenIssuer interface {
	Issue(u user.User) (string, error)
}

// Accounts is the surface the HTTP layer consumes. The instrumented
// decorator implements it as well.
type Accounts interface {
	Register(ctx context.Context, req RegisterRequest, roleName string) (RegisterResult, error)
	Login(ctx context.Context, email, password string) (LoginResult, error)
	ListUsers(ctx context.Context) ([]UserView, error)
	AssignRole(ctx context.Context, userID int64, roleName string) (AssignRoleResult, error)
}

// Service owns the write path to user and role records.
type Service struct {
	users  UserStore
	roles  RoleStore
	hasher PasswordHasher
	issuer TokenIssuer
}

func NewService(users UserStore, roles RoleStore, hasher PasswordHasher, issuer TokenIssuer) *Service {
	return &Service{
		users:  users,
		roles:  roles,
		hasher: hasher,
		issuer: issuer,
	}
}

// Register creates a new user with the given role. The duplicate-email
// check runs before role resolution so that the duplicate outcome wins
// when both conditions hold; neither failure writes anything. The unique
// index on email remains the authoritative guard under concurrency, so a
// duplicate slipping past the fast-path check still comes back as
// UserAlreadyExists from the insert.
func (s *Service) Register(ctx context.Context, req RegisterRequest, roleName string) (RegisterResult, error) {
	_, err := s.users.GetByEmail(ctx, req.Email)

	if err == nil {
		return registerFailure(ReasonUserAlreadyExists), nil
	}

	if !errors.Is(err, user.ErrNotFound) {
		return registerFailure(ReasonUnknown), err
	}

	r, err := s.roles.GetByName(ctx, roleName)

	if err != nil {
		if errors.Is(err, role.ErrNotFound) {
			return registerFailure(ReasonInvalidRole), nil
		}
		return registerFailure(ReasonUnknown), err
	}

	hash, err := s.hasher.Hash(req.Password)

	if err != nil {
		return registerFailure(ReasonUnknown), err
	}

	newUser := user.User{
		Name:         req.Name,
		Email:        req.Email,
		PasswordHash: hash,
		DateOfBirth:  req.DateOfBirth,
		CreatedAt:    time.Now().UTC(),
		RoleID:       &r.ID,
		Role:         &r,
	}

	_, err = s.users.Create(ctx, newUser)

	if err != nil {
		if errors.Is(err, user.ErrDuplicateEmail) {
			return registerFailure(ReasonUserAlreadyExists), nil
		}
		return registerFailure(ReasonUnknown), err
	}

	return RegisterResult{OK: true}, nil
}

// Login verifies credentials and issues a signed token. Unknown email and
// wrong password yield the same outcome so callers cannot probe for
// registered addresses.
func (s *Service) Login(ctx context.Context, email, password string) (LoginResult, error) {
	u, err := s.users.GetByEmail(ctx, email)

	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			return loginFailure(ReasonInvalidCredentials), nil
		}
		return loginFailure(ReasonUnknown), err
	}

	if !s.hasher.Verify(password, u.PasswordHash) {
		return loginFailure(ReasonInvalidCredentials), nil
	}

	token, err := s.issuer.Issue(u)

	if err != nil {
		return loginFailure(ReasonUnknown), err
	}

	return LoginResult{OK: true, Token: token}, nil
}

// ListUsers returns every user with the role resolved to its name. A row
// without a role renders the explicit unassigned marker instead of
// failing the whole listing.
func (s *Service) ListUsers(ctx context.Context) ([]UserView, error) {
	users, err := s.users.List(ctx)

	if err != nil {
		return nil, err
	}

	views := make([]UserView, 0, len(users))

	for _, u := range users {
		roleName := u.RoleName()

		if roleName == "" {
			roleName = RoleUnassigned
		}

		views = append(views, UserView{
			ID:          u.ID,
			IsAnonymous: u.IsAnonymous,
			CreatedAt:   u.CreatedAt,
			Name:        u.Name,
			Email:       u.Email,
			DateOfBirth: u.DateOfBirth,
			Role:        roleName,
		})
	}

	return views, nil
}

// AssignRole moves an existing user to another catalog role. The prior
// role stays in place on any failure.
func (s *Service) AssignRole(ctx context.Context, userID int64, roleName string) (AssignRoleResult, error) {
	u, err := s.users.GetByID(ctx, userID)

	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			return assignRoleFailure(ReasonUserNotFound), nil
		}
		return assignRoleFailure(ReasonUnknown), err
	}

	r, err := s.roles.GetByName(ctx, roleName)

	if err != nil {
		if errors.Is(err, role.ErrNotFound) {
			return assignRoleFailure(ReasonInvalidRole), nil
		}
		return assignRoleFailure(ReasonUnknown), err
	}

	err = s.users.UpdateRole(ctx, u.ID, r.ID)

	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			return assignRoleFailure(ReasonUserNotFound), nil
		}
		return assignRoleFailure(ReasonUnknown), err
	}

	return AssignRoleResult{OK: true}, nil
}

package account

import "time"

// FailureReason tags the expected, recoverable business outcomes of the
// account operations. Infrastructure faults travel as plain errors instead.
type FailureReason string

const (
	ReasonNone               FailureReason = ""
	ReasonUserAlreadyExists  FailureReason = "user_already_exists"
	ReasonInvalidRole        FailureReason = "invalid_role"
	ReasonUserNotFound       FailureReason = "user_not_found"
	ReasonInvalidCredentials FailureReason = "invalid_credentials"
	ReasonUnknown            FailureReason = "unknown_error"
)

type RegisterRequest struct {
	Name        string
	Email       string
	Password    string
	DateOfBirth *time.Time
}

type RegisterResult struct {
	OK     bool
	Reason FailureReason
}

type LoginResult struct {
	OK     bool
	Token  string
	Reason FailureReason
}

type AssignRoleResult struct {
	OK     bool
	Reason FailureReason
}

// UserView is the listing projection with the role resolved to its name.
type UserView struct {
	ID          int64      `json:"id"`
	IsAnonymous bool       `json:"isAnonymous"`
	CreatedAt   time.Time  `json:"createdAt"`
	Name        string     `json:"name"`
	Email       string     `json:"email"`
	DateOfBirth *time.Time `json:"dateOfBirth,omitempty"`
	Role        string     `json:"role"`
}

func registerFailure(reason FailureReason) RegisterResult {
	return RegisterResult{OK: false, Reason: reason}
}

func loginFailure(reason FailureReason) LoginResult {
	return LoginResult{OK: false, Reason: reason}
}

func assignRoleFailure(reason FailureReason) AssignRoleResult {
	return AssignRoleResult{OK: false, Reason: reason}
}

package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/quizhub/accounts/internal/account"
	"github.com/quizhub/accounts/internal/config"
	"github.com/quizhub/accounts/internal/domain/role"
)

type AuthHandler struct {
	accounts account.Accounts
}

func NewAuthHandler(accounts account.Accounts) *AuthHandler {
	return &AuthHandler{accounts: accounts}
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type RegisterRequest struct {
	Name            string     `json:"name" binding:"required"`
	Email           string     `json:"email" binding:"required,email"`
	Password        string     `json:"password" binding:"required,min=8"`
	ConfirmPassword string     `json:"confirmPassword" binding:"required,eqfield=Password"`
	DateOfBirth     *time.Time `json:"dateOfBirth,omitempty"`
}

func (req RegisterRequest) toCore() account.RegisterRequest {
	return account.RegisterRequest{
		Name:        req.Name,
		Email:       req.Email,
		Password:    req.Password,
		DateOfBirth: req.DateOfBirth,
	}
}

func (h *AuthHandler) Login(ctx *gin.Context) {
	var req LoginRequest

	if !BindJSON(ctx, &req) {
		return
	}

	cctx, cancel := config.WithTimeout(3 * time.Second)
	defer cancel()

	res, err := h.accounts.Login(cctx, req.Email, req.Password)

	if err != nil {
		RespondInternal(ctx, "Could not log in")
		return
	}

	if !res.OK {
		// unknown email and wrong password are deliberately the same answer
		RespondUnAuthorized(ctx, "invalid_credentials", "Email or password is incorrect.")
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"accessToken": res.Token,
	})
}

// Register creates an account with the default player role.
func (h *AuthHandler) Register(ctx *gin.Context) {
	var req RegisterRequest

	if !BindJSON(ctx, &req) {
		return
	}

	cctx, cancel := config.WithTimeout(5 * time.Second)
	defer cancel()

	res, err := h.accounts.Register(cctx, req.toCore(), role.Player)

	if err != nil {
		RespondInternal(ctx, "Could not create user")
		return
	}

	if !res.OK {
		respondRegisterFailure(ctx, res.Reason)
		return
	}

	ctx.JSON(http.StatusCreated, gin.H{
		"message": "Registration successful.",
	})
}

func respondRegisterFailure(ctx *gin.Context, reason account.FailureReason) {
	switch reason {
	case account.ReasonUserAlreadyExists:
		RespondConflict(ctx, "email_taken", "An account with this email already exists.")
	case account.ReasonInvalidRole:
		RespondBadRequest(ctx, "invalid_role", "The role provided is invalid.", nil)
	default:
		RespondInternal(ctx, "Registration failed.")
	}
}

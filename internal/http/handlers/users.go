package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/quizhub/accounts/internal/account"
	"github.com/quizhub/accounts/internal/config"
)

// UsersHandler serves the admin-only user management endpoints.
type UsersHandler struct {
	accounts account.Accounts
}

func NewUsersHandler(accounts account.Accounts) *UsersHandler {
	return &UsersHandler{accounts: accounts}
}

type CreateUserRequest struct {
	RegisterRequest
	Role string `json:"role" binding:"required"`
}

type AssignRoleRequest struct {
	Role string `json:"role" binding:"required"`
}

func (h *UsersHandler) ListUsers(ctx *gin.Context) {
	cctx, cancel := config.WithTimeout(5 * time.Second)
	defer cancel()

	views, err := h.accounts.ListUsers(cctx)

	if err != nil {
		RespondInternal(ctx, "Could not list users")
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"users": views,
	})
}

// CreateUser registers a new account with an admin-chosen role.
func (h *UsersHandler) CreateUser(ctx *gin.Context) {
	var req CreateUserRequest

	if !BindJSON(ctx, &req) {
		return
	}

	cctx, cancel := config.WithTimeout(5 * time.Second)
	defer cancel()

	res, err := h.accounts.Register(cctx, req.toCore(), req.Role)

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

func (h *UsersHandler) AssignRole(ctx *gin.Context) {
	userID, err := strconv.ParseInt(ctx.Param("id"), 10, 64)

	if err != nil {
		RespondBadRequest(ctx, "invalid_request", "User id must be a number", nil)
		return
	}

	var req AssignRoleRequest

	if !BindJSON(ctx, &req) {
		return
	}

	cctx, cancel := config.WithTimeout(3 * time.Second)
	defer cancel()

	res, err := h.accounts.AssignRole(cctx, userID, req.Role)

	if err != nil {
		RespondInternal(ctx, "Could not assign role")
		return
	}

	if !res.OK {
		switch res.Reason {
		case account.ReasonUserNotFound:
			RespondNotFound(ctx, "user_not_found", "No user with that id.")
		case account.ReasonInvalidRole:
			RespondBadRequest(ctx, "invalid_role", "The role provided is invalid.", nil)
		default:
			RespondInternal(ctx, "Could not assign role")
		}
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"message": "Role update successful.",
	})
}

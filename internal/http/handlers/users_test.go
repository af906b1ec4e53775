package handlers_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"testing"

	"github.com/quizhub/accounts/internal/account"
	"github.com/quizhub/accounts/internal/http/handlers"
)

func TestListUsersHandler(t *testing.T) {
	t.Run("returns the user views", func(t *testing.T) {
		fake := &fakeAccounts{
			listUsersFn: func(context.Context) ([]account.UserView, error) {
				return []account.UserView{
					{ID: 1, Name: "Root", Email: "root@x.com", Role: "admin"},
					{ID: 2, Name: "Ghost", Email: "ghost@x.com", Role: account.RoleUnassigned},
				}, nil
			},
		}

		h := handlers.NewUsersHandler(fake)
		r := setupRouter(http.MethodGet, "/users", h.ListUsers)

		w := doJSON(t, r, http.MethodGet, "/users", "")

		if w.Code != http.StatusOK {
			t.Fatalf("status = %d, want 200 (body %s)", w.Code, w.Body.String())
		}

		var payload struct {
			Users []account.UserView `json:"users"`
		}

		if err := json.Unmarshal(w.Body.Bytes(), &payload); err != nil {
			t.Fatalf("could not decode body: %v", err)
		}

		if len(payload.Users) != 2 {
			t.Fatalf("got %d users, want 2", len(payload.Users))
		}

		if payload.Users[1].Role != account.RoleUnassigned {
			t.Fatalf("roleless user listed as %q", payload.Users[1].Role)
		}
	})

	t.Run("store failure maps to 500", func(t *testing.T) {
		fake := &fakeAccounts{
			listUsersFn: func(context.Context) ([]account.UserView, error) {
				return nil, errors.New("connection refused")
			},
		}

		h := handlers.NewUsersHandler(fake)
		r := setupRouter(http.MethodGet, "/users", h.ListUsers)

		w := doJSON(t, r, http.MethodGet, "/users", "")

		if w.Code != http.StatusInternalServerError {
			t.Fatalf("status = %d, want 500", w.Code)
		}
	})
}

func TestCreateUserHandler(t *testing.T) {
	t.Run("passes the chosen role to the core", func(t *testing.T) {
		var gotRole string

		fake := &fakeAccounts{
			registerFn: func(_ context.Context, req account.RegisterRequest, roleName string) (account.RegisterResult, error) {
				gotRole = roleName
				return account.RegisterResult{OK: true}, nil
			},
		}

		h := handlers.NewUsersHandler(fake)
		r := setupRouter(http.MethodPost, "/users", h.CreateUser)

		body := `{"name":"Cleo","email":"cleo@x.com","password":"p@ss1234","confirmPassword":"p@ss1234","role":"creator"}`
		w := doJSON(t, r, http.MethodPost, "/users", body)

		if w.Code != http.StatusCreated {
			t.Fatalf("status = %d, want 201 (body %s)", w.Code, w.Body.String())
		}

		if gotRole != "creator" {
			t.Fatalf("role = %q, want creator", gotRole)
		}
	})

	t.Run("missing role rejected at binding", func(t *testing.T) {
		h := handlers.NewUsersHandler(&fakeAccounts{})
		r := setupRouter(http.MethodPost, "/users", h.CreateUser)

		body := `{"name":"Cleo","email":"cleo@x.com","password":"p@ss1234","confirmPassword":"p@ss1234"}`
		w := doJSON(t, r, http.MethodPost, "/users", body)

		if w.Code != http.StatusBadRequest {
			t.Fatalf("status = %d, want 400", w.Code)
		}
	})

	t.Run("unknown role maps to 400", func(t *testing.T) {
		fake := &fakeAccounts{
			registerFn: func(context.Context, account.RegisterRequest, string) (account.RegisterResult, error) {
				return account.RegisterResult{OK: false, Reason: account.ReasonInvalidRole}, nil
			},
		}

		h := handlers.NewUsersHandler(fake)
		r := setupRouter(http.MethodPost, "/users", h.CreateUser)

		body := `{"name":"Cleo","email":"cleo@x.com","password":"p@ss1234","confirmPassword":"p@ss1234","role":"superadmin"}`
		w := doJSON(t, r, http.MethodPost, "/users", body)

		if w.Code != http.StatusBadRequest {
			t.Fatalf("status = %d, want 400", w.Code)
		}

		if got := errorCode(t, w.Body.Bytes()); got != "invalid_role" {
			t.Fatalf("error code = %q, want invalid_role", got)
		}
	})
}

func TestAssignRoleHandler(t *testing.T) {
	tests := []struct {
		name       string
		path       string
		body       string
		assign     func(ctx context.Context, userID int64, roleName string) (account.AssignRoleResult, error)
		wantStatus int
		wantCode   string
	}{
		{
			name: "success",
			path: "/users/7/role",
			body: `{"role":"analytics"}`,
			assign: func(_ context.Context, userID int64, roleName string) (account.AssignRoleResult, error) {
				if userID != 7 || roleName != "analytics" {
					return account.AssignRoleResult{}, errors.New("unexpected arguments")
				}
				return account.AssignRoleResult{OK: true}, nil
			},
			wantStatus: http.StatusOK,
		},
		{
			name: "unknown user maps to 404",
			path: "/users/9999/role",
			body: `{"role":"player"}`,
			assign: func(context.Context, int64, string) (account.AssignRoleResult, error) {
				return account.AssignRoleResult{OK: false, Reason: account.ReasonUserNotFound}, nil
			},
			wantStatus: http.StatusNotFound,
			wantCode:   "user_not_found",
		},
		{
			name: "unknown role maps to 400",
			path: "/users/7/role",
			body: `{"role":"superadmin"}`,
			assign: func(context.Context, int64, string) (account.AssignRoleResult, error) {
				return account.AssignRoleResult{OK: false, Reason: account.ReasonInvalidRole}, nil
			},
			wantStatus: http.StatusBadRequest,
			wantCode:   "invalid_role",
		},
		{
			name:       "non numeric id rejected",
			path:       "/users/abc/role",
			body:       `{"role":"player"}`,
			wantStatus: http.StatusBadRequest,
			wantCode:   "invalid_request",
		},
		{
			name:       "missing role rejected at binding",
			path:       "/users/7/role",
			body:       `{}`,
			wantStatus: http.StatusBadRequest,
			wantCode:   "invalid_request",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			fake := &fakeAccounts{
				assignRoleFn: func(ctx context.Context, userID int64, roleName string) (account.AssignRoleResult, error) {
					if tc.assign == nil {
						t.Fatalf("core must not be reached")
					}
					return tc.assign(ctx, userID, roleName)
				},
			}

			h := handlers.NewUsersHandler(fake)
			r := setupRouter(http.MethodPut, "/users/:id/role", h.AssignRole)

			w := doJSON(t, r, http.MethodPut, tc.path, tc.body)

			if w.Code != tc.wantStatus {
				t.Fatalf("status = %d, want %d (body %s)", w.Code, tc.wantStatus, w.Body.String())
			}

			if tc.wantCode != "" {
				if got := errorCode(t, w.Body.Bytes()); got != tc.wantCode {
					t.Fatalf("error code = %q, want %q", got, tc.wantCode)
				}
			}
		})
	}
}

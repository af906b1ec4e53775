package middlewares_test

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/quizhub/accounts/internal/auth"
	"github.com/quizhub/accounts/internal/domain/role"
	"github.com/quizhub/accounts/internal/domain/user"
	"github.com/quizhub/accounts/internal/http/middlewares"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type fakeVerifier struct {
	claims *auth.Claims
	err    error
}

func (f *fakeVerifier) Verify(string) (*auth.Claims, error) {
	return f.claims, f.err
}

func protectedRouter(v middlewares.TokenVerifier, requiredRole string) *gin.Engine {
	m := middlewares.NewAuthMiddleware(v)

	r := gin.New()

	chain := []gin.HandlerFunc{m.RequireAuth()}
	if requiredRole != "" {
		chain = append(chain, m.RequireRole(requiredRole))
	}

	chain = append(chain, func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})

	r.GET("/protected", chain...)

	return r
}

func get(r *gin.Engine, authHeader string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	return w
}

func adminClaims() *auth.Claims {
	return &auth.Claims{Name: "Root", Email: "root@x.com", Role: "admin"}
}

func TestRequireAuth(t *testing.T) {
	tests := []struct {
		name       string
		header     string
		verifier   *fakeVerifier
		wantStatus int
	}{
		{
			name:       "missing header",
			header:     "",
			verifier:   &fakeVerifier{claims: adminClaims()},
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:       "wrong scheme",
			header:     "Basic abc123",
			verifier:   &fakeVerifier{claims: adminClaims()},
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:       "empty token",
			header:     "Bearer ",
			verifier:   &fakeVerifier{claims: adminClaims()},
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:       "verifier rejects token",
			header:     "Bearer bad.token.here",
			verifier:   &fakeVerifier{err: errors.New("signature invalid")},
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:       "valid token passes through",
			header:     "Bearer good.token.here",
			verifier:   &fakeVerifier{claims: adminClaims()},
			wantStatus: http.StatusOK,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			r := protectedRouter(tc.verifier, "")

			w := get(r, tc.header)

			if w.Code != tc.wantStatus {
				t.Fatalf("status = %d, want %d (body %s)", w.Code, tc.wantStatus, w.Body.String())
			}
		})
	}
}

func TestRequireRole(t *testing.T) {
	tests := []struct {
		name       string
		tokenRole  string
		required   string
		wantStatus int
	}{
		{"exact match", "admin", "admin", http.StatusOK},
		{"case insensitive match", "Admin", "admin", http.StatusOK},
		{"wrong role is forbidden", "player", "admin", http.StatusForbidden},
		{"empty role is unauthorized", "", "admin", http.StatusUnauthorized},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			claims := adminClaims()
			claims.Role = tc.tokenRole

			r := protectedRouter(&fakeVerifier{claims: claims}, tc.required)

			w := get(r, "Bearer good.token.here")

			if w.Code != tc.wantStatus {
				t.Fatalf("status = %d, want %d (body %s)", w.Code, tc.wantStatus, w.Body.String())
			}
		})
	}
}

// RequireRole behind a real signed token, end to end through the manager.
func TestRequireRoleWithRealTokens(t *testing.T) {
	m := auth.NewManager("secret", "iss", "aud", 30*time.Minute)

	token, err := m.Issue(user.User{
		ID:    1,
		Name:  "Root",
		Email: "root@x.com",
		Role:  &role.Role{ID: 1, Name: "admin"},
	})

	if err != nil {
		t.Fatalf("Issue returned error: %v", err)
	}

	r := protectedRouter(m, "admin")

	if w := get(r, "Bearer "+token); w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200 (body %s)", w.Code, w.Body.String())
	}

	if w := get(r, "Bearer "+token+"tampered"); w.Code != http.StatusUnauthorized {
		t.Fatalf("tampered token: status = %d, want 401", w.Code)
	}
}

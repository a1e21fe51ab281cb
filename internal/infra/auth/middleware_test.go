package auth

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xela07ax/taskhub/internal/domain"
	"go.uber.org/zap"
)

type fakeValidator struct {
	claims *domain.Claims
	err    error
	got    string
}

func (f *fakeValidator) VerifyToken(tokenStr string) (*domain.Claims, error) {
	f.got = tokenStr
	return f.claims, f.err
}

func TestMiddleware_PutsPrincipal(t *testing.T) {
	v := &fakeValidator{claims: &domain.Claims{
		Groups:           []string{"user"},
		RegisteredClaims: jwt.RegisteredClaims{Subject: "alice"},
	}}

	var got domain.Principal
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		p, ok := PrincipalFromContext(r.Context())
		require.True(t, ok)
		got = p
		w.WriteHeader(http.StatusNoContent)
	})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer abc")
	rec := httptest.NewRecorder()
	NewMiddleware(v, zap.NewNop())(next).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "Bearer abc", v.got)
	assert.Equal(t, domain.Principal{Name: "alice", Groups: []string{"user"}}, got)
}

func TestMiddleware_Unauthorized(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("next must not be called")
	})

	t.Run("no header", func(t *testing.T) {
		rec := httptest.NewRecorder()
		NewMiddleware(&fakeValidator{}, zap.NewNop())(next).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("invalid token", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Bearer bad")
		rec := httptest.NewRecorder()
		NewMiddleware(&fakeValidator{err: errors.New("expired")}, zap.NewNop())(next).ServeHTTP(rec, req)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}

func TestRequireRole(t *testing.T) {
	ok := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	tests := []struct {
		name      string
		principal *domain.Principal
		want      int
	}{
		{"no principal", nil, http.StatusUnauthorized},
		{"missing role", &domain.Principal{Name: "u", Groups: []string{"user"}}, http.StatusForbidden},
		{"has role", &domain.Principal{Name: "a", Groups: []string{"admin", "user"}}, http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.principal != nil {
				req = req.WithContext(WithPrincipal(req.Context(), *tt.principal))
			}
			rec := httptest.NewRecorder()
			RequireRole(domain.RoleAdmin)(ok).ServeHTTP(rec, req)
			assert.Equal(t, tt.want, rec.Code)
		})
	}
}

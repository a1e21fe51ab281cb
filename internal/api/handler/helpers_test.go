package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"
	"github.com/xela07ax/taskhub/internal/api/service"
	"github.com/xela07ax/taskhub/internal/domain"
	"github.com/xela07ax/taskhub/internal/infra"
	"github.com/xela07ax/taskhub/internal/infra/auth"
	"github.com/xela07ax/taskhub/internal/infra/notify"
	"github.com/xela07ax/taskhub/internal/repository/memory"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

type stubIssuer struct{}

func (stubIssuer) Issue(subject string, _ []string) (string, error) {
	return "token-for-" + subject, nil
}

type env struct {
	store   *memory.Store
	users   *service.UserService
	auth    *AuthHandler
	user    *UserHandler
	project *ProjectHandler
	task    *TaskHandler
}

func newEnv(t *testing.T) *env {
	t.Helper()
	log := zap.NewNop()
	metrics := infra.NewMetrics(nil)
	store := memory.New()
	hasher := auth.NewBcryptHasher(bcrypt.MinCost)

	users := service.NewUserService(store, hasher, notify.Noop{}, metrics, log)
	authSvc, err := service.NewAuthService(store, hasher, stubIssuer{}, metrics, log)
	require.NoError(t, err)

	return &env{
		store:   store,
		users:   users,
		auth:    NewAuthHandler(authSvc, log),
		user:    NewUserHandler(users, log),
		project: NewProjectHandler(service.NewProjectService(store, log), log),
		task:    NewTaskHandler(service.NewTaskService(store, log), log),
	}
}

func (e *env) createUser(t *testing.T, name, password string, roles ...string) *domain.User {
	t.Helper()
	u, err := e.users.Create(context.Background(), domain.UserInput{Name: name, Password: &password, Roles: roles})
	require.NoError(t, err)
	return u
}

// call прогоняет один хендлер через chi, чтобы работал URLParam.
// Пустой as означает запрос без Principal.
func call(t *testing.T, method, pattern, path string, h http.HandlerFunc, as string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		reader = strings.NewReader(b)
	default:
		raw, err := json.Marshal(b)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}

	r := chi.NewRouter()
	r.MethodFunc(method, pattern, h)

	req := httptest.NewRequest(method, path, reader)
	if as != "" {
		req = req.WithContext(auth.WithPrincipal(req.Context(), domain.Principal{Name: as, Groups: []string{domain.RoleUser}}))
	}
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

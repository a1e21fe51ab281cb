package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/xela07ax/taskhub/internal/domain"
	"github.com/xela07ax/taskhub/internal/infra/auth"
	"go.uber.org/zap"
)

const maxBodyBytes = 1 << 20

// ErrorResponse — единый формат ошибки API
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

type errorMapping struct {
	target error
	status int
	code   string
}

// Порядок важен: ErrCascadeFailed оборачивает причину, в том числе ErrStorageUnavailable
var errorMappings = []errorMapping{
	{domain.ErrAuthenticationFailed, http.StatusUnauthorized, "authentication_failed"},
	{domain.ErrCascadeFailed, http.StatusInternalServerError, "cascade_failed"},
	{domain.ErrStorageUnavailable, http.StatusServiceUnavailable, "storage_unavailable"},
	{domain.ErrCredentialConflict, http.StatusConflict, "credential_conflict"},
	{domain.ErrNameTaken, http.StatusConflict, "name_taken"},
	{domain.ErrVersionConflict, http.StatusConflict, "version_conflict"},
	{domain.ErrPasswordMutation, http.StatusBadRequest, "password_mutation"},
	{domain.ErrInvalidInput, http.StatusBadRequest, "invalid_input"},
	{domain.ErrNotFound, http.StatusNotFound, "not_found"},
}

// writeError переводит ошибку в HTTP-ответ. Детали 5xx остаются в логе.
func writeError(w http.ResponseWriter, logger *zap.Logger, err error) {
	for _, m := range errorMappings {
		if !errors.Is(err, m.target) {
			continue
		}
		msg := m.target.Error()
		switch {
		case m.status >= http.StatusInternalServerError:
			logger.Error("request failed", zap.String("code", m.code), zap.Error(err))
		case m.target == domain.ErrInvalidInput:
			msg = err.Error()
		}
		if m.status == http.StatusServiceUnavailable {
			w.Header().Set("Retry-After", "1")
		}
		writeJSON(w, m.status, ErrorResponse{Error: msg, Code: m.code})
		return
	}

	logger.Error("request failed", zap.Error(err))
	writeJSON(w, http.StatusInternalServerError, ErrorResponse{Error: "internal error", Code: "internal"})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// decodeJSON читает тело с ограничением размера
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "malformed request body", Code: "bad_request"})
		return false
	}
	return true
}

// caller достает имя из проверенного токена. Без Principal роут не должен был открыться.
func caller(w http.ResponseWriter, r *http.Request) (string, bool) {
	p, ok := auth.PrincipalFromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, ErrorResponse{Error: "Unauthorized", Code: "unauthorized"})
		return "", false
	}
	return p.Name, true
}

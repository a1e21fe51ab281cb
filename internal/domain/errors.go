package domain

import "errors"

// Ошибки предметной области. Проверяются через errors.Is,
// маппинг на HTTP-коды живет в одном месте (handler/response.go).
var (
	// ErrAuthenticationFailed — неверное имя или пароль. Причину наружу не раскрываем.
	ErrAuthenticationFailed = errors.New("authentication failed")
	// ErrCredentialConflict — текущий пароль при смене не совпал.
	ErrCredentialConflict = errors.New("current password does not match")
	ErrNotFound           = errors.New("not found")
	// ErrCascadeFailed — каскадное удаление откатилось целиком.
	ErrCascadeFailed = errors.New("cascade delete failed")
	// ErrStorageUnavailable — временный отказ хранилища, вызывающий может повторить запрос.
	ErrStorageUnavailable = errors.New("storage unavailable")

	ErrNameTaken        = errors.New("name already taken")
	ErrVersionConflict  = errors.New("version conflict")
	ErrPasswordMutation = errors.New("password cannot be changed through update")
	ErrInvalidInput     = errors.New("invalid input")
)

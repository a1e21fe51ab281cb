package domain

import (
	"github.com/golang-jwt/jwt/v5"
)

// Роли, которые понимает сервис
const (
	RoleAdmin = "admin"
	RoleUser  = "user"
)

// Claims — полезная нагрузка токена: iss, sub, groups, iat, exp.
// Ничего лишнего в токен не кладем.
type Claims struct {
	Groups []string `json:"groups"`
	jwt.RegisteredClaims
}

// LoginRequest живет только в рамках запроса, никогда не логируется.
type LoginRequest struct {
	Name     string `json:"name"`
	Password string `json:"password"`
}

// PasswordChange — тело PUT /users/self/password
type PasswordChange struct {
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword"`
}

// Principal — проверенная личность вызывающего, кладется в контекст middleware.
type Principal struct {
	Name   string
	Groups []string
}

// HasRole сообщает, входит ли роль в группы токена
func (p Principal) HasRole(role string) bool {
	for _, g := range p.Groups {
		if g == role {
			return true
		}
	}
	return false
}

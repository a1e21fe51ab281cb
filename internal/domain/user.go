package domain

import (
	"fmt"
	"slices"
	"strings"
	"time"
)

type User struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	PasswordHash string    `json:"-"` // Никогда не отдаем наружу
	Roles        []string  `json:"roles"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// UserInput — тело запросов администратора на создание и обновление.
// Password указателем, чтобы отличить "не передан" от пустой строки.
type UserInput struct {
	Name     string   `json:"name"`
	Password *string  `json:"password,omitempty"`
	Roles    []string `json:"roles"`
}

// Validate проверяет имя и роли. Пароль проверяет вызывающий сервис.
func (in *UserInput) Validate() error {
	in.Name = strings.TrimSpace(in.Name)
	if in.Name == "" {
		return fmt.Errorf("%w: name is required", ErrInvalidInput)
	}
	for _, r := range in.Roles {
		if strings.TrimSpace(r) == "" {
			return fmt.Errorf("%w: empty role", ErrInvalidInput)
		}
	}
	return nil
}

// NormalizeRoles возвращает отсортированное множество ролей без повторов.
// Роли — множество, поэтому порядок на входе не важен.
func NormalizeRoles(roles []string) []string {
	out := make([]string, 0, len(roles))
	for _, r := range roles {
		out = append(out, strings.TrimSpace(r))
	}
	slices.Sort(out)
	return slices.Compact(out)
}

// Clone возвращает копию без общих слайсов
func (u User) Clone() User {
	u.Roles = slices.Clone(u.Roles)
	return u
}

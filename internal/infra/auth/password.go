package auth

import (
	"errors"
	"fmt"

	"github.com/xela07ax/taskhub/internal/domain"
	"golang.org/x/crypto/bcrypt"
)

// BcryptHasher — адаптивный односторонний хеш паролей.
// Стоимость и соль зашиты в сам digest, поэтому смена cost не ломает старые хеши.
type BcryptHasher struct {
	cost int
}

func NewBcryptHasher(cost int) *BcryptHasher {
	return &BcryptHasher{cost: cost}
}

// Hash возвращает digest в формате bcrypt.
// bcrypt учитывает не больше 72 байт, более длинный пароль — ошибка ввода.
func (h *BcryptHasher) Hash(plaintext string) (string, error) {
	digest, err := bcrypt.GenerateFromPassword([]byte(plaintext), h.cost)
	if errors.Is(err, bcrypt.ErrPasswordTooLong) {
		return "", fmt.Errorf("%w: password is longer than 72 bytes", domain.ErrInvalidInput)
	}
	if err != nil {
		return "", fmt.Errorf("bcrypt: %w", err)
	}
	return string(digest), nil
}

// Verify сравнивает пароль с digest за постоянное время.
// Несовпадение — (false, nil); ошибка только для битого digest.
func (h *BcryptHasher) Verify(plaintext, digest string) (bool, error) {
	err := bcrypt.CompareHashAndPassword([]byte(digest), []byte(plaintext))
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, bcrypt.ErrMismatchedHashAndPassword):
		return false, nil
	default:
		return false, fmt.Errorf("bcrypt: malformed digest: %w", err)
	}
}

package service

import "context"

// PasswordHasher — одностороннее хеширование и проверка пароля
type PasswordHasher interface {
	Hash(plaintext string) (string, error)
	Verify(plaintext, digest string) (bool, error)
}

// TokenIssuer подписывает токен для проверенной личности
type TokenIssuer interface {
	Issue(subject string, groups []string) (string, error)
}

// IdentityNotifier рассылает сигналы об изменении учеток (best-effort)
type IdentityNotifier interface {
	Publish(ctx context.Context, userID, event string) error
}

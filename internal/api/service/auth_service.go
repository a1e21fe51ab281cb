package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/xela07ax/taskhub/internal/domain"
	"github.com/xela07ax/taskhub/internal/infra"
	"go.uber.org/zap"
)

type AuthService struct {
	store   domain.Store
	hasher  PasswordHasher
	issuer  TokenIssuer
	metrics *infra.Metrics
	logger  *zap.Logger

	// dummyDigest сверяется для несуществующих имен, чтобы время ответа не выдавало их отсутствие
	dummyDigest string
}

func NewAuthService(store domain.Store, hasher PasswordHasher, issuer TokenIssuer, metrics *infra.Metrics, logger *zap.Logger) (*AuthService, error) {
	dummy, err := hasher.Hash(uuid.NewString())
	if err != nil {
		return nil, fmt.Errorf("auth: prepare dummy digest: %w", err)
	}
	return &AuthService{
		store:       store,
		hasher:      hasher,
		issuer:      issuer,
		metrics:     metrics,
		logger:      logger.Named("auth-service"),
		dummyDigest: dummy,
	}, nil
}

// Authenticate проверяет имя и пароль и выдает подписанный токен.
// Неизвестное имя и неверный пароль неотличимы снаружи: оба ErrAuthenticationFailed.
// Временные отказы хранилища возвращаются как есть (ErrStorageUnavailable), без ретраев.
func (s *AuthService) Authenticate(ctx context.Context, name, password string) (string, error) {
	// 1. Поиск учетки
	user, err := s.store.Users().FindByName(ctx, name)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			_, _ = s.hasher.Verify(password, s.dummyDigest)
			s.observe(infra.AuthOutcomeFailure)
			return "", domain.ErrAuthenticationFailed
		}
		s.observe(infra.AuthOutcomeError)
		return "", err
	}

	// 2. Проверка пароля
	ok, err := s.hasher.Verify(password, user.PasswordHash)
	if err != nil {
		s.logger.Error("stored digest is malformed", zap.String("user_id", user.ID), zap.Error(err))
		s.observe(infra.AuthOutcomeError)
		return "", fmt.Errorf("auth: verify: %w", err)
	}
	if !ok {
		s.observe(infra.AuthOutcomeFailure)
		return "", domain.ErrAuthenticationFailed
	}

	// 3. Токен с ролями на момент входа
	token, err := s.issuer.Issue(user.Name, user.Roles)
	if err != nil {
		s.observe(infra.AuthOutcomeError)
		return "", fmt.Errorf("auth: issue token: %w", err)
	}

	s.observe(infra.AuthOutcomeSuccess)
	return token, nil
}

func (s *AuthService) observe(outcome string) {
	if s.metrics != nil {
		s.metrics.AuthAttempts.WithLabelValues(outcome).Inc()
	}
}

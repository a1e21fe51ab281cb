package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/xela07ax/taskhub/internal/domain"
	"github.com/xela07ax/taskhub/internal/infra"
	"go.uber.org/zap"
)

// UserService — мутации учетных записей: самообслуживание и администрирование.
type UserService struct {
	store    domain.Store
	hasher   PasswordHasher
	notifier IdentityNotifier
	metrics  *infra.Metrics
	logger   *zap.Logger
	now      func() time.Time
}

func NewUserService(store domain.Store, hasher PasswordHasher, notifier IdentityNotifier, metrics *infra.Metrics, logger *zap.Logger) *UserService {
	return &UserService{
		store:    store,
		hasher:   hasher,
		notifier: notifier,
		metrics:  metrics,
		logger:   logger.Named("user-service"),
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// Current возвращает учетку вызывающего по имени из токена
func (s *UserService) Current(ctx context.Context, callerName string) (*domain.User, error) {
	return s.store.Users().FindByName(ctx, callerName)
}

func (s *UserService) List(ctx context.Context) ([]domain.User, error) {
	return s.store.Users().List(ctx)
}

func (s *UserService) Get(ctx context.Context, id string) (*domain.User, error) {
	return s.store.Users().FindByID(ctx, id)
}

// Create всегда хеширует пароль: сырой пароль в хранилище не попадает.
func (s *UserService) Create(ctx context.Context, in domain.UserInput) (*domain.User, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}
	if in.Password == nil || *in.Password == "" {
		return nil, fmt.Errorf("%w: password is required", domain.ErrInvalidInput)
	}

	hash, err := s.hashPassword(*in.Password)
	if err != nil {
		return nil, err
	}

	now := s.now()
	user := &domain.User{
		ID:           uuid.NewString(),
		Name:         in.Name,
		PasswordHash: hash,
		Roles:        domain.NormalizeRoles(in.Roles),
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	err = s.store.WithTx(ctx, func(ctx context.Context, tx domain.Store) error {
		return tx.Users().Create(ctx, user)
	})
	s.metrics.ObserveMutation("create", err)
	if err != nil {
		return nil, err
	}

	s.logger.Info("user created", zap.String("user_id", user.ID), zap.String("name", user.Name), zap.Strings("roles", user.Roles))
	s.notify(ctx, user.ID, infra.IdentityCreated)
	return user, nil
}

// Update меняет имя и роли. Пароль этим путем не меняется: запрос с паролем отклоняется.
func (s *UserService) Update(ctx context.Context, id string, in domain.UserInput) (*domain.User, error) {
	if in.Password != nil {
		return nil, domain.ErrPasswordMutation
	}
	if err := in.Validate(); err != nil {
		return nil, err
	}

	var user *domain.User
	err := s.store.WithTx(ctx, func(ctx context.Context, tx domain.Store) error {
		u, err := tx.Users().FindByID(ctx, id)
		if err != nil {
			return err
		}
		u.Name = in.Name
		u.Roles = domain.NormalizeRoles(in.Roles)
		u.UpdatedAt = s.now()
		if err := tx.Users().Update(ctx, u); err != nil {
			return err
		}
		user = u
		return nil
	})
	s.metrics.ObserveMutation("update", err)
	if err != nil {
		return nil, err
	}

	s.logger.Info("user updated", zap.String("user_id", user.ID), zap.String("name", user.Name), zap.Strings("roles", user.Roles))
	s.notify(ctx, user.ID, infra.IdentityUpdated)
	return user, nil
}

// ChangePassword — смена пароля самим пользователем.
// Неверный текущий пароль дает ErrCredentialConflict и ничего не меняет.
// Ранее выданные токены остаются валидными до истечения.
func (s *UserService) ChangePassword(ctx context.Context, callerName, current, next string) (*domain.User, error) {
	if next == "" {
		return nil, fmt.Errorf("%w: new password is required", domain.ErrInvalidInput)
	}

	// 1. Учетка вызывающего
	user, err := s.store.Users().FindByName(ctx, callerName)
	if err != nil {
		return nil, err
	}

	// 2. Проверка текущего пароля
	ok, err := s.hasher.Verify(current, user.PasswordHash)
	if err != nil {
		s.logger.Error("stored digest is malformed", zap.String("user_id", user.ID), zap.Error(err))
		return nil, fmt.Errorf("user: verify: %w", err)
	}
	if !ok {
		s.metrics.ObserveMutation("change_password", domain.ErrCredentialConflict)
		return nil, domain.ErrCredentialConflict
	}

	// 3. Новый хеш, одна запись в одну колонку
	hash, err := s.hashPassword(next)
	if err != nil {
		return nil, err
	}
	now := s.now()
	err = s.store.Users().UpdatePassword(ctx, user.ID, hash, now)
	s.metrics.ObserveMutation("change_password", err)
	if err != nil {
		return nil, err
	}

	user.PasswordHash = hash
	user.UpdatedAt = now
	s.notify(ctx, user.ID, infra.IdentityPasswordChanged)
	return user, nil
}

// Delete удаляет задачи, проекты и саму учетку одной транзакцией.
// Отсутствие учетки — ErrNotFound; любой сбой после поиска откатывает все и дает ErrCascadeFailed.
func (s *UserService) Delete(ctx context.Context, id string) error {
	var found bool
	var tasks, projects int64

	err := s.store.WithTx(ctx, func(ctx context.Context, tx domain.Store) error {
		if _, err := tx.Users().FindByID(ctx, id); err != nil {
			return err
		}
		found = true

		var err error
		if tasks, err = tx.Tasks().DeleteOwnedBy(ctx, id); err != nil {
			return err
		}
		if projects, err = tx.Projects().DeleteOwnedBy(ctx, id); err != nil {
			return err
		}
		return tx.Users().Delete(ctx, id)
	})
	s.metrics.ObserveMutation("delete", err)
	if err != nil {
		// учетку удалил параллельный запрос между поиском и удалением: откат, но это не сбой каскада
		if !found || errors.Is(err, domain.ErrNotFound) {
			return err
		}
		s.logger.Error("cascade delete rolled back", zap.String("user_id", id), zap.Error(err))
		return fmt.Errorf("%w: %w", domain.ErrCascadeFailed, err)
	}

	s.logger.Info("user deleted",
		zap.String("user_id", id),
		zap.Int64("tasks", tasks),
		zap.Int64("projects", projects),
	)
	s.notify(ctx, id, infra.IdentityDeleted)
	return nil
}

// EnsureAdmin создает первичного администратора, если учетки с таким именем нет.
func (s *UserService) EnsureAdmin(ctx context.Context, name, password string) (bool, error) {
	_, err := s.store.Users().FindByName(ctx, name)
	if err == nil {
		return false, nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return false, err
	}

	_, err = s.Create(ctx, domain.UserInput{
		Name:     name,
		Password: &password,
		Roles:    []string{domain.RoleAdmin, domain.RoleUser},
	})
	if errors.Is(err, domain.ErrNameTaken) {
		// Параллельный инстанс успел раньше
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// hashPassword оставляет ошибки ввода как есть, остальное оборачивает
func (s *UserService) hashPassword(plaintext string) (string, error) {
	hash, err := s.hasher.Hash(plaintext)
	if errors.Is(err, domain.ErrInvalidInput) {
		return "", err
	}
	if err != nil {
		return "", fmt.Errorf("user: hash password: %w", err)
	}
	return hash, nil
}

// notify не влияет на результат: мутация уже закоммичена
func (s *UserService) notify(ctx context.Context, userID, event string) {
	if err := s.notifier.Publish(ctx, userID, event); err != nil {
		s.logger.Warn("identity signal not delivered", zap.String("user_id", userID), zap.String("event", event), zap.Error(err))
	}
}

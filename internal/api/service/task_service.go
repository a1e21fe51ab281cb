package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/xela07ax/taskhub/internal/domain"
	"go.uber.org/zap"
)

// TaskService — задачи вызывающего. Задача может ссылаться только на свой проект.
type TaskService struct {
	store  domain.Store
	logger *zap.Logger
	now    func() time.Time
}

func NewTaskService(store domain.Store, logger *zap.Logger) *TaskService {
	return &TaskService{
		store:  store,
		logger: logger.Named("task-service"),
		now:    func() time.Time { return time.Now().UTC() },
	}
}

func (s *TaskService) List(ctx context.Context, callerName string) ([]domain.Task, error) {
	owner, err := s.store.Users().FindByName(ctx, callerName)
	if err != nil {
		return nil, err
	}
	return s.store.Tasks().ListByOwner(ctx, owner.ID)
}

func (s *TaskService) Get(ctx context.Context, callerName, id string) (*domain.Task, error) {
	owner, err := s.store.Users().FindByName(ctx, callerName)
	if err != nil {
		return nil, err
	}
	return ownedTask(ctx, s.store, owner.ID, id)
}

func (s *TaskService) Create(ctx context.Context, callerName string, in domain.TaskInput) (*domain.Task, error) {
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return nil, fmt.Errorf("%w: task title is required", domain.ErrInvalidInput)
	}

	var out *domain.Task
	err := s.store.WithTx(ctx, func(ctx context.Context, tx domain.Store) error {
		owner, err := tx.Users().FindByName(ctx, callerName)
		if err != nil {
			return err
		}
		if in.ProjectID != nil {
			if _, err := ownedProject(ctx, tx, owner.ID, *in.ProjectID); err != nil {
				return err
			}
		}

		t := &domain.Task{
			ID:          uuid.NewString(),
			Title:       title,
			Description: in.Description,
			Priority:    in.Priority,
			ProjectID:   in.ProjectID,
			UserID:      owner.ID,
			CreatedAt:   s.now(),
		}
		if err := tx.Tasks().Create(ctx, t); err != nil {
			return err
		}
		out = t
		return nil
	})
	return out, err
}

// Update перезаписывает изменяемые поля; in.Version должна совпасть с текущей
func (s *TaskService) Update(ctx context.Context, callerName, id string, in domain.TaskInput) (*domain.Task, error) {
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return nil, fmt.Errorf("%w: task title is required", domain.ErrInvalidInput)
	}

	return s.mutate(ctx, callerName, id, func(ctx context.Context, tx domain.Store, ownerID string, t *domain.Task) error {
		if in.ProjectID != nil {
			if _, err := ownedProject(ctx, tx, ownerID, *in.ProjectID); err != nil {
				return err
			}
		}
		t.Title = title
		t.Description = in.Description
		t.Priority = in.Priority
		t.ProjectID = in.ProjectID
		t.Version = in.Version
		return nil
	})
}

// Complete ставит или снимает отметку о выполнении
func (s *TaskService) Complete(ctx context.Context, callerName, id string, done bool) (*domain.Task, error) {
	return s.mutate(ctx, callerName, id, func(_ context.Context, _ domain.Store, _ string, t *domain.Task) error {
		if !done {
			t.CompletedAt = nil
			return nil
		}
		if t.CompletedAt == nil {
			now := s.now()
			t.CompletedAt = &now
		}
		return nil
	})
}

func (s *TaskService) Delete(ctx context.Context, callerName, id string) error {
	return s.store.WithTx(ctx, func(ctx context.Context, tx domain.Store) error {
		owner, err := tx.Users().FindByName(ctx, callerName)
		if err != nil {
			return err
		}
		if _, err := ownedTask(ctx, tx, owner.ID, id); err != nil {
			return err
		}
		return tx.Tasks().Delete(ctx, id)
	})
}

// mutate загружает свою задачу, применяет apply и сохраняет с проверкой версии
func (s *TaskService) mutate(ctx context.Context, callerName, id string, apply func(ctx context.Context, tx domain.Store, ownerID string, t *domain.Task) error) (*domain.Task, error) {
	var out *domain.Task
	err := s.store.WithTx(ctx, func(ctx context.Context, tx domain.Store) error {
		owner, err := tx.Users().FindByName(ctx, callerName)
		if err != nil {
			return err
		}
		t, err := ownedTask(ctx, tx, owner.ID, id)
		if err != nil {
			return err
		}
		if err := apply(ctx, tx, owner.ID, t); err != nil {
			return err
		}
		if err := tx.Tasks().Update(ctx, t); err != nil {
			return err
		}
		out = t
		return nil
	})
	return out, err
}

func ownedTask(ctx context.Context, store domain.Store, ownerID, id string) (*domain.Task, error) {
	t, err := store.Tasks().FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if t.UserID != ownerID {
		return nil, fmt.Errorf("task %s: %w", id, domain.ErrNotFound)
	}
	return t, nil
}

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

// ProjectService — проекты вызывающего. Чужой проект неотличим от несуществующего.
type ProjectService struct {
	store  domain.Store
	logger *zap.Logger
	now    func() time.Time
}

func NewProjectService(store domain.Store, logger *zap.Logger) *ProjectService {
	return &ProjectService{
		store:  store,
		logger: logger.Named("project-service"),
		now:    func() time.Time { return time.Now().UTC() },
	}
}

func (s *ProjectService) List(ctx context.Context, callerName string) ([]domain.Project, error) {
	owner, err := s.store.Users().FindByName(ctx, callerName)
	if err != nil {
		return nil, err
	}
	return s.store.Projects().ListByOwner(ctx, owner.ID)
}

func (s *ProjectService) Get(ctx context.Context, callerName, id string) (*domain.Project, error) {
	owner, err := s.store.Users().FindByName(ctx, callerName)
	if err != nil {
		return nil, err
	}
	return ownedProject(ctx, s.store, owner.ID, id)
}

func (s *ProjectService) Create(ctx context.Context, callerName string, in domain.ProjectInput) (*domain.Project, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, fmt.Errorf("%w: project name is required", domain.ErrInvalidInput)
	}

	owner, err := s.store.Users().FindByName(ctx, callerName)
	if err != nil {
		return nil, err
	}

	p := &domain.Project{
		ID:        uuid.NewString(),
		Name:      name,
		UserID:    owner.ID,
		CreatedAt: s.now(),
	}
	if err := s.store.Projects().Create(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

// Update переименовывает проект; in.Version должна совпасть с текущей
func (s *ProjectService) Update(ctx context.Context, callerName, id string, in domain.ProjectInput) (*domain.Project, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, fmt.Errorf("%w: project name is required", domain.ErrInvalidInput)
	}

	var out *domain.Project
	err := s.store.WithTx(ctx, func(ctx context.Context, tx domain.Store) error {
		owner, err := tx.Users().FindByName(ctx, callerName)
		if err != nil {
			return err
		}
		p, err := ownedProject(ctx, tx, owner.ID, id)
		if err != nil {
			return err
		}
		p.Name = name
		p.Version = in.Version
		if err := tx.Projects().Update(ctx, p); err != nil {
			return err
		}
		out = p
		return nil
	})
	return out, err
}

// Delete отвязывает задачи проекта и удаляет его в одной транзакции
func (s *ProjectService) Delete(ctx context.Context, callerName, id string) error {
	return s.store.WithTx(ctx, func(ctx context.Context, tx domain.Store) error {
		owner, err := tx.Users().FindByName(ctx, callerName)
		if err != nil {
			return err
		}
		if _, err := ownedProject(ctx, tx, owner.ID, id); err != nil {
			return err
		}
		if err := tx.Tasks().DetachProject(ctx, id); err != nil {
			return err
		}
		return tx.Projects().Delete(ctx, id)
	})
}

// ownedProject возвращает проект, только если он принадлежит ownerID
func ownedProject(ctx context.Context, store domain.Store, ownerID, id string) (*domain.Project, error) {
	p, err := store.Projects().FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if p.UserID != ownerID {
		return nil, fmt.Errorf("project %s: %w", id, domain.ErrNotFound)
	}
	return p, nil
}

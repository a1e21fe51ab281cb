package domain

import (
	"context"
	"time"
)

// UserRepository — хранилище учетных записей.
// Отсутствие записи всегда ErrNotFound, дубликат имени ErrNameTaken.
type UserRepository interface {
	FindByName(ctx context.Context, name string) (*User, error)
	FindByID(ctx context.Context, id string) (*User, error)
	List(ctx context.Context) ([]User, error)
	Create(ctx context.Context, u *User) error
	// Update меняет только имя и роли
	Update(ctx context.Context, u *User) error
	UpdatePassword(ctx context.Context, id, hash string, at time.Time) error
	Delete(ctx context.Context, id string) error
}

// ProjectRepository — проекты. Update проверяет версию (оптимистичная блокировка).
type ProjectRepository interface {
	FindByID(ctx context.Context, id string) (*Project, error)
	ListByOwner(ctx context.Context, userID string) ([]Project, error)
	Create(ctx context.Context, p *Project) error
	Update(ctx context.Context, p *Project) error
	Delete(ctx context.Context, id string) error
	DeleteOwnedBy(ctx context.Context, userID string) (int64, error)
}

type TaskRepository interface {
	FindByID(ctx context.Context, id string) (*Task, error)
	ListByOwner(ctx context.Context, userID string) ([]Task, error)
	Create(ctx context.Context, t *Task) error
	Update(ctx context.Context, t *Task) error
	Delete(ctx context.Context, id string) error
	DeleteOwnedBy(ctx context.Context, userID string) (int64, error)
	// DetachProject обнуляет project_id у задач удаляемого проекта
	DetachProject(ctx context.Context, projectID string) error
}

// Store собирает репозитории и умеет выполнять их в одной транзакции.
// Вложенный WithTx выполняется в уже открытой транзакции.
type Store interface {
	Users() UserRepository
	Projects() ProjectRepository
	Tasks() TaskRepository
	WithTx(ctx context.Context, fn func(ctx context.Context, tx Store) error) error
}

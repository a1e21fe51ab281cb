// Package memory — потокобезопасное хранилище в памяти для локального запуска и тестов.
// Транзакция работает на копии состояния и подменяет его целиком при успехе.
package memory

import (
	"context"
	"sync"

	"github.com/xela07ax/taskhub/internal/domain"
)

type state struct {
	users    map[string]domain.User
	projects map[string]domain.Project
	tasks    map[string]domain.Task
}

func newState() *state {
	return &state{
		users:    make(map[string]domain.User),
		projects: make(map[string]domain.Project),
		tasks:    make(map[string]domain.Task),
	}
}

func (s *state) clone() *state {
	c := newState()
	for k, v := range s.users {
		c.users[k] = v.Clone()
	}
	for k, v := range s.projects {
		c.projects[k] = v
	}
	for k, v := range s.tasks {
		c.tasks[k] = v.Clone()
	}
	return c
}

// runFunc выполняет операцию над состоянием с нужной блокировкой
type runFunc func(fn func(st *state) error) error

// Store реализует domain.Store. Мьютекс сериализует все операции,
// транзакция держит его до коммита.
type Store struct {
	mu sync.Mutex
	st *state
}

func New() *Store {
	return &Store{st: newState()}
}

func (s *Store) run(fn func(st *state) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return fn(s.st)
}

func (s *Store) Users() domain.UserRepository       { return &userRepo{run: s.run} }
func (s *Store) Projects() domain.ProjectRepository { return &projectRepo{run: s.run} }
func (s *Store) Tasks() domain.TaskRepository       { return &taskRepo{run: s.run} }

// WithTx выполняет fn над снимком и подменяет состояние только при успехе.
// Ошибка, паника или отмена ctx оставляют состояние нетронутым.
func (s *Store) WithTx(ctx context.Context, fn func(ctx context.Context, tx domain.Store) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	tx := &txStore{st: s.st.clone()}
	if err := fn(ctx, tx); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	s.st = tx.st
	return nil
}

// txStore работает со снимком без блокировок: мьютекс уже у WithTx
type txStore struct {
	st *state
}

func (t *txStore) run(fn func(st *state) error) error { return fn(t.st) }

func (t *txStore) Users() domain.UserRepository       { return &userRepo{run: t.run} }
func (t *txStore) Projects() domain.ProjectRepository { return &projectRepo{run: t.run} }
func (t *txStore) Tasks() domain.TaskRepository       { return &taskRepo{run: t.run} }

func (t *txStore) WithTx(ctx context.Context, fn func(ctx context.Context, tx domain.Store) error) error {
	return fn(ctx, t)
}

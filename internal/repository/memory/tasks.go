package memory

import (
	"context"
	"fmt"
	"sort"

	"github.com/xela07ax/taskhub/internal/domain"
)

type taskRepo struct {
	run runFunc
}

func (r *taskRepo) FindByID(ctx context.Context, id string) (*domain.Task, error) {
	var out *domain.Task
	err := r.run(func(st *state) error {
		t, ok := st.tasks[id]
		if !ok {
			return fmt.Errorf("memory: task %s: %w", id, domain.ErrNotFound)
		}
		c := t.Clone()
		out = &c
		return nil
	})
	return out, err
}

func (r *taskRepo) ListByOwner(ctx context.Context, userID string) ([]domain.Task, error) {
	var out []domain.Task
	err := r.run(func(st *state) error {
		for _, t := range st.tasks {
			if t.UserID == userID {
				out = append(out, t.Clone())
			}
		}
		return nil
	})
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, err
}

func (r *taskRepo) Create(ctx context.Context, t *domain.Task) error {
	return r.run(func(st *state) error {
		if err := checkTaskRefs(st, t); err != nil {
			return err
		}
		st.tasks[t.ID] = t.Clone()
		return nil
	})
}

func (r *taskRepo) Update(ctx context.Context, t *domain.Task) error {
	return r.run(func(st *state) error {
		cur, ok := st.tasks[t.ID]
		if !ok || cur.Version != t.Version {
			return fmt.Errorf("memory: update task %s: %w", t.ID, domain.ErrVersionConflict)
		}
		next := t.Clone()
		next.UserID = cur.UserID
		next.CreatedAt = cur.CreatedAt
		if err := checkTaskRefs(st, &next); err != nil {
			return err
		}
		next.Version = cur.Version + 1
		st.tasks[t.ID] = next
		t.Version = next.Version
		return nil
	})
}

func (r *taskRepo) Delete(ctx context.Context, id string) error {
	return r.run(func(st *state) error {
		if _, ok := st.tasks[id]; !ok {
			return fmt.Errorf("memory: task %s: %w", id, domain.ErrNotFound)
		}
		delete(st.tasks, id)
		return nil
	})
}

func (r *taskRepo) DeleteOwnedBy(ctx context.Context, userID string) (int64, error) {
	var n int64
	err := r.run(func(st *state) error {
		for id, t := range st.tasks {
			if t.UserID == userID {
				delete(st.tasks, id)
				n++
			}
		}
		return nil
	})
	return n, err
}

func (r *taskRepo) DetachProject(ctx context.Context, projectID string) error {
	return r.run(func(st *state) error {
		for id, t := range st.tasks {
			if t.ProjectID != nil && *t.ProjectID == projectID {
				t.ProjectID = nil
				t.Version++
				st.tasks[id] = t
			}
		}
		return nil
	})
}

// checkTaskRefs повторяет внешние ключи postgres
func checkTaskRefs(st *state, t *domain.Task) error {
	if _, ok := st.users[t.UserID]; !ok {
		return fmt.Errorf("memory: task owner %s does not exist", t.UserID)
	}
	if t.ProjectID != nil {
		if _, ok := st.projects[*t.ProjectID]; !ok {
			return fmt.Errorf("memory: task project %s does not exist", *t.ProjectID)
		}
	}
	return nil
}

package memory

import (
	"context"
	"fmt"
	"sort"

	"github.com/xela07ax/taskhub/internal/domain"
)

type projectRepo struct {
	run runFunc
}

func (r *projectRepo) FindByID(ctx context.Context, id string) (*domain.Project, error) {
	var out *domain.Project
	err := r.run(func(st *state) error {
		p, ok := st.projects[id]
		if !ok {
			return fmt.Errorf("memory: project %s: %w", id, domain.ErrNotFound)
		}
		out = &p
		return nil
	})
	return out, err
}

func (r *projectRepo) ListByOwner(ctx context.Context, userID string) ([]domain.Project, error) {
	var out []domain.Project
	err := r.run(func(st *state) error {
		for _, p := range st.projects {
			if p.UserID == userID {
				out = append(out, p)
			}
		}
		return nil
	})
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, err
}

func (r *projectRepo) Create(ctx context.Context, p *domain.Project) error {
	return r.run(func(st *state) error {
		if _, ok := st.users[p.UserID]; !ok {
			return fmt.Errorf("memory: project owner %s does not exist", p.UserID)
		}
		if projectNameTaken(st, p.UserID, p.Name, "") {
			return fmt.Errorf("memory: project %q: %w", p.Name, domain.ErrNameTaken)
		}
		st.projects[p.ID] = *p
		return nil
	})
}

func (r *projectRepo) Update(ctx context.Context, p *domain.Project) error {
	return r.run(func(st *state) error {
		cur, ok := st.projects[p.ID]
		if !ok || cur.Version != p.Version {
			return fmt.Errorf("memory: update project %s: %w", p.ID, domain.ErrVersionConflict)
		}
		if projectNameTaken(st, cur.UserID, p.Name, p.ID) {
			return fmt.Errorf("memory: project %q: %w", p.Name, domain.ErrNameTaken)
		}
		cur.Name = p.Name
		cur.Version++
		st.projects[p.ID] = cur
		p.Version = cur.Version
		return nil
	})
}

// Delete отказывает, пока на проект ссылаются задачи (как внешний ключ)
func (r *projectRepo) Delete(ctx context.Context, id string) error {
	return r.run(func(st *state) error {
		if _, ok := st.projects[id]; !ok {
			return fmt.Errorf("memory: project %s: %w", id, domain.ErrNotFound)
		}
		for _, t := range st.tasks {
			if t.ProjectID != nil && *t.ProjectID == id {
				return fmt.Errorf("memory: project %s still referenced by task %s", id, t.ID)
			}
		}
		delete(st.projects, id)
		return nil
	})
}

func (r *projectRepo) DeleteOwnedBy(ctx context.Context, userID string) (int64, error) {
	var n int64
	err := r.run(func(st *state) error {
		for id, p := range st.projects {
			if p.UserID != userID {
				continue
			}
			for _, t := range st.tasks {
				if t.ProjectID != nil && *t.ProjectID == id {
					return fmt.Errorf("memory: project %s still referenced by task %s", id, t.ID)
				}
			}
		}
		for id, p := range st.projects {
			if p.UserID == userID {
				delete(st.projects, id)
				n++
			}
		}
		return nil
	})
	return n, err
}

func projectNameTaken(st *state, userID, name, exceptID string) bool {
	for id, p := range st.projects {
		if p.UserID == userID && p.Name == name && id != exceptID {
			return true
		}
	}
	return false
}

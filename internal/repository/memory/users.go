package memory

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/xela07ax/taskhub/internal/domain"
)

type userRepo struct {
	run runFunc
}

func (r *userRepo) FindByName(ctx context.Context, name string) (*domain.User, error) {
	var out *domain.User
	err := r.run(func(st *state) error {
		for _, u := range st.users {
			if u.Name == name {
				c := u.Clone()
				out = &c
				return nil
			}
		}
		return fmt.Errorf("memory: user %q: %w", name, domain.ErrNotFound)
	})
	return out, err
}

func (r *userRepo) FindByID(ctx context.Context, id string) (*domain.User, error) {
	var out *domain.User
	err := r.run(func(st *state) error {
		u, ok := st.users[id]
		if !ok {
			return fmt.Errorf("memory: user %s: %w", id, domain.ErrNotFound)
		}
		c := u.Clone()
		out = &c
		return nil
	})
	return out, err
}

func (r *userRepo) List(ctx context.Context) ([]domain.User, error) {
	var out []domain.User
	err := r.run(func(st *state) error {
		for _, u := range st.users {
			out = append(out, u.Clone())
		}
		return nil
	})
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, err
}

func (r *userRepo) Create(ctx context.Context, u *domain.User) error {
	return r.run(func(st *state) error {
		if _, ok := st.users[u.ID]; ok {
			return fmt.Errorf("memory: user id %s: %w", u.ID, domain.ErrNameTaken)
		}
		if nameTaken(st, u.Name, "") {
			return fmt.Errorf("memory: user %q: %w", u.Name, domain.ErrNameTaken)
		}
		st.users[u.ID] = u.Clone()
		return nil
	})
}

func (r *userRepo) Update(ctx context.Context, u *domain.User) error {
	return r.run(func(st *state) error {
		cur, ok := st.users[u.ID]
		if !ok {
			return fmt.Errorf("memory: user %s: %w", u.ID, domain.ErrNotFound)
		}
		if nameTaken(st, u.Name, u.ID) {
			return fmt.Errorf("memory: user %q: %w", u.Name, domain.ErrNameTaken)
		}
		// хеш пароля этим путем не меняется
		cur.Name = u.Name
		cur.Roles = append([]string(nil), u.Roles...)
		cur.UpdatedAt = u.UpdatedAt
		st.users[u.ID] = cur
		return nil
	})
}

func (r *userRepo) UpdatePassword(ctx context.Context, id, hash string, at time.Time) error {
	return r.run(func(st *state) error {
		cur, ok := st.users[id]
		if !ok {
			return fmt.Errorf("memory: user %s: %w", id, domain.ErrNotFound)
		}
		cur.PasswordHash = hash
		cur.UpdatedAt = at
		st.users[id] = cur
		return nil
	})
}

// Delete ведет себя как внешний ключ в postgres: владелец строк не удаляется
func (r *userRepo) Delete(ctx context.Context, id string) error {
	return r.run(func(st *state) error {
		if _, ok := st.users[id]; !ok {
			return fmt.Errorf("memory: user %s: %w", id, domain.ErrNotFound)
		}
		for _, p := range st.projects {
			if p.UserID == id {
				return fmt.Errorf("memory: user %s still owns project %s", id, p.ID)
			}
		}
		for _, t := range st.tasks {
			if t.UserID == id {
				return fmt.Errorf("memory: user %s still owns task %s", id, t.ID)
			}
		}
		delete(st.users, id)
		return nil
	})
}

func nameTaken(st *state, name, exceptID string) bool {
	for id, u := range st.users {
		if u.Name == name && id != exceptID {
			return true
		}
	}
	return false
}

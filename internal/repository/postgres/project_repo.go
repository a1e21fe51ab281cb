package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/xela07ax/taskhub/internal/dbx"
	"github.com/xela07ax/taskhub/internal/domain"
)

type ProjectRepo struct {
	db dbx.DBTX
}

func NewProjectRepo(db dbx.DBTX) *ProjectRepo {
	return &ProjectRepo{db: db}
}

func (r *ProjectRepo) FindByID(ctx context.Context, id string) (*domain.Project, error) {
	query := `SELECT id, name, user_id, created_at, version FROM projects WHERE id = $1`

	p := &domain.Project{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(&p.ID, &p.Name, &p.UserID, &p.CreatedAt, &p.Version)
	if err != nil {
		return nil, classify("find project", err)
	}
	return p, nil
}

func (r *ProjectRepo) ListByOwner(ctx context.Context, userID string) ([]domain.Project, error) {
	query := `SELECT id, name, user_id, created_at, version FROM projects WHERE user_id = $1 ORDER BY name`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, classify("list projects", err)
	}
	defer rows.Close()

	var projects []domain.Project
	for rows.Next() {
		var p domain.Project
		if err := rows.Scan(&p.ID, &p.Name, &p.UserID, &p.CreatedAt, &p.Version); err != nil {
			return nil, classify("scan project", err)
		}
		projects = append(projects, p)
	}
	if err := rows.Err(); err != nil {
		return nil, classify("list projects", err)
	}
	return projects, nil
}

func (r *ProjectRepo) Create(ctx context.Context, p *domain.Project) error {
	query := `
		INSERT INTO projects (id, name, user_id, created_at, version)
		VALUES ($1, $2, $3, $4, $5)`

	if _, err := r.db.ExecContext(ctx, query, p.ID, p.Name, p.UserID, p.CreatedAt, p.Version); err != nil {
		return classify("insert project", err)
	}
	return nil
}

// Update переименовывает проект, если версия не устарела. Новая версия пишется в p.
func (r *ProjectRepo) Update(ctx context.Context, p *domain.Project) error {
	query := `
		UPDATE projects SET name = $1, version = version + 1
		WHERE id = $2 AND version = $3
		RETURNING version`

	err := r.db.QueryRowContext(ctx, query, p.Name, p.ID, p.Version).Scan(&p.Version)
	if err != nil {
		err = classify("update project", err)
		if errors.Is(err, domain.ErrNotFound) {
			return fmt.Errorf("postgres: update project %s: %w", p.ID, domain.ErrVersionConflict)
		}
		return err
	}
	return nil
}

func (r *ProjectRepo) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM projects WHERE id = $1`, id)
	if err != nil {
		return classify("delete project", err)
	}
	return expectRow(result, "delete project")
}

// DeleteOwnedBy удаляет все проекты владельца, возвращает количество
func (r *ProjectRepo) DeleteOwnedBy(ctx context.Context, userID string) (int64, error) {
	result, err := r.db.ExecContext(ctx, `DELETE FROM projects WHERE user_id = $1`, userID)
	if err != nil {
		return 0, classify("delete projects of user", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return 0, classify("delete projects of user", err)
	}
	return n, nil
}

package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/xela07ax/taskhub/internal/dbx"
	"github.com/xela07ax/taskhub/internal/domain"
)

const taskColumns = `id, title, description, priority, project_id, user_id, completed_at, created_at, version`

type TaskRepo struct {
	db dbx.DBTX
}

func NewTaskRepo(db dbx.DBTX) *TaskRepo {
	return &TaskRepo{db: db}
}

func scanTask(row rowScanner) (*domain.Task, error) {
	t := &domain.Task{}
	var projectID sql.NullString
	var completedAt sql.NullTime
	if err := row.Scan(&t.ID, &t.Title, &t.Description, &t.Priority, &projectID, &t.UserID, &completedAt, &t.CreatedAt, &t.Version); err != nil {
		return nil, err
	}
	if projectID.Valid {
		t.ProjectID = &projectID.String
	}
	if completedAt.Valid {
		t.CompletedAt = &completedAt.Time
	}
	return t, nil
}

func (r *TaskRepo) FindByID(ctx context.Context, id string) (*domain.Task, error) {
	query := `SELECT ` + taskColumns + ` FROM tasks WHERE id = $1`

	t, err := scanTask(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		return nil, classify("find task", err)
	}
	return t, nil
}

func (r *TaskRepo) ListByOwner(ctx context.Context, userID string) ([]domain.Task, error) {
	query := `SELECT ` + taskColumns + ` FROM tasks WHERE user_id = $1 ORDER BY created_at, id`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, classify("list tasks", err)
	}
	defer rows.Close()

	var tasks []domain.Task
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, classify("scan task", err)
		}
		tasks = append(tasks, *t)
	}
	if err := rows.Err(); err != nil {
		return nil, classify("list tasks", err)
	}
	return tasks, nil
}

func (r *TaskRepo) Create(ctx context.Context, t *domain.Task) error {
	query := `
		INSERT INTO tasks (` + taskColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`

	_, err := r.db.ExecContext(ctx, query,
		t.ID, t.Title, t.Description, t.Priority, nullString(t.ProjectID), t.UserID, nullTime(t.CompletedAt), t.CreatedAt, t.Version)
	if err != nil {
		return classify("insert task", err)
	}
	return nil
}

// Update пишет все изменяемые поля при совпадении версии. Новая версия пишется в t.
func (r *TaskRepo) Update(ctx context.Context, t *domain.Task) error {
	query := `
		UPDATE tasks
		SET title = $1, description = $2, priority = $3, project_id = $4, completed_at = $5, version = version + 1
		WHERE id = $6 AND version = $7
		RETURNING version`

	err := r.db.QueryRowContext(ctx, query,
		t.Title, t.Description, t.Priority, nullString(t.ProjectID), nullTime(t.CompletedAt), t.ID, t.Version).Scan(&t.Version)
	if err != nil {
		err = classify("update task", err)
		if errors.Is(err, domain.ErrNotFound) {
			return fmt.Errorf("postgres: update task %s: %w", t.ID, domain.ErrVersionConflict)
		}
		return err
	}
	return nil
}

func (r *TaskRepo) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM tasks WHERE id = $1`, id)
	if err != nil {
		return classify("delete task", err)
	}
	return expectRow(result, "delete task")
}

func (r *TaskRepo) DeleteOwnedBy(ctx context.Context, userID string) (int64, error) {
	result, err := r.db.ExecContext(ctx, `DELETE FROM tasks WHERE user_id = $1`, userID)
	if err != nil {
		return 0, classify("delete tasks of user", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return 0, classify("delete tasks of user", err)
	}
	return n, nil
}

// DetachProject отвязывает задачи от удаляемого проекта
func (r *TaskRepo) DetachProject(ctx context.Context, projectID string) error {
	query := `UPDATE tasks SET project_id = NULL, version = version + 1 WHERE project_id = $1`

	if _, err := r.db.ExecContext(ctx, query, projectID); err != nil {
		return classify("detach tasks", err)
	}
	return nil
}

func nullString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

func nullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *t, Valid: true}
}

package postgres

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/jackc/pgx/v5/pgtype"
	"github.com/xela07ax/taskhub/internal/dbx"
	"github.com/xela07ax/taskhub/internal/domain"
)

// Роли собираются в text[] и разбираются через pgtype, пустое множество — '{}'.
const userSelect = `
		SELECT u.id, u.name, u.password_hash, u.created_at, u.updated_at,
		       COALESCE(array_agg(r.role ORDER BY r.role) FILTER (WHERE r.role IS NOT NULL), '{}')
		FROM users u
		LEFT JOIN user_roles r ON r.user_id = u.id`

// pgtype.Map кэширует планы сканирования и не потокобезопасен: берем из пула на время Scan
var typeMaps = sync.Pool{New: func() any { return pgtype.NewMap() }}

type UserRepo struct {
	db dbx.DBTX
}

func NewUserRepo(db dbx.DBTX) *UserRepo {
	return &UserRepo{db: db}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func (r *UserRepo) scan(row rowScanner) (*domain.User, error) {
	u := &domain.User{}
	var roles []string

	types := typeMaps.Get().(*pgtype.Map)
	defer typeMaps.Put(types)

	if err := row.Scan(&u.ID, &u.Name, &u.PasswordHash, &u.CreatedAt, &u.UpdatedAt, types.SQLScanner(&roles)); err != nil {
		return nil, err
	}
	u.Roles = roles
	if u.Roles == nil {
		u.Roles = []string{}
	}
	return u, nil
}

func (r *UserRepo) FindByName(ctx context.Context, name string) (*domain.User, error) {
	query := userSelect + `
		WHERE u.name = $1
		GROUP BY u.id`

	u, err := r.scan(r.db.QueryRowContext(ctx, query, name))
	if err != nil {
		return nil, classify("find user by name", err)
	}
	return u, nil
}

func (r *UserRepo) FindByID(ctx context.Context, id string) (*domain.User, error) {
	query := userSelect + `
		WHERE u.id = $1
		GROUP BY u.id`

	u, err := r.scan(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		return nil, classify("find user by id", err)
	}
	return u, nil
}

// List возвращает всех пользователей, отсортированных по имени
func (r *UserRepo) List(ctx context.Context) ([]domain.User, error) {
	query := userSelect + `
		GROUP BY u.id
		ORDER BY u.name`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, classify("list users", err)
	}
	defer rows.Close()

	var users []domain.User
	for rows.Next() {
		u, err := r.scan(rows)
		if err != nil {
			return nil, classify("scan user", err)
		}
		users = append(users, *u)
	}
	if err := rows.Err(); err != nil {
		return nil, classify("list users", err)
	}
	return users, nil
}

// Create вставляет пользователя и его роли. Вызывать внутри транзакции.
func (r *UserRepo) Create(ctx context.Context, u *domain.User) error {
	query := `
		INSERT INTO users (id, name, password_hash, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5)`

	if _, err := r.db.ExecContext(ctx, query, u.ID, u.Name, u.PasswordHash, u.CreatedAt, u.UpdatedAt); err != nil {
		return classify("insert user", err)
	}
	return r.insertRoles(ctx, u.ID, u.Roles)
}

// Update меняет имя и роли; хеш пароля этим путем не трогается. Вызывать внутри транзакции.
func (r *UserRepo) Update(ctx context.Context, u *domain.User) error {
	query := `UPDATE users SET name = $1, updated_at = $2 WHERE id = $3`

	result, err := r.db.ExecContext(ctx, query, u.Name, u.UpdatedAt, u.ID)
	if err != nil {
		return classify("update user", err)
	}
	if err := expectRow(result, "update user"); err != nil {
		return err
	}

	if _, err := r.db.ExecContext(ctx, `DELETE FROM user_roles WHERE user_id = $1`, u.ID); err != nil {
		return classify("clear roles", err)
	}
	return r.insertRoles(ctx, u.ID, u.Roles)
}

// UpdatePassword — единственная запись в одну колонку
func (r *UserRepo) UpdatePassword(ctx context.Context, id, hash string, at time.Time) error {
	query := `UPDATE users SET password_hash = $1, updated_at = $2 WHERE id = $3`

	result, err := r.db.ExecContext(ctx, query, hash, at, id)
	if err != nil {
		return classify("update password", err)
	}
	return expectRow(result, "update password")
}

// Delete удаляет роли и саму учетку. Проекты и задачи удаляет вызывающий в той же транзакции.
func (r *UserRepo) Delete(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM user_roles WHERE user_id = $1`, id); err != nil {
		return classify("delete roles", err)
	}

	result, err := r.db.ExecContext(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return classify("delete user", err)
	}
	return expectRow(result, "delete user")
}

func (r *UserRepo) insertRoles(ctx context.Context, userID string, roles []string) error {
	for _, role := range roles {
		if _, err := r.db.ExecContext(ctx, `INSERT INTO user_roles (user_id, role) VALUES ($1, $2)`, userID, role); err != nil {
			return classify("insert role", err)
		}
	}
	return nil
}

type rowsAffected interface {
	RowsAffected() (int64, error)
}

// expectRow превращает "0 строк затронуто" в ErrNotFound
func expectRow(result rowsAffected, op string) error {
	n, err := result.RowsAffected()
	if err != nil {
		return classify(op, err)
	}
	if n == 0 {
		return fmt.Errorf("postgres: %s: %w", op, domain.ErrNotFound)
	}
	return nil
}

package postgres

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/jackc/pgx/v5/stdlib" // Драйвер Postgres
	"github.com/xela07ax/taskhub/internal/dbx"
	"github.com/xela07ax/taskhub/internal/domain"
	"github.com/xela07ax/taskhub/internal/infra"
)

// Open создает пул соединений. Доступность проверяет вызывающий через PingContext.
func Open(cfg infra.DatabaseConfig) (*sql.DB, error) {
	db, err := sql.Open("pgx", cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("postgres: open: %w", err)
	}
	db.SetMaxOpenConns(cfg.MaxConns)
	db.SetMaxIdleConns(cfg.MinConns)
	db.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	return db, nil
}

// Store раздает репозитории, привязанные к *sql.DB или к открытой транзакции.
type Store struct {
	db   *sql.DB
	q    dbx.DBTX
	inTx bool
}

func NewStore(db *sql.DB) *Store {
	return &Store{db: db, q: db}
}

func (s *Store) Users() domain.UserRepository       { return NewUserRepo(s.q) }
func (s *Store) Projects() domain.ProjectRepository { return NewProjectRepo(s.q) }
func (s *Store) Tasks() domain.TaskRepository       { return NewTaskRepo(s.q) }

// WithTx выполняет fn в одной транзакции. Внутри уже открытой транзакции просто вызывает fn.
func (s *Store) WithTx(ctx context.Context, fn func(ctx context.Context, tx domain.Store) error) error {
	if s.inTx {
		return fn(ctx, s)
	}

	var fnErr error
	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		fnErr = fn(ctx, &Store{db: s.db, q: tx, inTx: true})
		return fnErr
	})
	if err != nil && fnErr == nil {
		// begin или commit: ошибка драйвера, еще не классифицирована
		return classify("transaction", err)
	}
	return err
}

// Ping проверяет доступность базы при старте
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Package dbx — минимальные абстракции над database/sql для репозиториев:
// DBTX (общий интерфейс *sql.DB и *sql.Tx) и WithTx.
package dbx

import (
	"context"
	"database/sql"
)

// DBTX реализуют и *sql.DB, и *sql.Tx
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// WithTx открывает транзакцию и выполняет fn.
// Коммит при успехе, откат при ошибке или панике; панику пробрасываем дальше.
// Отмена ctx откатывает транзакцию (database/sql делает это сам).
func WithTx(ctx context.Context, db *sql.DB, opts *sql.TxOptions, fn func(ctx context.Context, tx DBTX) error) (err error) {
	tx, err := db.BeginTx(ctx, opts)
	if err != nil {
		return err
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
		if err != nil {
			_ = tx.Rollback()
			return
		}
		err = tx.Commit()
	}()

	err = fn(ctx, tx)
	return err
}

package postgres

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/xela07ax/taskhub/internal/domain"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want error
	}{
		{"no rows", sql.ErrNoRows, domain.ErrNotFound},
		{"unique violation", &pgconn.PgError{Code: "23505"}, domain.ErrNameTaken},
		{"bad uuid", &pgconn.PgError{Code: "22P02"}, domain.ErrNotFound},
		{"connection failure", &pgconn.PgError{Code: "08006"}, domain.ErrStorageUnavailable},
		{"too many connections", &pgconn.PgError{Code: "53300"}, domain.ErrStorageUnavailable},
		{"admin shutdown", &pgconn.PgError{Code: "57P01"}, domain.ErrStorageUnavailable},
		{"serialization", &pgconn.PgError{Code: "40001"}, domain.ErrStorageUnavailable},
		{"bad conn", driver.ErrBadConn, domain.ErrStorageUnavailable},
		{"deadline", context.DeadlineExceeded, domain.ErrStorageUnavailable},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.ErrorIs(t, classify("op", tt.err), tt.want)
		})
	}
}

func TestClassify_KeepsCause(t *testing.T) {
	err := classify("insert user", &pgconn.PgError{Code: "23505", ConstraintName: "users_name_key"})

	var pgErr *pgconn.PgError
	assert.True(t, errors.As(err, &pgErr))
	assert.Equal(t, "users_name_key", pgErr.ConstraintName)
	assert.Contains(t, err.Error(), "postgres: insert user")
}

func TestClassify_Unclassified(t *testing.T) {
	err := classify("op", &pgconn.PgError{Code: "42601"})
	assert.False(t, errors.Is(err, domain.ErrStorageUnavailable))
	assert.False(t, errors.Is(err, domain.ErrNotFound))

	assert.Nil(t, classify("op", nil))
}

package postgres

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"fmt"
	"net"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/xela07ax/taskhub/internal/domain"
)

// classify переводит ошибку драйвера в ошибку предметной области.
// Причина сохраняется в цепочке, поэтому errors.As до *pgconn.PgError работает.
func classify(op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("postgres: %s: %w", op, domain.ErrNotFound)
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch {
		case pgErr.Code == "23505": // unique_violation
			return fmt.Errorf("postgres: %s: %w: %w", op, domain.ErrNameTaken, err)
		case pgErr.Code == "22P02": // невалидный uuid в параметре — такой записи нет
			return fmt.Errorf("postgres: %s: %w", op, domain.ErrNotFound)
		case isTransientCode(pgErr.Code):
			return fmt.Errorf("postgres: %s: %w: %w", op, domain.ErrStorageUnavailable, err)
		}
		return fmt.Errorf("postgres: %s: %w", op, err)
	}

	if isTransient(err) {
		return fmt.Errorf("postgres: %s: %w: %w", op, domain.ErrStorageUnavailable, err)
	}
	return fmt.Errorf("postgres: %s: %w", op, err)
}

// isTransientCode — классы SQLSTATE, после которых запрос можно повторить
func isTransientCode(code string) bool {
	switch {
	case strings.HasPrefix(code, "08"): // connection_exception
		return true
	case strings.HasPrefix(code, "53"): // insufficient_resources
		return true
	case strings.HasPrefix(code, "57P"): // admin_shutdown, crash_shutdown, cannot_connect_now
		return true
	case code == "40001", code == "40P01": // serialization_failure, deadlock_detected
		return true
	}
	return false
}

func isTransient(err error) bool {
	if errors.Is(err, driver.ErrBadConn) || errors.Is(err, sql.ErrConnDone) || errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	if pgconn.Timeout(err) || pgconn.SafeToRetry(err) {
		return true
	}
	var connectErr *pgconn.ConnectError
	if errors.As(err, &connectErr) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr)
}

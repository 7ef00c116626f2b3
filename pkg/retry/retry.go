package retry

import (
	"context"
	"database/sql/driver"
	"errors"
	"io"
	"net"
	"syscall"

	"github.com/lib/pq"
)

// Once выполняет идемпотентное чтение fn и повторяет его ровно один раз,
// если первая попытка завершилась транзиентной ошибкой.
// Для записи и коммитов не использовать.
func Once(ctx context.Context, fn func(ctx context.Context) error) error {
	err := fn(ctx)
	if err == nil || !IsTransient(err) {
		return err
	}
	if ctx.Err() != nil {
		return err
	}
	return fn(ctx)
}

// IsTransient сообщает, имеет ли смысл повторить запрос
func IsTransient(err error) bool {
	if err == nil {
		return false
	}

	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}

	if errors.Is(err, driver.ErrBadConn) ||
		errors.Is(err, io.ErrUnexpectedEOF) ||
		errors.Is(err, syscall.ECONNRESET) ||
		errors.Is(err, syscall.ECONNREFUSED) ||
		errors.Is(err, syscall.EPIPE) {
		return true
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}

	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch {
		case pqErr.Code.Class() == "08": // connection_exception
			return true
		case pqErr.Code == "57P01", // admin_shutdown
			pqErr.Code == "40001", // serialization_failure
			pqErr.Code == "40P01": // deadlock_detected
			return true
		}
	}

	return false
}

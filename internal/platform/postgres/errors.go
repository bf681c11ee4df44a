package postgres

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"net"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/phrazzld/tasktrack-api/internal/store"
)

// PostgreSQL error codes and classes that need individual treatment.
const (
	// integrityConstraintClass covers unique, check, not null and foreign key violations.
	integrityConstraintClass = "23"

	// dataExceptionClass covers values the column type cannot hold.
	dataExceptionClass = "22"

	// connectionExceptionClass covers broken or refused connections.
	connectionExceptionClass = "08"

	// insufficientResourcesClass covers too many connections, disk full and similar.
	insufficientResourcesClass = "53"

	adminShutdownCode       = "57P01"
	crashShutdownCode       = "57P02"
	cannotConnectNowCode    = "57P03"
	serializationFailure    = "40001"
	deadlockDetectedCode    = "40P01"
	queryCanceledCode       = "57014"
	checkViolationCode      = "23514"
	notNullViolationCode    = "23502"
	uniqueViolationCode     = "23505"
)

// MapError maps a database error onto the store error taxonomy.
// The original error stays in the chain so logs keep the driver detail.
// Errors that match no category are returned unchanged and surface as
// unclassified failures.
func MapError(err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, sql.ErrNoRows) {
		return store.Classified(store.ErrNotFound, err)
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch {
		case strings.HasPrefix(pgErr.Code, integrityConstraintClass),
			strings.HasPrefix(pgErr.Code, dataExceptionClass):
			return store.Classified(store.ErrConstraintViolation, err)
		case strings.HasPrefix(pgErr.Code, connectionExceptionClass),
			strings.HasPrefix(pgErr.Code, insufficientResourcesClass):
			return store.Classified(store.ErrStoreUnavailable, err)
		}

		switch pgErr.Code {
		case adminShutdownCode, crashShutdownCode, cannotConnectNowCode,
			serializationFailure, deadlockDetectedCode, queryCanceledCode:
			return store.Classified(store.ErrStoreUnavailable, err)
		}
		return err
	}

	if isTransient(err) {
		return store.Classified(store.ErrStoreUnavailable, err)
	}

	return err
}

// isTransient reports connection-level failures that never reached the
// server or were cut short.
func isTransient(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) ||
		errors.Is(err, context.Canceled) ||
		errors.Is(err, driver.ErrBadConn) ||
		errors.Is(err, sql.ErrConnDone) {
		return true
	}

	if pgconn.Timeout(err) {
		return true
	}

	var connectErr *pgconn.ConnectError
	if errors.As(err, &connectErr) {
		return true
	}

	var netErr net.Error
	return errors.As(err, &netErr)
}

// IsUniqueViolation checks if the given error is a PostgreSQL unique constraint violation.
func IsUniqueViolation(err error) bool {
	return hasCode(err, uniqueViolationCode)
}

// IsCheckConstraintViolation checks if the given error is a PostgreSQL check constraint violation.
// The tasks table rejects blank titles and unknown statuses this way.
func IsCheckConstraintViolation(err error) bool {
	return hasCode(err, checkViolationCode)
}

// IsNotNullViolation checks if the given error is a PostgreSQL not null constraint violation.
func IsNotNullViolation(err error) bool {
	return hasCode(err, notNullViolationCode)
}

func hasCode(err error, code string) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == code
}

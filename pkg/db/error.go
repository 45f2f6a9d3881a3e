package db

import (
	"errors"
	"strings"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

func IsDuplicateKeyErr(err error) bool {
	if err == nil {
		return false
	}

	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}

	if pgErr := asPgError(err); pgErr != nil {
		return pgErr.Code == pgerrcode.UniqueViolation
	}

	// MySQL (error code 1062)
	if strings.Contains(err.Error(), "Error 1062") {
		return true
	}

	// SQLite (error code 2067)
	if strings.Contains(err.Error(), "UNIQUE constraint failed") {
		return true
	}

	return strings.Contains(err.Error(), "duplicate key value violates unique constraint")
}

// IsExclusionViolation reports a PostgreSQL EXCLUDE constraint failure (23P01).
func IsExclusionViolation(err error) bool {
	pgErr := asPgError(err)
	return pgErr != nil && pgErr.Code == pgerrcode.ExclusionViolation
}

// IsSerializationFailure reports a retryable transaction conflict.
func IsSerializationFailure(err error) bool {
	pgErr := asPgError(err)
	if pgErr == nil {
		return false
	}
	switch pgErr.Code {
	case pgerrcode.SerializationFailure, pgerrcode.DeadlockDetected:
		return true
	default:
		return false
	}
}

// IsLockTimeout reports a lock_not_available failure from SELECT ... FOR UPDATE NOWAIT or lock_timeout.
func IsLockTimeout(err error) bool {
	pgErr := asPgError(err)
	return pgErr != nil && pgErr.Code == pgerrcode.LockNotAvailable
}

func asPgError(err error) *pgconn.PgError {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr
	}
	return nil
}

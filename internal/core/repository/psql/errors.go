package psql

import (
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/duynhne/client-service/internal/core/domain"
)

// PostgreSQL SQLSTATE codes the directory reclassifies.
const (
	codeUniqueViolation     = "23505"
	codeForeignKeyViolation = "23503"
	codeCheckViolation      = "23514"
	codeStringTooLong       = "22001"
)

var errValueTooLong = fmt.Errorf("value too long: %w", domain.ErrValidation)

// classify maps a constraint violation that slipped past the conditional
// statements (e.g. a concurrent writer) to a directory error kind. Anything
// else is wrapped as a storage error.
func classify(err error) error {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return domain.StorageError(err)
	}

	switch pgErr.Code {
	case codeUniqueViolation:
		if pgErr.ConstraintName == phoneUniqueConstraint || pgErr.TableName == "phones" {
			return domain.ErrPhoneExists
		}
		return domain.ErrEmailExists
	case codeForeignKeyViolation:
		return domain.ErrClientNotFound
	case codeCheckViolation:
		if pgErr.ConstraintName == emailFormatConstraint || pgErr.TableName == "clients" {
			return domain.ErrInvalidEmail
		}
		return domain.StorageError(err)
	case codeStringTooLong:
		return errValueTooLong
	default:
		return domain.StorageError(err)
	}
}

package errors

import (
	"context"
	"errors"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
)

// MapDBError maps database errors from the Postgres state store to AppError
// instances. Unique violations are surfaced as storage conflicts since the
// state table is a plain key-value upsert target; anything else Postgres
// reports is a storage failure. Unrecognized errors pass through unchanged.
func MapDBError(err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return Wrap(err, ErrCodeStorage, "state store timed out")
	}
	if errors.Is(err, context.Canceled) {
		return Wrap(err, ErrCodeStorage, "state store request canceled")
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgerrcode.UniqueViolation:
			return Wrap(err, ErrCodeStorage, "state key already written by a concurrent writer")
		default:
			return Wrapf(err, ErrCodeStorage, "state store error (%s)", pgErr.Code)
		}
	}

	return err
}

package errors

import (
	"context"
	stderrors "errors"
	"testing"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
)

func TestMapDBErrorNil(t *testing.T) {
	assert.NoError(t, MapDBError(nil))
}

func TestMapDBErrorContextErrors(t *testing.T) {
	err := MapDBError(context.DeadlineExceeded)
	assert.True(t, IsStorage(err))
	assert.True(t, stderrors.Is(err, context.DeadlineExceeded))

	err = MapDBError(context.Canceled)
	assert.True(t, IsStorage(err))
}

func TestMapDBErrorUniqueViolation(t *testing.T) {
	pgErr := &pgconn.PgError{Code: pgerrcode.UniqueViolation}

	err := MapDBError(pgErr)

	assert.True(t, IsStorage(err))
	assert.True(t, stderrors.Is(err, pgErr))
}

func TestMapDBErrorOtherPgErrors(t *testing.T) {
	pgErr := &pgconn.PgError{Code: pgerrcode.UndefinedTable}

	err := MapDBError(pgErr)

	assert.True(t, IsStorage(err))
	assert.Contains(t, err.Error(), pgerrcode.UndefinedTable)
}

func TestMapDBErrorPassThrough(t *testing.T) {
	plain := stderrors.New("not a db error")
	assert.Equal(t, plain, MapDBError(plain))
}

package pg

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"

	"clinic-api/internal/shared"
)

func TestClassifySQLState(t *testing.T) {
	cases := []struct {
		name string
		code string
		want shared.Kind
	}{
		{"unique violation", "23505", shared.DuplicateKeyError},
		{"foreign key violation", "23503", shared.ForeignKeyError},
		{"check violation", "23514", shared.DatabaseError},
		{"connection failure", "08006", shared.DatabaseConnectionError},
		{"syntax error", "42601", shared.DatabaseError},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := &pgconn.PgError{Code: tc.code, Message: "boom"}
			kind, ok := ClassifyError(fmt.Errorf("query: %w", err))
			assert.True(t, ok)
			assert.Equal(t, tc.want, kind)
		})
	}
}

// SQLSTATE beats the message text: a unique-violation code classifies as a
// duplicate even when the message mentions a foreign key.
func TestClassifySQLStateWinsOverMessage(t *testing.T) {
	err := &pgconn.PgError{Code: "23505", Message: "something about a foreign key"}
	kind, ok := ClassifyError(err)
	assert.True(t, ok)
	assert.Equal(t, shared.DuplicateKeyError, kind)
}

func TestClassifySniffingOrder(t *testing.T) {
	// duplicate wins over foreign key, foreign key over connection.
	kind, ok := ClassifyError(errors.New(`pgx: duplicate key and foreign key and connection`))
	assert.True(t, ok)
	assert.Equal(t, shared.DuplicateKeyError, kind)

	kind, ok = ClassifyError(errors.New(`pgx: foreign key trouble on connection`))
	assert.True(t, ok)
	assert.Equal(t, shared.ForeignKeyError, kind)

	kind, ok = ClassifyError(errors.New(`pgx: connection refused`))
	assert.True(t, ok)
	assert.Equal(t, shared.DatabaseConnectionError, kind)
}

func TestClassifyIgnoresUnrelatedErrors(t *testing.T) {
	_, ok := ClassifyError(errors.New("template parse failure"))
	assert.False(t, ok)

	_, ok = ClassifyError(context.Canceled)
	assert.False(t, ok)

	_, ok = ClassifyError(nil)
	assert.False(t, ok)
}

func TestClassifyPgxSentinels(t *testing.T) {
	kind, ok := ClassifyError(pgx.ErrNoRows)
	assert.True(t, ok)
	assert.Equal(t, shared.DatabaseError, kind)

	kind, ok = ClassifyError(pgx.ErrTxClosed)
	assert.True(t, ok)
	assert.Equal(t, shared.DatabaseError, kind)
}

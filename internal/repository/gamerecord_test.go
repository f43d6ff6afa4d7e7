package repository

import (
	"errors"
	"testing"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
)

func ptr[T any](v T) *T { return &v }

func TestRecordFilterWhereClause(t *testing.T) {
	tests := []struct {
		name   string
		filter RecordFilter
		clause string
		args   pgx.NamedArgs
	}{
		{"empty", RecordFilter{}, "", pgx.NamedArgs{}},
		{
			"dimensions",
			RecordFilter{Width: ptr(9), Height: ptr(9)},
			"width = @width AND height = @height",
			pgx.NamedArgs{"width": 9, "height": 9},
		},
		{
			"all",
			RecordFilter{Width: ptr(30), Height: ptr(16), MineCount: ptr(99), Won: ptr(true)},
			"width = @width AND height = @height AND mine_count = @mine_count AND won = @won",
			pgx.NamedArgs{"width": 30, "height": 16, "mine_count": 99, "won": true},
		},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			clause, args := test.filter.WhereClause()
			assert.Equal(t, test.clause, clause)
			assert.Equal(t, test.args, args)
		})
	}
}

func TestTranslate(t *testing.T) {
	assert.ErrorIs(t, translate(pgx.ErrNoRows), ErrNotFound)

	dup := &pgconn.PgError{Code: pgerrcode.UniqueViolation}
	err := translate(dup)
	assert.ErrorIs(t, err, ErrDuplicate)
	var pgErr *pgconn.PgError
	assert.True(t, errors.As(err, &pgErr))

	other := errors.New("boom")
	assert.Equal(t, other, translate(other))
	assert.NoError(t, translate(nil))
}

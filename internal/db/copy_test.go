package db

import (
	"context"
	"errors"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCopyFromSchema_Success(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectCopyFrom(pgx.Identifier{"trail", "block_groups"}, []string{"geoid"}).WillReturnResult(1)

	n, err := CopyFromSchema(context.Background(), mock, "trail", "block_groups", []string{"geoid"}, [][]any{{"290770001001"}})
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCopyFromSchema_Empty(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	n, err := CopyFromSchema(context.Background(), mock, "trail", "block_groups", []string{"geoid"}, nil)
	require.NoError(t, err)
	assert.Equal(t, int64(0), n)
}

func TestCopyFromSchema_Error(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectCopyFrom(pgx.Identifier{"trail", "block_groups"}, []string{"geoid"}).
		WillReturnError(errors.New("copy failed"))

	_, err = CopyFromSchema(context.Background(), mock, "trail", "block_groups", []string{"geoid"}, [][]any{{"290770001001"}})
	require.Error(t, err)
}

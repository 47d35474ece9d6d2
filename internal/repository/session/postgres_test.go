package session

import (
	"context"
	"testing"

	"github.com/pashagolub/pgxmock/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRevokeByUser(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectExec(`DELETE FROM auth.sessions WHERE user_id = \$1`).
		WithArgs("user-1").
		WillReturnResult(pgxmock.NewResult("DELETE", 3))

	n, err := NewPostgres(mock, nil).RevokeByUser(context.Background(), "user-1")
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)
	assert.NoError(t, mock.ExpectationsWereMet())
}

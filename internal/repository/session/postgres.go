package session

import (
	"context"
	"io"
	"log"

	"cartify/internal/db"
	"cartify/internal/repository/pgutil"
)

type postgresRepo struct {
	pool   db.Querier
	logger *log.Logger
}

// NewPostgres operates on the auth schema that the backend shares with this database.
// Refresh tokens reference sessions and are removed with them.
func NewPostgres(pool db.Querier, logger *log.Logger) Repository {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &postgresRepo{pool: pool, logger: logger}
}

func (r *postgresRepo) RevokeByUser(ctx context.Context, userID string) (int64, error) {
	cmd, err := r.pool.Exec(ctx, `DELETE FROM auth.sessions WHERE user_id = $1`, userID)
	if err != nil {
		r.logger.Printf("session repo: revoke user_id=%s error=%v", userID, err)
		return 0, pgutil.MapError(err)
	}
	r.logger.Printf("session repo: revoked user_id=%s sessions=%d", userID, cmd.RowsAffected())
	return cmd.RowsAffected(), nil
}

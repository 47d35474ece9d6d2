package session

import "context"

// Repository manages the backend's stored refresh sessions.
type Repository interface {
	// RevokeByUser removes every stored session of the user and reports how many were removed.
	RevokeByUser(ctx context.Context, userID string) (int64, error)
}

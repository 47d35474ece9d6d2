// Package auth talks to the backend-as-a-service authentication API.
package auth

import (
	"context"
	"errors"

	"cartify/internal/domain"
)

var (
	// ErrInvalidCredentials is returned when email/password do not match.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrInvalidToken indicates the provided token could not be validated.
	ErrInvalidToken = errors.New("invalid token")
	// ErrEmailTaken is returned when registering an address that already has an account.
	ErrEmailTaken = errors.New("email already registered")
)

// Provider is the request/response contract of the auth backend.
type Provider interface {
	SignUp(ctx context.Context, email, password string) (*domain.User, error)
	SignIn(ctx context.Context, email, password string) (*domain.Session, error)
	UserFromToken(ctx context.Context, token string) (*domain.User, error)
	ResendConfirmation(ctx context.Context, email string) error
	ListUsers(ctx context.Context) ([]domain.User, error)
	DeleteUser(ctx context.Context, userID string) error
	RevokeSessions(ctx context.Context, userID string) error
}

// SessionRevoker removes stored sessions for a user.
type SessionRevoker interface {
	RevokeByUser(ctx context.Context, userID string) (int64, error)
}

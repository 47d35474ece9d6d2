package account

import (
	"context"
	"errors"
	"io"
	"log"
	"strings"

	"cartify/internal/auth"
	"cartify/internal/domain"
	"cartify/internal/validation"
)

const passwordMin = 6

type cartClearer interface {
	Clear(ctx context.Context, userID string) error
}

// Service handles account lifecycle on top of the auth provider.
type Service struct {
	provider auth.Provider
	carts    cartClearer
	logger   *log.Logger
}

func New(provider auth.Provider, carts cartClearer, logger *log.Logger) *Service {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &Service{provider: provider, carts: carts, logger: logger}
}

// Credentials is the register and login payload.
type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (s *Service) Register(ctx context.Context, in Credentials) (*domain.User, error) {
	email, password, err := validateCredentials(in)
	if err != nil {
		return nil, err
	}
	user, err := s.provider.SignUp(ctx, email, password)
	if err != nil {
		if errors.Is(err, auth.ErrEmailTaken) {
			return nil, domain.Validation("email already registered")
		}
		return nil, err
	}
	s.logger.Printf("account: registered user_id=%s confirmed=%t", user.ID, user.EmailConfirmed)
	return user, nil
}

func (s *Service) Login(ctx context.Context, in Credentials) (*domain.Session, error) {
	email, password, err := validateCredentials(in)
	if err != nil {
		return nil, err
	}
	sess, err := s.provider.SignIn(ctx, email, password)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidCredentials) {
			return nil, domain.Unauthorized("invalid email or password")
		}
		return nil, err
	}
	return sess, nil
}

// Authenticate resolves a bearer token into a user.
func (s *Service) Authenticate(ctx context.Context, token string) (*domain.User, error) {
	user, err := s.provider.UserFromToken(ctx, token)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidToken) {
			return nil, domain.Unauthorized("invalid or expired token")
		}
		return nil, err
	}
	return user, nil
}

func (s *Service) ResendConfirmation(ctx context.Context, email string) error {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return domain.Validation("email required")
	}
	if !validation.Email(email) {
		return domain.Validation("invalid email format")
	}
	return s.provider.ResendConfirmation(ctx, email)
}

func (s *Service) ListUsers(ctx context.Context) ([]domain.User, error) {
	return s.provider.ListUsers(ctx)
}

// ResolveTarget honours requested only for admins; everyone else acts on themselves.
func ResolveTarget(caller domain.User, requested string) string {
	requested = strings.TrimSpace(requested)
	if caller.IsAdmin() && requested != "" {
		return requested
	}
	return caller.ID
}

// RevokeSessions signs the target out everywhere and returns the resolved target id.
func (s *Service) RevokeSessions(ctx context.Context, caller domain.User, requested string) (string, error) {
	target := ResolveTarget(caller, requested)
	if err := s.provider.RevokeSessions(ctx, target); err != nil {
		return "", err
	}
	s.logger.Printf("account: revoked sessions target=%s by=%s", target, caller.ID)
	return target, nil
}

// DeleteAccount removes the target's auth user and server cart, returning the resolved target id.
func (s *Service) DeleteAccount(ctx context.Context, caller domain.User, requested string) (string, error) {
	target := ResolveTarget(caller, requested)
	if err := s.provider.DeleteUser(ctx, target); err != nil {
		return "", err
	}
	if s.carts != nil {
		if err := s.carts.Clear(ctx, target); err != nil {
			s.logger.Printf("account: clear cart after delete target=%s error=%v", target, err)
		}
	}
	s.logger.Printf("account: deleted target=%s by=%s", target, caller.ID)
	return target, nil
}

func validateCredentials(in Credentials) (string, string, error) {
	email := strings.ToLower(strings.TrimSpace(in.Email))
	if email == "" || in.Password == "" {
		return "", "", domain.Validation("email and password required")
	}
	if !validation.Email(email) {
		return "", "", domain.Validation("invalid email format")
	}
	if len(in.Password) < passwordMin {
		return "", "", domain.Validation("password too short")
	}
	return email, in.Password, nil
}

package auth

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"time"

	"cartify/internal/config"
	"cartify/internal/domain"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

// Client implements Provider against a GoTrue-compatible HTTP API.
type Client struct {
	baseURL    string
	anonKey    string
	serviceKey string
	http       *http.Client
	sessions   SessionRevoker
	logger     *log.Logger
}

var _ Provider = (*Client)(nil)

func NewClient(cfg config.AuthConfig, sessions SessionRevoker, logger *log.Logger) *Client {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &Client{
		baseURL:    cfg.URL,
		anonKey:    cfg.AnonKey,
		serviceKey: cfg.ServiceKey,
		http: &http.Client{
			Timeout:   cfg.Timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
		sessions: sessions,
		logger:   logger,
	}
}

type gotrueUser struct {
	ID               string         `json:"id"`
	Email            string         `json:"email"`
	EmailConfirmedAt *time.Time     `json:"email_confirmed_at"`
	AppMetadata      map[string]any `json:"app_metadata"`
	CreatedAt        time.Time      `json:"created_at"`
	LastSignInAt     *time.Time     `json:"last_sign_in_at"`
}

// toDomain reads the role only from app_metadata, which users cannot edit themselves.
func (u gotrueUser) toDomain() domain.User {
	role, _ := u.AppMetadata["role"].(string)
	return domain.User{
		ID:             u.ID,
		Email:          u.Email,
		Role:           domain.ParseRole(role),
		EmailConfirmed: u.EmailConfirmedAt != nil,
		CreatedAt:      u.CreatedAt,
		LastSignInAt:   u.LastSignInAt,
	}
}

type credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// apiError is a non-2xx answer from the auth API.
type apiError struct {
	Status  int
	Message string
}

func (e *apiError) Error() string {
	return fmt.Sprintf("auth api status=%d: %s", e.Status, e.Message)
}

func (c *Client) SignUp(ctx context.Context, email, password string) (*domain.User, error) {
	// with confirmation enabled the body is the user; with autoconfirm it is a session
	var resp struct {
		gotrueUser
		User *gotrueUser `json:"user"`
	}
	err := c.do(ctx, http.MethodPost, "/signup", c.anonKey, credentials{Email: email, Password: password}, &resp)
	if err != nil {
		var ae *apiError
		if errors.As(err, &ae) {
			switch {
			case ae.Status == http.StatusUnprocessableEntity:
				return nil, ErrEmailTaken
			case ae.Status >= 400 && ae.Status < 500:
				return nil, domain.Provider(ae.Message, true, err)
			}
		}
		return nil, c.providerErr("sign up", err)
	}
	u := resp.gotrueUser
	if resp.User != nil {
		u = *resp.User
	}
	user := u.toDomain()
	return &user, nil
}

func (c *Client) SignIn(ctx context.Context, email, password string) (*domain.Session, error) {
	var resp struct {
		AccessToken string     `json:"access_token"`
		ExpiresIn   int        `json:"expires_in"`
		User        gotrueUser `json:"user"`
	}
	err := c.do(ctx, http.MethodPost, "/token?grant_type=password", c.anonKey, credentials{Email: email, Password: password}, &resp)
	if err != nil {
		var ae *apiError
		if errors.As(err, &ae) && (ae.Status == http.StatusBadRequest || ae.Status == http.StatusUnauthorized) {
			return nil, ErrInvalidCredentials
		}
		return nil, c.providerErr("sign in", err)
	}
	return &domain.Session{
		AccessToken: resp.AccessToken,
		ExpiresIn:   resp.ExpiresIn,
		User:        resp.User.toDomain(),
	}, nil
}

func (c *Client) UserFromToken(ctx context.Context, token string) (*domain.User, error) {
	if token == "" {
		return nil, ErrInvalidToken
	}
	var u gotrueUser
	err := c.doWithKey(ctx, http.MethodGet, "/user", c.anonKey, token, nil, &u)
	if err != nil {
		var ae *apiError
		if errors.As(err, &ae) && ae.Status >= 400 && ae.Status < 500 {
			return nil, ErrInvalidToken
		}
		return nil, c.providerErr("get user", err)
	}
	if u.ID == "" {
		return nil, ErrInvalidToken
	}
	user := u.toDomain()
	return &user, nil
}

func (c *Client) ResendConfirmation(ctx context.Context, email string) error {
	body := map[string]string{"type": "signup", "email": email}
	if err := c.do(ctx, http.MethodPost, "/resend", c.anonKey, body, nil); err != nil {
		var ae *apiError
		if errors.As(err, &ae) && ae.Status >= 400 && ae.Status < 500 {
			return domain.Provider(ae.Message, true, err)
		}
		return c.providerErr("resend confirmation", err)
	}
	return nil
}

func (c *Client) ListUsers(ctx context.Context) ([]domain.User, error) {
	var resp struct {
		Users []gotrueUser `json:"users"`
	}
	if err := c.do(ctx, http.MethodGet, "/admin/users?per_page=1000", c.serviceKey, nil, &resp); err != nil {
		return nil, c.providerErr("list users", err)
	}
	users := make([]domain.User, 0, len(resp.Users))
	for _, u := range resp.Users {
		users = append(users, u.toDomain())
	}
	return users, nil
}

func (c *Client) DeleteUser(ctx context.Context, userID string) error {
	err := c.do(ctx, http.MethodDelete, "/admin/users/"+url.PathEscape(userID), c.serviceKey, nil, nil)
	if err != nil {
		var ae *apiError
		if errors.As(err, &ae) && ae.Status == http.StatusNotFound {
			return domain.ErrNotFound
		}
		return c.providerErr("delete user", err)
	}
	c.logger.Printf("auth: deleted user_id=%s", userID)
	return nil
}

// RevokeSessions drops stored refresh sessions; access tokens already issued run out on their own.
func (c *Client) RevokeSessions(ctx context.Context, userID string) error {
	if c.sessions == nil {
		return domain.Internal(errors.New("session store not configured"))
	}
	if _, err := c.sessions.RevokeByUser(ctx, userID); err != nil {
		return err
	}
	return nil
}

func (c *Client) providerErr(op string, err error) error {
	c.logger.Printf("auth: %s error=%v", op, err)
	return domain.Provider("authentication service unavailable", false, err)
}

func (c *Client) do(ctx context.Context, method, path, key string, body, out any) error {
	return c.doWithKey(ctx, method, path, key, key, body, out)
}

func (c *Client) doWithKey(ctx context.Context, method, path, apiKey, bearer string, body, out any) error {
	if c.baseURL == "" {
		return errors.New("auth url not configured")
	}
	var reader io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(buf)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if apiKey != "" {
		req.Header.Set("apikey", apiKey)
	}
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &apiError{Status: resp.StatusCode, Message: errorMessage(data, resp.Status)}
	}
	if out == nil || len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	return json.Unmarshal(data, out)
}

func errorMessage(data []byte, fallback string) string {
	var payload struct {
		Msg              string `json:"msg"`
		Message          string `json:"message"`
		ErrorDescription string `json:"error_description"`
		Error            string `json:"error"`
	}
	if err := json.Unmarshal(data, &payload); err == nil {
		for _, m := range []string{payload.Msg, payload.Message, payload.ErrorDescription, payload.Error} {
			if m != "" {
				return m
			}
		}
	}
	return fallback
}

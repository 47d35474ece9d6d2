package auth

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"cartify/internal/config"
	"cartify/internal/domain"
)

type stubRevoker struct {
	userID string
	err    error
}

func (s *stubRevoker) RevokeByUser(_ context.Context, userID string) (int64, error) {
	s.userID = userID
	return 2, s.err
}

func newTestClient(t *testing.T, handler http.HandlerFunc, revoker SessionRevoker) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(config.AuthConfig{
		URL:        srv.URL,
		AnonKey:    "anon",
		ServiceKey: "service",
		Timeout:    time.Second,
	}, revoker, nil)
}

func TestSignIn_ReturnsSessionWithTypedRole(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/token" || r.URL.Query().Get("grant_type") != "password" {
			t.Fatalf("unexpected request %s", r.URL.String())
		}
		if r.Header.Get("apikey") != "anon" {
			t.Fatalf("expected anon api key")
		}
		var body credentials
		_ = json.NewDecoder(r.Body).Decode(&body)
		if body.Email != "admin@example.com" {
			t.Fatalf("unexpected email %q", body.Email)
		}
		_, _ = w.Write([]byte(`{"access_token":"tok","expires_in":3600,"user":{"id":"u1","email":"admin@example.com","app_metadata":{"role":"admin"},"user_metadata":{"role":"customer"}}}`))
	}, nil)

	sess, err := client.SignIn(context.Background(), "admin@example.com", "secret1")
	if err != nil {
		t.Fatalf("sign in: %v", err)
	}
	if sess.AccessToken != "tok" || sess.ExpiresIn != 3600 {
		t.Fatalf("unexpected session %+v", sess)
	}
	if !sess.User.IsAdmin() {
		t.Fatalf("expected admin role from app_metadata")
	}
}

func TestSignIn_BadCredentials(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":"invalid_grant","error_description":"Invalid login credentials"}`))
	}, nil)

	_, err := client.SignIn(context.Background(), "a@example.com", "nope")
	if !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
}

func TestUserFromToken_RoleInUserMetadataGrantsNothing(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer user-token" {
			t.Fatalf("expected bearer token, got %q", r.Header.Get("Authorization"))
		}
		_, _ = w.Write([]byte(`{"id":"u2","email":"b@example.com","user_metadata":{"role":"admin"}}`))
	}, nil)

	user, err := client.UserFromToken(context.Background(), "user-token")
	if err != nil {
		t.Fatalf("user from token: %v", err)
	}
	if user.Role != domain.RoleCustomer {
		t.Fatalf("expected customer role, got %s", user.Role)
	}
}

func TestUserFromToken_Rejected(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"msg":"invalid JWT"}`))
	}, nil)

	if _, err := client.UserFromToken(context.Background(), "bad"); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}
	if _, err := client.UserFromToken(context.Background(), ""); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken for empty token, got %v", err)
	}
}

func TestUserFromToken_ServerErrorIsProviderError(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}, nil)

	_, err := client.UserFromToken(context.Background(), "tok")
	var de *domain.Error
	if !errors.As(err, &de) || de.Kind != domain.KindProvider || de.CallerCaused {
		t.Fatalf("expected infrastructure provider error, got %v", err)
	}
}

func TestSignUp_UnconfirmedUser(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/signup" {
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
		_, _ = w.Write([]byte(`{"id":"u3","email":"c@example.com","email_confirmed_at":null}`))
	}, nil)

	user, err := client.SignUp(context.Background(), "c@example.com", "secret1")
	if err != nil {
		t.Fatalf("sign up: %v", err)
	}
	if user.ID != "u3" || user.EmailConfirmed {
		t.Fatalf("unexpected user %+v", user)
	}
}

func TestSignUp_EmailTaken(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		_, _ = w.Write([]byte(`{"msg":"User already registered"}`))
	}, nil)

	if _, err := client.SignUp(context.Background(), "c@example.com", "secret1"); !errors.Is(err, ErrEmailTaken) {
		t.Fatalf("expected ErrEmailTaken, got %v", err)
	}
}

func TestAdminCallsUseServiceKey(t *testing.T) {
	var paths []string
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer service" {
			t.Fatalf("expected service key on %s", r.URL.Path)
		}
		paths = append(paths, r.Method+" "+r.URL.Path)
		if r.Method == http.MethodGet {
			_, _ = w.Write([]byte(`{"users":[{"id":"u1","email":"a@example.com"},{"id":"u2","email":"b@example.com","app_metadata":{"role":"admin"}}]}`))
			return
		}
		w.WriteHeader(http.StatusOK)
	}, nil)

	users, err := client.ListUsers(context.Background())
	if err != nil {
		t.Fatalf("list users: %v", err)
	}
	if len(users) != 2 || !users[1].IsAdmin() {
		t.Fatalf("unexpected users %+v", users)
	}
	if err := client.DeleteUser(context.Background(), "u1"); err != nil {
		t.Fatalf("delete user: %v", err)
	}
	if strings.Join(paths, ",") != "GET /admin/users,DELETE /admin/users/u1" {
		t.Fatalf("unexpected calls %v", paths)
	}
}

func TestRevokeSessions_UsesSessionStore(t *testing.T) {
	revoker := &stubRevoker{}
	client := newTestClient(t, func(http.ResponseWriter, *http.Request) {
		t.Fatalf("revocation must not call the auth API")
	}, revoker)

	if err := client.RevokeSessions(context.Background(), "u9"); err != nil {
		t.Fatalf("revoke: %v", err)
	}
	if revoker.userID != "u9" {
		t.Fatalf("expected u9 revoked, got %q", revoker.userID)
	}
}

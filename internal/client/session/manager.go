package session

import (
	"context"
	"encoding/json"
	"io"
	"log"
	"net/http"
	"sync"

	"cartify/internal/client/apiclient"
	"cartify/internal/client/storage"
	"cartify/internal/domain"
)

// StorageKey is where the signed-in session is persisted.
const StorageKey = "cartify-session"

type requester interface {
	Do(ctx context.Context, path string, req apiclient.Request, out any) error
}

// Manager owns the current session. Subscribers receive the latest session (nil after sign-out)
// on their channel; a slow subscriber only ever sees the most recent value.
type Manager struct {
	mu      sync.Mutex
	current *domain.Session
	subs    map[int]chan *domain.Session
	nextID  int
	api     requester
	storage storage.Storage
	logger  *log.Logger
}

func NewManager(api requester, s storage.Storage, logger *log.Logger) *Manager {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	m := &Manager{
		subs:    map[int]chan *domain.Session{},
		api:     api,
		storage: s,
		logger:  logger,
	}
	m.current = m.load()
	return m
}

func (m *Manager) load() *domain.Session {
	data, err := m.storage.Load(StorageKey)
	if err != nil || len(data) == 0 {
		return nil
	}
	var sess domain.Session
	if err := json.Unmarshal(data, &sess); err != nil || sess.AccessToken == "" {
		m.logger.Printf("session: discarding stored session error=%v", err)
		return nil
	}
	return &sess
}

// Current returns a copy of the session, or nil when signed out.
func (m *Manager) Current() *domain.Session {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.current == nil {
		return nil
	}
	s := *m.current
	return &s
}

// Token is the bearer token of the current session, or "".
func (m *Manager) Token() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.current == nil {
		return ""
	}
	return m.current.AccessToken
}

// Subscribe registers for session changes. The returned func unsubscribes and closes the channel;
// calling it more than once is safe.
func (m *Manager) Subscribe() (<-chan *domain.Session, func()) {
	m.mu.Lock()
	defer m.mu.Unlock()
	id := m.nextID
	m.nextID++
	ch := make(chan *domain.Session, 1)
	m.subs[id] = ch

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			m.mu.Lock()
			defer m.mu.Unlock()
			delete(m.subs, id)
			close(ch)
		})
	}
}

// SignIn exchanges credentials for a session, persists it and notifies subscribers.
func (m *Manager) SignIn(ctx context.Context, email, password string) (*domain.Session, error) {
	var sess domain.Session
	err := m.api.Do(ctx, "/auth/login", apiclient.Request{
		Method: http.MethodPost,
		Body:   map[string]string{"email": email, "password": password},
	}, &sess)
	if err != nil {
		return nil, err
	}
	if err := m.set(&sess); err != nil {
		return nil, err
	}
	return m.Current(), nil
}

// SignOut drops the local session. With global set, the server revokes every session of the user first.
func (m *Manager) SignOut(ctx context.Context, global bool) error {
	if token := m.Token(); global && token != "" {
		err := m.api.Do(ctx, "/admin/revoke-session", apiclient.Request{
			Method:  http.MethodPost,
			Headers: map[string]string{"Authorization": "Bearer " + token},
		}, nil)
		if err != nil {
			return err
		}
	}
	return m.set(nil)
}

func (m *Manager) set(sess *domain.Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	var err error
	if sess == nil {
		err = m.storage.Delete(StorageKey)
	} else {
		var data []byte
		if data, err = json.Marshal(sess); err == nil {
			err = m.storage.Save(StorageKey, data)
		}
	}
	if err != nil {
		m.logger.Printf("session: persist error=%v", err)
		return err
	}

	m.current = sess
	for _, ch := range m.subs {
		var v *domain.Session
		if sess != nil {
			cp := *sess
			v = &cp
		}
		select {
		case ch <- v:
		default:
			// replace the unread value with the newer one
			select {
			case <-ch:
			default:
			}
			ch <- v
		}
	}
	return nil
}

package sdk

import (
	"context"
	"encoding/json"
	"log"
	"sync"
)

// Persisted key names. Token and user are stored as two independent entries.
const (
	TokenKey = "authToken"
	UserKey  = "user"
)

// SessionBackend is the durable key-value storage behind a SessionStore.
// Get reports found=false (and a nil error) for missing keys; Delete of a
// missing key is not an error.
type SessionBackend interface {
	Get(ctx context.Context, key string) (value string, found bool, err error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
}

// SessionStore is the single source of truth for authentication state.
// It is safe for concurrent use; concurrent logins resolve last-write-wins.
type SessionStore struct {
	backend SessionBackend

	mu    sync.RWMutex
	token string
	user  *User

	listenersMu sync.Mutex
	listeners   map[int]func(Session)
	nextID      int
}

// NewSessionStore creates an unauthenticated store backed by backend.
// Call Initialize to hydrate any previously persisted session.
func NewSessionStore(backend SessionBackend) *SessionStore {
	return &SessionStore{
		backend:   backend,
		listeners: make(map[int]func(Session)),
	}
}

// Initialize hydrates the in-memory session from durable storage. It never fails:
// missing, half-written or undecodable entries leave the session unauthenticated,
// and a partial pair is purged so token and user stay coupled.
func (s *SessionStore) Initialize(ctx context.Context) {
	token, hasToken, err := s.backend.Get(ctx, TokenKey)
	if err != nil {
		log.Printf("session: read %s failed: %v", TokenKey, err)
		return
	}
	rawUser, hasUser, err := s.backend.Get(ctx, UserKey)
	if err != nil {
		log.Printf("session: read %s failed: %v", UserKey, err)
		return
	}

	if !hasToken && !hasUser {
		return
	}

	var user User
	token = stripBearer(token)
	corrupt := !hasToken || !hasUser || token == ""
	if !corrupt {
		if err := json.Unmarshal([]byte(rawUser), &user); err != nil {
			log.Printf("session: persisted user is not valid JSON: %v", err)
			corrupt = true
		}
	}
	if corrupt {
		log.Printf("session: discarding partial persisted session (token=%t user=%t)", hasToken, hasUser)
		s.purge(ctx)
		return
	}

	s.mu.Lock()
	s.token = token
	s.user = &user
	s.mu.Unlock()

	s.notify()
}

// Login marks the session authenticated and persists user and token.
// The next outbound request through an Authorizer carries the new token.
func (s *SessionStore) Login(ctx context.Context, user User, token string) {
	token = stripBearer(token)
	if token == "" {
		log.Printf("session: ignoring login for %q without a token", user.Email)
		return
	}
	user.Role = NormalizeRole(string(user.Role))

	s.mu.Lock()
	s.token = token
	s.user = &user
	s.mu.Unlock()

	s.persist(ctx, user, token)
	s.notify()
}

// persist replaces the stored pair. Any previous token is removed before the
// new user is written and the new token is written last, so an interruption
// at any step leaves either nothing or a user without a token, both of which
// Initialize discards.
func (s *SessionStore) persist(ctx context.Context, user User, token string) {
	encoded, err := json.Marshal(user)
	if err != nil {
		log.Printf("session: encode user failed: %v", err)
		return
	}
	if err := s.backend.Delete(ctx, TokenKey); err != nil {
		log.Printf("session: delete previous %s failed, session kept in memory only: %v", TokenKey, err)
		return
	}
	if err := s.backend.Set(ctx, UserKey, string(encoded)); err != nil {
		log.Printf("session: persist %s failed: %v", UserKey, err)
		return
	}
	if err := s.backend.Set(ctx, TokenKey, token); err != nil {
		log.Printf("session: persist %s failed: %v", TokenKey, err)
	}
}

// Logout clears the in-memory and durable session. Calling it on an
// unauthenticated store leaves the state unchanged.
func (s *SessionStore) Logout(ctx context.Context) {
	s.mu.Lock()
	wasAuthenticated := s.token != ""
	s.token = ""
	s.user = nil
	s.mu.Unlock()

	s.purge(ctx)

	if wasAuthenticated {
		s.notify()
	}
}

// IsAuthenticated reports whether a token (and therefore a user) is present.
func (s *SessionStore) IsAuthenticated() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token != ""
}

// CurrentUser returns a copy of the session user, or nil when unauthenticated.
func (s *SessionStore) CurrentUser() *User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.user == nil {
		return nil
	}
	u := *s.user
	return &u
}

// Token returns the raw bearer token, or "" when unauthenticated.
func (s *SessionStore) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

// Snapshot returns token and user read under one lock.
func (s *SessionStore) Snapshot() Session {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.user == nil {
		return Session{}
	}
	u := *s.user
	return Session{Token: s.token, User: &u}
}

// OnChange registers fn to be called after every login, logout or hydration.
// The returned function unregisters it.
func (s *SessionStore) OnChange(fn func(Session)) func() {
	s.listenersMu.Lock()
	id := s.nextID
	s.nextID++
	s.listeners[id] = fn
	s.listenersMu.Unlock()

	return func() {
		s.listenersMu.Lock()
		delete(s.listeners, id)
		s.listenersMu.Unlock()
	}
}

func (s *SessionStore) purge(ctx context.Context) {
	if err := s.backend.Delete(ctx, TokenKey); err != nil {
		log.Printf("session: delete %s failed: %v", TokenKey, err)
	}
	if err := s.backend.Delete(ctx, UserKey); err != nil {
		log.Printf("session: delete %s failed: %v", UserKey, err)
	}
}

func (s *SessionStore) notify() {
	snapshot := s.Snapshot()

	s.listenersMu.Lock()
	fns := make([]func(Session), 0, len(s.listeners))
	for _, fn := range s.listeners {
		fns = append(fns, fn)
	}
	s.listenersMu.Unlock()

	for _, fn := range fns {
		fn(snapshot)
	}
}

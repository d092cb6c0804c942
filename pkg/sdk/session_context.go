package sdk

import (
	"context"
	"log"
	"net/http"
	"sync"
	"time"
)

// SessionContextOptions configures OpenSessionContext.
type SessionContextOptions struct {
	// BaseURL is the backend API root, for example http://localhost:3000.
	BaseURL string
	// Backend persists the session. Required.
	Backend SessionBackend
	// Navigator receives the forced redirect after a 401. Optional.
	Navigator Navigator
	// Transport is the base round tripper for all requests. Defaults to http.DefaultTransport.
	Transport http.RoundTripper
	// Timeout bounds each outbound request. Zero means 30s.
	Timeout time.Duration
}

// SessionContext owns one authenticated client lifecycle: a hydrated session
// store, an authorized API client and the credential exchange that feeds it.
// Close deregisters the authorizer; reopening creates a fresh registration.
type SessionContext struct {
	Store      *SessionStore
	Authorizer *Authorizer
	Exchange   *CredentialExchange
	Client     *Client
	HTTPClient *http.Client

	reg         *Registration
	unsubscribe func()
	closeOnce   sync.Once
}

// OpenSessionContext hydrates the session from opts.Backend and installs the
// request authorizer on a dedicated HTTP client.
func OpenSessionContext(ctx context.Context, opts SessionContextOptions) *SessionContext {
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	store := NewSessionStore(opts.Backend)
	unsubscribe := store.OnChange(logTransition)
	store.Initialize(ctx)

	authorizer := NewAuthorizer(store, opts.Navigator)
	httpClient := &http.Client{Transport: opts.Transport, Timeout: timeout}
	reg := authorizer.Install(httpClient)

	// Login requests go out on their own client so no stale token is attached.
	loginClient := &http.Client{Transport: opts.Transport, Timeout: timeout}

	return &SessionContext{
		Store:       store,
		Authorizer:  authorizer,
		Exchange:    NewCredentialExchange(opts.BaseURL, store, WithExchangeHTTPClient(loginClient)),
		Client:      NewClient(opts.BaseURL, WithHTTPClient(httpClient)),
		HTTPClient:  httpClient,
		reg:         reg,
		unsubscribe: unsubscribe,
	}
}

func logTransition(s Session) {
	if s.Authenticated() {
		log.Printf("session: active user=%s role=%s", s.User.ID, s.Role())
		return
	}
	log.Printf("session: cleared")
}

// RequireSession returns the current session or ErrNotAuthenticated.
func (c *SessionContext) RequireSession() (Session, error) {
	session := c.Store.Snapshot()
	if !session.Authenticated() {
		return Session{}, ErrNotAuthenticated
	}
	return session, nil
}

// Close removes the authorizer from the context's HTTP client and stops
// logging session transitions.
func (c *SessionContext) Close() {
	c.closeOnce.Do(func() {
		c.reg.Remove()
		c.unsubscribe()
	})
}

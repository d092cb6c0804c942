package client

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/pterm/pterm"

	"github.com/edugrid/portal/internal/store"
	"github.com/edugrid/portal/pkg/sdk"
)

// ErrClosed is returned by Session once the provider has been closed.
var ErrClosed = errors.New("session provider is closed")

// Provider lazily opens the durable session backend and the session context
// built on it. Commands share one Provider per invocation.
type Provider struct {
	apiBaseURL string
	sessionDSN string
	timeout    time.Duration
	navigator  sdk.Navigator

	mu      sync.Mutex
	opened  bool
	closed  bool
	backend store.Backend
	session *sdk.SessionContext
	err     error
}

// NewProvider constructs a Provider bound to the API base URL and session DSN.
func NewProvider(apiBaseURL, sessionDSN string, timeout time.Duration) *Provider {
	return &Provider{
		apiBaseURL: apiBaseURL,
		sessionDSN: sessionDSN,
		timeout:    timeout,
		navigator: sdk.NavigatorFunc(func(path string) {
			pterm.Warning.Printf("Session expired or revoked; run `edugridctl auth login` (redirect %s)\n", path)
		}),
	}
}

// WithNavigator replaces the default forced-logout notice. It must be called
// before the first Session call.
func (p *Provider) WithNavigator(nav sdk.Navigator) *Provider {
	p.navigator = nav
	return p
}

// Session opens (once) and returns the session context.
func (p *Provider) Session(ctx context.Context) (*sdk.SessionContext, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return nil, ErrClosed
	}
	if !p.opened {
		p.opened = true
		backend, err := store.Open(ctx, p.sessionDSN)
		if err != nil {
			p.err = fmt.Errorf("failed to open session store: %w", err)
			return nil, p.err
		}
		p.backend = backend
		p.session = sdk.OpenSessionContext(ctx, sdk.SessionContextOptions{
			BaseURL:   p.apiBaseURL,
			Backend:   backend,
			Navigator: p.navigator,
			Timeout:   p.timeout,
		})
	}
	if p.err != nil {
		return nil, p.err
	}
	return p.session, nil
}

// SDKClient returns the authorized API client, failing early without a session.
func (p *Provider) SDKClient(ctx context.Context) (*sdk.Client, error) {
	session, err := p.Session(ctx)
	if err != nil {
		return nil, err
	}
	if _, err := session.RequireSession(); err != nil {
		return nil, fmt.Errorf("%w; please run `edugridctl auth login`", err)
	}
	return session.Client, nil
}

// BackendKind names the opened backend, or "" before Session was called.
func (p *Provider) BackendKind() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.backend == nil {
		return ""
	}
	return p.backend.Kind()
}

// Close releases the session context and backend. Later calls do nothing.
func (p *Provider) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return nil
	}
	p.closed = true
	if p.session != nil {
		p.session.Close()
	}
	if p.backend != nil {
		return p.backend.Close()
	}
	return nil
}

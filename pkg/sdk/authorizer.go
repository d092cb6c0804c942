package sdk

import (
	"context"
	"log"
	"net/http"
	"sync"

	"golang.org/x/oauth2"
)

// Navigator moves the client to another route. The Authorizer uses it to send
// the user back to the login entry point after a forced logout.
type Navigator interface {
	Redirect(path string)
}

// NavigatorFunc adapts a function to the Navigator interface.
type NavigatorFunc func(path string)

// Redirect calls f(path).
func (f NavigatorFunc) Redirect(path string) {
	f(path)
}

// Authorizer attaches the current session token to outgoing requests and tears
// the session down when the backend answers 401.
type Authorizer struct {
	store *SessionStore
	nav   Navigator

	mu   sync.Mutex
	regs map[*http.Client]*Registration
}

// NewAuthorizer binds an Authorizer to a session store. nav may be nil.
func NewAuthorizer(store *SessionStore, nav Navigator) *Authorizer {
	if nav == nil {
		nav = NavigatorFunc(func(string) {})
	}
	return &Authorizer{
		store: store,
		nav:   nav,
		regs:  make(map[*http.Client]*Registration),
	}
}

// Transport wraps base (http.DefaultTransport when nil) with token injection
// and 401 handling.
func (a *Authorizer) Transport(base http.RoundTripper) http.RoundTripper {
	if base == nil {
		base = http.DefaultTransport
	}
	return &authTransport{authorizer: a, base: base}
}

// Install wraps client's transport with this Authorizer. Installing twice on the
// same client returns the existing registration instead of stacking handlers.
func (a *Authorizer) Install(client *http.Client) *Registration {
	a.mu.Lock()
	defer a.mu.Unlock()

	if reg, ok := a.regs[client]; ok {
		return reg
	}

	reg := &Registration{
		authorizer: a,
		client:     client,
		previous:   client.Transport,
	}
	reg.transport = a.Transport(client.Transport).(*authTransport)
	client.Transport = reg.transport
	a.regs[client] = reg
	return reg
}

// teardown performs the forced logout for one 401 response.
func (a *Authorizer) teardown(ctx context.Context, req *http.Request) {
	log.Printf("authorizer: %s %s returned 401, clearing session", req.Method, req.URL.Path)
	// The request context may already be cancelled by the caller; the logout
	// itself must still reach durable storage.
	a.store.Logout(context.WithoutCancel(ctx))
	a.nav.Redirect(LoginRoute)
}

// Registration is an installed Authorizer on one http.Client.
type Registration struct {
	authorizer *Authorizer
	client     *http.Client
	previous   http.RoundTripper
	transport  *authTransport
	once       sync.Once
}

// Remove restores the client's previous transport. It is safe to call more than once.
func (r *Registration) Remove() {
	r.once.Do(func() {
		r.authorizer.mu.Lock()
		defer r.authorizer.mu.Unlock()

		if r.client.Transport == r.transport {
			r.client.Transport = r.previous
		}
		delete(r.authorizer.regs, r.client)
	})
}

type authTransport struct {
	authorizer *Authorizer
	base       http.RoundTripper
}

func (t *authTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	var (
		resp *http.Response
		err  error
	)

	if token := t.authorizer.store.Token(); token != "" {
		tr := &oauth2.Transport{
			Source: oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token, TokenType: "Bearer"}),
			Base:   t.base,
		}
		resp, err = tr.RoundTrip(req)
	} else {
		anon := req.Clone(req.Context())
		anon.Header.Del("Authorization")
		resp, err = t.base.RoundTrip(anon)
	}
	if err != nil {
		return nil, err
	}

	if resp.StatusCode == http.StatusUnauthorized {
		t.authorizer.teardown(req.Context(), req)
	}
	return resp, nil
}

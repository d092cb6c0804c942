// Package config hands every edugridctl subcommand the settings and the
// session provider that the root command prepared for the invocation.
package config

import (
	"context"
	"errors"
	"fmt"

	"github.com/edugrid/portal/cmd/edugridctl/internal/client"
	appconfig "github.com/edugrid/portal/internal/config"
	"github.com/edugrid/portal/pkg/sdk"
)

// ErrNotConfigured means a command ran without the root command's setup.
var ErrNotConfigured = errors.New("edugridctl: command context carries no configuration")

type runtimeKey struct{}

// Runtime is the per-invocation state: the resolved settings plus the
// provider that opens the session store on first use.
type Runtime struct {
	appconfig.Config
	Sessions *client.Provider
}

// NewRuntime binds settings to a session provider built from them.
func NewRuntime(cfg appconfig.Config) *Runtime {
	return &Runtime{
		Config:   cfg,
		Sessions: client.NewProvider(cfg.APIBaseURL, cfg.SessionDSN, cfg.HTTPTimeout),
	}
}

// WithRuntime returns a copy of ctx carrying rt.
func WithRuntime(ctx context.Context, rt *Runtime) context.Context {
	return context.WithValue(ctx, runtimeKey{}, rt)
}

// From returns the runtime stored by WithRuntime.
func From(ctx context.Context) (*Runtime, error) {
	rt, ok := ctx.Value(runtimeKey{}).(*Runtime)
	if !ok || rt == nil {
		return nil, ErrNotConfigured
	}
	return rt, nil
}

// Session opens the session store, whether or not anyone is logged in.
func Session(ctx context.Context) (*sdk.SessionContext, error) {
	rt, err := From(ctx)
	if err != nil {
		return nil, err
	}
	return rt.Sessions.Session(ctx)
}

// Client returns the authorized API client; it fails when nobody is logged in.
func Client(ctx context.Context) (*sdk.Client, error) {
	rt, err := From(ctx)
	if err != nil {
		return nil, err
	}
	return rt.Sessions.SDKClient(ctx)
}

// Account returns the logged-in user together with the API client acting for them.
func Account(ctx context.Context) (*sdk.User, *sdk.Client, error) {
	sc, err := Session(ctx)
	if err != nil {
		return nil, nil, err
	}
	current, err := sc.RequireSession()
	if err != nil {
		return nil, nil, fmt.Errorf("%w; please run `edugridctl auth login`", err)
	}
	return current.User, sc.Client, nil
}

// RequireRole returns the logged-in user when their role is one of roles.
func RequireRole(ctx context.Context, roles ...sdk.Role) (*sdk.User, *sdk.Client, error) {
	user, c, err := Account(ctx)
	if err != nil {
		return nil, nil, err
	}
	for _, r := range roles {
		if user.Role == r {
			return user, c, nil
		}
	}
	return nil, nil, fmt.Errorf("logged in as %s; this command needs a %s session", user.Role, joinRoles(roles))
}

func joinRoles(roles []sdk.Role) string {
	out := ""
	for i, r := range roles {
		switch {
		case i == 0:
		case i == len(roles)-1:
			out += " or "
		default:
			out += ", "
		}
		out += string(r)
	}
	return out
}

package sdk

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"path"
	"strings"

	"github.com/casbin/casbin/v2"
	"github.com/casbin/casbin/v2/model"
	"github.com/casbin/casbin/v2/util"
)

// gateModel grants a role access to a path when a policy line for that role
// matches the path with keyMatch2 semantics (":param" and "*" segments).
const gateModel = `
[request_definition]
r = sub, obj

[policy_definition]
p = sub, obj

[policy_effect]
e = some(where (p.eft == allow))

[matchers]
m = r.sub == p.sub && keyMatch2(r.obj, p.obj)
`

// Route declares a protected subtree and the roles allowed to navigate into it.
// Path covers itself and every path beneath it.
type Route struct {
	Path    string
	Allowed []Role
}

// DefaultRoutes mirrors the portal layout: each role owns its own subtree.
func DefaultRoutes() []Route {
	return []Route{
		{Path: "/student", Allowed: []Role{RoleStudent}},
		{Path: "/teacher", Allowed: []Role{RoleTeacher}},
		{Path: "/department", Allowed: []Role{RoleDepartment}},
		{Path: "/director", Allowed: []Role{RoleDirector}},
	}
}

// GateState is the outcome class of a navigation attempt.
type GateState int

const (
	// GatePublic means the path is not protected by any route.
	GatePublic GateState = iota
	// GateUnauthenticated means there is no session.
	GateUnauthenticated
	// GateAuthorized means the session role is allowed on the route.
	GateAuthorized
	// GateUnauthorized means the session is valid but its role is not allowed.
	GateUnauthorized
)

func (s GateState) String() string {
	switch s {
	case GatePublic:
		return "public"
	case GateUnauthenticated:
		return "unauthenticated"
	case GateAuthorized:
		return "authenticated-authorized"
	case GateUnauthorized:
		return "authenticated-unauthorized"
	default:
		return fmt.Sprintf("GateState(%d)", int(s))
	}
}

// Decision is the result of evaluating one navigation.
type Decision struct {
	State    GateState
	Path     string
	Redirect string
}

// Allowed reports whether the requested content may be rendered.
func (d Decision) Allowed() bool {
	return d.State == GatePublic || d.State == GateAuthorized
}

// Gate enforces role-route bindings on navigation.
type Gate struct {
	enforcer casbin.IEnforcer
	patterns []string
}

// NewGate compiles routes into a casbin policy. Every route needs at least one
// known role.
func NewGate(routes []Route) (*Gate, error) {
	m, err := model.NewModelFromString(gateModel)
	if err != nil {
		return nil, fmt.Errorf("parse gate model: %w", err)
	}
	enforcer, err := casbin.NewSyncedEnforcer(m)
	if err != nil {
		return nil, fmt.Errorf("create gate enforcer: %w", err)
	}

	g := &Gate{enforcer: enforcer}
	for _, route := range routes {
		if len(route.Allowed) == 0 {
			return nil, fmt.Errorf("route %s declares no allowed roles", route.Path)
		}
		base := cleanPath(route.Path)
		patterns := []string{base, strings.TrimSuffix(base, "/") + "/*"}
		g.patterns = append(g.patterns, patterns...)

		for _, allowed := range route.Allowed {
			role, err := ParseRole(string(allowed))
			if err != nil {
				return nil, fmt.Errorf("route %s: %w", route.Path, err)
			}
			for _, pattern := range patterns {
				if _, err := enforcer.AddPolicy(string(role), pattern); err != nil {
					return nil, fmt.Errorf("add policy %s %s: %w", role, pattern, err)
				}
			}
		}
	}
	return g, nil
}

// Protected reports whether any route covers p.
func (g *Gate) Protected(p string) bool {
	p = cleanPath(p)
	for _, pattern := range g.patterns {
		if util.KeyMatch2(p, pattern) {
			return true
		}
	}
	return false
}

// Evaluate decides whether session may navigate to p.
func (g *Gate) Evaluate(session Session, p string) Decision {
	p = cleanPath(p)
	if !g.Protected(p) {
		return Decision{State: GatePublic, Path: p}
	}
	if !session.Authenticated() {
		return Decision{State: GateUnauthenticated, Path: p, Redirect: LoginRoute}
	}

	role := session.Role()
	allowed, err := g.enforcer.Enforce(string(role), p)
	if err != nil {
		log.Printf("gate: enforce role=%s path=%s: %v", role, p, err)
		allowed = false
	}
	if allowed {
		return Decision{State: GateAuthorized, Path: p}
	}

	landing := role.LandingPath()
	if landing == p {
		landing = HomeRoute
	}
	return Decision{State: GateUnauthorized, Path: p, Redirect: landing}
}

// SessionSource supplies the session a navigation is evaluated against.
type SessionSource interface {
	Snapshot() Session
}

// Middleware guards an http.Handler tree. Denied navigations are answered with
// 302 Found to the decision's redirect; the wrapped handler never runs for them.
// Allowed protected requests carry the session in their context.
func (g *Gate) Middleware(source SessionSource) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			session := source.Snapshot()
			decision := g.Evaluate(session, r.URL.Path)
			if !decision.Allowed() {
				http.Redirect(w, r, decision.Redirect, http.StatusFound)
				return
			}
			if decision.State == GateAuthorized {
				r = r.WithContext(WithSession(r.Context(), session))
			}
			next.ServeHTTP(w, r)
		})
	}
}

type sessionContextKey struct{}

// WithSession stores the session on ctx for downstream handlers.
func WithSession(ctx context.Context, session Session) context.Context {
	return context.WithValue(ctx, sessionContextKey{}, session)
}

// SessionFromContext retrieves the session stored by WithSession.
func SessionFromContext(ctx context.Context) (Session, bool) {
	session, ok := ctx.Value(sessionContextKey{}).(Session)
	return session, ok
}

func cleanPath(p string) string {
	if p == "" {
		return "/"
	}
	if !strings.HasPrefix(p, "/") {
		p = "/" + p
	}
	return path.Clean(p)
}

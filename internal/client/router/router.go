package router

import (
	"strings"

	"github.com/dmitrijs2005/langcrowd/internal/client/models"
)

// Kind is what the front-end should do for a path.
type Kind int

const (
	Render Kind = iota
	// RedirectLogin sends an anonymous user to the login view; Next holds
	// the path to resume after login.
	RedirectLogin
	// Redirect sends the user to Path.
	Redirect
	// Forbidden renders access denied in place. It never redirects.
	Forbidden
	NotFound
)

func (k Kind) String() string {
	switch k {
	case Render:
		return "render"
	case RedirectLogin:
		return "redirect_login"
	case Redirect:
		return "redirect"
	case Forbidden:
		return "forbidden"
	default:
		return "not_found"
	}
}

type Decision struct {
	Kind  Kind
	Path  string
	Next  string
	Route *Route
}

type Router struct {
	routes map[string]*Route
	order  []string
}

func New(routes []Route) *Router {
	r := &Router{routes: make(map[string]*Route, len(routes))}
	for i := range routes {
		rt := routes[i]
		r.routes[rt.Path] = &rt
		r.order = append(r.order, rt.Path)
	}
	return r
}

// Routes lists the registered routes in registration order.
func (r *Router) Routes() []Route {
	out := make([]Route, 0, len(r.order))
	for _, p := range r.order {
		out = append(out, *r.routes[p])
	}
	return out
}

// Normalize drops the query string and a trailing slash.
func Normalize(path string) string {
	if i := strings.IndexAny(path, "?#"); i >= 0 {
		path = path[:i]
	}
	path = strings.TrimSpace(path)
	if path == "" {
		return PathRoot
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	if len(path) > 1 {
		path = strings.TrimRight(path, "/")
		if path == "" {
			path = PathRoot
		}
	}
	return path
}

// Resolve decides how path is handled for the given session.
func (r *Router) Resolve(path string, s models.Session) Decision {
	p := Normalize(path)
	rt, ok := r.routes[p]
	if !ok {
		return Decision{Kind: NotFound, Path: p}
	}

	switch rt.Gate {
	case GuestOnly:
		if s.IsAuthenticated {
			return Decision{Kind: Redirect, Path: PathRoot, Route: rt}
		}
	case Protected:
		if !s.IsAuthenticated {
			return Decision{Kind: RedirectLogin, Path: PathLogin, Next: path, Route: rt}
		}
		if len(rt.Roles) > 0 && !rt.Roles.Includes(s.Role()) {
			return Decision{Kind: Forbidden, Path: p, Route: rt}
		}
	}
	return Decision{Kind: Render, Path: p, Route: rt}
}

package router

import (
	"sync"

	"github.com/dmitrijs2005/langcrowd/internal/client/models"
)

// SessionSource gives the navigator the current session.
type SessionSource interface {
	Current() models.Session
}

// Navigator applies router decisions and remembers the destination an
// anonymous user was bounced from.
type Navigator struct {
	router   *Router
	sessions SessionSource

	mu       sync.Mutex
	current  string
	intended string
}

func NewNavigator(r *Router, s SessionSource) *Navigator {
	return &Navigator{router: r, sessions: s, current: PathRoot}
}

// Open navigates to path and returns the decision that was applied.
func (n *Navigator) Open(path string) Decision {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.openLocked(path)
}

func (n *Navigator) openLocked(path string) Decision {
	d := n.router.Resolve(path, n.sessions.Current())
	if d.Kind == RedirectLogin {
		n.intended = d.Next
	}
	n.current = d.Path
	return d
}

// AfterLogin resumes at the remembered destination, or the dashboard.
func (n *Navigator) AfterLogin() Decision {
	n.mu.Lock()
	defer n.mu.Unlock()

	target := n.intended
	n.intended = ""
	if target == "" {
		target = PathDashboard
	}
	return n.openLocked(target)
}

// ForceLogin moves to the login view after the server rejected the session.
// A protected view the user was on becomes the destination after login.
func (n *Navigator) ForceLogin() {
	n.mu.Lock()
	defer n.mu.Unlock()

	if rt, ok := n.router.routes[n.current]; ok && rt.Gate == Protected {
		n.intended = n.current
	}
	n.current = PathLogin
}

func (n *Navigator) Current() string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.current
}

// Intended returns the remembered post-login destination, if any.
func (n *Navigator) Intended() string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.intended
}

// Package mockapi is an in-memory stand-in for the platform's REST API. It
// serves the same endpoints the client gateway calls, issues signed tokens
// and can be switched into an outage mode to exercise offline behaviour.
package mockapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"sync/atomic"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/dmitrijs2005/langcrowd/internal/client/models"
	"github.com/dmitrijs2005/langcrowd/internal/client/validate"
	"github.com/dmitrijs2005/langcrowd/internal/common"
	"github.com/dmitrijs2005/langcrowd/internal/logging"
)

// BasePath is where the API is mounted.
const BasePath = "/api/v1"

type Options struct {
	Secret        []byte
	TokenValidity time.Duration
	Logger        logging.Logger
}

type Server struct {
	store    *Store
	secret   []byte
	validity time.Duration
	logger   logging.Logger
	down     atomic.Bool
	router   chi.Router
}

func NewServer(store *Store, opts Options) *Server {
	if opts.TokenValidity <= 0 {
		opts.TokenValidity = 24 * time.Hour
	}
	if opts.Logger == nil {
		opts.Logger = logging.Discard()
	}
	s := &Server{
		store:    store,
		secret:   opts.Secret,
		validity: opts.TokenValidity,
		logger:   opts.Logger.With("module", "mockapi"),
	}
	s.router = s.routes()
	return s
}

// SetDown makes every endpoint except health/ answer 503 while true.
func (s *Server) SetDown(down bool) {
	s.down.Store(down)
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(s.accessLog)

	r.Route(BasePath, func(api chi.Router) {
		api.Get("/health/", s.health)

		api.Group(func(r chi.Router) {
			r.Use(s.outage)
			r.Use(s.identify)

			r.Post("/accounts/login/", s.login)
			r.Post("/accounts/api/register/", s.register)
			r.Post("/accounts/forgot-password/", s.forgotPassword)
			r.Post("/accounts/reset-password/", s.resetPassword)
			r.Get("/accounts/api/check-username/", s.checkUsername)
			r.Get("/accounts/api/check-email/", s.checkEmail)
			r.Get("/languages/", s.listLanguages)
			r.Get("/languages/{id}/", s.getLanguage)

			r.Group(func(r chi.Router) {
				r.Use(s.requireRole(roleSet(models.AllRoles...)))
				r.Post("/accounts/logout/", s.logout)
				r.Post("/accounts/2fa/send-code/", s.sendCode)
				r.Post("/accounts/2fa/verify/", s.verifyCode)
			})

			r.Group(func(r chi.Router) {
				r.Use(s.requireRole(roleSet(models.RoleAdmin, models.RoleSuperuser)))
				r.Post("/languages/create/", s.createLanguage)
				r.Put("/languages/{id}/", s.updateLanguage)
				r.Patch("/languages/{id}/", s.updateLanguage)
				r.Delete("/languages/{id}/", s.deleteLanguage)

				r.Get("/accounts/api/admin/users/", s.listUsers)

				r.Get("/roles/permissions/", s.listPermissions)
				r.Get("/roles/roles/", s.listRoles)
				r.Post("/roles/roles/", s.createRole)
				r.Put("/roles/roles/{id}/", s.updateRole)
				r.Patch("/roles/roles/{id}/", s.updateRole)
				r.Get("/roles/user-roles/users_with_roles/", s.usersWithRoles)
				r.Post("/roles/user-roles/assign_role/", s.assignRole)
				r.Delete("/roles/user-roles/remove_role/", s.removeRole)
			})

			r.Group(func(r chi.Router) {
				r.Use(s.requireRole(roleSet(models.RoleSuperuser)))
				r.Post("/accounts/api/admin/users/", s.createUser)
				r.Put("/accounts/api/admin/users/{id}/", s.updateUser)
				r.Patch("/accounts/api/admin/users/{id}/", s.patchUser)
				r.Delete("/accounts/api/admin/users/{id}/", s.deleteUser)
				r.Delete("/roles/roles/{id}/", s.deleteRole)

				r.Get("/system/backups/", s.listBackups)
				r.Post("/system/backups/", s.createBackup)
				r.Delete("/system/backups/{id}/", s.deleteBackup)
				r.Get("/system/snapshots/", s.listSnapshots)
				r.Post("/system/snapshots/", s.createSnapshot)
				r.Post("/system/snapshots/{id}/", s.restoreSnapshot)
				r.Delete("/system/snapshots/{id}/", s.deleteSnapshot)
			})
		})
	})
	return r
}

func roleSet(roles ...models.RoleName) map[models.RoleName]bool {
	m := make(map[models.RoleName]bool, len(roles))
	for _, r := range roles {
		m[r] = true
	}
	return m
}

func (s *Server) accessLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		s.logger.Debug(r.Context(), "request",
			"method", r.Method, "path", r.URL.Path, "status", ww.Status(), "latency", time.Since(start))
	})
}

func (s *Server) outage(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.down.Load() {
			writeDetail(w, http.StatusServiceUnavailable, "Service temporarily unavailable.")
			return
		}
		next.ServeHTTP(w, r)
	})
}

type ctxKey string

const (
	userKey  ctxKey = "user"
	tokenKey ctxKey = "token"
)

// identify attaches the caller to the context when a token is present. A
// token that is present but unusable is rejected with 401 even on public
// endpoints.
func (s *Server) identify(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h := r.Header.Get(common.AuthorizationHeaderName)
		if h == "" {
			next.ServeHTTP(w, r)
			return
		}
		scheme, token, ok := strings.Cut(h, " ")
		if !ok || scheme != common.AuthScheme || token == "" {
			writeDetail(w, http.StatusUnauthorized, "Invalid token header.")
			return
		}
		if s.store.Revoked(token) {
			writeDetail(w, http.StatusUnauthorized, "Invalid token.")
			return
		}
		claims, err := ParseToken(token, s.secret)
		if err != nil {
			writeDetail(w, http.StatusUnauthorized, "Invalid token.")
			return
		}
		u, ok := s.store.User(models.ID(claims.UserID))
		if !ok || !u.IsActive {
			writeDetail(w, http.StatusUnauthorized, "User inactive or deleted.")
			return
		}
		ctx := context.WithValue(r.Context(), userKey, u)
		ctx = context.WithValue(ctx, tokenKey, token)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (s *Server) requireRole(allowed map[models.RoleName]bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			u := caller(r)
			if u == nil {
				writeDetail(w, http.StatusUnauthorized, "Authentication credentials were not provided.")
				return
			}
			if !allowed[u.Role] {
				writeDetail(w, http.StatusForbidden, "You do not have permission to perform this action.")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func caller(r *http.Request) *account {
	u, _ := r.Context().Value(userKey).(*account)
	return u
}

func (s *Server) issueToken(u *account) (string, error) {
	return GenerateToken(u.ID.String(), string(u.Role), s.secret, s.validity)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v != nil {
		_ = json.NewEncoder(w).Encode(v)
	}
}

func writeDetail(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, map[string]string{"detail": detail})
}

func writeFields(w http.ResponseWriter, fields map[string][]string) {
	writeJSON(w, http.StatusBadRequest, fields)
}

// writeError maps store and validation errors to responses.
func writeError(w http.ResponseWriter, err error) {
	if ve := validate.Extract(err); ve != nil {
		writeFields(w, ve.Map())
		return
	}
	switch {
	case errors.Is(err, ErrNotFound):
		writeDetail(w, http.StatusNotFound, "Not found.")
	case errors.Is(err, ErrAlreadyExists):
		writeDetail(w, http.StatusBadRequest, "Already exists.")
	default:
		writeDetail(w, http.StatusInternalServerError, "Internal server error.")
	}
}

func decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeDetail(w, http.StatusBadRequest, "Malformed request body.")
		return false
	}
	return true
}

func pathID(r *http.Request) models.ID {
	return models.ID(chi.URLParam(r, "id"))
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	status := "ok"
	if s.down.Load() {
		status = "degraded"
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": status})
}

// Package session holds the authenticated session of the terminal client
// and keeps it in durable local storage across restarts.
//
// The persisted blob lives under a single key and contains only the user,
// the token and the authentication flag. Loading flags stay in memory.
// The store is the only credential source the API gateway reads.
package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/dmitrijs2005/langcrowd/internal/client/client"
	"github.com/dmitrijs2005/langcrowd/internal/client/models"
	"github.com/dmitrijs2005/langcrowd/internal/client/repositories/kv"
	"github.com/dmitrijs2005/langcrowd/internal/client/validate"
	"github.com/dmitrijs2005/langcrowd/internal/common"
	"github.com/dmitrijs2005/langcrowd/internal/dbx"
	"github.com/dmitrijs2005/langcrowd/internal/logging"
)

const defaultLogoutTimeout = 3 * time.Second

// AuthAPI is the part of the gateway the store needs.
type AuthAPI interface {
	Login(ctx context.Context, c models.Credentials) (*models.AuthResponse, error)
	Register(ctx context.Context, f models.RegisterForm) (*models.AuthResponse, error)
	Logout(ctx context.Context) error
}

// DB is satisfied by *sql.DB.
type DB interface {
	dbx.DBTX
	dbx.Beginner
}

// persisted mirrors the envelope written by the web client's storage layer.
type persisted struct {
	State   models.Session `json:"state"`
	Version int            `json:"version"`
}

type Store struct {
	db            DB
	auth          AuthAPI
	logger        logging.Logger
	logoutTimeout time.Duration

	mu      sync.RWMutex
	state   models.Session
	loading bool
	hooks   Hooks

	background sync.WaitGroup
}

// Hooks let the owner of local data follow the session. They run outside
// the store lock.
type Hooks struct {
	// SignedIn runs once a session is established. An error fails the
	// login and drops the session.
	SignedIn func(ctx context.Context, u models.User) error
	// SignedOut runs after the session is dropped.
	SignedOut func(ctx context.Context)
}

type Option func(*Store)

func WithLogger(l logging.Logger) Option {
	return func(s *Store) { s.logger = l }
}

func WithLogoutTimeout(d time.Duration) Option {
	return func(s *Store) { s.logoutTimeout = d }
}

// SetHooks replaces the session hooks. The services are built after the
// store, so they are attached late.
func (s *Store) SetHooks(h Hooks) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.hooks = h
}

func NewStore(db DB, auth AuthAPI, opts ...Option) *Store {
	s := &Store{
		db:            db,
		auth:          auth,
		logger:        logging.Discard(),
		logoutTimeout: defaultLogoutTimeout,
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Hydrate restores the session persisted by a previous run. A blob that
// cannot be decoded, or whose flag disagrees with the token and user, is
// deleted and the store stays anonymous.
func (s *Store) Hydrate(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	raw, err := kv.NewSQLiteRepository(s.db).Get(ctx, common.SessionStorageKey)
	if err != nil {
		return fmt.Errorf("load session: %w", err)
	}
	if raw == nil {
		s.state = models.Session{}
		return s.purgeLocked(ctx)
	}

	var p persisted
	if err := json.Unmarshal(raw, &p); err != nil || !p.State.Consistent() || !p.State.IsAuthenticated {
		s.logger.Warn(ctx, "discarding persisted session", "err", err)
		s.state = models.Session{}
		return s.purgeLocked(ctx)
	}

	s.state = p.State.Clone()
	return nil
}

// Login authenticates against the backend and persists the session. Any
// failure leaves the store anonymous with no credential material on disk.
func (s *Store) Login(ctx context.Context, c models.Credentials) (models.Session, error) {
	if err := validate.Credentials(c); err != nil {
		return models.Session{}, err
	}

	s.setLoading(true)
	defer s.setLoading(false)

	resp, err := s.auth.Login(ctx, c)
	if err != nil {
		if perr := s.Purge(ctx); perr != nil {
			s.logger.Error(ctx, "purge after failed login", "err", perr)
		}
		return models.Session{}, err
	}
	return s.establish(ctx, resp)
}

// Register creates the account. Form problems are reported per field before
// any request is sent; uniqueness failures from the backend come back the
// same way. When the backend answers with a token the user is logged in.
func (s *Store) Register(ctx context.Context, f models.RegisterForm) (models.Session, error) {
	if err := validate.Registration(f); err != nil {
		return models.Session{}, err
	}

	s.setLoading(true)
	defer s.setLoading(false)

	resp, err := s.auth.Register(ctx, f)
	if err != nil {
		if fields := client.FieldErrors(err); fields != nil {
			return models.Session{}, validate.FromFields(fields)
		}
		return models.Session{}, err
	}
	if resp == nil || resp.Token == "" || resp.User == nil {
		return models.Session{}, nil
	}
	return s.establish(ctx, resp)
}

func (s *Store) establish(ctx context.Context, resp *models.AuthResponse) (models.Session, error) {
	next := models.NewSession(resp.User, resp.Token)
	if !next.IsAuthenticated {
		return models.Session{}, client.ErrInvalidCredentials
	}

	s.mu.Lock()
	if err := s.persistLocked(ctx, next); err != nil {
		s.mu.Unlock()
		return models.Session{}, err
	}
	s.state = next
	hooks := s.hooks
	s.mu.Unlock()

	if hooks.SignedIn != nil {
		if err := hooks.SignedIn(ctx, *next.User); err != nil {
			if perr := s.Purge(ctx); perr != nil {
				s.logger.Error(ctx, "purge after failed sign-in", "err", perr)
			}
			return models.Session{}, fmt.Errorf("prepare local data: %w", err)
		}
	}
	s.logger.Info(ctx, "logged in", "username", next.User.Username, "role", next.User.Role)
	return next.Clone(), nil
}

// Logout clears the session locally and tells the backend in the
// background. The remote call never delays the caller and its failure is
// only logged.
func (s *Store) Logout(ctx context.Context) error {
	s.mu.Lock()
	token := s.state.Token
	s.state = models.Session{}
	err := s.purgeLocked(ctx)
	hooks := s.hooks
	s.mu.Unlock()

	signedOut(ctx, hooks)
	if token != "" && s.auth != nil {
		s.background.Add(1)
		go func() {
			defer s.background.Done()
			rctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.logoutTimeout)
			defer cancel()
			if err := s.auth.Logout(client.WithToken(rctx, token)); err != nil {
				s.logger.Warn(rctx, "remote logout failed", "err", err)
			}
		}()
	}
	return err
}

// Wait blocks until background logout calls have finished.
func (s *Store) Wait() {
	s.background.Wait()
}

// Purge drops the session without contacting the backend.
func (s *Store) Purge(ctx context.Context) error {
	s.mu.Lock()
	s.state = models.Session{}
	err := s.purgeLocked(ctx)
	hooks := s.hooks
	s.mu.Unlock()

	signedOut(ctx, hooks)
	return err
}

// Expire drops the session if it still holds token. A rejection of a token
// that has since been replaced leaves the newer session alone. It reports
// whether the session was dropped.
func (s *Store) Expire(ctx context.Context, token string) (bool, error) {
	s.mu.Lock()
	if token == "" || token != s.state.Token {
		s.mu.Unlock()
		return false, nil
	}
	s.state = models.Session{}
	err := s.purgeLocked(ctx)
	hooks := s.hooks
	s.mu.Unlock()

	signedOut(ctx, hooks)
	return true, err
}

func signedOut(ctx context.Context, h Hooks) {
	if h.SignedOut != nil {
		h.SignedOut(ctx)
	}
}

// UpdateUser replaces the stored profile, keeping the token.
func (s *Store) UpdateUser(ctx context.Context, u models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.state.IsAuthenticated {
		return common.ErrorNotAuthenticated
	}
	next := models.NewSession(&u, s.state.Token)
	if err := s.persistLocked(ctx, next); err != nil {
		return err
	}
	s.state = next
	return nil
}

func (s *Store) persistLocked(ctx context.Context, sess models.Session) error {
	blob, err := json.Marshal(persisted{State: sess})
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}
	err = dbx.WithTx(ctx, s.db, func(ctx context.Context, tx dbx.DBTX) error {
		repo := kv.NewSQLiteRepository(tx)
		if err := repo.Set(ctx, common.SessionStorageKey, blob); err != nil {
			return err
		}
		return repo.Delete(ctx, common.LegacyTokenStorageKey)
	})
	if err != nil {
		return fmt.Errorf("persist session: %w", err)
	}
	return nil
}

func (s *Store) purgeLocked(ctx context.Context) error {
	err := dbx.WithTx(ctx, s.db, func(ctx context.Context, tx dbx.DBTX) error {
		return kv.NewSQLiteRepository(tx).Delete(ctx, common.SessionStorageKey, common.LegacyTokenStorageKey)
	})
	if err != nil {
		return fmt.Errorf("purge session: %w", err)
	}
	return nil
}

func (s *Store) setLoading(v bool) {
	s.mu.Lock()
	s.loading = v
	s.mu.Unlock()
}

func (s *Store) Current() models.Session {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.Clone()
}

// Token implements client.TokenSource.
func (s *Store) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.Token
}

func (s *Store) IsAuthenticated() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.IsAuthenticated
}

func (s *Store) Role() models.RoleName {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.Role()
}

// Loading reports whether a login or registration is in flight.
func (s *Store) Loading() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loading
}

// IsAuthError reports whether err means the credentials were rejected.
func IsAuthError(err error) bool {
	return errors.Is(err, client.ErrInvalidCredentials) || errors.Is(err, client.ErrUnauthorized)
}

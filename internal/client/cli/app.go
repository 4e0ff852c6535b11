package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/dmitrijs2005/langcrowd/internal/client/archive"
	"github.com/dmitrijs2005/langcrowd/internal/client/client"
	"github.com/dmitrijs2005/langcrowd/internal/client/config"
	"github.com/dmitrijs2005/langcrowd/internal/client/localdb"
	"github.com/dmitrijs2005/langcrowd/internal/client/models"
	"github.com/dmitrijs2005/langcrowd/internal/client/query"
	"github.com/dmitrijs2005/langcrowd/internal/client/router"
	"github.com/dmitrijs2005/langcrowd/internal/client/services"
	"github.com/dmitrijs2005/langcrowd/internal/client/session"
	"github.com/dmitrijs2005/langcrowd/internal/logging"
)

type Mode string

const (
	ModeOffline Mode = "offline"
	ModeOnline  Mode = "online"
)

// sessionStore is the part of *session.Store the REPL drives.
type sessionStore interface {
	Hydrate(ctx context.Context) error
	Login(ctx context.Context, c models.Credentials) (models.Session, error)
	Register(ctx context.Context, f models.RegisterForm) (models.Session, error)
	Logout(ctx context.Context) error
	Current() models.Session
	Wait()
}

type expirer interface {
	Expire(ctx context.Context, token string) (bool, error)
}

type pinger interface {
	Ping(ctx context.Context) error
}

// accountAPI covers the anonymous account flows that bypass the session.
type accountAPI interface {
	ForgotPassword(ctx context.Context, email string) error
	ResetPassword(ctx context.Context, uid, token, password string) error
	Send2FACode(ctx context.Context, email string) error
	Verify2FACode(ctx context.Context, code string) error
}

type App struct {
	config   *config.Config
	logger   logging.Logger
	session  sessionStore
	accounts accountAPI
	pinger   pinger
	svc      *services.Services
	routes   *router.Router
	nav      *router.Navigator
	reader   *bufio.Reader
	out      io.Writer
	closers  []func() error

	mu   sync.Mutex
	mode Mode
}

// NewApp opens the local database and wires the gateway, session store,
// services and navigator described by c.
func NewApp(c *config.Config) (*App, error) {
	ctx := context.Background()
	logger := logging.NewTextLogger(os.Stderr, c.LogLevel)

	repos, err := localdb.InitDatabase(ctx, c.DatabasePath)
	if err != nil {
		return nil, fmt.Errorf("error initializing database: %w", err)
	}

	gw, err := client.New(client.Options{
		BaseURL:       c.BaseURL,
		Timeout:       c.RequestTimeout,
		RetryAttempts: c.RetryAttempts,
		Logger:        logger.With("module", "gateway"),
	})
	if err != nil {
		_ = repos.Close()
		return nil, err
	}

	sess := session.NewStore(repos.DB, gw.Auth(), session.WithLogger(logger.With("module", "session")))
	gw.SetTokenSource(sess)

	sink, err := newSink(ctx, c)
	if err != nil {
		_ = repos.Close()
		return nil, err
	}
	exporter := archive.NewExporter(repos.Mirror, sink, logger.With("module", "archive"))

	svc := services.New(services.APIs{
		Users:     gw.Users(),
		Languages: gw.Languages(),
		Roles:     gw.Roles(),
		System:    gw.System(),
	}, exporter, services.Deps{
		Mirror:  repos.Mirror,
		KV:      repos.KV,
		Cache:   query.New(c.CacheTTL),
		Session: sess,
		Logger:  logger.With("module", "services"),
	})

	sess.SetHooks(session.Hooks{SignedIn: svc.SignIn, SignedOut: svc.SignOut})

	app := newApp(c, logger, sess, gw.Auth(), gw, svc, bufio.NewReader(os.Stdin), os.Stdout)
	gw.SetUnauthorizedHandler(app.onUnauthorized(sess))
	app.closers = append(app.closers, repos.Close)
	return app, nil
}

func newSink(ctx context.Context, c *config.Config) (archive.Sink, error) {
	if c.S3.Bucket == "" {
		return archive.DirSink{Dir: c.ExportDir}, nil
	}
	s3c, err := archive.NewS3Client(ctx, archive.S3Config{
		Bucket:    c.S3.Bucket,
		Prefix:    c.S3.Prefix,
		Region:    c.S3.Region,
		Endpoint:  c.S3.Endpoint,
		AccessKey: c.S3.AccessKey,
		SecretKey: c.S3.SecretKey,
	})
	if err != nil {
		return nil, fmt.Errorf("init s3 export: %w", err)
	}
	return archive.NewS3Sink(s3c, c.S3.Bucket, c.S3.Prefix), nil
}

func newApp(c *config.Config, logger logging.Logger, s sessionStore, accounts accountAPI, p pinger,
	svc *services.Services, reader *bufio.Reader, out io.Writer) *App {
	routes := router.New(router.DefaultRoutes())
	return &App{
		config:   c,
		logger:   logger,
		session:  s,
		accounts: accounts,
		pinger:   p,
		svc:      svc,
		routes:   routes,
		nav:      router.NewNavigator(routes, s),
		reader:   reader,
		out:      out,
	}
}

// onUnauthorized expires the session and moves the navigator to the login
// view when the server rejects the current token. A rejected token that was
// already replaced is ignored.
func (a *App) onUnauthorized(e expirer) client.UnauthorizedHandler {
	return func(ctx context.Context, token string) {
		dropped, err := e.Expire(ctx, token)
		if err != nil {
			a.logger.Error(ctx, "expire session", "err", err)
		}
		if !dropped {
			return
		}
		a.nav.ForceLogin()
		a.println("Your session has expired. Please log in again.")
	}
}

func (a *App) println(args ...any) {
	fmt.Fprintln(a.out, args...)
}

func (a *App) printf(format string, args ...any) {
	fmt.Fprintf(a.out, format, args...)
}

func (a *App) Mode() Mode {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.mode
}

func (a *App) setMode(mode Mode) {
	a.mu.Lock()
	changed := a.mode != mode
	a.mode = mode
	a.mu.Unlock()
	if changed {
		a.logger.Info(context.Background(), "connectivity changed", "mode", mode)
		a.printf("Switched to %s mode\n", mode)
	}
}

func (a *App) checkOnline(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := a.pinger.Ping(ctx); err != nil {
		a.setMode(ModeOffline)
		return
	}
	a.setMode(ModeOnline)
}

func (a *App) StartOnlineStatusWatcher(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			a.checkOnline(ctx)
		case <-ctx.Done():
			return
		}
	}
}

// Run restores the previous session and runs the REPL until exit.
func (a *App) Run(ctx context.Context) {
	ctx, cancel := context.WithCancel(ctx)
	defer func() {
		cancel()
		a.session.Wait()
		for _, c := range a.closers {
			if err := c(); err != nil {
				a.logger.Error(context.Background(), "close", "err", err)
			}
		}
	}()

	if err := a.session.Hydrate(ctx); err != nil {
		a.logger.Error(ctx, "restore session", "err", err)
	}
	a.checkOnline(ctx)
	go a.StartOnlineStatusWatcher(ctx, a.config.OnlineCheckInterval)

	a.println("Welcome to langcrowd (type 'help' for commands)")
	if u := a.session.Current().User; u != nil {
		a.printf("Signed in as %s (%s)\n", u.Username, models.FormatLabel(string(u.Role)))
	}
	runREPL(ctx, a, a.status, a.reader, a.out)
}

// status renders "username role mode" for the prompt.
func (a *App) status() string {
	s := a.session.Current()
	name, role := "guest", "anonymous"
	if s.User != nil {
		name, role = s.User.Username, string(s.User.Role)
	}
	mode := a.Mode()
	if mode == "" {
		mode = ModeOffline
	}
	return fmt.Sprintf("%s %s %s", name, role, mode)
}

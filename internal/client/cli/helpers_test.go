package cli

import (
	"bufio"
	"bytes"
	"context"
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/langcrowd/internal/client/archive"
	"github.com/dmitrijs2005/langcrowd/internal/client/client"
	"github.com/dmitrijs2005/langcrowd/internal/client/config"
	"github.com/dmitrijs2005/langcrowd/internal/client/localdb"
	"github.com/dmitrijs2005/langcrowd/internal/client/models"
	"github.com/dmitrijs2005/langcrowd/internal/client/query"
	"github.com/dmitrijs2005/langcrowd/internal/client/services"
	"github.com/dmitrijs2005/langcrowd/internal/client/session"
	"github.com/dmitrijs2005/langcrowd/internal/logging"
	"github.com/dmitrijs2005/langcrowd/internal/mockapi"
)

type testEnv struct {
	app     *App
	out     *bytes.Buffer
	store   *mockapi.Store
	session *session.Store
	dir     string
	api     *mockapi.Server
}

// newTestEnv runs an App against a seeded stub API. input is everything the
// user will type, one answer per line.
func newTestEnv(t *testing.T, input string) *testEnv {
	t.Helper()
	ctx := context.Background()

	store := mockapi.NewStore(4)
	require.NoError(t, store.Seed())
	api := mockapi.NewServer(store, mockapi.Options{Secret: []byte("cli-test")})
	ts := httptest.NewServer(api)
	t.Cleanup(ts.Close)

	repos, err := localdb.InitDatabase(ctx, ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = repos.Close() })

	gw, err := client.New(client.Options{
		BaseURL:       ts.URL + mockapi.BasePath,
		RetryAttempts: 1,
		RetryDelay:    time.Millisecond,
	})
	require.NoError(t, err)

	sess := session.NewStore(repos.DB, gw.Auth())
	gw.SetTokenSource(sess)

	dir := t.TempDir()
	exporter := archive.NewExporter(repos.Mirror, archive.DirSink{Dir: dir}, logging.Discard())
	svc := services.New(services.APIs{
		Users:     gw.Users(),
		Languages: gw.Languages(),
		Roles:     gw.Roles(),
		System:    gw.System(),
	}, exporter, services.Deps{
		Mirror:  repos.Mirror,
		KV:      repos.KV,
		Cache:   query.New(0),
		Session: sess,
	})

	sess.SetHooks(session.Hooks{SignedIn: svc.SignIn, SignedOut: svc.SignOut})

	out := &bytes.Buffer{}
	cfg := &config.Config{OnlineCheckInterval: time.Hour}
	app := newApp(cfg, logging.Discard(), sess, gw.Auth(), gw, svc, bufio.NewReader(strings.NewReader(input)), out)
	gw.SetUnauthorizedHandler(app.onUnauthorized(sess))
	t.Cleanup(sess.Wait)

	return &testEnv{app: app, out: out, store: store, session: sess, dir: dir, api: api}
}

// stubPasswords makes getPassword return pws in order.
func stubPasswords(t *testing.T, pws ...string) {
	t.Helper()
	orig := getPassword
	t.Cleanup(func() { getPassword = orig })
	i := 0
	getPassword = func(string, io.Writer) ([]byte, error) {
		if i >= len(pws) {
			return nil, io.EOF
		}
		i++
		return []byte(pws[i-1]), nil
	}
}

func (e *testEnv) login(t *testing.T, username, password string) {
	t.Helper()
	_, err := e.session.Login(context.Background(), models.Credentials{Username: username, Password: password})
	require.NoError(t, err)
	e.out.Reset()
}

func (e *testEnv) run(t *testing.T, line string) string {
	t.Helper()
	parts := strings.Fields(line)
	start := e.out.Len()
	require.NoError(t, e.app.exec(context.Background(), parts[0], parts[1:]))
	return e.out.String()[start:]
}

package mockapi

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/langcrowd/internal/client/models"
	"github.com/dmitrijs2005/langcrowd/internal/common"
)

var testSecret = []byte("test-secret")

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s := NewStore(4)
	require.NoError(t, s.Seed())
	return s
}

func newTestServer(t *testing.T) (*Server, *Store, string) {
	t.Helper()
	store := newTestStore(t)
	srv := NewServer(store, Options{Secret: testSecret})
	ts := httptest.NewServer(srv)
	t.Cleanup(ts.Close)
	return srv, store, ts.URL
}

type testClient struct {
	t     *testing.T
	base  string
	token string
}

func newTestClient(t *testing.T, url string) *testClient {
	return &testClient{t: t, base: url + BasePath}
}

func (c *testClient) do(method, path string, body any) (int, []byte) {
	c.t.Helper()
	var rd io.Reader = http.NoBody
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(c.t, err)
		rd = bytes.NewReader(b)
	}
	req, err := http.NewRequest(method, c.base+path, rd)
	require.NoError(c.t, err)
	req.Header.Set("Content-Type", "application/json")
	if c.token != "" {
		req.Header.Set(common.AuthorizationHeaderName, common.AuthScheme+" "+c.token)
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(c.t, err)
	defer resp.Body.Close()
	out, err := io.ReadAll(resp.Body)
	require.NoError(c.t, err)
	return resp.StatusCode, out
}

func (c *testClient) login(username, password string) *models.User {
	c.t.Helper()
	c.token = ""
	status, body := c.do(http.MethodPost, "/accounts/login/", models.Credentials{Username: username, Password: password})
	require.Equal(c.t, http.StatusOK, status, string(body))
	var out models.AuthResponse
	require.NoError(c.t, json.Unmarshal(body, &out))
	c.token = out.Token
	return out.User
}

func decodeBody[T any](t *testing.T, b []byte) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(b, &v), string(b))
	return v
}

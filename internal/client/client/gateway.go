package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/dmitrijs2005/langcrowd/internal/common"
	"github.com/dmitrijs2005/langcrowd/internal/logging"
	"github.com/sethvargo/go-retry"
)

const (
	DefaultBaseURL       = "http://127.0.0.1:8000/api/v1"
	DefaultTimeout       = 10 * time.Second
	DefaultRetryAttempts = 3
	DefaultRetryDelay    = 500 * time.Millisecond

	loginPath  = "accounts/login/"
	healthPath = "health/"
)

// TokenSource yields the current session credential. It is consulted on
// every request so the gateway never caches a stale token.
type TokenSource interface {
	Token() string
}

// TokenFunc adapts a function to TokenSource.
type TokenFunc func() string

func (f TokenFunc) Token() string { return f() }

// UnauthorizedHandler runs when a non-login call is answered with 401.
// token is the credential the rejected request carried.
type UnauthorizedHandler func(ctx context.Context, token string)

// RequestInterceptor may amend an outgoing request. Returning an error
// aborts the call.
type RequestInterceptor func(req *http.Request) error

type Options struct {
	BaseURL        string
	HTTPClient     *http.Client
	Timeout        time.Duration
	RetryAttempts  int
	RetryDelay     time.Duration
	Tokens         TokenSource
	OnUnauthorized UnauthorizedHandler
	Logger         logging.Logger
}

type Gateway struct {
	base     *url.URL
	http     *http.Client
	attempts int
	delay    time.Duration
	logger   logging.Logger

	mu             sync.RWMutex
	tokens         TokenSource
	onUnauthorized UnauthorizedHandler
	interceptors   []RequestInterceptor
}

func New(opts Options) (*Gateway, error) {
	raw := opts.BaseURL
	if raw == "" {
		raw = DefaultBaseURL
	}
	base, err := url.Parse(strings.TrimSuffix(raw, "/") + "/")
	if err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}
	if base.Scheme != "http" && base.Scheme != "https" {
		return nil, fmt.Errorf("unsupported base url scheme %q", base.Scheme)
	}

	hc := opts.HTTPClient
	if hc == nil {
		timeout := opts.Timeout
		if timeout <= 0 {
			timeout = DefaultTimeout
		}
		hc = &http.Client{Timeout: timeout}
	}
	attempts := opts.RetryAttempts
	if attempts <= 0 {
		attempts = DefaultRetryAttempts
	}
	delay := opts.RetryDelay
	if delay <= 0 {
		delay = DefaultRetryDelay
	}
	logger := opts.Logger
	if logger == nil {
		logger = logging.Discard()
	}

	g := &Gateway{
		base:           base,
		http:           hc,
		attempts:       attempts,
		delay:          delay,
		logger:         logger,
		tokens:         opts.Tokens,
		onUnauthorized: opts.OnUnauthorized,
	}
	g.interceptors = []RequestInterceptor{jsonHeaders, g.credentials}
	return g, nil
}

// SetTokenSource replaces the credential source. The session store is
// usually built after the gateway, so it is attached late.
func (g *Gateway) SetTokenSource(ts TokenSource) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.tokens = ts
}

func (g *Gateway) SetUnauthorizedHandler(h UnauthorizedHandler) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.onUnauthorized = h
}

// Use appends a request interceptor. Interceptors run in registration order
// after the built-in ones.
func (g *Gateway) Use(i RequestInterceptor) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.interceptors = append(g.interceptors, i)
}

func jsonHeaders(req *http.Request) error {
	req.Header.Set("Accept", "application/json")
	if req.Body != nil && req.Body != http.NoBody {
		req.Header.Set("Content-Type", "application/json")
	}
	return nil
}

func (g *Gateway) credentials(req *http.Request) error {
	if isLoginRequest(req.URL.Path) {
		return nil
	}
	if token, ok := req.Context().Value(tokenOverrideKey{}).(string); ok {
		if token != "" {
			req.Header.Set(common.AuthorizationHeaderName, common.AuthScheme+" "+token)
		}
		return nil
	}
	g.mu.RLock()
	ts := g.tokens
	g.mu.RUnlock()
	if ts == nil {
		return nil
	}
	if token := ts.Token(); token != "" {
		req.Header.Set(common.AuthorizationHeaderName, common.AuthScheme+" "+token)
	}
	return nil
}

func sentToken(req *http.Request) string {
	return strings.TrimPrefix(req.Header.Get(common.AuthorizationHeaderName), common.AuthScheme+" ")
}

func isLoginRequest(path string) bool {
	return strings.HasSuffix(path, "/"+loginPath)
}

// Ping probes the health endpoint without retries.
func (g *Gateway) Ping(ctx context.Context) error {
	return g.once(ctx, http.MethodGet, healthPath, nil, nil, nil)
}

func (g *Gateway) get(ctx context.Context, path string, query url.Values, out any) error {
	b := retry.WithMaxRetries(uint64(g.attempts-1), retry.NewConstant(g.delay))
	return retry.Do(ctx, b, func(ctx context.Context) error {
		err := g.once(ctx, http.MethodGet, path, query, nil, out)
		if errors.Is(err, ErrUnavailable) {
			return retry.RetryableError(err)
		}
		return err
	})
}

func (g *Gateway) send(ctx context.Context, method, path string, in, out any) error {
	return g.once(ctx, method, path, nil, in, out)
}

func (g *Gateway) once(ctx context.Context, method, path string, query url.Values, in, out any) error {
	u := g.base.JoinPath(path)
	if strings.HasSuffix(path, "/") && !strings.HasSuffix(u.Path, "/") {
		u.Path += "/"
	}
	if len(query) > 0 {
		u.RawQuery = query.Encode()
	}

	var body io.Reader = http.NoBody
	if in != nil {
		buf, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		body = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, u.String(), body)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}

	g.mu.RLock()
	interceptors := append([]RequestInterceptor(nil), g.interceptors...)
	onUnauthorized := g.onUnauthorized
	g.mu.RUnlock()

	for _, i := range interceptors {
		if err := i(req); err != nil {
			return fmt.Errorf("request interceptor: %w", err)
		}
	}

	start := time.Now()
	resp, err := g.http.Do(req)
	if err != nil {
		g.logger.Debug(ctx, "api call failed", "method", method, "path", u.Path, "err", err, "latency", time.Since(start))
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	g.logger.Debug(ctx, "api call", "method", method, "path", u.Path, "status", resp.StatusCode, "latency", time.Since(start))

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("%w: read response: %v", ErrUnavailable, err)
	}

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		if out == nil || len(bytes.TrimSpace(payload)) == 0 {
			return nil
		}
		if err := json.Unmarshal(payload, out); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
		return nil
	}

	login := isLoginRequest(u.Path)
	if login && (resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusBadRequest) {
		return ErrInvalidCredentials
	}
	if resp.StatusCode == http.StatusUnauthorized {
		g.logger.Warn(ctx, "session rejected by server", "path", u.Path)
		// A call made with an explicit token does not speak for the session.
		_, overridden := ctx.Value(tokenOverrideKey{}).(string)
		if onUnauthorized != nil && !overridden {
			onUnauthorized(ctx, sentToken(req))
		}
		return ErrUnauthorized
	}

	return decodeAPIError(resp.StatusCode, payload)
}

const maxDetailLen = 200

// truncate cuts s to at most n bytes without splitting a rune.
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}

// decodeAPIError understands {"detail": "..."}, {"error": "..."} and
// DRF-style {"field": ["msg", ...]} bodies.
func decodeAPIError(status int, payload []byte) *APIError {
	apiErr := &APIError{Status: status}

	var body map[string]json.RawMessage
	if err := json.Unmarshal(payload, &body); err != nil {
		apiErr.Detail = strings.TrimSpace(string(payload))
		apiErr.Detail = truncate(apiErr.Detail, maxDetailLen)
		return apiErr
	}

	for key, raw := range body {
		var msg string
		var msgs []string
		switch {
		case json.Unmarshal(raw, &msg) == nil:
			msgs = []string{msg}
		case json.Unmarshal(raw, &msgs) == nil:
		default:
			continue
		}
		switch key {
		case "detail", "error", "message":
			if apiErr.Detail == "" && len(msgs) > 0 {
				apiErr.Detail = msgs[0]
			}
		case "non_field_errors":
			if apiErr.Detail == "" && len(msgs) > 0 {
				apiErr.Detail = strings.Join(msgs, " ")
			}
		default:
			if apiErr.Fields == nil {
				apiErr.Fields = make(map[string][]string)
			}
			apiErr.Fields[key] = msgs
		}
	}
	return apiErr
}

// listOf decodes either a plain JSON array or a paginated {"results": [...]}.
type listOf[T any] []T

func (l *listOf[T]) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) > 0 && b[0] == '[' {
		var items []T
		if err := json.Unmarshal(b, &items); err != nil {
			return err
		}
		*l = items
		return nil
	}
	var page struct {
		Results []T `json:"results"`
	}
	if err := json.Unmarshal(b, &page); err != nil {
		return err
	}
	*l = page.Results
	return nil
}

func list[T any](ctx context.Context, g *Gateway, path string) ([]T, error) {
	var out listOf[T]
	if err := g.get(ctx, path, nil, &out); err != nil {
		return nil, err
	}
	if out == nil {
		return []T{}, nil
	}
	return out, nil
}

type tokenOverrideKey struct{}

// WithToken pins the credential used for calls made with ctx, bypassing the
// TokenSource. The session store uses it for the background logout call,
// which runs after the local session has already been cleared.
func WithToken(ctx context.Context, token string) context.Context {
	return context.WithValue(ctx, tokenOverrideKey{}, token)
}

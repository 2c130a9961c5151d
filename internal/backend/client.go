// Package backend is a client for the hosted database/auth service that
// stores households, their members and invitations, and hourly room
// activity. It speaks the service's REST dialect directly: password
// sign-in against the auth endpoint and filtered selects against the
// table endpoints.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/diogenes-ai-code/gtadmin/internal/config"
	"github.com/diogenes-ai-code/gtadmin/internal/errors"
)

const userAgent = "gtadmin/1.0"

// Client talks to the hosted backend. It holds at most one signed-in
// session; requests made without one use the anonymous key.
type Client struct {
	baseURL    string
	anonKey    string
	allowed    []string
	httpClient *http.Client
	logger     *slog.Logger
	now        func() time.Time

	mu      sync.RWMutex
	session *Session
}

// New creates a client from the backend config. It returns an Unavailable
// error when no backend URL is configured.
func New(cfg config.BackendConfig, logger *slog.Logger) (*Client, error) {
	if !cfg.Enabled() {
		return nil, errors.Unavailable("backend not configured").
			WithSuggestion("Set [backend] url in config.toml or GTADMIN_BACKEND_URL")
	}
	timeout := time.Duration(cfg.TimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return newClient(cfg.URL, cfg.AnonKey, cfg.AllowedEmails, &http.Client{Timeout: timeout}, logger), nil
}

func newClient(baseURL, anonKey string, allowed []string, httpClient *http.Client, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		anonKey:    anonKey,
		allowed:    allowed,
		httpClient: httpClient,
		logger:     logger,
		now:        time.Now,
	}
}

// IsAllowedEmail reports whether email is on the admin allow-list.
// Comparison ignores case.
func (c *Client) IsAllowedEmail(email string) bool {
	email = strings.TrimSpace(email)
	if email == "" {
		return false
	}
	for _, a := range c.allowed {
		if strings.EqualFold(a, email) {
			return true
		}
	}
	return false
}

// Session returns a copy of the current session, or nil.
func (c *Client) Session() *Session {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.session == nil {
		return nil
	}
	s := *c.session
	return &s
}

func (c *Client) bearer() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.session != nil {
		return c.session.AccessToken
	}
	return c.anonKey
}

func (c *Client) newRequest(ctx context.Context, method, rawURL string, body interface{}) (*http.Request, error) {
	var bodyReader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("marshal request body: %w", err)
		}
		bodyReader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, rawURL, bodyReader)
	if err != nil {
		return nil, err
	}

	req.Header.Set("apikey", c.anonKey)
	req.Header.Set("Authorization", "Bearer "+c.bearer())
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", userAgent)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return req, nil
}

// do sends the request and decodes a 2xx JSON body into out, which may be
// nil. Any other status becomes a kinded error.
func (c *Client) do(req *http.Request, op string, out interface{}) error {
	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return errors.Wrap(err, errors.KindUnavailable, "%s: backend unreachable", op)
	}
	defer resp.Body.Close()

	c.logger.Debug("backend request", "op", op, "method", req.Method, "path", req.URL.Path,
		"status", resp.StatusCode, "duration", time.Since(start))

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return errors.Wrap(err, errors.KindUnavailable, "%s: read response", op)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return statusError(op, resp.StatusCode, body)
	}
	if out == nil || len(bytes.TrimSpace(body)) == 0 {
		return nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		return errors.Wrap(err, errors.KindUnavailable, "%s: decode response", op)
	}
	return nil
}

// apiError is the error body returned by both the auth and table endpoints.
type apiError struct {
	Message          string `json:"message"`
	Msg              string `json:"msg"`
	Error            string `json:"error"`
	ErrorDescription string `json:"error_description"`
}

func (e apiError) text() string {
	for _, s := range []string{e.Message, e.Msg, e.ErrorDescription, e.Error} {
		if s != "" {
			return s
		}
	}
	return ""
}

func statusError(op string, status int, body []byte) error {
	var ae apiError
	msg := strings.TrimSpace(string(body))
	if json.Unmarshal(body, &ae) == nil && ae.text() != "" {
		msg = ae.text()
	}
	if msg == "" {
		msg = http.StatusText(status)
	}

	var kind errors.Kind
	switch {
	case status == http.StatusUnauthorized:
		kind = errors.KindUnauthorized
	case status == http.StatusForbidden:
		kind = errors.KindForbidden
	case status == http.StatusNotFound:
		kind = errors.KindNotFound
	case status < 500:
		kind = errors.KindInvalidArgs
	default:
		kind = errors.KindUnavailable
	}
	return (&errors.Error{Kind: kind, Message: fmt.Sprintf("%s: %s", op, msg)}).
		WithDetails("status", status)
}

// tableURL builds the REST URL of a table select.
func (c *Client) tableURL(table string, q url.Values) string {
	return c.baseURL + "/rest/v1/" + table + "?" + q.Encode()
}

func (c *Client) selectRows(ctx context.Context, op, table string, q url.Values, out interface{}) error {
	req, err := c.newRequest(ctx, http.MethodGet, c.tableURL(table, q), nil)
	if err != nil {
		return err
	}
	return c.do(req, op, out)
}

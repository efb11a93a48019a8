// Package judgeapi is the HTTP client for the judge API. It attaches the
// bearer token to authenticated requests, leaves it off public ones, and turns
// every failure into one of the common error kinds.
package judgeapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/Neeharika2/code-assessor/internal/common"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const maxResponseBytes = 16 << 20

// Authenticator supplies the bearer token and is told when the server
// rejects it.
type Authenticator interface {
	Token() string
	Unauthorized(err error)
}

type Request struct {
	Method string
	Path   string // relative to the base URL, e.g. "/problems/3"
	Query  url.Values
	Body   interface{}
	// Public requests never carry the Authorization header, even when a
	// session exists.
	Public bool
}

type Client struct {
	baseURL string
	http    *http.Client
	logger  *zap.Logger

	mu   sync.RWMutex
	auth Authenticator
}

type Option func(*Client)

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.http.Timeout = d }
}

func WithLogger(l *zap.Logger) Option {
	return func(c *Client) { c.logger = l }
}

func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: 60 * time.Second},
		logger:  zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Attach installs the token source. It is separate from New because the
// session store itself talks to the API through this client.
func (c *Client) Attach(a Authenticator) {
	c.mu.Lock()
	c.auth = a
	c.mu.Unlock()
}

func (c *Client) authenticator() Authenticator {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.auth
}

// Do sends req and decodes a 2xx JSON body into out (when out is non-nil).
func (c *Client) Do(ctx context.Context, req Request, out interface{}) error {
	auth := c.authenticator()
	var token string
	if !req.Public {
		if auth != nil {
			token = auth.Token()
		}
		if token == "" {
			return &common.APIError{Status: http.StatusUnauthorized, Message: "login required", Kind: common.ErrUnauthorized}
		}
	}

	httpReq, err := c.newHTTPRequest(ctx, req, token)
	if err != nil {
		return err
	}

	start := time.Now()
	resp, err := c.http.Do(httpReq)
	if err != nil {
		c.logger.Debug("judge api transport failure",
			zap.String("method", req.Method), zap.String("path", req.Path), zap.Error(err))
		return fmt.Errorf("%w: %s %s: %w", common.ErrNetwork, req.Method, req.Path, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return fmt.Errorf("%w: reading %s %s: %w", common.ErrNetwork, req.Method, req.Path, err)
	}
	c.logger.Debug("judge api call",
		zap.String("method", req.Method),
		zap.String("path", req.Path),
		zap.Bool("public", req.Public),
		zap.Int("status", resp.StatusCode),
		zap.Duration("took", time.Since(start)))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := common.ErrorFromStatus(resp.StatusCode, errorMessage(resp.StatusCode, body))
		if resp.StatusCode == http.StatusUnauthorized && !req.Public && auth != nil {
			auth.Unauthorized(apiErr)
		}
		return apiErr
	}

	if out == nil {
		return nil
	}
	if len(bytes.TrimSpace(body)) == 0 {
		return fmt.Errorf("%w: empty response from %s %s", common.ErrService, req.Method, req.Path)
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("%w: malformed response from %s %s: %v", common.ErrService, req.Method, req.Path, err)
	}
	return nil
}

func (c *Client) newHTTPRequest(ctx context.Context, req Request, token string) (*http.Request, error) {
	target := c.baseURL + req.Path
	if len(req.Query) > 0 {
		target += "?" + req.Query.Encode()
	}

	var body io.Reader
	if req.Body != nil {
		payload, err := json.Marshal(req.Body)
		if err != nil {
			return nil, fmt.Errorf("encoding %s %s body: %w", req.Method, req.Path, err)
		}
		body = bytes.NewReader(payload)
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.Method, target, body)
	if err != nil {
		return nil, fmt.Errorf("%w: building %s %s: %w", common.ErrNetwork, req.Method, req.Path, err)
	}
	httpReq.Header.Set("Accept", "application/json")
	httpReq.Header.Set("X-Request-Id", uuid.NewString())
	if body != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		httpReq.Header.Set("Authorization", "Bearer "+token)
	}
	return httpReq, nil
}

// errorMessage prefers the server's {"error": ...} text, then the raw body.
func errorMessage(status int, body []byte) string {
	var e common.ErrorResponse
	if err := json.Unmarshal(body, &e); err == nil && e.Error != "" {
		return e.Error
	}
	if s := strings.TrimSpace(string(body)); s != "" && len(s) < 512 {
		return s
	}
	return http.StatusText(status)
}

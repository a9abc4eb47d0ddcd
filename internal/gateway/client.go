package gateway

import (
	"context"
	"crypto/tls"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/vk/livysubmit/internal/credentials"
	"github.com/vk/livysubmit/internal/ctxlog"
	"resty.dev/v3"
)

// Config holds the connection settings for a Client.
type Config struct {
	URL      string
	User     string
	Insecure bool
	Timeout  time.Duration
}

// Client talks to a single gateway. It is safe for concurrent use.
type Client struct {
	rc *resty.Client
}

// New resolves the user's password through creds and returns a client bound
// to cfg.URL. A missing password surfaces as the provider's
// *credentials.AuthenticationMissingError.
func New(ctx context.Context, cfg Config, creds credentials.Provider) (*Client, error) {
	u, err := url.Parse(cfg.URL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("gateway: invalid URL %q", cfg.URL)
	}
	if creds == nil {
		return nil, errors.New("gateway: credential provider is required")
	}

	password, err := creds.Password(ctx, cfg.User)
	if err != nil {
		return nil, err
	}

	rc := resty.New().
		SetLogger(restyLogger{logger: ctxlog.FromContext(ctx)}).
		SetBaseURL(strings.TrimRight(cfg.URL, "/")).
		SetBasicAuth(cfg.User, password).
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "application/json").
		SetHeader("X-Requested-By", cfg.User).
		SetRetryCount(0)
	if cfg.Timeout > 0 {
		rc.SetTimeout(cfg.Timeout)
	}
	if cfg.Insecure {
		ctxlog.FromContext(ctx).Warn("Skipping TLS certificate verification for the gateway.")
		rc.SetTLSClientConfig(&tls.Config{InsecureSkipVerify: true})
	}

	return &Client{rc: rc}, nil
}

// Close releases idle connections.
func (c *Client) Close() error {
	return c.rc.Close()
}

// ListSessions returns all sessions known to the gateway.
func (c *Client) ListSessions(ctx context.Context) (*SessionList, error) {
	var out SessionList
	if err := c.do(ctx, "list sessions", http.MethodGet, "/sessions", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// GetSession returns one session, including its log tail.
func (c *Client) GetSession(ctx context.Context, id int) (*Session, error) {
	var out Session
	if err := c.do(ctx, fmt.Sprintf("get session %d", id), http.MethodGet, sessionPath(id), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// CreateSession starts a new session and returns it as first observed.
func (c *Client) CreateSession(ctx context.Context, req *CreateSessionRequest) (*Session, error) {
	var out Session
	if err := c.do(ctx, "create session", http.MethodPost, "/sessions", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// DeleteSession asks the gateway to stop a session.
func (c *Client) DeleteSession(ctx context.Context, id int) error {
	return c.do(ctx, fmt.Sprintf("delete session %d", id), http.MethodDelete, sessionPath(id), nil, nil)
}

// ListStatements returns the statements of a session.
func (c *Client) ListStatements(ctx context.Context, sessionID int) (*StatementList, error) {
	var out StatementList
	op := fmt.Sprintf("list statements of session %d", sessionID)
	if err := c.do(ctx, op, http.MethodGet, sessionPath(sessionID)+"/statements", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// GetStatement returns one statement.
func (c *Client) GetStatement(ctx context.Context, sessionID, id int) (*Statement, error) {
	var out Statement
	op := fmt.Sprintf("get statement %d of session %d", id, sessionID)
	if err := c.do(ctx, op, http.MethodGet, statementPath(sessionID, id), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// PostStatement submits code to a session.
func (c *Client) PostStatement(ctx context.Context, sessionID int, code string) (*Statement, error) {
	var out Statement
	op := fmt.Sprintf("post statement to session %d", sessionID)
	if err := c.do(ctx, op, http.MethodPost, sessionPath(sessionID)+"/statements", &StatementRequest{Code: code}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) do(ctx context.Context, op, method, path string, body, out any) error {
	logger := ctxlog.FromContext(ctx)
	start := time.Now()

	req := c.rc.R().SetContext(ctx)
	if body != nil {
		req.SetBody(body)
	}
	resp, err := req.Execute(method, path)
	if err != nil {
		return &GatewayError{Op: op, Err: err}
	}

	status := resp.StatusCode()
	logger.Debug("Gateway call finished.", "method", method, "path", path, "status", status, "elapsed", time.Since(start))

	if status < 200 || status > 299 {
		return &GatewayError{Op: op, Status: status, Body: resp.String()}
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(resp.Bytes(), out); err != nil {
		return &GatewayError{Op: op, Status: status, Body: resp.String(), Err: fmt.Errorf("malformed response: %w", err)}
	}
	return nil
}

func sessionPath(id int) string {
	return fmt.Sprintf("/sessions/%d", id)
}

func statementPath(sessionID, id int) string {
	return fmt.Sprintf("/sessions/%d/statements/%d", sessionID, id)
}

// Package api is the session-aware client for the back-office REST API.
//
// Every request carries the current bearer token from the token store. A 401
// from any endpoint clears the token before the error is returned; callers
// decide what to do next. There are no automatic retries.
package api

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
	"time"

	"github.com/google/uuid"

	"github.com/machibo/backoffice/internal/config"
	"github.com/machibo/backoffice/internal/logging"
	"github.com/machibo/backoffice/internal/version"
)

// maxResponseBytes caps how much of a response body is read.
const maxResponseBytes = 8 << 20

// TokenSource supplies the bearer token and is told when the server rejects it.
// session.Store satisfies it.
type TokenSource interface {
	Token() string
	Invalidate()
}

// ClientConfig holds configuration for creating a Client.
type ClientConfig struct {
	// BaseURL is the API root, e.g. "https://xpi.machibo.com".
	BaseURL string
	// HTTPClient is used for all requests. If nil, http.DefaultClient is used.
	HTTPClient *http.Client
	// Tokens provides the bearer token. Required.
	Tokens TokenSource
	// Logger receives one debug line per request. If nil, logging is disabled.
	Logger logging.Logger
}

// Client issues authenticated requests against the API.
type Client struct {
	baseURL    string
	httpClient *http.Client
	tokens     TokenSource
	logger     logging.Logger
	userAgent  string
}

// NewClient creates a Client.
func NewClient(cfg ClientConfig) (*Client, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("api: BaseURL is required")
	}
	parsed, err := url.Parse(cfg.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("api: invalid BaseURL %q: %w", cfg.BaseURL, err)
	}
	if parsed.Scheme == "" || parsed.Host == "" {
		return nil, fmt.Errorf("api: invalid BaseURL %q: missing scheme or host", cfg.BaseURL)
	}
	if cfg.Tokens == nil {
		return nil, fmt.Errorf("api: token source is required")
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	logger := cfg.Logger
	if logger == nil {
		logger = logging.Nop()
	}

	return &Client{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		httpClient: httpClient,
		tokens:     cfg.Tokens,
		logger:     logger.With("component", "api"),
		userAgent:  "backoffice/" + version.String(),
	}, nil
}

// NewClientFromConfig creates a Client using api_base_url and request_timeout.
func NewClientFromConfig(tokens TokenSource, logger logging.Logger) (*Client, error) {
	return NewClient(ClientConfig{
		BaseURL:    config.Get("api_base_url", config.DefaultAPIBaseURL),
		HTTPClient: &http.Client{Timeout: config.GetSeconds("request_timeout", 15*time.Second)},
		Tokens:     tokens,
		Logger:     logger,
	})
}

// BaseURL returns the API root requests are sent to.
func (c *Client) BaseURL() string { return c.baseURL }

// Request describes one API call.
type Request struct {
	Method   string
	Endpoint string
	Query    url.Values
	Body     any
	// RequireAuth fails the call with ErrNoToken when no token is held,
	// without touching the network.
	RequireAuth bool
}

// Request sends method to endpoint and returns the raw response body of a
// 2xx response. Non-2xx responses are returned as *Error.
func (c *Client) Request(ctx context.Context, method, endpoint string, query url.Values, body any) ([]byte, error) {
	return c.send(ctx, Request{Method: method, Endpoint: endpoint, Query: query, Body: body})
}

// Call sends req and decodes the response envelope. A 2xx envelope reporting
// failure is returned as a KindRequestFailed error.
func (c *Client) Call(ctx context.Context, req Request) (*Envelope, error) {
	raw, err := c.send(ctx, req)
	if err != nil {
		return nil, err
	}
	env, err := decodeEnvelope(raw)
	if err != nil {
		return nil, err
	}
	if !env.Status.OK() {
		return env, &Error{
			Kind:     KindRequestFailed,
			Method:   req.Method,
			Endpoint: req.Endpoint,
			Status:   http.StatusOK,
			Message:  string(env.Message),
		}
	}
	return env, nil
}

// Do sends req and decodes the envelope data into out. out may be nil.
func (c *Client) Do(ctx context.Context, req Request, out any) error {
	env, err := c.Call(ctx, req)
	if err != nil {
		return err
	}
	if out == nil || len(env.Data) == 0 || string(env.Data) == "null" {
		return nil
	}
	if err := json.Unmarshal(env.Data, out); err != nil {
		return fmt.Errorf("api: decode %s data: %w", req.Endpoint, err)
	}
	return nil
}

func (c *Client) send(ctx context.Context, req Request) ([]byte, error) {
	method := req.Method
	if method == "" {
		method = http.MethodGet
	}
	token := c.tokens.Token()
	if req.RequireAuth && token == "" {
		return nil, &Error{Kind: KindUnauthorized, Method: method, Endpoint: req.Endpoint, Err: ErrNoToken}
	}

	requestURL := c.baseURL + "/" + strings.TrimLeft(req.Endpoint, "/")
	if len(req.Query) > 0 {
		requestURL += "?" + req.Query.Encode()
	}

	var bodyReader io.Reader
	if req.Body != nil {
		encoded, err := json.Marshal(req.Body)
		if err != nil {
			return nil, fmt.Errorf("api: encode request body: %w", err)
		}
		bodyReader = bytes.NewReader(encoded)
	}

	httpReq, err := http.NewRequestWithContext(ctx, method, requestURL, bodyReader)
	if err != nil {
		return nil, fmt.Errorf("api: create request: %w", err)
	}
	requestID := uuid.NewString()
	httpReq.Header.Set("Accept", "application/json")
	httpReq.Header.Set("User-Agent", c.userAgent)
	httpReq.Header.Set("X-Request-ID", requestID)
	if req.Body != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		httpReq.Header.Set("Authorization", "Bearer "+token)
	}

	log := c.logger.With("request_id", requestID, "method", method, "endpoint", req.Endpoint)
	start := time.Now()
	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		log.Warn("request failed", "error", err.Error())
		return nil, &Error{Kind: KindNetwork, Method: method, Endpoint: req.Endpoint, Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, &Error{Kind: KindNetwork, Method: method, Endpoint: req.Endpoint, Status: resp.StatusCode, Err: err}
	}
	log.Debug("response", "status", resp.StatusCode, "duration_ms", time.Since(start).Milliseconds())

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return body, nil
	}

	apiErr := &Error{
		Kind:     KindRequestFailed,
		Method:   method,
		Endpoint: req.Endpoint,
		Status:   resp.StatusCode,
		Message:  messageFrom(body),
	}
	if resp.StatusCode == http.StatusUnauthorized {
		c.tokens.Invalidate()
		apiErr.Kind = KindUnauthorized
		log.Warn("token rejected, session cleared")
	}
	return nil, apiErr
}

func messageFrom(body []byte) string {
	env, err := decodeEnvelope(body)
	if err != nil {
		return ""
	}
	return string(env.Message)
}

// IsUnauthorized reports whether err is a 401 or a missing-token failure.
func IsUnauthorized(err error) bool {
	return errors.Is(err, ErrUnauthorized) || errors.Is(err, ErrNoToken)
}

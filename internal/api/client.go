package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

const (
	DefaultBaseURL = "http://localhost:3001/api"
	DefaultTimeout = 10 * time.Second

	requestIDHeader = "X-Request-ID"
)

type Client struct {
	logger     zerolog.Logger
	baseURL    string
	httpClient *http.Client
	metrics    *Metrics
}

type Option func(*Client)

func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		withTimeout := *c.httpClient
		withTimeout.Timeout = timeout
		c.httpClient = &withTimeout
	}
}

// WithMetrics instruments the client's transport. It must come after
// WithHTTPClient when both are given.
func WithMetrics(metrics *Metrics) Option {
	return func(c *Client) {
		transport := c.httpClient.Transport
		if transport == nil {
			transport = http.DefaultTransport
		}
		instrumented := *c.httpClient
		instrumented.Transport = metrics.InstrumentRoundTripper(transport)
		c.httpClient = &instrumented
		c.metrics = metrics
	}
}

func New(logger zerolog.Logger, baseURL string, opts ...Option) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	c := &Client{
		logger:     logger,
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: DefaultTimeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type request struct {
	op       string
	method   string
	path     string
	token    string
	body     any
	out      any
	fallback string
	auth     bool
}

func (c *Client) do(ctx context.Context, req request) error {
	var body io.Reader
	if req.body != nil {
		b, err := json.Marshal(req.body)
		if err != nil {
			return fmt.Errorf("failed to marshal %s request: %w", req.op, err)
		}
		body = bytes.NewReader(b)
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.method, c.baseURL+req.path, body)
	if err != nil {
		return fmt.Errorf("failed to build %s request: %w", req.op, err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if req.token != "" {
		httpReq.Header.Set("Authorization", "Bearer "+req.token)
	}

	requestID, err := uuid.NewV7()
	if err != nil {
		c.logger.Warn().
			Err(err).
			Msg("failed to generate request id")
	} else {
		httpReq.Header.Set(requestIDHeader, requestID.String())
	}

	logger := c.logger.With().
		Str("op", req.op).
		Str("method", req.method).
		Str("path", req.path).
		Str("request_id", httpReq.Header.Get(requestIDHeader)).
		Logger()

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			logger.Warn().
				Err(ctxErr).
				Msg("request cancelled")
			return fmt.Errorf("%s: %w", req.op, ctxErr)
		}

		logger.Error().
			Err(err).
			Msg("failed to reach backend")
		if c.metrics != nil {
			c.metrics.connectivityFailures.WithLabelValues(req.op).Inc()
		}
		return &ConnectivityError{BaseURL: c.baseURL, Err: err}
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		logger.Error().
			Err(err).
			Msg("failed to read response body")
		return &ConnectivityError{BaseURL: c.baseURL, Err: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		message := errorMessage(respBody, req.fallback)
		logger.Error().
			Int("status", resp.StatusCode).
			Str("message", message).
			Msg("backend rejected request")
		if req.auth {
			return &AuthError{Op: req.op, StatusCode: resp.StatusCode, Message: message}
		}
		return &RequestError{Op: req.op, StatusCode: resp.StatusCode, Message: message}
	}
	logger.Debug().
		Int("status", resp.StatusCode).
		Msg("request succeeded")

	if req.out == nil || len(bytes.TrimSpace(respBody)) == 0 {
		return nil
	}
	err = json.Unmarshal(respBody, req.out)
	if err != nil {
		logger.Error().
			Err(err).
			Msg("failed to decode response body")
		return fmt.Errorf("failed to decode %s response: %w", req.op, err)
	}
	return nil
}

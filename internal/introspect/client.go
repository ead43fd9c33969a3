// Package introspect fetches a GraphQL type system through the introspection
// query and prints it as SDL.
package introspect

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/failsafe-go/failsafe-go"

	"github.com/s21toolkit/s21introspector/pkg/clients"
	"github.com/s21toolkit/s21introspector/pkg/logging"
	"github.com/s21toolkit/s21introspector/pkg/version"
)

const maxResponseBytes = 64 << 20 // 64 MB

var (
	// ErrGraphQL wraps errors reported in the "errors" member of a response.
	ErrGraphQL = errors.New("graphql error")
	// ErrStatus is returned for non-2xx responses.
	ErrStatus = errors.New("unexpected http status")
)

type Client struct {
	endpoint     string
	token        string
	client       *http.Client
	httpExecutor failsafe.Executor[*http.Response]
	shouldRetry  func(resp *http.Response, err error) bool
	logger       logging.Logger
}

type Option func(*Client)

func NewClient(endpoint string, opts ...Option) *Client {
	cfg := clients.DefaultHTTPExecutorConfig()
	cfg.Name = "introspection"
	c := &Client{
		endpoint:     endpoint,
		client:       clients.NewHTTPClient(60 * time.Second),
		httpExecutor: clients.NewHTTPExecutor(cfg),
		shouldRetry:  cfg.ShouldRetry,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.logger == nil {
		c.logger = logging.NewDiscardLogger()
	}
	return c
}

// WithToken sets the bearer token sent in the Authorization header.
func WithToken(token string) Option {
	return func(c *Client) { c.token = token }
}

func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		if httpClient != nil {
			c.client = httpClient
		}
	}
}

func WithHTTPExecutorConfig(cfg clients.HTTPExecutorConfig) Option {
	return func(c *Client) {
		c.httpExecutor = clients.NewHTTPExecutor(cfg)
		c.shouldRetry = cfg.ShouldRetry
		if c.shouldRetry == nil {
			c.shouldRetry = clients.DefaultShouldRetry
		}
	}
}

func WithLogger(logger logging.Logger) Option {
	return func(c *Client) { c.logger = logger }
}

// Fetch runs the introspection query and decodes the schema.
func (c *Client) Fetch(ctx context.Context) (*Schema, error) {
	body, err := json.Marshal(map[string]string{"query": Query})
	if err != nil {
		return nil, err
	}

	start := time.Now()
	resp, err := clients.ExecuteHTTP(ctx, c.httpExecutor, func() (*http.Response, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
		if err != nil {
			return nil, err
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Accept", "application/json")
		req.Header.Set("User-Agent", version.UserAgent())
		if c.token != "" {
			req.Header.Set("Authorization", "Bearer "+c.token)
		}
		resp, err := c.client.Do(req)
		if c.shouldRetry != nil && c.shouldRetry(resp, err) {
			if resp != nil && resp.Body != nil {
				_ = resp.Body.Close()
			}
		}
		return resp, err
	})
	if err != nil {
		return nil, fmt.Errorf("introspection request: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("read introspection response: %w", err)
	}
	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return nil, fmt.Errorf("%w %s: %s", ErrStatus, resp.Status, abbreviate(string(data)))
	}

	schema, err := Decode(data)
	if err != nil {
		return nil, err
	}

	c.logger.WithFields(logging.Fields{
		"types":       len(schema.Types),
		"directives":  len(schema.Directives),
		"duration_ms": time.Since(start).Milliseconds(),
	}).Info("Fetched type schema")
	return schema, nil
}

// Decode parses an introspection response body.
func Decode(data []byte) (*Schema, error) {
	var r response
	if err := json.Unmarshal(data, &r); err != nil {
		return nil, fmt.Errorf("decode introspection response: %w", err)
	}
	if len(r.Errors) > 0 {
		messages := make([]string, 0, len(r.Errors))
		for _, e := range r.Errors {
			messages = append(messages, e.Message)
		}
		return nil, fmt.Errorf("%w: %s", ErrGraphQL, strings.Join(messages, "; "))
	}
	if r.Data == nil || r.Data.Schema == nil {
		return nil, fmt.Errorf("%w: response has no __schema", ErrGraphQL)
	}
	return r.Data.Schema, nil
}

func abbreviate(s string) string {
	s = strings.TrimSpace(s)
	if len(s) > 200 {
		return s[:200] + "..."
	}
	return s
}

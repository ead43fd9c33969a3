package loader

import (
	"context"
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

const (
	defaultTimeout    = 30 * time.Second
	maxSourceBytes    = 32 << 20 // 32 MB
	maxErrorBodyBytes = 4 << 10  // 4 KB
)

// HTTP loads sources with GET requests, retrying transient failures.
type HTTP struct {
	client   *http.Client
	executor failsafe.Executor[*http.Response]
	// shouldRetry mirrors the executor's policy so discarded responses are closed.
	shouldRetry func(*http.Response, error) bool
	userAgent   string
	maxBytes    int64
	header      http.Header
	logger      logging.Logger
}

type HTTPOption func(*HTTP)

func WithClient(client *http.Client) HTTPOption {
	return func(h *HTTP) { h.client = client }
}

// WithExecutorConfig replaces the default retry/circuit breaker settings.
func WithExecutorConfig(cfg clients.HTTPExecutorConfig) HTTPOption {
	return func(h *HTTP) {
		h.executor = clients.NewHTTPExecutor(cfg)
		h.shouldRetry = cfg.ShouldRetry
	}
}

func WithUserAgent(ua string) HTTPOption {
	return func(h *HTTP) { h.userAgent = ua }
}

func WithMaxBodyBytes(n int64) HTTPOption {
	return func(h *HTTP) { h.maxBytes = n }
}

// WithHeader adds a header to every request.
func WithHeader(key, value string) HTTPOption {
	return func(h *HTTP) { h.header.Add(key, value) }
}

func WithHTTPLogger(logger logging.Logger) HTTPOption {
	return func(h *HTTP) { h.logger = logger }
}

func NewHTTP(opts ...HTTPOption) *HTTP {
	h := &HTTP{
		userAgent: version.UserAgent(),
		maxBytes:  maxSourceBytes,
		header:    make(http.Header),
	}
	for _, opt := range opts {
		opt(h)
	}
	if h.client == nil {
		h.client = clients.NewHTTPClient(defaultTimeout)
	}
	if h.logger == nil {
		h.logger = logging.NewDiscardLogger()
	}
	if h.executor == nil {
		cfg := clients.DefaultHTTPExecutorConfig()
		cfg.Name = "loader"
		cfg.CircuitBreaker = true
		cfg.Logger = h.logger
		h.executor = clients.NewHTTPExecutor(cfg)
		h.shouldRetry = cfg.ShouldRetry
	}
	if h.shouldRetry == nil {
		h.shouldRetry = clients.DefaultShouldRetry
	}
	return h
}

func (h *HTTP) Load(ctx context.Context, target string) (string, error) {
	resp, err := clients.ExecuteHTTP(ctx, h.executor, func() (*http.Response, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
		if err != nil {
			return nil, err
		}
		for k, values := range h.header {
			for _, v := range values {
				req.Header.Add(k, v)
			}
		}
		req.Header.Set("User-Agent", h.userAgent)
		resp, err := h.client.Do(req)
		if h.shouldRetry(resp, err) && resp != nil && resp.Body != nil {
			_ = resp.Body.Close()
		}
		return resp, err
	})
	if err != nil {
		requestsTotal.WithLabelValues("error").Inc()
		return "", fmt.Errorf("fetch %s: %w", target, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		requestsTotal.WithLabelValues("status").Inc()
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodyBytes))
		return "", fmt.Errorf("fetch %s: %w %s: %s", target, ErrStatus, resp.Status, strings.TrimSpace(string(body)))
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, h.maxBytes+1))
	if err != nil {
		requestsTotal.WithLabelValues("error").Inc()
		return "", fmt.Errorf("read %s: %w", target, err)
	}
	if int64(len(data)) > h.maxBytes {
		requestsTotal.WithLabelValues("too_large").Inc()
		return "", fmt.Errorf("read %s: body exceeds %d bytes", target, h.maxBytes)
	}

	requestsTotal.WithLabelValues("ok").Inc()
	h.logger.WithFields(logging.Fields{
		"url":   target,
		"bytes": len(data),
	}).Debug("Fetched source")
	return string(data), nil
}

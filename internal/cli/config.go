package cli

import (
	"strings"
	"time"

	"github.com/s21toolkit/s21introspector/pkg/clients"
	"github.com/s21toolkit/s21introspector/pkg/config"
	"github.com/s21toolkit/s21introspector/pkg/logging"
)

const defaultHTTPTimeout = 30 * time.Second

// networkConfig is the transport tuning shared by the loader and the
// introspection client.
type networkConfig struct {
	Timeout  time.Duration
	Executor clients.HTTPExecutorConfig
	// Headers are extra request headers for page and script loads.
	Headers [][2]string
}

// networkConfigFromEnv reads S21_HTTP_TIMEOUT, S21_HTTP_RETRIES,
// S21_HTTP_CIRCUIT_BREAKER and S21_HTTP_HEADERS ("Name: value" items,
// comma separated).
func networkConfigFromEnv(name string, logger logging.Logger) networkConfig {
	exec := clients.DefaultHTTPExecutorConfig()
	exec.Name = name
	exec.Logger = logger
	exec.MaxRetries = config.GetEnvInt("S21_HTTP_RETRIES", exec.MaxRetries)
	exec.CircuitBreaker = config.GetEnvBool("S21_HTTP_CIRCUIT_BREAKER", true)

	cfg := networkConfig{
		Timeout:  config.GetEnvDuration("S21_HTTP_TIMEOUT", defaultHTTPTimeout),
		Executor: exec,
	}
	for _, item := range config.GetEnvList("S21_HTTP_HEADERS") {
		key, value, ok := strings.Cut(item, ":")
		if !ok || strings.TrimSpace(key) == "" {
			if logger != nil {
				logger.WithField("header", item).Warn("Ignoring malformed header")
			}
			continue
		}
		cfg.Headers = append(cfg.Headers, [2]string{strings.TrimSpace(key), strings.TrimSpace(value)})
	}
	return cfg
}

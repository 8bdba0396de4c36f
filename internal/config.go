package internal

import (
	"chat-client/realtime"
	"chat-client/runtime/workers"
	"fmt"
	"net/url"
	"time"
)

type Config struct {
	HTTPEndpoint     string        `env:"CHAT_HTTP_ENDPOINT,required=true"`
	WSEndpoint       string        `env:"CHAT_WS_ENDPOINT,required=true"`
	BadgerFilepath   string        `env:"BADGER_FILEPATH,required=true"`
	LogLevel         string        `env:"LOG_LEVEL,default=INFO"`
	RequestTimeout   time.Duration `env:"REQUEST_TIMEOUT,default=15s"`
	SendTimeout      time.Duration `env:"SEND_TIMEOUT,default=10s"`
	EventBufferSize  int           `env:"EVENT_BUFFER_SIZE,default=64"`
	HistoryLimit     *int          `env:"HISTORY_LIMIT"`
	AckTimeout       time.Duration `env:"ACK_TIMEOUT,default=10s"`
	PingInterval     time.Duration `env:"PING_INTERVAL,default=20s"`
	WriteTimeout     time.Duration `env:"WRITE_TIMEOUT,default=5s"`
	ReconnectInitial time.Duration `env:"RECONNECT_INITIAL_INTERVAL,default=500ms"`
	ReconnectMax     time.Duration `env:"RECONNECT_MAX_INTERVAL,default=30s"`
	ReconnectJitter  float64       `env:"RECONNECT_JITTER,default=0.5"`
	ReconnectRetries int           `env:"RECONNECT_MAX_RETRIES,default=10"`
	StableConnection time.Duration `env:"STABLE_CONNECTION,default=1m"`
	MetricInterval   time.Duration `env:"METRIC_INTERVAL,default=5s"`
	LowCapacity      int           `env:"LOW_CAPACITY_THRESHOLD,default=8"`
}

// Validate catches the mistakes go-env cannot: malformed endpoints and
// numbers out of range.
func (c Config) Validate() error {
	if err := endpoint(c.HTTPEndpoint, "http", "https"); err != nil {
		return fmt.Errorf("CHAT_HTTP_ENDPOINT: %w", err)
	}
	if err := endpoint(c.WSEndpoint, "ws", "wss"); err != nil {
		return fmt.Errorf("CHAT_WS_ENDPOINT: %w", err)
	}
	if c.EventBufferSize < 1 {
		return fmt.Errorf("EVENT_BUFFER_SIZE must be positive, got %d", c.EventBufferSize)
	}
	if c.MetricInterval <= 0 {
		return fmt.Errorf("METRIC_INTERVAL must be positive, got %v", c.MetricInterval)
	}
	if c.ReconnectJitter < 0 || c.ReconnectJitter > 1 {
		return fmt.Errorf("RECONNECT_JITTER must be within [0, 1], got %v", c.ReconnectJitter)
	}
	if c.HistoryLimit != nil && *c.HistoryLimit < 1 {
		return fmt.Errorf("HISTORY_LIMIT must be positive, got %d", *c.HistoryLimit)
	}
	return nil
}

func (c Config) RetryPolicy() workers.RetryPolicy {
	policy := workers.DefaultRetryPolicy()
	policy.InitialInterval = c.ReconnectInitial
	policy.MaxInterval = c.ReconnectMax
	policy.Jitter = c.ReconnectJitter
	policy.MaxRetries = c.ReconnectRetries
	policy.StableAfter = c.StableConnection
	return policy
}

func (c Config) LiveOptions() realtime.Options {
	return realtime.Options{
		AckTimeout:   c.AckTimeout,
		PingInterval: c.PingInterval,
		WriteTimeout: c.WriteTimeout,
	}
}

func endpoint(raw string, schemes ...string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return err
	}
	for _, scheme := range schemes {
		if u.Scheme == scheme && u.Host != "" {
			return nil
		}
	}
	return fmt.Errorf("expected a %v URL, got %q", schemes, raw)
}

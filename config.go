package selfstore

import (
	"io"
	"log/slog"
	"os"
	"time"
)

// EnvDebug enables debug logging to stderr when set and no logger was configured.
const EnvDebug = "SELFSTORE_DEBUG"

const (
	defaultAttempts   = 10
	defaultRetryDelay = 100 * time.Millisecond
)

// Option configures Init, Store and the updaters.
type Option func(*config)

type config struct {
	logger     *slog.Logger
	updater    ImageUpdater
	attempts   int
	retryDelay time.Duration
	sys        system
}

// WithLogger sets the logger used to report progress.
func WithLogger(logger *slog.Logger) Option {
	return func(c *config) {
		c.logger = logger
	}
}

// WithUpdater replaces the platform's default ImageUpdater.
func WithUpdater(u ImageUpdater) Option {
	return func(c *config) {
		c.updater = u
	}
}

// WithRetry configures how often the twin protocol attempts each
// overwrite and delete step, and how long it waits in between.
// A terminated process may hold on to its executable for a moment.
func WithRetry(attempts int, delay time.Duration) Option {
	return func(c *config) {
		if attempts < 1 {
			attempts = 1
		}
		c.attempts = attempts
		c.retryDelay = delay
	}
}

func newConfig(opts []Option) *config {
	c := &config{
		attempts:   defaultAttempts,
		retryDelay: defaultRetryDelay,
		sys:        osSystem{},
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.logger == nil {
		c.logger = defaultLogger()
	}
	if c.updater == nil {
		c.updater = defaultUpdater(c)
	}
	return c
}

func (c *config) twinUpdater() *TwinUpdater {
	return &TwinUpdater{
		Name:       DefaultTwinName,
		Attempts:   c.attempts,
		RetryDelay: c.retryDelay,
		Logger:     c.logger,
		sys:        c.sys,
	}
}

// defaultLogger discards everything unless EnvDebug is set.
func defaultLogger() *slog.Logger {
	if os.Getenv(EnvDebug) == "" {
		return slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelDebug,
	}))
}

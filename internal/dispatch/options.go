package dispatch

import (
	"time"

	"github.com/Iron-Ham/nightfall/internal/logging"
)

// Option configures a Dispatcher.
type Option func(*options)

type options struct {
	maxAttempts  int
	retryWait    time.Duration
	maxParallel  int
	allowPartial bool
	personas     func(string) string
	logger       *logging.Logger
}

func defaultOptions() options {
	return options{
		maxAttempts: 3,
		retryWait:   time.Second,
		logger:      logging.NopLogger(),
	}
}

func (o options) persona(actor string) string {
	if o.personas == nil {
		return ""
	}
	return o.personas(actor)
}

// WithMaxAttempts bounds how many times one turn is tried (default 3).
func WithMaxAttempts(n int) Option {
	return func(o *options) { o.maxAttempts = n }
}

// WithRetryWait sets the constant wait between attempts (default 1s).
func WithRetryWait(d time.Duration) Option {
	return func(o *options) { o.retryWait = d }
}

// WithMaxParallel bounds concurrent requests in a round (0 = unbounded).
func WithMaxParallel(n int) Option {
	return func(o *options) { o.maxParallel = n }
}

// WithAllowPartial keeps the successful slots of a round with failures.
func WithAllowPartial(allow bool) Option {
	return func(o *options) { o.allowPartial = allow }
}

// WithPersonas supplies per-actor persona text for prompts.
func WithPersonas(lookup func(actor string) string) Option {
	return func(o *options) { o.personas = lookup }
}

// WithLogger sets the logger.
func WithLogger(logger *logging.Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}

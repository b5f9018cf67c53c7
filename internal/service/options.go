package service

import (
	"io"
	"log/slog"
	"time"
)

// Option configures a service constructor.
type Option func(*options)

type options struct {
	now      func() time.Time
	logger   *slog.Logger
	observer UseCaseObserver
}

func buildOptions(opts []Option) options {
	o := options{
		now:      time.Now,
		logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
		observer: NoopUseCaseObserver{},
	}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// clock returns the current time in UTC without a monotonic reading, so the
// value round-trips through storage unchanged.
func (o options) clock() time.Time {
	return o.now().UTC()
}

// WithClock overrides time.Now.
func WithClock(now func() time.Time) Option {
	return func(o *options) {
		if now != nil {
			o.now = now
		}
	}
}

// WithLogger sets the logger used for hierarchy and integrity warnings.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

func WithObserver(obs UseCaseObserver) Option {
	return func(o *options) {
		if obs != nil {
			o.observer = obs
		}
	}
}

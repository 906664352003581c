package service

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/gauravnainwal518/note-app/internal/cache"
	"github.com/gauravnainwal518/note-app/internal/metrics"
	"github.com/gauravnainwal518/note-app/internal/model"
)

const userCacheTTL = 5 * time.Minute

// Option customizes a service.
type Option func(*options)

type options struct {
	now     func() time.Time
	metrics metrics.Recorder
	logger  *slog.Logger
	cache   *cache.Client
}

func newOptions(opts []Option) options {
	o := options{
		now:     time.Now,
		metrics: metrics.Nop{},
		logger:  slog.Default(),
		cache:   cache.Disabled(),
	}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// WithClock replaces the time source.
func WithClock(now func() time.Time) Option {
	return func(o *options) { o.now = now }
}

// WithMetrics reports service events to r.
func WithMetrics(r metrics.Recorder) Option {
	return func(o *options) { o.metrics = r }
}

// WithLogger sets the logger used for non-fatal failures.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) { o.logger = l }
}

// WithCache enables the read-through cache of user projections.
func WithCache(c *cache.Client) Option {
	return func(o *options) { o.cache = c }
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func userCacheKey(id uuid.UUID) string {
	return "user:" + id.String()
}

// forgetUser drops the cached projection after any write to the user record.
func (o options) forgetUser(ctx context.Context, id uuid.UUID) {
	_ = o.cache.Delete(ctx, userCacheKey(id))
}

func (o options) rememberUser(ctx context.Context, u model.PublicUser) {
	o.cache.SetJSON(ctx, userCacheKey(u.ID), u, userCacheTTL)
}

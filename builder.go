package pairlock

import (
	"errors"

	"github.com/redis/go-redis/v9"

	internalmetrics "github.com/pairlock/pairlock/internal/metrics"
	internalnotify "github.com/pairlock/pairlock/internal/notify"
	"github.com/pairlock/pairlock/internal/rate"
	"github.com/pairlock/pairlock/pair"
	"github.com/pairlock/pairlock/token"
)

// Builder assembles an [Engine]. A builder is single-use: Build succeeds at
// most once, and the engine it returns holds its own copy of the
// configuration.
type Builder struct {
	config Config
	redis  redis.UniversalClient

	registry   Registry
	notifySink NotifySink

	built bool
}

// New creates a builder preloaded with [DefaultConfig].
func New() *Builder {
	return &Builder{
		config: DefaultConfig(),
	}
}

// WithConfig replaces the builder's configuration.
func (b *Builder) WithConfig(cfg Config) *Builder {
	b.config = cloneConfig(cfg)
	return b
}

// WithRedis sets the Redis client backing the pair registry and the refresh
// throttle.
func (b *Builder) WithRedis(client redis.UniversalClient) *Builder {
	b.redis = client
	return b
}

// WithRegistry overrides the pair registry. When set, the Redis client is
// still required if the refresh throttle is enabled, and is otherwise
// optional.
func (b *Builder) WithRegistry(reg Registry) *Builder {
	b.registry = reg
	return b
}

// WithNotifySink sets the destination for anomaly notifications. Without a
// sink, enabled notification dispatch drops everything into a [NoOpSink].
func (b *Builder) WithNotifySink(sink NotifySink) *Builder {
	b.notifySink = sink
	return b
}

// WithMetricsEnabled toggles the in-process counters.
func (b *Builder) WithMetricsEnabled(enabled bool) *Builder {
	b.config.Metrics.Enabled = enabled
	return b
}

// Build validates the configuration, wires the registry, token manager,
// throttle, notifier and metrics, and returns the ready engine.
func (b *Builder) Build() (*Engine, error) {
	if b.built {
		return nil, errors.New("builder already used")
	}

	cfg := cloneConfig(b.config)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	registry := b.registry
	if registry == nil {
		if b.redis == nil {
			return nil, errors.New("redis client required")
		}
		registry = pair.NewStore(b.redis, cfg.Registry.RedisPrefix)
	}
	if cfg.Security.EnableRefreshThrottle && b.redis == nil {
		return nil, errors.New("refresh throttle requires redis client")
	}

	tm, err := token.NewManager(token.Config{
		AccessTTL:     cfg.Token.AccessTTL,
		SigningMethod: token.SigningMethod(cfg.Token.SigningMethod),
		PrivateKey:    cloneBytes(cfg.Token.PrivateKey),
		PublicKey:     cloneBytes(cfg.Token.PublicKey),
		Issuer:        cfg.Token.Issuer,
		Leeway:        cfg.Token.Leeway,
	})
	if err != nil {
		return nil, err
	}

	engine := &Engine{
		config:   cfg,
		registry: registry,
		tokens:   tm,
		metrics: internalmetrics.New(internalmetrics.Config{
			Enabled: cfg.Metrics.Enabled,
		}),
	}

	if b.redis != nil {
		engine.limiter = rate.New(b.redis, rate.Config{
			EnableRefreshThrottle:   cfg.Security.EnableRefreshThrottle,
			MaxRefreshAttempts:      cfg.Security.MaxRefreshAttempts,
			RefreshCooldownDuration: cfg.Security.RefreshCooldown,
		})
	}

	engine.notifier = internalnotify.NewDispatcher(internalnotify.Config{
		Enabled:    cfg.Notify.Enabled,
		BufferSize: cfg.Notify.BufferSize,
		DropIfFull: cfg.Notify.DropIfFull,
	}, b.notifySink)

	b.built = true

	return engine, nil
}

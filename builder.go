package authcore

import (
	"errors"

	"github.com/redis/go-redis/v9"

	internalaudit "github.com/gimanaid/authcore/internal/audit"
	"github.com/gimanaid/authcore/password"
	"github.com/gimanaid/authcore/policy"
	"github.com/gimanaid/authcore/session"
)

// Builder assembles an [Engine]. Obtain one from [New], chain With* calls,
// then call Build exactly once.
type Builder struct {
	config Config
	redis  redis.UniversalClient

	users    UserStore
	clock    Clock
	email    EmailSender
	sink     AuditSink
	policies []policy.Policy

	built bool
}

// New returns a [Builder] preloaded with the default configuration.
func New() *Builder {
	return &Builder{
		config: defaultConfig(),
	}
}

// WithConfig replaces the whole configuration.
func (b *Builder) WithConfig(cfg Config) *Builder {
	b.config = cloneConfig(cfg)
	return b
}

// WithRedis sets the Redis client backing the auth-token store.
func (b *Builder) WithRedis(client redis.UniversalClient) *Builder {
	b.redis = client
	return b
}

// WithUserStore sets the user persistence implementation.
func (b *Builder) WithUserStore(store UserStore) *Builder {
	b.users = store
	return b
}

// WithClock overrides the time source. Defaults to [SystemClock].
func (b *Builder) WithClock(clock Clock) *Builder {
	b.clock = clock
	return b
}

// WithEmailSender sets the notification sender. Defaults to
// [NoopEmailSender].
func (b *Builder) WithEmailSender(sender EmailSender) *Builder {
	b.email = sender
	return b
}

// WithAuditSink sets the sink receiving audit events.
func (b *Builder) WithAuditSink(sink AuditSink) *Builder {
	b.sink = sink
	return b
}

// WithPolicy registers an additional authorization policy alongside the
// builtins. Registration order is irrelevant; names must be unique.
func (b *Builder) WithPolicy(p policy.Policy) *Builder {
	b.policies = append(b.policies, p)
	return b
}

// WithMetricsEnabled toggles metric counters.
func (b *Builder) WithMetricsEnabled(enabled bool) *Builder {
	b.config.Metrics.Enabled = enabled
	return b
}

// WithLatencyHistograms toggles the token-resolution latency histogram.
func (b *Builder) WithLatencyHistograms(enabled bool) *Builder {
	b.config.Metrics.EnableLatencyHistograms = enabled
	return b
}

// Build validates the configuration, freezes the policy registry, and
// returns the assembled [Engine].
func (b *Builder) Build() (*Engine, error) {
	if b.built {
		return nil, errors.New("builder already used")
	}

	cfg := cloneConfig(b.config)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if b.redis == nil {
		return nil, errors.New("redis client required")
	}
	if b.users == nil {
		return nil, errors.New("user store required")
	}

	registry := policy.NewRegistry()
	for _, p := range b.policies {
		if err := registry.Register(p); err != nil {
			return nil, err
		}
	}
	registry.Freeze()

	hasher, err := password.NewHasher(password.Config{
		Memory:      cfg.Password.Memory,
		Time:        cfg.Password.Time,
		Parallelism: cfg.Password.Parallelism,
		SaltLength:  cfg.Password.SaltLength,
		KeyLength:   cfg.Password.KeyLength,
	})
	if err != nil {
		return nil, err
	}

	engine := &Engine{
		config:   cfg,
		users:    b.users,
		tokens:   session.NewStore(b.redis, cfg.Session.RedisPrefix),
		hasher:   hasher,
		policies: registry,
		clock:    b.clock,
		email:    b.email,
	}

	if engine.clock == nil {
		engine.clock = SystemClock{}
	}
	if engine.email == nil {
		engine.email = NoopEmailSender{}
	}

	if cfg.Audit.Enabled {
		engine.audit = internalaudit.NewDispatcher(b.sink, cfg.Audit.BufferSize)
	}
	engine.metrics = NewMetrics(cfg.Metrics)

	b.built = true

	return engine, nil
}

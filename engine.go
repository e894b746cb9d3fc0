package authcore

import (
	"time"

	internalaudit "github.com/gimanaid/authcore/internal/audit"
	"github.com/gimanaid/authcore/password"
	"github.com/gimanaid/authcore/policy"
	"github.com/gimanaid/authcore/session"
)

// Engine is the authentication core. It owns credential hashing, bearer
// token issuance and resolution, single-use challenge tokens, and policy
// evaluation. Construct it with [New]; an Engine is immutable after Build
// and safe for concurrent use.
type Engine struct {
	config   Config
	users    UserStore
	tokens   *session.Store
	hasher   *password.Hasher
	policies *policy.Registry
	clock    Clock
	email    EmailSender
	audit    *internalaudit.Dispatcher
	metrics  *Metrics
}

// Close flushes and stops the audit dispatcher. The engine must not be
// used after Close.
func (e *Engine) Close() {
	if e == nil {
		return
	}
	if e.audit != nil {
		e.audit.Close()
	}
}

// AuditDropped returns the number of audit events dropped because the
// dispatcher buffer was full.
func (e *Engine) AuditDropped() uint64 {
	if e == nil || e.audit == nil {
		return 0
	}
	return e.audit.Dropped()
}

// MetricsSnapshot returns a point-in-time copy of all engine metrics.
func (e *Engine) MetricsSnapshot() MetricsSnapshot {
	if e == nil || e.metrics == nil {
		return MetricsSnapshot{
			Counters:   map[MetricID]uint64{},
			Histograms: map[MetricID][]uint64{},
		}
	}
	return e.metrics.Snapshot()
}

// Metrics exposes the engine's counter set for exporters.
func (e *Engine) Metrics() *Metrics {
	if e == nil {
		return nil
	}
	return e.metrics
}

// Policies exposes the frozen policy registry.
func (e *Engine) Policies() *policy.Registry {
	if e == nil {
		return nil
	}
	return e.policies
}

func (e *Engine) metricInc(id MetricID) {
	if e == nil || e.metrics == nil {
		return
	}
	e.metrics.Inc(id)
}

// now reads the injected clock once. Every operation takes a single
// reading and threads it through all expiry arithmetic, so a logical
// request observes one instant.
func (e *Engine) now() time.Time {
	if e.clock == nil {
		return time.Now()
	}
	return e.clock.Now()
}

package authcore

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/gimanaid/authcore/randtoken"
	"github.com/gimanaid/authcore/session"
)

// IssueToken mints a new auth token for the user. A remembered token gets
// the long lifetime upfront; a plain token gets the session lifetime.
// Client IP and user agent are captured from the context when present.
func (e *Engine) IssueToken(ctx context.Context, userID uuid.UUID, remembered bool) (*AuthToken, error) {
	if e == nil || e.tokens == nil {
		return nil, ErrEngineNotReady
	}
	if userID == uuid.Nil {
		return nil, ErrInvalidInput
	}

	now := e.now()

	value, err := randtoken.Generate(e.config.Session.TokenLength)
	if err != nil {
		return nil, err
	}

	ttl := e.config.Session.SessionTTL
	if remembered {
		ttl = e.config.Session.RememberedTTL
	}

	token := &AuthToken{
		Token:      value,
		UserID:     userID.String(),
		UserAgent:  userAgentFromContext(ctx),
		IPAddress:  clientIPFromContext(ctx),
		Remembered: remembered,
		IssuedAt:   now.Unix(),
		ExpiresAt:  now.Add(ttl).Unix(),
	}

	if err := e.tokens.Save(ctx, token, now); err != nil {
		e.emitAudit(ctx, auditEventTokenIssued, false, token.UserID, ErrStoreUnavailable, nil)
		return nil, err
	}

	e.metricInc(MetricTokenIssued)
	e.emitAudit(ctx, auditEventTokenIssued, true, token.UserID, nil, func() map[string]string {
		return map[string]string{
			"remembered": boolString(remembered),
		}
	})

	return token, nil
}

// ResolveToken authenticates a bearer token string and returns the owning
// user together with the live token record. A missing record yields
// [ErrTokenNotFound]; a record past its expiry yields [ErrTokenExpired].
// Resolving a remembered token slides its expiry forward to the full
// remembered lifetime from the current instant.
func (e *Engine) ResolveToken(ctx context.Context, tokenStr string) (*User, *AuthToken, error) {
	if e == nil {
		return nil, nil, ErrEngineNotReady
	}
	return e.resolveToken(ctx, tokenStr, e.now())
}

// resolveToken is ResolveToken with the clock reading supplied by the
// caller, so a wrapping operation can thread one instant through
// resolution and its own expiry arithmetic.
func (e *Engine) resolveToken(ctx context.Context, tokenStr string, now time.Time) (*User, *AuthToken, error) {
	if e == nil || e.tokens == nil {
		return nil, nil, ErrEngineNotReady
	}
	if e.metrics.Enabled() {
		start := time.Now()
		defer func() {
			e.metrics.Observe(MetricResolveLatency, time.Since(start))
		}()
	}
	if tokenStr == "" {
		return nil, nil, ErrInvalidInput
	}

	token, err := e.tokens.Get(ctx, tokenStr, now)
	if err != nil {
		switch {
		case errors.Is(err, session.ErrNotFound):
			return nil, nil, ErrTokenNotFound
		case errors.Is(err, session.ErrExpired):
			e.metricInc(MetricTokenExpired)
			e.emitAudit(ctx, auditEventTokenExpired, false, "", ErrTokenExpired, nil)
			return nil, nil, ErrTokenExpired
		default:
			return nil, nil, err
		}
	}

	if token.Remembered {
		extended := extendExpiry(token.Expiry(), now, e.config.Session.RememberedTTL)
		if extended.After(token.Expiry()) {
			if err := e.tokens.SetExpiry(ctx, tokenStr, extended, now); err == nil {
				token.ExpiresAt = extended.Unix()
			}
		}
	}

	userID, err := uuid.Parse(token.UserID)
	if err != nil {
		return nil, nil, ErrTokenNotFound
	}

	user, err := e.users.GetUser(ctx, userID)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			// Owner deleted out from under a live token; treat the token
			// as dead and drop it.
			_ = e.tokens.Delete(ctx, tokenStr)
			return nil, nil, ErrTokenNotFound
		}
		return nil, nil, err
	}

	e.metricInc(MetricTokenResolved)

	return user, token, nil
}

// RevokeToken invalidates a single auth token. Revoking a token that does
// not exist is a no-op.
func (e *Engine) RevokeToken(ctx context.Context, tokenStr string) error {
	if e == nil || e.tokens == nil {
		return ErrEngineNotReady
	}
	if tokenStr == "" {
		return ErrInvalidInput
	}

	err := e.tokens.Delete(ctx, tokenStr)
	if err == nil {
		e.metricInc(MetricTokenRevoked)
	}
	e.emitAudit(ctx, auditEventTokenRevoked, err == nil, "", err, nil)
	return err
}

// RevokeAllTokens invalidates every live auth token belonging to the user.
func (e *Engine) RevokeAllTokens(ctx context.Context, userID uuid.UUID) error {
	if e == nil || e.tokens == nil {
		return ErrEngineNotReady
	}
	if userID == uuid.Nil {
		return ErrInvalidInput
	}

	err := e.tokens.DeleteAllForUser(ctx, userID.String())
	if err == nil {
		e.metricInc(MetricRevokeAll)
	}
	e.emitAudit(ctx, auditEventLogoutAll, err == nil, userID.String(), err, nil)
	return err
}

// ActiveTokens lists the user's unexpired auth tokens without touching
// their expiries.
func (e *Engine) ActiveTokens(ctx context.Context, userID uuid.UUID) ([]*AuthToken, error) {
	if e == nil || e.tokens == nil {
		return nil, ErrEngineNotReady
	}
	if userID == uuid.Nil {
		return nil, ErrInvalidInput
	}
	return e.tokens.ActiveTokens(ctx, userID.String(), e.now())
}

// extendExpiry computes the slid-forward expiry for a remembered token:
// the later of the current expiry and now+ttl. Pure and commutative, so
// two concurrent extensions converge on the later instant regardless of
// apply order.
func extendExpiry(current, now time.Time, ttl time.Duration) time.Time {
	candidate := now.Add(ttl)
	if candidate.After(current) {
		return candidate
	}
	return current
}

func boolString(b bool) string {
	if b {
		return "true"
	}
	return "false"
}

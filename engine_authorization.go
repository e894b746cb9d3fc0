package authcore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/gimanaid/authcore/policy"
)

// Authorize resolves the bearer token and evaluates the named policies
// against claims derived fresh from the resolved account. A token that
// cannot be resolved yields [ErrUnauthenticated]; a failing policy yields
// [ErrAuthorizationDenied] naming the policy. On success the resolved
// user is returned so handlers need not resolve twice.
func (e *Engine) Authorize(ctx context.Context, tokenStr string, policies ...string) (*User, error) {
	if e == nil || e.policies == nil {
		return nil, ErrEngineNotReady
	}

	now := e.now()

	user, _, err := e.resolveToken(ctx, tokenStr, now)
	if err != nil {
		switch {
		case errors.Is(err, ErrTokenNotFound),
			errors.Is(err, ErrTokenExpired),
			errors.Is(err, ErrInvalidInput):
			e.metricInc(MetricUnauthenticated)
			return nil, fmt.Errorf("%w: %v", ErrUnauthenticated, err)
		default:
			return nil, err
		}
	}

	claims := deriveClaims(user, now)

	if err := e.policies.Evaluate(claims, policies...); err != nil {
		e.metricInc(MetricAuthorizationDenied)
		e.emitAudit(ctx, auditEventAuthorizationDenied, false, user.ID.String(), ErrAuthorizationDenied, func() map[string]string {
			return map[string]string{
				"detail": err.Error(),
			}
		})
		return nil, fmt.Errorf("%w: %v", ErrAuthorizationDenied, err)
	}

	e.emitAudit(ctx, auditEventAuthorizationGranted, true, user.ID.String(), nil, nil)

	return user, nil
}

// AuthorizeUser evaluates the named policies for an already resolved
// user, skipping token resolution. Useful when a handler chain resolves
// once and checks several policy sets.
func (e *Engine) AuthorizeUser(user *User, policies ...string) error {
	if e == nil || e.policies == nil {
		return ErrEngineNotReady
	}
	if user == nil {
		return ErrUnauthenticated
	}

	claims := deriveClaims(user, e.now())

	if err := e.policies.Evaluate(claims, policies...); err != nil {
		e.metricInc(MetricAuthorizationDenied)
		return fmt.Errorf("%w: %v", ErrAuthorizationDenied, err)
	}
	return nil
}

// deriveClaims maps persisted account state to the typed claim set at a
// single instant. Claims are never cached: a ban or privilege change is
// visible on the very next request.
func deriveClaims(u *User, now time.Time) policy.Claims {
	return policy.Claims{
		UserID:        u.ID.String(),
		IsBanned:      u.BanLiftedDate.After(now),
		IsModerator:   u.HasPrivilege(PrivilegeModerator),
		IsAdmin:       u.HasPrivilege(PrivilegeAdmin),
		EmailVerified: u.Email.IsVerified,
	}
}

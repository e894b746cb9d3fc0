package authcore

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/gimanaid/authcore/randtoken"
)

// RequestEmailVerification issues a single-use verification token for the
// user's address and emails it. Re-requesting replaces any prior
// unconsumed token; requesting for an already verified address is a
// no-op returning an empty token. The email send is fire-and-forget and
// never rolls back the issued token.
func (e *Engine) RequestEmailVerification(ctx context.Context, userID uuid.UUID) (string, error) {
	if e == nil || e.users == nil {
		return "", ErrEngineNotReady
	}
	if userID == uuid.Nil {
		return "", ErrInvalidInput
	}

	now := e.now()

	user, err := e.users.GetUser(ctx, userID)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			e.emitAudit(ctx, auditEventEmailVerificationRequest, false, userID.String(), ErrUserNotFound, nil)
			return "", ErrUserNotFound
		}
		return "", err
	}

	if user.Email.IsVerified {
		return "", nil
	}

	value, err := randtoken.Generate(e.config.EmailVerification.TokenLength)
	if err != nil {
		return "", err
	}

	user.Email.VerificationToken = &EmailVerificationToken{
		Token:     value,
		CreatedAt: now,
	}

	if err := e.users.UpdateUser(ctx, user); err != nil {
		e.emitAudit(ctx, auditEventEmailVerificationRequest, false, userID.String(), err, nil)
		return "", err
	}

	e.metricInc(MetricEmailVerificationRequest)
	e.emitAudit(ctx, auditEventEmailVerificationRequest, true, userID.String(), nil, nil)

	e.sendVerificationEmail(ctx, user, value)

	return value, nil
}

// ConfirmEmailVerification consumes a verification token and marks the
// address verified. Confirming an already verified address succeeds as a
// no-op. A wrong token yields [ErrTokenMismatch] and leaves the stored
// token in place; a matching but aged-out token yields [ErrTokenExpired]
// and clears it.
func (e *Engine) ConfirmEmailVerification(ctx context.Context, userID uuid.UUID, token string) error {
	if e == nil || e.users == nil {
		return ErrEngineNotReady
	}
	if userID == uuid.Nil || token == "" {
		return ErrInvalidInput
	}

	now := e.now()

	user, err := e.users.GetUser(ctx, userID)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			e.metricInc(MetricEmailVerificationFailure)
			e.emitAudit(ctx, auditEventEmailVerificationConfirm, false, userID.String(), ErrUserNotFound, nil)
			return ErrUserNotFound
		}
		return err
	}

	if user.Email.IsVerified {
		return nil
	}

	stored := user.Email.VerificationToken
	if stored == nil {
		e.metricInc(MetricEmailVerificationFailure)
		e.emitAudit(ctx, auditEventEmailVerificationConfirm, false, userID.String(), ErrTokenMismatch, func() map[string]string {
			return map[string]string{
				"reason": "no_token_outstanding",
			}
		})
		return ErrTokenMismatch
	}

	if subtle.ConstantTimeCompare([]byte(stored.Token), []byte(token)) != 1 {
		e.metricInc(MetricEmailVerificationFailure)
		e.emitAudit(ctx, auditEventEmailVerificationConfirm, false, userID.String(), ErrTokenMismatch, nil)
		return ErrTokenMismatch
	}

	if now.Sub(stored.CreatedAt) > e.config.EmailVerification.VerificationTTL {
		user.Email.VerificationToken = nil
		_ = e.users.UpdateUser(ctx, user)
		e.metricInc(MetricEmailVerificationFailure)
		e.emitAudit(ctx, auditEventEmailVerificationConfirm, false, userID.String(), ErrTokenExpired, nil)
		return ErrTokenExpired
	}

	user.Email.IsVerified = true
	user.Email.VerificationToken = nil

	if err := e.users.UpdateUser(ctx, user); err != nil {
		e.metricInc(MetricEmailVerificationFailure)
		e.emitAudit(ctx, auditEventEmailVerificationConfirm, false, userID.String(), err, nil)
		return err
	}

	e.metricInc(MetricEmailVerificationSuccess)
	e.emitAudit(ctx, auditEventEmailVerificationConfirm, true, userID.String(), nil, nil)

	return nil
}

func (e *Engine) sendVerificationEmail(ctx context.Context, user *User, token string) {
	if e.email == nil {
		return
	}

	subject := "Verify your email address"
	body := fmt.Sprintf("Hello %s,\n\nUse the following token to verify your email address: %s", user.Username, token)

	if err := e.email.Send(user.Email.Address, subject, body); err != nil {
		e.metricInc(MetricEmailSendFailure)
		e.emitAudit(ctx, auditEventEmailSendFailure, false, user.ID.String(), errEmailSendFailed, func() map[string]string {
			return map[string]string{
				"kind": "email_verification",
			}
		})
	}
}

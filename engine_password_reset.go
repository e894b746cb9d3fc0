package authcore

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"

	"github.com/gimanaid/authcore/randtoken"
)

// RequestPasswordReset issues a single-use reset token for the named user
// and emails it to the account address. Re-requesting replaces any prior
// unconsumed token, so at most one instance is ever live. The token is
// returned for callers that deliver it through their own channel; the
// email send is fire-and-forget and never rolls back the issued token.
func (e *Engine) RequestPasswordReset(ctx context.Context, username string) (string, error) {
	if e == nil || e.users == nil {
		return "", ErrEngineNotReady
	}
	if username == "" {
		return "", ErrInvalidInput
	}

	now := e.now()

	user, err := e.users.GetUserByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			e.emitAudit(ctx, auditEventPasswordResetRequest, false, "", ErrUserNotFound, func() map[string]string {
				return map[string]string{
					"username": username,
				}
			})
			return "", ErrUserNotFound
		}
		return "", err
	}

	value, err := randtoken.Generate(e.config.PasswordReset.TokenLength)
	if err != nil {
		return "", err
	}

	user.Credential.ResetToken = &PasswordResetToken{
		Token:     value,
		CreatedAt: now,
	}

	if err := e.users.UpdateUser(ctx, user); err != nil {
		e.emitAudit(ctx, auditEventPasswordResetRequest, false, user.ID.String(), err, nil)
		return "", err
	}

	e.metricInc(MetricPasswordResetRequest)
	e.emitAudit(ctx, auditEventPasswordResetRequest, true, user.ID.String(), nil, nil)

	e.sendResetEmail(ctx, user, value)

	return value, nil
}

// ConfirmPasswordReset consumes a reset token: on match it rotates the
// credential under a fresh salt, clears the token, and revokes every live
// auth token. A wrong token yields [ErrTokenMismatch] and leaves the
// stored token in place; a matching but aged-out token yields
// [ErrTokenExpired] and clears it.
func (e *Engine) ConfirmPasswordReset(ctx context.Context, username, token, newPassword string) error {
	if e == nil || e.users == nil || e.hasher == nil {
		return ErrEngineNotReady
	}
	if username == "" || token == "" || newPassword == "" {
		return ErrInvalidInput
	}

	now := e.now()

	user, err := e.users.GetUserByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			e.metricInc(MetricPasswordResetConfirmFailure)
			e.emitAudit(ctx, auditEventPasswordResetConfirm, false, "", ErrUserNotFound, nil)
			return ErrUserNotFound
		}
		return err
	}

	stored := user.Credential.ResetToken
	if stored == nil {
		e.metricInc(MetricPasswordResetConfirmFailure)
		e.emitAudit(ctx, auditEventPasswordResetConfirm, false, user.ID.String(), ErrTokenMismatch, func() map[string]string {
			return map[string]string{
				"reason": "no_token_outstanding",
			}
		})
		return ErrTokenMismatch
	}

	if subtle.ConstantTimeCompare([]byte(stored.Token), []byte(token)) != 1 {
		e.metricInc(MetricPasswordResetConfirmFailure)
		e.emitAudit(ctx, auditEventPasswordResetConfirm, false, user.ID.String(), ErrTokenMismatch, nil)
		return ErrTokenMismatch
	}

	if now.Sub(stored.CreatedAt) > e.config.PasswordReset.ResetTTL {
		// Lazy cleanup: the matched token is dead, so drop it rather than
		// leave stale challenge state on the account.
		user.Credential.ResetToken = nil
		_ = e.users.UpdateUser(ctx, user)
		e.metricInc(MetricPasswordResetConfirmFailure)
		e.emitAudit(ctx, auditEventPasswordResetConfirm, false, user.ID.String(), ErrTokenExpired, nil)
		return ErrTokenExpired
	}

	hash, salt, err := e.hasher.Generate(newPassword)
	if err != nil {
		return err
	}
	user.Credential.HashedPassword = hash
	user.Credential.Salt = salt
	user.Credential.ResetToken = nil

	if err := e.users.UpdateUser(ctx, user); err != nil {
		e.metricInc(MetricPasswordResetConfirmFailure)
		e.emitAudit(ctx, auditEventPasswordResetConfirm, false, user.ID.String(), err, nil)
		return err
	}

	if err := e.RevokeAllTokens(ctx, user.ID); err != nil {
		return err
	}

	e.metricInc(MetricPasswordResetConfirmSuccess)
	e.emitAudit(ctx, auditEventPasswordResetConfirm, true, user.ID.String(), nil, nil)

	return nil
}

func (e *Engine) sendResetEmail(ctx context.Context, user *User, token string) {
	if e.email == nil {
		return
	}

	subject := "Password reset"
	body := fmt.Sprintf("Hello %s,\n\nUse the following token to reset your password: %s\n\nIf you did not request this, you can ignore this message.", user.Username, token)

	if err := e.email.Send(user.Email.Address, subject, body); err != nil {
		e.metricInc(MetricEmailSendFailure)
		e.emitAudit(ctx, auditEventEmailSendFailure, false, user.ID.String(), errEmailSendFailed, func() map[string]string {
			return map[string]string{
				"kind": "password_reset",
			}
		})
	}
}

package authcore

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

// NewCredential derives a fresh [PasswordCredential] from a plaintext
// password. Each call draws a new random salt, so two users with the same
// password store different hashes.
func (e *Engine) NewCredential(plaintext string) (PasswordCredential, error) {
	if e == nil || e.hasher == nil {
		return PasswordCredential{}, ErrEngineNotReady
	}

	hash, salt, err := e.hasher.Generate(plaintext)
	if err != nil {
		return PasswordCredential{}, err
	}

	return PasswordCredential{
		HashedPassword: hash,
		Salt:           salt,
	}, nil
}

// VerifyCredential recomputes the digest of plaintext under the stored
// salt and compares in constant time. A wrong password is (false, nil);
// errors are reserved for the credential being unusable.
func (e *Engine) VerifyCredential(cred PasswordCredential, plaintext string) (bool, error) {
	if e == nil || e.hasher == nil {
		return false, ErrEngineNotReady
	}
	return e.hasher.Verify(plaintext, cred.Salt, cred.HashedPassword)
}

// ChangePassword verifies the current password, re-derives the credential
// under a fresh salt, and revokes every live auth token so stolen sessions
// die with the old password.
func (e *Engine) ChangePassword(ctx context.Context, userID uuid.UUID, oldPassword, newPassword string) error {
	if e == nil || e.hasher == nil {
		return ErrEngineNotReady
	}
	if userID == uuid.Nil || oldPassword == "" || newPassword == "" {
		e.metricInc(MetricPasswordChangeFailure)
		e.emitAudit(ctx, auditEventPasswordChangeFailure, false, userID.String(), ErrInvalidInput, nil)
		return ErrInvalidInput
	}

	user, err := e.users.GetUser(ctx, userID)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			e.metricInc(MetricPasswordChangeFailure)
			e.emitAudit(ctx, auditEventPasswordChangeFailure, false, userID.String(), ErrUserNotFound, nil)
			return ErrUserNotFound
		}
		return err
	}

	ok, err := e.hasher.Verify(oldPassword, user.Credential.Salt, user.Credential.HashedPassword)
	if err != nil {
		return err
	}
	if !ok {
		e.metricInc(MetricPasswordChangeFailure)
		e.emitAudit(ctx, auditEventPasswordChangeFailure, false, userID.String(), ErrInvalidCredentials, func() map[string]string {
			return map[string]string{
				"reason": "password_mismatch",
			}
		})
		return ErrInvalidCredentials
	}

	hash, salt, err := e.hasher.Generate(newPassword)
	if err != nil {
		return err
	}
	user.Credential.HashedPassword = hash
	user.Credential.Salt = salt
	user.Credential.ResetToken = nil

	if err := e.users.UpdateUser(ctx, user); err != nil {
		e.metricInc(MetricPasswordChangeFailure)
		e.emitAudit(ctx, auditEventPasswordChangeFailure, false, userID.String(), err, nil)
		return err
	}

	if err := e.RevokeAllTokens(ctx, userID); err != nil {
		e.metricInc(MetricPasswordChangeFailure)
		e.emitAudit(ctx, auditEventPasswordChangeFailure, false, userID.String(), err, func() map[string]string {
			return map[string]string{
				"reason": "token_revocation_failed",
			}
		})
		return err
	}

	e.metricInc(MetricPasswordChangeSuccess)
	e.emitAudit(ctx, auditEventPasswordChangeSuccess, true, userID.String(), nil, nil)

	return nil
}

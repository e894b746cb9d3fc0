package authcore

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

// CreateAccount registers a new user with a salted password credential and
// kicks off email verification for the given address. Usernames are
// unique; a collision yields [ErrUsernameTaken].
func (e *Engine) CreateAccount(ctx context.Context, username, email, plaintext string) (*User, error) {
	if e == nil || e.users == nil || e.hasher == nil {
		return nil, ErrEngineNotReady
	}
	if username == "" || email == "" || plaintext == "" {
		e.emitAudit(ctx, auditEventAccountCreationFailure, false, "", ErrInvalidInput, nil)
		return nil, ErrInvalidInput
	}

	if _, err := e.users.GetUserByUsername(ctx, username); err == nil {
		e.emitAudit(ctx, auditEventAccountCreationFailure, false, "", ErrUsernameTaken, func() map[string]string {
			return map[string]string{
				"username": username,
			}
		})
		return nil, ErrUsernameTaken
	} else if !errors.Is(err, ErrUserNotFound) {
		return nil, err
	}

	cred, err := e.NewCredential(plaintext)
	if err != nil {
		return nil, err
	}

	user := &User{
		ID:       uuid.New(),
		Username: username,
		Email: UserEmail{
			Address: email,
		},
		Credential: cred,
	}

	if err := e.users.CreateUser(ctx, user); err != nil {
		e.emitAudit(ctx, auditEventAccountCreationFailure, false, "", err, nil)
		return nil, err
	}

	e.metricInc(MetricAccountCreated)
	e.emitAudit(ctx, auditEventAccountCreationSuccess, true, user.ID.String(), nil, func() map[string]string {
		return map[string]string{
			"username": username,
		}
	})

	if _, err := e.RequestEmailVerification(ctx, user.ID); err != nil {
		// Verification can be re-requested later; account creation stands.
		return user, nil
	}

	return e.users.GetUser(ctx, user.ID)
}

// Login verifies a username/password pair and issues an auth token. A
// wrong password or unknown username yields [ErrInvalidCredentials]; the
// two cases are indistinguishable to the caller.
func (e *Engine) Login(ctx context.Context, username, plaintext string, remembered bool) (*User, *AuthToken, error) {
	if e == nil || e.users == nil || e.hasher == nil {
		return nil, nil, ErrEngineNotReady
	}
	if username == "" || plaintext == "" {
		e.metricInc(MetricLoginFailure)
		e.emitAudit(ctx, auditEventLoginFailure, false, "", ErrInvalidInput, nil)
		return nil, nil, ErrInvalidInput
	}

	user, err := e.users.GetUserByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			e.metricInc(MetricLoginFailure)
			e.emitAudit(ctx, auditEventLoginFailure, false, "", ErrInvalidCredentials, func() map[string]string {
				return map[string]string{
					"username": username,
					"reason":   "user_not_found",
				}
			})
			return nil, nil, ErrInvalidCredentials
		}
		return nil, nil, err
	}

	ok, err := e.hasher.Verify(plaintext, user.Credential.Salt, user.Credential.HashedPassword)
	if err != nil {
		return nil, nil, err
	}
	if !ok {
		e.metricInc(MetricLoginFailure)
		e.emitAudit(ctx, auditEventLoginFailure, false, user.ID.String(), ErrInvalidCredentials, func() map[string]string {
			return map[string]string{
				"username": username,
				"reason":   "password_mismatch",
			}
		})
		return nil, nil, ErrInvalidCredentials
	}

	token, err := e.IssueToken(ctx, user.ID, remembered)
	if err != nil {
		e.metricInc(MetricLoginFailure)
		e.emitAudit(ctx, auditEventLoginFailure, false, user.ID.String(), err, nil)
		return nil, nil, err
	}

	e.metricInc(MetricLoginSuccess)
	e.emitAudit(ctx, auditEventLoginSuccess, true, user.ID.String(), nil, func() map[string]string {
		return map[string]string{
			"username": username,
		}
	})

	return user, token, nil
}

// Logout revokes the presented auth token. Revoking an already dead token
// succeeds.
func (e *Engine) Logout(ctx context.Context, tokenStr string) error {
	err := e.RevokeToken(ctx, tokenStr)
	e.emitAudit(ctx, auditEventLogout, err == nil, "", err, nil)
	return err
}

// BanUser bans the user for the given duration and revokes every live
// auth token. The lift date is recorded; the ban expires lazily when the
// lift date passes.
func (e *Engine) BanUser(ctx context.Context, userID uuid.UUID, duration time.Duration) error {
	if e == nil || e.users == nil {
		return ErrEngineNotReady
	}
	if userID == uuid.Nil || duration <= 0 {
		return ErrInvalidInput
	}

	now := e.now()

	user, err := e.users.GetUser(ctx, userID)
	if err != nil {
		return err
	}

	user.BanLiftedDate = now.Add(duration)
	if err := e.users.UpdateUser(ctx, user); err != nil {
		return err
	}

	if err := e.RevokeAllTokens(ctx, userID); err != nil {
		return err
	}

	e.metricInc(MetricUserBanned)
	e.emitAudit(ctx, auditEventAccountBanned, true, userID.String(), nil, func() map[string]string {
		return map[string]string{
			"lifted_at": user.BanLiftedDate.UTC().Format(time.RFC3339),
		}
	})

	return nil
}

// LiftBan ends an active ban immediately by moving the lift date to the
// current instant. Lifting a ban that is not active is a no-op.
func (e *Engine) LiftBan(ctx context.Context, userID uuid.UUID) error {
	if e == nil || e.users == nil {
		return ErrEngineNotReady
	}
	if userID == uuid.Nil {
		return ErrInvalidInput
	}

	now := e.now()

	user, err := e.users.GetUser(ctx, userID)
	if err != nil {
		return err
	}
	if !user.BanLiftedDate.After(now) {
		return nil
	}

	user.BanLiftedDate = now
	if err := e.users.UpdateUser(ctx, user); err != nil {
		return err
	}

	e.emitAudit(ctx, auditEventAccountBanLifted, true, userID.String(), nil, nil)

	return nil
}

// GrantPrivilege adds a privilege name to the user. Granting a privilege
// the user already holds is a no-op.
func (e *Engine) GrantPrivilege(ctx context.Context, userID uuid.UUID, privilege string) error {
	if e == nil || e.users == nil {
		return ErrEngineNotReady
	}
	if userID == uuid.Nil || privilege == "" {
		return ErrInvalidInput
	}

	user, err := e.users.GetUser(ctx, userID)
	if err != nil {
		return err
	}
	if user.HasPrivilege(privilege) {
		return nil
	}

	user.Privileges = append(user.Privileges, privilege)
	if err := e.users.UpdateUser(ctx, user); err != nil {
		return err
	}

	e.emitAudit(ctx, auditEventPrivilegeGranted, true, userID.String(), nil, func() map[string]string {
		return map[string]string{
			"privilege": privilege,
		}
	})

	return nil
}

// RevokePrivilege removes a privilege name from the user. Revoking a
// privilege the user does not hold is a no-op.
func (e *Engine) RevokePrivilege(ctx context.Context, userID uuid.UUID, privilege string) error {
	if e == nil || e.users == nil {
		return ErrEngineNotReady
	}
	if userID == uuid.Nil || privilege == "" {
		return ErrInvalidInput
	}

	user, err := e.users.GetUser(ctx, userID)
	if err != nil {
		return err
	}
	if !user.HasPrivilege(privilege) {
		return nil
	}

	kept := user.Privileges[:0]
	for _, p := range user.Privileges {
		if p != privilege {
			kept = append(kept, p)
		}
	}
	user.Privileges = kept

	if err := e.users.UpdateUser(ctx, user); err != nil {
		return err
	}

	e.emitAudit(ctx, auditEventPrivilegeRevoked, true, userID.String(), nil, func() map[string]string {
		return map[string]string{
			"privilege": privilege,
		}
	})

	return nil
}

// DeleteAccount revokes every live auth token, then removes the user.
// Embedded challenge tokens die with the row.
func (e *Engine) DeleteAccount(ctx context.Context, userID uuid.UUID) error {
	if e == nil || e.users == nil {
		return ErrEngineNotReady
	}
	if userID == uuid.Nil {
		return ErrInvalidInput
	}

	if err := e.RevokeAllTokens(ctx, userID); err != nil {
		return err
	}

	if err := e.users.DeleteUser(ctx, userID); err != nil {
		return err
	}

	e.metricInc(MetricAccountDeleted)
	e.emitAudit(ctx, auditEventAccountDeleted, true, userID.String(), nil, nil)

	return nil
}

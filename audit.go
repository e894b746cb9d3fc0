package authcore

import (
	"context"
	"errors"

	internalaudit "github.com/gimanaid/authcore/internal/audit"
)

// Local shorthand for the event kinds defined in internal/audit, so emit
// sites stay compact.
const (
	auditEventLoginSuccess             = internalaudit.KindLoginSuccess
	auditEventLoginFailure             = internalaudit.KindLoginFailure
	auditEventLogout                   = internalaudit.KindLogout
	auditEventLogoutAll                = internalaudit.KindLogoutAll
	auditEventTokenIssued              = internalaudit.KindTokenIssued
	auditEventTokenExpired             = internalaudit.KindTokenExpired
	auditEventTokenRevoked             = internalaudit.KindTokenRevoked
	auditEventPasswordChangeSuccess    = internalaudit.KindPasswordChangeSuccess
	auditEventPasswordChangeFailure    = internalaudit.KindPasswordChangeFailure
	auditEventPasswordResetRequest     = internalaudit.KindPasswordResetRequest
	auditEventPasswordResetConfirm     = internalaudit.KindPasswordResetConfirm
	auditEventEmailVerificationRequest = internalaudit.KindEmailVerificationRequest
	auditEventEmailVerificationConfirm = internalaudit.KindEmailVerificationConfirm
	auditEventEmailSendFailure         = internalaudit.KindEmailSendFailure
	auditEventAccountCreationSuccess   = internalaudit.KindAccountCreationSuccess
	auditEventAccountCreationFailure   = internalaudit.KindAccountCreationFailure
	auditEventAccountDeleted           = internalaudit.KindAccountDeleted
	auditEventAccountBanned            = internalaudit.KindAccountBanned
	auditEventAccountBanLifted         = internalaudit.KindAccountBanLifted
	auditEventPrivilegeGranted         = internalaudit.KindPrivilegeGranted
	auditEventPrivilegeRevoked         = internalaudit.KindPrivilegeRevoked
	auditEventAuthorizationDenied      = internalaudit.KindAuthorizationDenied
	auditEventAuthorizationGranted     = internalaudit.KindAuthorizationGranted
)

// AuditErrorCode is the stable machine-readable error label recorded on
// audit events.
type AuditErrorCode string

const (
	auditErrInvalidInput     AuditErrorCode = "invalid_input"
	auditErrInvalidToken     AuditErrorCode = "invalid_token"
	auditErrTokenExpired     AuditErrorCode = "token_expired"
	auditErrTokenMismatch    AuditErrorCode = "token_mismatch"
	auditErrInvalidPassword  AuditErrorCode = "invalid_credentials"
	auditErrUserNotFound     AuditErrorCode = "user_not_found"
	auditErrUsernameTaken    AuditErrorCode = "username_taken"
	auditErrUnauthenticated  AuditErrorCode = "unauthenticated"
	auditErrPolicyDenied     AuditErrorCode = "policy_denied"
	auditErrEmailSendFailed  AuditErrorCode = "email_send_failed"
	auditErrUnavailable      AuditErrorCode = "backend_unavailable"
	auditErrInternal         AuditErrorCode = "internal_error"
)

var errEmailSendFailed = errors.New("email send failed")

func (e *Engine) emitAudit(
	ctx context.Context,
	kind AuditKind,
	success bool,
	userID string,
	err error,
	metadataBuilder func() map[string]string,
) {
	if e == nil || e.audit == nil {
		return
	}

	var metadata map[string]string
	if metadataBuilder != nil {
		metadata = metadataBuilder()
	}

	event := AuditEvent{
		Kind:     kind,
		UserID:   userID,
		IP:       clientIPFromContext(ctx),
		Success:  success,
		Metadata: metadata,
	}
	if code := auditErrorCode(err); code != "" {
		event.Error = string(code)
	}

	e.audit.Emit(event)
}

func auditErrorCode(err error) AuditErrorCode {
	if err == nil {
		return ""
	}

	switch {
	case errors.Is(err, ErrInvalidInput):
		return auditErrInvalidInput
	case errors.Is(err, ErrTokenExpired):
		return auditErrTokenExpired
	case errors.Is(err, ErrTokenMismatch):
		return auditErrTokenMismatch
	case errors.Is(err, ErrTokenNotFound):
		return auditErrInvalidToken
	case errors.Is(err, ErrInvalidCredentials):
		return auditErrInvalidPassword
	case errors.Is(err, ErrUserNotFound):
		return auditErrUserNotFound
	case errors.Is(err, ErrUsernameTaken):
		return auditErrUsernameTaken
	case errors.Is(err, ErrUnauthenticated):
		return auditErrUnauthenticated
	case errors.Is(err, ErrAuthorizationDenied):
		return auditErrPolicyDenied
	case errors.Is(err, errEmailSendFailed):
		return auditErrEmailSendFailed
	case errors.Is(err, ErrStoreUnavailable):
		return auditErrUnavailable
	default:
		return auditErrInternal
	}
}

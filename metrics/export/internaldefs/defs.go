package internaldefs

import (
	authcore "github.com/gimanaid/authcore"
)

// CounterDef binds a core [authcore.MetricID] to its exported name.
type CounterDef struct {
	ID   authcore.MetricID
	Name string
	Help string
}

// HistogramDef binds a core histogram [authcore.MetricID] to its exported
// name.
type HistogramDef struct {
	ID   authcore.MetricID
	Name string
	Help string
}

// CounterDefs enumerates every exported counter in snapshot order.
var CounterDefs = []CounterDef{
	{ID: authcore.MetricLoginSuccess, Name: "authcore_login_success_total", Help: "Successful login attempts."},
	{ID: authcore.MetricLoginFailure, Name: "authcore_login_failure_total", Help: "Failed login attempts."},
	{ID: authcore.MetricTokenIssued, Name: "authcore_token_issued_total", Help: "Issued auth tokens."},
	{ID: authcore.MetricTokenResolved, Name: "authcore_token_resolved_total", Help: "Successfully resolved auth tokens."},
	{ID: authcore.MetricTokenExpired, Name: "authcore_token_expired_total", Help: "Auth token resolutions rejected as expired."},
	{ID: authcore.MetricTokenRevoked, Name: "authcore_token_revoked_total", Help: "Single-token revocations."},
	{ID: authcore.MetricRevokeAll, Name: "authcore_revoke_all_total", Help: "Revoke-all operations."},
	{ID: authcore.MetricPasswordChangeSuccess, Name: "authcore_password_change_success_total", Help: "Successful password changes."},
	{ID: authcore.MetricPasswordChangeFailure, Name: "authcore_password_change_failure_total", Help: "Failed password changes."},
	{ID: authcore.MetricPasswordResetRequest, Name: "authcore_password_reset_request_total", Help: "Password reset requests."},
	{ID: authcore.MetricPasswordResetConfirmSuccess, Name: "authcore_password_reset_confirm_success_total", Help: "Successful password reset confirmations."},
	{ID: authcore.MetricPasswordResetConfirmFailure, Name: "authcore_password_reset_confirm_failure_total", Help: "Failed password reset confirmations."},
	{ID: authcore.MetricEmailVerificationRequest, Name: "authcore_email_verification_request_total", Help: "Email verification requests."},
	{ID: authcore.MetricEmailVerificationSuccess, Name: "authcore_email_verification_success_total", Help: "Successful email verifications."},
	{ID: authcore.MetricEmailVerificationFailure, Name: "authcore_email_verification_failure_total", Help: "Failed email verifications."},
	{ID: authcore.MetricEmailSendFailure, Name: "authcore_email_send_failure_total", Help: "Failed notification email sends."},
	{ID: authcore.MetricUnauthenticated, Name: "authcore_unauthenticated_total", Help: "Authorization attempts with an unresolvable token."},
	{ID: authcore.MetricAuthorizationDenied, Name: "authcore_authorization_denied_total", Help: "Authorization attempts denied by policy."},
	{ID: authcore.MetricAccountCreated, Name: "authcore_account_created_total", Help: "Created accounts."},
	{ID: authcore.MetricAccountDeleted, Name: "authcore_account_deleted_total", Help: "Deleted accounts."},
	{ID: authcore.MetricUserBanned, Name: "authcore_user_banned_total", Help: "Ban operations."},
}

// HistogramDefs enumerates every exported histogram.
var HistogramDefs = []HistogramDef{
	{ID: authcore.MetricResolveLatency, Name: "authcore_resolve_latency_seconds", Help: "Token resolution latency histogram."},
}

// HistogramBounds are the upper bucket bounds in seconds, Prometheus
// "le" label form.
var HistogramBounds = []string{
	"0.005",
	"0.01",
	"0.025",
	"0.05",
	"0.1",
	"0.25",
	"0.5",
	"+Inf",
}

// HistogramBoundSuffix mirrors HistogramBounds with characters legal in
// OTel instrument names.
var HistogramBoundSuffix = []string{
	"0_005",
	"0_01",
	"0_025",
	"0_05",
	"0_1",
	"0_25",
	"0_5",
	"inf",
}

// NormalizeBuckets pads or truncates a raw bucket slice to the fixed
// bucket count.
func NormalizeBuckets(raw []uint64) [8]uint64 {
	var out [8]uint64
	for i := 0; i < len(out) && i < len(raw); i++ {
		out[i] = raw[i]
	}
	return out
}

// CumulativeBuckets converts per-bucket counts to the cumulative form
// both exporters emit.
func CumulativeBuckets(raw [8]uint64) [8]uint64 {
	var out [8]uint64
	var running uint64
	for i := 0; i < len(raw); i++ {
		running += raw[i]
		out[i] = running
	}
	return out
}

package audit

import (
	"encoding/json"
	"io"
	"sync"
	"time"
)

// Kind identifies which engine operation an audit event records. The set
// is closed: the engine emits only the constants below, so sinks can
// switch on kinds without a defensive default arm.
type Kind string

const (
	KindLoginSuccess             Kind = "login_success"
	KindLoginFailure             Kind = "login_failure"
	KindLogout                   Kind = "logout"
	KindLogoutAll                Kind = "logout_all"
	KindTokenIssued              Kind = "token_issued"
	KindTokenExpired             Kind = "token_expired"
	KindTokenRevoked             Kind = "token_revoked"
	KindPasswordChangeSuccess    Kind = "password_change_success"
	KindPasswordChangeFailure    Kind = "password_change_failure"
	KindPasswordResetRequest     Kind = "password_reset_request"
	KindPasswordResetConfirm     Kind = "password_reset_confirm"
	KindEmailVerificationRequest Kind = "email_verification_request"
	KindEmailVerificationConfirm Kind = "email_verification_confirm"
	KindEmailSendFailure         Kind = "email_send_failure"
	KindAccountCreationSuccess   Kind = "account_creation_success"
	KindAccountCreationFailure   Kind = "account_creation_failure"
	KindAccountDeleted           Kind = "account_deleted"
	KindAccountBanned            Kind = "account_banned"
	KindAccountBanLifted         Kind = "account_ban_lifted"
	KindPrivilegeGranted         Kind = "privilege_granted"
	KindPrivilegeRevoked         Kind = "privilege_revoked"
	KindAuthorizationDenied      Kind = "authorization_denied"
	KindAuthorizationGranted     Kind = "authorization_granted"
)

// Event is the audit record for one engine operation: logins, token
// issuance and revocation, credential changes, verification flows, and
// policy decisions. Metadata must never carry plaintext tokens or
// passwords.
type Event struct {
	Timestamp time.Time         `json:"timestamp"`
	Kind      Kind              `json:"kind"`
	UserID    string            `json:"user_id,omitempty"`
	IP        string            `json:"ip,omitempty"`
	Success   bool              `json:"success"`
	Error     string            `json:"error,omitempty"`
	Metadata  map[string]string `json:"metadata,omitempty"`
}

// Sink receives events from the dispatcher goroutine, one at a time and
// in emission order. A slow sink stalls delivery, never the engine
// operation that produced the event.
type Sink interface {
	Emit(event Event)
}

// NoOpSink drops audit events.
type NoOpSink struct{}

func (NoOpSink) Emit(Event) {}

// ChannelSink hands events to a consumer over a buffered channel.
// Delivery blocks when the buffer is full, so consumers must keep
// draining Events.
type ChannelSink struct {
	events chan Event
}

func NewChannelSink(buffer int) *ChannelSink {
	if buffer <= 0 {
		buffer = 1
	}
	return &ChannelSink{
		events: make(chan Event, buffer),
	}
}

func (s *ChannelSink) Emit(event Event) {
	s.events <- event
}

func (s *ChannelSink) Events() <-chan Event {
	return s.events
}

// JSONWriterSink writes one JSON object per line.
type JSONWriterSink struct {
	writer io.Writer
	mu     sync.Mutex
}

func NewJSONWriterSink(w io.Writer) *JSONWriterSink {
	return &JSONWriterSink{
		writer: w,
	}
}

func (s *JSONWriterSink) Emit(event Event) {
	if s == nil || s.writer == nil {
		return
	}
	data, err := json.Marshal(event)
	if err != nil {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	_, _ = s.writer.Write(data)
	_, _ = s.writer.Write([]byte("\n"))
}

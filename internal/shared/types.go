package shared

import "github.com/google/uuid"

// Task types and queue names for the asynq worker.
const (
	TypeSendOTPEmail       = "otp:send_email"
	TypeCleanupExpiredOTPs = "otp:cleanup_expired"

	QueueHigh    = "high"
	QueueDefault = "default"
	QueueLow     = "low"
)

// Actor identifies who is performing an operation. Built by the auth
// middleware from token claims and passed down into the services, so
// authorization decisions never depend on ambient state.
type Actor struct {
	ID    uuid.UUID `json:"id"`
	Email string    `json:"email"`
	Admin bool      `json:"admin"`
}

// SendOTPEmailPayload carries the data for an async OTP delivery task.
type SendOTPEmailPayload struct {
	Email     string `json:"email"`
	Code      string `json:"code"`
	ExpiresIn string `json:"expiresIn"`
}

// CleanupExpiredOTPsPayload is intentionally empty; the cutoff is
// computed at execution time.
type CleanupExpiredOTPsPayload struct{}

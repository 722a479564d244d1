package model

import (
	"time"

	"github.com/google/uuid"
)

// OtpRecord is one issued verification code. Several records may exist
// per email; only the most recent one counts during verification.
type OtpRecord struct {
	ID        uuid.UUID `json:"id" db:"id"`
	Email     string    `json:"email" db:"email"`
	Code      string    `json:"-" db:"otp_code"` // Never expose in JSON
	ExpiresAt time.Time `json:"expires_at" db:"expires_at"`
	Verified  bool      `json:"verified" db:"verified"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// Expired reports whether the code is past its validity window.
func (r *OtpRecord) Expired(now time.Time) bool {
	return now.After(r.ExpiresAt)
}

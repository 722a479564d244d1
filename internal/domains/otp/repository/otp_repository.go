package repository

import (
	"context"
	"time"

	"blogplatform-backend/internal/domains/otp/model"

	"github.com/google/uuid"
)

type OtpRepository interface {
	Create(ctx context.Context, record *model.OtpRecord) error

	// FindLatestByEmail returns the most recently issued record for the
	// email, verified or not. Returns otp.ErrOtpNotFound when none exists.
	FindLatestByEmail(ctx context.Context, email string) (*model.OtpRecord, error)

	// MarkVerified flips verified on an unverified record. Returns false
	// when the record was already verified, so concurrent verifications
	// cannot both succeed.
	MarkVerified(ctx context.Context, id uuid.UUID) (bool, error)

	// DeleteExpired removes every record whose expiry is before the
	// cutoff and returns the number deleted.
	DeleteExpired(ctx context.Context, cutoff time.Time) (int, error)
}

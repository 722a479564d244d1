package service

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"encoding/json"
	"fmt"
	"math/big"
	"time"

	"blogplatform-backend/internal/config"
	"blogplatform-backend/internal/domains/otp"
	"blogplatform-backend/internal/domains/otp/model"
	"blogplatform-backend/internal/domains/otp/repository"
	"blogplatform-backend/internal/shared"
	"blogplatform-backend/pkg/logger"

	"github.com/hibiken/asynq"
)

// TaskEnqueuer is the slice of asynq.Client the service needs.
type TaskEnqueuer interface {
	Enqueue(task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
}

type OtpService interface {
	// Issue generates a fresh code for the email and queues its delivery.
	// Issuing again before the previous code expires is allowed; only the
	// newest code is accepted afterwards.
	Issue(ctx context.Context, email string) (*model.OtpRecord, error)

	// Verify checks the submitted code against the most recent record.
	Verify(ctx context.Context, email, code string) error

	// CleanupExpired removes records whose validity window has passed.
	CleanupExpired(ctx context.Context, cutoff time.Time) (int, error)
}

type otpService struct {
	repo        repository.OtpRepository
	asynqClient TaskEnqueuer
	cfg         config.OTPConfig
}

func NewOtpService(repo repository.OtpRepository, asynqClient TaskEnqueuer, cfg config.OTPConfig) OtpService {
	return &otpService{
		repo:        repo,
		asynqClient: asynqClient,
		cfg:         cfg,
	}
}

// ========================================
// ISSUE
// ========================================

func (s *otpService) Issue(ctx context.Context, email string) (*model.OtpRecord, error) {
	// 1. GENERATE CODE
	code, err := generateNumericCode(s.cfg.CodeLength)
	if err != nil {
		return nil, fmt.Errorf("generate otp code: %w", err)
	}

	// 2. STORE RECORD
	record := &model.OtpRecord{
		Email:     email,
		Code:      code,
		ExpiresAt: time.Now().Add(s.cfg.ExpiryWindow),
	}
	if err := s.repo.Create(ctx, record); err != nil {
		return nil, err
	}

	// 3. QUEUE EMAIL DELIVERY
	// Delivery failure must not fail issuance; the user can always
	// request a resend.
	payload, _ := json.Marshal(shared.SendOTPEmailPayload{
		Email:     email,
		Code:      code,
		ExpiresIn: s.cfg.ExpiryWindow.String(),
	})
	task := asynq.NewTask(shared.TypeSendOTPEmail, payload)
	if _, err := s.asynqClient.Enqueue(task, asynq.Queue(shared.QueueHigh), asynq.MaxRetry(3)); err != nil {
		logger.Error("Failed to enqueue otp email", err)
	}

	return record, nil
}

// ========================================
// VERIFY
// ========================================

func (s *otpService) Verify(ctx context.Context, email, code string) error {
	// 1. LOAD MOST RECENT RECORD
	// Older codes for the same email are dead once a newer one exists.
	record, err := s.repo.FindLatestByEmail(ctx, email)
	if err != nil {
		return err
	}

	// 2. REPLAY CHECK
	if record.Verified {
		return otp.ErrOtpAlreadyVerified
	}

	// 3. EXPIRY CHECK
	if record.Expired(time.Now()) {
		return otp.ErrOtpExpired
	}

	// 4. CODE CHECK (constant-time)
	if subtle.ConstantTimeCompare([]byte(record.Code), []byte(code)) != 1 {
		return otp.ErrOtpMismatch
	}

	// 5. MARK VERIFIED
	// Conditional update: a concurrent verification that got here first
	// already consumed the record.
	ok, err := s.repo.MarkVerified(ctx, record.ID)
	if err != nil {
		return err
	}
	if !ok {
		return otp.ErrOtpAlreadyVerified
	}

	return nil
}

// ========================================
// CLEANUP
// ========================================

func (s *otpService) CleanupExpired(ctx context.Context, cutoff time.Time) (int, error) {
	deleted, err := s.repo.DeleteExpired(ctx, cutoff)
	if err != nil {
		return 0, err
	}

	logger.Info("Cleaned up expired otp records", map[string]interface{}{
		"deleted": deleted,
		"cutoff":  cutoff,
	})

	return deleted, nil
}

// generateNumericCode returns a random code of the given number of
// digits, zero-padded.
func generateNumericCode(length int) (string, error) {
	max := new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(length)), nil)

	n, err := rand.Int(rand.Reader, max)
	if err != nil {
		return "", err
	}

	return fmt.Sprintf("%0*d", length, n), nil
}

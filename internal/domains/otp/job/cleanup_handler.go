package job

import (
	"context"
	"encoding/json"
	"time"

	"blogplatform-backend/internal/domains/otp/service"
	"blogplatform-backend/internal/shared"
	"blogplatform-backend/pkg/logger"

	"github.com/hibiken/asynq"
	"github.com/rs/zerolog/log"
)

type CleanupExpiredOTPsHandler struct {
	otpService service.OtpService
}

func NewCleanupExpiredOTPsHandler(otpService service.OtpService) *CleanupExpiredOTPsHandler {
	return &CleanupExpiredOTPsHandler{
		otpService: otpService,
	}
}

func (h *CleanupExpiredOTPsHandler) ProcessTask(ctx context.Context, task *asynq.Task) error {
	var payload shared.CleanupExpiredOTPsPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		logger.Error("Unmarshal fail due to ", err)
		return err
	}

	cutoff := time.Now()

	log.Info().
		Time("cutoff", cutoff).
		Msg("Starting cleanup of expired otp records")

	deleted, err := h.otpService.CleanupExpired(ctx, cutoff)
	if err != nil {
		logger.Error("Cleanup expired otp records failed due to ", err)
		return err
	}

	log.Info().
		Int("records_deleted", deleted).
		Msg("Successfully cleaned up expired otp records")

	return nil
}

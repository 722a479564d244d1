package job

import (
	"context"
	"encoding/json"

	"blogplatform-backend/internal/infrastructure/email"
	"blogplatform-backend/internal/shared"
	"blogplatform-backend/pkg/logger"

	"github.com/hibiken/asynq"
	"github.com/rs/zerolog/log"
)

type SendOTPEmailHandler struct {
	emailService email.EmailService
}

func NewSendOTPEmailHandler(emailService email.EmailService) *SendOTPEmailHandler {
	return &SendOTPEmailHandler{
		emailService: emailService,
	}
}

func (h *SendOTPEmailHandler) ProcessTask(ctx context.Context, task *asynq.Task) error {
	var payload shared.SendOTPEmailPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		logger.Error("Unmarshal fail due to ", err)
		return err
	}

	err := h.emailService.SendOTPEmail(ctx, email.OTPEmailData{
		Email:     payload.Email,
		Code:      payload.Code,
		ExpiresIn: payload.ExpiresIn,
	})
	if err != nil {
		// Returning the error lets asynq retry per the task's MaxRetry
		return err
	}

	log.Info().
		Str("to", payload.Email).
		Msg("OTP email delivered")

	return nil
}

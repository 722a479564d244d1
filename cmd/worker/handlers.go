package main

import (
	"github.com/hibiken/asynq"

	otpjob "blogplatform-backend/internal/domains/otp/job"
	emailjob "blogplatform-backend/internal/infrastructure/email/job"
	"blogplatform-backend/internal/shared"
	"blogplatform-backend/pkg/container"
)

// HandlerRegistry holds all job handlers
type HandlerRegistry struct {
	// Email handlers
	otpEmail *emailjob.SendOTPEmailHandler

	// Maintenance handlers
	otpCleanup *otpjob.CleanupExpiredOTPsHandler
}

// initializeHandlers creates all job handlers with their dependencies
func initializeHandlers(c *container.Container) *HandlerRegistry {
	return &HandlerRegistry{
		otpEmail:   emailjob.NewSendOTPEmailHandler(c.EmailService),
		otpCleanup: otpjob.NewCleanupExpiredOTPsHandler(c.OtpService),
	}
}

// RegisterHandlers registers all handlers with the mux
func (h *HandlerRegistry) RegisterHandlers(mux *asynq.ServeMux) {
	// Email tasks
	mux.HandleFunc(shared.TypeSendOTPEmail, h.otpEmail.ProcessTask)

	// Maintenance tasks
	mux.HandleFunc(shared.TypeCleanupExpiredOTPs, h.otpCleanup.ProcessTask)
}

package email

import (
	"context"
	"fmt"
	"net/smtp"

	"blogplatform-backend/internal/config"
	"blogplatform-backend/pkg/logger"
)

type OTPEmailData struct {
	Email     string
	Code      string
	ExpiresIn string
}

type EmailService interface {
	SendOTPEmail(ctx context.Context, data OTPEmailData) error
}

type smtpEmailService struct {
	smtpAddr string
	smtpFrom string
	auth     smtp.Auth
}

// NewSMTPEmailService builds an SMTP-backed email sender. Auth is only
// used when a username is configured, so a local mailhog/mailpit works
// without credentials.
func NewSMTPEmailService(cfg config.SMTPConfig) EmailService {
	var auth smtp.Auth
	if cfg.Username != "" {
		auth = smtp.PlainAuth("", cfg.Username, cfg.Password, cfg.Host)
	}

	return &smtpEmailService{
		smtpAddr: cfg.Host + ":" + cfg.Port,
		smtpFrom: cfg.From,
		auth:     auth,
	}
}

func (s *smtpEmailService) SendOTPEmail(ctx context.Context, data OTPEmailData) error {
	subject := "Your verification code"
	body := fmt.Sprintf(`Hello,

	Your verification code is:
	%s

	The code expires in %s.

	If you did not request this code, you can ignore this email.`, data.Code, data.ExpiresIn)

	msg := []byte(fmt.Sprintf(
		"From: %s\r\nTo: %s\r\nSubject: %s\r\n\r\n%s",
		s.smtpFrom, data.Email, subject, body))

	err := smtp.SendMail(s.smtpAddr, s.auth, s.smtpFrom, []string{data.Email}, msg)
	if err != nil {
		logger.Info("Failed to send email", map[string]interface{}{
			"error":     err.Error(),
			"to":        data.Email,
			"smtp_addr": s.smtpAddr,
		})
		return fmt.Errorf("failed to send email: %w", err)
	}

	return nil
}

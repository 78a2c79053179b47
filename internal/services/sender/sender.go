// Package services содержит отправку писем пользователям: одноразовые коды
// подтверждения и ссылки для сброса пароля.
package services

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/magabrotheeeer/course-marketplace/internal/lib/sl"
	"github.com/magabrotheeeer/course-marketplace/internal/lib/smtp"
	"github.com/magabrotheeeer/course-marketplace/internal/models"
)

// SenderService отправляет письма через SMTP-транспорт.
type SenderService struct {
	transport smtp.TransportInterface
	log       *slog.Logger
}

// NewSenderService создает новый экземпляр SenderService.
func NewSenderService(log *slog.Logger, transport smtp.TransportInterface) *SenderService {
	return &SenderService{
		transport: transport,
		log:       log,
	}
}

// SendOtp отправляет одноразовый код подтверждения регистрации.
// Код действует models.OtpTTL с момента отправки.
func (s *SenderService) SendOtp(email, username, code string) error {
	subject := "Код подтверждения регистрации"
	bodyText := fmt.Sprintf(
		"Здравствуйте, %s!\n\nВаш код подтверждения: %s.\n\nКод действует %.0f минут. Если вы не запрашивали регистрацию, просто проигнорируйте это письмо.",
		username, code, models.OtpTTL.Minutes())

	return s.sendEmail([]string{email}, subject, bodyText)
}

// SendPasswordReset отправляет ссылку для сброса пароля.
func (s *SenderService) SendPasswordReset(email, link string) error {
	subject := "Сброс пароля"
	bodyText := fmt.Sprintf(
		"Здравствуйте!\n\nЧтобы задать новый пароль, перейдите по ссылке: %s.\n\nСсылка действует один час. Если вы не запрашивали сброс пароля, проигнорируйте это письмо.",
		link)

	return s.sendEmail([]string{email}, subject, bodyText)
}

func (s *SenderService) sendEmail(to []string, subject, bodyText string) error {
	msg := strings.Join([]string{
		"From: " + s.transport.GetSMTPUser(),
		"To: " + strings.Join(to, ";"),
		"Subject: " + subject,
		"MIME-Version: 1.0",
		"Content-Type: text/plain; charset=\"UTF-8\"",
		"",
		bodyText,
	}, "\r\n")

	client, err := s.transport.Connect()
	if err != nil {
		s.log.Error("Failed to connect to SMTP server", "error", sl.Err(err))
		return err
	}
	defer client.Close()

	if err := client.Mail(s.transport.GetSMTPUser()); err != nil {
		s.log.Error("Failed to set MAIL FROM", "from", s.transport.GetSMTPUser(), "error", sl.Err(err))
		return err
	}

	for _, addr := range to {
		if err := client.Rcpt(addr); err != nil {
			s.log.Error("Failed to set RCPT TO", "recipient", addr, "error", sl.Err(err))
			return err
		}
	}

	wc, err := client.Data()
	if err != nil {
		s.log.Error("Failed to get Data writer", "error", sl.Err(err))
		return err
	}

	_, err = wc.Write([]byte(msg))
	if err != nil {
		s.log.Error("Failed to write email body", "error", sl.Err(err))
		return err
	}

	if err = wc.Close(); err != nil {
		s.log.Error("Failed to close Data writer", "error", sl.Err(err))
		return err
	}

	if err = client.Quit(); err != nil {
		s.log.Error("Failed to quit SMTP client", "error", sl.Err(err))
		return err
	}

	s.log.Info("email sent successfully", "to", to)
	return nil
}

// Package sender отправляет почтовые уведомления по событиям из очередей:
// окончание пробного периода и движения по заявкам на оплату.
package sender

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/magabrotheeeer/fleet-control/internal/lib/sl"
	"github.com/magabrotheeeer/fleet-control/internal/lib/smtp"
	"github.com/magabrotheeeer/fleet-control/internal/services/paymentrequest"
	"github.com/magabrotheeeer/fleet-control/internal/services/scheduler"
)

// Transport описывает SMTP-транспорт отправителя.
type Transport interface {
	Connect() (smtp.Client, error)
	GetSMTPUser() string
}

// Service реализует отправку писем по событиям уведомлений.
type Service struct {
	transport  Transport
	adminEmail string
	log        *slog.Logger
}

// New создает новый экземпляр Service. adminEmail — адрес, на который
// уходят уведомления о новых заявках на оплату.
func New(transport Transport, adminEmail string, log *slog.Logger) *Service {
	return &Service{
		transport:  transport,
		adminEmail: adminEmail,
		log:        log,
	}
}

// SendTrialExpiring отправляет арендатору напоминание об окончании
// пробного периода сегодня.
func (s *Service) SendTrialExpiring(body []byte) error {
	var event scheduler.TrialEvent
	if err := json.Unmarshal(body, &event); err != nil {
		s.log.Error("failed to unmarshal message body", sl.Err(err))
		return fmt.Errorf("error unmarshalling message: %w", err)
	}

	subject := "Пробный период fleet-control заканчивается сегодня"
	bodyText := fmt.Sprintf(`Здравствуйте, %s!
			Ваш пробный период на сервисе fleet-control заканчивается сегодня.
			Чтобы продолжить работу, создайте заявку на оплату в личном кабинете.
		`, event.DisplayName)

	return s.sendEmail([]string{event.Email}, subject, bodyText)
}

// SendRequestCreated уведомляет администратора о новой заявке на оплату.
func (s *Service) SendRequestCreated(body []byte) error {
	var event paymentrequest.RequestEvent
	if err := json.Unmarshal(body, &event); err != nil {
		s.log.Error("failed to unmarshal message body", sl.Err(err))
		return fmt.Errorf("error unmarshalling message: %w", err)
	}

	subject := "Новая заявка на оплату"
	bodyText := fmt.Sprintf("Арендатор %s (%s) создал заявку на оплату на сумму %.2f.",
		event.RequesterName, event.RequesterEmail, event.Amount)

	return s.sendEmail([]string{s.adminEmail}, subject, bodyText)
}

// SendRequestResolved уведомляет арендатора о решении по его заявке.
func (s *Service) SendRequestResolved(body []byte) error {
	var event paymentrequest.RequestEvent
	if err := json.Unmarshal(body, &event); err != nil {
		s.log.Error("failed to unmarshal message body", sl.Err(err))
		return fmt.Errorf("error unmarshalling message: %w", err)
	}

	subject := "Решение по вашей заявке на оплату"
	bodyText := fmt.Sprintf("Здравствуйте, %s!\n\nВаша заявка на оплату на сумму %.2f получила статус: %s.",
		event.RequesterName, event.Amount, event.Status)

	return s.sendEmail([]string{event.RequesterEmail}, subject, bodyText)
}

func (s *Service) sendEmail(to []string, subject, bodyText string) error {
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
		s.log.Error("failed to connect to SMTP server", sl.Err(err))
		return err
	}
	defer func() {
		_ = client.Close()
	}()

	if err := client.Mail(s.transport.GetSMTPUser()); err != nil {
		s.log.Error("failed to set MAIL FROM", sl.Err(err))
		return err
	}

	for _, addr := range to {
		if err := client.Rcpt(addr); err != nil {
			s.log.Error("failed to set RCPT TO", slog.String("recipient", addr), sl.Err(err))
			return err
		}
	}

	wc, err := client.Data()
	if err != nil {
		s.log.Error("failed to get data writer", sl.Err(err))
		return err
	}

	if _, err = wc.Write([]byte(msg)); err != nil {
		s.log.Error("failed to write email body", sl.Err(err))
		return err
	}

	if err = wc.Close(); err != nil {
		s.log.Error("failed to close data writer", sl.Err(err))
		return err
	}

	if err = client.Quit(); err != nil {
		s.log.Error("failed to quit SMTP client", sl.Err(err))
		return err
	}

	s.log.Info("email sent successfully", "to", to)
	return nil
}

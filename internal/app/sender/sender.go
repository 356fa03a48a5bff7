// Package sender собирает приложение отправки почтовых уведомлений.
package sender

import (
	"context"
	"log/slog"

	"github.com/streadway/amqp"

	"github.com/magabrotheeeer/fleet-control/internal/config"
	"github.com/magabrotheeeer/fleet-control/internal/lib/smtp"
	"github.com/magabrotheeeer/fleet-control/internal/rabbitmq"
	senderservice "github.com/magabrotheeeer/fleet-control/internal/services/sender"
)

// App представляет приложение отправителя уведомлений.
type App struct {
	conn          *amqp.Connection
	ch            *amqp.Channel
	senderService *senderservice.Service
	logger        *slog.Logger
}

// New создает новый экземпляр приложения отправителя.
func New(cfg *config.Config, logger *slog.Logger) (*App, error) {
	conn, err := rabbitmq.Connect(cfg.RabbitMQURL, cfg.RabbitMQMaxRetries, cfg.RabbitMQRetryDelay)
	if err != nil {
		return nil, err
	}

	ch, err := rabbitmq.SetupChannel(conn)
	if err != nil {
		_ = conn.Close()
		return nil, err
	}

	newTransport := smtp.NewTransport(cfg, logger)
	senderService := senderservice.New(newTransport, cfg.AdminEmail, logger)

	return &App{
		conn:          conn,
		ch:            ch,
		senderService: senderService,
		logger:        logger,
	}, nil
}

// Run подписывается на очереди уведомлений и блокируется до отмены контекста.
func (a *App) Run(ctx context.Context) error {
	if err := rabbitmq.ConsumerMessage(a.ch, rabbitmq.QueueTrialExpiring, a.senderService.SendTrialExpiring); err != nil {
		a.logger.Error("failed to start trial expiring consumer", slog.Any("err", err))
		return err
	}

	if err := rabbitmq.ConsumerMessage(a.ch, rabbitmq.QueuePaymentRequested, a.senderService.SendRequestCreated); err != nil {
		a.logger.Error("failed to start payment requested consumer", slog.Any("err", err))
		return err
	}

	if err := rabbitmq.ConsumerMessage(a.ch, rabbitmq.QueuePaymentResolved, a.senderService.SendRequestResolved); err != nil {
		a.logger.Error("failed to start payment resolved consumer", slog.Any("err", err))
		return err
	}

	<-ctx.Done()
	a.logger.Info("sender service shutting down gracefully")

	if err := a.ch.Close(); err != nil {
		a.logger.Error("failed to close channel", slog.Any("err", err))
	}

	if err := a.conn.Close(); err != nil {
		a.logger.Error("failed to close connection", slog.Any("err", err))
	}

	return nil
}

// Package fleetcontrol собирает основное HTTP-приложение: хранилище,
// кеш, брокер сообщений, сервисы и маршруты.
package fleetcontrol

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi"
	"github.com/streadway/amqp"

	"github.com/magabrotheeeer/fleet-control/internal/cache"
	"github.com/magabrotheeeer/fleet-control/internal/config"
	"github.com/magabrotheeeer/fleet-control/internal/lib/jwt"
	"github.com/magabrotheeeer/fleet-control/internal/migrations"
	"github.com/magabrotheeeer/fleet-control/internal/rabbitmq"
	authservice "github.com/magabrotheeeer/fleet-control/internal/services/auth"
	fleetservice "github.com/magabrotheeeer/fleet-control/internal/services/fleet"
	paymentservice "github.com/magabrotheeeer/fleet-control/internal/services/paymentrequest"
	pinservice "github.com/magabrotheeeer/fleet-control/internal/services/pin"
	subscriptionservice "github.com/magabrotheeeer/fleet-control/internal/services/subscription"
	"github.com/magabrotheeeer/fleet-control/internal/storage/repository"
)

// App представляет основное приложение fleet-control.
type App struct {
	server *http.Server
	logger *slog.Logger
	db     *repository.Storage
	conn   *amqp.Connection
	ch     *amqp.Channel
}

// queuePublisher адаптирует канал RabbitMQ под интерфейс Publisher
// сервиса заявок на оплату.
type queuePublisher struct {
	ch *amqp.Channel
}

func (p queuePublisher) Publish(queue string, message any) error {
	return rabbitmq.PublishMessage(p.ch, queue, message)
}

// New создает новый экземпляр приложения.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	db, err := repository.New(cfg.StorageConnectionString)
	if err != nil {
		return nil, err
	}
	if err = migrations.Run(db.DB, cfg.MigrationsPath); err != nil {
		return nil, err
	}

	cacheRedis, err := cache.InitServer(ctx, cfg.RedisConnection)
	if err != nil {
		return nil, err
	}

	conn, err := rabbitmq.Connect(cfg.RabbitMQURL, cfg.RabbitMQMaxRetries, cfg.RabbitMQRetryDelay)
	if err != nil {
		return nil, err
	}
	ch, err := rabbitmq.SetupChannel(conn)
	if err != nil {
		_ = conn.Close()
		return nil, err
	}

	jwtMaker := jwt.NewJWTMaker(cfg.JWTSecretKey, cfg.TokenTTL)

	authService := authservice.New(db, jwtMaker)
	pinService := pinservice.New(db, logger)
	subscriptionService := subscriptionservice.New(db, logger)
	paymentService := paymentservice.New(db, subscriptionService, queuePublisher{ch: ch}, logger)
	fleetService := fleetservice.New(db, cacheRedis, logger)

	router := chi.NewRouter()
	RegisterRoutes(router, logger, db,
		authService, pinService, subscriptionService, paymentService, fleetService)

	srv := &http.Server{
		Addr:         cfg.AddressHTTP,
		Handler:      router,
		ReadTimeout:  cfg.TimeoutHTTP,
		WriteTimeout: cfg.TimeoutHTTP,
		IdleTimeout:  cfg.IdleTimeout,
	}

	return &App{
		server: srv,
		logger: logger,
		db:     db,
		conn:   conn,
		ch:     ch,
	}, nil
}

// Run запускает HTTP-сервер и останавливает его при отмене контекста.
func (a *App) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("HTTP server starting on", slog.String("address", a.server.Addr))
		err := a.server.ListenAndServe()
		if errors.Is(err, http.ErrServerClosed) {
			errCh <- nil
		} else {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		timeoutCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		a.logger.Info("shutting down HTTP server gracefully")
		err := a.server.Shutdown(timeoutCtx)
		if cerr := a.ch.Close(); cerr != nil {
			a.logger.Error("failed to close channel", slog.Any("err", cerr))
		}
		if cerr := a.conn.Close(); cerr != nil {
			a.logger.Error("failed to close connection", slog.Any("err", cerr))
		}
		if cerr := a.db.DB.Close(); cerr != nil {
			a.logger.Error("failed to close storage", slog.Any("err", cerr))
		}
		return err
	}
}

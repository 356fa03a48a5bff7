// Package scheduler периодически ищет пользователей с истекающим сегодня
// пробным периодом и публикует напоминания в очередь уведомлений.
package scheduler

import (
	"context"
	"log/slog"
	"time"

	"github.com/streadway/amqp"

	"github.com/magabrotheeeer/fleet-control/internal/lib/sl"
	"github.com/magabrotheeeer/fleet-control/internal/models"
	"github.com/magabrotheeeer/fleet-control/internal/rabbitmq"
)

// UserRepository определяет методы хранилища для планировщика.
type UserRepository interface {
	FindTrialExpiringToday(ctx context.Context) ([]*models.User, error)
}

// TrialEvent — напоминание об окончании пробного периода.
type TrialEvent struct {
	Email        string    `json:"email"`
	DisplayName  string    `json:"display_name"`
	TrialEndDate time.Time `json:"trial_end_date"`
}

// Service реализует периодический поиск истекающих пробных периодов.
type Service struct {
	repo UserRepository
	log  *slog.Logger
}

// New создает новый экземпляр Service.
func New(repo UserRepository, log *slog.Logger) *Service {
	return &Service{
		repo: repo,
		log:  log,
	}
}

// FindExpiringTrials запускает немедленный проход и далее повторяет его
// раз в сутки, пока не отменён контекст.
func (s *Service) FindExpiringTrials(ctx context.Context, channel *amqp.Channel) {
	s.runFindExpiringTrials(ctx, channel)

	ticker := time.NewTicker(24 * time.Hour)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.runFindExpiringTrials(ctx, channel)
		}
	}
}

func (s *Service) runFindExpiringTrials(ctx context.Context, channel *amqp.Channel) {
	s.log.Info("starting scan for trials expiring today")
	users, err := s.repo.FindTrialExpiringToday(ctx)
	if err != nil {
		s.log.Error("failed to find users", sl.Err(err))
		return
	}
	if len(users) == 0 {
		s.log.Info("no expiring trials found")
		return
	}
	s.log.Info("found expiring trials", "count", len(users))
	for _, u := range users {
		event := TrialEvent{
			Email:        u.Email,
			DisplayName:  u.DisplayName,
			TrialEndDate: u.TrialEndDate,
		}
		if err = rabbitmq.PublishMessage(channel, rabbitmq.QueueTrialExpiring, event); err != nil {
			s.log.Error("failed to publish message", sl.Err(err))
		}
	}
}

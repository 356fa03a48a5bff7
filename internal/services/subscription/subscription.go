// Package subscription реализует жизненный цикл подписки арендатора.
//
// Evaluate вызывается на каждом аутентифицированном запросе и идемпотентно
// вычисляет следующий статус по текущему времени; запись в хранилище
// происходит только при смене статуса. Activate вызывается исключительно
// при одобрении заявки на оплату и минует guard-логику.
package subscription

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/magabrotheeeer/fleet-control/internal/models"
)

// Длительности пробного периода и оплаченной подписки.
const (
	TrialLength        = 48 * time.Hour
	SubscriptionMonths = 4
)

var transitionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "fleetcontrol_subscription_transitions_total",
	Help: "Number of subscription status transitions by kind.",
}, []string{"from", "to"})

// UserRepository определяет методы хранилища, нужные жизненному циклу.
type UserRepository interface {
	// GetUser возвращает пользователя по UID.
	GetUser(ctx context.Context, userUID string) (*models.User, error)
	// UpdateSubscriptionStatus обновляет только статус подписки.
	UpdateSubscriptionStatus(ctx context.Context, userUID, status string) error
	// ResetTrial переводит пользователя на новый пробный период.
	ResetTrial(ctx context.Context, userUID string, start, end time.Time) error
	// ActivateSubscription устанавливает статус active и дату окончания.
	ActivateSubscription(ctx context.Context, userUID string, end time.Time) error
}

// Service реализует guard-функцию жизненного цикла и активацию подписки.
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

// Next вычисляет следующий статус пользователя на момент now без побочных
// эффектов. Возвращает статус и признак необходимости записи.
//
// Переходы:
//   - trial -> pending_payment, когда now позже trial_end_date;
//   - active -> trial, когда now позже subscription_end_date;
//   - expired (устаревшее значение в данных) сводится к новому trial;
//   - остальные комбинации — без изменений.
func Next(u *models.User, now time.Time) (string, bool) {
	switch u.SubscriptionStatus {
	case models.StatusTrial:
		if now.After(u.TrialEndDate) {
			return models.StatusPendingPayment, true
		}
	case models.StatusActive:
		if u.SubscriptionEnd != nil && now.After(*u.SubscriptionEnd) {
			return models.StatusTrial, true
		}
	case models.StatusExpired:
		return models.StatusTrial, true
	}
	return u.SubscriptionStatus, false
}

// Evaluate применяет guard-функцию к пользователю и сохраняет новый статус,
// только если он изменился. Повторный вызов при неизменном времени ничего
// не записывает. Возвращает актуальный статус.
func (s *Service) Evaluate(ctx context.Context, u *models.User, now time.Time) (string, error) {
	const op = "subscription.Evaluate"

	next, changed := Next(u, now)
	if !changed {
		return u.SubscriptionStatus, nil
	}

	switch next {
	case models.StatusPendingPayment:
		// Даты пробного периода остаются нетронутыми.
		if err := s.repo.UpdateSubscriptionStatus(ctx, u.UUID, next); err != nil {
			return u.SubscriptionStatus, fmt.Errorf("%s: %w", op, err)
		}
	case models.StatusTrial:
		if err := s.repo.ResetTrial(ctx, u.UUID, now, now.Add(TrialLength)); err != nil {
			return u.SubscriptionStatus, fmt.Errorf("%s: %w", op, err)
		}
	}

	transitionsTotal.WithLabelValues(u.SubscriptionStatus, next).Inc()
	s.log.Info("subscription status changed",
		slog.String("uid", u.UUID),
		slog.String("from", u.SubscriptionStatus),
		slog.String("to", next))
	return next, nil
}

// Activate переводит пользователя в статус active с датой окончания
// now + 4 месяца. Вызывается только из одобрения заявки на оплату
// и не проверяет текущий статус.
func (s *Service) Activate(ctx context.Context, userUID string, now time.Time) error {
	const op = "subscription.Activate"

	end := now.AddDate(0, SubscriptionMonths, 0)
	if err := s.repo.ActivateSubscription(ctx, userUID, end); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	transitionsTotal.WithLabelValues(models.StatusPendingPayment, models.StatusActive).Inc()
	s.log.Info("subscription activated",
		slog.String("uid", userUID),
		slog.Time("end", end))
	return nil
}

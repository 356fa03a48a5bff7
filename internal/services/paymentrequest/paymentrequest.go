// Package paymentrequest реализует жизненный цикл заявок на оплату подписки:
// создание арендатором и решение администратора (approve/reject/delete).
//
// Одобрение сначала активирует подписку арендатора и только после этого
// записывает статус заявки: заявка не может остаться approved, пока
// пользователь не active.
package paymentrequest

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/magabrotheeeer/fleet-control/internal/lib/sl"
	"github.com/magabrotheeeer/fleet-control/internal/models"
)

// Ошибки жизненного цикла заявок.
var (
	// ErrNotPending — заявка уже рассмотрена, повторное решение невозможно.
	ErrNotPending = errors.New("payment request is not pending")
	// ErrActivationFailed — активация подписки не удалась, статус заявки не записан.
	ErrActivationFailed = errors.New("subscription activation failed")
)

// Repository определяет методы хранилища для заявок на оплату.
type Repository interface {
	CreatePaymentRequest(ctx context.Context, req models.PaymentRequest) (string, error)
	GetPaymentRequest(ctx context.Context, id string) (*models.PaymentRequest, error)
	LatestPaymentRequest(ctx context.Context, requesterUID string) (*models.PaymentRequest, error)
	ListPaymentRequests(ctx context.Context, limit, offset int) ([]*models.PaymentRequest, error)
	ResolvePaymentRequest(ctx context.Context, id, status, processorEmail string) (int, error)
	DeletePaymentRequest(ctx context.Context, id string) (int, error)
}

// Activator активирует подписку арендатора при одобрении заявки.
type Activator interface {
	Activate(ctx context.Context, userUID string, now time.Time) error
}

// Publisher публикует события заявок для сервиса уведомлений.
// Публикация best-effort: сбой не отменяет операцию.
type Publisher interface {
	Publish(queue string, message any) error
}

// RequestEvent — событие заявки, уходящее в очередь уведомлений.
type RequestEvent struct {
	RequestID      string  `json:"request_id"`
	RequesterEmail string  `json:"requester_email"`
	RequesterName  string  `json:"requester_name"`
	Amount         float64 `json:"amount"`
	Status         string  `json:"status"`
}

// Имена очередей событий заявок.
const (
	QueueRequested = "payments.requested"
	QueueResolved  = "payments.resolved"
)

// Service реализует бизнес-логику заявок на оплату.
type Service struct {
	repo      Repository
	activator Activator
	publisher Publisher
	log       *slog.Logger
}

// New создает новый экземпляр Service.
func New(repo Repository, activator Activator, publisher Publisher, log *slog.Logger) *Service {
	return &Service{
		repo:      repo,
		activator: activator,
		publisher: publisher,
		log:       log,
	}
}

// Create создаёт заявку арендатора со статусом pending и публикует событие
// для уведомления администраторов. Возвращает идентификатор заявки.
func (s *Service) Create(ctx context.Context, requester *models.User, amount float64) (string, error) {
	const op = "paymentrequest.Create"

	req := models.PaymentRequest{
		RequesterUID:   requester.UUID,
		RequesterEmail: requester.Email,
		RequesterName:  requester.DisplayName,
		Amount:         amount,
	}
	id, err := s.repo.CreatePaymentRequest(ctx, req)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	s.log.Info("payment request created", slog.String("id", id),
		slog.String("requester", requester.Email))

	if err := s.publisher.Publish(QueueRequested, RequestEvent{
		RequestID:      id,
		RequesterEmail: requester.Email,
		RequesterName:  requester.DisplayName,
		Amount:         amount,
		Status:         models.RequestPending,
	}); err != nil {
		s.log.Warn("failed to publish request event", sl.Err(err))
	}
	return id, nil
}

// Latest возвращает самую свежую заявку арендатора или nil, если их не было.
func (s *Service) Latest(ctx context.Context, requesterUID string) (*models.PaymentRequest, error) {
	return s.repo.LatestPaymentRequest(ctx, requesterUID)
}

// List возвращает заявки всех арендаторов с пагинацией. Только для администратора.
func (s *Service) List(ctx context.Context, limit, offset int) ([]*models.PaymentRequest, error) {
	return s.repo.ListPaymentRequests(ctx, limit, offset)
}

// Approve одобряет заявку: сначала активирует подписку арендатора,
// затем записывает статус approved с временем обработки и почтой
// администратора. При ошибке активации статус заявки не изменяется.
func (s *Service) Approve(ctx context.Context, id, processorEmail string, now time.Time) error {
	const op = "paymentrequest.Approve"

	req, err := s.repo.GetPaymentRequest(ctx, id)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if req.Status != models.RequestPending {
		return ErrNotPending
	}

	// Порядок обязателен: активация до записи статуса. Иначе заявка может
	// остаться approved при неактивном пользователе.
	if err := s.activator.Activate(ctx, req.RequesterUID, now); err != nil {
		s.log.Error("activation failed, request left pending", sl.Err(err),
			slog.String("id", id))
		return fmt.Errorf("%s: %w: %w", op, ErrActivationFailed, err)
	}

	count, err := s.repo.ResolvePaymentRequest(ctx, id, models.RequestApproved, processorEmail)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if count == 0 {
		return ErrNotPending
	}
	s.log.Info("payment request approved", slog.String("id", id),
		slog.String("processor", processorEmail))

	s.publishResolved(req, models.RequestApproved)
	return nil
}

// Reject отклоняет заявку без влияния на подписку.
func (s *Service) Reject(ctx context.Context, id, processorEmail string) error {
	const op = "paymentrequest.Reject"

	req, err := s.repo.GetPaymentRequest(ctx, id)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if req.Status != models.RequestPending {
		return ErrNotPending
	}

	count, err := s.repo.ResolvePaymentRequest(ctx, id, models.RequestRejected, processorEmail)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if count == 0 {
		return ErrNotPending
	}
	s.log.Info("payment request rejected", slog.String("id", id),
		slog.String("processor", processorEmail))

	s.publishResolved(req, models.RequestRejected)
	return nil
}

// Delete удаляет заявку целиком независимо от статуса,
// возвращает число удалённых записей.
func (s *Service) Delete(ctx context.Context, id string) (int, error) {
	return s.repo.DeletePaymentRequest(ctx, id)
}

func (s *Service) publishResolved(req *models.PaymentRequest, status string) {
	if err := s.publisher.Publish(QueueResolved, RequestEvent{
		RequestID:      req.ID,
		RequesterEmail: req.RequesterEmail,
		RequesterName:  req.RequesterName,
		Amount:         req.Amount,
		Status:         status,
	}); err != nil {
		s.log.Warn("failed to publish resolved event", sl.Err(err))
	}
}

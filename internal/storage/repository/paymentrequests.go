package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/magabrotheeeer/fleet-control/internal/models"
)

const paymentRequestColumns = `id, requester_uid, requester_email, requester_name,
			      amount, status, created_at, processed_at, processor_email`

func scanPaymentRequest(row interface{ Scan(dest ...any) error }) (*models.PaymentRequest, error) {
	r := &models.PaymentRequest{}
	var processedAt sql.NullTime
	if err := row.Scan(&r.ID, &r.RequesterUID, &r.RequesterEmail, &r.RequesterName,
		&r.Amount, &r.Status, &r.CreatedAt, &processedAt, &r.ProcessorEmail); err != nil {
		return nil, err
	}
	if processedAt.Valid {
		r.ProcessedAt = &processedAt.Time
	}
	return r, nil
}

// CreatePaymentRequest сохраняет новую заявку со статусом pending
// и серверным временем создания, возвращает её идентификатор.
func (s *Storage) CreatePaymentRequest(ctx context.Context, req models.PaymentRequest) (string, error) {
	const op = "storage.CreatePaymentRequest"
	select {
	case <-ctx.Done():
		return "", fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	var newID string
	query := `INSERT INTO payment_requests (requester_uid, requester_email, requester_name, amount)
			  VALUES ($1, $2, $3, $4)
			  RETURNING id;`
	if err := s.DB.QueryRowContext(ctx, query, req.RequesterUID, req.RequesterEmail,
		req.RequesterName, req.Amount).Scan(&newID); err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	return newID, nil
}

// GetPaymentRequest возвращает заявку по идентификатору.
func (s *Storage) GetPaymentRequest(ctx context.Context, id string) (*models.PaymentRequest, error) {
	const op = "storage.GetPaymentRequest"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT ` + paymentRequestColumns + ` FROM payment_requests WHERE id = $1`
	r, err := scanPaymentRequest(s.DB.QueryRowContext(ctx, query, id))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return r, nil
}

// LatestPaymentRequest возвращает самую свежую заявку арендатора
// или nil, если заявок ещё не было. Арендатору показывается только она.
func (s *Storage) LatestPaymentRequest(ctx context.Context, requesterUID string) (*models.PaymentRequest, error) {
	const op = "storage.LatestPaymentRequest"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT ` + paymentRequestColumns + `
			  FROM payment_requests
			  WHERE requester_uid = $1
			  ORDER BY created_at DESC
			  LIMIT 1`
	r, err := scanPaymentRequest(s.DB.QueryRowContext(ctx, query, requesterUID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return r, nil
}

// ListPaymentRequests возвращает заявки всех арендаторов с пагинацией,
// новые первыми. Используется администратором.
func (s *Storage) ListPaymentRequests(ctx context.Context, limit, offset int) ([]*models.PaymentRequest, error) {
	const op = "storage.ListPaymentRequests"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT ` + paymentRequestColumns + `
			  FROM payment_requests
			  ORDER BY created_at DESC
			  LIMIT $1 OFFSET $2`
	rows, err := s.DB.QueryContext(ctx, query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()
	var result []*models.PaymentRequest
	for rows.Next() {
		r, err := scanPaymentRequest(rows)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, r)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

// ResolvePaymentRequest записывает решение администратора по заявке:
// новый статус, серверное время обработки и почту обработавшего.
// Обновляется только заявка в статусе pending.
func (s *Storage) ResolvePaymentRequest(ctx context.Context, id, status, processorEmail string) (int, error) {
	const op = "storage.ResolvePaymentRequest"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `UPDATE payment_requests
			  SET status = $1,
			      processed_at = now(),
			      processor_email = $2
			  WHERE id = $3 AND status = $4`
	res, err := s.DB.ExecContext(ctx, query, status, processorEmail, id, models.RequestPending)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	count, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return int(count), nil
}

// DeletePaymentRequest удаляет заявку целиком, статус значения не имеет.
func (s *Storage) DeletePaymentRequest(ctx context.Context, id string) (int, error) {
	const op = "storage.DeletePaymentRequest"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `DELETE FROM payment_requests WHERE id = $1`
	res, err := s.DB.ExecContext(ctx, query, id)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	count, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return int(count), nil
}

package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/magabrotheeeer/fleet-control/internal/models"
)

// GetPinRecord возвращает PIN-запись пользователя или nil, если записи нет.
func (s *Storage) GetPinRecord(ctx context.Context, ownerUID string) (*models.PinRecord, error) {
	const op = "storage.GetPinRecord"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT owner_uid, owner_email, digest, created_at, updated_at
			  FROM pin_records
			  WHERE owner_uid = $1`
	rec := &models.PinRecord{}
	err := s.DB.QueryRowContext(ctx, query, ownerUID).Scan(&rec.OwnerUID,
		&rec.OwnerEmail, &rec.Digest, &rec.CreatedAt, &rec.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return rec, nil
}

// UpsertPinRecord создаёт PIN-запись пользователя или перезаписывает существующую.
func (s *Storage) UpsertPinRecord(ctx context.Context, rec models.PinRecord) error {
	const op = "storage.UpsertPinRecord"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `INSERT INTO pin_records (owner_uid, owner_email, digest)
			  VALUES ($1, $2, $3)
			  ON CONFLICT (owner_uid) DO UPDATE
			  SET digest = EXCLUDED.digest,
			      owner_email = EXCLUDED.owner_email,
			      updated_at = now()`
	if _, err := s.DB.ExecContext(ctx, query, rec.OwnerUID, rec.OwnerEmail, rec.Digest); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

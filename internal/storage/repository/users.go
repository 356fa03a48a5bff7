package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/magabrotheeeer/fleet-control/internal/models"
)

const userColumns = `uid, email, display_name, photo_url, password_hash, role,
			      subscription_status, trial_start_date, trial_end_date,
			      subscription_end_date, mpin_hash, company_name, company_city,
			      company_mobile`

func scanUser(row interface{ Scan(dest ...any) error }) (*models.User, error) {
	u := &models.User{}
	var subscriptionEnd sql.NullTime
	if err := row.Scan(&u.UUID, &u.Email, &u.DisplayName, &u.PhotoURL,
		&u.PasswordHash, &u.Role, &u.SubscriptionStatus, &u.TrialStartDate,
		&u.TrialEndDate, &subscriptionEnd, &u.LegacyPinHash, &u.CompanyName,
		&u.CompanyCity, &u.CompanyMobile); err != nil {
		return nil, err
	}
	if subscriptionEnd.Valid {
		u.SubscriptionEnd = &subscriptionEnd.Time
	}
	return u, nil
}

// RegisterUser сохраняет нового пользователя в базу данных и возвращает его UID.
func (s *Storage) RegisterUser(ctx context.Context, user models.User) (string, error) {
	const op = "storage.RegisterUser"
	select {
	case <-ctx.Done():
		return "", fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	var newID string
	query := `INSERT INTO users (email, display_name, password_hash, role,
			      subscription_status, trial_start_date, trial_end_date)
			  VALUES ($1, $2, $3, $4, $5, $6, $7)
			  RETURNING uid;`
	if err := s.DB.QueryRowContext(ctx, query,
		user.Email, user.DisplayName, user.PasswordHash, user.Role,
		user.SubscriptionStatus, user.TrialStartDate, user.TrialEndDate).Scan(&newID); err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	return newID, nil
}

// GetUserByEmail возвращает пользователя по его email.
func (s *Storage) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	const op = "storage.GetUserByEmail"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT ` + userColumns + ` FROM users WHERE email = $1`
	u, err := scanUser(s.DB.QueryRowContext(ctx, query, email))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return u, nil
}

// GetUser возвращает пользователя по его UID.
func (s *Storage) GetUser(ctx context.Context, userUID string) (*models.User, error) {
	const op = "storage.GetUser"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT ` + userColumns + ` FROM users WHERE uid = $1`
	u, err := scanUser(s.DB.QueryRowContext(ctx, query, userUID))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return u, nil
}

// UpdateSubscriptionStatus обновляет только статус подписки пользователя.
func (s *Storage) UpdateSubscriptionStatus(ctx context.Context, userUID, status string) error {
	const op = "storage.UpdateSubscriptionStatus"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `UPDATE users
			  SET subscription_status = $1
			  WHERE uid = $2`
	if _, err := s.DB.ExecContext(ctx, query, status, userUID); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// ResetTrial переводит пользователя на новый пробный период:
// статус trial и свежие даты начала и окончания.
func (s *Storage) ResetTrial(ctx context.Context, userUID string, start, end time.Time) error {
	const op = "storage.ResetTrial"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `UPDATE users
			  SET subscription_status = $1,
			      trial_start_date = $2,
			      trial_end_date = $3
			  WHERE uid = $4`
	if _, err := s.DB.ExecContext(ctx, query, models.StatusTrial, start, end, userUID); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// ActivateSubscription переводит пользователя в статус active
// с заданной датой окончания оплаченной подписки.
func (s *Storage) ActivateSubscription(ctx context.Context, userUID string, end time.Time) error {
	const op = "storage.ActivateSubscription"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `UPDATE users
			  SET subscription_status = $1,
			      subscription_end_date = $2
			  WHERE uid = $3`
	if _, err := s.DB.ExecContext(ctx, query, models.StatusActive, end, userUID); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// UpdateCompanyProfile обновляет поля профиля компании арендатора.
func (s *Storage) UpdateCompanyProfile(ctx context.Context, userUID, name, city, mobile string) error {
	const op = "storage.UpdateCompanyProfile"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `UPDATE users
			  SET company_name = $1,
			      company_city = $2,
			      company_mobile = $3
			  WHERE uid = $4`
	if _, err := s.DB.ExecContext(ctx, query, name, city, mobile, userUID); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// ClearLegacyPinHash очищает устаревшее поле mpin_hash на записи пользователя.
func (s *Storage) ClearLegacyPinHash(ctx context.Context, userUID string) error {
	const op = "storage.ClearLegacyPinHash"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `UPDATE users SET mpin_hash = '' WHERE uid = $1`
	if _, err := s.DB.ExecContext(ctx, query, userUID); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// FindTrialExpiringToday находит пользователей с истекающим сегодня пробным периодом.
func (s *Storage) FindTrialExpiringToday(ctx context.Context) ([]*models.User, error) {
	const op = "storage.FindTrialExpiringToday"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT ` + userColumns + `
			  FROM users
			  WHERE subscription_status = $1
			    AND trial_end_date::DATE = CURRENT_DATE`
	rows, err := s.DB.QueryContext(ctx, query, models.StatusTrial)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()
	var result []*models.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, u)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

// IsUserAbsent сообщает, является ли ошибка признаком отсутствия пользователя.
func IsUserAbsent(err error) bool {
	return errors.Is(err, sql.ErrNoRows)
}

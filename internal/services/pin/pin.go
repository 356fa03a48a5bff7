// Package pin реализует установку и проверку 4-значного PIN,
// которым подтверждаются чувствительные действия в дашборде.
//
// Setup сохраняет эталонный дайджест после совпадения ввода и подтверждения.
// Verify сравнивает дайджест кандидата с эталоном и ничего не изменяет:
// это только ворота перед действием, которое выполняет вызывающая сторона.
package pin

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/magabrotheeeer/fleet-control/internal/lib/pincode"
	"github.com/magabrotheeeer/fleet-control/internal/lib/sl"
	"github.com/magabrotheeeer/fleet-control/internal/models"
)

// Ошибки потоков установки и проверки PIN.
var (
	// ErrMismatch — подтверждение не совпало с первым вводом, ничего не сохранено.
	ErrMismatch = errors.New("pin confirmation does not match")
	// ErrNotConfigured — у пользователя нет PIN-записи, защищённое действие недоступно.
	ErrNotConfigured = errors.New("pin is not configured")
	// ErrIncorrectPin — дайджест кандидата не совпал с эталоном.
	ErrIncorrectPin = errors.New("incorrect pin")
)

// Repository определяет методы хранилища для PIN-записей
// и устаревшего поля на записи пользователя.
type Repository interface {
	// GetPinRecord возвращает PIN-запись или nil, если её нет.
	GetPinRecord(ctx context.Context, ownerUID string) (*models.PinRecord, error)
	// UpsertPinRecord создаёт или перезаписывает PIN-запись.
	UpsertPinRecord(ctx context.Context, rec models.PinRecord) error
	// GetUser возвращает пользователя (нужен доступ к устаревшему полю mpin_hash).
	GetUser(ctx context.Context, userUID string) (*models.User, error)
	// ClearLegacyPinHash очищает устаревшее поле mpin_hash.
	ClearLegacyPinHash(ctx context.Context, userUID string) error
}

// Service реализует потоки установки и проверки PIN.
type Service struct {
	repo Repository
	log  *slog.Logger
}

// New создает новый экземпляр Service.
func New(repo Repository, log *slog.Logger) *Service {
	return &Service{
		repo: repo,
		log:  log,
	}
}

// Setup выполняет двухшаговый протокол установки PIN: формат, совпадение
// подтверждения, затем запись дайджеста с перезаписью прежней записи.
// При любой ошибке до записи ничего не сохраняется; ошибка записи оставляет
// прежнее состояние и допускает повтор. После успешной записи устаревшее
// поле на пользователе очищается, best-effort.
func (s *Service) Setup(ctx context.Context, ownerUID, ownerEmail, pin, confirm string) error {
	const op = "pin.Setup"

	digest, err := pincode.Digest(pin)
	if err != nil {
		return err
	}
	if pin != confirm {
		return ErrMismatch
	}

	rec := models.PinRecord{
		OwnerUID:   ownerUID,
		OwnerEmail: ownerEmail,
		Digest:     digest,
	}
	if err := s.repo.UpsertPinRecord(ctx, rec); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	// Устаревшее место хранения выводится из оборота; сбой очистки
	// не отменяет установку.
	if err := s.repo.ClearLegacyPinHash(ctx, ownerUID); err != nil {
		s.log.Warn("failed to clear legacy pin field", sl.Err(err))
	}
	s.log.Info("pin configured", slog.String("uid", ownerUID))
	return nil
}

// Configured сообщает, настроен ли PIN у пользователя: есть PIN-запись
// либо непустое устаревшее поле.
func (s *Service) Configured(ctx context.Context, ownerUID string) (bool, error) {
	const op = "pin.Configured"

	rec, err := s.repo.GetPinRecord(ctx, ownerUID)
	if err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}
	if rec != nil {
		return true, nil
	}
	u, err := s.repo.GetUser(ctx, ownerUID)
	if err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}
	return u.LegacyPinHash != "", nil
}

// Verify сравнивает дайджест кандидата с эталоном пользователя.
// Если эталон существует только в устаревшем поле, запись прозрачно
// мигрирует в pin_records, и устаревшее поле больше не используется.
// Verify не изменяет доменные данные и не ограничивает число попыток.
func (s *Service) Verify(ctx context.Context, ownerUID, candidate string) error {
	const op = "pin.Verify"

	candidateDigest, err := pincode.Digest(candidate)
	if err != nil {
		return err
	}

	rec, err := s.repo.GetPinRecord(ctx, ownerUID)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	var stored string
	switch {
	case rec != nil:
		stored = rec.Digest
	default:
		u, err := s.repo.GetUser(ctx, ownerUID)
		if err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}
		if u.LegacyPinHash == "" {
			return ErrNotConfigured
		}
		stored = u.LegacyPinHash
		if err := s.migrateLegacy(ctx, u); err != nil {
			s.log.Warn("failed to migrate legacy pin record", sl.Err(err))
		}
	}

	if !pincode.Equal(stored, candidateDigest) {
		return ErrIncorrectPin
	}
	return nil
}

func (s *Service) migrateLegacy(ctx context.Context, u *models.User) error {
	rec := models.PinRecord{
		OwnerUID:   u.UUID,
		OwnerEmail: u.Email,
		Digest:     u.LegacyPinHash,
	}
	if err := s.repo.UpsertPinRecord(ctx, rec); err != nil {
		return err
	}
	if err := s.repo.ClearLegacyPinHash(ctx, u.UUID); err != nil {
		return err
	}
	s.log.Info("legacy pin record migrated", slog.String("uid", u.UUID))
	return nil
}

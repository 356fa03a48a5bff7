// Package fleet реализует бизнес-логику сущностей автопарка арендатора:
// водители, транспорт, рейсы, заказчики и сотрудники. Списки кешируются
// в Redis и инвалидируются при любой мутации соответствующей сущности.
package fleet

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/magabrotheeeer/fleet-control/internal/models"
)

const cacheTTL = time.Hour

// Repository определяет методы хранилища для сущностей автопарка.
type Repository interface {
	CreateDriver(ctx context.Context, d models.Driver) (int, error)
	ListDrivers(ctx context.Context, tenantUID string) ([]*models.Driver, error)
	UpdateDriver(ctx context.Context, d models.Driver, id int, tenantUID string) (int, error)
	RemoveDriver(ctx context.Context, id int, tenantUID string) (int, error)

	CreateVehicle(ctx context.Context, v models.Vehicle) (int, error)
	ListVehicles(ctx context.Context, tenantUID string) ([]*models.Vehicle, error)
	UpdateVehicle(ctx context.Context, v models.Vehicle, id int, tenantUID string) (int, error)
	RemoveVehicle(ctx context.Context, id int, tenantUID string) (int, error)

	CreateCustomer(ctx context.Context, c models.Customer) (int, error)
	ListCustomers(ctx context.Context, tenantUID string) ([]*models.Customer, error)
	RemoveCustomer(ctx context.Context, id int, tenantUID string) (int, error)

	CreateTrip(ctx context.Context, t models.Trip) (int, error)
	ListTrips(ctx context.Context, tenantUID string) ([]*models.Trip, error)
	UpdateTripStatus(ctx context.Context, id int, tenantUID, status string) (int, error)
	RemoveTrip(ctx context.Context, id int, tenantUID string) (int, error)

	CreateEmployee(ctx context.Context, e models.Employee) (int, error)
	ListEmployees(ctx context.Context, tenantUID string) ([]*models.Employee, error)
	RemoveEmployee(ctx context.Context, id int, tenantUID string) (int, error)
}

// Cache описывает методы для кэширования данных.
type Cache interface {
	// Get пытается получить значение из кеша по ключу.
	Get(key string, result any) (bool, error)
	// Set сохраняет значение в кеш с временем жизни.
	Set(key string, value any, expiration time.Duration) error
	// Invalidate удаляет значение из кеша по ключу.
	Invalidate(key string) error
}

// Service реализует операции над сущностями автопарка с кешированием списков.
type Service struct {
	repo  Repository
	cache Cache
	log   *slog.Logger
}

// New создает новый экземпляр Service.
func New(repo Repository, cache Cache, log *slog.Logger) *Service {
	return &Service{
		repo:  repo,
		cache: cache,
		log:   log,
	}
}

func listKey(entity, tenantUID string) string {
	return fmt.Sprintf("%s:%s", entity, tenantUID)
}

func (s *Service) invalidate(entity, tenantUID string) {
	key := listKey(entity, tenantUID)
	if err := s.cache.Invalidate(key); err != nil {
		s.log.Warn("failed to invalidate cache", slog.String("key", key), slog.Any("err", err))
	}
}

// CreateDriver добавляет водителя арендатора.
func (s *Service) CreateDriver(ctx context.Context, tenantUID string, req models.DummyDriver) (int, error) {
	status := req.Status
	if status == "" {
		status = models.DriverAvailable
	}
	d := models.Driver{
		TenantUID:     tenantUID,
		Name:          req.Name,
		Phone:         req.Phone,
		LicenceNumber: req.LicenceNumber,
		Status:        status,
	}
	id, err := s.repo.CreateDriver(ctx, d)
	if err != nil {
		return 0, err
	}
	s.log.Info("created driver", slog.Int("id", id))
	s.invalidate("drivers", tenantUID)
	return id, nil
}

// ListDrivers возвращает водителей арендатора, используя кеш или репозиторий.
func (s *Service) ListDrivers(ctx context.Context, tenantUID string) ([]*models.Driver, error) {
	var result []*models.Driver
	key := listKey("drivers", tenantUID)
	found, err := s.cache.Get(key, &result)
	if err != nil {
		return nil, err
	}
	if found {
		return result, nil
	}
	result, err = s.repo.ListDrivers(ctx, tenantUID)
	if err != nil {
		return nil, err
	}
	if err := s.cache.Set(key, result, cacheTTL); err != nil {
		s.log.Warn("failed to cache drivers", slog.String("key", key), slog.Any("err", err))
	}
	return result, nil
}

// UpdateDriver обновляет водителя арендатора.
func (s *Service) UpdateDriver(ctx context.Context, tenantUID string, id int, req models.DummyDriver) (int, error) {
	d := models.Driver{
		Name:          req.Name,
		Phone:         req.Phone,
		LicenceNumber: req.LicenceNumber,
		Status:        req.Status,
	}
	if d.Status == "" {
		d.Status = models.DriverAvailable
	}
	count, err := s.repo.UpdateDriver(ctx, d, id, tenantUID)
	if err != nil {
		return 0, err
	}
	s.invalidate("drivers", tenantUID)
	return count, nil
}

// RemoveDriver удаляет водителя арендатора.
func (s *Service) RemoveDriver(ctx context.Context, tenantUID string, id int) (int, error) {
	count, err := s.repo.RemoveDriver(ctx, id, tenantUID)
	if err != nil {
		return 0, err
	}
	s.invalidate("drivers", tenantUID)
	return count, nil
}

// CreateVehicle добавляет транспортное средство арендатора.
func (s *Service) CreateVehicle(ctx context.Context, tenantUID string, req models.DummyVehicle) (int, error) {
	status := req.Status
	if status == "" {
		status = models.VehicleAvailable
	}
	v := models.Vehicle{
		TenantUID:    tenantUID,
		Registration: req.Registration,
		Model:        req.Model,
		Capacity:     req.Capacity,
		Status:       status,
	}
	id, err := s.repo.CreateVehicle(ctx, v)
	if err != nil {
		return 0, err
	}
	s.log.Info("created vehicle", slog.Int("id", id))
	s.invalidate("vehicles", tenantUID)
	return id, nil
}

// ListVehicles возвращает транспорт арендатора, используя кеш или репозиторий.
func (s *Service) ListVehicles(ctx context.Context, tenantUID string) ([]*models.Vehicle, error) {
	var result []*models.Vehicle
	key := listKey("vehicles", tenantUID)
	found, err := s.cache.Get(key, &result)
	if err != nil {
		return nil, err
	}
	if found {
		return result, nil
	}
	result, err = s.repo.ListVehicles(ctx, tenantUID)
	if err != nil {
		return nil, err
	}
	if err := s.cache.Set(key, result, cacheTTL); err != nil {
		s.log.Warn("failed to cache vehicles", slog.String("key", key), slog.Any("err", err))
	}
	return result, nil
}

// UpdateVehicle обновляет транспортное средство арендатора.
func (s *Service) UpdateVehicle(ctx context.Context, tenantUID string, id int, req models.DummyVehicle) (int, error) {
	v := models.Vehicle{
		Registration: req.Registration,
		Model:        req.Model,
		Capacity:     req.Capacity,
		Status:       req.Status,
	}
	if v.Status == "" {
		v.Status = models.VehicleAvailable
	}
	count, err := s.repo.UpdateVehicle(ctx, v, id, tenantUID)
	if err != nil {
		return 0, err
	}
	s.invalidate("vehicles", tenantUID)
	return count, nil
}

// RemoveVehicle удаляет транспортное средство арендатора.
func (s *Service) RemoveVehicle(ctx context.Context, tenantUID string, id int) (int, error) {
	count, err := s.repo.RemoveVehicle(ctx, id, tenantUID)
	if err != nil {
		return 0, err
	}
	s.invalidate("vehicles", tenantUID)
	return count, nil
}

// CreateCustomer добавляет заказчика арендатора.
func (s *Service) CreateCustomer(ctx context.Context, tenantUID string, req models.DummyCustomer) (int, error) {
	c := models.Customer{
		TenantUID: tenantUID,
		Name:      req.Name,
		Company:   req.Company,
		Phone:     req.Phone,
		City:      req.City,
	}
	id, err := s.repo.CreateCustomer(ctx, c)
	if err != nil {
		return 0, err
	}
	s.invalidate("customers", tenantUID)
	return id, nil
}

// ListCustomers возвращает заказчиков арендатора, используя кеш или репозиторий.
func (s *Service) ListCustomers(ctx context.Context, tenantUID string) ([]*models.Customer, error) {
	var result []*models.Customer
	key := listKey("customers", tenantUID)
	found, err := s.cache.Get(key, &result)
	if err != nil {
		return nil, err
	}
	if found {
		return result, nil
	}
	result, err = s.repo.ListCustomers(ctx, tenantUID)
	if err != nil {
		return nil, err
	}
	if err := s.cache.Set(key, result, cacheTTL); err != nil {
		s.log.Warn("failed to cache customers", slog.String("key", key), slog.Any("err", err))
	}
	return result, nil
}

// RemoveCustomer удаляет заказчика арендатора.
func (s *Service) RemoveCustomer(ctx context.Context, tenantUID string, id int) (int, error) {
	count, err := s.repo.RemoveCustomer(ctx, id, tenantUID)
	if err != nil {
		return 0, err
	}
	s.invalidate("customers", tenantUID)
	return count, nil
}

// CreateTrip добавляет рейс арендатора. Дата приходит строкой 02-01-2006.
func (s *Service) CreateTrip(ctx context.Context, tenantUID string, req models.DummyTrip) (int, error) {
	scheduledAt, err := time.Parse("02-01-2006", req.ScheduledAt)
	if err != nil {
		return 0, fmt.Errorf("invalid scheduled date: %w", err)
	}
	t := models.Trip{
		TenantUID:   tenantUID,
		DriverID:    req.DriverID,
		VehicleID:   req.VehicleID,
		CustomerID:  req.CustomerID,
		Origin:      req.Origin,
		Destination: req.Destination,
		ScheduledAt: scheduledAt,
		Status:      models.TripScheduled,
		Fare:        req.Fare,
	}
	id, err := s.repo.CreateTrip(ctx, t)
	if err != nil {
		return 0, err
	}
	s.log.Info("created trip", slog.Int("id", id))
	s.invalidate("trips", tenantUID)
	return id, nil
}

// ListTrips возвращает рейсы арендатора, используя кеш или репозиторий.
func (s *Service) ListTrips(ctx context.Context, tenantUID string) ([]*models.Trip, error) {
	var result []*models.Trip
	key := listKey("trips", tenantUID)
	found, err := s.cache.Get(key, &result)
	if err != nil {
		return nil, err
	}
	if found {
		return result, nil
	}
	result, err = s.repo.ListTrips(ctx, tenantUID)
	if err != nil {
		return nil, err
	}
	if err := s.cache.Set(key, result, cacheTTL); err != nil {
		s.log.Warn("failed to cache trips", slog.String("key", key), slog.Any("err", err))
	}
	return result, nil
}

// UpdateTripStatus переводит рейс арендатора в новый статус.
func (s *Service) UpdateTripStatus(ctx context.Context, tenantUID string, id int, status string) (int, error) {
	count, err := s.repo.UpdateTripStatus(ctx, id, tenantUID, status)
	if err != nil {
		return 0, err
	}
	s.invalidate("trips", tenantUID)
	return count, nil
}

// RemoveTrip удаляет рейс арендатора.
func (s *Service) RemoveTrip(ctx context.Context, tenantUID string, id int) (int, error) {
	count, err := s.repo.RemoveTrip(ctx, id, tenantUID)
	if err != nil {
		return 0, err
	}
	s.invalidate("trips", tenantUID)
	return count, nil
}

// CreateEmployee добавляет сотрудника арендатора. Проверку PIN выполняет
// вызывающий обработчик до вызова сервиса.
func (s *Service) CreateEmployee(ctx context.Context, tenantUID string, req models.DummyEmployee) (int, error) {
	e := models.Employee{
		TenantUID: tenantUID,
		Name:      req.Name,
		Email:     req.Email,
		RoleLabel: req.RoleLabel,
	}
	id, err := s.repo.CreateEmployee(ctx, e)
	if err != nil {
		return 0, err
	}
	s.invalidate("employees", tenantUID)
	return id, nil
}

// ListEmployees возвращает сотрудников арендатора, используя кеш или репозиторий.
func (s *Service) ListEmployees(ctx context.Context, tenantUID string) ([]*models.Employee, error) {
	var result []*models.Employee
	key := listKey("employees", tenantUID)
	found, err := s.cache.Get(key, &result)
	if err != nil {
		return nil, err
	}
	if found {
		return result, nil
	}
	result, err = s.repo.ListEmployees(ctx, tenantUID)
	if err != nil {
		return nil, err
	}
	if err := s.cache.Set(key, result, cacheTTL); err != nil {
		s.log.Warn("failed to cache employees", slog.String("key", key), slog.Any("err", err))
	}
	return result, nil
}

// RemoveEmployee удаляет сотрудника арендатора. Защищено проверкой PIN
// на уровне обработчика.
func (s *Service) RemoveEmployee(ctx context.Context, tenantUID string, id int) (int, error) {
	count, err := s.repo.RemoveEmployee(ctx, id, tenantUID)
	if err != nil {
		return 0, err
	}
	s.invalidate("employees", tenantUID)
	return count, nil
}

package fleet

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/magabrotheeeer/fleet-control/internal/models"
)

type RepoMock struct{ mock.Mock }

func (m *RepoMock) CreateDriver(ctx context.Context, d models.Driver) (int, error) {
	args := m.Called(ctx, d)
	return args.Int(0), args.Error(1)
}

func (m *RepoMock) ListDrivers(ctx context.Context, tenantUID string) ([]*models.Driver, error) {
	args := m.Called(ctx, tenantUID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Driver), args.Error(1)
}

func (m *RepoMock) UpdateDriver(ctx context.Context, d models.Driver, id int, tenantUID string) (int, error) {
	args := m.Called(ctx, d, id, tenantUID)
	return args.Int(0), args.Error(1)
}

func (m *RepoMock) RemoveDriver(ctx context.Context, id int, tenantUID string) (int, error) {
	args := m.Called(ctx, id, tenantUID)
	return args.Int(0), args.Error(1)
}

func (m *RepoMock) CreateVehicle(ctx context.Context, v models.Vehicle) (int, error) {
	args := m.Called(ctx, v)
	return args.Int(0), args.Error(1)
}

func (m *RepoMock) ListVehicles(ctx context.Context, tenantUID string) ([]*models.Vehicle, error) {
	args := m.Called(ctx, tenantUID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Vehicle), args.Error(1)
}

func (m *RepoMock) UpdateVehicle(ctx context.Context, v models.Vehicle, id int, tenantUID string) (int, error) {
	args := m.Called(ctx, v, id, tenantUID)
	return args.Int(0), args.Error(1)
}

func (m *RepoMock) RemoveVehicle(ctx context.Context, id int, tenantUID string) (int, error) {
	args := m.Called(ctx, id, tenantUID)
	return args.Int(0), args.Error(1)
}

func (m *RepoMock) CreateCustomer(ctx context.Context, c models.Customer) (int, error) {
	args := m.Called(ctx, c)
	return args.Int(0), args.Error(1)
}

func (m *RepoMock) ListCustomers(ctx context.Context, tenantUID string) ([]*models.Customer, error) {
	args := m.Called(ctx, tenantUID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Customer), args.Error(1)
}

func (m *RepoMock) RemoveCustomer(ctx context.Context, id int, tenantUID string) (int, error) {
	args := m.Called(ctx, id, tenantUID)
	return args.Int(0), args.Error(1)
}

func (m *RepoMock) CreateTrip(ctx context.Context, t models.Trip) (int, error) {
	args := m.Called(ctx, t)
	return args.Int(0), args.Error(1)
}

func (m *RepoMock) ListTrips(ctx context.Context, tenantUID string) ([]*models.Trip, error) {
	args := m.Called(ctx, tenantUID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Trip), args.Error(1)
}

func (m *RepoMock) UpdateTripStatus(ctx context.Context, id int, tenantUID, status string) (int, error) {
	args := m.Called(ctx, id, tenantUID, status)
	return args.Int(0), args.Error(1)
}

func (m *RepoMock) RemoveTrip(ctx context.Context, id int, tenantUID string) (int, error) {
	args := m.Called(ctx, id, tenantUID)
	return args.Int(0), args.Error(1)
}

func (m *RepoMock) CreateEmployee(ctx context.Context, e models.Employee) (int, error) {
	args := m.Called(ctx, e)
	return args.Int(0), args.Error(1)
}

func (m *RepoMock) ListEmployees(ctx context.Context, tenantUID string) ([]*models.Employee, error) {
	args := m.Called(ctx, tenantUID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Employee), args.Error(1)
}

func (m *RepoMock) RemoveEmployee(ctx context.Context, id int, tenantUID string) (int, error) {
	args := m.Called(ctx, id, tenantUID)
	return args.Int(0), args.Error(1)
}

type CacheMock struct{ mock.Mock }

func (m *CacheMock) Get(key string, result any) (bool, error) {
	args := m.Called(key, result)
	return args.Bool(0), args.Error(1)
}

func (m *CacheMock) Set(key string, value any, expiration time.Duration) error {
	return m.Called(key, value, expiration).Error(0)
}

func (m *CacheMock) Invalidate(key string) error {
	return m.Called(key).Error(0)
}

func newNoopLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{}))
}

func TestCreateDriver(t *testing.T) {
	t.Run("пустой статус заменяется на available и кеш инвалидируется", func(t *testing.T) {
		repo := new(RepoMock)
		repo.On("CreateDriver", mock.Anything, mock.MatchedBy(func(d models.Driver) bool {
			return d.TenantUID == "uid-1" && d.Status == models.DriverAvailable
		})).Return(7, nil).Once()

		cache := new(CacheMock)
		cache.On("Invalidate", "drivers:uid-1").Return(nil).Once()

		service := New(repo, cache, newNoopLogger())
		id, err := service.CreateDriver(context.Background(), "uid-1", models.DummyDriver{
			Name:          "Иванов Иван",
			Phone:         "+79991234567",
			LicenceNumber: "77AA123456",
		})

		assert.NoError(t, err)
		assert.Equal(t, 7, id)
		repo.AssertExpectations(t)
		cache.AssertExpectations(t)
	})

	t.Run("ошибка репозитория не трогает кеш", func(t *testing.T) {
		repo := new(RepoMock)
		repo.On("CreateDriver", mock.Anything, mock.Anything).
			Return(0, errors.New("db down")).Once()

		cache := new(CacheMock)

		service := New(repo, cache, newNoopLogger())
		_, err := service.CreateDriver(context.Background(), "uid-1", models.DummyDriver{
			Name: "Иванов Иван",
		})

		assert.Error(t, err)
		cache.AssertNotCalled(t, "Invalidate", mock.Anything)
	})
}

func TestCreateVehicle(t *testing.T) {
	t.Run("пустой статус заменяется на available и кеш инвалидируется", func(t *testing.T) {
		repo := new(RepoMock)
		repo.On("CreateVehicle", mock.Anything, mock.MatchedBy(func(v models.Vehicle) bool {
			return v.TenantUID == "uid-1" && v.Status == models.VehicleAvailable
		})).Return(4, nil).Once()

		cache := new(CacheMock)
		cache.On("Invalidate", "vehicles:uid-1").Return(nil).Once()

		service := New(repo, cache, newNoopLogger())
		id, err := service.CreateVehicle(context.Background(), "uid-1", models.DummyVehicle{
			Registration: "А123ВС77",
			Model:        "ГАЗель NEXT",
			Capacity:     1500,
		})

		assert.NoError(t, err)
		assert.Equal(t, 4, id)
		repo.AssertExpectations(t)
		cache.AssertExpectations(t)
	})

	t.Run("явный статус сохраняется как есть", func(t *testing.T) {
		repo := new(RepoMock)
		repo.On("CreateVehicle", mock.Anything, mock.MatchedBy(func(v models.Vehicle) bool {
			return v.Status == models.VehicleInactive
		})).Return(5, nil).Once()

		cache := new(CacheMock)
		cache.On("Invalidate", "vehicles:uid-1").Return(nil).Once()

		service := New(repo, cache, newNoopLogger())
		_, err := service.CreateVehicle(context.Background(), "uid-1", models.DummyVehicle{
			Registration: "В456ОР77",
			Model:        "КАМАЗ 5490",
			Capacity:     20000,
			Status:       models.VehicleInactive,
		})

		assert.NoError(t, err)
		repo.AssertExpectations(t)
	})
}

func TestListDrivers(t *testing.T) {
	drivers := []*models.Driver{
		{ID: 1, TenantUID: "uid-1", Name: "Иванов Иван"},
	}

	t.Run("попадание в кеш не обращается к репозиторию", func(t *testing.T) {
		repo := new(RepoMock)

		cache := new(CacheMock)
		cache.On("Get", "drivers:uid-1", mock.Anything).
			Run(func(args mock.Arguments) {
				out := args.Get(1).(*[]*models.Driver)
				*out = drivers
			}).Return(true, nil).Once()

		service := New(repo, cache, newNoopLogger())
		got, err := service.ListDrivers(context.Background(), "uid-1")

		assert.NoError(t, err)
		assert.Equal(t, drivers, got)
		repo.AssertNotCalled(t, "ListDrivers", mock.Anything, mock.Anything)
	})

	t.Run("промах кеша читает репозиторий и заполняет кеш", func(t *testing.T) {
		repo := new(RepoMock)
		repo.On("ListDrivers", mock.Anything, "uid-1").Return(drivers, nil).Once()

		cache := new(CacheMock)
		cache.On("Get", "drivers:uid-1", mock.Anything).Return(false, nil).Once()
		cache.On("Set", "drivers:uid-1", drivers, time.Hour).Return(nil).Once()

		service := New(repo, cache, newNoopLogger())
		got, err := service.ListDrivers(context.Background(), "uid-1")

		assert.NoError(t, err)
		assert.Equal(t, drivers, got)
		repo.AssertExpectations(t)
		cache.AssertExpectations(t)
	})

	t.Run("ошибка записи в кеш не ломает ответ", func(t *testing.T) {
		repo := new(RepoMock)
		repo.On("ListDrivers", mock.Anything, "uid-1").Return(drivers, nil).Once()

		cache := new(CacheMock)
		cache.On("Get", "drivers:uid-1", mock.Anything).Return(false, nil).Once()
		cache.On("Set", "drivers:uid-1", drivers, time.Hour).
			Return(errors.New("redis down")).Once()

		service := New(repo, cache, newNoopLogger())
		got, err := service.ListDrivers(context.Background(), "uid-1")

		assert.NoError(t, err)
		assert.Equal(t, drivers, got)
	})
}

func TestRemoveDriver(t *testing.T) {
	t.Run("чужая запись возвращает нулевой счетчик", func(t *testing.T) {
		repo := new(RepoMock)
		repo.On("RemoveDriver", mock.Anything, 5, "uid-2").Return(0, nil).Once()

		cache := new(CacheMock)
		cache.On("Invalidate", "drivers:uid-2").Return(nil).Once()

		service := New(repo, cache, newNoopLogger())
		count, err := service.RemoveDriver(context.Background(), "uid-2", 5)

		assert.NoError(t, err)
		assert.Equal(t, 0, count)
	})
}

func TestCreateTrip(t *testing.T) {
	req := models.DummyTrip{
		DriverID:    1,
		VehicleID:   2,
		CustomerID:  3,
		Origin:      "Москва",
		Destination: "Казань",
		ScheduledAt: "15-03-2024",
		Fare:        45000,
	}

	t.Run("дата парсится и рейс создается в статусе scheduled", func(t *testing.T) {
		repo := new(RepoMock)
		repo.On("CreateTrip", mock.Anything, mock.MatchedBy(func(trip models.Trip) bool {
			return trip.Status == models.TripScheduled &&
				trip.ScheduledAt.Equal(time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC))
		})).Return(11, nil).Once()

		cache := new(CacheMock)
		cache.On("Invalidate", "trips:uid-1").Return(nil).Once()

		service := New(repo, cache, newNoopLogger())
		id, err := service.CreateTrip(context.Background(), "uid-1", req)

		assert.NoError(t, err)
		assert.Equal(t, 11, id)
		repo.AssertExpectations(t)
	})

	t.Run("некорректная дата отклоняется до обращения к репозиторию", func(t *testing.T) {
		bad := req
		bad.ScheduledAt = "2024-03-15"

		repo := new(RepoMock)

		service := New(repo, new(CacheMock), newNoopLogger())
		_, err := service.CreateTrip(context.Background(), "uid-1", bad)

		assert.Error(t, err)
		repo.AssertNotCalled(t, "CreateTrip", mock.Anything, mock.Anything)
	})
}

func TestUpdateTripStatus(t *testing.T) {
	repo := new(RepoMock)
	repo.On("UpdateTripStatus", mock.Anything, 11, "uid-1", models.TripCompleted).
		Return(1, nil).Once()

	cache := new(CacheMock)
	cache.On("Invalidate", "trips:uid-1").Return(nil).Once()

	service := New(repo, cache, newNoopLogger())
	count, err := service.UpdateTripStatus(context.Background(), "uid-1", 11, models.TripCompleted)

	assert.NoError(t, err)
	assert.Equal(t, 1, count)
	repo.AssertExpectations(t)
	cache.AssertExpectations(t)
}

func TestCreateEmployee(t *testing.T) {
	repo := new(RepoMock)
	repo.On("CreateEmployee", mock.Anything, mock.MatchedBy(func(e models.Employee) bool {
		return e.TenantUID == "uid-1" && e.Email == "dispatcher@example.com"
	})).Return(3, nil).Once()

	cache := new(CacheMock)
	cache.On("Invalidate", "employees:uid-1").Return(nil).Once()

	service := New(repo, cache, newNoopLogger())
	id, err := service.CreateEmployee(context.Background(), "uid-1", models.DummyEmployee{
		Pin:       "1234",
		Name:      "Смирнова Анна",
		Email:     "dispatcher@example.com",
		RoleLabel: "Диспетчер",
	})

	assert.NoError(t, err)
	assert.Equal(t, 3, id)
	repo.AssertExpectations(t)
}

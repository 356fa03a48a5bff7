package models

import "time"

// Статусы водителя.
const (
	DriverAvailable = "available"
	DriverOnTrip    = "on_trip"
	DriverInactive  = "inactive"
)

// Статусы транспортного средства. Набор значений совпадает со статусами
// водителя, но константы разведены по сущностям.
const (
	VehicleAvailable = "available"
	VehicleOnTrip    = "on_trip"
	VehicleInactive  = "inactive"
)

// Статусы рейса.
const (
	TripScheduled = "scheduled"
	TripOngoing   = "ongoing"
	TripCompleted = "completed"
	TripCancelled = "cancelled"
)

// Driver представляет водителя автопарка арендатора.
type Driver struct {
	ID            int       // Идентификатор записи
	TenantUID     string    // Идентификатор арендатора-владельца
	Name          string    // ФИО водителя
	Phone         string    // Контактный телефон
	LicenceNumber string    // Номер водительского удостоверения
	Status        string    // available, on_trip или inactive
	CreatedAt     time.Time // Время создания записи
}

// Vehicle представляет транспортное средство арендатора.
type Vehicle struct {
	ID           int       // Идентификатор записи
	TenantUID    string    // Идентификатор арендатора-владельца
	Registration string    // Регистрационный номер
	Model        string    // Модель
	Capacity     int       // Грузоподъёмность, кг
	Status       string    // available, on_trip или inactive
	CreatedAt    time.Time // Время создания записи
}

// Trip представляет рейс между двумя точками.
type Trip struct {
	ID          int       // Идентификатор записи
	TenantUID   string    // Идентификатор арендатора-владельца
	DriverID    int       // Водитель рейса
	VehicleID   int       // Транспортное средство рейса
	CustomerID  int       // Заказчик рейса
	Origin      string    // Пункт отправления
	Destination string    // Пункт назначения
	ScheduledAt time.Time // Плановая дата рейса
	Status      string    // scheduled, ongoing, completed или cancelled
	Fare        float64   // Стоимость рейса
}

// Customer представляет заказчика перевозок арендатора.
type Customer struct {
	ID        int       // Идентификатор записи
	TenantUID string    // Идентификатор арендатора-владельца
	Name      string    // Контактное лицо
	Company   string    // Компания заказчика
	Phone     string    // Контактный телефон
	City      string    // Город
	CreatedAt time.Time // Время создания записи
}

// Employee представляет сотрудника команды арендатора.
// Создание и удаление сотрудников защищено проверкой PIN.
type Employee struct {
	ID        int       // Идентификатор записи
	TenantUID string    // Идентификатор арендатора-владельца
	Name      string    // ФИО сотрудника
	Email     string    // Рабочая почта
	RoleLabel string    // Должность в свободной форме
	CreatedAt time.Time // Время создания записи
}

// DummyDriver используется для приёма данных водителя из JSON-запроса.
type DummyDriver struct {
	Name          string `json:"name" validate:"required"`
	Phone         string `json:"phone" validate:"required"`
	LicenceNumber string `json:"licence_number" validate:"required"`
	Status        string `json:"status" validate:"omitempty,oneof=available on_trip inactive"`
}

// DummyVehicle используется для приёма данных транспорта из JSON-запроса.
type DummyVehicle struct {
	Registration string `json:"registration" validate:"required"`
	Model        string `json:"model" validate:"required"`
	Capacity     int    `json:"capacity" validate:"required,gt=0"`
	Status       string `json:"status" validate:"omitempty,oneof=available on_trip inactive"`
}

// DummyTrip используется для приёма данных рейса из JSON-запроса.
// Дата приходит строкой в формате 02-01-2006 и парсится в сервисе.
type DummyTrip struct {
	DriverID    int     `json:"driver_id" validate:"required"`
	VehicleID   int     `json:"vehicle_id" validate:"required"`
	CustomerID  int     `json:"customer_id" validate:"required"`
	Origin      string  `json:"origin" validate:"required"`
	Destination string  `json:"destination" validate:"required"`
	ScheduledAt string  `json:"scheduled_at" validate:"required"`
	Fare        float64 `json:"fare" validate:"required,gt=0"`
}

// DummyCustomer используется для приёма данных заказчика из JSON-запроса.
type DummyCustomer struct {
	Name    string `json:"name" validate:"required"`
	Company string `json:"company" validate:"required"`
	Phone   string `json:"phone" validate:"required"`
	City    string `json:"city" validate:"required"`
}

// DummyEmployee используется для приёма данных сотрудника из JSON-запроса.
// Pin — PIN владельца, операция защищена.
type DummyEmployee struct {
	Pin       string `json:"pin" validate:"required"`
	Name      string `json:"name" validate:"required"`
	Email     string `json:"email" validate:"required,email"`
	RoleLabel string `json:"role_label" validate:"required"`
}

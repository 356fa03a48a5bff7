package repository

import (
	"context"
	"fmt"

	"github.com/magabrotheeeer/fleet-control/internal/models"
)

// Все запросы к сущностям автопарка фильтруются по tenant_uid:
// арендатор видит и изменяет только свои записи.

// CreateDriver добавляет водителя арендатора и возвращает его ID.
func (s *Storage) CreateDriver(ctx context.Context, d models.Driver) (int, error) {
	const op = "storage.CreateDriver"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	var newID int
	query := `INSERT INTO drivers (tenant_uid, name, phone, licence_number, status)
			  VALUES ($1, $2, $3, $4, $5)
			  RETURNING id;`
	if err := s.DB.QueryRowContext(ctx, query, d.TenantUID, d.Name, d.Phone,
		d.LicenceNumber, d.Status).Scan(&newID); err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return newID, nil
}

// ListDrivers возвращает водителей арендатора.
func (s *Storage) ListDrivers(ctx context.Context, tenantUID string) ([]*models.Driver, error) {
	const op = "storage.ListDrivers"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT id, tenant_uid, name, phone, licence_number, status, created_at
			  FROM drivers
			  WHERE tenant_uid = $1
			  ORDER BY id`
	rows, err := s.DB.QueryContext(ctx, query, tenantUID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()
	var result []*models.Driver
	for rows.Next() {
		var d models.Driver
		if err = rows.Scan(&d.ID, &d.TenantUID, &d.Name, &d.Phone,
			&d.LicenceNumber, &d.Status, &d.CreatedAt); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, &d)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

// UpdateDriver обновляет водителя арендатора, возвращает число изменённых строк.
func (s *Storage) UpdateDriver(ctx context.Context, d models.Driver, id int, tenantUID string) (int, error) {
	const op = "storage.UpdateDriver"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `UPDATE drivers
			  SET name = $1, phone = $2, licence_number = $3, status = $4
			  WHERE id = $5 AND tenant_uid = $6`
	res, err := s.DB.ExecContext(ctx, query, d.Name, d.Phone, d.LicenceNumber,
		d.Status, id, tenantUID)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	count, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return int(count), nil
}

// RemoveDriver удаляет водителя арендатора, возвращает число удалённых строк.
func (s *Storage) RemoveDriver(ctx context.Context, id int, tenantUID string) (int, error) {
	const op = "storage.RemoveDriver"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `DELETE FROM drivers WHERE id = $1 AND tenant_uid = $2`
	res, err := s.DB.ExecContext(ctx, query, id, tenantUID)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	count, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return int(count), nil
}

// CreateVehicle добавляет транспортное средство арендатора и возвращает его ID.
func (s *Storage) CreateVehicle(ctx context.Context, v models.Vehicle) (int, error) {
	const op = "storage.CreateVehicle"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	var newID int
	query := `INSERT INTO vehicles (tenant_uid, registration, model, capacity, status)
			  VALUES ($1, $2, $3, $4, $5)
			  RETURNING id;`
	if err := s.DB.QueryRowContext(ctx, query, v.TenantUID, v.Registration,
		v.Model, v.Capacity, v.Status).Scan(&newID); err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return newID, nil
}

// ListVehicles возвращает транспортные средства арендатора.
func (s *Storage) ListVehicles(ctx context.Context, tenantUID string) ([]*models.Vehicle, error) {
	const op = "storage.ListVehicles"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT id, tenant_uid, registration, model, capacity, status, created_at
			  FROM vehicles
			  WHERE tenant_uid = $1
			  ORDER BY id`
	rows, err := s.DB.QueryContext(ctx, query, tenantUID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()
	var result []*models.Vehicle
	for rows.Next() {
		var v models.Vehicle
		if err = rows.Scan(&v.ID, &v.TenantUID, &v.Registration, &v.Model,
			&v.Capacity, &v.Status, &v.CreatedAt); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, &v)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

// UpdateVehicle обновляет транспортное средство арендатора.
func (s *Storage) UpdateVehicle(ctx context.Context, v models.Vehicle, id int, tenantUID string) (int, error) {
	const op = "storage.UpdateVehicle"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `UPDATE vehicles
			  SET registration = $1, model = $2, capacity = $3, status = $4
			  WHERE id = $5 AND tenant_uid = $6`
	res, err := s.DB.ExecContext(ctx, query, v.Registration, v.Model, v.Capacity,
		v.Status, id, tenantUID)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	count, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return int(count), nil
}

// RemoveVehicle удаляет транспортное средство арендатора.
func (s *Storage) RemoveVehicle(ctx context.Context, id int, tenantUID string) (int, error) {
	const op = "storage.RemoveVehicle"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `DELETE FROM vehicles WHERE id = $1 AND tenant_uid = $2`
	res, err := s.DB.ExecContext(ctx, query, id, tenantUID)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	count, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return int(count), nil
}

// CreateCustomer добавляет заказчика арендатора и возвращает его ID.
func (s *Storage) CreateCustomer(ctx context.Context, c models.Customer) (int, error) {
	const op = "storage.CreateCustomer"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	var newID int
	query := `INSERT INTO customers (tenant_uid, name, company, phone, city)
			  VALUES ($1, $2, $3, $4, $5)
			  RETURNING id;`
	if err := s.DB.QueryRowContext(ctx, query, c.TenantUID, c.Name, c.Company,
		c.Phone, c.City).Scan(&newID); err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return newID, nil
}

// ListCustomers возвращает заказчиков арендатора.
func (s *Storage) ListCustomers(ctx context.Context, tenantUID string) ([]*models.Customer, error) {
	const op = "storage.ListCustomers"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT id, tenant_uid, name, company, phone, city, created_at
			  FROM customers
			  WHERE tenant_uid = $1
			  ORDER BY id`
	rows, err := s.DB.QueryContext(ctx, query, tenantUID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()
	var result []*models.Customer
	for rows.Next() {
		var c models.Customer
		if err = rows.Scan(&c.ID, &c.TenantUID, &c.Name, &c.Company,
			&c.Phone, &c.City, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, &c)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

// RemoveCustomer удаляет заказчика арендатора.
func (s *Storage) RemoveCustomer(ctx context.Context, id int, tenantUID string) (int, error) {
	const op = "storage.RemoveCustomer"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `DELETE FROM customers WHERE id = $1 AND tenant_uid = $2`
	res, err := s.DB.ExecContext(ctx, query, id, tenantUID)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	count, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return int(count), nil
}

// CreateTrip добавляет рейс арендатора и возвращает его ID.
func (s *Storage) CreateTrip(ctx context.Context, t models.Trip) (int, error) {
	const op = "storage.CreateTrip"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	var newID int
	query := `INSERT INTO trips (tenant_uid, driver_id, vehicle_id, customer_id,
			      origin, destination, scheduled_at, status, fare)
			  VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
			  RETURNING id;`
	if err := s.DB.QueryRowContext(ctx, query, t.TenantUID, t.DriverID, t.VehicleID,
		t.CustomerID, t.Origin, t.Destination, t.ScheduledAt, t.Status,
		t.Fare).Scan(&newID); err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return newID, nil
}

// ListTrips возвращает рейсы арендатора, новые первыми.
func (s *Storage) ListTrips(ctx context.Context, tenantUID string) ([]*models.Trip, error) {
	const op = "storage.ListTrips"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT id, tenant_uid, driver_id, vehicle_id, customer_id,
			      origin, destination, scheduled_at, status, fare
			  FROM trips
			  WHERE tenant_uid = $1
			  ORDER BY scheduled_at DESC`
	rows, err := s.DB.QueryContext(ctx, query, tenantUID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()
	var result []*models.Trip
	for rows.Next() {
		var t models.Trip
		if err = rows.Scan(&t.ID, &t.TenantUID, &t.DriverID, &t.VehicleID,
			&t.CustomerID, &t.Origin, &t.Destination, &t.ScheduledAt,
			&t.Status, &t.Fare); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, &t)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

// UpdateTripStatus переводит рейс арендатора в новый статус.
func (s *Storage) UpdateTripStatus(ctx context.Context, id int, tenantUID, status string) (int, error) {
	const op = "storage.UpdateTripStatus"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `UPDATE trips SET status = $1 WHERE id = $2 AND tenant_uid = $3`
	res, err := s.DB.ExecContext(ctx, query, status, id, tenantUID)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	count, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return int(count), nil
}

// RemoveTrip удаляет рейс арендатора.
func (s *Storage) RemoveTrip(ctx context.Context, id int, tenantUID string) (int, error) {
	const op = "storage.RemoveTrip"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `DELETE FROM trips WHERE id = $1 AND tenant_uid = $2`
	res, err := s.DB.ExecContext(ctx, query, id, tenantUID)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	count, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return int(count), nil
}

// CreateEmployee добавляет сотрудника арендатора и возвращает его ID.
func (s *Storage) CreateEmployee(ctx context.Context, e models.Employee) (int, error) {
	const op = "storage.CreateEmployee"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	var newID int
	query := `INSERT INTO employees (tenant_uid, name, email, role_label)
			  VALUES ($1, $2, $3, $4)
			  RETURNING id;`
	if err := s.DB.QueryRowContext(ctx, query, e.TenantUID, e.Name, e.Email,
		e.RoleLabel).Scan(&newID); err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return newID, nil
}

// ListEmployees возвращает сотрудников арендатора.
func (s *Storage) ListEmployees(ctx context.Context, tenantUID string) ([]*models.Employee, error) {
	const op = "storage.ListEmployees"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT id, tenant_uid, name, email, role_label, created_at
			  FROM employees
			  WHERE tenant_uid = $1
			  ORDER BY id`
	rows, err := s.DB.QueryContext(ctx, query, tenantUID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()
	var result []*models.Employee
	for rows.Next() {
		var e models.Employee
		if err = rows.Scan(&e.ID, &e.TenantUID, &e.Name, &e.Email,
			&e.RoleLabel, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, &e)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

// RemoveEmployee удаляет сотрудника арендатора.
func (s *Storage) RemoveEmployee(ctx context.Context, id int, tenantUID string) (int, error) {
	const op = "storage.RemoveEmployee"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `DELETE FROM employees WHERE id = $1 AND tenant_uid = $2`
	res, err := s.DB.ExecContext(ctx, query, id, tenantUID)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	count, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return int(count), nil
}

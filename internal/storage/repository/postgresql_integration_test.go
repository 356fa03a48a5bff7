package repository

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/fleet-control/internal/lib/pincode"
	"github.com/magabrotheeeer/fleet-control/internal/models"
)

func digestOf(t *testing.T, pin string) string {
	t.Helper()
	digest, err := pincode.Digest(pin)
	require.NoError(t, err)
	return digest
}

func TestUsersIntegration(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	storage, cleanup := setupTestDatabase(t)
	defer cleanup()

	ctx := context.Background()
	verify := NewTestVerification(storage)
	now := time.Now().UTC()

	t.Run("регистрация и чтение пользователя", func(t *testing.T) {
		uid, err := storage.RegisterUser(ctx, models.User{
			Email:              "owner@example.com",
			DisplayName:        "ООО Грузоперевозки",
			PasswordHash:       "hashedpassword",
			Role:               models.RoleUser,
			SubscriptionStatus: models.StatusTrial,
			TrialStartDate:     now,
			TrialEndDate:       now.Add(48 * time.Hour),
		})
		require.NoError(t, err)
		require.NotEmpty(t, uid)

		byUID, err := storage.GetUser(ctx, uid)
		require.NoError(t, err)
		assert.Equal(t, "owner@example.com", byUID.Email)
		assert.Equal(t, models.StatusTrial, byUID.SubscriptionStatus)
		assert.Nil(t, byUID.SubscriptionEnd)

		byEmail, err := storage.GetUserByEmail(ctx, "owner@example.com")
		require.NoError(t, err)
		assert.Equal(t, uid, byEmail.UUID)
	})

	t.Run("отсутствующий пользователь распознается как absent", func(t *testing.T) {
		_, err := storage.GetUser(ctx, uuid.NewString())
		require.Error(t, err)
		assert.True(t, IsUserAbsent(err))
	})

	t.Run("переходы статуса подписки", func(t *testing.T) {
		uid := uuid.NewString()
		NewTestDataFactory(storage).CreateUser(t, uid, "status@example.com", "Status Co", models.RoleUser)

		err := storage.UpdateSubscriptionStatus(ctx, uid, models.StatusPendingPayment)
		require.NoError(t, err)
		verify.VerifyUserSubscriptionStatus(t, uid, models.StatusPendingPayment)

		end := now.AddDate(0, 4, 0)
		err = storage.ActivateSubscription(ctx, uid, end)
		require.NoError(t, err)
		verify.VerifyUserSubscriptionStatus(t, uid, models.StatusActive)

		user, err := storage.GetUser(ctx, uid)
		require.NoError(t, err)
		require.NotNil(t, user.SubscriptionEnd)
		assert.WithinDuration(t, end, *user.SubscriptionEnd, time.Second)

		err = storage.ResetTrial(ctx, uid, now, now.Add(48*time.Hour))
		require.NoError(t, err)
		verify.VerifyUserSubscriptionStatus(t, uid, models.StatusTrial)
	})

	t.Run("очистка устаревшего mpin_hash", func(t *testing.T) {
		uid := uuid.NewString()
		factory := NewTestDataFactory(storage)
		factory.CreateUser(t, uid, "legacy@example.com", "Legacy Co", models.RoleUser)
		factory.SetLegacyPinHash(t, uid, digestOf(t, "1234"))

		user, err := storage.GetUser(ctx, uid)
		require.NoError(t, err)
		assert.Equal(t, digestOf(t, "1234"), user.LegacyPinHash)

		err = storage.ClearLegacyPinHash(ctx, uid)
		require.NoError(t, err)
		verify.VerifyLegacyPinHash(t, uid, "")
	})

	t.Run("обновление профиля компании", func(t *testing.T) {
		uid := uuid.NewString()
		NewTestDataFactory(storage).CreateUser(t, uid, "company@example.com", "Company Co", models.RoleUser)

		err := storage.UpdateCompanyProfile(ctx, uid, "ООО Логистика", "Казань", "+78005553535")
		require.NoError(t, err)

		user, err := storage.GetUser(ctx, uid)
		require.NoError(t, err)
		assert.Equal(t, "ООО Логистика", user.CompanyName)
		assert.Equal(t, "Казань", user.CompanyCity)
		assert.Equal(t, "+78005553535", user.CompanyMobile)
	})

	t.Run("поиск пробных периодов с истечением сегодня", func(t *testing.T) {
		expiringUID := uuid.NewString()
		factory := NewTestDataFactory(storage)
		factory.CreateUser(t, expiringUID, "expiring@example.com", "Expiring Co", models.RoleUser)
		_, err := storage.DB.Exec(`UPDATE users SET trial_end_date = now() WHERE uid = $1`, expiringUID)
		require.NoError(t, err)

		users, err := storage.FindTrialExpiringToday(ctx)
		require.NoError(t, err)

		found := false
		for _, u := range users {
			if u.UUID == expiringUID {
				found = true
			}
			assert.Equal(t, models.StatusTrial, u.SubscriptionStatus)
		}
		assert.True(t, found, "expiring user should be listed")
	})

	t.Run("отмененный контекст прерывает запрос", func(t *testing.T) {
		cancelled, cancel := context.WithCancel(ctx)
		cancel()
		_, err := storage.GetUser(cancelled, uuid.NewString())
		assert.ErrorIs(t, err, context.Canceled)
	})
}

func TestPinRecordsIntegration(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	storage, cleanup := setupTestDatabase(t)
	defer cleanup()

	ctx := context.Background()
	factory := NewTestDataFactory(storage)

	uid := uuid.NewString()
	factory.CreateUser(t, uid, "pin@example.com", "Pin Co", models.RoleUser)

	t.Run("nil без ошибки если PIN не настроен", func(t *testing.T) {
		rec, err := storage.GetPinRecord(ctx, uid)
		require.NoError(t, err)
		assert.Nil(t, rec)
	})

	t.Run("запись и чтение дайджеста", func(t *testing.T) {
		err := storage.UpsertPinRecord(ctx, models.PinRecord{
			OwnerUID:   uid,
			OwnerEmail: "pin@example.com",
			Digest:     digestOf(t, "1234"),
		})
		require.NoError(t, err)

		rec, err := storage.GetPinRecord(ctx, uid)
		require.NoError(t, err)
		require.NotNil(t, rec)
		assert.Equal(t, digestOf(t, "1234"), rec.Digest)
		assert.Equal(t, "pin@example.com", rec.OwnerEmail)
	})

	t.Run("повторная установка перезаписывает дайджест", func(t *testing.T) {
		err := storage.UpsertPinRecord(ctx, models.PinRecord{
			OwnerUID:   uid,
			OwnerEmail: "pin@example.com",
			Digest:     digestOf(t, "4321"),
		})
		require.NoError(t, err)

		rec, err := storage.GetPinRecord(ctx, uid)
		require.NoError(t, err)
		require.NotNil(t, rec)
		assert.Equal(t, digestOf(t, "4321"), rec.Digest)

		var count int
		err = storage.DB.QueryRow("SELECT COUNT(*) FROM pin_records WHERE owner_uid = $1", uid).
			Scan(&count)
		require.NoError(t, err)
		assert.Equal(t, 1, count)
	})
}

func TestPaymentRequestsIntegration(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	storage, cleanup := setupTestDatabase(t)
	defer cleanup()

	ctx := context.Background()
	factory := NewTestDataFactory(storage)
	verify := NewTestVerification(storage)

	uid := uuid.NewString()
	factory.CreateUser(t, uid, "requester@example.com", "Requester Co", models.RoleUser)

	t.Run("создание заявки со статусом pending", func(t *testing.T) {
		id, err := storage.CreatePaymentRequest(ctx, models.PaymentRequest{
			RequesterUID:   uid,
			RequesterEmail: "requester@example.com",
			RequesterName:  "Requester Co",
			Amount:         4990,
		})
		require.NoError(t, err)
		require.NotEmpty(t, id)
		verify.VerifyPaymentRequestStatus(t, id, models.RequestPending)

		req, err := storage.GetPaymentRequest(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, uid, req.RequesterUID)
		assert.InDelta(t, 4990, req.Amount, 0.01)
	})

	t.Run("последняя заявка пользователя", func(t *testing.T) {
		first := factory.CreatePaymentRequest(t, uid, "requester@example.com", "Requester Co", 100)
		_, err := storage.DB.Exec(
			`UPDATE payment_requests SET created_at = now() - interval '1 hour' WHERE id = $1`, first)
		require.NoError(t, err)
		second := factory.CreatePaymentRequest(t, uid, "requester@example.com", "Requester Co", 200)

		latest, err := storage.LatestPaymentRequest(ctx, uid)
		require.NoError(t, err)
		require.NotNil(t, latest)
		assert.Equal(t, second, latest.ID)
	})

	t.Run("nil без ошибки если заявок не было", func(t *testing.T) {
		otherUID := uuid.NewString()
		factory.CreateUser(t, otherUID, "empty@example.com", "Empty Co", models.RoleUser)

		latest, err := storage.LatestPaymentRequest(ctx, otherUID)
		require.NoError(t, err)
		assert.Nil(t, latest)
	})

	t.Run("решение применяется только к pending-заявке", func(t *testing.T) {
		id := factory.CreatePaymentRequest(t, uid, "requester@example.com", "Requester Co", 4990)

		count, err := storage.ResolvePaymentRequest(ctx, id, models.RequestApproved, "admin@example.com")
		require.NoError(t, err)
		assert.Equal(t, 1, count)
		verify.VerifyPaymentRequestStatus(t, id, models.RequestApproved)

		count, err = storage.ResolvePaymentRequest(ctx, id, models.RequestRejected, "admin@example.com")
		require.NoError(t, err)
		assert.Equal(t, 0, count)
		verify.VerifyPaymentRequestStatus(t, id, models.RequestApproved)
	})

	t.Run("список заявок с пагинацией", func(t *testing.T) {
		list, err := storage.ListPaymentRequests(ctx, 2, 0)
		require.NoError(t, err)
		assert.LessOrEqual(t, len(list), 2)
		assert.NotEmpty(t, list)
	})

	t.Run("удаление заявки", func(t *testing.T) {
		id := factory.CreatePaymentRequest(t, uid, "requester@example.com", "Requester Co", 4990)

		count, err := storage.DeletePaymentRequest(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, 1, count)

		count, err = storage.DeletePaymentRequest(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, 0, count)
	})
}

func TestDriversIntegration(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	storage, cleanup := setupTestDatabase(t)
	defer cleanup()

	ctx := context.Background()
	factory := NewTestDataFactory(storage)

	tenantUID := uuid.NewString()
	otherUID := uuid.NewString()
	factory.CreateUser(t, tenantUID, "tenant@example.com", "Tenant Co", models.RoleUser)
	factory.CreateUser(t, otherUID, "other@example.com", "Other Co", models.RoleUser)

	t.Run("создание и список в рамках арендатора", func(t *testing.T) {
		id, err := storage.CreateDriver(ctx, models.Driver{
			TenantUID:     tenantUID,
			Name:          "Иванов Иван",
			Phone:         "+79991234567",
			LicenceNumber: "77AA123456",
			Status:        models.DriverAvailable,
		})
		require.NoError(t, err)
		require.NotZero(t, id)

		factory.CreateDriver(t, otherUID, "Чужой Водитель")

		drivers, err := storage.ListDrivers(ctx, tenantUID)
		require.NoError(t, err)
		require.Len(t, drivers, 1)
		assert.Equal(t, "Иванов Иван", drivers[0].Name)
		assert.Equal(t, models.DriverAvailable, drivers[0].Status)
	})

	t.Run("обновление чужой записи не проходит", func(t *testing.T) {
		id := factory.CreateDriver(t, tenantUID, "Петров Петр")

		count, err := storage.UpdateDriver(ctx, models.Driver{
			Name:          "Петров Петр",
			Phone:         "+79990000000",
			LicenceNumber: "77BB654321",
			Status:        models.DriverOnTrip,
		}, id, otherUID)
		require.NoError(t, err)
		assert.Equal(t, 0, count)

		count, err = storage.UpdateDriver(ctx, models.Driver{
			Name:          "Петров Петр",
			Phone:         "+79990000000",
			LicenceNumber: "77BB654321",
			Status:        models.DriverOnTrip,
		}, id, tenantUID)
		require.NoError(t, err)
		assert.Equal(t, 1, count)
	})

	t.Run("удаление чужой записи не проходит", func(t *testing.T) {
		id := factory.CreateDriver(t, tenantUID, "Сидоров Сидор")

		count, err := storage.RemoveDriver(ctx, id, otherUID)
		require.NoError(t, err)
		assert.Equal(t, 0, count)

		count, err = storage.RemoveDriver(ctx, id, tenantUID)
		require.NoError(t, err)
		assert.Equal(t, 1, count)
	})
}

func TestCheckDatabaseReady(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	storage, cleanup := setupTestDatabase(t)
	defer cleanup()

	err := CheckDatabaseReady(storage)
	assert.NoError(t, err)
}

package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/fleet-control/internal/lib/jwt"
	"github.com/magabrotheeeer/fleet-control/internal/lib/password"
	"github.com/magabrotheeeer/fleet-control/internal/models"
	"github.com/magabrotheeeer/fleet-control/internal/services/subscription"
)

type UsersMock struct{ mock.Mock }

func (m *UsersMock) RegisterUser(ctx context.Context, user models.User) (string, error) {
	args := m.Called(ctx, user)
	return args.String(0), args.Error(1)
}

func (m *UsersMock) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *UsersMock) GetUser(ctx context.Context, userUID string) (*models.User, error) {
	args := m.Called(ctx, userUID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func TestRegister(t *testing.T) {
	users := new(UsersMock)
	users.On("RegisterUser", mock.Anything, mock.MatchedBy(func(u models.User) bool {
		return u.Email == "owner@example.com" &&
			u.Role == models.RoleUser &&
			u.SubscriptionStatus == models.StatusTrial &&
			u.TrialEndDate.Sub(u.TrialStartDate) == subscription.TrialLength &&
			u.PasswordHash != "secret"
	})).Return("uid-1", nil).Once()

	service := New(users, jwt.NewJWTMaker("test-secret", time.Hour))
	uid, err := service.Register(context.Background(), "owner@example.com", "ООО Грузоперевозки", "secret")

	assert.NoError(t, err)
	assert.Equal(t, "uid-1", uid)
	users.AssertExpectations(t)
}

func TestLogin(t *testing.T) {
	hashed, err := password.GetHash("secret")
	require.NoError(t, err)

	user := &models.User{
		UUID:         "uid-1",
		Email:        "owner@example.com",
		PasswordHash: hashed,
		Role:         models.RoleAdmin,
	}

	maker := jwt.NewJWTMaker("test-secret", time.Hour)

	t.Run("успешный вход возвращает токен и роль", func(t *testing.T) {
		users := new(UsersMock)
		users.On("GetUserByEmail", mock.Anything, "owner@example.com").Return(user, nil).Once()

		service := New(users, maker)
		token, role, err := service.Login(context.Background(), "owner@example.com", "secret")

		require.NoError(t, err)
		assert.NotEmpty(t, token)
		assert.Equal(t, models.RoleAdmin, role)

		claims, err := maker.ParseToken(token)
		require.NoError(t, err)
		assert.Equal(t, "uid-1", claims.UserUID)
		assert.Equal(t, "owner@example.com", claims.Email)
	})

	t.Run("неверный пароль", func(t *testing.T) {
		users := new(UsersMock)
		users.On("GetUserByEmail", mock.Anything, "owner@example.com").Return(user, nil).Once()

		service := New(users, maker)
		_, _, err := service.Login(context.Background(), "owner@example.com", "wrong")

		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})

	t.Run("неизвестная почта маскируется под неверные креды", func(t *testing.T) {
		users := new(UsersMock)
		users.On("GetUserByEmail", mock.Anything, "ghost@example.com").
			Return(nil, errors.New("sql: no rows in result set")).Once()

		service := New(users, maker)
		_, _, err := service.Login(context.Background(), "ghost@example.com", "secret")

		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})
}

func TestValidateToken(t *testing.T) {
	maker := jwt.NewJWTMaker("test-secret", time.Hour)
	service := New(new(UsersMock), maker)

	t.Run("валидный токен возвращает данные из claims", func(t *testing.T) {
		token, err := maker.GenerateToken("owner@example.com", models.RoleUser, "uid-1")
		require.NoError(t, err)

		user, err := service.ValidateToken(context.Background(), token)
		require.NoError(t, err)
		assert.Equal(t, "uid-1", user.UUID)
		assert.Equal(t, models.RoleUser, user.Role)
	})

	t.Run("токен с чужой подписью отклоняется", func(t *testing.T) {
		foreign := jwt.NewJWTMaker("other-secret", time.Hour)
		token, err := foreign.GenerateToken("owner@example.com", models.RoleUser, "uid-1")
		require.NoError(t, err)

		_, err = service.ValidateToken(context.Background(), token)
		assert.Error(t, err)
	})

	t.Run("просроченный токен отклоняется", func(t *testing.T) {
		expired := jwt.NewJWTMaker("test-secret", -time.Minute)
		token, err := expired.GenerateToken("owner@example.com", models.RoleUser, "uid-1")
		require.NoError(t, err)

		_, err = service.ValidateToken(context.Background(), token)
		assert.Error(t, err)
	})
}

package subscription

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

func (m *RepoMock) GetUser(ctx context.Context, userUID string) (*models.User, error) {
	args := m.Called(ctx, userUID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *RepoMock) UpdateSubscriptionStatus(ctx context.Context, userUID, status string) error {
	return m.Called(ctx, userUID, status).Error(0)
}

func (m *RepoMock) ResetTrial(ctx context.Context, userUID string, start, end time.Time) error {
	return m.Called(ctx, userUID, start, end).Error(0)
}

func (m *RepoMock) ActivateSubscription(ctx context.Context, userUID string, end time.Time) error {
	return m.Called(ctx, userUID, end).Error(0)
}

func newNoopLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{}))
}

func TestNext(t *testing.T) {
	trialStart := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	trialEnd := trialStart.Add(TrialLength)
	subEnd := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name        string
		user        *models.User
		now         time.Time
		wantStatus  string
		wantChanged bool
	}{
		{
			name: "trial внутри пробного периода остаётся trial",
			user: &models.User{
				SubscriptionStatus: models.StatusTrial,
				TrialStartDate:     trialStart,
				TrialEndDate:       trialEnd,
			},
			now:         trialStart.Add(time.Hour),
			wantStatus:  models.StatusTrial,
			wantChanged: false,
		},
		{
			name: "trial с началом 2024-01-01 заканчивается 2024-01-03, оценка 2024-01-04 даёт pending_payment",
			user: &models.User{
				SubscriptionStatus: models.StatusTrial,
				TrialStartDate:     trialStart,
				TrialEndDate:       trialEnd,
			},
			now:         time.Date(2024, 1, 4, 0, 0, 0, 0, time.UTC),
			wantStatus:  models.StatusPendingPayment,
			wantChanged: true,
		},
		{
			name: "граница не считается просрочкой",
			user: &models.User{
				SubscriptionStatus: models.StatusTrial,
				TrialStartDate:     trialStart,
				TrialEndDate:       trialEnd,
			},
			now:         trialEnd,
			wantStatus:  models.StatusTrial,
			wantChanged: false,
		},
		{
			name: "pending_payment не меняется со временем",
			user: &models.User{
				SubscriptionStatus: models.StatusPendingPayment,
				TrialEndDate:       trialEnd,
			},
			now:         trialEnd.AddDate(1, 0, 0),
			wantStatus:  models.StatusPendingPayment,
			wantChanged: false,
		},
		{
			name: "active до окончания подписки остаётся active",
			user: &models.User{
				SubscriptionStatus: models.StatusActive,
				SubscriptionEnd:    &subEnd,
			},
			now:         subEnd.Add(-time.Hour),
			wantStatus:  models.StatusActive,
			wantChanged: false,
		},
		{
			name: "active после окончания подписки сворачивается в trial",
			user: &models.User{
				SubscriptionStatus: models.StatusActive,
				SubscriptionEnd:    &subEnd,
			},
			now:         subEnd.Add(time.Hour),
			wantStatus:  models.StatusTrial,
			wantChanged: true,
		},
		{
			name: "active без даты окончания остаётся active",
			user: &models.User{
				SubscriptionStatus: models.StatusActive,
			},
			now:         subEnd,
			wantStatus:  models.StatusActive,
			wantChanged: false,
		},
		{
			name: "устаревший expired сводится к новому trial",
			user: &models.User{
				SubscriptionStatus: models.StatusExpired,
			},
			now:         trialStart,
			wantStatus:  models.StatusTrial,
			wantChanged: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, changed := Next(tt.user, tt.now)
			assert.Equal(t, tt.wantStatus, status)
			assert.Equal(t, tt.wantChanged, changed)
		})
	}
}

func TestEvaluateNoChangeWritesNothing(t *testing.T) {
	repo := new(RepoMock)
	service := New(repo, newNoopLogger())

	trialStart := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	user := &models.User{
		UUID:               "uid-1",
		SubscriptionStatus: models.StatusTrial,
		TrialStartDate:     trialStart,
		TrialEndDate:       trialStart.Add(TrialLength),
	}

	status, err := service.Evaluate(context.Background(), user, trialStart.Add(time.Hour))

	assert.NoError(t, err)
	assert.Equal(t, models.StatusTrial, status)
	repo.AssertNotCalled(t, "UpdateSubscriptionStatus", mock.Anything, mock.Anything, mock.Anything)
	repo.AssertNotCalled(t, "ResetTrial", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestEvaluateTrialExpiry(t *testing.T) {
	repo := new(RepoMock)
	repo.On("UpdateSubscriptionStatus", mock.Anything, "uid-1", models.StatusPendingPayment).
		Return(nil).Once()
	service := New(repo, newNoopLogger())

	trialStart := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	user := &models.User{
		UUID:               "uid-1",
		SubscriptionStatus: models.StatusTrial,
		TrialStartDate:     trialStart,
		TrialEndDate:       trialStart.Add(TrialLength),
	}

	status, err := service.Evaluate(context.Background(), user, time.Date(2024, 1, 4, 0, 0, 0, 0, time.UTC))

	assert.NoError(t, err)
	assert.Equal(t, models.StatusPendingPayment, status)
	repo.AssertExpectations(t)
	// Даты пробного периода не трогаются при переходе в pending_payment.
	repo.AssertNotCalled(t, "ResetTrial", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestEvaluateIdempotentAfterTransition(t *testing.T) {
	repo := new(RepoMock)
	repo.On("UpdateSubscriptionStatus", mock.Anything, "uid-1", models.StatusPendingPayment).
		Return(nil).Once()
	service := New(repo, newNoopLogger())

	trialStart := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	now := trialStart.AddDate(0, 0, 3)
	user := &models.User{
		UUID:               "uid-1",
		SubscriptionStatus: models.StatusTrial,
		TrialStartDate:     trialStart,
		TrialEndDate:       trialStart.Add(TrialLength),
	}

	status, err := service.Evaluate(context.Background(), user, now)
	assert.NoError(t, err)
	assert.Equal(t, models.StatusPendingPayment, status)

	// Повторная оценка уже переключённого пользователя ничего не пишет.
	user.SubscriptionStatus = models.StatusPendingPayment
	status, err = service.Evaluate(context.Background(), user, now)
	assert.NoError(t, err)
	assert.Equal(t, models.StatusPendingPayment, status)

	repo.AssertExpectations(t)
}

func TestEvaluateExpiredSubscriptionStartsFreshTrial(t *testing.T) {
	subEnd := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	now := subEnd.AddDate(0, 0, 1)

	repo := new(RepoMock)
	repo.On("ResetTrial", mock.Anything, "uid-1", now, now.Add(TrialLength)).
		Return(nil).Once()
	service := New(repo, newNoopLogger())

	user := &models.User{
		UUID:               "uid-1",
		SubscriptionStatus: models.StatusActive,
		SubscriptionEnd:    &subEnd,
	}

	status, err := service.Evaluate(context.Background(), user, now)

	assert.NoError(t, err)
	assert.Equal(t, models.StatusTrial, status)
	repo.AssertExpectations(t)
}

func TestEvaluateWriteErrorKeepsCurrentStatus(t *testing.T) {
	repo := new(RepoMock)
	repo.On("UpdateSubscriptionStatus", mock.Anything, "uid-1", models.StatusPendingPayment).
		Return(errors.New("db down")).Once()
	service := New(repo, newNoopLogger())

	trialStart := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	user := &models.User{
		UUID:               "uid-1",
		SubscriptionStatus: models.StatusTrial,
		TrialStartDate:     trialStart,
		TrialEndDate:       trialStart.Add(TrialLength),
	}

	status, err := service.Evaluate(context.Background(), user, trialStart.AddDate(0, 0, 3))

	assert.Error(t, err)
	assert.Equal(t, models.StatusTrial, status)
	repo.AssertExpectations(t)
}

func TestActivate(t *testing.T) {
	now := time.Date(2024, 2, 15, 12, 0, 0, 0, time.UTC)
	wantEnd := time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC)

	repo := new(RepoMock)
	repo.On("ActivateSubscription", mock.Anything, "uid-1", wantEnd).Return(nil).Once()
	service := New(repo, newNoopLogger())

	err := service.Activate(context.Background(), "uid-1", now)

	assert.NoError(t, err)
	repo.AssertExpectations(t)
}

func TestActivateError(t *testing.T) {
	repo := new(RepoMock)
	repo.On("ActivateSubscription", mock.Anything, "uid-1", mock.Anything).
		Return(errors.New("db down")).Once()
	service := New(repo, newNoopLogger())

	err := service.Activate(context.Background(), "uid-1", time.Now().UTC())

	assert.Error(t, err)
	repo.AssertExpectations(t)
}

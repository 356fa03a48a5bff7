package requestcreate

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/magabrotheeeer/fleet-control/internal/http/middlewarectx"
	"github.com/magabrotheeeer/fleet-control/internal/models"
)

// MockUserLoader реализует интерфейс requestcreate.UserLoader
type MockUserLoader struct {
	mock.Mock
}

func (m *MockUserLoader) GetUser(ctx context.Context, userUID string) (*models.User, error) {
	args := m.Called(ctx, userUID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

// MockService реализует интерфейс requestcreate.Service
type MockService struct {
	mock.Mock
}

func (m *MockService) Create(ctx context.Context, requester *models.User, amount float64) (string, error) {
	args := m.Called(ctx, requester, amount)
	return args.String(0), args.Error(1)
}

func TestCreateHandler(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))

	user := &models.User{
		UUID:        "uid-1",
		Email:       "tenant@example.com",
		DisplayName: "ООО Грузоперевозки",
	}

	tests := []struct {
		name           string
		body           string
		withUID        bool
		setupMocks     func(*MockUserLoader, *MockService)
		expectedStatus int
		expectedBody   string
	}{
		{
			name:    "успешное создание заявки",
			body:    `{"amount":4990}`,
			withUID: true,
			setupMocks: func(u *MockUserLoader, s *MockService) {
				u.On("GetUser", mock.Anything, "uid-1").Return(user, nil)
				s.On("Create", mock.Anything, user, 4990.0).Return("req-1", nil)
			},
			expectedStatus: http.StatusOK,
			expectedBody:   `"request_id":"req-1"`,
		},
		{
			name:           "некорректный JSON",
			body:           `{amount}`,
			withUID:        true,
			setupMocks:     func(_ *MockUserLoader, _ *MockService) {},
			expectedStatus: http.StatusBadRequest,
			expectedBody:   `"error":"invalid request body"`,
		},
		{
			name:           "нулевая сумма не проходит валидацию",
			body:           `{"amount":0}`,
			withUID:        true,
			setupMocks:     func(_ *MockUserLoader, _ *MockService) {},
			expectedStatus: http.StatusUnprocessableEntity,
			expectedBody:   `field Amount is a required field`,
		},
		{
			name:           "нет uid в контексте",
			body:           `{"amount":4990}`,
			withUID:        false,
			setupMocks:     func(_ *MockUserLoader, _ *MockService) {},
			expectedStatus: http.StatusUnauthorized,
			expectedBody:   `"error":"unauthorized"`,
		},
		{
			name:    "ошибка сервиса",
			body:    `{"amount":4990}`,
			withUID: true,
			setupMocks: func(u *MockUserLoader, s *MockService) {
				u.On("GetUser", mock.Anything, "uid-1").Return(user, nil)
				s.On("Create", mock.Anything, user, 4990.0).
					Return("", errors.New("db down"))
			},
			expectedStatus: http.StatusInternalServerError,
			expectedBody:   `"error":"could not create payment request"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockUsers := new(MockUserLoader)
			mockService := new(MockService)
			tt.setupMocks(mockUsers, mockService)

			handler := New(logger, mockUsers, mockService)

			req := httptest.NewRequest(http.MethodPost, "/payments/requests", strings.NewReader(tt.body))
			if tt.withUID {
				req = req.WithContext(context.WithValue(req.Context(), middlewarectx.UserUID, "uid-1"))
			}

			w := httptest.NewRecorder()
			handler.ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			assert.True(t, strings.Contains(w.Body.String(), tt.expectedBody),
				"response body should contain %s, got %s", tt.expectedBody, w.Body.String())

			mockUsers.AssertExpectations(t)
			mockService.AssertExpectations(t)
		})
	}
}

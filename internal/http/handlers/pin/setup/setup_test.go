package setup

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
	"github.com/magabrotheeeer/fleet-control/internal/lib/pincode"
	"github.com/magabrotheeeer/fleet-control/internal/services/pin"
)

// MockService реализует интерфейс setup.Service
type MockService struct {
	mock.Mock
}

func (m *MockService) Setup(ctx context.Context, ownerUID, ownerEmail, pinCode, confirm string) error {
	return m.Called(ctx, ownerUID, ownerEmail, pinCode, confirm).Error(0)
}

func TestSetupHandler(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))

	tests := []struct {
		name           string
		body           string
		withUID        bool
		setupMock      func(*MockService)
		expectedStatus int
		expectedBody   string
	}{
		{
			name:    "успешная установка pin",
			body:    `{"pin":"1234","confirm":"1234"}`,
			withUID: true,
			setupMock: func(m *MockService) {
				m.On("Setup", mock.Anything, "uid-1", "owner@example.com", "1234", "1234").
					Return(nil)
			},
			expectedStatus: http.StatusOK,
			expectedBody:   `{"status":"OK"`,
		},
		{
			name:           "некорректный JSON",
			body:           `{pin}`,
			withUID:        true,
			setupMock:      func(_ *MockService) {},
			expectedStatus: http.StatusBadRequest,
			expectedBody:   `"error":"invalid request body"`,
		},
		{
			name:           "пустое подтверждение не проходит валидацию",
			body:           `{"pin":"1234"}`,
			withUID:        true,
			setupMock:      func(_ *MockService) {},
			expectedStatus: http.StatusUnprocessableEntity,
			expectedBody:   `field Confirm is a required field`,
		},
		{
			name:           "нет uid в контексте",
			body:           `{"pin":"1234","confirm":"1234"}`,
			withUID:        false,
			setupMock:      func(_ *MockService) {},
			expectedStatus: http.StatusUnauthorized,
			expectedBody:   `"error":"unauthorized"`,
		},
		{
			name:    "неверный формат pin",
			body:    `{"pin":"12a4","confirm":"12a4"}`,
			withUID: true,
			setupMock: func(m *MockService) {
				m.On("Setup", mock.Anything, "uid-1", "owner@example.com", "12a4", "12a4").
					Return(pincode.ErrInvalidFormat)
			},
			expectedStatus: http.StatusUnprocessableEntity,
			expectedBody:   `"error":"MPIN must be exactly 4 digits"`,
		},
		{
			name:    "подтверждение не совпало",
			body:    `{"pin":"1234","confirm":"4321"}`,
			withUID: true,
			setupMock: func(m *MockService) {
				m.On("Setup", mock.Anything, "uid-1", "owner@example.com", "1234", "4321").
					Return(pin.ErrMismatch)
			},
			expectedStatus: http.StatusConflict,
			expectedBody:   `"error":"pin confirmation does not match"`,
		},
		{
			name:    "ошибка сервиса",
			body:    `{"pin":"1234","confirm":"1234"}`,
			withUID: true,
			setupMock: func(m *MockService) {
				m.On("Setup", mock.Anything, "uid-1", "owner@example.com", "1234", "1234").
					Return(errors.New("db down"))
			},
			expectedStatus: http.StatusInternalServerError,
			expectedBody:   `"error":"could not setup pin"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := new(MockService)
			tt.setupMock(mockService)

			handler := New(logger, mockService)

			req := httptest.NewRequest(http.MethodPost, "/pin", strings.NewReader(tt.body))
			if tt.withUID {
				ctx := context.WithValue(req.Context(), middlewarectx.UserUID, "uid-1")
				ctx = context.WithValue(ctx, middlewarectx.Email, "owner@example.com")
				req = req.WithContext(ctx)
			}

			w := httptest.NewRecorder()
			handler.ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			assert.True(t, strings.Contains(w.Body.String(), tt.expectedBody),
				"response body should contain %s, got %s", tt.expectedBody, w.Body.String())

			mockService.AssertExpectations(t)
		})
	}
}

package verifyotp

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

	"github.com/magabrotheeeer/course-marketplace/internal/models"
	auth "github.com/magabrotheeeer/course-marketplace/internal/services/auth"
)

// MockService реализует интерфейс verifyotp.Service
type MockService struct {
	mock.Mock
}

func (m *MockService) VerifyOtp(ctx context.Context, email, otp, role string) (*models.User, error) {
	args := m.Called(ctx, email, otp, role)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func TestVerifyOtpHandler(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))

	tests := []struct {
		name           string
		body           string
		setupMock      func(*MockService)
		expectedStatus int
		expectedBody   string
	}{
		{
			name: "успешная проверка кода создает пользователя",
			body: `{"email":"new@example.com","otp":"482910"}`,
			setupMock: func(m *MockService) {
				m.On("VerifyOtp", mock.Anything, "new@example.com", "482910", "").
					Return(&models.User{UID: "uid-1", Username: "newbie",
						Email: "new@example.com", Role: "student"}, nil)
			},
			expectedStatus: http.StatusCreated,
			expectedBody:   `"id":"uid-1"`,
		},
		{
			name: "роль instructor передается в сервис",
			body: `{"email":"new@example.com","otp":"482910","role":"instructor"}`,
			setupMock: func(m *MockService) {
				m.On("VerifyOtp", mock.Anything, "new@example.com", "482910", "instructor").
					Return(&models.User{UID: "uid-2", Role: "instructor"}, nil)
			},
			expectedStatus: http.StatusCreated,
			expectedBody:   `"role":"instructor"`,
		},
		{
			name:           "роль admin отклоняется валидацией",
			body:           `{"email":"new@example.com","otp":"482910","role":"admin"}`,
			setupMock:      func(_ *MockService) {},
			expectedStatus: http.StatusUnprocessableEntity,
			expectedBody:   `field Role must be one of: student instructor`,
		},
		{
			name: "неверный код",
			body: `{"email":"new@example.com","otp":"000000"}`,
			setupMock: func(m *MockService) {
				m.On("VerifyOtp", mock.Anything, "new@example.com", "000000", "").
					Return(nil, auth.ErrOtpInvalid)
			},
			expectedStatus: http.StatusBadRequest,
			expectedBody:   `"error":"invalid otp"`,
		},
		{
			name: "код истёк",
			body: `{"email":"new@example.com","otp":"482910"}`,
			setupMock: func(m *MockService) {
				m.On("VerifyOtp", mock.Anything, "new@example.com", "482910", "").
					Return(nil, auth.ErrOtpExpired)
			},
			expectedStatus: http.StatusBadRequest,
			expectedBody:   `"error":"otp has expired"`,
		},
		{
			name:           "код не шестизначный",
			body:           `{"email":"new@example.com","otp":"12345"}`,
			setupMock:      func(_ *MockService) {},
			expectedStatus: http.StatusUnprocessableEntity,
			expectedBody:   `field Otp is not a valid`,
		},
		{
			name:           "некорректный JSON",
			body:           `{"email":`,
			setupMock:      func(_ *MockService) {},
			expectedStatus: http.StatusBadRequest,
			expectedBody:   `"error":"invalid request body"`,
		},
		{
			name: "внутренняя ошибка сервиса",
			body: `{"email":"new@example.com","otp":"482910"}`,
			setupMock: func(m *MockService) {
				m.On("VerifyOtp", mock.Anything, "new@example.com", "482910", "").
					Return(nil, errors.New("db down"))
			},
			expectedStatus: http.StatusInternalServerError,
			expectedBody:   `"error":"could not verify otp"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := new(MockService)
			tt.setupMock(mockService)

			handler := New(logger, mockService)

			req := httptest.NewRequest(http.MethodPost, "/auth/verify-otp", strings.NewReader(tt.body))
			w := httptest.NewRecorder()

			handler.ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			assert.True(t, strings.Contains(w.Body.String(), tt.expectedBody),
				"response body should contain %s, got %s", tt.expectedBody, w.Body.String())

			mockService.AssertExpectations(t)
		})
	}
}

package subscribe

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

	subscription "github.com/magabrotheeeer/course-marketplace/internal/services/subscription"
)

// MockService реализует интерфейс subscribe.Service
type MockService struct {
	mock.Mock
}

func (m *MockService) Subscribe(ctx context.Context, userUID, courseID string) (string, error) {
	args := m.Called(ctx, userUID, courseID)
	return args.String(0), args.Error(1)
}

const (
	userUID  = "3f8a2c10-5a6d-4a4f-9a15-111111111111"
	courseID = "7b9d4e20-1c2b-4f3a-8b26-222222222222"
)

func TestSubscribeHandler(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))

	body := `{"user_id":"` + userUID + `","course_id":"` + courseID + `"}`

	tests := []struct {
		name           string
		body           string
		setupMock      func(*MockService)
		expectedStatus int
		expectedBody   string
	}{
		{
			name: "первая запись создана",
			body: body,
			setupMock: func(m *MockService) {
				m.On("Subscribe", mock.Anything, userUID, courseID).
					Return(subscription.StatusCreated, nil)
			},
			expectedStatus: http.StatusCreated,
			expectedBody:   `"status":"created"`,
		},
		{
			name: "курс добавлен к существующим",
			body: body,
			setupMock: func(m *MockService) {
				m.On("Subscribe", mock.Anything, userUID, courseID).
					Return(subscription.StatusAdded, nil)
			},
			expectedStatus: http.StatusOK,
			expectedBody:   `"status":"added"`,
		},
		{
			name: "истёкший доступ продлён",
			body: body,
			setupMock: func(m *MockService) {
				m.On("Subscribe", mock.Anything, userUID, courseID).
					Return(subscription.StatusRenewed, nil)
			},
			expectedStatus: http.StatusOK,
			expectedBody:   `"status":"renewed"`,
		},
		{
			name: "доступ ещё действует",
			body: body,
			setupMock: func(m *MockService) {
				m.On("Subscribe", mock.Anything, userUID, courseID).
					Return("", subscription.ErrAlreadyActive)
			},
			expectedStatus: http.StatusBadRequest,
			expectedBody:   `"error":"subscription is still active"`,
		},
		{
			name: "курс не найден",
			body: body,
			setupMock: func(m *MockService) {
				m.On("Subscribe", mock.Anything, userUID, courseID).
					Return("", subscription.ErrCourseNotFound)
			},
			expectedStatus: http.StatusNotFound,
			expectedBody:   `"error":"course not found"`,
		},
		{
			name:           "не uuid в запросе",
			body:           `{"user_id":"abc","course_id":"def"}`,
			setupMock:      func(_ *MockService) {},
			expectedStatus: http.StatusUnprocessableEntity,
			expectedBody:   `field UserUID can contain only uuid`,
		},
		{
			name: "ошибка сервиса",
			body: body,
			setupMock: func(m *MockService) {
				m.On("Subscribe", mock.Anything, userUID, courseID).
					Return("", errors.New("db down"))
			},
			expectedStatus: http.StatusInternalServerError,
			expectedBody:   `"error":"could not subscribe"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := new(MockService)
			tt.setupMock(mockService)

			handler := New(logger, mockService)

			req := httptest.NewRequest(http.MethodPost, "/subscription/set-course", strings.NewReader(tt.body))
			w := httptest.NewRecorder()

			handler.ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			assert.True(t, strings.Contains(w.Body.String(), tt.expectedBody),
				"response body should contain %s, got %s", tt.expectedBody, w.Body.String())

			mockService.AssertExpectations(t)
		})
	}
}

package create

import (
	"bytes"
	"context"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/course-marketplace/internal/http/middlewarectx"
	"github.com/magabrotheeeer/course-marketplace/internal/models"
	course "github.com/magabrotheeeer/course-marketplace/internal/services/course"
)

// MockService реализует интерфейс create.Service
type MockService struct {
	mock.Mock
}

func (m *MockService) Create(ctx context.Context, instructor *models.User,
	req models.DummyCourse, media course.CourseMedia) (string, error) {
	args := m.Called(ctx, instructor, req, media)
	return args.String(0), args.Error(1)
}

// MockSaver реализует интерфейс create.FileSaver
type MockSaver struct {
	mock.Mock
}

func (m *MockSaver) SaveFile(fh *multipart.FileHeader) (string, error) {
	args := m.Called(fh)
	return args.String(0), args.Error(1)
}

// buildForm собирает multipart-запрос публикации курса. Видео добавляется
// только при withVideo.
func buildForm(t *testing.T, withVideo bool) (*bytes.Buffer, string) {
	t.Helper()

	buf := new(bytes.Buffer)
	mw := multipart.NewWriter(buf)

	require.NoError(t, mw.WriteField("title", "Go Basics"))
	require.NoError(t, mw.WriteField("description", "Вводный курс по Go"))
	require.NoError(t, mw.WriteField("price", "1500"))
	require.NoError(t, mw.WriteField("category", "programming"))

	if withVideo {
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", `form-data; name="video"; filename="lesson1.mp4"`)
		h.Set("Content-Type", "video/mp4")
		part, err := mw.CreatePart(h)
		require.NoError(t, err)
		_, err = part.Write([]byte("fake video bytes"))
		require.NoError(t, err)
	}

	require.NoError(t, mw.Close())
	return buf, mw.FormDataContentType()
}

func authedRequest(body *bytes.Buffer, contentType string) *http.Request {
	req := httptest.NewRequest(http.MethodPost, "/courses/create", body)
	req.Header.Set("Content-Type", contentType)

	ctx := context.WithValue(req.Context(), middlewarectx.UserUID, "inst-1")
	ctx = context.WithValue(ctx, middlewarectx.User, "teacher1")
	ctx = context.WithValue(ctx, middlewarectx.Email, "teacher@example.com")
	return req.WithContext(ctx)
}

func TestCreateCourseHandler(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))

	t.Run("успешная публикация возвращает 201", func(t *testing.T) {
		mockService := new(MockService)
		mockSaver := new(MockSaver)
		mockSaver.On("SaveFile", mock.Anything).Return("uploads/videos/1-1.mp4", nil).Once()
		mockService.On("Create", mock.Anything,
			mock.MatchedBy(func(u *models.User) bool { return u.UID == "inst-1" }),
			mock.MatchedBy(func(r models.DummyCourse) bool {
				return r.Title == "Go Basics" && r.Price == 1500
			}),
			mock.MatchedBy(func(m course.CourseMedia) bool {
				return m.VideoURL == "uploads/videos/1-1.mp4"
			})).Return("course-1", nil).Once()

		body, contentType := buildForm(t, true)
		w := httptest.NewRecorder()

		New(logger, mockService, mockSaver).ServeHTTP(w, authedRequest(body, contentType))

		assert.Equal(t, http.StatusCreated, w.Code)
		assert.True(t, strings.Contains(w.Body.String(), `"id":"course-1"`),
			"response body should contain course id, got %s", w.Body.String())

		mockService.AssertExpectations(t)
		mockSaver.AssertExpectations(t)
	})

	t.Run("без видео публикация отклоняется", func(t *testing.T) {
		mockService := new(MockService)
		mockSaver := new(MockSaver)

		body, contentType := buildForm(t, false)
		w := httptest.NewRecorder()

		New(logger, mockService, mockSaver).ServeHTTP(w, authedRequest(body, contentType))

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.True(t, strings.Contains(w.Body.String(), `"error":"video file is required"`),
			"got %s", w.Body.String())
		mockService.AssertNotCalled(t, "Create")
	})

	t.Run("без аутентификации отдает 401", func(t *testing.T) {
		body, contentType := buildForm(t, true)
		req := httptest.NewRequest(http.MethodPost, "/courses/create", body)
		req.Header.Set("Content-Type", contentType)
		w := httptest.NewRecorder()

		New(logger, new(MockService), new(MockSaver)).ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})
}

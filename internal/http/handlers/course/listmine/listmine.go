// Package listmine реализует HTTP-обработчик получения курсов преподавателя.
package listmine

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/course-marketplace/internal/http/response"
	"github.com/magabrotheeeer/course-marketplace/internal/lib/sl"
	"github.com/magabrotheeeer/course-marketplace/internal/models"
)

// Handler обрабатывает запросы на получение курсов преподавателя.
type Handler struct {
	log     *slog.Logger // Логгер для записи информации и ошибок
	service Service      // Сервис бизнес-логики каталога
}

// Service описывает интерфейс бизнес-логики получения курсов преподавателя.
type Service interface {
	ListMine(ctx context.Context, instructorUID string) ([]*models.Course, error)
}

// New создает новый Handler с переданным логгером и сервисом.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

// ServeHTTP godoc
// @Summary Получить курсы преподавателя
// @Description Возвращает курсы, созданные указанным преподавателем. Доступно самому преподавателю и администратору.
// @Tags Courses
// @Produce  json
// @Success 200 {object} map[string]any "Список курсов"
// @Param id path string true "UID преподавателя"
// @Failure 400 {object} response.ErrorResponse "Не указан UID преподавателя"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера при получении курсов"
// @Security BearerAuth
// @Router /courses/instructorCourse/{id} [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.course.listmine"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	instructorUID := chi.URLParam(r, "id")
	if instructorUID == "" {
		log.Error("instructor uid is missing in url")
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("instructor id is required"))
		return
	}

	courses, err := h.service.ListMine(r.Context(), instructorUID)
	if err != nil {
		log.Error("failed to list instructor courses", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not list courses"))
		return
	}

	log.Info("instructor courses listed", slog.Int("count", len(courses)))
	render.JSON(w, r, response.OKWithData(map[string]any{
		"courses": courses,
		"count":   len(courses),
	}))
}

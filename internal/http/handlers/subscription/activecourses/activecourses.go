// Package activecourses реализует HTTP-обработчик получения курсов
// с действующим доступом.
package activecourses

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

// Handler обрабатывает запросы на получение активных курсов пользователя.
type Handler struct {
	log     *slog.Logger // Логгер для записи информации и ошибок
	service Service      // Сервис бизнес-логики доступа к курсам
}

// Service описывает интерфейс бизнес-логики получения активных курсов.
type Service interface {
	ListActive(ctx context.Context, userUID string) ([]*models.Course, error)
}

// New создает новый Handler с переданным логгером и сервисом.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

// ServeHTTP godoc
// @Summary Получить активные курсы пользователя
// @Description Возвращает курсы, доступ к которым у пользователя ещё действует. Истёкшие записи предварительно помечаются неактивными.
// @Tags Subscriptions
// @Produce  json
// @Param id path string true "UID пользователя"
// @Success 200 {object} map[string]any "Список активных курсов"
// @Failure 401 {object} response.ErrorResponse "Пользователь не авторизован"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера при получении курсов"
// @Security BearerAuth
// @Router /subscription/get-course/{id} [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.subscription.activecourses"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	userUID := chi.URLParam(r, "id")
	if userUID == "" {
		log.Error("user uid is missing")
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("user id is required"))
		return
	}

	courses, err := h.service.ListActive(r.Context(), userUID)
	if err != nil {
		log.Error("failed to list active courses", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not list active courses"))
		return
	}

	log.Info("active courses listed", slog.Int("count", len(courses)))
	render.JSON(w, r, response.OKWithData(map[string]any{
		"courses": courses,
		"count":   len(courses),
	}))
}

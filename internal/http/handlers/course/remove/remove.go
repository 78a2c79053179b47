// Package remove реализует HTTP-обработчик удаления курса.
//
// Преподаватель может удалять только свои курсы, администратор — любые.
package remove

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/course-marketplace/internal/http/middlewarectx"
	"github.com/magabrotheeeer/course-marketplace/internal/http/response"
	"github.com/magabrotheeeer/course-marketplace/internal/lib/sl"
	course "github.com/magabrotheeeer/course-marketplace/internal/services/course"
)

// Handler обрабатывает запросы на удаление курса.
type Handler struct {
	log     *slog.Logger // Логгер для записи информации и ошибок
	service Service      // Сервис бизнес-логики каталога
}

// Service описывает интерфейс бизнес-логики удаления курса.
type Service interface {
	Remove(ctx context.Context, id, callerUID, callerRole string) error
}

// New создает новый Handler с переданным логгером и сервисом.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

// ServeHTTP godoc
// @Summary Удалить курс
// @Description Удаляет курс по ID вместе с записями о доступе к нему.
// @Tags Courses
// @Produce  json
// @Param id path string true "ID курса"
// @Success 200 {object} response.Response "Курс удалён"
// @Failure 401 {object} response.ErrorResponse "Пользователь не авторизован"
// @Failure 403 {object} response.ErrorResponse "Курс принадлежит другому преподавателю"
// @Failure 404 {object} response.ErrorResponse "Курс не найден"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера при удалении курса"
// @Security BearerAuth
// @Router /courses/deleteCourse/{id} [delete]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.course.remove"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	id := chi.URLParam(r, "id")
	callerUID, okUID := r.Context().Value(middlewarectx.UserUID).(string)
	callerRole, okRole := r.Context().Value(middlewarectx.Role).(string)
	if !okUID || !okRole || callerUID == "" {
		log.Error("user identification missing")
		w.WriteHeader(http.StatusUnauthorized)
		render.JSON(w, r, response.Error("unauthorized"))
		return
	}

	if err := h.service.Remove(r.Context(), id, callerUID, callerRole); err != nil {
		switch {
		case errors.Is(err, course.ErrCourseNotFound):
			log.Error("course not found", slog.String("id", id))
			w.WriteHeader(http.StatusNotFound)
			render.JSON(w, r, response.Error("course not found"))
		case errors.Is(err, course.ErrNotOwner):
			log.Error("course belongs to another instructor", slog.String("id", id))
			w.WriteHeader(http.StatusForbidden)
			render.JSON(w, r, response.Error("access denied"))
		default:
			log.Error("failed to remove course", sl.Err(err))
			w.WriteHeader(http.StatusInternalServerError)
			render.JSON(w, r, response.Error("could not remove course"))
		}
		return
	}

	log.Info("course removed", slog.String("id", id))
	render.JSON(w, r, response.OK())
}

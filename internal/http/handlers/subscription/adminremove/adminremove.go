// Package adminremove реализует HTTP-обработчик административного удаления
// записи о доступе пользователя к курсу.
package adminremove

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/magabrotheeeer/course-marketplace/internal/http/response"
	"github.com/magabrotheeeer/course-marketplace/internal/lib/sl"
)

// Request — структура входных данных для удаления записи о доступе.
type Request struct {
	UserUID  string `json:"user_id" validate:"required,uuid"`
	CourseID string `json:"course_id" validate:"required,uuid"`
}

// Handler управляет административными запросами на удаление доступа.
type Handler struct {
	log      *slog.Logger        // Логгер для записи информации и ошибок
	service  Service             // Сервис бизнес-логики доступа к курсам
	validate *validator.Validate // Валидатор структуры входящих данных
}

// Service описывает интерфейс бизнес-логики удаления записи о доступе.
type Service interface {
	AdminRemove(ctx context.Context, userUID, courseID string) (int, error)
}

// New создает новый Handler с переданными логгером и сервисом.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:      log,
		service:  service,
		validate: validator.New(),
	}
}

// ServeHTTP godoc
// @Summary Удалить запись о доступе (админ)
// @Description Удаляет запись о доступе пользователя к курсу.
// @Tags Subscriptions
// @Accept  json
// @Produce  json
// @Param request body Request true "Пользователь и курс"
// @Success 200 {object} map[string]any "Количество удалённых записей"
// @Failure 400 {object} response.ErrorResponse "Некорректный JSON"
// @Failure 404 {object} response.ErrorResponse "Запись не найдена"
// @Failure 422 {object} response.ErrorResponse "Ошибка валидации"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера при удалении записи"
// @Security BearerAuth
// @Router /subscription/remove-course [put]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.subscription.adminremove"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	var req Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Error("failed to decode request", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid request body"))
		return
	}

	if err := h.validate.Struct(req); err != nil {
		log.Error("validation failed", sl.Err(err))
		w.WriteHeader(http.StatusUnprocessableEntity)
		render.JSON(w, r, response.ValidationError(err.(validator.ValidationErrors)))
		return
	}

	count, err := h.service.AdminRemove(r.Context(), req.UserUID, req.CourseID)
	if err != nil {
		log.Error("failed to remove entitlement", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not remove entitlement"))
		return
	}
	if count == 0 {
		log.Error("entitlement not found", slog.String("user_uid", req.UserUID),
			slog.String("course_id", req.CourseID))
		w.WriteHeader(http.StatusNotFound)
		render.JSON(w, r, response.Error("entitlement not found"))
		return
	}

	log.Info("entitlement removed", slog.Int("count", count))
	render.JSON(w, r, response.OKWithData(map[string]any{
		"removed": count,
	}))
}

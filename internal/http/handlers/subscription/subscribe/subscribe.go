// Package subscribe реализует HTTP-обработчик оформления доступа к курсу.
//
// Handler принимает пару (пользователь, курс) и делегирует решение
// бизнес-логике: создать запись, продлить истёкшую или отклонить запрос,
// если доступ ещё действует.
package subscribe

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/magabrotheeeer/course-marketplace/internal/http/response"
	"github.com/magabrotheeeer/course-marketplace/internal/lib/sl"
	subscription "github.com/magabrotheeeer/course-marketplace/internal/services/subscription"
)

// Request — структура входных данных для оформления доступа.
type Request struct {
	UserUID  string `json:"user_id" validate:"required,uuid"`
	CourseID string `json:"course_id" validate:"required,uuid"`
}

// Handler управляет HTTP-запросами на оформление доступа к курсам.
type Handler struct {
	log      *slog.Logger        // Логгер для записи информации и ошибок
	service  Service             // Сервис бизнес-логики доступа к курсам
	validate *validator.Validate // Валидатор структуры входящих данных
}

// Service описывает интерфейс бизнес-логики оформления доступа.
type Service interface {
	Subscribe(ctx context.Context, userUID, courseID string) (string, error)
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
// @Summary Оформить доступ к курсу
// @Description Выдает пользователю доступ к курсу на месяц. Истёкший доступ продлевается, действующий — не изменяется.
// @Tags Subscriptions
// @Accept  json
// @Produce  json
// @Param request body Request true "Пользователь и курс"
// @Success 200 {object} map[string]any "Статус операции: added или renewed"
// @Success 201 {object} map[string]any "Первая запись пользователя: created"
// @Failure 400 {object} response.ErrorResponse "Некорректный JSON или ещё действующий доступ"
// @Failure 404 {object} response.ErrorResponse "Курс не найден"
// @Failure 422 {object} response.ErrorResponse "Ошибка валидации"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера при оформлении доступа"
// @Security BearerAuth
// @Router /subscription/set-course [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.subscription.subscribe"
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
	log.Info("request body decoded", slog.Any("request", req))

	if err := h.validate.Struct(req); err != nil {
		log.Error("validation failed", sl.Err(err))
		w.WriteHeader(http.StatusUnprocessableEntity)
		render.JSON(w, r, response.ValidationError(err.(validator.ValidationErrors)))
		return
	}
	log.Info("all fields are validated")

	status, err := h.service.Subscribe(r.Context(), req.UserUID, req.CourseID)
	if err != nil {
		switch {
		case errors.Is(err, subscription.ErrCourseNotFound):
			log.Error("course not found", slog.String("course_id", req.CourseID))
			w.WriteHeader(http.StatusNotFound)
			render.JSON(w, r, response.Error("course not found"))
		case errors.Is(err, subscription.ErrAlreadyActive):
			log.Error("subscription is still active", slog.String("course_id", req.CourseID))
			w.WriteHeader(http.StatusBadRequest)
			render.JSON(w, r, response.Error("subscription is still active"))
		default:
			log.Error("failed to subscribe", sl.Err(err))
			w.WriteHeader(http.StatusInternalServerError)
			render.JSON(w, r, response.Error("could not subscribe"))
		}
		return
	}

	log.Info("subscription processed", slog.String("status", status))
	if status == subscription.StatusCreated {
		w.WriteHeader(http.StatusCreated)
	}
	render.JSON(w, r, response.OKWithData(map[string]any{
		"status": status,
	}))
}

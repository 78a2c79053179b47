// Package adminset реализует HTTP-обработчик административной записи доступа.
//
// Handler позволяет администратору выдать или переопределить доступ
// пользователя к курсу с произвольными датами, минуя обычный путь
// оформления. Операция проходит через тот же сервис, что и обычное
// оформление, поэтому кеш активных курсов инвалидируется одинаково.
package adminset

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
	"github.com/magabrotheeeer/course-marketplace/internal/models"
	subscription "github.com/magabrotheeeer/course-marketplace/internal/services/subscription"
)

// Handler управляет административными запросами на запись доступа.
type Handler struct {
	log      *slog.Logger        // Логгер для записи информации и ошибок
	service  Service             // Сервис бизнес-логики доступа к курсам
	validate *validator.Validate // Валидатор структуры входящих данных
}

// Service описывает интерфейс бизнес-логики административной записи доступа.
type Service interface {
	AdminSet(ctx context.Context, req models.DummyEntitlement) (int, error)
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
// @Summary Записать доступ к курсу (админ)
// @Description Выдает или переопределяет доступ пользователя к курсу с произвольными датами.
// @Tags Subscriptions
// @Accept  json
// @Produce  json
// @Param request body models.DummyEntitlement true "Данные записи о доступе"
// @Success 200 {object} map[string]any "ID записи"
// @Failure 400 {object} response.ErrorResponse "Некорректный JSON или даты"
// @Failure 404 {object} response.ErrorResponse "Курс не найден"
// @Failure 422 {object} response.ErrorResponse "Ошибка валидации"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера при записи доступа"
// @Security BearerAuth
// @Router /subscription/add-course [put]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.subscription.adminset"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	var req models.DummyEntitlement
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
	log.Info("all fields are validated")

	id, err := h.service.AdminSet(r.Context(), req)
	if err != nil {
		if errors.Is(err, subscription.ErrCourseNotFound) {
			log.Error("course not found", slog.String("course_id", req.CourseID))
			w.WriteHeader(http.StatusNotFound)
			render.JSON(w, r, response.Error("course not found"))
			return
		}
		log.Error("failed to set entitlement", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("could not set entitlement"))
		return
	}

	log.Info("entitlement set", slog.Int("id", id))
	render.JSON(w, r, response.OKWithData(map[string]any{
		"id": id,
	}))
}

// Package list реализует HTTP-обработчик получения всех записей о доступе
// пользователя, включая истёкшие.
package list

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

// Handler обрабатывает запросы на получение записей о доступе пользователя.
type Handler struct {
	log     *slog.Logger // Логгер для записи информации и ошибок
	service Service      // Сервис бизнес-логики доступа к курсам
}

// Service описывает интерфейс бизнес-логики получения записей о доступе.
type Service interface {
	ListEntitlements(ctx context.Context, userUID string) ([]*models.Entitlement, error)
}

// New создает новый Handler с переданным логгером и сервисом.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

// ServeHTTP godoc
// @Summary Получить записи о доступе пользователя
// @Description Возвращает все записи о доступе пользователя к курсам, включая истёкшие.
// @Tags Subscriptions
// @Produce  json
// @Param id path string true "UID пользователя"
// @Success 200 {object} map[string]any "Список записей"
// @Failure 401 {object} response.ErrorResponse "Пользователь не авторизован"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера при получении записей"
// @Security BearerAuth
// @Router /subscription/list/{id} [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.subscription.list"

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

	entitlements, err := h.service.ListEntitlements(r.Context(), userUID)
	if err != nil {
		log.Error("failed to list entitlements", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not list entitlements"))
		return
	}

	log.Info("entitlements listed", slog.Int("count", len(entitlements)))
	render.JSON(w, r, response.OKWithData(map[string]any{
		"entitlements": entitlements,
		"count":        len(entitlements),
	}))
}

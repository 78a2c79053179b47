// Package removeaddress реализует HTTP-обработчик удаления адреса
// из адресной книги пользователя.
package removeaddress

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/course-marketplace/internal/http/response"
	"github.com/magabrotheeeer/course-marketplace/internal/lib/sl"
	user "github.com/magabrotheeeer/course-marketplace/internal/services/user"
)

// Handler обрабатывает запросы на удаление адреса пользователя.
type Handler struct {
	log     *slog.Logger // Логгер для записи информации и ошибок
	service Service      // Сервис бизнес-логики пользователей
}

// Service описывает интерфейс бизнес-логики удаления адреса.
type Service interface {
	RemoveAddress(ctx context.Context, userUID, addressID string) error
}

// New создает новый Handler с переданным логгером и сервисом.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

// ServeHTTP godoc
// @Summary Удалить адрес пользователя
// @Description Удаляет один адрес из адресной книги пользователя.
// @Tags Users
// @Produce  json
// @Param id path string true "UID пользователя"
// @Param addressId path string true "ID адреса"
// @Success 200 {object} response.Response "Адрес удалён"
// @Failure 404 {object} response.ErrorResponse "Адрес не найден"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера при удалении адреса"
// @Security BearerAuth
// @Router /users/{id}/addresses/{addressId} [delete]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.user.removeaddress"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	userUID := chi.URLParam(r, "id")
	addressID := chi.URLParam(r, "addressId")
	if userUID == "" || addressID == "" {
		log.Error("user uid or address id is missing")
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("user id and address id are required"))
		return
	}

	if err := h.service.RemoveAddress(r.Context(), userUID, addressID); err != nil {
		if errors.Is(err, user.ErrUserNotFound) {
			log.Error("address not found", slog.String("address_id", addressID))
			w.WriteHeader(http.StatusNotFound)
			render.JSON(w, r, response.Error("address not found"))
			return
		}
		log.Error("failed to remove address", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not remove address"))
		return
	}

	log.Info("address removed", slog.String("address_id", addressID))
	render.JSON(w, r, response.OK())
}

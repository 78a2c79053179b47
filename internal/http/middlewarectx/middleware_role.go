package middlewarectx

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"slices"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/magabrotheeeer/course-marketplace/internal/http/response"
)

// SelfRole — специальное значение в списке ролей: доступ разрешается,
// если запрос относится к самому пользователю. Пользователь, о котором
// идет речь, определяется по URL-параметру id или по полю user_id тела.
const SelfRole = "self"

// RoleMiddleware возвращает HTTP middleware, который пропускает запрос,
// только если роль пользователя входит в allowed. Значение SelfRole
// дополнительно разрешает пользователю операции над собственными данными.
//
// Запрос без данных пользователя в контексте отклоняется с 401,
// недостаточная роль — с 403 Forbidden.
func RoleMiddleware(log *slog.Logger, allowed ...string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			const op = "middlewarectx.RoleMiddleware"

			log := log.With(
				slog.String("op", op),
				slog.String("request_id", middleware.GetReqID(r.Context())),
			)

			userUID, okUID := r.Context().Value(UserUID).(string)
			role, okRole := r.Context().Value(Role).(string)
			if !okUID || !okRole || userUID == "" {
				log.Error("user identification missing")
				render.Status(r, http.StatusUnauthorized)
				render.JSON(w, r, response.Error("user identification missing"))
				return
			}

			if slices.Contains(allowed, role) {
				next.ServeHTTP(w, r)
				return
			}
			if slices.Contains(allowed, SelfRole) && userUID == subjectUID(r) {
				next.ServeHTTP(w, r)
				return
			}

			log.Error("access denied", slog.String("role", role))
			render.Status(r, http.StatusForbidden)
			render.JSON(w, r, response.Error("access denied"))
		})
	}
}

// subjectUID определяет, о каком пользователе идет речь в запросе:
// сначала по URL-параметру id, затем по полю user_id JSON-тела.
// Тело восстанавливается, чтобы обработчик мог прочитать его повторно.
func subjectUID(r *http.Request) string {
	if id := chi.URLParam(r, "id"); id != "" {
		return id
	}
	if r.Body == nil {
		return ""
	}

	body, err := io.ReadAll(r.Body)
	_ = r.Body.Close()
	r.Body = io.NopCloser(bytes.NewReader(body))
	if err != nil {
		return ""
	}

	var payload struct {
		UserUID string `json:"user_id"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return ""
	}
	return payload.UserUID
}

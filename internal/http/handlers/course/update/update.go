// Package update реализует HTTP-обработчик редактирования курса.
//
// Handler принимает multipart-запрос с новыми данными курса. Все файлы
// опциональны: не переданные файлы остаются прежними. Преподаватель может
// редактировать только свои курсы, администратор — любые.
package update

import (
	"context"
	"errors"
	"log/slog"
	"mime/multipart"
	"net/http"
	"strconv"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/magabrotheeeer/course-marketplace/internal/http/middlewarectx"
	"github.com/magabrotheeeer/course-marketplace/internal/http/response"
	"github.com/magabrotheeeer/course-marketplace/internal/lib/sl"
	"github.com/magabrotheeeer/course-marketplace/internal/models"
	course "github.com/magabrotheeeer/course-marketplace/internal/services/course"
)

const maxMultipartMemory = 32 << 20

// Handler управляет HTTP-запросами на редактирование курсов.
type Handler struct {
	log      *slog.Logger        // Логгер для записи информации и ошибок
	service  Service             // Сервис бизнес-логики каталога
	saver    FileSaver           // Сохранение загруженных файлов на диск
	validate *validator.Validate // Валидатор структуры входящих данных
}

// Service описывает интерфейс бизнес-логики редактирования курса.
type Service interface {
	Update(ctx context.Context, id, callerUID, callerRole string,
		req models.DummyCourse, media course.CourseMedia) error
}

// FileSaver сохраняет загруженный файл и возвращает его относительный путь.
type FileSaver interface {
	SaveFile(fh *multipart.FileHeader) (string, error)
}

// New создает новый Handler с переданными логгером, сервисом и сейвером файлов.
func New(log *slog.Logger, service Service, saver FileSaver) *Handler {
	return &Handler{
		log:      log,
		service:  service,
		saver:    saver,
		validate: validator.New(),
	}
}

// ServeHTTP godoc
// @Summary Отредактировать курс
// @Description Обновляет данные курса. Не переданные файлы остаются прежними.
// @Tags Courses
// @Accept  multipart/form-data
// @Produce  json
// @Param id path string true "ID курса"
// @Param title formData string true "Название курса"
// @Param description formData string true "Описание курса"
// @Param price formData number true "Цена курса"
// @Param category formData string true "Категория курса"
// @Param video formData file false "Видео курса"
// @Param image formData file false "Обложка курса"
// @Param resource formData file false "Дополнительные материалы"
// @Success 200 {object} response.Response "Курс обновлён"
// @Failure 400 {object} response.ErrorResponse "Некорректный запрос"
// @Failure 401 {object} response.ErrorResponse "Пользователь не авторизован"
// @Failure 403 {object} response.ErrorResponse "Курс принадлежит другому преподавателю"
// @Failure 404 {object} response.ErrorResponse "Курс не найден"
// @Failure 422 {object} response.ErrorResponse "Ошибка валидации"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера при обновлении курса"
// @Security BearerAuth
// @Router /courses/instructorCourse/update/{id} [put]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.course.update"
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

	if err := r.ParseMultipartForm(maxMultipartMemory); err != nil {
		log.Error("failed to parse multipart form", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid multipart form"))
		return
	}

	var req models.DummyCourse
	req.Title = r.FormValue("title")
	req.Description = r.FormValue("description")
	req.Category = r.FormValue("category")
	if raw := r.FormValue("price"); raw != "" {
		price, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			log.Error("invalid price", sl.Err(err))
			w.WriteHeader(http.StatusBadRequest)
			render.JSON(w, r, response.Error("invalid price"))
			return
		}
		req.Price = price
	}

	if err := h.validate.Struct(req); err != nil {
		log.Error("validation failed", sl.Err(err))
		w.WriteHeader(http.StatusUnprocessableEntity)
		render.JSON(w, r, response.ValidationError(err.(validator.ValidationErrors)))
		return
	}
	log.Info("all fields are validated")

	media, err := h.saveFiles(r)
	if err != nil {
		log.Error("failed to save uploaded files", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not save uploaded files"))
		return
	}

	if err := h.service.Update(r.Context(), id, callerUID, callerRole, req, media); err != nil {
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
			log.Error("failed to update course", sl.Err(err))
			w.WriteHeader(http.StatusInternalServerError)
			render.JSON(w, r, response.Error("could not update course"))
		}
		return
	}

	log.Info("course updated", slog.String("id", id))
	render.JSON(w, r, response.OK())
}

func (h *Handler) saveFiles(r *http.Request) (course.CourseMedia, error) {
	var media course.CourseMedia

	if _, fh, err := r.FormFile("video"); err == nil {
		path, err := h.saver.SaveFile(fh)
		if err != nil {
			return media, err
		}
		media.VideoURL = path
	}
	if _, fh, err := r.FormFile("image"); err == nil {
		path, err := h.saver.SaveFile(fh)
		if err != nil {
			return media, err
		}
		media.ImageURL = &path
	}
	if _, fh, err := r.FormFile("resource"); err == nil {
		path, err := h.saver.SaveFile(fh)
		if err != nil {
			return media, err
		}
		media.ResourceURL = &path
	}

	return media, nil
}

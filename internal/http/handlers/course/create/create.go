// Package create реализует HTTP-обработчик публикации нового курса.
//
// Handler принимает multipart-запрос с данными курса и файлами: видео
// обязательно, обложка и дополнительные материалы опциональны. Файлы
// сохраняются на диск до записи курса в хранилище, имя и email автора
// берутся из токена, а не из запроса.
package create

import (
	"context"
	"log/slog"
	"mime/multipart"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/magabrotheeeer/course-marketplace/internal/http/middlewarectx"
	"github.com/magabrotheeeer/course-marketplace/internal/http/response"
	"github.com/magabrotheeeer/course-marketplace/internal/lib/sl"
	"github.com/magabrotheeeer/course-marketplace/internal/models"
	course "github.com/magabrotheeeer/course-marketplace/internal/services/course"
)

// Ограничение на размер multipart-запроса, в память читаются только заголовки.
const maxMultipartMemory = 32 << 20

// Handler управляет HTTP-запросами на публикацию курсов.
type Handler struct {
	log      *slog.Logger        // Логгер для записи информации и ошибок
	service  Service             // Сервис бизнес-логики каталога
	saver    FileSaver           // Сохранение загруженных файлов на диск
	validate *validator.Validate // Валидатор структуры входящих данных
}

// Service описывает интерфейс бизнес-логики публикации курса.
type Service interface {
	Create(ctx context.Context, instructor *models.User, req models.DummyCourse,
		media course.CourseMedia) (string, error)
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
// @Summary Опубликовать курс
// @Description Создает новый курс с видео, обложкой и материалами. Возвращает ID созданной записи.
// @Tags Courses
// @Accept  multipart/form-data
// @Produce  json
// @Param title formData string true "Название курса"
// @Param description formData string true "Описание курса"
// @Param price formData number true "Цена курса"
// @Param category formData string true "Категория курса"
// @Param video formData file true "Видео курса"
// @Param image formData file false "Обложка курса"
// @Param resource formData file false "Дополнительные материалы"
// @Success 201 {object} map[string]any "Курс создан"
// @Failure 400 {object} response.ErrorResponse "Некорректный запрос или отсутствует видео"
// @Failure 401 {object} response.ErrorResponse "Пользователь не авторизован"
// @Failure 422 {object} response.ErrorResponse "Ошибка валидации"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера при публикации курса"
// @Security BearerAuth
// @Router /courses/create [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.course.create"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	instructor, ok := userFromContext(r)
	if !ok {
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

	req, err := decodeForm(r)
	if err != nil {
		log.Error("failed to decode form", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid form data"))
		return
	}

	if err := h.validate.Struct(req); err != nil {
		log.Error("validation failed", sl.Err(err))
		w.WriteHeader(http.StatusUnprocessableEntity)
		render.JSON(w, r, response.ValidationError(err.(validator.ValidationErrors)))
		return
	}
	log.Info("all fields are validated")

	media, err := h.saveFiles(r, true)
	if err != nil {
		log.Error("failed to save uploaded files", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("video file is required"))
		return
	}

	id, err := h.service.Create(r.Context(), instructor, req, media)
	if err != nil {
		log.Error("failed to create course", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not create course"))
		return
	}

	log.Info("course created", slog.String("id", id))
	w.WriteHeader(http.StatusCreated)
	render.JSON(w, r, response.OKWithData(map[string]any{
		"id": id,
	}))
}

func userFromContext(r *http.Request) (*models.User, bool) {
	uid, okUID := r.Context().Value(middlewarectx.UserUID).(string)
	username, _ := r.Context().Value(middlewarectx.User).(string)
	email, _ := r.Context().Value(middlewarectx.Email).(string)
	if !okUID || uid == "" {
		return nil, false
	}
	return &models.User{UID: uid, Username: username, Email: email}, true
}

func decodeForm(r *http.Request) (models.DummyCourse, error) {
	var req models.DummyCourse
	req.Title = r.FormValue("title")
	req.Description = r.FormValue("description")
	req.Category = r.FormValue("category")
	if raw := r.FormValue("price"); raw != "" {
		price, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return req, err
		}
		req.Price = price
	}
	return req, nil
}

// saveFiles сохраняет файлы из multipart-формы. При videoRequired отсутствие
// видео считается ошибкой; при обновлении все файлы опциональны.
func (h *Handler) saveFiles(r *http.Request, videoRequired bool) (course.CourseMedia, error) {
	var media course.CourseMedia

	if _, fh, err := r.FormFile("video"); err == nil {
		path, err := h.saver.SaveFile(fh)
		if err != nil {
			return media, err
		}
		media.VideoURL = path
	} else if videoRequired {
		return media, err
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

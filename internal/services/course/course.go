// Package services содержит бизнес-логику каталога курсов.
package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/magabrotheeeer/course-marketplace/internal/lib/sl"
	"github.com/magabrotheeeer/course-marketplace/internal/models"
	"github.com/magabrotheeeer/course-marketplace/internal/storage/repository"
)

// ErrCourseNotFound возвращается, если курс с указанным ID не существует.
var ErrCourseNotFound = errors.New("course not found")

// ErrNotOwner возвращается при попытке изменить чужой курс без роли admin.
var ErrNotOwner = errors.New("course belongs to another instructor")

// CourseMedia содержит пути к сохранённым файлам курса. При обновлении
// пустой VideoURL и нулевые указатели означают «оставить прежние файлы».
type CourseMedia struct {
	VideoURL    string
	ImageURL    *string
	ResourceURL *string
}

// CourseRepository определяет методы для работы с курсами в хранилище.
type CourseRepository interface {
	// CreateCourse вставляет новую запись курса и возвращает её ID.
	CreateCourse(ctx context.Context, course models.Course) (string, error)
	// ReadCourse возвращает курс по ID.
	ReadCourse(ctx context.Context, id string) (*models.Course, error)
	// ListCourses возвращает каталог с пагинацией.
	ListCourses(ctx context.Context, limit, offset int) ([]*models.Course, error)
	// ListCoursesByInstructor возвращает курсы преподавателя.
	ListCoursesByInstructor(ctx context.Context, instructorUID string) ([]*models.Course, error)
	// UpdateCourse обновляет курс, принадлежащий преподавателю.
	UpdateCourse(ctx context.Context, course models.Course, id, instructorUID string) (int, error)
	// RemoveCourse удаляет курс по ID.
	RemoveCourse(ctx context.Context, id string) (int, error)
}

// Cache описывает методы для кэширования данных.
type Cache interface {
	// Get пытается получить значение из кеша по ключу.
	Get(key string, result any) (bool, error)
	// Set сохраняет значение в кеш с временем жизни.
	Set(key string, value any, expiration time.Duration) error
	// Invalidate удаляет значение из кеша по ключу.
	Invalidate(key string) error
}

// CourseService реализует операции каталога: создание, просмотр,
// редактирование и удаление курсов с кешированием списков.
type CourseService struct {
	repo  CourseRepository
	cache Cache
	log   *slog.Logger
}

// NewCourseService создает новый экземпляр CourseService.
func NewCourseService(repo CourseRepository, cache Cache, log *slog.Logger) *CourseService {
	return &CourseService{
		repo:  repo,
		cache: cache,
		log:   log,
	}
}

// Create публикует новый курс от имени преподавателя. Имя и email автора
// берутся из профиля, а не из запроса.
func (s *CourseService) Create(ctx context.Context, instructor *models.User,
	req models.DummyCourse, media CourseMedia) (string, error) {
	course := models.Course{
		Title:         req.Title,
		Description:   req.Description,
		AuthorName:    instructor.Username,
		AuthorEmail:   instructor.Email,
		Price:         req.Price,
		Category:      req.Category,
		VideoURL:      media.VideoURL,
		ImageURL:      media.ImageURL,
		ResourceURL:   media.ResourceURL,
		InstructorUID: instructor.UID,
	}

	id, err := s.repo.CreateCourse(ctx, course)
	if err != nil {
		return "", err
	}

	s.invalidateCatalog()
	s.log.Info("created new course", slog.String("id", id),
		slog.String("instructor_uid", instructor.UID))
	return id, nil
}

// List возвращает страницу каталога, используя кеш или репозиторий.
func (s *CourseService) List(ctx context.Context, limit, offset int) ([]*models.Course, error) {
	var result []*models.Course
	cacheKey := fmt.Sprintf("courses:%d:%d", limit, offset)
	found, err := s.cache.Get(cacheKey, &result)
	if err != nil {
		s.log.Warn("failed to read cache", slog.String("key", cacheKey), sl.Err(err))
	}
	if found {
		return result, nil
	}

	result, err = s.repo.ListCourses(ctx, limit, offset)
	if err != nil {
		return nil, err
	}
	if err := s.cache.Set(cacheKey, result, time.Minute); err != nil {
		s.log.Warn("failed to cache courses", slog.String("key", cacheKey), sl.Err(err))
	}
	return result, nil
}

// Get возвращает курс по ID.
func (s *CourseService) Get(ctx context.Context, id string) (*models.Course, error) {
	course, err := s.repo.ReadCourse(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrCourseNotFound
		}
		return nil, err
	}
	return course, nil
}

// ListMine возвращает курсы, созданные преподавателем.
func (s *CourseService) ListMine(ctx context.Context, instructorUID string) ([]*models.Course, error) {
	return s.repo.ListCoursesByInstructor(ctx, instructorUID)
}

// Update изменяет курс. Преподаватель может редактировать только свои курсы,
// администратор — любые. Незаполненные поля media оставляют прежние файлы.
func (s *CourseService) Update(ctx context.Context, id, callerUID, callerRole string,
	req models.DummyCourse, media CourseMedia) error {
	course, err := s.repo.ReadCourse(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrCourseNotFound
		}
		return err
	}
	if callerRole != "admin" && course.InstructorUID != callerUID {
		return ErrNotOwner
	}

	updated := models.Course{
		Title:       req.Title,
		Description: req.Description,
		Price:       req.Price,
		Category:    req.Category,
		VideoURL:    media.VideoURL,
		ImageURL:    media.ImageURL,
		ResourceURL: media.ResourceURL,
	}
	count, err := s.repo.UpdateCourse(ctx, updated, id, course.InstructorUID)
	if err != nil {
		return err
	}
	if count == 0 {
		return ErrCourseNotFound
	}

	s.invalidateCatalog()
	s.log.Info("updated course", slog.String("id", id))
	return nil
}

// Remove удаляет курс. Преподаватель может удалять только свои курсы,
// администратор — любые.
func (s *CourseService) Remove(ctx context.Context, id, callerUID, callerRole string) error {
	course, err := s.repo.ReadCourse(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrCourseNotFound
		}
		return err
	}
	if callerRole != "admin" && course.InstructorUID != callerUID {
		return ErrNotOwner
	}

	count, err := s.repo.RemoveCourse(ctx, id)
	if err != nil {
		return err
	}
	if count == 0 {
		return ErrCourseNotFound
	}

	s.invalidateCatalog()
	s.log.Info("removed course", slog.String("id", id))
	return nil
}

// Первая страница каталога запрашивается чаще всего, поэтому после любой
// записи сбрасывается именно она. Остальные страницы доживают свой TTL.
func (s *CourseService) invalidateCatalog() {
	cacheKey := fmt.Sprintf("courses:%d:%d", 10, 0)
	if err := s.cache.Invalidate(cacheKey); err != nil {
		s.log.Warn("failed to invalidate cache", slog.String("key", cacheKey), sl.Err(err))
	}
}

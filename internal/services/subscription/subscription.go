// Package services содержит бизнес-логику доступа пользователей к курсам.
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

// AccessMonths — длительность окна доступа к курсу после оформления.
const AccessMonths = 1

// Статусы, возвращаемые Subscribe: создана первая запись пользователя,
// добавлена запись к уже существующим или продлена истёкшая.
const (
	StatusCreated = "created"
	StatusAdded   = "added"
	StatusRenewed = "renewed"
)

// ErrAlreadyActive возвращается при попытке оформить доступ к курсу,
// окно которого ещё не истекло.
var ErrAlreadyActive = errors.New("subscription is still active")

// ErrCourseNotFound возвращается, если курс с указанным ID не существует.
var ErrCourseNotFound = errors.New("course not found")

// EntitlementRepository определяет методы для работы с правами доступа в хранилище.
type EntitlementRepository interface {
	// InsertEntitlementIfAbsent добавляет запись, если её ещё нет для пары
	// (пользователь, курс). Возвращает true, если запись была создана.
	InsertEntitlementIfAbsent(ctx context.Context, e models.Entitlement) (bool, error)
	// RenewEntitlementIfExpired продлевает запись, только если её окно истекло.
	RenewEntitlementIfExpired(ctx context.Context, userUID, courseID string, now, end time.Time) (int, error)
	// MarkExpiredEntitlements снимает флаг Subscribed у записей с истёкшим окном.
	MarkExpiredEntitlements(ctx context.Context, userUID string, now time.Time) (int, error)
	// CountEntitlements возвращает количество записей пользователя.
	CountEntitlements(ctx context.Context, userUID string) (int, error)
	// GetEntitlement возвращает запись по паре (пользователь, курс).
	GetEntitlement(ctx context.Context, userUID, courseID string) (*models.Entitlement, error)
	// ListEntitlements возвращает все записи пользователя.
	ListEntitlements(ctx context.Context, userUID string) ([]*models.Entitlement, error)
	// UpsertEntitlement записывает запись целиком, перезаписывая существующую.
	UpsertEntitlement(ctx context.Context, e models.Entitlement) (int, error)
	// RemoveEntitlement удаляет запись и возвращает количество удалённых строк.
	RemoveEntitlement(ctx context.Context, userUID, courseID string) (int, error)
	// ReadCourse возвращает курс по ID.
	ReadCourse(ctx context.Context, id string) (*models.Course, error)
	// ListActiveCoursesForUser возвращает курсы с действующим доступом.
	ListActiveCoursesForUser(ctx context.Context, userUID string) ([]*models.Course, error)
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

// SubscriptionService реализует оформление, продление и учет доступа к курсам.
type SubscriptionService struct {
	repo  EntitlementRepository
	cache Cache
	log   *slog.Logger
}

// NewSubscriptionService создает новый экземпляр SubscriptionService.
func NewSubscriptionService(repo EntitlementRepository, cache Cache, log *slog.Logger) *SubscriptionService {
	return &SubscriptionService{
		repo:  repo,
		cache: cache,
		log:   log,
	}
}

// Subscribe оформляет пользователю доступ к курсу на AccessMonths месяцев.
// Если записи для пары (пользователь, курс) нет, она создается; если окно
// прошлой записи истекло, оно продлевается от текущего момента; если доступ
// еще действует, возвращается ErrAlreadyActive. Возвращаемый статус
// различает первую запись пользователя (StatusCreated), добавление к уже
// существующим (StatusAdded) и продление (StatusRenewed).
func (s *SubscriptionService) Subscribe(ctx context.Context, userUID, courseID string) (string, error) {
	if _, err := s.repo.ReadCourse(ctx, courseID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return "", ErrCourseNotFound
		}
		return "", err
	}

	now := time.Now().UTC()
	end := now.AddDate(0, AccessMonths, 0)

	total, err := s.repo.CountEntitlements(ctx, userUID)
	if err != nil {
		return "", err
	}

	inserted, err := s.repo.InsertEntitlementIfAbsent(ctx, models.Entitlement{
		UserUID:    userUID,
		CourseID:   courseID,
		Subscribed: true,
		StartedAt:  now,
		EndedAt:    end,
	})
	if err != nil {
		return "", err
	}
	if inserted {
		s.invalidateActive(userUID)
		s.log.Info("granted course access",
			slog.String("user_uid", userUID), slog.String("course_id", courseID))
		if total == 0 {
			return StatusCreated, nil
		}
		return StatusAdded, nil
	}

	renewed, err := s.repo.RenewEntitlementIfExpired(ctx, userUID, courseID, now, end)
	if err != nil {
		return "", err
	}
	if renewed == 0 {
		return "", ErrAlreadyActive
	}

	s.invalidateActive(userUID)
	s.log.Info("renewed course access",
		slog.String("user_uid", userUID), slog.String("course_id", courseID))
	return StatusRenewed, nil
}

// ListActive возвращает курсы пользователя с действующим доступом.
// Перед выборкой истёкшие записи помечаются неактивными, поэтому результат
// не содержит курсов с закончившимся окном.
func (s *SubscriptionService) ListActive(ctx context.Context, userUID string) ([]*models.Course, error) {
	now := time.Now().UTC()
	expired, err := s.repo.MarkExpiredEntitlements(ctx, userUID, now)
	if err != nil {
		return nil, err
	}
	if expired > 0 {
		s.invalidateActive(userUID)
		s.log.Info("marked expired entitlements",
			slog.String("user_uid", userUID), slog.Int("count", expired))
	}

	var result []*models.Course
	cacheKey := activeCoursesKey(userUID)
	found, err := s.cache.Get(cacheKey, &result)
	if err != nil {
		s.log.Warn("failed to read cache", slog.String("key", cacheKey), sl.Err(err))
	}
	if found {
		return result, nil
	}

	result, err = s.repo.ListActiveCoursesForUser(ctx, userUID)
	if err != nil {
		return nil, err
	}
	if err := s.cache.Set(cacheKey, result, time.Minute); err != nil {
		s.log.Warn("failed to cache active courses", slog.String("key", cacheKey), sl.Err(err))
	}
	return result, nil
}

// ListEntitlements возвращает все записи о доступе пользователя,
// включая истёкшие.
func (s *SubscriptionService) ListEntitlements(ctx context.Context, userUID string) ([]*models.Entitlement, error) {
	return s.repo.ListEntitlements(ctx, userUID)
}

// AdminSet записывает право доступа с произвольными датами, минуя обычный
// путь оформления. Используется административными операциями.
func (s *SubscriptionService) AdminSet(ctx context.Context, req models.DummyEntitlement) (int, error) {
	startedAt, err := time.Parse("02-01-2006", req.StartedAt)
	if err != nil {
		return 0, fmt.Errorf("invalid start date: %w", err)
	}
	endedAt, err := time.Parse("02-01-2006", req.EndedAt)
	if err != nil {
		return 0, fmt.Errorf("invalid end date: %w", err)
	}
	if !endedAt.After(startedAt) {
		return 0, fmt.Errorf("end date must be later than start date")
	}

	if _, err := s.repo.ReadCourse(ctx, req.CourseID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return 0, ErrCourseNotFound
		}
		return 0, err
	}

	id, err := s.repo.UpsertEntitlement(ctx, models.Entitlement{
		UserUID:    req.UserUID,
		CourseID:   req.CourseID,
		Subscribed: req.Subscribed,
		StartedAt:  startedAt,
		EndedAt:    endedAt,
	})
	if err != nil {
		return 0, err
	}

	s.invalidateActive(req.UserUID)
	s.log.Info("admin set course access",
		slog.String("user_uid", req.UserUID), slog.String("course_id", req.CourseID))
	return id, nil
}

// AdminRemove удаляет запись о доступе пользователя к курсу.
// Возвращает количество удалённых строк.
func (s *SubscriptionService) AdminRemove(ctx context.Context, userUID, courseID string) (int, error) {
	count, err := s.repo.RemoveEntitlement(ctx, userUID, courseID)
	if err != nil {
		return 0, err
	}
	if count > 0 {
		s.invalidateActive(userUID)
	}
	return count, nil
}

func (s *SubscriptionService) invalidateActive(userUID string) {
	cacheKey := activeCoursesKey(userUID)
	if err := s.cache.Invalidate(cacheKey); err != nil {
		s.log.Warn("failed to invalidate cache", slog.String("key", cacheKey), sl.Err(err))
	}
}

func activeCoursesKey(userUID string) string {
	return fmt.Sprintf("active-courses:%s", userUID)
}

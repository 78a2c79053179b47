package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/magabrotheeeer/course-marketplace/internal/models"
)

// CreateCourse вставляет новую запись курса и возвращает её ID.
func (s *Storage) CreateCourse(ctx context.Context, course models.Course) (string, error) {
	const op = "storage.CreateCourse"
	select {
	case <-ctx.Done():
		return "", fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `INSERT INTO courses (title, description, author_name, author_email, price,
			      category, video_url, image_url, resource_url, instructor_uid)
			  VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
			  RETURNING id`
	var newID string
	err := s.DB.QueryRowContext(ctx, query,
		course.Title, course.Description, course.AuthorName, course.AuthorEmail, course.Price,
		course.Category, course.VideoURL, course.ImageURL, course.ResourceURL,
		course.InstructorUID).Scan(&newID)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	return newID, nil
}

// ReadCourse возвращает данные курса по его ID.
func (s *Storage) ReadCourse(ctx context.Context, id string) (*models.Course, error) {
	const op = "storage.ReadCourse"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT id, title, description, author_name, author_email, price,
			      category, video_url, image_url, resource_url, instructor_uid, created_at
			  FROM courses WHERE id = $1`
	row := s.DB.QueryRowContext(ctx, query, id)

	course, err := scanCourse(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, ErrNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return course, nil
}

// ListCourses возвращает список всех курсов каталога с пагинацией.
func (s *Storage) ListCourses(ctx context.Context, limit, offset int) ([]*models.Course, error) {
	const op = "storage.ListCourses"
	query := `SELECT id, title, description, author_name, author_email, price,
			      category, video_url, image_url, resource_url, instructor_uid, created_at
			  FROM courses
			  ORDER BY created_at DESC
			  LIMIT $1 OFFSET $2`
	return s.listCourses(ctx, op, query, limit, offset)
}

// ListCoursesByInstructor возвращает курсы, созданные указанным преподавателем.
func (s *Storage) ListCoursesByInstructor(ctx context.Context, instructorUID string) ([]*models.Course, error) {
	const op = "storage.ListCoursesByInstructor"
	query := `SELECT id, title, description, author_name, author_email, price,
			      category, video_url, image_url, resource_url, instructor_uid, created_at
			  FROM courses
			  WHERE instructor_uid = $1
			  ORDER BY created_at DESC`
	return s.listCourses(ctx, op, query, instructorUID)
}

// ListActiveCoursesForUser возвращает курсы, на которые у пользователя есть
// действующее право доступа (subscribed = true и окно действия не истекло).
func (s *Storage) ListActiveCoursesForUser(ctx context.Context, userUID string) ([]*models.Course, error) {
	const op = "storage.ListActiveCoursesForUser"
	query := `SELECT c.id, c.title, c.description, c.author_name, c.author_email, c.price,
			      c.category, c.video_url, c.image_url, c.resource_url, c.instructor_uid, c.created_at
			  FROM courses c
			  JOIN entitlements e ON e.course_id = c.id
			  WHERE e.user_uid = $1
			    AND e.subscribed = true
			    AND e.ended_at > now()
			  ORDER BY e.started_at DESC`
	return s.listCourses(ctx, op, query, userUID)
}

func (s *Storage) listCourses(ctx context.Context, op, query string, args ...any) ([]*models.Course, error) {
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	rows, err := s.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var result []*models.Course
	for rows.Next() {
		course, err := scanCourse(rows)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, course)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanCourse(row rowScanner) (*models.Course, error) {
	var c models.Course
	var imageURL, resourceURL sql.NullString
	if err := row.Scan(&c.ID, &c.Title, &c.Description, &c.AuthorName, &c.AuthorEmail,
		&c.Price, &c.Category, &c.VideoURL, &imageURL, &resourceURL,
		&c.InstructorUID, &c.CreatedAt); err != nil {
		return nil, err
	}
	if imageURL.Valid {
		c.ImageURL = &imageURL.String
	}
	if resourceURL.Valid {
		c.ResourceURL = &resourceURL.String
	}
	return &c, nil
}

// UpdateCourse обновляет данные курса, принадлежащего преподавателю,
// и возвращает количество изменённых строк. Чужой курс не изменяется:
// владелец проверяется в условии WHERE.
func (s *Storage) UpdateCourse(ctx context.Context, course models.Course, id, instructorUID string) (int, error) {
	const op = "storage.UpdateCourse"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `UPDATE courses
			  SET title = $1, description = $2, price = $3, category = $4,
			      video_url = COALESCE(NULLIF($5, ''), video_url),
			      image_url = COALESCE($6, image_url),
			      resource_url = COALESCE($7, resource_url)
			  WHERE id = $8 AND instructor_uid = $9`
	result, err := s.DB.ExecContext(ctx, query,
		course.Title, course.Description, course.Price, course.Category,
		course.VideoURL, course.ImageURL, course.ResourceURL, id, instructorUID)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return int(rowsAffected), nil
}

// RemoveCourse удаляет курс по ID и возвращает количество удалённых строк.
func (s *Storage) RemoveCourse(ctx context.Context, id string) (int, error) {
	const op = "storage.RemoveCourse"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `DELETE FROM courses WHERE id = $1`
	result, err := s.DB.ExecContext(ctx, query, id)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return int(rowsAffected), nil
}

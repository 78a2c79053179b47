package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/magabrotheeeer/course-marketplace/internal/models"
)

// InsertEntitlementIfAbsent вставляет запись права доступа, если для пары
// (пользователь, курс) её ещё нет. Возвращает true, если запись создана.
// Уникальный индекс по (user_uid, course_id) исключает гонку двух
// одновременных запросов: выигрывает ровно один INSERT.
func (s *Storage) InsertEntitlementIfAbsent(ctx context.Context, e models.Entitlement) (bool, error) {
	const op = "storage.InsertEntitlementIfAbsent"
	select {
	case <-ctx.Done():
		return false, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `INSERT INTO entitlements (user_uid, course_id, subscribed, started_at, ended_at)
			  VALUES ($1, $2, $3, $4, $5)
			  ON CONFLICT (user_uid, course_id) DO NOTHING
			  RETURNING id`
	var id int
	err := s.DB.QueryRowContext(ctx, query,
		e.UserUID, e.CourseID, e.Subscribed, e.StartedAt, e.EndedAt).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}
	return true, nil
}

// RenewEntitlementIfExpired возобновляет истёкшее право доступа: условие
// ended_at <= now в WHERE гарантирует, что активная запись не перезапишется.
// Возвращает количество изменённых строк (0 — запись ещё активна).
func (s *Storage) RenewEntitlementIfExpired(ctx context.Context, userUID, courseID string, now, end time.Time) (int, error) {
	const op = "storage.RenewEntitlementIfExpired"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `UPDATE entitlements
			  SET subscribed = true, started_at = $3, ended_at = $4
			  WHERE user_uid = $1 AND course_id = $2 AND ended_at <= $3`
	result, err := s.DB.ExecContext(ctx, query, userUID, courseID, now, end)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return int(rowsAffected), nil
}

// MarkExpiredEntitlements помечает истёкшие права доступа пользователя
// флагом subscribed = false. Записи не удаляются.
func (s *Storage) MarkExpiredEntitlements(ctx context.Context, userUID string, now time.Time) (int, error) {
	const op = "storage.MarkExpiredEntitlements"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `UPDATE entitlements
			  SET subscribed = false
			  WHERE user_uid = $1 AND subscribed = true AND ended_at <= $2`
	result, err := s.DB.ExecContext(ctx, query, userUID, now)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return int(rowsAffected), nil
}

// CountEntitlements возвращает количество записей прав доступа пользователя.
func (s *Storage) CountEntitlements(ctx context.Context, userUID string) (int, error) {
	const op = "storage.CountEntitlements"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT COUNT(*) FROM entitlements WHERE user_uid = $1`
	var count int
	if err := s.DB.QueryRowContext(ctx, query, userUID).Scan(&count); err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return count, nil
}

// GetEntitlement возвращает запись права доступа для пары (пользователь, курс).
func (s *Storage) GetEntitlement(ctx context.Context, userUID, courseID string) (*models.Entitlement, error) {
	const op = "storage.GetEntitlement"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT id, user_uid, course_id, subscribed, started_at, ended_at
			  FROM entitlements
			  WHERE user_uid = $1 AND course_id = $2`
	var e models.Entitlement
	row := s.DB.QueryRowContext(ctx, query, userUID, courseID)
	if err := row.Scan(&e.ID, &e.UserUID, &e.CourseID, &e.Subscribed, &e.StartedAt, &e.EndedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, ErrNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &e, nil
}

// ListEntitlements возвращает все записи прав доступа пользователя,
// включая истёкшие.
func (s *Storage) ListEntitlements(ctx context.Context, userUID string) ([]*models.Entitlement, error) {
	const op = "storage.ListEntitlements"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT id, user_uid, course_id, subscribed, started_at, ended_at
			  FROM entitlements
			  WHERE user_uid = $1
			  ORDER BY started_at DESC`
	rows, err := s.DB.QueryContext(ctx, query, userUID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var result []*models.Entitlement
	for rows.Next() {
		var e models.Entitlement
		if err := rows.Scan(&e.ID, &e.UserUID, &e.CourseID, &e.Subscribed, &e.StartedAt, &e.EndedAt); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, &e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

// UpsertEntitlement вставляет или перезаписывает запись права доступа
// с произвольным окном действия. Используется административным
// переопределением; уникальность пары (пользователь, курс) сохраняется
// за счёт ON CONFLICT.
func (s *Storage) UpsertEntitlement(ctx context.Context, e models.Entitlement) (int, error) {
	const op = "storage.UpsertEntitlement"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `INSERT INTO entitlements (user_uid, course_id, subscribed, started_at, ended_at)
			  VALUES ($1, $2, $3, $4, $5)
			  ON CONFLICT (user_uid, course_id) DO UPDATE
			  SET subscribed = EXCLUDED.subscribed,
			      started_at = EXCLUDED.started_at,
			      ended_at = EXCLUDED.ended_at
			  RETURNING id`
	var id int
	if err := s.DB.QueryRowContext(ctx, query,
		e.UserUID, e.CourseID, e.Subscribed, e.StartedAt, e.EndedAt).Scan(&id); err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return id, nil
}

// RemoveEntitlement удаляет запись права доступа для пары (пользователь, курс)
// и возвращает количество удалённых строк.
func (s *Storage) RemoveEntitlement(ctx context.Context, userUID, courseID string) (int, error) {
	const op = "storage.RemoveEntitlement"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `DELETE FROM entitlements WHERE user_uid = $1 AND course_id = $2`
	result, err := s.DB.ExecContext(ctx, query, userUID, courseID)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return int(rowsAffected), nil
}

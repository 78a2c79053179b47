package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/magabrotheeeer/course-marketplace/internal/models"
)

// UpsertOtp создаёт запись одноразового кода для email или обновляет
// существующую. Уникальность по email гарантирует, что повторная отправка
// обновляет код и отметки времени на месте, не создавая вторую запись.
func (s *Storage) UpsertOtp(ctx context.Context, username, email, code string) (*models.Otp, error) {
	const op = "storage.UpsertOtp"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `INSERT INTO otps (username, email, code)
			  VALUES ($1, $2, $3)
			  ON CONFLICT (email) DO UPDATE
			  SET username = EXCLUDED.username,
			      code = EXCLUDED.code,
			      created_at = now(),
			      updated_at = now()
			  RETURNING id, username, email, code, created_at, updated_at`
	var o models.Otp
	if err := s.DB.QueryRowContext(ctx, query, username, email, code).Scan(
		&o.ID, &o.Username, &o.Email, &o.Code, &o.CreatedAt, &o.UpdatedAt); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &o, nil
}

// GetOtpByEmail возвращает запись одноразового кода для email.
func (s *Storage) GetOtpByEmail(ctx context.Context, email string) (*models.Otp, error) {
	const op = "storage.GetOtpByEmail"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT id, username, email, code, created_at, updated_at
			  FROM otps
			  WHERE LOWER(email) = LOWER($1)`
	var o models.Otp
	row := s.DB.QueryRowContext(ctx, query, email)
	if err := row.Scan(&o.ID, &o.Username, &o.Email, &o.Code, &o.CreatedAt, &o.UpdatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, ErrNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &o, nil
}

// RemoveOtp удаляет запись одноразового кода по ID.
// Вызывается после успешной проверки, при истечении срока действия
// или при ошибке отправки письма.
func (s *Storage) RemoveOtp(ctx context.Context, id int) error {
	const op = "storage.RemoveOtp"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `DELETE FROM otps WHERE id = $1`
	if _, err := s.DB.ExecContext(ctx, query, id); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

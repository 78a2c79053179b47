package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/magabrotheeeer/course-marketplace/internal/models"
)

// CreateUser сохраняет нового пользователя в базу данных и возвращает его UID.
// Пароль на этом этапе ещё не установлен: запись создаётся при успешной
// проверке OTP, password_hash остаётся NULL.
func (s *Storage) CreateUser(ctx context.Context, username, email, role string) (string, error) {
	const op = "storage.CreateUser"
	select {
	case <-ctx.Done():
		return "", fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	var newUID string
	query := `INSERT INTO users (username, email, role)
			  VALUES ($1, $2, $3)
			  RETURNING uid;`
	if err := s.DB.QueryRowContext(ctx, query, username, email, role).Scan(&newUID); err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	return newUID, nil
}

// GetUserByEmail возвращает пользователя по его email.
func (s *Storage) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	const op = "storage.GetUserByEmail"
	query := `SELECT uid, username, email, password_hash, role, refresh_token, created_at
			  FROM users
			  WHERE LOWER(email) = LOWER($1)`
	return s.scanUser(ctx, op, query, email)
}

// GetUser возвращает пользователя по его UID.
func (s *Storage) GetUser(ctx context.Context, userUID string) (*models.User, error) {
	const op = "storage.GetUser"
	query := `SELECT uid, username, email, password_hash, role, refresh_token, created_at
			  FROM users
			  WHERE uid = $1`
	return s.scanUser(ctx, op, query, userUID)
}

// FindUserByEmailOrUsername возвращает пользователя, у которого совпадает
// email или username (без учёта регистра). Используется при выдаче OTP,
// чтобы отклонить повторную регистрацию.
func (s *Storage) FindUserByEmailOrUsername(ctx context.Context, email, username string) (*models.User, error) {
	const op = "storage.FindUserByEmailOrUsername"
	query := `SELECT uid, username, email, password_hash, role, refresh_token, created_at
			  FROM users
			  WHERE LOWER(email) = LOWER($1) OR LOWER(username) = LOWER($2)`
	return s.scanUser(ctx, op, query, email, username)
}

func (s *Storage) scanUser(ctx context.Context, op, query string, args ...any) (*models.User, error) {
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	u := &models.User{}
	row := s.DB.QueryRowContext(ctx, query, args...)

	var passwordHash, refreshToken sql.NullString
	if err := row.Scan(&u.UID, &u.Username, &u.Email, &passwordHash,
		&u.Role, &refreshToken, &u.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, ErrNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if passwordHash.Valid {
		u.PasswordHash = &passwordHash.String
	}
	if refreshToken.Valid {
		u.RefreshToken = &refreshToken.String
	}
	return u, nil
}

// ListUsers возвращает список всех пользователей.
func (s *Storage) ListUsers(ctx context.Context) ([]*models.User, error) {
	const op = "storage.ListUsers"
	query := `SELECT uid, username, email, password_hash, role, refresh_token, created_at
			  FROM users
			  ORDER BY created_at`
	return s.scanUsers(ctx, op, query)
}

// ListUsersByRole возвращает список пользователей с указанной ролью.
func (s *Storage) ListUsersByRole(ctx context.Context, role string) ([]*models.User, error) {
	const op = "storage.ListUsersByRole"
	query := `SELECT uid, username, email, password_hash, role, refresh_token, created_at
			  FROM users
			  WHERE role = $1
			  ORDER BY created_at`
	return s.scanUsers(ctx, op, query, role)
}

func (s *Storage) scanUsers(ctx context.Context, op, query string, args ...any) ([]*models.User, error) {
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

	var result []*models.User
	for rows.Next() {
		var u models.User
		var passwordHash, refreshToken sql.NullString
		if err := rows.Scan(&u.UID, &u.Username, &u.Email, &passwordHash,
			&u.Role, &refreshToken, &u.CreatedAt); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		if passwordHash.Valid {
			u.PasswordHash = &passwordHash.String
		}
		if refreshToken.Valid {
			u.RefreshToken = &refreshToken.String
		}
		result = append(result, &u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

// UpdateUserPassword устанавливает bcrypt-хэш пароля пользователя по email.
func (s *Storage) UpdateUserPassword(ctx context.Context, email, passwordHash string) error {
	const op = "storage.UpdateUserPassword"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `UPDATE users SET password_hash = $1 WHERE LOWER(email) = LOWER($2)`
	result, err := s.DB.ExecContext(ctx, query, passwordHash, email)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("%s: %w", op, ErrNotFound)
	}
	return nil
}

// UpdateRefreshToken перезаписывает refresh-токен пользователя.
// Единственный активный refresh-токен хранится на строке пользователя,
// история ротации не ведётся.
func (s *Storage) UpdateRefreshToken(ctx context.Context, userUID, refreshToken string) error {
	const op = "storage.UpdateRefreshToken"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `UPDATE users SET refresh_token = $1 WHERE uid = $2`
	_, err := s.DB.ExecContext(ctx, query, refreshToken, userUID)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// UpdateUsername меняет имя пользователя, если оно не занято другим аккаунтом.
func (s *Storage) UpdateUsername(ctx context.Context, userUID, username string) (int, error) {
	const op = "storage.UpdateUsername"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `UPDATE users SET username = $1
			  WHERE uid = $2
			    AND NOT EXISTS (
			        SELECT 1 FROM users WHERE LOWER(username) = LOWER($1) AND uid <> $2
			    )`
	result, err := s.DB.ExecContext(ctx, query, username, userUID)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return int(rowsAffected), nil
}

// RemoveUser удаляет пользователя по UID и возвращает количество удалённых строк.
func (s *Storage) RemoveUser(ctx context.Context, userUID string) (int, error) {
	const op = "storage.RemoveUser"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `DELETE FROM users WHERE uid = $1`
	result, err := s.DB.ExecContext(ctx, query, userUID)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return int(rowsAffected), nil
}

// ListAddresses возвращает адресную книгу пользователя.
func (s *Storage) ListAddresses(ctx context.Context, userUID string) ([]*models.Address, error) {
	const op = "storage.ListAddresses"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT id, user_uid, label, street, city, postal_code
			  FROM user_addresses
			  WHERE user_uid = $1
			  ORDER BY label`
	rows, err := s.DB.QueryContext(ctx, query, userUID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var result []*models.Address
	for rows.Next() {
		var a models.Address
		if err := rows.Scan(&a.ID, &a.UserUID, &a.Label, &a.Street, &a.City, &a.PostalCode); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, &a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

// UpsertAddress добавляет адрес или обновляет существующий с той же меткой.
func (s *Storage) UpsertAddress(ctx context.Context, a models.Address) (string, error) {
	const op = "storage.UpsertAddress"
	select {
	case <-ctx.Done():
		return "", fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `INSERT INTO user_addresses (user_uid, label, street, city, postal_code)
			  VALUES ($1, $2, $3, $4, $5)
			  ON CONFLICT (user_uid, label) DO UPDATE
			  SET street = EXCLUDED.street, city = EXCLUDED.city, postal_code = EXCLUDED.postal_code
			  RETURNING id`
	var id string
	if err := s.DB.QueryRowContext(ctx, query,
		a.UserUID, a.Label, a.Street, a.City, a.PostalCode).Scan(&id); err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	return id, nil
}

// RemoveAddress удаляет адрес пользователя и возвращает количество удалённых строк.
func (s *Storage) RemoveAddress(ctx context.Context, userUID, addressID string) (int, error) {
	const op = "storage.RemoveAddress"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `DELETE FROM user_addresses WHERE user_uid = $1 AND id = $2`
	result, err := s.DB.ExecContext(ctx, query, userUID, addressID)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return int(rowsAffected), nil
}

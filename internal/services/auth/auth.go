// Package services содержит логику бизнес-уровня для регистрации,
// аутентификации и управления паролями пользователей.
package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/magabrotheeeer/course-marketplace/internal/lib/jwt"
	"github.com/magabrotheeeer/course-marketplace/internal/lib/otp"
	"github.com/magabrotheeeer/course-marketplace/internal/lib/password"
	"github.com/magabrotheeeer/course-marketplace/internal/lib/sl"
	"github.com/magabrotheeeer/course-marketplace/internal/models"
	"github.com/magabrotheeeer/course-marketplace/internal/storage/repository"
)

// DefaultRole назначается каждому новому пользователю при регистрации.
const DefaultRole = "student"

// Ошибки бизнес-уровня, по которым обработчики выбирают HTTP-статус.
var (
	ErrUserExists          = errors.New("user already exists")
	ErrUserNotFound        = errors.New("user not found")
	ErrOtpNotFound         = errors.New("otp not found")
	ErrOtpInvalid          = errors.New("otp is invalid")
	ErrOtpExpired          = errors.New("otp has expired")
	ErrInvalidCredentials  = errors.New("invalid credentials")
	ErrInvalidRefreshToken = errors.New("invalid refresh token")
)

// UserRepository описывает контракт для работы с пользователями в базе данных.
type UserRepository interface {
	// CreateUser сохраняет нового пользователя без пароля и возвращает его UID.
	CreateUser(ctx context.Context, username, email, role string) (string, error)
	// GetUser возвращает пользователя по UID.
	GetUser(ctx context.Context, userUID string) (*models.User, error)
	// GetUserByEmail возвращает пользователя по email.
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	// FindUserByEmailOrUsername ищет пользователя по email или имени.
	FindUserByEmailOrUsername(ctx context.Context, email, username string) (*models.User, error)
	// UpdateUserPassword устанавливает хэш пароля пользователя.
	UpdateUserPassword(ctx context.Context, email, passwordHash string) error
	// UpdateRefreshToken сохраняет текущий refresh-токен пользователя.
	UpdateRefreshToken(ctx context.Context, userUID, refreshToken string) error
}

// OtpRepository описывает контракт для работы с одноразовыми кодами.
type OtpRepository interface {
	// UpsertOtp записывает код для email, заменяя предыдущий.
	UpsertOtp(ctx context.Context, username, email, code string) (*models.Otp, error)
	// GetOtpByEmail возвращает код, выданный для email.
	GetOtpByEmail(ctx context.Context, email string) (*models.Otp, error)
	// RemoveOtp удаляет код по ID.
	RemoveOtp(ctx context.Context, id int) error
}

// Sender отправляет письма пользователям.
type Sender interface {
	// SendOtp отправляет одноразовый код подтверждения регистрации.
	SendOtp(email, username, code string) error
	// SendPasswordReset отправляет ссылку для сброса пароля.
	SendPasswordReset(email, link string) error
}

// AuthService отвечает за регистрацию через одноразовые коды, вход,
// ротацию refresh-токенов и смену пароля.
type AuthService struct {
	users       UserRepository
	otps        OtpRepository
	sender      Sender
	jwtMaker    jwt.Maker
	frontendURL string
	log         *slog.Logger
}

// NewAuthService создает новый экземпляр AuthService.
func NewAuthService(users UserRepository, otps OtpRepository, sender Sender,
	jwtMaker jwt.Maker, frontendURL string, log *slog.Logger) *AuthService {
	return &AuthService{
		users:       users,
		otps:        otps,
		sender:      sender,
		jwtMaker:    jwtMaker,
		frontendURL: frontendURL,
		log:         log,
	}
}

// SendOtp выдает одноразовый код для регистрации и отправляет его на email.
// Если пользователь с таким email или именем уже существует, возвращается
// ErrUserExists. Повторный запрос заменяет прежний код и заново отсчитывает
// срок его действия.
func (s *AuthService) SendOtp(ctx context.Context, username, email string) error {
	existing, err := s.users.FindUserByEmailOrUsername(ctx, email, username)
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		return err
	}
	if existing != nil {
		return ErrUserExists
	}

	code, err := otp.Generate()
	if err != nil {
		return err
	}
	record, err := s.otps.UpsertOtp(ctx, username, email, code)
	if err != nil {
		return err
	}

	if err := s.sender.SendOtp(email, username, code); err != nil {
		s.log.Error("failed to send otp email", slog.String("email", email), sl.Err(err))
		// Код, который не дошел до пользователя, не должен оставаться в базе
		if rmErr := s.otps.RemoveOtp(ctx, record.ID); rmErr != nil {
			s.log.Warn("failed to remove undelivered otp", slog.Int("id", record.ID), sl.Err(rmErr))
		}
		return err
	}

	s.log.Info("otp sent", slog.String("email", email))
	return nil
}

// VerifyOtp проверяет одноразовый код и создает пользователя без пароля.
// Роль берется из запроса (пустая строка означает DefaultRole). Использованный
// код удаляется, просроченный тоже: после истечения срока регистрацию
// придется начать заново.
func (s *AuthService) VerifyOtp(ctx context.Context, email, code, role string) (*models.User, error) {
	record, err := s.otps.GetOtpByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrOtpNotFound
		}
		return nil, err
	}
	if record.Expired(time.Now().UTC()) {
		if err := s.otps.RemoveOtp(ctx, record.ID); err != nil {
			s.log.Warn("failed to remove expired otp", slog.Int("id", record.ID), sl.Err(err))
		}
		return nil, ErrOtpExpired
	}
	if record.Code != code {
		return nil, ErrOtpInvalid
	}

	if role == "" {
		role = DefaultRole
	}
	uid, err := s.users.CreateUser(ctx, record.Username, email, role)
	if err != nil {
		return nil, err
	}
	if err := s.otps.RemoveOtp(ctx, record.ID); err != nil {
		s.log.Warn("failed to remove used otp", slog.Int("id", record.ID), sl.Err(err))
	}

	s.log.Info("user registered", slog.String("uid", uid), slog.String("email", email))
	return &models.User{
		UID:      uid,
		Username: record.Username,
		Email:    email,
		Role:     role,
	}, nil
}

// CreatePassword задает пароль пользователю, созданному после проверки кода.
func (s *AuthService) CreatePassword(ctx context.Context, email, rawPassword string) error {
	hashed, err := password.GetHash(rawPassword)
	if err != nil {
		return err
	}
	if err := s.users.UpdateUserPassword(ctx, email, hashed); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrUserNotFound
		}
		return err
	}

	s.log.Info("password set", slog.String("email", email))
	return nil
}

// Login проверяет пароль и выдает пару токенов. Неизвестный email и неверный
// пароль неразличимы для клиента: оба дают ErrInvalidCredentials.
func (s *AuthService) Login(ctx context.Context, email, rawPassword string) (*models.User, string, string, error) {
	user, err := s.users.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, "", "", ErrInvalidCredentials
		}
		return nil, "", "", err
	}
	if user.PasswordHash == nil {
		return nil, "", "", ErrInvalidCredentials
	}
	if err := password.CompareHash(*user.PasswordHash, rawPassword); err != nil {
		return nil, "", "", ErrInvalidCredentials
	}

	access, refresh, err := s.issueTokens(ctx, user)
	if err != nil {
		return nil, "", "", err
	}

	s.log.Info("user logged in", slog.String("uid", user.UID))
	return user, access, refresh, nil
}

// Refresh проверяет refresh-токен и выдает новую пару токенов, делая
// прежний refresh-токен недействительным. Токен принимается, только если
// он совпадает с последним сохраненным для пользователя.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*models.User, string, string, error) {
	claims, err := s.jwtMaker.ParseRefreshToken(refreshToken)
	if err != nil {
		return nil, "", "", ErrInvalidRefreshToken
	}

	user, err := s.users.GetUser(ctx, claims.UserUID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, "", "", ErrInvalidRefreshToken
		}
		return nil, "", "", err
	}
	if user.RefreshToken == nil || *user.RefreshToken != refreshToken {
		return nil, "", "", ErrInvalidRefreshToken
	}

	access, refresh, err := s.issueTokens(ctx, user)
	if err != nil {
		return nil, "", "", err
	}

	s.log.Info("tokens rotated", slog.String("uid", user.UID))
	return user, access, refresh, nil
}

// Logout сбрасывает сохраненный refresh-токен пользователя.
func (s *AuthService) Logout(ctx context.Context, userUID string) error {
	return s.users.UpdateRefreshToken(ctx, userUID, "")
}

// ChangePassword меняет пароль вошедшего пользователя после проверки старого.
func (s *AuthService) ChangePassword(ctx context.Context, email, oldPassword, newPassword string) error {
	user, err := s.users.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrUserNotFound
		}
		return err
	}
	if user.PasswordHash == nil {
		return ErrInvalidCredentials
	}
	if err := password.CompareHash(*user.PasswordHash, oldPassword); err != nil {
		return ErrInvalidCredentials
	}

	hashed, err := password.GetHash(newPassword)
	if err != nil {
		return err
	}
	return s.users.UpdateUserPassword(ctx, email, hashed)
}

// ForgetPassword отправляет на email ссылку для сброса пароля с токеном,
// действующим один час.
func (s *AuthService) ForgetPassword(ctx context.Context, email string) error {
	if _, err := s.users.GetUserByEmail(ctx, email); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrUserNotFound
		}
		return err
	}

	token, err := s.jwtMaker.GenerateResetToken(email)
	if err != nil {
		return err
	}
	link := fmt.Sprintf("%s/reset-password/%s", s.frontendURL, token)

	if err := s.sender.SendPasswordReset(email, link); err != nil {
		s.log.Error("failed to send reset email", slog.String("email", email), sl.Err(err))
		return err
	}

	s.log.Info("password reset link sent", slog.String("email", email))
	return nil
}

// ResetPassword устанавливает новый пароль по токену из письма.
func (s *AuthService) ResetPassword(ctx context.Context, token, newPassword string) error {
	email, err := s.jwtMaker.ParseResetToken(token)
	if err != nil {
		return ErrInvalidCredentials
	}

	hashed, err := password.GetHash(newPassword)
	if err != nil {
		return err
	}
	if err := s.users.UpdateUserPassword(ctx, email, hashed); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrUserNotFound
		}
		return err
	}

	s.log.Info("password reset", slog.String("email", email))
	return nil
}

func (s *AuthService) issueTokens(ctx context.Context, user *models.User) (string, string, error) {
	access, err := s.jwtMaker.GenerateAccessToken(user.UID, user.Username, user.Email, user.Role)
	if err != nil {
		return "", "", err
	}
	refresh, err := s.jwtMaker.GenerateRefreshToken(user.UID, user.Username, user.Email, user.Role)
	if err != nil {
		return "", "", err
	}
	if err := s.users.UpdateRefreshToken(ctx, user.UID, refresh); err != nil {
		return "", "", err
	}
	return access, refresh, nil
}

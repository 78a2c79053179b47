// Package jwt реализует генерацию и парсинг JWT токенов с пользовательскими claim полями.
//
// CustomClaims расширяет стандартные claims JWT, добавляя uid, username,
// email и роль пользователя.
package jwt

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// CustomClaims описывает пользовательские данные, хранящиеся в JWT.
type CustomClaims struct {
	UserUID              string `json:"id"`       // Уникальный идентификатор пользователя
	Username             string `json:"username"` // Имя пользователя
	Email                string `json:"email"`    // Электронная почта
	Role                 string `json:"role"`     // Роль пользователя
	jwt.RegisteredClaims        // Встроенные стандартные claims JWT (ExpiresAt, IssuedAt и пр.)
}

// ResetClaims описывает данные токена сброса пароля.
type ResetClaims struct {
	Email                string `json:"email"`
	jwt.RegisteredClaims
}

// resetSubject отличает токен сброса пароля от access-токена.
// Без этой метки access-токен распарсился бы как валидный токен сброса,
// поскольку оба подписаны одним секретом.
const resetSubject = "password-reset"

// GenerateAccessToken создает access-токен с заданными claim-полями,
// подписывая его access-секретом. Время жизни определяется полем accessTTL.
func (j *MakerImpl) GenerateAccessToken(uid, username, email, role string) (string, error) {
	return j.generate(uid, username, email, role, j.accessSecret, j.accessTTL)
}

// GenerateRefreshToken создает refresh-токен с теми же claim-полями,
// подписывая его refresh-секретом. Время жизни определяется полем refreshTTL.
func (j *MakerImpl) GenerateRefreshToken(uid, username, email, role string) (string, error) {
	return j.generate(uid, username, email, role, j.refreshSecret, j.refreshTTL)
}

func (j *MakerImpl) generate(uid, username, email, role, secret string, ttl time.Duration) (string, error) {
	claims := CustomClaims{
		UserUID:  uid,
		Username: username,
		Email:    email,
		Role:     role,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(ttl)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}

// ParseAccessToken парсит access-токен, проверяет его подпись и срок действия,
// возвращает CustomClaims с данными, если токен корректен.
func (j *MakerImpl) ParseAccessToken(tokenStr string) (*CustomClaims, error) {
	return j.parse(tokenStr, j.accessSecret)
}

// ParseRefreshToken парсит refresh-токен, проверяет его подпись и срок действия.
func (j *MakerImpl) ParseRefreshToken(tokenStr string) (*CustomClaims, error) {
	return j.parse(tokenStr, j.refreshSecret)
}

func (j *MakerImpl) parse(tokenStr, secret string) (*CustomClaims, error) {
	const op = "jwt.ParseToken"
	token, err := jwt.ParseWithClaims(tokenStr, &CustomClaims{}, func(_ *jwt.Token) (any, error) {
		return []byte(secret), nil
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	claims, ok := token.Claims.(*CustomClaims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("%s: invalid token", op)
	}
	return claims, nil
}

// GenerateResetToken создает токен сброса пароля, привязанный к email.
// Токен подписывается access-секретом и живёт один час.
func (j *MakerImpl) GenerateResetToken(email string) (string, error) {
	claims := ResetClaims{
		Email: email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   resetSubject,
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(j.resetTTL)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(j.accessSecret))
}

// ParseResetToken проверяет токен сброса пароля и возвращает email из claims.
func (j *MakerImpl) ParseResetToken(tokenStr string) (string, error) {
	const op = "jwt.ParseResetToken"
	token, err := jwt.ParseWithClaims(tokenStr, &ResetClaims{}, func(_ *jwt.Token) (any, error) {
		return []byte(j.accessSecret), nil
	})
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	claims, ok := token.Claims.(*ResetClaims)
	if !ok || !token.Valid || claims.Subject != resetSubject {
		return "", fmt.Errorf("%s: invalid token", op)
	}
	return claims.Email, nil
}

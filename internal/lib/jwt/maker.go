// Package jwt реализует генерацию и парсинг JWT токенов с пользовательскими claim полями.
//
// Maker определяет интерфейс для создания и проверки пары access/refresh токенов.
// MakerImpl — конкретная реализация с двумя секретными ключами и сроками действия.
package jwt

import (
	"time"
)

// Maker описывает интерфейс для генерации и парсинга JWT токенов.
//
// Access и refresh токены подписываются разными секретами и несут
// одинаковый набор claim-полей: uid, username, email и роль.
type Maker interface {
	// GenerateAccessToken создаёт короткоживущий access-токен.
	GenerateAccessToken(uid, username, email, role string) (string, error)
	// GenerateRefreshToken создаёт долгоживущий refresh-токен.
	GenerateRefreshToken(uid, username, email, role string) (string, error)
	// ParseAccessToken проверяет подпись access-токена и возвращает claims.
	ParseAccessToken(tokenStr string) (*CustomClaims, error)
	// ParseRefreshToken проверяет подпись refresh-токена и возвращает claims.
	ParseRefreshToken(tokenStr string) (*CustomClaims, error)
	// GenerateResetToken создаёт токен для сброса пароля по email.
	GenerateResetToken(email string) (string, error)
	// ParseResetToken проверяет токен сброса пароля и возвращает email.
	ParseResetToken(tokenStr string) (string, error)
}

// MakerImpl реализует интерфейс Maker с использованием двух секретных ключей
// и времени жизни токенов (TTL).
type MakerImpl struct {
	accessSecret  string        // Секретный ключ для подписи access-токенов.
	refreshSecret string        // Секретный ключ для подписи refresh-токенов.
	accessTTL     time.Duration // Время жизни access-токена.
	refreshTTL    time.Duration // Время жизни refresh-токена.
	resetTTL      time.Duration // Время жизни токена сброса пароля.
}

// NewMaker создаёт новый экземпляр MakerImpl на основе секретных ключей и TTL.
func NewMaker(accessSecret, refreshSecret string, accessTTL, refreshTTL time.Duration) *MakerImpl {
	return &MakerImpl{
		accessSecret:  accessSecret,
		refreshSecret: refreshSecret,
		accessTTL:     accessTTL,
		refreshTTL:    refreshTTL,
		resetTTL:      time.Hour,
	}
}

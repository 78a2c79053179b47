// Package otp реализует генерацию одноразовых числовых кодов
// для подтверждения адреса электронной почты перед созданием аккаунта.
package otp

import (
	"crypto/rand"
	"fmt"
	"math/big"
)

// Length количество цифр в одноразовом коде.
const Length = 6

// Generate возвращает случайный шестизначный код в виде строки.
// Код всегда начинается с ненулевой цифры, ведущие нули не допускаются.
func Generate() (string, error) {
	const op = "otp.Generate"
	// диапазон 100000..999999
	n, err := rand.Int(rand.Reader, big.NewInt(900000))
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	return fmt.Sprintf("%06d", n.Int64()+100000), nil
}

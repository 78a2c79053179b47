// Package models содержит доменную модель пользователя системы,
// включающую данные учётной записи, хэш пароля и refresh-токен.
// Структура используется в бизнес‑логике и при работе с хранилищем.
package models

import "time"

// User представляет зарегистрированного пользователя системы.
// PasswordHash равен nil до тех пор, пока пользователь не установил пароль
// после подтверждения OTP. RefreshToken хранит единственный активный
// refresh-токен пользователя (nil — пользователь ещё не авторизовался).
type User struct {
	UID          string     `json:"id"`
	Username     string     `json:"username"`
	Email        string     `json:"email"`
	PasswordHash *string    `json:"-"`
	Role         string     `json:"role"` // student, instructor или admin
	RefreshToken *string    `json:"-"`
	CreatedAt    time.Time  `json:"created_at"`
	Addresses    []*Address `json:"addresses,omitempty"`
}

// Address представляет один адрес из адресной книги пользователя.
type Address struct {
	ID         string `json:"id"`
	UserUID    string `json:"-"`
	Label      string `json:"label"`
	Street     string `json:"street"`
	City       string `json:"city"`
	PostalCode string `json:"postal_code"`
}

// DummyUserUpdate используется для приёма изменений профиля из JSON-запроса.
// Email, роль и пароль через этот запрос не меняются: для них есть
// отдельные операции с собственными проверками.
type DummyUserUpdate struct {
	Username  string         `json:"username" validate:"omitempty,min=3,max=100"`
	Addresses []DummyAddress `json:"addresses" validate:"omitempty,dive"`
}

// DummyAddress используется для приёма адреса из JSON-запроса.
type DummyAddress struct {
	Label      string `json:"label" validate:"required"`
	Street     string `json:"street" validate:"required"`
	City       string `json:"city" validate:"required"`
	PostalCode string `json:"postal_code" validate:"required"`
}

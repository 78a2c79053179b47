// Package models содержит доменные структуры, описывающие право доступа
// пользователя к курсу, а также вспомогательные типы для работы с данными
// из внешних источников (например, JSON-запросы).
package models

import "time"

// Entitlement представляет право доступа пользователя к одному курсу
// с окном действия StartedAt..EndedAt. На пару (пользователь, курс)
// существует не более одной записи. Запись активна, пока EndedAt в будущем;
// истёкшие записи помечаются Subscribed=false, но не удаляются.
type Entitlement struct {
	ID         int       `json:"id"`
	UserUID    string    `json:"user_id"`
	CourseID   string    `json:"course_id"`
	Subscribed bool      `json:"subscribed"`
	StartedAt  time.Time `json:"started_at"`
	EndedAt    time.Time `json:"ended_at"`
}

// Active сообщает, действует ли право доступа на момент now.
func (e *Entitlement) Active(now time.Time) bool {
	return e.EndedAt.After(now)
}

// DummyEntitlement используется для приёма данных административного
// переопределения из JSON-запроса. Даты приходят строками в формате
// 02-01-2006, чтобы их можно было валидировать и парсить вручную.
type DummyEntitlement struct {
	UserUID    string `json:"user_id" validate:"required,uuid"`
	CourseID   string `json:"course_id" validate:"required,uuid"`
	Subscribed bool   `json:"subscribed"`
	StartedAt  string `json:"started_at" validate:"required"`
	EndedAt    string `json:"ended_at" validate:"required"`
}

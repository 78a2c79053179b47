package models

import "time"

// OtpTTL задаёт срок действия одноразового кода с момента создания записи.
const OtpTTL = 15 * time.Minute

// Otp представляет временную запись одноразового кода подтверждения email.
// Запись уникальна по email: повторная отправка обновляет код и UpdatedAt
// на месте, вторая запись не создаётся. Запись удаляется после успешной
// проверки, по истечении срока действия или при ошибке отправки письма.
type Otp struct {
	ID        int       `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	Code      string    `json:"-"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Expired сообщает, истёк ли срок действия кода на момент now.
func (o *Otp) Expired(now time.Time) bool {
	return now.After(o.CreatedAt.Add(OtpTTL))
}

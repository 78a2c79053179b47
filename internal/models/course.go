package models

import "time"

// Course представляет курс, созданный преподавателем.
// VideoURL обязателен, ImageURL и ResourceURL могут отсутствовать.
type Course struct {
	ID            string    `json:"id"`
	Title         string    `json:"title"`
	Description   string    `json:"description"`
	AuthorName    string    `json:"author_name"`
	AuthorEmail   string    `json:"author_email"`
	Price         float64   `json:"price"`
	Category      string    `json:"category"`
	VideoURL      string    `json:"video_url"`
	ImageURL      *string   `json:"image_url,omitempty"`
	ResourceURL   *string   `json:"resource_url,omitempty"`
	InstructorUID string    `json:"instructor_id"`
	CreatedAt     time.Time `json:"created_at"`
}

// DummyCourse используется для приёма данных курса из multipart-запроса,
// прежде чем конвертировать их в Course. Пути к файлам заполняются
// после сохранения загруженных файлов на диск.
type DummyCourse struct {
	Title       string  `json:"title" validate:"required"`
	Description string  `json:"description" validate:"required"`
	Price       float64 `json:"price" validate:"required,gt=0"`
	Category    string  `json:"category" validate:"required"`
}

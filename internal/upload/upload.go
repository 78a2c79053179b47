// Package upload сохраняет загруженные через multipart-запрос файлы на диск.
//
// Файлы раскладываются по подкаталогам в зависимости от MIME-типа:
// видео, изображения, документы и всё прочее. Имя файла формируется из
// отметки времени и случайного суффикса, чтобы исключить коллизии имён.
package upload

import (
	"fmt"
	"io"
	"math/rand/v2"
	"mime/multipart"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"
)

// Saver сохраняет загруженные файлы в подкаталоги корневого каталога.
type Saver struct {
	root string
}

// NewSaver создаёт Saver с указанным корневым каталогом загрузок.
func NewSaver(root string) *Saver {
	return &Saver{root: root}
}

// SubdirFor возвращает подкаталог загрузки для MIME-типа файла.
func SubdirFor(contentType string) string {
	switch {
	case strings.HasPrefix(contentType, "video/"):
		return "videos"
	case strings.HasPrefix(contentType, "image/"):
		return "images"
	case contentType == "application/pdf",
		contentType == "application/msword",
		strings.HasPrefix(contentType, "application/vnd"):
		return "files"
	default:
		return "others"
	}
}

// SaveFile записывает загруженный файл на диск и возвращает
// относительный путь вида uploads/videos/1700000000000-123456789.mp4.
// Запись синхронная: файл полностью сохраняется до ответа клиенту.
func (s *Saver) SaveFile(fh *multipart.FileHeader) (string, error) {
	const op = "upload.SaveFile"

	subdir := SubdirFor(fh.Header.Get("Content-Type"))
	dir := filepath.Join(s.root, subdir)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}

	name := fmt.Sprintf("%d-%d%s", time.Now().UnixMilli(), rand.IntN(1_000_000_000),
		filepath.Ext(fh.Filename))

	src, err := fh.Open()
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = src.Close()
	}()

	dst, err := os.Create(filepath.Join(dir, name))
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}

	if _, err := io.Copy(dst, src); err != nil {
		_ = dst.Close()
		return "", fmt.Errorf("%s: %w", op, err)
	}
	if err := dst.Close(); err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}

	return path.Join("uploads", subdir, name), nil
}

// Package services содержит фоновую очистку каталога логов.
//
// Сервис раз в сутки, в 01:10 по локальному времени, удаляет файлы логов
// старше заданного срока хранения.
package services

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/magabrotheeeer/course-marketplace/internal/lib/sl"
)

// RetentionDays — срок хранения файлов логов в днях.
const RetentionDays = 14

// CleanerService удаляет устаревшие файлы логов из каталога logDir.
type CleanerService struct {
	logDir string
	log    *slog.Logger
}

// NewCleanerService создает новый экземпляр CleanerService.
func NewCleanerService(logDir string, log *slog.Logger) *CleanerService {
	return &CleanerService{
		logDir: logDir,
		log:    log,
	}
}

// Run запускает ежедневную очистку. Первый запуск откладывается до
// ближайших 01:10, затем очистка повторяется раз в сутки до отмены ctx.
func (s *CleanerService) Run(ctx context.Context) {
	timer := time.NewTimer(untilNextRun(time.Now()))
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-timer.C:
			s.CleanOnce()
			timer.Reset(untilNextRun(time.Now()))
		}
	}
}

// CleanOnce удаляет файлы логов старше RetentionDays.
func (s *CleanerService) CleanOnce() {
	s.log.Info("starting log cleanup", slog.String("dir", s.logDir))

	cutoff := time.Now().AddDate(0, 0, -RetentionDays)
	entries, err := os.ReadDir(s.logDir)
	if err != nil {
		s.log.Error("failed to read log directory", sl.Err(err))
		return
	}

	var removed int
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".log" {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			s.log.Warn("failed to stat log file", slog.String("file", entry.Name()), sl.Err(err))
			continue
		}
		if info.ModTime().After(cutoff) {
			continue
		}
		if err := os.Remove(filepath.Join(s.logDir, entry.Name())); err != nil {
			s.log.Warn("failed to remove log file", slog.String("file", entry.Name()), sl.Err(err))
			continue
		}
		removed++
	}

	s.log.Info("log cleanup finished", slog.Int("removed", removed))
}

// untilNextRun возвращает время до ближайших 01:10.
func untilNextRun(now time.Time) time.Duration {
	next := time.Date(now.Year(), now.Month(), now.Day(), 1, 10, 0, 0, now.Location())
	if !next.After(now) {
		next = next.AddDate(0, 0, 1)
	}
	return next.Sub(now)
}

// Package main Course Marketplace API
//
// @title           Course Marketplace API
// @version         1.0
// @description     API для маркетплейса учебных курсов
// @termsOfService  http://swagger.io/terms/

// @contact.name   API Support
// @contact.url    http://www.swagger.io/support
// @contact.email  support@swagger.io

// @license.name  MIT
// @license.url   https://opensource.org/licenses/MIT

// @host      localhost:8080
// @BasePath  /api/v1

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	coursemarketplace "github.com/magabrotheeeer/course-marketplace/internal/app/coursemarketplace"
	"github.com/magabrotheeeer/course-marketplace/internal/config"
)

func main() {
	cfg := config.MustLoad()
	logger := setupLogger(cfg.LogDir)

	logger.Info("starting course-marketplace", slog.String("env", cfg.Env))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	app, err := coursemarketplace.New(ctx, cfg, logger)
	if err != nil {
		logger.Error("failed to initialize app", slog.Any("err", err))
		os.Exit(1)
	}

	if err := app.Run(ctx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("app stopped with error", slog.Any("err", err))
		os.Exit(1)
	}

	logger.Info("course-marketplace stopped gracefully")
}

// setupLogger пишет логи одновременно в stdout и в дневной файл в logDir.
func setupLogger(logDir string) *slog.Logger {
	w := io.Writer(os.Stdout)
	if err := os.MkdirAll(logDir, 0o755); err == nil {
		name := fmt.Sprintf("%s.log", time.Now().Format("2006-01-02"))
		f, ferr := os.OpenFile(filepath.Join(logDir, name),
			os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if ferr == nil {
			w = io.MultiWriter(os.Stdout, f)
		}
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: slog.LevelDebug}))
}

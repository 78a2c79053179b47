// Package coursemarketplace собирает приложение: хранилище, миграции, кеш,
// SMTP-транспорт, бизнес-сервисы и HTTP-сервер с маршрутами.
package coursemarketplace

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi"

	"github.com/magabrotheeeer/course-marketplace/internal/cache"
	"github.com/magabrotheeeer/course-marketplace/internal/config"
	"github.com/magabrotheeeer/course-marketplace/internal/lib/jwt"
	"github.com/magabrotheeeer/course-marketplace/internal/lib/smtp"
	"github.com/magabrotheeeer/course-marketplace/internal/migrations"
	authservice "github.com/magabrotheeeer/course-marketplace/internal/services/auth"
	cleanerservice "github.com/magabrotheeeer/course-marketplace/internal/services/cleaner"
	courseservice "github.com/magabrotheeeer/course-marketplace/internal/services/course"
	senderservice "github.com/magabrotheeeer/course-marketplace/internal/services/sender"
	subservice "github.com/magabrotheeeer/course-marketplace/internal/services/subscription"
	userservice "github.com/magabrotheeeer/course-marketplace/internal/services/user"
	"github.com/magabrotheeeer/course-marketplace/internal/storage/repository"
	"github.com/magabrotheeeer/course-marketplace/internal/upload"
)

// App объединяет HTTP-сервер и фоновую очистку логов.
type App struct {
	server  *http.Server
	logger  *slog.Logger
	db      *repository.Storage
	cleaner *cleanerservice.CleanerService
}

// New инициализирует все зависимости приложения и возвращает готовый App.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	db, err := repository.New(cfg.StorageConnectionString)
	if err != nil {
		return nil, err
	}
	if err = migrations.Run(db.DB, cfg.MigrationsPath); err != nil {
		return nil, err
	}

	cacheRedis, err := cache.InitServer(ctx, cfg.RedisConnection)
	if err != nil {
		return nil, err
	}

	jwtMaker := jwt.NewMaker(cfg.JWTSecretKey, cfg.JWTSecretRefreshKey,
		cfg.AccessTokenTTL, cfg.RefreshTokenTTL)
	transport := smtp.NewTransport(cfg.SMTPConnection, logger)
	saver := upload.NewSaver(cfg.UploadDir)

	senderService := senderservice.NewSenderService(logger, transport)
	authService := authservice.NewAuthService(db, db, senderService, jwtMaker,
		cfg.FrontendURL, logger)
	subscriptionService := subservice.NewSubscriptionService(db, cacheRedis, logger)
	courseService := courseservice.NewCourseService(db, cacheRedis, logger)
	userService := userservice.NewUserService(db, logger)
	cleaner := cleanerservice.NewCleanerService(cfg.LogDir, logger)

	router := chi.NewRouter()
	RegisterRoutes(router, logger, &Services{
		Auth:         authService,
		Subscription: subscriptionService,
		Course:       courseService,
		User:         userService,
		Storage:      db,
		JWTMaker:     jwtMaker,
		Saver:        saver,
		UploadDir:    cfg.UploadDir,
		FrontendURL:  cfg.FrontendURL,
	})

	srv := &http.Server{
		Addr:         cfg.AddressHTTP,
		Handler:      router,
		ReadTimeout:  cfg.TimeoutHTTP,
		WriteTimeout: cfg.TimeoutHTTP,
		IdleTimeout:  cfg.IdleTimeout,
	}

	return &App{
		server:  srv,
		logger:  logger,
		db:      db,
		cleaner: cleaner,
	}, nil
}

// Run запускает HTTP-сервер и фоновую очистку логов и блокируется
// до отмены ctx или фатальной ошибки сервера.
func (a *App) Run(ctx context.Context) error {
	go a.cleaner.Run(ctx)

	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("HTTP server starting on", slog.String("address", a.server.Addr))
		err := a.server.ListenAndServe()
		if errors.Is(err, http.ErrServerClosed) {
			errCh <- nil
		} else {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		timeoutCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		a.logger.Info("shutting down HTTP server gracefully")
		err := a.server.Shutdown(timeoutCtx)
		_ = a.db.DB.Close()
		return err
	}
}

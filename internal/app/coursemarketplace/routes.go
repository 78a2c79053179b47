// Package coursemarketplace предоставляет маршруты для основного приложения.
package coursemarketplace

import (
	"net/http"
	"time"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/time/rate"

	httpSwagger "github.com/swaggo/http-swagger"

	"github.com/magabrotheeeer/course-marketplace/internal/http/handlers/auth/changepassword"
	"github.com/magabrotheeeer/course-marketplace/internal/http/handlers/auth/forgetpassword"
	"github.com/magabrotheeeer/course-marketplace/internal/http/handlers/auth/login"
	"github.com/magabrotheeeer/course-marketplace/internal/http/handlers/auth/logout"
	"github.com/magabrotheeeer/course-marketplace/internal/http/handlers/auth/createpassword"
	"github.com/magabrotheeeer/course-marketplace/internal/http/handlers/auth/refresh"
	"github.com/magabrotheeeer/course-marketplace/internal/http/handlers/auth/resetpassword"
	"github.com/magabrotheeeer/course-marketplace/internal/http/handlers/auth/sendotp"
	"github.com/magabrotheeeer/course-marketplace/internal/http/handlers/auth/verifyotp"
	coursecreate "github.com/magabrotheeeer/course-marketplace/internal/http/handlers/course/create"
	courselist "github.com/magabrotheeeer/course-marketplace/internal/http/handlers/course/list"
	courselistmine "github.com/magabrotheeeer/course-marketplace/internal/http/handlers/course/listmine"
	courseread "github.com/magabrotheeeer/course-marketplace/internal/http/handlers/course/read"
	courseremove "github.com/magabrotheeeer/course-marketplace/internal/http/handlers/course/remove"
	courseupdate "github.com/magabrotheeeer/course-marketplace/internal/http/handlers/course/update"
	"github.com/magabrotheeeer/course-marketplace/internal/http/handlers/health"
	"github.com/magabrotheeeer/course-marketplace/internal/http/handlers/subscription/activecourses"
	"github.com/magabrotheeeer/course-marketplace/internal/http/handlers/subscription/adminremove"
	"github.com/magabrotheeeer/course-marketplace/internal/http/handlers/subscription/adminset"
	sublist "github.com/magabrotheeeer/course-marketplace/internal/http/handlers/subscription/list"
	"github.com/magabrotheeeer/course-marketplace/internal/http/handlers/subscription/subscribe"
	userlist "github.com/magabrotheeeer/course-marketplace/internal/http/handlers/user/list"
	userread "github.com/magabrotheeeer/course-marketplace/internal/http/handlers/user/read"
	userremove "github.com/magabrotheeeer/course-marketplace/internal/http/handlers/user/remove"
	"github.com/magabrotheeeer/course-marketplace/internal/http/handlers/user/removeaddress"
	userupdate "github.com/magabrotheeeer/course-marketplace/internal/http/handlers/user/update"
	"github.com/magabrotheeeer/course-marketplace/internal/http/middlewarectx"
	"github.com/magabrotheeeer/course-marketplace/internal/lib/jwt"
	authservice "github.com/magabrotheeeer/course-marketplace/internal/services/auth"
	courseservice "github.com/magabrotheeeer/course-marketplace/internal/services/course"
	subservice "github.com/magabrotheeeer/course-marketplace/internal/services/subscription"
	userservice "github.com/magabrotheeeer/course-marketplace/internal/services/user"
	"github.com/magabrotheeeer/course-marketplace/internal/storage/repository"
	"github.com/magabrotheeeer/course-marketplace/internal/upload"

	"log/slog"
)

// Services содержит зависимости, необходимые для регистрации маршрутов.
type Services struct {
	Auth         *authservice.AuthService
	Subscription *subservice.SubscriptionService
	Course       *courseservice.CourseService
	User         *userservice.UserService
	Storage      *repository.Storage
	JWTMaker     jwt.Maker
	Saver        *upload.Saver
	UploadDir    string
	FrontendURL  string
}

// RegisterRoutes регистрирует все маршруты приложения.
func RegisterRoutes(r chi.Router, logger *slog.Logger, s *Services) {
	// Глобальные middleware
	r.Use(
		middleware.RequestID,
		middleware.Logger,
		middleware.Recoverer,
		middleware.URLFormat,
	)

	// Ограничение частоты для конечных точек, отправляющих письма
	mailLimiter := rate.NewLimiter(rate.Every(time.Minute/5), 5)

	r.Route("/api/v1", func(r chi.Router) {
		// Открытые конечные точки
		r.Group(func(r chi.Router) {
			r.Use(middlewarectx.RateLimitMiddleware(logger, mailLimiter))
			r.Post("/auth/send-otp", sendotp.New(logger, s.Auth).ServeHTTP)
			r.Post("/auth/forget-password", forgetpassword.New(logger, s.Auth).ServeHTTP)
		})
		r.Post("/auth/verify-otp", verifyotp.New(logger, s.Auth).ServeHTTP)
		r.Post("/auth/create-password", createpassword.New(logger, s.Auth).ServeHTTP)
		r.Post("/auth/login", login.New(logger, s.Auth).ServeHTTP)
		r.Post("/auth/refresh-token", refresh.New(logger, s.Auth).ServeHTTP)
		r.Post("/auth/reset-password", resetpassword.New(logger, s.Auth).ServeHTTP)

		// Каталог курсов доступен без входа
		r.Get("/courses/getCourses", courselist.New(logger, s.Course).ServeHTTP)
		r.Get("/courses/{id}", courseread.New(logger, s.Course).ServeHTTP)

		r.Get("/health", health.New(logger, s.Storage).ServeHTTP)

		// Группа с JWT аутентификацией
		r.Group(func(r chi.Router) {
			r.Use(middlewarectx.JWTMiddleware(s.JWTMaker, logger))

			r.Post("/auth/logout", logout.New(logger, s.Auth).ServeHTTP)
			r.Post("/auth/change-password", changepassword.New(logger, s.Auth).ServeHTTP)

			r.Group(func(r chi.Router) {
				r.Use(middlewarectx.RoleMiddleware(logger, "instructor", "admin"))
				r.Post("/courses/create", coursecreate.New(logger, s.Course, s.Saver).ServeHTTP)
				r.Put("/courses/instructorCourse/update/{id}", courseupdate.New(logger, s.Course, s.Saver).ServeHTTP)
				r.Delete("/courses/deleteCourse/{id}", courseremove.New(logger, s.Course).ServeHTTP)
			})

			r.Group(func(r chi.Router) {
				r.Use(middlewarectx.RoleMiddleware(logger, "admin", middlewarectx.SelfRole))
				r.Get("/courses/instructorCourse/{id}", courselistmine.New(logger, s.Course).ServeHTTP)
				r.Post("/subscription/set-course", subscribe.New(logger, s.Subscription).ServeHTTP)
				r.Get("/subscription/get-course/{id}", activecourses.New(logger, s.Subscription).ServeHTTP)
				r.Get("/subscription/list/{id}", sublist.New(logger, s.Subscription).ServeHTTP)
			})
			r.Group(func(r chi.Router) {
				r.Use(middlewarectx.RoleMiddleware(logger, "admin"))
				r.Put("/subscription/add-course", adminset.New(logger, s.Subscription).ServeHTTP)
				r.Put("/subscription/remove-course", adminremove.New(logger, s.Subscription).ServeHTTP)
				r.Get("/users", userlist.New(logger, s.User).ServeHTTP)
				r.Get("/users/roles", userlist.New(logger, s.User).ServeHTTP)
			})
			r.Group(func(r chi.Router) {
				r.Use(middlewarectx.RoleMiddleware(logger, "admin", middlewarectx.SelfRole))
				r.Get("/users/{id}", userread.New(logger, s.User).ServeHTTP)
				r.Put("/users/{id}", userupdate.New(logger, s.User).ServeHTTP)
				r.Delete("/users/{id}", userremove.New(logger, s.User).ServeHTTP)
				r.Delete("/users/{id}/addresses/{addressId}", removeaddress.New(logger, s.User).ServeHTTP)
			})
		})
	})

	// Раздача загруженных файлов курсов. Медиа встраивается на страницах
	// фронтенда, поэтому ответы помечаются CORS-заголовками.
	r.Handle("/uploads/*", corsStatic(s.FrontendURL, http.StripPrefix("/uploads/",
		http.FileServer(http.Dir(s.UploadDir)))))

	r.Handle("/metrics", promhttp.Handler())
	// Swagger docs endpoint
	r.Get("/docs/*", httpSwagger.WrapHandler)
}

// corsStatic разрешает фронтенду загружать статику с другого origin.
// Пустой origin означает, что файлы доступны отовсюду.
func corsStatic(origin string, next http.Handler) http.Handler {
	if origin == "" {
		origin = "*"
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", origin)
		w.Header().Set("Access-Control-Allow-Methods", "GET, HEAD, OPTIONS")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

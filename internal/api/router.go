package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/jwtauth/v5"
	"github.com/redis/go-redis/v9"

	"studentms/internal/api/handler"
	"studentms/internal/api/middleware"
	"studentms/internal/app/service"
	"studentms/internal/common/security"
	"studentms/internal/domain/model"
	"studentms/internal/domain/repository"
	"studentms/internal/platform/config"
)

func NewRouter(
	userRepo repository.UserRepository,
	rdb *redis.Client,
	authService *service.AuthService,
	profileService *service.ProfileService,
	userService *service.UserService,
	studentService *service.StudentService,
	departmentService *service.DepartmentService,
	sectionService *service.SectionService,
	statsService *service.StatsService,
	reportService *service.ReportService,
) http.Handler {
	r := chi.NewRouter()

	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(chiMiddleware.Logger)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Timeout(60 * time.Second))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{config.AppConfig.ClientURL},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// The session cookie is checked first, the Authorization header is the fallback.
	r.Use(jwtauth.Verify(security.TokenAuth, security.TokenFromSessionCookie, jwtauth.TokenFromHeader))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("OK"))
	})

	authenticate := middleware.Authenticator(userRepo)
	adminOnly := middleware.RequireRole(model.RoleAdmin)

	r.Route("/api/v1", func(v1 chi.Router) {
		authHandler := handler.NewAuthHandler(authService)
		v1.Route("/auth", func(auth chi.Router) {
			auth.Group(func(public chi.Router) {
				public.Use(middleware.LoginRateLimiter(rdb, config.AppConfig.LoginRateWindow, config.AppConfig.LoginRateMax))
				authHandler.RegisterPublicRoutes(public)
			})
			auth.Group(func(protected chi.Router) {
				protected.Use(authenticate)
				authHandler.RegisterProtectedRoutes(protected)
			})
			auth.Group(func(admin chi.Router) {
				admin.Use(authenticate, adminOnly)
				authHandler.RegisterAdminRoutes(admin)
			})
		})

		profileHandler := handler.NewProfileHandler(profileService)
		v1.Route("/users/profile", func(profile chi.Router) {
			profile.Use(authenticate)
			profileHandler.RegisterRoutes(profile)
		})

		userHandler := handler.NewUserHandler(userService)
		v1.Route("/admin/users", func(admin chi.Router) {
			admin.Use(authenticate, adminOnly)
			userHandler.RegisterRoutes(admin)
		})

		studentHandler := handler.NewStudentHandler(studentService)
		v1.Route("/students", func(students chi.Router) {
			students.Use(authenticate)
			studentHandler.RegisterReadRoutes(students)
			students.Group(func(writes chi.Router) {
				writes.Use(adminOnly)
				studentHandler.RegisterWriteRoutes(writes)
			})
		})

		departmentHandler := handler.NewDepartmentHandler(departmentService)
		v1.Route("/departments", func(departments chi.Router) {
			departments.Use(authenticate)
			departmentHandler.RegisterReadRoutes(departments)
			departments.Group(func(writes chi.Router) {
				writes.Use(adminOnly)
				departmentHandler.RegisterWriteRoutes(writes)
			})
		})

		sectionHandler := handler.NewSectionHandler(sectionService)
		v1.Route("/sections", func(sections chi.Router) {
			sections.Use(authenticate)
			sectionHandler.RegisterReadRoutes(sections)
			sections.Group(func(writes chi.Router) {
				writes.Use(adminOnly)
				sectionHandler.RegisterWriteRoutes(writes)
			})
		})

		dashboardHandler := handler.NewDashboardHandler(statsService)
		v1.Route("/dashboard", func(dashboard chi.Router) {
			dashboard.Use(authenticate)
			dashboardHandler.RegisterRoutes(dashboard)
		})

		reportHandler := handler.NewReportHandler(reportService)
		v1.Route("/reports", func(reports chi.Router) {
			reports.Use(authenticate)
			reportHandler.RegisterRoutes(reports)
		})
	})

	return r
}

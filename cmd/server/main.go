package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"studentms/internal/api"
	"studentms/internal/app/service"
	"studentms/internal/common/security"
	"studentms/internal/domain/repository"
	"studentms/internal/platform/cache"
	"studentms/internal/platform/config"
	"studentms/internal/platform/database"
)

func main() {
	config.Load()
	security.InitJWT()

	database.Connect()
	defer database.Close()

	cache.ConnectRedis()
	defer cache.CloseRedis()

	userRepo := repository.NewPgUserRepository(database.DB)
	studentRepo := repository.NewPgStudentRepository(database.DB)
	departmentRepo := repository.NewPgDepartmentRepository(database.DB)
	sectionRepo := repository.NewPgSectionRepository(database.DB)
	statsRepo := repository.NewPgStatsRepository(database.DB)

	statsCache := service.NewStatsCache(config.AppConfig.StatsCacheTTL)

	authService := service.NewAuthService(
		userRepo,
		config.AppConfig.PasswordMinLen,
		config.AppConfig.LockoutThreshold,
		config.AppConfig.LockoutDuration,
	)
	profileService := service.NewProfileService(userRepo, config.AppConfig.PasswordMinLen)
	userService := service.NewUserService(userRepo)
	studentService := service.NewStudentService(studentRepo, departmentRepo, sectionRepo, statsCache)
	departmentService := service.NewDepartmentService(departmentRepo, sectionRepo, studentRepo, statsCache)
	sectionService := service.NewSectionService(sectionRepo, departmentRepo, studentRepo, statsCache)
	statsService := service.NewStatsService(statsRepo, statsCache)
	reportService := service.NewReportService(studentRepo, departmentRepo, sectionRepo)

	router := api.NewRouter(
		userRepo,
		cache.RDB,
		authService,
		profileService,
		userService,
		studentService,
		departmentService,
		sectionService,
		statsService,
		reportService,
	)

	server := &http.Server{
		Addr:         ":" + config.AppConfig.APIPort,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	go func() {
		log.Printf("Server starting on port %s", config.AppConfig.APIPort)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Could not listen on %s: %v", config.AppConfig.APIPort, err)
		}
	}()

	<-stop

	log.Println("Shutting down server...")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("Server shutdown failed: %v", err)
	}
	log.Println("Server stopped gracefully.")
}

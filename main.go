package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rmarbach/todoboard-be/internal/api"
	"github.com/rmarbach/todoboard-be/internal/auth"
	"github.com/rmarbach/todoboard-be/internal/config"
	"github.com/rmarbach/todoboard-be/internal/database"
	"github.com/rmarbach/todoboard-be/internal/logger"
	"github.com/rmarbach/todoboard-be/internal/models"
	"github.com/rmarbach/todoboard-be/internal/services"
	"github.com/rs/zerolog/log"
)

func main() {
	logger.Init()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}
	if cfg.JWT.Secret == "" {
		log.Fatal().Msg("JWT secret is not configured (set jwt.secret or JWT_SECRET)")
	}

	// Set up database
	db, err := database.New(cfg.Database.Path)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize database")
	}
	defer db.Close()

	if err := database.Migrate(db); err != nil {
		log.Fatal().Err(err).Msg("Failed to apply database migrations")
	}

	// Set up services
	userService := services.NewUserService(db)
	todoService := services.NewTodoService(db)
	tokens := auth.NewManager(cfg.JWT)

	// Provision demo accounts. Runs once at startup, idempotent.
	if cfg.Seed.Enabled {
		seeds := []services.SeedUser{
			{Username: "admin@todo.dev", FullName: "Admin User", Role: models.RoleAdmin, Password: cfg.Seed.Password},
			{Username: "user@todo.dev", FullName: "Regular User", Role: models.RoleUser, Password: cfg.Seed.Password},
		}
		if err := userService.EnsureSeedUsers(context.Background(), seeds); err != nil {
			log.Fatal().Err(err).Msg("Failed to provision seed users")
		}
	}

	// Set up router
	router := api.NewRouter(cfg, tokens, userService, todoService)

	// Set up server
	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: router,
	}

	// Graceful shutdown
	go func() {
		log.Info().Int("port", cfg.Server.Port).Msg("Server starting")
		if err := srv.ListenAndServe(); err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("ListenAndServe()")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server exiting")
}

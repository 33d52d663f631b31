package api

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rmarbach/todoboard-be/internal/api/handlers"
	"github.com/rmarbach/todoboard-be/internal/auth"
	"github.com/rmarbach/todoboard-be/internal/config"
	"github.com/rmarbach/todoboard-be/internal/models"
	"github.com/rmarbach/todoboard-be/internal/services"
)

// NewRouter creates and configures a new Chi router.
func NewRouter(cfg *config.Config, tokens *auth.Manager, userService services.UserServiceProvider, todoService services.TodoServiceProvider) *chi.Mux {
	r := chi.NewRouter()

	// Basic middleware stack
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.Server.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(userService, tokens)
	userHandler := handlers.NewUserHandler(userService)
	todoHandler := handlers.NewTodoHandler(todoService, userService)

	r.Route("/auth", func(r chi.Router) {
		r.Post("/login", authHandler.Login)
		r.With(tokens.Middleware()).Get("/me", authHandler.Me)
	})

	r.Route("/todos", func(r chi.Router) {
		r.Use(tokens.Middleware())
		r.Get("/", todoHandler.List)
		r.Post("/", todoHandler.Create)
		r.Get("/stats/status", todoHandler.StatusStats)
		r.Get("/stats/workload", todoHandler.WorkloadStats)
		r.Route("/{id}", func(r chi.Router) {
			r.Put("/", todoHandler.Update)
			r.Delete("/", todoHandler.Delete)
		})
	})

	r.Route("/users", func(r chi.Router) {
		r.Use(tokens.Middleware())
		r.Use(auth.RequireRole(models.RoleAdmin))
		r.Get("/", userHandler.List)
	})

	return r
}

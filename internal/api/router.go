package api

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"plantcare-be/internal/api/handlers"
	"plantcare-be/internal/auth"
	"plantcare-be/internal/monitoring"
	"plantcare-be/internal/services"
	"plantcare-be/internal/uploads"
	"plantcare-be/internal/web"
	"plantcare-be/internal/websocket"
)

// NewRouter creates and configures a new Chi router. Every route except
// signup/signin sits behind the session gate.
func NewRouter(
	sessions *auth.Manager,
	userService services.UserServiceProvider,
	analysisService services.AnalysisServiceProvider,
	eventService services.EventServiceProvider,
	monitor *monitoring.SystemMonitor,
	uploadStore *uploads.Store,
	hub *websocket.Hub,
	render *web.Renderer,
) *chi.Mux {
	r := chi.NewRouter()

	// Basic middleware stack
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(userService, sessions, eventService, hub, render)
	analyzeHandler := handlers.NewAnalyzeHandler(analysisService, uploadStore, eventService, hub, render)
	eventHandler := handlers.NewEventHandler(eventService)
	systemHandler := handlers.NewSystemHandler(monitor)
	wsHandler := handlers.NewWebSocketHandler(hub)

	// Public routes
	r.Get("/signup", authHandler.SignupForm)
	r.Post("/signup", authHandler.Signup)
	r.Get("/signin", authHandler.SigninForm)
	r.Post("/signin", authHandler.Signin)
	r.Get("/logout", authHandler.Logout)

	// Protected pages
	r.Group(func(r chi.Router) {
		r.Use(sessions.RequireSession)
		r.Get("/", authHandler.Home)
		r.Get("/analyze", analyzeHandler.Form)
		r.Post("/analyze", analyzeHandler.Analyze)
		r.Get("/uploads/{name}", analyzeHandler.ServeUpload)
	})

	// Protected JSON/websocket API for the dashboard
	r.Route("/api", func(r chi.Router) {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins:   []string{"http://localhost:3000"}, // Adjust for your frontend URL
			AllowedMethods:   []string{"GET", "OPTIONS"},
			AllowedHeaders:   []string{"Accept", "Content-Type"},
			AllowCredentials: true,
			MaxAge:           300,
		}))
		r.Use(sessions.RequireSessionAPI)

		r.Get("/events", eventHandler.GetRecent)
		r.Get("/system", systemHandler.Get)
		r.Get("/ws", wsHandler.Serve)
	})

	return r
}

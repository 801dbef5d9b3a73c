package handler

import (
	"net/http"
	"time"

	"borderland-arena/internal/container"
	"borderland-arena/internal/middleware"
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// requestTimeout bounds every non-streaming request
const requestTimeout = 30 * time.Second

// NewRouter configures the HTTP routes over the container's services
func NewRouter(c *container.Container) *chi.Mux {
	cfg := c.GetConfig()
	log := c.GetLogger()
	services := c.Services

	corsConfig := middleware.DefaultCORSConfig()
	corsConfig.AllowedOrigins = cfg.AllowedOrigins

	r := chi.NewRouter()
	r.Use(chiMiddleware.RealIP)
	r.Use(middleware.RequestID)
	r.Use(chiMiddleware.Recoverer)
	r.Use(middleware.Metrics)
	r.Use(middleware.CORS(corsConfig, log))

	healthHandler := NewHealthHandler(c)
	gameHandler := NewGameHandler(services.Teams, services.Leaderboard, log)
	playHandler := NewPlayHandler(services.Teams, services.Play, services.Sandbox, log)
	adminHandler := NewAdminHandler(services.AdminAuth, services.Admin, log)
	eventsHandler := NewEventsHandler(c.Hub, services.Admin, cfg.AllowedOrigins, log)

	teamSession := middleware.TeamSession(services.Sessions, log)
	adminAuth := middleware.AdminAuth(services.AdminAuth, log)
	limit := func(scope string, n int) func(http.Handler) http.Handler {
		return middleware.RateLimit(scope, n, time.Minute, c.RedisClient, log)
	}

	r.Get("/health", healthHandler.Check)
	r.Get("/health/ready", healthHandler.Ready)
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api", func(r chi.Router) {
		r.Route("/games", func(r chi.Router) {
			r.Use(chiMiddleware.Timeout(requestTimeout))
			r.With(limit("join", 30)).Post("/join", gameHandler.Join)
			r.With(limit("register", 10)).Post("/{gameID}/teams", gameHandler.RegisterTeam)
			r.Get("/{gameID}/leaderboard", gameHandler.Leaderboard)
		})

		r.Route("/play", func(r chi.Router) {
			r.Use(teamSession)

			// Streams stay open for the whole game and must not inherit the request timeout.
			r.Get("/events", eventsHandler.TeamStream)
			r.Get("/ws", eventsHandler.TeamSocket)

			r.Group(func(r chi.Router) {
				r.Use(chiMiddleware.Timeout(requestTimeout))
				r.Get("/session", playHandler.GetSession)
				r.Delete("/session", playHandler.LeaveGame)
				r.Get("/round", playHandler.Round)
				r.Post("/operative", playHandler.SelectOperative)
				r.Post("/suit", playHandler.SelectSuit)
				r.With(limit("answer", 120)).Post("/answer", playHandler.SubmitAnswer)
				r.With(limit("violation", 60)).Post("/violation", playHandler.ReportViolation)
				r.With(limit("execute", 20)).Post("/execute", playHandler.Execute)
			})
		})

		r.Route("/admin", func(r chi.Router) {
			r.Group(func(r chi.Router) {
				r.Use(chiMiddleware.Timeout(requestTimeout))
				r.Use(limit("admin-auth", 20))
				r.Get("/auth/google/login", adminHandler.GoogleLogin)
				r.Get("/auth/google/callback", adminHandler.GoogleCallback)
				r.Post("/auth/google/token", adminHandler.GoogleToken)
			})

			r.Group(func(r chi.Router) {
				r.Use(adminAuth)
				r.Get("/games/{gameID}/events", eventsHandler.AdminStream)

				r.Group(func(r chi.Router) {
					r.Use(chiMiddleware.Timeout(requestTimeout))

					r.Get("/games", adminHandler.ListGames)
					r.Post("/games", adminHandler.CreateGame)
					r.Get("/games/{gameID}", adminHandler.GetGame)
					r.Delete("/games/{gameID}", adminHandler.DeleteGame)
					r.Post("/games/{gameID}/rounds/{round}/start", adminHandler.StartRound)
					r.Post("/games/{gameID}/rounds/end", adminHandler.EndRound)
					r.Post("/games/{gameID}/finish", adminHandler.FinishGame)
					r.Get("/games/{gameID}/teams", adminHandler.ListTeams)
					r.Post("/games/{gameID}/members/{memberID}/eliminate", adminHandler.EliminateMember)
					r.Get("/games/{gameID}/eliminations", adminHandler.ListEliminations)

					r.Post("/teams/{teamID}/strike", adminHandler.StrikeTeam)
					r.Post("/teams/{teamID}/clear", adminHandler.ClearTeam)

					r.Get("/questions", adminHandler.ListQuestions)
					r.Post("/questions", adminHandler.CreateQuestion)
					r.Put("/questions/{questionID}", adminHandler.UpdateQuestion)
					r.Delete("/questions/{questionID}", adminHandler.DeleteQuestion)
				})
			})
		})
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"error":{"type":"not_found","message":"Endpoint not found"}}`))
	})

	log.Info("Router configured successfully")
	return r
}

package routes

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"golang.org/x/time/rate"

	"github.com/Dosada05/athletics-meet/handlers"
	"github.com/Dosada05/athletics-meet/metrics"
	"github.com/Dosada05/athletics-meet/middleware"
	"github.com/Dosada05/athletics-meet/models"
)

type Handlers struct {
	Auth      *handlers.AuthHandler
	Events    *handlers.EventHandler
	Athletes  *handlers.AthleteHandler
	Heats     *handlers.HeatHandler
	Schedule  *handlers.ScheduleHandler
	Results   *handlers.ResultHandler
	WebSocket *handlers.WebSocketHandler
}

type Options struct {
	JWTSecret      []byte
	CORSOrigins    []string
	RateLimitRPS   float64
	RateLimitBurst int
	RequestTimeout time.Duration
	Logger         *slog.Logger
}

// SetupRoutes собирает роутер API. Чтение открыто, изменения требуют роли organizer или admin.
func SetupRoutes(h Handlers, m *metrics.Manager, opts Options) http.Handler {
	r := chi.NewRouter()

	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(chiMiddleware.Logger)
	r.Use(chiMiddleware.Recoverer)
	r.Use(middleware.Metrics(m))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   opts.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Method(http.MethodGet, "/metrics", m.Handler())

	// websocket соединение живет дольше таймаута запроса, поэтому вне группы с Timeout
	r.Get("/ws/events/{eventID}", h.WebSocket.ServeWs)

	limiter := middleware.NewIPRateLimiter(rate.Limit(opts.RateLimitRPS), opts.RateLimitBurst)
	authenticate := middleware.Authenticate(opts.JWTSecret, opts.Logger)
	staff := middleware.Authorize(models.RoleOrganizer, models.RoleAdmin)

	r.Group(func(r chi.Router) {
		if opts.RequestTimeout > 0 {
			r.Use(chiMiddleware.Timeout(opts.RequestTimeout))
		}

		r.With(middleware.RateLimit(limiter)).Post("/auth/login", h.Auth.Login)

		r.Route("/events", func(r chi.Router) {
			r.Get("/", h.Events.List)
			r.Get("/{eventID}", h.Events.Get)
			r.Get("/{eventID}/heats", h.Heats.List)

			r.Group(func(r chi.Router) {
				r.Use(middleware.RateLimit(limiter), authenticate, staff)

				r.Post("/", h.Events.Create)
				r.Put("/{eventID}", h.Events.Update)
				r.Post("/{eventID}/heats", h.Heats.GenerateHeats)
				r.Post("/{eventID}/flights", h.Heats.GenerateFlights)
				r.Post("/{eventID}/heats/{heatID}/results", h.Results.Submit)
				r.Post("/{eventID}/ranks/recalculate", h.Results.Recalculate)
			})
		})

		r.Route("/athletes", func(r chi.Router) {
			r.Get("/", h.Athletes.List)
			r.Get("/{athleteID}", h.Athletes.Get)
			r.With(middleware.RateLimit(limiter), authenticate, staff).Post("/", h.Athletes.Create)
		})

		r.Get("/heats/{heatID}/results", h.Results.ListByHeat)

		// расписание ничего не сохраняет, токен не нужен
		r.With(middleware.RateLimit(limiter)).Post("/schedule/generate", h.Schedule.Generate)
		r.With(middleware.RateLimit(limiter), authenticate, staff).Post("/results/corrections", h.Results.ApplyCorrections)
	})

	return r
}

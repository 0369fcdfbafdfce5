package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/nikhilbhutani/kidspeak/internal/api/handlers"
	"github.com/nikhilbhutani/kidspeak/internal/api/middleware"
	"github.com/nikhilbhutani/kidspeak/internal/auth"
	"github.com/nikhilbhutani/kidspeak/internal/config"
	"github.com/nikhilbhutani/kidspeak/internal/language"
	"github.com/nikhilbhutani/kidspeak/internal/llm"
	"github.com/nikhilbhutani/kidspeak/internal/observe"
)

// Deps are the services behind the routes. Progress, Speech and Gateway
// may be nil; their routes then answer 503.
type Deps struct {
	Scorer         handlers.Scorer
	Speech         handlers.Speaker
	Progress       handlers.ProgressStore
	Languages      *language.Registry
	Gateway        llm.Gateway
	Metrics        *observe.Metrics
	MetricsHandler http.Handler
	Checks         map[string]handlers.Pinger
}

type Router struct {
	mux  *chi.Mux
	cfg  config.ServerConfig
	jwt  *auth.JWTMiddleware
	rl   *middleware.RateLimiter
	deps Deps
}

func NewRouter(cfg *config.Config, deps Deps) *Router {
	return &Router{
		mux:  chi.NewRouter(),
		cfg:  cfg.Server,
		jwt:  auth.NewJWTMiddleware(cfg.Auth.JWTSecret, cfg.Auth.Optional),
		rl:   middleware.NewRateLimiter(cfg.Server.RateLimitRPS, cfg.Server.RateLimitBurst),
		deps: deps,
	}
}

// Close stops background work started by the router.
func (rt *Router) Close() {
	rt.rl.Stop()
}

func (rt *Router) Setup() http.Handler {
	r := rt.mux

	// Global middleware
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.Logging)
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.CORS(rt.cfg.CORSOrigins))
	if rt.deps.Metrics != nil {
		r.Use(observe.Middleware(rt.deps.Metrics))
	}

	// Health endpoints (no auth, no rate limit)
	health := handlers.NewHealthHandler(rt.deps.Checks)
	r.Get("/healthz", health.Healthz)
	r.Get("/readyz", health.Readyz)
	if rt.deps.MetricsHandler != nil {
		r.Handle("/metrics", rt.deps.MetricsHandler)
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(rt.rl.Limit)
		r.Use(rt.jwt.Authenticate)

		pronH := handlers.NewPronunciationHandler(rt.deps.Scorer)
		r.Route("/pronunciation", func(r chi.Router) {
			r.Post("/validate-audio", pronH.ValidateAudio)
			r.Post("/validate-text", pronH.ValidateText)
		})

		if rt.deps.Speech != nil {
			r.Post("/speech/tts", handlers.NewSpeechHandler(rt.deps.Speech).Speak)
		} else {
			r.Post("/speech/tts", unavailable("text-to-speech"))
		}

		r.Get("/languages", handlers.NewLanguageHandler(rt.deps.Languages).List)

		if rt.deps.Progress != nil {
			r.With(auth.RequireUser).Get("/progress", handlers.NewProgressHandler(rt.deps.Progress).Get)
		} else {
			r.Get("/progress", unavailable("progress"))
		}

		if rt.deps.Gateway != nil {
			r.Get("/llm/models", handlers.NewLLMHandler(rt.deps.Gateway).Models)
		}
	})

	return r
}

func unavailable(what string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusServiceUnavailable)
		w.Write([]byte(`{"error":"` + what + ` is not configured"}`))
	}
}

package http

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	auth "github.com/mind-engage/n2s-efficiency/internal/auth/middleware"
	"github.com/mind-engage/n2s-efficiency/internal/efficiency"
	"github.com/mind-engage/n2s-efficiency/internal/eventlog"
	"github.com/mind-engage/n2s-efficiency/internal/metrics"
	"github.com/mind-engage/n2s-efficiency/internal/rbac"
	"github.com/mind-engage/n2s-efficiency/internal/scenario"
)

type Deps struct {
	Engine    *efficiency.Engine
	Scenarios *scenario.Service
	Auth      *auth.AuthService
	Log       *slog.Logger

	// Optional.
	Events  *eventlog.EventRepo
	Metrics *metrics.Metrics
	Ready   func(ctx context.Context) error

	SweepLimit      int
	CORSOrigins     []string
	EnableLocalAuth bool
	RequestTimeout  time.Duration
}

func NewRouter(d Deps) http.Handler {
	if d.Log == nil {
		d.Log = slog.Default()
	}
	if d.RequestTimeout <= 0 {
		d.RequestTimeout = 30 * time.Second
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.RealIP, middleware.Logger, middleware.Recoverer)
	r.Use(middleware.Timeout(d.RequestTimeout))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   d.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	if d.EnableLocalAuth {
		r.Post("/auth/login", auth.LoginHandler(d.Auth))
	}

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) })
	r.Get("/readyz", func(w http.ResponseWriter, r *http.Request) {
		if d.Ready != nil {
			if err := d.Ready(r.Context()); err != nil {
				http.Error(w, "not ready: "+err.Error(), http.StatusServiceUnavailable)
				return
			}
		}
		w.WriteHeader(http.StatusOK)
	})
	if d.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", d.Metrics.Handler())
	}

	// Protected API (JWT → role in context → RBAC)
	r.Group(func(pr chi.Router) {
		pr.Use(auth.JWTMiddleware(d.Auth))

		pr.Route("/model", func(mr chi.Router) {
			mr.With(rbac.RequireAny(rbac.PermModelView, rbac.PermModelCompute)).
				Get("/tables", TablesHandler(d.Engine))
			mr.With(rbac.RequireAny(rbac.PermModelView, rbac.PermModelCompute)).
				Get("/defaults", DefaultsHandler(d.Engine))
			mr.With(rbac.Require(rbac.PermModelCompute)).
				Post("/validate", ValidateHandler(d.Engine))
			mr.With(rbac.Require(rbac.PermModelCompute)).
				Post("/compute", ComputeHandler(d.Engine, d.Metrics, d.Log))
			mr.With(rbac.Require(rbac.PermModelCompute)).
				Post("/sweep", SweepHandler(d.Engine, d.SweepLimit, d.Metrics))
		})

		pr.Route("/scenarios", func(sr chi.Router) {
			sr.With(rbac.Require(rbac.PermScenarioSave)).
				Post("/", SaveScenarioHandler(d.Scenarios, d.Metrics))
			sr.With(rbac.Require(rbac.PermScenarioView)).
				Get("/", ListScenariosHandler(d.Scenarios))
			sr.With(rbac.Require(rbac.PermScenarioView)).
				Get("/{id}", GetScenarioHandler(d.Scenarios))
			sr.With(rbac.RequireOwnerOr(rbac.PermScenarioDelete, ScenarioOwner(d.Scenarios))).
				Delete("/{id}", DeleteScenarioHandler(d.Scenarios))
			sr.With(rbac.Require(rbac.PermModelCompute)).
				Post("/{id}/compute", ComputeScenarioHandler(d.Scenarios, d.Metrics))
		})

		if d.Events != nil {
			pr.With(rbac.Require(rbac.PermEventsView)).
				Get("/events", ListEventsHandler(d.Events))
		}
	})

	return r
}

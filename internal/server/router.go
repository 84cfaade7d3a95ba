package server

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"foodhub/internal/auth"
	"foodhub/internal/infrastructure/metrics"
)

type OrderHandlers interface {
	Create(w http.ResponseWriter, r *http.Request)
	List(w http.ResponseWriter, r *http.Request)
	Get(w http.ResponseWriter, r *http.Request)
	UpdateStatus(w http.ResponseWriter, r *http.Request)
}

type StreamHandler interface {
	Stream(w http.ResponseWriter, r *http.Request)
}

type PaymentHandlers interface {
	Checkout(w http.ResponseWriter, r *http.Request)
	Callback(w http.ResponseWriter, r *http.Request)
}

// Pinger reports whether the database answers.
type Pinger interface {
	PingContext(ctx context.Context) error
}

type RouterDeps struct {
	Orders        OrderHandlers
	Stream        StreamHandler
	Payments      PaymentHandlers
	JWT           *auth.JWTService
	OperatorRoles []string
	Metrics       *metrics.Metrics
	Gatherer      prometheus.Gatherer
	DB            Pinger
	Logger        *zap.Logger
}

func NewRouter(deps RouterDeps) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(deps.Metrics.Middleware)

	r.Get("/healthz", healthz(deps.DB, deps.Logger))
	r.Handle("/metrics", metrics.Handler(deps.Gatherer))

	r.Route("/api", func(r chi.Router) {
		r.With(auth.OptionalAuth(deps.JWT)).Post("/orders", deps.Orders.Create)

		r.Route("/admin", func(r chi.Router) {
			r.Use(auth.RequireRole(deps.JWT, deps.OperatorRoles...))

			r.Get("/orders", deps.Orders.List)
			r.Patch("/orders", deps.Orders.UpdateStatus)
			r.Get("/orders/{orderId}", deps.Orders.Get)
			r.Get("/notifications/stream", deps.Stream.Stream)
		})

		r.Route("/payment", func(r chi.Router) {
			r.With(auth.OptionalAuth(deps.JWT)).Post("/checkout", deps.Payments.Checkout)
			r.Post("/callback", deps.Payments.Callback)
		})
	})

	return r
}

func healthz(db Pinger, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		status, body := http.StatusOK, "ok"
		if err := db.PingContext(ctx); err != nil {
			logger.Warn("health check failed", zap.Error(err))
			status, body = http.StatusServiceUnavailable, "database unavailable"
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_ = json.NewEncoder(w).Encode(map[string]string{"status": body})
	}
}

package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/openmarket-labs/vendorflow-backend/api/controllers"
	coordcontrollers "github.com/openmarket-labs/vendorflow-backend/api/controllers/coordination"
	"github.com/openmarket-labs/vendorflow-backend/api/middleware"
	"github.com/openmarket-labs/vendorflow-backend/pkg/config"
	"github.com/openmarket-labs/vendorflow-backend/pkg/db"
	"github.com/openmarket-labs/vendorflow-backend/pkg/logger"
	"github.com/openmarket-labs/vendorflow-backend/pkg/pubsub"
	"github.com/openmarket-labs/vendorflow-backend/pkg/redis"
)

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	dbP db.Pinger,
	redisP redis.Pinger,
	pubsubP pubsub.Pinger,
	coordinationService coordcontrollers.Service,
	gatherer prometheus.Gatherer,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, dbP, redisP, pubsubP))
	})

	if gatherer != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	}

	r.Route("/api/v1/orders/{orderId}/coordination", func(r chi.Router) {
		r.Post("/", coordcontrollers.Start(coordinationService, logg))
		r.Get("/", coordcontrollers.Status(coordinationService, logg))
	})

	return r
}

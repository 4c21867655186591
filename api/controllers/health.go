package controllers

import (
	"context"
	"net/http"

	"github.com/openmarket-labs/vendorflow-backend/api/responses"
	"github.com/openmarket-labs/vendorflow-backend/pkg/config"
	"github.com/openmarket-labs/vendorflow-backend/pkg/db"
	pkgerrors "github.com/openmarket-labs/vendorflow-backend/pkg/errors"
	"github.com/openmarket-labs/vendorflow-backend/pkg/logger"
	"github.com/openmarket-labs/vendorflow-backend/pkg/pubsub"
	"github.com/openmarket-labs/vendorflow-backend/pkg/redis"
)

func HealthLive(cfg *config.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-VendorFlow-Env", cfg.App.Env)
		responses.WriteSuccess(w, map[string]string{"status": "live"})
	}
}

func HealthReady(
	cfg *config.Config,
	logg *logger.Logger,
	dbP db.Pinger,
	redisP redis.Pinger,
	pubsubP pubsub.Pinger,
) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		w.Header().Set("X-VendorFlow-Env", cfg.App.Env)

		checks := []struct {
			name   string
			pinger interface {
				Ping(ctx context.Context) error
			}
		}{
			{"db", dbP},
			{"redis", redisP},
			{"pubsub", pubsubP},
		}
		for _, check := range checks {
			if check.pinger == nil {
				continue
			}
			if err := check.pinger.Ping(ctx); err != nil {
				failCtx := logg.WithField(ctx, "dependency", check.name)
				logg.Error(failCtx, "health.ready.failed", err)
				responses.WriteError(ctx, logg, w, pkgerrors.Wrap(
					pkgerrors.CodeDependency,
					err,
					check.name+" is not ready",
				))
				return
			}
		}

		responses.WriteSuccess(w, map[string]string{"status": "ready"})
	}
}

package controllers

import (
	"context"
	"net/http"
	"time"

	"github.com/sofiamendes/wanderstay-backend/api/responses"
	"github.com/sofiamendes/wanderstay-backend/pkg/config"
	"github.com/sofiamendes/wanderstay-backend/pkg/db"
	pkgerrors "github.com/sofiamendes/wanderstay-backend/pkg/errors"
	"github.com/sofiamendes/wanderstay-backend/pkg/logger"
	"github.com/sofiamendes/wanderstay-backend/pkg/redis"
)

const readinessTimeout = 2 * time.Second

func HealthLive(cfg *config.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Wanderstay-Env", cfg.App.Env)
		responses.WriteSuccess(w, map[string]string{"status": "live"})
	}
}

// HealthReady probes the database and the Redis session store.
func HealthReady(cfg *config.Config, logg *logger.Logger, dbP db.Pinger, redisP redis.Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Wanderstay-Env", cfg.App.Env)

		ctx, cancel := context.WithTimeout(r.Context(), readinessTimeout)
		defer cancel()

		checks := map[string]string{}
		healthy := true

		if dbP != nil {
			if err := dbP.Ping(ctx); err != nil {
				healthy = false
				checks["database"] = "unavailable"
				if logg != nil {
					logg.Error(r.Context(), "database readiness probe failed", err)
				}
			} else {
				checks["database"] = "ok"
			}
		}
		if redisP != nil {
			if err := redisP.Ping(ctx); err != nil {
				healthy = false
				checks["redis"] = "unavailable"
				if logg != nil {
					logg.Error(r.Context(), "redis readiness probe failed", err)
				}
			} else {
				checks["redis"] = "ok"
			}
		}

		if !healthy {
			responses.WriteError(r.Context(), logg, w,
				pkgerrors.New(pkgerrors.CodeDependency, "dependencies unavailable").WithDetails(checks))
			return
		}
		responses.WriteSuccess(w, map[string]any{"status": "ready", "checks": checks})
	}
}

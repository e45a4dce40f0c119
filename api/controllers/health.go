package controllers

import (
	"context"
	"net/http"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/grocerease/grocerease-backend/api/responses"
	"github.com/grocerease/grocerease-backend/pkg/config"
	pkgerrors "github.com/grocerease/grocerease-backend/pkg/errors"
	"github.com/grocerease/grocerease-backend/pkg/logger"
)

const readyTimeout = 2 * time.Second

// Pinger is satisfied by the database and Redis clients.
type Pinger interface {
	Ping(context.Context) error
}

func HealthLive(cfg *config.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-GrocerEase-Env", cfg.App.Env)
		responses.WriteSuccess(w, map[string]string{"status": "live"})
	}
}

// HealthReady pings every dependency. A nil pinger is reported as disabled.
func HealthReady(cfg *config.Config, logg *logger.Logger, dbP Pinger, redisP Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-GrocerEase-Env", cfg.App.Env)

		ctx, cancel := context.WithTimeout(r.Context(), readyTimeout)
		defer cancel()

		checks := map[string]string{"database": "disabled", "redis": "disabled"}
		var dbErr, redisErr error
		g, gctx := errgroup.WithContext(ctx)
		if dbP != nil {
			g.Go(func() error {
				dbErr = dbP.Ping(gctx)
				return nil
			})
		}
		if redisP != nil {
			g.Go(func() error {
				redisErr = redisP.Ping(gctx)
				return nil
			})
		}
		_ = g.Wait()

		if dbP != nil {
			checks["database"] = status(dbErr)
		}
		if redisP != nil {
			checks["redis"] = status(redisErr)
		}

		if dbErr != nil || redisErr != nil {
			cause := dbErr
			if cause == nil {
				cause = redisErr
			}
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, cause, "dependency unavailable").WithDetails(checks))
			return
		}
		responses.WriteSuccess(w, map[string]any{"status": "ready", "checks": checks})
	}
}

func status(err error) string {
	if err != nil {
		return "down"
	}
	return "ok"
}

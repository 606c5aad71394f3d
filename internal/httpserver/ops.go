package httpserver

// file: internal/httpserver/ops.go

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/dkoosis/deezerwidget/internal/metrics"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// mountOps adds /healthz and /metrics to r.
func mountOps(r chi.Router, health func() map[string]interface{}) {
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_ = json.NewEncoder(w).Encode(health())
	})
	r.Method(http.MethodGet, "/metrics", metrics.Handler())
}

// OpsHandler serves only /healthz and /metrics. The stdio server exposes it on
// a side port when a metrics address is configured.
func OpsHandler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	mountOps(r, func() map[string]interface{} {
		return map[string]interface{}{"status": "ok", "runtime": metrics.TakeSnapshot()}
	})
	return r
}

// ListenAndServe serves handler on addr until ctx is cancelled, then shuts down
// within shutdownTimeout.
func ListenAndServe(ctx context.Context, addr string, handler http.Handler, shutdownTimeout time.Duration) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return errors.Wrap(err, "http server shutdown failed")
		}
		if err := <-errCh; !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return errors.Wrapf(err, "http server on %s failed", addr)
	}
}

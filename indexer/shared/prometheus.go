package shared

import (
	"context"
	"net/http"
	"time"

	"github.com/LOCKbusiness/transaction-checker-sub000/indexer/config"
	"github.com/LOCKbusiness/transaction-checker-sub000/logger"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Serve prometheus metrics until the context is cancelled. Returns immediately
// if no address is configured.
func RunMetricsServer(ctx context.Context, cfg *config.MetricsConfig) error {
	if len(cfg.PrometheusAddress) == 0 {
		return nil
	}

	r := mux.NewRouter()
	r.Path("/metrics").Handler(promhttp.Handler())

	srv := &http.Server{
		Addr:              cfg.PrometheusAddress,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		srv.Shutdown(shutdownCtx)
	}()

	logger.Info("Serving metrics on %s", cfg.PrometheusAddress)
	err := srv.ListenAndServe()
	if err == http.ErrServerClosed {
		return nil
	}
	return err
}

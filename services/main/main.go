package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/LOCKbusiness/transaction-checker-sub000/logger"
	servicesctx "github.com/LOCKbusiness/transaction-checker-sub000/services/context"
	"github.com/LOCKbusiness/transaction-checker-sub000/services/routes"
	"github.com/LOCKbusiness/transaction-checker-sub000/services/utils"

	"github.com/gorilla/mux"
)

func main() {
	ctx, err := servicesctx.BuildContext()
	if err != nil {
		fmt.Printf("%v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	cfg := ctx.Config().Services
	muxRouter := mux.NewRouter()
	router := utils.NewDefaultRouter(muxRouter)
	if cfg.Swagger {
		router, err = utils.NewSwaggerRouter(muxRouter, "Staking Ledger API", "0.1.0")
		if err != nil {
			logger.Error("Cannot create router: %v", err)
			os.Exit(1)
		}
	}
	routes.AddLedgerRoutes(router, ctx)
	routes.AddStatusRoutes(router, ctx)
	router.Finalize()

	timeout := time.Duration(cfg.TimeoutSeconds) * time.Second
	srv := &http.Server{
		Handler:      muxRouter,
		Addr:         cfg.Address,
		ReadTimeout:  timeout,
		WriteTimeout: timeout,
	}

	sigCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		logger.Info("Starting server on %s", cfg.Address)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("Server error: %v", err)
			stop()
		}
	}()

	<-sigCtx.Done()
	logger.Info("Shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Shutdown error: %v", err)
	}
}

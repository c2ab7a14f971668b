package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	indexerctx "github.com/LOCKbusiness/transaction-checker-sub000/indexer/context"
	"github.com/LOCKbusiness/transaction-checker-sub000/indexer/migrations"
	"github.com/LOCKbusiness/transaction-checker-sub000/indexer/runner"
	"github.com/LOCKbusiness/transaction-checker-sub000/indexer/shared"
	"github.com/LOCKbusiness/transaction-checker-sub000/logger"

	"golang.org/x/sync/errgroup"
)

func main() {
	ictx, err := indexerctx.BuildContext()
	if err != nil {
		fmt.Printf("%v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	err = migrations.Container.ExecuteAll(ictx.DB())
	if err != nil {
		logger.Error("Migrations failed: %v", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return shared.RunMetricsServer(gctx, &ictx.Config().Metrics)
	})
	g.Go(func() error {
		defer stop()
		return runner.Run(gctx, ictx)
	})

	if err := g.Wait(); err != nil {
		logger.Error("Stopped staking ledger indexer: %v", err)
		os.Exit(1)
	}
	logger.Info("Stopped staking ledger indexer")
}

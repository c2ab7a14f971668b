package runner

import (
	"context"
	"sync/atomic"
	"time"

	indexerctx "github.com/LOCKbusiness/transaction-checker-sub000/indexer/context"
	"github.com/LOCKbusiness/transaction-checker-sub000/indexer/pipeline"
	"github.com/LOCKbusiness/transaction-checker-sub000/indexer/shared"
	"github.com/LOCKbusiness/transaction-checker-sub000/logger"

	"github.com/go-co-op/gocron/v2"
	"github.com/pkg/errors"
)

var (
	ErrTooManyFailures = errors.New("too many consecutive failed runs")
)

type runner struct {
	ctx         context.Context
	stop        context.CancelCauseFunc
	pipeline    *pipeline.Pipeline
	maxFailures int
	failures    atomic.Int32
}

// Run the pipeline until the context is cancelled, every IntervalSeconds if the
// scheduler is enabled and once otherwise. Returns ErrTooManyFailures if the
// configured number of consecutive runs failed.
func Run(ctx context.Context, ictx indexerctx.IndexerContext) error {
	cfg := ictx.Config().Scheduler
	p := pipeline.New(ictx)

	if !cfg.Enabled {
		_, err := p.Run(ctx)
		return err
	}

	runCtx, cancel := context.WithCancelCause(ctx)
	defer cancel(nil)
	r := &runner{
		ctx:         runCtx,
		stop:        cancel,
		pipeline:    p,
		maxFailures: cfg.MaxConsecutiveFailures,
	}

	s, err := gocron.NewScheduler()
	if err != nil {
		return err
	}
	_, err = s.NewJob(
		gocron.DurationJob(time.Duration(cfg.IntervalSeconds)*time.Second),
		gocron.NewTask(r.runOnce),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
		gocron.WithStartAt(gocron.WithStartImmediately()),
		gocron.WithName("staking-ledger-pipeline"),
	)
	if err != nil {
		return err
	}

	logger.Info("Scheduling pipeline every %ds", cfg.IntervalSeconds)
	s.Start()
	<-runCtx.Done()
	if err := s.Shutdown(); err != nil {
		logger.Warn("Scheduler shutdown: %v", err)
	}

	if cause := context.Cause(runCtx); errors.Is(cause, ErrTooManyFailures) {
		return cause
	}
	return nil
}

func (r *runner) runOnce() {
	report, err := r.pipeline.Run(r.ctx)
	if errors.Is(err, shared.ErrAlreadyRunning) {
		logger.Warn("Skipping pipeline run: %v", err)
		return
	}
	if err != nil {
		shared.Metrics.RunFailed()
		failures := int(r.failures.Add(1))
		logger.Error("Pipeline run failed (%d in a row): %v", failures, err)
		if r.maxFailures > 0 && failures >= r.maxFailures {
			r.stop(errors.Wrapf(ErrTooManyFailures, "%d failures, last: %v", failures, err))
		}
		return
	}
	r.failures.Store(0)
	logger.Info("Pipeline run done: blocks %d, deposits %d, balances %d, stakings %d, masternodes %d",
		report.Ingest.Blocks, report.NewDeposits, report.Balances, report.Stakings, report.MasternodeSaves)
}

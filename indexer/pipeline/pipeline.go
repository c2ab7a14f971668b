package pipeline

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/LOCKbusiness/transaction-checker-sub000/indexer/balance"
	indexerctx "github.com/LOCKbusiness/transaction-checker-sub000/indexer/context"
	"github.com/LOCKbusiness/transaction-checker-sub000/indexer/deposit"
	"github.com/LOCKbusiness/transaction-checker-sub000/indexer/ingest"
	"github.com/LOCKbusiness/transaction-checker-sub000/indexer/masternode"
	"github.com/LOCKbusiness/transaction-checker-sub000/indexer/shared"
	"github.com/LOCKbusiness/transaction-checker-sub000/indexer/staking"
	"github.com/LOCKbusiness/transaction-checker-sub000/logger"

	"github.com/pkg/errors"
)

const (
	PhaseIngest     = "ingest"
	PhaseDeposit    = "deposit"
	PhaseBalance    = "balance"
	PhaseStaking    = "staking"
	PhaseMasternode = "masternode"
)

// Summary of a successful run
type Report struct {
	Ingest          ingest.Progress
	NewDeposits     int
	Balances        int
	Stakings        int
	MasternodeSaves int
}

// Runs all phases strictly in sequence: ingest, deposit, balance, staking and
// masternode (if enabled). Each phase commits its own work, so a failing phase
// leaves the earlier phases of the run intact.
type Pipeline struct {
	ctx     indexerctx.IndexerContext
	running atomic.Bool

	ingester   *ingest.Ingester
	deposits   *deposit.Resolver
	balances   *balance.Aggregator
	stakings   *staking.Builder
	masternode *masternode.Synchronizer
}

func New(ctx indexerctx.IndexerContext) *Pipeline {
	cfg := ctx.Config()
	p := &Pipeline{
		ctx:      ctx,
		ingester: ingest.NewIngester(ctx.DB(), ctx.Client(), cfg.Ingest),
		deposits: deposit.NewResolver(ctx.DB()),
		balances: balance.NewAggregator(ctx.DB()),
		stakings: staking.NewBuilder(ctx.DB()),
	}
	if cfg.Masternode.Enabled {
		p.masternode = masternode.NewSynchronizer(ctx.DB(), ctx.Client())
	}
	return p
}

// Execute one run. Returns shared.ErrAlreadyRunning if a run is in progress.
func (p *Pipeline) Run(ctx context.Context) (Report, error) {
	if !p.running.CompareAndSwap(false, true) {
		return Report{}, shared.ErrAlreadyRunning
	}
	defer p.running.Store(false)

	report := Report{}
	rc := ingest.NewRunContext(&p.ctx.Config().Ingest)

	err := phase(PhaseIngest, func() (err error) {
		report.Ingest, err = p.ingester.Run(ctx, rc)
		return err
	})
	if err != nil {
		return report, err
	}
	err = phase(PhaseDeposit, func() (err error) {
		report.NewDeposits, err = p.deposits.Run(ctx)
		return err
	})
	if err != nil {
		return report, err
	}
	err = phase(PhaseBalance, func() (err error) {
		report.Balances, err = p.balances.Run(ctx)
		return err
	})
	if err != nil {
		return report, err
	}
	err = phase(PhaseStaking, func() (err error) {
		report.Stakings, err = p.stakings.Run(ctx)
		return err
	})
	if err != nil {
		return report, err
	}
	if p.masternode != nil {
		err = phase(PhaseMasternode, func() (err error) {
			report.MasternodeSaves, err = p.masternode.Run(ctx)
			return err
		})
	}
	return report, err
}

func phase(name string, run func() error) error {
	start := time.Now()
	err := run()
	duration := time.Since(start).Milliseconds()
	shared.Metrics.PhaseDone(name, duration)
	if err != nil {
		logger.Error("Phase %s failed after %dms: %v", name, duration, err)
		return errors.Wrapf(err, "phase %s", name)
	}
	logger.Debug("Phase %s done in %dms", name, duration)
	return nil
}

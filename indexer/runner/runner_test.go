package runner

import (
	"context"
	"testing"

	"github.com/LOCKbusiness/transaction-checker-sub000/indexer/config"
	indexerctx "github.com/LOCKbusiness/transaction-checker-sub000/indexer/context"
	"github.com/LOCKbusiness/transaction-checker-sub000/indexer/ingest"
	"github.com/LOCKbusiness/transaction-checker-sub000/indexer/pipeline"
	"github.com/LOCKbusiness/transaction-checker-sub000/utils/chain"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"
)

func newTestRunner(t *testing.T, client chain.Client, maxFailures int) *runner {
	ictx, err := indexerctx.BuildTestContext(config.NewTestConfig(10, 100), client)
	require.NoError(t, err)
	ctx, cancel := context.WithCancelCause(context.Background())
	t.Cleanup(func() { cancel(nil) })
	return &runner{
		ctx:         ctx,
		stop:        cancel,
		pipeline:    pipeline.New(ictx),
		maxFailures: maxFailures,
	}
}

func TestStopAfterConsecutiveFailures(t *testing.T) {
	// Chain without blocks: every run fails
	r := newTestRunner(t, chain.NewMemoryClient(), 3)

	r.runOnce()
	r.runOnce()
	require.NoError(t, r.ctx.Err())

	r.runOnce()
	require.Error(t, r.ctx.Err())
	require.True(t, errors.Is(context.Cause(r.ctx), ErrTooManyFailures))
}

func TestSuccessResetsFailures(t *testing.T) {
	client := chain.NewMemoryClient()
	r := newTestRunner(t, client, 2)

	r.runOnce()
	require.Equal(t, int32(1), r.failures.Load())

	client.AddBlock(chain.NewCoinbaseTx("cb0", chain.PayTo("A", "50")))
	r.runOnce()
	require.Equal(t, int32(0), r.failures.Load())
	require.NoError(t, r.ctx.Err())
}

func TestNeverStopWithoutThreshold(t *testing.T) {
	r := newTestRunner(t, chain.NewMemoryClient(), 0)
	for i := 0; i < 5; i++ {
		r.runOnce()
	}
	require.NoError(t, r.ctx.Err())
	require.Equal(t, int32(5), r.failures.Load())
}

func TestRunOnceWhenSchedulerDisabled(t *testing.T) {
	ictx, err := indexerctx.BuildTestContext(config.NewTestConfig(10, 100), ingest.StakingTestChain())
	require.NoError(t, err)
	require.NoError(t, Run(context.Background(), ictx))
}

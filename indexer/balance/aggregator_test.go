package balance

import (
	"context"
	"testing"

	"github.com/LOCKbusiness/transaction-checker-sub000/database"
	"github.com/LOCKbusiness/transaction-checker-sub000/indexer/config"
	indexerctx "github.com/LOCKbusiness/transaction-checker-sub000/indexer/context"
	"github.com/LOCKbusiness/transaction-checker-sub000/indexer/deposit"
	"github.com/LOCKbusiness/transaction-checker-sub000/indexer/ingest"
	"github.com/LOCKbusiness/transaction-checker-sub000/utils/chain"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

const (
	depositD  uint32 = 1
	liquidity uint32 = 2
)

type balanceRow struct {
	Block, TxCount uint64
	Vout, Vin      string
}

func setup(t *testing.T, client *chain.MemoryClient) indexerctx.IndexerContext {
	ctx, err := ingest.IngestTestChain(client, config.NewTestConfig(10, 100))
	require.NoError(t, err)
	require.NoError(t, database.CreateStakingAddress(ctx.DB(), &database.StakingAddress{
		TokenNumber:            database.NativeTokenNumber,
		LiquidityAddressNumber: liquidity,
	}))
	_, err = deposit.NewResolver(ctx.DB()).Run(context.Background())
	require.NoError(t, err)
	return ctx
}

func fetchBalance(t *testing.T, ctx indexerctx.IndexerContext, address uint32) *balanceRow {
	b, err := database.FetchBalance(ctx.DB(), database.NativeTokenNumber, address)
	require.NoError(t, err)
	if b == nil {
		return nil
	}
	return &balanceRow{uint64(b.BlockNumber), b.TransactionCount, b.Vout.String(), b.Vin.String()}
}

func TestTargets(t *testing.T) {
	ctx := setup(t, ingest.StakingTestChain())
	targets, err := Targets(ctx.DB())
	require.NoError(t, err)
	require.Equal(t, []Target{
		{TokenNumber: 0, AddressNumber: depositD, StartBlock: 2},
		{TokenNumber: 0, AddressNumber: liquidity, StartBlock: 0},
	}, targets)
}

func TestAggregateBalances(t *testing.T) {
	ctx := setup(t, ingest.StakingTestChain())
	a := NewAggregator(ctx.DB())

	changed, err := a.Run(context.Background())
	require.NoError(t, err)
	require.Equal(t, 2, changed)

	// D spent its 100 at block 2; receiving it at block 1 precedes the deposit
	require.Equal(t, &balanceRow{2, 1, "0", "100"}, fetchBalance(t, ctx, depositD))
	require.Equal(t, &balanceRow{3, 2, "160", "100"}, fetchBalance(t, ctx, liquidity))

	// Idempotent without new blocks
	changed, err = a.Run(context.Background())
	require.NoError(t, err)
	require.Equal(t, 0, changed)
	require.Equal(t, &balanceRow{2, 1, "0", "100"}, fetchBalance(t, ctx, depositD))
}

func TestAggregateIncrementally(t *testing.T) {
	client := ingest.StakingTestChain()
	ctx := setup(t, client)
	a := NewAggregator(ctx.DB())
	_, err := a.Run(context.Background())
	require.NoError(t, err)

	// C pays D 20 more
	client.AddBlock(chain.NewTx("f2", []chain.Vin{chain.Spend("t1", 1)}, chain.PayTo("D", "20"), chain.PayTo("C", "379")))
	require.NoError(t, ingest.IngestAll(ctx))

	changed, err := a.Run(context.Background())
	require.NoError(t, err)
	require.Equal(t, 1, changed)
	require.Equal(t, &balanceRow{4, 2, "20", "100"}, fetchBalance(t, ctx, depositD))
	require.Equal(t, &balanceRow{3, 2, "160", "100"}, fetchBalance(t, ctx, liquidity))
}

func TestAggregateCustomTransfers(t *testing.T) {
	ctx := setup(t, ingest.StakingTestChain())
	require.NoError(t, ctx.DB().Create(&database.CustomAccountToAccountOut{
		BlockNumber:       3,
		TransactionNumber: 0,
		AddressNumber:     depositD,
		TokenNumber:       database.NativeTokenNumber,
		TypeNumber:        'B',
		Amount:            decimal.NewFromInt(5),
	}).Error)
	// Other tokens do not count for the native balance
	require.NoError(t, ctx.DB().Create(&database.CustomAccountToAccountIn{
		BlockNumber:       3,
		TransactionNumber: 0,
		AddressNumber:     depositD,
		TokenNumber:       7,
		TypeNumber:        'B',
		Amount:            decimal.NewFromInt(9),
	}).Error)

	_, err := NewAggregator(ctx.DB()).Run(context.Background())
	require.NoError(t, err)
	require.Equal(t, &balanceRow{3, 2, "5", "100"}, fetchBalance(t, ctx, depositD))
}

func TestBalanceWatermarkDoesNotRegress(t *testing.T) {
	ctx := setup(t, ingest.StakingTestChain())
	require.NoError(t, database.CreateBalance(ctx.DB(), &database.Balance{
		TokenNumber:   database.NativeTokenNumber,
		AddressNumber: depositD,
		BlockNumber:   10,
		Vout:          decimal.NewFromInt(1),
		Vin:           decimal.Zero,
	}))

	changed, err := UpdateBalance(ctx.DB(), Target{TokenNumber: 0, AddressNumber: depositD, StartBlock: 2})
	require.NoError(t, err)
	require.False(t, changed)
	require.Equal(t, &balanceRow{10, 0, "1", "0"}, fetchBalance(t, ctx, depositD))
}

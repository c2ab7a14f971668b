package ingest

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/LOCKbusiness/transaction-checker-sub000/database"
	"github.com/LOCKbusiness/transaction-checker-sub000/indexer/config"
	indexerctx "github.com/LOCKbusiness/transaction-checker-sub000/indexer/context"
	"github.com/LOCKbusiness/transaction-checker-sub000/indexer/shared"
	"github.com/LOCKbusiness/transaction-checker-sub000/utils/chain"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type outRow struct {
	Block, Tx, Vout, Address uint32
	Amount                   string
	Type                     database.OutputType
}

type inRow struct {
	Block, Tx, Vin, Address    uint32
	InBlock, InTx, InVoutIndex uint32
	Amount                     string
}

func newTestIngester(t *testing.T, client chain.Client, commitBatchSize int, blocksPerRun int) (*Ingester, *gorm.DB) {
	cfg := config.NewTestConfig(commitBatchSize, blocksPerRun)
	ctx, err := indexerctx.BuildTestContext(cfg, client)
	require.NoError(t, err)
	return NewIngester(ctx.DB(), client, cfg.Ingest), ctx.DB()
}

func run(t *testing.T, ing *Ingester) (Progress, error) {
	cfg := config.NewTestConfig(1, 1)
	return ing.Run(context.Background(), NewRunContext(&cfg.Ingest))
}

func outputRows(t *testing.T, db *gorm.DB) []outRow {
	outs, err := database.FetchAllOutputs(db)
	require.NoError(t, err)
	var rows []outRow
	for _, o := range outs {
		rows = append(rows, outRow{o.BlockNumber, o.TransactionNumber, o.VoutIndex, o.AddressNumber, o.Amount.String(), o.Type})
	}
	return rows
}

func inputRows(t *testing.T, db *gorm.DB) []inRow {
	ins, err := database.FetchAllInputs(db)
	require.NoError(t, err)
	var rows []inRow
	for _, i := range ins {
		rows = append(rows, inRow{i.BlockNumber, i.TransactionNumber, i.VinIndex, i.AddressNumber,
			i.InBlockNumber, i.InTransactionNumber, i.InVoutIndex, i.Amount.String()})
	}
	return rows
}

func requireNextBlock(t *testing.T, ing *Ingester, expected uint32) {
	next, err := ing.NextBlock()
	require.NoError(t, err)
	require.Equal(t, expected, next)
}

func TestIngestSameBlockSpend(t *testing.T) {
	client := chain.NewMemoryClient()
	client.AddBlock(chain.NewCoinbaseTx("cb0", chain.PayTo("A", "50")))
	client.AddBlock(
		chain.NewCoinbaseTx("cb1", chain.PayTo("B", "50")),
		chain.NewTx("t1", []chain.Vin{chain.Spend("cb0", 0)}, chain.PayTo("C", "20"), chain.PayTo("A", "30")),
		chain.NewTx("t2", []chain.Vin{chain.Spend("t1", 0)}, chain.PayTo("D", "20")),
	)

	ing, db := newTestIngester(t, client, 10, 100)
	progress, err := run(t, ing)
	require.NoError(t, err)
	require.Equal(t, 2, progress.Blocks)
	require.Equal(t, uint32(1), progress.LastBlock)

	expectedOuts := []outRow{
		{0, 0, 0, 0, "50", database.CoinbaseOutput},
		{1, 0, 0, 1, "50", database.CoinbaseOutput},
		{1, 1, 0, 2, "20", database.DefaultOutput},
		{1, 1, 1, 0, "30", database.DefaultOutput},
		{1, 2, 0, 3, "20", database.DefaultOutput},
	}
	if diff := cmp.Diff(expectedOuts, outputRows(t, db)); diff != "" {
		t.Fatalf("outputs mismatch (-want +got):\n%s", diff)
	}

	expectedIns := []inRow{
		{1, 1, 0, 0, 0, 0, 0, "50"},
		{1, 2, 0, 2, 1, 1, 0, "20"},
	}
	if diff := cmp.Diff(expectedIns, inputRows(t, db)); diff != "" {
		t.Fatalf("inputs mismatch (-want +got):\n%s", diff)
	}

	addresses, err := database.FetchAllAddresses(db)
	require.NoError(t, err)
	require.Equal(t, []database.Address{
		{Number: 0, Address: "A"},
		{Number: 1, Address: "B"},
		{Number: 2, Address: "C"},
		{Number: 3, Address: "D"},
	}, addresses)

	txs, err := database.FetchAllTransactions(db)
	require.NoError(t, err)
	require.Len(t, txs, 4)
	for _, tx := range txs {
		require.Equal(t, database.NoCustomTypeCode, tx.CustomTypeCode)
	}
}

func TestIngestMissingOutputRollsBack(t *testing.T) {
	client := chain.NewMemoryClient()
	client.AddBlock(chain.NewCoinbaseTx("cb0", chain.PayTo("A", "50")))
	client.AddBlock(
		chain.NewCoinbaseTx("cb1", chain.PayTo("B", "50")),
		chain.NewTx("t1", []chain.Vin{chain.Spend("unknown", 0)}, chain.PayTo("C", "20")),
	)

	ing, db := newTestIngester(t, client, 1, 100)
	_, err := run(t, ing)
	require.ErrorIs(t, err, shared.ErrDataIntegrity)

	// Block 0 was committed in its own window, block 1 was rolled back
	requireNextBlock(t, ing, 1)
	addresses, err := database.FetchAllAddresses(db)
	require.NoError(t, err)
	require.Equal(t, []database.Address{{Number: 0, Address: "A"}}, addresses)
	require.Len(t, outputRows(t, db), 1)

	// Rerunning fails the same way without side effects
	_, err = run(t, ing)
	require.ErrorIs(t, err, shared.ErrDataIntegrity)
	requireNextBlock(t, ing, 1)
}

func TestIngestResumes(t *testing.T) {
	client := chain.NewMemoryClient()
	client.AddBlock(chain.NewCoinbaseTx("cb0", chain.PayTo("A", "50")))
	client.AddBlock(chain.NewCoinbaseTx("cb1", chain.PayTo("B", "50")))
	client.AddBlock(
		chain.NewCoinbaseTx("cb2", chain.PayTo("A", "50")),
		chain.NewTx("t2", []chain.Vin{chain.Spend("cb0", 0)}, chain.PayTo("C", "50")),
	)
	client.AddBlock(
		chain.NewCoinbaseTx("cb3", chain.PayTo("A", "50")),
		chain.NewTx("t3", []chain.Vin{chain.Spend("cb1", 0), chain.Spend("t2", 0)}, chain.PayTo("D", "100")),
	)
	client.AddBlock(chain.NewCoinbaseTx("cb4", chain.PayTo("A", "50")))

	ing, db := newTestIngester(t, client, 2, 3)
	progress, err := run(t, ing)
	require.NoError(t, err)
	require.Equal(t, 3, progress.Blocks)
	requireNextBlock(t, ing, 3)

	// Fresh run context: outputs spent by block 3 are resolved from the database
	progress, err = run(t, ing)
	require.NoError(t, err)
	require.Equal(t, 2, progress.Blocks)
	require.Equal(t, uint32(3), progress.FirstBlock)
	requireNextBlock(t, ing, 5)

	blocks, err := database.FetchAllBlocks(db)
	require.NoError(t, err)
	require.Len(t, blocks, 5)
	for i, b := range blocks {
		require.Equal(t, uint32(i), b.Number)
	}
	require.Equal(t, []inRow{
		{2, 1, 0, 0, 0, 0, 0, "50"},
		{3, 1, 0, 1, 1, 0, 0, "50"},
		{3, 1, 1, 2, 2, 1, 0, "50"},
	}, inputRows(t, db))

	// Nothing new: nothing changes
	outsBefore := outputRows(t, db)
	progress, err = run(t, ing)
	require.NoError(t, err)
	require.Equal(t, 0, progress.Blocks)
	require.Equal(t, outsBefore, outputRows(t, db))
	requireNextBlock(t, ing, 5)
}

func TestIngestStartBlock(t *testing.T) {
	client := chain.NewMemoryClient()
	client.AddBlock(chain.NewCoinbaseTx("cb0", chain.PayTo("A", "50")))
	client.AddBlock(chain.NewCoinbaseTx("cb1", chain.PayTo("B", "50")))

	cfg := config.NewTestConfig(10, 10)
	cfg.Ingest.StartBlock = 1
	ctx, err := indexerctx.BuildTestContext(cfg, client)
	require.NoError(t, err)
	ing := NewIngester(ctx.DB(), client, cfg.Ingest)

	requireNextBlock(t, ing, 1)
	progress, err := run(t, ing)
	require.NoError(t, err)
	require.Equal(t, 1, progress.Blocks)
	require.Equal(t, []outRow{{1, 0, 0, 0, "50", database.CoinbaseOutput}}, outputRows(t, ctx.DB()))
}

func TestIngestRejectsDoubleSpend(t *testing.T) {
	client := chain.NewMemoryClient()
	client.AddBlock(chain.NewCoinbaseTx("cb0", chain.PayTo("A", "50")))
	client.AddBlock(chain.NewTx("t1", []chain.Vin{chain.Spend("cb0", 0)}, chain.PayTo("B", "50")))
	client.AddBlock(chain.NewTx("t2", []chain.Vin{chain.Spend("cb0", 0)}, chain.PayTo("C", "50")))

	ing, db := newTestIngester(t, client, 1, 100)
	_, err := run(t, ing)
	require.Error(t, err)
	requireNextBlock(t, ing, 2)
	require.Len(t, inputRows(t, db), 1)
}

func TestIngestRejectsDoubleSpendInBlock(t *testing.T) {
	client := chain.NewMemoryClient()
	client.AddBlock(chain.NewCoinbaseTx("cb0", chain.PayTo("A", "50")))
	client.AddBlock(
		chain.NewTx("t1", []chain.Vin{chain.Spend("cb0", 0)}, chain.PayTo("B", "50")),
		chain.NewTx("t2", []chain.Vin{chain.Spend("cb0", 0)}, chain.PayTo("C", "50")),
	)

	ing, _ := newTestIngester(t, client, 1, 100)
	_, err := run(t, ing)
	require.ErrorIs(t, err, shared.ErrDataIntegrity)
	requireNextBlock(t, ing, 1)
}

func TestIngestProviderFailure(t *testing.T) {
	client := chain.NewMemoryClient()
	client.AddBlock(chain.NewCoinbaseTx("cb0", chain.PayTo("A", "50")))
	client.AddBlock(chain.NewCoinbaseTx("cb1", chain.PayTo("B", "50")))
	client.FailTransaction("cb1", context.DeadlineExceeded)

	ing, _ := newTestIngester(t, client, 10, 100)
	_, err := run(t, ing)
	require.ErrorIs(t, err, context.DeadlineExceeded)
	requireNextBlock(t, ing, 0)

	client.FailTransaction("cb1", nil)
	progress, err := run(t, ing)
	require.NoError(t, err)
	require.Equal(t, 2, progress.Blocks)
}

func TestIngestCustomTransaction(t *testing.T) {
	client := chain.NewMemoryClient()
	client.AddBlock(chain.NewCoinbaseTx("cb0", chain.PayTo("A", "50")))
	custom := chain.NewTx("c1", []chain.Vin{chain.Spend("cb0", 0)},
		chain.NullData(chain.CustomTxScript('B', []byte{0x01})),
		chain.PayTo("A", "49.9"),
	)
	client.AddCustomTx(custom, &chain.CustomTxResult{
		TxID:    "c1",
		Type:    "AccountToAccount",
		Valid:   true,
		Results: json.RawMessage(`{"from": "A", "to": {"B": "10@DFI,1@BTC", "C": "5@DFI"}}`),
	})
	client.AddBlock(custom)

	ing, db := newTestIngester(t, client, 10, 100)
	_, err := run(t, ing)
	require.NoError(t, err)

	txs, err := database.FetchAllTransactions(db)
	require.NoError(t, err)
	require.Equal(t, "B", txs[1].CustomTypeCode)

	// Only the addressed output creates an out-edge
	require.Equal(t, []outRow{
		{0, 0, 0, 0, "50", database.CoinbaseOutput},
		{1, 0, 1, 0, "49.9", database.DefaultOutput},
	}, outputRows(t, db))

	btc, ok, err := database.FetchTokenNumber(db, "BTC")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, uint32(1), btc)

	customIns, err := database.FetchAllCustomInputs(db)
	require.NoError(t, err)
	customOuts, err := database.FetchAllCustomOutputs(db)
	require.NoError(t, err)

	type row struct {
		Address, Token uint32
		Amount         string
	}
	var gotIns, gotOuts []row
	for _, in := range customIns {
		require.Equal(t, uint8('B'), in.TypeNumber)
		gotIns = append(gotIns, row{in.AddressNumber, in.TokenNumber, in.Amount.String()})
	}
	for _, out := range customOuts {
		gotOuts = append(gotOuts, row{out.AddressNumber, out.TokenNumber, out.Amount.String()})
	}
	// A=0, B=1, C=2; DFI=0, BTC=1
	require.Equal(t, []row{{0, 0, "15"}, {0, 1, "1"}}, gotIns)
	require.Equal(t, []row{{1, 0, "10"}, {1, 1, "1"}, {2, 0, "5"}}, gotOuts)
}

package ingest

import (
	"context"
	"encoding/json"

	"github.com/LOCKbusiness/transaction-checker-sub000/indexer/config"
	indexerctx "github.com/LOCKbusiness/transaction-checker-sub000/indexer/context"
	"github.com/LOCKbusiness/transaction-checker-sub000/utils/chain"
)

// Chain where customer C funds deposit address D, D stakes into liquidity
// address L together with an input of C and part of the stake is paid back
// to C:
//
//	block 0: cb0 pays C 500
//	block 1: f1 spends cb0:0, pays D 100 and C 399
//	block 2: t1 spends f1:0 (D) and f1:1 (C), pays L 100 and C 399
//	block 3: w1 spends t1:0, pays C 40 and L 60
//
// After ingestion the address numbers are C=0, D=1, L=2.
func StakingTestChain() *chain.MemoryClient {
	client := chain.NewMemoryClient()
	client.AddBlock(chain.NewCoinbaseTx("cb0", chain.PayTo("C", "500")))
	client.AddBlock(chain.NewTx("f1", []chain.Vin{chain.Spend("cb0", 0)}, chain.PayTo("D", "100"), chain.PayTo("C", "399")))
	client.AddBlock(chain.NewTx("t1", []chain.Vin{chain.Spend("f1", 0), chain.Spend("f1", 1)},
		chain.PayTo("L", "100"), chain.PayTo("C", "399")))
	client.AddBlock(chain.NewTx("w1", []chain.Vin{chain.Spend("t1", 0)}, chain.PayTo("C", "40"), chain.PayTo("L", "60")))
	return client
}

// Chain moving BTC between account balances. Customer C funds deposit
// address D, D stakes into liquidity address L together with C and L pays part
// of the stake back to C:
//
//	block 0: cb0 pays C 10, D 10 and L 10
//	block 1: a1 spends cb0:0, moves 100 BTC from C to D
//	block 2: a2 spends cb0:1, moves 100 BTC from D and 1 BTC from C to L
//	block 3: a3 spends cb0:2, moves 40 BTC from L to C
//
// After ingestion the address numbers are C=0, D=1, L=2 and BTC is token 1.
func TokenStakingTestChain() *chain.MemoryClient {
	client := chain.NewMemoryClient()
	client.AddBlock(chain.NewCoinbaseTx("cb0", chain.PayTo("C", "10"), chain.PayTo("D", "10"), chain.PayTo("L", "10")))
	client.AddBlock(accountTransfer(client, "a1", chain.Spend("cb0", 0), "C", 'B',
		`{"from": "C", "to": {"D": "100@BTC"}}`))
	client.AddBlock(accountTransfer(client, "a2", chain.Spend("cb0", 1), "D", 'a',
		`{"from": {"D": "100@BTC", "C": "1@BTC"}, "to": {"L": "101@BTC"}}`))
	client.AddBlock(accountTransfer(client, "a3", chain.Spend("cb0", 2), "L", 'B',
		`{"from": "L", "to": {"C": "40@BTC"}}`))
	return client
}

// Custom transaction paying the spent output's change back to its owner
func accountTransfer(client *chain.MemoryClient, txID string, in chain.Vin, owner string, kind byte, results string) *chain.Transaction {
	tx := chain.NewTx(txID, []chain.Vin{in},
		chain.NullData(chain.CustomTxScript(kind, []byte{0x01})),
		chain.PayTo(owner, "9.9"),
	)
	client.AddCustomTx(tx, &chain.CustomTxResult{
		TxID:    txID,
		Valid:   true,
		Results: json.RawMessage(results),
	})
	return tx
}

// Test context over the chain with all of its blocks ingested
func IngestTestChain(client chain.Client, cfg *config.Config) (indexerctx.IndexerContext, error) {
	ctx, err := indexerctx.BuildTestContext(cfg, client)
	if err != nil {
		return nil, err
	}
	err = IngestAll(ctx)
	return ctx, err
}

// Ingest all blocks of the context's chain in a fresh run
func IngestAll(ctx indexerctx.IndexerContext) error {
	cfg := ctx.Config().Ingest
	cfg.BlocksPerRun = 1 << 30
	ing := NewIngester(ctx.DB(), ctx.Client(), cfg)
	_, err := ing.Run(context.Background(), NewRunContext(&cfg))
	return err
}

package ingest

import (
	"context"
	"time"

	"github.com/LOCKbusiness/transaction-checker-sub000/database"
	"github.com/LOCKbusiness/transaction-checker-sub000/indexer/config"
	"github.com/LOCKbusiness/transaction-checker-sub000/indexer/custom"
	"github.com/LOCKbusiness/transaction-checker-sub000/indexer/shared"
	"github.com/LOCKbusiness/transaction-checker-sub000/logger"
	"github.com/LOCKbusiness/transaction-checker-sub000/utils"
	"github.com/LOCKbusiness/transaction-checker-sub000/utils/chain"

	mapset "github.com/deckarep/golang-set/v2"
	"github.com/pkg/errors"
	"gorm.io/gorm"
)

// Blocks ingested by one run
type Progress struct {
	ChainHeight uint32
	FirstBlock  uint32
	LastBlock   uint32
	Blocks      int
}

type Ingester struct {
	db      *gorm.DB
	client  chain.Client
	decoder *custom.Decoder
	config  config.IngestConfig
}

func NewIngester(db *gorm.DB, client chain.Client, cfg config.IngestConfig) *Ingester {
	return &Ingester{
		db:      db,
		client:  client,
		decoder: custom.NewDecoder(client),
		config:  cfg,
	}
}

// Next block to ingest, derived from the persisted blocks only
func (i *Ingester) NextBlock() (uint32, error) {
	maxBlock, exists, err := database.FetchMaxBlockNumber(i.db)
	if err != nil {
		return 0, err
	}
	if !exists {
		return i.config.StartBlock, nil
	}
	return maxBlock + 1, nil
}

// Ingest at most BlocksPerRun blocks starting at the watermark. Blocks are
// committed in windows of CommitBatchSize blocks; an error rolls back the
// current window only.
func (i *Ingester) Run(ctx context.Context, rc *RunContext) (Progress, error) {
	next, err := i.NextBlock()
	if err != nil {
		return Progress{}, err
	}
	height, err := i.client.GetBlockCount(ctx)
	if err != nil {
		return Progress{}, errors.Wrap(err, "fetching chain height")
	}
	progress := Progress{ChainHeight: height, FirstBlock: next}
	if height < next {
		logger.Debug("Nothing to ingest. Chain height %d < next block %d", height, next)
		return progress, nil
	}

	last := utils.Min(height, next+uint32(i.config.BlocksPerRun)-1)
	batchSize := uint32(i.config.CommitBatchSize)

	for start := next; start <= last; start += batchSize {
		if err := ctx.Err(); err != nil {
			return progress, err
		}
		startTime := time.Now()
		end := utils.Min(last, start+batchSize-1)

		err := database.DoInTransaction(i.db, func(db *gorm.DB) error {
			for number := start; number <= end; number++ {
				if err := i.ingestBlock(ctx, db, rc, number); err != nil {
					return errors.Wrapf(err, "block %d", number)
				}
			}
			return nil
		})
		if err != nil {
			return progress, err
		}

		progress.LastBlock = end
		progress.Blocks += int(end - start + 1)
		shared.Metrics.UpdateIngest(height, end)
		logger.Info("Ingested blocks %d-%d, chain height is %d, duration %dms",
			start, end, height, time.Since(startTime).Milliseconds())
	}
	return progress, nil
}

func (i *Ingester) ingestBlock(ctx context.Context, db *gorm.DB, rc *RunContext, number uint32) error {
	hash, err := i.client.GetBlockHash(ctx, number)
	if err != nil {
		return err
	}
	block, err := i.client.GetBlock(ctx, hash)
	if err != nil {
		return err
	}

	entities := &database.BlockEntities{
		Block: &database.Block{
			Number:    number,
			Hash:      block.Hash,
			Timestamp: time.Unix(block.Time, 0).UTC(),
		},
	}
	txs := make([]*chain.Transaction, len(block.Tx))
	txOutputs := make(map[string][]database.AddressTransactionOut, len(block.Tx))
	resolver := newOutputResolver(rc.Outputs)

	// Outputs of all transactions first; inputs may spend outputs of the same block
	for n, txID := range block.Tx {
		tx, err := i.client.GetTransaction(ctx, txID, hash)
		if err != nil {
			return err
		}
		txs[n] = tx
		entities.Transactions = append(entities.Transactions, &database.Transaction{
			BlockNumber:    number,
			Number:         uint32(n),
			TxID:           tx.TxID,
			CustomTypeCode: database.NoCustomTypeCode,
		})

		outs, err := i.createOutputs(db, rc, tx, number, uint32(n))
		if err != nil {
			return err
		}
		for _, out := range outs {
			resolver.addBlockOutput(tx.TxID, out)
			entities.Outputs = append(entities.Outputs, out)
			txOutputs[tx.TxID] = append(txOutputs[tx.TxID], *out)
		}
	}

	entities.Inputs, err = i.createInputs(db, resolver, txs, number)
	if err != nil {
		return err
	}

	for n, tx := range txs {
		if tx.IsCoinbase() {
			continue
		}
		result, err := i.decoder.Decode(ctx, tx, number)
		if err != nil {
			return err
		}
		entities.Transactions[n].CustomTypeCode = result.TypeCode
		if result.Transfers == nil {
			continue
		}
		ins, outs, err := result.Transfers.Rows(db, database.TxKey{BlockNumber: number, TransactionNumber: uint32(n)}, rc.Addresses, rc.Tokens)
		if err != nil {
			return err
		}
		entities.CustomInputs = append(entities.CustomInputs, ins...)
		entities.CustomOutputs = append(entities.CustomOutputs, outs...)
	}

	if err := rc.Flush(db); err != nil {
		return err
	}
	if err := database.CreateBlockEntities(db, entities); err != nil {
		return err
	}
	for txID, outs := range txOutputs {
		rc.Outputs.Add(txID, outs)
	}
	return nil
}

// Out-edges of the transaction; outputs without an address are skipped
func (i *Ingester) createOutputs(db *gorm.DB, rc *RunContext, tx *chain.Transaction, block uint32, n uint32) ([]*database.AddressTransactionOut, error) {
	outType := database.DefaultOutput
	if tx.IsCoinbase() {
		outType = database.CoinbaseOutput
	}

	var outs []*database.AddressTransactionOut
	for _, vout := range tx.Vout {
		addresses := vout.ScriptPubKey.Addresses
		if len(addresses) == 0 {
			continue
		}
		if len(addresses) > 1 {
			logger.Warn("Output %d of transaction %s has %d addresses, using the first one", vout.N, tx.TxID, len(addresses))
		}
		address, err := rc.Addresses.Resolve(db, addresses[0])
		if err != nil {
			return nil, err
		}
		outs = append(outs, &database.AddressTransactionOut{
			BlockNumber:       block,
			TransactionNumber: n,
			VoutIndex:         vout.N,
			AddressNumber:     address,
			Amount:            vout.Value,
			Type:              outType,
		})
	}
	return outs, nil
}

// In-edges of all non-coinbase transactions of the block
func (i *Ingester) createInputs(db *gorm.DB, resolver *outputResolver, txs []*chain.Transaction, block uint32) ([]*database.AddressTransactionIn, error) {
	var refs []outputRef
	for _, tx := range txs {
		if tx.IsCoinbase() {
			continue
		}
		for _, vin := range tx.Vin {
			refs = append(refs, outputRef{vin.TxID, vin.Vout})
		}
	}
	if len(refs) == 0 {
		return nil, nil
	}

	resolved, err := resolver.resolve(db, refs)
	if err != nil {
		return nil, err
	}

	var ins []*database.AddressTransactionIn
	spent := mapset.NewThreadUnsafeSet[database.OutputKey]()
	for n, tx := range txs {
		if tx.IsCoinbase() {
			continue
		}
		for vinIndex, vin := range tx.Vin {
			out, ok := resolved[outputRef{vin.TxID, vin.Vout}]
			if !ok {
				return nil, shared.DataIntegrityError("output %d of transaction %s spent by transaction %s in block %d is not indexed",
					vin.Vout, vin.TxID, tx.TxID, block)
			}
			if !spent.Add(out.Key()) {
				return nil, shared.DataIntegrityError("output %d of transaction %s spent twice in block %d", vin.Vout, vin.TxID, block)
			}
			ins = append(ins, &database.AddressTransactionIn{
				BlockNumber:         block,
				TransactionNumber:   uint32(n),
				VinIndex:            uint32(vinIndex),
				AddressNumber:       out.AddressNumber,
				InBlockNumber:       out.BlockNumber,
				InTransactionNumber: out.TransactionNumber,
				InVoutIndex:         out.VoutIndex,
				Amount:              out.Amount,
			})
		}
	}
	return ins, nil
}

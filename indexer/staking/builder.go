package staking

import (
	"context"

	"github.com/LOCKbusiness/transaction-checker-sub000/database"
	"github.com/LOCKbusiness/transaction-checker-sub000/logger"
	"github.com/LOCKbusiness/transaction-checker-sub000/utils"

	mapset "github.com/deckarep/golang-set/v2"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Maintains one Staking row per deposit:
//   - Vin sums what the liquidity address received in transactions in which
//     the deposit address spent (stake-in)
//   - Vout sums what the customer received from the liquidity address, through
//     outputs of stake-in transactions for the native token (withdrawal)
//
// UTXO edges carry the native token only; custom transfers count for their
// token. Both sums have their own watermark and only grow.
type Builder struct {
	db *gorm.DB
}

// Sum of distinct outputs and the last block among them
type flow struct {
	sum       decimal.Decimal
	lastBlock *uint32
}

func NewBuilder(db *gorm.DB) *Builder {
	return &Builder{db: db}
}

// Extend the staking rows of all deposits in one database transaction.
// Returns the number of rows inserted or updated.
func (b *Builder) Run(ctx context.Context) (int, error) {
	changed := 0
	err := database.DoInTransaction(b.db, func(db *gorm.DB) error {
		deposits, err := database.FetchDeposits(db)
		if err != nil {
			return err
		}
		for i := range deposits {
			if err := ctx.Err(); err != nil {
				return err
			}
			d := &deposits[i]
			ok, err := UpdateStaking(db, d)
			if err != nil {
				return errors.Wrapf(err, "staking of deposit address %d (liquidity %d, customer %d)",
					d.DepositAddressNumber, d.LiquidityAddressNumber, d.CustomerAddressNumber)
			}
			if ok {
				changed++
			}
		}
		return nil
	})
	if err == nil && changed > 0 {
		logger.Info("Updated %d staking positions", changed)
	}
	return changed, err
}

// Add stake-ins and withdrawals after the row's watermarks. Returns true if
// the row was written.
func UpdateStaking(db *gorm.DB, d *database.Deposit) (bool, error) {
	current, err := database.FetchStaking(db, d)
	if err != nil {
		return false, err
	}
	var lastIn, lastOut *uint32
	if current != nil {
		lastIn, lastOut = current.LastInBlockNumber, current.LastOutBlockNumber
	}

	in, out, err := collectFlows(db, d, nextBlock(lastIn, d.StartBlockNumber), nextBlock(lastOut, d.StartBlockNumber))
	if err != nil {
		return false, err
	}

	if in.lastBlock == nil && out.lastBlock == nil {
		return false, nil
	}

	if current == nil {
		return true, database.CreateStaking(db, &database.Staking{
			TokenNumber:            d.TokenNumber,
			LiquidityAddressNumber: d.LiquidityAddressNumber,
			DepositAddressNumber:   d.DepositAddressNumber,
			CustomerAddressNumber:  d.CustomerAddressNumber,
			LastInBlockNumber:      in.lastBlock,
			Vin:                    in.sum,
			LastOutBlockNumber:     out.lastBlock,
			Vout:                   out.sum,
		})
	}

	if advances(current.LastInBlockNumber, in.lastBlock) {
		current.LastInBlockNumber = in.lastBlock
		current.Vin = current.Vin.Add(in.sum)
	}
	if advances(current.LastOutBlockNumber, out.lastBlock) {
		current.LastOutBlockNumber = out.lastBlock
		current.Vout = current.Vout.Add(out.sum)
	}
	return true, database.UpdateStaking(db, current)
}

// First block after the watermark, or the start block if there is no watermark
func nextBlock(watermark *uint32, start uint32) uint32 {
	if watermark == nil {
		return start
	}
	return utils.Max(*watermark+1, start)
}

func advances(watermark *uint32, block *uint32) bool {
	return block != nil && (watermark == nil || *block > *watermark)
}

func collectFlows(db *gorm.DB, d *database.Deposit, inFrom uint32, outFrom uint32) (flow, flow, error) {
	in, out := flow{sum: decimal.Zero}, flow{sum: decimal.Zero}

	if d.TokenNumber == database.NativeTokenNumber {
		stakeIns, err := database.FetchStakeInOutputs(db, d.LiquidityAddressNumber, d.DepositAddressNumber, inFrom)
		if err != nil {
			return in, out, err
		}
		in.addDistinct(stakeIns)
		withdrawals, err := database.FetchWithdrawalOutputs(db, d.LiquidityAddressNumber, d.DepositAddressNumber, d.CustomerAddressNumber, outFrom)
		if err != nil {
			return in, out, err
		}
		out.addDistinct(withdrawals)
	}

	customIns, err := database.FetchCustomStakeInOutputs(db, d.TokenNumber, d.LiquidityAddressNumber, d.DepositAddressNumber, inFrom)
	if err != nil {
		return in, out, err
	}
	for i := range customIns {
		in.add(customIns[i].Amount, customIns[i].BlockNumber)
	}
	customOuts, err := database.FetchCustomWithdrawalOutputs(db, d.TokenNumber, d.LiquidityAddressNumber, d.CustomerAddressNumber, outFrom)
	if err != nil {
		return in, out, err
	}
	for i := range customOuts {
		out.add(customOuts[i].Amount, customOuts[i].BlockNumber)
	}
	return in, out, nil
}

func (f *flow) add(amount decimal.Decimal, block uint32) {
	f.sum = f.sum.Add(amount)
	if f.lastBlock == nil || block > *f.lastBlock {
		f.lastBlock = &block
	}
}

// An output joined with several inputs of its transaction is counted once
func (f *flow) addDistinct(outs []database.AddressTransactionOut) {
	seen := mapset.NewThreadUnsafeSet[database.OutputKey]()
	for i := range outs {
		out := &outs[i]
		if seen.Add(out.Key()) {
			f.add(out.Amount, out.BlockNumber)
		}
	}
}

package balance

import (
	"context"
	"sort"

	"github.com/LOCKbusiness/transaction-checker-sub000/database"
	"github.com/LOCKbusiness/transaction-checker-sub000/logger"
	"github.com/LOCKbusiness/transaction-checker-sub000/utils"

	mapset "github.com/deckarep/golang-set/v2"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// (token, address) whose balance is maintained, starting at StartBlock
type Target struct {
	TokenNumber   uint32
	AddressNumber uint32
	StartBlock    uint32
}

// Flow of an address after the stored watermark
type delta struct {
	vout      decimal.Decimal
	vin       decimal.Decimal
	txs       mapset.Set[database.TxKey]
	lastBlock uint32
}

func newDelta() *delta {
	return &delta{
		vout: decimal.Zero,
		vin:  decimal.Zero,
		txs:  mapset.NewThreadUnsafeSet[database.TxKey](),
	}
}

func (d *delta) add(key database.TxKey, amount decimal.Decimal, received bool) {
	if received {
		d.vout = d.vout.Add(amount)
	} else {
		d.vin = d.vin.Add(amount)
	}
	d.txs.Add(key)
	d.lastBlock = utils.Max(d.lastBlock, key.BlockNumber)
}

// Maintains Balance rows of deposit and liquidity addresses. Vout sums what
// the address received, Vin what it spent.
type Aggregator struct {
	db *gorm.DB
}

func NewAggregator(db *gorm.DB) *Aggregator {
	return &Aggregator{db: db}
}

// Extend the balances of all targets in one database transaction. Returns the
// number of balances inserted or updated.
func (a *Aggregator) Run(ctx context.Context) (int, error) {
	changed := 0
	err := database.DoInTransaction(a.db, func(db *gorm.DB) error {
		targets, err := Targets(db)
		if err != nil {
			return err
		}
		for _, t := range targets {
			if err := ctx.Err(); err != nil {
				return err
			}
			ok, err := UpdateBalance(db, t)
			if err != nil {
				return errors.Wrapf(err, "balance of address %d (token %d)", t.AddressNumber, t.TokenNumber)
			}
			if ok {
				changed++
			}
		}
		return nil
	})
	if err == nil && changed > 0 {
		logger.Info("Updated %d balances", changed)
	}
	return changed, err
}

// Deposit addresses (starting at their first deposit) and liquidity addresses
// (starting at their start block), sorted by token and address
func Targets(db *gorm.DB) ([]Target, error) {
	starts := make(map[[2]uint32]uint32)
	addTarget := func(token, address, start uint32) {
		key := [2]uint32{token, address}
		if s, ok := starts[key]; !ok || start < s {
			starts[key] = start
		}
	}

	stakingAddresses, err := database.FetchDepositStakingAddresses(db)
	if err != nil {
		return nil, err
	}
	for _, sa := range stakingAddresses {
		addTarget(sa.TokenNumber, sa.LiquidityAddressNumber, sa.StartBlockNumber)
	}
	deposits, err := database.FetchDeposits(db)
	if err != nil {
		return nil, err
	}
	for _, d := range deposits {
		addTarget(d.TokenNumber, d.DepositAddressNumber, d.StartBlockNumber)
	}

	targets := make([]Target, 0, len(starts))
	for key, start := range starts {
		targets = append(targets, Target{TokenNumber: key[0], AddressNumber: key[1], StartBlock: start})
	}
	sort.Slice(targets, func(i, j int) bool {
		if targets[i].TokenNumber != targets[j].TokenNumber {
			return targets[i].TokenNumber < targets[j].TokenNumber
		}
		return targets[i].AddressNumber < targets[j].AddressNumber
	})
	return targets, nil
}

// Add the flow after the stored watermark to the balance of the target. The
// balance is inserted on first activity and updated only if the watermark
// advances. Returns true if the balance was written.
func UpdateBalance(db *gorm.DB, t Target) (bool, error) {
	current, err := database.FetchBalance(db, t.TokenNumber, t.AddressNumber)
	if err != nil {
		return false, err
	}
	fromBlock := t.StartBlock
	if current != nil {
		fromBlock = current.BlockNumber + 1
	}

	d, err := collectDelta(db, t, fromBlock)
	if err != nil {
		return false, err
	}
	if d.txs.Cardinality() == 0 {
		return false, nil
	}

	if current == nil {
		return true, database.CreateBalance(db, &database.Balance{
			TokenNumber:      t.TokenNumber,
			AddressNumber:    t.AddressNumber,
			BlockNumber:      d.lastBlock,
			TransactionCount: uint64(d.txs.Cardinality()),
			Vout:             d.vout,
			Vin:              d.vin,
		})
	}
	if d.lastBlock <= current.BlockNumber {
		return false, nil
	}
	current.BlockNumber = d.lastBlock
	current.TransactionCount += uint64(d.txs.Cardinality())
	current.Vout = current.Vout.Add(d.vout)
	current.Vin = current.Vin.Add(d.vin)
	return true, database.UpdateBalance(db, current)
}

// UTXO flow counts for the native token only; custom transfers for their token
func collectDelta(db *gorm.DB, t Target, fromBlock uint32) (*delta, error) {
	d := newDelta()

	if t.TokenNumber == database.NativeTokenNumber {
		outs, err := database.FetchOutputsOfAddress(db, t.AddressNumber, fromBlock)
		if err != nil {
			return nil, err
		}
		for _, out := range outs {
			d.add(out.TxKey(), out.Amount, true)
		}
		ins, err := database.FetchInputsOfAddress(db, t.AddressNumber, fromBlock)
		if err != nil {
			return nil, err
		}
		for _, in := range ins {
			d.add(in.TxKey(), in.Amount, false)
		}
	}

	customOuts, err := database.FetchCustomOutputsOfAddress(db, t.AddressNumber, t.TokenNumber, fromBlock)
	if err != nil {
		return nil, err
	}
	for _, out := range customOuts {
		d.add(out.TxKey(), out.Amount, true)
	}
	customIns, err := database.FetchCustomInputsOfAddress(db, t.AddressNumber, t.TokenNumber, fromBlock)
	if err != nil {
		return nil, err
	}
	for _, in := range customIns {
		d.add(in.TxKey(), in.Amount, false)
	}
	return d, nil
}

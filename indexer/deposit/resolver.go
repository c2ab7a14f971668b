package deposit

import (
	"context"
	"fmt"
	"sort"

	"github.com/LOCKbusiness/transaction-checker-sub000/database"
	"github.com/LOCKbusiness/transaction-checker-sub000/indexer/shared"
	"github.com/LOCKbusiness/transaction-checker-sub000/logger"
	"github.com/LOCKbusiness/transaction-checker-sub000/utils"

	mapset "github.com/deckarep/golang-set/v2"
	"github.com/pkg/errors"
	"gorm.io/gorm"
)

// Name of the state holding the next block to scan for deposits to a liquidity address
func StateName(token uint32, liquidity uint32) string {
	return fmt.Sprintf("deposit_scan:%d:%d", token, liquidity)
}

// Discovers deposit addresses of liquidity addresses and the customers owning them.
//
// A deposit address D is an address spending into the liquidity address L. The
// customer C is the other address spending in the first transaction D spent in.
// An address already recorded as a customer of L is never taken as a deposit
// address of L, and the other way round.
type Resolver struct {
	db *gorm.DB
}

// Address seen paying into a liquidity address
type candidate struct {
	address uint32
	firstTx database.TxKey
}

func NewResolver(db *gorm.DB) *Resolver {
	return &Resolver{db: db}
}

// Scan all liquidity addresses accepting deposits up to the last ingested block.
// Each liquidity address is committed separately. Returns the number of new deposits.
func (r *Resolver) Run(ctx context.Context) (int, error) {
	maxBlock, exists, err := database.FetchMaxBlockNumber(r.db)
	if err != nil || !exists {
		return 0, err
	}
	stakingAddresses, err := database.FetchDepositStakingAddresses(r.db)
	if err != nil {
		return 0, err
	}
	rewardNumbers, err := database.FetchRewardAddressNumbers(r.db)
	if err != nil {
		return 0, err
	}
	rewards := mapset.NewThreadUnsafeSet(rewardNumbers...)

	total := 0
	for _, sa := range stakingAddresses {
		if err := ctx.Err(); err != nil {
			return total, err
		}
		var created int
		err := database.DoInTransaction(r.db, func(db *gorm.DB) error {
			var err error
			created, err = r.resolveLiquidityAddress(db, &sa, rewards, maxBlock)
			return err
		})
		if err != nil {
			return total, errors.Wrapf(err, "liquidity address %d (token %d)", sa.LiquidityAddressNumber, sa.TokenNumber)
		}
		total += created
	}
	return total, nil
}

func (r *Resolver) resolveLiquidityAddress(db *gorm.DB, sa *database.StakingAddress, rewards mapset.Set[uint32], maxBlock uint32) (int, error) {
	state, err := database.FetchOrInitState(db, StateName(sa.TokenNumber, sa.LiquidityAddressNumber))
	if err != nil {
		return 0, err
	}
	fromBlock := utils.Max(uint32(state.NextDBIndex), sa.StartBlockNumber)
	if fromBlock > maxBlock {
		return 0, nil
	}

	existing, err := database.FetchDepositsOfLiquidityAddress(db, sa.TokenNumber, sa.LiquidityAddressNumber)
	if err != nil {
		return 0, err
	}
	knownDeposits := mapset.NewThreadUnsafeSet[uint32]()
	knownCustomers := mapset.NewThreadUnsafeSet[uint32]()
	for _, d := range existing {
		knownDeposits.Add(d.DepositAddressNumber)
		knownCustomers.Add(d.CustomerAddressNumber)
	}

	candidates, err := findCandidates(db, sa.TokenNumber, sa.LiquidityAddressNumber, fromBlock, knownDeposits)
	if err != nil {
		return 0, err
	}

	var deposits []*database.Deposit
	for _, c := range candidates {
		if knownCustomers.Contains(c.address) {
			logger.Debug("Address %d is a customer of liquidity address %d", c.address, sa.LiquidityAddressNumber)
			continue
		}
		customer, found, err := findCustomer(db, sa.TokenNumber, c.address)
		if err != nil {
			return 0, err
		}
		if !found {
			logger.Warn("No customer found for deposit address %d of liquidity address %d", c.address, sa.LiquidityAddressNumber)
			continue
		}
		if customer == c.address || rewards.Contains(c.address) || rewards.Contains(customer) || knownDeposits.Contains(customer) {
			logger.Debug("Address %d (customer %d) is not a deposit address of liquidity address %d",
				c.address, customer, sa.LiquidityAddressNumber)
			continue
		}
		knownDeposits.Add(c.address)
		knownCustomers.Add(customer)
		deposits = append(deposits, &database.Deposit{
			TokenNumber:            sa.TokenNumber,
			LiquidityAddressNumber: sa.LiquidityAddressNumber,
			DepositAddressNumber:   c.address,
			CustomerAddressNumber:  customer,
			StartBlockNumber:       c.firstTx.BlockNumber,
			StartTransactionNumber: c.firstTx.TransactionNumber,
		})
	}

	if err := database.CreateDeposits(db, deposits); err != nil {
		return 0, err
	}
	state.Update(uint64(maxBlock)+1, uint64(maxBlock))
	if err := database.UpdateState(db, &state); err != nil {
		return 0, err
	}
	if len(deposits) > 0 {
		logger.Info("Found %d new deposit addresses of liquidity address %d (token %d) in blocks %d-%d",
			len(deposits), sa.LiquidityAddressNumber, sa.TokenNumber, fromBlock, maxBlock)
	}
	return len(deposits), nil
}

// Addresses spending in transactions paying the token to the liquidity address,
// in order of first appearance
func findCandidates(db *gorm.DB, token uint32, liquidity uint32, fromBlock uint32, known mapset.Set[uint32]) ([]candidate, error) {
	payments, err := paymentsTo(db, token, liquidity, fromBlock)
	if err != nil {
		return nil, err
	}

	var candidates []candidate
	seen := mapset.NewThreadUnsafeSet[uint32]()
	for _, txKey := range payments {
		spenders, err := spendersOf(db, token, txKey)
		if err != nil {
			return nil, err
		}
		for _, address := range spenders {
			if address == liquidity || known.Contains(address) {
				continue
			}
			if seen.Add(address) {
				candidates = append(candidates, candidate{address: address, firstTx: txKey})
			}
		}
	}
	return candidates, nil
}

// Customer owning the deposit address: the first other address spending in the
// first transaction the deposit address spent the token in
func findCustomer(db *gorm.DB, token uint32, deposit uint32) (uint32, bool, error) {
	first, found, err := firstSpend(db, token, deposit)
	if err != nil {
		return 0, false, err
	}
	if !found {
		return 0, false, shared.DataIntegrityError("deposit address %d never spent token %d", deposit, token)
	}
	tx, err := database.FetchTransaction(db, first)
	if err != nil {
		return 0, false, err
	}
	if tx == nil {
		return 0, false, shared.DataIntegrityError("transaction (%d, %d) spending from deposit address %d is missing",
			first.BlockNumber, first.TransactionNumber, deposit)
	}

	spenders, err := spendersOf(db, token, first)
	if err != nil {
		return 0, false, err
	}
	for _, address := range spenders {
		if address != deposit {
			return address, true, nil
		}
	}
	return 0, false, nil
}

// Transactions paying the token to the address in blocks >= fromBlock, in chain
// order. UTXO outputs carry the native token only.
func paymentsTo(db *gorm.DB, token uint32, address uint32, fromBlock uint32) ([]database.TxKey, error) {
	keys := mapset.NewThreadUnsafeSet[database.TxKey]()
	if token == database.NativeTokenNumber {
		outs, err := database.FetchOutputsOfAddress(db, address, fromBlock)
		if err != nil {
			return nil, err
		}
		for i := range outs {
			keys.Add(outs[i].TxKey())
		}
	}
	customOuts, err := database.FetchCustomOutputsOfAddress(db, address, token, fromBlock)
	if err != nil {
		return nil, err
	}
	for i := range customOuts {
		keys.Add(customOuts[i].TxKey())
	}

	result := keys.ToSlice()
	sort.Slice(result, func(i, j int) bool { return result[i].Before(result[j]) })
	return result, nil
}

// Addresses spending the token in the transaction, UTXO inputs first in vin order
func spendersOf(db *gorm.DB, token uint32, key database.TxKey) ([]uint32, error) {
	var spenders []uint32
	seen := mapset.NewThreadUnsafeSet[uint32]()
	if token == database.NativeTokenNumber {
		ins, err := database.FetchInputsOfTransaction(db, key)
		if err != nil {
			return nil, err
		}
		for _, in := range ins {
			if seen.Add(in.AddressNumber) {
				spenders = append(spenders, in.AddressNumber)
			}
		}
	}
	customIns, err := database.FetchCustomInputsOfTransaction(db, key, token)
	if err != nil {
		return nil, err
	}
	for _, in := range customIns {
		if seen.Add(in.AddressNumber) {
			spenders = append(spenders, in.AddressNumber)
		}
	}
	return spenders, nil
}

// First transaction in which the address spent the token
func firstSpend(db *gorm.DB, token uint32, address uint32) (database.TxKey, bool, error) {
	var first database.TxKey
	found := false
	if token == database.NativeTokenNumber {
		in, err := database.FetchFirstInputOfAddress(db, address)
		if err != nil {
			return first, false, err
		}
		if in != nil {
			first, found = in.TxKey(), true
		}
	}
	customIn, err := database.FetchFirstCustomInputOfAddress(db, address, token)
	if err != nil {
		return first, false, err
	}
	if customIn != nil && (!found || customIn.TxKey().Before(first)) {
		first, found = customIn.TxKey(), true
	}
	return first, found, nil
}

package database

import (
	"time"

	"github.com/shopspring/decimal"
)

func (s *State) Update(nextIndex, lastIndex uint64) {
	s.NextDBIndex = nextIndex
	s.LastChainIndex = lastIndex
	s.Updated = time.Now()
}

// Key of an output: (block, transaction, vout)
type OutputKey struct {
	BlockNumber       uint32
	TransactionNumber uint32
	VoutIndex         uint32
}

// Key of a transaction: (block, transaction)
type TxKey struct {
	BlockNumber       uint32
	TransactionNumber uint32
}

func (out *AddressTransactionOut) Key() OutputKey {
	return OutputKey{out.BlockNumber, out.TransactionNumber, out.VoutIndex}
}

func (out *AddressTransactionOut) TxKey() TxKey {
	return TxKey{out.BlockNumber, out.TransactionNumber}
}

// Key of the output consumed by this input
func (in *AddressTransactionIn) SpentKey() OutputKey {
	return OutputKey{in.InBlockNumber, in.InTransactionNumber, in.InVoutIndex}
}

func (in *AddressTransactionIn) TxKey() TxKey {
	return TxKey{in.BlockNumber, in.TransactionNumber}
}

func (in *CustomAccountToAccountIn) TxKey() TxKey {
	return TxKey{in.BlockNumber, in.TransactionNumber}
}

func (out *CustomAccountToAccountOut) TxKey() TxKey {
	return TxKey{out.BlockNumber, out.TransactionNumber}
}

// Transactions are ordered by block, then by position in the block
func (k TxKey) Before(other TxKey) bool {
	if k.BlockNumber != other.BlockNumber {
		return k.BlockNumber < other.BlockNumber
	}
	return k.TransactionNumber < other.TransactionNumber
}

func (s *StakingAddress) AcceptsDeposits() bool {
	return s.RewardAddressNumber == nil
}

// Staked minus withdrawn
func (s *Staking) Net() decimal.Decimal {
	return s.Vin.Sub(s.Vout)
}

func (b *Balance) Net() decimal.Decimal {
	return b.Vout.Sub(b.Vin)
}

package database

import (
	"time"

	"github.com/shopspring/decimal"
)

// Abstact entity for bookkeeping tables with a surrogate key
type BaseEntity struct {
	ID uint64 `gorm:"primaryKey"`
}

type Migration struct {
	BaseEntity
	Version     string `gorm:"type:varchar(50);unique;not null"`
	Description string `gorm:"type:varchar(256)"`
	ExecutedAt  time.Time
	Duration    int
	Status      MigrationStatus `gorm:"type:varchar(20)"`
}

// Progress of watermark-driven jobs other than block ingestion (block ingestion
// derives its watermark from the blocks table only)
type State struct {
	BaseEntity
	Name           string `gorm:"type:varchar(100);uniqueIndex"`
	NextDBIndex    uint64 // Next item to process, i.e., "last index" + 1
	LastChainIndex uint64
	Updated        time.Time
}

// Dictionary of chain addresses. Numbers are assigned monotonically and never reused.
type Address struct {
	Number  uint32 `gorm:"primaryKey;autoIncrement:false"`
	Address string `gorm:"type:varchar(128);uniqueIndex;not null"`
}

// Dictionary of token symbols appearing in custom transactions
type Token struct {
	Number uint32 `gorm:"primaryKey;autoIncrement:false"`
	Symbol string `gorm:"type:varchar(64);uniqueIndex;not null"`
}

type Block struct {
	Number    uint32 `gorm:"primaryKey;autoIncrement:false"`
	Hash      string `gorm:"type:varchar(64);not null"`
	Timestamp time.Time
}

type Transaction struct {
	BlockNumber    uint32 `gorm:"primaryKey;autoIncrement:false"`
	Number         uint32 `gorm:"primaryKey;autoIncrement:false"` // Position within the block
	TxID           string `gorm:"type:varchar(64);index;not null"`
	CustomTypeCode string `gorm:"type:varchar(4);not null"` // NoCustomTypeCode if the transaction carries no custom operation
}

// Fundable output of a transaction, paid to AddressNumber
type AddressTransactionOut struct {
	BlockNumber       uint32          `gorm:"primaryKey;autoIncrement:false"`
	TransactionNumber uint32          `gorm:"primaryKey;autoIncrement:false"`
	VoutIndex         uint32          `gorm:"primaryKey;autoIncrement:false"`
	AddressNumber     uint32          `gorm:"index;not null"`
	Amount            decimal.Decimal `gorm:"type:decimal(20,8);not null"`
	Type              OutputType      `gorm:"type:varchar(20)"`
}

// Input of a transaction consuming exactly one prior output
type AddressTransactionIn struct {
	BlockNumber         uint32          `gorm:"primaryKey;autoIncrement:false"`
	TransactionNumber   uint32          `gorm:"primaryKey;autoIncrement:false"`
	VinIndex            uint32          `gorm:"primaryKey;autoIncrement:false"`
	AddressNumber       uint32          `gorm:"index;not null"`
	InBlockNumber       uint32          `gorm:"uniqueIndex:idx_spent_output;not null"` // Block of the consumed output
	InTransactionNumber uint32          `gorm:"uniqueIndex:idx_spent_output;not null"` // Transaction of the consumed output
	InVoutIndex         uint32          `gorm:"uniqueIndex:idx_spent_output;not null"` // Index of the consumed output
	Amount              decimal.Decimal `gorm:"type:decimal(20,8);not null"`
}

// Account-level source of a custom transfer (tokens leaving AddressNumber)
type CustomAccountToAccountIn struct {
	BlockNumber       uint32          `gorm:"primaryKey;autoIncrement:false"`
	TransactionNumber uint32          `gorm:"primaryKey;autoIncrement:false"`
	AddressNumber     uint32          `gorm:"primaryKey;autoIncrement:false;index"`
	TokenNumber       uint32          `gorm:"primaryKey;autoIncrement:false"`
	TypeNumber        uint8           `gorm:"not null"` // Marker byte of the custom operation
	Amount            decimal.Decimal `gorm:"type:decimal(20,8);not null"`
}

// Account-level destination of a custom transfer (tokens received by AddressNumber)
type CustomAccountToAccountOut struct {
	BlockNumber       uint32          `gorm:"primaryKey;autoIncrement:false"`
	TransactionNumber uint32          `gorm:"primaryKey;autoIncrement:false"`
	AddressNumber     uint32          `gorm:"primaryKey;autoIncrement:false;index"`
	TokenNumber       uint32          `gorm:"primaryKey;autoIncrement:false"`
	TypeNumber        uint8           `gorm:"not null"`
	Amount            decimal.Decimal `gorm:"type:decimal(20,8);not null"`
}

type Balance struct {
	TokenNumber      uint32          `gorm:"primaryKey;autoIncrement:false"`
	AddressNumber    uint32          `gorm:"primaryKey;autoIncrement:false"`
	BlockNumber      uint32          // Watermark: last block included in the sums
	TransactionCount uint64
	Vout             decimal.Decimal `gorm:"type:decimal(20,8);not null"`
	Vin              decimal.Decimal `gorm:"type:decimal(20,8);not null"`
}

// Liquidity address of a token. A nil RewardAddressNumber marks a liquidity
// address accepting customer deposits.
type StakingAddress struct {
	TokenNumber            uint32 `gorm:"primaryKey;autoIncrement:false"`
	LiquidityAddressNumber uint32 `gorm:"primaryKey;autoIncrement:false"`
	RewardAddressNumber    *uint32
	StartBlockNumber       uint32
}

// Deposit address discovered for a liquidity address and its owning customer.
// Rows are never updated.
type Deposit struct {
	TokenNumber            uint32 `gorm:"primaryKey;autoIncrement:false"`
	LiquidityAddressNumber uint32 `gorm:"primaryKey;autoIncrement:false"`
	DepositAddressNumber   uint32 `gorm:"primaryKey;autoIncrement:false"`
	CustomerAddressNumber  uint32 `gorm:"index;not null"`
	StartBlockNumber       uint32
	StartTransactionNumber uint32
}

type Staking struct {
	TokenNumber            uint32          `gorm:"primaryKey;autoIncrement:false"`
	LiquidityAddressNumber uint32          `gorm:"primaryKey;autoIncrement:false"`
	DepositAddressNumber   uint32          `gorm:"primaryKey;autoIncrement:false"`
	CustomerAddressNumber  uint32          `gorm:"primaryKey;autoIncrement:false"`
	LastInBlockNumber      *uint32         // Watermark of Vin, nil if nothing was staked yet
	Vin                    decimal.Decimal `gorm:"type:decimal(20,8);not null"`
	LastOutBlockNumber     *uint32         // Watermark of Vout, nil if nothing was withdrawn yet
	Vout                   decimal.Decimal `gorm:"type:decimal(20,8);not null"`
}

// Masternode metadata for whitelisted owner addresses. All fields except the
// key are refreshed from the chain.
type MasternodeWhitelist struct {
	WalletID        uint32 `gorm:"primaryKey;autoIncrement:false"`
	OwnerAddress    string `gorm:"primaryKey;type:varchar(128)"`
	TransactionID   string `gorm:"type:varchar(64)"` // Empty until the creation transaction is found
	OperatorAddress string `gorm:"type:varchar(128)"`
	RewardAddress   string `gorm:"type:varchar(128)"`
	CreationHeight  int64
	ResignHeight    int64 // -1 as reported by the node while not resigned
	State           string `gorm:"type:varchar(40)"`
}

func (MasternodeWhitelist) TableName() string {
	return "masternode_whitelist"
}

func (Transaction) TableName() string { return "transactions" }

func (AddressTransactionOut) TableName() string { return "address_transaction_outs" }

func (AddressTransactionIn) TableName() string { return "address_transaction_ins" }

func (CustomAccountToAccountIn) TableName() string { return "custom_account_to_account_ins" }

func (CustomAccountToAccountOut) TableName() string { return "custom_account_to_account_outs" }

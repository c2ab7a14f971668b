package api

import (
	"github.com/shopspring/decimal"
)

type ApiBalance struct {
	Token            string          `json:"token"`
	Address          string          `json:"address"`
	BlockNumber      uint32          `json:"blockNumber"`
	TransactionCount uint64          `json:"transactionCount"`
	Vout             decimal.Decimal `json:"vout"`
	Vin              decimal.Decimal `json:"vin"`
	Net              decimal.Decimal `json:"net"`
}

type ApiDeposit struct {
	Token                  string `json:"token"`
	LiquidityAddress       string `json:"liquidityAddress"`
	DepositAddress         string `json:"depositAddress"`
	CustomerAddress        string `json:"customerAddress"`
	StartBlockNumber       uint32 `json:"startBlockNumber"`
	StartTransactionNumber uint32 `json:"startTransactionNumber"`
}

type ApiStaking struct {
	Token              string          `json:"token"`
	LiquidityAddress   string          `json:"liquidityAddress"`
	DepositAddress     string          `json:"depositAddress"`
	CustomerAddress    string          `json:"customerAddress"`
	LastInBlockNumber  *uint32         `json:"lastInBlockNumber"`
	Vin                decimal.Decimal `json:"vin"`
	LastOutBlockNumber *uint32         `json:"lastOutBlockNumber"`
	Vout               decimal.Decimal `json:"vout"`
	Net                decimal.Decimal `json:"net"`
}

type ApiStatus struct {
	ChainHeight       uint32  `json:"chainHeight"`
	LastIngestedBlock *uint32 `json:"lastIngestedBlock"`
}

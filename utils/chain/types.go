package chain

import (
	"encoding/json"

	"github.com/shopspring/decimal"
)

// Reply of "getblock" with verbosity 1
type Block struct {
	Hash   string   `json:"hash"`
	Height uint32   `json:"height"`
	Time   int64    `json:"time"`
	Tx     []string `json:"tx"`
}

// Reply of "getrawtransaction" with verbose set
type Transaction struct {
	TxID string `json:"txid"`
	Vin  []Vin  `json:"vin"`
	Vout []Vout `json:"vout"`
	Hex  string `json:"hex"`
}

type Vin struct {
	Coinbase string `json:"coinbase,omitempty"`
	TxID     string `json:"txid,omitempty"`
	Vout     uint32 `json:"vout"`
}

type Vout struct {
	Value        decimal.Decimal `json:"value"`
	N            uint32          `json:"n"`
	ScriptPubKey ScriptPubKey    `json:"scriptPubKey"`
}

type ScriptPubKey struct {
	Hex       string   `json:"hex"`
	Type      string   `json:"type"`
	Addresses []string `json:"addresses"`
}

// Reply of "decodecustomtx". Results depend on the type of the custom transaction.
type CustomTxResult struct {
	TxID    string          `json:"txid"`
	Type    string          `json:"type"`
	Valid   bool            `json:"valid"`
	Results json.RawMessage `json:"results"`
}

// Entry of "listmasternodes" (verbose)
type Masternode struct {
	OwnerAuthAddress    string `json:"ownerAuthAddress"`
	OperatorAuthAddress string `json:"operatorAuthAddress"`
	RewardAddress       string `json:"rewardAddress"`
	CreationHeight      int64  `json:"creationHeight"`
	ResignHeight        int64  `json:"resignHeight"`
	State               string `json:"state"`
}

// A transaction is a coinbase if it has exactly one input that does not spend a prior output
func (tx *Transaction) IsCoinbase() bool {
	return len(tx.Vin) == 1 && len(tx.Vin[0].TxID) == 0
}

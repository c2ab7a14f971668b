package chain

import (
	"context"
	"encoding/hex"
	"fmt"
	"sync"
	"time"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
)

// In-memory chain used in tests in place of a node
type MemoryClient struct {
	mu sync.Mutex

	blocks      []*Block
	txs         map[string]*Transaction
	applied     map[string]bool
	decoded     map[string]*CustomTxResult // by transaction hex
	masternodes map[string]*Masternode
	failing     map[string]error
}

func NewMemoryClient() *MemoryClient {
	return &MemoryClient{
		txs:         make(map[string]*Transaction),
		applied:     make(map[string]bool),
		decoded:     make(map[string]*CustomTxResult),
		masternodes: make(map[string]*Masternode),
		failing:     make(map[string]error),
	}
}

// Append a block with the given transactions and return its height
func (c *MemoryClient) AddBlock(txs ...*Transaction) uint32 {
	c.mu.Lock()
	defer c.mu.Unlock()

	height := uint32(len(c.blocks))
	block := &Block{
		Hash:   fmt.Sprintf("%064x", height+1),
		Height: height,
		Time:   time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC).Unix() + int64(height)*30,
	}
	for _, tx := range txs {
		block.Tx = append(block.Tx, tx.TxID)
		c.txs[tx.TxID] = tx
	}
	c.blocks = append(c.blocks, block)
	return height
}

// Mark the custom operation of the transaction as applied with the given decoded payload
func (c *MemoryClient) AddCustomTx(tx *Transaction, result *CustomTxResult) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.applied[tx.TxID] = true
	if result != nil {
		c.decoded[tx.Hex] = result
	}
}

func (c *MemoryClient) AddMasternode(txID string, mn *Masternode) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.masternodes[txID] = mn
}

// Make GetTransaction fail for the transaction, a nil error removes the failure
func (c *MemoryClient) FailTransaction(txID string, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err == nil {
		delete(c.failing, txID)
	} else {
		c.failing[txID] = err
	}
}

func (c *MemoryClient) GetBlockCount(ctx context.Context) (uint32, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if len(c.blocks) == 0 {
		return 0, errors.New("no blocks")
	}
	return uint32(len(c.blocks) - 1), nil
}

func (c *MemoryClient) GetBlockHash(ctx context.Context, height uint32) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if int(height) >= len(c.blocks) {
		return "", errors.Errorf("block height %d out of range", height)
	}
	return c.blocks[height].Hash, nil
}

func (c *MemoryClient) GetBlock(ctx context.Context, hash string) (*Block, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, b := range c.blocks {
		if b.Hash == hash {
			return b, nil
		}
	}
	return nil, errors.Errorf("block %s not found", hash)
}

func (c *MemoryClient) GetTransaction(ctx context.Context, txID string, blockHash string) (*Transaction, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err, ok := c.failing[txID]; ok {
		return nil, err
	}
	tx, ok := c.txs[txID]
	if !ok {
		return nil, errors.Errorf("transaction %s not found", txID)
	}
	return tx, nil
}

func (c *MemoryClient) IsAppliedCustomTx(ctx context.Context, txID string, height uint32) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.applied[txID], nil
}

func (c *MemoryClient) DecodeCustomTx(ctx context.Context, hex string) (*CustomTxResult, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	result, ok := c.decoded[hex]
	if !ok {
		return nil, errors.New("unable to decode custom transaction")
	}
	return result, nil
}

func (c *MemoryClient) GetMasternode(ctx context.Context, txID string) (*Masternode, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	mn, ok := c.masternodes[txID]
	if !ok {
		return nil, ErrMasternodeNotFound
	}
	return mn, nil
}

// Transaction builders
/////////////////////////////////////////////////////////////////////////////////////////

func NewCoinbaseTx(txID string, outs ...Vout) *Transaction {
	return NewTx(txID, []Vin{{Coinbase: "03a0860100"}}, outs...)
}

// Transaction spending the given inputs; outputs are numbered in order
func NewTx(txID string, ins []Vin, outs ...Vout) *Transaction {
	tx := &Transaction{
		TxID: txID,
		Vin:  ins,
		Hex:  hex.EncodeToString([]byte(txID)),
	}
	for i, out := range outs {
		out.N = uint32(i)
		tx.Vout = append(tx.Vout, out)
	}
	return tx
}

func Spend(txID string, vout uint32) Vin {
	return Vin{TxID: txID, Vout: vout}
}

func PayTo(address string, amount string) Vout {
	return Vout{
		Value: decimal.RequireFromString(amount),
		ScriptPubKey: ScriptPubKey{
			Hex:       hex.EncodeToString([]byte(address)),
			Type:      "witness_v0_keyhash",
			Addresses: []string{address},
		},
	}
}

// Zero-valued output carrying the given script and no address
func NullData(scriptHex string) Vout {
	return Vout{
		Value: decimal.Zero,
		ScriptPubKey: ScriptPubKey{
			Hex:  scriptHex,
			Type: "nulldata",
		},
	}
}

package chain

import (
	"context"
	"errors"
)

var (
	ErrMasternodeNotFound = errors.New("masternode not found")
)

// Data provider of a full node
type Client interface {
	GetBlockCount(ctx context.Context) (uint32, error)
	GetBlockHash(ctx context.Context, height uint32) (string, error)
	GetBlock(ctx context.Context, hash string) (*Block, error)
	GetTransaction(ctx context.Context, txID string, blockHash string) (*Transaction, error)

	// True if the custom operation of the transaction was applied in the block at the given height
	IsAppliedCustomTx(ctx context.Context, txID string, height uint32) (bool, error)
	DecodeCustomTx(ctx context.Context, hex string) (*CustomTxResult, error)

	// Masternode created by the transaction with the given id; ErrMasternodeNotFound if there is none
	GetMasternode(ctx context.Context, txID string) (*Masternode, error)
}

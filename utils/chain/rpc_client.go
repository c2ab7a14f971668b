package chain

import (
	"context"
	"encoding/base64"
	"net/http"
	"time"

	"github.com/LOCKbusiness/transaction-checker-sub000/config"

	"github.com/pkg/errors"
	"github.com/ybbus/jsonrpc/v3"
)

const (
	DefaultRPCTimeout time.Duration = 3 * time.Minute
)

// Client calling a DeFiChain node over JSON-RPC
type RPCClient struct {
	client jsonrpc.RPCClient
}

type listMasternodesFilter struct {
	Start          string `json:"start"`
	IncludingStart bool   `json:"including_start"`
	Limit          int    `json:"limit"`
}

func NewRPCClient(cfg *config.ChainConfig) *RPCClient {
	timeout := DefaultRPCTimeout
	if cfg.TimeoutSeconds > 0 {
		timeout = time.Duration(cfg.TimeoutSeconds) * time.Second
	}
	opts := &jsonrpc.RPCClientOpts{
		HTTPClient:    &http.Client{Timeout: timeout},
		CustomHeaders: map[string]string{},
	}
	if len(cfg.Username) > 0 {
		credentials := base64.StdEncoding.EncodeToString([]byte(cfg.Username + ":" + cfg.Password))
		opts.CustomHeaders["Authorization"] = "Basic " + credentials
	}
	return &RPCClient{
		client: jsonrpc.NewClientWithOpts(cfg.NodeURL, opts),
	}
}

func (c *RPCClient) GetBlockCount(ctx context.Context) (uint32, error) {
	var count uint32
	err := c.call(ctx, &count, "getblockcount")
	return count, err
}

func (c *RPCClient) GetBlockHash(ctx context.Context, height uint32) (string, error) {
	var hash string
	err := c.call(ctx, &hash, "getblockhash", height)
	return hash, err
}

func (c *RPCClient) GetBlock(ctx context.Context, hash string) (*Block, error) {
	block := &Block{}
	err := c.call(ctx, block, "getblock", hash, 1)
	if err != nil {
		return nil, err
	}
	return block, nil
}

func (c *RPCClient) GetTransaction(ctx context.Context, txID string, blockHash string) (*Transaction, error) {
	tx := &Transaction{}
	err := c.call(ctx, tx, "getrawtransaction", txID, true, blockHash)
	if err != nil {
		return nil, err
	}
	return tx, nil
}

func (c *RPCClient) IsAppliedCustomTx(ctx context.Context, txID string, height uint32) (bool, error) {
	var applied bool
	err := c.call(ctx, &applied, "isappliedcustomtx", txID, height)
	return applied, err
}

func (c *RPCClient) DecodeCustomTx(ctx context.Context, hex string) (*CustomTxResult, error) {
	result := &CustomTxResult{}
	err := c.call(ctx, result, "decodecustomtx", hex)
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (c *RPCClient) GetMasternode(ctx context.Context, txID string) (*Masternode, error) {
	filter := listMasternodesFilter{
		Start:          txID,
		IncludingStart: true,
		Limit:          1,
	}
	var masternodes map[string]*Masternode
	err := c.call(ctx, &masternodes, "listmasternodes", filter, true)
	if err != nil {
		return nil, err
	}
	mn, ok := masternodes[txID]
	if !ok {
		return nil, ErrMasternodeNotFound
	}
	return mn, nil
}

func (c *RPCClient) call(ctx context.Context, result interface{}, method string, params ...interface{}) error {
	response, err := c.client.Call(ctx, method, params...)
	if err != nil {
		return errors.Wrapf(err, "rpc %s", method)
	}
	if response.Error != nil {
		return errors.Wrapf(response.Error, "rpc %s", method)
	}
	err = response.GetObject(result)
	if err != nil {
		return errors.Wrapf(err, "rpc %s: malformed response", method)
	}
	return nil
}

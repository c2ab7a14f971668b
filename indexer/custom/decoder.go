package custom

import (
	"context"
	"encoding/json"

	"github.com/LOCKbusiness/transaction-checker-sub000/database"
	"github.com/LOCKbusiness/transaction-checker-sub000/indexer/shared"
	"github.com/LOCKbusiness/transaction-checker-sub000/logger"
	"github.com/LOCKbusiness/transaction-checker-sub000/utils/chain"

	"github.com/pkg/errors"
	"gorm.io/gorm"
)

// Decoded custom operation moving tokens between accounts. Transfers are
// merged per (address, token).
type Transfers struct {
	Kind Kind
	From []Transfer
	To   []Transfer
}

// Outcome of inspecting one transaction
type Result struct {
	// Code stored with the transaction, database.NoCustomTypeCode if there is
	// no recognized custom operation
	TypeCode string

	// Nil unless the operation has a registered decoder
	Transfers *Transfers
}

type payloadDecoder func(results json.RawMessage) (*Transfers, error)

// Operations with account transfers that are decoded into ledger rows; all
// other known kinds are recorded by code only
var decoders = map[Kind]payloadDecoder{
	KindAccountToAccount:      decodeAccountToAccount,
	KindAnyAccountsToAccounts: decodeAnyAccountsToAccounts,
}

type Decoder struct {
	client chain.Client
}

func NewDecoder(client chain.Client) *Decoder {
	return &Decoder{client: client}
}

// Custom operation of the transaction in the block at the given height
func (d *Decoder) Decode(ctx context.Context, tx *chain.Transaction, height uint32) (*Result, error) {
	none := &Result{TypeCode: database.NoCustomTypeCode}

	applied, err := d.client.IsAppliedCustomTx(ctx, tx.TxID, height)
	if err != nil {
		return nil, err
	}
	if !applied {
		return none, nil
	}

	marker, found := markerOf(tx)
	if !found {
		logger.Warn("Applied custom transaction %s in block %d has no custom marker", tx.TxID, height)
		return none, nil
	}
	kind, known := ParseKind(marker)
	if !known {
		logger.Warn("Unknown custom type 0x%02x in transaction %s, block %d", marker, tx.TxID, height)
		return none, nil
	}

	decode, registered := decoders[kind]
	if !registered {
		logger.Debug("Custom transaction %s (%s) in block %d has no decoder, recorded by code only", tx.TxID, kind, height)
		return &Result{TypeCode: kind.Code()}, nil
	}

	decoded, err := d.client.DecodeCustomTx(ctx, tx.Hex)
	if err != nil {
		return nil, err
	}
	if !decoded.Valid {
		return nil, shared.DataIntegrityError("applied custom transaction %s (%s) in block %d decoded as invalid", tx.TxID, kind, height)
	}
	transfers, err := decode(decoded.Results)
	if err != nil {
		return nil, shared.DataIntegrityError("custom transaction %s (%s) in block %d: %v", tx.TxID, kind, height, err)
	}
	transfers.Kind = kind
	return &Result{TypeCode: kind.Code(), Transfers: transfers}, nil
}

func markerOf(tx *chain.Transaction) (byte, bool) {
	for _, out := range tx.Vout {
		if marker, ok := chain.CustomTxType(out.ScriptPubKey.Hex); ok {
			return marker, true
		}
	}
	return 0, false
}

// Single source account; the source sends the per-token sum of all destinations
func decodeAccountToAccount(results json.RawMessage) (*Transfers, error) {
	var payload struct {
		From string              `json:"from"`
		To   map[string]balances `json:"to"`
	}
	if err := json.Unmarshal(results, &payload); err != nil {
		return nil, errors.Wrap(err, "malformed account to account payload")
	}
	if len(payload.From) == 0 {
		return nil, errors.New("missing source address")
	}
	to, err := parseAccounts(payload.To)
	if err != nil {
		return nil, err
	}
	if len(to) == 0 {
		return nil, errors.New("missing destinations")
	}

	var from []Transfer
	for token, sum := range sumPerToken(to) {
		from = append(from, Transfer{Address: payload.From, Token: token, Amount: sum})
	}
	return &Transfers{From: mergeTransfers(from), To: to}, nil
}

// Independent sources and destinations
func decodeAnyAccountsToAccounts(results json.RawMessage) (*Transfers, error) {
	var payload struct {
		From map[string]balances `json:"from"`
		To   map[string]balances `json:"to"`
	}
	if err := json.Unmarshal(results, &payload); err != nil {
		return nil, errors.Wrap(err, "malformed any accounts to accounts payload")
	}
	from, err := parseAccounts(payload.From)
	if err != nil {
		return nil, err
	}
	to, err := parseAccounts(payload.To)
	if err != nil {
		return nil, err
	}
	if len(from) == 0 || len(to) == 0 {
		return nil, errors.New("missing sources or destinations")
	}
	if err := checkConservation(from, to); err != nil {
		return nil, err
	}
	return &Transfers{From: from, To: to}, nil
}

// Dictionary resolving addresses or token symbols to numbers
type Resolver interface {
	Resolve(db *gorm.DB, key string) (uint32, error)
}

// Ledger rows of the transfers of transaction (block, tx)
func (t *Transfers) Rows(
	db *gorm.DB,
	key database.TxKey,
	addresses Resolver,
	tokens Resolver,
) ([]*database.CustomAccountToAccountIn, []*database.CustomAccountToAccountOut, error) {
	ins := make([]*database.CustomAccountToAccountIn, 0, len(t.From))
	for _, tr := range t.From {
		address, token, err := resolveTransfer(db, tr, addresses, tokens)
		if err != nil {
			return nil, nil, err
		}
		ins = append(ins, &database.CustomAccountToAccountIn{
			BlockNumber:       key.BlockNumber,
			TransactionNumber: key.TransactionNumber,
			AddressNumber:     address,
			TokenNumber:       token,
			TypeNumber:        uint8(t.Kind),
			Amount:            tr.Amount,
		})
	}
	outs := make([]*database.CustomAccountToAccountOut, 0, len(t.To))
	for _, tr := range t.To {
		address, token, err := resolveTransfer(db, tr, addresses, tokens)
		if err != nil {
			return nil, nil, err
		}
		outs = append(outs, &database.CustomAccountToAccountOut{
			BlockNumber:       key.BlockNumber,
			TransactionNumber: key.TransactionNumber,
			AddressNumber:     address,
			TokenNumber:       token,
			TypeNumber:        uint8(t.Kind),
			Amount:            tr.Amount,
		})
	}
	return ins, outs, nil
}

func resolveTransfer(db *gorm.DB, tr Transfer, addresses Resolver, tokens Resolver) (uint32, uint32, error) {
	address, err := addresses.Resolve(db, tr.Address)
	if err != nil {
		return 0, 0, err
	}
	token, err := tokens.Resolve(db, tr.Token)
	if err != nil {
		return 0, 0, err
	}
	return address, token, nil
}

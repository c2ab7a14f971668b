package custom

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/LOCKbusiness/transaction-checker-sub000/database"
	"github.com/LOCKbusiness/transaction-checker-sub000/indexer/shared"
	"github.com/LOCKbusiness/transaction-checker-sub000/utils/chain"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func customTx(txID string, kind byte) *chain.Transaction {
	return chain.NewTx(txID, []chain.Vin{chain.Spend("prev", 0)},
		chain.NullData(chain.CustomTxScript(kind, []byte{0x00})),
		chain.PayTo("change", "1"),
	)
}

func decodeWith(t *testing.T, tx *chain.Transaction, results string, valid bool) (*Result, error) {
	client := chain.NewMemoryClient()
	client.AddCustomTx(tx, &chain.CustomTxResult{
		TxID:    tx.TxID,
		Valid:   valid,
		Results: json.RawMessage(results),
	})
	return NewDecoder(client).Decode(context.Background(), tx, 10)
}

func sums(transfers []Transfer) map[string]string {
	result := make(map[string]string)
	for token, sum := range sumPerToken(transfers) {
		result[token] = sum.String()
	}
	return result
}

func TestDecodeAccountToAccount(t *testing.T) {
	tx := customTx("t1", 'B')
	result, err := decodeWith(t, tx, `{
		"from": "src",
		"to": {
			"dst1": "1.5@DFI,2@BTC",
			"dst2": ["0.5@DFI"]
		}
	}`, true)
	require.NoError(t, err)
	require.Equal(t, "B", result.TypeCode)
	require.NotNil(t, result.Transfers)
	require.Equal(t, KindAccountToAccount, result.Transfers.Kind)

	require.Len(t, result.Transfers.To, 3)
	require.Len(t, result.Transfers.From, 2)
	for _, from := range result.Transfers.From {
		require.Equal(t, "src", from.Address)
	}
	// Conservation per token
	require.Equal(t, map[string]string{"DFI": "2", "BTC": "2"}, sums(result.Transfers.From))
	require.Equal(t, sums(result.Transfers.From), sums(result.Transfers.To))
}

func TestDecodeAnyAccountsToAccounts(t *testing.T) {
	tx := customTx("t2", 'a')
	result, err := decodeWith(t, tx, `{
		"from": {"s1": "1@DFI", "s2": "2@DFI"},
		"to": {"d1": "3@DFI"}
	}`, true)
	require.NoError(t, err)
	require.Equal(t, "a", result.TypeCode)
	require.Len(t, result.Transfers.From, 2)
	require.Len(t, result.Transfers.To, 1)
	require.True(t, decimal.NewFromInt(3).Equal(result.Transfers.To[0].Amount))
}

func TestDecodeAnyAccountsToAccountsNotConserved(t *testing.T) {
	tx := customTx("t3", 'a')
	_, err := decodeWith(t, tx, `{
		"from": {"s1": "1@DFI"},
		"to": {"d1": "3@DFI"}
	}`, true)
	require.ErrorIs(t, err, shared.ErrDataIntegrity)
}

func TestDecodeInvalidOrMalformed(t *testing.T) {
	_, err := decodeWith(t, customTx("t4", 'B'), `{"from": "src", "to": {"dst": "1@DFI"}}`, false)
	require.ErrorIs(t, err, shared.ErrDataIntegrity)

	_, err = decodeWith(t, customTx("t5", 'B'), `{"from": "src", "to": {"dst": "x@DFI"}}`, true)
	require.ErrorIs(t, err, shared.ErrDataIntegrity)

	_, err = decodeWith(t, customTx("t6", 'B'), `{"from": "src", "to": {"dst": 5}}`, true)
	require.ErrorIs(t, err, shared.ErrDataIntegrity)
}

func TestDecodeRecognizedWithoutDecoder(t *testing.T) {
	result, err := decodeWith(t, customTx("t7", 'U'), `{}`, true)
	require.NoError(t, err)
	require.Equal(t, "U", result.TypeCode)
	require.Nil(t, result.Transfers)
}

func TestDecodeUnknownMarker(t *testing.T) {
	result, err := decodeWith(t, customTx("t8", 0x01), `{}`, true)
	require.NoError(t, err)
	require.Equal(t, database.NoCustomTypeCode, result.TypeCode)
	require.Nil(t, result.Transfers)
}

func TestDecodeNotApplied(t *testing.T) {
	client := chain.NewMemoryClient()
	result, err := NewDecoder(client).Decode(context.Background(), customTx("t9", 'B'), 10)
	require.NoError(t, err)
	require.Equal(t, database.NoCustomTypeCode, result.TypeCode)
	require.Nil(t, result.Transfers)
}

type mapResolver map[string]uint32

func (m mapResolver) Resolve(_ *gorm.DB, key string) (uint32, error) {
	return m[key], nil
}

func TestTransfersRows(t *testing.T) {
	transfers := &Transfers{
		Kind: KindAccountToAccount,
		From: []Transfer{{Address: "src", Token: "BTC", Amount: decimal.NewFromInt(2)}},
		To: []Transfer{
			{Address: "d1", Token: "BTC", Amount: decimal.NewFromInt(1)},
			{Address: "d2", Token: "BTC", Amount: decimal.NewFromInt(1)},
		},
	}
	addresses := mapResolver{"src": 4, "d1": 5, "d2": 6}
	tokens := mapResolver{"BTC": 2}

	ins, outs, err := transfers.Rows(nil, database.TxKey{BlockNumber: 3, TransactionNumber: 1}, addresses, tokens)
	require.NoError(t, err)
	require.Equal(t, []*database.CustomAccountToAccountIn{{
		BlockNumber: 3, TransactionNumber: 1, AddressNumber: 4, TokenNumber: 2, TypeNumber: 'B', Amount: decimal.NewFromInt(2),
	}}, ins)
	require.Len(t, outs, 2)
	require.Equal(t, uint32(6), outs[1].AddressNumber)
	require.Equal(t, uint8('B'), outs[1].TypeNumber)
}

func TestParseKind(t *testing.T) {
	kind, ok := ParseKind('B')
	require.True(t, ok)
	require.Equal(t, "AccountToAccount", kind.String())
	require.Equal(t, "B", kind.Code())

	_, ok = ParseKind('?')
	require.False(t, ok)
}

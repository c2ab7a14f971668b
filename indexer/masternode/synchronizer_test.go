package masternode

import (
	"context"
	"testing"

	"github.com/LOCKbusiness/transaction-checker-sub000/database"
	"github.com/LOCKbusiness/transaction-checker-sub000/indexer/config"
	"github.com/LOCKbusiness/transaction-checker-sub000/indexer/ingest"
	"github.com/LOCKbusiness/transaction-checker-sub000/utils/chain"

	"github.com/stretchr/testify/require"
)

func masternodeChain() *chain.MemoryClient {
	client := chain.NewMemoryClient()
	client.AddBlock(chain.NewCoinbaseTx("cb0", chain.PayTo("owner", "20001")))
	create := chain.NewTx("mn1", []chain.Vin{chain.Spend("cb0", 0)},
		chain.NullData(chain.CustomTxScript('C', []byte{0x01})),
		chain.PayTo("owner", "20000"),
	)
	client.AddCustomTx(create, nil)
	client.AddBlock(create)
	// Later self-funding transaction of the owner which is not a creation
	client.AddBlock(chain.NewTx("s2", []chain.Vin{chain.Spend("mn1", 1)}, chain.PayTo("owner", "19999")))

	client.AddMasternode("mn1", &chain.Masternode{
		OwnerAuthAddress:    "owner",
		OperatorAuthAddress: "operator",
		RewardAddress:       "reward",
		CreationHeight:      1,
		ResignHeight:        -1,
		State:               "ENABLED",
	})
	client.AddMasternode("mnY", &chain.Masternode{
		OwnerAuthAddress:    "ownerY",
		OperatorAuthAddress: "operatorY",
		CreationHeight:      100,
		ResignHeight:        -1,
		State:               "ENABLED",
	})
	return client
}

func TestSynchronizeWhitelist(t *testing.T) {
	client := masternodeChain()
	ctx, err := ingest.IngestTestChain(client, config.NewTestConfig(10, 100))
	require.NoError(t, err)
	db := ctx.DB()

	upToDate := database.MasternodeWhitelist{
		WalletID:        3,
		OwnerAddress:    "ownerY",
		TransactionID:   "mnY",
		OperatorAddress: "operatorY",
		CreationHeight:  100,
		ResignHeight:    -1,
		State:           "ENABLED",
	}
	for _, row := range []*database.MasternodeWhitelist{
		{WalletID: 1, OwnerAddress: "owner"},
		{WalletID: 2, OwnerAddress: "unknown"},
		&upToDate,
		{WalletID: 4, OwnerAddress: "ownerZ", TransactionID: "mnZ"},
	} {
		require.NoError(t, database.CreateMasternodeWhitelist(db, row))
	}

	s := NewSynchronizer(db, client)
	saved, err := s.Run(context.Background())
	require.NoError(t, err)
	require.Equal(t, 1, saved)

	rows, err := database.FetchMasternodeWhitelist(db)
	require.NoError(t, err)
	require.Equal(t, database.MasternodeWhitelist{
		WalletID:        1,
		OwnerAddress:    "owner",
		TransactionID:   "mn1",
		OperatorAddress: "operator",
		RewardAddress:   "reward",
		CreationHeight:  1,
		ResignHeight:    -1,
		State:           "ENABLED",
	}, rows[0])
	require.Equal(t, database.MasternodeWhitelist{WalletID: 2, OwnerAddress: "unknown"}, rows[1])
	require.Equal(t, upToDate, rows[2])
	require.Equal(t, database.MasternodeWhitelist{WalletID: 4, OwnerAddress: "ownerZ", TransactionID: "mnZ"}, rows[3])

	// Nothing changed on the node
	saved, err = s.Run(context.Background())
	require.NoError(t, err)
	require.Equal(t, 0, saved)

	// Resignation is picked up by re-query
	client.AddMasternode("mn1", &chain.Masternode{
		OwnerAuthAddress:    "owner",
		OperatorAuthAddress: "operator",
		RewardAddress:       "reward",
		CreationHeight:      1,
		ResignHeight:        3,
		State:               "RESIGNED",
	})
	saved, err = s.Run(context.Background())
	require.NoError(t, err)
	require.Equal(t, 1, saved)

	rows, err = database.FetchMasternodeWhitelist(db)
	require.NoError(t, err)
	require.Equal(t, "RESIGNED", rows[0].State)
	require.Equal(t, int64(3), rows[0].ResignHeight)
}

func TestCreationTransactionPreferred(t *testing.T) {
	client := masternodeChain()
	ctx, err := ingest.IngestTestChain(client, config.NewTestConfig(10, 100))
	require.NoError(t, err)

	txID, err := NewSynchronizer(ctx.DB(), client).findCreationTransaction("owner")
	require.NoError(t, err)
	require.Equal(t, "mn1", txID)

	txs, err := database.FetchSelfFundedTransactions(ctx.DB(), 0)
	require.NoError(t, err)
	require.Len(t, txs, 2)
	require.Equal(t, "s2", txs[0].TxID)
}

package masternode

import (
	"context"

	"github.com/LOCKbusiness/transaction-checker-sub000/database"
	"github.com/LOCKbusiness/transaction-checker-sub000/indexer/custom"
	"github.com/LOCKbusiness/transaction-checker-sub000/logger"
	"github.com/LOCKbusiness/transaction-checker-sub000/utils/chain"

	"github.com/pkg/errors"
	"gorm.io/gorm"
)

// Refreshes masternode metadata of whitelisted owner addresses
type Synchronizer struct {
	db     *gorm.DB
	client chain.Client
}

func NewSynchronizer(db *gorm.DB, client chain.Client) *Synchronizer {
	return &Synchronizer{db: db, client: client}
}

// Refresh all whitelist rows; rows that changed are saved one by one. Returns
// the number of saved rows.
func (s *Synchronizer) Run(ctx context.Context) (int, error) {
	rows, err := database.FetchMasternodeWhitelist(s.db)
	if err != nil {
		return 0, err
	}

	saved := 0
	for _, loaded := range rows {
		if err := ctx.Err(); err != nil {
			return saved, err
		}
		row := loaded
		ok, err := s.refresh(ctx, &row)
		if err != nil {
			return saved, errors.Wrapf(err, "masternode of owner %s (wallet %d)", row.OwnerAddress, row.WalletID)
		}
		if !ok || row == loaded {
			continue
		}
		err = database.DoInTransaction(s.db, func(db *gorm.DB) error {
			return database.UpdateMasternodeWhitelist(db, &row)
		})
		if err != nil {
			return saved, err
		}
		saved++
	}
	if saved > 0 {
		logger.Info("Updated %d masternode whitelist entries", saved)
	}
	return saved, nil
}

// Fill the row from the node. False if the masternode could not be found.
func (s *Synchronizer) refresh(ctx context.Context, row *database.MasternodeWhitelist) (bool, error) {
	txID := row.TransactionID
	if len(txID) == 0 {
		var err error
		txID, err = s.findCreationTransaction(row.OwnerAddress)
		if err != nil || len(txID) == 0 {
			return false, err
		}
	}

	mn, err := s.client.GetMasternode(ctx, txID)
	if errors.Is(err, chain.ErrMasternodeNotFound) {
		logger.Warn("Masternode %s of owner %s not found", txID, row.OwnerAddress)
		return false, nil
	}
	if err != nil {
		return false, err
	}

	row.TransactionID = txID
	row.OperatorAddress = mn.OperatorAuthAddress
	row.RewardAddress = mn.RewardAddress
	row.CreationHeight = mn.CreationHeight
	row.ResignHeight = mn.ResignHeight
	row.State = mn.State
	return true, nil
}

// Transaction in which the owner funds itself, preferring masternode creations;
// empty if there is none yet
func (s *Synchronizer) findCreationTransaction(owner string) (string, error) {
	number, ok, err := database.FetchAddressNumber(s.db, owner)
	if err != nil {
		return "", err
	}
	if !ok {
		logger.Debug("Owner address %s not indexed yet", owner)
		return "", nil
	}
	txs, err := database.FetchSelfFundedTransactions(s.db, number)
	if err != nil || len(txs) == 0 {
		return "", err
	}
	for _, tx := range txs {
		if tx.CustomTypeCode == custom.KindCreateMasternode.Code() {
			return tx.TxID, nil
		}
	}
	return txs[0].TxID, nil
}

package database

import (
	"gorm.io/gorm"
)

// Staking addresses (liquidity addresses) accepting customer deposits
func FetchDepositStakingAddresses(db *gorm.DB) ([]StakingAddress, error) {
	var addresses []StakingAddress
	err := db.Where("reward_address_number IS NULL").
		Order("token_number, liquidity_address_number").
		Find(&addresses).Error
	return addresses, err
}

func FetchStakingAddresses(db *gorm.DB) ([]StakingAddress, error) {
	var addresses []StakingAddress
	err := db.Order("token_number, liquidity_address_number").Find(&addresses).Error
	return addresses, err
}

func FetchRewardAddressNumbers(db *gorm.DB) ([]uint32, error) {
	var numbers []uint32
	err := db.Model(&StakingAddress{}).
		Where("reward_address_number IS NOT NULL").
		Pluck("reward_address_number", &numbers).Error
	return numbers, err
}

func CreateStakingAddress(db *gorm.DB, s *StakingAddress) error {
	return db.Create(s).Error
}

// Deposits
/////////////////////////////////////////////////////////////////////////////////////////

func FetchDeposits(db *gorm.DB) ([]Deposit, error) {
	var deposits []Deposit
	err := db.Order("token_number, liquidity_address_number, deposit_address_number").
		Find(&deposits).Error
	return deposits, err
}

func FetchDepositsOfLiquidityAddress(db *gorm.DB, token uint32, liquidity uint32) ([]Deposit, error) {
	var deposits []Deposit
	err := db.Where("token_number = ? AND liquidity_address_number = ?", token, liquidity).
		Order("deposit_address_number").
		Find(&deposits).Error
	return deposits, err
}

func FetchDeposit(db *gorm.DB, token uint32, liquidity uint32, deposit uint32) (*Deposit, error) {
	var deposits []Deposit
	err := db.Where("token_number = ? AND liquidity_address_number = ? AND deposit_address_number = ?",
		token, liquidity, deposit).
		Limit(1).Find(&deposits).Error
	if err != nil || len(deposits) == 0 {
		return nil, err
	}
	return &deposits[0], nil
}

func CreateDeposits(db *gorm.DB, deposits []*Deposit) error {
	if len(deposits) == 0 {
		return nil
	}
	return db.Create(deposits).Error
}

// Staking
/////////////////////////////////////////////////////////////////////////////////////////

// Outputs paid to the liquidity address by transactions spending outputs of the
// deposit address (stake-in). An output is returned once per spending input of
// the deposit address in its transaction.
func FetchStakeInOutputs(db *gorm.DB, liquidity uint32, deposit uint32, fromBlock uint32) ([]AddressTransactionOut, error) {
	var outs []AddressTransactionOut
	err := db.Table("address_transaction_outs AS o").
		Joins("JOIN address_transaction_ins AS i ON i.block_number = o.block_number AND i.transaction_number = o.transaction_number").
		Where("o.address_number = ? AND i.address_number = ? AND o.block_number >= ?", liquidity, deposit, fromBlock).
		Select("o.*").
		Order("o.block_number, o.transaction_number, o.vout_index").
		Scan(&outs).Error
	return outs, err
}

// Outputs paid to the customer address by transactions spending outputs the
// liquidity address received in transactions funded by the deposit address
// (withdrawal). Outputs may repeat once per matching input pair.
func FetchWithdrawalOutputs(db *gorm.DB, liquidity uint32, deposit uint32, customer uint32, fromBlock uint32) ([]AddressTransactionOut, error) {
	var outs []AddressTransactionOut
	err := db.Table("address_transaction_outs AS o").
		Joins("JOIN address_transaction_ins AS w ON w.block_number = o.block_number AND w.transaction_number = o.transaction_number").
		Joins("JOIN address_transaction_ins AS d ON d.block_number = w.in_block_number AND d.transaction_number = w.in_transaction_number").
		Where("o.address_number = ? AND w.address_number = ? AND d.address_number = ? AND o.block_number >= ?",
			customer, liquidity, deposit, fromBlock).
		Select("o.*").
		Order("o.block_number, o.transaction_number, o.vout_index").
		Scan(&outs).Error
	return outs, err
}

// Custom transfers of the token to the liquidity address in which the deposit
// address is a source (account stake-in)
func FetchCustomStakeInOutputs(db *gorm.DB, token uint32, liquidity uint32, deposit uint32, fromBlock uint32) ([]CustomAccountToAccountOut, error) {
	return fetchCustomTransfers(db, token, deposit, liquidity, fromBlock)
}

// Custom transfers of the token to the customer in which the liquidity address
// is a source (account withdrawal)
func FetchCustomWithdrawalOutputs(db *gorm.DB, token uint32, liquidity uint32, customer uint32, fromBlock uint32) ([]CustomAccountToAccountOut, error) {
	return fetchCustomTransfers(db, token, liquidity, customer, fromBlock)
}

func fetchCustomTransfers(db *gorm.DB, token uint32, from uint32, to uint32, fromBlock uint32) ([]CustomAccountToAccountOut, error) {
	var outs []CustomAccountToAccountOut
	err := db.Table("custom_account_to_account_outs AS o").
		Joins("JOIN custom_account_to_account_ins AS i ON i.block_number = o.block_number AND i.transaction_number = o.transaction_number AND i.token_number = o.token_number").
		Where("o.token_number = ? AND o.address_number = ? AND i.address_number = ? AND o.block_number >= ?", token, to, from, fromBlock).
		Select("o.*").
		Order("o.block_number, o.transaction_number").
		Scan(&outs).Error
	return outs, err
}

func FetchStaking(db *gorm.DB, d *Deposit) (*Staking, error) {
	var stakings []Staking
	err := db.Where("token_number = ? AND liquidity_address_number = ? AND deposit_address_number = ? AND customer_address_number = ?",
		d.TokenNumber, d.LiquidityAddressNumber, d.DepositAddressNumber, d.CustomerAddressNumber).
		Limit(1).Find(&stakings).Error
	if err != nil || len(stakings) == 0 {
		return nil, err
	}
	return &stakings[0], nil
}

func CreateStaking(db *gorm.DB, s *Staking) error {
	return db.Create(s).Error
}

func UpdateStaking(db *gorm.DB, s *Staking) error {
	return db.Model(&Staking{}).
		Where("token_number = ? AND liquidity_address_number = ? AND deposit_address_number = ? AND customer_address_number = ?",
			s.TokenNumber, s.LiquidityAddressNumber, s.DepositAddressNumber, s.CustomerAddressNumber).
		Updates(map[string]interface{}{
			"last_in_block_number":  s.LastInBlockNumber,
			"vin":                   s.Vin,
			"last_out_block_number": s.LastOutBlockNumber,
			"vout":                  s.Vout,
		}).Error
}

// Masternodes
/////////////////////////////////////////////////////////////////////////////////////////

func FetchMasternodeWhitelist(db *gorm.DB) ([]MasternodeWhitelist, error) {
	var rows []MasternodeWhitelist
	err := db.Order("wallet_id, owner_address").Find(&rows).Error
	return rows, err
}

func CreateMasternodeWhitelist(db *gorm.DB, row *MasternodeWhitelist) error {
	return db.Create(row).Error
}

func UpdateMasternodeWhitelist(db *gorm.DB, row *MasternodeWhitelist) error {
	return db.Model(&MasternodeWhitelist{}).
		Where("wallet_id = ? AND owner_address = ?", row.WalletID, row.OwnerAddress).
		Updates(map[string]interface{}{
			"transaction_id":   row.TransactionID,
			"operator_address": row.OperatorAddress,
			"reward_address":   row.RewardAddress,
			"creation_height":  row.CreationHeight,
			"resign_height":    row.ResignHeight,
			"state":            row.State,
		}).Error
}

// Transactions in which the address both spends and receives an output, latest first
func FetchSelfFundedTransactions(db *gorm.DB, address uint32) ([]Transaction, error) {
	var txs []Transaction
	err := db.Table("transactions AS t").
		Joins("JOIN address_transaction_ins AS i ON i.block_number = t.block_number AND i.transaction_number = t.number").
		Joins("JOIN address_transaction_outs AS o ON o.block_number = t.block_number AND o.transaction_number = t.number").
		Where("i.address_number = ? AND o.address_number = ?", address, address).
		Distinct().
		Select("t.block_number, t.number, t.tx_id, t.custom_type_code").
		Order("t.block_number DESC, t.number DESC").
		Scan(&txs).Error
	return txs, err
}

// Staking rows of a liquidity address ordered by deposit address, paginated
func FetchStakingsOfLiquidityAddress(db *gorm.DB, token uint32, liquidity uint32, offset int, limit int) ([]Staking, error) {
	var stakings []Staking
	err := db.Where("token_number = ? AND liquidity_address_number = ?", token, liquidity).
		Order("deposit_address_number, customer_address_number").
		Offset(offset).Limit(limit).
		Find(&stakings).Error
	return stakings, err
}

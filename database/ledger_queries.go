package database

import (
	"gorm.io/gorm"
)

// Output together with the id of its transaction
type TxOutputData struct {
	AddressTransactionOut
	TxID string
}

// Fetch all outputs of the transactions with the given ids
func FetchOutputsByTxIDs(db *gorm.DB, txIDs []string) ([]TxOutputData, error) {
	var outs []TxOutputData
	if len(txIDs) == 0 {
		return outs, nil
	}
	err := db.Table("address_transaction_outs AS o").
		Joins("JOIN transactions AS t ON t.block_number = o.block_number AND t.number = o.transaction_number").
		Where("t.tx_id IN ?", txIDs).
		Select("o.*, t.tx_id AS tx_id").
		Order("o.block_number, o.transaction_number, o.vout_index").
		Scan(&outs).Error
	return outs, err
}

func FetchTransaction(db *gorm.DB, key TxKey) (*Transaction, error) {
	var txs []Transaction
	err := db.Where("block_number = ? AND number = ?", key.BlockNumber, key.TransactionNumber).
		Limit(1).Find(&txs).Error
	if err != nil || len(txs) == 0 {
		return nil, err
	}
	return &txs[0], nil
}

// Outputs paid to the address in blocks >= fromBlock
func FetchOutputsOfAddress(db *gorm.DB, address uint32, fromBlock uint32) ([]AddressTransactionOut, error) {
	var outs []AddressTransactionOut
	err := db.Where("address_number = ? AND block_number >= ?", address, fromBlock).
		Order("block_number, transaction_number, vout_index").
		Find(&outs).Error
	return outs, err
}

// Inputs spending outputs of the address in blocks >= fromBlock
func FetchInputsOfAddress(db *gorm.DB, address uint32, fromBlock uint32) ([]AddressTransactionIn, error) {
	var ins []AddressTransactionIn
	err := db.Where("address_number = ? AND block_number >= ?", address, fromBlock).
		Order("block_number, transaction_number, vin_index").
		Find(&ins).Error
	return ins, err
}

func FetchInputsOfTransaction(db *gorm.DB, key TxKey) ([]AddressTransactionIn, error) {
	var ins []AddressTransactionIn
	err := db.Where("block_number = ? AND transaction_number = ?", key.BlockNumber, key.TransactionNumber).
		Order("vin_index").
		Find(&ins).Error
	return ins, err
}

// Earliest input spending an output of the address, nil if the address never spent anything
func FetchFirstInputOfAddress(db *gorm.DB, address uint32) (*AddressTransactionIn, error) {
	var ins []AddressTransactionIn
	err := db.Where("address_number = ?", address).
		Order("block_number, transaction_number, vin_index").
		Limit(1).Find(&ins).Error
	if err != nil || len(ins) == 0 {
		return nil, err
	}
	return &ins[0], nil
}

func FetchCustomInputsOfAddress(db *gorm.DB, address uint32, token uint32, fromBlock uint32) ([]CustomAccountToAccountIn, error) {
	var ins []CustomAccountToAccountIn
	err := db.Where("address_number = ? AND token_number = ? AND block_number >= ?", address, token, fromBlock).
		Order("block_number, transaction_number").
		Find(&ins).Error
	return ins, err
}

func FetchCustomOutputsOfAddress(db *gorm.DB, address uint32, token uint32, fromBlock uint32) ([]CustomAccountToAccountOut, error) {
	var outs []CustomAccountToAccountOut
	err := db.Where("address_number = ? AND token_number = ? AND block_number >= ?", address, token, fromBlock).
		Order("block_number, transaction_number").
		Find(&outs).Error
	return outs, err
}

func FetchCustomInputsOfTransaction(db *gorm.DB, key TxKey, token uint32) ([]CustomAccountToAccountIn, error) {
	var ins []CustomAccountToAccountIn
	err := db.Where("block_number = ? AND transaction_number = ? AND token_number = ?", key.BlockNumber, key.TransactionNumber, token).
		Order("address_number").
		Find(&ins).Error
	return ins, err
}

// Earliest custom transfer of the token sent by the address, nil if there is none
func FetchFirstCustomInputOfAddress(db *gorm.DB, address uint32, token uint32) (*CustomAccountToAccountIn, error) {
	var ins []CustomAccountToAccountIn
	err := db.Where("address_number = ? AND token_number = ?", address, token).
		Order("block_number, transaction_number").
		Limit(1).Find(&ins).Error
	if err != nil || len(ins) == 0 {
		return nil, err
	}
	return &ins[0], nil
}

// Balances
/////////////////////////////////////////////////////////////////////////////////////////

func FetchBalance(db *gorm.DB, token uint32, address uint32) (*Balance, error) {
	var balances []Balance
	err := db.Where("token_number = ? AND address_number = ?", token, address).
		Limit(1).Find(&balances).Error
	if err != nil || len(balances) == 0 {
		return nil, err
	}
	return &balances[0], nil
}

func CreateBalance(db *gorm.DB, b *Balance) error {
	return db.Create(b).Error
}

func UpdateBalance(db *gorm.DB, b *Balance) error {
	return db.Model(&Balance{}).
		Where("token_number = ? AND address_number = ?", b.TokenNumber, b.AddressNumber).
		Updates(map[string]interface{}{
			"block_number":      b.BlockNumber,
			"transaction_count": b.TransactionCount,
			"vout":              b.Vout,
			"vin":               b.Vin,
		}).Error
}

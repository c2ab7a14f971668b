package database

import (
	"github.com/LOCKbusiness/transaction-checker-sub000/config"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func ConnectTestDB(cfg *config.DBConfig) (*gorm.DB, error) {
	gormConfig := gorm.Config{
		Logger: logger.Default.LogMode(gormLogLevel(cfg)),
	}
	db, err := gorm.Open(sqlite.Open(":memory:"), &gormConfig)
	if err != nil {
		return nil, err
	}
	// Every new connection to ":memory:" is a new empty database
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(1)
	return db, nil
}

func ConnectAndInitializeTestDB(cfg *config.DBConfig) (*gorm.DB, error) {
	db, err := ConnectTestDB(cfg)
	if err != nil {
		return nil, err
	}

	// Initialize - auto migrate
	err = db.AutoMigrate(entities...)
	if err != nil {
		return nil, err
	}
	return db, nil
}

// Queries for testing
/////////////////////////////////////////////////////////////////////////////////////////

func FetchAllBlocks(db *gorm.DB) ([]Block, error) {
	var blocks []Block
	err := db.Order("number").Find(&blocks).Error
	return blocks, err
}

func FetchAllTransactions(db *gorm.DB) ([]Transaction, error) {
	var txs []Transaction
	err := db.Order("block_number, number").Find(&txs).Error
	return txs, err
}

func FetchAllOutputs(db *gorm.DB) ([]AddressTransactionOut, error) {
	var outs []AddressTransactionOut
	err := db.Order("block_number, transaction_number, vout_index").Find(&outs).Error
	return outs, err
}

func FetchAllInputs(db *gorm.DB) ([]AddressTransactionIn, error) {
	var ins []AddressTransactionIn
	err := db.Order("block_number, transaction_number, vin_index").Find(&ins).Error
	return ins, err
}

func FetchAllCustomInputs(db *gorm.DB) ([]CustomAccountToAccountIn, error) {
	var ins []CustomAccountToAccountIn
	err := db.Order("block_number, transaction_number, address_number, token_number").Find(&ins).Error
	return ins, err
}

func FetchAllCustomOutputs(db *gorm.DB) ([]CustomAccountToAccountOut, error) {
	var outs []CustomAccountToAccountOut
	err := db.Order("block_number, transaction_number, address_number, token_number").Find(&outs).Error
	return outs, err
}

func FetchAllAddresses(db *gorm.DB) ([]Address, error) {
	var addresses []Address
	err := db.Order("number").Find(&addresses).Error
	return addresses, err
}

package database

import (
	"database/sql"
	"time"

	"gorm.io/gorm"
)

func FetchState(db *gorm.DB, name string) (State, error) {
	var currentState State
	err := db.Where(&State{Name: name}).First(&currentState).Error
	return currentState, err
}

// Fetch state with the given name, a new state (not yet persisted) is returned
// if it does not exist
func FetchOrInitState(db *gorm.DB, name string) (State, error) {
	var states []State
	err := db.Where(&State{Name: name}).Limit(1).Find(&states).Error
	if err != nil {
		return State{}, err
	}
	if len(states) == 0 {
		return State{Name: name, Updated: time.Now()}, nil
	}
	return states[0], nil
}

func FetchMigrations(db *gorm.DB) ([]Migration, error) {
	var migrations []Migration
	err := db.Order("version asc").Find(&migrations).Error
	return migrations, err
}

func CreateMigration(db *gorm.DB, m *Migration) error {
	return db.Create(m).Error
}

func UpdateMigration(db *gorm.DB, m *Migration) error {
	return db.Save(m).Error
}

func CreateState(db *gorm.DB, s *State) error {
	return db.Create(s).Error
}

// Create the state if it was not persisted yet, update it otherwise
func UpdateState(db *gorm.DB, s *State) error {
	return db.Save(s).Error
}

// Address and token dictionaries
/////////////////////////////////////////////////////////////////////////////////////////

func FetchMaxAddressNumber(db *gorm.DB) (uint32, bool, error) {
	return fetchMaxNumber(db, &Address{})
}

func FetchAddressNumber(db *gorm.DB, address string) (uint32, bool, error) {
	var addresses []Address
	err := db.Where("address = ?", address).Limit(1).Find(&addresses).Error
	if err != nil || len(addresses) == 0 {
		return 0, false, err
	}
	return addresses[0].Number, true, nil
}

func FetchAddressesByNumbers(db *gorm.DB, numbers []uint32) ([]Address, error) {
	var addresses []Address
	err := db.Where("number IN ?", numbers).Order("number").Find(&addresses).Error
	return addresses, err
}

func CreateAddresses(db *gorm.DB, addresses []*Address) error {
	if len(addresses) == 0 { // attempt to create from an empty slice returns error
		return nil
	}
	return db.Create(addresses).Error
}

func FetchMaxTokenNumber(db *gorm.DB) (uint32, bool, error) {
	return fetchMaxNumber(db, &Token{})
}

func FetchTokenNumber(db *gorm.DB, symbol string) (uint32, bool, error) {
	var tokens []Token
	err := db.Where("symbol = ?", symbol).Limit(1).Find(&tokens).Error
	if err != nil || len(tokens) == 0 {
		return 0, false, err
	}
	return tokens[0].Number, true, nil
}

func FetchTokenSymbol(db *gorm.DB, number uint32) (string, bool, error) {
	var tokens []Token
	err := db.Where("number = ?", number).Limit(1).Find(&tokens).Error
	if err != nil || len(tokens) == 0 {
		return "", false, err
	}
	return tokens[0].Symbol, true, nil
}

func CreateTokens(db *gorm.DB, tokens []*Token) error {
	if len(tokens) == 0 {
		return nil
	}
	return db.Create(tokens).Error
}

func fetchMaxNumber(db *gorm.DB, model interface{}) (uint32, bool, error) {
	var maxNumber sql.NullInt64
	err := db.Model(model).Select("MAX(number)").Row().Scan(&maxNumber)
	if err != nil || !maxNumber.Valid {
		return 0, false, err
	}
	return uint32(maxNumber.Int64), true, nil
}

// Blocks
/////////////////////////////////////////////////////////////////////////////////////////

// Highest persisted block number; false if no block is persisted yet
func FetchMaxBlockNumber(db *gorm.DB) (uint32, bool, error) {
	return fetchMaxNumber(db, &Block{})
}

type BlockEntities struct {
	Block         *Block
	Transactions  []*Transaction
	Outputs       []*AddressTransactionOut
	Inputs        []*AddressTransactionIn
	CustomInputs  []*CustomAccountToAccountIn
	CustomOutputs []*CustomAccountToAccountOut
}

func CreateBlockEntities(db *gorm.DB, e *BlockEntities) error {
	err := db.Create(e.Block).Error
	if err != nil {
		return err
	}
	if len(e.Transactions) > 0 { // attempt to create from an empty slice returns error
		err = db.Create(e.Transactions).Error
		if err != nil {
			return err
		}
	}
	if len(e.Outputs) > 0 {
		err = db.Create(e.Outputs).Error
		if err != nil {
			return err
		}
	}
	if len(e.Inputs) > 0 {
		err = db.Create(e.Inputs).Error
		if err != nil {
			return err
		}
	}
	if len(e.CustomInputs) > 0 {
		err = db.Create(e.CustomInputs).Error
		if err != nil {
			return err
		}
	}
	if len(e.CustomOutputs) > 0 {
		return db.Create(e.CustomOutputs).Error
	}
	return nil
}

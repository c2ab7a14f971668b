package database

import (
	"fmt"

	"github.com/LOCKbusiness/transaction-checker-sub000/config"

	"github.com/go-sql-driver/mysql"
	"github.com/pkg/errors"
	gormMysql "gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var (
	// List entities to auto-migrate
	entities []interface{} = []interface{}{
		Migration{},
		State{},
		Address{},
		Token{},
		Block{},
		Transaction{},
		AddressTransactionOut{},
		AddressTransactionIn{},
		CustomAccountToAccountIn{},
		CustomAccountToAccountOut{},
		Balance{},
		StakingAddress{},
		Deposit{},
		Staking{},
		MasternodeWhitelist{},
	}
)

func Connect(cfg *config.DBConfig) (*gorm.DB, error) {
	dbConfig := mysql.Config{
		User:                 cfg.Username,
		Passwd:               cfg.Password,
		Net:                  "tcp",
		Addr:                 fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		DBName:               cfg.Database,
		AllowNativePasswords: true,
		ParseTime:            true,
	}
	gormConfig := gorm.Config{
		Logger: logger.Default.LogMode(gormLogLevel(cfg)),
	}
	return gorm.Open(gormMysql.Open(dbConfig.FormatDSN()), &gormConfig)
}

func ConnectAndInitialize(cfg *config.DBConfig) (*gorm.DB, error) {
	db, err := Connect(cfg)
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

// Run operations in one database transaction. Any error (or panic) of an
// operation rolls back everything done so far.
func DoInTransaction(db *gorm.DB, operations ...func(db *gorm.DB) error) (err error) {
	tx := db.Begin()
	if tx.Error != nil {
		return tx.Error
	}
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
			err = errors.Errorf("transaction rolled back after panic: %v", r)
		}
	}()

	for _, f := range operations {
		if err := f(tx); err != nil {
			tx.Rollback()
			return err
		}
	}
	return tx.Commit().Error
}

func gormLogLevel(cfg *config.DBConfig) logger.LogLevel {
	if cfg.LogQueries {
		return logger.Info
	}
	return logger.Silent
}

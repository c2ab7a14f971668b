package migrations

import (
	"github.com/LOCKbusiness/transaction-checker-sub000/database"

	"gorm.io/gorm"
)

func init() {
	Container.Add("2023-03-01-00-00", "Seed native token", seedNativeToken)
}

func seedNativeToken(db *gorm.DB) error {
	return database.CreateTokens(db, []*database.Token{{
		Number: database.NativeTokenNumber,
		Symbol: database.NativeTokenSymbol,
	}})
}

package database

const (
	// Number of the native token (DFI); seeded by migration
	NativeTokenNumber uint32 = 0
	NativeTokenSymbol string = "DFI"

	// Custom type code of transactions without a recognized custom operation
	NoCustomTypeCode string = "0"
)

type OutputType string

const (
	DefaultOutput  OutputType = ""
	CoinbaseOutput OutputType = "coinbase"
)

// Misc other types

type MigrationStatus string

const (
	MigrationPending   MigrationStatus = "PENDING"
	MigrationCompleted MigrationStatus = "COMPLETED"
	MigrationFailed    MigrationStatus = "FAILED"
)

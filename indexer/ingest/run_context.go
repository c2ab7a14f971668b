package ingest

import (
	"github.com/LOCKbusiness/transaction-checker-sub000/database"
	"github.com/LOCKbusiness/transaction-checker-sub000/indexer/config"
	"github.com/LOCKbusiness/transaction-checker-sub000/indexer/registry"
	"github.com/LOCKbusiness/transaction-checker-sub000/utils"

	"gorm.io/gorm"
)

// State of a single pipeline run. Created at the start of a run and dropped at
// its end, successful or not; nothing in it outlives the run.
type RunContext struct {
	Addresses *registry.AddressRegistry
	Tokens    *registry.TokenRegistry

	// Outputs of recently ingested transactions, by transaction id
	Outputs utils.Cache[string, []database.AddressTransactionOut]
}

func NewRunContext(cfg *config.IngestConfig) *RunContext {
	return &RunContext{
		Addresses: registry.NewAddressRegistry(cfg.RegistryCacheSize),
		Tokens:    registry.NewTokenRegistry(cfg.RegistryCacheSize),
		Outputs:   utils.NewCache[string, []database.AddressTransactionOut](cfg.OutputsCacheSize),
	}
}

// Persist entries buffered by the registries during the current block
func (rc *RunContext) Flush(db *gorm.DB) error {
	if err := rc.Addresses.Flush(db); err != nil {
		return err
	}
	return rc.Tokens.Flush(db)
}

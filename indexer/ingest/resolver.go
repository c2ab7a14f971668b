package ingest

import (
	"github.com/LOCKbusiness/transaction-checker-sub000/database"
	"github.com/LOCKbusiness/transaction-checker-sub000/utils"

	mapset "github.com/deckarep/golang-set/v2"
	"gorm.io/gorm"
)

// Output referenced by an input: (transaction id, output index)
type outputRef struct {
	txID string
	vout uint32
}

// Resolves outputs spent by inputs of a block. Outputs are looked up in the
// current block first, then in the cache of recently ingested transactions and
// finally in the database.
type outputResolver struct {
	blockOutputs map[outputRef]*database.AddressTransactionOut
	cache        utils.Cache[string, []database.AddressTransactionOut]
}

func newOutputResolver(cache utils.Cache[string, []database.AddressTransactionOut]) *outputResolver {
	return &outputResolver{
		blockOutputs: make(map[outputRef]*database.AddressTransactionOut),
		cache:        cache,
	}
}

func (r *outputResolver) addBlockOutput(txID string, out *database.AddressTransactionOut) {
	r.blockOutputs[outputRef{txID, out.VoutIndex}] = out
}

// Resolve all refs; the result contains only refs that were found
func (r *outputResolver) resolve(db *gorm.DB, refs []outputRef) (map[outputRef]database.AddressTransactionOut, error) {
	resolved := make(map[outputRef]database.AddressTransactionOut, len(refs))
	missing := mapset.NewSet[string]()

	for _, ref := range refs {
		if out, ok := r.blockOutputs[ref]; ok {
			resolved[ref] = *out
			continue
		}
		if outs, ok := r.cache.Get(ref.txID); ok {
			if out, ok := findOutput(outs, ref.vout); ok {
				resolved[ref] = out
				continue
			}
		}
		missing.Add(ref.txID)
	}
	if missing.Cardinality() == 0 {
		return resolved, nil
	}

	dbOutputs, err := database.FetchOutputsByTxIDs(db, missing.ToSlice())
	if err != nil {
		return nil, err
	}
	for _, out := range dbOutputs {
		ref := outputRef{out.TxID, out.VoutIndex}
		if _, ok := resolved[ref]; !ok {
			resolved[ref] = out.AddressTransactionOut
		}
	}
	return resolved, nil
}

func findOutput(outs []database.AddressTransactionOut, vout uint32) (database.AddressTransactionOut, bool) {
	for _, out := range outs {
		if out.VoutIndex == vout {
			return out, true
		}
	}
	return database.AddressTransactionOut{}, false
}

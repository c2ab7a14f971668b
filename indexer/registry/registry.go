package registry

import (
	"github.com/LOCKbusiness/transaction-checker-sub000/database"
	"github.com/LOCKbusiness/transaction-checker-sub000/indexer/shared"
	"github.com/LOCKbusiness/transaction-checker-sub000/utils"

	"github.com/pkg/errors"
	"gorm.io/gorm"
)

// Storage of a dictionary mapping keys (addresses, token symbols) to numbers
type dictionaryDB[E any] interface {
	FetchMaxNumber(db *gorm.DB) (uint32, bool, error)
	FetchNumber(db *gorm.DB, key string) (uint32, bool, error)
	Create(db *gorm.DB, entries []*E) error
	NewEntry(number uint32, key string) *E
}

// Dictionary assigning monotonically increasing numbers to keys. New entries
// are buffered until Flush is called, which happens once per block in the
// same database transaction as the block itself.
//
// A registry belongs to a single pipeline run and is not safe for concurrent use.
type Registry[E any] struct {
	name   string
	store  dictionaryDB[E]
	cache  utils.Cache[string, uint32]
	buffer map[string]uint32
	added  []*E

	next       uint32
	nextLoaded bool
}

func newRegistry[E any](name string, store dictionaryDB[E], cacheSize int) *Registry[E] {
	return &Registry[E]{
		name:   name,
		store:  store,
		cache:  utils.NewCache[string, uint32](cacheSize),
		buffer: make(map[string]uint32),
	}
}

// Number of the key, allocating a new one if the key was never seen
func (r *Registry[E]) Resolve(db *gorm.DB, key string) (uint32, error) {
	number, ok, err := r.find(db, key)
	if err != nil || ok {
		return number, err
	}

	if !r.nextLoaded {
		max, exists, err := r.store.FetchMaxNumber(db)
		if err != nil {
			return 0, errors.Wrapf(err, "%s registry: fetching max number", r.name)
		}
		if exists {
			r.next = max + 1
		}
		r.nextLoaded = true
	}
	number = r.next
	r.next++
	r.buffer[key] = number
	r.added = append(r.added, r.store.NewEntry(number, key))
	return number, nil
}

// Number of a key that must already exist; shared.ErrNotFound otherwise
func (r *Registry[E]) Lookup(db *gorm.DB, key string) (uint32, error) {
	number, ok, err := r.find(db, key)
	if err != nil {
		return 0, err
	}
	if !ok {
		return 0, shared.NotFoundError("%s %s", r.name, key)
	}
	return number, nil
}

// Persist buffered entries and clear the buffer
func (r *Registry[E]) Flush(db *gorm.DB) error {
	if err := r.store.Create(db, r.added); err != nil {
		return errors.Wrapf(err, "%s registry: flushing %d entries", r.name, len(r.added))
	}
	for key, number := range r.buffer {
		r.cache.Add(key, number)
	}
	r.buffer = make(map[string]uint32)
	r.added = nil
	return nil
}

// Number of buffered (not yet flushed) entries
func (r *Registry[E]) Pending() int {
	return len(r.added)
}

func (r *Registry[E]) find(db *gorm.DB, key string) (uint32, bool, error) {
	if number, ok := r.buffer[key]; ok {
		return number, true, nil
	}
	if number, ok := r.cache.Get(key); ok {
		return number, true, nil
	}
	number, ok, err := r.store.FetchNumber(db, key)
	if err != nil {
		return 0, false, errors.Wrapf(err, "%s registry: fetching %s", r.name, key)
	}
	if ok {
		r.cache.Add(key, number)
	}
	return number, ok, nil
}

// Addresses
/////////////////////////////////////////////////////////////////////////////////////////

type AddressRegistry = Registry[database.Address]

type addressDB struct{}

func (addressDB) FetchMaxNumber(db *gorm.DB) (uint32, bool, error) {
	return database.FetchMaxAddressNumber(db)
}

func (addressDB) FetchNumber(db *gorm.DB, key string) (uint32, bool, error) {
	return database.FetchAddressNumber(db, key)
}

func (addressDB) Create(db *gorm.DB, entries []*database.Address) error {
	return database.CreateAddresses(db, entries)
}

func (addressDB) NewEntry(number uint32, key string) *database.Address {
	return &database.Address{Number: number, Address: key}
}

func NewAddressRegistry(cacheSize int) *AddressRegistry {
	return newRegistry[database.Address]("address", addressDB{}, cacheSize)
}

// Tokens
/////////////////////////////////////////////////////////////////////////////////////////

type TokenRegistry = Registry[database.Token]

type tokenDB struct{}

func (tokenDB) FetchMaxNumber(db *gorm.DB) (uint32, bool, error) {
	return database.FetchMaxTokenNumber(db)
}

func (tokenDB) FetchNumber(db *gorm.DB, key string) (uint32, bool, error) {
	return database.FetchTokenNumber(db, key)
}

func (tokenDB) Create(db *gorm.DB, entries []*database.Token) error {
	return database.CreateTokens(db, entries)
}

func (tokenDB) NewEntry(number uint32, key string) *database.Token {
	return &database.Token{Number: number, Symbol: key}
}

func NewTokenRegistry(cacheSize int) *TokenRegistry {
	return newRegistry[database.Token]("token", tokenDB{}, cacheSize)
}

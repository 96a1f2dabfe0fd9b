package workload

import (
	"github.com/ValentinKolb/rexkv/lib/store"
)

// ValueField is the field name a read record is returned under
const ValueField = "value"

// rexDB maps the benchmark operations onto a key-value store.
// Records are reduced to a single value, Update is the same as Insert.
type rexDB struct {
	store store.IStore
}

// NewStoreDB creates a binding for a store.IStore (e.g. the RPC store)
func NewStoreDB(s store.IStore) DB {
	return &rexDB{store: s}
}

// --------------------------------------------------------------------------
// Interface Methods (docu see workload.DB)
// --------------------------------------------------------------------------

func (db *rexDB) Read(key string) (Record, Status) {
	value, found, err := db.store.Get(key)
	if err != nil {
		Logger.Warningf("Error reading key %s: %v", key, err)
		return nil, StatusError
	}
	if !found {
		return nil, StatusNotFound
	}
	return Record{ValueField: value}, StatusOK
}

func (db *rexDB) Insert(key string, values Record) Status {
	if err := db.store.Set(key, firstValue(values)); err != nil {
		Logger.Warningf("Error inserting key %s: %v", key, err)
		return StatusError
	}
	return StatusOK
}

func (db *rexDB) Update(key string, values Record) Status {
	return db.Insert(key, values)
}

func (db *rexDB) Scan(string, int) ([]Record, Status) {
	return nil, StatusNotImplemented
}

func (db *rexDB) Delete(string) Status {
	return StatusNotImplemented
}

func (db *rexDB) Cleanup() error {
	return nil
}

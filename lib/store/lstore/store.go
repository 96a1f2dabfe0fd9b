package lstore

import (
	"github.com/ValentinKolb/rexkv/lib/store"
	"github.com/puzpuzpuz/xsync/v3"
	"slices"
)

type storeImpl struct {
	data *xsync.MapOf[string, []byte]
}

// NewLocalStore creates a new local store instance.
// This store implementation is not distributed and only works on a single node.
func NewLocalStore() store.IStore {
	return &storeImpl{
		data: xsync.NewMapOf[string, []byte](),
	}
}

// --------------------------------------------------------------------------
// Interface Methods (docu see store/interface.go)
// --------------------------------------------------------------------------

func (s *storeImpl) Set(key string, value []byte) error {
	if key == "" {
		return store.NewError(store.RetCInvalidOperation, "key must not be empty")
	}
	// the caller may reuse its buffer
	s.data.Store(key, slices.Clone(value))
	return nil
}

func (s *storeImpl) Get(key string) ([]byte, bool, error) {
	if key == "" {
		return nil, false, store.NewError(store.RetCInvalidOperation, "key must not be empty")
	}
	value, ok := s.data.Load(key)
	if !ok {
		return nil, false, nil
	}
	return slices.Clone(value), true, nil
}

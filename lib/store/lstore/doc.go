// Package lstore implements a local, in-memory, single-node key-value store based on the
// store.IStore interface. Data is stored in a concurrent map and is not persisted
// between process restarts.
//
// Values are copied on Set and Get, so callers may reuse their buffers.
//
// Usage Example:
//
//	s := lstore.NewLocalStore()
//	err := s.Set("user:1", []byte("alice"))
//	value, exists, err := s.Get("user:1")
//
// The local store backs the in-process mock node (see the rpc/server package).
package lstore

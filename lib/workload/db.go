package workload

import (
	"github.com/lni/dragonboat/v4/logger"
	"slices"
)

var Logger = logger.GetLogger("workload")

// --------------------------------------------------------------------------
// Interface Definition
// --------------------------------------------------------------------------

// Record is a set of named fields stored under one key
type Record map[string][]byte

// DB is the binding of the logical benchmark operations onto a store.
// Every method reports the outcome as a Status, failures are logged by the binding.
type DB interface {
	// Read reads the record of a key
	Read(key string) (Record, Status)
	// Insert stores a new record
	Insert(key string, values Record) Status
	// Update replaces fields of an existing record
	Update(key string, values Record) Status
	// Scan reads count records starting at startKey in key order
	Scan(startKey string, count int) ([]Record, Status)
	// Delete removes a record
	Delete(key string) Status
	// Cleanup releases all resources held by the binding
	Cleanup() error
}

// --------------------------------------------------------------------------
// Status
// --------------------------------------------------------------------------

// Status is the outcome of a single operation
type Status uint8

const (
	StatusOK Status = iota
	StatusNotFound
	StatusError
	StatusNotImplemented
)

func (s Status) String() string {
	switch s {
	case StatusOK:
		return "OK"
	case StatusNotFound:
		return "NOT_FOUND"
	case StatusError:
		return "ERROR"
	case StatusNotImplemented:
		return "NOT_IMPLEMENTED"
	default:
		return "UNKNOWN"
	}
}

// IsOK reports whether the operation succeeded
func (s Status) IsOK() bool {
	return s == StatusOK
}

// --------------------------------------------------------------------------
// Helper
// --------------------------------------------------------------------------

// firstValue returns the value of the field with the smallest name.
// Stores without multi-field records keep only this value.
func firstValue(values Record) []byte {
	if len(values) == 0 {
		return []byte{}
	}
	names := make([]string, 0, len(values))
	for name := range values {
		names = append(names, name)
	}
	slices.Sort(names)
	return values[names[0]]
}

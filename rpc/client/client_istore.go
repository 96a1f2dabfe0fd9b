package client

import (
	"fmt"
	"github.com/ValentinKolb/rexkv/lib/store"
	"github.com/ValentinKolb/rexkv/rpc/cluster"
	"github.com/ValentinKolb/rexkv/rpc/common"
	"github.com/ValentinKolb/rexkv/rpc/serializer"
	"github.com/ValentinKolb/rexkv/rpc/transport"
	"unicode/utf8"
)

// IRPCStore is a store.IStore backed by a cluster of nodes
type IRPCStore interface {
	store.IStore
	// Members returns the addresses of all known nodes
	Members() []string
}

// NewRPCStore creates a new RPC store
// The function takes a config, a registry, a transport and a serializer as parameters.
// If the registry is empty it is seeded with the configured seed address and
// discovery is run once against it. A nil registry creates a new one.
// It returns an IRPCStore and an error
func NewRPCStore(
	config common.ClientConfig,
	registry *cluster.Registry,
	transport transport.IRPCClientTransport,
	serializer serializer.IRPCSerializer,
) (IRPCStore, error) {

	if err := config.Validate(); err != nil {
		return nil, err
	}

	if registry == nil {
		registry = cluster.NewRegistry(config.SeedAddress)
	}

	// Learn the cluster members
	cluster.Bootstrap(config.SeedAddress, registry, transport, serializer)

	// Return the RPC store
	return &rpcStore{
		registry:   registry,
		dispatcher: NewDispatcher(registry, transport, serializer),
	}, nil
}

type rpcStore struct {
	registry   *cluster.Registry
	dispatcher *Dispatcher
}

// --------------------------------------------------------------------------
// Interface Methods (docu see the store package in interface.go)
// --------------------------------------------------------------------------

// Set stores the value under the key. Keys and values travel as JSON strings,
// so both must be valid UTF-8, otherwise an error wrapping common.ErrProtocol
// is returned and nothing is sent.
func (s *rpcStore) Set(key string, value []byte) (err error) {
	if err := checkUTF8("key", []byte(key)); err != nil {
		return err
	}
	if err := checkUTF8("value", value); err != nil {
		return err
	}
	req := common.NewSetRequest(key, string(value))
	_, err = s.dispatcher.Execute(req)
	return err
}

// Get reports a value as found only if the node says so and sent a value
func (s *rpcStore) Get(key string) (value []byte, loaded bool, err error) {
	if err := checkUTF8("key", []byte(key)); err != nil {
		return nil, false, err
	}
	req := common.NewGetRequest(key)
	resp, err := s.dispatcher.Execute(req)
	if err != nil {
		return nil, false, err
	}
	if !resp.Found || resp.Value == nil {
		return nil, false, nil
	}
	return []byte(*resp.Value), true, nil
}

func (s *rpcStore) Members() []string {
	return s.registry.Members()
}

// --------------------------------------------------------------------------
// Helper
// --------------------------------------------------------------------------

// checkUTF8 rejects data that cannot be encoded as a JSON string without loss
func checkUTF8(what string, data []byte) error {
	if !utf8.Valid(data) {
		return fmt.Errorf("%w: %s is not valid UTF-8", common.ErrProtocol, what)
	}
	return nil
}

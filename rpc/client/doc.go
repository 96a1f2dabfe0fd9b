// Package client implements the store client on top of the transport, serializer
// and cluster packages.
//
// Key Components:
//
//   - Dispatcher: Sends a command to a node picked uniformly at random from the
//     registry and checks that the answer belongs to the command. Requests are
//     neither retried nor failed over, errors are returned to the caller.
//
//   - NewRPCStore: Factory function that seeds the registry, runs discovery
//     once and returns a client implementing the store.IStore interface.
//
// Usage Example:
//
//	config := common.DefaultClientConfig()
//	config.SeedAddress = "127.0.0.1:8000"
//
//	transport := tcp.NewTCPClientTransport(config)
//	defer transport.Close()
//
//	s, err := client.NewRPCStore(config, nil, transport, serializer.NewJSONSerializer())
//	if err != nil {
//	  return err
//	}
//
//	_ = s.Set("mykey", []byte("myvalue"))
//	value, found, err := s.Get("mykey")
//
// Errors:
//
// Every error wraps one of the sentinels of the common package, use errors.Is
// to tell transport failures (ErrConnect, ErrFraming, ErrTransport) apart
// from invalid answers (ErrProtocol) and errors reported by the node
// (ErrApplication). A missing key is not an error.
//
// Thread Safety:
//
//	The store and the dispatcher are safe for concurrent use. Concurrent
//	requests use separate connections from the pool of the transport.
package client

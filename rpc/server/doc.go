// Package server implements an in-process node speaking the store protocol.
// It is used to run integration tests against the client and to serve a
// local development cluster (see the serve command).
//
// Key Components:
//
//   - IRPCServerAdapter: Interface defining the contract for all server adapters,
//     with the Handle method that processes a decoded command against a store.IStore.
//
//   - NewIStoreServerAdapter: Adapter answering Get and Set from the store.
//     Set is acknowledged with {"Ok":"Set"}, a missing key with found=false.
//
//   - NewGossipServerAdapter: Adapter answering Gossip(Ping) with a Pong that
//     carries the advertised address of the node and its configured members.
//
//   - NewRexNode: Factory function creating a node with the specified
//     transport and serializer mechanisms.
//
// Usage Example:
//
//	config := common.NodeConfig{
//	  Endpoint:      "0.0.0.0:8000",
//	  Advertise:     "10.0.0.1:8000",
//	  Members:       []string{"10.0.0.2:8000", "10.0.0.3:8000"},
//	  TimeoutSecond: 30,
//	}
//
//	n := server.NewRexNode(config, tcp.NewTCPServerTransport(), serializer.NewJSONSerializer())
//	if err := n.Serve(); err != nil {
//	  log.Fatalf("Node error: %v", err)
//	}
//
// Invalid requests are answered with {"error": reason}, the connection stays open.
// Nodes created with NewRexNodeWithStore and the same store share their data.
package server

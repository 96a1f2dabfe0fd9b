/*
Package cluster tracks the nodes of a store cluster.

A Registry is a grow-only set of node addresses (host:port). It is seeded
with a single address and grows when nodes are learned via discovery.
Nodes are never removed, a node that becomes unreachable can still be picked.

	registry := cluster.NewRegistry("127.0.0.1:8000")
	cluster.Bootstrap("127.0.0.1:8000", registry, transport, serializer)
	node := registry.PickRandom()

Discovery sends a single Gossip(Ping) to the seed node and merges the
sender and the members of the Pong into the registry. It runs once per
registry and never fails: errors are logged and the registry keeps the
seed address only.
*/
package cluster

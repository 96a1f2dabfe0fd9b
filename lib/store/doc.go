// Package store defines the key-value interface shared by the store client
// and the in-memory node backend.
//
// Key Components:
//
//   - IStore Interface: Get and Set on string keys and byte values. A missing
//     key is reported through the loaded flag of Get and is never an error.
//
//   - Error System: A structured error with a typed return code, used by
//     implementations to report rejected operations (e.g. an empty key).
//
// Implementations:
//
//	- Local Store (lstore): in-memory, single process. Backs the mock node.
//	  Available in the "github.com/ValentinKolb/rexkv/lib/store/lstore" package.
//
//	- RPC Store: forwards every operation to a randomly chosen cluster node.
//	  Available in the "github.com/ValentinKolb/rexkv/rpc/client" package.
package store

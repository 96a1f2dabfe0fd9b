package server

import (
	"github.com/ValentinKolb/rexkv/lib/store"
	"github.com/ValentinKolb/rexkv/rpc/common"
)

// IRPCServerAdapter is the interface for all RPC server adapters
// It is responsible for handling requests and responses
type IRPCServerAdapter interface {
	// Handle handles a request and returns a response
	// It takes a Command and a store as parameters.
	// It returns a Response
	// If an error occurs, it should be set in the response
	Handle(req *common.Command, store store.IStore) (resp *common.Response)
}

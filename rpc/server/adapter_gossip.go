package server

import (
	"fmt"
	"github.com/ValentinKolb/rexkv/lib/store"
	"github.com/ValentinKolb/rexkv/rpc/common"
	"slices"
)

// NewGossipServerAdapter creates an adapter answering Ping with a Pong.
// The sender is resolved on every request, the address may only be known
// once the node is listening.
func NewGossipServerAdapter(sender func() string, members []string) IRPCServerAdapter {
	return &gossipServerAdapterImpl{
		sender:  sender,
		members: slices.Clone(members),
	}
}

type gossipServerAdapterImpl struct {
	sender  func() string
	members []string
}

// Handle ignores the store, membership is static configuration
func (adapter *gossipServerAdapterImpl) Handle(req *common.Command, _ store.IStore) *common.Response {
	if req.CmdType != common.CmdTGossip || req.Gossip == nil {
		return common.NewErrorResponse(
			fmt.Sprintf("GossipAdapter - Unsupported command type: %s", req.CmdType),
		)
	}
	if req.Gossip.GossipType != common.GossipTPing {
		return common.NewErrorResponse(
			fmt.Sprintf("GossipAdapter - Unsupported gossip message: %s", req.Gossip.GossipType),
		)
	}
	return common.NewPongResponse(adapter.sender(), slices.Clone(adapter.members))
}

package server

import (
	"fmt"
	"github.com/ValentinKolb/rexkv/lib/store"
	"github.com/ValentinKolb/rexkv/rpc/common"
)

func NewIStoreServerAdapter() IRPCServerAdapter {
	return &iStoreServerAdapterImpl{}
}

type iStoreServerAdapterImpl struct{}

func (adapter *iStoreServerAdapterImpl) Handle(req *common.Command, store store.IStore) *common.Response {
	// Check for nil store
	if store == nil {
		return common.NewErrorResponse("handler: store is nil")
	}

	// Handle different command types
	switch req.CmdType {
	case common.CmdTSet:
		if err := store.Set(req.Key, []byte(req.Value)); err != nil {
			return common.NewErrorResponse(err.Error())
		}
		return common.NewAckResponse(common.CmdTSet.String())
	case common.CmdTGet:
		val, ok, err := store.Get(req.Key)
		if err != nil {
			return common.NewErrorResponse(err.Error())
		}
		if !ok {
			return common.NewValueResponse(nil)
		}
		value := string(val)
		return common.NewValueResponse(&value)
	default:
		return common.NewErrorResponse(
			fmt.Sprintf("IStoreAdapter - Unsupported command type: %s", req.CmdType),
		)
	}
}

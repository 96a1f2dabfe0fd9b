package serializer

import "github.com/ValentinKolb/rexkv/rpc/common"

// IRPCSerializer is the interface for all wire serializers.
// Commands and responses are written as externally tagged JSON objects
// (e.g. {"Get": {"key": "k"}}), the serializer implementations only differ
// in the JSON library they use.
type IRPCSerializer interface {
	// SerializeCommand serializes a Command into a byte array
	SerializeCommand(cmd common.Command) ([]byte, error)
	// DeserializeCommand deserializes a byte array into a Command
	DeserializeCommand(b []byte, cmd *common.Command) error
	// SerializeResponse serializes a Response into a byte array
	SerializeResponse(resp common.Response) ([]byte, error)
	// DeserializeResponse deserializes a byte array into a Response.
	// Every failure wraps common.ErrProtocol.
	DeserializeResponse(b []byte, resp *common.Response) error
}

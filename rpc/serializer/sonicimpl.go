package serializer

import (
	"github.com/bytedance/sonic"
)

// NewSonicSerializer creates a new serializer using bytedance/sonic.
// The std compatible configuration is used so the produced bytes match
// the encoding/json serializer (sorted map keys, escaped HTML).
func NewSonicSerializer() IRPCSerializer {
	return &taggedSerializer{api: sonic.ConfigStd}
}

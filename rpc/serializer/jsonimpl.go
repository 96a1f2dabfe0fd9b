package serializer

import (
	"encoding/json"
)

// NewJSONSerializer creates a new serializer using encoding/json
func NewJSONSerializer() IRPCSerializer {
	return &taggedSerializer{api: stdJSON{}}
}

// stdJSON adapts encoding/json to the jsonAPI interface
type stdJSON struct{}

func (stdJSON) Marshal(v interface{}) ([]byte, error) {
	return json.Marshal(v)
}

func (stdJSON) Unmarshal(data []byte, v interface{}) error {
	return json.Unmarshal(data, v)
}

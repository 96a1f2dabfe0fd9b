// Package serializer encodes commands and decodes responses of the store
// protocol. Both are externally tagged JSON objects:
//
//	{"Get": {"key": "k"}}
//	{"Set": {"key": "k", "value": "v"}}
//	{"Gossip": {"Ping": null}}
//
//	{"Ok": {"Value": {"found": true, "value": "v"}}}
//	{"Ok": {"GossipMessage": {"Pong": {"sender": "10.0.0.1:8000", "members": [...]}}}}
//	{"error": "reason"}
//
// A response is validated completely before it is returned: an unknown tag,
// a missing field or malformed JSON results in an error wrapping
// common.ErrProtocol. An Ok without a known payload is treated as an Ack.
//
// Implementations:
//
//   - NewJSONSerializer: encoding/json from the standard library.
//
//   - NewSonicSerializer: bytedance/sonic, a faster drop-in for the same format.
//
// Thread Safety:
//
//	All serializer implementations are stateless and safe for concurrent use
//	across multiple goroutines without additional synchronization.
//
// Usage:
//
//	s := serializer.NewJSONSerializer()
//	req, err := s.SerializeCommand(*common.NewGetRequest("k"))
//	// ... send req, receive b ...
//	var resp common.Response
//	err = s.DeserializeResponse(b, &resp)
package serializer

package serializer

import (
	"bytes"
	"encoding/json"
	"fmt"
	"github.com/ValentinKolb/rexkv/rpc/common"
)

// jsonAPI is the subset of a JSON library used by the tagged serializer
type jsonAPI interface {
	Marshal(v interface{}) ([]byte, error)
	Unmarshal(data []byte, v interface{}) error
}

// --------------------------------------------------------------------------
// Wire bodies
// --------------------------------------------------------------------------

type wireGet struct {
	Key *string `json:"key"`
}

type wireSet struct {
	Key   *string `json:"key"`
	Value *string `json:"value"`
}

type wireValue struct {
	Found *bool   `json:"found"`
	Value *string `json:"value"`
}

type wirePong struct {
	Sender  string   `json:"sender"`
	Members []string `json:"members"`
}

// Top level keys of a response object
const (
	tagOk       = "Ok"
	tagError    = "error"
	tagErrAlias = "Err"
)

// taggedSerializer implements IRPCSerializer for the externally tagged JSON protocol
type taggedSerializer struct {
	api jsonAPI
}

// --------------------------------------------------------------------------
// Interface Methods (docu see serializer.IRPCSerializer)
// --------------------------------------------------------------------------

func (s *taggedSerializer) SerializeCommand(cmd common.Command) ([]byte, error) {
	var body interface{}

	switch cmd.CmdType {
	case common.CmdTGet:
		body = wireGet{Key: &cmd.Key}
	case common.CmdTSet:
		body = wireSet{Key: &cmd.Key, Value: &cmd.Value}
	case common.CmdTGossip:
		gossip, err := encodeGossip(cmd.Gossip)
		if err != nil {
			return nil, err
		}
		body = gossip
	default:
		return nil, fmt.Errorf("cannot serialize command of type %d", cmd.CmdType)
	}

	return s.api.Marshal(map[string]interface{}{cmd.CmdType.String(): body})
}

func (s *taggedSerializer) DeserializeCommand(b []byte, cmd *common.Command) error {
	tag, body, err := s.variant(b)
	if err != nil {
		return protocolError("command", err)
	}

	*cmd = common.Command{}
	switch tag {
	case common.CmdTGet.String():
		var get wireGet
		if err := s.api.Unmarshal(body, &get); err != nil {
			return protocolError("Get", err)
		}
		if get.Key == nil {
			return protocolError("Get", fmt.Errorf("missing key"))
		}
		cmd.CmdType = common.CmdTGet
		cmd.Key = *get.Key
	case common.CmdTSet.String():
		var set wireSet
		if err := s.api.Unmarshal(body, &set); err != nil {
			return protocolError("Set", err)
		}
		if set.Key == nil || set.Value == nil {
			return protocolError("Set", fmt.Errorf("missing key or value"))
		}
		cmd.CmdType = common.CmdTSet
		cmd.Key = *set.Key
		cmd.Value = *set.Value
	case common.CmdTGossip.String():
		gossip, err := s.decodeGossip(body)
		if err != nil {
			return err
		}
		cmd.CmdType = common.CmdTGossip
		cmd.Gossip = gossip
	default:
		return protocolError("command", fmt.Errorf("unknown tag %q", tag))
	}
	return nil
}

func (s *taggedSerializer) SerializeResponse(resp common.Response) ([]byte, error) {
	switch resp.RespType {
	case common.RespTError:
		return s.api.Marshal(map[string]string{tagError: resp.Err})
	case common.RespTOk:
	default:
		return nil, fmt.Errorf("cannot serialize response of type %d", resp.RespType)
	}

	var payload interface{}
	switch resp.Payload {
	case common.PayloadTValue:
		found := resp.Found
		payload = map[string]interface{}{
			common.PayloadTValue.String(): wireValue{Found: &found, Value: resp.Value},
		}
	case common.PayloadTGossip:
		gossip, err := encodeGossip(resp.Gossip)
		if err != nil {
			return nil, err
		}
		payload = map[string]interface{}{common.PayloadTGossip.String(): gossip}
	case common.PayloadTAck:
		if resp.Tag != "" {
			payload = resp.Tag
		}
	default:
		return nil, fmt.Errorf("cannot serialize payload of type %d", resp.Payload)
	}

	return s.api.Marshal(map[string]interface{}{tagOk: payload})
}

func (s *taggedSerializer) DeserializeResponse(b []byte, resp *common.Response) error {
	var top map[string]json.RawMessage
	if err := s.api.Unmarshal(b, &top); err != nil {
		return protocolError("response", err)
	}

	*resp = common.Response{}

	// an error key wins over everything else
	for _, key := range []string{tagError, tagErrAlias} {
		if raw, ok := top[key]; ok {
			var reason string
			if err := s.api.Unmarshal(raw, &reason); err != nil {
				return protocolError("error reason", err)
			}
			resp.RespType = common.RespTError
			resp.Err = reason
			return nil
		}
	}

	raw, ok := top[tagOk]
	if !ok || len(top) != 1 {
		return protocolError("response", fmt.Errorf("expected a single %q or %q key, got %d keys", tagOk, tagError, len(top)))
	}
	resp.RespType = common.RespTOk

	raw = bytes.TrimSpace(raw)
	switch {
	case len(raw) == 0 || bytes.Equal(raw, []byte("null")):
		resp.Payload = common.PayloadTAck
		return nil
	case raw[0] == '"':
		resp.Payload = common.PayloadTAck
		if err := s.api.Unmarshal(raw, &resp.Tag); err != nil {
			return protocolError("Ok", err)
		}
		return nil
	case raw[0] != '{':
		return protocolError("Ok", fmt.Errorf("unexpected payload %s", raw))
	}

	var payload map[string]json.RawMessage
	if err := s.api.Unmarshal(raw, &payload); err != nil {
		return protocolError("Ok", err)
	}
	if len(payload) == 0 {
		resp.Payload = common.PayloadTAck
		return nil
	}
	if len(payload) != 1 {
		return protocolError("Ok", fmt.Errorf("expected exactly one tag, got %d", len(payload)))
	}

	for tag, body := range payload {
		switch tag {
		case common.PayloadTValue.String():
			var value wireValue
			if err := s.api.Unmarshal(body, &value); err != nil {
				return protocolError("Value", err)
			}
			if value.Found == nil {
				return protocolError("Value", fmt.Errorf("missing found flag"))
			}
			resp.Payload = common.PayloadTValue
			resp.Found = *value.Found
			resp.Value = value.Value
		case common.PayloadTGossip.String():
			gossip, err := s.decodeGossip(body)
			if err != nil {
				return err
			}
			resp.Payload = common.PayloadTGossip
			resp.Gossip = gossip
		default:
			// acknowledgement of a command without result (e.g. {"Set": null})
			resp.Payload = common.PayloadTAck
			resp.Tag = tag
		}
	}
	return nil
}

// --------------------------------------------------------------------------
// Helper
// --------------------------------------------------------------------------

// variant splits an externally tagged object into its tag and body
func (s *taggedSerializer) variant(b []byte) (string, json.RawMessage, error) {
	var m map[string]json.RawMessage
	if err := s.api.Unmarshal(b, &m); err != nil {
		return "", nil, err
	}
	if len(m) != 1 {
		return "", nil, fmt.Errorf("expected exactly one tag, got %d", len(m))
	}
	for tag, body := range m {
		return tag, body, nil
	}
	return "", nil, nil // unreachable
}

func (s *taggedSerializer) decodeGossip(body json.RawMessage) (*common.GossipMessage, error) {
	tag, inner, err := s.variant(body)
	if err != nil {
		return nil, protocolError("GossipMessage", err)
	}

	switch tag {
	case common.GossipTPing.String():
		return &common.GossipMessage{GossipType: common.GossipTPing}, nil
	case common.GossipTPong.String():
		var pong wirePong
		if err := s.api.Unmarshal(inner, &pong); err != nil {
			return nil, protocolError("Pong", err)
		}
		if pong.Sender == "" {
			return nil, protocolError("Pong", fmt.Errorf("missing sender"))
		}
		return &common.GossipMessage{
			GossipType: common.GossipTPong,
			Sender:     pong.Sender,
			Members:    pong.Members,
		}, nil
	default:
		return nil, protocolError("GossipMessage", fmt.Errorf("unknown tag %q", tag))
	}
}

func encodeGossip(msg *common.GossipMessage) (interface{}, error) {
	if msg == nil {
		return nil, fmt.Errorf("gossip message is missing")
	}
	switch msg.GossipType {
	case common.GossipTPing:
		return map[string]interface{}{common.GossipTPing.String(): nil}, nil
	case common.GossipTPong:
		members := msg.Members
		if members == nil {
			members = []string{}
		}
		return map[string]interface{}{
			common.GossipTPong.String(): wirePong{Sender: msg.Sender, Members: members},
		}, nil
	default:
		return nil, fmt.Errorf("cannot serialize gossip message of type %d", msg.GossipType)
	}
}

func protocolError(what string, err error) error {
	return fmt.Errorf("%w: invalid %s: %v", common.ErrProtocol, what, err)
}

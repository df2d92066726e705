package handlers

import (
	"encoding/json"
	"errors"

	"github.com/fxamacker/cbor/v2"
	"github.com/gorilla/websocket"
)

var errEmptyData = errors.New("event data is missing")

// frameCodec encodes the {event, data} envelope. Text frames carry JSON and
// binary frames carry CBOR; a reply always uses the codec of the request.
type frameCodec interface {
	decode(frame []byte) (event string, data []byte, err error)
	unmarshal(data []byte, v any) error
	encode(event string, v any) ([]byte, error)
	messageType() int
}

func codecFor(messageType int) (frameCodec, bool) {
	switch messageType {
	case websocket.TextMessage:
		return jsonCodec{}, true
	case websocket.BinaryMessage:
		return cborCodec{}, true
	default:
		return nil, false
	}
}

type jsonEnvelope struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

type jsonCodec struct{}

func (jsonCodec) decode(frame []byte) (string, []byte, error) {
	var env jsonEnvelope
	if err := json.Unmarshal(frame, &env); err != nil {
		return "", nil, err
	}
	return env.Event, env.Data, nil
}

func (jsonCodec) unmarshal(data []byte, v any) error {
	if len(data) == 0 {
		return errEmptyData
	}
	return json.Unmarshal(data, v)
}

func (jsonCodec) encode(event string, v any) ([]byte, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return json.Marshal(jsonEnvelope{Event: event, Data: data})
}

func (jsonCodec) messageType() int { return websocket.TextMessage }

type cborEnvelope struct {
	Event string          `cbor:"event"`
	Data  cbor.RawMessage `cbor:"data,omitempty"`
}

type cborCodec struct{}

func (cborCodec) decode(frame []byte) (string, []byte, error) {
	var env cborEnvelope
	if err := cbor.Unmarshal(frame, &env); err != nil {
		return "", nil, err
	}
	return env.Event, env.Data, nil
}

func (cborCodec) unmarshal(data []byte, v any) error {
	if len(data) == 0 {
		return errEmptyData
	}
	return cbor.Unmarshal(data, v)
}

func (cborCodec) encode(event string, v any) ([]byte, error) {
	data, err := cbor.Marshal(v)
	if err != nil {
		return nil, err
	}
	return cbor.Marshal(cborEnvelope{Event: event, Data: data})
}

func (cborCodec) messageType() int { return websocket.BinaryMessage }

package network

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/gorilla/websocket"
	"github.com/vmihailenco/msgpack/v5"
)

// Frame - конверт на проводе: {event, id, ack, data}.
// ID выставляется у запроса, ждущего ответа. Ack - у ответа, это ID запроса.
type Frame struct {
	Event string
	ID    string
	Ack   string
	Data  []byte
}

// Codec превращает фреймы в байты и обратно.
type Codec interface {
	Name() string
	// MessageType - тип websocket-сообщения (текстовое или бинарное).
	MessageType() int
	EncodeFrame(event, id, ack string, payload any) ([]byte, error)
	DecodeFrame(b []byte) (Frame, error)
	Marshal(v any) ([]byte, error)
	Unmarshal(b []byte, v any) error
}

var (
	JSON    Codec = jsonCodec{}
	MsgPack Codec = msgpackCodec{}
)

// CodecByName возвращает кодек по имени из конфига.
func CodecByName(name string) (Codec, error) {
	switch name {
	case "", "json":
		return JSON, nil
	case "msgpack":
		return MsgPack, nil
	default:
		return nil, fmt.Errorf("unknown codec %q", name)
	}
}

type jsonCodec struct{}

type jsonOutFrame struct {
	Event string `json:"event,omitempty"`
	ID    string `json:"id,omitempty"`
	Ack   string `json:"ack,omitempty"`
	Data  any    `json:"data,omitempty"`
}

type jsonInFrame struct {
	Event string          `json:"event"`
	ID    string          `json:"id"`
	Ack   string          `json:"ack"`
	Data  json.RawMessage `json:"data"`
}

func (jsonCodec) Name() string     { return "json" }
func (jsonCodec) MessageType() int { return websocket.TextMessage }

func (jsonCodec) EncodeFrame(event, id, ack string, payload any) ([]byte, error) {
	return json.Marshal(jsonOutFrame{Event: event, ID: id, Ack: ack, Data: payload})
}

func (jsonCodec) DecodeFrame(b []byte) (Frame, error) {
	var in jsonInFrame
	if err := json.Unmarshal(b, &in); err != nil {
		return Frame{}, fmt.Errorf("decode json frame: %w", err)
	}
	return Frame{Event: in.Event, ID: in.ID, Ack: in.Ack, Data: in.Data}, nil
}

func (jsonCodec) Marshal(v any) ([]byte, error)   { return json.Marshal(v) }
func (jsonCodec) Unmarshal(b []byte, v any) error { return json.Unmarshal(b, v) }

// msgpackCodec читает те же json-теги, что и DTO из pkg/api,
// поэтому отдельная разметка для бинарного протокола не нужна.
type msgpackCodec struct{}

type msgpackInFrame struct {
	Event string             `json:"event"`
	ID    string             `json:"id"`
	Ack   string             `json:"ack"`
	Data  msgpack.RawMessage `json:"data"`
}

func (msgpackCodec) Name() string     { return "msgpack" }
func (msgpackCodec) MessageType() int { return websocket.BinaryMessage }

func (c msgpackCodec) EncodeFrame(event, id, ack string, payload any) ([]byte, error) {
	return c.Marshal(jsonOutFrame{Event: event, ID: id, Ack: ack, Data: payload})
}

func (c msgpackCodec) DecodeFrame(b []byte) (Frame, error) {
	var in msgpackInFrame
	if err := c.Unmarshal(b, &in); err != nil {
		return Frame{}, fmt.Errorf("decode msgpack frame: %w", err)
	}
	return Frame{Event: in.Event, ID: in.ID, Ack: in.Ack, Data: in.Data}, nil
}

func (msgpackCodec) Marshal(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := msgpack.NewEncoder(&buf)
	enc.SetCustomStructTag("json")
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (msgpackCodec) Unmarshal(b []byte, v any) error {
	dec := msgpack.NewDecoder(bytes.NewReader(b))
	dec.SetCustomStructTag("json")
	return dec.Decode(v)
}

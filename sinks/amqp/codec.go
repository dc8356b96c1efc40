package amqp

import (
	"encoding/json"

	"github.com/vmihailenco/msgpack/v5"

	"github.com/accellera-official/uvm-core/contracts"
)

// Codec serializes report envelopes for the wire.
type Codec interface {
	Marshal(env *contracts.Envelope) ([]byte, error)
	Unmarshal(data []byte, env *contracts.Envelope) error
	ContentType() string
}

// JSONCodec encodes envelopes as JSON. It is the default.
type JSONCodec struct{}

// Marshal implements Codec.
func (JSONCodec) Marshal(env *contracts.Envelope) ([]byte, error) {
	return json.Marshal(env)
}

// Unmarshal implements Codec.
func (JSONCodec) Unmarshal(data []byte, env *contracts.Envelope) error {
	return json.Unmarshal(data, env)
}

// ContentType implements Codec.
func (JSONCodec) ContentType() string {
	return "application/json"
}

// MsgpackCodec encodes envelopes as MessagePack for denser wire traffic.
type MsgpackCodec struct{}

// Marshal implements Codec.
func (MsgpackCodec) Marshal(env *contracts.Envelope) ([]byte, error) {
	return msgpack.Marshal(env)
}

// Unmarshal implements Codec.
func (MsgpackCodec) Unmarshal(data []byte, env *contracts.Envelope) error {
	return msgpack.Unmarshal(data, env)
}

// ContentType implements Codec.
func (MsgpackCodec) ContentType() string {
	return "application/msgpack"
}

// CodecFor returns the codec matching a delivery's content type, defaulting
// to JSON.
func CodecFor(contentType string) Codec {
	if contentType == (MsgpackCodec{}).ContentType() {
		return MsgpackCodec{}
	}
	return JSONCodec{}
}

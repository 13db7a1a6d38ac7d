package protocol

import (
	"encoding/json"
	"fmt"

	"github.com/fxamacker/cbor/v2"
)

// Codec encodes outgoing messages for a WebSocket client.
type Codec interface {
	Name() string
	Marshal(v any) ([]byte, error)
	// Binary reports whether frames should be sent as binary messages.
	Binary() bool
}

// Encoding names accepted by CodecByName.
const (
	EncodingJSON = "json"
	EncodingCBOR = "cbor"
)

type jsonCodec struct{}

func (jsonCodec) Name() string                  { return EncodingJSON }
func (jsonCodec) Marshal(v any) ([]byte, error) { return json.Marshal(v) }
func (jsonCodec) Binary() bool                  { return false }

type cborCodec struct {
	mode cbor.EncMode
}

func (c cborCodec) Name() string                  { return EncodingCBOR }
func (c cborCodec) Marshal(v any) ([]byte, error) { return c.mode.Marshal(v) }
func (c cborCodec) Binary() bool                  { return true }

var (
	// JSON is the default text codec.
	JSON Codec = jsonCodec{}
	// CBOR is the binary codec, using deterministic core encoding.
	CBOR Codec = newCBORCodec()
)

func newCBORCodec() Codec {
	mode, err := cbor.CoreDetEncOptions().EncMode()
	if err != nil {
		panic(fmt.Sprintf("cbor: invalid encoding options: %v", err))
	}
	return cborCodec{mode: mode}
}

// CodecByName returns the codec for an encoding name. An empty name selects JSON.
func CodecByName(name string) (Codec, error) {
	switch name {
	case "", EncodingJSON:
		return JSON, nil
	case EncodingCBOR:
		return CBOR, nil
	default:
		return nil, fmt.Errorf("unsupported encoding %q", name)
	}
}

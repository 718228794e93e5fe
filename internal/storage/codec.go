package storage

import (
	"encoding/json"
	"fmt"

	"github.com/fxamacker/cbor/v2"
)

// Codec turns records into the bytes kept in a Store
type Codec interface {
	Marshal(v any) ([]byte, error)
	Unmarshal(data []byte, v any) error
}

// Codec names accepted by NewCodec
const (
	CodecJSON = "json"
	CodecCBOR = "cbor"
)

func NewCodec(name string) (Codec, error) {
	switch name {
	case CodecJSON, "":
		return JSON{}, nil
	case CodecCBOR:
		return CBOR{}, nil
	default:
		return nil, fmt.Errorf("unsupported storage codec: %s", name)
	}
}

// JSON writes indented json, readable when opening the data dir by hand
type JSON struct{}

func (JSON) Marshal(v any) ([]byte, error) {
	return json.MarshalIndent(v, "", "  ")
}

// Unmarshal strips a UTF-8 BOM left behind by some editors
func (JSON) Unmarshal(data []byte, v any) error {
	if len(data) >= 3 && data[0] == 0xEF && data[1] == 0xBB && data[2] == 0xBF {
		data = data[3:]
	}
	return json.Unmarshal(data, v)
}

// CBOR is the compact binary alternative. Struct fields are matched through
// their json tags, so both codecs share one set of field names.
type CBOR struct{}

func (CBOR) Marshal(v any) ([]byte, error) {
	return cbor.Marshal(v)
}

func (CBOR) Unmarshal(data []byte, v any) error {
	return cbor.Unmarshal(data, v)
}

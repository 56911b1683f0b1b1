// Package codec abstracts payload encoding for persisted and transported
// state.
package codec

import "encoding/json"

type Codec interface {
	Marshal(v any) ([]byte, error)
	Unmarshal(data []byte, v any) error
}

// JSONCodec encodes as indented JSON. Snapshots written with it stay
// readable when inspected by hand.
type JSONCodec struct{}

func (JSONCodec) Marshal(v any) ([]byte, error)   { return json.MarshalIndent(v, "", "  ") }
func (JSONCodec) Unmarshal(b []byte, v any) error { return json.Unmarshal(b, v) }

// CompactJSONCodec encodes as compact JSON for wire payloads.
type CompactJSONCodec struct{}

func (CompactJSONCodec) Marshal(v any) ([]byte, error)   { return json.Marshal(v) }
func (CompactJSONCodec) Unmarshal(b []byte, v any) error { return json.Unmarshal(b, v) }

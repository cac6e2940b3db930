package bridge

import "encoding/json"

// jsonCodec lets the gRPC server exchange plain JSON-tagged Go structs
// instead of protobuf-generated messages — there is no .proto toolchain
// step in this module, so request/response types are ordinary structs and
// wire encoding rides on gRPC's pluggable codec rather than code
// generation.
type jsonCodec struct{}

func (jsonCodec) Marshal(v interface{}) ([]byte, error) { return json.Marshal(v) }
func (jsonCodec) Unmarshal(data []byte, v interface{}) error {
	return json.Unmarshal(data, v)
}
func (jsonCodec) Name() string { return "json" }

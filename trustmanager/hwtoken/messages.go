package hwtoken

import "encoding/json"

// Request/response shapes for the hand-written token RPC surface. No
// protoc toolchain runs as part of this build, so these are plain
// structs carried over gRPC with a JSON wire codec (jsonCodec below)
// instead of generated protobuf messages — the same request/response
// shapes the teacher's generated pb.GenerateKeyReq/AddKeyReq/SignReq
// carry, just encoded differently on the wire.

type generateKeyRequest struct {
	Role      string `json:"role"`
	Algorithm string `json:"algorithm"`
}

type generateKeyResponse struct {
	KeyID              string `json:"key_id"`
	RemoteKeyID        string `json:"remote_key_id"`
	PublicKey          []byte `json:"public_key"`
	SignatureAlgorithm string `json:"signature_algorithm"`
}

type signRequest struct {
	KeyID       string `json:"key_id"`
	RemoteKeyID string `json:"remote_key_id"`
	Message     []byte `json:"message"`
	PIN         string `json:"pin,omitempty"`
}

type signResponse struct {
	Signature []byte `json:"signature"`
}

type removeKeyRequest struct {
	KeyID string `json:"key_id"`
}

type removeKeyResponse struct{}

// jsonCodec implements grpc/encoding.Codec, letting this package's
// hand-rolled request/response structs travel over gRPC without a
// generated protobuf marshaler.
type jsonCodec struct{}

func (jsonCodec) Marshal(v interface{}) ([]byte, error) { return json.Marshal(v) }
func (jsonCodec) Unmarshal(data []byte, v interface{}) error { return json.Unmarshal(data, v) }
func (jsonCodec) Name() string { return "json" }

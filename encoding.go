package dangerous

import (
	"bytes"
	"encoding/gob"
	"encoding/json"
)

// Encoder turns an arbitrary value into bytes and back. Decode errors
// are wrapped by Serializer as *BadPayload; callers implementing their
// own Encoder do not need to produce any particular error type.
type Encoder interface {
	Encode(v any) ([]byte, error)
	Decode(b []byte, v any) error
}

// JSONEncoder is the default Encoder, matching the teacher's own choice
// of encoding/json for session payloads. encoding/json sorts object
// keys on marshal, so Encode is deterministic within and across
// processes on a given Go version.
type JSONEncoder struct{}

func (JSONEncoder) Encode(v any) ([]byte, error) {
	return json.Marshal(v)
}

func (JSONEncoder) Decode(b []byte, v any) error {
	return json.Unmarshal(b, v)
}

// GobEncoder is Go's native binary object codec — the idiomatic
// analogue of the "binary object encoding" the spec warns about.
//
// Security: decoding an attacker-controlled gob stream into an
// interface-typed value can instantiate arbitrary registered types and
// invoke their GobDecode methods. Never make this the default Encoder
// for a Serializer that accepts untrusted tokens; prefer JSONEncoder
// unless the caller has already authenticated the token source through
// some channel this library doesn't know about.
type GobEncoder struct{}

func (GobEncoder) Encode(v any) ([]byte, error) {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (GobEncoder) Decode(b []byte, v any) error {
	return gob.NewDecoder(bytes.NewReader(b)).Decode(v)
}

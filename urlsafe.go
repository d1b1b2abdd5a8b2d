package dangerous

import (
	"bytes"
	"compress/zlib"
	"encoding/base64"
	"io"
)

// encodeURLSafe implements §3's framing: compress with zlib (matching
// the teacher's and itsdangerous's own choice of the zlib container
// over raw DEFLATE), and only keep the compressed form if it actually
// saves at least two bytes (one for the framing marker, one to make
// compression worth the CPU). The leading "." is the in-band flag.
func encodeURLSafe(b []byte) []byte {
	compressed := zlibCompress(b)
	if len(compressed) < len(b)-1 {
		out := make([]byte, 0, 1+base64.RawURLEncoding.EncodedLen(len(compressed)))
		out = append(out, '.')
		out = append(out, b64encode(compressed)...)
		return out
	}
	return b64encode(b)
}

// decodeURLSafe reverses encodeURLSafe: strip the leading "." if
// present and inflate, otherwise just base64url-decode. Any framing
// failure is returned as-is; callers (Serializer.LoadPayload) wrap it
// as *BadPayload.
func decodeURLSafe(b []byte) ([]byte, error) {
	compressed := false
	if len(b) > 0 && b[0] == '.' {
		compressed = true
		b = b[1:]
	}
	decoded, err := b64decode(b)
	if err != nil {
		return nil, err
	}
	if !compressed {
		return decoded, nil
	}
	return zlibDecompress(decoded)
}

func zlibCompress(b []byte) []byte {
	var buf bytes.Buffer
	w := zlib.NewWriter(&buf)
	_, _ = w.Write(b)
	_ = w.Close()
	return buf.Bytes()
}

func zlibDecompress(b []byte) ([]byte, error) {
	r, err := zlib.NewReader(bytes.NewReader(b))
	if err != nil {
		return nil, err
	}
	defer r.Close()
	return io.ReadAll(r)
}

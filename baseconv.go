package dangerous

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"strings"
)

// base62Alphabet matches django.utils.baseconv.BaseConverter's alphabet,
// which itsdangerous inherits for timestamp encoding.
const base62Alphabet = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz"

// base62Encode encodes a non-negative integer as big-endian base62 with
// no padding. Zero encodes as "0".
func base62Encode(n int64) string {
	if n == 0 {
		return "0"
	}
	if n < 0 {
		panic("dangerous: base62Encode of negative value")
	}
	var buf [11]byte // enough for any int64
	i := len(buf)
	base := int64(len(base62Alphabet))
	for n > 0 {
		i--
		buf[i] = base62Alphabet[n%base]
		n /= base
	}
	return string(buf[i:])
}

// base62Decode decodes a big-endian base62 string produced by
// base62Encode. It rejects characters outside the alphabet.
func base62Decode(s []byte) (int64, error) {
	if len(s) == 0 {
		return 0, fmt.Errorf("dangerous: empty base62 value")
	}
	var n int64
	base := int64(len(base62Alphabet))
	for _, c := range s {
		idx := strings.IndexByte(base62Alphabet, c)
		if idx < 0 {
			return 0, fmt.Errorf("dangerous: invalid base62 byte %q", c)
		}
		n = n*base + int64(idx)
	}
	return n, nil
}

// b64encode is base64url without padding, the wire format for both
// signatures and URL-safe payload framing.
func b64encode(b []byte) []byte {
	return []byte(base64.RawURLEncoding.EncodeToString(b))
}

// b64decode tolerates missing OR present padding on input, since the
// spec only mandates stripped padding on output.
func b64decode(b []byte) ([]byte, error) {
	b = bytes.TrimRight(b, "=")
	return base64.RawURLEncoding.DecodeString(string(b))
}

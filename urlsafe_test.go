package dangerous

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const urlSafeCharset = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz_-."

func TestURLSafeRoundTripUncompressible(t *testing.T) {
	original := []byte("short")
	encoded := encodeURLSafe(original)
	assert.NotContains(t, string(encoded), ".")

	decoded, err := decodeURLSafe(encoded)
	require.NoError(t, err)
	assert.Equal(t, original, decoded)
}

func TestURLSafeRoundTripCompressible(t *testing.T) {
	original := []byte(strings.Repeat("a", 200))
	encoded := encodeURLSafe(original)
	assert.True(t, strings.HasPrefix(string(encoded), "."))

	decoded, err := decodeURLSafe(encoded)
	require.NoError(t, err)
	assert.Equal(t, original, decoded)
}

func TestURLSafeDecodeInflateFailureIsError(t *testing.T) {
	// Starts with '.' so decodeURLSafe treats the remainder as a
	// zlib stream; it isn't one.
	_, err := decodeURLSafe([]byte(".not-a-zlib-stream"))
	require.Error(t, err)
}

func TestURLSafeCharsetOfSerializerToken(t *testing.T) {
	s, err := URLSafeSerializer([]byte("aha!"))
	require.NoError(t, err)

	token, err := s.Dumps(map[string]any{"a": strings.Repeat("b", 100)})
	require.NoError(t, err)

	for _, c := range token {
		assert.True(t, strings.ContainsRune(urlSafeCharset, rune(c)), "byte %q not in URL-safe charset", c)
	}
}

func TestURLSafeSerializerRoundTrip(t *testing.T) {
	s, err := URLSafeSerializer([]byte("aha!"))
	require.NoError(t, err)

	token, err := s.Dumps("hello world")
	require.NoError(t, err)

	var got string
	require.NoError(t, s.Loads(token, &got))
	assert.Equal(t, "hello world", got)
}

func TestURLSafeSerializerLoadPayloadBadFraming(t *testing.T) {
	s, err := URLSafeSerializer([]byte("aha!"))
	require.NoError(t, err)

	var got string
	err = s.LoadPayload([]byte("kZ4m3du844lIN"), &got)
	require.Error(t, err)
	var bad *BadPayload
	assert.ErrorAs(t, err, &bad)
}

func TestURLSafeTimedSerializerRoundTrip(t *testing.T) {
	s, err := URLSafeTimedSerializer([]byte("aha!"))
	require.NoError(t, err)

	token, err := s.Dumps("hello")
	require.NoError(t, err)

	var got string
	require.NoError(t, s.Loads(token, &got))
	assert.Equal(t, "hello", got)
}

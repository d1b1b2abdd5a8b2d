// Package dangerous signs and verifies tamper-evident byte strings and,
// via Serializer, arbitrary values — a Go-native rendering of Python's
// itsdangerous. See Signer, TimestampSigner, and Serializer.
package dangerous

import (
	"bytes"
	"crypto/hmac"
	"hash"
)

// DefaultSalt is the salt a bare Signer uses when none is supplied,
// matching itsdangerous's own Signer default.
const DefaultSalt = "itsdangerous.Signer"

// base64url alphabet, used only to validate that a separator choice
// can never collide with a signature or timestamp segment.
const base64urlAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789-_"

// Signer attaches and verifies an HMAC signature on a byte string. It
// is an immutable value object: safe to share across goroutines, holds
// no mutable state, and performs no I/O.
type Signer struct {
	secretKey     []byte
	salt          []byte
	sep           []byte
	keyDerivation KeyDerivation
	digest        Digest
	newHash       func() hash.Hash
}

// SignerOption configures a Signer or TimestampSigner at construction.
type SignerOption func(*signerConfig)

type signerConfig struct {
	salt          []byte
	sep           []byte
	keyDerivation KeyDerivation
	digest        Digest
}

// WithSalt overrides the default salt. Salt is not secret; it
// namespaces a signer so the same secret key cannot be cross-used
// between unrelated contexts.
func WithSalt(salt string) SignerOption {
	return func(c *signerConfig) { c.salt = []byte(salt) }
}

// WithSep overrides the default "." separator between payload,
// timestamp, and signature.
func WithSep(sep string) SignerOption {
	return func(c *signerConfig) { c.sep = []byte(sep) }
}

// WithKeyDerivation overrides the default "django-concat" scheme.
func WithKeyDerivation(kd KeyDerivation) SignerOption {
	return func(c *signerConfig) { c.keyDerivation = kd }
}

// WithDigest overrides the default SHA-1 digest method.
func WithDigest(d Digest) SignerOption {
	return func(c *signerConfig) { c.digest = d }
}

// NewSigner constructs a Signer. secretKey may originate as text; pass
// it as its UTF-8 bytes. Returns *ErrBadConfig if sep collides with the
// base64url alphabet or the key-derivation/digest name is unknown.
func NewSigner(secretKey []byte, opts ...SignerOption) (*Signer, error) {
	cfg := signerConfig{
		salt:          []byte(DefaultSalt),
		sep:           []byte("."),
		keyDerivation: KeyDerivationDjangoConcat,
		digest:        DigestSHA1,
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	if len(cfg.sep) != 1 || bytes.ContainsAny([]byte(base64urlAlphabet), string(cfg.sep)) {
		return nil, &ErrBadConfig{Reason: "separator must be a single non-base64url byte"}
	}
	newHash, err := cfg.digest.newHash()
	if err != nil {
		return nil, err
	}
	// deriveKey validates the key-derivation name eagerly so an unknown
	// scheme fails at construction, never at sign/verify time.
	if _, err := deriveKey(cfg.keyDerivation, secretKey, cfg.salt, newHash); err != nil {
		return nil, err
	}
	// Copy secretKey so a caller mutating its original slice after
	// construction can't change a supposedly-immutable Signer.
	secretKey = append([]byte(nil), secretKey...)
	return &Signer{
		secretKey:     secretKey,
		salt:          cfg.salt,
		sep:           cfg.sep,
		keyDerivation: cfg.keyDerivation,
		digest:        cfg.digest,
		newHash:       newHash,
	}, nil
}

func (s *Signer) derivedKey() []byte {
	// deriveKey's only remaining failure mode was already rejected in
	// NewSigner, so the error here is unreachable.
	key, _ := deriveKey(s.keyDerivation, s.secretKey, s.salt, s.newHash)
	return key
}

// GetSignature returns the base64url (no padding) HMAC of value.
func (s *Signer) GetSignature(value []byte) []byte {
	mac := hmac.New(s.newHash, s.derivedKey())
	mac.Write(value)
	return b64encode(mac.Sum(nil))
}

// Sign returns value || sep || GetSignature(value).
func (s *Signer) Sign(value []byte) []byte {
	sig := s.GetSignature(value)
	out := make([]byte, 0, len(value)+len(s.sep)+len(sig))
	out = append(out, value...)
	out = append(out, s.sep...)
	out = append(out, sig...)
	return out
}

// VerifySignature reports whether sig is the correct signature for
// value. It never short-circuits on content and rejects any signature
// that fails base64url decoding.
func (s *Signer) VerifySignature(value, sig []byte) bool {
	decoded, err := b64decode(sig)
	if err != nil {
		return false
	}
	expected := hmac.New(s.newHash, s.derivedKey())
	expected.Write(value)
	return hmac.Equal(expected.Sum(nil), decoded)
}

// Unsign splits signed on the rightmost separator and verifies it.
// A missing separator yields *BadSignature with a nil Payload; a
// verification failure yields *BadSignature carrying the pre-signature
// bytes so a caller can still inspect them via Serializer.LoadPayload.
func (s *Signer) Unsign(signed []byte) ([]byte, error) {
	i := bytes.LastIndex(signed, s.sep)
	if i < 0 {
		return nil, &BadSignature{Message: "no " + string(s.sep) + " found in value"}
	}
	value, sig := signed[:i], signed[i+1:]
	if !s.VerifySignature(value, sig) {
		return nil, &BadSignature{
			Message: "signature does not match",
			Payload: value,
		}
	}
	return value, nil
}

// Validate reports whether signed carries a valid signature.
func (s *Signer) Validate(signed []byte) bool {
	_, err := s.Unsign(signed)
	return err == nil
}

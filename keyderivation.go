package dangerous

import (
	"crypto/hmac"
	"hash"
)

// KeyDerivation selects how a per-use MAC key is derived from a secret
// key and a salt. The derived bytes are never cached beyond a single
// Sign/Unsign call and never exposed to callers.
type KeyDerivation string

const (
	// KeyDerivationConcat hashes salt||secretKey.
	KeyDerivationConcat KeyDerivation = "concat"

	// KeyDerivationDjangoConcat hashes salt||"signer"||secretKey. This
	// is the default, matching itsdangerous and Django's salted_hmac
	// first stage (the teacher's saltedHMAC, generalized from a fixed
	// SHA-256 to any injected digest).
	KeyDerivationDjangoConcat KeyDerivation = "django-concat"

	// KeyDerivationHMAC derives the key as HMAC(secretKey, salt).
	KeyDerivationHMAC KeyDerivation = "hmac"

	// KeyDerivationNone uses secretKey verbatim as the MAC key.
	KeyDerivationNone KeyDerivation = "none"
)

// deriveKey implements the four schemes in §4.A. newHash must be a
// constructor like sha1.New, not a Hash instance, since it may be
// invoked twice (once for the derivation digest, once inside hmac.New).
func deriveKey(kd KeyDerivation, secretKey, salt []byte, newHash func() hash.Hash) ([]byte, error) {
	switch kd {
	case KeyDerivationConcat:
		h := newHash()
		h.Write(salt)
		h.Write(secretKey)
		return h.Sum(nil), nil
	case KeyDerivationDjangoConcat, "":
		h := newHash()
		h.Write(salt)
		h.Write([]byte("signer"))
		h.Write(secretKey)
		return h.Sum(nil), nil
	case KeyDerivationHMAC:
		mac := hmac.New(newHash, secretKey)
		mac.Write(salt)
		return mac.Sum(nil), nil
	case KeyDerivationNone:
		return secretKey, nil
	default:
		return nil, &ErrBadConfig{Reason: "unknown key derivation scheme: " + string(kd)}
	}
}

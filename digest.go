package dangerous

import (
	"crypto/md5"
	"crypto/sha1"
	"crypto/sha256"
	"crypto/sha512"
	"hash"
)

// Digest names a fixed-output hash construction usable as both the
// key-derivation hash and the HMAC hash. The zero value is SHA-1,
// matching itsdangerous's historical default (seed scenario 1 in the
// spec) and the digest-length dispatch table other Go ports of Django's
// signing module key off of.
type Digest string

const (
	DigestSHA1   Digest = "sha1"
	DigestSHA256 Digest = "sha256"
	DigestSHA384 Digest = "sha384"
	DigestSHA512 Digest = "sha512"
	DigestMD5    Digest = "md5"
)

func (d Digest) newHash() (func() hash.Hash, error) {
	switch d {
	case DigestSHA1, "":
		return sha1.New, nil
	case DigestSHA256:
		return sha256.New, nil
	case DigestSHA384:
		return sha512.New384, nil
	case DigestSHA512:
		return sha512.New, nil
	case DigestMD5:
		return md5.New, nil
	default:
		return nil, &ErrBadConfig{Reason: "unknown digest method: " + string(d)}
	}
}

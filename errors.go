package dangerous

import "fmt"

// ErrBadConfig is raised at Signer/Serializer construction time for an
// invalid separator or an unknown key-derivation scheme. It is never
// raised during Sign or Unsign.
type ErrBadConfig struct {
	Reason string
}

func (e *ErrBadConfig) Error() string {
	return fmt.Sprintf("dangerous: bad config: %s", e.Reason)
}

// BadSignature means a token's signature is missing or does not verify.
// Payload carries the pre-signature bytes when they could be recovered
// (nil when the token had no separator at all), so a caller that wants
// to inspect an untrusted payload anyway can feed Payload to
// Serializer.LoadPayload.
type BadSignature struct {
	Message string
	Payload []byte
}

func (e *BadSignature) Error() string {
	if e.Message == "" {
		return "dangerous: signature does not match"
	}
	return "dangerous: " + e.Message
}

// RecoverablePayload returns the pre-signature bytes carried by this
// error, or nil. BadTimeSignature and SignatureExpired satisfy the same
// accessor through embedding, which is what LoadsUnsafe relies on.
func (e *BadSignature) RecoverablePayload() []byte {
	return e.Payload
}

type payloadCarrier interface {
	RecoverablePayload() []byte
}

// BadTimeSignature means a timestamped token's timestamp segment is
// missing or malformed. It is always also a BadSignature.
type BadTimeSignature struct {
	BadSignature
}

// SignatureExpired means a timestamped token verified correctly but its
// age exceeds the caller's max age. DateSigned is the absolute signing
// time recovered from the token.
type SignatureExpired struct {
	BadTimeSignature
	DateSigned int64 // seconds since Unix epoch
}

// BadPayload means the payload segment of an otherwise-authentic token
// could not be turned back into a value: framing (deflate/base64) or
// encoder failure. Err is the underlying cause.
type BadPayload struct {
	Message string
	Err     error
}

func (e *BadPayload) Error() string {
	if e.Err == nil {
		return "dangerous: " + e.Message
	}
	return fmt.Sprintf("dangerous: %s: %v", e.Message, e.Err)
}

func (e *BadPayload) Unwrap() error {
	return e.Err
}

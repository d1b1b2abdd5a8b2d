package dangerous

import (
	"bytes"
	"strconv"
)

// TimestampSigner extends Signer with a base62-encoded signing
// timestamp (seconds relative to Epoch) so verification can enforce a
// maximum age. Like Signer, it is immutable and stateless per call.
type TimestampSigner struct {
	*Signer
	now Clock
}

// TimestampSignerOption configures a TimestampSigner at construction,
// in addition to the shared SignerOption set.
type TimestampSignerOption func(*timestampConfig)

type timestampConfig struct {
	now Clock
}

// WithClock injects the now() function TimestampSigner reads exactly
// once per Sign and once per Unsign age check. Tests use this to pin
// or step the clock instead of patching a process-global.
func WithClock(now Clock) TimestampSignerOption {
	return func(c *timestampConfig) { c.now = now }
}

// NewTimestampSigner constructs a TimestampSigner.
func NewTimestampSigner(secretKey []byte, opts []SignerOption, tsOpts ...TimestampSignerOption) (*TimestampSigner, error) {
	signer, err := NewSigner(secretKey, opts...)
	if err != nil {
		return nil, err
	}
	cfg := timestampConfig{now: defaultClock}
	for _, opt := range tsOpts {
		opt(&cfg)
	}
	return &TimestampSigner{Signer: signer, now: cfg.now}, nil
}

// relativeNow returns floor(now()) - Epoch. A pre-epoch clock clamps to
// zero rather than going negative or erroring (§9 open question,
// resolved in favor of the cheaper hot-path behavior).
func (t *TimestampSigner) relativeNow() int64 {
	sec := t.now().Unix()
	rel := sec - Epoch
	if rel < 0 {
		return 0
	}
	return rel
}

// Sign appends sep + base62(timestamp) to value before delegating to
// Signer.Sign, so the full token is value||sep||ts||sep||sig.
func (t *TimestampSigner) Sign(value []byte) []byte {
	ts := []byte(base62Encode(t.relativeNow()))
	withTS := make([]byte, 0, len(value)+len(t.sep)+len(ts))
	withTS = append(withTS, value...)
	withTS = append(withTS, t.sep...)
	withTS = append(withTS, ts...)
	return t.Signer.Sign(withTS)
}

// UnsignOption configures a single TimestampSigner.Unsign call.
type UnsignOption func(*unsignConfig)

type unsignConfig struct {
	maxAge          *int64 // seconds; nil means unchecked
	returnTimestamp bool
}

// WithMaxAge rejects tokens older than maxAge seconds. A negative
// maxAge rejects every token regardless of its actual age, matching
// itsdangerous's documented behavior for clock-skew-proofing tests.
func WithMaxAge(maxAge int64) UnsignOption {
	return func(c *unsignConfig) { c.maxAge = &maxAge }
}

// WithReturnTimestamp makes Unsign return the signing time alongside
// the value.
func WithReturnTimestamp() UnsignOption {
	return func(c *unsignConfig) { c.returnTimestamp = true }
}

// Unsign verifies signed and returns the original value. If
// WithReturnTimestamp was given, dateSigned holds the absolute signing
// time (seconds since Unix epoch); otherwise it is zero.
func (t *TimestampSigner) Unsign(signed []byte, opts ...UnsignOption) (value []byte, dateSigned int64, err error) {
	var cfg unsignConfig
	for _, opt := range opts {
		opt(&cfg)
	}

	valueAndTS, err := t.Signer.Unsign(signed)
	if err != nil {
		return nil, 0, err
	}

	i := bytes.LastIndex(valueAndTS, t.sep)
	if i < 0 {
		return nil, 0, &BadTimeSignature{BadSignature{
			Message: "timestamp missing",
			Payload: valueAndTS,
		}}
	}
	value, tsBytes := valueAndTS[:i], valueAndTS[i+1:]

	ts, err := base62Decode(tsBytes)
	if err != nil {
		return nil, 0, &BadTimeSignature{BadSignature{
			Message: "malformed timestamp",
			Payload: value,
		}}
	}
	signedAt := Epoch + ts

	if cfg.maxAge != nil {
		age := t.now().Unix() - signedAt
		if *cfg.maxAge < 0 || age > *cfg.maxAge {
			return nil, 0, &SignatureExpired{
				BadTimeSignature: BadTimeSignature{BadSignature{
					Message: signatureAgeMessage(age, *cfg.maxAge),
					Payload: value,
				}},
				DateSigned: signedAt,
			}
		}
	}

	if cfg.returnTimestamp {
		return value, signedAt, nil
	}
	return value, 0, nil
}

func signatureAgeMessage(age, maxAge int64) string {
	return "signature age " + strconv.FormatInt(age, 10) + " > " + strconv.FormatInt(maxAge, 10) + " seconds"
}

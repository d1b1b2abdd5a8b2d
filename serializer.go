package dangerous

import "io"

// DefaultSerializerSalt is the salt a Serializer uses when none is
// supplied, distinct from the bare Signer's default salt.
const DefaultSerializerSalt = "itsdangerous"

// FallbackSigner names an additional (secret key, options) pair tried,
// in order, only during Loads/LoadsUnsafe — the sole key/algorithm
// rotation surface this library provides.
type FallbackSigner struct {
	SecretKey []byte
	Opts      []SignerOption
}

// Serializer composes a Signer (or TimestampSigner) with an Encoder,
// and optionally URL-safe framing, to lift signing from byte strings to
// arbitrary values. Like Signer it is immutable after construction.
type Serializer struct {
	encoder     Encoder
	urlSafe     bool
	timestamped bool

	salt     []byte
	tsOpt    []TimestampSignerOption
	fallback []FallbackSigner

	signer *TimestampSigner // set when timestamped
	plain  *Signer          // set when not timestamped
}

// SerializerOption configures a Serializer at construction.
type SerializerOption func(*serializerConfig)

type serializerConfig struct {
	encoder     Encoder
	salt        []byte
	signerOpt   []SignerOption
	tsOpt       []TimestampSignerOption
	urlSafe     bool
	timestamped bool
	fallback    []FallbackSigner
}

// WithEncoder overrides the default JSONEncoder.
func WithEncoder(e Encoder) SerializerOption {
	return func(c *serializerConfig) { c.encoder = e }
}

// WithSerializerSalt overrides the default "itsdangerous" salt.
func WithSerializerSalt(salt string) SerializerOption {
	return func(c *serializerConfig) { c.salt = []byte(salt) }
}

// WithSignerOptions forwards options to the underlying Signer or
// TimestampSigner construction (e.g. WithDigest, WithKeyDerivation).
func WithSignerOptions(opts ...SignerOption) SerializerOption {
	return func(c *serializerConfig) { c.signerOpt = append(c.signerOpt, opts...) }
}

// WithTimestampOptions forwards options to TimestampSigner construction
// (currently just WithClock). Ignored unless WithTimestamp is also set.
func WithTimestampOptions(opts ...TimestampSignerOption) SerializerOption {
	return func(c *serializerConfig) { c.tsOpt = append(c.tsOpt, opts...) }
}

// WithTimestamp makes the Serializer sign with a TimestampSigner
// instead of a plain Signer, so Loads can enforce a max age.
func WithTimestamp() SerializerOption {
	return func(c *serializerConfig) { c.timestamped = true }
}

// WithURLSafe wraps the encoded payload in the deflate+base64url
// framing from §3 before signing.
func WithURLSafe() SerializerOption {
	return func(c *serializerConfig) { c.urlSafe = true }
}

// WithFallbackSigners adds signers tried, in order, on Loads/LoadsUnsafe
// if the primary signer rejects a token. The primary signer's error is
// what gets reported if every fallback also fails.
func WithFallbackSigners(fallbacks ...FallbackSigner) SerializerOption {
	return func(c *serializerConfig) { c.fallback = append(c.fallback, fallbacks...) }
}

// NewSerializer constructs a Serializer.
func NewSerializer(secretKey []byte, opts ...SerializerOption) (*Serializer, error) {
	cfg := serializerConfig{
		encoder: JSONEncoder{},
		salt:    []byte(DefaultSerializerSalt),
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	s := &Serializer{
		encoder:     cfg.encoder,
		urlSafe:     cfg.urlSafe,
		timestamped: cfg.timestamped,
		salt:        cfg.salt,
		tsOpt:       cfg.tsOpt,
		fallback:    cfg.fallback,
	}

	saltedOpts := append([]SignerOption{WithSalt(string(cfg.salt))}, cfg.signerOpt...)
	if cfg.timestamped {
		signer, err := NewTimestampSigner(secretKey, saltedOpts, cfg.tsOpt...)
		if err != nil {
			return nil, err
		}
		s.signer = signer
	} else {
		signer, err := NewSigner(secretKey, saltedOpts...)
		if err != nil {
			return nil, err
		}
		s.plain = signer
	}
	return s, nil
}

// URLSafeSerializer constructs a non-timestamped Serializer with
// URL-safe framing pre-selected.
func URLSafeSerializer(secretKey []byte, opts ...SerializerOption) (*Serializer, error) {
	return NewSerializer(secretKey, append([]SerializerOption{WithURLSafe()}, opts...)...)
}

// URLSafeTimedSerializer constructs a timestamped Serializer with
// URL-safe framing pre-selected.
func URLSafeTimedSerializer(secretKey []byte, opts ...SerializerOption) (*Serializer, error) {
	return NewSerializer(secretKey, append([]SerializerOption{WithURLSafe(), WithTimestamp()}, opts...)...)
}

func (s *Serializer) encodePayload(value any) ([]byte, error) {
	encoded, err := s.encoder.Encode(value)
	if err != nil {
		return nil, err
	}
	if s.urlSafe {
		return encodeURLSafe(encoded), nil
	}
	return encoded, nil
}

// Dumps encodes and signs value, returning the final token.
func (s *Serializer) Dumps(value any) ([]byte, error) {
	payload, err := s.encodePayload(value)
	if err != nil {
		return nil, err
	}
	if s.timestamped {
		return s.signer.Sign(payload), nil
	}
	return s.plain.Sign(payload), nil
}

// Dump is a convenience wrapper that writes the token to w.
func (s *Serializer) Dump(value any, w io.Writer) error {
	token, err := s.Dumps(value)
	if err != nil {
		return err
	}
	_, err = w.Write(token)
	return err
}

// unsign tries the primary signer then each fallback in order,
// preserving the primary's error for reporting (§9 open question
// resolution).
func (s *Serializer) unsign(signed []byte, opts ...UnsignOption) ([]byte, error) {
	var primaryErr error
	if s.timestamped {
		value, _, err := s.signer.Unsign(signed, opts...)
		if err == nil {
			return value, nil
		}
		primaryErr = err
	} else {
		value, err := s.plain.Unsign(signed)
		if err == nil {
			return value, nil
		}
		primaryErr = err
	}

	for _, fb := range s.fallback {
		saltedOpts := append([]SignerOption{WithSalt(string(s.salt))}, fb.Opts...)
		if s.timestamped {
			signer, err := NewTimestampSigner(fb.SecretKey, saltedOpts, s.tsOpt...)
			if err != nil {
				continue
			}
			if value, _, err := signer.Unsign(signed, opts...); err == nil {
				return value, nil
			}
		} else {
			signer, err := NewSigner(fb.SecretKey, saltedOpts...)
			if err != nil {
				continue
			}
			if value, err := signer.Unsign(signed); err == nil {
				return value, nil
			}
		}
	}
	return nil, primaryErr
}

// Loads verifies signed (trying fallback signers if the primary
// rejects it) and decodes the payload into the original value.
func (s *Serializer) Loads(signed []byte, v any, opts ...UnsignOption) error {
	payload, err := s.unsign(signed, opts...)
	if err != nil {
		return err
	}
	return s.LoadPayload(payload, v)
}

// LoadPayload decodes an already-verified payload. URL-safe Serializers
// peel the deflate+base64url frame first. Any framing or encoder error
// is reported as *BadPayload.
func (s *Serializer) LoadPayload(payload []byte, v any) error {
	raw := payload
	if s.urlSafe {
		decoded, err := decodeURLSafe(payload)
		if err != nil {
			return &BadPayload{Message: "could not decode URL-safe framing", Err: err}
		}
		raw = decoded
	}
	if err := s.encoder.Decode(raw, v); err != nil {
		return &BadPayload{Message: "could not decode payload", Err: err}
	}
	return nil
}

// LoadsUnsafe attempts Loads; on *BadSignature with a recoverable
// payload it falls back to LoadPayload and reports ok=false. Any other
// error propagates unchanged. This is the explicit escape hatch for
// reading an untrusted payload.
func (s *Serializer) LoadsUnsafe(signed []byte, v any, opts ...UnsignOption) (ok bool, err error) {
	loadErr := s.Loads(signed, v, opts...)
	if loadErr == nil {
		return true, nil
	}
	bad, isBad := loadErr.(payloadCarrier)
	if !isBad {
		return false, loadErr
	}
	payload := bad.RecoverablePayload()
	if payload == nil {
		return false, loadErr
	}
	if err := s.LoadPayload(payload, v); err != nil {
		return false, loadErr
	}
	return false, nil
}

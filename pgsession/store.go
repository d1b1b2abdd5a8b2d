// Package pgsession persists dangerous-signed, time-limited session
// tokens in PostgreSQL and exposes a Gin middleware that authenticates
// requests against them without always paying to decode the payload.
package pgsession

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/gosign/dangerous"
)

var (
	// ErrSessionNotFound is returned when the session key has no row,
	// or was never a legal key to begin with.
	ErrSessionNotFound = errors.New("pgsession: session not found")
	// ErrSessionExpired is returned when the database row's expiry has
	// already passed, independent of the token's own signed timestamp.
	ErrSessionExpired = errors.New("pgsession: session expired")
)

// DBTX is the minimal pgx execution surface a Store needs, satisfied by
// *pgxpool.Pool, *pgx.Conn, or a sqlc-generated query wrapper.
type DBTX interface {
	Exec(context.Context, string, ...interface{}) (pgconn.CommandTag, error)
	Query(context.Context, string, ...interface{}) (pgx.Rows, error)
	QueryRow(context.Context, string, ...interface{}) pgx.Row
	CopyFrom(ctx context.Context, tableName pgx.Identifier, columnNames []string, rowSrc pgx.CopyFromSource) (int64, error)
}

// RawSession is a session row whose signed payload has not yet been
// verified or decoded — the fast path exposed to middleware.
type RawSession struct {
	SessionKey  string
	SessionData string
	ExpireDate  time.Time
}

// StoreConfig configures a Store.
type StoreConfig struct {
	DB                DBTX
	SecretKey         []byte
	SessionCookieName string        // default "sessionid"
	MaxAge            time.Duration // optional: enforced against the signed timestamp
	TableName         string        // default "django_session", kept from the teacher's schema
}

// Store persists signed session tokens in Postgres and verifies them on
// read. It is safe for concurrent use: the embedded Serializer is
// immutable and DBTX implementations are expected to be pool-safe.
type Store struct {
	db         DBTX
	cookieName string
	maxAge     time.Duration
	table      string
	serializer *dangerous.Serializer
}

// NewStore constructs a Store.
func NewStore(cfg StoreConfig) (*Store, error) {
	if cfg.DB == nil {
		return nil, errors.New("pgsession: database connection is required")
	}
	if len(cfg.SecretKey) == 0 {
		return nil, errors.New("pgsession: secret key is required")
	}
	if cfg.SessionCookieName == "" {
		cfg.SessionCookieName = "sessionid"
	}
	if cfg.TableName == "" {
		cfg.TableName = "django_session"
	}

	serializer, err := dangerous.URLSafeTimedSerializer(cfg.SecretKey,
		dangerous.WithSerializerSalt("pgsession.Store"))
	if err != nil {
		return nil, fmt.Errorf("pgsession: building serializer: %w", err)
	}

	return &Store{
		db:         cfg.DB,
		cookieName: cfg.SessionCookieName,
		maxAge:     cfg.MaxAge,
		table:      cfg.TableName,
		serializer: serializer,
	}, nil
}

// CookieName returns the configured session cookie name.
func (s *Store) CookieName() string {
	return s.cookieName
}

// GetRaw fetches and expiry-checks a session row without decoding its
// signed payload. This is the cheap path the middleware uses for every
// request.
func (s *Store) GetRaw(ctx context.Context, sessionKey string) (*RawSession, error) {
	if sessionKey == "" || len(sessionKey) > 255 {
		return nil, ErrSessionNotFound
	}

	var row RawSession
	query := fmt.Sprintf(`SELECT session_key, session_data, expire_date FROM %s WHERE session_key = $1`, s.table)
	err := s.db.QueryRow(ctx, query, sessionKey).Scan(&row.SessionKey, &row.SessionData, &row.ExpireDate)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrSessionNotFound
		}
		return nil, fmt.Errorf("pgsession: query failed: %w", err)
	}

	if time.Now().After(row.ExpireDate) {
		return nil, ErrSessionExpired
	}
	return &row, nil
}

// Decode verifies and decodes a session's signed payload into v. Use
// this once a handler actually needs the session contents; GetRaw alone
// is enough to gate access.
func (s *Store) Decode(sessionData string, v any) error {
	var opts []dangerous.UnsignOption
	if s.maxAge > 0 {
		opts = append(opts, dangerous.WithMaxAge(int64(s.maxAge.Seconds())))
	}
	return s.serializer.Loads([]byte(sessionData), v, opts...)
}

// Put signs payload and upserts it as sessionKey, expiring at expireAt.
func (s *Store) Put(ctx context.Context, sessionKey string, payload any, expireAt time.Time) error {
	token, err := s.serializer.Dumps(payload)
	if err != nil {
		return fmt.Errorf("pgsession: signing payload: %w", err)
	}

	query := fmt.Sprintf(`
		INSERT INTO %s (session_key, session_data, expire_date)
		VALUES ($1, $2, $3)
		ON CONFLICT (session_key) DO UPDATE
		SET session_data = EXCLUDED.session_data, expire_date = EXCLUDED.expire_date`, s.table)
	_, err = s.db.Exec(ctx, query, sessionKey, string(token), expireAt)
	if err != nil {
		return fmt.Errorf("pgsession: upsert failed: %w", err)
	}
	return nil
}

// Delete removes a session row, e.g. on logout.
func (s *Store) Delete(ctx context.Context, sessionKey string) error {
	query := fmt.Sprintf(`DELETE FROM %s WHERE session_key = $1`, s.table)
	_, err := s.db.Exec(ctx, query, sessionKey)
	if err != nil {
		return fmt.Errorf("pgsession: delete failed: %w", err)
	}
	return nil
}

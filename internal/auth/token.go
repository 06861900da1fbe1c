// Package auth implements the session core: password hashing, the signed
// token codec, session issuance, and the per-request identity resolution
// pipeline that gates every protected endpoint. Sessions are stateless; a
// token is valid exactly when its signature checks out, it has not expired,
// and it carries the kind the call site requires.
package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Kind distinguishes short-lived access tokens from long-lived refresh
// tokens. The kind is embedded in the signed claims and checked on every
// decode path, never inferred from context.
type Kind string

const (
	KindAccess  Kind = "access"
	KindRefresh Kind = "refresh"
)

// Decode results. Expired is reported separately from every other failure;
// anything structurally or cryptographically wrong collapses into malformed.
var (
	ErrTokenMalformed = errors.New("token malformed")
	ErrTokenExpired   = errors.New("token expired")
)

// Claims is the fixed claim set carried by every session token.
type Claims struct {
	Subject   string
	IssuedAt  time.Time
	ExpiresAt time.Time
	Kind      Kind
}

// wireClaims is the JSON shape on the wire: registered sub/iat/exp plus a
// custom type claim holding the kind.
type wireClaims struct {
	jwt.RegisteredClaims
	TokenType string `json:"type"`
}

// Codec signs and verifies HS256 session tokens with a process-wide symmetric
// secret. The clock is injected so expiry behavior is deterministic in tests.
type Codec struct {
	secret []byte
	now    func() time.Time
}

// NewCodec returns a Codec signing with secret and reading time from the
// system clock in UTC.
func NewCodec(secret string) *Codec {
	return NewCodecWithClock(secret, func() time.Time { return time.Now().UTC() })
}

// NewCodecWithClock is NewCodec with an explicit time source.
func NewCodecWithClock(secret string, now func() time.Time) *Codec {
	return &Codec{secret: []byte(secret), now: now}
}

// Encode builds and signs a token for subject with the given kind and TTL.
// A signing failure here means the codec is misconfigured and is surfaced as
// an ordinary error, distinct from the decode sentinels.
func (c *Codec) Encode(subject string, kind Kind, ttl time.Duration) (string, error) {
	now := c.now()
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, wireClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
		TokenType: string(kind),
	})
	return t.SignedString(c.secret)
}

// Decode verifies the signature and structure of raw and returns its claims.
// It returns ErrTokenExpired when the only problem is a passed exp, and
// ErrTokenMalformed for every other defect: bad signature, wrong algorithm,
// missing sub/exp/type, or garbage input. The signature covers the entire
// claim set, so altering any byte of the payload invalidates the token.
func (c *Codec) Decode(raw string) (Claims, error) {
	var wc wireClaims
	tok, err := jwt.ParseWithClaims(raw, &wc, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrTokenMalformed
		}
		return c.secret, nil
	}, jwt.WithTimeFunc(c.now))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return Claims{}, ErrTokenExpired
		}
		return Claims{}, ErrTokenMalformed
	}
	if !tok.Valid || wc.Subject == "" || wc.ExpiresAt == nil || wc.TokenType == "" {
		return Claims{}, ErrTokenMalformed
	}
	kind := Kind(wc.TokenType)
	if kind != KindAccess && kind != KindRefresh {
		return Claims{}, ErrTokenMalformed
	}
	cl := Claims{
		Subject:   wc.Subject,
		ExpiresAt: wc.ExpiresAt.Time,
		Kind:      kind,
	}
	if wc.IssuedAt != nil {
		cl.IssuedAt = wc.IssuedAt.Time
	}
	return cl, nil
}

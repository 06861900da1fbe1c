package auth

import "context"

// Refreshed is the outcome of a successful token refresh: one new access
// token plus the same refresh token the client sent. Refresh tokens are not
// rotated and there is no revocation list; a refresh token stays usable until
// its natural expiry. That is a documented limitation of stateless sessions,
// not an oversight.
type Refreshed struct {
	Access   string
	Refresh  string
	Username string
}

// Refresher exchanges a valid refresh token for a fresh access token without
// re-entering credentials.
type Refresher struct {
	codec  *Codec
	issuer *Issuer
}

func NewRefresher(codec *Codec, issuer *Issuer) *Refresher {
	return &Refresher{codec: codec, issuer: issuer}
}

// Refresh validates raw as a refresh token, confirms its subject still
// exists, and mints one new access token at the default TTL. Rejections are
// *AuthError; an access token presented here is ReasonWrongKind.
func (r *Refresher) Refresh(ctx context.Context, raw string, users UserLookup) (Refreshed, error) {
	claims, err := r.codec.Decode(raw)
	switch err {
	case nil:
	case ErrTokenExpired:
		return Refreshed{}, deny(ReasonExpired)
	default:
		return Refreshed{}, deny(ReasonMalformed)
	}
	if claims.Kind != KindRefresh {
		return Refreshed{}, deny(ReasonWrongKind)
	}
	u, err := users.ByUsername(ctx, claims.Subject)
	if err != nil {
		return Refreshed{}, err
	}
	if u == nil {
		return Refreshed{}, deny(ReasonUnknownSubject)
	}
	access, err := r.issuer.IssueAccess(u.Username, 0)
	if err != nil {
		return Refreshed{}, err
	}
	return Refreshed{Access: access, Refresh: raw, Username: u.Username}, nil
}

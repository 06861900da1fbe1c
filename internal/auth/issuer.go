package auth

import "time"

// Default token lifetimes. The access default fits interactive API use; the
// refresh default lets a session survive a week without re-entering
// credentials. Both can be overridden through configuration.
const (
	DefaultAccessTTL  = 30 * time.Minute
	DefaultRefreshTTL = 7 * 24 * time.Hour
)

// Pair is a freshly issued access/refresh token couple for one subject.
type Pair struct {
	Access  string
	Refresh string
}

// Issuer mints session tokens for verified identities. It holds no state
// beyond the codec and the configured TTLs.
type Issuer struct {
	codec      *Codec
	accessTTL  time.Duration
	refreshTTL time.Duration
}

// NewIssuer returns an Issuer with the given TTLs; non-positive values fall
// back to the defaults.
func NewIssuer(codec *Codec, accessTTL, refreshTTL time.Duration) *Issuer {
	if accessTTL <= 0 {
		accessTTL = DefaultAccessTTL
	}
	if refreshTTL <= 0 {
		refreshTTL = DefaultRefreshTTL
	}
	return &Issuer{codec: codec, accessTTL: accessTTL, refreshTTL: refreshTTL}
}

// Issue returns a new access/refresh pair for username. The two tokens share
// nothing but the subject.
func (i *Issuer) Issue(username string) (Pair, error) {
	access, err := i.codec.Encode(username, KindAccess, i.accessTTL)
	if err != nil {
		return Pair{}, err
	}
	refresh, err := i.codec.Encode(username, KindRefresh, i.refreshTTL)
	if err != nil {
		return Pair{}, err
	}
	return Pair{Access: access, Refresh: refresh}, nil
}

// IssueAccess returns a single access token for username. A non-positive ttl
// means the issuer default; flows that need a longer-lived access token (such
// as the registration cookie) pass an explicit override.
func (i *Issuer) IssueAccess(username string, ttl time.Duration) (string, error) {
	if ttl <= 0 {
		ttl = i.accessTTL
	}
	return i.codec.Encode(username, KindAccess, ttl)
}

// AccessTTL reports the configured default access-token lifetime.
func (i *Issuer) AccessTTL() time.Duration { return i.accessTTL }

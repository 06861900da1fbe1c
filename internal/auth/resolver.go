package auth

import (
	"context"

	"github.com/iliyamo/task-tracker/internal/model"
)

// UserLookup is the account-store capability the auth core depends on. The
// (nil, nil) return means "no such user"; errors are reserved for the store
// itself failing.
type UserLookup interface {
	ByUsername(ctx context.Context, username string) (*model.User, error)
}

// Resolver turns an inbound bearer token into an authenticated principal.
// It is stateless and safe for concurrent use from any number of requests.
type Resolver struct {
	codec *Codec
}

func NewResolver(codec *Codec) *Resolver { return &Resolver{codec: codec} }

// Resolve validates raw as an access token and loads its subject through
// users. Rejections come back as *AuthError; note that an unknown subject is
// reported with the same HTTP surface as a bad token so callers cannot probe
// which usernames exist. Only lookup infrastructure errors pass through
// untyped.
func (r *Resolver) Resolve(ctx context.Context, raw string, users UserLookup) (*model.User, error) {
	claims, err := r.codec.Decode(raw)
	switch err {
	case nil:
	case ErrTokenExpired:
		return nil, deny(ReasonExpired)
	default:
		return nil, deny(ReasonMalformed)
	}
	if claims.Kind != KindAccess {
		return nil, deny(ReasonWrongKind)
	}
	u, err := users.ByUsername(ctx, claims.Subject)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, deny(ReasonUnknownSubject)
	}
	return u, nil
}

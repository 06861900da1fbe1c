package auth

import (
	"context"

	"github.com/iliyamo/task-tracker/internal/model"
)

// Authenticator checks a username/password pair against the account store.
type Authenticator struct {
	hasher *Hasher
}

func NewAuthenticator(hasher *Hasher) *Authenticator {
	return &Authenticator{hasher: hasher}
}

// Authenticate returns the matching user, or (nil, nil) when the username is
// unknown or the password does not verify. The two cases are indistinguishable
// on purpose. An error is returned only when the lookup itself fails.
func (a *Authenticator) Authenticate(ctx context.Context, username, password string, users UserLookup) (*model.User, error) {
	u, err := users.ByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, nil
	}
	if !a.hasher.Verify(password, u.PasswordHash) {
		return nil, nil
	}
	return u, nil
}

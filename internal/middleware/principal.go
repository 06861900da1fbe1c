package middleware

// principal.go holds the context plumbing for the authenticated principal.
// JWTAuth stores the resolved user here for the duration of one request;
// nothing outlives the request.

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/task-tracker/internal/model"
)

const principalKey = "principal"

// SetCurrentUser attaches the resolved principal to the request context.
func SetCurrentUser(c echo.Context, u *model.User) {
	c.Set(principalKey, u)
}

// CurrentUser returns the principal stored by JWTAuth, or false when the
// request did not pass through the gate.
func CurrentUser(c echo.Context) (*model.User, bool) {
	u, ok := c.Get(principalKey).(*model.User)
	return u, ok && u != nil
}

// currentUsername is used by rate-limit and cache key derivation. Anonymous
// requests share the "anon" bucket.
func currentUsername(c echo.Context) string {
	if u, ok := CurrentUser(c); ok {
		return u.Username
	}
	return "anon"
}

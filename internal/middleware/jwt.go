// Package middleware provides reusable HTTP middleware: the bearer-token
// gate, Redis rate limiting and GET-response caching.
package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/task-tracker/internal/auth"
)

// JWTAuth returns an Echo middleware that validates a Bearer access token
// through the identity resolver and stores the resolved principal in the
// request context. Protected routes run behind it; handlers read the
// principal via CurrentUser.
//
// All rejections are 401. Malformed, expired, and unknown-subject tokens get
// the same "invalid token" body so the response never reveals whether a
// username exists; only a refresh token used in place of an access token is
// called out as a wrong token type. Lookup infrastructure faults are 500 with
// a generic body.
func JWTAuth(resolver *auth.Resolver, users auth.UserLookup) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			header := c.Request().Header.Get("Authorization")
			if !strings.HasPrefix(header, "Bearer ") {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "missing bearer token"})
			}
			raw := strings.TrimPrefix(header, "Bearer ")

			principal, err := resolver.Resolve(c.Request().Context(), raw, users)
			if err != nil {
				var ae *auth.AuthError
				if errors.As(err, &ae) {
					if ae.Reason == auth.ReasonWrongKind {
						return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid token type"})
					}
					return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid token"})
				}
				return c.JSON(http.StatusInternalServerError, echo.Map{"error": "authentication failed"})
			}

			SetCurrentUser(c, principal)
			return next(c)
		}
	}
}

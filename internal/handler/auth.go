package handler

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/task-tracker/internal/auth"
	"github.com/iliyamo/task-tracker/internal/config"
	"github.com/iliyamo/task-tracker/internal/middleware"
	"github.com/iliyamo/task-tracker/internal/model"
	"github.com/iliyamo/task-tracker/internal/repository"
)

// UserStore is the slice of the user repository the auth endpoints need.
// ByUsername doubles as the auth core's UserLookup capability.
type UserStore interface {
	Create(ctx context.Context, username, passwordHash string) (uint64, error)
	ByUsername(ctx context.Context, username string) (*model.User, error)
}

// AuthHandler bundles dependencies for the auth endpoints.
type AuthHandler struct {
	Cfg       config.Config
	Users     UserStore
	Hasher    *auth.Hasher
	Issuer    *auth.Issuer
	Auth      *auth.Authenticator
	Refresher *auth.Refresher
}

func NewAuthHandler(cfg config.Config, users UserStore, hasher *auth.Hasher, issuer *auth.Issuer, refresher *auth.Refresher) *AuthHandler {
	return &AuthHandler{
		Cfg:       cfg,
		Users:     users,
		Hasher:    hasher,
		Issuer:    issuer,
		Auth:      auth.NewAuthenticator(hasher),
		Refresher: refresher,
	}
}

// ----- DTOs -----

type registerReq struct {
	Username string `json:"username"`
	Password string `json:"password"`
}
type refreshReq struct {
	RefreshToken string `json:"refresh_token"`
}

type registerResp struct {
	Message     string `json:"message"`
	Username    string `json:"username"`
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}
type tokenResp struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type"`
	Username     string `json:"username"`
}

const bearerType = "bearer"

// Register creates an account and returns an access token immediately. The
// registration flow issues a longer-lived access token than login and mirrors
// it into an HttpOnly cookie so browser clients are signed in right away.
func (h *AuthHandler) Register(c echo.Context) error {
	var req registerReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if len(req.Username) < 3 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "username must be at least 3 characters long"})
	}
	if len(req.Password) < 6 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "password must be at least 6 characters long"})
	}

	hash, err := h.Hasher.Hash(req.Password)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "registration failed"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if _, err := h.Users.Create(ctx, req.Username, hash); err != nil {
		if errors.Is(err, repository.ErrUsernameExists) {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "username already exists"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "registration failed"})
	}

	ttl := time.Duration(h.Cfg.RegisterTTLMin) * time.Minute
	access, err := h.Issuer.IssueAccess(req.Username, ttl)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "issue access failed"})
	}

	c.SetCookie(&http.Cookie{
		Name:     "access_token",
		Value:    access,
		Path:     "/",
		MaxAge:   int(ttl / time.Second),
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteStrictMode,
	})

	return c.JSON(http.StatusOK, registerResp{
		Message:     "user registered successfully",
		Username:    req.Username,
		AccessToken: access,
		TokenType:   bearerType,
	})
}

// Login accepts OAuth2-style form credentials and returns a fresh
// access/refresh pair. Unknown username and wrong password produce the same
// 401 body.
func (h *AuthHandler) Login(c echo.Context) error {
	username := c.FormValue("username")
	password := c.FormValue("password")
	if username == "" || password == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "username/password required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	u, err := h.Auth.Authenticate(ctx, username, password, h.Users)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "login failed"})
	}
	if u == nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid credentials"})
	}

	pair, err := h.Issuer.Issue(u.Username)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "issue tokens failed"})
	}

	return c.JSON(http.StatusOK, tokenResp{
		AccessToken:  pair.Access,
		RefreshToken: pair.Refresh,
		TokenType:    bearerType,
		Username:     u.Username,
	})
}

// Refresh exchanges a valid refresh token for a new access token. The same
// refresh token is echoed back unchanged: refresh tokens are reusable until
// they expire and there is no revocation.
func (h *AuthHandler) Refresh(c echo.Context) error {
	var req refreshReq
	if err := c.Bind(&req); err != nil || req.RefreshToken == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "refresh_token required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	out, err := h.Refresher.Refresh(ctx, req.RefreshToken, h.Users)
	if err != nil {
		var ae *auth.AuthError
		if errors.As(err, &ae) {
			if ae.Reason == auth.ReasonWrongKind {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid token type"})
			}
			return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid refresh token"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "refresh failed"})
	}

	return c.JSON(http.StatusOK, tokenResp{
		AccessToken:  out.Access,
		RefreshToken: out.Refresh,
		TokenType:    bearerType,
		Username:     out.Username,
	})
}

// Me returns the authenticated principal.
func (h *AuthHandler) Me(c echo.Context) error {
	u, ok := middleware.CurrentUser(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	return c.JSON(http.StatusOK, echo.Map{
		"id":       u.ID,
		"username": u.Username,
	})
}

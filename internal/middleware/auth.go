// Package middleware resolves authenticated identities for protected routes.
// Ownership checks are not done here: each mutation handler compares the
// resolved identity against the resource's owner itself.
package middleware

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/FiveXSeven/synergies/internal/auth"
	apierrors "github.com/FiveXSeven/synergies/internal/errors"
	"github.com/FiveXSeven/synergies/internal/model"
	"github.com/FiveXSeven/synergies/internal/repository"
)

// SessionCookieName is the transport cookie carrying the session token.
const SessionCookieName = "session"

const identityKey = "identity"

// Identity is the resolved authenticated caller attached to the request
// context.
type Identity struct {
	ID   uuid.UUID
	Role string
}

// Session authenticates protected routes from a session token.
type Session struct {
	jwt   *auth.JWTService
	users repository.UserRepository
}

// NewSession creates the session middleware.
func NewSession(jwt *auth.JWTService, users repository.UserRepository) *Session {
	return &Session{jwt: jwt, users: users}
}

// ExtractToken returns the session token from the request, preferring the
// transport cookie and falling back to a bearer Authorization header.
func ExtractToken(c echo.Context) (string, bool) {
	if cookie, err := c.Cookie(SessionCookieName); err == nil && cookie.Value != "" {
		return cookie.Value, true
	}
	header := c.Request().Header.Get(echo.HeaderAuthorization)
	const prefix = "Bearer "
	if len(header) > len(prefix) && header[:len(prefix)] == prefix {
		return header[len(prefix):], true
	}
	return "", false
}

// Require rejects requests without a valid session. A missing token is 401;
// an invalid or expired one is 403. On success the user is re-read from the
// database so role changes and deletions take effect immediately, and the
// identity is attached to the context.
func (m *Session) Require(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		token, ok := ExtractToken(c)
		if !ok {
			return echo.NewHTTPError(http.StatusUnauthorized, apierrors.ErrorResponse{
				Error: "authentication required",
			})
		}

		claims, err := m.jwt.ValidateToken(token)
		if err != nil {
			return echo.NewHTTPError(http.StatusForbidden, apierrors.ErrorResponse{
				Error: "invalid or expired session",
			})
		}

		user, err := m.users.FindByID(c.Request().Context(), claims.UserID)
		if err != nil || user == nil {
			return echo.NewHTTPError(http.StatusForbidden, apierrors.ErrorResponse{
				Error: "invalid or expired session",
			})
		}

		c.Set(identityKey, Identity{ID: user.ID, Role: user.Role})
		return next(c)
	}
}

// RequireAdmin gates admin-only operations. Must run after Require.
func RequireAdmin(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		ident, ok := GetIdentity(c)
		if !ok || ident.Role != model.RoleAdmin {
			return echo.NewHTTPError(http.StatusForbidden, apierrors.ErrorResponse{
				Error: apierrors.ErrAdminRequired.Error(),
			})
		}
		return next(c)
	}
}

// GetIdentity returns the identity attached by Require.
func GetIdentity(c echo.Context) (Identity, bool) {
	ident, ok := c.Get(identityKey).(Identity)
	return ident, ok
}

package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/FiveXSeven/synergies/internal/auth"
	"github.com/FiveXSeven/synergies/internal/config"
	apierrors "github.com/FiveXSeven/synergies/internal/errors"
	"github.com/FiveXSeven/synergies/internal/middleware"
	"github.com/FiveXSeven/synergies/internal/model"
	"github.com/FiveXSeven/synergies/internal/service"
)

// AuthHandler handles authentication endpoints.
type AuthHandler struct {
	authService service.AuthService
	transport   string
}

// NewAuthHandler creates a new auth handler. transport selects how issued
// tokens travel: an HTTP-only cookie (default) or the JSON body for the
// legacy header-based client.
func NewAuthHandler(authService service.AuthService, transport string) *AuthHandler {
	return &AuthHandler{authService: authService, transport: transport}
}

// RegisterRequest represents an account registration request.
type RegisterRequest struct {
	Email string `json:"email" validate:"required,email"`
	PIN   string `json:"pin" validate:"required,min=4"`
	Name  string `json:"name"`
}

// LoginRequest represents a login request.
type LoginRequest struct {
	Email string `json:"email" validate:"required,email"`
	PIN   string `json:"pin" validate:"required"`
}

// AuthResponse represents an authentication response. Token is omitted in
// cookie transport mode.
type AuthResponse struct {
	Token string      `json:"token,omitempty"`
	User  *model.User `json:"user"`
}

// deliverToken places the token on the response per the configured
// transport and returns what should appear in the JSON body.
func (h *AuthHandler) deliverToken(c echo.Context, token string) string {
	if h.transport != config.SessionTransportCookie {
		return token
	}
	c.SetCookie(&http.Cookie{
		Name:     middleware.SessionCookieName,
		Value:    token,
		Path:     "/",
		Expires:  time.Now().Add(auth.SessionExpiry),
		HttpOnly: true,
		SameSite: http.SameSiteStrictMode,
	})
	return ""
}

// Register godoc
// @Summary Register a new account
// @Tags auth
// @Accept json
// @Produce json
// @Param request body RegisterRequest true "Registration data"
// @Success 201 {object} AuthResponse
// @Failure 400 {object} errors.ErrorResponse
// @Failure 429 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /auth/register [post]
func (h *AuthHandler) Register(c echo.Context) error {
	var req RegisterRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	user, token, err := h.authService.Register(c.Request().Context(), req.Email, req.PIN, req.Name)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(http.StatusCreated, AuthResponse{
		Token: h.deliverToken(c, token),
		User:  user,
	})
}

// Login godoc
// @Summary Verify credentials and issue a session
// @Tags auth
// @Accept json
// @Produce json
// @Param request body LoginRequest true "Login credentials"
// @Success 200 {object} AuthResponse
// @Failure 400 {object} errors.ErrorResponse
// @Failure 429 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /auth/login [post]
func (h *AuthHandler) Login(c echo.Context) error {
	var req LoginRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	user, token, err := h.authService.Login(c.Request().Context(), req.Email, req.PIN)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(http.StatusOK, AuthResponse{
		Token: h.deliverToken(c, token),
		User:  user,
	})
}

// Me godoc
// @Summary Resolve the current identity
// @Tags auth
// @Produce json
// @Success 200 {object} model.User
// @Failure 401 {object} errors.ErrorResponse
// @Failure 403 {object} errors.ErrorResponse
// @Router /auth/me [get]
func (h *AuthHandler) Me(c echo.Context) error {
	ident, ok := middleware.GetIdentity(c)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, apierrors.ErrorResponse{
			Error: "authentication required",
		})
	}

	user, err := h.authService.GetUser(c.Request().Context(), ident.ID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, user)
}

// Logout godoc
// @Summary Clear the session cookie
// @Tags auth
// @Produce json
// @Success 200 {object} map[string]string
// @Failure 401 {object} errors.ErrorResponse
// @Router /auth/logout [post]
func (h *AuthHandler) Logout(c echo.Context) error {
	// Tokens are stateless: clearing the cookie is the whole logout. A token
	// copied elsewhere stays valid until its natural expiry.
	c.SetCookie(&http.Cookie{
		Name:     middleware.SessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteStrictMode,
	})
	return c.JSON(http.StatusOK, map[string]string{
		"message": "logged out",
	})
}

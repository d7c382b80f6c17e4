package router

import (
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	echoSwagger "github.com/swaggo/echo-swagger"

	"github.com/FiveXSeven/synergies/docs"
	"github.com/FiveXSeven/synergies/internal/cache"
	"github.com/FiveXSeven/synergies/internal/config"
	apierrors "github.com/FiveXSeven/synergies/internal/errors"
	"github.com/FiveXSeven/synergies/internal/handler"
	"github.com/FiveXSeven/synergies/internal/middleware"
	"github.com/FiveXSeven/synergies/internal/ratelimit"
	"github.com/FiveXSeven/synergies/internal/upload"
)

// Rate limit configurations, one isolated store per route group.
const (
	globalLimitWindow  = 15 * time.Minute
	globalLimitMax     = 1000
	authLimitWindow    = 15 * time.Minute
	authLimitMax       = 100
	commentLimitWindow = 5 * time.Minute
	commentLimitMax    = 100
)

// Register wires routes and middleware.
func Register(
	e *echo.Echo,
	cfg *config.Config,
	cacheClient *cache.Client,
	session *middleware.Session,
	uploads *upload.Validator,
	authHandler *handler.AuthHandler,
	pubHandler *handler.PublicationHandler,
	commentHandler *handler.CommentHandler,
) {
	e.Use(echomw.Logger())
	e.Use(echomw.Recover())
	e.Use(echomw.CORS())

	e.Validator = &CustomValidator{validator: validator.New()}
	e.HTTPErrorHandler = errorHandler

	limiter := func(prefix string, window time.Duration, max int) echo.MiddlewareFunc {
		var store echomw.RateLimiterStore
		if cfg.RateLimitShared {
			store = ratelimit.NewRedisStore(cacheClient, prefix, window, max)
		} else {
			store = ratelimit.NewMemoryStore(window, max)
		}
		return ratelimit.Middleware(store, window)
	}
	e.Use(limiter("global", globalLimitWindow, globalLimitMax))

	e.GET("/healthz", func(c echo.Context) error {
		return c.String(http.StatusOK, "ok")
	})

	if cfg.SwaggerHost != "" {
		docs.SwaggerInfo.Host = cfg.SwaggerHost
	}
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	// Stored photos are served back with sniffing and script execution
	// disabled in that context.
	static := e.Group(upload.URLPrefix, staticHeaders)
	static.Static("/", uploads.Dir())

	api := e.Group("/api")

	// Auth routes; register/login share a tighter limiter.
	authLimited := api.Group("/auth", limiter("auth", authLimitWindow, authLimitMax))
	authLimited.POST("/register", authHandler.Register)
	authLimited.POST("/login", authHandler.Login)
	api.GET("/auth/me", authHandler.Me, session.Require)
	api.POST("/auth/logout", authHandler.Logout, session.Require)

	// Public publication routes
	api.GET("/publications", pubHandler.List)
	api.GET("/publications/:id", pubHandler.Get)
	api.POST("/publications/:id/view", pubHandler.IncrementView)

	// Owner-scoped publication routes
	api.POST("/publications", pubHandler.Create, session.Require)
	api.PUT("/publications/:id", pubHandler.Update, session.Require)
	api.DELETE("/publications/:id", pubHandler.Delete, session.Require)
	api.GET("/stats", pubHandler.Stats, session.Require)

	// Comment routes
	api.GET("/publications/:id/comments", commentHandler.List)
	api.POST("/publications/:id/comments", commentHandler.Add,
		limiter("comment", commentLimitWindow, commentLimitMax))
	api.DELETE("/comments/:id", commentHandler.Delete, session.Require, middleware.RequireAdmin)
}

// CustomValidator wraps validator for Echo.
type CustomValidator struct {
	validator *validator.Validate
}

// Validate implements echo.Validator interface.
func (cv *CustomValidator) Validate(i interface{}) error {
	return cv.validator.Struct(i)
}

// errorHandler renders every error as the {error, details} body the API
// promises, with internal detail logged rather than leaked.
func errorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	code := http.StatusInternalServerError
	body := apierrors.ErrorResponse{Error: "internal server error"}

	var he *echo.HTTPError
	if errors.As(err, &he) {
		code = he.Code
		switch m := he.Message.(type) {
		case apierrors.ErrorResponse:
			body = m
		case string:
			body = apierrors.ErrorResponse{Error: m}
		}
	}
	if code == http.StatusInternalServerError {
		log.Printf("%s %s: %v", c.Request().Method, c.Request().URL.Path, err)
	}

	if c.Request().Method == http.MethodHead {
		_ = c.NoContent(code)
		return
	}
	if jsonErr := c.JSON(code, body); jsonErr != nil {
		log.Printf("write error response: %v", jsonErr)
	}
}

func staticHeaders(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		h := c.Response().Header()
		h.Set("X-Content-Type-Options", "nosniff")
		h.Set("Content-Security-Policy", "default-src 'none'; script-src 'none'; style-src 'none'; sandbox")
		return next(c)
	}
}

package handler

import (
	"errors"
	"fmt"
	"log"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"

	apierrors "github.com/FiveXSeven/synergies/internal/errors"
)

// bindAndValidate binds the request body into req and runs schema
// validation, returning a 400 with field-level details on failure.
func bindAndValidate(c echo.Context, req interface{}) error {
	if err := c.Bind(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, apierrors.ErrorResponse{
			Error: "invalid request body",
		})
	}
	if err := c.Validate(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, apierrors.ErrorResponse{
			Error:   "validation failed",
			Details: validationDetails(err),
		})
	}
	return nil
}

func validationDetails(err error) []string {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		details := make([]string, 0, len(verrs))
		for _, fe := range verrs {
			details = append(details, fmt.Sprintf("%s failed on the %s rule", fe.Field(), fe.Tag()))
		}
		return details
	}
	return []string{err.Error()}
}

// respondError funnels service errors through the domain-to-HTTP mapping.
// Unexpected errors are logged server-side and surface as a generic 500.
func respondError(c echo.Context, err error) error {
	httpErr := apierrors.MapErrorToHTTP(err)
	if httpErr.StatusCode == http.StatusInternalServerError {
		log.Printf("%s %s: %v", c.Request().Method, c.Request().URL.Path, err)
	}
	return echo.NewHTTPError(httpErr.StatusCode, httpErr.ToErrorResponse())
}

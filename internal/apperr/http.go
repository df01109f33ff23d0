package apperr

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
)

// HTTPError maps an engine error to the echo HTTPError the handler should
// return. Non-taxonomy errors map to 500.
func HTTPError(err error) *echo.HTTPError {
	var ae *Error
	if !errors.As(err, &ae) {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	switch ae.Kind {
	case KindValidation:
		return echo.NewHTTPError(http.StatusBadRequest, ae.Message)
	case KindInvalidTransition:
		return echo.NewHTTPError(http.StatusConflict, ae.Message)
	case KindConflict:
		return echo.NewHTTPError(http.StatusConflict, ae.Message)
	case KindNotFound:
		return echo.NewHTTPError(http.StatusNotFound, ae.Message)
	case KindAuthorizationDenied:
		return echo.NewHTTPError(http.StatusForbidden, ae.Message)
	default:
		return echo.NewHTTPError(http.StatusInternalServerError, ae.Message)
	}
}

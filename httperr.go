package studiocms

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/northbeam/studiocms/store"
)

// errorBody is the JSON failure envelope: {"error": "..."}.
func errorBody(msg string) map[string]string {
	return map[string]string{"error": msg}
}

// httpStatus maps store errors onto the API's status codes.
func httpStatus(err error) int {
	switch {
	case errors.Is(err, store.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, store.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, store.ErrDuplicateKey), errors.Is(err, store.ErrConflict):
		return http.StatusConflict
	case errors.Is(err, store.ErrUnavailable):
		return http.StatusServiceUnavailable
	}
	return http.StatusInternalServerError
}

// jsonError writes err as a structured failure response.
func jsonError(c echo.Context, err error) error {
	status := httpStatus(err)
	msg := err.Error()
	if status == http.StatusInternalServerError {
		c.Logger().Error(err)
		msg = "internal server error"
	}
	return c.JSON(status, errorBody(msg))
}

// httpErrorHandler renders uncaught errors in the same envelope the
// handlers use.
func httpErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}
	status := http.StatusInternalServerError
	msg := "internal server error"
	var he *echo.HTTPError
	if errors.As(err, &he) {
		status = he.Code
		if s, ok := he.Message.(string); ok {
			msg = s
		} else {
			msg = http.StatusText(status)
		}
	} else {
		c.Logger().Error(err)
	}
	_ = c.JSON(status, errorBody(msg))
}

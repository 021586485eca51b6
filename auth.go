package studiocms

import (
	"crypto/subtle"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

type loginRequest struct {
	Password string `json:"password"`
}

// handleLogin checks the submitted password against the shared admin secret
// and, on success, mints an opaque session token behind the signed cookie.
func (a *App) handleLogin(c echo.Context) error {
	if !a.loginLimiter.Check(c.RealIP()) {
		return c.JSON(http.StatusTooManyRequests, errorBody("too many login attempts, try again later"))
	}

	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errorBody("invalid request body"))
	}

	if subtle.ConstantTimeCompare([]byte(req.Password), []byte(a.Config.AdminPassword)) != 1 {
		a.loginLimiter.Record(c.RealIP())
		return c.JSON(http.StatusUnauthorized, errorBody("invalid password"))
	}

	if err := setAdminSession(c, uuid.NewString()); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]bool{"ok": true})
}

// handleAuthCheck reports whether the caller holds a valid session.
func (a *App) handleAuthCheck(c echo.Context) error {
	if !IsAdmin(c) {
		return c.JSON(http.StatusUnauthorized, errorBody("not authenticated"))
	}
	return c.JSON(http.StatusOK, map[string]bool{"ok": true})
}

// handleLogout clears the session cookie.
func (a *App) handleLogout(c echo.Context) error {
	if err := clearAdminSession(c); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]bool{"ok": true})
}

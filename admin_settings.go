package studiocms

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

func (a *App) handleAdminGetSettings(c echo.Context) error {
	settings, err := a.Store.GetSettings()
	if err != nil {
		return jsonError(c, err)
	}
	return c.JSON(http.StatusOK, settings)
}

func (a *App) handleAdminUpdateSettings(c echo.Context) error {
	fields := map[string]any{}
	if err := c.Bind(&fields); err != nil {
		return c.JSON(http.StatusBadRequest, errorBody("invalid request body"))
	}
	settings, err := a.Store.UpdateSettings(fields)
	if err != nil {
		return jsonError(c, err)
	}
	return c.JSON(http.StatusOK, settings)
}

package studiocms

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/northbeam/studiocms/store"
)

// Authors, categories, and tags share the same CRUD shape: create derives
// the slug from the name, update merges partial fields, delete is refused
// while any post still carries the entity's display name.

func (a *App) handleAdminListAuthors(c echo.Context) error {
	authors, err := a.Store.ListAuthors()
	if err != nil {
		return jsonError(c, err)
	}
	if authors == nil {
		authors = []*store.Author{}
	}
	return c.JSON(http.StatusOK, authors)
}

func (a *App) handleAdminCreateAuthor(c echo.Context) error {
	var author store.Author
	if err := c.Bind(&author); err != nil {
		return c.JSON(http.StatusBadRequest, errorBody("invalid request body"))
	}
	created, err := a.Store.CreateAuthor(&author)
	if err != nil {
		return jsonError(c, err)
	}
	return c.JSON(http.StatusCreated, created)
}

func (a *App) handleAdminGetAuthor(c echo.Context) error {
	author, err := a.Store.GetAuthor(c.Param("slug"))
	if err != nil {
		return jsonError(c, err)
	}
	return c.JSON(http.StatusOK, author)
}

func (a *App) handleAdminUpdateAuthor(c echo.Context) error {
	fields := map[string]any{}
	if err := c.Bind(&fields); err != nil {
		return c.JSON(http.StatusBadRequest, errorBody("invalid request body"))
	}
	author, err := a.Store.UpdateAuthor(c.Param("slug"), fields)
	if err != nil {
		return jsonError(c, err)
	}
	return c.JSON(http.StatusOK, author)
}

func (a *App) handleAdminDeleteAuthor(c echo.Context) error {
	if err := a.Store.DeleteAuthor(c.Param("slug")); err != nil {
		return jsonError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (a *App) handleAdminListCategories(c echo.Context) error {
	categories, err := a.Store.ListCategories()
	if err != nil {
		return jsonError(c, err)
	}
	if categories == nil {
		categories = []*store.Category{}
	}
	return c.JSON(http.StatusOK, categories)
}

func (a *App) handleAdminCreateCategory(c echo.Context) error {
	var category store.Category
	if err := c.Bind(&category); err != nil {
		return c.JSON(http.StatusBadRequest, errorBody("invalid request body"))
	}
	created, err := a.Store.CreateCategory(&category)
	if err != nil {
		return jsonError(c, err)
	}
	return c.JSON(http.StatusCreated, created)
}

func (a *App) handleAdminGetCategory(c echo.Context) error {
	category, err := a.Store.GetCategory(c.Param("slug"))
	if err != nil {
		return jsonError(c, err)
	}
	return c.JSON(http.StatusOK, category)
}

func (a *App) handleAdminUpdateCategory(c echo.Context) error {
	fields := map[string]any{}
	if err := c.Bind(&fields); err != nil {
		return c.JSON(http.StatusBadRequest, errorBody("invalid request body"))
	}
	category, err := a.Store.UpdateCategory(c.Param("slug"), fields)
	if err != nil {
		return jsonError(c, err)
	}
	return c.JSON(http.StatusOK, category)
}

func (a *App) handleAdminDeleteCategory(c echo.Context) error {
	if err := a.Store.DeleteCategory(c.Param("slug")); err != nil {
		return jsonError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (a *App) handleAdminListTags(c echo.Context) error {
	tags, err := a.Store.ListTags()
	if err != nil {
		return jsonError(c, err)
	}
	if tags == nil {
		tags = []*store.Tag{}
	}
	return c.JSON(http.StatusOK, tags)
}

func (a *App) handleAdminCreateTag(c echo.Context) error {
	var tag store.Tag
	if err := c.Bind(&tag); err != nil {
		return c.JSON(http.StatusBadRequest, errorBody("invalid request body"))
	}
	created, err := a.Store.CreateTag(&tag)
	if err != nil {
		return jsonError(c, err)
	}
	return c.JSON(http.StatusCreated, created)
}

func (a *App) handleAdminGetTag(c echo.Context) error {
	tag, err := a.Store.GetTag(c.Param("slug"))
	if err != nil {
		return jsonError(c, err)
	}
	return c.JSON(http.StatusOK, tag)
}

func (a *App) handleAdminUpdateTag(c echo.Context) error {
	fields := map[string]any{}
	if err := c.Bind(&fields); err != nil {
		return c.JSON(http.StatusBadRequest, errorBody("invalid request body"))
	}
	tag, err := a.Store.UpdateTag(c.Param("slug"), fields)
	if err != nil {
		return jsonError(c, err)
	}
	return c.JSON(http.StatusOK, tag)
}

func (a *App) handleAdminDeleteTag(c echo.Context) error {
	if err := a.Store.DeleteTag(c.Param("slug")); err != nil {
		return jsonError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

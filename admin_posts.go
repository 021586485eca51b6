package studiocms

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/northbeam/studiocms/listview"
	"github.com/northbeam/studiocms/markdown"
	"github.com/northbeam/studiocms/store"
)

// handleAdminListPosts fetches the full post collection and computes the
// requested list page in memory: search, filters, stable sort, pagination.
func (a *App) handleAdminListPosts(c echo.Context) error {
	posts, err := a.Store.ListPosts(store.PostFilter{})
	if err != nil {
		return jsonError(c, err)
	}

	page, _ := strconv.Atoi(c.QueryParam("page"))
	perPage, _ := strconv.Atoi(c.QueryParam("per_page"))
	result := listview.Posts(posts, listview.Params{
		Query:    c.QueryParam("q"),
		Status:   c.QueryParam("status"),
		Category: c.QueryParam("category"),
		Author:   c.QueryParam("author"),
		SortBy:   c.QueryParam("sort"),
		Order:    c.QueryParam("order"),
		Page:     page,
		PerPage:  perPage,
	})
	return c.JSON(http.StatusOK, result)
}

func (a *App) handleAdminCreatePost(c echo.Context) error {
	var post store.Post
	if err := c.Bind(&post); err != nil {
		return c.JSON(http.StatusBadRequest, errorBody("invalid request body"))
	}

	// Editors may leave excerpt and reading time blank; derive both from
	// the markdown content.
	if post.Excerpt == "" && post.Content != "" {
		post.Excerpt = markdown.Excerpt(post.Content, 200)
	}
	if post.ReadingTime == "" && post.Content != "" {
		post.ReadingTime = markdown.ReadingTime(post.Content)
	}

	created, err := a.Store.CreatePost(&post)
	if err != nil {
		return jsonError(c, err)
	}
	a.Cache.Invalidate()
	return c.JSON(http.StatusCreated, created)
}

func (a *App) handleAdminGetPost(c echo.Context) error {
	post, err := a.Store.GetPost(c.Param("slug"))
	if err != nil {
		return jsonError(c, err)
	}
	return c.JSON(http.StatusOK, post)
}

func (a *App) handleAdminUpdatePost(c echo.Context) error {
	fields := map[string]any{}
	if err := c.Bind(&fields); err != nil {
		return c.JSON(http.StatusBadRequest, errorBody("invalid request body"))
	}
	post, err := a.Store.UpdatePost(c.Param("slug"), fields)
	if err != nil {
		return jsonError(c, err)
	}
	a.Cache.Invalidate()
	return c.JSON(http.StatusOK, post)
}

func (a *App) handleAdminDeletePost(c echo.Context) error {
	if err := a.Store.DeletePost(c.Param("slug")); err != nil {
		return jsonError(c, err)
	}
	a.Cache.Invalidate()
	return c.NoContent(http.StatusNoContent)
}

type bulkDeleteRequest struct {
	Slugs []string `json:"slugs"`
}

type bulkDeleteResult struct {
	Slug  string `json:"slug"`
	OK    bool   `json:"ok"`
	Error string `json:"error,omitempty"`
}

// handleAdminBulkDeletePosts deletes each selected slug in sequence. The
// operation is best-effort, not atomic: a failure is recorded and the loop
// moves on, so a partial run leaves some posts deleted and others intact.
func (a *App) handleAdminBulkDeletePosts(c echo.Context) error {
	var req bulkDeleteRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errorBody("invalid request body"))
	}
	if len(req.Slugs) == 0 {
		return c.JSON(http.StatusBadRequest, errorBody("no slugs supplied"))
	}

	results := make([]bulkDeleteResult, 0, len(req.Slugs))
	for _, slug := range req.Slugs {
		if err := a.Store.DeletePost(slug); err != nil {
			results = append(results, bulkDeleteResult{Slug: slug, Error: err.Error()})
			continue
		}
		results = append(results, bulkDeleteResult{Slug: slug, OK: true})
	}
	a.Cache.Invalidate()
	return c.JSON(http.StatusOK, map[string]any{"results": results})
}

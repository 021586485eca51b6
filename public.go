package studiocms

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/northbeam/studiocms/store"
)

// handleListPublished serves the marketing site's post list: published
// posts only, optionally narrowed by category, tag, author, or featured.
func (a *App) handleListPublished(c echo.Context) error {
	posts, err := a.Cache.ListPublished(
		c.QueryParam("category"),
		c.QueryParam("tag"),
		c.QueryParam("author"),
	)
	if err != nil {
		return jsonError(c, err)
	}
	if c.QueryParam("featured") == "true" {
		var featured []*store.Post
		for _, p := range posts {
			if p.Featured {
				featured = append(featured, p)
			}
		}
		posts = featured
	}
	if posts == nil {
		posts = []*store.Post{}
	}
	return c.JSON(http.StatusOK, posts)
}

// handleGetPublished returns one published post and bumps its view counter.
// Drafts are invisible here regardless of slug knowledge.
func (a *App) handleGetPublished(c echo.Context) error {
	slug := c.Param("slug")
	post, err := a.Store.GetPost(slug)
	if err != nil {
		return jsonError(c, err)
	}
	if post.Draft {
		return c.JSON(http.StatusNotFound, errorBody("post not found"))
	}
	views, err := a.Store.IncrementViews(slug)
	if err != nil {
		return jsonError(c, err)
	}
	post.Views = views
	return c.JSON(http.StatusOK, post)
}

// handleSearch runs a full-text query over published posts.
func (a *App) handleSearch(c echo.Context) error {
	q := c.QueryParam("q")
	if q == "" {
		return c.JSON(http.StatusBadRequest, errorBody("missing query parameter q"))
	}
	results, err := a.Store.SearchPosts(q)
	if err != nil {
		return jsonError(c, err)
	}
	published := make([]*store.Post, 0, len(results))
	for _, p := range results {
		if !p.Draft {
			published = append(published, p)
		}
	}
	return c.JSON(http.StatusOK, published)
}

func (a *App) handlePublicCategories(c echo.Context) error {
	categories, err := a.Store.ListCategories()
	if err != nil {
		return jsonError(c, err)
	}
	if categories == nil {
		categories = []*store.Category{}
	}
	return c.JSON(http.StatusOK, categories)
}

func (a *App) handlePublicTags(c echo.Context) error {
	tags, err := a.Store.ListTags()
	if err != nil {
		return jsonError(c, err)
	}
	if tags == nil {
		tags = []*store.Tag{}
	}
	return c.JSON(http.StatusOK, tags)
}

func (a *App) handlePublicAuthors(c echo.Context) error {
	authors, err := a.Store.ListAuthors()
	if err != nil {
		return jsonError(c, err)
	}
	if authors == nil {
		authors = []*store.Author{}
	}
	return c.JSON(http.StatusOK, authors)
}

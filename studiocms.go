// Package studiocms is the content backend for the Northbeam agency site:
// a JSON CRUD API over the document store, a cookie-gated admin surface,
// media upload and serving, and the public read endpoints the marketing
// pages fetch from. Page rendering is owned by the frontend; this package
// only ships data.
package studiocms

import (
	"fmt"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/northbeam/studiocms/blob"
	"github.com/northbeam/studiocms/store"
)

// App wires together the store, blob storage, cache, handlers, and
// middleware. Construct with New, then Start.
type App struct {
	Config Config
	Echo   *echo.Echo
	Store  *store.Store
	Cache  *PostCache
	Blobs  blob.Storage

	loginLimiter *LoginLimiter
	customRoutes []func(*App)
}

// New creates an App with the given configuration.
func New(cfg Config, opts ...Option) *App {
	cfg.setDefaults()

	a := &App{
		Config: cfg,
		Echo:   echo.New(),
	}

	for _, opt := range opts {
		opt(a)
	}

	return a
}

// Start opens the store, sets up middleware and routes, and runs the
// server until it is shut down.
func (a *App) Start() error {
	if a.Config.AdminPassword == "" {
		return fmt.Errorf("studiocms: AdminPassword is required")
	}
	if a.Config.SessionSecret == "" {
		return fmt.Errorf("studiocms: SessionSecret is required")
	}

	st, err := store.Open(a.Config.DataDir, a.Config.Logger)
	if err != nil {
		return fmt.Errorf("studiocms: open store: %w", err)
	}
	a.Store = st

	if a.Blobs == nil {
		blobs, err := a.Config.blobStorage()
		if err != nil {
			return fmt.Errorf("studiocms: init blob storage: %w", err)
		}
		a.Blobs = blobs
	}

	a.Cache = NewPostCache(a.Store, a.Config.PostCacheTTL)
	a.loginLimiter = NewLoginLimiter(5, time.Minute)

	a.setupMiddleware()
	a.setupRoutes()

	for _, fn := range a.customRoutes {
		fn(a)
	}

	if err := a.Echo.Start(a.Config.Addr); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

func (a *App) setupRoutes() {
	e := a.Echo

	// Public read API, the marketing site's data source.
	e.GET("/api/posts", a.handleListPublished)
	e.GET("/api/posts/:slug", a.handleGetPublished)
	e.GET("/api/search", a.handleSearch)
	e.GET("/api/categories", a.handlePublicCategories)
	e.GET("/api/tags", a.handlePublicTags)
	e.GET("/api/authors", a.handlePublicAuthors)

	// Auth.
	e.POST("/api/auth/login", a.handleLogin)
	e.GET("/api/auth/check", a.handleAuthCheck)
	e.POST("/api/auth/logout", a.handleLogout)

	// Admin CRUD, gated by the session guard.
	admin := e.Group("/api/admin", a.requireAdmin)
	admin.GET("/posts", a.handleAdminListPosts)
	admin.POST("/posts", a.handleAdminCreatePost)
	admin.POST("/posts/bulk-delete", a.handleAdminBulkDeletePosts)
	admin.GET("/posts/:slug", a.handleAdminGetPost)
	admin.PUT("/posts/:slug", a.handleAdminUpdatePost)
	admin.DELETE("/posts/:slug", a.handleAdminDeletePost)

	admin.GET("/authors", a.handleAdminListAuthors)
	admin.POST("/authors", a.handleAdminCreateAuthor)
	admin.GET("/authors/:slug", a.handleAdminGetAuthor)
	admin.PUT("/authors/:slug", a.handleAdminUpdateAuthor)
	admin.DELETE("/authors/:slug", a.handleAdminDeleteAuthor)

	admin.GET("/categories", a.handleAdminListCategories)
	admin.POST("/categories", a.handleAdminCreateCategory)
	admin.GET("/categories/:slug", a.handleAdminGetCategory)
	admin.PUT("/categories/:slug", a.handleAdminUpdateCategory)
	admin.DELETE("/categories/:slug", a.handleAdminDeleteCategory)

	admin.GET("/tags", a.handleAdminListTags)
	admin.POST("/tags", a.handleAdminCreateTag)
	admin.GET("/tags/:slug", a.handleAdminGetTag)
	admin.PUT("/tags/:slug", a.handleAdminUpdateTag)
	admin.DELETE("/tags/:slug", a.handleAdminDeleteTag)

	admin.GET("/media", a.handleAdminListMedia)
	admin.POST("/media", a.handleAdminUploadMedia)
	admin.PUT("/media/:filename", a.handleAdminUpdateMedia)
	admin.DELETE("/media/:filename", a.handleAdminDeleteMedia)

	admin.GET("/settings", a.handleAdminGetSettings)
	admin.PUT("/settings", a.handleAdminUpdateSettings)

	// Uploaded files, whichever backend holds them.
	e.GET("/media/:filename", a.handleServeMedia)

	// The admin SPA shell: everything under /admin except the login page
	// redirects to login without a session.
	e.GET("/admin", a.handleAdminPage)
	e.GET("/admin/*", a.handleAdminPage)
}

// Close cleans up resources. Call when the app is shutting down.
func (a *App) Close() error {
	if a.Store != nil {
		return a.Store.Close()
	}
	return nil
}

// EnvOr returns the value of the environment variable key, or fallback if
// empty.
func EnvOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// MustEnv returns the value of the environment variable key, or fatally
// exits if empty.
func MustEnv(key string) string {
	v := os.Getenv(key)
	if v == "" {
		log.Fatalf("studiocms: required environment variable %s is not set", key)
	}
	return v
}

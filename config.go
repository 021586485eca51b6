package studiocms

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/northbeam/studiocms/blob"
)

// Config holds all configuration for a studiocms instance. Values come from
// an optional TOML file overridden by environment variables; see LoadConfig.
type Config struct {
	SiteName string `toml:"site_name"`
	SiteURL  string `toml:"site_url"`

	Addr    string `toml:"addr"`
	DataDir string `toml:"data_dir"`

	AdminPassword string `toml:"-"`
	SessionSecret string `toml:"-"`
	CookieSecure  bool   `toml:"cookie_secure"`

	// Blob storage: "local" serves files from UploadDir; "remote" proxies an
	// object store addressed by site id and token.
	BlobBackend  string `toml:"blob_backend"`
	UploadDir    string `toml:"upload_dir"`
	BlobEndpoint string `toml:"blob_endpoint"`
	BlobSiteID   string `toml:"-"`
	BlobToken    string `toml:"-"`

	PostCacheTTL time.Duration `toml:"-"`

	Logger *slog.Logger `toml:"-"`
}

func (c *Config) setDefaults() {
	if c.SiteName == "" {
		c.SiteName = "Northbeam Studio"
	}
	if c.SiteURL == "" {
		c.SiteURL = "http://localhost:3000"
	}
	if c.Addr == "" {
		c.Addr = ":3000"
	}
	if c.DataDir == "" {
		c.DataDir = "data"
	}
	if c.BlobBackend == "" {
		c.BlobBackend = "local"
	}
	if c.UploadDir == "" {
		c.UploadDir = "data/uploads"
	}
	if c.PostCacheTTL == 0 {
		c.PostCacheTTL = 5 * time.Minute
	}
	if c.Logger == nil {
		c.Logger = slog.New(slog.NewTextHandler(os.Stderr, nil))
	}
}

func (c *Config) blobStorage() (blob.Storage, error) {
	if c.BlobBackend == "remote" {
		if c.BlobSiteID == "" || c.BlobToken == "" {
			return nil, fmt.Errorf("remote blob storage requires a site id and token")
		}
		return blob.NewRemote(c.BlobEndpoint, c.BlobSiteID, c.BlobToken), nil
	}
	return blob.NewLocal(c.UploadDir, "/media")
}

// LoadConfig reads the optional TOML file at path (skipped when path is
// empty or missing), then applies environment overrides. Secrets only come
// from the environment.
func LoadConfig(path string) (Config, error) {
	var cfg Config
	if path != "" {
		if _, err := toml.DecodeFile(path, &cfg); err != nil && !os.IsNotExist(err) {
			return cfg, fmt.Errorf("load config %s: %w", path, err)
		}
	}

	cfg.SiteName = EnvOr("STUDIOCMS_SITE_NAME", cfg.SiteName)
	cfg.SiteURL = EnvOr("STUDIOCMS_SITE_URL", cfg.SiteURL)
	cfg.Addr = EnvOr("STUDIOCMS_ADDR", cfg.Addr)
	cfg.DataDir = EnvOr("STUDIOCMS_DATA_DIR", cfg.DataDir)
	cfg.AdminPassword = os.Getenv("STUDIOCMS_ADMIN_PASSWORD")
	cfg.SessionSecret = os.Getenv("STUDIOCMS_SESSION_SECRET")
	cfg.CookieSecure = os.Getenv("STUDIOCMS_COOKIE_SECURE") == "true" || cfg.CookieSecure
	cfg.BlobBackend = EnvOr("STUDIOCMS_BLOB_BACKEND", cfg.BlobBackend)
	cfg.UploadDir = EnvOr("STUDIOCMS_UPLOAD_DIR", cfg.UploadDir)
	cfg.BlobEndpoint = EnvOr("STUDIOCMS_BLOB_ENDPOINT", cfg.BlobEndpoint)
	cfg.BlobSiteID = os.Getenv("STUDIOCMS_BLOB_SITE_ID")
	cfg.BlobToken = os.Getenv("STUDIOCMS_BLOB_TOKEN")
	return cfg, nil
}

// Option configures additional App behavior.
type Option func(*App)

// WithBlobStorage overrides the storage backend built from Config.
func WithBlobStorage(s blob.Storage) Option {
	return func(a *App) {
		a.Blobs = s
	}
}

// WithCustomRoutes registers additional routes on the Echo instance before
// the server starts.
func WithCustomRoutes(fn func(*App)) Option {
	return func(a *App) {
		a.customRoutes = append(a.customRoutes, fn)
	}
}

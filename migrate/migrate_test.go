package migrate_test

import (
	"bytes"
	"database/sql"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"

	"github.com/northbeam/studiocms/migrate"
	"github.com/northbeam/studiocms/store"
)

const sourceSchema = `
CREATE TABLE authors (name TEXT, bio TEXT, avatar TEXT, email TEXT, twitter TEXT, linkedin TEXT, github TEXT, website TEXT);
CREATE TABLE categories (name TEXT, description TEXT, color TEXT, icon TEXT, sort_order INTEGER);
CREATE TABLE tags (name TEXT);
CREATE TABLE media (filename TEXT, original_name TEXT, url TEXT, mime_type TEXT, size INTEGER, width INTEGER, height INTEGER, alt TEXT, caption TEXT);
CREATE TABLE posts (title TEXT, slug TEXT, content TEXT, excerpt TEXT, published_at TEXT, author TEXT, author_image TEXT, cover_image TEXT, category TEXT, tags TEXT, draft INTEGER, featured INTEGER, seo_title TEXT, seo_description TEXT, seo_keywords TEXT, social_image TEXT);
`

func newSourceDB(t *testing.T, statements ...string) *migrate.Source {
	t.Helper()
	path := filepath.Join(t.TempDir(), "legacy.db")

	db, err := sql.Open("sqlite", path)
	require.NoError(t, err)
	_, err = db.Exec(sourceSchema)
	require.NoError(t, err)
	for _, stmt := range statements {
		_, err = db.Exec(stmt)
		require.NoError(t, err)
	}
	require.NoError(t, db.Close())

	src, err := migrate.OpenSource(path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = src.Close() })
	return src
}

func newDestStore(t *testing.T) *store.Store {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
	s, err := store.Open(t.TempDir(), logger)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

func TestFullMigration(t *testing.T) {
	src := newSourceDB(t,
		`INSERT INTO authors VALUES ('Ada Lovelace', 'bio', '', 'ada@example.com', '', '', '', '')`,
		`INSERT INTO categories VALUES ('Engineering', 'tech posts', '#336699', '', 1)`,
		`INSERT INTO tags VALUES ('go'), ('web')`,
		`INSERT INTO media VALUES ('hero.jpg', 'DSC_0001.jpg', '/media/hero.jpg', 'image/jpeg', 2048, 1600, 900, 'hero shot', '')`,
		`INSERT INTO posts VALUES ('Launch Day', 'launch-day', 'We shipped.', 'We shipped.', '2024-03-15', 'Ada Lovelace', '', '', 'Engineering', ',go,web,', 0, 1, '', '', '', '')`,
	)
	dst := newDestStore(t)

	report, err := migrate.New(src, dst, testLogger()).Run()
	require.NoError(t, err)

	assert.Equal(t, 1, report.Authors.Migrated)
	assert.Equal(t, 1, report.Categories.Migrated)
	assert.Equal(t, 2, report.Tags.Migrated)
	assert.Equal(t, 1, report.Media.Migrated)
	assert.Equal(t, 1, report.Posts.Migrated)

	post, err := dst.GetPost("launch-day")
	require.NoError(t, err)
	assert.Equal(t, "Launch Day", post.Title)
	assert.Equal(t, []string{"go", "web"}, post.Tags)
	assert.True(t, post.Featured)
	assert.False(t, post.Draft)
	assert.Equal(t, "2024-03-15", post.PublishedAt.Format("2006-01-02"))

	author, err := dst.GetAuthor("ada-lovelace")
	require.NoError(t, err)
	assert.Equal(t, 1, author.PostCount)

	media, err := dst.GetMedia("hero.jpg")
	require.NoError(t, err)
	assert.Equal(t, "local", media.Backend)
}

func TestAuthorCollisionsAreIsolated(t *testing.T) {
	src := newSourceDB(t,
		`INSERT INTO authors VALUES ('Ada Lovelace', '', '', '', '', '', '', '')`,
		`INSERT INTO authors VALUES ('Bram Stoker', '', '', '', '', '', '', '')`,
		`INSERT INTO authors VALUES ('Cleo Park', '', '', '', '', '', '', '')`,
	)
	dst := newDestStore(t)

	// Two of the three source names collide with slugs already present.
	_, err := dst.CreateAuthor(&store.Author{Name: "Ada Lovelace"})
	require.NoError(t, err)
	_, err = dst.CreateAuthor(&store.Author{Name: "Bram Stoker"})
	require.NoError(t, err)

	report, err := migrate.New(src, dst, testLogger()).Run()
	require.NoError(t, err)

	assert.Equal(t, 3, report.Authors.Attempted)
	assert.Equal(t, 1, report.Authors.Migrated)
	assert.Equal(t, 2, report.Authors.Failed)

	names := make([]string, 0, 2)
	for _, f := range report.Authors.Failures {
		names = append(names, f.Name)
	}
	assert.ElementsMatch(t, []string{"Ada Lovelace", "Bram Stoker"}, names)
}

func TestRerunReportsDuplicatesWithoutOverwriting(t *testing.T) {
	src := newSourceDB(t,
		`INSERT INTO posts VALUES ('Original', 'original', 'first pass', '', '2024-01-01', '', '', '', '', '', 0, 0, '', '', '', '')`,
	)
	dst := newDestStore(t)
	logger := testLogger()

	report, err := migrate.New(src, dst, logger).Run()
	require.NoError(t, err)
	assert.Equal(t, 1, report.Posts.Migrated)

	report, err = migrate.New(src, dst, logger).Run()
	require.NoError(t, err)
	assert.Equal(t, 0, report.Posts.Migrated)
	assert.Equal(t, 1, report.Posts.Failed)

	post, err := dst.GetPost("original")
	require.NoError(t, err)
	assert.Equal(t, "first pass", post.Content)
}

func TestBadRowDoesNotAbortPhase(t *testing.T) {
	src := newSourceDB(t,
		`INSERT INTO posts VALUES ('', 'untitled', 'no title row', '', '2024-01-01', '', '', '', '', '', 0, 0, '', '', '', '')`,
		`INSERT INTO posts VALUES ('Survivor', 'survivor', 'made it', '', '2024-01-02', '', '', '', '', '', 0, 0, '', '', '', '')`,
	)
	dst := newDestStore(t)

	report, err := migrate.New(src, dst, testLogger()).Run()
	require.NoError(t, err)
	assert.Equal(t, 1, report.Posts.Migrated)
	assert.Equal(t, 1, report.Posts.Failed)

	_, err = dst.GetPost("survivor")
	require.NoError(t, err)
}

func TestReportWrite(t *testing.T) {
	r := &migrate.Report{}
	r.Authors.Attempted = 3
	r.Authors.Migrated = 1
	r.Authors.Failed = 2
	r.Authors.Failures = []migrate.Failure{
		{Name: "Ada Lovelace", Reason: "duplicate key"},
		{Name: "Bram Stoker", Reason: "duplicate key"},
	}

	var buf bytes.Buffer
	r.Write(&buf)

	out := buf.String()
	assert.Contains(t, out, "authors")
	assert.Contains(t, out, "migrated: 1")
	assert.Contains(t, out, "failed: 2")
	assert.Contains(t, out, `"Ada Lovelace"`)
	assert.Contains(t, out, `"Bram Stoker"`)
}

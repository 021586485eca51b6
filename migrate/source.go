package migrate

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "modernc.org/sqlite"
)

// Source reads the legacy relational database. Rows come back in raw form;
// the migrator is responsible for mapping them onto store documents.
type Source struct {
	db *sql.DB
}

// OpenSource opens the legacy SQLite database at path read-only.
func OpenSource(path string) (*Source, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open source database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping source database: %w", err)
	}
	return &Source{db: db}, nil
}

// Close closes the source database.
func (s *Source) Close() error {
	return s.db.Close()
}

// SourceAuthor is an author row from the legacy database.
type SourceAuthor struct {
	Name     string
	Bio      string
	Avatar   string
	Email    string
	Twitter  string
	LinkedIn string
	GitHub   string
	Website  string
}

// SourceCategory is a category row from the legacy database.
type SourceCategory struct {
	Name        string
	Description string
	Color       string
	Icon        string
	SortOrder   int
}

// SourceMedia is a media row from the legacy database.
type SourceMedia struct {
	Filename     string
	OriginalName string
	URL          string
	MimeType     string
	Size         int64
	Width        int
	Height       int
	Alt          string
	Caption      string
}

// SourcePost is a post row from the legacy database. Tags are stored as a
// comma-delimited string in the legacy schema.
type SourcePost struct {
	Title       string
	Slug        string
	Content     string
	Excerpt     string
	PublishedAt string
	Author      string
	AuthorImage string
	CoverImage  string
	Category    string
	Tags        []string
	Draft       bool
	Featured    bool
	SEOTitle    string
	SEODesc     string
	SEOKeywords string
	SocialImage string
}

// PublishedTime parses the legacy date column (YYYY-MM-DD).
func (p SourcePost) PublishedTime() time.Time {
	t, err := time.Parse("2006-01-02", p.PublishedAt)
	if err != nil {
		return time.Time{}
	}
	return t
}

func (s *Source) Authors() ([]SourceAuthor, error) {
	rows, err := s.db.Query(`SELECT name, bio, avatar, email, twitter, linkedin, github, website FROM authors ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("query authors: %w", err)
	}
	defer rows.Close()

	var authors []SourceAuthor
	for rows.Next() {
		var a SourceAuthor
		if err := rows.Scan(&a.Name, &a.Bio, &a.Avatar, &a.Email, &a.Twitter, &a.LinkedIn, &a.GitHub, &a.Website); err != nil {
			return nil, fmt.Errorf("scan author: %w", err)
		}
		authors = append(authors, a)
	}
	return authors, rows.Err()
}

func (s *Source) Categories() ([]SourceCategory, error) {
	rows, err := s.db.Query(`SELECT name, description, color, icon, sort_order FROM categories ORDER BY sort_order, name`)
	if err != nil {
		return nil, fmt.Errorf("query categories: %w", err)
	}
	defer rows.Close()

	var categories []SourceCategory
	for rows.Next() {
		var c SourceCategory
		if err := rows.Scan(&c.Name, &c.Description, &c.Color, &c.Icon, &c.SortOrder); err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		categories = append(categories, c)
	}
	return categories, rows.Err()
}

func (s *Source) Tags() ([]string, error) {
	rows, err := s.db.Query(`SELECT name FROM tags ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("query tags: %w", err)
	}
	defer rows.Close()

	var tags []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("scan tag: %w", err)
		}
		tags = append(tags, name)
	}
	return tags, rows.Err()
}

func (s *Source) Media() ([]SourceMedia, error) {
	rows, err := s.db.Query(`SELECT filename, original_name, url, mime_type, size, width, height, alt, caption FROM media ORDER BY filename`)
	if err != nil {
		return nil, fmt.Errorf("query media: %w", err)
	}
	defer rows.Close()

	var media []SourceMedia
	for rows.Next() {
		var m SourceMedia
		if err := rows.Scan(&m.Filename, &m.OriginalName, &m.URL, &m.MimeType, &m.Size, &m.Width, &m.Height, &m.Alt, &m.Caption); err != nil {
			return nil, fmt.Errorf("scan media: %w", err)
		}
		media = append(media, m)
	}
	return media, rows.Err()
}

func (s *Source) Posts() ([]SourcePost, error) {
	rows, err := s.db.Query(`SELECT title, slug, content, excerpt, published_at, author, author_image, cover_image, category, tags, draft, featured, seo_title, seo_description, seo_keywords, social_image FROM posts ORDER BY published_at`)
	if err != nil {
		return nil, fmt.Errorf("query posts: %w", err)
	}
	defer rows.Close()

	var posts []SourcePost
	for rows.Next() {
		var p SourcePost
		var tags string
		var draft, featured int
		if err := rows.Scan(&p.Title, &p.Slug, &p.Content, &p.Excerpt, &p.PublishedAt, &p.Author, &p.AuthorImage, &p.CoverImage, &p.Category, &tags, &draft, &featured, &p.SEOTitle, &p.SEODesc, &p.SEOKeywords, &p.SocialImage); err != nil {
			return nil, fmt.Errorf("scan post: %w", err)
		}
		p.Tags = parseTags(tags)
		p.Draft = draft == 1
		p.Featured = featured == 1
		posts = append(posts, p)
	}
	return posts, rows.Err()
}

// parseTags splits the legacy comma-delimited tag column (e.g. ",go,web,")
// into a clean slice.
func parseTags(tagString string) []string {
	tagString = strings.Trim(tagString, ",")
	if tagString == "" {
		return nil
	}
	parts := strings.Split(tagString, ",")
	out := parts[:0]
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

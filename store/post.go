package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"go.etcd.io/bbolt"
)

// Post is a blog post document. Author, Category, and Tags are denormalized
// display names, not foreign keys; the name-equality join lives behind the
// CountPostsBy* methods so the strategy can change without touching callers.
type Post struct {
	Slug        string    `json:"slug"`
	Title       string    `json:"title"`
	Content     string    `json:"content"`
	Excerpt     string    `json:"excerpt"`
	PublishedAt time.Time `json:"publishedAt"`
	Author      string    `json:"author"`
	AuthorImage string    `json:"authorImage"`
	CoverImage  string    `json:"coverImage"`
	Category    string    `json:"category"`
	Tags        []string  `json:"tags"`
	Draft       bool      `json:"draft"`
	Featured    bool      `json:"featured"`
	ReadingTime string    `json:"readingTime"`
	Views       int       `json:"views"`

	SEOTitle       string `json:"seoTitle"`
	SEODescription string `json:"seoDescription"`
	SEOKeywords    string `json:"seoKeywords"`
	SocialImage    string `json:"socialImage"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// PostFilter narrows ListPosts results. Nil flag pointers mean "any".
type PostFilter struct {
	Category string
	Tag      string
	Author   string
	Draft    *bool
	Featured *bool
}

// CreatePost validates and stores a new post. The slug is derived from the
// title when absent; a duplicate slug is rejected without touching the
// stored document.
func (s *Store) CreatePost(p *Post) (*Post, error) {
	if strings.TrimSpace(p.Title) == "" {
		return nil, fmt.Errorf("%w: title", ErrValidation)
	}
	if p.Slug == "" {
		p.Slug = Slugify(p.Title)
	}
	if p.Slug == "" {
		return nil, fmt.Errorf("%w: slug", ErrValidation)
	}
	if p.PublishedAt.IsZero() {
		p.PublishedAt = time.Now().UTC()
	}
	now := time.Now().UTC()
	p.CreatedAt = now
	p.UpdatedAt = now
	p.Views = 0

	if err := s.putDoc(bucketPosts, p.Slug, p, false); err != nil {
		return nil, err
	}
	if err := s.index.Index(p.Slug, p); err != nil {
		return nil, fmt.Errorf("index post %s: %w", p.Slug, err)
	}
	return p, nil
}

// GetPost returns the post stored under slug.
func (s *Store) GetPost(slug string) (*Post, error) {
	var p Post
	if err := s.getDoc(bucketPosts, slug, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// ListPosts returns posts matching filter, newest first.
func (s *Store) ListPosts(filter PostFilter) ([]*Post, error) {
	var posts []*Post
	err := s.forEachDoc(bucketPosts, func(key string, data []byte) error {
		var p Post
		if err := json.Unmarshal(data, &p); err != nil {
			return fmt.Errorf("unmarshal post %s: %w", key, err)
		}
		if filter.matches(&p) {
			posts = append(posts, &p)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.SliceStable(posts, func(i, j int) bool {
		return posts[i].PublishedAt.After(posts[j].PublishedAt)
	})
	return posts, nil
}

func (f PostFilter) matches(p *Post) bool {
	if f.Category != "" && p.Category != f.Category {
		return false
	}
	if f.Author != "" && p.Author != f.Author {
		return false
	}
	if f.Tag != "" && !containsFold(p.Tags, f.Tag) {
		return false
	}
	if f.Draft != nil && p.Draft != *f.Draft {
		return false
	}
	if f.Featured != nil && p.Featured != *f.Featured {
		return false
	}
	return true
}

func containsFold(vals []string, want string) bool {
	for _, v := range vals {
		if strings.EqualFold(v, want) {
			return true
		}
	}
	return false
}

// UpdatePost merges the supplied fields into the stored post. Omitted fields
// keep their prior values; slug and timestamps cannot be overwritten.
func (s *Store) UpdatePost(slug string, fields map[string]any) (*Post, error) {
	existing, err := s.GetPost(slug)
	if err != nil {
		return nil, err
	}
	stored, err := json.Marshal(existing)
	if err != nil {
		return nil, fmt.Errorf("marshal post %s: %w", slug, err)
	}
	merged, err := mergeDoc(stored, fields)
	if err != nil {
		return nil, err
	}
	var p Post
	if err := json.Unmarshal(merged, &p); err != nil {
		return nil, fmt.Errorf("unmarshal merged post %s: %w", slug, err)
	}
	p.Slug = slug
	if err := s.putDoc(bucketPosts, slug, &p, true); err != nil {
		return nil, err
	}
	if err := s.index.Index(slug, &p); err != nil {
		return nil, fmt.Errorf("reindex post %s: %w", slug, err)
	}
	return &p, nil
}

// DeletePost removes the post and its search index entry.
func (s *Store) DeletePost(slug string) error {
	if err := s.deleteDoc(bucketPosts, slug); err != nil {
		return err
	}
	if err := s.index.Delete(slug); err != nil {
		return fmt.Errorf("deindex post %s: %w", slug, err)
	}
	return nil
}

// IncrementViews bumps the post's view counter by one and returns the new
// value. The read and write happen in a single transaction.
func (s *Store) IncrementViews(slug string) (int, error) {
	views := 0
	err := s.db.Update(func(tx *bbolt.Tx) error {
		b := tx.Bucket([]byte(bucketPosts))
		if b == nil {
			return fmt.Errorf("bucket %s not found", bucketPosts)
		}
		data := b.Get([]byte(slug))
		if data == nil {
			return fmt.Errorf("%w: %s/%s", ErrNotFound, bucketPosts, slug)
		}
		var p Post
		if err := json.Unmarshal(data, &p); err != nil {
			return fmt.Errorf("unmarshal post %s: %w", slug, err)
		}
		p.Views++
		views = p.Views
		out, err := json.Marshal(&p)
		if err != nil {
			return err
		}
		return b.Put([]byte(slug), out)
	})
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return 0, err
		}
		return 0, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return views, nil
}

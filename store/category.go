package store

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"
)

// Category groups posts by the category's display name. Parent and Order
// exist for hierarchy and manual sorting of the category listing.
type Category struct {
	Slug        string    `json:"slug"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Color       string    `json:"color"`
	Icon        string    `json:"icon"`
	Parent      string    `json:"parent"`
	Order       int       `json:"order"`
	PostCount   int       `json:"postCount"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// CreateCategory validates and stores a new category, deriving the slug from
// the name when absent.
func (s *Store) CreateCategory(c *Category) (*Category, error) {
	if strings.TrimSpace(c.Name) == "" {
		return nil, fmt.Errorf("%w: name", ErrValidation)
	}
	if c.Slug == "" {
		c.Slug = Slugify(c.Name)
	}
	now := time.Now().UTC()
	c.CreatedAt = now
	c.UpdatedAt = now

	if err := s.putDoc(bucketCategories, c.Slug, c, false); err != nil {
		return nil, err
	}
	return c, nil
}

// GetCategory returns the category stored under slug with a derived post
// count.
func (s *Store) GetCategory(slug string) (*Category, error) {
	var c Category
	if err := s.getDoc(bucketCategories, slug, &c); err != nil {
		return nil, err
	}
	count, err := s.CountPostsByCategory(c.Name)
	if err != nil {
		return nil, err
	}
	c.PostCount = count
	return &c, nil
}

// ListCategories returns all categories sorted by order then name, each with
// a derived post count.
func (s *Store) ListCategories() ([]*Category, error) {
	counts, err := s.postCountsBy(func(p *Post) []string { return []string{p.Category} })
	if err != nil {
		return nil, err
	}
	var categories []*Category
	err = s.forEachDoc(bucketCategories, func(key string, data []byte) error {
		var c Category
		if err := json.Unmarshal(data, &c); err != nil {
			return fmt.Errorf("unmarshal category %s: %w", key, err)
		}
		c.PostCount = counts[c.Name]
		categories = append(categories, &c)
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.SliceStable(categories, func(i, j int) bool {
		if categories[i].Order != categories[j].Order {
			return categories[i].Order < categories[j].Order
		}
		return categories[i].Name < categories[j].Name
	})
	return categories, nil
}

// UpdateCategory merges the supplied fields into the stored category.
func (s *Store) UpdateCategory(slug string, fields map[string]any) (*Category, error) {
	var c Category
	if err := s.getDoc(bucketCategories, slug, &c); err != nil {
		return nil, err
	}
	stored, err := json.Marshal(&c)
	if err != nil {
		return nil, fmt.Errorf("marshal category %s: %w", slug, err)
	}
	merged, err := mergeDoc(stored, fields)
	if err != nil {
		return nil, err
	}
	var out Category
	if err := json.Unmarshal(merged, &out); err != nil {
		return nil, fmt.Errorf("unmarshal merged category %s: %w", slug, err)
	}
	out.Slug = slug
	if err := s.putDoc(bucketCategories, slug, &out, true); err != nil {
		return nil, err
	}
	return &out, nil
}

// DeleteCategory removes the category unless a post still names it.
func (s *Store) DeleteCategory(slug string) error {
	var c Category
	if err := s.getDoc(bucketCategories, slug, &c); err != nil {
		return err
	}
	count, err := s.CountPostsByCategory(c.Name)
	if err != nil {
		return err
	}
	if count > 0 {
		return fmt.Errorf("%w: category %q is referenced by %d post(s)", ErrConflict, c.Name, count)
	}
	return s.deleteDoc(bucketCategories, slug)
}

package store

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"
)

// Tag labels posts by display name.
type Tag struct {
	Slug      string    `json:"slug"`
	Name      string    `json:"name"`
	PostCount int       `json:"postCount"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// CreateTag validates and stores a new tag, deriving the slug from the name
// when absent.
func (s *Store) CreateTag(t *Tag) (*Tag, error) {
	if strings.TrimSpace(t.Name) == "" {
		return nil, fmt.Errorf("%w: name", ErrValidation)
	}
	if t.Slug == "" {
		t.Slug = Slugify(t.Name)
	}
	now := time.Now().UTC()
	t.CreatedAt = now
	t.UpdatedAt = now

	if err := s.putDoc(bucketTags, t.Slug, t, false); err != nil {
		return nil, err
	}
	return t, nil
}

// GetTag returns the tag stored under slug with a derived post count.
func (s *Store) GetTag(slug string) (*Tag, error) {
	var t Tag
	if err := s.getDoc(bucketTags, slug, &t); err != nil {
		return nil, err
	}
	count, err := s.CountPostsByTag(t.Name)
	if err != nil {
		return nil, err
	}
	t.PostCount = count
	return &t, nil
}

// ListTags returns all tags ordered by name, each with a derived post count.
func (s *Store) ListTags() ([]*Tag, error) {
	counts, err := s.postCountsBy(func(p *Post) []string { return p.Tags })
	if err != nil {
		return nil, err
	}
	var tags []*Tag
	err = s.forEachDoc(bucketTags, func(key string, data []byte) error {
		var t Tag
		if err := json.Unmarshal(data, &t); err != nil {
			return fmt.Errorf("unmarshal tag %s: %w", key, err)
		}
		t.PostCount = counts[t.Name]
		tags = append(tags, &t)
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.SliceStable(tags, func(i, j int) bool { return tags[i].Name < tags[j].Name })
	return tags, nil
}

// UpdateTag merges the supplied fields into the stored tag.
func (s *Store) UpdateTag(slug string, fields map[string]any) (*Tag, error) {
	var t Tag
	if err := s.getDoc(bucketTags, slug, &t); err != nil {
		return nil, err
	}
	stored, err := json.Marshal(&t)
	if err != nil {
		return nil, fmt.Errorf("marshal tag %s: %w", slug, err)
	}
	merged, err := mergeDoc(stored, fields)
	if err != nil {
		return nil, err
	}
	var out Tag
	if err := json.Unmarshal(merged, &out); err != nil {
		return nil, fmt.Errorf("unmarshal merged tag %s: %w", slug, err)
	}
	out.Slug = slug
	if err := s.putDoc(bucketTags, slug, &out, true); err != nil {
		return nil, err
	}
	return &out, nil
}

// DeleteTag removes the tag unless a post still carries it.
func (s *Store) DeleteTag(slug string) error {
	var t Tag
	if err := s.getDoc(bucketTags, slug, &t); err != nil {
		return err
	}
	count, err := s.CountPostsByTag(t.Name)
	if err != nil {
		return err
	}
	if count > 0 {
		return fmt.Errorf("%w: tag %q is referenced by %d post(s)", ErrConflict, t.Name, count)
	}
	return s.deleteDoc(bucketTags, slug)
}

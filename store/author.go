package store

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"
)

// Author is a writer profile. PostCount is derived on read by counting posts
// whose denormalized author name matches; it is persisted only by the
// migration fix-up pass.
type Author struct {
	Slug      string    `json:"slug"`
	Name      string    `json:"name"`
	Bio       string    `json:"bio"`
	Avatar    string    `json:"avatar"`
	Email     string    `json:"email"`
	Twitter   string    `json:"twitter"`
	LinkedIn  string    `json:"linkedin"`
	GitHub    string    `json:"github"`
	Website   string    `json:"website"`
	PostCount int       `json:"postCount"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// CreateAuthor validates and stores a new author, deriving the slug from the
// name when absent.
func (s *Store) CreateAuthor(a *Author) (*Author, error) {
	if strings.TrimSpace(a.Name) == "" {
		return nil, fmt.Errorf("%w: name", ErrValidation)
	}
	if a.Slug == "" {
		a.Slug = Slugify(a.Name)
	}
	now := time.Now().UTC()
	a.CreatedAt = now
	a.UpdatedAt = now

	if err := s.putDoc(bucketAuthors, a.Slug, a, false); err != nil {
		return nil, err
	}
	return a, nil
}

// GetAuthor returns the author stored under slug with a freshly derived post
// count.
func (s *Store) GetAuthor(slug string) (*Author, error) {
	var a Author
	if err := s.getDoc(bucketAuthors, slug, &a); err != nil {
		return nil, err
	}
	count, err := s.CountPostsByAuthor(a.Name)
	if err != nil {
		return nil, err
	}
	a.PostCount = count
	return &a, nil
}

// ListAuthors returns all authors ordered by name, each with a derived post
// count.
func (s *Store) ListAuthors() ([]*Author, error) {
	counts, err := s.postCountsBy(func(p *Post) []string { return []string{p.Author} })
	if err != nil {
		return nil, err
	}
	var authors []*Author
	err = s.forEachDoc(bucketAuthors, func(key string, data []byte) error {
		var a Author
		if err := json.Unmarshal(data, &a); err != nil {
			return fmt.Errorf("unmarshal author %s: %w", key, err)
		}
		a.PostCount = counts[a.Name]
		authors = append(authors, &a)
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.SliceStable(authors, func(i, j int) bool { return authors[i].Name < authors[j].Name })
	return authors, nil
}

// UpdateAuthor merges the supplied fields into the stored author.
func (s *Store) UpdateAuthor(slug string, fields map[string]any) (*Author, error) {
	var a Author
	if err := s.getDoc(bucketAuthors, slug, &a); err != nil {
		return nil, err
	}
	stored, err := json.Marshal(&a)
	if err != nil {
		return nil, fmt.Errorf("marshal author %s: %w", slug, err)
	}
	merged, err := mergeDoc(stored, fields)
	if err != nil {
		return nil, err
	}
	var out Author
	if err := json.Unmarshal(merged, &out); err != nil {
		return nil, fmt.Errorf("unmarshal merged author %s: %w", slug, err)
	}
	out.Slug = slug
	if err := s.putDoc(bucketAuthors, slug, &out, true); err != nil {
		return nil, err
	}
	return &out, nil
}

// DeleteAuthor removes the author. The delete is refused while any post
// still carries the author's display name.
func (s *Store) DeleteAuthor(slug string) error {
	var a Author
	if err := s.getDoc(bucketAuthors, slug, &a); err != nil {
		return err
	}
	count, err := s.CountPostsByAuthor(a.Name)
	if err != nil {
		return err
	}
	if count > 0 {
		return fmt.Errorf("%w: author %q is referenced by %d post(s)", ErrConflict, a.Name, count)
	}
	return s.deleteDoc(bucketAuthors, slug)
}

package store

import (
	"encoding/json"
	"fmt"
)

// The post count for an author, category, or tag is the number of posts
// whose denormalized name field equals the entity's display name. Renaming
// an entity therefore orphans historical posts for counting purposes; the
// join is kept here, in one place, so it can be swapped for a keyed relation
// later.

// CountPostsByAuthor returns the number of posts naming author.
func (s *Store) CountPostsByAuthor(name string) (int, error) {
	return s.countPosts(func(p *Post) bool { return p.Author == name })
}

// CountPostsByCategory returns the number of posts naming category.
func (s *Store) CountPostsByCategory(name string) (int, error) {
	return s.countPosts(func(p *Post) bool { return p.Category == name })
}

// CountPostsByTag returns the number of posts carrying tag.
func (s *Store) CountPostsByTag(name string) (int, error) {
	return s.countPosts(func(p *Post) bool {
		for _, t := range p.Tags {
			if t == name {
				return true
			}
		}
		return false
	})
}

func (s *Store) countPosts(match func(*Post) bool) (int, error) {
	count := 0
	err := s.forEachDoc(bucketPosts, func(key string, data []byte) error {
		var p Post
		if err := json.Unmarshal(data, &p); err != nil {
			return fmt.Errorf("unmarshal post %s: %w", key, err)
		}
		if match(&p) {
			count++
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return count, nil
}

// postCountsBy tallies posts per name in a single pass over the posts
// bucket, keyed by the names fn extracts from each post. Used by the List*
// methods so a listing does not rescan posts once per entity.
func (s *Store) postCountsBy(fn func(*Post) []string) (map[string]int, error) {
	counts := make(map[string]int)
	err := s.forEachDoc(bucketPosts, func(key string, data []byte) error {
		var p Post
		if err := json.Unmarshal(data, &p); err != nil {
			return fmt.Errorf("unmarshal post %s: %w", key, err)
		}
		for _, name := range fn(&p) {
			if name != "" {
				counts[name]++
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return counts, nil
}

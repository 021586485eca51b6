package store

import (
	"errors"
	"fmt"

	"github.com/blevesearch/bleve/v2"
)

const searchLimit = 100

// SearchPosts runs a full-text query over post titles, content, and
// excerpts and returns the matching documents in relevance order.
func (s *Store) SearchPosts(q string) ([]*Post, error) {
	query := bleve.NewQueryStringQuery(q)
	request := bleve.NewSearchRequestOptions(query, searchLimit, 0, false)

	result, err := s.index.Search(request)
	if err != nil {
		return nil, fmt.Errorf("%w: search: %v", ErrUnavailable, err)
	}

	posts := make([]*Post, 0, len(result.Hits))
	for _, hit := range result.Hits {
		p, err := s.GetPost(hit.ID)
		if errors.Is(err, ErrNotFound) {
			// Index entry outlived the document; skip it.
			continue
		}
		if err != nil {
			return nil, err
		}
		posts = append(posts, p)
	}
	return posts, nil
}

// Package listview implements the admin panel's list screens: search,
// status and equality filters, stable sorting, and pagination, all computed
// in memory over the full fetched collection. The composition is
// deterministic: the same slice and parameters always yield the same page.
package listview

import (
	"sort"
	"strings"

	"github.com/northbeam/studiocms/store"
)

// DefaultPageSize is used when a view does not request its own size.
const DefaultPageSize = 10

// Params selects, orders, and pages a post list.
type Params struct {
	Query    string // case-insensitive substring over title/excerpt/slug/tags
	Status   string // "", "published", "draft", "featured"
	Category string
	Author   string
	SortBy   string // "date", "title", "author", "category", "draft"
	Order    string // "asc" or "desc"
	Page     int
	PerPage  int
}

// Page is one page of a filtered, sorted post list.
type Page struct {
	Items      []*store.Post `json:"items"`
	Total      int           `json:"total"`
	TotalPages int           `json:"totalPages"`
	Page       int           `json:"page"`
	PerPage    int           `json:"perPage"`
	HasNext    bool          `json:"hasNext"`
	HasPrev    bool          `json:"hasPrev"`
}

// Posts applies filter → sort → paginate to the full post slice. The input
// is not modified.
func Posts(posts []*store.Post, p Params) Page {
	filtered := filterPosts(posts, p)
	sortPosts(filtered, p)
	return paginate(filtered, p.Page, p.PerPage)
}

func filterPosts(posts []*store.Post, p Params) []*store.Post {
	q := strings.ToLower(strings.TrimSpace(p.Query))
	out := make([]*store.Post, 0, len(posts))
	for _, post := range posts {
		if q != "" && !matchesQuery(post, q) {
			continue
		}
		switch p.Status {
		case "published":
			if post.Draft {
				continue
			}
		case "draft":
			if !post.Draft {
				continue
			}
		case "featured":
			if !post.Featured {
				continue
			}
		}
		if p.Category != "" && post.Category != p.Category {
			continue
		}
		if p.Author != "" && post.Author != p.Author {
			continue
		}
		out = append(out, post)
	}
	return out
}

func matchesQuery(p *store.Post, q string) bool {
	if strings.Contains(strings.ToLower(p.Title), q) ||
		strings.Contains(strings.ToLower(p.Excerpt), q) ||
		strings.Contains(strings.ToLower(p.Slug), q) {
		return true
	}
	for _, t := range p.Tags {
		if strings.Contains(strings.ToLower(t), q) {
			return true
		}
	}
	return false
}

// sortPosts orders in place. Ties keep their original relative order, so
// repeated evaluation over the same slice returns identical pages.
func sortPosts(posts []*store.Post, p Params) {
	desc := p.Order != "asc"
	var less func(a, b *store.Post) bool

	switch p.SortBy {
	case "title":
		less = func(a, b *store.Post) bool { return strings.ToLower(a.Title) < strings.ToLower(b.Title) }
	case "author":
		less = func(a, b *store.Post) bool { return strings.ToLower(a.Author) < strings.ToLower(b.Author) }
	case "category":
		less = func(a, b *store.Post) bool { return strings.ToLower(a.Category) < strings.ToLower(b.Category) }
	case "draft":
		less = func(a, b *store.Post) bool { return !a.Draft && b.Draft }
	default: // date
		less = func(a, b *store.Post) bool { return a.PublishedAt.Before(b.PublishedAt) }
	}

	sort.SliceStable(posts, func(i, j int) bool {
		if desc {
			return less(posts[j], posts[i])
		}
		return less(posts[i], posts[j])
	})
}

func paginate(posts []*store.Post, page, perPage int) Page {
	if perPage < 1 {
		perPage = DefaultPageSize
	}
	total := len(posts)
	totalPages := (total + perPage - 1) / perPage
	if totalPages < 1 {
		totalPages = 1
	}
	if page < 1 {
		page = 1
	}
	if page > totalPages {
		page = totalPages
	}

	start := (page - 1) * perPage
	end := start + perPage
	if start > total {
		start = total
	}
	if end > total {
		end = total
	}

	return Page{
		Items:      posts[start:end],
		Total:      total,
		TotalPages: totalPages,
		Page:       page,
		PerPage:    perPage,
		HasNext:    page < totalPages,
		HasPrev:    page > 1,
	}
}

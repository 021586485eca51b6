package store_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/northbeam/studiocms/store"
)

func TestAuthorDeleteBlockedWhileReferenced(t *testing.T) {
	s := newTestStore(t)

	_, err := s.CreateAuthor(&store.Author{Name: "Ada Lovelace"})
	require.NoError(t, err)
	_, err = s.CreatePost(&store.Post{Title: "On Engines", Author: "Ada Lovelace"})
	require.NoError(t, err)

	err = s.DeleteAuthor("ada-lovelace")
	require.ErrorIs(t, err, store.ErrConflict)

	// Still present after the refused delete.
	_, err = s.GetAuthor("ada-lovelace")
	require.NoError(t, err)

	require.NoError(t, s.DeletePost("on-engines"))
	require.NoError(t, s.DeleteAuthor("ada-lovelace"))
	_, err = s.GetAuthor("ada-lovelace")
	require.ErrorIs(t, err, store.ErrNotFound)
}

func TestCategoryDeleteBlockedWhileReferenced(t *testing.T) {
	s := newTestStore(t)

	_, err := s.CreateCategory(&store.Category{Name: "Case Studies"})
	require.NoError(t, err)
	_, err = s.CreatePost(&store.Post{Title: "Client Launch", Category: "Case Studies"})
	require.NoError(t, err)

	require.ErrorIs(t, s.DeleteCategory("case-studies"), store.ErrConflict)

	require.NoError(t, s.DeletePost("client-launch"))
	require.NoError(t, s.DeleteCategory("case-studies"))
}

func TestTagDeleteBlockedWhileReferenced(t *testing.T) {
	s := newTestStore(t)

	_, err := s.CreateTag(&store.Tag{Name: "golang"})
	require.NoError(t, err)
	_, err = s.CreatePost(&store.Post{Title: "Why Go", Tags: []string{"golang", "backend"}})
	require.NoError(t, err)

	require.ErrorIs(t, s.DeleteTag("golang"), store.ErrConflict)

	require.NoError(t, s.DeletePost("why-go"))
	require.NoError(t, s.DeleteTag("golang"))
}

func TestDerivedPostCounts(t *testing.T) {
	s := newTestStore(t)

	_, err := s.CreateAuthor(&store.Author{Name: "Bram"})
	require.NoError(t, err)
	_, err = s.CreateCategory(&store.Category{Name: "Engineering"})
	require.NoError(t, err)
	_, err = s.CreateTag(&store.Tag{Name: "go"})
	require.NoError(t, err)

	for _, title := range []string{"First", "Second"} {
		_, err = s.CreatePost(&store.Post{
			Title:    title,
			Author:   "Bram",
			Category: "Engineering",
			Tags:     []string{"go"},
		})
		require.NoError(t, err)
	}

	author, err := s.GetAuthor("bram")
	require.NoError(t, err)
	assert.Equal(t, 2, author.PostCount)

	categories, err := s.ListCategories()
	require.NoError(t, err)
	require.Len(t, categories, 1)
	assert.Equal(t, 2, categories[0].PostCount)

	tags, err := s.ListTags()
	require.NoError(t, err)
	require.Len(t, tags, 1)
	assert.Equal(t, 2, tags[0].PostCount)
}

// Renaming an entity orphans historical posts: the join is by display name,
// not by a stable id.
func TestRenamedAuthorOrphansPosts(t *testing.T) {
	s := newTestStore(t)

	_, err := s.CreateAuthor(&store.Author{Name: "Old Name"})
	require.NoError(t, err)
	_, err = s.CreatePost(&store.Post{Title: "Legacy Post", Author: "Old Name"})
	require.NoError(t, err)

	_, err = s.UpdateAuthor("old-name", map[string]any{"name": "New Name"})
	require.NoError(t, err)

	author, err := s.GetAuthor("old-name")
	require.NoError(t, err)
	assert.Equal(t, "New Name", author.Name)
	assert.Equal(t, 0, author.PostCount)

	// With no posts matching the new name, the delete goes through even
	// though a post still carries the old one.
	require.NoError(t, s.DeleteAuthor("old-name"))
}

func TestCategoryOrderSorting(t *testing.T) {
	s := newTestStore(t)

	_, err := s.CreateCategory(&store.Category{Name: "Zeta", Order: 1})
	require.NoError(t, err)
	_, err = s.CreateCategory(&store.Category{Name: "Alpha", Order: 2})
	require.NoError(t, err)
	_, err = s.CreateCategory(&store.Category{Name: "Beta", Order: 1})
	require.NoError(t, err)

	categories, err := s.ListCategories()
	require.NoError(t, err)
	require.Len(t, categories, 3)
	assert.Equal(t, "Beta", categories[0].Name)
	assert.Equal(t, "Zeta", categories[1].Name)
	assert.Equal(t, "Alpha", categories[2].Name)
}

func TestTaxonomyUpdateMerge(t *testing.T) {
	s := newTestStore(t)

	_, err := s.CreateCategory(&store.Category{Name: "Design", Color: "#ff0000", Icon: "🎨"})
	require.NoError(t, err)

	updated, err := s.UpdateCategory("design", map[string]any{"color": "#00ff00"})
	require.NoError(t, err)
	assert.Equal(t, "#00ff00", updated.Color)
	assert.Equal(t, "🎨", updated.Icon)
	assert.Equal(t, "Design", updated.Name)
}

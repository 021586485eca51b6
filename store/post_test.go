package store_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/northbeam/studiocms/store"
)

func TestCreatePostDerivesSlug(t *testing.T) {
	s := newTestStore(t)

	created, err := s.CreatePost(&store.Post{Title: "Hello, World!"})
	require.NoError(t, err)
	assert.Equal(t, "hello-world", created.Slug)
	assert.False(t, created.CreatedAt.IsZero())
	assert.False(t, created.UpdatedAt.IsZero())
}

func TestCreatePostRequiresTitle(t *testing.T) {
	s := newTestStore(t)

	_, err := s.CreatePost(&store.Post{Content: "no title here"})
	require.ErrorIs(t, err, store.ErrValidation)
}

func TestCreatePostDuplicateSlugLeavesOriginalUntouched(t *testing.T) {
	s := newTestStore(t)

	_, err := s.CreatePost(&store.Post{Title: "Launch Week", Content: "original"})
	require.NoError(t, err)

	_, err = s.CreatePost(&store.Post{Title: "Launch Week", Content: "imposter"})
	require.ErrorIs(t, err, store.ErrDuplicateKey)

	got, err := s.GetPost("launch-week")
	require.NoError(t, err)
	assert.Equal(t, "original", got.Content)
}

func TestCreatePostIgnoresClientTimestampsAndViews(t *testing.T) {
	s := newTestStore(t)

	created, err := s.CreatePost(&store.Post{
		Title:     "Trusted Fields Only",
		Views:     9999,
		CreatedAt: time.Date(1999, 1, 1, 0, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)
	assert.Equal(t, 0, created.Views)
	assert.True(t, created.CreatedAt.After(time.Date(2000, 1, 1, 0, 0, 0, 0, time.UTC)))
}

func TestUpdatePostPartialMerge(t *testing.T) {
	s := newTestStore(t)

	_, err := s.CreatePost(&store.Post{
		Title:    "Before",
		Content:  "keep me",
		Category: "Engineering",
		Tags:     []string{"go", "web"},
		Draft:    true,
	})
	require.NoError(t, err)

	before, err := s.GetPost("before")
	require.NoError(t, err)

	updated, err := s.UpdatePost("before", map[string]any{"draft": false, "title": "After"})
	require.NoError(t, err)
	assert.Equal(t, "After", updated.Title)
	assert.False(t, updated.Draft)

	// Everything not supplied keeps its prior value.
	got, err := s.GetPost("before")
	require.NoError(t, err)
	assert.Equal(t, "keep me", got.Content)
	assert.Equal(t, "Engineering", got.Category)
	assert.Equal(t, []string{"go", "web"}, got.Tags)
	assert.Equal(t, before.CreatedAt, got.CreatedAt)
	assert.Equal(t, "before", got.Slug)
}

func TestUpdatePostCannotChangeSlug(t *testing.T) {
	s := newTestStore(t)

	_, err := s.CreatePost(&store.Post{Title: "Stable"})
	require.NoError(t, err)

	updated, err := s.UpdatePost("stable", map[string]any{"slug": "hijacked"})
	require.NoError(t, err)
	assert.Equal(t, "stable", updated.Slug)

	_, err = s.GetPost("hijacked")
	require.ErrorIs(t, err, store.ErrNotFound)
}

func TestUpdateUnknownPost(t *testing.T) {
	s := newTestStore(t)

	_, err := s.UpdatePost("missing", map[string]any{"title": "x"})
	require.ErrorIs(t, err, store.ErrNotFound)
}

func TestDeletePost(t *testing.T) {
	s := newTestStore(t)

	_, err := s.CreatePost(&store.Post{Title: "Doomed"})
	require.NoError(t, err)
	require.NoError(t, s.DeletePost("doomed"))

	_, err = s.GetPost("doomed")
	require.ErrorIs(t, err, store.ErrNotFound)
	require.ErrorIs(t, s.DeletePost("doomed"), store.ErrNotFound)
}

func TestListPostsFilters(t *testing.T) {
	s := newTestStore(t)

	seed := []*store.Post{
		{Title: "One", Category: "Design", Author: "Ada", Tags: []string{"figma"}, Draft: false, Featured: true},
		{Title: "Two", Category: "Engineering", Author: "Ada", Tags: []string{"go"}, Draft: true},
		{Title: "Three", Category: "Engineering", Author: "Bram", Tags: []string{"go", "web"}, Draft: false},
	}
	for _, p := range seed {
		_, err := s.CreatePost(p)
		require.NoError(t, err)
	}

	published := false
	got, err := s.ListPosts(store.PostFilter{Draft: &published})
	require.NoError(t, err)
	assert.Len(t, got, 2)

	got, err = s.ListPosts(store.PostFilter{Category: "Engineering"})
	require.NoError(t, err)
	assert.Len(t, got, 2)

	got, err = s.ListPosts(store.PostFilter{Author: "Ada"})
	require.NoError(t, err)
	assert.Len(t, got, 2)

	got, err = s.ListPosts(store.PostFilter{Tag: "web"})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "three", got[0].Slug)

	featured := true
	got, err = s.ListPosts(store.PostFilter{Featured: &featured})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "one", got[0].Slug)
}

func TestIncrementViews(t *testing.T) {
	s := newTestStore(t)

	_, err := s.CreatePost(&store.Post{Title: "Counted"})
	require.NoError(t, err)

	for want := 1; want <= 3; want++ {
		views, err := s.IncrementViews("counted")
		require.NoError(t, err)
		assert.Equal(t, want, views)
	}

	got, err := s.GetPost("counted")
	require.NoError(t, err)
	assert.Equal(t, 3, got.Views)

	_, err = s.IncrementViews("missing")
	require.ErrorIs(t, err, store.ErrNotFound)
}

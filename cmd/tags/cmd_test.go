package tags

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lepinkainen/shelfsync/internal/libby"
)

type fakeLister struct {
	tags []libby.TagInfo
	err  error
}

func (f *fakeLister) Tags(context.Context) ([]libby.TagInfo, error) {
	return f.tags, f.err
}

func TestTagsWithParams(t *testing.T) {
	t.Cleanup(func() {
		newClient = func(ctx context.Context) (tagLister, error) {
			return libby.NewClient(ctx, "")
		}
	})

	newClient = func(context.Context) (tagLister, error) {
		return &fakeLister{tags: []libby.TagInfo{{Name: "📚", TotalTaggings: 42}}}, nil
	}

	require.NoError(t, TagsWithParams())
}

func TestTagsWithParamsClientError(t *testing.T) {
	t.Cleanup(func() {
		newClient = func(ctx context.Context) (tagLister, error) {
			return libby.NewClient(ctx, "")
		}
	})

	newClient = func(context.Context) (tagLister, error) {
		return nil, errors.New("no credentials")
	}

	err := TagsWithParams()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to create catalog client")
}

func TestTagsWithParamsListError(t *testing.T) {
	t.Cleanup(func() {
		newClient = func(ctx context.Context) (tagLister, error) {
			return libby.NewClient(ctx, "")
		}
	})

	newClient = func(context.Context) (tagLister, error) {
		return &fakeLister{err: errors.New("boom")}, nil
	}

	err := TagsWithParams()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to list tags")
}

func TestRenderTagsSortsByTaggings(t *testing.T) {
	out := renderTags([]libby.TagInfo{
		{Name: "wishlist", TotalTaggings: 3},
		{Name: "📕 borrow", TotalTaggings: 120},
		{Name: "audio", TotalTaggings: 120},
	})

	// Busiest first, names break ties
	audio := strings.Index(out, "audio")
	borrow := strings.Index(out, "📕 borrow")
	wishlist := strings.Index(out, "wishlist")
	require.NotEqual(t, -1, audio)
	require.NotEqual(t, -1, borrow)
	require.NotEqual(t, -1, wishlist)
	assert.Less(t, audio, borrow)
	assert.Less(t, borrow, wishlist)
	assert.Contains(t, out, "120")
	assert.Contains(t, out, "Titles")
}

func TestRenderTagsEmpty(t *testing.T) {
	out := renderTags(nil)
	assert.Contains(t, out, "Tag")
}

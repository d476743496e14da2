package menu

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"credwallet/internal/workflow/models"
	"credwallet/internal/workflow/registry"
	"credwallet/pkg/platform/sentinel"
)

func TestViewCache(t *testing.T) {
	a, err := New(registry.NewContentRegistry(), registry.NewFieldRegistry())
	require.NoError(t, err)
	v := a.Assemble(context.Background(), []models.ContentItem{models.TextItem{Text: "hi"}}, "wf-1", nil)

	t.Run("returns stored view", func(t *testing.T) {
		c := NewViewCache(time.Minute)
		c.Put(v)

		got, err := c.Get(v.ID.String())
		require.NoError(t, err)
		assert.Same(t, v, got)
		assert.Equal(t, 1, c.Len())
	})

	t.Run("missing and deleted views are not found", func(t *testing.T) {
		c := NewViewCache(0)
		_, err := c.Get("unknown")
		assert.ErrorIs(t, err, sentinel.ErrNotFound)

		c.Put(v)
		c.Delete(v.ID.String())
		_, err = c.Get(v.ID.String())
		assert.ErrorIs(t, err, sentinel.ErrNotFound)
	})

	t.Run("expired views are not found", func(t *testing.T) {
		c := NewViewCache(10 * time.Millisecond)
		c.Put(v)
		time.Sleep(30 * time.Millisecond)
		_, err := c.Get(v.ID.String())
		assert.ErrorIs(t, err, sentinel.ErrNotFound)
	})
}

package storage

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalPutExistsDelete(t *testing.T) {
	store, err := NewLocal(t.TempDir(), "http://localhost:8080/storage")
	require.NoError(t, err)

	ctx := context.Background()
	key := "products/abc.png"

	ok, err := store.Exists(ctx, key)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, store.Put(ctx, key, bytes.NewReader([]byte("png-bytes"))))

	ok, err = store.Exists(ctx, key)
	require.NoError(t, err)
	assert.True(t, ok)

	require.NoError(t, store.Delete(ctx, key))

	ok, err = store.Exists(ctx, key)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestLocalDeleteMissingKeyIsNotAnError(t *testing.T) {
	store, err := NewLocal(t.TempDir(), "http://localhost:8080/storage")
	require.NoError(t, err)

	assert.NoError(t, store.Delete(context.Background(), "products/never-existed.jpg"))
}

func TestLocalPublicURL(t *testing.T) {
	store, err := NewLocal(t.TempDir(), "http://localhost:8080/storage/")
	require.NoError(t, err)

	assert.Equal(t, "http://localhost:8080/storage/products/x.webp", store.PublicURL("products/x.webp"))
}

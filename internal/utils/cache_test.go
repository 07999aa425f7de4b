package utils

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, path, content string, mod time.Time) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	require.NoError(t, os.Chtimes(path, mod, mod))
}

func TestCache_FileValidation(t *testing.T) {
	path := filepath.Join(t.TempDir(), "shop.yaml")
	base := time.Now().Add(-time.Hour).Truncate(time.Second)
	writeFile(t, path, "bundle: shop\n", base)

	cache := NewCache[string, int]()
	require.NoError(t, cache.SetWithFileInfo("shop", 1, path))

	value, ok := cache.GetWithFileValidation("shop", path)
	assert.True(t, ok)
	assert.Equal(t, 1, value)

	writeFile(t, path, "bundle: shop2\n", base.Add(time.Minute))
	_, ok = cache.GetWithFileValidation("shop", path)
	assert.False(t, ok)
	assert.Equal(t, 0, cache.Size())
}

func TestCache_MissingFile(t *testing.T) {
	cache := NewCache[string, int]()
	assert.Error(t, cache.SetWithFileInfo("k", 1, filepath.Join(t.TempDir(), "missing")))

	_, ok := cache.Get("k")
	assert.False(t, ok)
}

func TestCache_Load(t *testing.T) {
	path := filepath.Join(t.TempDir(), "shop.yaml")
	base := time.Now().Add(-time.Hour).Truncate(time.Second)
	writeFile(t, path, "a", base)

	cache := NewCache[string, int]()
	builds := 0
	build := func() (int, error) {
		builds++
		return builds, nil
	}

	value, built, err := cache.Load(path, path, build)
	require.NoError(t, err)
	assert.True(t, built)
	assert.Equal(t, 1, value)

	value, built, err = cache.Load(path, path, build)
	require.NoError(t, err)
	assert.False(t, built)
	assert.Equal(t, 1, value)

	writeFile(t, path, "ab", base.Add(time.Minute))
	value, built, err = cache.Load(path, path, build)
	require.NoError(t, err)
	assert.True(t, built)
	assert.Equal(t, 2, value)
}

func TestCache_LoadError(t *testing.T) {
	path := filepath.Join(t.TempDir(), "shop.yaml")
	writeFile(t, path, "a", time.Now())

	cache := NewCache[string, int]()
	_, _, err := cache.Load(path, path, func() (int, error) { return 0, errors.New("broken") })
	assert.EqualError(t, err, "broken")
	assert.Equal(t, 0, cache.Size())

	cache.Delete(path)
}

func TestCache_LoadFileChangedDuringBuild(t *testing.T) {
	path := filepath.Join(t.TempDir(), "shop.yaml")
	base := time.Now().Add(-time.Hour).Truncate(time.Second)
	writeFile(t, path, "a", base)

	cache := NewCache[string, int]()
	builds := 0
	_, built, err := cache.Load(path, path, func() (int, error) {
		builds++
		writeFile(t, path, "ab", base.Add(time.Minute))
		return builds, nil
	})
	require.NoError(t, err)
	assert.True(t, built)

	value, built, err := cache.Load(path, path, func() (int, error) {
		builds++
		return builds, nil
	})
	require.NoError(t, err)
	assert.True(t, built)
	assert.Equal(t, 2, value)
}

func TestCache_LoadMissingFile(t *testing.T) {
	cache := NewCache[string, int]()
	_, built, err := cache.Load("k", filepath.Join(t.TempDir(), "missing"), func() (int, error) { return 1, nil })
	assert.Error(t, err)
	assert.False(t, built)
	assert.Equal(t, 0, cache.Size())
}

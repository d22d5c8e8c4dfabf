package cache_test

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ayamizu/voxpet/internal/cache"
	"github.com/ayamizu/voxpet/internal/tts"
	"github.com/ayamizu/voxpet/internal/utterance"
)

func TestLookupMissWhenAbsent(t *testing.T) {
	t.Parallel()

	store, err := cache.New(t.TempDir())
	require.NoError(t, err)

	_, hit, err := store.Lookup(utterance.FingerprintOf("こんにちは"))
	require.NoError(t, err)
	assert.False(t, hit)
}

func TestPutThenLookupHit(t *testing.T) {
	t.Parallel()

	store, err := cache.New(t.TempDir())
	require.NoError(t, err)

	fp := utterance.FingerprintOf("こんにちは")
	audio := bytes.Repeat([]byte{0x42}, tts.MinViableAudioBytes)

	path, err := store.Put(fp, cache.VariantPrimary, audio)
	require.NoError(t, err)

	art, hit, err := store.Lookup(fp)
	require.NoError(t, err)
	assert.True(t, hit)
	assert.Equal(t, path, art.Path)
	assert.Equal(t, int64(len(audio)), art.Size)
}

func TestUndersizedEntryIsAMiss(t *testing.T) {
	t.Parallel()

	store, err := cache.New(t.TempDir())
	require.NoError(t, err)

	fp := utterance.FingerprintOf("short")
	path := store.PathFor(fp, cache.VariantPrimary)
	require.NoError(t, os.WriteFile(path, []byte("not audio"), 0o644))

	_, hit, err := store.Lookup(fp)
	require.NoError(t, err)
	assert.False(t, hit, "a sub-threshold file must read as a miss")

	// Self-healing is by bypass: the broken file is left in place.
	_, statErr := os.Stat(path)
	assert.NoError(t, statErr)
}

func TestPutUndersizedReportsTooSmall(t *testing.T) {
	t.Parallel()

	store, err := cache.New(t.TempDir())
	require.NoError(t, err)

	_, err = store.Put(utterance.FingerprintOf("tiny"), cache.VariantPrimary, []byte{1, 2, 3})
	require.Error(t, err)
	assert.ErrorIs(t, err, tts.ErrArtifactTooSmall)
}

func TestVariantPathsDoNotCollide(t *testing.T) {
	t.Parallel()

	store, err := cache.New(t.TempDir())
	require.NoError(t, err)

	fp := utterance.FingerprintOf("同じ台詞")
	primary := store.PathFor(fp, cache.VariantPrimary)
	mock := store.PathFor(fp, cache.VariantMock)

	assert.NotEqual(t, primary, mock)
	assert.Equal(t, ".wav", filepath.Ext(primary))
	assert.Equal(t, ".wav", filepath.Ext(mock))
}

func TestLookupPrefersPrimaryOverMock(t *testing.T) {
	t.Parallel()

	store, err := cache.New(t.TempDir())
	require.NoError(t, err)

	fp := utterance.FingerprintOf("おやすみ")
	audio := bytes.Repeat([]byte{0x01}, tts.MinViableAudioBytes)

	mockPath, err := store.Put(fp, cache.VariantMock, audio)
	require.NoError(t, err)

	art, hit, err := store.Lookup(fp)
	require.NoError(t, err)
	require.True(t, hit)
	assert.Equal(t, mockPath, art.Path)

	primaryPath, err := store.Put(fp, cache.VariantPrimary, audio)
	require.NoError(t, err)

	art, hit, err = store.Lookup(fp)
	require.NoError(t, err)
	require.True(t, hit)
	assert.Equal(t, primaryPath, art.Path,
		"a later primary render must not stay shadowed by the mock entry")
}

func TestNewCreatesRoot(t *testing.T) {
	t.Parallel()

	root := filepath.Join(t.TempDir(), "voices")
	_, err := cache.New(root)
	require.NoError(t, err)

	info, err := os.Stat(root)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}

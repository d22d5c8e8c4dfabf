package resolver_test

import (
	"bytes"
	"context"
	"errors"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ayamizu/voxpet/internal/cache"
	"github.com/ayamizu/voxpet/internal/resolver"
	"github.com/ayamizu/voxpet/internal/tts"
	"github.com/ayamizu/voxpet/internal/tts/mock"
	"github.com/ayamizu/voxpet/internal/utterance"
)

// stubSynth is a scriptable tts.Synthesizer standing in for the live backend.
type stubSynth struct {
	name      string
	available bool
	payload   []byte
	err       error
	calls     int
}

func (s *stubSynth) Name() string                       { return s.name }
func (s *stubSynth) Available(ctx context.Context) bool { return s.available }

func (s *stubSynth) Synthesize(ctx context.Context, spokenText, path string) error {
	s.calls++
	if s.payload != nil {
		if err := os.WriteFile(path, s.payload, 0o644); err != nil {
			return err
		}
	}
	return s.err
}

func newStore(t *testing.T) *cache.Store {
	t.Helper()
	store, err := cache.New(t.TempDir())
	require.NoError(t, err)
	return store
}

func TestResolveRejectsEmptyText(t *testing.T) {
	t.Parallel()

	r := resolver.New(newStore(t), nil, mock.New(mock.Options{}))
	_, err := r.Resolve(context.Background(), utterance.New("  \n ", "subtitle"))
	assert.ErrorIs(t, err, tts.ErrEmptySpokenText)
}

func TestResolveMockThenCache(t *testing.T) {
	t.Parallel()

	r := resolver.New(newStore(t), nil, mock.New(mock.Options{}))
	u := utterance.New("こんにちは", "你好")

	first, err := r.Resolve(context.Background(), u)
	require.NoError(t, err)
	assert.Equal(t, utterance.BackendMock, first.Backend)
	assert.Empty(t, first.ErrorNote)

	info, err := os.Stat(first.ArtifactPath)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, info.Size(), int64(tts.MinViableAudioBytes))

	second, err := r.Resolve(context.Background(), u)
	require.NoError(t, err)
	assert.Equal(t, utterance.BackendCache, second.Backend)
	assert.Equal(t, first.ArtifactPath, second.ArtifactPath)
}

func TestResolveUsesPrimaryWhenAvailable(t *testing.T) {
	t.Parallel()

	primary := &stubSynth{
		name:      "voicevox",
		available: true,
		payload:   bytes.Repeat([]byte{0x7f}, tts.MinViableAudioBytes),
	}
	r := resolver.New(newStore(t), primary, mock.New(mock.Options{}))

	out, err := r.Resolve(context.Background(), utterance.New("おはよう", ""))
	require.NoError(t, err)
	assert.Equal(t, utterance.BackendVoicevox, out.Backend)
	assert.Equal(t, 1, primary.calls)
	assert.False(t, strings.Contains(out.ArtifactPath, "_mock"),
		"primary renders use the primary variant path")
}

func TestResolveSkipsPrimaryWhenProbeFails(t *testing.T) {
	t.Parallel()

	primary := &stubSynth{name: "voicevox", available: false}
	r := resolver.New(newStore(t), primary, mock.New(mock.Options{}))

	out, err := r.Resolve(context.Background(), utterance.New("おはよう", ""))
	require.NoError(t, err)
	assert.Equal(t, utterance.BackendMock, out.Backend)
	assert.Zero(t, primary.calls, "no synthesis call when the probe fails")
}

func TestResolveFallsBackOnUndersizedPrimaryRender(t *testing.T) {
	t.Parallel()

	// The backend writes a sub-threshold file and reports it, mirroring an
	// engine that answers 200 with a truncated body.
	primary := &stubSynth{
		name:      "voicevox",
		available: true,
		payload:   []byte("truncated"),
		err:       tts.ErrArtifactTooSmall,
	}
	r := resolver.New(newStore(t), primary, mock.New(mock.Options{}))

	out, err := r.Resolve(context.Background(), utterance.New("こんばんは", ""))
	require.NoError(t, err)
	assert.Equal(t, utterance.BackendMock, out.Backend)
	assert.Empty(t, out.ErrorNote, "expected degradation carries no error note")

	info, statErr := os.Stat(out.ArtifactPath)
	require.NoError(t, statErr)
	assert.GreaterOrEqual(t, info.Size(), int64(tts.MinViableAudioBytes))
}

func TestResolveMockVariantDoesNotShadowPrimary(t *testing.T) {
	t.Parallel()

	store := newStore(t)
	primary := &stubSynth{
		name:      "voicevox",
		available: false,
		payload:   bytes.Repeat([]byte{0x7f}, tts.MinViableAudioBytes),
	}
	r := resolver.New(store, primary, mock.New(mock.Options{}))
	u := utterance.New("また明日", "")

	out, err := r.Resolve(context.Background(), u)
	require.NoError(t, err)
	require.Equal(t, utterance.BackendMock, out.Backend)

	// The engine comes back up; the same text still renders live because the
	// mock artifact lives under a distinct variant path.
	primary.available = true
	assert.NotEqual(t, out.ArtifactPath, store.PathFor(u.Fingerprint(), cache.VariantPrimary))
}

func TestResolveContainsUnexpectedStorageError(t *testing.T) {
	t.Parallel()

	store := newStore(t)
	u := utterance.New("エラーです", "出错了")

	// A self-referential symlink makes the cache lookup fail with a real
	// storage error (ELOOP) while the mock variant path stays writable.
	primaryPath := store.PathFor(u.Fingerprint(), cache.VariantPrimary)
	require.NoError(t, os.Symlink(primaryPath, primaryPath))

	r := resolver.New(store, nil, mock.New(mock.Options{}))
	out, err := r.Resolve(context.Background(), u)
	require.NoError(t, err, "storage trouble during lookup must be contained")
	assert.Equal(t, utterance.BackendMock, out.Backend)
	assert.NotEmpty(t, out.ErrorNote)

	info, statErr := os.Stat(out.ArtifactPath)
	require.NoError(t, statErr)
	assert.GreaterOrEqual(t, info.Size(), int64(tts.MinViableAudioBytes))
}

func TestResolveFatalWhenMockFails(t *testing.T) {
	t.Parallel()

	broken := errors.New("disk full")
	failingMock := &stubSynth{name: "mock", available: true, err: broken}
	r := resolver.New(newStore(t), nil, failingMock)

	_, err := r.Resolve(context.Background(), utterance.New("だめ", ""))
	require.Error(t, err)
	assert.ErrorIs(t, err, broken)
	assert.Equal(t, 2, failingMock.calls, "the mock is attempted once more before failing hard")
}

func TestResolveKeepsSubtitleVerbatim(t *testing.T) {
	t.Parallel()

	r := resolver.New(newStore(t), nil, mock.New(mock.Options{}))

	out, err := r.Resolve(context.Background(), utterance.New("話す", "字幕"))
	require.NoError(t, err)
	assert.Equal(t, "字幕", out.SubtitleText)

	out, err = r.Resolve(context.Background(), utterance.New("別の話", ""))
	require.NoError(t, err)
	assert.Empty(t, out.SubtitleText, "the resolver does not substitute subtitles; the pipeline does")
}

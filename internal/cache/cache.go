// Package cache implements the content-addressed audio artifact store.
//
// Artifacts are WAV files keyed by the fingerprint of the spoken text.
// The store is append-only and unbounded: entries are never evicted or
// repaired. A file that exists but is under the minimum viable size is
// simply reported as a miss so the caller regenerates it (self-healing
// by bypass, not by deletion).
package cache

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/ayamizu/voxpet/internal/tts"
	"github.com/ayamizu/voxpet/internal/utterance"
)

// Variant distinguishes artifacts that share a fingerprint but were produced
// by different tiers. A cached mock tone must never shadow a later real
// render of the same text, and vice versa.
type Variant string

const (
	// VariantPrimary is a render from the live synthesis backend.
	VariantPrimary Variant = ""

	// VariantMock is the procedural fallback tone.
	VariantMock Variant = "_mock"
)

// Artifact describes a cache hit.
type Artifact struct {
	Path string
	Size int64
}

// Store maps fingerprints to WAV files under a single root directory.
// The root is injected at construction so tests can run against a
// throwaway directory instead of process-wide state.
type Store struct {
	root string
}

// New creates a Store rooted at dir, creating the directory if needed.
func New(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating cache root: %w", err)
	}
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("resolving cache root: %w", err)
	}
	return &Store{root: abs}, nil
}

// Root returns the absolute cache root directory.
func (s *Store) Root() string { return s.root }

// PathFor returns the artifact path for a fingerprint and variant. The path
// is deterministic, so concurrent writers for the same text target the same
// destination and the last writer wins, an accepted race, since renders of
// identical text are interchangeable.
func (s *Store) PathFor(fp utterance.Fingerprint, variant Variant) string {
	return filepath.Join(s.root, string(fp)+string(variant)+".wav")
}

// Lookup reports a hit only if an artifact for the fingerprint exists and is
// at least the minimum viable size. Primary renders are preferred over mock
// variants of the same text. An unreadable root is a real storage error and
// is returned as such.
func (s *Store) Lookup(fp utterance.Fingerprint) (Artifact, bool, error) {
	for _, variant := range []Variant{VariantPrimary, VariantMock} {
		path := s.PathFor(fp, variant)
		info, err := os.Stat(path)
		if err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return Artifact{}, false, fmt.Errorf("stat cache entry: %w", err)
		}
		if info.Size() < tts.MinViableAudioBytes {
			// Corrupt or silent entry; treat as a miss and let the
			// caller overwrite it.
			slog.Warn("undersized cache entry bypassed",
				"path", path, "size", info.Size())
			continue
		}
		return Artifact{Path: path, Size: info.Size()}, true, nil
	}
	return Artifact{}, false, nil
}

// Put writes audio bytes to the artifact path for fp and variant, then
// verifies the written file meets the minimum viable size. Undersized
// payloads are still written (the lookup path ignores them) but reported
// as tts.ErrArtifactTooSmall so the caller falls back.
func (s *Store) Put(fp utterance.Fingerprint, variant Variant, audio []byte) (string, error) {
	path := s.PathFor(fp, variant)
	if err := os.WriteFile(path, audio, 0o644); err != nil {
		return "", fmt.Errorf("writing cache entry: %w", err)
	}
	if int64(len(audio)) < tts.MinViableAudioBytes {
		return "", fmt.Errorf("cache entry %s (%d bytes): %w",
			path, len(audio), tts.ErrArtifactTooSmall)
	}
	return path, nil
}

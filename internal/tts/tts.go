// Package tts defines the contract for text-to-speech backends.
//
// Voxpet resolves every spoken line through a three-tier fallback
// (cache → live backend → procedural mock), so backends report failure
// through typed errors rather than panics or raw status codes. The resolver
// matches on these errors to decide which tier to try next.
package tts

import (
	"context"
	"errors"
)

// MinViableAudioBytes is the smallest WAV the pipeline accepts as real audio.
// Anything smaller is treated as corrupt or silent: a backend can answer 200
// with an empty or truncated body, and a cached file can be damaged on disk.
const MinViableAudioBytes = 20480 // 20 KiB

var (
	// ErrEmptySpokenText rejects synthesis of text that is empty after trimming.
	ErrEmptySpokenText = errors.New("spoken text is empty")

	// ErrBackendUnavailable means the backend could not be reached at all
	// (connection refused, timeout, liveness probe failure).
	ErrBackendUnavailable = errors.New("tts backend unavailable")

	// ErrBackendRefused means the backend answered but with a non-success
	// protocol response.
	ErrBackendRefused = errors.New("tts backend refused request")

	// ErrArtifactTooSmall means a rendered or cached artifact is under
	// MinViableAudioBytes and must not be handed to a caller.
	ErrArtifactTooSmall = errors.New("audio artifact below minimum viable size")
)

// Synthesizer renders a spoken text to a WAV file on disk.
type Synthesizer interface {
	// Name returns the backend identifier (e.g. "voicevox", "mock").
	Name() string

	// Available reports whether the backend can currently take work. It must
	// never return an error: any probe failure simply reads as unavailable.
	Available(ctx context.Context) bool

	// Synthesize renders spokenText into a WAV file at path. On success the
	// written file is at least MinViableAudioBytes long. Failures are
	// reported through the typed errors above so the caller can degrade.
	Synthesize(ctx context.Context, spokenText, path string) error
}

// Package utterance defines the core data types flowing through the voxpet pipeline.
package utterance

import (
	"crypto/md5"
	"encoding/hex"
	"strings"
)

// Backend identifies where a synthesis result came from.
type Backend string

const (
	// BackendCache means the artifact was served from the audio cache.
	BackendCache Backend = "cache"

	// BackendVoicevox means the artifact was rendered by the VOICEVOX engine.
	BackendVoicevox Backend = "voicevox"

	// BackendMock means the artifact is the procedurally generated fallback tone.
	BackendMock Backend = "mock"
)

// Utterance is a single line to be voiced: the spoken text in the target
// language plus an optional subtitle in the display language. Immutable once
// built; constructed per request and never persisted.
type Utterance struct {
	// SpokenText is the text handed to the synthesis backend. Non-empty
	// after trimming, or the request is rejected.
	SpokenText string

	// SubtitleText is shown to the user while the audio plays. May be empty,
	// in which case callers fall back to SpokenText for display.
	SubtitleText string
}

// New builds an Utterance from raw caller input, trimming both fields.
func New(spoken, subtitle string) Utterance {
	return Utterance{
		SpokenText:   strings.TrimSpace(spoken),
		SubtitleText: strings.TrimSpace(subtitle),
	}
}

// Fingerprint is the sole cache key: a stable digest of the spoken text.
// It deliberately excludes subtitle, backend choice, and synthesis
// parameters, so a parameter change alone never invalidates a cache entry.
type Fingerprint string

// FingerprintOf computes the fingerprint for a spoken text. Identical text
// always yields the identical fingerprint, across process restarts.
func FingerprintOf(spokenText string) Fingerprint {
	sum := md5.Sum([]byte(spokenText))
	return Fingerprint(hex.EncodeToString(sum[:]))
}

// Fingerprint returns the cache key for this utterance's spoken text.
func (u Utterance) Fingerprint() Fingerprint {
	return FingerprintOf(u.SpokenText)
}

// SynthesisOutcome is the resolver's result: a playable artifact plus the
// subtitle to display alongside it.
type SynthesisOutcome struct {
	// ArtifactPath is the absolute path of the WAV file.
	ArtifactPath string

	// SubtitleText is the display string, never empty on a successful outcome.
	SubtitleText string

	// Backend records which tier produced the artifact.
	Backend Backend

	// ErrorNote is set only when an unexpected failure forced the mock
	// fallback. Its presence does not change the success status.
	ErrorNote string
}

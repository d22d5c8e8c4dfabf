// Package resolver implements the synthesis resolution pipeline.
//
// Given an utterance, the resolver guarantees an audible artifact through a
// strict three-tier order: the content-addressed cache, then the live
// backend if configured and alive, then the procedural mock tone. The
// product guarantee is "always produce some audible response", not "always
// produce the best response": only two failures are ever allowed to reach
// the caller: empty spoken text, and storage so broken that even the mock
// cannot be written.
package resolver

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/ayamizu/voxpet/internal/cache"
	"github.com/ayamizu/voxpet/internal/observability"
	"github.com/ayamizu/voxpet/internal/tts"
	"github.com/ayamizu/voxpet/internal/utterance"
)

// Resolver turns utterances into synthesis outcomes.
type Resolver struct {
	store   *cache.Store
	primary tts.Synthesizer // nil when the configured preference is not a live backend
	mock    tts.Synthesizer
}

// New creates a Resolver. primary may be nil to disable the live tier;
// store and mock are required.
func New(store *cache.Store, primary, mock tts.Synthesizer) *Resolver {
	return &Resolver{store: store, primary: primary, mock: mock}
}

// Resolve produces an artifact for the utterance.
//
// The only error values callers will see are tts.ErrEmptySpokenText for a
// rejected input and a wrapped storage error when the final mock fallback
// itself failed. Every other failure is contained: the outcome carries
// Backend = mock and, when the failure was unexpected, a short ErrorNote.
func (r *Resolver) Resolve(ctx context.Context, u utterance.Utterance) (utterance.SynthesisOutcome, error) {
	if strings.TrimSpace(u.SpokenText) == "" {
		return utterance.SynthesisOutcome{}, tts.ErrEmptySpokenText
	}

	start := time.Now()
	outcome, err := r.resolve(ctx, u)
	if err == nil {
		observability.RecordSynthesis(string(outcome.Backend), start)
		return outcome, nil
	}

	// Outer containment: whatever went wrong below (storage error during
	// lookup, a mock write failure racing a disk problem), try the mock one
	// final time before admitting defeat.
	slog.Error("synthesis pipeline failed, attempting final mock fallback", "error", err)

	path := r.store.PathFor(u.Fingerprint(), cache.VariantMock)
	if mockErr := r.mock.Synthesize(ctx, u.SpokenText, path); mockErr != nil {
		return utterance.SynthesisOutcome{},
			fmt.Errorf("synthesis fatal: %w", errors.Join(err, mockErr))
	}

	outcome = utterance.SynthesisOutcome{
		ArtifactPath: path,
		SubtitleText: u.SubtitleText,
		Backend:      utterance.BackendMock,
		ErrorNote:    err.Error(),
	}
	observability.RecordSynthesis(string(outcome.Backend), start)
	return outcome, nil
}

// resolve walks the tiers in strict order. Any returned error is handed to
// the outer containment in Resolve.
func (r *Resolver) resolve(ctx context.Context, u utterance.Utterance) (utterance.SynthesisOutcome, error) {
	fp := u.Fingerprint()

	// Tier 1: cache. The common case, and the only tier with no network call.
	art, hit, err := r.store.Lookup(fp)
	if err != nil {
		return utterance.SynthesisOutcome{}, err
	}
	observability.RecordCacheLookup(hit)
	if hit {
		slog.Debug("cache hit", "fingerprint", fp, "path", art.Path)
		return utterance.SynthesisOutcome{
			ArtifactPath: art.Path,
			SubtitleText: u.SubtitleText,
			Backend:      utterance.BackendCache,
		}, nil
	}

	// Tier 2: live backend, only when configured and answering its probe.
	if r.primary != nil && r.primary.Available(ctx) {
		path := r.store.PathFor(fp, cache.VariantPrimary)
		synthErr := r.primary.Synthesize(ctx, u.SpokenText, path)
		if synthErr == nil {
			return utterance.SynthesisOutcome{
				ArtifactPath: path,
				SubtitleText: u.SubtitleText,
				Backend:      utterance.Backend(r.primary.Name()),
			}, nil
		}
		// Expected degradation, not an error to contain: the mock tier is next.
		slog.Warn("primary synthesis failed, falling back to mock",
			"backend", r.primary.Name(), "error", synthErr)
	}

	// Tier 3: mock. A failure here is a storage problem and goes to the
	// outer containment for one last attempt.
	path := r.store.PathFor(fp, cache.VariantMock)
	if mockErr := r.mock.Synthesize(ctx, u.SpokenText, path); mockErr != nil {
		return utterance.SynthesisOutcome{}, mockErr
	}
	return utterance.SynthesisOutcome{
		ArtifactPath: path,
		SubtitleText: u.SubtitleText,
		Backend:      utterance.BackendMock,
	}, nil
}

// Package voicevox implements the tts.Synthesizer against a VOICEVOX engine.
//
// Synthesis is two-phase: POST /audio_query builds a structured utterance
// query for the text, then POST /synthesis renders that query to WAV bytes.
// Between the phases the query is hardened: VOICEVOX can hand back a
// technically valid configuration that renders near-silent audio, and the
// pipeline's guarantee ("never an inaudible file") has to be enforced before
// the engine applies its own defaults.
//
// The adapter never lets a transient failure escalate: every error is typed
// so the resolver can fall back to the mock tier.
package voicevox

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"math"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"time"

	"github.com/ayamizu/voxpet/internal/config"
	"github.com/ayamizu/voxpet/internal/observability"
	"github.com/ayamizu/voxpet/internal/tts"
)

// Per-phase timeouts. Rendering is much heavier than query building, and the
// liveness probe has to answer fast enough to not stall the request path.
const (
	probeTimeout     = 3 * time.Second
	queryTimeout     = 10 * time.Second
	synthesisTimeout = 30 * time.Second
)

// volumeScaleFloor is the minimum volume the engine is allowed to render at.
const volumeScaleFloor = 0.8

// Synthesizer implements tts.Synthesizer over the VOICEVOX HTTP API.
type Synthesizer struct {
	endpoint string
	speaker  int
	client   *http.Client
}

// New creates a VOICEVOX synthesizer from config.
func New(cfg config.VoicevoxConfig) *Synthesizer {
	return &Synthesizer{
		endpoint: cfg.Endpoint,
		speaker:  cfg.Speaker,
		client:   &http.Client{},
	}
}

// Name returns the backend identifier.
func (s *Synthesizer) Name() string { return "voicevox" }

// Available probes GET /version with a short timeout. Any network or
// protocol error reads as unavailable.
func (s *Synthesizer) Available(ctx context.Context) bool {
	ctx, cancel := context.WithTimeout(ctx, probeTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.endpoint+"/version", nil)
	if err != nil {
		return false
	}
	resp, err := s.client.Do(req)
	if err != nil {
		slog.Debug("voicevox probe failed", "error", err)
		return false
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	return resp.StatusCode == http.StatusOK
}

// Synthesize renders spokenText to a WAV file at path. The written file is
// verified against the minimum viable size before success is reported; an
// engine that answers 200 with an empty or truncated body is caught here.
func (s *Synthesizer) Synthesize(ctx context.Context, spokenText, path string) error {
	query, err := s.buildQuery(ctx, spokenText)
	if err != nil {
		observability.RecordVoicevoxRequest(false)
		return err
	}

	hardenQuery(query)

	audio, err := s.render(ctx, query)
	if err != nil {
		observability.RecordVoicevoxRequest(false)
		return err
	}

	if err := os.WriteFile(path, audio, 0o644); err != nil {
		observability.RecordVoicevoxRequest(false)
		return fmt.Errorf("writing voicevox wav: %w", err)
	}

	if len(audio) < tts.MinViableAudioBytes {
		observability.RecordVoicevoxRequest(false)
		return fmt.Errorf("voicevox render %d bytes: %w", len(audio), tts.ErrArtifactTooSmall)
	}

	observability.RecordVoicevoxRequest(true)
	slog.Debug("voicevox synthesis complete", "path", path, "bytes", len(audio))
	return nil
}

// buildQuery asks the engine for an utterance query document.
func (s *Synthesizer) buildQuery(ctx context.Context, spokenText string) (map[string]any, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	q := make(url.Values)
	q.Set("text", spokenText)
	q.Set("speaker", strconv.Itoa(s.speaker))

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		s.endpoint+"/audio_query?"+q.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("creating audio_query request: %w", err)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("audio_query: %w: %w", tts.ErrBackendUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return nil, fmt.Errorf("audio_query status %d: %s: %w",
			resp.StatusCode, body, tts.ErrBackendRefused)
	}

	var query map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&query); err != nil {
		return nil, fmt.Errorf("decoding audio_query: %w: %w", tts.ErrBackendRefused, err)
	}
	return query, nil
}

// render submits the hardened query for synthesis and returns the WAV bytes.
func (s *Synthesizer) render(ctx context.Context, query map[string]any) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, synthesisTimeout)
	defer cancel()

	body, err := json.Marshal(query)
	if err != nil {
		return nil, fmt.Errorf("marshalling query: %w", err)
	}

	q := make(url.Values)
	q.Set("speaker", strconv.Itoa(s.speaker))
	q.Set("enable_interrogative_upspeak", "true")

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		s.endpoint+"/synthesis?"+q.Encode(), bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("creating synthesis request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("synthesis: %w: %w", tts.ErrBackendUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return nil, fmt.Errorf("synthesis status %d: %s: %w",
			resp.StatusCode, respBody, tts.ErrBackendRefused)
	}

	audio, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading synthesis body: %w: %w", tts.ErrBackendUnavailable, err)
	}
	return audio, nil
}

// hardenQuery clamps the query fields that can make a render inaudible and
// fills in safe defaults for the ones the engine may omit.
func hardenQuery(query map[string]any) {
	query["volumeScale"] = math.Max(volumeScaleFloor, floatOr(query["volumeScale"], 1.0))
	query["intonationScale"] = floatOr(query["intonationScale"], 1.0)
	query["speedScale"] = floatOr(query["speedScale"], 1.0)
	query["pitchScale"] = floatOr(query["pitchScale"], 0.0)
	query["prePhonemeLength"] = floatOr(query["prePhonemeLength"], 0.1)
	query["postPhonemeLength"] = floatOr(query["postPhonemeLength"], 0.1)
}

func floatOr(v any, fallback float64) float64 {
	f, ok := v.(float64)
	if !ok {
		return fallback
	}
	return f
}

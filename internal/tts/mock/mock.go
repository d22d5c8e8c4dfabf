// Package mock implements the procedural fallback synthesizer.
//
// It writes a pure sine tone as a mono 16-bit PCM WAV file. The output is
// fully deterministic for a given set of parameters, which makes it usable
// for golden-file tests, and the default parameters produce a file safely
// above the pipeline's minimum viable size. This is the last line of
// defense before total failure, so unlike the live backend adapter its
// storage errors are propagated, not swallowed.
package mock

import (
	"bytes"
	"context"
	"encoding/binary"
	"fmt"
	"math"
	"os"
)

// Default tone parameters, matching the placeholder beep shipped to clients.
const (
	DefaultDuration   = 1.2   // seconds
	DefaultFrequency  = 660.0 // Hz
	DefaultSampleRate = 24000 // Hz

	amplitude = 0.25 // fraction of full scale, loud enough without clipping
)

// Options controls tone generation. Zero values fall back to the defaults.
type Options struct {
	// Duration is the tone length in seconds.
	Duration float64

	// Seconds is an older spelling of Duration kept for call sites written
	// against the previous signature. When both are set, Seconds wins.
	Seconds float64

	// Frequency is the tone pitch in Hz.
	Frequency float64

	// SampleRate is the output sample rate in Hz.
	SampleRate int
}

func (o Options) normalized() Options {
	if o.Seconds > 0 {
		o.Duration = o.Seconds
	}
	if o.Duration <= 0 {
		o.Duration = DefaultDuration
	}
	if o.Frequency <= 0 {
		o.Frequency = DefaultFrequency
	}
	if o.SampleRate <= 0 {
		o.SampleRate = DefaultSampleRate
	}
	return o
}

// Synthesizer implements tts.Synthesizer with a generated sine tone.
type Synthesizer struct {
	opts Options
}

// New creates a mock synthesizer using the given tone options.
func New(opts Options) *Synthesizer {
	return &Synthesizer{opts: opts.normalized()}
}

// Name returns the backend identifier.
func (s *Synthesizer) Name() string { return "mock" }

// Available always reports true: the mock needs nothing but writable storage.
func (s *Synthesizer) Available(ctx context.Context) bool { return true }

// Synthesize writes the placeholder tone to path. The spoken text does not
// influence the waveform; only the configured tone parameters do.
func (s *Synthesizer) Synthesize(ctx context.Context, spokenText, path string) error {
	return WriteTone(path, s.opts)
}

// WriteTone renders a sine tone WAV to path, overwriting any existing file.
func WriteTone(path string, opts Options) error {
	opts = opts.normalized()

	nframes := int(float64(opts.SampleRate) * opts.Duration)
	pcm := make([]byte, 0, nframes*2)
	var sample [2]byte
	for i := 0; i < nframes; i++ {
		val := int16(32767 * amplitude *
			math.Sin(2*math.Pi*opts.Frequency*float64(i)/float64(opts.SampleRate)))
		binary.LittleEndian.PutUint16(sample[:], uint16(val))
		pcm = append(pcm, sample[0], sample[1])
	}

	wav := pcmToWAV(pcm, opts.SampleRate, 1, 2)
	if err := os.WriteFile(path, wav, 0o644); err != nil {
		return fmt.Errorf("writing mock wav: %w", err)
	}
	return nil
}

// pcmToWAV wraps raw PCM data in a WAV container.
func pcmToWAV(pcm []byte, sampleRate, channels, bytesPerSample int) []byte {
	dataLen := len(pcm)
	fileLen := 36 + dataLen // 44-byte header minus 8 bytes for RIFF header = 36

	buf := &bytes.Buffer{}
	buf.Grow(44 + dataLen)

	// RIFF header
	buf.WriteString("RIFF")
	_ = binary.Write(buf, binary.LittleEndian, uint32(fileLen))
	buf.WriteString("WAVE")

	// fmt subchunk
	buf.WriteString("fmt ")
	_ = binary.Write(buf, binary.LittleEndian, uint32(16))       // subchunk1 size
	_ = binary.Write(buf, binary.LittleEndian, uint16(1))        // audio format (PCM)
	_ = binary.Write(buf, binary.LittleEndian, uint16(channels)) // channels
	_ = binary.Write(buf, binary.LittleEndian, uint32(sampleRate))
	byteRate := sampleRate * channels * bytesPerSample
	_ = binary.Write(buf, binary.LittleEndian, uint32(byteRate))
	blockAlign := channels * bytesPerSample
	_ = binary.Write(buf, binary.LittleEndian, uint16(blockAlign))
	_ = binary.Write(buf, binary.LittleEndian, uint16(bytesPerSample*8))

	// data subchunk
	buf.WriteString("data")
	_ = binary.Write(buf, binary.LittleEndian, uint32(dataLen))
	buf.Write(pcm)

	return buf.Bytes()
}

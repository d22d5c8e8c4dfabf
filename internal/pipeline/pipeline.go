// Package pipeline composes the chat collaborator with the synthesis
// resolver: given free-form input it produces an utterance and voices it.
package pipeline

import (
	"context"
	"log/slog"
	"strings"

	"github.com/ayamizu/voxpet/internal/chat"
	"github.com/ayamizu/voxpet/internal/resolver"
	"github.com/ayamizu/voxpet/internal/utterance"
)

// DefaultPrompt is voiced when the caller supplied no usable text at all.
const DefaultPrompt = "テストです"

// PatLine is the canned line spoken when the companion is patted.
const PatLine = "頭をなでる"

// Input is what a caller hands to the pipeline. Either a pre-formed
// utterance (SpokenText, optionally SubtitleText) or free-form Text to run
// through the chat collaborator first.
type Input struct {
	Text         string
	SpokenText   string
	SubtitleText string
}

// Pipeline produces spoken replies.
type Pipeline struct {
	resolver  *resolver.Resolver
	completer chat.Completer
}

// New creates a Pipeline from a resolver and a chat completer.
func New(r *resolver.Resolver, c chat.Completer) *Pipeline {
	return &Pipeline{resolver: r, completer: c}
}

// ProduceSpokenReply resolves an audible artifact for the input.
//
// A pre-formed utterance skips reply generation entirely. Otherwise the chat
// collaborator produces a single-turn reply that is used as both spoken text
// and subtitle (no translation in this mode; the collaborator echoes the
// user on its own failures, so this step never hard-fails). The returned
// outcome always carries a non-empty subtitle for display.
func (p *Pipeline) ProduceSpokenReply(ctx context.Context, in Input) (utterance.SynthesisOutcome, error) {
	spoken := strings.TrimSpace(in.SpokenText)
	subtitle := strings.TrimSpace(in.SubtitleText)

	if spoken == "" {
		text := strings.TrimSpace(in.Text)
		if text == "" {
			text = DefaultPrompt
		}
		reply, _ := p.completer.Complete(ctx, []chat.Turn{{Role: "user", Content: text}})
		spoken = strings.TrimSpace(reply)
		if spoken == "" {
			spoken = DefaultPrompt
		}
		if subtitle == "" {
			subtitle = spoken
		}
		slog.Debug("reply generated", "input_length", len(text), "reply_length", len(spoken))
	}

	out, err := p.resolver.Resolve(ctx, utterance.New(spoken, subtitle))
	if err != nil {
		return out, err
	}
	if out.SubtitleText == "" {
		out.SubtitleText = spoken
	}
	return out, nil
}

// Pat voices the canned pat response.
func (p *Pipeline) Pat(ctx context.Context) (utterance.SynthesisOutcome, error) {
	return p.ProduceSpokenReply(ctx, Input{Text: PatLine})
}

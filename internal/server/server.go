// Package server exposes the voxpet HTTP API consumed by the desktop shell.
//
// The surface is deliberately small: /tts voices a pre-formed utterance,
// /say runs free text through the full reply pipeline, /pat triggers the
// canned pat response, /chat proxies the chat backend, and /reply_bi is the
// bilingual placeholder. Response shapes are fixed by the existing clients
// and must not change.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	httpSwagger "github.com/swaggo/http-swagger/v2"

	"github.com/ayamizu/voxpet/internal/chat"
	"github.com/ayamizu/voxpet/internal/pipeline"
	"github.com/ayamizu/voxpet/internal/resolver"
	"github.com/ayamizu/voxpet/internal/tts"
	"github.com/ayamizu/voxpet/internal/utterance"
)

// Server serves the voxpet API.
type Server struct {
	port      int
	resolver  *resolver.Resolver
	pipeline  *pipeline.Pipeline
	completer chat.Completer
	server    *http.Server
}

// New creates a Server on the given port.
func New(port int, r *resolver.Resolver, p *pipeline.Pipeline, c chat.Completer) *Server {
	return &Server{port: port, resolver: r, pipeline: p, completer: c}
}

// TTSRequest is the body of POST /tts.
type TTSRequest struct {
	SpokenText   string `json:"spokenText"`
	SubtitleText string `json:"subtitleText,omitempty"`
}

// SayRequest is the body of POST /say.
type SayRequest struct {
	Text         string `json:"text,omitempty"`
	SpokenText   string `json:"spokenText,omitempty"`
	SubtitleText string `json:"subtitleText,omitempty"`
}

// SpeechResponse is the shared response shape of /tts, /say and /pat.
type SpeechResponse struct {
	WavPath    string `json:"wav_path"`
	SubtitleZH string `json:"subtitle_zh"`
	Backend    string `json:"backend"`
	Error      string `json:"error,omitempty"`
}

// ChatRequest is the body of POST /chat.
type ChatRequest struct {
	Messages []chat.Turn `json:"messages"`
}

// ChatResponse is the response of POST /chat.
type ChatResponse struct {
	Response string      `json:"response"`
	History  []chat.Turn `json:"history"`
}

// ReplyBiRequest is the body of POST /reply_bi.
type ReplyBiRequest struct {
	Text    string      `json:"text,omitempty"`
	ZH      string      `json:"zh,omitempty"`
	JA      string      `json:"ja,omitempty"`
	History []chat.Turn `json:"history,omitempty"`
}

// ReplyBiResponse is the response of POST /reply_bi.
type ReplyBiResponse struct {
	ZH      string      `json:"zh"`
	JA      string      `json:"ja"`
	History []chat.Turn `json:"history"`
}

// Handler builds the request mux. Exposed for tests.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("POST /tts", s.handleTTS)
	mux.HandleFunc("POST /say", s.handleSay)
	mux.HandleFunc("POST /pat", s.handlePat)
	mux.HandleFunc("POST /chat", s.handleChat)
	mux.HandleFunc("POST /reply_bi", s.handleReplyBi)

	// Swagger UI for the generated OpenAPI docs.
	mux.Handle("GET /swagger/", httpSwagger.Handler(
		httpSwagger.URL("/swagger/doc.json"),
	))

	return withRequestID(mux)
}

// Listen starts the API server. It blocks until the context is cancelled.
func (s *Server) Listen(ctx context.Context) error {
	s.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", s.port),
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	slog.Info("api server listening", "port", s.port)

	go func() {
		<-ctx.Done()
		slog.Info("api server shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = s.server.Shutdown(shutdownCtx)
	}()

	if err := s.server.ListenAndServe(); err != http.ErrServerClosed {
		return fmt.Errorf("api listen: %w", err)
	}
	return nil
}

// Close gracefully shuts down the server, draining in-flight requests.
func (s *Server) Close() error {
	if s.server != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return s.server.Shutdown(ctx)
	}
	return nil
}

// handleTTS voices a pre-formed utterance.
//
// @Summary     Synthesize speech for a spoken text
// @Description Resolves the text through cache → VOICEVOX → mock and returns the artifact path.
// @Description The call succeeds even when the live backend is down; only empty input (400) and
// @Description an unwritable cache (500) fail.
// @Tags        speech
// @Accept      json
// @Produce     json
// @Param       request  body      TTSRequest  true  "Spoken text plus optional subtitle"
// @Success     200  {object}  SpeechResponse
// @Failure     400  {string}  string  "Spoken text empty"
// @Failure     500  {string}  string  "Storage failure after mock fallback"
// @Router      /tts [post]
func (s *Server) handleTTS(w http.ResponseWriter, r *http.Request) {
	var req TTSRequest
	if err := decodeBody(r, &req); err != nil {
		http.Error(w, "invalid json: "+err.Error(), http.StatusBadRequest)
		return
	}

	out, err := s.resolver.Resolve(r.Context(), utterance.New(req.SpokenText, req.SubtitleText))
	if err != nil {
		if errors.Is(err, tts.ErrEmptySpokenText) {
			http.Error(w, "spoken text is empty", http.StatusBadRequest)
			return
		}
		slog.Error("tts fatal", "error", err)
		http.Error(w, "tts fatal: "+err.Error(), http.StatusInternalServerError)
		return
	}

	writeJSON(w, SpeechResponse{
		WavPath:    out.ArtifactPath,
		SubtitleZH: out.SubtitleText,
		Backend:    string(out.Backend),
		Error:      out.ErrorNote,
	})
}

// handleSay produces and voices a reply for free-form input.
//
// @Summary     Produce a spoken reply
// @Description With spokenText the utterance is voiced directly; with only text a reply is
// @Description generated by the chat backend first. Empty input falls back to a fixed test line.
// @Tags        speech
// @Accept      json
// @Produce     json
// @Param       request  body      SayRequest  true  "Free text or a pre-formed utterance"
// @Success     200  {object}  SpeechResponse
// @Failure     400  {string}  string  "Invalid request body"
// @Failure     500  {string}  string  "Storage failure after mock fallback"
// @Router      /say [post]
func (s *Server) handleSay(w http.ResponseWriter, r *http.Request) {
	var req SayRequest
	if err := decodeBody(r, &req); err != nil {
		http.Error(w, "invalid json: "+err.Error(), http.StatusBadRequest)
		return
	}

	out, err := s.pipeline.ProduceSpokenReply(r.Context(), pipeline.Input{
		Text:         req.Text,
		SpokenText:   req.SpokenText,
		SubtitleText: req.SubtitleText,
	})
	if err != nil {
		slog.Error("say fatal", "error", err)
		http.Error(w, "say fatal: "+err.Error(), http.StatusInternalServerError)
		return
	}

	writeJSON(w, SpeechResponse{
		WavPath:    out.ArtifactPath,
		SubtitleZH: out.SubtitleText,
		Backend:    string(out.Backend),
	})
}

// handlePat voices the canned pat response.
//
// @Summary     Trigger the pat response
// @Tags        speech
// @Produce     json
// @Success     200  {object}  SpeechResponse
// @Failure     500  {string}  string  "Storage failure after mock fallback"
// @Router      /pat [post]
func (s *Server) handlePat(w http.ResponseWriter, r *http.Request) {
	out, err := s.pipeline.Pat(r.Context())
	if err != nil {
		slog.Error("pat fatal", "error", err)
		http.Error(w, "pat fatal: "+err.Error(), http.StatusInternalServerError)
		return
	}

	writeJSON(w, SpeechResponse{
		WavPath:    out.ArtifactPath,
		SubtitleZH: out.SubtitleText,
		Backend:    string(out.Backend),
	})
}

// handleChat proxies the chat backend.
//
// @Summary     Single-turn chat completion
// @Description Proxies the configured chat backend. On backend failure the last user
// @Description message is echoed back; this endpoint never hard-fails.
// @Tags        chat
// @Accept      json
// @Produce     json
// @Param       request  body      ChatRequest  true  "Conversation turns"
// @Success     200  {object}  ChatResponse
// @Failure     400  {string}  string  "Invalid request body"
// @Router      /chat [post]
func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	var req ChatRequest
	if err := decodeBody(r, &req); err != nil {
		http.Error(w, "invalid json: "+err.Error(), http.StatusBadRequest)
		return
	}

	reply, history := s.completer.Complete(r.Context(), req.Messages)
	writeJSON(w, ChatResponse{Response: reply, History: history})
}

// handleReplyBi is the bilingual reply placeholder: no translation yet, the
// input is reused for both languages.
//
// @Summary     Bilingual reply placeholder
// @Tags        chat
// @Accept      json
// @Produce     json
// @Param       request  body      ReplyBiRequest  true  "Text in either or both languages"
// @Success     200  {object}  ReplyBiResponse
// @Failure     400  {string}  string  "Invalid request body"
// @Router      /reply_bi [post]
func (s *Server) handleReplyBi(w http.ResponseWriter, r *http.Request) {
	var req ReplyBiRequest
	if err := decodeBody(r, &req); err != nil {
		http.Error(w, "invalid json: "+err.Error(), http.StatusBadRequest)
		return
	}

	text := strings.TrimSpace(req.Text)
	if text == "" {
		text = strings.TrimSpace(req.ZH)
	}
	if text == "" {
		text = strings.TrimSpace(req.JA)
	}

	zh := strings.TrimSpace(req.ZH)
	if zh == "" {
		zh = text
	}
	ja := strings.TrimSpace(req.JA)
	if ja == "" {
		ja = text
	}

	history := append(req.History, chat.Turn{Role: "assistant", Content: ja})
	writeJSON(w, ReplyBiResponse{ZH: zh, JA: ja, History: history})
}

// decodeBody decodes a JSON body, treating an empty body as an empty object
// so bodyless POSTs (the desktop shell sends none for /pat-style calls)
// still work.
func decodeBody(r *http.Request, v any) error {
	data, err := io.ReadAll(io.LimitReader(r.Body, 1<<20))
	if err != nil {
		return err
	}
	if len(strings.TrimSpace(string(data))) == 0 {
		return nil
	}
	return json.Unmarshal(data, v)
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

// withRequestID attaches a request id to the handler's log records.
func withRequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := uuid.NewString()
		slog.Debug("request received",
			"request_id", id, "method", r.Method, "path", r.URL.Path)
		w.Header().Set("X-Request-Id", id)
		next.ServeHTTP(w, r)
	})
}

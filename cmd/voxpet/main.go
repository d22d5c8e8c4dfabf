// Voxpet is the voice-response daemon for a desktop companion character:
// given text it obtains a reply, synthesizes speech for it, and hands the
// display client an audio artifact plus a subtitle.
//
// Usage:
//
//	voxpet [flags]
//	voxpet --config /path/to/voxpet.yaml
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	_ "github.com/ayamizu/voxpet/docs"
	"github.com/ayamizu/voxpet/internal/cache"
	"github.com/ayamizu/voxpet/internal/chat"
	"github.com/ayamizu/voxpet/internal/config"
	"github.com/ayamizu/voxpet/internal/health"
	"github.com/ayamizu/voxpet/internal/pipeline"
	"github.com/ayamizu/voxpet/internal/resolver"
	"github.com/ayamizu/voxpet/internal/server"
	"github.com/ayamizu/voxpet/internal/tts"
	"github.com/ayamizu/voxpet/internal/tts/mock"
	"github.com/ayamizu/voxpet/internal/tts/voicevox"
)

// version is set at build time via ldflags.
var version = "dev"

// @title        voxpet API
// @version      1.0
// @description  Voice-response pipeline for a desktop companion: chat reply generation and cached speech synthesis with mock fallback.
// @BasePath     /
func main() {
	showVersion := flag.Bool("version", false, "print version and exit")
	configFile := flag.String("config", "", "path to config file (e.g. configs/voxpet.yaml)")
	flag.Parse()

	if *showVersion {
		fmt.Printf("voxpet %s\n", version)
		os.Exit(0)
	}

	// Load configuration.
	cfg, err := config.Load(*configFile)
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	// Setup structured logging.
	config.SetupLogging(cfg.Logging)
	slog.Info("voxpet starting", "version", version)

	// Create root context with signal handling for graceful shutdown.
	ctx, cancel := signal.NotifyContext(context.Background(),
		syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// The artifact store is the only hard dependency: without writable
	// storage even the mock fallback cannot save the request.
	store, err := cache.New(cfg.Cache.Dir)
	if err != nil {
		slog.Error("failed to open audio cache", "dir", cfg.Cache.Dir, "error", err)
		os.Exit(1)
	}
	slog.Info("audio cache ready", "dir", store.Root())

	// Initialize the synthesis tiers.
	var primary tts.Synthesizer
	switch cfg.TTS.Backend {
	case "voicevox":
		vv := voicevox.New(cfg.TTS.Voicevox)
		primary = vv
		slog.Info("using voicevox backend",
			"endpoint", cfg.TTS.Voicevox.Endpoint,
			"speaker", cfg.TTS.Voicevox.Speaker)
	default:
		slog.Info("live tts backend disabled, mock only", "backend", cfg.TTS.Backend)
	}
	fallback := mock.New(mock.Options{})

	res := resolver.New(store, primary, fallback)

	completer := chat.New(cfg.Chat)
	pipe := pipeline.New(res, completer)

	// Start health check server.
	healthServer := health.New(cfg.Server.HealthPort)
	healthServer.AddCheck("ollama", completer.Available, false,
		"unreachable, replies degrade to echo")
	if primary != nil {
		healthServer.AddCheck("voicevox", primary.Available, false,
			"unreachable, speech degrades to mock")
	}
	go func() {
		if err := healthServer.ListenAndServe(ctx); err != nil {
			slog.Error("health server failed", "error", err)
		}
	}()

	api := server.New(cfg.Server.Port, res, pipe, completer)

	healthServer.SetReady(true)
	slog.Info("voxpet ready",
		"port", cfg.Server.Port,
		"health_port", cfg.Server.HealthPort)

	if err := api.Listen(ctx); err != nil {
		slog.Error("api server failed", "error", err)
		os.Exit(1)
	}

	slog.Info("voxpet stopped")
}

// Package config handles loading and validating the voxpet configuration.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config is the root configuration for the voxpet daemon.
type Config struct {
	Server  ServerConfig  `mapstructure:"server"`
	Cache   CacheConfig   `mapstructure:"cache"`
	TTS     TTSConfig     `mapstructure:"tts"`
	Chat    ChatConfig    `mapstructure:"chat"`
	Logging LoggingConfig `mapstructure:"logging"`
}

// ServerConfig holds the API and health server settings.
type ServerConfig struct {
	Port       int `mapstructure:"port"`
	HealthPort int `mapstructure:"health_port"`
}

// CacheConfig holds the audio artifact store settings.
type CacheConfig struct {
	// Dir is the cache root; artifacts accumulate here without eviction.
	Dir string `mapstructure:"dir"`
}

// TTSConfig selects and configures the speech synthesis backend.
type TTSConfig struct {
	// Backend is "voicevox" to use the live engine, anything else to go
	// straight to the mock tone.
	Backend  string         `mapstructure:"backend"`
	Voicevox VoicevoxConfig `mapstructure:"voicevox"`
}

// VoicevoxConfig holds VOICEVOX engine settings.
type VoicevoxConfig struct {
	Endpoint string `mapstructure:"endpoint"`
	Speaker  int    `mapstructure:"speaker"`
}

// ChatConfig holds the chat completion backend settings (Ollama-compatible).
type ChatConfig struct {
	Endpoint string `mapstructure:"endpoint"`
	Model    string `mapstructure:"model"`
}

// LoggingConfig holds structured logging settings.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`  // debug, info, warn, error
	Format string `mapstructure:"format"` // json, text
}

// Load reads the configuration from file, environment variables, and defaults.
// If configFile is non-empty it is used directly; otherwise the standard
// search order applies: ./voxpet.yaml, ./configs/voxpet.yaml, /etc/voxpet/voxpet.yaml.
func Load(configFile string) (*Config, error) {
	// A .env file next to the binary takes lowest precedence.
	_ = godotenv.Load()

	v := viper.New()

	// Defaults
	v.SetDefault("server.port", 5000)
	v.SetDefault("server.health_port", 8081)
	v.SetDefault("cache.dir", "voices")
	v.SetDefault("tts.backend", "voicevox")
	v.SetDefault("tts.voicevox.endpoint", "http://127.0.0.1:50021")
	v.SetDefault("tts.voicevox.speaker", 1)
	v.SetDefault("chat.endpoint", "http://127.0.0.1:11434")
	v.SetDefault("chat.model", "qwen3:8b")
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")

	// Config file
	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("voxpet")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./configs")
		v.AddConfigPath("/etc/voxpet")
	}

	// Environment variables: VOXPET_SERVER_PORT, VOXPET_TTS_BACKEND, etc.
	v.SetEnvPrefix("VOXPET")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// The flat names used by earlier deployments keep working.
	_ = v.BindEnv("server.port", "VOXPET_SERVER_PORT", "API_PORT")
	_ = v.BindEnv("tts.backend", "VOXPET_TTS_BACKEND", "TTS_BACKEND")
	_ = v.BindEnv("tts.voicevox.endpoint", "VOXPET_TTS_VOICEVOX_ENDPOINT", "VOICEVOX_ENDPOINT")
	_ = v.BindEnv("tts.voicevox.speaker", "VOXPET_TTS_VOICEVOX_SPEAKER", "VOICEVOX_SPEAKER")
	_ = v.BindEnv("chat.endpoint", "VOXPET_CHAT_ENDPOINT", "OLLAMA_ENDPOINT")
	_ = v.BindEnv("chat.model", "VOXPET_CHAT_MODEL", "OLLAMA_MODEL")

	// Read config file (optional, env vars and defaults are sufficient)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("reading config: %w", err)
		}
		slog.Info("no config file found, using defaults and environment variables")
	} else {
		slog.Info("loaded config file", "path", v.ConfigFileUsed())
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshalling config: %w", err)
	}

	cfg.TTS.Backend = strings.ToLower(strings.TrimSpace(cfg.TTS.Backend))
	if cfg.Cache.Dir == "" {
		return nil, fmt.Errorf("cache.dir must not be empty")
	}

	return &cfg, nil
}

// SetupLogging configures the global slog logger based on config.
func SetupLogging(cfg LoggingConfig) {
	var level slog.Level
	switch strings.ToLower(cfg.Level) {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}

	var handler slog.Handler
	if strings.ToLower(cfg.Format) == "text" {
		handler = slog.NewTextHandler(os.Stdout, opts)
	} else {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	}

	slog.SetDefault(slog.New(handler))
}

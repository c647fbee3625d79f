// Package main provides the coach HTTP service entry point.
package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/moola-ai/coach/internal/agent"
	"github.com/moola-ai/coach/internal/config"
	"github.com/moola-ai/coach/internal/model"
	"github.com/moola-ai/coach/internal/patterns"
	"github.com/moola-ai/coach/internal/server"
	"github.com/moola-ai/coach/internal/session"
)

// Version is set at build time via ldflags.
var Version = "dev"

func main() {
	configPath := flag.String("config", "", "Config file (default: ~/.coach/coach.toml)")
	addr := flag.String("addr", "", "Listen address (overrides config)")
	debug := flag.Bool("debug", false, "Enable debug logging")
	flag.Parse()

	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	if *debug {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, NoColor: true})

	cfgPath := *configPath
	if cfgPath == "" {
		home, _ := os.UserHomeDir()
		cfgPath = filepath.Join(home, ".coach", "coach.toml")
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		log.Fatal().Err(err).Str("path", cfgPath).Msg("Failed to load config")
	}
	if *addr != "" {
		cfg.Server.Addr = *addr
	}

	// A missing scenario library degrades to chat-only; the matcher just
	// never fires.
	lib, err := patterns.Load()
	if err != nil {
		log.Warn().Err(err).Msg("Scenario library unavailable, pattern matching disabled")
		lib = patterns.Disabled()
	}

	if err := os.MkdirAll(cfg.Paths.DataDir, 0755); err != nil {
		log.Fatal().Err(err).Str("dir", cfg.Paths.DataDir).Msg("Failed to create data directory")
	}
	store, err := session.OpenSQLite(cfg.Paths.SessionsDB)
	if err != nil {
		log.Fatal().Err(err).Str("path", cfg.Paths.SessionsDB).Msg("Failed to open session store")
	}
	defer store.Close()

	apiKey := cfg.ResolveAPIKey()
	if apiKey == "" {
		log.Warn().Msg("No model API key configured, chat requests will fail")
	}
	mdl := model.NewOpenAIClient(&model.OpenAIConfig{
		APIKey:     apiKey,
		BaseURL:    cfg.Model.BaseURL,
		Model:      cfg.Model.Model,
		Timeout:    cfg.ModelTimeout(),
		MaxRetries: cfg.Model.MaxRetries,
	})

	coach := agent.New(&agent.Config{
		Model:       mdl,
		Sessions:    store,
		Library:     lib,
		DefaultMode: cfg.Chat.DefaultMode,
		MaxTokens:   cfg.Chat.MaxTokens,
		Logger:      log.Logger,
	})

	srv := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           server.New(coach, log.Logger).Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		log.Info().Msg("Shutting down")
		cancel()
	}()

	go func() {
		<-ctx.Done()
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Error().Err(err).Msg("Shutdown error")
		}
	}()

	log.Info().
		Str("addr", cfg.Server.Addr).
		Str("model", cfg.Model.Model).
		Str("version", Version).
		Msg("Starting coach server")

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatal().Err(err).Msg("Server error")
	}
}

package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/mindbridge/checkin/backend/internal/config"
	"github.com/mindbridge/checkin/backend/internal/handler"
	"github.com/mindbridge/checkin/backend/internal/service/ai"
	"github.com/mindbridge/checkin/backend/internal/service/chat"
	"github.com/mindbridge/checkin/backend/internal/service/speech"
	"github.com/mindbridge/checkin/backend/internal/store"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Load .env file
	if err := godotenv.Load(); err != nil {
		log.Warn().Err(err).Msg("failed to load .env file, continuing with system environment variables only")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	logger := newLogger(cfg.Log)
	log.Logger = logger

	db, err := store.Open(ctx, cfg.Database, logger.With().Str("component", "store").Logger())
	if err != nil {
		logger.Fatal().Err(err).Str("driver", cfg.Database.Driver).Msg("failed to open store")
	}
	defer db.Close()

	aiService, err := ai.NewService(ctx, cfg.AI, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to initialize AI service")
	}
	logger.Info().Str("provider", aiService.DefaultProvider()).Msg("AI service initialized")

	chatService := chat.NewService(aiService, db, cfg.Checkin, logger)

	speechService := speech.NewService(speech.FromConfig(cfg.Speech), nil, logger)
	if !cfg.Speech.Enabled() {
		logger.Warn().Msg("Azure TTS credentials not configured, /api/speak will report missing credentials")
	}

	router := handler.NewRouter(logger, handler.Deps{
		ChatSvc:      chatService,
		SpeechSvc:    speechService,
		Store:        db,
		StaticDir:    cfg.Server.StaticDir,
		MaxBodyBytes: cfg.Server.MaxBodyBytes,
	})

	startServer(ctx, logger, cfg.Server, router)
}

func newLogger(cfg config.LogConfig) zerolog.Logger {
	level, err := zerolog.ParseLevel(cfg.Level)
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}

	var logger zerolog.Logger
	if cfg.IsDevelopment() {
		logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339})
	} else {
		logger = zerolog.New(os.Stdout)
	}
	return logger.Level(level).With().Timestamp().Logger()
}

func startServer(ctx context.Context, logger zerolog.Logger, serverCfg config.ServerConfig, router http.Handler) {
	addr := serverCfg.Addr()
	srv := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       serverCfg.ReadTimeout,
		WriteTimeout:      serverCfg.WriteTimeout,
		IdleTimeout:       120 * time.Second,
	}

	logger.Info().Str("addr", addr).Msg("MindBridge backend listening")
	if err := runServer(ctx, srv, serverCfg.ShutdownTimeout); err != nil {
		logger.Fatal().Err(err).Msg("server error")
	}
	logger.Info().Msg("server stopped")
}

func runServer(ctx context.Context, srv *http.Server, shutdownTimeout time.Duration) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
		err := <-errCh
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}

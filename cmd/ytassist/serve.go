package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/rajtharani77/YouTube-AI-Assistant---Telegram-Bot/config"
	"github.com/rajtharani77/YouTube-AI-Assistant---Telegram-Bot/internal/assistant"
	"github.com/rajtharani77/YouTube-AI-Assistant---Telegram-Bot/internal/bot"
	"github.com/rajtharani77/YouTube-AI-Assistant---Telegram-Bot/internal/limiter"
	"github.com/rajtharani77/YouTube-AI-Assistant---Telegram-Bot/internal/llm"
	"github.com/rajtharani77/YouTube-AI-Assistant---Telegram-Bot/internal/llm/gemini"
	"github.com/rajtharani77/YouTube-AI-Assistant---Telegram-Bot/internal/llm/openai"
	"github.com/rajtharani77/YouTube-AI-Assistant---Telegram-Bot/internal/segment"
	"github.com/rajtharani77/YouTube-AI-Assistant---Telegram-Bot/internal/server"
	"github.com/rajtharani77/YouTube-AI-Assistant---Telegram-Bot/internal/session"
	"github.com/rajtharani77/YouTube-AI-Assistant---Telegram-Bot/internal/session/memory"
	"github.com/rajtharani77/YouTube-AI-Assistant---Telegram-Bot/internal/session/postgres"
	redisbackend "github.com/rajtharani77/YouTube-AI-Assistant---Telegram-Bot/internal/session/redis"
	"github.com/rajtharani77/YouTube-AI-Assistant---Telegram-Bot/internal/session/sqlite"
	"github.com/rajtharani77/YouTube-AI-Assistant---Telegram-Bot/internal/transcript/youtube"
)

func serveCMD() *cobra.Command {
	var cfgPath string
	var serve = &cobra.Command{
		Use:   "serve",
		Short: "Run the assistant (Telegram bot and HTTP API)",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(cfgPath)
			if err != nil {
				return err
			}
			return run(cfg)
		},
	}
	serve.PersistentFlags().StringVarP(&cfgPath, "config", "c", "", "config file (default is ./config.json)")
	return serve
}

func run(cfg *config.Config) error {
	logger := log.New(log.Writer(), "[MAIN] ", log.LstdFlags)
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	backend, closeBackend, err := openBackend(ctx, cfg.Storage)
	if err != nil {
		return err
	}
	defer closeBackend()

	store := session.NewStore(backend, cfg.Storage.SessionTTL, nil)
	lim := limiter.New(cfg.Limits.MaxRequests, cfg.Limits.Window)
	splitter, err := segment.New(cfg.Segmenter.Size, cfg.Segmenter.Overlap)
	if err != nil {
		return err
	}
	transcripts := youtube.NewClient(cfg.Transcript.Languages, cfg.Transcript.Timeout, nil)
	generator, err := newGenerator(cfg.LLM)
	if err != nil {
		return err
	}

	assist := assistant.New(store, lim, transcripts, generator, splitter, nil)

	if cfg.Storage.SweepCron != "" {
		sweeper, err := session.NewSweeper(store, cfg.Storage.SweepCron, nil)
		if err != nil {
			return fmt.Errorf("invalid storage.sweep_cron: %w", err)
		}
		go sweeper.Run(ctx)
	}

	e := server.New(assist)
	go func() {
		logger.Printf("HTTP API listening on %s", cfg.Server.Address)
		if err := e.Start(cfg.Server.Address); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Printf("http server stopped: %v", err)
			stop()
		}
	}()

	if cfg.Telegram.Enabled {
		tg := bot.New(cfg.Telegram.Token, assist, nil)
		go func() {
			if err := tg.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				logger.Printf("telegram bot stopped: %v", err)
				stop()
			}
		}()
	}

	<-ctx.Done()
	logger.Printf("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return e.Shutdown(shutdownCtx)
}

// openBackend builds the configured durable session backend and returns a
// close function for it.
func openBackend(ctx context.Context, cfg config.StorageConfig) (session.Backend, func(), error) {
	noop := func() {}
	switch cfg.Backend {
	case "memory":
		return memory.New(), noop, nil
	case "sqlite":
		b, err := sqlite.Open(cfg.SQLite.Path)
		if err != nil {
			return nil, nil, fmt.Errorf("open sqlite backend: %w", err)
		}
		return b, func() { _ = b.Close() }, nil
	case "redis":
		b, err := redisbackend.Connect(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			return nil, nil, fmt.Errorf("connect redis backend: %w", err)
		}
		return b, func() { _ = b.Close() }, nil
	case "postgres":
		dsn, err := cfg.Postgres.DSN()
		if err != nil {
			return nil, nil, err
		}
		b, err := postgres.NewWithDSN(ctx, dsn)
		if err != nil {
			return nil, nil, fmt.Errorf("connect postgres backend: %w", err)
		}
		return b, func() { _ = b.Close() }, nil
	default:
		return nil, nil, fmt.Errorf("unsupported storage backend: %s", cfg.Backend)
	}
}

func newGenerator(cfg config.LLMConfig) (llm.Provider, error) {
	switch cfg.Provider {
	case "gemini":
		return gemini.NewClient(cfg.Gemini.APIKey, cfg.Gemini.Model, cfg.Timeout), nil
	case "openai":
		return openai.NewClient(cfg.OpenAI.APIKey, cfg.OpenAI.Model, cfg.Timeout), nil
	default:
		return nil, fmt.Errorf("unsupported llm provider: %s", cfg.Provider)
	}
}

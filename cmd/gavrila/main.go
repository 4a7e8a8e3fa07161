package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/abramau/gavrila/internal/assistant"
	"github.com/abramau/gavrila/internal/config"
	"github.com/abramau/gavrila/internal/db"
	"github.com/abramau/gavrila/internal/digest"
	"github.com/abramau/gavrila/internal/feeds"
	"github.com/abramau/gavrila/internal/history"
	"github.com/abramau/gavrila/internal/httpapi"
	"github.com/abramau/gavrila/internal/httpapi/handlers"
	"github.com/abramau/gavrila/internal/llm"
	"github.com/abramau/gavrila/internal/sched"
	"github.com/abramau/gavrila/internal/store/redisstore"
	"github.com/abramau/gavrila/internal/telegram"
)

func main() {
	cfg := config.Load()
	if cfg.TelegramToken == "" {
		log.Fatalf("TELEGRAM_TOKEN is required")
	}

	log.Printf("gavrila starting version=%s", config.Version)

	gdb, err := db.Connect(cfg.DBDriver, cfg.DBDSN)
	if err != nil {
		log.Fatalf("db connect: %v", err)
	}
	if err := db.Migrate(gdb); err != nil {
		log.Fatalf("db migrate: %v", err)
	}

	store := history.NewStore(gdb)
	epochs := history.NewEpochRegistry(gdb)

	// Provider registry (route by AI_PROVIDER)
	reg := llm.NewRegistry()
	reg.Register("deepseek", func() (llm.Provider, error) {
		return llm.NewDeepSeekProvider(cfg.DeepSeekBaseURL, cfg.DeepSeekAPIKey, cfg.DeepSeekModel, cfg.MaxTokens, cfg.Temperature), nil
	})
	reg.Register("ollama", func() (llm.Provider, error) {
		return llm.NewOllamaProvider(cfg.OllamaBaseURL, cfg.OllamaModel), nil
	})

	provider, err := reg.Get(cfg.AIProvider)
	if err != nil {
		log.Fatalf("llm provider: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var cache *redisstore.Store
	if cfg.RedisAddr != "" {
		cache = redisstore.New(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		if err := cache.Ping(ctx); err != nil {
			log.Printf("redis unavailable, feed cache disabled: %v", err)
			cache = nil
		} else {
			defer cache.Close()
		}
	}

	fc := feeds.NewClient(cfg.OpenWeatherAPIKey, cfg.RapidAPIKey, cache)
	svc := assistant.NewService(epochs, store, provider, cfg.Persona, cfg.HistoryWindow)
	composer := digest.NewComposer(fc, provider, cfg.DigestCities)

	bot, err := telegram.New(cfg, svc, fc)
	if err != nil {
		log.Fatalf("telegram: %v", err)
	}

	retention := time.Duration(cfg.RetentionDays) * 24 * time.Hour

	scheduler := sched.New()
	if err := scheduler.Add("morning_digest", cfg.DigestCron, func(ctx context.Context) error {
		return bot.PostDigest(ctx, composer.Compose(ctx))
	}); err != nil {
		log.Fatalf("scheduler: %v", err)
	}
	if err := scheduler.Add("history_purge", cfg.PurgeCron, func(ctx context.Context) error {
		removed, err := store.PurgeOlderThan(ctx, retention)
		if err != nil {
			return err
		}
		log.Printf("history purge removed=%d", removed)
		return nil
	}); err != nil {
		log.Fatalf("scheduler: %v", err)
	}

	h := handlers.NewHandler(store, epochs, composer, bot.PostDigest, retention)
	srv := &http.Server{
		Addr:    cfg.OpsAddr,
		Handler: httpapi.NewRouter(h, cfg.OpsJWTSecret),
	}

	var wg sync.WaitGroup
	wg.Add(3)
	go func() {
		defer wg.Done()
		bot.Run(ctx)
	}()
	go func() {
		defer wg.Done()
		scheduler.Start(ctx)
	}()
	go func() {
		defer wg.Done()
		log.Printf("ops api listening on %s", cfg.OpsAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Printf("ops api: %v", err)
		}
	}()

	<-ctx.Done()
	log.Printf("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("ops api shutdown: %v", err)
	}

	wg.Wait()
	log.Printf("stopped")
}

package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	httpadapter "github.com/PabloGalante/eco-agent/internal/adapters/http"
	"github.com/PabloGalante/eco-agent/internal/adapters/llm"
	firestorestore "github.com/PabloGalante/eco-agent/internal/adapters/storage/firestore"
	memstore "github.com/PabloGalante/eco-agent/internal/adapters/storage/memory"
	redisstore "github.com/PabloGalante/eco-agent/internal/adapters/storage/redis"
	"github.com/PabloGalante/eco-agent/internal/app/conversation"
	"github.com/PabloGalante/eco-agent/internal/app/greeting"
	"github.com/PabloGalante/eco-agent/internal/app/prompt"
	"github.com/PabloGalante/eco-agent/internal/app/triggers"
	"github.com/PabloGalante/eco-agent/internal/config"
	"github.com/PabloGalante/eco-agent/internal/domain"
	"github.com/PabloGalante/eco-agent/internal/observability"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		observability.Logger().Error("invalid configuration", "error", err)
		os.Exit(1)
	}
	log := observability.Init(cfg.LogLevel)

	// LLM: mock, OpenRouter or Gemini
	var llmClient domain.LLMClient
	switch cfg.LLMProvider {
	case "openrouter":
		log.Info("using OpenRouter LLM client", "model", cfg.OpenRouterModel)
		llmClient, err = llm.NewOpenRouterClient(llm.OpenRouterConfig{
			APIKey:  cfg.OpenRouterAPIKey,
			BaseURL: cfg.OpenRouterBaseURL,
			Model:   cfg.OpenRouterModel,
			Referer: cfg.OpenRouterReferer,
			Title:   cfg.OpenRouterTitle,
		})
	case "gemini":
		log.Info("using Gemini LLM client", "model", cfg.ModelName)
		llmClient, err = llm.NewGeminiClient(ctx, llm.GeminiConfig{
			APIKey:   cfg.GeminiAPIKey,
			Project:  cfg.GCPProjectID,
			Location: cfg.GCPLocation,
			Model:    cfg.ModelName,
		})
	default:
		log.Info("using MOCK LLM client")
		llmClient = llm.NewMockLLM()
	}
	if err != nil {
		log.Error("error initializing LLM client", "error", err)
		os.Exit(1)
	}

	// Storage: Firestore or Memory
	var (
		sessionStore domain.SessionStore
		messageStore domain.MessageStore
		fsStore      *firestorestore.Store
	)

	switch cfg.StorageBackend {
	case "firestore":
		log.Info("using Firestore storage", "project", cfg.GCPProjectID)
		fsStore, err = firestorestore.NewStore(ctx, cfg.GCPProjectID)
		if err != nil {
			log.Error("error initializing Firestore store", "error", err)
			os.Exit(1)
		}
		defer fsStore.Close()

		// 1 store, implements 2 interfaces
		sessionStore = fsStore
		messageStore = fsStore

	default:
		log.Info("using in-memory storage")
		sessionStore = memstore.NewSessionStore()
		messageStore = memstore.NewMessageStore()
	}

	// Greet guard: memory, Redis or Firestore
	var guard domain.GreetGuard
	switch cfg.GreetGuardBackend {
	case "redis":
		rdb, err := redisstore.NewClient(ctx, cfg.RedisAddr)
		if err != nil {
			log.Error("error connecting to redis", "error", err)
			os.Exit(1)
		}
		defer rdb.Close()
		guard = redisstore.NewGreetGuard(rdb, cfg.GreetGuardTTL)
	case "firestore":
		guard = fsStore.GreetGuard(cfg.GreetGuardTTL)
	default:
		guard = memstore.NewGreetGuard(cfg.GreetGuardTTL)
	}
	log.Info("greet guard ready", "backend", cfg.GreetGuardBackend, "ttl", cfg.GreetGuardTTL.String())

	detector, err := triggers.LoadDetector(cfg.TriggersFile)
	if err != nil {
		log.Error("error loading trigger table", "error", err, "file", cfg.TriggersFile)
		os.Exit(1)
	}

	assembler := prompt.NewAssembler(prompt.ContentFS(cfg.AssetsDir))
	if _, err := assembler.Build(ctx); err != nil {
		log.Error("prompt assets incomplete", "error", err, "dir", cfg.AssetsDir)
		os.Exit(1)
	}

	pipeline := greeting.NewPipeline(cfg.GreetingEnabled, greeting.NewResponder(), guard)

	// Conversation Service
	svc := conversation.NewService(
		llmClient,
		sessionStore,
		messageStore,
		detector,
		assembler,
		conversation.WithGreeting(pipeline),
		conversation.WithThreshold(cfg.DetectorThreshold),
	)

	// HTTP server
	handler := httpadapter.NewServer(svc,
		httpadapter.WithRateLimiter(httpadapter.NewRateLimiter(cfg.RateLimitPerMinute)),
		httpadapter.WithCORSOrigins(cfg.CORSOrigins),
	)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	log.Info("Eco API listening", "port", cfg.Port, "mode", cfg.Mode, "llm", cfg.LLMProvider)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Error("server stopped", "error", err)
		os.Exit(1)
	}
}

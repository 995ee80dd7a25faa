package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/movihq/movi/internal/checkpoint"
	"github.com/movihq/movi/internal/gateway"
	"github.com/movihq/movi/internal/governance"
	"github.com/movihq/movi/internal/interpreter"
	"github.com/movihq/movi/internal/observability"
	"github.com/movihq/movi/internal/orchestrator"
	"github.com/movihq/movi/internal/speech"
	"github.com/movihq/movi/internal/tools"
	"github.com/movihq/movi/internal/transport"
	"github.com/movihq/movi/pkg/config"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/googleai"
	"github.com/tmc/langchaingo/llms/openai"
)

func main() {
	observability.PrintBanner()
	observability.InitializeTerminal()

	// Route all log output through the terminal mutex so it never
	// interrupts the dashboard's cursor save/restore sequence.
	log.SetOutput(observability.NewTermWriter())

	cfg := config.LoadConfig("config.yaml")

	// Operational store
	store, err := transport.NewStore(cfg.Database.Path)
	if err != nil {
		log.Fatal(err)
	}
	if cfg.Database.Seed {
		if err := store.Seed(); err != nil {
			log.Fatal(err)
		}
	}

	// Checkpoint store
	var checkpoints checkpoint.Store
	switch cfg.Checkpoint.Type {
	case "memory":
		checkpoints = checkpoint.NewMemoryStore()
	default:
		sqliteStore, err := checkpoint.NewSQLiteStore(cfg.Checkpoint.Path)
		if err != nil {
			log.Fatal(err)
		}
		defer sqliteStore.Close()
		checkpoints = sqliteStore
	}

	// Initialize Tools
	registry := tools.NewRegistry()
	registry.Register(tools.NewSQLQueryTool(store))
	registry.Register(tools.NewSQLWriteTool(store))

	prompts := interpreter.NewPromptManager(cfg.Prompts.Dir)

	gov := governance.NewDefaultPolicyEngine()
	// Default safety rules: block schema-destroying and engine-level
	// statements regardless of what the interpreter proposes.
	_ = gov.DenyStatements(`\bdrop\s+table\b`)
	_ = gov.DenyStatements(`\btruncate\b`)
	_ = gov.DenyStatements(`\balter\s+table\b`)
	_ = gov.DenyStatements(`\bpragma\b`)
	_ = gov.DenyStatements(`\battach\b`)
	_ = gov.DenyStatements(`sqlite_master`)

	logger := observability.NewLogger()

	// Initialize LLM (using default enabled provider)
	pName, pCfg := cfg.GetDefaultProvider()
	if pName == "" {
		log.Fatal("No enabled provider found in config")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var llm llms.Model
	switch pName {
	case "openai", "openrouter":
		opts := []openai.Option{
			openai.WithToken(pCfg.APIKey),
			openai.WithModel(pCfg.Model),
		}
		if pCfg.BaseURL != "" {
			opts = append(opts, openai.WithBaseURL(pCfg.BaseURL))
		}
		llm, err = openai.New(opts...)
	case "googleai":
		llm, err = googleai.New(ctx,
			googleai.WithAPIKey(pCfg.APIKey),
			googleai.WithDefaultModel(pCfg.Model))
	default:
		log.Fatalf("Provider %s not yet implemented in main", pName)
	}
	if err != nil {
		log.Fatal(err)
	}

	interp := interpreter.NewLLMInterpreter(llm, registry, prompts)
	interp.Logger = logger
	orch := orchestrator.New(interp, registry, checkpoints, gov, logger)

	// Speech backends
	var transcriber speech.Transcriber = speech.Disabled{}
	var synthesizer speech.Synthesizer
	if cfg.Speech.Enabled {
		client := speech.NewClient(cfg.Speech.BaseURL, cfg.Speech.APIKey, cfg.Speech.Voice)
		transcriber = client
		synthesizer = client
	}

	// Optional Telegram gateway for field staff
	var tg *gateway.TelegramGateway
	if tgCfg, ok := cfg.GetTelegramConfig(); ok {
		tg, err = gateway.NewTelegramGateway(tgCfg.Token, orch)
		if err != nil {
			log.Fatal(err)
		}
		go func() {
			if err := tg.Start(); err != nil {
				log.Printf("\033[91m[ FAIL ] GATEWAY CRITICAL ERROR: %v\033[0m", err)
				stop()
			}
		}()
	}

	// Reap confirmations nobody answered
	if lister, ok := checkpoints.(checkpoint.StaleLister); ok && cfg.Confirmation.TTLMinutes > 0 {
		reaper := &orchestrator.ExpiryReaper{
			Orchestrator: orch,
			Stale:        lister,
			TTL:          time.Duration(cfg.Confirmation.TTLMinutes) * time.Minute,
			Interval:     time.Minute,
		}
		if tg != nil {
			reaper.Notifier = tg
		}
		go reaper.Run(ctx)
	}

	// Start Live Resource Dashboard (1-second updates)
	go func() {
		ticker := time.NewTicker(1 * time.Second)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				observability.PrintLiveStatus()
			}
		}
	}()

	go func() {
		ticker := time.NewTicker(30 * time.Second)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				observability.Heartbeat()
			}
		}
	}()

	var server *gateway.Server
	if cfg.Server.Enabled {
		server = gateway.NewServer(cfg.Server.Port, orch, store, transcriber, synthesizer, cfg.App.DataDir)
		server.Start()
		log.Printf("API available at http://localhost:%d", cfg.Server.Port)
	}

	// Wait for shutdown signal
	<-ctx.Done()

	if server != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			log.Printf("http shutdown: %v", err)
		}
	}
	if tg != nil {
		_ = tg.Stop()
	}
	_ = store.Close()

	// Reset terminal aesthetics
	observability.CleanupTerminal()

	// Give a short time for final logs/syncs
	time.Sleep(500 * time.Millisecond)
	log.Println("\033[95m[ EXIT ] CORE DE-INITIALIZED. GOODBYE.\033[0m")
}

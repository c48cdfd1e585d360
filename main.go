package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"venue_assistant/internal/agent"
	"venue_assistant/internal/config"
	"venue_assistant/internal/conversation"
	"venue_assistant/internal/dedup"
	"venue_assistant/internal/logger"
	"venue_assistant/internal/metrics"
	"venue_assistant/internal/services"
	"venue_assistant/pkg"
)

func main() {
	if err := godotenv.Load(); err != nil {
		fmt.Println("No .env file found, using environment as-is")
	}

	env, err := config.LoadEnv()
	if err != nil {
		fmt.Printf("Error loading environment configuration: %v\n", err)
		os.Exit(1)
	}
	if err := logger.InitLogger(env.Log); err != nil {
		fmt.Printf("Error initializing logger: %v\n", err)
		os.Exit(1)
	}

	cfg, err := config.LoadConfig("config.yaml")
	if err != nil {
		logger.Warn().Err(err).Msg("config.yaml not loaded, using defaults")
		cfg = config.DefaultConfig()
	}

	ctx := context.Background()

	chatModel, err := agent.NewChatModel(ctx, cfg.Model, env.APIKey)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to create chat model")
	}

	venueService := services.NewVenueService()
	infos, err := agent.ToolInfos(ctx, agent.GetTools(venueService))
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to resolve venue tools")
	}
	chatModel = agent.BindVenueTools(ctx, chatModel, infos)

	contexts, history := buildStores(ctx, env, cfg)

	runner := agent.NewRunner(chatModel, history, contexts, metrics.NewStore(), dedup.Options{
		WindowSize:          cfg.Dedup.WindowSize,
		SentenceWindow:      cfg.Dedup.SentenceWindow,
		SimilarityThreshold: cfg.Dedup.SimilarityThreshold,
		ContentThreshold:    cfg.Dedup.ContentThreshold,
	})

	sessionID := fmt.Sprintf("cli-%d", time.Now().Unix())
	repl(ctx, runner, sessionID)
}

// buildStores picks Redis-backed context and history stores when
// REDIS_URL is set, falling back to in-memory stores otherwise.
func buildStores(ctx context.Context, env *config.EnvConfig, cfg *config.AppConfig) (conversation.Store, conversation.Repository) {
	maxIdle := time.Duration(cfg.Context.MaxIdleSeconds) * time.Second
	ttl := time.Duration(cfg.Redis.TTLSeconds) * time.Second

	if env.RedisURL == "" {
		logger.Info().Msg("REDIS_URL not set, using in-memory session stores")
		return conversation.NewMemoryStore(maxIdle), conversation.NewMemoryRepository()
	}

	contexts, err := conversation.NewRedisStore(ctx, env.RedisURL, ttl)
	if err != nil {
		logger.Warn().Err(err).Msg("Redis unavailable, falling back to in-memory session stores")
		return conversation.NewMemoryStore(maxIdle), conversation.NewMemoryRepository()
	}

	history, err := conversation.NewRedisRepository(ctx, env.RedisURL, ttl)
	if err != nil {
		logger.Warn().Err(err).Msg("Redis unavailable for history, falling back to in-memory")
		return contexts, conversation.NewMemoryRepository()
	}

	logger.Info().Msg("using Redis session stores")
	return contexts, history
}

func repl(ctx context.Context, runner *agent.Runner, sessionID string) {
	fmt.Println("🎉 Venue assistant ready. Commands: /context /clear /stats /quit")

	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("\nYou: ")
		if !scanner.Scan() {
			return
		}
		input := strings.TrimSpace(scanner.Text())
		if input == "" {
			continue
		}

		switch input {
		case "/quit":
			return
		case "/context":
			printContext(ctx, runner, sessionID)
			continue
		case "/clear":
			if err := runner.ClearContext(ctx, sessionID); err != nil {
				fmt.Printf("Error clearing context: %v\n", err)
			} else {
				fmt.Println("Context cleared.")
			}
			continue
		case "/stats":
			printStats(runner, sessionID)
			continue
		}

		if err := streamResponse(ctx, runner, input, sessionID); err != nil {
			fmt.Printf("\nError: %v\n", err)
		}
	}
}

func streamResponse(ctx context.Context, runner *agent.Runner, input, sessionID string) error {
	stream, err := runner.Stream(ctx, input, sessionID, "cli-user", true)
	if err != nil {
		return err
	}
	defer stream.Close()

	fmt.Print("Assistant: ")
	for {
		record, err := stream.Recv()
		if err == io.EOF {
			fmt.Println()
			return nil
		}
		if err != nil {
			fmt.Println()
			return err
		}
		switch record.Type {
		case pkg.StreamRecordText:
			fmt.Print(record.Content)
		case pkg.StreamRecordToolCall:
			fmt.Printf("\n🔧 [%s %s]\n", record.ToolName, record.ToolArgs)
		}
	}
}

func printContext(ctx context.Context, runner *agent.Runner, sessionID string) {
	c, err := runner.GetContext(ctx, sessionID)
	if err != nil {
		fmt.Printf("No context yet: %v\n", err)
		return
	}
	if c.IsEmpty() {
		fmt.Println("Context is empty.")
		return
	}
	fmt.Printf("📋 %s\n", c.ContextString())
	for i, venue := range c.RecentVenues {
		fmt.Printf("   %d. %s (%s) %s\n", i+1, venue.Name, venue.PlaceID, venue.Location)
	}
}

func printStats(runner *agent.Runner, sessionID string) {
	summary := runner.DuplicationSummary(sessionID)
	fmt.Printf("📊 Duplicates suppressed: %d\n", summary.Total)
	if summary.Total == 0 {
		return
	}
	for method, count := range summary.ByMethod {
		fmt.Printf("   method %s: %d\n", method, count)
	}
	for source, count := range summary.BySource {
		fmt.Printf("   source %s: %d\n", source, count)
	}
	for stage, count := range summary.ByStage {
		fmt.Printf("   stage %s: %d\n", stage, count)
	}
}

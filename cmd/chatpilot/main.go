package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/joho/godotenv"

	"ChatPilot/internal/backend"
	"ChatPilot/internal/chatbot"
	"ChatPilot/internal/config"
	"ChatPilot/internal/fallback"
	"ChatPilot/internal/session"
	"ChatPilot/internal/telemetry"
)

func main() {
	// Missing .env is fine; the key may come from the environment directly.
	_ = godotenv.Load()

	cfg := config.Default()
	flag.StringVar(&cfg.Model, "model", cfg.Model, "chat completion model")
	flag.StringVar(&cfg.APIBase, "api-base", cfg.APIBase, "chat completion API base URL")
	flag.DurationVar(&cfg.RequestTimeout, "request-timeout", cfg.RequestTimeout, "timeout for a single backend call")
	flag.IntVar(&cfg.HistoryLimit, "history-limit", cfg.HistoryLimit, "maximum messages retained per session")
	flag.BoolVar(&cfg.Debug, "debug", false, "enable debug logging")
	flag.Parse()

	cfg.APIKey = os.Getenv("OPENAI_API_KEY")

	logger, err := telemetry.InitLogger(cfg.Debug)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}

	tracer, meter, cleanup, err := telemetry.InitTelemetry(context.Background())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize telemetry: %v\n", err)
		os.Exit(1)
	}
	defer cleanup()

	store := session.NewStore(cfg.HistoryLimit)
	client := backend.NewClient(cfg, logger)
	bot := chatbot.New(cfg, store, client, fallback.English(), logger, tracer, meter)

	if err := bot.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

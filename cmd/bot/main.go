package main

import (
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/user/reminder-bot/internal/analyzer"
	"github.com/user/reminder-bot/internal/bot"
	"github.com/user/reminder-bot/internal/config"
	"github.com/user/reminder-bot/internal/db"
	"github.com/user/reminder-bot/internal/messenger"
	"github.com/user/reminder-bot/internal/processor"
	"github.com/user/reminder-bot/internal/scheduler"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Printf("Warning: .env file not found, using environment variables")
	}

	telegramToken := os.Getenv("TELEGRAM_BOT_TOKEN")
	if telegramToken == "" {
		log.Fatal("TELEGRAM_BOT_TOKEN is required")
	}
	if os.Getenv("GEMINI_API_KEY") == "" {
		log.Fatal("GEMINI_API_KEY is required")
	}

	cfg, err := config.Load("configs/app.yaml")
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	store, err := db.NewManager(cfg.DatabasePath)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer store.Close()

	analyzerClient, err := analyzer.NewClient()
	if err != nil {
		log.Fatalf("Failed to create analyzer client: %v", err)
	}

	proc := processor.New(store, analyzerClient, cfg.ConfidenceThreshold,
		time.Duration(cfg.Reminder1OffsetMinutes)*time.Minute,
		time.Duration(cfg.Reminder2OffsetMinutes)*time.Minute)

	b, err := bot.New(telegramToken, store, proc, cfg.MaxChatHistory)
	if err != nil {
		log.Fatalf("Error creating bot: %v", err)
	}

	sched := scheduler.New(store, time.Duration(cfg.PollIntervalMinutes)*time.Minute)
	sched.SetMessenger(messenger.NewTelegramWithAPI(b.API()))
	if err := sched.Start(); err != nil {
		log.Fatalf("Error starting scheduler: %v", err)
	}

	go func() {
		log.Println("Starting bot...")
		if err := b.Start(); err != nil {
			log.Fatalf("Error starting bot: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down...")
	sched.Stop()
	b.Stop()
	log.Println("Bot stopped")
}

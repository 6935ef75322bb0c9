package main

import (
	"context"
	"embed"
	"os"
	"os/signal"
	"syscall"

	"featherrank/internal/ai"
	"featherrank/internal/application"
	"featherrank/internal/delivery/discord"
	"featherrank/internal/delivery/telegram"
	"featherrank/internal/integration"
	"featherrank/internal/repository"
	"featherrank/pkg/config"
	"featherrank/pkg/logger"

	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
)

//go:embed migrations/*.sql
var migrationFS embed.FS

func main() {
	_ = godotenv.Load()

	cfg := config.Config{}
	if err := config.ReadEnvConfig(&cfg); err != nil {
		panic(err)
	}

	log := logger.NewLogger(&logger.Config{Level: cfg.LogLevel})

	db, err := repository.NewPostgresDB(&cfg.Repo)
	if err != nil {
		log.Error("failed to init db: %s", err.Error())
		return
	}
	defer db.Close()

	log.Info("Running migrations...")
	if err := repository.RunMigrations(db, migrationFS); err != nil {
		log.Error("failed to run migrations: %s", err.Error())
		return
	}
	log.Info("Migrations applied successfully")

	repos := repository.NewRepository(db)

	var sheetSvc *integration.SheetService
	if cfg.GoogleCredentials != "" {
		sheetSvc, err = integration.NewSheetService(cfg.GoogleCredentials)
		if err != nil {
			log.Error("failed to init google sheets: %s", err.Error())
			return
		}
	}

	settings := application.Settings{
		KFactor:     cfg.KFactor,
		BaseRating:  cfg.BaseRating,
		WinBy:       cfg.WinBy,
		GuestUserID: cfg.GuestUserID,
		OwnerEmail:  cfg.GoogleOwnerEmail,
	}
	services := application.NewService(repos, sheetSvc, settings, log)

	var gemini *ai.GeminiClient
	if cfg.GeminiKey != "" {
		gemini, err = ai.NewGeminiClient(cfg.GeminiKey)
		if err != nil {
			log.Error("failed to init gemini: %s", err.Error())
			return
		}
	}

	var aiProvider application.AIProvider
	if gemini != nil {
		aiProvider = gemini
	}

	bot := discord.NewBot(&cfg, services, aiProvider, log)
	services.Match.AttachNotifier(bot)

	if cfg.TelegramToken != "" {
		tg, err := telegram.NewBot(cfg.TelegramToken, cfg.TelegramChatID, services.Stats, log)
		if err != nil {
			log.Error("failed to init telegram bot: %s", err.Error())
			return
		}
		bot.AttachAnnouncer(tg)
		go tg.Start()
		defer tg.Stop()
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := bot.Init(); err != nil {
		log.Error("failed to init bot: %s", err.Error())
		return
	}

	go func() {
		if err := bot.Run(ctx); err != nil {
			log.Error("bot run error: %s", err.Error())
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGTERM, syscall.SIGINT)
	<-quit

	bot.Stop()
	log.Info("Bot stopped")
}

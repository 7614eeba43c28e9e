package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"marketing-assistant-be/internal/bootstrap"
	"marketing-assistant-be/internal/config"
	"marketing-assistant-be/internal/discord"
	"marketing-assistant-be/internal/pkg/logger"
	"marketing-assistant-be/pkg/database"
)

func main() {
	cfg := config.Load()

	gormDB, err := database.NewGormDBFromDSN(cfg.Database.Connection)
	if err != nil {
		log.Panicf("Unable to connect to GORM DB: %v", err)
	}

	container := bootstrap.NewContainer(gormDB, cfg)
	defer container.Close()

	// Bot traffic gets its own log file so it can be tailed apart from HTTP
	botLogger := logger.NewIsolatedLogger(cfg.Discord.LogFilePath)
	defer botLogger.Sync()

	bot, err := discord.NewBot(cfg.Discord.Token, botLogger)
	if err != nil {
		log.Fatalf("Failed to create Discord bot: %v", err)
	}

	handler := container.NewChatHandler(bot, "discord", botLogger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := bot.Start(ctx, handler); err != nil {
		log.Fatalf("Failed to start Discord bot: %v", err)
	}
	log.Printf("✅ Discord bot is running (prefix %q). Press Ctrl+C to exit", cfg.Discord.TriggerPrefix)

	<-ctx.Done()
	log.Println("Shutting down Discord bot...")
	if err := bot.Close(); err != nil {
		log.Printf("Discord close error: %v", err)
	}
}

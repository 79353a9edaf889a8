package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/vcnotifier/vc-notifier/internal/api"
	"github.com/vcnotifier/vc-notifier/internal/biz"
	"github.com/vcnotifier/vc-notifier/internal/biz/usecase"
	"github.com/vcnotifier/vc-notifier/internal/conf"
	"github.com/vcnotifier/vc-notifier/internal/data"
	"github.com/vcnotifier/vc-notifier/internal/infra/discord"
	"github.com/vcnotifier/vc-notifier/internal/server"
	"github.com/vcnotifier/vc-notifier/internal/service"
)

func main() {
	// Load .env file
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	// Load configuration
	cfg := conf.LoadFromEnv()
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid config: %v", err)
	}

	// Initialize client
	discordClient, err := discord.NewClient(cfg.Discord.BotToken)
	if err != nil {
		log.Fatalf("Failed to create Discord client: %v", err)
	}

	// Initialize repository layer
	repos, err := data.NewRepositories(discordClient, cfg.Registry.DBPath)
	if err != nil {
		log.Fatalf("Failed to create repositories: %v", err)
	}
	defer repos.Close()

	fmt.Printf("[Notifier] Registry DB: %s\n", cfg.Registry.DBPath)

	// Initialize usecase layer
	channelUC := usecase.NewChannelUsecase(repos.Platform, repos.Registry, cfg.Notification.ToChannelConfig())
	ucs := &biz.Usecases{
		Channel:      channelUC,
		Notify:       usecase.NewNotifyUsecase(channelUC, repos.Registry, repos.Platform),
		Query:        usecase.NewQueryUsecase(repos.Presence),
		Subscription: usecase.NewSubscriptionUsecase(repos.Registry),
	}

	// Initialize service layer
	presenceSvc := service.NewPresenceService(repos.Presence, ucs.Notify, cfg.Messages, service.PresenceConfig{
		PlatformTimeout: cfg.Presence.PlatformTimeout,
		BacklogWarn:     cfg.Presence.BacklogWarn,
		Debug:           cfg.Debug,
	})

	// Initialize HTTP API server for vc-mcp
	var apiServer *api.Server
	if cfg.API.Port > 0 {
		apiServer = api.NewServer(ucs.Query, ucs.Subscription, cfg.API.Port)
		go func() {
			if err := apiServer.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				fmt.Printf("[Notifier] API server error: %v\n", err)
			}
		}()
		fmt.Printf("[Notifier] HTTP API server started on port %d\n", cfg.API.Port)
	}

	// Initialize server
	srv := server.NewDiscordServer(discordClient, presenceSvc, ucs.Query, ucs.Subscription, cfg.Messages, cfg.Discord.CommandPrefix)

	fmt.Println("Starting VC Notifier...")
	if err := srv.Start(); err != nil {
		log.Fatalf("Server error: %v", err)
	}

	// Graceful shutdown
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	fmt.Println("\nShutting down...")
	srv.Stop()
	if apiServer != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := apiServer.Stop(ctx); err != nil {
			fmt.Printf("[Notifier] API shutdown error: %v\n", err)
		}
	}
}

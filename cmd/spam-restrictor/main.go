package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/mymmrac/telego"

	"github.com/smartlime/spam-restrictor-bot/internal/bot"
	"github.com/smartlime/spam-restrictor-bot/internal/config"
	"github.com/smartlime/spam-restrictor-bot/internal/crash"
	"github.com/smartlime/spam-restrictor-bot/internal/gateway"
	"github.com/smartlime/spam-restrictor-bot/internal/handler"
	"github.com/smartlime/spam-restrictor-bot/internal/logger"
	"github.com/smartlime/spam-restrictor-bot/internal/notify"
	"github.com/smartlime/spam-restrictor-bot/internal/service"
	"github.com/smartlime/spam-restrictor-bot/internal/storage"
)

const notifyQueueSize = 100

func main() {
	defer crash.RecoverWithStackAndExit("main")
	crash.SetupCrashHandler()

	configPath := flag.String("config", "configs/config.yaml", "Path to configuration file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	if err := logger.Setup(cfg); err != nil {
		log.Fatalf("Failed to set up logger: %v", err)
	}

	if err := storage.Initialize(cfg); err != nil {
		logger.Fatalf("Failed to initialize database: %v", err)
	}
	defer storage.Close()

	repo := storage.NewRestrictionRepository(storage.GetDB())
	if err := repo.MigrateTable(); err != nil {
		logger.Fatalf("Failed to migrate database: %v", err)
	}
	logger.Info("Database connection established")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	tgBot, err := bot.NewBot(ctx, cfg)
	if err != nil {
		logger.Fatalf("Failed to initialize bot: %v", err)
	}

	sink, closeSink := newSink(tgBot, cfg)
	defer closeSink()

	lifecycle := service.NewLifecycle(repo, gateway.NewTelegramGateway(tgBot, cfg.Bot.GroupID), sink, service.Options{
		GracePeriod:   cfg.GracePeriod(),
		CheckInterval: cfg.CheckInterval(),
		FirstRunDelay: cfg.FirstRunDelay(),
		NotifyNoUsers: cfg.Restriction.NotifyNoUsers,
		GroupID:       cfg.Bot.GroupID,
	})

	botService, server, err := bot.Initialize(ctx, tgBot, cfg)
	if err != nil {
		logger.Fatalf("Failed to initialize updates: %v", err)
	}

	crash.SafeGoroutine("http-server", func() {
		if err := server.Start(); err != nil {
			logger.Fatalf("HTTP server error: %v", err)
		}
	})

	handler.New(tgBot, cfg, lifecycle.Router, lifecycle.Status).SetupMessageHandlers(botService.Handler)

	crash.SafeGoroutine("bot-handler", func() {
		if err := botService.Start(); err != nil {
			logger.Errorf("Bot handler stopped: %v", err)
		}
	})

	logger.Infof("Bot started: group %d, restriction period %d days, check every %s",
		cfg.Bot.GroupID, cfg.Restriction.PeriodDays, cfg.CheckInterval())
	lifecycle.Start(ctx)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM, syscall.SIGQUIT)

	sig := <-sigChan
	logger.Infof("Received signal: %v, shutting down...", sig)

	lifecycle.Stop()
	if err := botService.Stop(); err != nil {
		logger.Warningf("Bot handler stop error: %v", err)
	}
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Warningf("HTTP server shutdown error: %v", err)
	}

	logger.Info("Bot gracefully stopped")
}

// newSink logs every event and forwards it to the admin chat when one is configured.
func newSink(tgBot *telego.Bot, cfg *config.Config) (notify.Sink, func()) {
	sinks := notify.MultiSink{notify.LogSink{}}

	telegramSink := notify.NewTelegramSink(tgBot, cfg.Bot.AdminUserID, cfg.Notify.Language)
	if telegramSink == nil {
		logger.Warning("ADMIN_USER_ID is not set, admin notifications are disabled")
		return sinks, func() {}
	}

	async := notify.NewAsyncSink(telegramSink, notifyQueueSize)
	return append(sinks, async), async.Close
}

package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/AhmadChX/notifybuddy/internal/api"
	"github.com/AhmadChX/notifybuddy/internal/config"
	"github.com/AhmadChX/notifybuddy/internal/handlers"
	"github.com/AhmadChX/notifybuddy/internal/metrics"
	"github.com/AhmadChX/notifybuddy/internal/notify"
	"github.com/AhmadChX/notifybuddy/internal/repository/bolt"
	"github.com/AhmadChX/notifybuddy/internal/scheduler"
	"github.com/AhmadChX/notifybuddy/internal/service"
	"github.com/AhmadChX/notifybuddy/internal/telegram"
	"github.com/AhmadChX/notifybuddy/pkg/logger"
)

func main() {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	l := logger.New(cfg.LogLevel)
	l.Info("Starting NotifyBuddy...")

	// Local key-value store
	db, err := config.NewDatabase(cfg.DataPath, l)
	if err != nil {
		l.Fatalf("Failed to open database: %v", err)
	}
	defer db.Close()

	repo, err := bolt.NewReminderRepository(db.DB, l)
	if err != nil {
		l.Fatalf("Failed to create reminder repository: %v", err)
	}

	// Metrics, fed by the store's change notifications
	m := metrics.New()
	refreshSize := func() {
		reminders, err := repo.GetAll(context.Background())
		if err != nil {
			return
		}
		m.CollectionSize.Set(float64(len(reminders)))
	}
	repo.Subscribe(refreshSize)
	refreshSize()

	// Telegram bot
	bot, err := telegram.NewBot(cfg.TelegramToken, l)
	if err != nil {
		l.Fatalf("Failed to create Telegram bot: %v", err)
	}

	// Trigger scheduler and lifecycle service
	sched := scheduler.New(l)
	defer sched.Close()

	notifier := notify.NewTelegramNotifier(bot.API(), cfg.TelegramChatID, l)
	svc := service.New(repo, sched, notifier, m, l)
	sched.OnFired(func(key string) {
		svc.HandleTrigger(context.Background(), key)
	})

	if err := svc.RestoreTriggers(context.Background()); err != nil {
		l.Fatalf("Failed to restore triggers: %v", err)
	}

	// Register command handlers
	bot.RegisterCommand("start", handlers.NewStartHandler(l))
	bot.RegisterCommand("help", handlers.NewHelpHandler(l))
	bot.RegisterCommand("remind", handlers.NewRemindHandler(svc, l))
	bot.RegisterCommand("reminders", handlers.NewRemindersListHandler(svc, l))
	bot.RegisterCommand("dismiss", handlers.NewDismissHandler(svc, l))
	bot.RegisterCommand("undo", handlers.NewUndoHandler(svc, l))
	bot.RegisterCommand("delremind", handlers.NewDeleteHandler(svc, l))

	// Context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-sigChan
		l.Info("Received shutdown signal...")
		cancel()
	}()

	// HTTP server for the dashboard API and metrics
	apiServer := api.NewServer(svc, m, l)
	httpServer := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: apiServer.Handler(),
	}

	go func() {
		l.Infof("HTTP server listening on :%s", cfg.Port)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			l.Errorf("HTTP server error: %v", err)
		}
	}()

	// Start Telegram bot polling
	go func() {
		if err := bot.Start(ctx); err != nil {
			l.Errorf("Bot error: %v", err)
		}
	}()

	l.Info("NotifyBuddy started successfully")

	<-ctx.Done()

	l.Info("Shutting down HTTP server...")
	httpServer.Close()

	l.Info("NotifyBuddy stopped")
}

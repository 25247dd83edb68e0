package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"habitsync/config"
	"habitsync/internal/auth"
	"habitsync/internal/channel"
	"habitsync/internal/gateway"
	"habitsync/internal/notify"
	"habitsync/internal/reminder"
	"habitsync/internal/stats"
	"habitsync/internal/store"
	"habitsync/pkg/logger"
)

func main() {
	cfg := config.Load()

	log := logger.NewLogger()
	defer log.Sync()

	log.Info("Starting habitsync client...",
		zap.String("api_base_url", cfg.API.BaseURL),
		zap.String("ws_url", cfg.WS.URL),
	)

	creds, err := auth.NewStaticProvider(cfg.Auth.Token, cfg.Auth.UserID)
	if err != nil {
		log.Fatal("Failed to init credentials", zap.Error(err))
	}

	// Gateway
	gw := gateway.NewClient(cfg.API.BaseURL, cfg.API.Timeout, creds)

	// Reminder set + habit store
	reminders := reminder.NewSet()
	habits := store.NewHabitStore(gw, reminders, log)

	// Statistics
	statistics := stats.NewAggregator(gw, log)

	// Notification delivery
	toasts := notify.NewLogToaster(log)
	platform := notify.NewDesktop(cfg.Notifications.Mode, log)
	policy := notify.NewPolicy(platform, toasts, log)

	// Mutation toasts are an observer of operation outcomes, not part of the
	// store's control flow.
	habits.SetObserver(func(op string, err error) {
		switch op {
		case "create", "update", "delete", "track":
		default:
			return
		}
		if err != nil {
			toasts.Show(notify.Toast{Title: "Habit tracker", Body: "Failed to " + op + " habit"})
			return
		}
		toasts.Show(notify.Toast{Title: "Habit tracker", Body: "Habit " + op + " succeeded"})
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initial sync
	if err := habits.FetchAll(ctx); err != nil {
		log.Warn("Initial habit fetch failed, continuing with empty cache", zap.Error(err))
	}
	if err := statistics.FetchAll(ctx, 30); err != nil {
		log.Warn("Initial statistics fetch failed", zap.Error(err))
	}

	// Push channel
	router := channel.NewRouter(log)
	reminderHandler := channel.NewReminderHandler(reminders, policy, gw, log)
	router.Register(channel.FrameTypeReminder, reminderHandler.Handle)

	ch := channel.NewChannel(cfg.WS.URL, creds, router, log)
	go func() {
		if err := ch.Run(ctx); err != nil && ctx.Err() == nil {
			log.Fatal("Push channel failed", zap.Error(err))
		}
	}()

	// Metrics endpoint
	if cfg.Metrics.Addr != "" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.Handler())
		srv := &http.Server{Addr: cfg.Metrics.Addr, Handler: mux}
		go func() {
			log.Info("Metrics server starting", zap.String("addr", cfg.Metrics.Addr))
			if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				log.Error("Metrics server failed", zap.Error(err))
			}
		}()
		defer srv.Close()
	}

	log.Info("habitsync client is running")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down habitsync client...")
	cancel()
}

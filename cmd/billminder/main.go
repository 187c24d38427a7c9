package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"billminder/internal/config"
	"billminder/internal/notify"
	"billminder/internal/repository"
	"billminder/internal/service"
	"billminder/pkg/logging"
)

func main() {
	logging.Setup()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("config", "error", err)
		os.Exit(1)
	}

	db, err := repository.NewDB(cfg.DatabaseURL)
	if err != nil {
		slog.Error("db", "error", err)
		os.Exit(1)
	}
	sqlDB, err := db.DB()
	if err == nil {
		defer sqlDB.Close()
	}

	userRepo := repository.NewUserRepository(db)
	utilityRepo := repository.NewUtilityRepository(db)
	billRepo := repository.NewBillRepository(db)
	reminderRepo := repository.NewReminderRepository(db)

	var notifier notify.Notifier
	if cfg.TelegramToken != "" {
		tg, err := notify.NewTelegramNotifier(cfg.TelegramToken, userRepo)
		if err != nil {
			slog.Error("telegram notifier", "error", err)
			os.Exit(1)
		}
		notifier = tg
		go tg.Listen(ctx)
	} else {
		slog.Warn("no TELEGRAM_TOKEN set, reminders will be logged only")
		notifier = notify.NewLogNotifier()
	}

	reminderSvc := service.NewReminderService(reminderRepo, billRepo, utilityRepo)

	// Top up missing reminder sets before the first sweep, so bills edited
	// while the daemon was down are not silently skipped.
	syncAllUsers := func(ctx context.Context) {
		users, err := userRepo.ListAll(ctx)
		if err != nil {
			slog.Error("list users for sync", "error", err)
			return
		}
		for _, u := range users {
			if err := reminderSvc.SyncForUser(ctx, u.ID, cfg.LeadDays); err != nil {
				slog.Error("sync reminders", "user_id", u.ID, "error", err)
			}
		}
	}
	syncAllUsers(ctx)

	// Nightly self-heal: a bill whose reconciliation failed mid-request
	// ends up with zero reminders; this pass recreates them.
	syncScheduler := service.NewSchedulerService(time.Local)
	if _, err := syncScheduler.ScheduleDaily(cfg.SyncDailyAt, func() {
		jobCtx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
		defer cancel()
		syncAllUsers(jobCtx)
	}); err != nil {
		slog.Error("schedule nightly sync", "error", err)
		os.Exit(1)
	}
	syncScheduler.Start()
	defer syncScheduler.Stop()

	sweeper := service.NewSweeperService(reminderRepo, billRepo, utilityRepo, notifier, cfg.SweepInterval)
	if err := sweeper.Start(ctx); err != nil {
		slog.Error("start sweeper", "error", err)
		os.Exit(1)
	}
	defer sweeper.Stop()

	metricsSrv := &http.Server{Addr: cfg.MetricsAddr, Handler: metricsMux()}
	go func() {
		slog.Info("metrics listening", "addr", cfg.MetricsAddr)
		if err := metricsSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("metrics server", "error", err)
		}
	}()

	slog.Info("billminder started", "sweep_interval", cfg.SweepInterval, "lead_days", cfg.LeadDays)
	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := metricsSrv.Shutdown(shutdownCtx); err != nil {
		slog.Error("metrics shutdown", "error", err)
	}
	slog.Info("shutdown complete")
}

func metricsMux() *http.ServeMux {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	return mux
}

package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"gorm.io/gorm"

	"billminder/internal/model"
	"billminder/internal/notify"
	"billminder/internal/repository"
)

var (
	remindersDelivered = promauto.NewCounter(prometheus.CounterOpts{
		Name: "billminder_reminders_delivered_total",
		Help: "Reminders delivered and marked sent.",
	})
	reminderDeliveryFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "billminder_reminder_delivery_failures_total",
		Help: "Reminder deliveries that failed and will be retried.",
	})
	sweepDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "billminder_sweep_duration_seconds",
		Help:    "Duration of one reminder delivery sweep.",
		Buckets: prometheus.DefBuckets,
	})
)

// DefaultDeliveryTimeout bounds one notification attempt so a stuck sink
// cannot stall the whole sweep.
const DefaultDeliveryTimeout = 10 * time.Second

// SweeperService periodically delivers due reminders. Each sweep finds
// unsent reminders whose trigger date has passed, delivers each through
// the notifier, and marks it sent only after delivery succeeds. A failed
// delivery leaves the reminder unsent; it is retried on every following
// sweep until it succeeds or reconciliation supersedes it.
type SweeperService struct {
	reminderRepo    *repository.ReminderRepository
	billRepo        *repository.BillRepository
	utilityRepo     *repository.UtilityRepository
	notifier        notify.Notifier
	scheduler       *SchedulerService
	interval        time.Duration
	deliveryTimeout time.Duration
	now             func() time.Time
}

func NewSweeperService(reminderRepo *repository.ReminderRepository, billRepo *repository.BillRepository, utilityRepo *repository.UtilityRepository, notifier notify.Notifier, interval time.Duration) *SweeperService {
	return &SweeperService{
		reminderRepo:    reminderRepo,
		billRepo:        billRepo,
		utilityRepo:     utilityRepo,
		notifier:        notifier,
		scheduler:       NewSchedulerService(time.Local),
		interval:        interval,
		deliveryTimeout: DefaultDeliveryTimeout,
		now:             time.Now,
	}
}

// Start schedules the sweep on its fixed interval and begins running.
func (s *SweeperService) Start(ctx context.Context) error {
	_, err := s.scheduler.ScheduleInterval(s.interval, func() {
		if err := s.Sweep(ctx); err != nil {
			slog.Error("sweep failed", "error", err)
		}
	})
	if err != nil {
		return fmt.Errorf("schedule sweep: %w", err)
	}
	s.scheduler.Start()
	slog.Info("reminder sweeper started", "interval", s.interval)
	return nil
}

// Stop halts the schedule and waits for an in-flight sweep to finish.
func (s *SweeperService) Stop() {
	s.scheduler.Stop()
	slog.Info("reminder sweeper stopped")
}

// Sweep runs one delivery pass. The returned error covers only the due
// query; per-reminder failures are logged and skipped so one bad delivery
// never blocks the rest of the pass.
func (s *SweeperService) Sweep(ctx context.Context) error {
	started := s.now()
	defer func() { sweepDuration.Observe(time.Since(started).Seconds()) }()

	due, err := s.reminderRepo.FindDueUnsent(ctx, started)
	if err != nil {
		return fmt.Errorf("find due reminders: %w", err)
	}

	for _, reminder := range due {
		if err := s.deliverOne(ctx, reminder); err != nil {
			reminderDeliveryFailures.Inc()
			slog.Error("reminder delivery failed", "reminder_id", reminder.ID, "bill_id", reminder.BillID, "error", err)
			continue
		}
		if err := s.reminderRepo.MarkSent(ctx, []string{reminder.ID}, s.now()); err != nil {
			slog.Error("mark reminder sent failed", "reminder_id", reminder.ID, "error", err)
			continue
		}
		remindersDelivered.Inc()
	}
	return nil
}

func (s *SweeperService) deliverOne(ctx context.Context, reminder model.Reminder) error {
	ctx, cancel := context.WithTimeout(ctx, s.deliveryTimeout)
	defer cancel()

	text, err := s.renderMessage(ctx, reminder)
	if err != nil {
		return err
	}
	return s.notifier.Deliver(ctx, notify.Message{UserID: reminder.UserID, Text: text})
}

// renderMessage builds the human notification text. A missing utility only
// degrades the display name; a missing bill fails the delivery, leaving
// the reminder for reconciliation to clean up.
func (s *SweeperService) renderMessage(ctx context.Context, reminder model.Reminder) (string, error) {
	bill, err := s.billRepo.FindByID(ctx, reminder.BillID)
	if err != nil {
		return "", fmt.Errorf("load bill %s: %w", reminder.BillID, err)
	}

	name := unknownUtilityName
	if utility, err := s.utilityRepo.FindByID(ctx, bill.UtilityID); err == nil {
		name = utility.Provider
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		slog.Warn("utility lookup failed", "utility_id", bill.UtilityID, "error", err)
	}

	label := "Upcoming bill due soon"
	if reminder.Type == model.ReminderOn {
		label = "Bill is due today"
	}
	return fmt.Sprintf("%s: %s, due %s", label, name, bill.DueDate.Format("Jan 2, 2006")), nil
}

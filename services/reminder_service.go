package services

import (
	"context"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"
	"gorm.io/gorm"
)

// ReminderService runs the daily membership housekeeping: lapsed memberships
// are expired, renewal reminders are queued and overdue invoices flagged.
type ReminderService struct {
	notifications *NotificationService
	billing       *BillingService
	cron          *cron.Cron
	now           func() time.Time
}

func NewReminderService(db *gorm.DB) *ReminderService {
	return &ReminderService{
		notifications: NewNotificationService(db),
		billing:       NewBillingService(db),
		now:           time.Now,
	}
}

// StartScheduler registers RunDaily on the cron schedule and starts the cron loop.
func (s *ReminderService) StartScheduler(schedule string) error {
	s.cron = cron.New()
	if _, err := s.cron.AddFunc(schedule, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
		defer cancel()
		s.RunDaily(ctx)
	}); err != nil {
		return err
	}
	s.cron.Start()
	slog.Info("reminder scheduler started", "schedule", schedule)
	return nil
}

// Stop waits for a running job to finish.
func (s *ReminderService) Stop() {
	if s.cron != nil {
		<-s.cron.Stop().Done()
	}
}

type DailyRun struct {
	Expired         int `json:"expired"`
	RemindersQueued int `json:"remindersQueued"`
	Overdue         int `json:"overdue"`
}

// RunDaily performs one housekeeping pass. A failing step is logged and the
// remaining steps still run.
func (s *ReminderService) RunDaily(ctx context.Context) DailyRun {
	now := s.now()
	var run DailyRun
	var err error

	slog.Info("starting daily membership processing")
	if run.Expired, err = s.notifications.ExpireMemberships(ctx, now); err != nil {
		slog.Error("failed to expire memberships", "error", err)
	}
	if run.RemindersQueued, err = s.notifications.QueueRenewalReminders(ctx, now); err != nil {
		slog.Error("failed to queue renewal reminders", "error", err)
	}
	if run.Overdue, err = s.billing.RefreshOverdue(ctx); err != nil {
		slog.Error("failed to refresh overdue invoices", "error", err)
	}
	slog.Info("daily membership processing completed",
		"expired", run.Expired, "reminders", run.RemindersQueued, "overdue", run.Overdue)
	return run
}

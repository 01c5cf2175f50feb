// Package cron runs the assistant's periodic jobs: due reminder
// delivery, the receipt-voice reconciliation sweep and the daily
// overdue debt notice.
package cron

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/ovozpay/nlu-engine/internal/domain/debts"
	"github.com/ovozpay/nlu-engine/internal/domain/reconcile"
	"github.com/ovozpay/nlu-engine/internal/domain/reminders"
	"github.com/ovozpay/nlu-engine/pkg/currency"
	"github.com/ovozpay/nlu-engine/pkg/notify"
)

const (
	sweepLookback = 24 * time.Hour
	sweepLimit    = 100
	overdueLimit  = 500
)

// Scheduler manages the background jobs using robfig/cron.
type Scheduler struct {
	cron       *cron.Cron
	reminders  reminders.Store
	debts      debts.OverdueSource
	reconciler *reconcile.Service
	rates      *currency.Service
	notifier   notify.Notifier
	logger     *slog.Logger
}

// NewScheduler creates a new job scheduler.
func NewScheduler(
	reminderStore reminders.Store,
	debtSource debts.OverdueSource,
	reconciler *reconcile.Service,
	rates *currency.Service,
	notifier notify.Notifier,
	logger *slog.Logger,
) *Scheduler {
	// Standard 5-field format, no seconds
	c := cron.New(cron.WithLogger(cron.VerbosePrintfLogger(slog.NewLogLogger(logger.Handler(), slog.LevelDebug))))

	return &Scheduler{
		cron:       c,
		reminders:  reminderStore,
		debts:      debtSource,
		reconciler: reconciler,
		rates:      rates,
		notifier:   notifier,
		logger:     logger,
	}
}

// Start registers and begins the scheduled jobs.
func (s *Scheduler) Start() error {
	// Reminder delivery: every minute
	if _, err := s.cron.AddFunc("* * * * *", s.dispatchDueReminders); err != nil {
		return err
	}

	// Reconciliation sweep: every 5 minutes
	if _, err := s.cron.AddFunc("*/5 * * * *", s.sweepReconciliations); err != nil {
		return err
	}

	// Overdue debt notices: daily at 9:00
	if _, err := s.cron.AddFunc("0 9 * * *", s.notifyOverdueDebts); err != nil {
		return err
	}

	// Exchange rate refresh: hourly
	if _, err := s.cron.AddFunc("0 * * * *", s.refreshRates); err != nil {
		return err
	}

	s.cron.Start()
	s.logger.Info("cron scheduler started",
		slog.Int("jobs", len(s.cron.Entries())),
	)
	return nil
}

// Stop gracefully stops all scheduled jobs.
func (s *Scheduler) Stop() context.Context {
	s.logger.Info("cron scheduler stopping")
	return s.cron.Stop()
}

// RunNow manually triggers every job once (for testing/admin).
func (s *Scheduler) RunNow() {
	go s.dispatchDueReminders()
	go s.sweepReconciliations()
	go s.notifyOverdueDebts()
	go s.refreshRates()
}

// refreshRates keeps the exchange rate cache warm so conversions never
// wait on the feed.
func (s *Scheduler) refreshRates() {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	rates := s.rates.Rates(ctx)
	s.logger.Debug("exchange rate cache refreshed", slog.Int("currencies", len(rates)))
}

// dispatchDueReminders delivers reminders that came due and stamps
// them. A failed delivery is left unstamped so the next run retries it.
func (s *Scheduler) dispatchDueReminders() {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	now := time.Now()
	due, err := s.reminders.Due(ctx, now)
	if err != nil {
		s.logger.Error("failed to list due reminders", slog.Any("error", err))
		return
	}
	if len(due) == 0 {
		return
	}

	sent := 0
	failed := 0
	for i := range due {
		rem := &due[i]
		msg := &notify.Message{
			UserID: rem.UserID.String(),
			Kind:   notify.KindReminder,
			Title:  rem.Title,
			Body:   rem.Description,
			Data: map[string]any{
				"reminder_id": rem.ID.String(),
				"remind_at":   rem.RemindAt.Format(time.RFC3339),
			},
		}
		if err := s.notifier.Send(ctx, msg); err != nil {
			s.logger.Warn("failed to deliver reminder",
				slog.String("reminder_id", rem.ID.String()),
				slog.Any("error", err),
			)
			failed++
			continue
		}
		if err := s.reminders.MarkNotified(ctx, rem.ID, now); err != nil {
			s.logger.Warn("failed to mark reminder notified",
				slog.String("reminder_id", rem.ID.String()),
				slog.Any("error", err),
			)
			failed++
			continue
		}
		sent++
	}

	s.logger.Info("reminder delivery completed",
		slog.Int("sent", sent),
		slog.Int("failed", failed),
	)
}

// sweepReconciliations rescores recent voice messages that still have
// no receipt comparisons.
func (s *Scheduler) sweepReconciliations() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	processed, err := s.reconciler.Sweep(ctx, sweepLookback, sweepLimit)
	if err != nil {
		s.logger.Error("reconciliation sweep failed", slog.Any("error", err))
		return
	}
	if processed > 0 {
		s.logger.Info("reconciliation sweep completed",
			slog.Int("voices_processed", processed),
		)
	}
}

// notifyOverdueDebts sends one notice per overdue debt, batched per
// run.
func (s *Scheduler) notifyOverdueDebts() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	overdue, err := s.debts.ListAllOverdue(ctx, time.Now(), overdueLimit)
	if err != nil {
		s.logger.Error("failed to list overdue debts", slog.Any("error", err))
		return
	}
	if len(overdue) == 0 {
		return
	}

	messages := make([]*notify.Message, 0, len(overdue))
	for i := range overdue {
		d := &overdue[i]
		msg := &notify.Message{
			UserID: d.UserID.String(),
			Kind:   notify.KindDebtOverdue,
			Title:  d.PersonName,
			Body:   fmt.Sprintf("Просроченный долг: %s %s", d.PersonName, d.Remaining()),
			Data: map[string]any{
				"debt_id":          d.ID.String(),
				"person_name":      d.PersonName,
				"remaining_amount": d.Remaining().String(),
				"debt_type":        d.Direction,
			},
		}
		if d.DueDate != nil {
			msg.Data["due_date"] = d.DueDate.Format("2006-01-02")
		}
		messages = append(messages, msg)
	}

	if err := s.notifier.SendBatch(ctx, messages); err != nil {
		s.logger.Warn("failed to deliver overdue debt notices", slog.Any("error", err))
		return
	}

	s.logger.Info("overdue debt notices sent", slog.Int("count", len(messages)))
}

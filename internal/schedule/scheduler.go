// Package schedule runs recurring jobs, currently the end-of-day
// spending summary.
package schedule

import (
	"fmt"
	"strings"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/paisabot/paisabot/internal/analytics"
	"github.com/paisabot/paisabot/internal/ledger"
	"github.com/paisabot/paisabot/internal/period"
)

// Notifier delivers a scheduled message to wherever the user listens.
type Notifier interface {
	Broadcast(text string) error
}

// Scheduler triggers the daily summary on a cron spec.
type Scheduler struct {
	cron     *cron.Cron
	store    *ledger.Store
	notifier Notifier
	currency string
	logger   *zap.Logger
}

// New creates a scheduler with the daily summary registered on spec.
func New(spec string, store *ledger.Store, notifier Notifier, currency string, logger *zap.Logger) (*Scheduler, error) {
	s := &Scheduler{
		cron:     cron.New(),
		store:    store,
		notifier: notifier,
		currency: currency,
		logger:   logger,
	}

	if _, err := s.cron.AddFunc(spec, s.runDailySummary); err != nil {
		return nil, fmt.Errorf("invalid cron spec %q: %w", spec, err)
	}
	return s, nil
}

// Start begins the cron loop in its own goroutine.
func (s *Scheduler) Start() {
	s.cron.Start()
	s.logger.Info("scheduler started")
}

// Stop halts the cron loop and waits for running jobs to finish.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	s.logger.Info("scheduler stopped")
}

func (s *Scheduler) runDailySummary() {
	txs, err := s.store.List()
	if err != nil {
		s.logger.Error("daily summary: failed to read ledger", zap.Error(err))
		return
	}

	text := DailySummaryText(txs, s.currency, time.Now())
	if text == "" {
		s.logger.Debug("daily summary: nothing to report")
		return
	}

	if err := s.notifier.Broadcast(text); err != nil {
		s.logger.Error("daily summary: broadcast failed", zap.Error(err))
	}
}

// DailySummaryText renders the end-of-day report for now's calendar day.
// It returns "" when the day had no transactions.
func DailySummaryText(txs []ledger.Transaction, currency string, now time.Time) string {
	window := period.AlignedWindow(period.Day, now)

	var today []ledger.Transaction
	for _, tx := range txs {
		if window.Contains(tx.Date) {
			today = append(today, tx)
		}
	}
	if len(today) == 0 {
		return ""
	}

	totals := analytics.Sum(today)
	breakdown := analytics.CategoryBreakdown(today)

	var sb strings.Builder
	fmt.Fprintf(&sb, "Daily summary for %s\n\n", period.Label(window, now))
	fmt.Fprintf(&sb, "Spent: %s%.2f", currency, totals.Expense)
	if totals.Income > 0 {
		fmt.Fprintf(&sb, "  Received: %s%.2f", currency, totals.Income)
	}
	sb.WriteString("\n")

	for _, ct := range breakdown {
		fmt.Fprintf(&sb, "• %s: %s%.2f (%.0f%%)\n", ct.Category, currency, ct.Total, ct.Percentage)
	}
	return sb.String()
}

package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/mamadbah2/stockmonitor/internal/config"
	"github.com/mamadbah2/stockmonitor/internal/domain/models"
	"github.com/mamadbah2/stockmonitor/internal/service/reporting"
)

const jobTimeout = 2 * time.Minute

// StockRunner performs a stock check.
type StockRunner interface {
	Run(ctx context.Context, opts reporting.RunOptions) (models.StockRun, error)
}

// Broadcaster delivers a message to several recipients.
type Broadcaster interface {
	Broadcast(ctx context.Context, recipients []string, body string) ([]string, error)
}

// Scheduler runs the stock check on a cron schedule and pushes the report.
type Scheduler struct {
	cron        *cron.Cron
	runner      StockRunner
	broadcaster Broadcaster
	monitor     config.MonitorConfig
	recipients  []string
	logger      *zap.Logger
}

// NewScheduler creates a new scheduler instance. broadcaster may be nil when
// delivery is disabled; checks still run and are persisted.
func NewScheduler(cfg config.Config, runner StockRunner, broadcaster Broadcaster, logger *zap.Logger) *Scheduler {
	if logger == nil {
		logger = zap.NewNop()
	}

	cronLogger := cron.PrintfLogger(zap.NewStdLog(logger.Named("cron")))
	c := cron.New(
		cron.WithLocation(cfg.Monitor.Location()),
		cron.WithLogger(cronLogger),
		cron.WithChain(cron.Recover(cronLogger), cron.SkipIfStillRunning(cronLogger)),
	)

	return &Scheduler{
		cron:        c,
		runner:      runner,
		broadcaster: broadcaster,
		monitor:     cfg.Monitor,
		recipients:  cfg.WhatsApp.Recipients,
		logger:      logger,
	}
}

// Start registers the stock check and starts the cron loop.
func (s *Scheduler) Start() error {
	if _, err := s.cron.AddFunc(s.monitor.CronSchedule, s.scheduledCheck); err != nil {
		return fmt.Errorf("schedule stock check %q: %w", s.monitor.CronSchedule, err)
	}

	s.logger.Info("starting scheduler",
		zap.String("schedule", s.monitor.CronSchedule),
		zap.String("timezone", s.monitor.Timezone))
	s.cron.Start()
	return nil
}

// Stop stops the scheduler and waits for a running check to finish.
func (s *Scheduler) Stop() {
	s.logger.Info("stopping scheduler")
	<-s.cron.Stop().Done()
}

// CheckAndNotify runs a persisted stock check and pushes the report when any
// item needs reordering, or always when NotifyAlways is set.
func (s *Scheduler) CheckAndNotify(ctx context.Context, req models.NotifyRequest) (models.NotifyResult, error) {
	run, err := s.runner.Run(ctx, reporting.RunOptions{Category: req.Category, Persist: true})
	if err != nil {
		return models.NotifyResult{}, err
	}

	result := models.NotifyResult{RunID: run.RunID}
	for _, a := range run.Alerts {
		if a.Severity.Actionable() {
			result.Actionable++
		}
	}

	if result.Actionable == 0 && !s.monitor.NotifyAlways {
		s.logger.Info("all items within normal range, skipping notification", zap.String("run_id", run.RunID))
		result.Skipped = true
		return result, nil
	}

	if s.broadcaster == nil {
		s.logger.Warn("notification delivery disabled", zap.String("run_id", run.RunID))
		result.Skipped = true
		return result, nil
	}

	recipients := req.Recipients
	if len(recipients) == 0 {
		recipients = s.recipients
	}

	report := reporting.FormatAlerts(run, reporting.FormatOptions{CriticalOnly: req.CriticalOnly})
	sent, err := s.broadcaster.Broadcast(ctx, recipients, report)
	result.Sent = sent
	if err != nil {
		return result, fmt.Errorf("deliver stock report: %w", err)
	}

	return result, nil
}

func (s *Scheduler) scheduledCheck() {
	s.logger.Info("running scheduled stock check")
	ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
	defer cancel()

	result, err := s.CheckAndNotify(ctx, models.NotifyRequest{})
	if err != nil {
		s.logger.Error("scheduled stock check failed", zap.Error(err), zap.Strings("sent", result.Sent))
		return
	}

	s.logger.Info("scheduled stock check finished",
		zap.String("run_id", result.RunID),
		zap.Int("actionable", result.Actionable),
		zap.Bool("skipped", result.Skipped),
		zap.Strings("sent", result.Sent))
}

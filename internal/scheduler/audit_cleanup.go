// Package scheduler runs periodic maintenance jobs.
package scheduler

import (
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/mrlokans/backend-template/internal/audit"
	"github.com/mrlokans/backend-template/internal/config"
)

// AuditCleanupScheduler periodically deletes auth events older than the
// configured retention period.
type AuditCleanupScheduler struct {
	auditService *audit.Service
	cfg          config.Audit
	logger       *slog.Logger

	cron      *cron.Cron
	mu        sync.Mutex
	isRunning bool
}

// NewAuditCleanupScheduler creates a new scheduler instance.
func NewAuditCleanupScheduler(auditService *audit.Service, cfg config.Audit, logger *slog.Logger) *AuditCleanupScheduler {
	return &AuditCleanupScheduler{
		auditService: auditService,
		cfg:          cfg,
		logger:       logger,
		cron: cron.New(cron.WithParser(cron.NewParser(
			cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow))),
	}
}

// Start begins the scheduler if auditing is enabled.
func (s *AuditCleanupScheduler) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isRunning {
		return nil
	}

	if !s.cfg.Enabled {
		s.logger.Info("audit cleanup scheduler: disabled")
		return nil
	}

	if _, err := s.cron.AddFunc(s.cfg.CleanupSchedule, s.runCleanup); err != nil {
		return fmt.Errorf("invalid cron schedule %q: %w", s.cfg.CleanupSchedule, err)
	}

	s.cron.Start()
	s.isRunning = true

	s.logger.Info("audit cleanup scheduler: started",
		slog.String("schedule", s.cfg.CleanupSchedule),
		slog.Int("retention_days", s.cfg.RetentionDays))

	return nil
}

// Stop halts the scheduler and waits for a running job to finish.
func (s *AuditCleanupScheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.isRunning {
		return
	}

	ctx := s.cron.Stop()
	<-ctx.Done()
	s.isRunning = false
}

func (s *AuditCleanupScheduler) runCleanup() {
	retentionDays := s.cfg.RetentionDays
	if retentionDays <= 0 {
		retentionDays = 30
	}
	retention := time.Duration(retentionDays) * 24 * time.Hour

	deleted, err := s.auditService.DeleteOldEvents(retention)
	if err != nil {
		s.logger.Error("audit cleanup failed", slog.Any("error", err))
		return
	}

	s.logger.Info("audit cleanup complete",
		slog.Int64("deleted", deleted),
		slog.Int("retention_days", retentionDays))
}

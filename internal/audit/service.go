// Package audit provides high-level recording of authentication events.
package audit

import (
	"log/slog"
	"time"

	"github.com/mrlokans/backend-template/internal/database/audit"
	"github.com/mrlokans/backend-template/internal/entities"
)

// Service records auth events and manages their retention.
type Service struct {
	repo   *audit.Repository
	logger *slog.Logger
}

// NewService creates a new audit service.
func NewService(repo *audit.Repository, logger *slog.Logger) *Service {
	return &Service{repo: repo, logger: logger}
}

// Log records an auth event.
func (s *Service) Log(event *entities.AuthEvent) error {
	return s.repo.LogEvent(event)
}

// LogAsync records an auth event in the background (non-blocking).
// Auditing must never delay or fail the request that triggered it.
func (s *Service) LogAsync(event *entities.AuthEvent) {
	go func() {
		if err := s.repo.LogEvent(event); err != nil {
			s.logger.Warn("failed to record auth event",
				slog.String("action", string(event.Action)),
				slog.Any("error", err))
		}
	}()
}

// LogAuth records the outcome of an authentication-related operation.
func (s *Service) LogAuth(userID, username string, action entities.AuthAction, ip, userAgent string, opErr error) {
	event := &entities.AuthEvent{
		UserID:    userID,
		Username:  username,
		Action:    action,
		Status:    entities.AuditStatusSuccess,
		IPAddress: ip,
		UserAgent: truncate(userAgent, 500),
	}

	if opErr != nil {
		event.Status = entities.AuditStatusFailed
		event.ErrorMsg = truncate(opErr.Error(), 500)
	}

	s.LogAsync(event)
}

// GetEvents retrieves paginated auth events, most recent first.
func (s *Service) GetEvents(userID string, limit, offset int) ([]entities.AuthEvent, int64, error) {
	return s.repo.GetEvents(userID, limit, offset)
}

// DeleteOldEvents removes events older than the retention period and
// returns the number deleted.
func (s *Service) DeleteOldEvents(retention time.Duration) (int64, error) {
	return s.repo.DeleteOldEvents(time.Now().Add(-retention))
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen]
}

package background

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// AttemptPruner deletes login attempts older than a cutoff
type AttemptPruner interface {
	DeleteAttemptsBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

// CleanupManager periodically prunes login attempts that have aged past the
// retention period. config.Load rejects a retention shorter than the
// rate-limit lookback window, so attempts inside the window are never touched.
type CleanupManager struct {
	attempts  AttemptPruner
	retention time.Duration
	interval  time.Duration
	logger    *slog.Logger
	now       func() time.Time
	stopCh    chan struct{}
	stopOnce  sync.Once
}

// NewCleanupManager creates a new cleanup manager. A zero retention keeps
// every attempt and Start returns immediately.
func NewCleanupManager(attempts AttemptPruner, retention, interval time.Duration, logger *slog.Logger) *CleanupManager {
	return &CleanupManager{
		attempts:  attempts,
		retention: retention,
		interval:  interval,
		logger:    logger,
		now:       time.Now,
		stopCh:    make(chan struct{}),
	}
}

// Start begins the periodic cleanup task
func (cm *CleanupManager) Start(ctx context.Context) {
	if cm.retention <= 0 || cm.interval <= 0 {
		cm.logger.Info("login attempt retention disabled; attempts are kept")
		return
	}

	ticker := time.NewTicker(cm.interval)
	defer ticker.Stop()

	// Run immediately on startup
	cm.runCleanup(ctx)

	for {
		select {
		case <-ticker.C:
			cm.runCleanup(ctx)
		case <-cm.stopCh:
			cm.logger.Info("cleanup manager stopped")
			return
		case <-ctx.Done():
			cm.logger.Info("cleanup manager context cancelled")
			return
		}
	}
}

// runCleanup removes attempts older than the retention period
func (cm *CleanupManager) runCleanup(ctx context.Context) {
	cleanupCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	cutoff := cm.now().Add(-cm.retention)
	rowsDeleted, err := cm.attempts.DeleteAttemptsBefore(cleanupCtx, cutoff)
	if err != nil {
		cm.logger.Error("failed to prune login attempts", slog.Any("error", err))
		return
	}

	if rowsDeleted > 0 {
		cm.logger.Info("login attempt cleanup completed",
			slog.Int64("rows_deleted", rowsDeleted),
			slog.Time("cutoff", cutoff))
	}
}

// Stop signals the cleanup manager to stop
func (cm *CleanupManager) Stop() {
	cm.stopOnce.Do(func() { close(cm.stopCh) })
}

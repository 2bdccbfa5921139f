package background

import (
	"context"
	"log/slog"
	"time"
)

// CleanupStores groups the persistence operations the sweeper invokes
type CleanupStores interface {
	DeleteExpiredResetTokens(ctx context.Context) (int64, error)
	ClearExpiredTwoFactorCodes(ctx context.Context) (int64, error)
	DeleteLoginAttemptsOlderThan(ctx context.Context, retention time.Duration) (int64, error)
}

// CleanupManager periodically sweeps expired reset tokens, stale one-time
// codes and aged login attempt rows. Expiry is always enforced at read
// time; the sweep only keeps the tables from growing without bound.
type CleanupManager struct {
	stores    CleanupStores
	logger    *slog.Logger
	interval  time.Duration
	retention time.Duration
	stopCh    chan struct{}
}

// NewCleanupManager creates a new cleanup manager
func NewCleanupManager(stores CleanupStores, logger *slog.Logger, interval, attemptRetention time.Duration) *CleanupManager {
	return &CleanupManager{
		stores:    stores,
		logger:    logger,
		interval:  interval,
		retention: attemptRetention,
		stopCh:    make(chan struct{}),
	}
}

// Start begins the periodic cleanup task
func (cm *CleanupManager) Start(ctx context.Context) {
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

func (cm *CleanupManager) runCleanup(ctx context.Context) {
	cleanupCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	tokens, err := cm.stores.DeleteExpiredResetTokens(cleanupCtx)
	if err != nil {
		cm.logger.Error("failed to sweep expired reset tokens", slog.Any("error", err))
	}

	codes, err := cm.stores.ClearExpiredTwoFactorCodes(cleanupCtx)
	if err != nil {
		cm.logger.Error("failed to sweep expired one-time codes", slog.Any("error", err))
	}

	attempts, err := cm.stores.DeleteLoginAttemptsOlderThan(cleanupCtx, cm.retention)
	if err != nil {
		cm.logger.Error("failed to sweep aged login attempts", slog.Any("error", err))
	}

	if tokens > 0 || codes > 0 || attempts > 0 {
		cm.logger.Info("cleanup sweep completed",
			slog.Int64("reset_tokens", tokens),
			slog.Int64("one_time_codes", codes),
			slog.Int64("login_attempts", attempts))
	}
}

// Stop signals the cleanup manager to stop
func (cm *CleanupManager) Stop() {
	close(cm.stopCh)
}

package background

import (
	"context"
	"io"
	"log/slog"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type mockCleanupStores struct {
	tokenSweeps   atomic.Int64
	codeSweeps    atomic.Int64
	attemptSweeps atomic.Int64
	retention     atomic.Int64
}

func (m *mockCleanupStores) DeleteExpiredResetTokens(ctx context.Context) (int64, error) {
	m.tokenSweeps.Add(1)
	return 1, nil
}

func (m *mockCleanupStores) ClearExpiredTwoFactorCodes(ctx context.Context) (int64, error) {
	m.codeSweeps.Add(1)
	return 0, nil
}

func (m *mockCleanupStores) DeleteLoginAttemptsOlderThan(ctx context.Context, retention time.Duration) (int64, error) {
	m.retention.Store(int64(retention))
	m.attemptSweeps.Add(1)
	return 2, nil
}

func TestCleanupManager_SweepsAllStores(t *testing.T) {
	stores := &mockCleanupStores{}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	cm := NewCleanupManager(stores, logger, time.Hour, 30*24*time.Hour)

	cm.runCleanup(context.Background())

	assert.Equal(t, int64(1), stores.tokenSweeps.Load())
	assert.Equal(t, int64(1), stores.codeSweeps.Load())
	assert.Equal(t, int64(1), stores.attemptSweeps.Load())
	assert.Equal(t, int64(30*24*time.Hour), stores.retention.Load())
}

func TestCleanupManager_RunsOnStartAndStops(t *testing.T) {
	stores := &mockCleanupStores{}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	cm := NewCleanupManager(stores, logger, time.Hour, 30*24*time.Hour)

	done := make(chan struct{})
	go func() {
		cm.Start(context.Background())
		close(done)
	}()

	assert.Eventually(t, func() bool {
		return stores.tokenSweeps.Load() >= 1
	}, time.Second, 10*time.Millisecond)

	cm.Stop()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("cleanup manager did not stop")
	}
}

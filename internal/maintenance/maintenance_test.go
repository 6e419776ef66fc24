package maintenance

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/albapepper/footy-tipping/internal/window"
)

var quiet = slog.New(slog.NewTextHandler(io.Discard, nil))

func TestWeeklyCron(t *testing.T) {
	assert.Equal(t, "0 17 * * 4", WeeklyCron(window.Weekly{Weekday: time.Thursday, Hour: 17}))
	assert.Equal(t, "30 9 * * 0", WeeklyCron(window.Weekly{Weekday: time.Sunday, Hour: 9, Minute: 30}))
}

func TestStartRunsSyncThenStats(t *testing.T) {
	var synced, stats atomic.Int32
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)

	go func() {
		done <- Start(ctx, Tasks{
			SyncFixtures: func(context.Context) error { synced.Add(1); return nil },
			UpdateStats:  func(context.Context) error { stats.Add(1); return nil },
		}, Config{FixtureSyncInterval: time.Hour, Location: time.UTC}, quiet)
	}()

	assert.Eventually(t, func() bool { return stats.Load() == 1 }, 2*time.Second, 10*time.Millisecond)
	assert.Equal(t, int32(1), synced.Load())

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("scheduler did not stop")
	}
}

func TestStartWaitsForRunningTask(t *testing.T) {
	var finished atomic.Bool
	started := make(chan struct{})
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)

	go func() {
		done <- Start(ctx, Tasks{
			SyncFixtures: func(ctx context.Context) error {
				close(started)
				<-ctx.Done()
				time.Sleep(100 * time.Millisecond)
				finished.Store(true)
				return nil
			},
		}, Config{FixtureSyncInterval: time.Hour}, quiet)
	}()

	select {
	case <-started:
	case <-time.After(2 * time.Second):
		t.Fatal("sync task never started")
	}
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
		assert.True(t, finished.Load(), "Start returned while a task was still running")
	case <-time.After(5 * time.Second):
		t.Fatal("scheduler did not stop")
	}
}

func TestFailedSyncSkipsStats(t *testing.T) {
	var stats atomic.Int32
	var synced atomic.Bool
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go Start(ctx, Tasks{
		SyncFixtures: func(context.Context) error { synced.Store(true); return errors.New("feed down") },
		UpdateStats:  func(context.Context) error { stats.Add(1); return nil },
	}, Config{FixtureSyncInterval: time.Hour}, quiet)

	assert.Eventually(t, synced.Load, 2*time.Second, 10*time.Millisecond)
	time.Sleep(50 * time.Millisecond)
	assert.Zero(t, stats.Load())
}

func TestRunStepSkipsNilAndCancelled(t *testing.T) {
	assert.NoError(t, runStep(context.Background(), "none", nil, quiet))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	called := false
	err := runStep(ctx, "cancelled", func(context.Context) error { called = true; return nil }, quiet)
	assert.ErrorIs(t, err, context.Canceled)
	assert.False(t, called)
}

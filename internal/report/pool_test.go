package report

import (
	"io"
	"log/slog"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPoolRunsQueuedTasksBeforeClose(t *testing.T) {
	p := NewPool(2, 10, slog.New(slog.NewTextHandler(io.Discard, nil)))
	var n atomic.Int32
	for i := 0; i < 10; i++ {
		assert.True(t, p.Submit(func() { n.Add(1) }))
	}
	p.Close()
	assert.Equal(t, int32(10), n.Load())
	assert.False(t, p.Submit(func() {}), "closed pools reject work")
	p.Close()
}

func TestPoolSurvivesPanickingTask(t *testing.T) {
	p := NewPool(1, 2, slog.New(slog.NewTextHandler(io.Discard, nil)))
	var ran atomic.Bool
	p.Submit(func() { panic("bad task") })
	p.Submit(func() { ran.Store(true) })
	p.Close()
	assert.True(t, ran.Load())
}

func TestPoolDefaults(t *testing.T) {
	p := NewPool(0, -1, nil)
	defer p.Close()
	assert.Equal(t, 1, p.Workers())
	assert.Equal(t, 0, p.Queued())
}

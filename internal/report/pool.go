package report

import (
	"log/slog"
	"sync"
)

// Pool is a bounded FIFO task queue drained by a fixed number of workers.
// Submit never blocks: a full queue rejects the task.
type Pool struct {
	tasks   chan func()
	workers int
	logger  *slog.Logger

	mu     sync.RWMutex
	closed bool
	wg     sync.WaitGroup
}

// NewPool starts workers goroutines reading from a queue of queueSize.
func NewPool(workers, queueSize int, logger *slog.Logger) *Pool {
	if workers < 1 {
		workers = 1
	}
	if queueSize < 0 {
		queueSize = 0
	}
	if logger == nil {
		logger = slog.Default()
	}

	p := &Pool{
		tasks:   make(chan func(), queueSize),
		workers: workers,
		logger:  logger,
	}
	for i := 0; i < workers; i++ {
		p.wg.Add(1)
		go func(id int) {
			defer p.wg.Done()
			for task := range p.tasks {
				p.runTask(id, task)
			}
		}(i)
	}
	return p
}

// runTask keeps one misbehaving task from taking its worker down.
func (p *Pool) runTask(worker int, task func()) {
	defer func() {
		if r := recover(); r != nil {
			p.logger.Error("Report worker recovered from panic", "worker", worker, "panic", r)
		}
	}()
	task()
}

// Submit queues task. It returns false when the queue is full or the pool
// has been closed.
func (p *Pool) Submit(task func()) bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.closed {
		return false
	}
	select {
	case p.tasks <- task:
		return true
	default:
		return false
	}
}

// Workers returns the number of worker goroutines.
func (p *Pool) Workers() int { return p.workers }

// Queued returns the number of tasks waiting for a worker.
func (p *Pool) Queued() int { return len(p.tasks) }

// Close stops accepting tasks and waits for queued ones to finish.
func (p *Pool) Close() {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return
	}
	p.closed = true
	close(p.tasks)
	p.mu.Unlock()

	p.wg.Wait()
}

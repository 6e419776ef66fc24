// Package report coordinates asynchronous match report generation.
//
// The Tracker admits at most one generation job per (user, match) key,
// serves completed reports from memory or the durable store, reports a
// failure once on the following poll and lets callers cancel in-flight work.
// Generation itself runs on a bounded worker Pool, never on the request path.
package report

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime/debug"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/albapepper/footy-tipping/internal/fixture"
	"github.com/albapepper/footy-tipping/internal/store"
)

var (
	// ErrWrongRound rejects reports for matches outside the current round.
	ErrWrongRound = errors.New("reports are only available for the current round")
	// ErrUnavailable means the generator is not configured or cannot take work.
	ErrUnavailable = errors.New("report generation is unavailable")
	// ErrEmptyReport is recorded when the generator returns no text.
	ErrEmptyReport = errors.New("generator returned an empty report")
)

// Status values returned by Request.
const (
	StatusReady   = "ready"
	StatusPending = "pending"
	StatusError   = "error"
)

// Generator produces report text for a fixture. It may be slow and may fail.
type Generator interface {
	Enabled() bool
	Generate(ctx context.Context, f store.Fixture) (string, error)
}

// Store is the persistence the tracker needs.
type Store interface {
	FixtureByMatchID(ctx context.Context, matchID string) (store.Fixture, error)
	ListFixtures(ctx context.Context) ([]store.Fixture, error)
	FindReport(ctx context.Context, userID int64, matchID string, round int) (store.Report, error)
	InsertReport(ctx context.Context, r store.Report) (bool, error)
}

// Key identifies one user's report for one match.
type Key struct {
	UserID  int64
	MatchID string
}

// Result is the outcome of a Request.
type Result struct {
	Status  string `json:"status"`
	Text    string `json:"report,omitempty"`
	JobID   string `json:"job_id,omitempty"`
	Message string `json:"message,omitempty"`
	Detail  string `json:"detail,omitempty"`
	Cached  bool   `json:"cached"`
}

// Stats is a point-in-time view of the tracker for health checks.
type Stats struct {
	Pending int `json:"pending"`
	Cached  int `json:"cached"`
	Failed  int `json:"failed"`
	Workers int `json:"workers"`
	Queued  int `json:"queued"`
}

type job struct {
	id        string
	round     int
	cancelled atomic.Bool
}

type failure struct {
	jobID   string
	message string
	detail  string
}

// Options tune a Tracker. Zero values pick defaults.
type Options struct {
	Timeout time.Duration
	Now     func() time.Time
}

// Tracker owns all report job state for the process.
type Tracker struct {
	store   Store
	gen     Generator
	pool    *Pool
	logger  *slog.Logger
	now     func() time.Time
	timeout time.Duration

	// ctx bounds every generation; Close cancels it.
	ctx    context.Context
	cancel context.CancelFunc

	mu       sync.Mutex
	jobs     map[Key]*job
	cache    map[Key]string
	failures map[Key]failure
}

// NewTracker wires a tracker to its collaborators. The tracker takes
// ownership of pool and closes it in Close.
func NewTracker(s Store, gen Generator, pool *Pool, opts Options, logger *slog.Logger) *Tracker {
	if logger == nil {
		logger = slog.Default()
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 10 * time.Minute
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Tracker{
		store:    s,
		gen:      gen,
		pool:     pool,
		logger:   logger,
		now:      opts.Now,
		timeout:  opts.Timeout,
		ctx:      ctx,
		cancel:   cancel,
		jobs:     make(map[Key]*job),
		cache:    make(map[Key]string),
		failures: make(map[Key]failure),
	}
}

// Request returns the report for (userID, matchID) if it is ready, the
// pending status while a job runs, or a failure recorded by the last job.
// The first call for a cold key schedules generation and returns pending.
func (t *Tracker) Request(ctx context.Context, userID int64, matchID string) (Result, error) {
	f, err := t.store.FixtureByMatchID(ctx, matchID)
	if err != nil {
		return Result{}, err
	}
	fixtures, err := t.store.ListFixtures(ctx)
	if err != nil {
		return Result{}, err
	}
	current, ok := fixture.CurrentRound(fixtures, t.now())
	if !ok || f.Round != current {
		return Result{}, ErrWrongRound
	}

	k := Key{UserID: userID, MatchID: matchID}

	t.mu.Lock()
	text, cached := t.cache[k]
	t.mu.Unlock()
	if cached {
		return Result{Status: StatusReady, Text: text, Cached: true}, nil
	}

	stored, err := t.store.FindReport(ctx, userID, matchID, f.Round)
	switch {
	case err == nil:
		t.mu.Lock()
		t.cache[k] = stored.Report
		t.mu.Unlock()
		return Result{Status: StatusReady, Text: stored.Report, Cached: true}, nil
	case !errors.Is(err, store.ErrNotFound):
		// The durable copy is only a cache; fall through to generation.
		t.logger.Warn("Report lookup failed", "user_id", userID, "match_id", matchID, "error", err)
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	if text, ok := t.cache[k]; ok {
		return Result{Status: StatusReady, Text: text, Cached: true}, nil
	}
	if fl, ok := t.failures[k]; ok {
		delete(t.failures, k)
		return Result{Status: StatusError, JobID: fl.jobID, Message: fl.message, Detail: fl.detail}, nil
	}
	if j, ok := t.jobs[k]; ok {
		return Result{Status: StatusPending, JobID: j.id}, nil
	}
	if t.gen == nil || !t.gen.Enabled() {
		return Result{}, ErrUnavailable
	}

	j := &job{id: uuid.NewString(), round: f.Round}
	t.jobs[k] = j
	if !t.pool.Submit(func() { t.run(k, j, f) }) {
		delete(t.jobs, k)
		t.logger.Warn("Report queue full", "user_id", userID, "match_id", matchID)
		return Result{}, fmt.Errorf("%w: queue is full", ErrUnavailable)
	}

	t.logger.Info("Report job queued", "job_id", j.id, "user_id", userID, "match_id", matchID, "round", f.Round)
	return Result{Status: StatusPending, JobID: j.id}, nil
}

// Cancel discards any in-flight job and recorded failure for the key.
// Completed reports stay cached. It is safe to call repeatedly and reports
// whether a job was in flight.
func (t *Tracker) Cancel(userID int64, matchID string) bool {
	k := Key{UserID: userID, MatchID: matchID}

	t.mu.Lock()
	defer t.mu.Unlock()

	delete(t.failures, k)
	j, ok := t.jobs[k]
	if !ok {
		return false
	}
	j.cancelled.Store(true)
	delete(t.jobs, k)
	t.logger.Info("Report job cancelled", "job_id", j.id, "user_id", userID, "match_id", matchID)
	return true
}

// Stats returns counts of pending, cached and failed keys.
func (t *Tracker) Stats() Stats {
	t.mu.Lock()
	defer t.mu.Unlock()
	return Stats{
		Pending: len(t.jobs),
		Cached:  len(t.cache),
		Failed:  len(t.failures),
		Workers: t.pool.Workers(),
		Queued:  t.pool.Queued(),
	}
}

// Enabled reports whether new reports can be generated.
func (t *Tracker) Enabled() bool {
	return t.gen != nil && t.gen.Enabled()
}

// Close aborts running generations and waits for the pool to drain.
func (t *Tracker) Close() {
	t.cancel()
	t.pool.Close()
}

// run is the unit of work executed on the pool. The cancellation token is
// checked before generation starts and again before anything is committed.
func (t *Tracker) run(k Key, j *job, f store.Fixture) {
	log := t.logger.With("job_id", j.id, "user_id", k.UserID, "match_id", k.MatchID)
	if j.cancelled.Load() {
		log.Info("Report job skipped after cancel")
		return
	}

	start := time.Now()
	text, err := t.generate(f)

	t.mu.Lock()
	if j.cancelled.Load() {
		t.mu.Unlock()
		log.Info("Report result discarded after cancel", "duration", time.Since(start).Round(time.Millisecond))
		return
	}
	if t.jobs[k] == j {
		delete(t.jobs, k)
	}
	if err != nil {
		t.failures[k] = failure{jobID: j.id, message: "Report generation failed.", detail: err.Error()}
		t.mu.Unlock()
		log.Error("Report generation failed", "duration", time.Since(start).Round(time.Millisecond), "error", err)
		return
	}
	t.cache[k] = text
	t.mu.Unlock()

	log.Info("Report generated", "duration", time.Since(start).Round(time.Millisecond), "chars", len(text))
	t.persist(log, k, j.round, text)
}

// generate calls the generator, converting panics and empty output into errors.
func (t *Tracker) generate(f store.Fixture) (text string, err error) {
	defer func() {
		if r := recover(); r != nil {
			t.logger.Error("Report generator panicked", "match_id", f.MatchID, "panic", r, "stack", string(debug.Stack()))
			err = fmt.Errorf("generator panic: %v", r)
		}
	}()

	ctx, cancel := context.WithTimeout(t.ctx, t.timeout)
	defer cancel()

	text, err = t.gen.Generate(ctx, f)
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(text) == "" {
		return "", ErrEmptyReport
	}
	return text, nil
}

// persist writes the durable copy unless one already exists. Failures are
// logged only; the in-memory result keeps serving.
func (t *Tracker) persist(log *slog.Logger, k Key, round int, text string) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	_, err := t.store.FindReport(ctx, k.UserID, k.MatchID, round)
	if err == nil {
		return
	}
	if !errors.Is(err, store.ErrNotFound) {
		log.Warn("Report lookup before save failed", "error", err)
	}

	inserted, err := t.store.InsertReport(ctx, store.Report{
		UserID:      k.UserID,
		MatchID:     k.MatchID,
		RoundNumber: round,
		Report:      text,
		CreatedAt:   t.now().UTC(),
	})
	if err != nil {
		log.Error("Failed to save report", "error", err)
		return
	}
	if inserted {
		log.Info("Report saved", "round", round)
	}
}

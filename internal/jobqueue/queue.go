package jobqueue

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync/atomic"
	"time"

	"golang.org/x/sync/semaphore"
	"golang.org/x/time/rate"
)

// Errors reported through the failure log of a queue. Add never returns them.
var (
	ErrJobTimeout = errors.New("job timed out")
	ErrJobPanic   = errors.New("job panicked")
	ErrNilJob     = errors.New("job is nil")
)

// Job is a unit of work submitted to a Queue. The context carries the per-job
// deadline when the queue has a timeout configured.
type Job[T any] func(ctx context.Context) (T, error)

// Outcome is the tagged result of a submitted job. Value is only meaningful
// when Success is true.
type Outcome[T any] struct {
	Success bool
	Value   T
}

// Stats is a point-in-time snapshot of a queue.
type Stats struct {
	Name        string `json:"name"`
	Concurrency int    `json:"concurrency"`
	Running     int64  `json:"running"`
	Pending     int64  `json:"pending"`
}

// Queue admits jobs in FIFO order and runs at most Config.Concurrency of them
// at a time. A Queue is safe for concurrent use.
type Queue struct {
	name   string
	cfg    Config
	logger *slog.Logger

	// slots wakes waiters in the order they called Acquire
	slots   *semaphore.Weighted
	limiter *rate.Limiter

	running atomic.Int64
	pending atomic.Int64
}

// New creates a queue. Invalid configuration is reported here and nowhere else.
func New(name string, cfg Config, logger *slog.Logger) (*Queue, error) {
	if strings.TrimSpace(name) == "" {
		return nil, fmt.Errorf("%w: name cannot be empty", ErrInvalidConfig)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	if cfg.Concurrency == 0 {
		cfg.Concurrency = 1
	}
	if logger == nil {
		logger = slog.Default()
	}

	q := &Queue{
		name:   name,
		cfg:    cfg,
		logger: logger.With("queue", name),
		slots:  semaphore.NewWeighted(int64(cfg.Concurrency)),
	}
	if cfg.IntervalCap > 0 {
		// Starts are spaced Interval/IntervalCap apart with no burst, so no
		// window of length Interval ever holds more than IntervalCap starts.
		every := cfg.Interval / time.Duration(cfg.IntervalCap)
		q.limiter = rate.NewLimiter(rate.Every(every), 1)
	}

	return q, nil
}

// Name returns the name the queue logs under.
func (q *Queue) Name() string {
	return q.name
}

// Running returns the number of jobs currently executing.
func (q *Queue) Running() int64 {
	return q.running.Load()
}

// Pending returns the number of jobs waiting for a slot.
func (q *Queue) Pending() int64 {
	return q.pending.Load()
}

// Stats returns a snapshot of the queue counters.
func (q *Queue) Stats() Stats {
	return Stats{
		Name:        q.name,
		Concurrency: q.cfg.Concurrency,
		Running:     q.Running(),
		Pending:     q.Pending(),
	}
}

// Add submits job to q and waits for it to settle. It never returns an error:
// a job that fails, panics or times out yields an unsuccessful Outcome and is
// logged against the queue name.
//
// ctx only bounds the wait for admission. Once a job starts it is detached
// from ctx cancellation and runs until it settles or its timeout elapses.
func Add[T any](ctx context.Context, q *Queue, job Job[T]) Outcome[T] {
	if job == nil {
		q.logFailure(ctx, ErrNilJob)
		return Outcome[T]{}
	}

	q.pending.Add(1)
	err := q.slots.Acquire(ctx, 1)
	q.pending.Add(-1)
	if err != nil {
		q.logFailure(ctx, fmt.Errorf("waiting for a slot: %w", err))
		return Outcome[T]{}
	}
	defer q.slots.Release(1)

	if q.limiter != nil {
		if err := q.limiter.Wait(ctx); err != nil {
			q.logFailure(ctx, fmt.Errorf("waiting for rate limit: %w", err))
			return Outcome[T]{}
		}
	}

	q.running.Add(1)
	defer q.running.Add(-1)

	start := time.Now()
	value, err := run(context.WithoutCancel(ctx), q.cfg, job)
	if err != nil {
		if errors.Is(err, ErrJobTimeout) && !q.cfg.ThrowOnTimeout {
			q.logger.WarnContext(ctx, "job timed out, resolving without a value",
				"timeout", q.cfg.Timeout)
			var zero T
			return Outcome[T]{Success: true, Value: zero}
		}
		q.logFailure(ctx, err)
		return Outcome[T]{}
	}

	q.logger.DebugContext(ctx, "job completed", "duration_ms", time.Since(start).Milliseconds())
	return Outcome[T]{Success: true, Value: value}
}

// run executes job in its own goroutine so a timeout can release the caller
// while the job is still unwinding.
func run[T any](ctx context.Context, cfg Config, job Job[T]) (T, error) {
	if cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cfg.Timeout)
		defer cancel()
	}

	type result struct {
		value T
		err   error
	}
	done := make(chan result, 1)

	go func() {
		var r result
		defer func() {
			if p := recover(); p != nil {
				r.err = fmt.Errorf("%w: %v", ErrJobPanic, p)
			}
			done <- r
		}()
		r.value, r.err = job(ctx)
	}()

	select {
	case r := <-done:
		return r.value, r.err
	case <-ctx.Done():
		// a job that settled right at the deadline still counts
		select {
		case r := <-done:
			return r.value, r.err
		default:
		}
		var zero T
		return zero, fmt.Errorf("%w after %s", ErrJobTimeout, cfg.Timeout)
	}
}

func (q *Queue) logFailure(ctx context.Context, err error) {
	q.logger.ErrorContext(ctx, "error in queue "+q.name)
	q.logger.ErrorContext(ctx, err.Error(), "error", err)
}

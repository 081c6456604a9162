// Package worker delivers receipt emails off the request path. The receipt
// package holds a receipt.Notifier interface and calls Notify; it never
// imports the concrete Runner or Dispatcher types.
package worker

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/nyashahama/strideshop-receipts/internal/receipt"
)

// Deliverer makes one delivery attempt. *Dispatcher is the production
// implementation; tests substitute their own.
type Deliverer interface {
	Deliver(ctx context.Context, job receipt.NotificationJob) Outcome
}

// ─── RUNNER ───────────────────────────────────────────────────────────────────

// RunnerConfig holds tuning parameters for the Runner. Zero fields take the
// values from DefaultRunnerConfig.
type RunnerConfig struct {
	// Workers is the number of concurrent delivery goroutines. Default: 4.
	Workers int

	// QueueSize bounds the number of accepted but unstarted jobs. When the
	// queue is full Notify drops the job. Default: 256.
	QueueSize int

	// JobTimeout is the per-delivery deadline. It is the only bound on a
	// delivery: request cancellation does not reach it. Default: 30s.
	JobTimeout time.Duration
}

// DefaultRunnerConfig returns safe production defaults.
func DefaultRunnerConfig() RunnerConfig {
	return RunnerConfig{
		Workers:    4,
		QueueSize:  256,
		JobTimeout: 30 * time.Second,
	}
}

// Runner is a fixed pool of goroutines fed by a bounded channel.
type Runner struct {
	deliverer Deliverer
	cfg       RunnerConfig
	logger    *slog.Logger

	// mu guards stopped and the close of queue against concurrent Notify.
	mu      sync.RWMutex
	queue   chan receipt.NotificationJob
	stopped bool
	wg      sync.WaitGroup
}

var (
	_ receipt.Notifier = (*Runner)(nil)
	_ Deliverer        = (*Dispatcher)(nil)
)

// NewRunner constructs a Runner. Call Start to begin processing.
func NewRunner(deliverer Deliverer, cfg RunnerConfig, logger *slog.Logger) *Runner {
	def := DefaultRunnerConfig()
	if cfg.Workers <= 0 {
		cfg.Workers = def.Workers
	}
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = def.QueueSize
	}
	if cfg.JobTimeout <= 0 {
		cfg.JobTimeout = def.JobTimeout
	}

	return &Runner{
		deliverer: deliverer,
		cfg:       cfg,
		logger:    logger,
		queue:     make(chan receipt.NotificationJob, cfg.QueueSize),
	}
}

// Notify satisfies receipt.Notifier. It never blocks: a full queue, or a
// runner that has been stopped, drops the job and logs it.
func (r *Runner) Notify(job receipt.NotificationJob) {
	log := r.logger.With("receipt_id", job.ReceiptID, "email", job.RecipientEmail)

	r.mu.RLock()
	defer r.mu.RUnlock()

	if r.stopped {
		log.Error("worker: runner stopped, notification dropped")
		return
	}

	select {
	case r.queue <- job:
		log.Debug("worker: notification queued", "depth", len(r.queue))
	default:
		log.Error("worker: queue full, notification dropped", "capacity", cap(r.queue))
	}
}

// Start launches the pool and blocks until ctx is cancelled and every
// queued job has been delivered. Notify calls after cancellation are dropped.
// Cancel ctx only once nothing else can produce jobs, i.e. after the HTTP
// server has shut down. Start must be called once:
//
//	go runner.Start(ctx)
func (r *Runner) Start(ctx context.Context) {
	r.logger.Info("worker: starting",
		"workers", r.cfg.Workers,
		"queue_size", r.cfg.QueueSize,
		"job_timeout", r.cfg.JobTimeout,
	)

	// Deliveries keep the values of ctx but not its cancellation.
	base := context.WithoutCancel(ctx)

	for i := range r.cfg.Workers {
		r.wg.Add(1)
		go r.work(base, i)
	}

	<-ctx.Done()

	r.mu.Lock()
	r.stopped = true
	pending := len(r.queue)
	close(r.queue)
	r.mu.Unlock()

	if pending > 0 {
		r.logger.Info("worker: draining queued notifications", "pending", pending)
	}
	r.wg.Wait()
	r.logger.Info("worker: stopped")
}

// work is the inner loop for each worker goroutine. It returns once the queue
// is closed and empty.
func (r *Runner) work(base context.Context, id int) {
	defer r.wg.Done()
	log := r.logger.With("worker_id", id)
	log.Debug("worker: goroutine started")

	for job := range r.queue {
		r.deliver(base, job, log)
	}
	log.Debug("worker: goroutine stopping")
}

// deliver runs one attempt and logs its outcome. There are no retries.
func (r *Runner) deliver(base context.Context, job receipt.NotificationJob, log *slog.Logger) {
	jobCtx, cancel := context.WithTimeout(base, r.cfg.JobTimeout)
	defer cancel()

	start := time.Now()
	out := r.deliverer.Deliver(jobCtx, job)

	log = log.With(
		"receipt_id", job.ReceiptID,
		"email", job.RecipientEmail,
		"duration", time.Since(start),
	)
	if out.Err != nil {
		log.Error("worker: notification failed", "error", out.Err)
		return
	}
	log.Info("worker: notification sent", "message_id", out.MessageID)
}

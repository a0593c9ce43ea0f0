package worker

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// Job is a unit of background work. Run is retried on failure.
type Job interface {
	Name() string
	Run(ctx context.Context) error
}

// Pool executes jobs on a fixed set of workers with bounded queueing.
type Pool struct {
	queue    chan Job
	wg       sync.WaitGroup
	attempts int
	delay    time.Duration
	once     sync.Once
}

func NewPool(workers, queueSize, attempts int, retryDelay time.Duration) *Pool {
	if workers < 1 {
		workers = 1
	}
	if attempts < 1 {
		attempts = 1
	}
	p := &Pool{
		queue:    make(chan Job, queueSize),
		attempts: attempts,
		delay:    retryDelay,
	}
	p.wg.Add(workers)
	for i := 0; i < workers; i++ {
		go p.worker(i)
	}
	return p
}

// Submit enqueues a job without blocking. It reports false when the queue
// is full or the pool has been shut down.
func (p *Pool) Submit(job Job) bool {
	defer func() {
		// Submit after Shutdown would panic on the closed channel.
		_ = recover()
	}()
	select {
	case p.queue <- job:
		return true
	default:
		slog.Warn("worker queue full, job dropped", "job", job.Name())
		return false
	}
}

// Shutdown stops accepting jobs and waits for queued ones to drain.
func (p *Pool) Shutdown() {
	p.once.Do(func() {
		close(p.queue)
	})
	p.wg.Wait()
}

func (p *Pool) worker(id int) {
	defer p.wg.Done()
	for job := range p.queue {
		p.run(id, job)
	}
}

func (p *Pool) run(workerID int, job Job) {
	ctx := context.Background()
	var err error
	for attempt := 1; attempt <= p.attempts; attempt++ {
		if err = job.Run(ctx); err == nil {
			if attempt > 1 {
				slog.Info("job succeeded after retry", "job", job.Name(), "attempt", attempt)
			}
			return
		}
		slog.Warn("job attempt failed",
			"job", job.Name(),
			"worker", workerID,
			"attempt", attempt,
			"error", err,
		)
		if attempt < p.attempts {
			time.Sleep(p.delay)
		}
	}
	slog.Error("job failed permanently", "job", job.Name(), "attempts", p.attempts, "error", err)
}

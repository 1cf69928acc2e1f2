package services

import (
	"context"
	"sync"
	"time"

	"github.com/NomadCrew/feedback-desk/config"
	"github.com/NomadCrew/feedback-desk/logger"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.uber.org/zap"
)

const jobTimeout = 30 * time.Second

// Job represents a unit of work for the worker pool.
type Job struct {
	// Name is a descriptive name for logging purposes
	Name string
	// Execute is the function that performs the work
	Execute func(ctx context.Context) error
}

// WorkerPool runs jobs on a bounded set of workers fed by a bounded queue.
// Jobs that do not fit in the queue are dropped, never blocked on.
type WorkerPool struct {
	jobQueue chan Job
	wg       sync.WaitGroup
	ctx      context.Context
	cancel   context.CancelFunc
	logger   *zap.SugaredLogger
	metrics  *workerPoolMetrics
	config   config.WorkerPoolConfig
	mu       sync.RWMutex
	running  bool
	stopped  bool
}

type workerPoolMetrics struct {
	queueDepth    prometheus.Gauge
	activeWorkers prometheus.Gauge
	completedJobs prometheus.Counter
	droppedJobs   prometheus.Counter
	errorCount    prometheus.Counter
	jobDuration   prometheus.Histogram
}

func newWorkerPoolMetrics(reg prometheus.Registerer) *workerPoolMetrics {
	factory := promauto.With(reg)
	return &workerPoolMetrics{
		queueDepth: factory.NewGauge(prometheus.GaugeOpts{
			Name: "feedback_worker_pool_queue_depth",
			Help: "Current number of jobs waiting in queue",
		}),
		activeWorkers: factory.NewGauge(prometheus.GaugeOpts{
			Name: "feedback_worker_pool_active_workers",
			Help: "Current number of workers processing jobs",
		}),
		completedJobs: factory.NewCounter(prometheus.CounterOpts{
			Name: "feedback_worker_pool_completed_jobs_total",
			Help: "Total number of completed jobs",
		}),
		droppedJobs: factory.NewCounter(prometheus.CounterOpts{
			Name: "feedback_worker_pool_dropped_jobs_total",
			Help: "Total number of jobs dropped due to full queue",
		}),
		errorCount: factory.NewCounter(prometheus.CounterOpts{
			Name: "feedback_worker_pool_errors_total",
			Help: "Total number of job execution errors",
		}),
		jobDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "feedback_worker_pool_job_duration_seconds",
			Help:    "Time taken to execute jobs",
			Buckets: []float64{.01, .05, .1, .25, .5, 1, 2.5, 5, 10},
		}),
	}
}

// NewWorkerPool creates a pool registering its metrics with reg. The pool
// must be started with Start before jobs run.
func NewWorkerPool(cfg config.WorkerPoolConfig, reg prometheus.Registerer) *WorkerPool {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &WorkerPool{
		jobQueue: make(chan Job, cfg.QueueSize),
		ctx:      ctx,
		cancel:   cancel,
		logger:   logger.GetLogger().Named("worker-pool"),
		metrics:  newWorkerPoolMetrics(reg),
		config:   cfg,
	}
}

// Start launches the workers. Calling it more than once is harmless.
func (wp *WorkerPool) Start() {
	wp.mu.Lock()
	defer wp.mu.Unlock()

	if wp.running || wp.stopped {
		return
	}
	wp.running = true

	wp.logger.Infow("Starting worker pool",
		"maxWorkers", wp.config.MaxWorkers,
		"queueSize", wp.config.QueueSize)

	for i := 0; i < wp.config.MaxWorkers; i++ {
		wp.wg.Add(1)
		go wp.worker(i)
	}
}

// worker drains the queue until it is closed.
func (wp *WorkerPool) worker(id int) {
	defer wp.wg.Done()
	for job := range wp.jobQueue {
		wp.executeJob(id, job)
	}
}

func (wp *WorkerPool) executeJob(workerID int, job Job) {
	wp.metrics.activeWorkers.Inc()
	wp.metrics.queueDepth.Dec()
	defer wp.metrics.activeWorkers.Dec()

	start := time.Now()

	jobCtx, cancel := context.WithTimeout(wp.ctx, jobTimeout)
	defer cancel()

	if err := job.Execute(jobCtx); err != nil {
		wp.logger.Errorw("Job execution failed",
			"job", job.Name,
			"workerId", workerID,
			"error", err,
			"duration", time.Since(start))
		wp.metrics.errorCount.Inc()
	} else {
		wp.logger.Debugw("Job completed",
			"job", job.Name,
			"workerId", workerID,
			"duration", time.Since(start))
	}

	wp.metrics.jobDuration.Observe(time.Since(start).Seconds())
	wp.metrics.completedJobs.Inc()
}

// Submit queues job without blocking. It returns false when the queue is
// full or the pool has been shut down.
func (wp *WorkerPool) Submit(job Job) bool {
	wp.mu.RLock()
	defer wp.mu.RUnlock()

	if wp.stopped {
		wp.metrics.droppedJobs.Inc()
		wp.logger.Warnw("Job dropped - pool shut down", "job", job.Name)
		return false
	}

	select {
	case wp.jobQueue <- job:
		wp.metrics.queueDepth.Inc()
		return true
	default:
		wp.metrics.droppedJobs.Inc()
		wp.logger.Warnw("Job dropped - queue full",
			"job", job.Name,
			"queueSize", wp.config.QueueSize)
		return false
	}
}

// Shutdown stops accepting jobs and waits for the queued ones to finish.
// When ctx expires first, running jobs are cancelled and ctx.Err() is
// returned.
func (wp *WorkerPool) Shutdown(ctx context.Context) error {
	wp.mu.Lock()
	if wp.stopped {
		wp.mu.Unlock()
		return nil
	}
	wp.stopped = true
	wp.running = false
	close(wp.jobQueue)
	wp.mu.Unlock()

	done := make(chan struct{})
	go func() {
		wp.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		wp.cancel()
		wp.logger.Info("Worker pool shutdown complete")
		return nil
	case <-ctx.Done():
		wp.cancel()
		wp.logger.Warn("Worker pool shutdown timed out, cancelling running jobs")
		return ctx.Err()
	}
}

// QueueDepth returns the number of jobs waiting in the queue.
func (wp *WorkerPool) QueueDepth() int {
	return len(wp.jobQueue)
}

func (wp *WorkerPool) IsRunning() bool {
	wp.mu.RLock()
	defer wp.mu.RUnlock()
	return wp.running
}

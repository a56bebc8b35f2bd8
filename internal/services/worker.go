package services

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"unitalent/talent-center/internal/metrics"
	"unitalent/talent-center/internal/repositories"
)

// IndexWorker keeps the search index in step with profile changes. Jobs
// come from Enqueue and from a poller over the repository backlog.
type IndexWorker interface {
	Start(ctx context.Context)
	Stop()
	Enqueue(studentID uuid.UUID)
}

type WorkerOptions struct {
	Concurrency  int
	QueueSize    int
	PollInterval time.Duration
	BatchSize    int
}

type indexWorker struct {
	students repositories.StudentRepository
	indexer  ProfileIndexer
	opts     WorkerOptions
	logger   *zap.Logger
	metrics  *metrics.Metrics

	jobQueue chan uuid.UUID
	wg       sync.WaitGroup
	stopOnce sync.Once
	stopChan chan struct{}

	inFlightMu sync.Mutex
	inFlight   map[uuid.UUID]bool
}

func NewIndexWorker(
	students repositories.StudentRepository,
	indexer ProfileIndexer,
	opts WorkerOptions,
	log *zap.Logger,
	m *metrics.Metrics,
) IndexWorker {
	if opts.Concurrency <= 0 {
		opts.Concurrency = 1
	}
	if opts.QueueSize <= 0 {
		opts.QueueSize = 100
	}
	if opts.PollInterval <= 0 {
		opts.PollInterval = 30 * time.Second
	}
	if opts.BatchSize <= 0 {
		opts.BatchSize = 20
	}
	if log == nil {
		log = zap.NewNop()
	}

	return &indexWorker{
		students: students,
		indexer:  indexer,
		opts:     opts,
		logger:   log,
		metrics:  m,
		jobQueue: make(chan uuid.UUID, opts.QueueSize),
		stopChan: make(chan struct{}),
		inFlight: make(map[uuid.UUID]bool),
	}
}

func (w *indexWorker) Start(ctx context.Context) {
	w.logger.Info("🚀 Starting index worker", zap.Int("concurrency", w.opts.Concurrency))

	for i := 0; i < w.opts.Concurrency; i++ {
		w.wg.Add(1)
		go w.processJobs(ctx, i+1)
	}

	w.wg.Add(1)
	go w.pollBacklog(ctx)
}

func (w *indexWorker) Stop() {
	w.stopOnce.Do(func() {
		w.logger.Info("🛑 Stopping index worker...")
		close(w.stopChan)
		w.wg.Wait()
		w.logger.Info("✅ Index worker stopped")
	})
}

// Enqueue never blocks. A job dropped on a full queue is picked up by the
// next backlog poll.
func (w *indexWorker) Enqueue(studentID uuid.UUID) {
	select {
	case <-w.stopChan:
		return
	default:
	}

	w.inFlightMu.Lock()
	if w.inFlight[studentID] {
		w.inFlightMu.Unlock()
		return
	}
	w.inFlight[studentID] = true
	w.inFlightMu.Unlock()

	select {
	case w.jobQueue <- studentID:
	default:
		w.release(studentID)
		w.logger.Warn("⚠️ index queue full, deferring to poller", zap.String("student_id", studentID.String()))
	}
}

func (w *indexWorker) release(studentID uuid.UUID) {
	w.inFlightMu.Lock()
	delete(w.inFlight, studentID)
	w.inFlightMu.Unlock()
}

func (w *indexWorker) processJobs(ctx context.Context, workerID int) {
	defer w.wg.Done()

	for {
		select {
		case <-w.stopChan:
			return
		case <-ctx.Done():
			return
		case studentID := <-w.jobQueue:
			w.release(studentID)
			if err := w.indexer.IndexProfile(ctx, studentID); err != nil {
				w.metrics.IncIndexJob(metrics.OutcomeFailure)
				w.logger.Error("❌ failed to index profile",
					zap.Int("worker", workerID),
					zap.String("student_id", studentID.String()),
					zap.Error(err),
				)
				continue
			}
			w.metrics.IncIndexJob(metrics.OutcomeSuccess)
			w.logger.Debug("profile indexed",
				zap.Int("worker", workerID),
				zap.String("student_id", studentID.String()),
			)
		}
	}
}

func (w *indexWorker) pollBacklog(ctx context.Context) {
	defer w.wg.Done()
	ticker := time.NewTicker(w.opts.PollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-w.stopChan:
			return
		case <-ctx.Done():
			return
		case <-ticker.C:
			ids, err := w.students.FindIndexBacklog(ctx, w.opts.BatchSize)
			if err != nil {
				w.logger.Warn("⚠️ failed to fetch index backlog", zap.Error(err))
				continue
			}
			if len(ids) > 0 {
				w.logger.Info("📋 index backlog found", zap.Int("profiles", len(ids)))
			}
			for _, id := range ids {
				w.Enqueue(id)
			}
		}
	}
}

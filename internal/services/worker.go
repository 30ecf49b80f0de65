package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"alfredoptarigan/resume-screener/internal/models"
	"alfredoptarigan/resume-screener/internal/repositories"
)

type Worker interface {
	Start(ctx context.Context)
	Stop()
	EnqueueJob(evalID uuid.UUID)
}

type WorkerConfig struct {
	Concurrency  int
	QueueSize    int
	PollInterval time.Duration
}

type worker struct {
	evalRepo     repositories.EvaluationRepository
	docRepo      repositories.DocumentRepository
	storage      StorageService
	orchestrator ScoringOrchestrator
	jobQueue     chan uuid.UUID
	cfg          WorkerConfig
	log          *zap.Logger
	wg           sync.WaitGroup
	stopChan     chan struct{}
	stopOnce     sync.Once
}

// NewWorker runs queued evaluations in the background. The orchestrator
// should be built with an evaluation recorder so results reach the database.
func NewWorker(
	evalRepo repositories.EvaluationRepository,
	docRepo repositories.DocumentRepository,
	storage StorageService,
	orchestrator ScoringOrchestrator,
	cfg WorkerConfig,
	log *zap.Logger,
) Worker {
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = 1
	}
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = 100
	}
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = 10 * time.Second
	}
	if log == nil {
		log = zap.NewNop()
	}

	return &worker{
		evalRepo:     evalRepo,
		docRepo:      docRepo,
		storage:      storage,
		orchestrator: orchestrator,
		jobQueue:     make(chan uuid.UUID, cfg.QueueSize),
		cfg:          cfg,
		log:          log,
		stopChan:     make(chan struct{}),
	}
}

// Start implements Worker.
func (w *worker) Start(ctx context.Context) {
	w.log.Info("starting worker", zap.Int("concurrency", w.cfg.Concurrency))

	for i := 0; i < w.cfg.Concurrency; i++ {
		w.wg.Add(1)
		go w.processJobs(ctx, i+1)
	}

	w.wg.Add(1)
	go w.pollPendingJobs(ctx)
}

// Stop implements Worker.
func (w *worker) Stop() {
	w.stopOnce.Do(func() {
		w.log.Info("stopping worker")
		close(w.stopChan)
	})
	w.wg.Wait()
	w.log.Info("worker stopped")
}

// EnqueueJob implements Worker.
func (w *worker) EnqueueJob(evalID uuid.UUID) {
	select {
	case w.jobQueue <- evalID:
		w.log.Debug("job enqueued", zap.Stringer("evaluation_id", evalID))
	case <-w.stopChan:
		w.log.Warn("worker stopped, cannot enqueue job", zap.Stringer("evaluation_id", evalID))
	}
}

func (w *worker) processJobs(ctx context.Context, workerID int) {
	defer w.wg.Done()

	for {
		select {
		case <-w.stopChan:
			return
		case <-ctx.Done():
			return
		case evalID := <-w.jobQueue:
			log := w.log.With(zap.Int("worker", workerID), zap.Stringer("evaluation_id", evalID))
			if err := w.process(ctx, evalID); err != nil {
				log.Warn("job failed", zap.Error(err))
			} else {
				log.Debug("job completed")
			}
		}
	}
}

// process runs one queued evaluation. Scoring failures are written to the
// record by the orchestrator's recorder; failures before scoring starts are
// written here.
func (w *worker) process(ctx context.Context, evalID uuid.UUID) error {
	eval, err := w.evalRepo.FindByID(evalID)
	if err != nil {
		return err
	}
	if eval.Status != models.StatusQueued {
		return nil
	}

	// The same id can arrive from EnqueueJob and from the poller.
	claimed, err := w.evalRepo.Claim(evalID)
	if err != nil {
		return err
	}
	if !claimed {
		w.log.Debug("job already claimed", zap.Stringer("evaluation_id", evalID))
		return nil
	}

	doc, data, err := w.loadDocument(eval.DocumentID)
	if err != nil {
		if uerr := w.evalRepo.UpdateError(evalID, KindCode(err), err.Error()); uerr != nil {
			w.log.Error("failed to record job error", zap.Stringer("evaluation_id", evalID), zap.Error(uerr))
		}
		return err
	}

	_, err = w.orchestrator.Evaluate(WithEvaluationID(ctx, evalID), models.ResumeDocument{
		Data:      data,
		MediaType: models.MediaType(doc.MediaType),
	}, eval.RoleID)
	return err
}

func (w *worker) loadDocument(id uuid.UUID) (*models.Document, []byte, error) {
	doc, err := w.docRepo.FindByID(id)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %v", ErrInternal, err)
	}

	data, err := w.storage.ReadFile(doc.FilePath)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %v", ErrInternal, err)
	}

	return doc, data, nil
}

func (w *worker) pollPendingJobs(ctx context.Context) {
	defer w.wg.Done()
	ticker := time.NewTicker(w.cfg.PollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-w.stopChan:
			return
		case <-ctx.Done():
			return
		case <-ticker.C:
			pendingJobs, err := w.evalRepo.FindPendingJobs(10)
			if err != nil {
				w.log.Warn("failed to fetch pending jobs", zap.Error(err))
				continue
			}

			if len(pendingJobs) > 0 {
				w.log.Debug("found pending jobs", zap.Int("count", len(pendingJobs)))
			}

			for _, job := range pendingJobs {
				w.EnqueueJob(job.ID)
			}
		}
	}
}

package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"alfredoptarigan/resume-screener/internal/metrics"
	"alfredoptarigan/resume-screener/internal/models"
)

// FallbackSummary is returned when the language model could not be reached.
const FallbackSummary = "augmentation unavailable"

// ScoringOrchestrator runs one evaluation end to end.
type ScoringOrchestrator interface {
	Evaluate(ctx context.Context, doc models.ResumeDocument, roleID string) (models.ScoringOutcome, error)
}

// OutcomeRecorder persists the result of an evaluation. outcome is nil when
// the evaluation failed.
type OutcomeRecorder interface {
	RecordOutcome(ctx context.Context, roleID string, outcome *models.ScoringOutcome, failure error) error
}

type OrchestratorConfig struct {
	// AugmentTimeout bounds the whole augmentation step, retries included.
	AugmentTimeout time.Duration
}

type scoringOrchestrator struct {
	extractor TextExtractor
	roles     RoleCatalog
	scorer    BaselineScorer
	augmenter Augmenter
	recorder  OutcomeRecorder
	cfg       OrchestratorConfig
	log       *zap.Logger
}

type OrchestratorOption func(*scoringOrchestrator)

// WithRecorder persists every outcome through r.
func WithRecorder(r OutcomeRecorder) OrchestratorOption {
	return func(o *scoringOrchestrator) {
		o.recorder = r
	}
}

// NewScoringOrchestrator builds the pipeline. augmenter may be nil, in which
// case every outcome is degraded.
func NewScoringOrchestrator(
	extractor TextExtractor,
	roles RoleCatalog,
	scorer BaselineScorer,
	augmenter Augmenter,
	cfg OrchestratorConfig,
	log *zap.Logger,
	opts ...OrchestratorOption,
) ScoringOrchestrator {
	if log == nil {
		log = zap.NewNop()
	}
	if cfg.AugmentTimeout <= 0 {
		cfg.AugmentTimeout = 60 * time.Second
	}

	o := &scoringOrchestrator{
		extractor: extractor,
		roles:     roles,
		scorer:    scorer,
		augmenter: augmenter,
		cfg:       cfg,
		log:       log,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Evaluate implements ScoringOrchestrator. Failures before the baseline is
// computed are returned as *ScoringError; augmentation failures never are.
func (o *scoringOrchestrator) Evaluate(ctx context.Context, doc models.ResumeDocument, roleID string) (outcome models.ScoringOutcome, err error) {
	start := time.Now()
	stage := StageReceived
	log := o.log.With(
		zap.String("role_id", roleID),
		zap.String("media_type", string(doc.MediaType)),
		zap.Int("document_bytes", len(doc.Data)),
	)

	defer func() {
		if r := recover(); r != nil {
			log.Error("evaluation panicked", zap.String("stage", string(stage)), zap.Any("panic", r))
			err = &ScoringError{Stage: stage, Kind: ErrInternal, Err: fmt.Errorf("panic: %v", r)}
			outcome = models.ScoringOutcome{}
		}
		o.finish(ctx, log, roleID, stage, start, outcome, err)
	}()

	log.Debug("evaluation received")

	profile, err := o.roles.Lookup(roleID)
	if err != nil {
		return models.ScoringOutcome{}, &ScoringError{Stage: stage, Kind: ErrorKind(err), Err: err}
	}

	t := time.Now()
	text, err := o.extractor.Extract(doc)
	metrics.StageDuration.WithLabelValues(string(StageExtracted)).Observe(time.Since(t).Seconds())
	if err != nil {
		return models.ScoringOutcome{}, &ScoringError{Stage: stage, Kind: ErrorKind(err), Err: err}
	}
	stage = StageExtracted
	log.Debug("text extracted",
		zap.Int("segments", len(text.Segments)),
		zap.Int("pages", text.PageCount),
		zap.Int("text_length", len(text.Text())),
	)

	t = time.Now()
	baseline := o.scorer.Score(text, profile)
	metrics.StageDuration.WithLabelValues(string(StageBaselineScored)).Observe(time.Since(t).Seconds())
	stage = StageBaselineScored
	log.Debug("baseline scored",
		zap.Float64("score", baseline.Score),
		zap.Int("matched", len(baseline.MatchedSkills)),
		zap.Int("missing", len(baseline.MissingSkills)),
	)

	outcome = models.ScoringOutcome{
		ScoreWithoutChatGPT: baseline.Score,
		MatchedSkills:       baseline.MatchedSkills,
		MissingSkills:       baseline.MissingSkills,
	}

	t = time.Now()
	augmented, augErr := o.augment(ctx, text, profile, baseline)
	metrics.StageDuration.WithLabelValues(string(StageAugmented)).Observe(time.Since(t).Seconds())
	if augErr != nil {
		log.Warn("augmentation unavailable, using baseline", zap.Error(augErr))
		outcome.ScoreWithChatGPT = baseline.Score
		outcome.Summary = FallbackSummary
		outcome.Degraded = true
	} else {
		outcome.ScoreWithChatGPT = augmented.Score
		outcome.Summary = augmented.Summary
	}
	stage = StageCompleted
	return outcome, nil
}

// augment runs the augmenter under its own deadline. The call is abandoned,
// not awaited, once the deadline passes or ctx is cancelled.
func (o *scoringOrchestrator) augment(ctx context.Context, text models.ExtractedText, profile models.RoleProfile, baseline models.BaselineResult) (models.AugmentedResult, error) {
	if o.augmenter == nil {
		return models.AugmentedResult{}, errors.New("no language model configured")
	}

	augCtx, cancel := context.WithTimeout(ctx, o.cfg.AugmentTimeout)
	defer cancel()

	type reply struct {
		result models.AugmentedResult
		err    error
	}
	done := make(chan reply, 1)

	go func() {
		defer func() {
			if r := recover(); r != nil {
				done <- reply{err: fmt.Errorf("augmenter panic: %v", r)}
			}
		}()
		res, err := o.augmenter.Augment(augCtx, text, profile, baseline)
		done <- reply{result: res, err: err}
	}()

	select {
	case r := <-done:
		return r.result, r.err
	case <-augCtx.Done():
		return models.AugmentedResult{}, fmt.Errorf("augmentation abandoned: %w", augCtx.Err())
	}
}

func (o *scoringOrchestrator) finish(ctx context.Context, log *zap.Logger, roleID string, stage Stage, start time.Time, outcome models.ScoringOutcome, err error) {
	elapsed := time.Since(start)

	switch {
	case err != nil:
		kind := KindCode(err)
		metrics.EvaluationsTotal.WithLabelValues("failed").Inc()
		metrics.EvaluationFailures.WithLabelValues(string(stage), kind).Inc()
		log.Warn("evaluation failed",
			zap.String("stage", string(stage)),
			zap.String("kind", kind),
			zap.Duration("elapsed", elapsed),
			zap.Error(err),
		)
	case outcome.Degraded:
		metrics.EvaluationsTotal.WithLabelValues("degraded").Inc()
		log.Info("evaluation completed",
			zap.Float64("score_without_chatgpt", outcome.ScoreWithoutChatGPT),
			zap.Bool("degraded", true),
			zap.Duration("elapsed", elapsed),
		)
	default:
		metrics.EvaluationsTotal.WithLabelValues("completed").Inc()
		log.Info("evaluation completed",
			zap.Float64("score_without_chatgpt", outcome.ScoreWithoutChatGPT),
			zap.Float64("score_with_chatgpt", outcome.ScoreWithChatGPT),
			zap.Duration("elapsed", elapsed),
		)
	}

	if o.recorder == nil {
		return
	}

	var recorded *models.ScoringOutcome
	if err == nil {
		recorded = &outcome
	}
	// Recorded even when the caller has gone away.
	if recErr := o.recorder.RecordOutcome(context.WithoutCancel(ctx), roleID, recorded, err); recErr != nil {
		log.Error("failed to record evaluation outcome", zap.Error(recErr))
	}
}

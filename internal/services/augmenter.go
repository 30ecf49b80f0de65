package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"go.uber.org/zap"

	"alfredoptarigan/resume-screener/internal/logger"
	"alfredoptarigan/resume-screener/internal/metrics"
	"alfredoptarigan/resume-screener/internal/models"
)

// ErrMalformedReply is returned when a provider answers with something that is
// not a usable {score, summary} object.
var ErrMalformedReply = errors.New("malformed augmentation reply")

const maxReplyPreview = 200

// Augmenter asks a language model for a holistic score and summary.
type Augmenter interface {
	Augment(ctx context.Context, text models.ExtractedText, profile models.RoleProfile, baseline models.BaselineResult) (models.AugmentedResult, error)
}

type AugmenterConfig struct {
	MaxChars       int
	MaxAttempts    int
	InitialDelay   time.Duration
	MaxDelay       time.Duration
	AttemptTimeout time.Duration
	Temperature    float32
}

type augmenter struct {
	provider  LLMProvider
	retriever RoleContextRetriever
	prompts   *PromptBuilder
	cfg       AugmenterConfig
	log       *zap.Logger
}

// sleep waits for d or until ctx is done. Tests replace it.
var sleep = func(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// NewAugmenter wires a provider into the augmentation client. retriever may be
// nil.
func NewAugmenter(provider LLMProvider, retriever RoleContextRetriever, cfg AugmenterConfig, log *zap.Logger) Augmenter {
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = 3
	}
	if cfg.MaxChars <= 0 {
		cfg.MaxChars = 12000
	}
	if cfg.InitialDelay <= 0 {
		cfg.InitialDelay = 500 * time.Millisecond
	}
	if cfg.MaxDelay < cfg.InitialDelay {
		cfg.MaxDelay = cfg.InitialDelay
	}
	if log == nil {
		log = zap.NewNop()
	}

	return &augmenter{
		provider:  provider,
		retriever: retriever,
		prompts:   NewPromptBuilder(),
		cfg:       cfg,
		log:       log,
	}
}

// Augment implements Augmenter.
func (a *augmenter) Augment(ctx context.Context, text models.ExtractedText, profile models.RoleProfile, baseline models.BaselineResult) (models.AugmentedResult, error) {
	resumeText := TruncateHeadTail(text.Text(), a.cfg.MaxChars)

	roleContext := ""
	if a.retriever != nil {
		rc, err := a.retriever.RoleContext(ctx, profile)
		if err != nil {
			a.log.Warn("role context unavailable",
				zap.String("role_id", profile.RoleID),
				zap.Error(err),
			)
		} else {
			roleContext = rc
		}
	}

	system, user := a.prompts.BuildAugmentationPrompt(AugmentationInput{
		ResumeText:  resumeText,
		Profile:     profile,
		Baseline:    baseline,
		RoleContext: roleContext,
	})
	req := LLMRequest{SystemPrompt: system, UserPrompt: user, Temperature: a.cfg.Temperature}

	provider := a.provider.Name()
	var lastErr error

	for attempt := 1; attempt <= a.cfg.MaxAttempts; attempt++ {
		result, err := a.attempt(ctx, req)
		if err == nil {
			metrics.AugmentationAttempts.WithLabelValues(provider, "success").Inc()
			a.log.Debug("augmentation succeeded",
				zap.String("provider", provider),
				zap.String("role_id", profile.RoleID),
				zap.Int("attempt", attempt),
				zap.Float64("score", result.Score),
			)
			return result, nil
		}

		lastErr = err
		metrics.AugmentationAttempts.WithLabelValues(provider, "error").Inc()

		if ctx.Err() != nil {
			return models.AugmentedResult{}, fmt.Errorf("augmentation cancelled: %w", ctx.Err())
		}
		if !errors.Is(err, ErrMalformedReply) && !IsRetryable(err) {
			a.log.Warn("augmentation failed with non-retryable error",
				zap.String("provider", provider),
				zap.Int("attempt", attempt),
				zap.Error(err),
			)
			break
		}
		if attempt == a.cfg.MaxAttempts {
			break
		}

		delay := a.backoff(attempt)
		a.log.Warn("augmentation attempt failed, retrying",
			zap.String("provider", provider),
			zap.Int("attempt", attempt),
			zap.Duration("retry_in", delay),
			zap.Error(err),
		)
		if err := sleep(ctx, delay); err != nil {
			return models.AugmentedResult{}, fmt.Errorf("augmentation cancelled: %w", err)
		}
	}

	return models.AugmentedResult{}, fmt.Errorf("augmentation failed: %w", lastErr)
}

func (a *augmenter) attempt(ctx context.Context, req LLMRequest) (models.AugmentedResult, error) {
	attemptCtx := ctx
	if a.cfg.AttemptTimeout > 0 {
		var cancel context.CancelFunc
		attemptCtx, cancel = context.WithTimeout(ctx, a.cfg.AttemptTimeout)
		defer cancel()
	}

	raw, err := a.provider.Complete(attemptCtx, req)
	if err != nil {
		return models.AugmentedResult{}, err
	}

	a.log.Debug("augmentation reply",
		zap.Int("reply_length", utf8.RuneCountInString(raw)),
		zap.String("reply_preview", logger.TruncateForLog(raw, maxReplyPreview)),
	)

	return parseAugmentationReply(raw)
}

// backoff doubles from InitialDelay and caps at MaxDelay.
func (a *augmenter) backoff(attempt int) time.Duration {
	delay := a.cfg.InitialDelay
	for i := 1; i < attempt; i++ {
		delay *= 2
		if delay >= a.cfg.MaxDelay {
			return a.cfg.MaxDelay
		}
	}
	return delay
}

type augmentationReply struct {
	Score   float64 `json:"score" jsonschema:"description=Overall fit from 0 to 100"`
	Summary string  `json:"summary" jsonschema:"description=Three to five sentences on strengths and gaps"`
}

func parseAugmentationReply(raw string) (models.AugmentedResult, error) {
	var data map[string]any
	if err := json.Unmarshal([]byte(extractReplyJSON(raw)), &data); err != nil {
		return models.AugmentedResult{}, fmt.Errorf("%w: %v", ErrMalformedReply, err)
	}

	score := coerceFloat(data["score"])
	if math.IsNaN(score) || math.IsInf(score, 0) {
		return models.AugmentedResult{}, fmt.Errorf("%w: score is not a number", ErrMalformedReply)
	}

	summary, ok := data["summary"].(string)
	if !ok || strings.TrimSpace(summary) == "" {
		return models.AugmentedResult{}, fmt.Errorf("%w: summary missing", ErrMalformedReply)
	}

	return models.AugmentedResult{
		Score:   clampScore(score),
		Summary: strings.TrimSpace(summary),
	}, nil
}

func extractReplyJSON(raw string) string {
	raw = strings.TrimSpace(raw)
	if strings.HasPrefix(raw, "```") {
		raw = strings.TrimPrefix(raw, "```json")
		raw = strings.TrimPrefix(raw, "```")
		if idx := strings.LastIndex(raw, "```"); idx != -1 {
			raw = raw[:idx]
		}
	}

	start := strings.Index(raw, "{")
	end := strings.LastIndex(raw, "}")
	if start != -1 && end > start {
		return raw[start : end+1]
	}
	return strings.TrimSpace(raw)
}

func coerceFloat(v any) float64 {
	switch val := v.(type) {
	case float64:
		return val
	case int:
		return float64(val)
	case string:
		trimmed := strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(val), "%"))
		if trimmed == "" {
			return math.NaN()
		}
		f, err := strconv.ParseFloat(trimmed, 64)
		if err != nil {
			return math.NaN()
		}
		return f
	default:
		return math.NaN()
	}
}

// TruncateHeadTail bounds s to limit runes plus a marker line, keeping its
// beginning and end.
func TruncateHeadTail(s string, limit int) string {
	if limit <= 0 || utf8.RuneCountInString(s) <= limit {
		return s
	}

	runes := []rune(s)
	head := limit * 2 / 3
	tail := limit - head
	omitted := len(runes) - head - tail

	var b strings.Builder
	b.WriteString(string(runes[:head]))
	fmt.Fprintf(&b, "\n[... %d characters omitted ...]\n", omitted)
	b.WriteString(string(runes[len(runes)-tail:]))
	return b.String()
}

package services

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"alfredoptarigan/resume-screener/internal/models"
)

// stubExtractor returns fixed text so orchestration can be tested without
// real documents.
type stubExtractor struct {
	text  models.ExtractedText
	err   error
	calls int
}

func (s *stubExtractor) Extract(models.ResumeDocument) (models.ExtractedText, error) {
	s.calls++
	return s.text, s.err
}

type countingScorer struct {
	inner BaselineScorer
	calls int
	seen  []string
}

func (c *countingScorer) Score(text models.ExtractedText, profile models.RoleProfile) models.BaselineResult {
	c.calls++
	c.seen = append(c.seen, text.Text())
	return c.inner.Score(text, profile)
}

type panickingScorer struct{}

func (panickingScorer) Score(models.ExtractedText, models.RoleProfile) models.BaselineResult {
	panic("boom")
}

type recordedOutcome struct {
	roleID  string
	outcome *models.ScoringOutcome
	failure error
	ctxErr  error
}

type memoryRecorder struct {
	mu      sync.Mutex
	records []recordedOutcome
}

func (m *memoryRecorder) RecordOutcome(ctx context.Context, roleID string, outcome *models.ScoringOutcome, failure error) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.records = append(m.records, recordedOutcome{roleID: roleID, outcome: outcome, failure: failure, ctxErr: ctx.Err()})
	return nil
}

var platformProfile = models.RoleProfile{
	RoleID:          "platform-engineer",
	Title:           "Platform Engineer",
	RequiredSkills:  []string{"Python", "AWS"},
	PreferredSkills: []string{"Docker"},
}

type orchestratorFixture struct {
	extractor *stubExtractor
	scorer    *countingScorer
	provider  *fakeProvider
	recorder  *memoryRecorder
	logs      *observer.ObservedLogs
	orch      ScoringOrchestrator
}

func newOrchestratorFixture(t *testing.T, text string, replies ...providerReply) *orchestratorFixture {
	t.Helper()
	noSleep(t)

	core, logs := observer.New(zap.DebugLevel)
	f := &orchestratorFixture{
		extractor: &stubExtractor{text: textOf(text)},
		scorer:    &countingScorer{inner: NewBaselineScorer()},
		provider:  &fakeProvider{replies: replies},
		recorder:  &memoryRecorder{},
		logs:      logs,
	}
	log := zap.New(core)
	aug := NewAugmenter(f.provider, nil, AugmenterConfig{MaxAttempts: 3, MaxChars: 2000}, log)
	f.orch = NewScoringOrchestrator(
		f.extractor,
		staticCatalog{platformProfile.RoleID: platformProfile},
		f.scorer,
		aug,
		OrchestratorConfig{AugmentTimeout: time.Second},
		log,
		WithRecorder(f.recorder),
	)
	return f
}

var pdfDoc = models.ResumeDocument{Data: []byte("%PDF-fake"), MediaType: models.MediaTypePDF}

func TestEvaluate_CompletesWithBothScores(t *testing.T) {
	f := newOrchestratorFixture(t, "Python, Docker, Kubernetes",
		providerReply{text: `{"score": 58, "summary": "Good containers background, no AWS."}`})

	out, err := f.orch.Evaluate(context.Background(), pdfDoc, "platform-engineer")

	require.NoError(t, err)
	assert.Equal(t, 46.67, out.ScoreWithoutChatGPT)
	assert.Equal(t, 58.0, out.ScoreWithChatGPT)
	assert.Equal(t, "Good containers background, no AWS.", out.Summary)
	assert.Equal(t, []string{"AWS"}, out.MissingSkills)
	assert.False(t, out.Degraded)

	require.Len(t, f.recorder.records, 1)
	assert.Equal(t, "platform-engineer", f.recorder.records[0].roleID)
	assert.NoError(t, f.recorder.records[0].failure)
	assert.Equal(t, out, *f.recorder.records[0].outcome)
}

func TestEvaluate_DegradesWhenAugmentationFails(t *testing.T) {
	f := newOrchestratorFixture(t, "Python, Docker",
		providerReply{err: errors.New("503 service unavailable")},
		providerReply{text: "not json"},
		providerReply{err: errors.New("timeout")},
	)

	out, err := f.orch.Evaluate(context.Background(), pdfDoc, "platform-engineer")

	require.NoError(t, err)
	assert.Equal(t, 3, f.provider.calls())
	assert.True(t, out.Degraded)
	assert.Equal(t, out.ScoreWithoutChatGPT, out.ScoreWithChatGPT)
	assert.Equal(t, FallbackSummary, out.Summary)
	assert.Equal(t, 1, f.logs.FilterMessage("augmentation unavailable, using baseline").Len())
}

func TestEvaluate_DegradesWithoutAugmenter(t *testing.T) {
	orch := NewScoringOrchestrator(
		&stubExtractor{text: textOf("Python AWS")},
		staticCatalog{platformProfile.RoleID: platformProfile},
		NewBaselineScorer(),
		nil,
		OrchestratorConfig{},
		nil,
	)

	out, err := orch.Evaluate(context.Background(), pdfDoc, "platform-engineer")

	require.NoError(t, err)
	assert.True(t, out.Degraded)
	assert.Equal(t, out.ScoreWithoutChatGPT, out.ScoreWithChatGPT)
}

func TestEvaluate_AbandonsSlowAugmentation(t *testing.T) {
	f := newOrchestratorFixture(t, "Python")
	f.provider.block = true
	f.orch.(*scoringOrchestrator).cfg.AugmentTimeout = 20 * time.Millisecond

	start := time.Now()
	out, err := f.orch.Evaluate(context.Background(), pdfDoc, "platform-engineer")

	require.NoError(t, err)
	assert.True(t, out.Degraded)
	assert.Less(t, time.Since(start), time.Second)
}

func TestEvaluate_CallerCancellationStillDegrades(t *testing.T) {
	f := newOrchestratorFixture(t, "Python")
	f.provider.block = true

	ctx, cancel := context.WithCancel(context.Background())
	time.AfterFunc(20*time.Millisecond, cancel)

	out, err := f.orch.Evaluate(ctx, pdfDoc, "platform-engineer")

	require.NoError(t, err)
	assert.True(t, out.Degraded)
	require.Len(t, f.recorder.records, 1)
	assert.NoError(t, f.recorder.records[0].ctxErr)
}

func TestEvaluate_UnknownRole(t *testing.T) {
	f := newOrchestratorFixture(t, "Python")

	_, err := f.orch.Evaluate(context.Background(), pdfDoc, "staff-astronaut")

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnknownRole)
	var se *ScoringError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, StageReceived, se.Stage)
	assert.Equal(t, 0, f.scorer.calls)
	assert.Equal(t, 0, f.extractor.calls)
	assert.Equal(t, 0, f.provider.calls())

	require.Len(t, f.recorder.records, 1)
	assert.Nil(t, f.recorder.records[0].outcome)
	assert.ErrorIs(t, f.recorder.records[0].failure, ErrUnknownRole)
}

func TestEvaluate_ExtractionFailureIsFatal(t *testing.T) {
	f := newOrchestratorFixture(t, "")
	f.extractor.err = errors.Join(ErrExtractionFailed, errors.New("bad xref"))

	_, err := f.orch.Evaluate(context.Background(), pdfDoc, "platform-engineer")

	assert.ErrorIs(t, err, ErrExtractionFailed)
	assert.Equal(t, "EXTRACTION_FAILED", KindCode(err))
	assert.Equal(t, 0, f.scorer.calls)
	assert.Equal(t, 0, f.provider.calls())
}

func TestEvaluate_RecoversPanicsAsInternalError(t *testing.T) {
	orch := NewScoringOrchestrator(
		&stubExtractor{text: textOf("Python")},
		staticCatalog{platformProfile.RoleID: platformProfile},
		panickingScorer{},
		nil,
		OrchestratorConfig{},
		nil,
	)

	out, err := orch.Evaluate(context.Background(), pdfDoc, "platform-engineer")

	assert.ErrorIs(t, err, ErrInternal)
	assert.Equal(t, models.ScoringOutcome{}, out)
}

func TestEvaluate_LongResumeTruncatedOnlyForProvider(t *testing.T) {
	var b strings.Builder
	b.WriteString("FIRSTPAGE Python developer\n")
	for i := 0; i < 50*40; i++ {
		b.WriteString("Maintained internal tooling and reviewed pull requests for the team\n")
	}
	b.WriteString("LASTPAGE Docker AWS")
	full := b.String()

	f := newOrchestratorFixture(t, full, providerReply{text: `{"score": 90, "summary": "Experienced."}`})

	out, err := f.orch.Evaluate(context.Background(), pdfDoc, "platform-engineer")
	require.NoError(t, err)

	// Baseline saw the whole text, including skills that only appear at the end.
	require.Len(t, f.scorer.seen, 1)
	assert.Contains(t, f.scorer.seen[0], "LASTPAGE Docker AWS")
	assert.Empty(t, out.MissingSkills)
	assert.Equal(t, 100.0, out.ScoreWithoutChatGPT)

	prompt := f.provider.lastRequest().UserPrompt
	assert.Contains(t, prompt, "FIRSTPAGE")
	assert.Contains(t, prompt, "LASTPAGE")
	assert.Contains(t, prompt, "characters omitted")
	assert.Less(t, len(prompt), len(full))
}

func TestEvaluate_LogsNeverContainResumeText(t *testing.T) {
	secret := "SSN-123-45-6789 Python AWS Docker"
	f := newOrchestratorFixture(t, secret,
		providerReply{err: errors.New("upstream failure")},
		providerReply{text: `{"score": 70, "summary": "fine"}`},
	)

	_, err := f.orch.Evaluate(context.Background(), pdfDoc, "platform-engineer")
	require.NoError(t, err)

	_, err = f.orch.Evaluate(context.Background(), pdfDoc, "staff-astronaut")
	require.Error(t, err)

	require.NotZero(t, f.logs.Len())
	for _, entry := range f.logs.All() {
		assert.NotContains(t, entry.Message, "SSN-123")
		for k, v := range entry.ContextMap() {
			assert.NotContains(t, k, "SSN-123")
			if s, ok := v.(string); ok {
				assert.NotContains(t, s, "SSN-123")
			}
		}
	}
}

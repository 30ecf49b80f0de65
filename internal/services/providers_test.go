package services

import (
	"context"
	"errors"
	"testing"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/genai"

	"alfredoptarigan/resume-screener/internal/models"
)

type fakeChatCompleter struct {
	params openai.ChatCompletionNewParams
	resp   *openai.ChatCompletion
	err    error
}

func (f *fakeChatCompleter) New(ctx context.Context, body openai.ChatCompletionNewParams, opts ...option.RequestOption) (*openai.ChatCompletion, error) {
	f.params = body
	return f.resp, f.err
}

func TestOpenAIService_Complete(t *testing.T) {
	chat := &fakeChatCompleter{resp: &openai.ChatCompletion{
		Choices: []openai.ChatCompletionChoice{{
			Message: openai.ChatCompletionMessage{Content: ` {"score": 77, "summary": "ok"} `},
		}},
	}}
	svc := newOpenAIService(chat, "gpt-4o-mini")

	out, err := svc.Complete(context.Background(), LLMRequest{SystemPrompt: "sys", UserPrompt: "user", Temperature: 0.2})

	require.NoError(t, err)
	assert.Equal(t, `{"score": 77, "summary": "ok"}`, out)
	assert.Equal(t, "openai", svc.Name())
	assert.Len(t, chat.params.Messages, 2)
	require.NotNil(t, chat.params.ResponseFormat.OfJSONSchema)
	assert.Equal(t, "resume_assessment", chat.params.ResponseFormat.OfJSONSchema.JSONSchema.Name)
	assert.NotNil(t, chat.params.ResponseFormat.OfJSONSchema.JSONSchema.Schema)
}

func TestOpenAIService_EmptyChoices(t *testing.T) {
	svc := newOpenAIService(&fakeChatCompleter{resp: &openai.ChatCompletion{}}, "gpt-4o-mini")

	_, err := svc.Complete(context.Background(), LLMRequest{UserPrompt: "user"})
	assert.Error(t, err)
}

func TestOpenAIService_WrapsAPIErrors(t *testing.T) {
	svc := newOpenAIService(&fakeChatCompleter{err: openAIError(401)}, "gpt-4o-mini")

	_, err := svc.Complete(context.Background(), LLMRequest{UserPrompt: "user"})

	require.Error(t, err)
	assert.False(t, IsRetryable(err))
}

func TestNewOpenAIService_RequiresKey(t *testing.T) {
	_, err := NewOpenAIService(" ", "", "")
	assert.Error(t, err)
}

type fakeGeminiModels struct {
	config   *genai.GenerateContentConfig
	model    string
	resp     *genai.GenerateContentResponse
	embed    *genai.EmbedContentResponse
	err      error
	embedded string
}

func (f *fakeGeminiModels) GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
	f.model = model
	f.config = config
	return f.resp, f.err
}

func (f *fakeGeminiModels) EmbedContent(ctx context.Context, model string, contents []*genai.Content, config *genai.EmbedContentConfig) (*genai.EmbedContentResponse, error) {
	if len(contents) > 0 && len(contents[0].Parts) > 0 {
		f.embedded = contents[0].Parts[0].Text
	}
	return f.embed, f.err
}

func TestGeminiService_Complete(t *testing.T) {
	models := &fakeGeminiModels{resp: &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{
			Content: &genai.Content{Parts: []*genai.Part{{Text: `{"score": 61, "summary": "fine"}`}}},
		}},
	}}
	svc := &geminiService{models: models, modelName: "gemini-2.5-flash", embedModel: geminiEmbedModel}

	out, err := svc.Complete(context.Background(), LLMRequest{SystemPrompt: "be strict", UserPrompt: "résumé", Temperature: 0.1})

	require.NoError(t, err)
	assert.Equal(t, `{"score": 61, "summary": "fine"}`, out)
	assert.Equal(t, "gemini-2.5-flash", models.model)
	require.NotNil(t, models.config)
	assert.Equal(t, "application/json", models.config.ResponseMIMEType)
	require.NotNil(t, models.config.SystemInstruction)
	assert.Equal(t, "be strict", models.config.SystemInstruction.Parts[0].Text)
	assert.ElementsMatch(t, []string{"score", "summary"}, models.config.ResponseSchema.Required)
}

func TestGeminiService_CompleteErrors(t *testing.T) {
	apiErr := genai.APIError{Code: 429, Status: "RESOURCE_EXHAUSTED"}
	svc := &geminiService{models: &fakeGeminiModels{err: apiErr}, modelName: "m"}

	_, err := svc.Complete(context.Background(), LLMRequest{UserPrompt: "x"})
	require.Error(t, err)
	assert.True(t, IsRetryable(err))

	empty := &geminiService{models: &fakeGeminiModels{resp: &genai.GenerateContentResponse{}}, modelName: "m"}
	_, err = empty.Complete(context.Background(), LLMRequest{UserPrompt: "x"})
	assert.Error(t, err)
}

func TestGeminiService_GenerateEmbedding(t *testing.T) {
	models := &fakeGeminiModels{embed: &genai.EmbedContentResponse{
		Embeddings: []*genai.ContentEmbedding{{Values: []float32{0.1, 0.2}}},
	}}
	svc := &geminiService{models: models, embedModel: geminiEmbedModel}

	vec, err := svc.GenerateEmbedding(context.Background(), "query")

	require.NoError(t, err)
	assert.Equal(t, []float32{0.1, 0.2}, vec)
	assert.Equal(t, "query", models.embedded)

	svc.models = &fakeGeminiModels{embed: &genai.EmbedContentResponse{}}
	_, err = svc.GenerateEmbedding(context.Background(), "query")
	assert.Error(t, err)

	svc.models = &fakeGeminiModels{err: errors.New("quota")}
	_, err = svc.GenerateEmbedding(context.Background(), "query")
	assert.Error(t, err)
}

type fakeEmbedder struct {
	query string
	err   error
}

func (f *fakeEmbedder) GenerateEmbedding(ctx context.Context, text string) ([]float32, error) {
	f.query = text
	return []float32{1, 0}, f.err
}

type fakeIndex struct {
	roleID  string
	limit   int
	results []SearchResult
}

func (f *fakeIndex) InitCollection(context.Context) error { return nil }
func (f *fakeIndex) UpsertChunk(context.Context, string, string, string, []float32) error {
	return nil
}
func (f *fakeIndex) DeleteRole(context.Context, string) error { return nil }
func (f *fakeIndex) SearchSimilar(ctx context.Context, q []float32, roleID string, limit int) ([]SearchResult, error) {
	f.roleID = roleID
	f.limit = limit
	return f.results, nil
}

func TestRoleContextRetriever(t *testing.T) {
	emb := &fakeEmbedder{}
	idx := &fakeIndex{results: []SearchResult{{Score: 0.9, Text: "Owns the billing platform."}}}
	r := NewRoleContextRetriever(emb, idx, 0)

	got, err := r.RoleContext(context.Background(), testProfile)

	require.NoError(t, err)
	assert.Contains(t, got, "Owns the billing platform.")
	assert.Equal(t, "backend-engineer", idx.roleID)
	assert.Equal(t, 3, idx.limit)
	assert.Contains(t, emb.query, "Backend Engineer")

	emb.err = errors.New("embedding down")
	_, err = r.RoleContext(context.Background(), testProfile)
	assert.Error(t, err)
}

func TestAugment_RoleContextFailureIsNotFatal(t *testing.T) {
	noSleep(t)
	p := &fakeProvider{replies: []providerReply{{text: `{"score": 50, "summary": "ok"}`}}}
	r := NewRoleContextRetriever(&fakeEmbedder{err: errors.New("down")}, &fakeIndex{}, 3)

	got, err := NewAugmenter(p, r, AugmenterConfig{}, nil).Augment(context.Background(), textOf("Go"), testProfile, models.BaselineResult{})

	require.NoError(t, err)
	assert.Equal(t, 50.0, got.Score)
	assert.NotContains(t, p.lastRequest().UserPrompt, "ROLE REFERENCE MATERIAL")
}

package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/invopop/jsonschema"
	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

const defaultOpenAIModel = "gpt-4o-mini"

// chatCompleter is the subset of openai's chat completion service used here.
type chatCompleter interface {
	New(ctx context.Context, body openai.ChatCompletionNewParams, opts ...option.RequestOption) (*openai.ChatCompletion, error)
}

type openAIService struct {
	chat   chatCompleter
	model  string
	schema any
}

func NewOpenAIService(apiKey, baseURL, model string) (LLMProvider, error) {
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return nil, errors.New("openai api key is required")
	}

	opts := []option.RequestOption{
		option.WithAPIKey(apiKey),
		// Retries are owned by the augmenter so attempts stay bounded.
		option.WithMaxRetries(0),
	}
	if baseURL != "" {
		opts = append(opts, option.WithBaseURL(baseURL))
	}

	if model = strings.TrimSpace(model); model == "" {
		model = defaultOpenAIModel
	}

	client := openai.NewClient(opts...)
	return newOpenAIService(&client.Chat.Completions, model), nil
}

func newOpenAIService(chat chatCompleter, model string) *openAIService {
	return &openAIService{
		chat:   chat,
		model:  model,
		schema: generateSchema[augmentationReply](),
	}
}

func (o *openAIService) Name() string {
	return "openai"
}

// Complete implements LLMProvider.
func (o *openAIService) Complete(ctx context.Context, req LLMRequest) (string, error) {
	messages := []openai.ChatCompletionMessageParamUnion{}
	if strings.TrimSpace(req.SystemPrompt) != "" {
		messages = append(messages, openai.SystemMessage(req.SystemPrompt))
	}
	messages = append(messages, openai.UserMessage(req.UserPrompt))

	params := openai.ChatCompletionNewParams{
		Model:       o.model,
		Messages:    messages,
		MaxTokens:   openai.Int(1024),
		Temperature: openai.Float(float64(req.Temperature)),
		ResponseFormat: openai.ChatCompletionNewParamsResponseFormatUnion{
			OfJSONSchema: &openai.ResponseFormatJSONSchemaParam{
				JSONSchema: openai.ResponseFormatJSONSchemaJSONSchemaParam{
					Name:        "resume_assessment",
					Description: openai.String("Score and summary for a résumé against a job role"),
					Schema:      o.schema,
					Strict:      openai.Bool(true),
				},
			},
		},
	}

	resp, err := o.chat.New(ctx, params)
	if err != nil {
		return "", fmt.Errorf("openai chat: %w", err)
	}

	if resp == nil || len(resp.Choices) == 0 {
		return "", fmt.Errorf("no choices in response")
	}

	content := strings.TrimSpace(resp.Choices[0].Message.Content)
	if content == "" {
		return "", fmt.Errorf("empty message content")
	}

	return content, nil
}

func generateSchema[T any]() any {
	reflector := jsonschema.Reflector{
		AllowAdditionalProperties: false,
		DoNotReference:            true,
	}
	var v T
	return reflector.Reflect(v)
}

package services

import (
	"context"
	"errors"
	"net/http"

	"github.com/openai/openai-go"
	"google.golang.org/genai"
)

// LLMProvider is the narrow request/response contract the engine needs from a
// language model vendor.
type LLMProvider interface {
	Complete(ctx context.Context, req LLMRequest) (string, error)
	Name() string
}

type LLMRequest struct {
	SystemPrompt string
	UserPrompt   string
	Temperature  float32
}

// Embedder turns text into a vector for role reference retrieval.
type Embedder interface {
	GenerateEmbedding(ctx context.Context, text string) ([]float32, error)
}

// IsRetryable reports whether a provider error may succeed on another attempt.
// Caller cancellation and client-side API errors (bad key, bad request) are
// final; network failures, timeouts, throttling and 5xx responses are not.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.Canceled) {
		return false
	}

	var oaiErr *openai.Error
	if errors.As(err, &oaiErr) {
		return retryableStatus(oaiErr.StatusCode)
	}

	var gErr genai.APIError
	if errors.As(err, &gErr) {
		return retryableStatus(gErr.Code)
	}
	var gErrPtr *genai.APIError
	if errors.As(err, &gErrPtr) && gErrPtr != nil {
		return retryableStatus(gErrPtr.Code)
	}

	return true
}

func retryableStatus(code int) bool {
	switch {
	case code == http.StatusRequestTimeout, code == http.StatusTooManyRequests:
		return true
	case code >= 500:
		return true
	case code >= 400:
		return false
	default:
		return true
	}
}

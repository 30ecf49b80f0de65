package services

import (
	"context"
	"fmt"

	"alfredoptarigan/resume-screener/internal/models"
)

// RoleContextRetriever supplies optional reference material about a role to
// the augmentation prompt.
type RoleContextRetriever interface {
	RoleContext(ctx context.Context, profile models.RoleProfile) (string, error)
}

type vectorRoleContext struct {
	embedder Embedder
	index    RoleReferenceIndex
	prompts  *PromptBuilder
	limit    int
}

func NewRoleContextRetriever(embedder Embedder, index RoleReferenceIndex, limit int) RoleContextRetriever {
	if limit <= 0 {
		limit = 3
	}
	return &vectorRoleContext{
		embedder: embedder,
		index:    index,
		prompts:  NewPromptBuilder(),
		limit:    limit,
	}
}

// RoleContext implements RoleContextRetriever.
func (r *vectorRoleContext) RoleContext(ctx context.Context, profile models.RoleProfile) (string, error) {
	query := r.prompts.BuildRetrievalQuery(profile)

	embedding, err := r.embedder.GenerateEmbedding(ctx, query)
	if err != nil {
		return "", fmt.Errorf("embed role query: %w", err)
	}

	results, err := r.index.SearchSimilar(ctx, embedding, profile.RoleID, r.limit)
	if err != nil {
		return "", fmt.Errorf("search role references: %w", err)
	}

	return FormatRAGContext(results), nil
}

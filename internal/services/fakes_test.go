package services

import (
	"context"
	"sync"

	"alfredoptarigan/resume-screener/internal/models"
)

type providerReply struct {
	text string
	err  error
}

// fakeProvider replays scripted replies and records every request.
type fakeProvider struct {
	mu       sync.Mutex
	replies  []providerReply
	requests []LLMRequest
	block    bool
}

func (f *fakeProvider) Name() string { return "fake" }

func (f *fakeProvider) Complete(ctx context.Context, req LLMRequest) (string, error) {
	f.mu.Lock()
	f.requests = append(f.requests, req)
	n := len(f.requests)
	block := f.block
	f.mu.Unlock()

	if block {
		<-ctx.Done()
		return "", ctx.Err()
	}

	if n > len(f.replies) {
		return "", context.DeadlineExceeded
	}
	r := f.replies[n-1]
	return r.text, r.err
}

func (f *fakeProvider) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.requests)
}

func (f *fakeProvider) lastRequest() LLMRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.requests[len(f.requests)-1]
}

type staticCatalog map[string]models.RoleProfile

func (c staticCatalog) Lookup(id string) (models.RoleProfile, error) {
	p, ok := c[id]
	if !ok {
		return models.RoleProfile{}, ErrUnknownRole
	}
	return p, nil
}

func (c staticCatalog) ListRoles() []string {
	var ids []string
	for id := range c {
		ids = append(ids, id)
	}
	return ids
}

func (c staticCatalog) List() []models.RoleSummary {
	var out []models.RoleSummary
	for id, p := range c {
		out = append(out, models.RoleSummary{ID: id, Title: p.Title})
	}
	return out
}

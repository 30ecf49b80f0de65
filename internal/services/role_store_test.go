package services

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"alfredoptarigan/resume-screener/internal/models"
)

type loaderFunc func(ctx context.Context) ([]models.RoleProfile, error)

func (f loaderFunc) LoadRoles(ctx context.Context) ([]models.RoleProfile, error) { return f(ctx) }

func TestRoleStore_LookupAndList(t *testing.T) {
	store := NewRoleStore(nil, nil)
	require.NoError(t, store.Replace([]models.RoleProfile{
		{RoleID: "zeta", Title: "Zeta"},
		{RoleID: " alpha ", Title: "Alpha", RequiredSkills: []string{"Go"}},
	}))

	assert.Equal(t, []string{"alpha", "zeta"}, store.ListRoles())
	assert.Equal(t, []models.RoleSummary{{ID: "alpha", Title: "Alpha"}, {ID: "zeta", Title: "Zeta"}}, store.List())

	p, err := store.Lookup("alpha")
	require.NoError(t, err)
	assert.Equal(t, []string{"Go"}, p.RequiredSkills)

	_, err = store.Lookup("staff-astronaut")
	assert.ErrorIs(t, err, ErrUnknownRole)
}

func TestRoleStore_LookupReturnsCopy(t *testing.T) {
	store := NewRoleStore(nil, nil)
	require.NoError(t, store.Replace([]models.RoleProfile{
		{RoleID: "a", RequiredSkills: []string{"Go"}, KeywordWeights: map[string]float64{"go": 2}},
	}))

	p, err := store.Lookup("a")
	require.NoError(t, err)
	p.RequiredSkills[0] = "Rust"
	p.KeywordWeights["go"] = 100

	again, err := store.Lookup("a")
	require.NoError(t, err)
	assert.Equal(t, "Go", again.RequiredSkills[0])
	assert.Equal(t, 2.0, again.KeywordWeights["go"])
}

func TestRoleStore_ReplaceRejectsInvalidCatalog(t *testing.T) {
	negative := -1.0
	tests := []struct {
		name     string
		profiles []models.RoleProfile
	}{
		{"duplicate id", []models.RoleProfile{{RoleID: "a"}, {RoleID: "a "}}},
		{"empty id", []models.RoleProfile{{RoleID: " "}}},
		{"negative weight", []models.RoleProfile{{RoleID: "a", KeywordWeights: map[string]float64{"go": -2}}}},
		{"negative experience", []models.RoleProfile{{RoleID: "a", MinExperienceYears: &negative}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := NewRoleStore(nil, nil)
			require.NoError(t, store.Replace([]models.RoleProfile{{RoleID: "keep"}}))

			assert.Error(t, store.Replace(tt.profiles))
			assert.Equal(t, []string{"keep"}, store.ListRoles())
		})
	}
}

func TestRoleStore_FailedReloadKeepsCatalog(t *testing.T) {
	fail := false
	loader := loaderFunc(func(context.Context) ([]models.RoleProfile, error) {
		if fail {
			return nil, errors.New("source unavailable")
		}
		return []models.RoleProfile{{RoleID: "backend"}}, nil
	})

	store := NewRoleStore(loader, nil)
	require.NoError(t, store.Reload(context.Background()))

	fail = true
	assert.Error(t, store.Reload(context.Background()))
	assert.Equal(t, []string{"backend"}, store.ListRoles())
}

func TestRoleStore_ConcurrentReadsDuringSwap(t *testing.T) {
	store := NewRoleStore(nil, nil)
	v1 := []models.RoleProfile{{RoleID: "a", Title: "v1"}, {RoleID: "b", Title: "v1"}}
	v2 := []models.RoleProfile{{RoleID: "a", Title: "v2"}, {RoleID: "b", Title: "v2"}}
	require.NoError(t, store.Replace(v1))

	var wg sync.WaitGroup
	stop := make(chan struct{})
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				select {
				case <-stop:
					return
				default:
				}
				list := store.List()
				if assert.Len(t, list, 2) {
					assert.Equal(t, list[0].Title, list[1].Title)
				}
			}
		}()
	}

	for i := 0; i < 200; i++ {
		if i%2 == 0 {
			require.NoError(t, store.Replace(v2))
		} else {
			require.NoError(t, store.Replace(v1))
		}
	}
	close(stop)
	wg.Wait()
}

func TestRoleStore_RunRefreshes(t *testing.T) {
	var mu sync.Mutex
	title := "before"
	loader := loaderFunc(func(context.Context) ([]models.RoleProfile, error) {
		mu.Lock()
		defer mu.Unlock()
		return []models.RoleProfile{{RoleID: "r", Title: title}}, nil
	})

	store := NewRoleStore(loader, nil)
	require.NoError(t, store.Reload(context.Background()))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go store.Run(ctx, 5*time.Millisecond)

	mu.Lock()
	title = "after"
	mu.Unlock()

	assert.Eventually(t, func() bool {
		p, err := store.Lookup("r")
		return err == nil && p.Title == "after"
	}, time.Second, 5*time.Millisecond)
}

func TestYAMLRoleLoader(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "backend-engineer.yaml"), `
role_id: backend-engineer
title: Backend Engineer
min_experience_years: 3
required_skills: [Go, PostgreSQL]
preferred_skills:
  - Kubernetes
keyword_weights:
  Go: 3
synonyms:
  Go: [Golang]
`)
	writeFile(t, filepath.Join(dir, "data.yml"), `
title: Data Scientist
required_skills: [Python]
`)
	writeFile(t, filepath.Join(dir, "notes.txt"), "ignored")

	profiles, err := NewYAMLRoleLoader(dir).LoadRoles(context.Background())
	require.NoError(t, err)
	require.Len(t, profiles, 2)

	be := profiles[0]
	assert.Equal(t, "backend-engineer", be.RoleID)
	assert.Equal(t, []string{"Go", "PostgreSQL"}, be.RequiredSkills)
	assert.Equal(t, map[string]float64{"Go": 3}, be.KeywordWeights)
	assert.Equal(t, map[string][]string{"Go": {"Golang"}}, be.Synonyms)
	require.NotNil(t, be.MinExperienceYears)
	assert.Equal(t, 3.0, *be.MinExperienceYears)

	assert.Equal(t, "data", profiles[1].RoleID)
	assert.Equal(t, "Data Scientist", profiles[1].Title)
}

func TestYAMLRoleLoader_BadFile(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "broken.yaml"), "required_skills: [Go\n")

	_, err := NewYAMLRoleLoader(dir).LoadRoles(context.Background())
	assert.Error(t, err)
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

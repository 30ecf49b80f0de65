package services

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strings"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"alfredoptarigan/resume-screener/internal/metrics"
	"alfredoptarigan/resume-screener/internal/models"
)

// RoleCatalog is the read side of the role store used during scoring.
type RoleCatalog interface {
	Lookup(roleID string) (models.RoleProfile, error)
	ListRoles() []string
	List() []models.RoleSummary
}

// RoleLoader produces a full set of role profiles from some source.
type RoleLoader interface {
	LoadRoles(ctx context.Context) ([]models.RoleProfile, error)
}

type roleSnapshot struct {
	byID map[string]models.RoleProfile
	list []models.RoleSummary
}

// RoleStore holds an immutable catalog snapshot that is replaced as a whole.
// Readers never observe a partially loaded catalog.
type RoleStore struct {
	current atomic.Pointer[roleSnapshot]
	loader  RoleLoader
	log     *zap.Logger
}

func NewRoleStore(loader RoleLoader, log *zap.Logger) *RoleStore {
	if log == nil {
		log = zap.NewNop()
	}
	s := &RoleStore{loader: loader, log: log}
	s.current.Store(&roleSnapshot{byID: map[string]models.RoleProfile{}})
	return s
}

// Lookup implements RoleCatalog. The returned profile is a copy.
func (s *RoleStore) Lookup(roleID string) (models.RoleProfile, error) {
	id := strings.TrimSpace(roleID)
	profile, ok := s.current.Load().byID[id]
	if !ok {
		return models.RoleProfile{}, fmt.Errorf("%w: %q", ErrUnknownRole, id)
	}
	return cloneProfile(profile), nil
}

// List implements RoleCatalog, ordered by role id.
func (s *RoleStore) List() []models.RoleSummary {
	list := s.current.Load().list
	out := make([]models.RoleSummary, len(list))
	copy(out, list)
	return out
}

// ListRoles implements RoleCatalog.
func (s *RoleStore) ListRoles() []string {
	list := s.current.Load().list
	ids := make([]string, len(list))
	for i, r := range list {
		ids[i] = r.ID
	}
	return ids
}

// Replace validates profiles and swaps them in as the new catalog. On error
// the previous catalog stays active.
func (s *RoleStore) Replace(profiles []models.RoleProfile) error {
	if err := ValidateProfiles(profiles); err != nil {
		return err
	}

	snap := &roleSnapshot{
		byID: make(map[string]models.RoleProfile, len(profiles)),
		list: make([]models.RoleSummary, 0, len(profiles)),
	}
	for _, p := range profiles {
		p.RoleID = strings.TrimSpace(p.RoleID)
		snap.byID[p.RoleID] = cloneProfile(p)
		snap.list = append(snap.list, models.RoleSummary{ID: p.RoleID, Title: p.Title})
	}
	sort.Slice(snap.list, func(i, j int) bool { return snap.list[i].ID < snap.list[j].ID })

	s.current.Store(snap)
	metrics.RoleCatalogSize.Set(float64(len(snap.list)))
	return nil
}

// Reload pulls a fresh catalog from the loader.
func (s *RoleStore) Reload(ctx context.Context) error {
	if s.loader == nil {
		return fmt.Errorf("role store has no loader")
	}

	profiles, err := s.loader.LoadRoles(ctx)
	if err != nil {
		return fmt.Errorf("load roles: %w", err)
	}

	if err := s.Replace(profiles); err != nil {
		return err
	}

	s.log.Info("role catalog loaded", zap.Int("roles", len(profiles)))
	return nil
}

// Run reloads the catalog every interval until ctx is done. A failed reload
// is logged and the current catalog is kept.
func (s *RoleStore) Run(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		return
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := s.Reload(ctx); err != nil {
				s.log.Warn("role catalog refresh failed, keeping current catalog", zap.Error(err))
			}
		}
	}
}

// ValidateProfiles checks the catalog invariants: every role id is present and
// unique, and no keyword weight is negative.
func ValidateProfiles(profiles []models.RoleProfile) error {
	seen := make(map[string]struct{}, len(profiles))
	for i, p := range profiles {
		id := strings.TrimSpace(p.RoleID)
		if id == "" {
			return fmt.Errorf("role profile #%d has empty role_id", i)
		}
		if _, dup := seen[id]; dup {
			return fmt.Errorf("duplicate role_id %q", id)
		}
		seen[id] = struct{}{}

		for kw, w := range p.KeywordWeights {
			if w < 0 || math.IsNaN(w) || math.IsInf(w, 0) {
				return fmt.Errorf("role %q: invalid weight %v for keyword %q", id, w, kw)
			}
		}
		if p.MinExperienceYears != nil && *p.MinExperienceYears < 0 {
			return fmt.Errorf("role %q: negative min_experience_years", id)
		}
	}
	return nil
}

func cloneProfile(p models.RoleProfile) models.RoleProfile {
	out := p
	out.RequiredSkills = append([]string(nil), p.RequiredSkills...)
	out.PreferredSkills = append([]string(nil), p.PreferredSkills...)
	if p.KeywordWeights != nil {
		out.KeywordWeights = make(map[string]float64, len(p.KeywordWeights))
		for k, v := range p.KeywordWeights {
			out.KeywordWeights[k] = v
		}
	}
	if p.Synonyms != nil {
		out.Synonyms = make(map[string][]string, len(p.Synonyms))
		for k, v := range p.Synonyms {
			out.Synonyms[k] = append([]string(nil), v...)
		}
	}
	if p.MinExperienceYears != nil {
		v := *p.MinExperienceYears
		out.MinExperienceYears = &v
	}
	return out
}

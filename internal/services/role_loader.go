package services

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"go.yaml.in/yaml/v4"

	"alfredoptarigan/resume-screener/internal/models"
	"alfredoptarigan/resume-screener/internal/repositories"
)

type yamlRoleLoader struct {
	dir string
}

// NewYAMLRoleLoader reads one role profile per *.yaml or *.yml file in dir.
// A file without role_id takes its name from the file.
func NewYAMLRoleLoader(dir string) RoleLoader {
	return &yamlRoleLoader{dir: dir}
}

// LoadRoles implements RoleLoader.
func (l *yamlRoleLoader) LoadRoles(ctx context.Context) ([]models.RoleProfile, error) {
	entries, err := os.ReadDir(l.dir)
	if err != nil {
		return nil, fmt.Errorf("read role directory: %w", err)
	}

	var files []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		switch strings.ToLower(filepath.Ext(e.Name())) {
		case ".yaml", ".yml":
			files = append(files, e.Name())
		}
	}
	sort.Strings(files)

	profiles := make([]models.RoleProfile, 0, len(files))
	for _, name := range files {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		profile, err := LoadRoleFile(filepath.Join(l.dir, name))
		if err != nil {
			return nil, err
		}
		profiles = append(profiles, profile)
	}

	return profiles, nil
}

// LoadRoleFile parses a single role profile document.
func LoadRoleFile(path string) (models.RoleProfile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return models.RoleProfile{}, fmt.Errorf("read role file %s: %w", path, err)
	}

	var profile models.RoleProfile
	if err := yaml.Unmarshal(data, &profile); err != nil {
		return models.RoleProfile{}, fmt.Errorf("parse role file %s: %w", path, err)
	}

	if strings.TrimSpace(profile.RoleID) == "" {
		base := filepath.Base(path)
		profile.RoleID = strings.TrimSuffix(base, filepath.Ext(base))
	}

	return profile, nil
}

type dbRoleLoader struct {
	repo repositories.RoleRepository
}

// NewDBRoleLoader reads the catalog from the role_profiles table.
func NewDBRoleLoader(repo repositories.RoleRepository) RoleLoader {
	return &dbRoleLoader{repo: repo}
}

// LoadRoles implements RoleLoader.
func (l *dbRoleLoader) LoadRoles(ctx context.Context) ([]models.RoleProfile, error) {
	profiles, err := l.repo.FindAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("query role profiles: %w", err)
	}
	return profiles, nil
}

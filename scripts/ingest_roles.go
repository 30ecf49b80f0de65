package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"alfredoptarigan/resume-screener/internal/config"
	"alfredoptarigan/resume-screener/internal/logger"
	"alfredoptarigan/resume-screener/internal/models"
	"alfredoptarigan/resume-screener/internal/repositories"
	"alfredoptarigan/resume-screener/internal/services"
)

// Loads role profiles from ROLE_DATA_DIR into the role_profiles table and,
// when QDRANT_ENABLED is set, indexes each role's reference material.
// Reference documents live in ROLE_DATA_DIR/reference/<role_id>/ as PDF or DOCX.
func main() {
	cfg := config.Load()

	log, err := logger.New(cfg.Logging.JSON, cfg.Logging.Debug)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to build logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	if err := ingest(context.Background(), cfg, log); err != nil {
		log.Fatal("ingestion failed", zap.Error(err))
	}
	log.Info("ingestion completed")
}

func ingest(ctx context.Context, cfg *config.Config, log *zap.Logger) error {
	profiles, err := services.NewYAMLRoleLoader(cfg.Roles.Dir).LoadRoles(ctx)
	if err != nil {
		return err
	}
	if err := services.ValidateProfiles(profiles); err != nil {
		return err
	}
	log.Info("role profiles loaded", zap.Int("count", len(profiles)), zap.String("dir", cfg.Roles.Dir))

	db, err := config.InitDatabase(cfg, log)
	if err != nil {
		return err
	}
	roleRepo := repositories.NewRoleRepository(db)
	for i := range profiles {
		if err := roleRepo.Upsert(ctx, &profiles[i]); err != nil {
			return err
		}
	}
	log.Info("role profiles stored")

	if !cfg.Qdrant.Enabled {
		log.Info("qdrant disabled, skipping reference indexing")
		return nil
	}

	gemini, err := services.NewGeminiService(ctx, cfg.LLM.GeminiAPIKey, cfg.LLM.GeminiModel)
	if err != nil {
		return err
	}
	index, err := services.NewQdrantService(cfg.Qdrant.URL, cfg.Qdrant.APIKey, cfg.Qdrant.Collection, log)
	if err != nil {
		return err
	}
	if err := index.InitCollection(ctx); err != nil {
		return err
	}

	chunker := services.NewTextChunker()
	extractor := services.NewTextExtractor()
	failed := 0

	for _, profile := range profiles {
		rlog := log.With(zap.String("role_id", profile.RoleID))

		if err := index.DeleteRole(ctx, profile.RoleID); err != nil {
			return err
		}

		sources := map[string]string{"profile": profileText(profile)}
		refDir := filepath.Join(cfg.Roles.Dir, "reference", profile.RoleID)
		docs, err := referenceDocuments(refDir, extractor)
		if err != nil {
			rlog.Warn("reference documents skipped", zap.Error(err))
		}
		for name, text := range docs {
			sources[name] = text
		}

		stored := 0
		for source, text := range sources {
			for _, chunk := range chunker.ChunkText(text, 1000, 200) {
				embedding, err := gemini.GenerateEmbedding(ctx, chunk)
				if err != nil {
					rlog.Warn("failed to embed chunk", zap.String("source", source), zap.Error(err))
					failed++
					continue
				}
				if err := index.UpsertChunk(ctx, profile.RoleID, source, chunk, embedding); err != nil {
					rlog.Warn("failed to store chunk", zap.String("source", source), zap.Error(err))
					failed++
					continue
				}
				stored++
			}
		}
		rlog.Info("role indexed", zap.Int("sources", len(sources)), zap.Int("chunks", stored))
	}

	if failed > 0 {
		return fmt.Errorf("%d chunks failed to index", failed)
	}
	return nil
}

func profileText(p models.RoleProfile) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s\n\n", p.Title)
	if p.Description != "" {
		fmt.Fprintf(&b, "%s\n\n", p.Description)
	}
	if len(p.RequiredSkills) > 0 {
		fmt.Fprintf(&b, "Required skills: %s.\n\n", strings.Join(p.RequiredSkills, ", "))
	}
	if len(p.PreferredSkills) > 0 {
		fmt.Fprintf(&b, "Preferred skills: %s.\n\n", strings.Join(p.PreferredSkills, ", "))
	}
	if p.Education != "" {
		fmt.Fprintf(&b, "Education: %s.\n", p.Education)
	}
	return b.String()
}

func referenceDocuments(dir string, extractor services.TextExtractor) (map[string]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	out := make(map[string]string)
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		path := filepath.Join(dir, e.Name())
		data, err := os.ReadFile(path)
		if err != nil {
			return out, err
		}
		text, err := extractor.Extract(models.ResumeDocument{
			Data:      data,
			MediaType: services.DetectMediaType(path, "", data),
		})
		if err != nil {
			continue
		}
		// Blank lines between segments keep the chunker's paragraph split.
		var parts []string
		for _, seg := range text.Segments {
			parts = append(parts, seg.Text)
		}
		out[e.Name()] = strings.Join(parts, "\n\n")
	}
	return out, nil
}

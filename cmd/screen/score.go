package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"alfredoptarigan/resume-screener/internal/app"
	"alfredoptarigan/resume-screener/internal/models"
	"alfredoptarigan/resume-screener/internal/services"
)

var scoreCmd = &cobra.Command{
	Use:   "score",
	Short: "Score a PDF or DOCX résumé against a job role",
	RunE:  runScore,
}

func init() {
	rootCmd.AddCommand(scoreCmd)

	scoreCmd.Flags().StringP("file", "f", "", "path to the résumé (.pdf or .docx)")
	scoreCmd.Flags().StringP("role", "r", "", "role id to score against")
	_ = scoreCmd.MarkFlagRequired("file")
	_ = scoreCmd.MarkFlagRequired("role")
}

func runScore(cmd *cobra.Command, _ []string) error {
	path, _ := cmd.Flags().GetString("file")
	roleID, _ := cmd.Flags().GetString("role")

	ctx := cmd.Context()
	cfg, log, roles, err := setup(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read résumé: %w", err)
	}

	orchestrator, err := app.NewOrchestrator(ctx, cfg, roles, log)
	if err != nil {
		return err
	}

	outcome, err := orchestrator.Evaluate(ctx, models.ResumeDocument{
		Data:      data,
		MediaType: services.DetectMediaType(path, "", data),
	}, roleID)
	if err != nil {
		return fmt.Errorf("%s: %w", services.KindCode(err), err)
	}

	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(outcome)
}

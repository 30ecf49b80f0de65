package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"alfredoptarigan/resume-screener/internal/app"
	"alfredoptarigan/resume-screener/internal/config"
	"alfredoptarigan/resume-screener/internal/logger"
	"alfredoptarigan/resume-screener/internal/services"
)

const appName = "screen"

var rootCmd = &cobra.Command{
	Use:           appName,
	Short:         "screen scores résumés against job role profiles",
	SilenceUsage:  true,
	SilenceErrors: false,
}

// Execute executes the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().BoolP("debug", "d", false, "verbose/debug output")
	rootCmd.PersistentFlags().BoolP("json", "j", false, "json format for logging")
	rootCmd.PersistentFlags().String("roles-dir", "", "directory with role profile YAML files (overrides ROLE_DATA_DIR)")

	_ = viper.BindPFlag("debug", rootCmd.PersistentFlags().Lookup("debug"))
	_ = viper.BindPFlag("json", rootCmd.PersistentFlags().Lookup("json"))
	_ = viper.BindPFlag("roles-dir", rootCmd.PersistentFlags().Lookup("roles-dir"))
}

// setup loads configuration and the role catalog. The CLI always reads roles
// from local YAML files.
func setup(ctx context.Context) (*config.Config, *zap.Logger, *services.RoleStore, error) {
	cfg := config.Load()
	cfg.Roles.DataSource = app.DataSourceLocal
	if dir := viper.GetString("roles-dir"); dir != "" {
		cfg.Roles.Dir = dir
	}

	log, err := logger.New(viper.GetBool("json"), viper.GetBool("debug"))
	if err != nil {
		return nil, nil, nil, fmt.Errorf("creating a logger: %w", err)
	}

	roles, err := app.NewRoleStore(ctx, cfg, nil, log.Named("roles"))
	if err != nil {
		return nil, nil, nil, err
	}

	return cfg, log, roles, nil
}

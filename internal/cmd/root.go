// Package cmd holds the cfptracker command line.
package cmd

import (
	"context"
	"fmt"
	"os"

	"anoa.com/cfptracker/internal/config"
	"anoa.com/cfptracker/pkg/database"
	"anoa.com/cfptracker/pkg/logger"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var rootCmd = &cobra.Command{
	Use:   "cfptracker",
	Short: "Conference talk proposal tracker",
	Long: `cfptracker tracks conference events, reusable talks and the proposals
linking them, scores events against a weighted rubric and notifies the team
about comments, status changes and approaching CFP deadlines.

Running without a subcommand starts the HTTP server.`,
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return serveCmd.RunE(cmd, args)
	},
}

// Execute runs the root command. It is called once from main.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.AddCommand(serveCmd, migrateCmd, scanCmd)
}

// runtime bundles what every subcommand needs.
type runtime struct {
	cfg   *config.Config
	log   *zap.Logger
	db    *gorm.DB
	redis *redis.Client
}

func setup(ctx context.Context) (*runtime, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	log, err := logger.New(cfg.AppEnv)
	if err != nil {
		return nil, fmt.Errorf("build logger: %w", err)
	}

	db, err := database.Connect(cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("connect database: %w", err)
	}

	rdb, err := database.ConnectRedis(ctx, cfg.RedisURL)
	if err != nil {
		log.Warn("redis unavailable, realtime push, rate limits and scan locking are disabled", zap.Error(err))
		rdb = nil
	}

	return &runtime{cfg: cfg, log: log, db: db, redis: rdb}, nil
}

func (r *runtime) close() {
	if r.redis != nil {
		_ = r.redis.Close()
	}
	if sqlDB, err := r.db.DB(); err == nil {
		_ = sqlDB.Close()
	}
	_ = r.log.Sync()
}

// adminCredentials returns the seed account outside production only.
func (r *runtime) adminCredentials() (string, string) {
	if r.cfg.IsProduction() {
		return "", ""
	}
	return r.cfg.AdminEmail, r.cfg.AdminPassword
}

package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"ffmpeg-cuda-api/internal/database"
	"ffmpeg-cuda-api/internal/logging"

	"github.com/spf13/cobra"
)

const (
	// Default timeout for database operations
	defaultTimeout = 30 * time.Second
	// Default database directory path
	defaultDatabaseDir = "/database"
)

// commandContext carries the settings shared by every subcommand.
type commandContext struct {
	databaseDir string
	now         func() time.Time
}

func (c *commandContext) databasePath() string {
	return filepath.Join(c.databaseDir, database.FileName)
}

// withDatabase opens the job history for the duration of fn. A missing
// database is an error; jobctl never creates one.
func (c *commandContext) withDatabase(cmd *cobra.Command, fn func(ctx context.Context, db *database.Database) error) error {
	path := c.databasePath()
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("no job history at %s (check --database-dir or DATABASE_DIR)", path)
		}
		return fmt.Errorf("cannot access job history: %w", err)
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), defaultTimeout)
	defer cancel()

	db, err := database.New(ctx, path)
	if err != nil {
		return fmt.Errorf("failed to open job history: %w", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "Warning: failed to close database: %v\n", err)
		}
	}()

	return fn(ctx, db)
}

func newRootCommand() *cobra.Command {
	cc := &commandContext{now: time.Now}

	rootCmd := &cobra.Command{
		Use:           "jobctl",
		Short:         "Inspect and maintain the FFmpeg CUDA API job history",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			// Database chatter goes to stderr; keep it quiet unless asked for
			if os.Getenv("LOG_LEVEL") == "" && os.Getenv("DEBUG") == "" {
				logging.SetLevel(logging.LevelWarn)
			}
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	databaseDir := os.Getenv("DATABASE_DIR")
	if databaseDir == "" {
		databaseDir = defaultDatabaseDir
	}
	rootCmd.PersistentFlags().StringVar(&cc.databaseDir, "database-dir", databaseDir, "Directory holding "+database.FileName)

	rootCmd.AddCommand(newListCommand(cc))
	rootCmd.AddCommand(newShowCommand(cc))
	rootCmd.AddCommand(newStatsCommand(cc))
	rootCmd.AddCommand(newPruneCommand(cc))

	return rootCmd
}

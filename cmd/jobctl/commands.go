package main

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"ffmpeg-cuda-api/internal/database"

	"github.com/spf13/cobra"
)

func newListCommand(cc *commandContext) *cobra.Command {
	var limit int
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List recent encode jobs, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if limit < 1 {
				return fmt.Errorf("--limit must be positive, got %d", limit)
			}

			return cc.withDatabase(cmd, func(ctx context.Context, db *database.Database) error {
				jobs, err := db.ListJobs(ctx, database.ClampLimit(limit))
				if err != nil {
					return err
				}

				if asJSON || !isTerminal(cmd.OutOrStdout()) {
					if jobs == nil {
						jobs = []database.Job{}
					}
					return writeJSON(cmd, jobs)
				}

				if len(jobs) == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), "No jobs recorded")
					return nil
				}
				fmt.Fprintln(cmd.OutOrStdout(), renderJobsTable(jobs, terminalWidth(cmd.OutOrStdout())))
				return nil
			})
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", database.DefaultListLimit,
		fmt.Sprintf("Number of jobs to show (max %d)", database.MaxListLimit))
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print JSON even on a terminal")

	return cmd
}

func newShowCommand(cc *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Print one job record as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return cc.withDatabase(cmd, func(ctx context.Context, db *database.Database) error {
				job, err := db.GetJob(ctx, args[0])
				if errors.Is(err, database.ErrJobNotFound) {
					return fmt.Errorf("job %s not found", args[0])
				}
				if err != nil {
					return err
				}
				return writeJSON(cmd, job)
			})
		},
	}
}

// statusCount is one row of the stats output.
type statusCount struct {
	Status string `json:"status"`
	Count  int64  `json:"count"`
}

type statsOutput struct {
	Statuses []statusCount `json:"statuses"`
	Total    int64         `json:"total"`
}

func newStatsCommand(cc *commandContext) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show job totals by status",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cc.withDatabase(cmd, func(ctx context.Context, db *database.Database) error {
				counts, err := db.CountByStatus(ctx)
				if err != nil {
					return err
				}

				out := summarize(counts)
				if asJSON || !isTerminal(cmd.OutOrStdout()) {
					return writeJSON(cmd, out)
				}
				fmt.Fprintln(cmd.OutOrStdout(), renderStatsTable(out))
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Print JSON even on a terminal")

	return cmd
}

// summarize orders statuses by name. success and error are always present.
func summarize(counts database.StatusCounts) statsOutput {
	merged := map[string]int64{
		database.StatusSuccess: 0,
		database.StatusError:   0,
	}
	for status, n := range counts {
		merged[status] += n
	}

	out := statsOutput{Statuses: make([]statusCount, 0, len(merged))}
	for status, n := range merged {
		out.Statuses = append(out.Statuses, statusCount{Status: status, Count: n})
		out.Total += n
	}
	sort.Slice(out.Statuses, func(i, j int) bool {
		return out.Statuses[i].Status < out.Statuses[j].Status
	})
	return out
}

func newPruneCommand(cc *commandContext) *cobra.Command {
	var olderThan time.Duration

	cmd := &cobra.Command{
		Use:   "prune",
		Short: "Delete job records older than a given age",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if olderThan <= 0 {
				return errors.New("--older-than must be a positive duration, e.g. 720h")
			}

			cutoff := cc.now().Add(-olderThan)
			return cc.withDatabase(cmd, func(ctx context.Context, db *database.Database) error {
				n, err := db.PruneJobs(ctx, cutoff)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Pruned %d job records created before %s\n",
					n, cutoff.UTC().Format(time.RFC3339))
				return nil
			})
		},
	}

	cmd.Flags().DurationVar(&olderThan, "older-than", 0, "Age threshold, e.g. 168h")
	_ = cmd.MarkFlagRequired("older-than")

	return cmd
}

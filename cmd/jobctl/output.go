package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"ffmpeg-cuda-api/internal/database"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

// writeJSON encodes v as indented JSON to the command's stdout.
func writeJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// isTerminal reports whether w is an interactive terminal.
func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// terminalWidth returns the width of w, or 0 when unknown.
func terminalWidth(w io.Writer) int {
	f, ok := w.(*os.File)
	if !ok {
		return 0
	}
	width, _, err := term.GetSize(int(f.Fd()))
	if err != nil {
		return 0
	}
	return width
}

// renderJobsTable renders jobs as a table. maxWidth limits the row length
// when positive.
func renderJobsTable(jobs []database.Job, maxWidth int) string {
	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)
	tw.AppendHeader(table.Row{"ID", "Created", "Status", "Code", "Duration", "Size", "Input", "Output"})

	for _, job := range jobs {
		status := job.Status
		if job.ErrorType != "" {
			status += " (" + job.ErrorType + ")"
		}
		tw.AppendRow(table.Row{
			job.ID,
			job.CreatedAt.Local().Format(time.DateTime),
			status,
			returnCode(job.ReturnCode),
			fmt.Sprintf("%.2fs", job.DurationSeconds),
			formatSize(job.OutputSizeBytes),
			job.Input,
			job.Output,
		})
	}

	tw.SetColumnConfigs([]table.ColumnConfig{
		{Number: 4, Align: text.AlignRight},
		{Number: 5, Align: text.AlignRight},
		{Number: 6, Align: text.AlignRight},
	})
	if maxWidth > 0 {
		tw.SetAllowedRowLength(maxWidth)
	}

	return tw.Render()
}

func renderStatsTable(out statsOutput) string {
	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)
	tw.AppendHeader(table.Row{"Status", "Jobs"})
	for _, s := range out.Statuses {
		tw.AppendRow(table.Row{s.Status, s.Count})
	}
	tw.AppendFooter(table.Row{"Total", out.Total})
	tw.SetColumnConfigs([]table.ColumnConfig{{Number: 2, Align: text.AlignRight}})
	return tw.Render()
}

func returnCode(code *int) string {
	if code == nil {
		return "-"
	}
	return strconv.Itoa(*code)
}

func formatSize(b int64) string {
	if b <= 0 {
		return "-"
	}
	const unit = 1024
	if b < unit {
		return fmt.Sprintf("%d B", b)
	}
	div, exp := int64(unit), 0
	for n := b / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(b)/float64(div), "KMGTPE"[exp])
}

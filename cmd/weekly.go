package cmd

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/Tiliavir/studylog/internal/diary"
	"github.com/Tiliavir/studylog/internal/model"
	"github.com/Tiliavir/studylog/internal/storage"
	"github.com/Tiliavir/studylog/internal/timecalc"
)

var weeklyFormat string

var weeklyCmd = &cobra.Command{
	Use:     "weekly",
	Aliases: []string{"report"},
	Short:   "Show this week's study statistics",
	Args:    cobra.NoArgs,
	RunE:    runWeekly,
}

func init() {
	weeklyCmd.Flags().StringVar(&weeklyFormat, "format", "md", "Output format: md, csv, json")
}

func runWeekly(cmd *cobra.Command, args []string) error {
	at := now()
	from, to := timecalc.WeekWindow(at)

	posts, err := storage.LoadRange(base, from, to)
	if err != nil {
		return storageError(err)
	}

	return printWeekly(cmd.OutOrStdout(), diary.WeeklyStats(posts, at), weeklyFormat)
}

func printWeekly(w io.Writer, stats model.WeeklyDiaryStats, format string) error {
	label := timecalc.ISOWeekLabel(stats.WeekStart)

	switch format {
	case "csv":
		fmt.Fprintln(w, "subject,duration_minutes")
		for _, sm := range stats.SubjectBreakdown {
			fmt.Fprintf(w, "%s,%d\n", csvEscape(sm.Subject), sm.Minutes)
		}
	case "json":
		out := struct {
			Week string `json:"week"`
			model.WeeklyDiaryStats
		}{label, stats}
		data, err := json.MarshalIndent(out, "", "  ")
		if err != nil {
			return storageError(fmt.Errorf("error encoding JSON: %w", err))
		}
		fmt.Fprintln(w, string(data))
	case "md", "":
		fmt.Fprintf(w, "Week %s (from %s)\n", label, stats.WeekStart.Format("2006-01-02"))
		fmt.Fprintln(w, "--------------------------------")
		for _, sm := range stats.SubjectBreakdown {
			fmt.Fprintf(w, "%-20s%s\n", sm.Subject, timecalc.FormatMinutes(sm.Minutes))
		}
		fmt.Fprintln(w, "--------------------------------")
		fmt.Fprintf(w, "%-20s%s\n", "Total", timecalc.FormatMinutes(stats.TotalMinutes))
		fmt.Fprintf(w, "%-20s%d\n", "Posts", stats.TotalPosts)
	default:
		return userError(fmt.Errorf("unknown format %q (want md, csv or json)", format))
	}
	return nil
}

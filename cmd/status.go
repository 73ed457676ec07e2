package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Tiliavir/studylog/internal/diary"
	"github.com/Tiliavir/studylog/internal/storage"
	"github.com/Tiliavir/studylog/internal/timecalc"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the running session and today's totals",
	Args:  cobra.NoArgs,
	RunE:  runStatus,
}

func runStatus(cmd *cobra.Command, args []string) error {
	at := now()
	w := cmd.OutOrStdout()

	active, err := storage.LoadActive(base)
	if err != nil {
		return storageError(err)
	}
	if active != nil {
		elapsed := int64(at.Sub(active.Start).Seconds())
		fmt.Fprintln(w, "Running:")
		fmt.Fprintf(w, "  Subject: %s\n", active.Subject)
		if active.Content != "" {
			fmt.Fprintf(w, "  Content: %s\n", active.Content)
		}
		fmt.Fprintf(w, "  Since: %s\n", active.Start.In(cfg.Location()).Format("15:04"))
		fmt.Fprintf(w, "  Elapsed: %s\n", formatElapsed(elapsed))
	} else {
		fmt.Fprintln(w, "No active session.")
	}

	from, to := timecalc.WeekWindow(at)
	posts, err := storage.LoadRange(base, from, to)
	if err != nil {
		return storageError(err)
	}

	todayPosts, todayMinutes := 0, 0
	for _, g := range diary.GroupByDate(posts, at) {
		if g.Date != timecalc.DateKey(at) {
			continue
		}
		for _, p := range g.Posts {
			todayPosts++
			todayMinutes += p.Duration
		}
	}
	week := diary.WeeklyStats(posts, at)

	fmt.Fprintf(w, "Today: %d posts, %s logged.\n", todayPosts, timecalc.FormatMinutes(todayMinutes))
	fmt.Fprintf(w, "This week: %d posts, %s logged.\n", week.TotalPosts, timecalc.FormatMinutes(week.TotalMinutes))
	if active != nil {
		fmt.Fprintf(w, "This week on %s: %s logged.\n", active.Subject, timecalc.FormatMinutes(week.Minutes(active.Subject)))
	}
	return nil
}

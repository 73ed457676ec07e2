package cmd

import (
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/Tiliavir/studylog/internal/diary"
	"github.com/Tiliavir/studylog/internal/model"
	"github.com/Tiliavir/studylog/internal/storage"
	"github.com/Tiliavir/studylog/internal/timecalc"
)

var timelineDays int

var timelineCmd = &cobra.Command{
	Use:     "timeline",
	Aliases: []string{"list"},
	Short:   "Show diary posts grouped by date",
	Args:    cobra.NoArgs,
	RunE:    runTimeline,
}

func init() {
	timelineCmd.Flags().IntVar(&timelineDays, "days", 7, "Number of days to show, including today")
}

var labelColor = color.New(color.FgCyan, color.Bold)

func runTimeline(cmd *cobra.Command, args []string) error {
	if timelineDays < 1 {
		return userError(fmt.Errorf("--days must be at least 1"))
	}
	at := now()

	posts, err := storage.LoadRange(base, at.AddDate(0, 0, -(timelineDays-1)), at)
	if err != nil {
		return storageError(err)
	}

	printTimeline(cmd.OutOrStdout(), diary.GroupByDate(posts, at))
	return nil
}

// printTimeline prints each date bucket followed by its posts.
func printTimeline(w io.Writer, groups []model.GroupedDiaryPost) {
	if len(groups) == 0 {
		fmt.Fprintln(w, "No diary posts found.")
		return
	}

	for i, g := range groups {
		if i > 0 {
			fmt.Fprintln(w)
		}
		labelColor.Fprintf(w, "%s", g.DateLabel)
		fmt.Fprintf(w, " (%s)\n", g.Date)
		for _, p := range g.Posts {
			content := ""
			if p.Content != "" {
				content = "  " + firstLine(p.Content)
			}
			fmt.Fprintf(w, "  %s  %-12s %6s%s\n",
				p.Timestamp.In(cfg.Location()).Format("15:04"), p.Subject, timecalc.FormatMinutes(p.Duration), content)
		}
	}
}

func firstLine(s string) string {
	for i, r := range s {
		if r == '\n' {
			return s[:i]
		}
	}
	return s
}

package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/Tiliavir/studylog/internal/diary"
	"github.com/Tiliavir/studylog/internal/model"
	"github.com/Tiliavir/studylog/internal/storage"
	"github.com/Tiliavir/studylog/internal/timecalc"
)

var exportFormat string

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export this week's diary posts to stdout",
	Args:  cobra.NoArgs,
	RunE:  runExport,
}

func init() {
	exportCmd.Flags().StringVar(&exportFormat, "format", "csv", "Output format: csv, json, md")
}

func runExport(cmd *cobra.Command, args []string) error {
	at := now()
	from, to := timecalc.WeekWindow(at)

	stored, err := storage.LoadRange(base, from, to)
	if err != nil {
		return storageError(err)
	}
	posts := weekPosts(stored, from, to)

	w := cmd.OutOrStdout()
	switch exportFormat {
	case "json":
		data, err := json.MarshalIndent(posts, "", "  ")
		if err != nil {
			return storageError(fmt.Errorf("error encoding JSON: %w", err))
		}
		fmt.Fprintln(w, string(data))
	case "md":
		printTimeline(w, diary.GroupByDate(posts, at))
	case "csv", "":
		printCSV(w, posts)
	default:
		return userError(fmt.Errorf("unknown format %q (want csv, json or md)", exportFormat))
	}
	return nil
}

// weekPosts keeps the posts inside [from, to), oldest first.
func weekPosts(posts []model.DiaryPost, from, to time.Time) []model.DiaryPost {
	out := []model.DiaryPost{}
	for _, p := range posts {
		if timecalc.InWindow(p.Timestamp, from, to) {
			out = append(out, p)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Timestamp.Before(out[j].Timestamp) })
	return out
}

func printCSV(w io.Writer, posts []model.DiaryPost) {
	fmt.Fprintln(w, "date,timestamp,subject,duration_minutes,content,source")
	for _, p := range posts {
		fmt.Fprintf(w, "%s,%s,%s,%d,%s,%s\n",
			csvEscape(timecalc.DateKey(p.Timestamp)),
			csvEscape(p.Timestamp.Format(time.RFC3339)),
			csvEscape(p.Subject),
			p.Duration,
			csvEscape(p.Content),
			csvEscape(p.Source),
		)
	}
}

// csvEscape wraps a field in quotes if it contains a comma, quote, or newline.
func csvEscape(s string) string {
	if !strings.ContainsAny(s, ",\"\n\r") {
		return s
	}
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}

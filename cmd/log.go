package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/Tiliavir/studylog/internal/model"
	"github.com/Tiliavir/studylog/internal/storage"
	"github.com/Tiliavir/studylog/internal/timecalc"
	"github.com/Tiliavir/studylog/internal/validate"
)

var (
	logMinutes int
	logContent string
	logAt      string
)

var logCmd = &cobra.Command{
	Use:   "log [subject]",
	Short: "Record a finished study session",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runLog,
}

func init() {
	logCmd.Flags().IntVarP(&logMinutes, "minutes", "m", 0, "Duration in minutes")
	logCmd.Flags().StringVar(&logContent, "content", "", "Notes about the session")
	logCmd.Flags().StringVar(&logAt, "at", "", "Session time (RFC3339); defaults to now")
}

func newPost(subject, content string, at time.Time, minutes int, source string) model.DiaryPost {
	return model.DiaryPost{
		ID:        timecalc.GenerateID(at),
		Timestamp: at,
		Duration:  minutes,
		Subject:   subject,
		Content:   content,
		Source:    source,
	}
}

// savePost validates and stores a post.
func savePost(p model.DiaryPost) error {
	if err := validate.Struct(p); err != nil {
		return userError(err)
	}
	if err := storage.UpsertPost(base, p); err != nil {
		return storageError(err)
	}
	return nil
}

func runLog(cmd *cobra.Command, args []string) error {
	subject, err := subjectArg(args)
	if err != nil {
		return userError(err)
	}

	at := now()
	if logAt != "" {
		at, err = time.Parse(time.RFC3339, logAt)
		if err != nil {
			return userError(fmt.Errorf("invalid --at value %q: %w", logAt, err))
		}
	}

	p := newPost(subject, logContent, at, logMinutes, "manual")
	if err := savePost(p); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Logged %s of %q (%s)\n",
		timecalc.FormatMinutes(p.Duration), p.Subject, p.ID)
	return nil
}

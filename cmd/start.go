package cmd

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/Tiliavir/studylog/internal/model"
	"github.com/Tiliavir/studylog/internal/storage"
)

var startContent string

var startCmd = &cobra.Command{
	Use:   "start [subject]",
	Short: "Start timing a study session",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runStart,
}

func init() {
	startCmd.Flags().StringVar(&startContent, "content", "", "What you are studying")
}

// subjectArg returns the subject argument or the configured default.
func subjectArg(args []string) (string, error) {
	if len(args) > 0 {
		return args[0], nil
	}
	if cfg.DefaultSubject != "" {
		return cfg.DefaultSubject, nil
	}
	return "", errors.New("subject is required (or set default_subject in the config)")
}

func runStart(cmd *cobra.Command, args []string) error {
	subject, err := subjectArg(args)
	if err != nil {
		return userError(err)
	}
	at := now()

	// Check for an existing active session and auto-stop it.
	active, err := storage.LoadActive(base)
	if err != nil {
		return storageError(err)
	}
	if active != nil {
		fmt.Fprintf(cmd.ErrOrStderr(), "Warning: auto-stopping active session for %q\n", active.Subject)
		if _, err := stopSession(*active, at); err != nil {
			return err
		}
	}

	session := model.ActiveSession{Subject: subject, Content: startContent, Start: at}
	if err := storage.SaveActive(base, session); err != nil {
		return storageError(err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Started %q at %s\n", subject, at.Format("15:04:05"))
	return nil
}

// stopSession turns an active session into a diary post and clears the timer.
// Sessions shorter than a minute are discarded and return a nil post.
func stopSession(s model.ActiveSession, stopTime time.Time) (*model.DiaryPost, error) {
	minutes := int(stopTime.Sub(s.Start).Minutes())
	var post *model.DiaryPost
	if minutes > 0 {
		p := newPost(s.Subject, s.Content, s.Start, minutes, "timer")
		if err := savePost(p); err != nil {
			return nil, err
		}
		post = &p
	}
	if err := storage.ClearActive(base); err != nil {
		return nil, storageError(err)
	}
	return post, nil
}

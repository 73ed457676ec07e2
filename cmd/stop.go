package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Tiliavir/studylog/internal/storage"
)

var stopCmd = &cobra.Command{
	Use:   "stop",
	Short: "Stop the running study session and record it",
	Args:  cobra.NoArgs,
	RunE:  runStop,
}

func runStop(cmd *cobra.Command, args []string) error {
	at := now()

	active, err := storage.LoadActive(base)
	if err != nil {
		return storageError(err)
	}
	if active == nil {
		return userError(errors.New("no active session to stop"))
	}

	post, err := stopSession(*active, at)
	if err != nil {
		return err
	}

	elapsed := int64(at.Sub(active.Start).Seconds())
	if post == nil {
		fmt.Fprintf(cmd.OutOrStdout(), "Discarded %q after %s (shorter than a minute).\n",
			active.Subject, formatElapsed(elapsed))
		return nil
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Recorded %q. Elapsed: %s\n", active.Subject, formatElapsed(elapsed))
	return nil
}

func formatElapsed(seconds int64) string {
	h := seconds / 3600
	m := (seconds % 3600) / 60
	s := seconds % 60
	if h > 0 {
		return fmt.Sprintf("%dh %dm %ds", h, m, s)
	}
	if m > 0 {
		return fmt.Sprintf("%dm %ds", m, s)
	}
	return fmt.Sprintf("%ds", s)
}

package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/Tiliavir/studylog/internal/msgraph"
	"github.com/Tiliavir/studylog/internal/timecalc"
)

var (
	outlookSyncFrom    string
	outlookSyncTo      string
	outlookSyncDate    string
	outlookSyncToday   bool
	outlookSyncDryRun  bool
	outlookSyncSubject string
	outlookSyncTZ      string
)

var outlookCmd = &cobra.Command{
	Use:   "outlook",
	Short: "Outlook calendar integration",
}

var outlookSyncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Import Outlook calendar events as diary posts",
	Args:  cobra.NoArgs,
	RunE:  runOutlookSync,
}

func init() {
	outlookSyncCmd.Flags().StringVar(&outlookSyncFrom, "from", "", "Start date (YYYY-MM-DD); required when --to is specified")
	outlookSyncCmd.Flags().StringVar(&outlookSyncTo, "to", "", "End date (YYYY-MM-DD); defaults to today")
	outlookSyncCmd.Flags().StringVar(&outlookSyncDate, "date", "", "Sync a specific date (YYYY-MM-DD)")
	outlookSyncCmd.Flags().BoolVar(&outlookSyncToday, "today", false, "Sync only today (default)")
	outlookSyncCmd.Flags().BoolVar(&outlookSyncDryRun, "dry-run", false, "Print planned operations without writing")
	outlookSyncCmd.Flags().StringVar(&outlookSyncSubject, "subject", "", "Subject for imported events (default from config)")
	outlookSyncCmd.Flags().StringVar(&outlookSyncTZ, "timezone", "", "IANA timezone for event times (default from config)")
	outlookCmd.AddCommand(outlookSyncCmd)
}

// syncRange resolves the --date, --from/--to and --today flags into an
// inclusive day range in loc.
func syncRange(at time.Time, loc *time.Location) (time.Time, time.Time, error) {
	parse := func(flag, value string) (time.Time, error) {
		d, err := time.ParseInLocation(timecalc.DateLayout, value, loc)
		if err != nil {
			return time.Time{}, fmt.Errorf("invalid --%s value %q: %w", flag, value, err)
		}
		return d, nil
	}

	switch {
	case outlookSyncDate != "":
		d, err := parse("date", outlookSyncDate)
		if err != nil {
			return time.Time{}, time.Time{}, err
		}
		return timecalc.StartOfDay(d), timecalc.EndOfDay(d), nil

	case outlookSyncFrom != "" || outlookSyncTo != "":
		if outlookSyncFrom == "" {
			return time.Time{}, time.Time{}, fmt.Errorf("--from is required when --to is specified")
		}
		from, err := parse("from", outlookSyncFrom)
		if err != nil {
			return time.Time{}, time.Time{}, err
		}
		to := at
		if outlookSyncTo != "" {
			if to, err = parse("to", outlookSyncTo); err != nil {
				return time.Time{}, time.Time{}, err
			}
		}
		if to.Before(from) {
			return time.Time{}, time.Time{}, fmt.Errorf("--to is before --from")
		}
		return timecalc.StartOfDay(from), timecalc.EndOfDay(to), nil

	default:
		return timecalc.StartOfDay(at), timecalc.EndOfDay(at), nil
	}
}

func runOutlookSync(cmd *cobra.Command, args []string) error {
	from, to, err := syncRange(now(), cfg.Location())
	if err != nil {
		return userError(err)
	}

	timezone := outlookSyncTZ
	if timezone == "" {
		timezone = cfg.Timezone
	}
	subject := outlookSyncSubject
	if subject == "" {
		subject = cfg.Outlook.Subject
	}

	w := cmd.OutOrStdout()
	dryTag := ""
	if outlookSyncDryRun {
		dryTag = " [dry-run]"
	}
	fmt.Fprintf(w, "Syncing Outlook events (%s → %s)%s...\n",
		from.Format(timecalc.DateLayout), to.Format(timecalc.DateLayout), dryTag)
	fmt.Fprintln(w)

	ctx := cmd.Context()

	tok, oc, err := msgraph.Authenticate(ctx, base, cfg.Outlook.TenantID, cfg.Outlook.ClientID, w)
	if err != nil {
		return userError(fmt.Errorf("authentication failed: %w", err))
	}

	client := msgraph.NewClient(ctx, base, tok, oc)

	events, err := client.GetCalendarView(ctx, from, to, timezone)
	if err != nil {
		return userError(fmt.Errorf("failed to fetch calendar events: %w", err))
	}

	result, err := msgraph.SyncEvents(events, msgraph.SyncOptions{
		Base:     base,
		From:     from,
		To:       to,
		DryRun:   outlookSyncDryRun,
		Subject:  subject,
		Timezone: timezone,
		Out:      w,
	})
	if err != nil {
		return storageError(fmt.Errorf("sync error: %w", err))
	}

	fmt.Fprintln(w)
	fmt.Fprintln(w, "Summary:")
	fmt.Fprintf(w, "  %d imported\n", result.Imported)
	fmt.Fprintf(w, "  %d skipped\n", result.Skipped)
	fmt.Fprintf(w, "  %d updated\n", result.Updated)
	if result.Errors > 0 {
		fmt.Fprintf(w, "  %d errors\n", result.Errors)
		return storageError(fmt.Errorf("%d events could not be synced", result.Errors))
	}
	return nil
}

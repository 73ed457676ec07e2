package msgraph

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/Tiliavir/studylog/internal/model"
	"github.com/Tiliavir/studylog/internal/storage"
	"github.com/Tiliavir/studylog/internal/timecalc"
)

// SourceOutlook marks diary posts imported from the calendar.
const SourceOutlook = "outlook"

// SyncResult holds counters for a sync operation.
type SyncResult struct {
	Imported int
	Skipped  int
	Updated  int
	Errors   int
}

// SyncOptions configures a sync run.
type SyncOptions struct {
	Base    string
	DryRun  bool
	Subject string
	// From and To bound the lookup of earlier imports. The window is widened
	// to cover every synced event; zero values fall back to the events' weeks.
	From time.Time
	To   time.Time
	// Timezone is the IANA zone of Graph times without an offset; "" means UTC.
	Timezone string
	// Out receives per-event progress lines; nil discards them.
	Out io.Writer
}

// parseGraphTime parses a Graph API dateTime string in the given timezone.
// Graph returns times like "2026-02-27T09:00:00.0000000" without a zone suffix
// when a Prefer: outlook.timezone header is set.
func parseGraphTime(dt, tz string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, dt); err == nil {
		return t, nil
	}
	if t, err := time.Parse(time.RFC3339Nano, dt); err == nil {
		return t, nil
	}

	loc := time.UTC
	if tz != "" {
		if l, err := time.LoadLocation(tz); err == nil {
			loc = l
		}
	}

	for _, layout := range []string{
		"2006-01-02T15:04:05.0000000",
		"2006-01-02T15:04:05",
	} {
		if t, err := time.ParseInLocation(layout, dt, loc); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("cannot parse graph time %q", dt)
}

// buildContent combines the event subject, body preview and location.
func buildContent(event CalendarEvent) string {
	parts := []string{}
	for _, p := range []string{event.Subject, event.BodyPreview, event.Location.DisplayName} {
		if p != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, "\n")
}

// shouldSkip returns true if the event should not be imported.
func shouldSkip(event CalendarEvent) bool {
	if event.IsCancelled {
		return true
	}
	if event.IsAllDay {
		return true
	}
	if event.Sensitivity == "private" {
		return true
	}
	if event.ShowAs == "free" {
		return true
	}
	if event.Start.DateTime == "" || event.End.DateTime == "" {
		return true
	}
	return false
}

// MapEventToPost converts a Graph CalendarEvent into a diary post. The first
// event category wins over the default subject.
func MapEventToPost(event CalendarEvent, timezone, subject string) (model.DiaryPost, error) {
	startTime, err := parseGraphTime(event.Start.DateTime, timezone)
	if err != nil {
		return model.DiaryPost{}, fmt.Errorf("parsing start time: %w", err)
	}
	endTime, err := parseGraphTime(event.End.DateTime, timezone)
	if err != nil {
		return model.DiaryPost{}, fmt.Errorf("parsing end time: %w", err)
	}
	if !endTime.After(startTime) {
		return model.DiaryPost{}, fmt.Errorf("event ends before it starts")
	}

	if len(event.Categories) > 0 && event.Categories[0] != "" {
		subject = event.Categories[0]
	}

	return model.DiaryPost{
		ID:         timecalc.GenerateID(startTime),
		Timestamp:  startTime,
		Duration:   int(endTime.Sub(startTime).Minutes()),
		Subject:    subject,
		Content:    buildContent(event),
		Source:     SourceOutlook,
		ExternalID: event.ID,
	}, nil
}

func samePost(a, b model.DiaryPost) bool {
	return a.Timestamp.Equal(b.Timestamp) && a.Duration == b.Duration &&
		a.Subject == b.Subject && a.Content == b.Content
}

type mappedEvent struct {
	event CalendarEvent
	post  model.DiaryPost
}

// syncWindow widens [from, to] to cover every mapped post. A zero bound
// defaults to the edge of the calendar week holding the earliest or latest
// event.
func syncWindow(from, to time.Time, mapped []mappedEvent) (time.Time, time.Time) {
	first, last := mapped[0].post.Timestamp, mapped[0].post.Timestamp
	for _, m := range mapped[1:] {
		if ts := m.post.Timestamp; ts.Before(first) {
			first = ts
		} else if ts.After(last) {
			last = ts
		}
	}
	if from.IsZero() {
		from = timecalc.WeekStart(first)
	}
	if to.IsZero() {
		_, to = timecalc.WeekWindow(last)
	}
	if first.Before(from) {
		from = first
	}
	if last.After(to) {
		to = last
	}
	return from, to
}

// SyncEvents maps Graph events to diary posts and persists them. Posts are
// matched to earlier imports by external id anywhere in the sync window, so
// repeated syncs do not duplicate posts and a rescheduled event moves its
// post to the new day.
func SyncEvents(events []CalendarEvent, opts SyncOptions) (SyncResult, error) {
	var result SyncResult
	out := opts.Out
	if out == nil {
		out = io.Discard
	}

	var mapped []mappedEvent
	for _, event := range events {
		if shouldSkip(event) {
			continue
		}
		post, err := MapEventToPost(event, opts.Timezone, opts.Subject)
		if err != nil {
			fmt.Fprintf(out, "  ! Error mapping event %q: %v\n", event.Subject, err)
			result.Errors++
			continue
		}
		mapped = append(mapped, mappedEvent{event: event, post: post})
	}
	if len(mapped) == 0 {
		return result, nil
	}

	from, to := syncWindow(opts.From, opts.To, mapped)
	stored, err := storage.LoadRange(opts.Base, from, to)
	if err != nil {
		return result, fmt.Errorf("loading posts %s..%s: %w",
			timecalc.DateKey(from), timecalc.DateKey(to), err)
	}

	for _, m := range mapped {
		event, post := m.event, m.post
		dur := fmt.Sprintf(" (%s)", timecalc.FormatMinutes(post.Duration))

		found := storage.FindByExternalID(stored, event.ID)
		if found == nil {
			if !opts.DryRun {
				if err := storage.UpsertPost(opts.Base, post); err != nil {
					fmt.Fprintf(out, "  ! Error saving %q: %v\n", event.Subject, err)
					result.Errors++
					continue
				}
			}
			stored = append(stored, post)
			fmt.Fprintf(out, "  ✓ Imported: %s%s\n", event.Subject, dur)
			result.Imported++
			continue
		}

		if samePost(*found, post) {
			fmt.Fprintf(out, "  – Skipped:  %s (already exists)\n", event.Subject)
			result.Skipped++
			continue
		}

		// Keep the original ID; a post whose date changed leaves its old day file.
		post.ID = found.ID
		if !opts.DryRun {
			if timecalc.DateKey(found.Timestamp) != timecalc.DateKey(post.Timestamp) {
				if _, err := storage.DeletePost(opts.Base, found.Timestamp, found.ID); err != nil {
					fmt.Fprintf(out, "  ! Error moving %q: %v\n", event.Subject, err)
					result.Errors++
					continue
				}
			}
			if err := storage.UpsertPost(opts.Base, post); err != nil {
				fmt.Fprintf(out, "  ! Error updating %q: %v\n", event.Subject, err)
				result.Errors++
				continue
			}
		}
		*found = post
		fmt.Fprintf(out, "  ↑ Updated:  %s%s\n", event.Subject, dur)
		result.Updated++
	}

	return result, nil
}

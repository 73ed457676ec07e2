package timecalc

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"time"
)

// DateLayout is the layout of bucket keys and day file names.
const DateLayout = "2006-01-02"

// Clock supplies the current instant.
type Clock interface {
	Now() time.Time
}

// SystemClock reads the wall clock.
type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now() }

// FixedClock always returns the same instant.
type FixedClock time.Time

func (c FixedClock) Now() time.Time { return time.Time(c) }

// GenerateID creates a unique post ID based on timestamp and random suffix.
func GenerateID(t time.Time) string {
	const chars = "abcdefghijklmnopqrstuvwxyz0123456789"
	suffix := make([]byte, 5)
	for i := range suffix {
		n, _ := rand.Int(rand.Reader, big.NewInt(int64(len(chars))))
		suffix[i] = chars[n.Int64()]
	}
	return fmt.Sprintf("%s-%s", t.Format("20060102-150405"), string(suffix))
}

// FormatMinutes formats minutes as a human-readable string like "1h 40m" or "45m".
func FormatMinutes(minutes int) string {
	h := minutes / 60
	m := minutes % 60
	if h > 0 {
		return fmt.Sprintf("%dh %dm", h, m)
	}
	return fmt.Sprintf("%dm", m)
}

// DateKey returns the UTC calendar date of t as YYYY-MM-DD.
func DateKey(t time.Time) string {
	return t.UTC().Format(DateLayout)
}

// DateLabel names the calendar day key relative to today's key:
// "今日", "昨日", or "<M>月<D>日" without zero padding.
// Keys that do not parse are returned unchanged.
func DateLabel(key, today string) string {
	d, err := time.Parse(DateLayout, key)
	if err != nil {
		return key
	}
	t, err := time.Parse(DateLayout, today)
	if err != nil {
		return key
	}
	switch DaysBetween(d, t) {
	case 0:
		return "今日"
	case 1:
		return "昨日"
	}
	return fmt.Sprintf("%d月%d日", int(d.Month()), d.Day())
}

// DaysBetween returns the number of whole calendar days from a to b, using
// each value's own date fields.
func DaysBetween(a, b time.Time) int {
	ad := time.Date(a.Year(), a.Month(), a.Day(), 0, 0, 0, 0, time.UTC)
	bd := time.Date(b.Year(), b.Month(), b.Day(), 0, 0, 0, 0, time.UTC)
	return int(bd.Sub(ad).Hours() / 24)
}

// WeekStart returns Monday 00:00:00 of the week containing t, in t's location.
// Sunday belongs to the week that started six days earlier.
func WeekStart(t time.Time) time.Time {
	// Go's weekday: Sunday=0, Monday=1, …, Saturday=6
	sinceMonday := (int(t.Weekday()) + 6) % 7
	return time.Date(t.Year(), t.Month(), t.Day()-sinceMonday, 0, 0, 0, 0, t.Location())
}

// WeekWindow returns the half-open range [monday, next monday) containing t.
func WeekWindow(t time.Time) (time.Time, time.Time) {
	monday := WeekStart(t)
	return monday, monday.AddDate(0, 0, 7)
}

// InWindow reports whether from <= t < to.
func InWindow(t, from, to time.Time) bool {
	return !t.Before(from) && t.Before(to)
}

// ISOWeekLabel returns a label like "2026-W09".
func ISOWeekLabel(t time.Time) string {
	year, week := t.ISOWeek()
	return fmt.Sprintf("%d-W%02d", year, week)
}

// StartOfDay returns 00:00:00 of the same day.
func StartOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// EndOfDay returns 23:59:59 of the same day.
func EndOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 23, 59, 59, 0, t.Location())
}

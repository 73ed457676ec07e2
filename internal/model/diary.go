package model

import "time"

// DiaryPost is a single logged study session.
type DiaryPost struct {
	ID        string    `json:"id"`
	Timestamp time.Time `json:"timestamp" validate:"required"`
	// Duration is the session length in minutes.
	Duration   int    `json:"duration" validate:"gt=0"`
	Subject    string `json:"subject" validate:"required,notblank"`
	Content    string `json:"content,omitempty"`
	Source     string `json:"source,omitempty"`
	ExternalID string `json:"external_id,omitempty"`
}

// GroupedDiaryPost is a bucket of posts sharing one UTC calendar date.
type GroupedDiaryPost struct {
	DateLabel string      `json:"dateLabel"`
	Date      string      `json:"date"`
	Posts     []DiaryPost `json:"posts"`
}

// SubjectMinutes is one entry of the ordered per-subject breakdown.
type SubjectMinutes struct {
	Subject string `json:"subject"`
	Minutes int    `json:"minutes"`
}

// WeeklyDiaryStats aggregates the posts of one Monday-start week.
type WeeklyDiaryStats struct {
	WeekStart        time.Time        `json:"weekStart"`
	TotalPosts       int              `json:"totalPosts"`
	TotalMinutes     int              `json:"totalMinutes"`
	SubjectBreakdown []SubjectMinutes `json:"subjectBreakdown"`
}

// Minutes returns the breakdown total for subject, or 0 if absent.
func (s WeeklyDiaryStats) Minutes(subject string) int {
	for _, sm := range s.SubjectBreakdown {
		if sm.Subject == subject {
			return sm.Minutes
		}
	}
	return 0
}

// DayFile is the top-level structure stored in each daily JSON file.
type DayFile struct {
	Date  string      `json:"date"`
	Posts []DiaryPost `json:"posts"`
}

// ActiveSession is a running study timer that becomes a DiaryPost when stopped.
type ActiveSession struct {
	Subject string    `json:"subject"`
	Content string    `json:"content,omitempty"`
	Start   time.Time `json:"start"`
}

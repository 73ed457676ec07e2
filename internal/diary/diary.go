// Package diary groups diary posts into a date timeline and aggregates
// weekly study statistics. All functions are pure; callers pass "now".
package diary

import (
	"sort"
	"time"

	"github.com/Tiliavir/studylog/internal/model"
	"github.com/Tiliavir/studylog/internal/timecalc"
)

// GroupByDate buckets posts by the UTC calendar date of their timestamp.
// Buckets are ordered newest date first and posts within a bucket newest
// first. Labels are computed relative to now.
func GroupByDate(posts []model.DiaryPost, now time.Time) []model.GroupedDiaryPost {
	buckets := map[string][]model.DiaryPost{}
	var keys []string
	for _, p := range posts {
		key := timecalc.DateKey(p.Timestamp)
		if _, seen := buckets[key]; !seen {
			keys = append(keys, key)
		}
		buckets[key] = append(buckets[key], p)
	}

	// YYYY-MM-DD sorts chronologically as a string.
	sort.Sort(sort.Reverse(sort.StringSlice(keys)))

	today := timecalc.DateKey(now)
	groups := make([]model.GroupedDiaryPost, 0, len(keys))
	for _, key := range keys {
		bucket := buckets[key]
		sort.SliceStable(bucket, func(i, j int) bool {
			return bucket[i].Timestamp.After(bucket[j].Timestamp)
		})
		groups = append(groups, model.GroupedDiaryPost{
			DateLabel: timecalc.DateLabel(key, today),
			Date:      key,
			Posts:     bucket,
		})
	}
	return groups
}

// WeeklyStats aggregates the posts falling in the Monday-start week that
// contains now. The week begins at Monday 00:00 in now's location.
func WeeklyStats(posts []model.DiaryPost, now time.Time) model.WeeklyDiaryStats {
	from, to := timecalc.WeekWindow(now)
	stats := model.WeeklyDiaryStats{
		WeekStart:        from,
		SubjectBreakdown: []model.SubjectMinutes{},
	}

	index := map[string]int{}
	for _, p := range posts {
		if !timecalc.InWindow(p.Timestamp, from, to) {
			continue
		}
		stats.TotalPosts++
		stats.TotalMinutes += p.Duration

		i, seen := index[p.Subject]
		if !seen {
			i = len(stats.SubjectBreakdown)
			index[p.Subject] = i
			stats.SubjectBreakdown = append(stats.SubjectBreakdown, model.SubjectMinutes{Subject: p.Subject})
		}
		stats.SubjectBreakdown[i].Minutes += p.Duration
	}
	return stats
}

// Flatten concatenates bucket contents in bucket order.
func Flatten(groups []model.GroupedDiaryPost) []model.DiaryPost {
	var out []model.DiaryPost
	for _, g := range groups {
		out = append(out, g.Posts...)
	}
	return out
}

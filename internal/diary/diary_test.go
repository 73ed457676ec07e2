package diary_test

import (
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Tiliavir/studylog/internal/diary"
	"github.com/Tiliavir/studylog/internal/model"
)

// now is Friday 2026-02-27 12:00 UTC.
var now = time.Date(2026, 2, 27, 12, 0, 0, 0, time.UTC)

func post(id string, ts time.Time, minutes int, subject string) model.DiaryPost {
	return model.DiaryPost{ID: id, Timestamp: ts, Duration: minutes, Subject: subject}
}

func ids(posts []model.DiaryPost) []string {
	out := make([]string, 0, len(posts))
	for _, p := range posts {
		out = append(out, p.ID)
	}
	return out
}

func TestGroupByDateTodayAndYesterday(t *testing.T) {
	today9 := time.Date(2026, 2, 27, 9, 0, 0, 0, time.UTC)
	today14 := time.Date(2026, 2, 27, 14, 0, 0, 0, time.UTC)
	yesterday10 := time.Date(2026, 2, 26, 10, 0, 0, 0, time.UTC)

	groups := diary.GroupByDate([]model.DiaryPost{
		post("a", today9, 30, "Math"),
		post("b", today14, 20, "Math"),
		post("c", yesterday10, 15, "English"),
	}, now)

	require.Len(t, groups, 2)
	assert.Equal(t, "今日", groups[0].DateLabel)
	assert.Equal(t, "2026-02-27", groups[0].Date)
	assert.Equal(t, []string{"b", "a"}, ids(groups[0].Posts))
	assert.Equal(t, "昨日", groups[1].DateLabel)
	assert.Equal(t, []string{"c"}, ids(groups[1].Posts))
}

func TestGroupByDateOlderLabel(t *testing.T) {
	groups := diary.GroupByDate([]model.DiaryPost{
		post("a", time.Date(2026, 2, 3, 8, 0, 0, 0, time.UTC), 10, "Math"),
		post("b", time.Date(2025, 12, 25, 8, 0, 0, 0, time.UTC), 10, "Math"),
	}, now)

	require.Len(t, groups, 2)
	assert.Equal(t, "2月3日", groups[0].DateLabel)
	assert.Equal(t, "12月25日", groups[1].DateLabel)
}

func TestGroupByDateEmpty(t *testing.T) {
	groups := diary.GroupByDate(nil, now)
	assert.NotNil(t, groups)
	assert.Empty(t, groups)
}

func TestGroupByDateUsesUTCDate(t *testing.T) {
	jst := time.FixedZone("JST", 9*3600)
	// Both are 2026-02-26 in UTC even though the first is the 27th in Tokyo.
	a := post("a", time.Date(2026, 2, 27, 7, 0, 0, 0, jst), 10, "Math")
	b := post("b", time.Date(2026, 2, 26, 1, 0, 0, 0, time.UTC), 10, "Math")

	groups := diary.GroupByDate([]model.DiaryPost{a, b}, now)
	require.Len(t, groups, 1)
	assert.Equal(t, "2026-02-26", groups[0].Date)
	assert.Equal(t, "昨日", groups[0].DateLabel)
	assert.Equal(t, []string{"a", "b"}, ids(groups[0].Posts))
}

func TestGroupByDateDoesNotMutateInput(t *testing.T) {
	posts := []model.DiaryPost{
		post("a", time.Date(2026, 2, 27, 9, 0, 0, 0, time.UTC), 10, "Math"),
		post("b", time.Date(2026, 2, 27, 14, 0, 0, 0, time.UTC), 10, "Math"),
	}
	_ = diary.GroupByDate(posts, now)
	assert.Equal(t, []string{"a", "b"}, ids(posts))
}

func TestGroupByDateProperties(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	for round := 0; round < 50; round++ {
		n := rng.Intn(40)
		posts := make([]model.DiaryPost, n)
		for i := range posts {
			ts := base.Add(time.Duration(rng.Int63n(int64(60 * 24 * time.Hour))))
			posts[i] = post(string(rune('A'+i%26))+string(rune('a'+i/26)), ts, rng.Intn(90)+1, "S")
		}

		groups := diary.GroupByDate(posts, now)

		// Flattening yields exactly the input posts.
		assert.ElementsMatch(t, ids(posts), ids(diary.Flatten(groups)))

		for i, g := range groups {
			if i > 0 {
				assert.Greater(t, groups[i-1].Date, g.Date, "buckets must have strictly decreasing dates")
			}
			for j := 1; j < len(g.Posts); j++ {
				assert.False(t, g.Posts[j].Timestamp.After(g.Posts[j-1].Timestamp), "posts must be newest first")
			}
		}
	}
}

func TestWeeklyStats(t *testing.T) {
	monday := time.Date(2026, 2, 23, 0, 0, 0, 0, time.UTC)
	nextMonday := monday.AddDate(0, 0, 7)

	posts := []model.DiaryPost{
		post("start", monday, 30, "Math"),
		post("mid", time.Date(2026, 2, 25, 18, 0, 0, 0, time.UTC), 45, "English"),
		post("fri", time.Date(2026, 2, 27, 9, 0, 0, 0, time.UTC), 20, "Math"),
		post("before", monday.Add(-time.Second), 100, "Math"),
		post("end", nextMonday, 100, "Science"),
	}

	stats := diary.WeeklyStats(posts, now)

	assert.True(t, stats.WeekStart.Equal(monday))
	assert.Equal(t, 3, stats.TotalPosts)
	assert.Equal(t, 95, stats.TotalMinutes)
	assert.Equal(t, []model.SubjectMinutes{
		{Subject: "Math", Minutes: 50},
		{Subject: "English", Minutes: 45},
	}, stats.SubjectBreakdown)
}

func TestWeeklyStatsSundayBelongsToPreviousMonday(t *testing.T) {
	sunday := time.Date(2026, 3, 1, 20, 0, 0, 0, time.UTC)
	posts := []model.DiaryPost{
		post("mon", time.Date(2026, 2, 23, 8, 0, 0, 0, time.UTC), 10, "Math"),
		post("sun", time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC), 10, "Math"),
	}

	stats := diary.WeeklyStats(posts, sunday)
	assert.True(t, stats.WeekStart.Equal(time.Date(2026, 2, 23, 0, 0, 0, 0, time.UTC)))
	assert.Equal(t, 2, stats.TotalPosts)
}

func TestWeeklyStatsSubjectsAreCaseSensitive(t *testing.T) {
	posts := []model.DiaryPost{
		post("a", now, 10, "math"),
		post("b", now, 20, "Math"),
	}
	stats := diary.WeeklyStats(posts, now)
	require.Len(t, stats.SubjectBreakdown, 2)
	assert.Equal(t, "math", stats.SubjectBreakdown[0].Subject)
}

func TestWeeklyStatsEmpty(t *testing.T) {
	stats := diary.WeeklyStats(nil, now)
	assert.Zero(t, stats.TotalPosts)
	assert.Zero(t, stats.TotalMinutes)
	assert.NotNil(t, stats.SubjectBreakdown)
	assert.Empty(t, stats.SubjectBreakdown)
}

func TestWeeklyStatsBreakdownSumsToTotal(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	var posts []model.DiaryPost
	subjects := []string{"Math", "English", "Science", "History"}
	for i := 0; i < 200; i++ {
		ts := now.Add(-time.Duration(rng.Int63n(int64(14 * 24 * time.Hour))))
		posts = append(posts, post("p", ts, rng.Intn(120)+1, subjects[rng.Intn(len(subjects))]))
	}

	stats := diary.WeeklyStats(posts, now)

	from := stats.WeekStart
	to := from.AddDate(0, 0, 7)
	want := 0
	for _, p := range posts {
		if !p.Timestamp.Before(from) && p.Timestamp.Before(to) {
			want += p.Duration
		}
	}
	sum := 0
	for _, sm := range stats.SubjectBreakdown {
		sum += sm.Minutes
	}
	assert.Equal(t, want, stats.TotalMinutes)
	assert.Equal(t, stats.TotalMinutes, sum)
}

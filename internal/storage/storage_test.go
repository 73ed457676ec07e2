package storage_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/Tiliavir/studylog/internal/model"
	"github.com/Tiliavir/studylog/internal/storage"
)

func TestLoadDayNotExist(t *testing.T) {
	base := t.TempDir()
	day := time.Date(2026, 2, 27, 0, 0, 0, 0, time.UTC)
	df, err := storage.LoadDay(base, day)
	if err != nil {
		t.Fatalf("LoadDay on missing file: %v", err)
	}
	if df.Date != "2026-02-27" {
		t.Errorf("LoadDay date = %q, want %q", df.Date, "2026-02-27")
	}
	if len(df.Posts) != 0 {
		t.Errorf("LoadDay posts = %d, want 0", len(df.Posts))
	}
}

func TestSaveDayAndLoadDay(t *testing.T) {
	base := t.TempDir()
	day := time.Date(2026, 2, 27, 9, 0, 0, 0, time.UTC)

	df := model.DayFile{
		Date: "2026-02-27",
		Posts: []model.DiaryPost{
			{ID: "test-id-1", Timestamp: day, Duration: 30, Subject: "Math", Source: "manual"},
		},
	}

	if err := storage.SaveDay(base, day, df); err != nil {
		t.Fatalf("SaveDay: %v", err)
	}

	loaded, err := storage.LoadDay(base, day)
	if err != nil {
		t.Fatalf("LoadDay after save: %v", err)
	}
	if len(loaded.Posts) != 1 {
		t.Fatalf("LoadDay posts = %d, want 1", len(loaded.Posts))
	}
	if loaded.Posts[0].Subject != "Math" {
		t.Errorf("LoadDay subject = %q, want %q", loaded.Posts[0].Subject, "Math")
	}
	if !loaded.Posts[0].Timestamp.Equal(day) {
		t.Errorf("LoadDay timestamp = %v, want %v", loaded.Posts[0].Timestamp, day)
	}
}

func TestDayFileIsKeyedByUTCDate(t *testing.T) {
	base := t.TempDir()
	jst := time.FixedZone("JST", 9*3600)
	// 2026-02-28 06:00 JST is 2026-02-27 21:00 UTC.
	ts := time.Date(2026, 2, 28, 6, 0, 0, 0, jst)

	if err := storage.UpsertPost(base, model.DiaryPost{ID: "p1", Timestamp: ts, Duration: 10, Subject: "Math"}); err != nil {
		t.Fatalf("UpsertPost: %v", err)
	}
	if _, err := os.Stat(filepath.Join(base, "diary", "2026", "02", "27.json")); err != nil {
		t.Errorf("expected post in the 2026-02-27 day file: %v", err)
	}
}

func TestLoadDayCorruptFileIsBackedUp(t *testing.T) {
	base := t.TempDir()
	day := time.Date(2026, 2, 27, 0, 0, 0, 0, time.UTC)

	dir := filepath.Join(base, "diary", "2026", "02")
	path := filepath.Join(dir, "27.json")
	if err := os.MkdirAll(dir, 0o700); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte("{bad json"), 0o600); err != nil {
		t.Fatal(err)
	}

	_, err := storage.LoadDay(base, day)
	if err == nil {
		t.Fatal("expected error for corrupt JSON, got nil")
	}

	if _, err2 := os.Stat(path + ".corrupt"); os.IsNotExist(err2) {
		t.Error("expected backup file to exist after corrupt JSON")
	}
}

func TestUpsertPost(t *testing.T) {
	base := t.TempDir()
	day := time.Date(2026, 2, 27, 10, 0, 0, 0, time.UTC)

	post := model.DiaryPost{ID: "e1", Timestamp: day, Duration: 20, Subject: "Math"}
	if err := storage.UpsertPost(base, post); err != nil {
		t.Fatalf("UpsertPost (insert): %v", err)
	}

	post.Content = "updated notes"
	if err := storage.UpsertPost(base, post); err != nil {
		t.Fatalf("UpsertPost (update): %v", err)
	}

	df, err := storage.LoadDay(base, day)
	if err != nil {
		t.Fatalf("LoadDay: %v", err)
	}
	if len(df.Posts) != 1 {
		t.Fatalf("expected 1 post, got %d", len(df.Posts))
	}
	if df.Posts[0].Content != "updated notes" {
		t.Errorf("content = %q, want %q", df.Posts[0].Content, "updated notes")
	}
}

func TestDeletePost(t *testing.T) {
	base := t.TempDir()
	day := time.Date(2026, 2, 27, 10, 0, 0, 0, time.UTC)
	for _, id := range []string{"a", "b"} {
		if err := storage.UpsertPost(base, model.DiaryPost{ID: id, Timestamp: day, Duration: 5, Subject: "Math"}); err != nil {
			t.Fatal(err)
		}
	}

	removed, err := storage.DeletePost(base, day, "a")
	if err != nil || !removed {
		t.Fatalf("DeletePost = %v, %v; want true, nil", removed, err)
	}
	removed, err = storage.DeletePost(base, day, "missing")
	if err != nil || removed {
		t.Fatalf("DeletePost(missing) = %v, %v; want false, nil", removed, err)
	}

	df, _ := storage.LoadDay(base, day)
	if len(df.Posts) != 1 || df.Posts[0].ID != "b" {
		t.Errorf("remaining posts = %+v, want only b", df.Posts)
	}
}

func TestLoadRange(t *testing.T) {
	base := t.TempDir()
	for i, d := range []int{22, 23, 25, 1} {
		month := time.February
		if d == 1 {
			month = time.March
		}
		ts := time.Date(2026, month, d, 12, 0, 0, 0, time.UTC)
		post := model.DiaryPost{ID: string(rune('a' + i)), Timestamp: ts, Duration: 10, Subject: "Math"}
		if err := storage.UpsertPost(base, post); err != nil {
			t.Fatal(err)
		}
	}

	from := time.Date(2026, 2, 23, 0, 0, 0, 0, time.UTC)
	to := time.Date(2026, 3, 1, 23, 59, 59, 0, time.UTC)
	posts, err := storage.LoadRange(base, from, to)
	if err != nil {
		t.Fatalf("LoadRange: %v", err)
	}
	if len(posts) != 3 {
		t.Fatalf("LoadRange posts = %d, want 3", len(posts))
	}
}

func TestFindByExternalID(t *testing.T) {
	posts := []model.DiaryPost{{ID: "1"}, {ID: "2", ExternalID: "ext"}}
	if got := storage.FindByExternalID(posts, "ext"); got == nil || got.ID != "2" {
		t.Errorf("FindByExternalID = %+v, want post 2", got)
	}
	if got := storage.FindByExternalID(posts, "nope"); got != nil {
		t.Errorf("FindByExternalID(nope) = %+v, want nil", got)
	}
}

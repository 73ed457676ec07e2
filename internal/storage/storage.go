package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/Tiliavir/studylog/internal/model"
	"github.com/Tiliavir/studylog/internal/timecalc"
)

// DefaultBaseDir returns the default data directory (~/.studylog).
func DefaultBaseDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine home directory: %w", err)
	}
	return filepath.Join(home, ".studylog"), nil
}

// dayFilePath returns the path of the day file holding posts whose UTC
// date matches t.
func dayFilePath(base string, t time.Time) string {
	u := t.UTC()
	return filepath.Join(base, "diary", u.Format("2006"), u.Format("01"), u.Format("02")+".json")
}

// LoadDay loads the DayFile for the UTC date of t. Returns an empty DayFile if not found.
func LoadDay(base string, t time.Time) (model.DayFile, error) {
	path := dayFilePath(base, t)
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return model.DayFile{Date: timecalc.DateKey(t), Posts: []model.DiaryPost{}}, nil
	}
	if err != nil {
		return model.DayFile{}, fmt.Errorf("storage error reading %s: %w", path, err)
	}

	var df model.DayFile
	if err := json.Unmarshal(data, &df); err != nil {
		// Back up corrupt file and abort.
		backupPath := path + ".corrupt"
		_ = os.Rename(path, backupPath)
		return model.DayFile{}, fmt.Errorf("corrupt JSON in %s (backed up to %s): %w", path, backupPath, err)
	}
	return df, nil
}

// SaveDay atomically writes a DayFile for the UTC date of t.
func SaveDay(base string, t time.Time, df model.DayFile) error {
	return writeJSON(dayFilePath(base, t), df)
}

// writeJSON writes v as indented JSON via a temp file and rename.
func writeJSON(path string, v any) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("storage error creating directories: %w", err)
	}

	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("storage error marshalling JSON: %w", err)
	}

	tmpPath := path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0o600); err != nil {
		return fmt.Errorf("storage error writing temp file: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("storage error renaming temp file: %w", err)
	}
	return nil
}

// UpsertPost replaces the post with the same ID in its day file, or appends it.
func UpsertPost(base string, post model.DiaryPost) error {
	df, err := LoadDay(base, post.Timestamp)
	if err != nil {
		return err
	}
	for i, p := range df.Posts {
		if p.ID == post.ID {
			df.Posts[i] = post
			return SaveDay(base, post.Timestamp, df)
		}
	}
	df.Posts = append(df.Posts, post)
	return SaveDay(base, post.Timestamp, df)
}

// DeletePost removes the post with the given ID from the day file of day.
// It reports whether a post was removed.
func DeletePost(base string, day time.Time, id string) (bool, error) {
	df, err := LoadDay(base, day)
	if err != nil {
		return false, err
	}
	for i, p := range df.Posts {
		if p.ID == id {
			df.Posts = append(df.Posts[:i], df.Posts[i+1:]...)
			return true, SaveDay(base, day, df)
		}
	}
	return false, nil
}

// LoadRange loads all posts stored on the UTC dates from..to inclusive.
// Callers filter by instant when they need an exact window.
func LoadRange(base string, from, to time.Time) ([]model.DiaryPost, error) {
	posts := []model.DiaryPost{}
	start := timecalc.StartOfDay(from.UTC())
	end := to.UTC()
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		df, err := LoadDay(base, d)
		if err != nil {
			return nil, err
		}
		posts = append(posts, df.Posts...)
	}
	return posts, nil
}

// FindByExternalID returns the post imported from externalID, if present.
func FindByExternalID(posts []model.DiaryPost, externalID string) *model.DiaryPost {
	for i := range posts {
		if posts[i].ExternalID == externalID {
			return &posts[i]
		}
	}
	return nil
}

package msgraph

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"golang.org/x/oauth2"
)

func TestGetCalendarViewFollowsNextLink(t *testing.T) {
	var srv *httptest.Server
	srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Prefer"); got != `outlook.timezone="Asia/Tokyo"` {
			t.Errorf("Prefer header = %q", got)
		}
		page := calendarViewResponse{}
		if r.URL.Query().Get("page") == "" {
			page.Value = []CalendarEvent{{ID: "1", Subject: "first"}}
			page.NextLink = srv.URL + "/me/calendarView?page=2"
		} else {
			page.Value = []CalendarEvent{{ID: "2", Subject: "second"}}
		}
		_ = json.NewEncoder(w).Encode(page)
	}))
	defer srv.Close()

	c := newClientWithHTTP(srv.Client(), srv.URL)
	from := time.Date(2026, 2, 23, 0, 0, 0, 0, time.UTC)
	events, err := c.GetCalendarView(context.Background(), from, from.AddDate(0, 0, 7), "Asia/Tokyo")
	if err != nil {
		t.Fatalf("GetCalendarView: %v", err)
	}
	if len(events) != 2 || events[0].ID != "1" || events[1].ID != "2" {
		t.Errorf("events = %+v, want ids 1 and 2", events)
	}
}

func TestGetCalendarViewError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "denied", http.StatusForbidden)
	}))
	defer srv.Close()

	c := newClientWithHTTP(srv.Client(), srv.URL)
	if _, err := c.GetCalendarView(context.Background(), time.Now(), time.Now(), ""); err == nil {
		t.Fatal("expected error for 403 response")
	}
}

func TestSaveAndLoadToken(t *testing.T) {
	base := t.TempDir()
	tok, err := loadToken(base)
	if err != nil || tok != nil {
		t.Fatalf("loadToken on empty dir = %v, %v; want nil, nil", tok, err)
	}

	want := &oauth2.Token{AccessToken: "access", RefreshToken: "refresh", Expiry: time.Now().Add(time.Hour).Round(time.Second)}
	if err := saveToken(base, want); err != nil {
		t.Fatalf("saveToken: %v", err)
	}
	got, err := loadToken(base)
	if err != nil {
		t.Fatalf("loadToken: %v", err)
	}
	if got.AccessToken != "access" || got.RefreshToken != "refresh" || !got.Expiry.Equal(want.Expiry) {
		t.Errorf("loadToken = %+v, want %+v", got, want)
	}
}

func TestGetCalendarViewRequestsDiaryFields(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if q.Get("$select") != eventFields {
			t.Errorf("$select = %q, want %q", q.Get("$select"), eventFields)
		}
		if q.Get("startDateTime") != "2026-02-23T00:00:00Z" || q.Get("endDateTime") != "2026-03-02T00:00:00Z" {
			t.Errorf("window = %s..%s", q.Get("startDateTime"), q.Get("endDateTime"))
		}
		if r.Header.Get("Prefer") != "" {
			t.Errorf("Prefer header set without a timezone: %q", r.Header.Get("Prefer"))
		}
		_ = json.NewEncoder(w).Encode(calendarViewResponse{})
	}))
	defer srv.Close()

	c := newClientWithHTTP(srv.Client(), srv.URL)
	// 09:00 JST is midnight UTC; the window is sent in UTC.
	from := time.Date(2026, 2, 23, 9, 0, 0, 0, time.FixedZone("JST", 9*3600))
	events, err := c.GetCalendarView(context.Background(), from, from.AddDate(0, 0, 7), "")
	if err != nil {
		t.Fatalf("GetCalendarView: %v", err)
	}
	if len(events) != 0 {
		t.Errorf("events = %d, want 0", len(events))
	}
}

type countingSource struct {
	tokens []string
	calls  int
}

func (c *countingSource) Token() (*oauth2.Token, error) {
	tok := &oauth2.Token{AccessToken: c.tokens[c.calls], RefreshToken: "refresh"}
	c.calls++
	return tok, nil
}

func TestSavingTokenSourcePersistsNewTokens(t *testing.T) {
	base := t.TempDir()
	src := &savingTokenSource{base: base, ts: &countingSource{tokens: []string{"one", "one", "two"}}}

	for i := 0; i < 3; i++ {
		if _, err := src.Token(); err != nil {
			t.Fatalf("Token: %v", err)
		}
		got, err := loadToken(base)
		if err != nil || got == nil {
			t.Fatalf("loadToken = %v, %v", got, err)
		}
		want := []string{"one", "one", "two"}[i]
		if got.AccessToken != want {
			t.Errorf("stored access token after call %d = %q, want %q", i+1, got.AccessToken, want)
		}
	}
}

package msgraph

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"golang.org/x/oauth2"

	"github.com/Tiliavir/studylog/internal/observability"
)

const graphBaseURL = "https://graph.microsoft.com/v1.0"

// eventFields are the event properties MapEventToPost and shouldSkip read.
const eventFields = "id,subject,categories,bodyPreview,isAllDay,isCancelled,sensitivity,showAs,start,end,location"

// Client is an authenticated Microsoft Graph API client.
type Client struct {
	httpClient *http.Client
	baseURL    string
}

// NewClient creates a new Graph API client using the provided token and config.
// Refreshed tokens are persisted under base.
func NewClient(ctx context.Context, base string, tok *oauth2.Token, cfg *oauth2.Config) *Client {
	ts := cfg.TokenSource(ctx, tok)
	return &Client{
		httpClient: oauth2.NewClient(ctx, &savingTokenSource{base: base, ts: ts}),
		baseURL:    graphBaseURL,
	}
}

// newClientWithHTTP is used by tests to point the client at a fake server.
func newClientWithHTTP(hc *http.Client, baseURL string) *Client {
	return &Client{httpClient: hc, baseURL: baseURL}
}

// savingTokenSource persists tokens under base whenever the wrapped source
// hands out a new access token, so the next sync skips the device flow.
type savingTokenSource struct {
	base string
	ts   oauth2.TokenSource
	last string
}

func (s *savingTokenSource) Token() (*oauth2.Token, error) {
	tok, err := s.ts.Token()
	if err != nil {
		return nil, err
	}
	if tok.AccessToken != s.last {
		s.last = tok.AccessToken
		if err := saveToken(s.base, tok); err != nil {
			observability.WithFields("component", "msgraph").Warn("could not save refreshed token", "error", err)
		}
	}
	return tok, nil
}

// CalendarEvent represents a Microsoft Graph calendar event.
type CalendarEvent struct {
	ID          string   `json:"id"`
	Subject     string   `json:"subject"`
	Categories  []string `json:"categories"`
	BodyPreview string   `json:"bodyPreview"`
	IsAllDay    bool     `json:"isAllDay"`
	IsCancelled bool     `json:"isCancelled"`
	Sensitivity string   `json:"sensitivity"` // "normal", "personal", "private", "confidential"
	ShowAs      string   `json:"showAs"`      // "free", "tentative", "busy", "oof", "workingElsewhere", "unknown"
	Start       struct {
		DateTime string `json:"dateTime"`
		TimeZone string `json:"timeZone"`
	} `json:"start"`
	End struct {
		DateTime string `json:"dateTime"`
		TimeZone string `json:"timeZone"`
	} `json:"end"`
	Location struct {
		DisplayName string `json:"displayName"`
	} `json:"location"`
}

// calendarViewResponse is the Graph API paged response for calendar events.
type calendarViewResponse struct {
	Value    []CalendarEvent `json:"value"`
	NextLink string          `json:"@odata.nextLink"`
}

// GetCalendarView returns the lessons and study blocks on the signed-in
// user's calendar between from and to, following @odata.nextLink paging.
// Only the fields needed to build diary posts are requested. When timezone
// is set, Graph reports start and end in that IANA zone without an offset.
func (c *Client) GetCalendarView(ctx context.Context, from, to time.Time, timezone string) ([]CalendarEvent, error) {
	q := url.Values{}
	q.Set("startDateTime", from.UTC().Format(time.RFC3339))
	q.Set("endDateTime", to.UTC().Format(time.RFC3339))
	q.Set("$select", eventFields)
	q.Set("$orderby", "start/dateTime")
	q.Set("$top", "100")
	endpoint := c.baseURL + "/me/calendarView?" + q.Encode()

	log := observability.WithFields("component", "msgraph")
	var all []CalendarEvent
	for page := 1; endpoint != ""; page++ {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
		if err != nil {
			return nil, fmt.Errorf("creating request: %w", err)
		}
		req.Header.Set("Accept", "application/json")
		if timezone != "" {
			req.Header.Set("Prefer", fmt.Sprintf(`outlook.timezone="%s"`, timezone))
		}

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return nil, fmt.Errorf("graph API request failed: %w", err)
		}
		raw, err := io.ReadAll(resp.Body)
		resp.Body.Close()
		if err != nil {
			return nil, fmt.Errorf("reading response body: %w", err)
		}

		if resp.StatusCode != http.StatusOK {
			return nil, fmt.Errorf("graph API error %d on page %d: %s", resp.StatusCode, page, string(raw))
		}

		var body calendarViewResponse
		if err := json.Unmarshal(raw, &body); err != nil {
			return nil, fmt.Errorf("decoding graph response: %w", err)
		}

		log.Debug("calendar page fetched", "page", page, "events", len(body.Value))
		all = append(all, body.Value...)
		endpoint = body.NextLink
	}
	return all, nil
}

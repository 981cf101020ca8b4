// Package meetinginfo fetches the next-meeting stub from the mock endpoint.
// One GET, no retry or backoff.
package meetinginfo

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// MeetingInfo is the mock endpoint's payload.
type MeetingInfo struct {
	MeetingTime string `json:"meetingTime"`
	Initiator   string `json:"initiator"`
	Subject     string `json:"subject"`
}

// FormattedTime renders the meeting time for display, falling back to the
// raw string when it is not RFC 3339.
func (m MeetingInfo) FormattedTime() string {
	parsed, err := time.Parse(time.RFC3339, m.MeetingTime)
	if err != nil {
		return m.MeetingTime
	}
	return parsed.Local().Format("2006-01-02 15:04")
}

type Client struct {
	baseURL string
	http    *http.Client
}

func New(baseURL string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: 30 * time.Second},
	}
}

// Fetch performs the single-shot meeting-info request.
func (c *Client) Fetch(ctx context.Context) (MeetingInfo, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/getmeetinginfo", nil)
	if err != nil {
		return MeetingInfo{}, err
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return MeetingInfo{}, fmt.Errorf("fetching meeting info: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return MeetingInfo{}, fmt.Errorf("reading meeting info: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return MeetingInfo{}, fmt.Errorf("meeting info endpoint returned HTTP %d", resp.StatusCode)
	}

	var info MeetingInfo
	if err := json.Unmarshal(body, &info); err != nil {
		return MeetingInfo{}, fmt.Errorf("parsing meeting info: %w", err)
	}
	return info, nil
}

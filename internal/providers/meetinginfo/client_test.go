package meetinginfo

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFetchDecodesPayload(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/getmeetinginfo", r.URL.Path)
		w.Write([]byte(`{
			"meetingTime": "2026-08-28T10:30:00Z",
			"initiator": "dana",
			"subject": "weekly sync",
			"someExtra": 42
		}`))
	}))
	t.Cleanup(server.Close)

	info, err := New(server.URL).Fetch(context.Background())
	require.NoError(t, err)
	assert.Equal(t, MeetingInfo{
		MeetingTime: "2026-08-28T10:30:00Z",
		Initiator:   "dana",
		Subject:     "weekly sync",
	}, info)
}

func TestFetchReportsHTTPErrors(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "down", http.StatusBadGateway)
	}))
	t.Cleanup(server.Close)

	_, err := New(server.URL).Fetch(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "502")
}

func TestFetchRejectsMalformedBody(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("not json"))
	}))
	t.Cleanup(server.Close)

	_, err := New(server.URL).Fetch(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parsing meeting info")
}

func TestFormattedTime(t *testing.T) {
	t.Parallel()

	raw := "2026-08-28T10:30:00Z"
	parsed, err := time.Parse(time.RFC3339, raw)
	require.NoError(t, err)
	want := parsed.Local().Format("2006-01-02 15:04")
	assert.Equal(t, want, MeetingInfo{MeetingTime: raw}.FormattedTime())

	// Anything that does not parse passes through untouched.
	assert.Equal(t, "tomorrow-ish", MeetingInfo{MeetingTime: "tomorrow-ish"}.FormattedTime())
	assert.Equal(t, "", MeetingInfo{}.FormattedTime())
}

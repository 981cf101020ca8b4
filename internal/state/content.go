package state

import "time"

// EventStatus is the scheduling state of a calendar event.
type EventStatus string

const (
	EventPending   EventStatus = "pending"
	EventConfirmed EventStatus = "confirmed"
	EventDeclined  EventStatus = "declined"
	EventArchived  EventStatus = "archived"
)

// CalendarEvent is one entry on the schedule timeline.
type CalendarEvent struct {
	ID       string      `json:"id"`
	Title    string      `json:"title"`
	Owner    string      `json:"owner"`
	Start    time.Time   `json:"start"`
	End      time.Time   `json:"end"`
	Status   EventStatus `json:"status"`
	Priority int         `json:"priority"`
	Location string      `json:"location,omitempty"`
	Tags     []string    `json:"tags,omitempty"`
}

// TimelineDay groups the events of one calendar day.
type TimelineDay struct {
	Date        time.Time       `json:"date"`
	Focus       bool            `json:"focus"`
	Utilization int             `json:"utilization"`
	Events      []CalendarEvent `json:"events"`
}

// TranscriptRecord is one processed meeting in the transcripts list.
type TranscriptRecord struct {
	ID           string    `json:"id"`
	Title        string    `json:"title"`
	RecordedAt   time.Time `json:"recordedAt"`
	Preview      string    `json:"preview"`
	Speakers     int       `json:"speakers"`
	SegmentCount int       `json:"segmentCount"`
	TodoCount    int       `json:"todoCount"`
}

// OperationTask is one entry on the operations board.
type OperationTask struct {
	ID       string `json:"id"`
	Text     string `json:"text"`
	Assignee string `json:"assignee,omitempty"`
	Status   string `json:"status"`
	Priority string `json:"priority,omitempty"`
}

package state

import "time"

// Placeholder content shown before any recording has been processed.

func sampleTimeline(now time.Time) []TimelineDay {
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	return []TimelineDay{
		{
			Date:        today,
			Focus:       true,
			Utilization: 70,
			Events: []CalendarEvent{
				{
					ID:       "evt-standup",
					Title:    "Team standup",
					Owner:    "Mara Lindgren",
					Start:    today.Add(9 * time.Hour),
					End:      today.Add(9*time.Hour + 15*time.Minute),
					Status:   EventConfirmed,
					Priority: 2,
					Location: "Room 2B",
					Tags:     []string{"recurring"},
				},
				{
					ID:       "evt-vendor",
					Title:    "Vendor negotiation",
					Owner:    "Jonas Beck",
					Start:    today.Add(13 * time.Hour),
					End:      today.Add(14 * time.Hour),
					Status:   EventPending,
					Priority: 1,
					Location: "Video call",
					Tags:     []string{"sales", "q3"},
				},
			},
		},
		{
			Date:        today.AddDate(0, 0, 1),
			Utilization: 35,
			Events: []CalendarEvent{
				{
					ID:       "evt-retro",
					Title:    "Sprint retro",
					Owner:    "Mara Lindgren",
					Start:    today.AddDate(0, 0, 1).Add(11 * time.Hour),
					End:      today.AddDate(0, 0, 1).Add(12 * time.Hour),
					Status:   EventConfirmed,
					Priority: 3,
				},
			},
		},
	}
}

func sampleTranscripts(now time.Time) []TranscriptRecord {
	return []TranscriptRecord{
		{
			ID:           "rec-kickoff",
			Title:        "Project kickoff",
			RecordedAt:   now.AddDate(0, 0, -3),
			Preview:      "Alright, let's walk through the milestones for the pilot...",
			Speakers:     4,
			SegmentCount: 128,
			TodoCount:    6,
		},
		{
			ID:           "rec-weekly",
			Title:        "Weekly sync",
			RecordedAt:   now.AddDate(0, 0, -1),
			Preview:      "Quick round of updates before we dive into the blockers...",
			Speakers:     3,
			SegmentCount: 74,
			TodoCount:    2,
		},
	}
}

func sampleTasks() []OperationTask {
	return []OperationTask{
		{ID: "task-brief", Text: "Send revised brief to the vendor", Assignee: "Jonas Beck", Status: "open", Priority: "high"},
		{ID: "task-deck", Text: "Update the pilot deck with Q3 numbers", Assignee: "Mara Lindgren", Status: "open"},
		{ID: "task-notes", Text: "Circulate kickoff meeting minutes", Status: "done"},
	}
}

package domain

// FrontendData is the UI-ready payload of a completed run: transcript,
// extracted to-dos, generated meeting minutes, participant summaries and an
// optional knowledge graph. The session treats it as an immutable bundle.
type FrontendData struct {
	SessionID      string              `json:"session_id"`
	Timestamp      string              `json:"timestamp"`
	Transcript     TranscriptData      `json:"transcript"`
	Todos          TodosData           `json:"todos"`
	MeetingMinutes MeetingMinutesData  `json:"meeting_minutes"`
	Participants   ParticipantsData    `json:"participants"`
	KnowledgeGraph *KnowledgeGraphData `json:"knowledge_graph,omitempty"`
}

type TranscriptData struct {
	Segments         []TranscriptSegment `json:"segments"`
	TotalSegments    int                 `json:"total_segments"`
	TotalDuration    float64             `json:"total_duration"`
	SpeakersDetected int                 `json:"speakers_detected"`
	Language         string              `json:"language"`
}

type TranscriptSegment struct {
	Start            float64 `json:"start"`
	End              float64 `json:"end"`
	Text             string  `json:"text"`
	Speaker          string  `json:"speaker"`
	SpeakerName      string  `json:"speaker_name,omitempty"`
	SpeakerProfileID string  `json:"speaker_profile_id,omitempty"`
	SpeakerUserID    string  `json:"speaker_user_id,omitempty"`
	Duration         float64 `json:"duration"`
}

// SpeakerLabel resolves the display name for a segment, falling back to the
// raw diarization speaker id.
func (s TranscriptSegment) SpeakerLabel() string {
	if s.SpeakerName != "" {
		return s.SpeakerName
	}
	return s.Speaker
}

type TodosData struct {
	Items      []TodoItem `json:"items"`
	TotalCount int        `json:"total_count"`
}

type TodoItem struct {
	ID                string  `json:"id"`
	Text              string  `json:"text"`
	Assignee          string  `json:"assignee,omitempty"`
	DueDate           string  `json:"due_date,omitempty"`
	Status            string  `json:"status"`
	Category          string  `json:"category,omitempty"`
	Priority          string  `json:"priority,omitempty"`
	Timestamp         float64 `json:"timestamp"`
	AssigneeProfileID string  `json:"assignee_profile_id,omitempty"`
}

type MeetingMinutesData struct {
	Content     string `json:"content"`
	GeneratedAt string `json:"generated_at,omitempty"`
}

type ParticipantsData struct {
	Items      []ParticipantItem `json:"items"`
	TotalCount int               `json:"total_count"`
}

type ParticipantItem struct {
	Name           string  `json:"name"`
	ProfileID      string  `json:"profile_id"`
	Duration       float64 `json:"duration"`
	SpeechSegments int     `json:"speech_segments"`
}

type KnowledgeGraphData struct {
	Entities      []KGEntity `json:"entities"`
	TotalEntities int        `json:"total_entities"`
}

type KGEntity struct {
	ID         string  `json:"id"`
	Type       string  `json:"type"`
	Name       string  `json:"name"`
	Confidence float64 `json:"confidence,omitempty"`
}

// CompleteResult is the legacy raw pipeline output. It is kept only as a
// fallback shape for older backend builds; frontendData is canonical.
type CompleteResult struct {
	SessionID      string                     `json:"session_id"`
	ASRResult      *ASRResult                 `json:"asr_result,omitempty"`
	Todos          []TodoItem                 `json:"todos,omitempty"`
	MeetingMinutes string                     `json:"meeting_minutes,omitempty"`
	KGEntities     []KGEntity                 `json:"kg_entities,omitempty"`
	KGRelations    []KGRelation               `json:"kg_relations,omitempty"`
	Participants   map[string]ParticipantItem `json:"participants,omitempty"`
}

type ASRResult struct {
	Segments    []TranscriptSegment `json:"segments"`
	NumSpeakers int                 `json:"num_speakers,omitempty"`
}

type KGRelation struct {
	From   string  `json:"from"`
	To     string  `json:"to"`
	Type   string  `json:"type"`
	Weight float64 `json:"weight,omitempty"`
}

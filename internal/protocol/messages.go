package protocol

import "time"

// SessionStarted announces that a hold-to-record gesture opened the microphone.
type SessionStarted struct {
	SessionID string    `json:"session_id"`
	StartedAt time.Time `json:"started_at"`
}

// SessionEnded announces that a recording session was closed and why.
type SessionEnded struct {
	SessionID  string    `json:"session_id"`
	Cause      string    `json:"cause"`
	EndedAt    time.Time `json:"ended_at"`
	DurationMS int64     `json:"duration_ms"`
	Samples    int       `json:"samples"`
}

// Transcript carries the text produced for a completed session.
type Transcript struct {
	SessionID string    `json:"session_id"`
	Text      string    `json:"text"`
	Language  string    `json:"language,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

const (
	SubjectSessionStarted = "dictation.session.started"
	SubjectSessionEnded   = "dictation.session.ended"
	SubjectTranscript     = "dictation.transcript"
)

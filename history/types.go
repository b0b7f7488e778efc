package history

import (
	"time"

	"github.com/interacthq/jobagent/schema"
)

// SessionStartEvent is the JSONL record written when a chat begins.
type SessionStartEvent struct {
	SID       string `json:"sid"`
	ProfileID string `json:"profile_id"`
	TS        int64  `json:"ts"`
	Summary   string `json:"summary,omitempty"`
}

// MessageEvent is the JSONL record written for each stored envelope.
type MessageEvent struct {
	SID     string             `json:"sid"`
	TS      int64              `json:"ts"`
	Message schema.ChatMessage `json:"msg"`
}

// SearchResult is a hit from the FTS index.
type SearchResult struct {
	SessionUUID string
	Timestamp   time.Time
	Sender      string
	Preview     string
}

// SessionSummary identifies a stored transcript.
type SessionSummary struct {
	UUID      string
	ProfileID string
	Timestamp time.Time
	Summary   string
}

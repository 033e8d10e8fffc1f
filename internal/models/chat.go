package models

import "time"

// ChatMessage is a single turn of a chat conversation
type ChatMessage struct {
	Role    string `json:"role"` // system, user, assistant
	Content string `json:"content"`
}

// Action is a call-to-action button derived from an assistant reply
type Action struct {
	Label string `json:"label"`
	Path  string `json:"path"`
}

// Lead is a chat conversation stored for follow-up by the sales team
type Lead struct {
	ID         int64         `json:"id"`
	SessionID  string        `json:"session_id"`
	Transcript []ChatMessage `json:"transcript"`
	CreatedAt  time.Time     `json:"created_at"`
}

// AnalyticsEvent is emitted to the analytics transport
type AnalyticsEvent struct {
	Name         string    `json:"name"`
	SessionID    string    `json:"session_id"`
	MessageCount int       `json:"message_count"`
	ReplyLength  int       `json:"reply_length"`
	ActionCount  int       `json:"action_count"`
	LatencyMS    int64     `json:"latency_ms"`
	Error        string    `json:"error,omitempty"`
	OccurredAt   time.Time `json:"occurred_at"`
}

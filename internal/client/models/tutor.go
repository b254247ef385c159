package models

import "time"

type Conversation struct {
	ID        string    `json:"id"`
	Topic     string    `json:"topic,omitempty"`
	Language  string    `json:"language,omitempty"`
	CreatedAt time.Time `json:"createdAt,omitzero"`
}

type TutorMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type TutorReply struct {
	Message     TutorMessage `json:"message"`
	Corrections []GrammarFix `json:"corrections,omitempty"`
	XPEarned    int          `json:"xpEarned,omitempty"`
}

type GrammarFix struct {
	Original    string `json:"original"`
	Corrected   string `json:"corrected"`
	Explanation string `json:"explanation,omitempty"`
}

type GrammarCheck struct {
	Text        string       `json:"text"`
	Corrected   string       `json:"corrected"`
	Corrections []GrammarFix `json:"corrections,omitempty"`
	Score       int          `json:"score"`
}

// RealtimeSessionRequest asks the backend to mint an ephemeral key for the
// realtime voice API.
type RealtimeSessionRequest struct {
	Topic        string `json:"topic,omitempty"`
	Voice        string `json:"voice,omitempty"`
	Instructions string `json:"instructions,omitempty"`
}

// RealtimeSession is the backend's answer: where to connect and with what.
type RealtimeSession struct {
	ID           string    `json:"id"`
	ClientSecret string    `json:"clientSecret"`
	Model        string    `json:"model"`
	Voice        string    `json:"voice,omitempty"`
	Instructions string    `json:"instructions,omitempty"`
	ExpiresAt    time.Time `json:"expiresAt,omitzero"`
}

type RealtimeSessionEnd struct {
	DurationSeconds int `json:"durationSeconds"`
}

package domain

import "time"

// ============================================================
// Conversa do assistente
// ============================================================

// Speaker identifies who authored a turn.
type Speaker string

const (
	SpeakerUser      Speaker = "user"
	SpeakerAssistant Speaker = "assistant"
)

// ActionLink is a button rendered below an assistant turn that navigates the
// console to Route when clicked.
type ActionLink struct {
	Label string `json:"label"`
	Route string `json:"route"`
}

// ConversationTurn is one message in the append-only chat log.
type ConversationTurn struct {
	ID        string      `json:"id"`
	Speaker   Speaker     `json:"speaker"`
	Text      string      `json:"text"`
	Timestamp time.Time   `json:"timestamp"`
	Action    *ActionLink `json:"action,omitempty"`
	Error     bool        `json:"error,omitempty"`
}

// Response is what the dispatcher produces for one intent. It becomes an
// assistant turn once appended by the caller.
type Response struct {
	Text   string      `json:"text"`
	Action *ActionLink `json:"action,omitempty"`
	Error  bool        `json:"error,omitempty"`
}

// Exchange pairs the user turn with the assistant turn it produced.
type Exchange struct {
	SessionID string           `json:"sessionId"`
	Intent    IntentTag        `json:"intent"`
	User      ConversationTurn `json:"user"`
	Assistant ConversationTurn `json:"assistant"`
}

// ContextSignal carries topical continuity derived from the latest turns.
type ContextSignal struct {
	RecentCustomerTopic bool `json:"recentCustomerTopic"`
	RecentPartTopic     bool `json:"recentPartTopic"`
}

// EntityExtraction holds what was pulled out of one utterance.
// It is built fresh for each message and never stored.
type EntityExtraction struct {
	CandidateCustomers []Customer `json:"candidateCustomers"`
	MonetaryValue      *float64   `json:"monetaryValue"`
	IntegerValue       *int       `json:"integerValue"`
}

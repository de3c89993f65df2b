package domain

// ============================================================
// API do Assistente: Request/Response
// ============================================================

// CreateSessionResponse is returned by POST /v1/assistant/sessions.
type CreateSessionResponse struct {
	SessionID string          `json:"sessionId"`
	Snapshot  SnapshotSummary `json:"snapshot"`
}

// MessageRequest is the body of POST /v1/assistant/sessions/{sessionId}/messages.
type MessageRequest struct {
	Text string `json:"text"`
}

// TurnsResponse is returned by GET /v1/assistant/sessions/{sessionId}/turns.
type TurnsResponse struct {
	SessionID string             `json:"sessionId"`
	Typing    bool               `json:"typing"`
	Turns     []ConversationTurn `json:"turns"`
}

// ShortcutRequest is the body of POST /v1/assistant/sessions/{sessionId}/shortcuts.
type ShortcutRequest struct {
	Key string `json:"key"`
}

// ShortcutResponse tells the caller whether a chord completed.
type ShortcutResponse struct {
	Pending bool   `json:"pending"`
	Route   string `json:"route,omitempty"`
}

// ClassifyRequest is the body of POST /v1/assistant/classify.
type ClassifyRequest struct {
	Text      string `json:"text"`
	SessionID string `json:"sessionId,omitempty"`
}

// ClassifyResponse exposes the classifier's view of an utterance.
type ClassifyResponse struct {
	Intent   Intent           `json:"intent"`
	Entities EntityExtraction `json:"entities"`
	Context  ContextSignal    `json:"context"`
}

// AssistantMetrics is returned by GET /v1/metrics/assistant.
type AssistantMetrics struct {
	Messages       int64            `json:"messages"`
	DispatchErrors int64            `json:"dispatchErrors"`
	ErrorRate      float64          `json:"errorRate"`
	LiveFetches    int64            `json:"liveFetches"`
	Intents        map[string]int64 `json:"intents"`
}

package chat

// StreamMetadata carries per-query bookkeeping the backend attaches to a
// stream. It is passed through to the presentation layer unmodified.
type StreamMetadata struct {
	SessionID string `json:"session_id"`
	QueryType string `json:"query_type"`
	ModelUsed string `json:"model_used"`
}

// StreamEvent is one decoded unit of a chat stream. Exactly one field group
// is populated per event: incremental text, a full replacement source list,
// metadata, or an inline backend failure.
type StreamEvent struct {
	Text     string          `json:"text,omitempty"`
	Sources  []string        `json:"sources,omitempty"`
	Metadata *StreamMetadata `json:"metadata,omitempty"`
	Err      string          `json:"error,omitempty"`
}
